package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/andrefranchin/treine-me-api/internal/config"
)

// ProcessChannel is the pub/sub channel the image worker subscribes to.
const ProcessChannel = "conteudo:process"

type Client struct {
	Client *redis.Client
}

// NewClient creates a new Redis client and verifies connectivity.
func NewClient(cfg *config.RedisConfig) (*Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &Client{Client: client}, nil
}

// GetOwner returns the cached owner id of a resource, or redis.Nil.
func (c *Client) GetOwner(ctx context.Context, resource string, id uuid.UUID) (uuid.UUID, error) {
	value, err := c.Client.Get(ctx, ownerKey(resource, id)).Result()
	if err != nil {
		return uuid.Nil, err
	}
	owner, err := uuid.Parse(value)
	if err != nil {
		return uuid.Nil, fmt.Errorf("corrupt owner cache entry for %s:%s: %w", resource, id, err)
	}
	return owner, nil
}

// SetOwner caches the owner id of a resource.
func (c *Client) SetOwner(ctx context.Context, resource string, id, owner uuid.UUID, expiration time.Duration) error {
	return c.Client.Set(ctx, ownerKey(resource, id), owner.String(), expiration).Err()
}

// InvalidateOwner drops the cached owner of a resource, used when the
// resource is deleted.
func (c *Client) InvalidateOwner(ctx context.Context, resource string, id uuid.UUID) error {
	return c.Client.Del(ctx, ownerKey(resource, id)).Err()
}

// Publish publishes a message to a Redis channel.
func (c *Client) Publish(ctx context.Context, channel string, message interface{}) error {
	return c.Client.Publish(ctx, channel, message).Err()
}

// Close closes the Redis client.
func (c *Client) Close() error {
	return c.Client.Close()
}

func ownerKey(resource string, id uuid.UUID) string {
	return fmt.Sprintf("owner:%s:%s", resource, id)
}
