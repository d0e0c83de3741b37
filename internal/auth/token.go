package auth

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// ErrInvalidToken is the single error returned for any verification failure.
// Bad signature, expired, wrong issuer or audience are indistinguishable to
// the caller; the distinction only goes to server logs.
var ErrInvalidToken = errors.New("invalid token")

// Claims is the JWT claim set carried by a bearer token.
type Claims struct {
	Role  Role   `json:"role"`
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// CodecConfig configures a TokenCodec. Keys are injected, never embedded;
// PreviousKeys are accepted for verification only, so the signing key can be
// rotated without cutting off tokens issued before the rotation.
type CodecConfig struct {
	Issuer       string
	Audience     string
	TTL          time.Duration
	Key          []byte
	PreviousKeys [][]byte
	// Now overrides the clock, for tests. Nil means time.Now.
	Now func() time.Time
}

// TokenCodec signs and verifies bearer tokens with HMAC-SHA256. It is
// immutable after construction and safe for concurrent use.
type TokenCodec struct {
	issuer   string
	audience string
	ttl      time.Duration
	keys     [][]byte
	now      func() time.Time
}

func NewTokenCodec(cfg CodecConfig) (*TokenCodec, error) {
	if len(cfg.Key) == 0 {
		return nil, fmt.Errorf("token codec requires a signing key")
	}
	ttl := cfg.TTL
	if ttl == 0 {
		ttl = 7 * 24 * time.Hour
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	keys := make([][]byte, 0, 1+len(cfg.PreviousKeys))
	keys = append(keys, cfg.Key)
	keys = append(keys, cfg.PreviousKeys...)
	return &TokenCodec{
		issuer:   cfg.Issuer,
		audience: cfg.Audience,
		ttl:      ttl,
		keys:     keys,
		now:      now,
	}, nil
}

// Issue signs a token for the given identity. The expiry window is fixed by
// the codec's TTL and never derived from caller input.
func (c *TokenCodec) Issue(subject uuid.UUID, role Role, email string) (string, error) {
	if !role.Valid() {
		return "", fmt.Errorf("cannot issue token for role %q", role)
	}
	issuedAt := c.now()
	claims := &Claims{
		Role:  role,
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    c.issuer,
			Audience:  jwt.ClaimStrings{c.audience},
			Subject:   subject.String(),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(c.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(c.keys[0])
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Verify decodes and validates a token and maps its claims to a Principal.
// Every failure collapses to ErrInvalidToken.
func (c *TokenCodec) Verify(tokenString string) (*Principal, error) {
	var lastErr error
	for _, key := range c.keys {
		principal, err := c.verifyWithKey(tokenString, key)
		if err == nil {
			return principal, nil
		}
		lastErr = err
	}
	log.Printf("token rejected: %v", lastErr)
	return nil, ErrInvalidToken
}

func (c *TokenCodec) verifyWithKey(tokenString string, key []byte) (*Principal, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims,
		func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return key, nil
		},
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithIssuer(c.issuer),
		jwt.WithAudience(c.audience),
		jwt.WithIssuedAt(),
		jwt.WithTimeFunc(c.now),
	)
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, fmt.Errorf("token did not validate")
	}

	subject, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, fmt.Errorf("invalid subject claim: %w", err)
	}
	role, err := ParseRole(string(claims.Role))
	if err != nil {
		return nil, err
	}
	if claims.IssuedAt == nil || claims.ExpiresAt == nil {
		return nil, fmt.Errorf("missing temporal claims")
	}

	return &Principal{
		Subject:   subject,
		Role:      role,
		Email:     claims.Email,
		IssuedAt:  claims.IssuedAt.Time,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}
