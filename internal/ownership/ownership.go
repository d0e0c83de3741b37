package ownership

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/andrefranchin/treine-me-api/internal/apperrors"
	"github.com/andrefranchin/treine-me-api/internal/auth"
)

// Resource names an owned entity type for owner lookups.
type Resource string

const (
	ResourceProduto   Resource = "produto"
	ResourceModulo    Resource = "modulo"
	ResourceAula      Resource = "aula"
	ResourceConteudo  Resource = "conteudo"
	ResourcePlano     Resource = "plano"
	ResourceInscricao Resource = "inscricao"
)

// Lookup resolves ownership facts from persistence. OwnerIDOf returns the
// tenant that owns the resource: the professor for course material, the
// aluno for an inscricao. ParentIDOf returns the immediate parent resource
// id (modulo -> produto, aula -> modulo, conteudo -> aula). Both return an
// apperrors NotFound when the id does not exist.
type Lookup interface {
	OwnerIDOf(ctx context.Context, resource Resource, id uuid.UUID) (uuid.UUID, error)
	ParentIDOf(ctx context.Context, resource Resource, id uuid.UUID) (uuid.UUID, error)
}

// Node is one level of a nested resource path, outermost first.
type Node struct {
	Resource Resource
	ID       uuid.UUID
}

// OwnerCache caches owner lookups. A miss is reported as redis.Nil. The
// redis-backed client in internal/cache is the production implementation.
type OwnerCache interface {
	GetOwner(ctx context.Context, resource string, id uuid.UUID) (uuid.UUID, error)
	SetOwner(ctx context.Context, resource string, id, owner uuid.UUID, expiration time.Duration) error
	InvalidateOwner(ctx context.Context, resource string, id uuid.UUID) error
}

// Filter scopes resource access to the caller's own tenant. The owner id is
// always re-derived from persistence against the principal's subject, never
// taken from client input. An ownership mismatch surfaces as the same
// NotFound a genuinely absent id produces.
type Filter struct {
	lookup   Lookup
	cache    OwnerCache
	cacheTTL time.Duration
}

// New creates a Filter. The cache client is optional; owner ids are
// immutable once a resource exists, so cached entries only need dropping
// when the resource is deleted.
func New(lookup Lookup, cacheClient OwnerCache) *Filter {
	return &Filter{
		lookup:   lookup,
		cache:    cacheClient,
		cacheTTL: time.Hour,
	}
}

// Scope verifies that principal owns the resource.
func (f *Filter) Scope(ctx context.Context, principal *auth.Principal, resource Resource, id uuid.UUID) error {
	if principal == nil {
		return apperrors.Unauthenticated("")
	}

	owner, err := f.ownerOf(ctx, resource, id)
	if err != nil {
		return err
	}
	if owner != principal.Subject {
		return apperrors.NotFound(string(resource))
	}
	return nil
}

// ScopeChain verifies a nested resource path, outermost first. Every level
// is checked for ownership on its own, and every child is checked to
// actually hang under the parent named in the path. A single check at the
// leaf would let a caller nest someone else's child under a parent they own.
func (f *Filter) ScopeChain(ctx context.Context, principal *auth.Principal, nodes ...Node) error {
	for i, node := range nodes {
		if err := f.Scope(ctx, principal, node.Resource, node.ID); err != nil {
			return err
		}
		if i == 0 {
			continue
		}
		parent, err := f.lookup.ParentIDOf(ctx, node.Resource, node.ID)
		if err != nil {
			return err
		}
		if parent != nodes[i-1].ID {
			return apperrors.NotFound(string(node.Resource))
		}
	}
	return nil
}

func (f *Filter) ownerOf(ctx context.Context, resource Resource, id uuid.UUID) (uuid.UUID, error) {
	if f.cache != nil {
		if owner, err := f.cache.GetOwner(ctx, string(resource), id); err == nil {
			return owner, nil
		} else if err != redis.Nil {
			// Cache trouble is not a reason to fail the request; fall
			// through to the database.
		}
	}

	owner, err := f.lookup.OwnerIDOf(ctx, resource, id)
	if err != nil {
		return uuid.Nil, err
	}

	if f.cache != nil {
		_ = f.cache.SetOwner(ctx, string(resource), id, owner, f.cacheTTL)
	}
	return owner, nil
}

// Invalidate drops a cached owner entry after a resource is deleted.
func (f *Filter) Invalidate(ctx context.Context, resource Resource, id uuid.UUID) {
	if f.cache != nil {
		_ = f.cache.InvalidateOwner(ctx, string(resource), id)
	}
}
