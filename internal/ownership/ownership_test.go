package ownership

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/andrefranchin/treine-me-api/internal/apperrors"
	"github.com/andrefranchin/treine-me-api/internal/auth"
)

type fakeLookup struct {
	owners  map[uuid.UUID]uuid.UUID
	parents map[uuid.UUID]uuid.UUID
}

func (f *fakeLookup) OwnerIDOf(_ context.Context, resource Resource, id uuid.UUID) (uuid.UUID, error) {
	owner, ok := f.owners[id]
	if !ok {
		return uuid.Nil, apperrors.NotFound(string(resource))
	}
	return owner, nil
}

func (f *fakeLookup) ParentIDOf(_ context.Context, resource Resource, id uuid.UUID) (uuid.UUID, error) {
	parent, ok := f.parents[id]
	if !ok {
		return uuid.Nil, apperrors.NotFound(string(resource))
	}
	return parent, nil
}

func principalFor(id uuid.UUID) *auth.Principal {
	return &auth.Principal{Subject: id, Role: auth.RoleProfessor}
}

func TestScopeAllowsOwner(t *testing.T) {
	owner := uuid.New()
	produto := uuid.New()
	filter := New(&fakeLookup{owners: map[uuid.UUID]uuid.UUID{produto: owner}}, nil)

	err := filter.Scope(context.Background(), principalFor(owner), ResourceProduto, produto)
	require.NoError(t, err)
}

// A foreign resource and a missing resource must be indistinguishable to
// the caller.
func TestScopeHidesForeignResourceAsNotFound(t *testing.T) {
	owner := uuid.New()
	intruder := uuid.New()
	produto := uuid.New()
	filter := New(&fakeLookup{owners: map[uuid.UUID]uuid.UUID{produto: owner}}, nil)

	foreignErr := filter.Scope(context.Background(), principalFor(intruder), ResourceProduto, produto)
	require.True(t, apperrors.IsKind(foreignErr, apperrors.KindNotFound))

	missingErr := filter.Scope(context.Background(), principalFor(intruder), ResourceProduto, uuid.New())
	require.True(t, apperrors.IsKind(missingErr, apperrors.KindNotFound))

	require.Equal(t, foreignErr.Error(), missingErr.Error())
}

func TestScopeRejectsNilPrincipal(t *testing.T) {
	filter := New(&fakeLookup{}, nil)

	err := filter.Scope(context.Background(), nil, ResourceProduto, uuid.New())
	require.True(t, apperrors.IsKind(err, apperrors.KindUnauthenticated))
}

func TestScopeChainAllowsOwnedPath(t *testing.T) {
	owner := uuid.New()
	produto := uuid.New()
	modulo := uuid.New()
	aula := uuid.New()

	filter := New(&fakeLookup{
		owners: map[uuid.UUID]uuid.UUID{
			produto: owner,
			modulo:  owner,
			aula:    owner,
		},
		parents: map[uuid.UUID]uuid.UUID{
			modulo: produto,
			aula:   modulo,
		},
	}, nil)

	err := filter.ScopeChain(context.Background(), principalFor(owner),
		Node{ResourceProduto, produto},
		Node{ResourceModulo, modulo},
		Node{ResourceAula, aula},
	)
	require.NoError(t, err)
}

// Owning both ends is not enough: the child must actually hang under the
// parent named in the path.
func TestScopeChainRejectsDetachedChild(t *testing.T) {
	owner := uuid.New()
	produtoA := uuid.New()
	produtoB := uuid.New()
	modulo := uuid.New()

	filter := New(&fakeLookup{
		owners: map[uuid.UUID]uuid.UUID{
			produtoA: owner,
			produtoB: owner,
			modulo:   owner,
		},
		parents: map[uuid.UUID]uuid.UUID{
			modulo: produtoB,
		},
	}, nil)

	err := filter.ScopeChain(context.Background(), principalFor(owner),
		Node{ResourceProduto, produtoA},
		Node{ResourceModulo, modulo},
	)
	require.True(t, apperrors.IsKind(err, apperrors.KindNotFound))
}

func TestScopeChainRejectsForeignAncestor(t *testing.T) {
	owner := uuid.New()
	other := uuid.New()
	produto := uuid.New()
	modulo := uuid.New()

	filter := New(&fakeLookup{
		owners: map[uuid.UUID]uuid.UUID{
			produto: other,
			modulo:  owner,
		},
		parents: map[uuid.UUID]uuid.UUID{
			modulo: produto,
		},
	}, nil)

	err := filter.ScopeChain(context.Background(), principalFor(owner),
		Node{ResourceProduto, produto},
		Node{ResourceModulo, modulo},
	)
	require.True(t, apperrors.IsKind(err, apperrors.KindNotFound))
}
