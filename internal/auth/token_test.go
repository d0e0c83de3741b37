package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func newTestCodec(t *testing.T, now func() time.Time) *TokenCodec {
	t.Helper()
	codec, err := NewTokenCodec(CodecConfig{
		Issuer:   "treine-me-api",
		Audience: "treine-me-app",
		TTL:      7 * 24 * time.Hour,
		Key:      []byte("test-signing-key"),
		Now:      now,
	})
	require.NoError(t, err)
	return codec
}

func TestIssueAndVerifyRoundTrip(t *testing.T) {
	codec := newTestCodec(t, nil)
	subject := uuid.New()

	token, err := codec.Issue(subject, RoleProfessor, "ana@example.com")
	require.NoError(t, err)

	p, err := codec.Verify(token)
	require.NoError(t, err)
	require.Equal(t, subject, p.Subject)
	require.Equal(t, RoleProfessor, p.Role)
	require.Equal(t, "ana@example.com", p.Email)
	require.Equal(t, p.IssuedAt.Add(7*24*time.Hour).Unix(), p.ExpiresAt.Unix())
}

func TestVerifyRejectsExpiredToken(t *testing.T) {
	issued := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	clock := issued
	codec := newTestCodec(t, func() time.Time { return clock })

	token, err := codec.Issue(uuid.New(), RoleAluno, "joao@example.com")
	require.NoError(t, err)

	// Still valid just inside the window.
	clock = issued.Add(7*24*time.Hour - time.Minute)
	_, err = codec.Verify(token)
	require.NoError(t, err)

	// Expired past it.
	clock = issued.Add(7*24*time.Hour + time.Minute)
	_, err = codec.Verify(token)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyRejectsTamperedSignature(t *testing.T) {
	codec := newTestCodec(t, nil)

	token, err := codec.Issue(uuid.New(), RoleAdmin, "admin@example.com")
	require.NoError(t, err)

	parts := strings.Split(token, ".")
	require.Len(t, parts, 3)

	// Flip a character in the signature segment.
	sig := []byte(parts[2])
	if sig[0] == 'A' {
		sig[0] = 'B'
	} else {
		sig[0] = 'A'
	}
	tampered := parts[0] + "." + parts[1] + "." + string(sig)

	_, err = codec.Verify(tampered)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyRejectsWrongKey(t *testing.T) {
	codec := newTestCodec(t, nil)
	other, err := NewTokenCodec(CodecConfig{
		Issuer:   "treine-me-api",
		Audience: "treine-me-app",
		Key:      []byte("a-different-key"),
	})
	require.NoError(t, err)

	token, err := other.Issue(uuid.New(), RoleProfessor, "x@example.com")
	require.NoError(t, err)

	_, err = codec.Verify(token)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyAcceptsPreviousKeyAfterRotation(t *testing.T) {
	oldKey := []byte("old-signing-key")
	oldCodec, err := NewTokenCodec(CodecConfig{
		Issuer:   "treine-me-api",
		Audience: "treine-me-app",
		Key:      oldKey,
	})
	require.NoError(t, err)

	token, err := oldCodec.Issue(uuid.New(), RoleProfessor, "ana@example.com")
	require.NoError(t, err)

	rotated, err := NewTokenCodec(CodecConfig{
		Issuer:       "treine-me-api",
		Audience:     "treine-me-app",
		Key:          []byte("new-signing-key"),
		PreviousKeys: [][]byte{oldKey},
	})
	require.NoError(t, err)

	// Old tokens still verify; new tokens sign with the new key.
	_, err = rotated.Verify(token)
	require.NoError(t, err)

	fresh, err := rotated.Issue(uuid.New(), RoleProfessor, "bia@example.com")
	require.NoError(t, err)
	_, err = oldCodec.Verify(fresh)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyRejectsWrongIssuerOrAudience(t *testing.T) {
	key := []byte("shared-key")
	codec, err := NewTokenCodec(CodecConfig{
		Issuer:   "treine-me-api",
		Audience: "treine-me-app",
		Key:      key,
	})
	require.NoError(t, err)

	otherIssuer, err := NewTokenCodec(CodecConfig{
		Issuer:   "someone-else",
		Audience: "treine-me-app",
		Key:      key,
	})
	require.NoError(t, err)
	token, err := otherIssuer.Issue(uuid.New(), RoleAluno, "x@example.com")
	require.NoError(t, err)
	_, err = codec.Verify(token)
	require.ErrorIs(t, err, ErrInvalidToken)

	otherAudience, err := NewTokenCodec(CodecConfig{
		Issuer:   "treine-me-api",
		Audience: "another-app",
		Key:      key,
	})
	require.NoError(t, err)
	token, err = otherAudience.Issue(uuid.New(), RoleAluno, "x@example.com")
	require.NoError(t, err)
	_, err = codec.Verify(token)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyRejectsGarbage(t *testing.T) {
	codec := newTestCodec(t, nil)

	for _, tok := range []string{"", "not-a-token", "a.b.c"} {
		_, err := codec.Verify(tok)
		require.ErrorIs(t, err, ErrInvalidToken)
	}
}

func TestIssueRejectsUnknownRole(t *testing.T) {
	codec := newTestCodec(t, nil)

	_, err := codec.Issue(uuid.New(), Role("SUPERUSER"), "x@example.com")
	require.Error(t, err)
}

func TestNewTokenCodecRequiresKey(t *testing.T) {
	_, err := NewTokenCodec(CodecConfig{Issuer: "x", Audience: "y"})
	require.Error(t, err)
}
