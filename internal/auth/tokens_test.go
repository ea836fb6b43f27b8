package auth

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestIssuer() *TokenIssuer {
	return NewTokenIssuer("access-secret", 15*time.Minute, "refresh-secret", 7*24*time.Hour)
}

func TestIssueAndVerify(t *testing.T) {
	iss := newTestIssuer()

	pair, err := iss.Issue(context.Background(), "user-1", "a@b.com")
	require.NoError(t, err)
	require.NotEmpty(t, pair.AccessToken)
	require.NotEmpty(t, pair.RefreshToken)

	access, err := iss.Verify(AccessToken, pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "user-1", access.UserID)
	assert.Equal(t, "a@b.com", access.Email)
	assert.True(t, strings.HasPrefix(access.Subject, "token"))
	assert.Len(t, access.Subject, len("token")+10)

	refresh, err := iss.Verify(RefreshToken, pair.RefreshToken)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(refresh.Subject, "refresh"))
	assert.Equal(t, Payload{Sub: refresh.Subject, Email: "a@b.com", ID: "user-1"}, refresh.Payload())

	_, err = iss.Verify(RefreshToken, pair.AccessToken)
	assert.ErrorIs(t, err, ErrInvalidToken)
	_, err = iss.Verify(AccessToken, pair.RefreshToken)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestIssueDistinctSubjects(t *testing.T) {
	iss := newTestIssuer()
	ctx := context.Background()

	a, err := iss.Issue(ctx, "user-1", "a@b.com")
	require.NoError(t, err)
	b, err := iss.Issue(ctx, "user-1", "a@b.com")
	require.NoError(t, err)

	ca, err := iss.Verify(AccessToken, a.AccessToken)
	require.NoError(t, err)
	cb, err := iss.Verify(AccessToken, b.AccessToken)
	require.NoError(t, err)
	assert.NotEqual(t, ca.Subject, cb.Subject)
	assert.NotEqual(t, a.AccessToken, b.AccessToken)
}

func TestVerifyKindWithSharedSecret(t *testing.T) {
	iss := NewTokenIssuer("same", 15*time.Minute, "same", time.Hour)

	pair, err := iss.Issue(context.Background(), "user-1", "a@b.com")
	require.NoError(t, err)

	_, err = iss.Verify(RefreshToken, pair.AccessToken)
	assert.ErrorIs(t, err, ErrInvalidToken)
	_, err = iss.Verify(AccessToken, pair.RefreshToken)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = iss.Verify(AccessToken, pair.AccessToken)
	assert.NoError(t, err)
	_, err = iss.Verify(RefreshToken, pair.RefreshToken)
	assert.NoError(t, err)
}

func TestVerifyExpired(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	iss := newTestIssuer().WithClock(func() time.Time { return now })

	pair, err := iss.Issue(context.Background(), "user-1", "a@b.com")
	require.NoError(t, err)

	now = now.Add(16 * time.Minute)
	_, err = iss.Verify(AccessToken, pair.AccessToken)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = iss.Verify(RefreshToken, pair.RefreshToken)
	assert.NoError(t, err)
}

func TestVerifyRejectsOtherSigningMethods(t *testing.T) {
	iss := newTestIssuer()

	tok := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{
		"id":  "user-1",
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	s, err := tok.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = iss.Verify(AccessToken, s)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = iss.Verify(AccessToken, "garbage")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestRandomCode(t *testing.T) {
	for i := 0; i < 50; i++ {
		c, err := RandomCode()
		require.NoError(t, err)
		assert.Len(t, c, 6)
		for _, r := range c {
			assert.True(t, r >= '0' && r <= '9')
		}
	}
}

func TestBcryptHasher(t *testing.T) {
	h := BcryptHasher{Cost: 4}
	hash, err := h.Hash("Pw1")
	require.NoError(t, err)
	assert.NotEqual(t, "Pw1", hash)
	assert.True(t, h.Compare(hash, "Pw1"))
	assert.False(t, h.Compare(hash, "pw1"))
}
