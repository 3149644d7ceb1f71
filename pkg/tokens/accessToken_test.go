package tokens

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssuer_IssueAndParse(t *testing.T) {
	t.Parallel()

	iss := NewIssuer([]byte("test-jwt-secret"), time.Hour)
	userID := uuid.NewString()

	token, exp, err := iss.Issue(userID, "admin")
	require.NoError(t, err)
	require.NotEmpty(t, token)
	assert.WithinDuration(t, time.Now().Add(time.Hour), exp, 5*time.Second)

	claims, err := iss.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.Subject)
	assert.Equal(t, "admin", claims.Role)
	require.NotNil(t, claims.ExpiresAt)
	assert.WithinDuration(t, exp, claims.ExpiresAt.Time, time.Second)
}

func TestAccessClaimsFromToken_Rejects(t *testing.T) {
	t.Parallel()

	secret := []byte("test-jwt-secret")

	expired := &Issuer{
		Secret: secret,
		TTL:    time.Minute,
		Now:    func() time.Time { return time.Now().Add(-time.Hour) },
	}
	expiredToken, _, err := expired.Issue(uuid.NewString(), "user")
	require.NoError(t, err)

	otherKey, _, err := NewIssuer([]byte("other-secret"), time.Hour).Issue(uuid.NewString(), "user")
	require.NoError(t, err)

	noneAlg, err := jwt.NewWithClaims(jwt.SigningMethodNone, AccessClaims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: "x"},
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{name: "garbage", token: "not-a-jwt"},
		{name: "expired", token: expiredToken},
		{name: "wrong key", token: otherKey},
		{name: "alg none", token: noneAlg},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			claims, err := AccessClaimsFromToken(tt.token, secret)
			require.Error(t, err)
			assert.Nil(t, claims)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}
