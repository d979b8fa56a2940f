package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueAndVerify(t *testing.T) {
	token, err := IssueAdminToken("s3cret", "admin@nixtia.com", time.Hour)
	require.NoError(t, err)

	claims, err := VerifyAdmin("s3cret", token)
	require.NoError(t, err)
	assert.Equal(t, "admin@nixtia.com", claims.Subject)
	assert.Equal(t, RoleAdmin, claims.Role)
}

func TestVerifyRejects(t *testing.T) {
	good, err := IssueAdminToken("s3cret", "a", time.Hour)
	require.NoError(t, err)
	expired, err := IssueAdminToken("s3cret", "a", -time.Minute)
	require.NoError(t, err)
	customer, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		Role:             "customer",
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
	}).SignedString([]byte("s3cret"))
	require.NoError(t, err)
	noExp, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{Role: RoleAdmin}).SignedString([]byte("s3cret"))
	require.NoError(t, err)

	_, err = VerifyAdmin("other", good)
	assert.ErrorIs(t, err, ErrInvalidToken)
	_, err = VerifyAdmin("s3cret", expired)
	assert.ErrorIs(t, err, ErrInvalidToken)
	_, err = VerifyAdmin("s3cret", "not-a-jwt")
	assert.ErrorIs(t, err, ErrInvalidToken)
	_, err = VerifyAdmin("s3cret", noExp)
	assert.ErrorIs(t, err, ErrInvalidToken)
	_, err = VerifyAdmin("s3cret", customer)
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = IssueAdminToken("", "a", time.Hour)
	assert.Error(t, err)
}
