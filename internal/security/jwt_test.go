package security_test

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/lestrrat-go/jwx/v2/jwk"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/woneiros/travel-planner/internal/config"
	"github.com/woneiros/travel-planner/internal/security"
)

const testSecret = "test-secret-key-with-32-chars!!"

func signHS256(t *testing.T, claims security.Claims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return token
}

func validClaims(sub string) security.Claims {
	now := time.Now()
	return security.Claims{
		Email: "traveler@example.com",
		Name:  "Test Traveler",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   sub,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(15 * time.Minute)),
		},
	}
}

func TestNewVerifier_RequiresAKeySource(t *testing.T) {
	_, err := security.NewVerifier(config.AuthConfig{Enabled: true})
	assert.ErrorIs(t, err, security.ErrNoVerifier)
}

func TestVerifier_SharedSecret(t *testing.T) {
	v, err := security.NewVerifier(config.AuthConfig{JWTSecret: testSecret})
	require.NoError(t, err)

	identity, err := v.Verify(context.Background(), signHS256(t, validClaims("user_2abc")))
	require.NoError(t, err)
	assert.Equal(t, "user_2abc", identity.UserID)
	assert.Equal(t, "traveler@example.com", identity.Email)
	assert.Equal(t, "Test Traveler", identity.Name)
}

func TestVerifier_Rejects(t *testing.T) {
	v, err := security.NewVerifier(config.AuthConfig{
		JWTSecret:         testSecret,
		ClerkIssuer:       "https://clerk.example.dev",
		AuthorizedParties: []string{"http://localhost:3000"},
	})
	require.NoError(t, err)

	expired := validClaims("user_1")
	expired.Issuer = "https://clerk.example.dev"
	expired.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Hour))

	wrongIssuer := validClaims("user_1")
	wrongIssuer.Issuer = "https://evil.example"

	noSubject := validClaims("")
	noSubject.Issuer = "https://clerk.example.dev"

	badParty := validClaims("user_1")
	badParty.Issuer = "https://clerk.example.dev"
	badParty.AuthorizedParty = "https://other.example"

	otherKey, err := jwt.NewWithClaims(jwt.SigningMethodHS256, validClaims("user_1")).SignedString([]byte("another-secret"))
	require.NoError(t, err)

	tests := map[string]string{
		"expired":      signHS256(t, expired),
		"wrong issuer": signHS256(t, wrongIssuer),
		"no subject":   signHS256(t, noSubject),
		"bad party":    signHS256(t, badParty),
		"wrong secret": otherKey,
		"garbage":      "not-a-token",
	}

	for name, token := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := v.Verify(context.Background(), token)
			assert.Error(t, err)
		})
	}
}

func TestVerifier_JWKS(t *testing.T) {
	priv, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	pub, err := jwk.FromRaw(priv.Public())
	require.NoError(t, err)
	require.NoError(t, pub.Set(jwk.KeyIDKey, "kid-1"))
	set := jwk.NewSet()
	require.NoError(t, set.AddKey(pub))

	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(set)
	}))
	defer srv.Close()

	v, err := security.NewVerifier(config.AuthConfig{ClerkJWKSURL: srv.URL})
	require.NoError(t, err)

	sign := func(kid string) string {
		token := jwt.NewWithClaims(jwt.SigningMethodRS256, validClaims("user_rsa"))
		token.Header["kid"] = kid
		s, err := token.SignedString(priv)
		require.NoError(t, err)
		return s
	}

	identity, err := v.Verify(context.Background(), sign("kid-1"))
	require.NoError(t, err)
	assert.Equal(t, "user_rsa", identity.UserID)

	_, err = v.Verify(context.Background(), sign("kid-1"))
	require.NoError(t, err)
	assert.Equal(t, int32(1), hits.Load())

	_, err = v.Verify(context.Background(), sign("unknown"))
	assert.Error(t, err)
	assert.Equal(t, int32(2), hits.Load())

	// HMAC tokens are refused when only JWKS is configured
	_, err = v.Verify(context.Background(), signHS256(t, validClaims("user_rsa")))
	assert.Error(t, err)
}
