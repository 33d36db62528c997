package security

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/woneiros/travel-planner/internal/config"
)

// ErrNoVerifier is returned when auth is enabled but neither a JWKS URL nor a shared secret is configured
var ErrNoVerifier = errors.New("auth enabled but no token verifier configured")

// Claims are the session token claims issued by Clerk
type Claims struct {
	Email           string `json:"email,omitempty"`
	Name            string `json:"name,omitempty"`
	AuthorizedParty string `json:"azp,omitempty"`
	jwt.RegisteredClaims
}

// Identity is the verified caller
type Identity struct {
	UserID string `json:"user_id"`
	Email  string `json:"email,omitempty"`
	Name   string `json:"name,omitempty"`
}

// Verifier validates bearer tokens against the Clerk JWKS or a shared secret
type Verifier struct {
	secret            []byte
	jwks              *JWKSCache
	issuer            string
	authorizedParties []string
}

// NewVerifier builds a verifier from the auth configuration
func NewVerifier(cfg config.AuthConfig) (*Verifier, error) {
	v := &Verifier{
		issuer:            cfg.ClerkIssuer,
		authorizedParties: cfg.AuthorizedParties,
	}
	if cfg.JWTSecret != "" {
		v.secret = []byte(cfg.JWTSecret)
	}
	if cfg.ClerkJWKSURL != "" {
		v.jwks = NewJWKSCache(cfg.ClerkJWKSURL, time.Hour)
	}
	if v.secret == nil && v.jwks == nil {
		return nil, ErrNoVerifier
	}
	return v, nil
}

// Verify parses and validates tokenString and returns the caller identity
func (v *Verifier) Verify(ctx context.Context, tokenString string) (*Identity, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods(v.validMethods()),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(5 * time.Second),
	}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		switch token.Method.(type) {
		case *jwt.SigningMethodHMAC:
			if v.secret == nil {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return v.secret, nil
		case *jwt.SigningMethodRSA, *jwt.SigningMethodECDSA:
			if v.jwks == nil {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			kid, _ := token.Header["kid"].(string)
			if kid == "" {
				return nil, errors.New("token has no key id")
			}
			return v.jwks.PublicKey(ctx, kid)
		default:
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token")
	}

	if claims.Subject == "" {
		return nil, errors.New("token has no subject")
	}

	if len(v.authorizedParties) > 0 && claims.AuthorizedParty != "" &&
		!slices.Contains(v.authorizedParties, claims.AuthorizedParty) {
		return nil, fmt.Errorf("unauthorized party: %s", claims.AuthorizedParty)
	}

	return &Identity{
		UserID: claims.Subject,
		Email:  claims.Email,
		Name:   claims.Name,
	}, nil
}

func (v *Verifier) validMethods() []string {
	var methods []string
	if v.secret != nil {
		methods = append(methods, "HS256", "HS384", "HS512")
	}
	if v.jwks != nil {
		methods = append(methods, "RS256", "RS384", "RS512", "ES256", "ES384")
	}
	return methods
}
