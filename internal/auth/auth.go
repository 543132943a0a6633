// Package auth issues and verifies HS256 bearer tokens.
//
// Tokens are stateless: validity is decided entirely by signature,
// issuer, audience and expiry at verification time. There is no
// revocation list, so token lifetimes should stay short.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/aanand-mishra/crud-api/internal/config"
)

// ErrUnauthorized is returned for bad credentials and for every kind of
// invalid token. Callers must not surface the wrapped cause to clients.
var ErrUnauthorized = errors.New("unauthorized")

// Claims carried by every token. The subject is the login username.
type Claims struct {
	jwt.RegisteredClaims
}

// Token is a freshly issued bearer token.
type Token struct {
	Value     string
	ExpiresAt time.Time
}

// Gate authenticates logins and guards protected routes.
type Gate struct {
	key      []byte
	issuer   string
	audience string
	ttl      time.Duration
	verifier Verifier
	now      func() time.Time
}

// Option customises a Gate.
type Option func(*Gate)

// WithClock replaces time.Now; tests use it to move past expiry.
func WithClock(now func() time.Time) Option {
	return func(g *Gate) { g.now = now }
}

// NewGate builds a Gate from the JWT settings and a credential verifier.
func NewGate(cfg config.JWT, verifier Verifier, opts ...Option) *Gate {
	g := &Gate{
		key:      []byte(cfg.Key),
		issuer:   cfg.Issuer,
		audience: cfg.Audience,
		ttl:      cfg.Duration(),
		verifier: verifier,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Login checks the pair and, on success, issues a token for username.
func (g *Gate) Login(username, password string) (Token, error) {
	if !g.verifier.Verify(username, password) {
		return Token{}, ErrUnauthorized
	}

	now := g.now()
	exp := now.Add(g.ttl)
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   username,
			Issuer:    g.issuer,
			Audience:  jwt.ClaimStrings{g.audience},
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(g.key)
	if err != nil {
		return Token{}, fmt.Errorf("auth.Login: sign: %w", err)
	}

	return Token{Value: signed, ExpiresAt: exp}, nil
}

// VerifyToken parses and validates raw. Any failure wraps ErrUnauthorized.
func (g *Gate) VerifyToken(raw string) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(raw, claims,
		func(*jwt.Token) (interface{}, error) { return g.key, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(g.issuer),
		jwt.WithAudience(g.audience),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(g.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnauthorized, err)
	}
	return claims, nil
}

type contextKey struct{}

// Subject returns the authenticated username stored by Require.
func Subject(ctx context.Context) (string, bool) {
	sub, ok := ctx.Value(contextKey{}).(string)
	return sub, ok
}

// Require rejects requests without a valid bearer token with 401 and an
// empty body. Valid requests continue with the subject in the context.
func (g *Gate) Require(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, ok := bearerToken(r)
		if !ok {
			unauthorized(w)
			return
		}

		claims, err := g.VerifyToken(raw)
		if err != nil {
			slog.DebugContext(r.Context(), "token rejected",
				slog.String("path", r.URL.Path),
				slog.String("error", err.Error()))
			unauthorized(w)
			return
		}

		ctx := context.WithValue(r.Context(), contextKey{}, claims.Subject)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("WWW-Authenticate", `Bearer`)
	w.WriteHeader(http.StatusUnauthorized)
}
