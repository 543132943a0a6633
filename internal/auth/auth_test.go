package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/aanand-mishra/crud-api/internal/config"
)

var testJWT = config.JWT{
	Key:               "test-signing-key-that-is-long-enough-0123",
	Issuer:            "crud-api-test",
	Audience:          "crud-api-test-clients",
	DurationInMinutes: 30,
}

var testCreds = StaticVerifier{Username: "admin", Password: "password"}

// fakeClock is a settable time source.
type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestGate(t *testing.T) (*Gate, *fakeClock) {
	t.Helper()
	clock := &fakeClock{t: time.Now()}
	return NewGate(testJWT, testCreds, WithClock(clock.Now)), clock
}

// =============================================================================
// Verifier
// =============================================================================

func TestStaticVerifier(t *testing.T) {
	tests := []struct {
		name     string
		username string
		password string
		want     bool
	}{
		{"exact pair", "admin", "password", true},
		{"wrong password", "admin", "Password", false},
		{"wrong username", "Admin", "password", false},
		{"both wrong", "root", "toor", false},
		{"empty", "", "", false},
		{"trailing space", "admin ", "password", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, testCreds.Verify(tt.username, tt.password))
		})
	}
}

func TestStaticVerifier_BcryptHash(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	require.NoError(t, err)

	v := StaticVerifier{Username: "ops", Password: "ignored", PasswordHash: string(hash)}

	assert.True(t, v.Verify("ops", "s3cret"))
	assert.False(t, v.Verify("ops", "ignored"))
	assert.False(t, v.Verify("other", "s3cret"))
}

func TestStaticVerifier_EmptyConfiguredPasswordRejectsAll(t *testing.T) {
	v := StaticVerifier{Username: "admin"}
	assert.False(t, v.Verify("admin", ""))
}

// =============================================================================
// Login / VerifyToken
// =============================================================================

func TestGate_LoginIssuesVerifiableToken(t *testing.T) {
	gate, clock := newTestGate(t)

	token, err := gate.Login("admin", "password")
	require.NoError(t, err)
	require.NotEmpty(t, token.Value)
	assert.WithinDuration(t, clock.Now().Add(30*time.Minute), token.ExpiresAt, time.Second)

	claims, err := gate.VerifyToken(token.Value)
	require.NoError(t, err)
	assert.Equal(t, "admin", claims.Subject)
	assert.Equal(t, testJWT.Issuer, claims.Issuer)
	assert.Equal(t, jwt.ClaimStrings{testJWT.Audience}, claims.Audience)
	assert.NotEmpty(t, claims.ID)
}

func TestGate_LoginRejectsBadCredentials(t *testing.T) {
	gate, _ := newTestGate(t)

	token, err := gate.Login("admin", "wrong")
	assert.ErrorIs(t, err, ErrUnauthorized)
	assert.Empty(t, token.Value)
}

func TestGate_LoginUsesPluggableVerifier(t *testing.T) {
	users := map[string]string{"alice": "a", "bob": "b"}
	gate := NewGate(testJWT, VerifierFunc(func(u, p string) bool {
		want, ok := users[u]
		return ok && want == p
	}))

	_, err := gate.Login("alice", "a")
	assert.NoError(t, err)
	_, err = gate.Login("bob", "b")
	assert.NoError(t, err)
	_, err = gate.Login("bob", "a")
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestGate_VerifyTokenRejectsAfterExpiry(t *testing.T) {
	gate, clock := newTestGate(t)

	token, err := gate.Login("admin", "password")
	require.NoError(t, err)

	clock.Advance(29 * time.Minute)
	_, err = gate.VerifyToken(token.Value)
	assert.NoError(t, err, "still valid before expiry")

	clock.Advance(2 * time.Minute)
	_, err = gate.VerifyToken(token.Value)
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestGate_VerifyTokenRejectsForeignTokens(t *testing.T) {
	gate, clock := newTestGate(t)
	now := clock.Now()

	sign := func(method jwt.SigningMethod, key any, claims jwt.RegisteredClaims) string {
		s, err := jwt.NewWithClaims(method, claims).SignedString(key)
		require.NoError(t, err)
		return s
	}
	valid := jwt.RegisteredClaims{
		Subject:   "admin",
		Issuer:    testJWT.Issuer,
		Audience:  jwt.ClaimStrings{testJWT.Audience},
		ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
	}

	wrongIssuer := valid
	wrongIssuer.Issuer = "someone-else"
	wrongAudience := valid
	wrongAudience.Audience = jwt.ClaimStrings{"other-clients"}
	noExpiry := valid
	noExpiry.ExpiresAt = nil

	tests := []struct {
		name  string
		token string
	}{
		{"malformed", "not-a-jwt"},
		{"empty", ""},
		{"wrong key", sign(jwt.SigningMethodHS256, []byte("a-completely-different-signing-key!!"), valid)},
		{"wrong algorithm", sign(jwt.SigningMethodHS512, []byte(testJWT.Key), valid)},
		{"alg none", sign(jwt.SigningMethodNone, jwt.UnsafeAllowNoneSignatureType, valid)},
		{"wrong issuer", sign(jwt.SigningMethodHS256, []byte(testJWT.Key), wrongIssuer)},
		{"wrong audience", sign(jwt.SigningMethodHS256, []byte(testJWT.Key), wrongAudience)},
		{"no expiry", sign(jwt.SigningMethodHS256, []byte(testJWT.Key), noExpiry)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims, err := gate.VerifyToken(tt.token)
			assert.Nil(t, claims)
			assert.ErrorIs(t, err, ErrUnauthorized)
		})
	}
}

// =============================================================================
// Require middleware
// =============================================================================

func TestGate_Require(t *testing.T) {
	gate, clock := newTestGate(t)

	token, err := gate.Login("admin", "password")
	require.NoError(t, err)

	var reached bool
	var subject string
	handler := gate.Require(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reached = true
		subject, _ = Subject(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	serve := func(header string) *httptest.ResponseRecorder {
		reached, subject = false, ""
		req := httptest.NewRequest(http.MethodGet, "/students", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec
	}

	t.Run("valid token", func(t *testing.T) {
		rec := serve("Bearer " + token.Value)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.True(t, reached)
		assert.Equal(t, "admin", subject)
	})

	t.Run("lowercase scheme", func(t *testing.T) {
		rec := serve("bearer " + token.Value)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	rejected := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"no bearer prefix", token.Value},
		{"wrong scheme", "Basic " + token.Value},
		{"empty token", "Bearer "},
		{"garbage token", "Bearer abc.def.ghi"},
	}
	for _, tt := range rejected {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(tt.header)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.Equal(t, "Bearer", rec.Header().Get("WWW-Authenticate"))
			assert.Empty(t, rec.Body.String())
			assert.False(t, reached)
		})
	}

	t.Run("expired token", func(t *testing.T) {
		clock.Advance(time.Hour)
		rec := serve("Bearer " + token.Value)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.False(t, reached)
	})
}
