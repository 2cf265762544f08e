package renderer

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestIssueTokenRequiresSecret(t *testing.T) {
	a := NewAuthenticator(nil)
	_, err := a.IssueToken("main", "1", time.Minute)
	require.Error(t, err)
}

func TestIssueAndValidateRoundTrip(t *testing.T) {
	a := NewAuthenticator([]byte("test-secret"))
	tok, err := a.IssueToken("main", "42", time.Minute)
	require.NoError(t, err)

	claims, err := a.validate(tok)
	require.NoError(t, err)
	require.Equal(t, "main", claims.Runner)
	require.Equal(t, "42", claims.CID)
}

func TestValidateRejectsExpiredToken(t *testing.T) {
	a := NewAuthenticator([]byte("test-secret"))
	tok, err := a.IssueToken("main", "1", -time.Minute)
	require.NoError(t, err)

	_, err = a.validate(tok)
	require.Error(t, err)
}

func TestValidateRejectsWrongSecret(t *testing.T) {
	a := NewAuthenticator([]byte("one-secret"))
	tok, err := a.IssueToken("main", "1", time.Minute)
	require.NoError(t, err)

	other := NewAuthenticator([]byte("other-secret"))
	_, err = other.validate(tok)
	require.Error(t, err)
}

func TestMiddlewarePassesThroughWithoutSecret(t *testing.T) {
	a := NewAuthenticator(nil)
	called := false
	h := a.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusOK)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/edom", nil))
	require.True(t, called)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestMiddlewareRejectsMissingToken(t *testing.T) {
	a := NewAuthenticator([]byte("secret"))
	h := a.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not run without a token")
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/edom", nil))
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestMiddlewareAcceptsValidToken(t *testing.T) {
	a := NewAuthenticator([]byte("secret"))
	tok, err := a.IssueToken("main", "7", time.Minute)
	require.NoError(t, err)

	var seenCID string
	h := a.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := ClaimsFromContext(r.Context())
		require.True(t, ok)
		seenCID = claims.CID
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/edom", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "7", seenCID)
}
