package renderer

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims is the renderer bridge's JWT claim set: which runner and
// coroutine a bearer token authorizes a renderer connection for, so a
// token minted for one coroutine's stream can't be replayed against
// another's.
type Claims struct {
	jwt.RegisteredClaims
	Runner string `json:"runner"`
	CID    string `json:"cid,omitempty"`
}

type ctxKey int

const claimsCtxKey ctxKey = iota

// ClaimsFromContext recovers the verified Claims a request's
// middleware attached, if any.
func ClaimsFromContext(ctx context.Context) (*Claims, bool) {
	c, ok := ctx.Value(claimsCtxKey).(*Claims)
	return c, ok
}

// Authenticator verifies bearer tokens against a single HMAC secret,
// adapted from the teacher's internal/auth GenerateToken/ValidateToken
// pair (itself pinned to HS256 to rule out algorithm-confusion
// attacks). A nil/empty secret disables verification entirely, so
// local development doesn't need a key to exercise the bridge.
type Authenticator struct {
	secret []byte
}

func NewAuthenticator(secret []byte) *Authenticator {
	return &Authenticator{secret: secret}
}

// IssueToken mints a bearer token scoped to runner (and, if non-empty,
// one coroutine), valid for ttl.
func (a *Authenticator) IssueToken(runner, cid string, ttl time.Duration) (string, error) {
	if len(a.secret) == 0 {
		return "", errors.New("renderer: no secret configured, cannot issue tokens")
	}
	now := time.Now()
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Runner: runner,
		CID:    cid,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(a.secret)
}

func (a *Authenticator) validate(tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (any, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v (only HS256 allowed)", t.Header["alg"])
		}
		return a.secret, nil
	})
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errors.New("renderer: invalid token")
	}
	return claims, nil
}

// Middleware enforces a valid bearer token when a secret is
// configured; it is a no-op pass-through otherwise.
func (a *Authenticator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if len(a.secret) == 0 {
			next.ServeHTTP(w, r)
			return
		}
		header := r.Header.Get("Authorization")
		tokenStr, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || tokenStr == "" {
			writeJSONError(w, http.StatusUnauthorized, "missing bearer token")
			return
		}
		claims, err := a.validate(tokenStr)
		if err != nil {
			writeJSONError(w, http.StatusUnauthorized, "invalid bearer token: "+err.Error())
			return
		}
		ctx := context.WithValue(r.Context(), claimsCtxKey, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
