package http

import (
	"context"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/stagepass/ticket-ledger/services/api/internal/domain"
)

type ctxKey int

const callerKey ctxKey = iota

// Caller identifies an authenticated account on the request context.
type Caller struct {
	Account domain.AccountID
	VIP     bool
}

type accessClaims struct {
	VIP bool `json:"vip"`
	jwt.RegisteredClaims
}

// Auth resolves the caller for routes that act on an account. With a secret
// configured it requires an HS256 Bearer token whose subject is the account
// id. Without one it trusts the X-Account-ID header; that mode is for local
// development only.
func Auth(secret string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if secret == "" {
			account := r.Header.Get("X-Account-ID")
			if account == "" {
				writeError(w, http.StatusUnauthorized, codeUnauthorized, "missing X-Account-ID header")
				return
			}
			ctx := withCaller(r.Context(), Caller{Account: domain.AccountID(account)})
			next.ServeHTTP(w, r.WithContext(ctx))
			return
		}

		header := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			writeError(w, http.StatusUnauthorized, codeUnauthorized, "missing bearer token")
			return
		}

		var claims accessClaims
		parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
			return []byte(secret), nil
		}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
		if err != nil || !parsed.Valid || claims.Subject == "" {
			writeError(w, http.StatusUnauthorized, codeUnauthorized, "invalid token")
			return
		}

		ctx := withCaller(r.Context(), Caller{
			Account: domain.AccountID(claims.Subject),
			VIP:     claims.VIP,
		})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func withCaller(ctx context.Context, c Caller) context.Context {
	return context.WithValue(ctx, callerKey, c)
}

// CallerFrom returns the authenticated caller, if any.
func CallerFrom(ctx context.Context) (Caller, bool) {
	c, ok := ctx.Value(callerKey).(Caller)
	return c, ok
}
