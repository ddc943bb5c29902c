package http

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func callerEcho(t *testing.T, sink *Caller) http.Handler {
	t.Helper()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		caller, ok := CallerFrom(r.Context())
		if !ok {
			t.Fatal("expected caller on context")
		}
		*sink = caller
		w.WriteHeader(http.StatusOK)
	})
}

func signToken(t *testing.T, secret, subject string, vip bool) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, accessClaims{
		VIP: vip,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

func TestAuth_HeaderMode(t *testing.T) {
	t.Parallel()

	var caller Caller
	handler := Auth("", callerEcho(t, &caller))

	req := httptest.NewRequest(http.MethodGet, "/v1/me/tickets", nil)
	req.Header.Set("X-Account-ID", "alice")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	if caller.Account != "alice" || caller.VIP {
		t.Fatalf("unexpected caller %+v", caller)
	}

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/me/tickets", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401 without header, got %d", rec.Code)
	}
}

func TestAuth_JWT(t *testing.T) {
	t.Parallel()

	const secret = "test-secret"

	t.Run("valid token", func(t *testing.T) {
		t.Parallel()
		var caller Caller
		handler := Auth(secret, callerEcho(t, &caller))

		req := httptest.NewRequest(http.MethodGet, "/v1/me/tickets", nil)
		req.Header.Set("Authorization", "Bearer "+signToken(t, secret, "alice", true))
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d", rec.Code)
		}
		if caller.Account != "alice" {
			t.Fatalf("expected account alice, got %q", caller.Account)
		}
		if !caller.VIP {
			t.Fatal("expected vip claim to carry through")
		}
	})

	rejected := []struct {
		name  string
		setup func(t *testing.T, r *http.Request)
	}{
		{
			name:  "missing bearer",
			setup: func(t *testing.T, r *http.Request) {},
		},
		{
			name: "wrong secret",
			setup: func(t *testing.T, r *http.Request) {
				r.Header.Set("Authorization", "Bearer "+signToken(t, "other-secret", "alice", false))
			},
		},
		{
			name: "missing subject",
			setup: func(t *testing.T, r *http.Request) {
				r.Header.Set("Authorization", "Bearer "+signToken(t, secret, "", false))
			},
		},
		{
			name: "header mode header ignored",
			setup: func(t *testing.T, r *http.Request) {
				r.Header.Set("X-Account-ID", "alice")
			},
		},
		{
			name: "garbage token",
			setup: func(t *testing.T, r *http.Request) {
				r.Header.Set("Authorization", "Bearer not.a.token")
			},
		},
	}

	for _, tt := range rejected {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			handler := Auth(secret, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				t.Fatal("handler must not run")
			}))

			req := httptest.NewRequest(http.MethodGet, "/v1/me/tickets", nil)
			tt.setup(t, req)
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if rec.Code != http.StatusUnauthorized {
				t.Fatalf("expected status 401, got %d", rec.Code)
			}
		})
	}
}
