package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"card-battle/internal/apperr"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
)

const secret = "test-secret"

func sign(t *testing.T, method jwt.SigningMethod, key any, claims Claims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(method, claims).SignedString(key)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return token
}

func TestAuth(t *testing.T) {
	valid := Claims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: "ash", ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
		Name:             "Ash",
	}
	expired := Claims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: "ash", ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour))},
	}

	tests := []struct {
		name     string
		header   string
		wantUser string
		wantErr  bool
	}{
		{name: "valid token", header: "Bearer " + sign(t, jwt.SigningMethodHS256, []byte(secret), valid), wantUser: "ash"},
		{name: "no header", header: "", wantErr: true},
		{name: "wrong scheme", header: "Basic abc", wantErr: true},
		{name: "wrong secret", header: "Bearer " + sign(t, jwt.SigningMethodHS256, []byte("other"), valid), wantErr: true},
		{name: "wrong algorithm", header: "Bearer " + sign(t, jwt.SigningMethodHS384, []byte(secret), valid), wantErr: true},
		{name: "expired", header: "Bearer " + sign(t, jwt.SigningMethodHS256, []byte(secret), expired), wantErr: true},
		{name: "no subject", header: "Bearer " + sign(t, jwt.SigningMethodHS256, []byte(secret), Claims{}), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got Principal
			var gotErr error
			handler := Auth(secret, zerolog.Nop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				got, gotErr = UserFromContext(r.Context())
			}))

			req := httptest.NewRequest(http.MethodPost, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if rec.Code != http.StatusOK {
				t.Fatalf("status = %d, want the request passed through", rec.Code)
			}
			if tt.wantErr {
				if !apperr.IsCode(gotErr, apperr.CodeUnauthenticated) {
					t.Fatalf("error = %v, want %s", gotErr, apperr.CodeUnauthenticated)
				}
				return
			}
			if gotErr != nil {
				t.Fatalf("UserFromContext() error = %v", gotErr)
			}
			if got.UserID != tt.wantUser || got.Name != "Ash" {
				t.Fatalf("principal = %+v", got)
			}
		})
	}
}

func TestRequestID(t *testing.T) {
	var seen string
	handler := RequestID(zerolog.Nop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetRequestID(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "abc")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if seen != "abc" || rec.Header().Get("X-Request-ID") != "abc" {
		t.Fatalf("request id = %q / %q, want abc", seen, rec.Header().Get("X-Request-ID"))
	}

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if seen == "" || rec.Header().Get("X-Request-ID") != seen {
		t.Fatalf("generated id %q not echoed (%q)", seen, rec.Header().Get("X-Request-ID"))
	}
}
