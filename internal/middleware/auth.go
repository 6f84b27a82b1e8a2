package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"card-battle/internal/apperr"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
)

const principalKey contextKey = "principal"

// Claims are the bearer token claims. Subject is the user id.
type Claims struct {
	jwt.RegisteredClaims
	Name string `json:"name,omitempty"`
}

type Principal struct {
	UserID string
	Name   string
}

type authResult struct {
	principal Principal
	err       error
}

// Auth verifies HS256 bearer tokens. It never rejects a request itself:
// handlers that need a user call UserFromContext, so public procedures keep
// working without a token.
func Auth(secret string, logger zerolog.Logger) func(http.Handler) http.Handler {
	key := []byte(secret)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				next.ServeHTTP(w, r)
				return
			}

			res := authResult{}
			res.principal, res.err = parseBearer(header, key)
			if res.err != nil {
				zerolog.Ctx(r.Context()).Debug().Err(res.err).Msg("rejected bearer token")
			}
			ctx := context.WithValue(r.Context(), principalKey, res)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func parseBearer(header string, key []byte) (Principal, error) {
	raw, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || strings.TrimSpace(raw) == "" {
		return Principal{}, errors.New("authorization header is not a bearer token")
	}

	var claims Claims
	_, err := jwt.ParseWithClaims(strings.TrimSpace(raw), &claims, func(token *jwt.Token) (any, error) {
		return key, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return Principal{}, err
	}
	if claims.Subject == "" {
		return Principal{}, errors.New("token has no subject")
	}
	return Principal{UserID: claims.Subject, Name: claims.Name}, nil
}

// UserFromContext returns the authenticated caller or an Unauthenticated error.
func UserFromContext(ctx context.Context) (Principal, error) {
	res, ok := ctx.Value(principalKey).(authResult)
	if !ok {
		return Principal{}, apperr.New(apperr.CodeUnauthenticated, "missing bearer token")
	}
	if res.err != nil {
		return Principal{}, apperr.Wrap(apperr.CodeUnauthenticated, res.err, "invalid bearer token")
	}
	return res.principal, nil
}

// WithPrincipal attaches an already authenticated caller to ctx.
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey, authResult{principal: p})
}
