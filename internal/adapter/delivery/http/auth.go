package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/httplog/v2"
	"github.com/go-chi/render"
	"github.com/vadimbarashkov/ziplink/pkg/response"
)

const accessTokenCookie = "access_token"

var ErrUnauthorized = errors.New("unauthorized")

// TokenVerifier resolves an access token into the id of the user it was issued to.
type TokenVerifier interface {
	Verify(token string) (string, error)
}

type callerKey struct{}

// authenticate stores the caller id in the request context when a token is presented.
// Requests without a token pass through anonymously, requests with an invalid one are rejected.
func authenticate(tokens TokenVerifier) func(http.Handler) http.Handler {
	const op = "delivery.http.authenticate"

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := tokenFromRequest(r)
			if raw == "" {
				next.ServeHTTP(w, r)
				return
			}

			userID, err := tokens.Verify(raw)
			if err != nil {
				httplog.LogEntrySetFields(r.Context(), map[string]any{
					"op":  op,
					"err": fmt.Errorf("%w: %w", ErrUnauthorized, err),
				})

				render.Status(r, http.StatusUnauthorized)
				render.JSON(w, r, response.UnauthorizedResponse)
				return
			}

			ctx := context.WithValue(r.Context(), callerKey{}, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func requireCaller(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if callerFromContext(r.Context()) == "" {
			render.Status(r, http.StatusUnauthorized)
			render.JSON(w, r, response.UnauthorizedResponse)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// callerFromContext returns the authenticated user id, or an empty string for anonymous requests.
func callerFromContext(ctx context.Context) string {
	userID, _ := ctx.Value(callerKey{}).(string)
	return userID
}

// The cookie takes precedence over the Authorization header.
func tokenFromRequest(r *http.Request) string {
	if c, err := r.Cookie(accessTokenCookie); err == nil && c.Value != "" {
		return c.Value
	}

	if token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer "); ok {
		return strings.TrimSpace(token)
	}

	return ""
}
