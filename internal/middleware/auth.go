// Package middleware holds the HTTP middleware chain: authentication, role
// checks, rate limiting, request logging, panic recovery, metrics and tracing.
package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/Abdurahmanit/GroupProject/adwall-service/internal/domain"
	"github.com/Abdurahmanit/GroupProject/adwall-service/internal/handler"
)

const msgNotLoggedIn = "You are not login, Please login to get access this route"

// Authenticator resolves a bearer token to the caller it belongs to.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (domain.Actor, error)
}

type Auth struct {
	auth Authenticator
	rs   *handler.Responder
}

func NewAuth(auth Authenticator, rs *handler.Responder) *Auth {
	return &Auth{auth: auth, rs: rs}
}

// RequireAuth rejects requests without a valid bearer token and stores the
// caller in the request context.
func (a *Auth) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			a.rs.Error(w, r, domain.Unauthorized(msgNotLoggedIn))
			return
		}
		actor, err := a.auth.Authenticate(r.Context(), token)
		if err != nil {
			a.rs.Error(w, r, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(domain.WithActor(r.Context(), actor)))
	})
}

// OptionalAuth identifies the caller when a valid token is present and
// otherwise continues anonymously.
func (a *Auth) OptionalAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if token := bearerToken(r); token != "" {
			if actor, err := a.auth.Authenticate(r.Context(), token); err == nil {
				r = r.WithContext(domain.WithActor(r.Context(), actor))
			}
		}
		next.ServeHTTP(w, r)
	})
}

// RequireRoles must run after RequireAuth.
func (a *Auth) RequireRoles(roles ...domain.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor := domain.ActorFrom(r.Context())
			for _, role := range roles {
				if actor.Role == role {
					next.ServeHTTP(w, r)
					return
				}
			}
			a.rs.Error(w, r, domain.Forbidden("You are not allowed to access this route"))
		})
	}
}

func bearerToken(r *http.Request) string {
	parts := strings.SplitN(r.Header.Get("Authorization"), " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
