package middleware

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/tair/restaurant-discovery/pkg/auth"
	"github.com/tair/restaurant-discovery/pkg/logger"
)

type contextKey string

const (
	UserIDKey   contextKey = "user_id"
	UsernameKey contextKey = "username"
	RoleKey     contextKey = "role"
)

// TokenCookie is the cookie login sets for browser clients
const TokenCookie = "access_token"

// Authenticator resolves the caller from a bearer token or the access_token
// cookie.
type Authenticator struct {
	tokens   *auth.TokenManager
	loginURL string
}

// NewAuthenticator creates an authenticator that sends browsers to loginURL
func NewAuthenticator(tokens *auth.TokenManager, loginURL string) *Authenticator {
	if loginURL == "" {
		loginURL = "/auth/login"
	}
	return &Authenticator{tokens: tokens, loginURL: loginURL}
}

// UserID returns the authenticated user id stored in ctx
func UserID(ctx context.Context) (uint, bool) {
	id, ok := ctx.Value(UserIDKey).(uint)
	return id, ok && id != 0
}

// Username returns the authenticated username stored in ctx
func Username(ctx context.Context) string {
	name, _ := ctx.Value(UsernameKey).(string)
	return name
}

// Role returns the authenticated role stored in ctx
func Role(ctx context.Context) string {
	role, _ := ctx.Value(RoleKey).(string)
	return role
}

// WithClaims stores the caller's identity in ctx
func WithClaims(ctx context.Context, claims *auth.Claims) context.Context {
	ctx = context.WithValue(ctx, UserIDKey, claims.UserID)
	ctx = context.WithValue(ctx, UsernameKey, claims.Username)
	return context.WithValue(ctx, RoleKey, claims.Role)
}

func tokenFromRequest(r *http.Request) string {
	if header := r.Header.Get("Authorization"); header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return strings.TrimSpace(parts[1])
		}
		return ""
	}
	if cookie, err := r.Cookie(TokenCookie); err == nil {
		return cookie.Value
	}
	return ""
}

func (a *Authenticator) claims(r *http.Request) (*auth.Claims, error) {
	token := tokenFromRequest(r)
	if token == "" {
		return nil, auth.ErrInvalidToken
	}
	return a.tokens.ValidateToken(token)
}

// Require rejects anonymous requests. JSON clients get 401, browsers are
// redirected to the login URL with a next parameter.
func (a *Authenticator) Require(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, err := a.claims(r)
		if err != nil {
			logger.Warn(r.Context()).
				Err(err).
				Str("path", r.URL.Path).
				Msg("Unauthenticated request")
			a.unauthenticated(w, r)
			return
		}

		logger.Debug(r.Context()).
			Uint("user_id", claims.UserID).
			Str("username", claims.Username).
			Msg("User authenticated")

		next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), claims)))
	}
}

// RequireAdmin rejects callers without the admin role
func (a *Authenticator) RequireAdmin(next http.HandlerFunc) http.HandlerFunc {
	return a.Require(func(w http.ResponseWriter, r *http.Request) {
		if role := Role(r.Context()); role != auth.RoleAdmin {
			logger.Warn(r.Context()).Str("role", role).Msg("Admin access denied")
			RespondError(w, http.StatusForbidden, "Admin access required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Optional identifies the caller when a valid token is present and
// otherwise continues anonymously.
func (a *Authenticator) Optional(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if claims, err := a.claims(r); err == nil {
			r = r.WithContext(WithClaims(r.Context(), claims))
		}
		next.ServeHTTP(w, r)
	}
}

func (a *Authenticator) unauthenticated(w http.ResponseWriter, r *http.Request) {
	if WantsJSON(r) {
		RespondError(w, http.StatusUnauthorized, "Authentication required")
		return
	}
	target := a.loginURL + "?next=" + url.QueryEscape(r.URL.RequestURI())
	http.Redirect(w, r, target, http.StatusSeeOther)
}

// WantsJSON reports whether the client is a script rather than a browser
// navigation.
func WantsJSON(r *http.Request) bool {
	if r.Header.Get("Authorization") != "" {
		return true
	}
	if strings.EqualFold(r.Header.Get("X-Requested-With"), "XMLHttpRequest") {
		return true
	}
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		return true
	}
	return strings.Contains(r.Header.Get("Accept"), "application/json")
}
