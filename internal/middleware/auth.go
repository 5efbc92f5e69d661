package middleware

import (
	"net/http"
	"net/url"

	"pycsa-web/internal/auth"
	"pycsa-web/internal/baas"

	"go.uber.org/zap"
)

// LoginPath is where unauthenticated admin requests are sent.
const LoginPath = "/Admin/login"

// SessionSource resolves the signed-in admin of a request.
type SessionSource interface {
	Current(w http.ResponseWriter, r *http.Request) (*auth.Identity, error)
}

// RequireSession lets only signed-in admins through. The admin identity and
// its access token are put in the request context, so BaaS calls made while
// handling the request run as that user.
func RequireSession(sessions SessionSource, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, err := sessions.Current(w, r)
			if err != nil {
				logger.Debug("Admin session required",
					zap.String("path", r.URL.Path),
					zap.Error(err),
				)

				if wantsJSON(r) {
					RespondWithError(w, http.StatusUnauthorized, "authentication required")
					return
				}
				target := LoginPath
				if r.Method == http.MethodGet {
					target += "?next=" + url.QueryEscape(r.URL.RequestURI())
				}
				http.Redirect(w, r, target, http.StatusSeeOther)
				return
			}

			ctx := auth.WithIdentity(r.Context(), id)
			ctx = baas.WithAccessToken(ctx, id.AccessToken)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
