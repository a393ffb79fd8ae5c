package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"inkflow/internal/auth"
	"inkflow/internal/domain/models"
	"inkflow/internal/httputil"
)

// Identity resolves the request identity from the Authorization header.
// Requests without a bearer token proceed as guest; a token that is present
// but invalid is rejected rather than silently downgraded.
func Identity(verifier auth.TokenVerifier, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				ctx := auth.WithIdentity(r.Context(), models.GuestIdentity)
				next.ServeHTTP(w, r.WithContext(ctx))
				return
			}

			token := strings.TrimPrefix(header, "Bearer ")
			if token == header || token == "" {
				httputil.RespondError(w, http.StatusUnauthorized, "malformed authorization header")
				return
			}

			identity, err := verifier.VerifyToken(token)
			if err != nil {
				logger.Debug("token rejected", "path", r.URL.Path)
				httputil.RespondError(w, http.StatusUnauthorized, "invalid token")
				return
			}

			ctx := auth.WithIdentity(r.Context(), *identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
