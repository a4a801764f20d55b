package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/s6816011857053-star/on-boarding/internal/domain/auth"
	"github.com/s6816011857053-star/on-boarding/internal/requestctx"
	"github.com/s6816011857053-star/on-boarding/internal/transport/http/api"
)

// ViewerHeader carries the id of the user a request acts as. Identity is
// asserted by the client; there are no sessions or tokens.
const ViewerHeader = "X-User-ID"

type ViewerResolver interface {
	UserByID(ctx context.Context, userID string) (auth.User, error)
}

// Viewer attaches the user named by ViewerHeader to the request context.
// Requests without the header pass through anonymously.
func Viewer(resolver ViewerResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID := strings.TrimSpace(r.Header.Get(ViewerHeader))
			if userID == "" {
				next.ServeHTTP(w, r)
				return
			}

			user, err := resolver.UserByID(r.Context(), userID)
			if err != nil {
				if errors.Is(err, auth.ErrUserNotFound) {
					api.Fail(w, http.StatusUnauthorized, "unknown_user", "unknown user", GetRequestID(r.Context()))
					return
				}
				slog.Error("resolve viewer failed", "userId", userID, "err", err)
				api.Fail(w, http.StatusInternalServerError, "viewer_error", "failed to resolve user", GetRequestID(r.Context()))
				return
			}
			next.ServeHTTP(w, r.WithContext(requestctx.WithViewer(r.Context(), user)))
		})
	}
}

func GetViewer(ctx context.Context) (auth.User, bool) {
	return requestctx.GetViewer(ctx)
}
