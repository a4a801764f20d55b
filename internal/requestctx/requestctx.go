package requestctx

import (
	"context"

	"github.com/s6816011857053-star/on-boarding/internal/domain/auth"
)

type ctxKey string

const (
	requestIDKey ctxKey = "request_id"
	viewerKey    ctxKey = "viewer"
)

func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

func GetRequestID(ctx context.Context) string {
	if value, ok := ctx.Value(requestIDKey).(string); ok {
		return value
	}
	return ""
}

func WithViewer(ctx context.Context, user auth.User) context.Context {
	return context.WithValue(ctx, viewerKey, user)
}

// GetViewer returns the user resolved for the request, if any.
func GetViewer(ctx context.Context) (auth.User, bool) {
	user, ok := ctx.Value(viewerKey).(auth.User)
	return user, ok
}
