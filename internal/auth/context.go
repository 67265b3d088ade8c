package auth

import (
	"context"

	"github.com/allmytab/startpage/internal/domain"
)

type ctxKey struct{}

// WithViewer returns a child context carrying the authenticated viewer.
func WithViewer(ctx context.Context, v domain.Viewer) context.Context {
	return context.WithValue(ctx, ctxKey{}, v)
}

// ViewerFrom extracts the authenticated viewer set by the auth middleware.
func ViewerFrom(ctx context.Context) (domain.Viewer, bool) {
	v, ok := ctx.Value(ctxKey{}).(domain.Viewer)
	return v, ok
}
