package dashboard

import (
	"context"

	"github.com/google/uuid"
)

// RequestContext identifies the request and viewer behind an operation.
type RequestContext struct {
	RequestID string
	Viewer    ViewerContext
}

type requestContextKey struct{}

// ContextWithRequest stores meta on ctx, generating a request id when empty.
func ContextWithRequest(ctx context.Context, meta RequestContext) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	if meta.RequestID == "" {
		meta.RequestID = uuid.NewString()
	}
	return context.WithValue(ctx, requestContextKey{}, meta)
}

// RequestFrom extracts the request context, if present.
func RequestFrom(ctx context.Context) (RequestContext, bool) {
	if ctx == nil {
		return RequestContext{}, false
	}
	meta, ok := ctx.Value(requestContextKey{}).(RequestContext)
	return meta, ok
}
