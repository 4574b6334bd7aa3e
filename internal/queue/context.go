package queue

import "context"

type ctxKey struct{}

// ContextWithRequestID stashes the inbound request id so published events
// can carry it for cross-service correlation.
func ContextWithRequestID(ctx context.Context, reqID string) context.Context {
	return context.WithValue(ctx, ctxKey{}, reqID)
}

func RequestIDFrom(ctx context.Context) string {
	if v, ok := ctx.Value(ctxKey{}).(string); ok {
		return v
	}
	return ""
}
