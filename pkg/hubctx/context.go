package hubctx

import "context"

type keyType string

const hubIDKey keyType = "hub_id"

// WithHubID returns a context scoped to the given hub.
func WithHubID(ctx context.Context, hubID int64) context.Context {
	return context.WithValue(ctx, hubIDKey, hubID)
}

// HubID extracts the hub identifier from the context.
func HubID(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(hubIDKey).(int64)
	return id, ok
}
