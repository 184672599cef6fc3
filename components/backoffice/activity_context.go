package backoffice

import "context"

// ActivityContext overrides the actor/user/tenant identifiers on activity events.
type ActivityContext struct {
	ActorID  string
	UserID   string
	TenantID string
}

type activityContextKey struct{}

// ContextWithActivity stores activity context on the provided context.
func ContextWithActivity(ctx context.Context, meta ActivityContext) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, activityContextKey{}, meta)
}

func activityContextFrom(ctx context.Context) ActivityContext {
	if ctx == nil {
		return ActivityContext{}
	}
	if meta, ok := ctx.Value(activityContextKey{}).(ActivityContext); ok {
		return meta
	}
	return ActivityContext{}
}

func (m ActivityContext) withViewer(viewer ViewerContext) ActivityContext {
	if m.ActorID == "" {
		m.ActorID = viewer.UserID
	}
	if m.UserID == "" {
		m.UserID = viewer.UserID
	}
	if m.TenantID == "" {
		m.TenantID = viewer.TenantID
	}
	return m
}
