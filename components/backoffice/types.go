package backoffice

import (
	"context"
	"slices"
	"time"
)

// TableRegistry resolves tables by code.
type TableRegistry interface {
	Table(code string) (Table, bool)
	Tables() []Table
}

// Authorizer decides what a viewer may see and do.
type Authorizer interface {
	CanViewTable(ctx context.Context, viewer ViewerContext, table TableDescriptor) bool
	CanPerformAction(ctx context.Context, viewer ViewerContext, table TableDescriptor, action ActionDescriptor) bool
}

// PreferenceStore persists per-viewer table preferences.
type PreferenceStore interface {
	TablePreferences(ctx context.Context, viewer ViewerContext, table string) (TablePreferences, error)
	SaveTablePreferences(ctx context.Context, viewer ViewerContext, table string, prefs TablePreferences) error
}

// ActionHandler performs an intervention. It is the performAction collaborator.
type ActionHandler interface {
	HandleAction(ctx context.Context, inv ActionInvocation) (ActionResult, error)
}

// ActionHandlerFunc adapts a function into an ActionHandler.
type ActionHandlerFunc func(ctx context.Context, inv ActionInvocation) (ActionResult, error)

// HandleAction calls f.
func (f ActionHandlerFunc) HandleAction(ctx context.Context, inv ActionInvocation) (ActionResult, error) {
	return f(ctx, inv)
}

// ActionValidator checks action parameters before the handler runs.
type ActionValidator interface {
	Validate(table string, action ActionDescriptor, params map[string]any) error
}

// RefreshHook notifies transports (REST/WebSocket) about table changes.
type RefreshHook interface {
	TableUpdated(ctx context.Context, event TableEvent) error
}

// ViewerContext identifies the signed-in operator.
type ViewerContext struct {
	UserID    string   `json:"user_id"`
	Name      string   `json:"name,omitempty"`
	Email     string   `json:"email,omitempty"`
	Roles     []string `json:"roles,omitempty"`
	TenantID  string   `json:"tenant_id,omitempty"`
	SessionID string   `json:"session_id,omitempty"`
}

// HasRole reports whether the viewer holds role.
func (v ViewerContext) HasRole(role string) bool {
	return slices.Contains(v.Roles, role)
}

// ActionRequest asks for an action to run against a record.
type ActionRequest struct {
	Table    string         `json:"table"`
	RecordID string         `json:"record_id"`
	Action   string         `json:"action"`
	Params   map[string]any `json:"params,omitempty"`
}

// ActionInvocation is a validated request handed to the ActionHandler.
type ActionInvocation struct {
	Viewer   ViewerContext
	Table    TableDescriptor
	RecordID string
	Action   ActionDescriptor
	Params   map[string]any
	Row      Row
}

// ActionResult is the outcome reported by the ActionHandler.
type ActionResult struct {
	ID          string             `json:"id"`
	Table       string             `json:"table"`
	RecordID    string             `json:"record_id"`
	Action      string             `json:"action"`
	Status      InterventionStatus `json:"status"`
	Message     string             `json:"message,omitempty"`
	PerformedAt time.Time          `json:"performed_at"`
}

// TableEvent describes changes that transports might care about.
type TableEvent struct {
	Table    string `json:"table"`
	RecordID string `json:"record_id,omitempty"`
	Action   string `json:"action,omitempty"`
	Reason   string `json:"reason"`
}

// Detail is the state of the record detail drawer. The zero value is closed.
type Detail struct {
	Open     bool               `json:"open"`
	Table    string             `json:"table,omitempty"`
	RecordID string             `json:"record_id,omitempty"`
	Columns  []ColumnDescriptor `json:"columns,omitempty"`
	Row      *Row               `json:"row,omitempty"`
	Actions  []ActionDescriptor `json:"actions,omitempty"`
}

// DrawerState is the drawer selection kept per session. The zero value is closed.
type DrawerState struct {
	Table    string `json:"table,omitempty"`
	RecordID string `json:"record_id,omitempty"`
}

// IsOpen reports whether a record is selected.
func (d DrawerState) IsOpen() bool {
	return d.Table != "" && d.RecordID != ""
}
