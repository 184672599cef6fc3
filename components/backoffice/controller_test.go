package backoffice

import (
	"bytes"
	"context"
	"io"
	"testing"

	"github.com/recliq/go-backoffice/components/backoffice/tableview"
)

type stubRenderer struct {
	lastTemplate string
	lastPayload  map[string]any
	err          error
}

func (r *stubRenderer) Render(name string, data any, out ...io.Writer) (string, error) {
	r.lastTemplate = name
	if payload, ok := data.(map[string]any); ok {
		r.lastPayload = payload
	}
	if len(out) > 0 && out[0] != nil {
		out[0].Write([]byte("<html></html>"))
	}
	return "<html></html>", r.err
}

func newTestController(t *testing.T) (*Controller, *SessionManager, ViewerContext) {
	t.Helper()
	sessions, err := NewSessionManager(SessionManagerOptions{Secret: []byte("controller")})
	if err != nil {
		t.Fatalf("NewSessionManager returned error: %v", err)
	}
	session, _, err := sessions.Begin(context.Background(), testViewer)
	if err != nil {
		t.Fatalf("Begin returned error: %v", err)
	}
	controller := NewController(ControllerOptions{
		Service:  NewService(Options{}),
		Renderer: &stubRenderer{},
		Drawers:  sessions,
	})
	return controller, sessions, session.Viewer()
}

func TestControllerDrawerFollowsSession(t *testing.T) {
	controller, sessions, viewer := newTestController(t)
	ctx := context.Background()

	detail, err := controller.OpenDrawer(ctx, viewer, TablePayments, "PAY-1002")
	if err != nil {
		t.Fatalf("OpenDrawer returned error: %v", err)
	}
	if !detail.Open {
		t.Fatalf("expected drawer to open")
	}
	state, err := sessions.Drawer(ctx, viewer.SessionID)
	if err != nil {
		t.Fatalf("Drawer returned error: %v", err)
	}
	if state.RecordID != "PAY-1002" {
		t.Fatalf("expected drawer state on session, got %#v", state)
	}
	current, err := controller.CurrentDrawer(ctx, viewer)
	if err != nil {
		t.Fatalf("CurrentDrawer returned error: %v", err)
	}
	if current.RecordID != "PAY-1002" {
		t.Fatalf("expected current drawer to be PAY-1002, got %#v", current)
	}
	if err := controller.CloseDrawer(ctx, viewer); err != nil {
		t.Fatalf("CloseDrawer returned error: %v", err)
	}
	current, err = controller.CurrentDrawer(ctx, viewer)
	if err != nil {
		t.Fatalf("CurrentDrawer returned error: %v", err)
	}
	if current.Open {
		t.Fatalf("expected drawer to be closed")
	}
}

func TestControllerMissingRecordClosesDrawer(t *testing.T) {
	controller, sessions, viewer := newTestController(t)
	ctx := context.Background()

	if _, err := controller.OpenDrawer(ctx, viewer, TablePayments, "PAY-1002"); err != nil {
		t.Fatalf("OpenDrawer returned error: %v", err)
	}
	detail, err := controller.OpenDrawer(ctx, viewer, TablePayments, "PAY-0000")
	if err != nil {
		t.Fatalf("OpenDrawer returned error: %v", err)
	}
	if detail.Open {
		t.Fatalf("expected missing record to keep drawer closed")
	}
	state, _ := sessions.Drawer(ctx, viewer.SessionID)
	if state.IsOpen() {
		t.Fatalf("expected session drawer to be cleared, got %#v", state)
	}
}

func TestControllerRenderTable(t *testing.T) {
	controller, _, viewer := newTestController(t)
	renderer := controller.renderer.(*stubRenderer)
	ctx := context.Background()

	if _, err := controller.OpenDrawer(ctx, viewer, TablePayments, "PAY-1004"); err != nil {
		t.Fatalf("OpenDrawer returned error: %v", err)
	}
	var buf bytes.Buffer
	if err := controller.RenderTable(ctx, viewer, TablePayments, tableview.Query{Page: 1}, &buf); err != nil {
		t.Fatalf("RenderTable returned error: %v", err)
	}
	if renderer.lastTemplate != defaultTableTemplate {
		t.Fatalf("expected table template, got %s", renderer.lastTemplate)
	}
	if buf.Len() == 0 {
		t.Fatalf("expected rendered output")
	}
	page, ok := renderer.lastPayload["page"].(TablePage)
	if !ok || len(page.Rows) != 10 {
		t.Fatalf("expected first page in payload, got %#v", renderer.lastPayload["page"])
	}
	detail, ok := renderer.lastPayload["detail"].(Detail)
	if !ok || detail.RecordID != "PAY-1004" {
		t.Fatalf("expected open drawer in payload, got %#v", renderer.lastPayload["detail"])
	}
	if html, _ := renderer.lastPayload["chart_html"].(string); html == "" {
		t.Fatalf("expected chart html in payload")
	}
}

func TestControllerRenderIndexListsTables(t *testing.T) {
	controller, _, viewer := newTestController(t)
	renderer := controller.renderer.(*stubRenderer)

	var buf bytes.Buffer
	if err := controller.RenderIndex(context.Background(), viewer, &buf); err != nil {
		t.Fatalf("RenderIndex returned error: %v", err)
	}
	tables, ok := renderer.lastPayload["tables"].([]TableDescriptor)
	if !ok || len(tables) != 8 {
		t.Fatalf("expected 8 tables in payload, got %#v", renderer.lastPayload["tables"])
	}
}

func TestControllerWithoutRendererFails(t *testing.T) {
	controller := NewController(ControllerOptions{Service: NewService(Options{})})
	if err := controller.RenderIndex(context.Background(), testViewer, io.Discard); err == nil {
		t.Fatalf("expected error without renderer")
	}
}
