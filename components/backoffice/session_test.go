package backoffice

import (
	"context"
	"errors"
	"testing"
	"time"
)

type steppingClock struct {
	now time.Time
}

func (c *steppingClock) Now() time.Time { return c.now }

func newTestSessions(t *testing.T, clock *steppingClock) *SessionManager {
	t.Helper()
	manager, err := NewSessionManager(SessionManagerOptions{
		Secret: []byte("test-secret"),
		TTL:    time.Hour,
		Clock:  clock.Now,
	})
	if err != nil {
		t.Fatalf("NewSessionManager returned error: %v", err)
	}
	return manager
}

func TestSessionLifecycle(t *testing.T) {
	clock := &steppingClock{now: time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)}
	manager := newTestSessions(t, clock)
	ctx := context.Background()

	session, token, err := manager.Begin(ctx, ViewerContext{UserID: "op-1", Name: "Ada"})
	if err != nil {
		t.Fatalf("Begin returned error: %v", err)
	}
	if token == "" || session.ID == "" {
		t.Fatalf("expected token and session id")
	}
	resolved, err := manager.Resolve(ctx, token)
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if resolved.Viewer().UserID != "op-1" || resolved.Viewer().SessionID != session.ID {
		t.Fatalf("unexpected viewer %#v", resolved.Viewer())
	}
	if err := manager.End(ctx, token); err != nil {
		t.Fatalf("End returned error: %v", err)
	}
	if _, err := manager.Resolve(ctx, token); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound after End, got %v", err)
	}
}

func TestSessionsAreIsolated(t *testing.T) {
	clock := &steppingClock{now: time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)}
	manager := newTestSessions(t, clock)
	ctx := context.Background()

	first, _, err := manager.Begin(ctx, ViewerContext{UserID: "op-1"})
	if err != nil {
		t.Fatalf("Begin returned error: %v", err)
	}
	second, _, err := manager.Begin(ctx, ViewerContext{UserID: "op-2"})
	if err != nil {
		t.Fatalf("Begin returned error: %v", err)
	}
	if err := manager.SetDrawer(ctx, first.ID, DrawerState{Table: TablePayments, RecordID: "PAY-1001"}); err != nil {
		t.Fatalf("SetDrawer returned error: %v", err)
	}
	drawer, err := manager.Drawer(ctx, second.ID)
	if err != nil {
		t.Fatalf("Drawer returned error: %v", err)
	}
	if drawer.IsOpen() {
		t.Fatalf("expected second session drawer to stay closed, got %#v", drawer)
	}
	drawer, err = manager.Drawer(ctx, first.ID)
	if err != nil {
		t.Fatalf("Drawer returned error: %v", err)
	}
	if !drawer.IsOpen() || drawer.RecordID != "PAY-1001" {
		t.Fatalf("expected first session drawer to be open, got %#v", drawer)
	}
}

func TestSessionTokenRejections(t *testing.T) {
	clock := &steppingClock{now: time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)}
	manager := newTestSessions(t, clock)
	ctx := context.Background()

	if _, err := manager.Resolve(ctx, ""); !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated for empty token, got %v", err)
	}
	if _, err := manager.Resolve(ctx, "not-a-token"); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}

	other, err := NewSessionManager(SessionManagerOptions{Secret: []byte("other"), Clock: clock.Now})
	if err != nil {
		t.Fatalf("NewSessionManager returned error: %v", err)
	}
	_, foreign, err := other.Begin(ctx, ViewerContext{UserID: "op-9"})
	if err != nil {
		t.Fatalf("Begin returned error: %v", err)
	}
	if _, err := manager.Resolve(ctx, foreign); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected foreign token to be rejected, got %v", err)
	}

	_, token, err := manager.Begin(ctx, ViewerContext{UserID: "op-1"})
	if err != nil {
		t.Fatalf("Begin returned error: %v", err)
	}
	clock.now = clock.now.Add(2 * time.Hour)
	if _, err := manager.Resolve(ctx, token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected expired token to be rejected, got %v", err)
	}
}

func TestSessionManagerRequiresSecretAndViewer(t *testing.T) {
	if _, err := NewSessionManager(SessionManagerOptions{}); err == nil {
		t.Fatalf("expected error without secret")
	}
	manager := newTestSessions(t, &steppingClock{now: time.Now()})
	if _, _, err := manager.Begin(context.Background(), ViewerContext{}); !errors.Is(err, ErrMissingViewer) {
		t.Fatalf("expected ErrMissingViewer, got %v", err)
	}
}
