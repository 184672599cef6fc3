package activity

import (
	"context"
	"testing"
	"time"
)

func TestHooksNotifyNormalizesAndSkipsInvalid(t *testing.T) {
	var called int
	hooks := Hooks{
		HookFunc(func(ctx context.Context, evt Event) error {
			called++
			if evt.Verb != "refund_payment" {
				t.Fatalf("unexpected verb %q", evt.Verb)
			}
			if evt.ObjectType != "payments" || evt.ObjectID != "PAY-0007" {
				t.Fatalf("unexpected object %s %s", evt.ObjectType, evt.ObjectID)
			}
			return nil
		}),
	}

	_ = hooks.Notify(context.Background(), Event{})
	if called != 0 {
		t.Fatalf("expected no calls for invalid event")
	}

	_ = hooks.Notify(context.Background(), Event{
		Verb:       " refund_payment ",
		ObjectType: " payments ",
		ObjectID:   " PAY-0007 ",
	})
	if called != 1 {
		t.Fatalf("expected hook to be called once, got %d", called)
	}
}

func TestNormalizeEventClones(t *testing.T) {
	meta := map[string]any{"reason": "duplicate charge"}
	recipients := []string{"ops@recliq.ng"}
	now := time.Now()

	evt := Event{
		Verb:       "refund_payment",
		ObjectType: "payments",
		ObjectID:   "PAY-0001",
		Metadata:   meta,
		Recipients: recipients,
		OccurredAt: now,
	}
	n := NormalizeEvent(evt)

	n.Metadata["reason"] = "changed"
	if evt.Metadata["reason"] != "duplicate charge" {
		t.Fatalf("original metadata mutated")
	}

	n.Recipients[0] = "finance@recliq.ng"
	if recipients[0] != "ops@recliq.ng" {
		t.Fatalf("original recipients mutated")
	}
	if !n.OccurredAt.Equal(now) {
		t.Fatalf("occurred_at should be preserved when set")
	}
}

func TestNormalizeEventStampsTime(t *testing.T) {
	n := NormalizeEvent(Event{Verb: "v"})
	if n.OccurredAt.IsZero() {
		t.Fatalf("expected occurred_at to be stamped")
	}
}

func TestCaptureHookRecords(t *testing.T) {
	capture := &CaptureHook{}
	_ = Hooks{capture}.Notify(context.Background(), Event{Verb: "v", ObjectType: "o", ObjectID: "1"})
	if len(capture.Events) != 1 {
		t.Fatalf("expected captured event, got %d", len(capture.Events))
	}
}
