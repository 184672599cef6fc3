package activity

import (
	"context"
	"errors"
	"testing"
)

type recordingHook struct {
	events []Event
}

func (h *recordingHook) Notify(_ context.Context, evt Event) error {
	h.events = append(h.events, evt)
	return nil
}

func TestEmitterDefaultsChannelAndEmits(t *testing.T) {
	hook := &recordingHook{}
	em := NewEmitter(Hooks{hook}, Config{Enabled: true})
	if !em.Enabled() {
		t.Fatalf("expected emitter enabled")
	}
	err := em.Emit(context.Background(), Event{
		Verb:       "backoffice.action.retry_payment",
		ObjectType: "payments",
		ObjectID:   "PAY-0001",
	})
	if err != nil {
		t.Fatalf("emit returned error: %v", err)
	}
	if len(hook.events) != 1 {
		t.Fatalf("expected event emitted, got %d", len(hook.events))
	}
	if hook.events[0].Channel != DefaultChannel {
		t.Fatalf("expected default channel %q, got %q", DefaultChannel, hook.events[0].Channel)
	}
}

func TestEmitterKeepsExplicitChannel(t *testing.T) {
	hook := &recordingHook{}
	em := NewEmitter(Hooks{hook}, Config{Enabled: true, Channel: "ops"})
	_ = em.Emit(context.Background(), Event{Verb: "v", ObjectType: "o", ObjectID: "1"})
	if hook.events[0].Channel != "ops" {
		t.Fatalf("expected configured channel, got %q", hook.events[0].Channel)
	}
}

func TestEmitterDisabledWithoutHooks(t *testing.T) {
	em := NewEmitter(nil, Config{Enabled: true})
	if em.Enabled() {
		t.Fatalf("expected emitter disabled without hooks")
	}
	if err := em.Emit(context.Background(), Event{Verb: "v", ObjectType: "o", ObjectID: "1"}); err != nil {
		t.Fatalf("disabled emitter should not fail: %v", err)
	}
}

func TestEmitterDisabledByConfig(t *testing.T) {
	hook := &recordingHook{}
	em := NewEmitter(Hooks{hook}, Config{})
	_ = em.Emit(context.Background(), Event{Verb: "v", ObjectType: "o", ObjectID: "1"})
	if len(hook.events) != 0 {
		t.Fatalf("expected no events when disabled")
	}
}

func TestHooksJoinErrors(t *testing.T) {
	boom := errors.New("boom")
	hooks := Hooks{
		HookFunc(func(context.Context, Event) error { return boom }),
		&recordingHook{},
	}
	err := hooks.Notify(context.Background(), Event{Verb: "v", ObjectType: "o", ObjectID: "1"})
	if !errors.Is(err, boom) {
		t.Fatalf("expected joined error, got %v", err)
	}
	if got := hooks[1].(*recordingHook).events; len(got) != 1 {
		t.Fatalf("expected later hooks to still run")
	}
}
