package activity

import "context"

// Config toggles activity emission and sets the default channel.
type Config struct {
	Enabled bool   `json:"enabled" yaml:"enabled"`
	Channel string `json:"channel" yaml:"channel"`
}

// Emitter sends events to hooks when enabled.
type Emitter struct {
	hooks Hooks
	cfg   Config
}

// NewEmitter builds an emitter. A missing channel falls back to DefaultChannel.
func NewEmitter(hooks Hooks, cfg Config) *Emitter {
	if cfg.Channel == "" {
		cfg.Channel = DefaultChannel
	}
	return &Emitter{hooks: hooks, cfg: cfg}
}

// Enabled reports whether events will reach at least one hook.
func (e *Emitter) Enabled() bool {
	return e != nil && e.cfg.Enabled && len(e.hooks) > 0
}

// Emit fills the default channel and notifies hooks. Disabled emitters are no-ops.
func (e *Emitter) Emit(ctx context.Context, evt Event) error {
	if !e.Enabled() {
		return nil
	}
	if evt.Channel == "" {
		evt.Channel = e.cfg.Channel
	}
	return e.hooks.Notify(ctx, evt)
}
