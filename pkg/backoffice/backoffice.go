package backoffice

import (
	core "github.com/recliq/go-backoffice/components/backoffice"
)

// Service exposes the underlying components/backoffice.Service type.
type Service = core.Service

// Options re-export for convenience.
type Options = core.Options

// ViewerContext re-export for convenience.
type ViewerContext = core.ViewerContext

// NewService proxies to the internal constructor.
func NewService(opts Options) *Service {
	return core.NewService(opts)
}
