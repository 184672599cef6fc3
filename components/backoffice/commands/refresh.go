package commands

import (
	"context"
	"errors"

	gocommand "github.com/goliatone/go-command"
	"github.com/recliq/go-backoffice/components/backoffice"
)

// RefreshTableInput asks subscribers to reload a table.
type RefreshTableInput struct {
	Viewer backoffice.ViewerContext `json:"viewer"`
	Table  string                   `json:"table"`
}

type refreshService interface {
	Refresh(ctx context.Context, viewer backoffice.ViewerContext, code string) error
}

// RefreshTableCommand triggers refresh hooks without forcing transports.
type RefreshTableCommand struct {
	service   refreshService
	telemetry Telemetry
}

// NewRefreshTableCommand creates the command.
func NewRefreshTableCommand(service refreshService, telemetry Telemetry) *RefreshTableCommand {
	return &RefreshTableCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[RefreshTableInput] = (*RefreshTableCommand)(nil)

// Execute notifies the service's refresh hooks.
func (c *RefreshTableCommand) Execute(ctx context.Context, msg RefreshTableInput) error {
	if c.service == nil {
		return errors.New("refresh command requires service")
	}
	if msg.Table == "" {
		return errors.New("refresh command requires table")
	}
	if err := c.service.Refresh(ctx, msg.Viewer, msg.Table); err != nil {
		return err
	}
	c.telemetry.Record(ctx, "backoffice.command.refresh", map[string]any{
		"table": msg.Table,
	})
	return nil
}
