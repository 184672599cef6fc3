package commands

import (
	"context"
	"errors"
	"fmt"

	gocommand "github.com/goliatone/go-command"
	"github.com/recliq/go-backoffice/components/backoffice"
)

// PerformActionInput asks for an action on a record on behalf of a viewer.
type PerformActionInput struct {
	Viewer  backoffice.ViewerContext `json:"viewer"`
	Request backoffice.ActionRequest `json:"request"`
	// Result is filled in after a successful Execute.
	Result *backoffice.ActionResult `json:"-"`
}

type actionService interface {
	PerformAction(ctx context.Context, viewer backoffice.ViewerContext, req backoffice.ActionRequest) (backoffice.ActionResult, error)
}

// PerformActionCommand runs record actions through the service so transports
// never call the ActionHandler directly.
type PerformActionCommand struct {
	service   actionService
	telemetry Telemetry
}

// NewPerformActionCommand creates the command.
func NewPerformActionCommand(service actionService, telemetry Telemetry) *PerformActionCommand {
	return &PerformActionCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[PerformActionInput] = (*PerformActionCommand)(nil)

// Execute performs the action.
func (c *PerformActionCommand) Execute(ctx context.Context, msg PerformActionInput) error {
	if c.service == nil {
		return errors.New("action command requires service")
	}
	if msg.Request.Table == "" || msg.Request.RecordID == "" || msg.Request.Action == "" {
		return fmt.Errorf("%w: action command requires table, record id and action", backoffice.ErrInvalidParams)
	}
	result, err := c.service.PerformAction(ctx, msg.Viewer, msg.Request)
	if err != nil {
		return err
	}
	if msg.Result != nil {
		*msg.Result = result
	}
	c.telemetry.Record(ctx, "backoffice.command.action", map[string]any{
		"table":     msg.Request.Table,
		"record_id": msg.Request.RecordID,
		"action":    msg.Request.Action,
	})
	return nil
}
