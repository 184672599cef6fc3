package commands

import (
	"context"
	"errors"

	gocommand "github.com/goliatone/go-command"
	"github.com/recliq/go-backoffice/components/backoffice"
)

// SaveTablePreferencesInput captures viewer overrides for one table.
type SaveTablePreferencesInput struct {
	Viewer        backoffice.ViewerContext `json:"viewer"`
	Table         string                   `json:"table"`
	PageSize      int                      `json:"page_size,omitempty"`
	Sort          string                   `json:"sort,omitempty"`
	ColumnOrder   []string                 `json:"column_order,omitempty"`
	HiddenColumns []string                 `json:"hidden_columns,omitempty"`
}

type preferenceService interface {
	SavePreferences(ctx context.Context, viewer backoffice.ViewerContext, code string, prefs backoffice.TablePreferences) error
}

// SaveTablePreferencesCommand persists per-user table preferences.
type SaveTablePreferencesCommand struct {
	service   preferenceService
	telemetry Telemetry
}

// NewSaveTablePreferencesCommand creates the command.
func NewSaveTablePreferencesCommand(service preferenceService, telemetry Telemetry) *SaveTablePreferencesCommand {
	return &SaveTablePreferencesCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[SaveTablePreferencesInput] = (*SaveTablePreferencesCommand)(nil)

// Execute stores the provided preferences for the viewer.
func (c *SaveTablePreferencesCommand) Execute(ctx context.Context, msg SaveTablePreferencesInput) error {
	if c.service == nil {
		return errors.New("preferences command requires service")
	}
	if msg.Viewer.UserID == "" {
		return backoffice.ErrMissingViewer
	}
	hidden := make(map[string]bool, len(msg.HiddenColumns))
	for _, key := range msg.HiddenColumns {
		hidden[key] = true
	}
	prefs := backoffice.TablePreferences{
		PageSize:      msg.PageSize,
		Sort:          msg.Sort,
		ColumnOrder:   msg.ColumnOrder,
		HiddenColumns: hidden,
	}
	if err := c.service.SavePreferences(ctx, msg.Viewer, msg.Table, prefs); err != nil {
		return err
	}
	c.telemetry.Record(ctx, "backoffice.command.preferences", map[string]any{
		"viewer": msg.Viewer.UserID,
		"table":  msg.Table,
	})
	return nil
}
