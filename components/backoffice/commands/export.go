package commands

import (
	"context"
	"errors"
	"io"

	gocommand "github.com/goliatone/go-command"
	"github.com/recliq/go-backoffice/components/backoffice"
	"github.com/recliq/go-backoffice/components/backoffice/tableview"
)

// ExportTableInput streams a table export into Writer.
type ExportTableInput struct {
	Viewer backoffice.ViewerContext `json:"viewer"`
	Table  string                   `json:"table"`
	Query  tableview.Query          `json:"query"`
	Format backoffice.ExportFormat  `json:"format"`
	Writer io.Writer                `json:"-"`
	// Info is filled in after a successful Execute.
	Info *backoffice.ExportInfo `json:"-"`
}

type exportService interface {
	Export(ctx context.Context, viewer backoffice.ViewerContext, code string, q tableview.Query, format backoffice.ExportFormat, w io.Writer) (backoffice.ExportInfo, error)
}

// ExportTableCommand writes every filtered row of a table as CSV or PDF.
type ExportTableCommand struct {
	service   exportService
	telemetry Telemetry
}

// NewExportTableCommand creates the command.
func NewExportTableCommand(service exportService, telemetry Telemetry) *ExportTableCommand {
	return &ExportTableCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[ExportTableInput] = (*ExportTableCommand)(nil)

// Execute runs the export.
func (c *ExportTableCommand) Execute(ctx context.Context, msg ExportTableInput) error {
	if c.service == nil {
		return errors.New("export command requires service")
	}
	if msg.Writer == nil {
		return errors.New("export command requires writer")
	}
	info, err := c.service.Export(ctx, msg.Viewer, msg.Table, msg.Query, msg.Format, msg.Writer)
	if err != nil {
		return err
	}
	if msg.Info != nil {
		*msg.Info = info
	}
	c.telemetry.Record(ctx, "backoffice.command.export", map[string]any{
		"table":  msg.Table,
		"format": string(msg.Format),
		"rows":   info.Rows,
	})
	return nil
}
