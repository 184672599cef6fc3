package httpapi

import (
	"context"
	"errors"

	gocommand "github.com/goliatone/go-command"
	"github.com/recliq/go-backoffice/components/backoffice"
	"github.com/recliq/go-backoffice/components/backoffice/commands"
	"github.com/recliq/go-backoffice/components/backoffice/queries"
)

// Executor is the transport-neutral surface used by router adapters.
type Executor interface {
	Tables(ctx context.Context, viewer backoffice.ViewerContext) ([]backoffice.TableDescriptor, error)
	Page(ctx context.Context, input queries.TablePageInput) (backoffice.TablePage, error)
	Detail(ctx context.Context, input queries.RecordDetailInput) (backoffice.Detail, error)
	PerformAction(ctx context.Context, input commands.PerformActionInput) error
	Export(ctx context.Context, input commands.ExportTableInput) error
	Refresh(ctx context.Context, input commands.RefreshTableInput) error
	SavePreferences(ctx context.Context, input commands.SaveTablePreferencesInput) error
}

// CommandExecutor dispatches Executor calls to go-command commanders and queriers.
type CommandExecutor struct {
	TablesQuery gocommand.Querier[backoffice.ViewerContext, []backoffice.TableDescriptor]
	PageQuery   gocommand.Querier[queries.TablePageInput, backoffice.TablePage]
	DetailQuery gocommand.Querier[queries.RecordDetailInput, backoffice.Detail]
	ActionCmd   gocommand.Commander[commands.PerformActionInput]
	ExportCmd   gocommand.Commander[commands.ExportTableInput]
	RefreshCmd  gocommand.Commander[commands.RefreshTableInput]
	PrefsCmd    gocommand.Commander[commands.SaveTablePreferencesInput]
}

var _ Executor = (*CommandExecutor)(nil)

var errNotConfigured = errors.New("httpapi: operation not configured")

// NewCommandExecutor wires every command and query against service.
func NewCommandExecutor(service *backoffice.Service, telemetry commands.Telemetry) *CommandExecutor {
	return &CommandExecutor{
		TablesQuery: queries.NewTablesQuery(service),
		PageQuery:   queries.NewTablePageQuery(service),
		DetailQuery: queries.NewRecordDetailQuery(service),
		ActionCmd:   commands.NewPerformActionCommand(service, telemetry),
		ExportCmd:   commands.NewExportTableCommand(service, telemetry),
		RefreshCmd:  commands.NewRefreshTableCommand(service, telemetry),
		PrefsCmd:    commands.NewSaveTablePreferencesCommand(service, telemetry),
	}
}

func (e *CommandExecutor) Tables(ctx context.Context, viewer backoffice.ViewerContext) ([]backoffice.TableDescriptor, error) {
	if e.TablesQuery == nil {
		return nil, errNotConfigured
	}
	return e.TablesQuery.Query(ctx, viewer)
}

func (e *CommandExecutor) Page(ctx context.Context, input queries.TablePageInput) (backoffice.TablePage, error) {
	if e.PageQuery == nil {
		return backoffice.TablePage{}, errNotConfigured
	}
	return e.PageQuery.Query(ctx, input)
}

func (e *CommandExecutor) Detail(ctx context.Context, input queries.RecordDetailInput) (backoffice.Detail, error) {
	if e.DetailQuery == nil {
		return backoffice.Detail{}, errNotConfigured
	}
	return e.DetailQuery.Query(ctx, input)
}

func (e *CommandExecutor) PerformAction(ctx context.Context, input commands.PerformActionInput) error {
	if e.ActionCmd == nil {
		return errNotConfigured
	}
	return e.ActionCmd.Execute(ctx, input)
}

func (e *CommandExecutor) Export(ctx context.Context, input commands.ExportTableInput) error {
	if e.ExportCmd == nil {
		return errNotConfigured
	}
	return e.ExportCmd.Execute(ctx, input)
}

func (e *CommandExecutor) Refresh(ctx context.Context, input commands.RefreshTableInput) error {
	if e.RefreshCmd == nil {
		return errNotConfigured
	}
	return e.RefreshCmd.Execute(ctx, input)
}

func (e *CommandExecutor) SavePreferences(ctx context.Context, input commands.SaveTablePreferencesInput) error {
	if e.PrefsCmd == nil {
		return errNotConfigured
	}
	return e.PrefsCmd.Execute(ctx, input)
}
