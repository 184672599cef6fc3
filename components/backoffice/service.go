package backoffice

import (
	"context"
	"fmt"
	"io"
	"maps"
	"time"

	"github.com/recliq/go-backoffice/components/backoffice/tableview"
	"github.com/recliq/go-backoffice/pkg/activity"
)

// Options configures the backoffice Service. Every collaborator is provided via
// interface so applications can swap implementations without importing internal
// packages.
type Options struct {
	Registry        TableRegistry
	Authorizer      Authorizer
	PreferenceStore PreferenceStore
	ActionHandler   ActionHandler
	ActionValidator ActionValidator
	RefreshHook     RefreshHook
	Telemetry       Telemetry
	ActivityHooks   activity.Hooks
	ActivityConfig  activity.Config
	Exporters       map[ExportFormat]Exporter
	ChartCache      RenderCache
	ChartOptions    ChartOptions
	Clock           func() time.Time
}

// Service serves tables, the detail drawer, actions, exports and charts.
type Service struct {
	opts     Options
	activity *activity.Emitter
}

// NewService builds a Service instance with safe defaults. Without a registry
// the built-in tables are served from fixtures, with interventions recorded by
// the default ActionLog.
func NewService(opts Options) *Service {
	if opts.Authorizer == nil {
		opts.Authorizer = allowAllAuthorizer{}
	}
	if opts.RefreshHook == nil {
		opts.RefreshHook = noopRefreshHook{}
	}
	if opts.ActionHandler == nil {
		opts.ActionHandler = NewActionLog()
	}
	if opts.Registry == nil {
		log, _ := opts.ActionHandler.(*ActionLog)
		reg, err := NewDefaultRegistry(StaticSources(log))
		if err != nil {
			reg = NewRegistry()
		}
		opts.Registry = reg
	}
	if opts.ActionValidator == nil {
		opts.ActionValidator = NewJSONSchemaValidator()
	}
	if opts.PreferenceStore == nil {
		opts.PreferenceStore = NewInMemoryPreferenceStore()
	}
	if opts.ChartCache == nil {
		opts.ChartCache = NewChartCache(5 * time.Minute)
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	opts.Telemetry = normalizeTelemetry(opts.Telemetry)
	return &Service{
		opts:     opts,
		activity: activity.NewEmitter(opts.ActivityHooks, opts.ActivityConfig),
	}
}

// Tables lists the tables the viewer may see.
func (s *Service) Tables(ctx context.Context, viewer ViewerContext) []TableDescriptor {
	var out []TableDescriptor
	for _, table := range s.opts.Registry.Tables() {
		desc := table.Descriptor()
		if s.opts.Authorizer.CanViewTable(ctx, viewer, desc) {
			out = append(out, desc)
		}
	}
	return out
}

// Table resolves a table the viewer may see.
func (s *Service) Table(ctx context.Context, viewer ViewerContext, code string) (Table, error) {
	table, ok := s.opts.Registry.Table(code)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrTableNotFound, code)
	}
	if !s.opts.Authorizer.CanViewTable(ctx, viewer, table.Descriptor()) {
		return nil, fmt.Errorf("%w: table %s", ErrForbidden, code)
	}
	return table, nil
}

// QueryTable filters, sorts and paginates a table for the viewer. Saved
// preferences fill in page size and sort when the query leaves them empty.
func (s *Service) QueryTable(ctx context.Context, viewer ViewerContext, code string, q tableview.Query) (TablePage, error) {
	table, err := s.Table(ctx, viewer, code)
	if err != nil {
		return TablePage{}, err
	}
	prefs, err := s.opts.PreferenceStore.TablePreferences(ctx, viewer, code)
	if err != nil {
		return TablePage{}, err
	}
	q = applyQueryPreferences(q, prefs)
	page, err := table.Page(ctx, q)
	if err != nil {
		return TablePage{}, err
	}
	page.Columns = visibleColumns(page.Columns, prefs)
	page.Rows = projectRows(page.Rows, page.Columns)
	s.recordTelemetry(ctx, "backoffice.table.query", map[string]any{
		"viewer":      viewer.UserID,
		"table":       code,
		"page":        page.Page,
		"total_count": page.TotalCount,
		"no_results":  page.NoResults,
	})
	return page, nil
}

// OpenDetail resolves the drawer for a record. A missing record yields a closed
// Detail and no error.
func (s *Service) OpenDetail(ctx context.Context, viewer ViewerContext, code, recordID string) (Detail, error) {
	table, err := s.Table(ctx, viewer, code)
	if err != nil {
		return Detail{}, err
	}
	row, ok, err := table.Record(ctx, recordID)
	if err != nil {
		return Detail{}, err
	}
	if !ok {
		s.recordTelemetry(ctx, "backoffice.detail.not_found", map[string]any{
			"viewer":    viewer.UserID,
			"table":     code,
			"record_id": recordID,
		})
		return Detail{}, nil
	}
	desc := table.Descriptor()
	detail := Detail{
		Open:     true,
		Table:    code,
		RecordID: recordID,
		Columns:  desc.Columns,
		Row:      &row,
	}
	for _, action := range desc.Actions {
		if row.AllowsAction(action.Name) && s.opts.Authorizer.CanPerformAction(ctx, viewer, desc, action) {
			detail.Actions = append(detail.Actions, action)
		}
	}
	s.recordTelemetry(ctx, "backoffice.detail.open", map[string]any{
		"viewer":    viewer.UserID,
		"table":     code,
		"record_id": recordID,
	})
	return detail, nil
}

// PerformAction validates the request, delegates to the ActionHandler, and
// announces the result. Records are never mutated here.
func (s *Service) PerformAction(ctx context.Context, viewer ViewerContext, req ActionRequest) (ActionResult, error) {
	table, err := s.Table(ctx, viewer, req.Table)
	if err != nil {
		return ActionResult{}, err
	}
	desc := table.Descriptor()
	action, ok := desc.Action(req.Action)
	if !ok {
		return ActionResult{}, fmt.Errorf("%w: %s on %s", ErrUnknownAction, req.Action, req.Table)
	}
	if !s.opts.Authorizer.CanPerformAction(ctx, viewer, desc, action) {
		return ActionResult{}, fmt.Errorf("%w: action %s", ErrForbidden, req.Action)
	}
	row, found, err := table.Record(ctx, req.RecordID)
	if err != nil {
		return ActionResult{}, err
	}
	if !found {
		return ActionResult{}, fmt.Errorf("%w: %s/%s", ErrRecordNotFound, req.Table, req.RecordID)
	}
	if !row.AllowsAction(action.Name) {
		return ActionResult{}, fmt.Errorf("%w: %s on %s", ErrActionNotApplicable, action.Name, req.RecordID)
	}
	if err := s.opts.ActionValidator.Validate(req.Table, action, req.Params); err != nil {
		return ActionResult{}, err
	}
	result, err := s.opts.ActionHandler.HandleAction(ctx, ActionInvocation{
		Viewer:   viewer,
		Table:    desc,
		RecordID: req.RecordID,
		Action:   action,
		Params:   maps.Clone(req.Params),
		Row:      row,
	})
	if err != nil {
		s.recordTelemetry(ctx, "backoffice.action.error", map[string]any{
			"table":  req.Table,
			"action": req.Action,
			"error":  err.Error(),
		})
		return ActionResult{}, fmt.Errorf("backoffice: perform %s: %w", req.Action, err)
	}
	if result.Table == "" {
		result.Table = req.Table
	}
	if result.RecordID == "" {
		result.RecordID = req.RecordID
	}
	if result.Action == "" {
		result.Action = req.Action
	}
	if result.PerformedAt.IsZero() {
		result.PerformedAt = s.opts.Clock().UTC()
	}
	metadata := maps.Clone(req.Params)
	if metadata == nil {
		metadata = map[string]any{}
	}
	metadata["result_id"] = result.ID
	metadata["status"] = string(result.Status)
	s.emitActivity(ctx, viewer, activity.Event{
		Verb:           "backoffice.action." + req.Action,
		ObjectType:     req.Table,
		ObjectID:       req.RecordID,
		DefinitionCode: req.Table + ":" + req.Action,
		Metadata:       metadata,
		OccurredAt:     result.PerformedAt,
	})
	if err := s.NotifyTableUpdated(ctx, TableEvent{
		Table:    req.Table,
		RecordID: req.RecordID,
		Action:   req.Action,
		Reason:   "action",
	}); err != nil {
		return result, err
	}
	if _, logged := s.opts.ActionHandler.(*ActionLog); logged && req.Table != TableInterventions {
		if err := s.NotifyTableUpdated(ctx, TableEvent{
			Table:    TableInterventions,
			RecordID: result.ID,
			Action:   req.Action,
			Reason:   "action",
		}); err != nil {
			return result, err
		}
	}
	s.recordTelemetry(ctx, "backoffice.action.perform", map[string]any{
		"viewer":    viewer.UserID,
		"table":     req.Table,
		"record_id": req.RecordID,
		"action":    req.Action,
		"status":    string(result.Status),
	})
	return result, nil
}

// Export writes every filtered and sorted row of a table, not just one page,
// over the viewer's visible columns.
func (s *Service) Export(ctx context.Context, viewer ViewerContext, code string, q tableview.Query, format ExportFormat, w io.Writer) (ExportInfo, error) {
	exporter, err := exporterFor(format, s.opts.Exporters)
	if err != nil {
		return ExportInfo{}, err
	}
	table, err := s.Table(ctx, viewer, code)
	if err != nil {
		return ExportInfo{}, err
	}
	prefs, err := s.opts.PreferenceStore.TablePreferences(ctx, viewer, code)
	if err != nil {
		return ExportInfo{}, err
	}
	q = applyQueryPreferences(q, prefs)
	rows, err := table.Rows(ctx, q)
	if err != nil {
		return ExportInfo{}, err
	}
	desc := table.Descriptor()
	columns := visibleColumns(desc.Columns, prefs)
	now := s.opts.Clock()
	doc := ExportDocument{
		Title:       desc.Name,
		Columns:     columns,
		Rows:        projectRows(rows, columns),
		GeneratedAt: now,
	}
	if err := exporter.Export(w, doc); err != nil {
		return ExportInfo{}, err
	}
	info := ExportInfo{
		Table:       code,
		Format:      format,
		Filename:    ExportFilename(code, format, now),
		ContentType: format.ContentType(),
		Rows:        len(rows),
	}
	s.emitActivity(ctx, viewer, activity.Event{
		Verb:       "backoffice.table.export",
		ObjectType: "table",
		ObjectID:   code,
		Metadata:   map[string]any{"format": string(format), "rows": len(rows)},
	})
	s.recordTelemetry(ctx, "backoffice.table.export", map[string]any{
		"viewer": viewer.UserID,
		"table":  code,
		"format": string(format),
		"rows":   len(rows),
	})
	return info, nil
}

// ExportFilename names an export produced now.
func (s *Service) ExportFilename(code string, format ExportFormat) string {
	return ExportFilename(code, format, s.opts.Clock())
}

// Chart aggregates the filtered rows of a table into its chart series.
func (s *Service) Chart(ctx context.Context, viewer ViewerContext, code string, q tableview.Query) (ChartSeries, error) {
	table, err := s.Table(ctx, viewer, code)
	if err != nil {
		return ChartSeries{}, err
	}
	return table.Series(ctx, q)
}

// ChartHTML renders the table chart through the render cache.
func (s *Service) ChartHTML(ctx context.Context, viewer ViewerContext, code string, q tableview.Query) (string, error) {
	table, err := s.Table(ctx, viewer, code)
	if err != nil {
		return "", err
	}
	if err := table.Validate(q); err != nil {
		return "", err
	}
	html, err := s.opts.ChartCache.GetOrRender(code, q, func() (string, error) {
		series, err := table.Series(ctx, q)
		if err != nil {
			return "", err
		}
		return RenderChart(series, s.opts.ChartOptions)
	})
	if err != nil {
		return "", err
	}
	s.recordTelemetry(ctx, "backoffice.chart.render", map[string]any{
		"viewer": viewer.UserID,
		"table":  code,
	})
	return html, nil
}

// Refresh tells subscribers to reload a table.
func (s *Service) Refresh(ctx context.Context, viewer ViewerContext, code string) error {
	if _, err := s.Table(ctx, viewer, code); err != nil {
		return err
	}
	return s.NotifyTableUpdated(ctx, TableEvent{Table: code, Reason: "refresh"})
}

// NotifyTableUpdated exposes refresh hook invocation for commands/transports.
func (s *Service) NotifyTableUpdated(ctx context.Context, event TableEvent) error {
	s.opts.ChartCache.InvalidateTable(event.Table)
	if err := s.opts.RefreshHook.TableUpdated(ctx, event); err != nil {
		return err
	}
	s.recordTelemetry(ctx, "backoffice.table.event", map[string]any{
		"table":     event.Table,
		"record_id": event.RecordID,
		"reason":    event.Reason,
	})
	return nil
}

// Preferences returns the viewer's preferences for a table.
func (s *Service) Preferences(ctx context.Context, viewer ViewerContext, code string) (TablePreferences, error) {
	if _, err := s.Table(ctx, viewer, code); err != nil {
		return TablePreferences{}, err
	}
	return s.opts.PreferenceStore.TablePreferences(ctx, viewer, code)
}

// SavePreferences validates and persists per-viewer table preferences.
func (s *Service) SavePreferences(ctx context.Context, viewer ViewerContext, code string, prefs TablePreferences) error {
	if viewer.UserID == "" {
		return ErrMissingViewer
	}
	table, err := s.Table(ctx, viewer, code)
	if err != nil {
		return err
	}
	if err := table.Validate(tableview.Query{Sort: prefs.Sort, PageSize: prefs.PageSize}); err != nil {
		return err
	}
	desc := table.Descriptor()
	for _, key := range prefs.ColumnOrder {
		if _, ok := desc.Column(key); !ok {
			return fmt.Errorf("%w: %s", ErrUnknownColumn, key)
		}
	}
	for key := range prefs.HiddenColumns {
		if _, ok := desc.Column(key); !ok {
			return fmt.Errorf("%w: %s", ErrUnknownColumn, key)
		}
	}
	if err := s.opts.PreferenceStore.SaveTablePreferences(ctx, viewer, code, clonePreferences(prefs)); err != nil {
		return err
	}
	s.emitActivity(ctx, viewer, activity.Event{
		Verb:       "backoffice.preferences.save",
		ObjectType: "table",
		ObjectID:   code,
	})
	s.recordTelemetry(ctx, "backoffice.preferences.save", map[string]any{
		"viewer": viewer.UserID,
		"table":  code,
	})
	return nil
}

func (s *Service) recordTelemetry(ctx context.Context, event string, payload map[string]any) {
	s.opts.Telemetry.Record(ctx, event, payload)
}

func (s *Service) emitActivity(ctx context.Context, viewer ViewerContext, evt activity.Event) {
	if !s.activity.Enabled() {
		return
	}
	meta := activityContextFrom(ctx).withViewer(viewer)
	evt.ActorID = meta.ActorID
	evt.UserID = meta.UserID
	evt.TenantID = meta.TenantID
	if err := s.activity.Emit(ctx, evt); err != nil {
		s.recordTelemetry(ctx, "backoffice.activity.error", map[string]any{
			"verb":  evt.Verb,
			"error": err.Error(),
		})
	}
}

func applyQueryPreferences(q tableview.Query, prefs TablePreferences) tableview.Query {
	if q.PageSize == 0 && prefs.PageSize > 0 {
		q.PageSize = prefs.PageSize
	}
	if q.Sort == "" {
		q.Sort = prefs.Sort
	}
	return q
}
