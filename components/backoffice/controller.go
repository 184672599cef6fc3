package backoffice

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/recliq/go-backoffice/components/backoffice/tableview"
)

const (
	defaultIndexTemplate = "index.html"
	defaultTableTemplate = "table.html"
)

// TableService is the subset of Service the controller needs.
type TableService interface {
	Tables(ctx context.Context, viewer ViewerContext) []TableDescriptor
	QueryTable(ctx context.Context, viewer ViewerContext, code string, q tableview.Query) (TablePage, error)
	OpenDetail(ctx context.Context, viewer ViewerContext, code, recordID string) (Detail, error)
	ChartHTML(ctx context.Context, viewer ViewerContext, code string, q tableview.Query) (string, error)
}

// DrawerStore keeps the open drawer per session.
type DrawerStore interface {
	SetDrawer(ctx context.Context, sessionID string, state DrawerState) error
	Drawer(ctx context.Context, sessionID string) (DrawerState, error)
}

// ControllerOptions wires the controller collaborators.
type ControllerOptions struct {
	Service       TableService
	Renderer      Renderer
	Drawers       DrawerStore
	IndexTemplate string
	TableTemplate string
}

// Controller orchestrates HTTP handlers/routes for the backoffice pages.
type Controller struct {
	service       TableService
	renderer      Renderer
	drawers       DrawerStore
	indexTemplate string
	tableTemplate string
}

// TableView is everything a table page needs to render.
type TableView struct {
	Viewer    ViewerContext     `json:"viewer"`
	Tables    []TableDescriptor `json:"tables"`
	Page      TablePage         `json:"page"`
	Detail    Detail            `json:"detail"`
	ChartHTML string            `json:"chart_html,omitempty"`
}

// NewController wires the service into a controller.
func NewController(opts ControllerOptions) *Controller {
	if opts.IndexTemplate == "" {
		opts.IndexTemplate = defaultIndexTemplate
	}
	if opts.TableTemplate == "" {
		opts.TableTemplate = defaultTableTemplate
	}
	return &Controller{
		service:       opts.Service,
		renderer:      opts.Renderer,
		drawers:       opts.Drawers,
		indexTemplate: opts.IndexTemplate,
		tableTemplate: opts.TableTemplate,
	}
}

// OpenDrawer selects a record and remembers the selection on the viewer's
// session. A record that no longer exists closes the drawer.
func (c *Controller) OpenDrawer(ctx context.Context, viewer ViewerContext, code, recordID string) (Detail, error) {
	if c.service == nil {
		return Detail{}, nil
	}
	detail, err := c.service.OpenDetail(ctx, viewer, code, recordID)
	if err != nil {
		return Detail{}, err
	}
	state := DrawerState{}
	if detail.Open {
		state = DrawerState{Table: code, RecordID: recordID}
	}
	if err := c.storeDrawer(ctx, viewer, state); err != nil {
		return Detail{}, err
	}
	return detail, nil
}

// CloseDrawer clears the drawer selection.
func (c *Controller) CloseDrawer(ctx context.Context, viewer ViewerContext) error {
	return c.storeDrawer(ctx, viewer, DrawerState{})
}

// CurrentDrawer resolves the drawer remembered on the viewer's session.
func (c *Controller) CurrentDrawer(ctx context.Context, viewer ViewerContext) (Detail, error) {
	if c.service == nil || c.drawers == nil || viewer.SessionID == "" {
		return Detail{}, nil
	}
	state, err := c.drawers.Drawer(ctx, viewer.SessionID)
	if err != nil {
		return Detail{}, err
	}
	if !state.IsOpen() {
		return Detail{}, nil
	}
	detail, err := c.service.OpenDetail(ctx, viewer, state.Table, state.RecordID)
	if err != nil && !IsNotFound(err) && !errors.Is(err, ErrForbidden) {
		return Detail{}, err
	}
	if err != nil || !detail.Open {
		return Detail{}, c.storeDrawer(ctx, viewer, DrawerState{})
	}
	return detail, nil
}

// View assembles a table page, its chart, and the drawer if it belongs to this table.
func (c *Controller) View(ctx context.Context, viewer ViewerContext, code string, q tableview.Query) (TableView, error) {
	if c.service == nil {
		return TableView{}, nil
	}
	page, err := c.service.QueryTable(ctx, viewer, code, q)
	if err != nil {
		return TableView{}, err
	}
	view := TableView{
		Viewer: viewer,
		Tables: c.service.Tables(ctx, viewer),
		Page:   page,
	}
	detail, err := c.CurrentDrawer(ctx, viewer)
	if err != nil {
		return TableView{}, err
	}
	if detail.Table == code {
		view.Detail = detail
	}
	html, err := c.service.ChartHTML(ctx, viewer, code, q)
	switch {
	case err == nil:
		view.ChartHTML = html
	case !errors.Is(err, ErrChartNotDefined):
		return TableView{}, err
	}
	return view, nil
}

// RenderIndex renders the table directory for the viewer.
func (c *Controller) RenderIndex(ctx context.Context, viewer ViewerContext, out io.Writer) error {
	if c.renderer == nil {
		return fmt.Errorf("backoffice: renderer not configured")
	}
	var tables []TableDescriptor
	if c.service != nil {
		tables = c.service.Tables(ctx, viewer)
	}
	_, err := c.renderer.Render(c.indexTemplate, map[string]any{
		"viewer": viewer,
		"tables": tables,
	}, out)
	return err
}

// RenderTable renders a table page through the configured renderer.
func (c *Controller) RenderTable(ctx context.Context, viewer ViewerContext, code string, q tableview.Query, out io.Writer) error {
	if c.renderer == nil {
		return fmt.Errorf("backoffice: renderer not configured")
	}
	view, err := c.View(ctx, viewer, code, q)
	if err != nil {
		return err
	}
	_, err = c.renderer.Render(c.tableTemplate, map[string]any{
		"viewer":     view.Viewer,
		"tables":     view.Tables,
		"page":       view.Page,
		"detail":     view.Detail,
		"chart_html": view.ChartHTML,
	}, out)
	return err
}

func (c *Controller) storeDrawer(ctx context.Context, viewer ViewerContext, state DrawerState) error {
	if c.drawers == nil || viewer.SessionID == "" {
		return nil
	}
	return c.drawers.SetDrawer(ctx, viewer.SessionID, state)
}
