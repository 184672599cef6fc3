package gorouter

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	router "github.com/goliatone/go-router"

	"github.com/recliq/go-backoffice/components/backoffice"
	"github.com/recliq/go-backoffice/components/backoffice/commands"
	"github.com/recliq/go-backoffice/components/backoffice/httpapi"
	"github.com/recliq/go-backoffice/components/backoffice/queries"
	"github.com/recliq/go-backoffice/components/backoffice/tableview"
)

// SessionHeader carries the session token when no Authorization header is sent.
const SessionHeader = "X-Backoffice-Session"

// ViewerResolver converts a router.Context into a backoffice.ViewerContext.
type ViewerResolver func(router.Context) backoffice.ViewerContext

// ChartProvider renders table charts.
type ChartProvider interface {
	Chart(ctx context.Context, viewer backoffice.ViewerContext, code string, q tableview.Query) (backoffice.ChartSeries, error)
	ChartHTML(ctx context.Context, viewer backoffice.ViewerContext, code string, q tableview.Query) (string, error)
}

// Config wires go-router with the backoffice controller, API, sessions and hooks.
type Config[T any] struct {
	Router         router.Router[T]
	Controller     *backoffice.Controller
	API            httpapi.Executor
	Charts         ChartProvider
	Broadcast      *backoffice.BroadcastHook
	Sessions       *backoffice.SessionManager
	Authenticator  *backoffice.Authenticator
	ViewerResolver ViewerResolver
	BasePath       string
	Routes         RouteConfig
}

// RouteConfig customizes the relative paths used for backoffice endpoints.
type RouteConfig struct {
	Index       string
	Table       string
	Tables      string
	Page        string
	Record      string
	Drawer      string
	Action      string
	Export      string
	Chart       string
	Refresh     string
	Preferences string
	Login       string
	Logout      string
	WebSocket   string
}

// Register mounts backoffice routes (HTML, JSON, auth, WebSocket) on a go-router router.
func Register[T any](cfg Config[T]) error {
	if cfg.Router == nil {
		return errors.New("gorouter: router is required")
	}
	if cfg.Controller == nil {
		return errors.New("gorouter: controller is required")
	}
	routes := cfg.routes()
	base := cfg.BasePath
	if base == "" {
		base = "/admin"
	}
	viewerResolver := cfg.ViewerResolver
	if viewerResolver == nil {
		viewerResolver = defaultViewerResolver
		if cfg.Sessions != nil {
			viewerResolver = SessionViewerResolver(cfg.Sessions)
		}
	}

	group := cfg.Router.Group(base)

	group.Get(routes.Index, router.WrapHandler(func(ctx router.Context) error {
		viewer := viewerResolver(ctx)
		var buf bytes.Buffer
		if err := cfg.Controller.RenderIndex(ctx.Context(), viewer, &buf); err != nil {
			return respondError(ctx, err)
		}
		ctx.SetHeader("Content-Type", "text/html; charset=utf-8")
		return ctx.Send(buf.Bytes())
	}))

	group.Get(routes.Table, router.WrapHandler(func(ctx router.Context) error {
		viewer := viewerResolver(ctx)
		code := ctx.Param("table")
		q, err := queryFromContext(ctx, httpapi.FilterKeys(ctx.Context(), cfg.API, viewer, code))
		if err != nil {
			return respondError(ctx, err)
		}
		var buf bytes.Buffer
		if err := cfg.Controller.RenderTable(ctx.Context(), viewer, code, q, &buf); err != nil {
			return respondError(ctx, err)
		}
		ctx.SetHeader("Content-Type", "text/html; charset=utf-8")
		return ctx.Send(buf.Bytes())
	}))

	group.Get(routes.Record, router.WrapHandler(func(ctx router.Context) error {
		detail, err := cfg.Controller.OpenDrawer(ctx.Context(), viewerResolver(ctx), ctx.Param("table"), ctx.Param("id"))
		if err != nil {
			return respondError(ctx, err)
		}
		if !detail.Open {
			return respondError(ctx, backoffice.ErrRecordNotFound)
		}
		return ctx.JSON(http.StatusOK, detail)
	}))

	group.Get(routes.Drawer, router.WrapHandler(func(ctx router.Context) error {
		detail, err := cfg.Controller.CurrentDrawer(ctx.Context(), viewerResolver(ctx))
		if err != nil {
			return respondError(ctx, err)
		}
		return ctx.JSON(http.StatusOK, detail)
	}))

	group.Delete(routes.Drawer, router.WrapHandler(func(ctx router.Context) error {
		if err := cfg.Controller.CloseDrawer(ctx.Context(), viewerResolver(ctx)); err != nil {
			return respondError(ctx, err)
		}
		return ctx.JSON(http.StatusOK, map[string]string{"status": "closed"})
	}))

	if cfg.API != nil {
		registerAPI(group, cfg.API, viewerResolver, routes)
	}

	if cfg.Charts != nil {
		registerChart(group, cfg.Charts, cfg.API, viewerResolver, routes.Chart)
	}

	if cfg.Sessions != nil && cfg.Authenticator != nil {
		registerAuth(group, cfg.Sessions, cfg.Authenticator, routes)
	}

	if cfg.Broadcast != nil {
		registerWebSocket(group, cfg.Broadcast, routes.WebSocket)
	}

	return nil
}

func registerAPI[T any](r router.Router[T], api httpapi.Executor, resolver ViewerResolver, routes RouteConfig) {
	r.Get(routes.Tables, router.WrapHandler(func(ctx router.Context) error {
		tables, err := api.Tables(ctx.Context(), resolver(ctx))
		if err != nil {
			return respondError(ctx, err)
		}
		return ctx.JSON(http.StatusOK, tables)
	}))

	r.Get(routes.Page, router.WrapHandler(func(ctx router.Context) error {
		viewer := resolver(ctx)
		code := ctx.Param("table")
		q, err := queryFromContext(ctx, httpapi.FilterKeys(ctx.Context(), api, viewer, code))
		if err != nil {
			return respondError(ctx, err)
		}
		page, err := api.Page(ctx.Context(), queries.TablePageInput{Viewer: viewer, Table: code, Query: q})
		if err != nil {
			return respondError(ctx, err)
		}
		return ctx.JSON(http.StatusOK, page)
	}))

	r.Post(routes.Action, router.WrapHandler(func(ctx router.Context) error {
		var params map[string]any
		if body := ctx.Body(); len(body) > 0 {
			if err := json.Unmarshal(body, &params); err != nil {
				return respondError(ctx, errors.Join(httpapi.ErrBadRequest, err))
			}
		}
		var result backoffice.ActionResult
		err := api.PerformAction(ctx.Context(), commands.PerformActionInput{
			Viewer: resolver(ctx),
			Request: backoffice.ActionRequest{
				Table:    ctx.Param("table"),
				RecordID: ctx.Param("id"),
				Action:   ctx.Param("action"),
				Params:   params,
			},
			Result: &result,
		})
		if err != nil {
			return respondError(ctx, err)
		}
		return ctx.JSON(http.StatusOK, result)
	}))

	r.Get(routes.Export, router.WrapHandler(func(ctx router.Context) error {
		viewer := resolver(ctx)
		code := ctx.Param("table")
		q, err := queryFromContext(ctx, httpapi.FilterKeys(ctx.Context(), api, viewer, code))
		if err != nil {
			return respondError(ctx, err)
		}
		format, err := backoffice.ParseExportFormat(ctx.Query("format"))
		if err != nil {
			return respondError(ctx, err)
		}
		var buf bytes.Buffer
		var info backoffice.ExportInfo
		err = api.Export(ctx.Context(), commands.ExportTableInput{
			Viewer: viewer,
			Table:  code,
			Query:  q,
			Format: format,
			Writer: &buf,
			Info:   &info,
		})
		if err != nil {
			return respondError(ctx, err)
		}
		ctx.SetHeader("Content-Type", info.ContentType)
		ctx.SetHeader("Content-Disposition", httpapi.ContentDisposition(info.Filename))
		return ctx.Send(buf.Bytes())
	}))

	r.Post(routes.Refresh, router.WrapHandler(func(ctx router.Context) error {
		if err := api.Refresh(ctx.Context(), commands.RefreshTableInput{Viewer: resolver(ctx), Table: ctx.Param("table")}); err != nil {
			return respondError(ctx, err)
		}
		return ctx.JSON(http.StatusAccepted, map[string]string{"status": "queued"})
	}))

	r.Post(routes.Preferences, router.WrapHandler(func(ctx router.Context) error {
		var payload commands.SaveTablePreferencesInput
		if err := json.Unmarshal(ctx.Body(), &payload); err != nil {
			return respondError(ctx, errors.Join(httpapi.ErrBadRequest, err))
		}
		payload.Viewer = resolver(ctx)
		payload.Table = ctx.Param("table")
		if err := api.SavePreferences(ctx.Context(), payload); err != nil {
			return respondError(ctx, err)
		}
		return ctx.JSON(http.StatusOK, map[string]string{"status": "saved"})
	}))
}

func registerChart[T any](r router.Router[T], charts ChartProvider, api httpapi.Executor, resolver ViewerResolver, path string) {
	r.Get(path, router.WrapHandler(func(ctx router.Context) error {
		viewer := resolver(ctx)
		code := ctx.Param("table")
		q, err := queryFromContext(ctx, httpapi.FilterKeys(ctx.Context(), api, viewer, code))
		if err != nil {
			return respondError(ctx, err)
		}
		if strings.EqualFold(ctx.Query("format"), "html") {
			html, err := charts.ChartHTML(ctx.Context(), viewer, code, q)
			if err != nil {
				return respondError(ctx, err)
			}
			ctx.SetHeader("Content-Type", "text/html; charset=utf-8")
			return ctx.Send([]byte(html))
		}
		series, err := charts.Chart(ctx.Context(), viewer, code, q)
		if err != nil {
			return respondError(ctx, err)
		}
		return ctx.JSON(http.StatusOK, series)
	}))
}

type loginRequest struct {
	Email     string `json:"email"`
	AccessKey string `json:"access_key"`
}

type loginResponse struct {
	Token     string                   `json:"token"`
	SessionID string                   `json:"session_id"`
	User      backoffice.ViewerContext `json:"user"`
	ExpiresAt string                   `json:"expires_at"`
}

func registerAuth[T any](r router.Router[T], sessions *backoffice.SessionManager, auth *backoffice.Authenticator, routes RouteConfig) {
	r.Post(routes.Login, router.WrapHandler(func(ctx router.Context) error {
		var payload loginRequest
		if err := json.Unmarshal(ctx.Body(), &payload); err != nil {
			return respondError(ctx, errors.Join(httpapi.ErrBadRequest, err))
		}
		viewer, err := auth.Authenticate(ctx.Context(), payload.Email, payload.AccessKey)
		if err != nil {
			return respondError(ctx, err)
		}
		session, token, err := sessions.Begin(ctx.Context(), viewer)
		if err != nil {
			return respondError(ctx, err)
		}
		return ctx.JSON(http.StatusOK, loginResponse{
			Token:     token,
			SessionID: session.ID,
			User:      session.Viewer(),
			ExpiresAt: session.ExpiresAt.Format(time.RFC3339),
		})
	}))

	r.Post(routes.Logout, router.WrapHandler(func(ctx router.Context) error {
		if err := sessions.End(ctx.Context(), sessionToken(ctx)); err != nil {
			return respondError(ctx, err)
		}
		return ctx.JSON(http.StatusOK, map[string]string{"status": "signed_out"})
	}))
}

func registerWebSocket[T any](r router.Router[T], hook *backoffice.BroadcastHook, path string) {
	cfg := router.DefaultWebSocketConfig()
	r.WebSocket(path, cfg, func(ws router.WebSocketContext) error {
		events, cancel := hook.Subscribe()
		defer cancel()
		for {
			select {
			case event, ok := <-events:
				if !ok {
					return nil
				}
				if err := ws.WriteJSON(event); err != nil {
					return err
				}
			case <-ws.Context().Done():
				return ws.Close()
			}
		}
	})
}

// SessionViewerResolver resolves the viewer from a bearer or SessionHeader token.
// Requests without a valid session resolve to the anonymous viewer.
func SessionViewerResolver(sessions *backoffice.SessionManager) ViewerResolver {
	return func(ctx router.Context) backoffice.ViewerContext {
		token := sessionToken(ctx)
		if token == "" {
			return defaultViewerResolver(ctx)
		}
		session, err := sessions.Resolve(ctx.Context(), token)
		if err != nil {
			return backoffice.ViewerContext{}
		}
		return session.Viewer()
	}
}

func sessionToken(ctx router.Context) string {
	if header := strings.TrimSpace(ctx.Header("Authorization")); header != "" {
		if token, ok := strings.CutPrefix(header, "Bearer "); ok {
			return strings.TrimSpace(token)
		}
	}
	return strings.TrimSpace(ctx.Header(SessionHeader))
}

func defaultViewerResolver(ctx router.Context) backoffice.ViewerContext {
	var viewer backoffice.ViewerContext
	if v, ok := ctx.Locals("user_id").(string); ok {
		viewer.UserID = v
	}
	if v, ok := ctx.Locals("user_name").(string); ok {
		viewer.Name = v
	}
	if roles, ok := ctx.Locals("roles").([]string); ok {
		viewer.Roles = roles
	}
	if v, ok := ctx.Locals("session_id").(string); ok {
		viewer.SessionID = v
	}
	return viewer
}

func queryFromContext(ctx router.Context, filters []string) (tableview.Query, error) {
	values := url.Values{}
	keys := []string{"search", "sort", "page", "page_size"}
	for _, key := range filters {
		keys = append(keys, key, "filter."+key)
	}
	for _, key := range keys {
		if v := ctx.Query(key); v != "" {
			values.Set(key, v)
		}
	}
	return httpapi.QueryFromValues(values, filters)
}

func respondError(ctx router.Context, err error) error {
	return ctx.JSON(httpapi.StatusFor(err), httpapi.ErrorBody(err))
}

func (cfg Config[T]) routes() RouteConfig {
	return defaultRouteConfig(cfg.Routes)
}

func defaultRouteConfig(routes RouteConfig) RouteConfig {
	if routes.Index == "" {
		routes.Index = "/backoffice"
	}
	if routes.Table == "" {
		routes.Table = "/backoffice/tables/:table"
	}
	if routes.Tables == "" {
		routes.Tables = "/backoffice/api/tables"
	}
	if routes.Page == "" {
		routes.Page = "/backoffice/api/tables/:table"
	}
	if routes.Record == "" {
		routes.Record = "/backoffice/api/tables/:table/records/:id"
	}
	if routes.Drawer == "" {
		routes.Drawer = "/backoffice/api/drawer"
	}
	if routes.Action == "" {
		routes.Action = "/backoffice/api/tables/:table/records/:id/actions/:action"
	}
	if routes.Export == "" {
		routes.Export = "/backoffice/api/tables/:table/export"
	}
	if routes.Chart == "" {
		routes.Chart = "/backoffice/api/tables/:table/chart"
	}
	if routes.Refresh == "" {
		routes.Refresh = "/backoffice/api/tables/:table/refresh"
	}
	if routes.Preferences == "" {
		routes.Preferences = "/backoffice/api/tables/:table/preferences"
	}
	if routes.Login == "" {
		routes.Login = "/backoffice/auth/login"
	}
	if routes.Logout == "" {
		routes.Logout = "/backoffice/auth/logout"
	}
	if routes.WebSocket == "" {
		routes.WebSocket = "/backoffice/ws"
	}
	return routes
}
