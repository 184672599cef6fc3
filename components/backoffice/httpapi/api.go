package httpapi

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/recliq/go-backoffice/components/backoffice"
	"github.com/recliq/go-backoffice/components/backoffice/commands"
	"github.com/recliq/go-backoffice/components/backoffice/queries"
)

// ViewerFunc resolves the signed-in viewer for a request.
type ViewerFunc func(*http.Request) backoffice.ViewerContext

// Handlers exposes net/http endpoints backed by shared commands and queries.
type Handlers struct {
	API       Executor
	Viewer    ViewerFunc
	Broadcast *backoffice.BroadcastHook
}

// Routes mounts the JSON API under base (default "/admin") on mux.
func (h *Handlers) Routes(mux *http.ServeMux, base string) {
	if base == "" {
		base = "/admin"
	}
	prefix := strings.TrimRight(base, "/") + "/backoffice/api"
	mux.HandleFunc("GET "+prefix+"/tables", h.HandleTables)
	mux.HandleFunc("GET "+prefix+"/tables/{table}", func(w http.ResponseWriter, r *http.Request) {
		h.HandlePage(w, r, r.PathValue("table"))
	})
	mux.HandleFunc("GET "+prefix+"/tables/{table}/records/{id}", func(w http.ResponseWriter, r *http.Request) {
		h.HandleDetail(w, r, r.PathValue("table"), r.PathValue("id"))
	})
	mux.HandleFunc("POST "+prefix+"/tables/{table}/records/{id}/actions/{action}", func(w http.ResponseWriter, r *http.Request) {
		h.HandleAction(w, r, r.PathValue("table"), r.PathValue("id"), r.PathValue("action"))
	})
	mux.HandleFunc("GET "+prefix+"/tables/{table}/export", func(w http.ResponseWriter, r *http.Request) {
		h.HandleExport(w, r, r.PathValue("table"))
	})
	mux.HandleFunc("POST "+prefix+"/tables/{table}/refresh", func(w http.ResponseWriter, r *http.Request) {
		h.HandleRefresh(w, r, r.PathValue("table"))
	})
	mux.HandleFunc("POST "+prefix+"/tables/{table}/preferences", func(w http.ResponseWriter, r *http.Request) {
		h.HandlePreferences(w, r, r.PathValue("table"))
	})
	if h.Broadcast != nil {
		mux.HandleFunc("GET "+strings.TrimRight(base, "/")+"/backoffice/ws", h.Broadcast.ServeWebSocket)
		mux.HandleFunc("GET "+strings.TrimRight(base, "/")+"/backoffice/events", h.Broadcast.ServeSSE)
	}
}

func (h *Handlers) HandleTables(w http.ResponseWriter, r *http.Request) {
	tables, err := h.API.Tables(r.Context(), h.viewer(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tables)
}

func (h *Handlers) HandlePage(w http.ResponseWriter, r *http.Request, table string) {
	viewer := h.viewer(r)
	q, err := QueryFromValues(r.URL.Query(), FilterKeys(r.Context(), h.API, viewer, table))
	if err != nil {
		writeError(w, err)
		return
	}
	page, err := h.API.Page(r.Context(), queries.TablePageInput{Viewer: viewer, Table: table, Query: q})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

func (h *Handlers) HandleDetail(w http.ResponseWriter, r *http.Request, table, recordID string) {
	detail, err := h.API.Detail(r.Context(), queries.RecordDetailInput{Viewer: h.viewer(r), Table: table, RecordID: recordID})
	if err != nil {
		writeError(w, err)
		return
	}
	if !detail.Open {
		writeError(w, backoffice.ErrRecordNotFound)
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

func (h *Handlers) HandleAction(w http.ResponseWriter, r *http.Request, table, recordID, action string) {
	var params map[string]any
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
			writeError(w, errors.Join(ErrBadRequest, err))
			return
		}
	}
	var result backoffice.ActionResult
	err := h.API.PerformAction(r.Context(), commands.PerformActionInput{
		Viewer: h.viewer(r),
		Request: backoffice.ActionRequest{
			Table:    table,
			RecordID: recordID,
			Action:   action,
			Params:   params,
		},
		Result: &result,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *Handlers) HandleExport(w http.ResponseWriter, r *http.Request, table string) {
	viewer := h.viewer(r)
	q, err := QueryFromValues(r.URL.Query(), FilterKeys(r.Context(), h.API, viewer, table))
	if err != nil {
		writeError(w, err)
		return
	}
	format, err := backoffice.ParseExportFormat(r.URL.Query().Get("format"))
	if err != nil {
		writeError(w, err)
		return
	}
	var buf bytes.Buffer
	var info backoffice.ExportInfo
	err = h.API.Export(r.Context(), commands.ExportTableInput{
		Viewer: viewer,
		Table:  table,
		Query:  q,
		Format: format,
		Writer: &buf,
		Info:   &info,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", info.ContentType)
	w.Header().Set("Content-Disposition", ContentDisposition(info.Filename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

func (h *Handlers) HandleRefresh(w http.ResponseWriter, r *http.Request, table string) {
	if err := h.API.Refresh(r.Context(), commands.RefreshTableInput{Viewer: h.viewer(r), Table: table}); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "queued"})
}

func (h *Handlers) HandlePreferences(w http.ResponseWriter, r *http.Request, table string) {
	var payload commands.SaveTablePreferencesInput
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, errors.Join(ErrBadRequest, err))
		return
	}
	payload.Viewer = h.viewer(r)
	payload.Table = table
	if err := h.API.SavePreferences(r.Context(), payload); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "saved"})
}

func (h *Handlers) viewer(r *http.Request) backoffice.ViewerContext {
	if h.Viewer == nil {
		return backoffice.ViewerContext{}
	}
	return h.Viewer(r)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, StatusFor(err), ErrorBody(err))
}
