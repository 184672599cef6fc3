package httpapi

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/recliq/go-backoffice/components/backoffice"
)

func newTestMux(t *testing.T, log *backoffice.ActionLog) *http.ServeMux {
	t.Helper()
	service := backoffice.NewService(backoffice.Options{
		ActionHandler: log,
		Authorizer:    backoffice.RoleAuthorizer{},
	})
	handlers := &Handlers{
		API: NewCommandExecutor(service, nil),
		Viewer: func(r *http.Request) backoffice.ViewerContext {
			user := r.Header.Get("X-User")
			if user == "" {
				return backoffice.ViewerContext{}
			}
			return backoffice.ViewerContext{UserID: user, Roles: strings.Split(r.Header.Get("X-Roles"), ",")}
		},
	}
	mux := http.NewServeMux()
	handlers.Routes(mux, "")
	return mux
}

func serve(mux http.Handler, method, target string, body []byte, roles string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	req.Header.Set("X-User", "op-1")
	req.Header.Set("X-Roles", roles)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func TestHandlePageFiltersAndPaginates(t *testing.T) {
	mux := newTestMux(t, backoffice.NewActionLog())
	rec := serve(mux, http.MethodGet, "/admin/backoffice/api/tables/payments?status=failed&page=1", nil, "operations")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var page backoffice.TablePage
	if err := json.Unmarshal(rec.Body.Bytes(), &page); err != nil {
		t.Fatalf("decode page: %v", err)
	}
	if page.TotalCount != 4 || len(page.Rows) != 4 {
		t.Fatalf("expected 4 failed payments, got %d/%d", page.TotalCount, len(page.Rows))
	}
}

func TestHandlePageIgnoresUnrelatedParams(t *testing.T) {
	mux := newTestMux(t, backoffice.NewActionLog())
	rec := serve(mux, http.MethodGet, "/admin/backoffice/api/tables/payments?filter.status=failed&_=1712345678&region=lagos", nil, "operations")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var page backoffice.TablePage
	if err := json.Unmarshal(rec.Body.Bytes(), &page); err != nil {
		t.Fatalf("decode page: %v", err)
	}
	if page.TotalCount != 4 {
		t.Fatalf("expected 4 failed payments, got %d", page.TotalCount)
	}
}

func TestHandlePageErrorMapping(t *testing.T) {
	mux := newTestMux(t, backoffice.NewActionLog())
	tests := []struct {
		target string
		want   int
	}{
		{target: "/admin/backoffice/api/tables/ghost", want: http.StatusNotFound},
		{target: "/admin/backoffice/api/tables/payments?sort=weight", want: http.StatusBadRequest},
		{target: "/admin/backoffice/api/tables/payments?page=abc", want: http.StatusBadRequest},
		{target: "/admin/backoffice/api/tables/payments?page=40", want: http.StatusOK},
	}
	for _, tt := range tests {
		rec := serve(mux, http.MethodGet, tt.target, nil, "operations")
		if rec.Code != tt.want {
			t.Fatalf("%s: expected %d, got %d", tt.target, tt.want, rec.Code)
		}
		if tt.want != http.StatusOK && !strings.Contains(rec.Body.String(), `"error"`) {
			t.Fatalf("%s: expected error body, got %s", tt.target, rec.Body.String())
		}
	}
}

func TestHandleDetail(t *testing.T) {
	mux := newTestMux(t, backoffice.NewActionLog())
	rec := serve(mux, http.MethodGet, "/admin/backoffice/api/tables/payments/records/PAY-1004", nil, "operations")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	rec = serve(mux, http.MethodGet, "/admin/backoffice/api/tables/payments/records/PAY-0000", nil, "operations")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for missing record, got %d", rec.Code)
	}
}

func TestHandleAction(t *testing.T) {
	log := backoffice.NewActionLog()
	mux := newTestMux(t, log)

	body, _ := json.Marshal(map[string]any{"reason": "duplicate charge"})
	rec := serve(mux, http.MethodPost, "/admin/backoffice/api/tables/payments/records/PAY-1001/actions/refund_payment", body, "operations")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if log.Len() != 1 {
		t.Fatalf("expected intervention to be recorded")
	}

	rec = serve(mux, http.MethodPost, "/admin/backoffice/api/tables/payments/records/PAY-1001/actions/refund_payment", body, "analyst")
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for analyst, got %d", rec.Code)
	}
	rec = serve(mux, http.MethodPost, "/admin/backoffice/api/tables/payments/records/PAY-1001/actions/refund_payment", []byte(`{}`), "operations")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing reason, got %d", rec.Code)
	}
	rec = serve(mux, http.MethodPost, "/admin/backoffice/api/tables/payments/records/PAY-1001/actions/refund_payment", []byte(`{`), "operations")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for malformed body, got %d", rec.Code)
	}
}

func TestHandleExportCSV(t *testing.T) {
	mux := newTestMux(t, backoffice.NewActionLog())
	rec := serve(mux, http.MethodGet, "/admin/backoffice/api/tables/referrals/export?format=csv", nil, "operations")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "text/csv" {
		t.Fatalf("unexpected content type %s", ct)
	}
	if cd := rec.Header().Get("Content-Disposition"); !strings.Contains(cd, "referrals-") || !strings.Contains(cd, ".csv") {
		t.Fatalf("unexpected content disposition %s", cd)
	}
	records, err := csv.NewReader(rec.Body).ReadAll()
	if err != nil {
		t.Fatalf("parse csv: %v", err)
	}
	if len(records) != 17 {
		t.Fatalf("expected header plus 16 referrals, got %d lines", len(records))
	}

	rec = serve(mux, http.MethodGet, "/admin/backoffice/api/tables/referrals/export?format=xlsx", nil, "operations")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown format, got %d", rec.Code)
	}
}

func TestHandleRefreshAndPreferences(t *testing.T) {
	mux := newTestMux(t, backoffice.NewActionLog())
	rec := serve(mux, http.MethodPost, "/admin/backoffice/api/tables/agents/refresh", nil, "operations")
	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d", rec.Code)
	}
	body, _ := json.Marshal(map[string]any{"page_size": 5, "hidden_columns": []string{"rating"}})
	rec = serve(mux, http.MethodPost, "/admin/backoffice/api/tables/agents/preferences", body, "operations")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	rec = serve(mux, http.MethodGet, "/admin/backoffice/api/tables/agents", nil, "operations")
	var page backoffice.TablePage
	if err := json.Unmarshal(rec.Body.Bytes(), &page); err != nil {
		t.Fatalf("decode page: %v", err)
	}
	if len(page.Rows) != 5 {
		t.Fatalf("expected saved page size to apply, got %d rows", len(page.Rows))
	}
}

func TestHandleTablesRequiresViewer(t *testing.T) {
	mux := newTestMux(t, backoffice.NewActionLog())
	req := httptest.NewRequest(http.MethodGet, "/admin/backoffice/api/tables", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	var tables []backoffice.TableDescriptor
	if err := json.Unmarshal(rec.Body.Bytes(), &tables); err != nil {
		t.Fatalf("decode tables: %v", err)
	}
	if len(tables) != 0 {
		t.Fatalf("expected anonymous viewer to see no tables, got %d", len(tables))
	}
}

func TestQueryFromValues(t *testing.T) {
	values := url.Values{
		"search":        {" ada "},
		"page_size":     {"25"},
		"filter.status": {"failed"},
		"method":        {"card"},
		"format":        {"csv"},
		"_":             {"1712345678"},
		"region":        {"Lagos"},
	}
	q, err := QueryFromValues(values, []string{"status", "method", "channel"})
	if err != nil {
		t.Fatalf("QueryFromValues returned error: %v", err)
	}
	if q.Page != 1 || q.PageSize != 25 || q.Search != "ada" {
		t.Fatalf("unexpected query %#v", q)
	}
	if q.Filters["status"] != "failed" || q.Filters["method"] != "card" || len(q.Filters) != 2 {
		t.Fatalf("unexpected filters %#v", q.Filters)
	}
	if _, err := QueryFromValues(url.Values{"page": {"two"}}, nil); !errors.Is(err, ErrBadRequest) {
		t.Fatalf("expected ErrBadRequest, got %v", err)
	}
}

func TestStatusFor(t *testing.T) {
	cases := map[error]int{
		backoffice.ErrTableNotFound:       http.StatusNotFound,
		backoffice.ErrForbidden:           http.StatusForbidden,
		backoffice.ErrUnauthenticated:     http.StatusUnauthorized,
		backoffice.ErrUnsupportedFormat:   http.StatusBadRequest,
		backoffice.ErrActionNotApplicable: http.StatusBadRequest,
		errors.New("boom"):                http.StatusInternalServerError,
	}
	for err, want := range cases {
		if got := StatusFor(err); got != want {
			t.Fatalf("StatusFor(%v) = %d, want %d", err, got, want)
		}
	}
}
