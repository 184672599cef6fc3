package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/recliq/go-backoffice/components/backoffice"
	"github.com/recliq/go-backoffice/components/backoffice/tableview"
)

// ErrBadRequest marks malformed transport input.
var ErrBadRequest = errors.New("httpapi: bad request")

const filterPrefix = "filter."

// QueryFromValues builds a table query from URL parameters. Only the given
// filter keys are read as filters, plain or with a "filter." prefix; any other
// parameter is ignored. Page defaults to 1.
func QueryFromValues(values url.Values, filters []string) (tableview.Query, error) {
	q := tableview.Query{
		Search: strings.TrimSpace(values.Get("search")),
		Sort:   strings.TrimSpace(values.Get("sort")),
		Page:   1,
	}
	if raw := strings.TrimSpace(values.Get("page")); raw != "" {
		page, err := strconv.Atoi(raw)
		if err != nil {
			return tableview.Query{}, fmt.Errorf("%w: page %q is not a number", ErrBadRequest, raw)
		}
		q.Page = page
	}
	if raw := strings.TrimSpace(values.Get("page_size")); raw != "" {
		size, err := strconv.Atoi(raw)
		if err != nil {
			return tableview.Query{}, fmt.Errorf("%w: page_size %q is not a number", ErrBadRequest, raw)
		}
		q.PageSize = size
	}
	for _, key := range filters {
		v := values.Get(key)
		if v == "" {
			v = values.Get(filterPrefix + key)
		}
		if v == "" {
			continue
		}
		if q.Filters == nil {
			q.Filters = map[string]string{}
		}
		q.Filters[key] = v
	}
	return q, nil
}

// FilterKeys lists the filterable columns of a table visible to viewer.
func FilterKeys(ctx context.Context, api Executor, viewer backoffice.ViewerContext, code string) []string {
	if api == nil {
		return nil
	}
	tables, err := api.Tables(ctx, viewer)
	if err != nil {
		return nil
	}
	for _, desc := range tables {
		if desc.Code != code {
			continue
		}
		var keys []string
		for _, col := range desc.Columns {
			if col.Filterable {
				keys = append(keys, col.Key)
			}
		}
		return keys
	}
	return nil
}

// StatusFor maps service errors onto HTTP status codes.
func StatusFor(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrBadRequest), backoffice.IsValidation(err):
		return http.StatusBadRequest
	case errors.Is(err, backoffice.ErrUnauthenticated),
		errors.Is(err, backoffice.ErrInvalidToken),
		errors.Is(err, backoffice.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case backoffice.IsForbidden(err):
		return http.StatusForbidden
	case backoffice.IsNotFound(err):
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

// ErrorBody is the JSON payload returned for failed requests.
func ErrorBody(err error) map[string]string {
	return map[string]string{"error": err.Error()}
}

// ContentDisposition builds an attachment header for an export.
func ContentDisposition(filename string) string {
	return fmt.Sprintf("attachment; filename=%q", filename)
}
