package queries

import (
	"context"

	gocommand "github.com/goliatone/go-command"
	"github.com/recliq/go-backoffice/components/backoffice"
	"github.com/recliq/go-backoffice/components/backoffice/tableview"
)

// TablePageInput identifies a table page request for a viewer.
type TablePageInput struct {
	Viewer backoffice.ViewerContext
	Table  string
	Query  tableview.Query
}

type pageService interface {
	QueryTable(ctx context.Context, viewer backoffice.ViewerContext, code string, q tableview.Query) (backoffice.TablePage, error)
}

// TablePageQuery filters, sorts and paginates one table.
type TablePageQuery struct {
	service pageService
}

// NewTablePageQuery builds the query.
func NewTablePageQuery(service pageService) *TablePageQuery {
	return &TablePageQuery{service: service}
}

var _ gocommand.Querier[TablePageInput, backoffice.TablePage] = (*TablePageQuery)(nil)

// Query resolves the page for the viewer.
func (q *TablePageQuery) Query(ctx context.Context, input TablePageInput) (backoffice.TablePage, error) {
	return q.service.QueryTable(ctx, input.Viewer, input.Table, input.Query)
}
