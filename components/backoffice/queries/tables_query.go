package queries

import (
	"context"

	gocommand "github.com/goliatone/go-command"
	"github.com/recliq/go-backoffice/components/backoffice"
)

type tablesService interface {
	Tables(ctx context.Context, viewer backoffice.ViewerContext) []backoffice.TableDescriptor
}

// TablesQuery lists the tables visible to a viewer.
type TablesQuery struct {
	service tablesService
}

// NewTablesQuery builds the query.
func NewTablesQuery(service tablesService) *TablesQuery {
	return &TablesQuery{service: service}
}

var _ gocommand.Querier[backoffice.ViewerContext, []backoffice.TableDescriptor] = (*TablesQuery)(nil)

// Query lists tables for the viewer.
func (q *TablesQuery) Query(ctx context.Context, viewer backoffice.ViewerContext) ([]backoffice.TableDescriptor, error) {
	return q.service.Tables(ctx, viewer), nil
}
