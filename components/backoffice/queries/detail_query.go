package queries

import (
	"context"

	gocommand "github.com/goliatone/go-command"
	"github.com/recliq/go-backoffice/components/backoffice"
)

// RecordDetailInput identifies a record for the detail drawer.
type RecordDetailInput struct {
	Viewer   backoffice.ViewerContext
	Table    string
	RecordID string
}

type detailService interface {
	OpenDetail(ctx context.Context, viewer backoffice.ViewerContext, code, recordID string) (backoffice.Detail, error)
}

// RecordDetailQuery resolves a record without touching drawer state.
type RecordDetailQuery struct {
	service detailService
}

// NewRecordDetailQuery builds the query.
func NewRecordDetailQuery(service detailService) *RecordDetailQuery {
	return &RecordDetailQuery{service: service}
}

var _ gocommand.Querier[RecordDetailInput, backoffice.Detail] = (*RecordDetailQuery)(nil)

// Query resolves the detail. Missing records come back closed.
func (q *RecordDetailQuery) Query(ctx context.Context, input RecordDetailInput) (backoffice.Detail, error) {
	return q.service.OpenDetail(ctx, input.Viewer, input.Table, input.RecordID)
}
