package tableview

import (
	"cmp"
	"fmt"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type payment struct {
	ID     string
	Name   string
	Status string
	Method string
	Amount int
	Day    int
}

func paymentDefinition() Definition[payment] {
	return Definition[payment]{
		Search: []Field[payment]{
			{Key: "id", Value: func(p payment) string { return p.ID }},
			{Key: "name", Value: func(p payment) string { return p.Name }},
		},
		Filters: []Field[payment]{
			{Key: "status", Value: func(p payment) string { return p.Status }},
			{Key: "method", Value: func(p payment) string { return p.Method }},
		},
		Sorts: []SortOption[payment]{
			{Key: "date_desc", Compare: Descending(func(a, b payment) int { return cmp.Compare(a.Day, b.Day) })},
			{Key: "amount_desc", Compare: Descending(func(a, b payment) int { return cmp.Compare(a.Amount, b.Amount) })},
			{Key: "name_asc", Compare: func(a, b payment) int { return strings.Compare(a.Name, b.Name) }},
		},
		PageSize: 10,
	}
}

func generatePayments(n int) []payment {
	statuses := []string{"successful", "pending", "failed"}
	methods := []string{"card", "bank_transfer", "wallet"}
	out := make([]payment, n)
	for i := range n {
		out[i] = payment{
			ID:     fmt.Sprintf("PAY-%04d", i+1),
			Name:   fmt.Sprintf("Customer %d", i%7),
			Status: statuses[i%len(statuses)],
			Method: methods[i%len(methods)],
			Amount: (i * 37) % 11,
			Day:    i % 5,
		}
	}
	return out
}

func TestApplyPagesThroughTwentySixRecords(t *testing.T) {
	def := paymentDefinition()
	records := generatePayments(26)

	result, err := def.Apply(records, Query{Page: 3, PageSize: 10})
	require.NoError(t, err)

	assert.Len(t, result.Records, 6)
	assert.Equal(t, 26, result.TotalCount)
	assert.Equal(t, 3, result.TotalPages)
	assert.Equal(t, "PAY-0021", result.Records[0].ID)
	assert.Equal(t, "PAY-0026", result.Records[5].ID)
}

func TestApplyExactMatchFilter(t *testing.T) {
	def := paymentDefinition()
	records := []payment{
		{ID: "a", Status: "failed"},
		{ID: "b", Status: "pending"},
		{ID: "c", Status: "failed"},
	}

	result, err := def.Apply(records, Query{Page: 1, Filters: map[string]string{"status": "failed"}})
	require.NoError(t, err)

	assert.Equal(t, 2, result.TotalCount)
	require.Len(t, result.Records, 2)
	assert.Equal(t, "a", result.Records[0].ID)
	assert.Equal(t, "c", result.Records[1].ID)
}

func TestApplyIsIdempotent(t *testing.T) {
	def := paymentDefinition()
	records := generatePayments(40)
	query := Query{
		Search:  "customer 3",
		Filters: map[string]string{"method": "card"},
		Sort:    "amount_desc",
		Page:    1,
	}

	first, err := def.Apply(records, query)
	require.NoError(t, err)
	second, err := def.Apply(records, query)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestApplyDoesNotReorderInput(t *testing.T) {
	def := paymentDefinition()
	records := generatePayments(12)
	original := append([]payment(nil), records...)

	_, err := def.Apply(records, Query{Sort: "amount_desc", Page: 1})
	require.NoError(t, err)

	assert.Equal(t, original, records)
}

func TestApplyFilterConjunction(t *testing.T) {
	def := paymentDefinition()
	records := generatePayments(60)
	query := Query{
		Search:   "CUSTOMER 2",
		Filters:  map[string]string{"status": "failed", "method": "wallet"},
		Page:     1,
		PageSize: 100,
	}

	result, err := def.Apply(records, query)
	require.NoError(t, err)
	require.NotEmpty(t, result.Records)

	for _, record := range result.Records {
		assert.Equal(t, "failed", record.Status)
		assert.Equal(t, "wallet", record.Method)
		assert.Contains(t, strings.ToLower(record.Name+record.ID), "customer 2")
	}

	var expected int
	for _, record := range records {
		if record.Status == "failed" && record.Method == "wallet" && strings.Contains(strings.ToLower(record.Name), "customer 2") {
			expected++
		}
	}
	assert.Equal(t, expected, result.TotalCount)
}

func TestApplyPaginationCoverage(t *testing.T) {
	def := paymentDefinition()
	records := generatePayments(57)
	base := Query{Filters: map[string]string{"status": "pending"}, Sort: "date_desc", PageSize: 4}

	first, err := def.Apply(records, withPage(base, 1))
	require.NoError(t, err)

	var combined []payment
	for page := 1; page <= first.TotalPages; page++ {
		result, err := def.Apply(records, withPage(base, page))
		require.NoError(t, err)
		combined = append(combined, result.Records...)
	}

	expected := def.Sort(def.Filter(records, base), "date_desc")
	assert.Equal(t, expected, combined)

	seen := map[string]bool{}
	for _, record := range combined {
		assert.False(t, seen[record.ID], "duplicate record %s", record.ID)
		seen[record.ID] = true
	}
}

func TestApplyCountInvariant(t *testing.T) {
	def := paymentDefinition()
	records := generatePayments(33)

	tests := []struct {
		name     string
		query    Query
		wantPage int
	}{
		{name: "all records", query: Query{Page: 1, PageSize: 10}, wantPage: 4},
		{name: "exact multiple", query: Query{Page: 1, PageSize: 11}, wantPage: 3},
		{name: "nothing matches", query: Query{Page: 1, Search: "nobody"}, wantPage: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := def.Apply(records, tt.query)
			require.NoError(t, err)
			assert.Equal(t, len(def.Filter(records, tt.query)), result.TotalCount)
			assert.Equal(t, tt.wantPage, result.TotalPages)
		})
	}
}

func TestApplyEmptyQueryKeepsSourceOrder(t *testing.T) {
	def := paymentDefinition()
	records := generatePayments(8)

	result, err := def.Apply(records, Query{Page: 1, Filters: map[string]string{"status": "all", "method": ""}})
	require.NoError(t, err)

	assert.Equal(t, records, result.Records)
	assert.Equal(t, records, def.Filter(records, Query{}))
}

func TestApplyOutOfRangePagesAreEmpty(t *testing.T) {
	def := paymentDefinition()
	records := generatePayments(15)

	for _, page := range []int{-1, 0, 3, 99, math.MaxInt, math.MinInt} {
		result, err := def.Apply(records, Query{Page: page})
		require.NoError(t, err)
		assert.True(t, result.NoResults(), "page %d", page)
		assert.NotNil(t, result.Records)
		assert.Equal(t, 15, result.TotalCount)
		assert.Equal(t, 2, result.TotalPages)
	}
}

func TestPaginateHugePageSizes(t *testing.T) {
	records := generatePayments(5)
	assert.Empty(t, Paginate(records, math.MaxInt, math.MaxInt))
	assert.Len(t, Paginate(records, 1, math.MaxInt), 5)
	assert.Empty(t, Paginate(records, math.MaxInt/2, 3))
}

func TestSortIsStable(t *testing.T) {
	def := paymentDefinition()
	records := []payment{
		{ID: "1", Amount: 5},
		{ID: "2", Amount: 9},
		{ID: "3", Amount: 5},
		{ID: "4", Amount: 9},
	}

	sorted := def.Sort(records, "amount_desc")

	ids := make([]string, len(sorted))
	for i, record := range sorted {
		ids[i] = record.ID
	}
	assert.Equal(t, []string{"2", "4", "1", "3"}, ids)
}

func TestApplyUsesDefaultSortAndPageSize(t *testing.T) {
	def := paymentDefinition()
	def.DefaultSort = "name_asc"
	def.PageSize = 0
	records := generatePayments(30)

	result, err := def.Apply(records, Query{Page: 1})
	require.NoError(t, err)

	assert.Equal(t, DefaultPageSize, result.PageSize)
	assert.Equal(t, "name_asc", result.Sort)
	assert.Equal(t, "Customer 0", result.Records[0].Name)
}

func TestValidate(t *testing.T) {
	def := paymentDefinition()

	tests := []struct {
		name    string
		query   Query
		wantErr error
	}{
		{name: "valid", query: Query{Search: "x", Sort: "date_desc", Filters: map[string]string{"status": "failed"}}},
		{name: "inactive unknown filter ignored", query: Query{Filters: map[string]string{"region": "all"}}},
		{name: "unknown filter", query: Query{Filters: map[string]string{"region": "lagos"}}, wantErr: ErrUnknownFilter},
		{name: "unknown sort", query: Query{Sort: "weight"}, wantErr: ErrUnknownSort},
		{name: "negative page size", query: Query{PageSize: -1}, wantErr: ErrInvalidPageSize},
		{name: "oversized page", query: Query{PageSize: MaxPageSize + 1}, wantErr: ErrInvalidPageSize},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := def.Validate(tt.query)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestValidateRejectsSearchWithoutFields(t *testing.T) {
	def := Definition[payment]{}
	assert.ErrorIs(t, def.Validate(Query{Search: "abc"}), ErrSearchUnsupported)
	assert.NoError(t, def.Validate(Query{Search: "   "}))
}

func TestTotalPages(t *testing.T) {
	assert.Equal(t, 0, TotalPages(0, 10))
	assert.Equal(t, 1, TotalPages(1, 10))
	assert.Equal(t, 1, TotalPages(10, 10))
	assert.Equal(t, 2, TotalPages(11, 10))
	assert.Equal(t, 0, TotalPages(5, 0))
}

func withPage(q Query, page int) Query {
	q.Page = page
	return q
}
