package backoffice

import (
	"context"
	"fmt"
	"strings"

	"github.com/ettle/strcase"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/recliq/go-backoffice/components/backoffice/tableview"
)

// Column describes one rendered field of a record.
type Column[T any] struct {
	Key        string
	Label      string
	Value      func(T) string
	Tone       func(T) Tone
	Searchable bool
	Filterable bool
	Options    []string
}

// SortOption names an ordering of records.
type SortOption[T any] struct {
	Key     string
	Label   string
	Compare func(a, b T) int
}

// Action is an intervention operators can run against a record. Schema is a
// JSON schema for the action parameters; Applies gates it per record.
type Action[T any] struct {
	Name        string
	Label       string
	Description string
	Schema      map[string]any
	Applies     func(T) bool
}

// ChartType selects how a table chart is drawn.
type ChartType string

const (
	ChartBar ChartType = "bar"
	ChartPie ChartType = "pie"
)

// ChartSpec groups filtered records by a column and sums Value per group.
// A nil Value counts records instead.
type ChartSpec[T any] struct {
	Type       ChartType
	Title      string
	GroupBy    string
	ValueLabel string
	Value      func(T) float64
}

// TableDefinition declares a table over records of type T.
type TableDefinition[T any] struct {
	Code        string
	Name        string
	Description string
	Category    string
	ID          func(T) string
	Columns     []Column[T]
	Sorts       []SortOption[T]
	DefaultSort string
	PageSize    int
	Actions     []Action[T]
	Chart       *ChartSpec[T]
}

// ColumnDescriptor is the record-type independent view of a column.
type ColumnDescriptor struct {
	Key        string   `json:"key" yaml:"key"`
	Label      string   `json:"label" yaml:"label"`
	Searchable bool     `json:"searchable,omitempty" yaml:"searchable,omitempty"`
	Filterable bool     `json:"filterable,omitempty" yaml:"filterable,omitempty"`
	Options    []string `json:"options,omitempty" yaml:"options,omitempty"`
}

// SortDescriptor is the record-type independent view of a sort option.
type SortDescriptor struct {
	Key   string `json:"key" yaml:"key"`
	Label string `json:"label" yaml:"label"`
}

// ActionDescriptor is the record-type independent view of an action.
type ActionDescriptor struct {
	Name        string         `json:"name" yaml:"name"`
	Label       string         `json:"label" yaml:"label"`
	Description string         `json:"description,omitempty" yaml:"description,omitempty"`
	Schema      map[string]any `json:"schema,omitempty" yaml:"schema,omitempty"`
	Required    []string       `json:"required,omitempty" yaml:"required,omitempty"`
}

// ChartDescriptor is the record-type independent view of a chart.
type ChartDescriptor struct {
	Type    ChartType `json:"type" yaml:"type"`
	Title   string    `json:"title" yaml:"title"`
	GroupBy string    `json:"group_by" yaml:"group_by"`
}

// TableDescriptor describes a table for transports and templates.
type TableDescriptor struct {
	Code        string             `json:"code" yaml:"code"`
	Name        string             `json:"name" yaml:"name"`
	Description string             `json:"description,omitempty" yaml:"description,omitempty"`
	Category    string             `json:"category,omitempty" yaml:"category,omitempty"`
	Columns     []ColumnDescriptor `json:"columns" yaml:"columns"`
	Sorts       []SortDescriptor   `json:"sorts,omitempty" yaml:"sorts,omitempty"`
	DefaultSort string             `json:"default_sort,omitempty" yaml:"default_sort,omitempty"`
	PageSize    int                `json:"page_size" yaml:"page_size"`
	Actions     []ActionDescriptor `json:"actions,omitempty" yaml:"actions,omitempty"`
	Chart       *ChartDescriptor   `json:"chart,omitempty" yaml:"chart,omitempty"`
}

// Column looks up a column by key.
func (d TableDescriptor) Column(key string) (ColumnDescriptor, bool) {
	for _, col := range d.Columns {
		if col.Key == key {
			return col, true
		}
	}
	return ColumnDescriptor{}, false
}

// Action looks up an action by name.
func (d TableDescriptor) Action(name string) (ActionDescriptor, bool) {
	for _, action := range d.Actions {
		if action.Name == name {
			return action, true
		}
	}
	return ActionDescriptor{}, false
}

// FilterColumns returns the filterable columns in declaration order.
func (d TableDescriptor) FilterColumns() []ColumnDescriptor {
	var out []ColumnDescriptor
	for _, col := range d.Columns {
		if col.Filterable {
			out = append(out, col)
		}
	}
	return out
}

// Cell is one rendered value of a row.
type Cell struct {
	Key   string `json:"key"`
	Value string `json:"value"`
	Tone  Tone   `json:"tone,omitempty"`
}

// Row is a rendered record. Actions lists the action names applicable to it.
type Row struct {
	ID      string   `json:"id"`
	Cells   []Cell   `json:"cells"`
	Actions []string `json:"actions,omitempty"`
	Record  any      `json:"record"`
}

// Cell returns the cell for a column key.
func (r Row) Cell(key string) (Cell, bool) {
	for _, cell := range r.Cells {
		if cell.Key == key {
			return cell, true
		}
	}
	return Cell{}, false
}

// AllowsAction reports whether the action is applicable to this row.
func (r Row) AllowsAction(name string) bool {
	for _, action := range r.Actions {
		if action == name {
			return true
		}
	}
	return false
}

// TablePage is one page of rendered rows plus pagination metadata.
type TablePage struct {
	Table      string             `json:"table"`
	Name       string             `json:"name"`
	Columns    []ColumnDescriptor `json:"columns"`
	Rows       []Row              `json:"rows"`
	TotalCount int                `json:"total_count"`
	TotalPages int                `json:"total_pages"`
	Page       int                `json:"page"`
	PageSize   int                `json:"page_size"`
	Sort       string             `json:"sort,omitempty"`
	Query      tableview.Query    `json:"query"`
	NoResults  bool               `json:"no_results"`
	PrevPage   int                `json:"prev_page,omitempty"`
	NextPage   int                `json:"next_page,omitempty"`
}

// ChartSeries is the aggregated data behind a table chart.
type ChartSeries struct {
	Table      string    `json:"table"`
	Type       ChartType `json:"type"`
	Title      string    `json:"title"`
	ValueLabel string    `json:"value_label,omitempty"`
	Labels     []string  `json:"labels"`
	Values     []float64 `json:"values"`
}

// TableOverride adjusts table metadata from configuration.
type TableOverride struct {
	Code        string `json:"code" yaml:"code"`
	Name        string `json:"name,omitempty" yaml:"name,omitempty"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
	Category    string `json:"category,omitempty" yaml:"category,omitempty"`
	PageSize    int    `json:"page_size,omitempty" yaml:"page_size,omitempty"`
	DefaultSort string `json:"default_sort,omitempty" yaml:"default_sort,omitempty"`
}

// Table is a type-erased TableDefinition bound to a Source.
type Table interface {
	Descriptor() TableDescriptor
	Validate(q tableview.Query) error
	Page(ctx context.Context, q tableview.Query) (TablePage, error)
	Rows(ctx context.Context, q tableview.Query) ([]Row, error)
	Record(ctx context.Context, id string) (Row, bool, error)
	Series(ctx context.Context, q tableview.Query) (ChartSeries, error)
	WithOverride(o TableOverride) (Table, error)
}

type typedTable[T any] struct {
	def    TableDefinition[T]
	source Source[T]
	view   tableview.Definition[T]
	desc   TableDescriptor
}

// NewTable validates def and binds it to source.
func NewTable[T any](def TableDefinition[T], source Source[T]) (Table, error) {
	if err := validateDefinition(def); err != nil {
		return nil, err
	}
	if source == nil {
		return nil, fmt.Errorf("backoffice: table %s requires a source", def.Code)
	}
	t := &typedTable[T]{def: def, source: source}
	t.view = t.buildView()
	t.desc = t.buildDescriptor()
	return t, nil
}

func validateDefinition[T any](def TableDefinition[T]) error {
	if strings.TrimSpace(def.Code) == "" {
		return fmt.Errorf("backoffice: table code is required")
	}
	if def.ID == nil {
		return fmt.Errorf("backoffice: table %s requires an ID accessor", def.Code)
	}
	if len(def.Columns) == 0 {
		return fmt.Errorf("backoffice: table %s requires at least one column", def.Code)
	}
	if def.PageSize < 0 || def.PageSize > tableview.MaxPageSize {
		return fmt.Errorf("backoffice: table %s: %w", def.Code, tableview.ErrInvalidPageSize)
	}
	columns := make(map[string]struct{}, len(def.Columns))
	for _, col := range def.Columns {
		if col.Key == "" || col.Value == nil {
			return fmt.Errorf("backoffice: table %s has a column without key or value", def.Code)
		}
		if _, dup := columns[col.Key]; dup {
			return fmt.Errorf("backoffice: table %s duplicates column %s", def.Code, col.Key)
		}
		columns[col.Key] = struct{}{}
	}
	sorts := make(map[string]struct{}, len(def.Sorts))
	for _, sort := range def.Sorts {
		if sort.Key == "" || sort.Compare == nil {
			return fmt.Errorf("backoffice: table %s has a sort without key or comparator", def.Code)
		}
		if _, dup := sorts[sort.Key]; dup {
			return fmt.Errorf("backoffice: table %s duplicates sort %s", def.Code, sort.Key)
		}
		sorts[sort.Key] = struct{}{}
	}
	if def.DefaultSort != "" {
		if _, ok := sorts[def.DefaultSort]; !ok {
			return fmt.Errorf("backoffice: table %s default sort: %w: %s", def.Code, tableview.ErrUnknownSort, def.DefaultSort)
		}
	}
	actions := make(map[string]struct{}, len(def.Actions))
	for _, action := range def.Actions {
		if action.Name == "" {
			return fmt.Errorf("backoffice: table %s has an action without name", def.Code)
		}
		if _, dup := actions[action.Name]; dup {
			return fmt.Errorf("backoffice: table %s duplicates action %s", def.Code, action.Name)
		}
		actions[action.Name] = struct{}{}
	}
	if def.Chart != nil {
		if _, ok := columns[def.Chart.GroupBy]; !ok {
			return fmt.Errorf("backoffice: table %s chart groups by %w %q", def.Code, ErrUnknownColumn, def.Chart.GroupBy)
		}
	}
	return nil
}

func (t *typedTable[T]) buildView() tableview.Definition[T] {
	view := tableview.Definition[T]{
		DefaultSort: t.def.DefaultSort,
		PageSize:    t.def.PageSize,
	}
	for _, col := range t.def.Columns {
		field := tableview.Field[T]{Key: col.Key, Value: col.Value}
		if col.Searchable {
			view.Search = append(view.Search, field)
		}
		if col.Filterable {
			view.Filters = append(view.Filters, field)
		}
	}
	for _, sort := range t.def.Sorts {
		view.Sorts = append(view.Sorts, tableview.SortOption[T]{Key: sort.Key, Compare: sort.Compare})
	}
	return view
}

func (t *typedTable[T]) buildDescriptor() TableDescriptor {
	desc := TableDescriptor{
		Code:        t.def.Code,
		Name:        t.def.Name,
		Description: t.def.Description,
		Category:    t.def.Category,
		DefaultSort: t.def.DefaultSort,
		PageSize:    t.view.EffectivePageSize(0),
	}
	if desc.Name == "" {
		desc.Name = humanize(t.def.Code)
	}
	for _, col := range t.def.Columns {
		desc.Columns = append(desc.Columns, ColumnDescriptor{
			Key:        col.Key,
			Label:      labelOr(col.Label, col.Key),
			Searchable: col.Searchable,
			Filterable: col.Filterable,
			Options:    append([]string(nil), col.Options...),
		})
	}
	for _, sort := range t.def.Sorts {
		desc.Sorts = append(desc.Sorts, SortDescriptor{Key: sort.Key, Label: labelOr(sort.Label, sort.Key)})
	}
	for _, action := range t.def.Actions {
		desc.Actions = append(desc.Actions, ActionDescriptor{
			Name:        action.Name,
			Label:       labelOr(action.Label, action.Name),
			Description: action.Description,
			Schema:      action.Schema,
			Required:    requiredParams(action.Schema),
		})
	}
	if t.def.Chart != nil {
		desc.Chart = &ChartDescriptor{
			Type:    t.def.Chart.Type,
			Title:   labelOr(t.def.Chart.Title, t.def.Code),
			GroupBy: t.def.Chart.GroupBy,
		}
	}
	return desc
}

func (t *typedTable[T]) Descriptor() TableDescriptor {
	return t.desc
}

func (t *typedTable[T]) Validate(q tableview.Query) error {
	if err := t.view.Validate(q); err != nil {
		return fmt.Errorf("backoffice: table %s: %w", t.def.Code, err)
	}
	return nil
}

func (t *typedTable[T]) Page(ctx context.Context, q tableview.Query) (TablePage, error) {
	if err := t.Validate(q); err != nil {
		return TablePage{}, err
	}
	records, err := t.fetch(ctx, q)
	if err != nil {
		return TablePage{}, err
	}
	result, err := t.view.Apply(records, q)
	if err != nil {
		return TablePage{}, fmt.Errorf("backoffice: table %s: %w", t.def.Code, err)
	}
	page := TablePage{
		Table:      t.def.Code,
		Name:       t.desc.Name,
		Columns:    t.desc.Columns,
		Rows:       t.rows(result.Records),
		TotalCount: result.TotalCount,
		TotalPages: result.TotalPages,
		Page:       result.Page,
		PageSize:   result.PageSize,
		Sort:       result.Sort,
		Query:      q,
		NoResults:  result.NoResults(),
	}
	if page.Page > 1 && page.Page-1 <= page.TotalPages {
		page.PrevPage = page.Page - 1
	}
	if page.Page >= 1 && page.Page < page.TotalPages {
		page.NextPage = page.Page + 1
	}
	return page, nil
}

func (t *typedTable[T]) Rows(ctx context.Context, q tableview.Query) ([]Row, error) {
	filtered, err := t.filtered(ctx, q)
	if err != nil {
		return nil, err
	}
	return t.rows(filtered), nil
}

func (t *typedTable[T]) Record(ctx context.Context, id string) (Row, bool, error) {
	records, err := t.source.Fetch(ctx, nil)
	if err != nil {
		return Row{}, false, fmt.Errorf("backoffice: fetch %s: %w", t.def.Code, err)
	}
	for _, record := range records {
		if t.def.ID(record) == id {
			return t.row(record), true, nil
		}
	}
	return Row{}, false, nil
}

func (t *typedTable[T]) Series(ctx context.Context, q tableview.Query) (ChartSeries, error) {
	spec := t.def.Chart
	if spec == nil {
		return ChartSeries{}, fmt.Errorf("%w: %s", ErrChartNotDefined, t.def.Code)
	}
	filtered, err := t.filtered(ctx, q)
	if err != nil {
		return ChartSeries{}, err
	}
	var group func(T) string
	for _, col := range t.def.Columns {
		if col.Key == spec.GroupBy {
			group = col.Value
			break
		}
	}
	series := ChartSeries{
		Table:      t.def.Code,
		Type:       t.desc.Chart.Type,
		Title:      t.desc.Chart.Title,
		ValueLabel: spec.ValueLabel,
		Labels:     []string{},
		Values:     []float64{},
	}
	index := map[string]int{}
	for _, record := range filtered {
		label := group(record)
		pos, ok := index[label]
		if !ok {
			pos = len(series.Labels)
			index[label] = pos
			series.Labels = append(series.Labels, label)
			series.Values = append(series.Values, 0)
		}
		if spec.Value == nil {
			series.Values[pos]++
			continue
		}
		series.Values[pos] += spec.Value(record)
	}
	return series, nil
}

func (t *typedTable[T]) WithOverride(o TableOverride) (Table, error) {
	def := t.def
	if o.Name != "" {
		def.Name = o.Name
	}
	if o.Description != "" {
		def.Description = o.Description
	}
	if o.Category != "" {
		def.Category = o.Category
	}
	if o.PageSize != 0 {
		def.PageSize = o.PageSize
	}
	if o.DefaultSort != "" {
		def.DefaultSort = o.DefaultSort
	}
	return NewTable(def, t.source)
}

func (t *typedTable[T]) filtered(ctx context.Context, q tableview.Query) ([]T, error) {
	if err := t.Validate(q); err != nil {
		return nil, err
	}
	records, err := t.fetch(ctx, q)
	if err != nil {
		return nil, err
	}
	return t.view.Sort(t.view.Filter(records, q), t.view.EffectiveSort(q.Sort)), nil
}

func (t *typedTable[T]) fetch(ctx context.Context, q tableview.Query) ([]T, error) {
	records, err := t.source.Fetch(ctx, q.ActiveFilters())
	if err != nil {
		return nil, fmt.Errorf("backoffice: fetch %s: %w", t.def.Code, err)
	}
	return records, nil
}

func (t *typedTable[T]) rows(records []T) []Row {
	rows := make([]Row, len(records))
	for i, record := range records {
		rows[i] = t.row(record)
	}
	return rows
}

func (t *typedTable[T]) row(record T) Row {
	row := Row{
		ID:     t.def.ID(record),
		Cells:  make([]Cell, len(t.def.Columns)),
		Record: record,
	}
	for i, col := range t.def.Columns {
		cell := Cell{Key: col.Key, Value: col.Value(record)}
		if col.Tone != nil {
			cell.Tone = col.Tone(record)
		}
		row.Cells[i] = cell
	}
	for _, action := range t.def.Actions {
		if action.Applies == nil || action.Applies(record) {
			row.Actions = append(row.Actions, action.Name)
		}
	}
	return row
}

func humanize(key string) string {
	return cases.Title(language.English).String(strings.ReplaceAll(strcase.ToSnake(key), "_", " "))
}

func labelOr(label, key string) string {
	if label != "" {
		return label
	}
	return humanize(key)
}

func requiredParams(schema map[string]any) []string {
	switch required := schema["required"].(type) {
	case []string:
		return append([]string(nil), required...)
	case []any:
		out := make([]string, 0, len(required))
		for _, v := range required {
			if s, ok := v.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}
