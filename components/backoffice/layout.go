package backoffice

// applyColumnOrder moves the listed columns to the front, keeping the rest in declaration order.
func applyColumnOrder(columns []ColumnDescriptor, order []string) []ColumnDescriptor {
	if len(order) == 0 {
		return columns
	}
	index := make(map[string]ColumnDescriptor, len(columns))
	for _, col := range columns {
		index[col.Key] = col
	}
	result := make([]ColumnDescriptor, 0, len(columns))
	seen := make(map[string]struct{}, len(order))
	for _, key := range order {
		if col, ok := index[key]; ok {
			if _, dup := seen[key]; dup {
				continue
			}
			result = append(result, col)
			seen[key] = struct{}{}
		}
	}
	for _, col := range columns {
		if _, ok := seen[col.Key]; !ok {
			result = append(result, col)
		}
	}
	return result
}

func applyHiddenColumns(columns []ColumnDescriptor, hidden map[string]bool) []ColumnDescriptor {
	if len(hidden) == 0 {
		return columns
	}
	result := make([]ColumnDescriptor, 0, len(columns))
	for _, col := range columns {
		if !hidden[col.Key] {
			result = append(result, col)
		}
	}
	if len(result) == 0 {
		return columns
	}
	return result
}

// visibleColumns applies the viewer's order and hidden columns. Hiding every column is ignored.
func visibleColumns(columns []ColumnDescriptor, prefs TablePreferences) []ColumnDescriptor {
	return applyHiddenColumns(applyColumnOrder(columns, prefs.ColumnOrder), prefs.HiddenColumns)
}

// projectRows reorders and trims row cells to match columns.
func projectRows(rows []Row, columns []ColumnDescriptor) []Row {
	out := make([]Row, len(rows))
	for i, row := range rows {
		projected := row
		projected.Cells = make([]Cell, 0, len(columns))
		for _, col := range columns {
			if cell, ok := row.Cell(col.Key); ok {
				projected.Cells = append(projected.Cells, cell)
			}
		}
		out[i] = projected
	}
	return out
}
