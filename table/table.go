// Copyright (c) 2026, The zEpid Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package table provides a simple columnar labeled dataset: named columns of
// float64 or string values aligned by a common row dimension, with a shared
// Indexes view supporting coordinated sorting and filtering across columns.
// It is the input type for the functional form plotter.
package table

import (
	"fmt"
	"math"
	"slices"
)

// Table is a set of named columns aligned by a common row dimension.
// Different tables can provide different indexed views onto the same
// underlying column data: Indexes holds the view's row indexes into the
// columns, with nil meaning default sequential order. Sort and Filter
// operations only rearrange Indexes, never the underlying values.
type Table struct {
	// ColumnNames has the column names in insertion order.
	ColumnNames []string

	// Indexes are the indexes into column rows, with nil = sequential.
	// Only set if order is different from default sequential order.
	Indexes []int

	columns map[string]Column
	rows    int
}

// Column is the common interface for table columns.
type Column interface {
	// Len returns the number of underlying rows.
	Len() int

	// IsMissing returns true if the value at given underlying row
	// represents a missing observation (NaN for floats, "" for strings).
	IsMissing(row int) bool

	// SetNumRows resizes the column to the given number of rows,
	// preserving existing values and filling new rows with missing.
	SetNumRows(rows int)

	// Clone returns a deep copy of the column.
	Clone() Column
}

// NewTable returns a new empty Table.
func NewTable() *Table {
	return &Table{columns: make(map[string]Column)}
}

// NewView returns a new Table with its own Indexes view into the same
// underlying column data as the source table. Indexes are nil in the new
// Table, resulting in a default full sequential view.
func NewView(src *Table) *Table {
	return &Table{ColumnNames: src.ColumnNames, columns: src.columns, rows: src.rows}
}

// NumRows returns the number of rows, which is the number of Indexes if
// present, else the underlying number of column rows.
func (dt *Table) NumRows() int {
	if dt.Indexes == nil {
		return dt.rows
	}
	return len(dt.Indexes)
}

// NumColumns returns the number of columns.
func (dt *Table) NumColumns() int { return len(dt.ColumnNames) }

// RowIndex returns the actual index into underlying column rows based on
// given view index. If Indexes == nil, the index is passed through.
func (dt *Table) RowIndex(idx int) int {
	if dt.Indexes == nil {
		return idx
	}
	return dt.Indexes[idx]
}

// Sequential sets Indexes to nil, resulting in sequential row-wise access.
func (dt *Table) Sequential() { dt.Indexes = nil }

// IndexesNeeded is called prior to an operation that needs actual indexes,
// e.g., Sort, Filter. If Indexes == nil, they are set to all rows, otherwise
// current indexes are left as is.
func (dt *Table) IndexesNeeded() {
	if dt.Indexes != nil {
		return
	}
	dt.Indexes = make([]int, dt.rows)
	for i := range dt.Indexes {
		dt.Indexes[i] = i
	}
}

// Column returns the column with the given name, or nil if not found.
func (dt *Table) Column(name string) Column {
	return dt.columns[name]
}

// ColumnTry is a version of [Table.Column] that also returns an error
// if the column name is not found, for cases when the error is needed.
func (dt *Table) ColumnTry(name string) (Column, error) {
	cl := dt.columns[name]
	if cl == nil {
		return nil, fmt.Errorf("table.Table: column named %q not found", name)
	}
	return cl, nil
}

// AddFloat64Column adds a new float64 column with given name, sized to the
// current number of rows, returning the column. If a column with the name
// already exists and is a float column, it is returned unchanged.
func (dt *Table) AddFloat64Column(name string) *Float64 {
	if cl, ok := dt.columns[name].(*Float64); ok {
		return cl
	}
	cl := NewFloat64(dt.rows)
	dt.addColumn(name, cl)
	return cl
}

// AddStringColumn adds a new string column with given name, sized to the
// current number of rows, returning the column. If a column with the name
// already exists and is a string column, it is returned unchanged.
func (dt *Table) AddStringColumn(name string) *String {
	if cl, ok := dt.columns[name].(*String); ok {
		return cl
	}
	cl := NewString(dt.rows)
	dt.addColumn(name, cl)
	return cl
}

func (dt *Table) addColumn(name string, cl Column) {
	if _, exists := dt.columns[name]; !exists {
		dt.ColumnNames = append(dt.ColumnNames, name)
	}
	dt.columns[name] = cl
}

// SetNumRows sets the number of underlying rows across all columns.
func (dt *Table) SetNumRows(rows int) *Table {
	dt.rows = rows
	for _, cl := range dt.columns {
		cl.SetNumRows(rows)
	}
	return dt
}

// Float returns the float64 value of the named column at the given view row,
// projected through Indexes. Returns NaN if the column is missing or is not
// a float column.
func (dt *Table) Float(name string, i int) float64 {
	cl, ok := dt.columns[name].(*Float64)
	if !ok {
		return math.NaN()
	}
	return cl.Values[dt.RowIndex(i)]
}

// SetFloat sets the float64 value of the named column at the given view row,
// projected through Indexes.
func (dt *Table) SetFloat(name string, i int, val float64) {
	if cl, ok := dt.columns[name].(*Float64); ok {
		cl.Values[dt.RowIndex(i)] = val
	}
}

// Str returns the string value of the named column at the given view row,
// projected through Indexes. Returns "" if the column is missing or is not
// a string column.
func (dt *Table) Str(name string, i int) string {
	cl, ok := dt.columns[name].(*String)
	if !ok {
		return ""
	}
	return cl.Values[dt.RowIndex(i)]
}

// Floats returns a copy of the named float column's values in current view
// order. Returns an error if the column is not found or is not a float
// column.
func (dt *Table) Floats(name string) ([]float64, error) {
	cl, err := dt.ColumnTry(name)
	if err != nil {
		return nil, err
	}
	fc, ok := cl.(*Float64)
	if !ok {
		return nil, fmt.Errorf("table.Table: column %q is not a float64 column", name)
	}
	n := dt.NumRows()
	vals := make([]float64, n)
	for i := range vals {
		vals[i] = fc.Values[dt.RowIndex(i)]
	}
	return vals, nil
}

// Clone returns a complete copy of this table, including cloning the
// underlying columns and the current Indexes.
func (dt *Table) Clone() *Table {
	cp := NewTable()
	cp.rows = dt.rows
	cp.ColumnNames = slices.Clone(dt.ColumnNames)
	for nm, cl := range dt.columns {
		cp.columns[nm] = cl.Clone()
	}
	if dt.Indexes != nil {
		cp.Indexes = slices.Clone(dt.Indexes)
	}
	return cp
}

//////// Float64

// Float64 is a column of float64 values, with NaN as the missing value.
type Float64 struct {
	Values []float64
}

// NewFloat64 returns a new Float64 column with given number of rows,
// initialized to NaN (missing).
func NewFloat64(rows int) *Float64 {
	cl := &Float64{Values: make([]float64, rows)}
	for i := range cl.Values {
		cl.Values[i] = math.NaN()
	}
	return cl
}

// Set sets the underlying values of the column, resizing it as needed.
func (cl *Float64) Set(vals ...float64) *Float64 {
	cl.Values = slices.Clone(vals)
	return cl
}

func (cl *Float64) Len() int { return len(cl.Values) }

func (cl *Float64) IsMissing(row int) bool { return math.IsNaN(cl.Values[row]) }

func (cl *Float64) SetNumRows(rows int) {
	cur := len(cl.Values)
	if rows <= cur {
		cl.Values = cl.Values[:rows]
		return
	}
	for i := cur; i < rows; i++ {
		cl.Values = append(cl.Values, math.NaN())
	}
}

func (cl *Float64) Clone() Column { return &Float64{Values: slices.Clone(cl.Values)} }

//////// String

// String is a column of string values, with "" as the missing value.
type String struct {
	Values []string
}

// NewString returns a new String column with given number of rows.
func NewString(rows int) *String {
	return &String{Values: make([]string, rows)}
}

// Set sets the underlying values of the column, resizing it as needed.
func (cl *String) Set(vals ...string) *String {
	cl.Values = slices.Clone(vals)
	return cl
}

func (cl *String) Len() int { return len(cl.Values) }

func (cl *String) IsMissing(row int) bool { return cl.Values[row] == "" }

func (cl *String) SetNumRows(rows int) {
	cur := len(cl.Values)
	if rows <= cur {
		cl.Values = cl.Values[:rows]
		return
	}
	cl.Values = append(cl.Values, make([]string, rows-cur)...)
}

func (cl *String) Clone() Column { return &String{Values: slices.Clone(cl.Values)} }
