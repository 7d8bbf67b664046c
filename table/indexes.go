// Copyright (c) 2026, The zEpid Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package table

import "slices"

// SortFunc sorts the indexes into our Table using given compare function.
// The compare function operates directly on row numbers into the Table
// as these row numbers have already been projected through the indexes.
// cmp(a, b) should return a negative number when a < b, a positive
// number when a > b and zero when a == b.
func (dt *Table) SortFunc(cmp func(dt *Table, i, j int) int) {
	dt.IndexesNeeded()
	slices.SortFunc(dt.Indexes, func(a, b int) int {
		return cmp(dt, a, b) // key point: these are already indirected through indexes!!
	})
}

// SortStableFunc stably sorts the indexes into our Table using given compare
// function, which otherwise behaves the same as in [Table.SortFunc].
// It is *essential* that it always returns 0 when the two are equal
// for the stable function to actually work.
func (dt *Table) SortStableFunc(cmp func(dt *Table, i, j int) int) {
	dt.IndexesNeeded()
	slices.SortStableFunc(dt.Indexes, func(a, b int) int {
		return cmp(dt, a, b)
	})
}

// Filter filters the indexes into our Table using given filter function.
// The filter function operates directly on row numbers into the Table
// as these row numbers have already been projected through the indexes,
// and returns true for rows to keep in the view.
func (dt *Table) Filter(keep func(dt *Table, row int) bool) {
	dt.IndexesNeeded()
	sz := len(dt.Indexes)
	for i := sz - 1; i >= 0; i-- { // always go in reverse for filtering
		if !keep(dt, dt.Indexes[i]) {
			dt.Indexes = append(dt.Indexes[:i], dt.Indexes[i+1:]...)
		}
	}
}

// DropMissing removes from the current view all rows that have a missing
// value in any of the given columns (all columns if none given), returning
// the number of rows dropped. Returns an error if a named column is not
// found. Only the view is modified; underlying data is unchanged.
func (dt *Table) DropMissing(columns ...string) (int, error) {
	cols := make([]Column, 0, len(columns))
	if len(columns) == 0 {
		for _, nm := range dt.ColumnNames {
			cols = append(cols, dt.columns[nm])
		}
	} else {
		for _, nm := range columns {
			cl, err := dt.ColumnTry(nm)
			if err != nil {
				return 0, err
			}
			cols = append(cols, cl)
		}
	}
	before := dt.NumRows()
	dt.Filter(func(dt *Table, row int) bool {
		for _, cl := range cols {
			if cl.IsMissing(row) {
				return false
			}
		}
		return true
	})
	return before - dt.NumRows(), nil
}
