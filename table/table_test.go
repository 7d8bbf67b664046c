// Copyright (c) 2026, The zEpid Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package table

import (
	"bytes"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTableColumns(t *testing.T) {
	dt := NewTable()
	dt.SetNumRows(3)
	x := dt.AddFloat64Column("x")
	x.Set(1, 2, 3)
	nm := dt.AddStringColumn("name")
	nm.Set("a", "b", "c")

	assert.Equal(t, 3, dt.NumRows())
	assert.Equal(t, 2, dt.NumColumns())
	assert.Equal(t, []string{"x", "name"}, dt.ColumnNames)
	assert.Equal(t, 2.0, dt.Float("x", 1))
	assert.Equal(t, "c", dt.Str("name", 2))

	_, err := dt.ColumnTry("missing")
	assert.Error(t, err)

	// NaN for wrong-type access
	assert.True(t, math.IsNaN(dt.Float("name", 0)))
}

func TestTableNewRowsAreMissing(t *testing.T) {
	dt := NewTable()
	x := dt.AddFloat64Column("x")
	dt.SetNumRows(2)
	assert.True(t, x.IsMissing(0))
	assert.True(t, x.IsMissing(1))
	dt.SetFloat("x", 1, 5)
	assert.False(t, x.IsMissing(1))
}

func TestSortFunc(t *testing.T) {
	dt := NewTable()
	dt.SetNumRows(4)
	x := dt.AddFloat64Column("x").Set(3, 1, 2, 1)
	dt.AddFloat64Column("y").Set(0, 1, 0, 0)

	// the compare function sees underlying row numbers
	dt.SortStableFunc(func(dt *Table, i, j int) int {
		a, b := x.Values[i], x.Values[j]
		switch {
		case a < b:
			return -1
		case a > b:
			return 1
		}
		return 0
	})
	got, err := dt.Floats("x")
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 1, 2, 3}, got)

	// sorting rearranged only the view
	dt.Sequential()
	got, err = dt.Floats("x")
	require.NoError(t, err)
	assert.Equal(t, []float64{3, 1, 2, 1}, got)
}

func TestDropMissing(t *testing.T) {
	dt := NewTable()
	dt.SetNumRows(5)
	dt.AddFloat64Column("y").Set(1, math.NaN(), 0, 1, 0)
	dt.AddFloat64Column("x").Set(1, 2, math.NaN(), 4, 5)
	dt.AddFloat64Column("other").Set(math.NaN(), 0, 0, 0, 0)

	v := NewView(dt)
	dropped, err := v.DropMissing("y", "x")
	require.NoError(t, err)
	assert.Equal(t, 2, dropped)
	assert.Equal(t, 3, v.NumRows())
	assert.Equal(t, 5, dt.NumRows())

	got, err := v.Floats("x")
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 4, 5}, got)

	_, err = v.DropMissing("nope")
	assert.Error(t, err)
}

func TestReadCSV(t *testing.T) {
	in := "dead,art,name\n0,0.25,a\n1,,b\n0,NaN,\n"
	dt := NewTable()
	err := dt.ReadCSV(strings.NewReader(in), Comma)
	require.NoError(t, err)

	assert.Equal(t, 3, dt.NumRows())
	assert.Equal(t, []string{"dead", "art", "name"}, dt.ColumnNames)

	_, isFloat := dt.Column("art").(*Float64)
	assert.True(t, isFloat)
	_, isString := dt.Column("name").(*String)
	assert.True(t, isString)

	assert.Equal(t, 0.25, dt.Float("art", 0))
	assert.True(t, dt.Column("art").IsMissing(1))
	assert.True(t, dt.Column("art").IsMissing(2))
	assert.True(t, dt.Column("name").IsMissing(2))
}

func TestReadCSVDetect(t *testing.T) {
	in := "x\ty\n1\t2\n3\t4\n"
	dt := NewTable()
	err := dt.ReadCSV(strings.NewReader(in), Detect)
	require.NoError(t, err)
	assert.Equal(t, 2, dt.NumRows())
	assert.Equal(t, 4.0, dt.Float("y", 1))
}

func TestWriteCSVView(t *testing.T) {
	dt := NewTable()
	dt.SetNumRows(3)
	dt.AddFloat64Column("x").Set(3, math.NaN(), 1)
	g := dt.AddStringColumn("g").Set("c", "b", "a")

	v := NewView(dt)
	v.SortFunc(func(dt *Table, i, j int) int {
		return strings.Compare(g.Values[i], g.Values[j])
	})

	var buf bytes.Buffer
	require.NoError(t, v.WriteCSV(&buf, Comma))
	assert.Equal(t, "x,g\n1,a\n,b\n3,c\n", buf.String())
}

func TestClone(t *testing.T) {
	dt := NewTable()
	dt.SetNumRows(2)
	dt.AddFloat64Column("x").Set(1, 2)
	cp := dt.Clone()
	cp.SetFloat("x", 0, 9)
	assert.Equal(t, 1.0, dt.Float("x", 0))
	assert.Equal(t, 9.0, cp.Float("x", 0))
}
