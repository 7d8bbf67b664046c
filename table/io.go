// Copyright (c) 2026, The zEpid Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package table

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
)

// Delims are standard delimiter options for reading and writing tabular
// data files (Tab, Comma, Space).
type Delims int32

const (
	// Comma is the comma rune delimiter, for CSV comma separated values.
	Comma Delims = iota

	// Tab is the tab rune delimiter, for TSV tab separated values.
	Tab

	// Space is the space rune delimiter, for SSV space separated values.
	Space

	// Detect is used during reading a file: reads the first line and
	// detects tabs or commas.
	Detect
)

func (dl Delims) Rune() rune {
	switch dl {
	case Tab:
		return '\t'
	case Space:
		return ' '
	}
	return ','
}

// OpenCSV reads a table from a comma-separated-values (CSV) file
// (where comma = any delimiter, specified in the delim arg).
// The first row of the file is the header and columns are constructed
// from it, with types inferred from the data: a column whose non-empty
// values all parse as numbers becomes a float column, otherwise string.
// Empty and "NaN" cells in float columns become missing values.
func (dt *Table) OpenCSV(filename string, delim Delims) error {
	fp, err := os.Open(filename)
	if err != nil {
		return err
	}
	defer fp.Close()
	return dt.ReadCSV(bufio.NewReader(fp), delim)
}

// ReadCSV reads a table from the given reader, as in [Table.OpenCSV],
// using the Go standard encoding/csv reader conforming to the official
// CSV standard.
func (dt *Table) ReadCSV(r io.Reader, delim Delims) error {
	br := bufio.NewReader(r)
	if delim == Detect {
		first, err := br.Peek(1024)
		if err != nil && err != io.EOF {
			return err
		}
		delim = detectDelim(string(first))
	}
	cr := csv.NewReader(br)
	cr.Comma = delim.Rune()
	rec, err := cr.ReadAll()
	if err != nil {
		return err
	}
	if len(rec) == 0 {
		return fmt.Errorf("table.Table: no rows in file")
	}
	hdrs := rec[0]
	body := rec[1:]
	dt.ColumnNames = nil
	dt.columns = make(map[string]Column)
	dt.Indexes = nil
	dt.rows = len(body)
	for ci, hd := range hdrs {
		if hd == "" {
			hd = fmt.Sprintf("col_%d", ci)
		}
		if columnIsNumeric(body, ci) {
			cl := dt.AddFloat64Column(hd)
			for ri, row := range body {
				cl.Values[ri] = parseFloatCell(row[ci])
			}
		} else {
			cl := dt.AddStringColumn(hd)
			for ri, row := range body {
				cl.Values[ri] = row[ci]
			}
		}
	}
	return nil
}

// detectDelim looks at the first line of data and returns the first
// candidate delimiter that appears in it, defaulting to Comma.
func detectDelim(first string) Delims {
	if i := strings.IndexByte(first, '\n'); i >= 0 {
		first = first[:i]
	}
	for _, dl := range []Delims{Tab, Comma, Space} {
		if strings.ContainsRune(first, dl.Rune()) {
			return dl
		}
	}
	return Comma
}

// columnIsNumeric reports whether every non-empty cell of the given
// column parses as a float64. Empty cells and "NaN" count as numeric
// missing values, but an all-empty column stays a string column.
func columnIsNumeric(body [][]string, ci int) bool {
	any := false
	for _, row := range body {
		if ci >= len(row) {
			continue
		}
		str := row[ci]
		if str == "" {
			continue
		}
		if _, err := strconv.ParseFloat(str, 64); err != nil {
			return false
		}
		any = true
	}
	return any
}

func parseFloatCell(str string) float64 {
	if str == "" {
		return math.NaN()
	}
	v, err := strconv.ParseFloat(str, 64)
	if err != nil {
		return math.NaN()
	}
	return v
}

// SaveCSV writes a table to a comma-separated-values (CSV) file
// (where comma = any delimiter, specified in the delim arg),
// with a header row of column names. Only rows in the current Indexes
// view are written, in view order.
func (dt *Table) SaveCSV(filename string, delim Delims) error {
	fp, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer fp.Close()
	bw := bufio.NewWriter(fp)
	if err := dt.WriteCSV(bw, delim); err != nil {
		return err
	}
	return bw.Flush()
}

// WriteCSV writes a table to the given writer, as in [Table.SaveCSV].
func (dt *Table) WriteCSV(w io.Writer, delim Delims) error {
	cw := csv.NewWriter(w)
	cw.Comma = delim.Rune()
	if err := cw.Write(dt.ColumnNames); err != nil {
		return err
	}
	n := dt.NumRows()
	rec := make([]string, len(dt.ColumnNames))
	for i := 0; i < n; i++ {
		ri := dt.RowIndex(i)
		for ci, nm := range dt.ColumnNames {
			switch cl := dt.columns[nm].(type) {
			case *Float64:
				v := cl.Values[ri]
				if math.IsNaN(v) {
					rec[ci] = ""
				} else {
					rec[ci] = strconv.FormatFloat(v, 'g', -1, 64)
				}
			case *String:
				rec[ci] = cl.Values[ri]
			}
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
