// Copyright (c) 2026, The zEpid Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package forest

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ErrInvalidNumericFormat is returned when a text value that must be
// coerced to a number cannot be parsed.
var ErrInvalidNumericFormat = errors.New("forest: invalid numeric format")

// Value is one table entry: either a plain number, or formatted text whose
// exact rendering must be preserved (e.g. trailing zeros such as "1.30").
// Text of only whitespace is the blank marker, reserving a row slot in the
// plot while rendering empty table cells.
type Value struct {
	num       float64
	text      string
	formatted bool
}

// Num returns a numeric Value.
func Num(v float64) Value {
	return Value{num: v}
}

// Text returns a formatted-text Value, rendered verbatim in the table.
// An empty or whitespace-only string is the blank marker.
func Text(s string) Value {
	return Value{text: s, formatted: true}
}

// Nums converts a slice of floats to Values.
func Nums(vs []float64) []Value {
	out := make([]Value, len(vs))
	for i, v := range vs {
		out[i] = Num(v)
	}
	return out
}

// Texts converts a slice of strings to formatted-text Values.
func Texts(ss []string) []Value {
	out := make([]Value, len(ss))
	for i, s := range ss {
		out[i] = Text(s)
	}
	return out
}

// IsNumber returns true if the value is a plain number.
func (v Value) IsNumber() bool { return !v.formatted }

// IsBlank returns true if the value is the blank marker.
func (v Value) IsBlank() bool {
	return v.formatted && strings.TrimSpace(v.text) == ""
}

// Float coerces the value to a float64 for plotting. Blank markers
// coerce to NaN. Returns [ErrInvalidNumericFormat] for unparseable text.
func (v Value) Float() (float64, error) {
	if !v.formatted {
		return v.num, nil
	}
	if v.IsBlank() {
		return math.NaN(), nil
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(v.text), 64)
	if err != nil {
		return math.NaN(), fmt.Errorf("%w: %q", ErrInvalidNumericFormat, v.text)
	}
	return f, nil
}

// Cell renders the value as table cell text: numbers are rounded to the
// given number of decimals, formatted text is preserved verbatim.
func (v Value) Cell(decimal int) string {
	if v.formatted {
		return v.text
	}
	return strconv.FormatFloat(roundTo(v.num, decimal), 'g', -1, 64)
}

// roundTo rounds v to dp decimal places.
func roundTo(v float64, dp int) float64 {
	p := math.Pow(10, float64(dp))
	return math.Round(v*p) / p
}
