// Copyright (c) 2026, The zEpid Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package forest

import (
	"bytes"
	"image/color"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRows(t *testing.T) {
	p, err := New(
		[]string{"One", "Two"},
		[]Value{Num(1.01), Num(1.31)},
		[]Value{Text("0.90"), Num(1.01)},
		[]Value{Num(1.11), Num(1.53)},
	)
	require.NoError(t, err)
	assert.Equal(t, 2, p.NumRows())

	// one row per input element, in input order
	assert.Equal(t, "One", p.rows[0].label)
	assert.Equal(t, "Two", p.rows[1].label)
	assert.InDelta(t, 1.01, p.rows[0].estNum, 1e-12)

	// deltas from the coercion path (mixed text/number lower limits)
	assert.InDelta(t, 0.11, p.rows[0].lowDelta, 1e-9)
	assert.InDelta(t, 0.10, p.rows[0].highDelta, 1e-9)
	assert.InDelta(t, 0.30, p.rows[1].lowDelta, 1e-9)
	assert.GreaterOrEqual(t, p.rows[0].lowDelta, 0.0)
	assert.GreaterOrEqual(t, p.rows[0].highDelta, 0.0)
}

func TestNewShapeMismatch(t *testing.T) {
	_, err := New(
		[]string{"One", "Two"},
		[]Value{Num(1)},
		[]Value{Num(0.5)},
		[]Value{Num(2)},
	)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrShapeMismatch)
}

func TestNewInvalidNumeric(t *testing.T) {
	_, err := New(
		[]string{"One"},
		[]Value{Text("not-a-number")},
		[]Value{Num(0.5)},
		[]Value{Num(2)},
	)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidNumericFormat)
}

func TestBlankRowKeepsSlot(t *testing.T) {
	p, err := New(
		[]string{"One", " ", "Two"},
		[]Value{Num(1.0), Text(" "), Num(2.0)},
		[]Value{Num(0.5), Text(" "), Num(1.5)},
		[]Value{Num(1.5), Text(" "), Num(2.5)},
	)
	require.NoError(t, err)
	assert.Equal(t, 3, p.NumRows())
	assert.True(t, math.IsNaN(p.rows[1].estNum))

	cells := p.tableCells(2)
	require.Len(t, cells, 3)
	assert.Equal(t, [2]string{" ", " "}, cells[1])
}

func TestTableCells(t *testing.T) {
	p, err := New(
		[]string{"One"},
		[]Value{Num(1.234)},
		[]Value{Num(0.9)},
		[]Value{Num(1.6)},
	)
	require.NoError(t, err)
	cells := p.tableCells(2)
	assert.Equal(t, [2]string{"1.23", "(0.9, 1.6)"}, cells[0])
}

func TestTableCellsPreserveText(t *testing.T) {
	p, err := New(
		[]string{"One"},
		[]Value{Text("1.30")},
		[]Value{Text("0.90")},
		[]Value{Text("1.70")},
	)
	require.NoError(t, err)
	cells := p.tableCells(3)
	assert.Equal(t, [2]string{"1.30", "(0.90, 1.70)"}, cells[0])
}

func TestAxisBounds(t *testing.T) {
	tests := []struct {
		maxUpper, minLower float64
		mini, maxi         float64
	}{
		{0.8, 0.5, 0.4, 0.85},
		{5, 0.5, 0.4, 6},
		{9, 0.5, 0.4, 10},
		{15, 0.5, 0.4, 25},
		{1, 0.5, 0.4, 2},
		{2, -0.3, -0.35, 3},
	}
	for _, tc := range tests {
		mini, maxi := axisBounds(tc.maxUpper, tc.minLower)
		assert.InDelta(t, tc.mini, mini, 1e-12, "mini for %+v", tc)
		assert.InDelta(t, tc.maxi, maxi, 1e-12, "maxi for %+v", tc)
	}
}

func TestLabelsColorsMerge(t *testing.T) {
	p, err := New(
		[]string{"One"},
		[]Value{Num(1)},
		[]Value{Num(0.5)},
		[]Value{Num(2)},
	)
	require.NoError(t, err)

	p.Labels(LabelOptions{EffectMeasure: "RR"})
	assert.Equal(t, "RR", p.effectMeasure)
	assert.Equal(t, "95% CI", p.confInt) // unset keeps default

	p.Labels(LabelOptions{ConfInt: "90% CI", Scale: ScaleLinear})
	assert.Equal(t, "RR", p.effectMeasure) // later sparse call keeps prior
	assert.Equal(t, "90% CI", p.confInt)
	assert.Equal(t, ScaleLinear, p.scale)

	center := 0.0
	p.Labels(LabelOptions{Center: &center})
	assert.Equal(t, 0.0, p.center)

	p.Colors(ColorOptions{PointColor: color.White, PointShape: "circle"})
	assert.Equal(t, color.Color(color.White), p.pointColor)
	assert.Equal(t, "circle", p.pointShape)
	assert.NotNil(t, p.errBarColor) // untouched
}

func TestRender(t *testing.T) {
	p, err := New(
		[]string{"One", "Two", "Three"},
		[]Value{Num(1.01), Num(1.31), Num(0.91)},
		[]Value{Num(0.90), Num(1.01), Num(0.71)},
		[]Value{Num(1.11), Num(1.53), Num(1.21)},
	)
	require.NoError(t, err)
	p.Labels(LabelOptions{EffectMeasure: "RR"})

	img, err := p.Render(DefaultRenderOptions())
	require.NoError(t, err)
	b := img.Bounds()
	assert.Greater(t, b.Dx(), 0)
	assert.Greater(t, b.Dy(), 0)
	// canvas is Size*2 x Size inches
	assert.Equal(t, 2*b.Dy(), b.Dx())
}

func TestRenderUnknownShape(t *testing.T) {
	p, err := New(
		[]string{"One"},
		[]Value{Num(1)},
		[]Value{Num(0.5)},
		[]Value{Num(2)},
	)
	require.NoError(t, err)
	p.Colors(ColorOptions{PointShape: "heptagram"})
	_, err = p.Render(DefaultRenderOptions())
	assert.Error(t, err)
}

func TestRenderLogScaleNeedsPositiveMin(t *testing.T) {
	p, err := New(
		[]string{"One"},
		[]Value{Num(0.1)},
		[]Value{Num(-0.5)},
		[]Value{Num(0.5)},
	)
	require.NoError(t, err)
	_, err = p.Render(DefaultRenderOptions())
	require.Error(t, err)

	// the same rows render fine on a linear scale
	p.Labels(LabelOptions{Scale: ScaleLinear})
	center := 0.0
	p.Labels(LabelOptions{Center: &center})
	_, err = p.Render(DefaultRenderOptions())
	assert.NoError(t, err)
}

func TestWritePNG(t *testing.T) {
	p, err := New(
		[]string{"One"},
		[]Value{Num(1)},
		[]Value{Num(0.5)},
		[]Value{Num(2)},
	)
	require.NoError(t, err)
	var buf bytes.Buffer
	require.NoError(t, p.WritePNG(&buf, DefaultRenderOptions()))
	assert.Greater(t, buf.Len(), 0)
	assert.Equal(t, []byte{0x89, 'P', 'N', 'G'}, buf.Bytes()[:4])
}

func TestValueFloat(t *testing.T) {
	f, err := Num(1.5).Float()
	require.NoError(t, err)
	assert.Equal(t, 1.5, f)

	f, err = Text("1.30").Float()
	require.NoError(t, err)
	assert.Equal(t, 1.3, f)

	f, err = Text("  ").Float()
	require.NoError(t, err)
	assert.True(t, math.IsNaN(f))

	_, err = Text("abc").Float()
	assert.ErrorIs(t, err, ErrInvalidNumericFormat)
}

func TestMarkerShapes(t *testing.T) {
	shapes := MarkerShapes()
	assert.Contains(t, shapes, "diamond")
	assert.Contains(t, shapes, "circle")
	for _, nm := range shapes {
		_, err := glyphForShape(nm)
		assert.NoError(t, err)
	}
}
