// Copyright (c) 2026, The zEpid Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package funcform

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vgs549/zEpid/glm"
	"github.com/vgs549/zEpid/table"
)

// diagTable returns observations over five predictor levels with mixed
// outcomes at each level, plus one row with a missing predictor.
func diagTable() *table.Table {
	dt := table.NewTable()
	var xs, ys []float64
	// event counts per level out of 6: 1, 2, 3, 4, 5
	for lv := 1; lv <= 5; lv++ {
		for i := 0; i < 6; i++ {
			xs = append(xs, float64(lv))
			if i < lv {
				ys = append(ys, 1)
			} else {
				ys = append(ys, 0)
			}
		}
	}
	xs = append(xs, math.NaN())
	ys = append(ys, 1)
	dt.SetNumRows(len(xs))
	dt.AddFloat64Column("x").Set(xs...)
	dt.AddFloat64Column("y").Set(ys...)
	return dt
}

func TestUnsupportedOutcomeType(t *testing.T) {
	dt := diagTable()
	opts := DefaultOptions()
	opts.OutcomeType = "count"
	_, err := Plot(dt, "y", "x", opts)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnsupportedOutcomeType)
}

func TestPlotBinary(t *testing.T) {
	dt := diagTable()
	opts := DefaultOptions()
	opts.ModelResults = false
	img, err := Plot(dt, "y", "x", opts)
	require.NoError(t, err)
	assert.Greater(t, img.Bounds().Dx(), 0)

	// the source table's view is untouched
	assert.Equal(t, 31, dt.NumRows())
}

func TestPlotContinuous(t *testing.T) {
	dt := table.NewTable()
	dt.SetNumRows(10)
	dt.AddFloat64Column("x").Set(1, 2, 3, 4, 5, 6, 7, 8, 9, 10)
	dt.AddFloat64Column("sbp").Set(112, 118, 121, 125, 131, 136, 138, 144, 149, 152)

	opts := DefaultOptions()
	opts.OutcomeType = Continuous
	opts.Preset = glm.GaussianIdentity
	opts.ModelResults = false
	opts.Points = true
	img, err := Plot(dt, "sbp", "x", opts)
	require.NoError(t, err)
	assert.Greater(t, img.Bounds().Dx(), 0)
}

func TestPlotFormFragment(t *testing.T) {
	dt := diagTable()
	sq := dt.AddFloat64Column("x_sq")
	x := dt.Column("x").(*table.Float64)
	sq.Set(func() []float64 {
		out := make([]float64, len(x.Values))
		for i, v := range x.Values {
			out[i] = v * v
		}
		return out
	}()...)

	opts := DefaultOptions()
	opts.Form = "x + x_sq"
	opts.ModelResults = false
	opts.Loess = false
	_, err := Plot(dt, "y", "x", opts)
	require.NoError(t, err)
}

func TestPlotNoOverlays(t *testing.T) {
	dt := diagTable()
	opts := DefaultOptions()
	opts.ModelResults = false
	opts.Loess = false
	opts.Legend = false
	ylims := [2]float64{0, 1}
	opts.YLims = &ylims
	_, err := Plot(dt, "y", "x", opts)
	require.NoError(t, err)
}

func TestPlotPointsBinary(t *testing.T) {
	dt := diagTable()
	opts := DefaultOptions()
	opts.ModelResults = false
	opts.Points = true
	_, err := Plot(dt, "y", "x", opts)
	require.NoError(t, err)
}

func TestPlotUnknownColumn(t *testing.T) {
	dt := diagTable()
	opts := DefaultOptions()
	opts.ModelResults = false
	_, err := Plot(dt, "y", "nope", opts)
	assert.Error(t, err)
}

func TestGroupPoints(t *testing.T) {
	pts := groupPoints(
		[]float64{1, 1, 2, 2, 2},
		[]float64{0.5, 0.5, 0.3, 0.3, 0.4},
	)
	require.Len(t, pts, 3)
	assert.Equal(t, 2, pts[0].count)
	assert.Equal(t, 2, pts[1].count)
	assert.Equal(t, 1, pts[2].count)
}
