// Copyright (c) 2026, The zEpid Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package forest

import (
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// xErrorBars draws horizontal error bars, denoting error in X values,
// using per-point Low, High deltas around the X, Y coordinates. Rows with
// a NaN coordinate or delta are skipped.
type xErrorBars struct {
	// XYs are the point coordinates.
	XYs plotter.XYs

	// Low, High are the bar half-widths to the left and right of X.
	Low, High []float64

	// LineStyle is the style of the error bar lines.
	LineStyle draw.LineStyle

	// CapWidth is the width of the caps on the ends of the bars;
	// zero draws no caps.
	CapWidth vg.Length
}

func newXErrorBars(xys plotter.XYs, low, high []float64) *xErrorBars {
	return &xErrorBars{
		XYs:  xys,
		Low:  low,
		High: high,
		LineStyle: draw.LineStyle{
			Width: vg.Points(1),
		},
	}
}

// Plot implements the plot.Plotter interface.
func (eb *xErrorBars) Plot(c draw.Canvas, plt *plot.Plot) {
	trX, trY := plt.Transforms(&c)
	for i, pt := range eb.XYs {
		if math.IsNaN(pt.X) || math.IsNaN(eb.Low[i]) || math.IsNaN(eb.High[i]) {
			continue
		}
		y := trY(pt.Y)
		xlow := trX(pt.X - math.Abs(eb.Low[i]))
		xhigh := trX(pt.X + math.Abs(eb.High[i]))

		c.StrokeLine2(eb.LineStyle, xlow, y, xhigh, y)
		if eb.CapWidth > 0 {
			cw := eb.CapWidth / 2
			c.StrokeLine2(eb.LineStyle, xlow, y-cw, xlow, y+cw)
			c.StrokeLine2(eb.LineStyle, xhigh, y-cw, xhigh, y+cw)
		}
	}
}

// DataRange implements the plot.DataRanger interface.
func (eb *xErrorBars) DataRange() (xmin, xmax, ymin, ymax float64) {
	xmin = math.Inf(1)
	xmax = math.Inf(-1)
	ymin = math.Inf(1)
	ymax = math.Inf(-1)
	for i, pt := range eb.XYs {
		if math.IsNaN(pt.X) || math.IsNaN(eb.Low[i]) || math.IsNaN(eb.High[i]) {
			continue
		}
		xmin = math.Min(xmin, pt.X-math.Abs(eb.Low[i]))
		xmax = math.Max(xmax, pt.X+math.Abs(eb.High[i]))
		ymin = math.Min(ymin, pt.Y)
		ymax = math.Max(ymax, pt.Y)
	}
	return xmin, xmax, ymin, ymax
}
