// Copyright (c) 2026, The zEpid Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package funcform

import (
	"image/color"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// confidenceBand fills the region between the lower and upper confidence
// limits of the mean prediction across the predictor's range.
type confidenceBand struct {
	// X values in ascending order, with the per-X band limits.
	X, Lower, Upper []float64

	// Color fills the band; use a mostly-transparent color.
	Color color.Color
}

// Plot implements the plot.Plotter interface.
func (b *confidenceBand) Plot(c draw.Canvas, plt *plot.Plot) {
	trX, trY := plt.Transforms(&c)
	n := len(b.X)
	pts := make([]vg.Point, 0, 2*n)
	for i := 0; i < n; i++ {
		pts = append(pts, vg.Point{X: trX(b.X[i]), Y: trY(b.Upper[i])})
	}
	for i := n - 1; i >= 0; i-- {
		pts = append(pts, vg.Point{X: trX(b.X[i]), Y: trY(b.Lower[i])})
	}
	c.FillPolygon(b.Color, c.ClipPolygonXY(pts))
}

// DataRange implements the plot.DataRanger interface.
func (b *confidenceBand) DataRange() (xmin, xmax, ymin, ymax float64) {
	xmin = math.Inf(1)
	xmax = math.Inf(-1)
	ymin = math.Inf(1)
	ymax = math.Inf(-1)
	for i := range b.X {
		xmin = math.Min(xmin, b.X[i])
		xmax = math.Max(xmax, b.X[i])
		ymin = math.Min(ymin, b.Lower[i])
		ymax = math.Max(ymax, b.Upper[i])
	}
	return xmin, xmax, ymin, ymax
}

// Thumbnail implements the plot.Thumbnailer interface for the legend.
func (b *confidenceBand) Thumbnail(c *draw.Canvas) {
	pts := []vg.Point{
		{X: c.Min.X, Y: c.Min.Y},
		{X: c.Max.X, Y: c.Min.Y},
		{X: c.Max.X, Y: c.Max.Y},
		{X: c.Min.X, Y: c.Max.Y},
	}
	c.FillPolygon(b.Color, pts)
}
