// Copyright (c) 2026, The zEpid Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package forest

import (
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"
	"math"
	"strconv"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
)

// RenderOptions control the rendered figure. Use [DefaultRenderOptions]
// for the stock settings.
type RenderOptions struct {
	// TAdjuster shifts the table vertically (as a fraction of figure
	// height) to align it with the chart rows. There is no formula for
	// this; trial and error per figure is normal.
	TAdjuster float64

	// Decimal is the number of decimal places for numeric table cells.
	Decimal int

	// Size scales the figure; the canvas is Size*2 x Size inches.
	Size float64
}

// DefaultRenderOptions returns the stock render settings.
func DefaultRenderOptions() RenderOptions {
	return RenderOptions{TAdjuster: 0.01, Decimal: 3, Size: 3}
}

// Render draws the effect measure plot: the point-and-error-bar chart on
// the left two thirds of the canvas and the value table on the right
// third, sharing row alignment. The caller owns display and saving of the
// returned image; see [EffectMeasurePlot.WritePNG] for a PNG convenience.
func (p *EffectMeasurePlot) Render(opts RenderOptions) (image.Image, error) {
	if len(p.rows) == 0 {
		return nil, errors.New("forest: no rows to plot")
	}
	if opts.Size <= 0 {
		opts.Size = 3
	}
	if opts.Decimal < 0 {
		opts.Decimal = 3
	}

	maxUpper, minLower, err := p.bounds()
	if err != nil {
		return nil, err
	}
	mini, maxi := axisBounds(maxUpper, minLower)
	if p.scale == ScaleLog && mini <= 0 {
		return nil, fmt.Errorf("forest: log scale requires a positive axis minimum, got %g", mini)
	}

	chart, err := p.makeChart(mini, maxi, opts.Size)
	if err != nil {
		return nil, err
	}
	tbl, err := p.makeTable(opts.Decimal)
	if err != nil {
		return nil, err
	}

	w := vg.Length(opts.Size*2) * vg.Inch
	h := vg.Length(opts.Size) * vg.Inch
	cnv := vgimg.New(w, h)
	dc := draw.New(cnv)
	chart.Draw(draw.Crop(dc, 0, -w/3, 0, 0))
	tbl.Draw(draw.Crop(dc, w*2/3, 0, vg.Length(opts.TAdjuster)*h, 0))
	return cnv.Image(), nil
}

// WritePNG renders the plot and encodes it as PNG to w.
func (p *EffectMeasurePlot) WritePNG(w io.Writer, opts RenderOptions) error {
	img, err := p.Render(opts)
	if err != nil {
		return err
	}
	return png.Encode(w, img)
}

// rowY returns the y coordinate for row i: the y axis is inverted so that
// row 0 reads at the top.
func (p *EffectMeasurePlot) rowY(i int) float64 {
	return float64(len(p.rows) - 1 - i)
}

// makeChart builds the left panel: reference line, error bars, and points.
func (p *EffectMeasurePlot) makeChart(mini, maxi, size float64) (*plot.Plot, error) {
	glyph, err := glyphForShape(p.pointShape)
	if err != nil {
		return nil, err
	}
	n := len(p.rows)

	ch := plot.New()
	if p.scale == ScaleLog {
		ch.X.Scale = plot.LogScale{}
	}
	ch.X.Tick.Marker = plot.ConstantTicks([]plot.Tick{
		{Value: mini, Label: tickLabel(mini)},
		{Value: p.center, Label: tickLabel(p.center)},
		{Value: maxi, Label: tickLabel(maxi)},
	})
	yticks := make([]plot.Tick, n)
	for i, r := range p.rows {
		yticks[i] = plot.Tick{Value: p.rowY(i), Label: r.label}
	}
	ch.Y.Tick.Marker = plot.ConstantTicks(yticks)
	ch.Y.Tick.Length = 0

	ref, err := plotter.NewLine(plotter.XYs{
		{X: p.center, Y: -1},
		{X: p.center, Y: float64(n)},
	})
	if err != nil {
		return nil, err
	}
	ref.LineStyle.Color = p.lineColor
	ref.LineStyle.Width = vg.Points(1)
	ch.Add(ref)

	// error bars carry all rows; blank (NaN) rows are skipped internally
	// but keep their axis tick.
	xys := make(plotter.XYs, n)
	low := make([]float64, n)
	high := make([]float64, n)
	for i, r := range p.rows {
		xys[i] = plotter.XY{X: r.estNum, Y: p.rowY(i)}
		low[i] = r.lowDelta
		high[i] = r.highDelta
	}
	eb := newXErrorBars(xys, low, high)
	eb.LineStyle.Color = p.errBarColor
	ch.Add(eb)

	var ptXYs plotter.XYs
	for i, r := range p.rows {
		if math.IsNaN(r.estNum) {
			continue
		}
		ptXYs = append(ptXYs, plotter.XY{X: r.estNum, Y: p.rowY(i)})
	}
	pts, err := plotter.NewScatter(ptXYs)
	if err != nil {
		return nil, err
	}
	pts.GlyphStyle = draw.GlyphStyle{
		Color:  p.pointColor,
		Radius: vg.Points(1.6 * size),
		Shape:  glyph,
	}
	ch.Add(pts)

	// the axis limits are forced after adding the plotters, which would
	// otherwise expand them to fit the reference line and bar ranges.
	ch.X.Min = mini
	ch.X.Max = maxi
	ch.Y.Min = -1
	ch.Y.Max = float64(n)
	return ch, nil
}

// makeTable builds the right panel: a borderless text table with the
// effect measure and confidence interval columns, row-aligned with the
// chart panel.
func (p *EffectMeasurePlot) makeTable(decimal int) (*plot.Plot, error) {
	n := len(p.rows)
	tp := plot.New()
	tp.HideAxes()

	const estX, ciX = 0.25, 0.7
	headerY := float64(n) - 0.3

	cells := p.tableCells(decimal)
	xys := make(plotter.XYs, 0, 2*n+2)
	labels := make([]string, 0, 2*n+2)
	xys = append(xys, plotter.XY{X: estX, Y: headerY}, plotter.XY{X: ciX, Y: headerY})
	labels = append(labels, p.effectMeasure, p.confInt)
	for i, cell := range cells {
		y := p.rowY(i)
		xys = append(xys, plotter.XY{X: estX, Y: y}, plotter.XY{X: ciX, Y: y})
		labels = append(labels, cell[0], cell[1])
	}
	lbs, err := plotter.NewLabels(plotter.XYLabels{XYs: xys, Labels: labels})
	if err != nil {
		return nil, err
	}
	for i := range lbs.TextStyle {
		sty := &lbs.TextStyle[i]
		sty.XAlign = draw.XCenter
		sty.YAlign = draw.YCenter
		sty.Font.Size = vg.Points(12)
	}
	tp.Add(lbs)
	tp.X.Min = 0
	tp.X.Max = 1
	tp.Y.Min = -1
	tp.Y.Max = float64(n)
	return tp, nil
}

func tickLabel(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
