// Copyright (c) 2026, The zEpid Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package forest renders effect measure plots: point estimates with
// confidence intervals drawn as a forest plot, with a companion table of
// the numeric values. Plots resemble the following form:
//
//	    _____________________________________________      Measure   95% CI
//	    |                                           |
//	One |        --------o-------                   |       x        n, 2n
//	    |                                           |
//	Two |                   ----o----               |       w        m, 2m
//	    |                                           |
//	    |___________________________________________|
//	    #           #           #           #
//
// Build an [EffectMeasurePlot] with [New], adjust its labels and colors as
// needed, and call [EffectMeasurePlot.Render] to produce the image.
package forest

import (
	"errors"
	"fmt"
	"image/color"
	"log/slog"
	"math"
)

// ErrShapeMismatch is returned when the input sequences have
// different lengths.
var ErrShapeMismatch = errors.New("forest: input sequences have different lengths")

// Scale is the x-axis scale of the plot.
type Scale string

const (
	// ScaleLog is a logarithmic x axis, the default for ratio measures.
	ScaleLog Scale = "log"

	// ScaleLinear is a linear x axis, for difference measures.
	ScaleLinear Scale = "linear"
)

// row is one study line of the plot: the display label, the three values
// as given, and their numeric projections for plotting. estNum is NaN for
// blank-marker rows, which keep their axis slot but render empty cells.
type row struct {
	label             string
	est, lower, upper Value

	estNum    float64
	lowDelta  float64 // estNum - lower, the left error bar half-width
	highDelta float64 // upper - estNum, the right error bar half-width
}

// EffectMeasurePlot builds an effect measure plot from four parallel
// sequences: row labels, point estimates, and lower and upper confidence
// limits. Configuration set via [EffectMeasurePlot.Labels] and
// [EffectMeasurePlot.Colors] is consumed at render time.
type EffectMeasurePlot struct {
	rows []row

	effectMeasure string
	confInt       string
	scale         Scale
	center        float64

	errBarColor color.Color
	lineColor   color.Color
	pointColor  color.Color
	pointShape  string
}

// New returns an EffectMeasurePlot for the given equal-length sequences.
// Estimates with trailing zeros to preserve should be given as [Text]
// values; use all-blank [Text] rows for an intentional visual gap.
// Returns [ErrShapeMismatch] for unequal lengths and
// [ErrInvalidNumericFormat] for text that cannot be coerced to a number.
func New(labels []string, estimates, lower, upper []Value) (*EffectMeasurePlot, error) {
	n := len(labels)
	if len(estimates) != n || len(lower) != n || len(upper) != n {
		return nil, fmt.Errorf("%w: labels=%d estimates=%d lower=%d upper=%d",
			ErrShapeMismatch, n, len(estimates), len(lower), len(upper))
	}
	p := &EffectMeasurePlot{
		effectMeasure: "OR",
		confInt:       "95% CI",
		scale:         ScaleLog,
		center:        1,
		errBarColor:   color.Gray{Y: 105}, // dimgrey
		lineColor:     color.Gray{Y: 190},
		pointColor:    color.Black,
		pointShape:    "diamond",
	}

	// when estimates and a bound are all native numbers the deltas come from
	// direct subtraction; any text in either sequence switches that bound to
	// the coercion path, so mixed formatted and numeric rows still plot.
	lowFloat := allNumbers(estimates) && allNumbers(lower)
	highFloat := allNumbers(estimates) && allNumbers(upper)

	p.rows = make([]row, n)
	for i := range labels {
		r := row{label: labels[i], est: estimates[i], lower: lower[i], upper: upper[i]}
		var err error
		r.estNum, err = estimates[i].Float()
		if err != nil {
			return nil, fmt.Errorf("row %d estimate: %w", i, err)
		}
		if lowFloat {
			r.lowDelta = estimates[i].num - lower[i].num
		} else {
			lo, err := lower[i].Float()
			if err != nil {
				return nil, fmt.Errorf("row %d lower: %w", i, err)
			}
			r.lowDelta = r.estNum - lo
		}
		if highFloat {
			r.highDelta = upper[i].num - estimates[i].num
		} else {
			up, err := upper[i].Float()
			if err != nil {
				return nil, fmt.Errorf("row %d upper: %w", i, err)
			}
			r.highDelta = up - r.estNum
		}
		if r.lowDelta < 0 || r.highDelta < 0 {
			slog.Warn("forest: negative error bar width; estimate outside its confidence limits",
				"row", i, "label", r.label)
		}
		p.rows[i] = r
	}
	return p, nil
}

func allNumbers(vs []Value) bool {
	for _, v := range vs {
		if !v.IsNumber() {
			return false
		}
	}
	return true
}

// NumRows returns the number of plot rows, including blank-marker rows.
func (p *EffectMeasurePlot) NumRows() int { return len(p.rows) }

// LabelOptions are sparse overrides for the plot labels, scale, and
// reference line. Zero-valued fields leave the prior setting unchanged.
type LabelOptions struct {
	// EffectMeasure is the table header text for the estimate column.
	EffectMeasure string

	// ConfInt is the table header text for the confidence interval column.
	ConfInt string

	// Scale sets the x axis to [ScaleLog] or [ScaleLinear].
	Scale Scale

	// Center is the x value of the vertical reference line.
	Center *float64
}

// Labels applies the given sparse label overrides. Callable any number of
// times before rendering; later calls win.
func (p *EffectMeasurePlot) Labels(opts LabelOptions) *EffectMeasurePlot {
	if opts.EffectMeasure != "" {
		p.effectMeasure = opts.EffectMeasure
	}
	if opts.ConfInt != "" {
		p.confInt = opts.ConfInt
	}
	if opts.Scale != "" {
		p.scale = opts.Scale
	}
	if opts.Center != nil {
		p.center = *opts.Center
	}
	return p
}

// ColorOptions are sparse overrides for plot colors and the point marker.
// Nil / zero-valued fields leave the prior setting unchanged.
type ColorOptions struct {
	// ErrorBarColor is the color of the confidence interval bars.
	ErrorBarColor color.Color

	// LineColor is the color of the vertical reference line.
	LineColor color.Color

	// PointColor is the color of the point estimate markers.
	PointColor color.Color

	// PointShape is the marker shape name; see [MarkerShapes].
	PointShape string
}

// Colors applies the given sparse color and shape overrides. Callable any
// number of times before rendering; later calls win. An unrecognized
// PointShape fails at render time.
func (p *EffectMeasurePlot) Colors(opts ColorOptions) *EffectMeasurePlot {
	if opts.ErrorBarColor != nil {
		p.errBarColor = opts.ErrorBarColor
	}
	if opts.LineColor != nil {
		p.lineColor = opts.LineColor
	}
	if opts.PointColor != nil {
		p.pointColor = opts.PointColor
	}
	if opts.PointShape != "" {
		p.pointShape = opts.PointShape
	}
	return p
}

// tableCells returns the two text cells for each row: the estimate and
// "(lower, upper)". Rows without a numeric estimate render as blanks but
// still occupy their slot.
func (p *EffectMeasurePlot) tableCells(decimal int) [][2]string {
	cells := make([][2]string, len(p.rows))
	for i, r := range p.rows {
		if math.IsNaN(r.estNum) {
			cells[i] = [2]string{" ", " "}
			continue
		}
		cells[i] = [2]string{
			r.est.Cell(decimal),
			"(" + r.lower.Cell(decimal) + ", " + r.upper.Cell(decimal) + ")",
		}
	}
	return cells
}

// axisBounds computes the padded x-axis limits from the extreme confidence
// limits, using tiered padding so that ratio measures of typical magnitudes
// get readable margins. Tiers for the maximum: < 1 pads by 0.05 (2 decimal
// rounding), 1 through 9 pads by 1 (integer rounding), > 9 pads by 10.
// For the minimum: > 0 pads by 0.1 (1 decimal), otherwise by 0.05 (2
// decimals).
func axisBounds(maxUpper, minLower float64) (mini, maxi float64) {
	switch {
	case maxUpper < 1:
		maxi = roundTo(maxUpper+0.05, 2)
	case maxUpper <= 9:
		maxi = roundTo(maxUpper+1, 0)
	default:
		maxi = roundTo(maxUpper+10, 0)
	}
	if minLower > 0 {
		mini = roundTo(minLower-0.1, 1)
	} else {
		mini = roundTo(minLower-0.05, 2)
	}
	return mini, maxi
}

// bounds returns the extreme numeric confidence limits across rows,
// skipping blank rows. Returns an error if no row has numeric limits.
func (p *EffectMeasurePlot) bounds() (maxUpper, minLower float64, err error) {
	maxUpper = math.Inf(-1)
	minLower = math.Inf(1)
	for _, r := range p.rows {
		up, uerr := r.upper.Float()
		lo, lerr := r.lower.Float()
		if uerr == nil && !math.IsNaN(up) {
			maxUpper = math.Max(maxUpper, up)
		}
		if lerr == nil && !math.IsNaN(lo) {
			minLower = math.Min(minLower, lo)
		}
	}
	if math.IsInf(maxUpper, -1) || math.IsInf(minLower, 1) {
		return 0, 0, errors.New("forest: no numeric confidence limits to plot")
	}
	return maxUpper, minLower, nil
}
