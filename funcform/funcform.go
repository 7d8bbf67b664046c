// Copyright (c) 2026, The zEpid Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package funcform renders functional form assessment plots for continuous
// variables: a fitted generalized linear model curve with its confidence
// band, overlaid with a LOESS smoother and optionally the raw data, so that
// the adequacy of a model's functional form can be judged by eye.
package funcform

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"log/slog"
	"math"
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"github.com/vgs549/zEpid/glm"
	"github.com/vgs549/zEpid/lowess"
	"github.com/vgs549/zEpid/table"
)

// ErrUnsupportedOutcomeType is returned for outcome types other than
// [Binary] and [Continuous], before any model fitting occurs.
var ErrUnsupportedOutcomeType = errors.New("funcform: only binary or continuous outcomes are supported")

// OutcomeType is the variable type of the outcome column.
type OutcomeType string

const (
	// Binary outcomes are 0/1; the diagnostic mean predictions come from a
	// categorical-encoding reference model and the y axis is a probability.
	Binary OutcomeType = "binary"

	// Continuous outcomes use their raw values directly.
	Continuous OutcomeType = "continuous"
)

// Options control the functional form plot. [DefaultOptions] gives the
// stock behavior: binary outcome, logistic regression, LOESS overlay with
// smoothing fraction 0.5, legend and model summary on, raw points off.
type Options struct {
	// Form is the functional form to assess, as "+"-separated float column
	// names, e.g. "ldl + ldl_sq". Empty uses the predictor linearly.
	Form string

	// OutcomeType is [Binary] (default when empty) or [Continuous].
	OutcomeType OutcomeType

	// Preset is the link and distribution for the regression.
	Preset glm.Preset

	// YLims fixes the y-axis limits, which should be set when comparing
	// plots across models or datasets. Nil lets the axis fit the data.
	YLims *[2]float64

	// LoessFrac is the fraction of observations for each LOESS local fit;
	// values <= 0 use 0.5. Changing it iteratively per dataset is normal.
	LoessFrac float64

	// Legend toggles the legend.
	Legend bool

	// ModelResults prints the fitted model summary, including the
	// information criteria, to standard output.
	ModelResults bool

	// Loess toggles the LOESS overlay.
	Loess bool

	// Points overlays the data points, sized by observation count.
	Points bool
}

// DefaultOptions returns the stock plot options.
func DefaultOptions() Options {
	return Options{
		OutcomeType:  Binary,
		Preset:       glm.BinomialLogit,
		LoessFrac:    0.5,
		Legend:       true,
		ModelResults: true,
		Loess:        true,
	}
}

// sizedPoint is one scatter point with its observation count.
type sizedPoint struct {
	x, y  float64
	count int
}

// Plot fits the functional form model of the outcome on the predictor and
// renders the diagnostic overlay. Rows with missing values in any referenced
// column are dropped from a view of the table (the count is reported);
// fitting failures propagate from the regression unrecovered. The caller
// owns display and saving of the returned image.
func Plot(dt *table.Table, outcome, predictor string, opts Options) (image.Image, error) {
	ot := opts.OutcomeType
	if ot == "" {
		ot = Binary
	}
	if ot != Binary && ot != Continuous {
		return nil, fmt.Errorf("%w: got %q", ErrUnsupportedOutcomeType, opts.OutcomeType)
	}

	terms := []string{predictor}
	if opts.Form != "" {
		terms = terms[:0]
		for _, tm := range strings.Split(opts.Form, "+") {
			if tm = strings.TrimSpace(tm); tm != "" {
				terms = append(terms, tm)
			}
		}
	}
	cols := dedupe(append([]string{outcome, predictor}, terms...))

	v := table.NewView(dt)
	dropped, err := v.DropMissing(cols...)
	if err != nil {
		return nil, err
	}
	slog.Warn("missing observations of model variables are dropped", "dropped", dropped)
	sortByColumns(v, predictor, outcome)

	xv, err := v.Floats(predictor)
	if err != nil {
		return nil, err
	}
	yv, err := v.Floats(outcome)
	if err != nil {
		return nil, err
	}

	var loessX, loessY []float64
	var pts []sizedPoint
	if opts.Loess || opts.Points {
		// the diagnostic means: categorical reference model predictions for
		// binary outcomes, the raw outcome values for continuous ones.
		var means []float64
		switch ot {
		case Binary:
			ref, err := glm.NewModel(opts.Preset).FitCategorical(v, outcome, predictor)
			if err != nil {
				return nil, err
			}
			means = ref.Fitted
		case Continuous:
			means = yv
		}
		if opts.Points {
			pts = groupPoints(xv, means)
		}
		if opts.Loess {
			frac := opts.LoessFrac
			if frac <= 0 {
				frac = 0.5
			}
			loessX, loessY, err = lowess.Smooth(xv, means, frac, lowess.DefaultIters)
			if err != nil {
				return nil, err
			}
		}
	}

	res, err := glm.NewModel(opts.Preset).Fit(v, outcome, terms)
	if err != nil {
		return nil, err
	}
	if opts.ModelResults {
		fmt.Println(res.Summary())
	}

	return render(res, xv, loessX, loessY, pts, predictor, outcome, ot, opts)
}

func dedupe(names []string) []string {
	seen := make(map[string]bool, len(names))
	out := names[:0]
	for _, nm := range names {
		if !seen[nm] {
			seen[nm] = true
			out = append(out, nm)
		}
	}
	return out
}

// sortByColumns sorts the view by the given float columns in order.
func sortByColumns(v *table.Table, columns ...string) {
	cls := make([]*table.Float64, 0, len(columns))
	for _, nm := range columns {
		if cl, ok := v.Column(nm).(*table.Float64); ok {
			cls = append(cls, cl)
		}
	}
	v.SortStableFunc(func(v *table.Table, i, j int) int {
		for _, cl := range cls {
			a, b := cl.Values[i], cl.Values[j]
			switch {
			case a < b:
				return -1
			case a > b:
				return 1
			}
		}
		return 0
	})
}

// groupPoints collapses rows sharing (x, y) into one point with a count.
func groupPoints(xv, yv []float64) []sizedPoint {
	type key struct{ x, y float64 }
	idx := make(map[key]int)
	var pts []sizedPoint
	for i := range xv {
		k := key{xv[i], yv[i]}
		if j, ok := idx[k]; ok {
			pts[j].count++
			continue
		}
		idx[k] = len(pts)
		pts = append(pts, sizedPoint{x: xv[i], y: yv[i], count: 1})
	}
	return pts
}

func render(res *glm.Result, xv, loessX, loessY []float64, pts []sizedPoint,
	predictor, outcome string, ot OutcomeType, opts Options) (image.Image, error) {
	p := plot.New()
	p.X.Label.Text = predictor
	if ot == Binary {
		p.Y.Label.Text = "Probability"
	} else {
		p.Y.Label.Text = outcome
	}

	band := &confidenceBand{
		X:     xv,
		Lower: res.MeanLower,
		Upper: res.MeanUpper,
		Color: color.NRGBA{B: 255, A: 25},
	}
	p.Add(band)

	meanXYs := make(plotter.XYs, len(xv))
	for i := range xv {
		meanXYs[i] = plotter.XY{X: xv[i], Y: res.Fitted[i]}
	}
	mean, err := plotter.NewLine(meanXYs)
	if err != nil {
		return nil, err
	}
	mean.LineStyle.Color = color.NRGBA{B: 255, A: 255}
	mean.LineStyle.Width = vg.Points(1.5)
	p.Add(mean)

	var smooth *plotter.Line
	if loessX != nil {
		xys := make(plotter.XYs, len(loessX))
		for i := range loessX {
			xys[i] = plotter.XY{X: loessX[i], Y: loessY[i]}
		}
		smooth, err = plotter.NewLine(xys)
		if err != nil {
			return nil, err
		}
		smooth.LineStyle.Color = color.NRGBA{R: 255, A: 255}
		smooth.LineStyle.Width = vg.Points(1)
		smooth.LineStyle.Dashes = []vg.Length{vg.Points(6), vg.Points(3)}
		p.Add(smooth)
	}

	var scatter *plotter.Scatter
	if pts != nil {
		xys := make(plotter.XYs, len(pts))
		maxCount := 0
		for i, pt := range pts {
			xys[i] = plotter.XY{X: pt.x, Y: pt.y}
			if pt.count > maxCount {
				maxCount = pt.count
			}
		}
		scatter, err = plotter.NewScatter(xys)
		if err != nil {
			return nil, err
		}
		gray := color.NRGBA{R: 128, G: 128, B: 128, A: 255}
		scatter.GlyphStyle = draw.GlyphStyle{
			Color:  gray,
			Radius: vg.Points(3),
			Shape:  draw.CircleGlyph{},
		}
		scatter.GlyphStyleFunc = func(i int) draw.GlyphStyle {
			// marker area proportional to the observation count
			area := 100 * float64(pts[i].count) / float64(maxCount)
			return draw.GlyphStyle{
				Color:  gray,
				Radius: vg.Points(math.Sqrt(area / math.Pi)),
				Shape:  draw.CircleGlyph{},
			}
		}
		p.Add(scatter)
	}

	if opts.Legend {
		p.Legend.Add("95% CI", band)
		p.Legend.Add("Regression", mean)
		if smooth != nil {
			p.Legend.Add("LOESS", smooth)
		}
		if scatter != nil {
			p.Legend.Add("Data point", scatter)
		}
		p.Legend.Top = true
	}
	if opts.YLims != nil {
		p.Y.Min = opts.YLims[0]
		p.Y.Max = opts.YLims[1]
	}

	cnv := vgimg.New(6.4*vg.Inch, 4.8*vg.Inch)
	p.Draw(draw.New(cnv))
	return cnv.Image(), nil
}
