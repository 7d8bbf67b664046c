// Copyright (c) 2026, The zEpid Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package glm fits generalized linear models by iteratively reweighted
// least squares (IRLS), supporting binomial, gaussian and poisson families
// with logit, identity and log links. Models are fit from columns of a
// [table.Table], with the design matrix built from named float columns
// (plus an intercept), or from a dummy encoding of a single categorical
// predictor.
package glm

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/vgs549/zEpid/table"
)

// Model holds the family, link, and fitting parameters for a generalized
// linear model. Make a [NewModel] and then call [Model.Fit] with the
// relevant data in columns of a table. Parameters can be altered from
// defaults before calling Fit as needed.
type Model struct {
	// Family is the outcome error distribution.
	Family Family

	// Link maps the outcome mean to the linear predictor.
	Link Link

	// MaxIters is the maximum number of IRLS iterations to perform.
	MaxIters int `default:"25"`

	// Tol is the tolerance on the relative change in deviance across
	// iterations to stop iterating and consider the fit converged.
	Tol float64 `default:"1e-8"`
}

// NewModel returns a new Model for the given preset link and distribution.
func NewModel(p Preset) *Model {
	f, l := p.FamilyLink()
	m := &Model{Family: f, Link: l}
	m.Defaults()
	return m
}

func (m *Model) Defaults() {
	m.MaxIters = 25
	m.Tol = 1e-8
}

// Fit regresses the named outcome column on the named term columns
// (plus an intercept), using the table's current index view.
// All term columns must be float columns.
func (m *Model) Fit(dt *table.Table, outcome string, terms []string) (*Result, error) {
	y, err := dt.Floats(outcome)
	if err != nil {
		return nil, err
	}
	n := len(y)
	p := len(terms) + 1
	x := mat.NewDense(n, p, nil)
	names := make([]string, p)
	names[0] = "const"
	for i := 0; i < n; i++ {
		x.Set(i, 0, 1)
	}
	for j, tm := range terms {
		vals, err := dt.Floats(tm)
		if err != nil {
			return nil, err
		}
		names[j+1] = tm
		for i := 0; i < n; i++ {
			x.Set(i, j+1, vals[i])
		}
	}
	return m.fit(x, y, names)
}

// FitCategorical regresses the named outcome column on a dummy encoding of
// the distinct values of one predictor column, with the smallest value as
// the reference level. This is the saturated-in-the-predictor reference
// model used for diagnostic mean predictions.
func (m *Model) FitCategorical(dt *table.Table, outcome, predictor string) (*Result, error) {
	y, err := dt.Floats(outcome)
	if err != nil {
		return nil, err
	}
	pv, err := dt.Floats(predictor)
	if err != nil {
		return nil, err
	}
	levels := distinctSorted(pv)
	n := len(y)
	p := len(levels) // intercept + one dummy per non-reference level
	x := mat.NewDense(n, p, nil)
	names := make([]string, p)
	names[0] = "const"
	for i := 0; i < n; i++ {
		x.Set(i, 0, 1)
	}
	for j, lv := range levels[1:] {
		names[j+1] = fmt.Sprintf("C(%s)[%g]", predictor, lv)
		for i := 0; i < n; i++ {
			if pv[i] == lv {
				x.Set(i, j+1, 1)
			}
		}
	}
	return m.fit(x, y, names)
}

func distinctSorted(vals []float64) []float64 {
	lv := make([]float64, 0, len(vals))
	seen := make(map[float64]bool, len(vals))
	for _, v := range vals {
		if !seen[v] {
			seen[v] = true
			lv = append(lv, v)
		}
	}
	sort.Float64s(lv)
	return lv
}

// fit runs IRLS on the given design matrix and outcome values.
func (m *Model) fit(x *mat.Dense, y []float64, names []string) (*Result, error) {
	n, p := x.Dims()
	if n == 0 {
		return nil, fmt.Errorf("glm: no observations to fit")
	}
	if n < p {
		return nil, fmt.Errorf("glm: %d observations for %d parameters", n, p)
	}

	mu := make([]float64, n)
	eta := make([]float64, n)
	for i, yi := range y {
		mu[i] = m.startMu(yi)
		eta[i] = m.Link.apply(mu[i])
	}

	beta := make([]float64, p)
	w := make([]float64, n)
	z := make([]float64, n)
	xw := mat.NewDense(n, p, nil)
	zw := mat.NewVecDense(n, nil)
	var qr mat.QR
	bv := mat.NewDense(p, 1, nil)

	dev := m.deviance(y, mu)
	converged := false
	iters := 0
	for itr := 0; itr < m.MaxIters; itr++ {
		iters = itr + 1
		for i := range y {
			d := m.Link.deriv(mu[i])
			v := m.Family.variance(mu[i])
			w[i] = 1 / (v * d * d)
			z[i] = eta[i] + (y[i]-mu[i])*d
			sw := math.Sqrt(w[i])
			for j := 0; j < p; j++ {
				xw.Set(i, j, sw*x.At(i, j))
			}
			zw.SetVec(i, sw*z[i])
		}
		qr.Factorize(xw)
		if err := qr.SolveTo(bv, false, zw); err != nil {
			return nil, fmt.Errorf("glm: singular design matrix: %w", err)
		}
		for j := 0; j < p; j++ {
			beta[j] = bv.At(j, 0)
		}
		for i := range y {
			e := 0.0
			for j := 0; j < p; j++ {
				e += beta[j] * x.At(i, j)
			}
			eta[i] = e
			mu[i] = m.Link.inverse(e)
		}
		devNew := m.deviance(y, mu)
		if math.Abs(devNew-dev)/(math.Abs(devNew)+0.1) < m.Tol {
			dev = devNew
			converged = true
			break
		}
		dev = devNew
	}

	res := &Result{
		Family:     m.Family,
		Link:       m.Link,
		Names:      names,
		Coef:       beta,
		N:          n,
		Iterations: iters,
		Converged:  converged,
		Deviance:   dev,
	}
	if err := res.finish(m, x, y, mu, w); err != nil {
		return nil, err
	}
	if !converged {
		return res, fmt.Errorf("glm: IRLS did not converge in %d iterations", m.MaxIters)
	}
	return res, nil
}

// startMu returns the starting mean value for one observation.
func (m *Model) startMu(y float64) float64 {
	switch m.Family {
	case Binomial:
		return (y + 0.5) / 2
	case Poisson:
		return y + 0.1
	default:
		return y
	}
}

// deviance returns the model deviance for outcome y and fitted means mu.
func (m *Model) deviance(y, mu []float64) float64 {
	dev := 0.0
	switch m.Family {
	case Binomial:
		for i, yi := range y {
			mui := clamp(mu[i], muEps, 1-muEps)
			if yi > 0 {
				dev += yi * math.Log(yi/mui)
			}
			if yi < 1 {
				dev += (1 - yi) * math.Log((1-yi)/(1-mui))
			}
		}
		dev *= 2
	case Poisson:
		for i, yi := range y {
			mui := math.Max(mu[i], muEps)
			if yi > 0 {
				dev += yi*math.Log(yi/mui) - (yi - mui)
			} else {
				dev += mui
			}
		}
		dev *= 2
	default:
		for i, yi := range y {
			r := yi - mu[i]
			dev += r * r
		}
	}
	return dev
}

// logLik returns the model log-likelihood for outcome y and fitted means mu.
func (m *Model) logLik(y, mu []float64) float64 {
	n := float64(len(y))
	ll := 0.0
	switch m.Family {
	case Binomial:
		for i, yi := range y {
			mui := clamp(mu[i], muEps, 1-muEps)
			ll += yi*math.Log(mui) + (1-yi)*math.Log(1-mui)
		}
	case Poisson:
		for i, yi := range y {
			mui := math.Max(mu[i], muEps)
			lg, _ := math.Lgamma(yi + 1)
			ll += yi*math.Log(mui) - mui - lg
		}
	default:
		rss := m.deviance(y, mu)
		scale := rss / n
		ll = -n / 2 * (math.Log(2*math.Pi*scale) + 1)
	}
	return ll
}
