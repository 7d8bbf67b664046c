// Copyright (c) 2026, The zEpid Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package lowess implements LOESS: locally weighted scatterplot smoothing.
// Each point's smoothed value comes from a weighted linear regression over
// its nearest neighbors, with tricube distance weights and optional
// robustifying iterations that downweight outlying residuals.
package lowess

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// DefaultIters is the default number of robustifying iterations.
const DefaultIters = 3

// Smooth computes the LOESS curve for the given points. frac is the
// fraction of observations used for each local fit (must be in (0, 1]),
// and iters is the number of robustifying iterations (0 for a plain fit,
// [DefaultIters] for the usual robust fit). The returned xs are sorted
// ascending with one fitted ys value per input point.
func Smooth(x, y []float64, frac float64, iters int) (xs, ys []float64, err error) {
	n := len(x)
	if n == 0 {
		return nil, nil, fmt.Errorf("lowess: no data points")
	}
	if len(y) != n {
		return nil, nil, fmt.Errorf("lowess: x has %d points but y has %d", n, len(y))
	}
	if frac <= 0 || frac > 1 {
		return nil, nil, fmt.Errorf("lowess: frac %g out of range (0, 1]", frac)
	}

	ord := make([]int, n)
	for i := range ord {
		ord[i] = i
	}
	sort.SliceStable(ord, func(i, j int) bool { return x[ord[i]] < x[ord[j]] })
	xs = make([]float64, n)
	yv := make([]float64, n)
	for i, o := range ord {
		xs[i] = x[o]
		yv[i] = y[o]
	}

	k := int(math.Ceil(frac * float64(n)))
	if k < 2 {
		k = 2
	}
	if k > n {
		k = n
	}

	ys = make([]float64, n)
	robust := make([]float64, n)
	for i := range robust {
		robust[i] = 1
	}
	w := make([]float64, n)
	for itr := 0; itr <= iters; itr++ {
		for i := range xs {
			lo, hi := window(xs, i, k)
			h := math.Max(xs[hi-1]-xs[i], xs[i]-xs[lo])
			for j := lo; j < hi; j++ {
				w[j] = tricube(xs[j]-xs[i], h) * robust[j]
			}
			ys[i] = localFit(xs[lo:hi], yv[lo:hi], w[lo:hi], xs[i])
		}
		if itr == iters {
			break
		}
		// bisquare robustness weights from the residuals
		res := make([]float64, n)
		for i := range res {
			res[i] = math.Abs(yv[i] - ys[i])
		}
		s := 6 * median(res)
		for i := range robust {
			if s <= 0 {
				robust[i] = 1
				continue
			}
			u := res[i] / s
			if u >= 1 {
				robust[i] = 0
			} else {
				robust[i] = (1 - u*u) * (1 - u*u)
			}
		}
	}
	return xs, ys, nil
}

// window returns the half-open index range of the k nearest neighbors of
// point i in the sorted xs.
func window(xs []float64, i, k int) (lo, hi int) {
	lo, hi = i, i+1
	for hi-lo < k {
		switch {
		case lo == 0:
			hi++
		case hi == len(xs):
			lo--
		case xs[i]-xs[lo-1] <= xs[hi]-xs[i]:
			lo--
		default:
			hi++
		}
	}
	return lo, hi
}

// localFit evaluates the weighted linear fit of (xw, yw) at x0.
// Falls back to the weighted mean when the window is degenerate in x.
func localFit(xw, yw, w []float64, x0 float64) float64 {
	wsum := 0.0
	for _, wi := range w {
		wsum += wi
	}
	if wsum <= 0 {
		return stat.Mean(yw, nil)
	}
	if xw[0] == xw[len(xw)-1] {
		return stat.Mean(yw, w)
	}
	alpha, beta := stat.LinearRegression(xw, yw, w, false)
	if math.IsNaN(alpha) || math.IsNaN(beta) {
		return stat.Mean(yw, w)
	}
	return alpha + beta*x0
}

func tricube(d, h float64) float64 {
	if h <= 0 {
		return 1
	}
	u := math.Abs(d) / h
	if u >= 1 {
		return 0
	}
	c := 1 - u*u*u
	return c * c * c
}

func median(vals []float64) float64 {
	s := append([]float64(nil), vals...)
	sort.Float64s(s)
	n := len(s)
	if n%2 == 1 {
		return s[n/2]
	}
	return (s[n/2-1] + s[n/2]) / 2
}
