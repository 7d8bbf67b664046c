// Copyright (c) 2026, The zEpid Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package glm

import (
	"fmt"
	"math"
	"strings"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"
)

// Result contains the results of fitting a generalized linear model:
// coefficients with their standard errors and Wald tests, fit statistics
// including information criteria, and mean predictions with confidence
// limits for the rows the model was fit on.
type Result struct {
	// Family and Link are copied from the fitted model.
	Family Family
	Link   Link

	// Names are the design matrix column names, "const" first.
	Names []string

	// Coef are the fitted coefficients, in [Result.Names] order.
	Coef []float64

	// StdErr are the coefficient standard errors.
	StdErr []float64

	// Z are the Wald z statistics, Coef / StdErr.
	Z []float64

	// P are the two-sided p-values for the Wald tests.
	P []float64

	// LogLik is the model log-likelihood.
	LogLik float64

	// Deviance is the model deviance.
	Deviance float64

	// AIC and BIC are the Akaike and Bayesian information criteria.
	AIC float64
	BIC float64

	// N is the number of observations fit.
	N int

	// Iterations is the number of IRLS iterations performed.
	Iterations int

	// Converged reports whether the fit converged within tolerance.
	Converged bool

	// Fitted are the mean predictions for the fitted rows, in fit order.
	Fitted []float64

	// MeanLower, MeanUpper are 95% confidence limits on the mean
	// predictions, computed on the linear predictor scale and mapped
	// through the inverse link.
	MeanLower []float64
	MeanUpper []float64

	cov *mat.Dense
}

var unitNormal = distuv.Normal{Mu: 0, Sigma: 1}

// finish computes covariance-derived statistics from the final IRLS state.
func (r *Result) finish(m *Model, x *mat.Dense, y, mu, w []float64) error {
	n, p := x.Dims()

	// recompute the weights at the final coefficients
	for i := range mu {
		d := m.Link.deriv(mu[i])
		v := m.Family.variance(mu[i])
		w[i] = 1 / (v * d * d)
	}
	a := mat.NewDense(p, p, nil)
	for j := 0; j < p; j++ {
		for k := j; k < p; k++ {
			s := 0.0
			for i := 0; i < n; i++ {
				s += w[i] * x.At(i, j) * x.At(i, k)
			}
			a.Set(j, k, s)
			a.Set(k, j, s)
		}
	}
	var ainv mat.Dense
	if err := ainv.Inverse(a); err != nil {
		return fmt.Errorf("glm: singular information matrix: %w", err)
	}
	phi := 1.0
	if r.Family == Gaussian && n > p {
		phi = r.Deviance / float64(n-p)
	}
	ainv.Scale(phi, &ainv)
	r.cov = &ainv

	r.StdErr = make([]float64, p)
	r.Z = make([]float64, p)
	r.P = make([]float64, p)
	for j := 0; j < p; j++ {
		r.StdErr[j] = math.Sqrt(ainv.At(j, j))
		r.Z[j] = r.Coef[j] / r.StdErr[j]
		r.P[j] = 2 * (1 - unitNormal.CDF(math.Abs(r.Z[j])))
	}

	r.LogLik = m.logLik(y, mu)
	r.AIC = -2*r.LogLik + 2*float64(p)
	r.BIC = -2*r.LogLik + float64(p)*math.Log(float64(n))

	r.Fitted = make([]float64, n)
	r.MeanLower = make([]float64, n)
	r.MeanUpper = make([]float64, n)
	zq := unitNormal.Quantile(0.975)
	row := make([]float64, p)
	for i := 0; i < n; i++ {
		mat.Row(row, i, x)
		eta, se := r.linearPredictor(row)
		r.Fitted[i] = m.Link.inverse(eta)
		r.MeanLower[i] = m.Link.inverse(eta - zq*se)
		r.MeanUpper[i] = m.Link.inverse(eta + zq*se)
	}
	return nil
}

// linearPredictor returns the linear predictor and its standard error
// for one design matrix row.
func (r *Result) linearPredictor(row []float64) (eta, se float64) {
	p := len(r.Coef)
	for j := 0; j < p; j++ {
		eta += r.Coef[j] * row[j]
	}
	v := 0.0
	for j := 0; j < p; j++ {
		for k := 0; k < p; k++ {
			v += row[j] * r.cov.At(j, k) * row[k]
		}
	}
	return eta, math.Sqrt(v)
}

// Predict returns the mean prediction for the given term values,
// in the same order the model terms were given to Fit (no intercept).
func (r *Result) Predict(terms ...float64) float64 {
	row := append([]float64{1}, terms...)
	eta, _ := r.linearPredictor(row)
	return r.Link.inverse(eta)
}

// PredictCI returns the mean prediction and its confidence limits at the
// given level (e.g. 0.95) for the given term values.
func (r *Result) PredictCI(level float64, terms ...float64) (mean, lower, upper float64) {
	row := append([]float64{1}, terms...)
	eta, se := r.linearPredictor(row)
	zq := unitNormal.Quantile(1 - (1-level)/2)
	return r.Link.inverse(eta), r.Link.inverse(eta - zq*se), r.Link.inverse(eta + zq*se)
}

// Summary returns a human-readable report of the fitted model, including
// the coefficient table and information criteria.
func (r *Result) Summary() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Generalized Linear Model Results\n")
	fmt.Fprintf(&b, "================================================\n")
	fmt.Fprintf(&b, "Family: %-10s Link: %s\n", r.Family, r.Link)
	fmt.Fprintf(&b, "Observations: %d   Iterations: %d   Converged: %v\n", r.N, r.Iterations, r.Converged)
	fmt.Fprintf(&b, "Log-likelihood: %.4f   Deviance: %.4f\n", r.LogLik, r.Deviance)
	fmt.Fprintf(&b, "AIC: %.4f   BIC: %.4f\n", r.AIC, r.BIC)
	fmt.Fprintf(&b, "------------------------------------------------\n")
	fmt.Fprintf(&b, "%-16s %10s %10s %8s %8s\n", "term", "coef", "std err", "z", "P>|z|")
	for j, nm := range r.Names {
		fmt.Fprintf(&b, "%-16s %10.4f %10.4f %8.3f %8.3f\n", nm, r.Coef[j], r.StdErr[j], r.Z[j], r.P[j])
	}
	fmt.Fprintf(&b, "================================================\n")
	return b.String()
}
