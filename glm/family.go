// Copyright (c) 2026, The zEpid Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package glm

import "math"

// Family is the error distribution family of a generalized linear model.
type Family int

const (
	// Binomial is the binomial family, for binary (0/1) outcomes.
	Binomial Family = iota

	// Gaussian is the normal family, for continuous outcomes.
	Gaussian

	// Poisson is the Poisson family, for count outcomes.
	Poisson
)

var familyNames = map[Family]string{
	Binomial: "Binomial",
	Gaussian: "Gaussian",
	Poisson:  "Poisson",
}

// String returns the string representation of the family.
func (f Family) String() string {
	if nm, ok := familyNames[f]; ok {
		return nm
	}
	return "unknown"
}

// variance returns the family variance function evaluated at mean mu.
func (f Family) variance(mu float64) float64 {
	switch f {
	case Binomial:
		return mu * (1 - mu)
	case Poisson:
		return mu
	default:
		return 1
	}
}

// Link is the link function mapping the mean of the outcome to the
// linear predictor.
type Link int

const (
	// Logit is the log-odds link, canonical for [Binomial].
	Logit Link = iota

	// Identity is the identity link, canonical for [Gaussian].
	Identity

	// Log is the natural log link, canonical for [Poisson].
	Log
)

var linkNames = map[Link]string{
	Logit:    "Logit",
	Identity: "Identity",
	Log:      "Log",
}

// String returns the string representation of the link.
func (l Link) String() string {
	if nm, ok := linkNames[l]; ok {
		return nm
	}
	return "unknown"
}

const muEps = 1e-10

// apply maps a mean value to the linear predictor scale.
func (l Link) apply(mu float64) float64 {
	switch l {
	case Logit:
		mu = clamp(mu, muEps, 1-muEps)
		return math.Log(mu / (1 - mu))
	case Log:
		return math.Log(math.Max(mu, muEps))
	default:
		return mu
	}
}

// inverse maps a linear predictor value back to the mean scale.
func (l Link) inverse(eta float64) float64 {
	switch l {
	case Logit:
		return 1 / (1 + math.Exp(-eta))
	case Log:
		return math.Exp(eta)
	default:
		return eta
	}
}

// deriv is the derivative of the link with respect to the mean.
func (l Link) deriv(mu float64) float64 {
	switch l {
	case Logit:
		mu = clamp(mu, muEps, 1-muEps)
		return 1 / (mu * (1 - mu))
	case Log:
		return 1 / math.Max(mu, muEps)
	default:
		return 1
	}
}

func clamp(v, lo, hi float64) float64 {
	return math.Min(math.Max(v, lo), hi)
}

// Preset is an enumerated link and distribution combination, standing in
// for the common model specifications so that callers do not need to
// assemble a family and link by hand.
type Preset int

const (
	// BinomialLogit is logistic regression, the default for binary outcomes.
	BinomialLogit Preset = iota

	// GaussianIdentity is ordinary linear regression.
	GaussianIdentity

	// PoissonLog is Poisson regression with a log link.
	PoissonLog

	// BinomialLog is a log-binomial model, used for risk ratios.
	BinomialLog
)

// FamilyLink returns the family and link for the preset.
func (p Preset) FamilyLink() (Family, Link) {
	switch p {
	case GaussianIdentity:
		return Gaussian, Identity
	case PoissonLog:
		return Poisson, Log
	case BinomialLog:
		return Binomial, Log
	default:
		return Binomial, Logit
	}
}

// String returns the string representation of the preset.
func (p Preset) String() string {
	f, l := p.FamilyLink()
	return f.String() + "(" + l.String() + ")"
}
