// Package conjugate implements closed-form posterior updates for the
// conjugate exponential-family pairs used by the Gibbs samplers. All
// updates are pure functions: they derive a fresh posterior value from
// the prior and sufficient statistics, inputs are never mutated.
package conjugate

import "fmt"

// BetaParams holds the shape parameters of a beta distribution. Both
// must stay strictly positive.
type BetaParams struct {
	A, B float64
}

// Valid reports whether the parameters are strictly positive.
func (p BetaParams) Valid() bool {
	return p.A > 0 && p.B > 0
}

// BetaBinomial returns the posterior beta parameters given the number
// of successes and trials.
func BetaBinomial(prior BetaParams, successes, trials int) BetaParams {
	if !prior.Valid() {
		panic(fmt.Sprintf("invalid beta prior %+v", prior))
	}
	if successes < 0 || trials < successes {
		panic(fmt.Sprintf("invalid counts: %d successes of %d trials", successes, trials))
	}
	return BetaParams{
		A: prior.A + float64(successes),
		B: prior.B + float64(trials-successes),
	}
}

// DirichletMultinomial returns the posterior concentration vector
// given per-category counts. The returned slice is fresh.
func DirichletMultinomial(gamma []float64, counts []int) []float64 {
	if len(gamma) != len(counts) {
		panic("concentration and count vectors disagree in length")
	}
	post := make([]float64, len(gamma))
	for j, g := range gamma {
		if g <= 0 {
			panic("concentration parameters must be > 0")
		}
		if counts[j] < 0 {
			panic("negative category count")
		}
		post[j] = g + float64(counts[j])
	}
	return post
}

// NormalInvGammaParams holds the hyperparameters of a
// normal-inverse-gamma distribution: location Delta, precision scale
// Lambda, shape Tau and rate Beta. Lambda, Tau and Beta must stay
// strictly positive.
type NormalInvGammaParams struct {
	Delta, Lambda, Tau, Beta float64
}

// Valid reports whether the positivity-constrained fields are strictly
// positive.
func (p NormalInvGammaParams) Valid() bool {
	return p.Lambda > 0 && p.Tau > 0 && p.Beta > 0
}

// NormalInvGamma returns the posterior normal-inverse-gamma parameters
// given the count, sample mean and the sum of squared deviations of
// the allocated observations. With n == 0 the prior is returned
// unchanged, which keeps empty mixture components well defined.
func NormalInvGamma(prior NormalInvGammaParams, n int, mean, ssd float64) NormalInvGammaParams {
	if !prior.Valid() {
		panic(fmt.Sprintf("invalid normal-inverse-gamma prior %+v", prior))
	}
	if n < 0 {
		panic("negative observation count")
	}
	if n == 0 {
		return prior
	}
	nf := float64(n)
	lambda := prior.Lambda + nf
	d := prior.Delta - mean
	return NormalInvGammaParams{
		Delta:  (prior.Lambda*prior.Delta + nf*mean) / lambda,
		Lambda: lambda,
		Tau:    prior.Tau + nf/2,
		Beta:   prior.Beta + ssd/2 + prior.Lambda*nf/(2*lambda)*d*d,
	}
}
