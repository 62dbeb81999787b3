package mcmc

import (
	"math"
	"math/rand/v2"
)

// Proposal generates a candidate state from the current one and knows
// the proposal part of the log acceptance ratio.
type Proposal interface {
	// Propose draws a candidate given the current state.
	Propose(rng *rand.Rand, x float64) float64
	// LogRatio returns log g(x|y) - log g(y|x). It is zero for
	// symmetric kernels.
	LogRatio(x, y float64) float64
}

// IndependentProposal draws candidates from a fixed density g,
// ignoring the current state. LogDensity must assign positive density
// everywhere the target does, otherwise convergence is not guaranteed.
type IndependentProposal struct {
	Draw       func(rng *rand.Rand) float64
	LogDensity func(y float64) float64
}

// Propose draws from g.
func (p IndependentProposal) Propose(rng *rand.Rand, x float64) float64 {
	return p.Draw(rng)
}

// LogRatio reduces to log g(x) - log g(y) since g does not depend on
// the current state.
func (p IndependentProposal) LogRatio(x, y float64) float64 {
	return p.LogDensity(x) - p.LogDensity(y)
}

// WalkProposal perturbs the current state. LogDensity may be left nil
// for symmetric kernels, for which the proposal term of the acceptance
// ratio vanishes.
type WalkProposal struct {
	Draw       func(rng *rand.Rand, x float64) float64
	LogDensity func(y, x float64) float64
}

// Propose draws a candidate around x.
func (p WalkProposal) Propose(rng *rand.Rand, x float64) float64 {
	return p.Draw(rng, x)
}

// LogRatio returns the proposal correction, zero for symmetric
// kernels.
func (p WalkProposal) LogRatio(x, y float64) float64 {
	if p.LogDensity == nil {
		return 0
	}
	return p.LogDensity(x, y) - p.LogDensity(y, x)
}

// NormalWalk returns a symmetric normal random-walk proposal with a
// fixed spread.
func NormalWalk(sd float64) WalkProposal {
	if sd <= 0 {
		panic("sd should be > 0")
	}
	return WalkProposal{
		Draw: func(rng *rand.Rand, x float64) float64 {
			return x + rng.NormFloat64()*sd
		},
	}
}

// UniformWalk returns a symmetric uniform random-walk proposal with a
// fixed width.
func UniformWalk(width float64) WalkProposal {
	if width <= 0 {
		panic("width should be > 0")
	}
	return WalkProposal{
		Draw: func(rng *rand.Rand, x float64) float64 {
			return x + rng.Float64()*width - width/2
		},
	}
}

// Accept decides a Metropolis-Hastings move given the log acceptance
// ratio. The uniform variate is only consumed for undecided moves.
func Accept(rng *rand.Rand, logRho float64) bool {
	if logRho >= 0 {
		return true
	}
	if math.IsInf(logRho, -1) {
		return false
	}
	return math.Log(rng.Float64()) < logRho
}
