package conjugate

import (
	"math"
	"testing"
)

const smallDiff = 1e-9

func appreq(a, b float64) bool {
	return math.Abs(a-b) <= smallDiff
}

func TestBetaBinomial(tst *testing.T) {
	prior := BetaParams{A: 2, B: 3}
	post := BetaBinomial(prior, 7, 10)
	if post.A != 9 || post.B != 6 {
		tst.Errorf("Incorrect posterior: %+v", post)
	}
	// evidence is absorbed monotonically
	if post.A <= prior.A || post.B <= prior.B {
		tst.Error("Posterior parameters should grow with mixed evidence")
	}
	// no successes leave A unchanged
	post = BetaBinomial(prior, 0, 5)
	if post.A != prior.A || post.B != prior.B+5 {
		tst.Errorf("Incorrect posterior for zero successes: %+v", post)
	}
}

func TestBetaBinomialPanics(tst *testing.T) {
	defer func() {
		if recover() == nil {
			tst.Error("Expected panic on invalid counts")
		}
	}()
	BetaBinomial(BetaParams{A: 1, B: 1}, 7, 5)
}

func TestDirichletMultinomial(tst *testing.T) {
	gamma := []float64{1, 2, 0.5}
	counts := []int{3, 0, 4}
	post := DirichletMultinomial(gamma, counts)
	want := []float64{4, 2, 4.5}
	for j := range want {
		if !appreq(post[j], want[j]) {
			tst.Errorf("Incorrect posterior concentration: %v", post)
		}
	}
	// inputs must stay untouched
	if gamma[0] != 1 || gamma[1] != 2 || gamma[2] != 0.5 {
		tst.Error("Prior concentration was mutated")
	}
}

func TestNormalInvGamma(tst *testing.T) {
	prior := NormalInvGammaParams{Delta: 0, Lambda: 1, Tau: 1, Beta: 1}
	// three observations 1, 2, 3: mean 2, ssd 2
	post := NormalInvGamma(prior, 3, 2, 2)
	if !appreq(post.Lambda, 4) || !appreq(post.Delta, 1.5) ||
		!appreq(post.Tau, 2.5) || !appreq(post.Beta, 3.5) {
		tst.Errorf("Incorrect posterior: %+v", post)
	}
	if !post.Valid() {
		tst.Error("Posterior should be valid")
	}
}

func TestNormalInvGammaEmpty(tst *testing.T) {
	prior := NormalInvGammaParams{Delta: -1.5, Lambda: 0.1, Tau: 2, Beta: 0.5}
	post := NormalInvGamma(prior, 0, 0, 0)
	if post != prior {
		tst.Errorf("Empty component should keep the prior, got %+v", post)
	}
}
