package dist

import (
	"math"
	"testing"
)

const smallDiff = 1e-6

/*** Tests if a and b are approximately equal ***/
func appreq(a, b float64) bool {
	return math.Abs(a-b) <= smallDiff
}

func TestLnBeta(tst *testing.T) {
	// B(2, 3) = 1/12
	if !appreq(LnBeta(2, 3), math.Log(1.0/12)) {
		tst.Error("Incorrect LnBeta(2, 3):", LnBeta(2, 3))
	}
	if !appreq(LnBeta(3.5, 1.25), LnBeta(1.25, 3.5)) {
		tst.Error("LnBeta is not symmetric")
	}
}

func TestBetaPDF(tst *testing.T) {
	if !math.IsInf(BetaLogPDF(-0.1, 2, 2), -1) || !math.IsInf(BetaLogPDF(1.5, 2, 2), -1) {
		tst.Error("Beta log density outside of (0, 1) should be -Inf")
	}
	// Beta(2, 2) density at 1/2 is 3/2
	if !appreq(BetaPDF(0.5, 2, 2), 1.5) {
		tst.Error("Incorrect beta density:", BetaPDF(0.5, 2, 2))
	}
}

func TestBetaQuantile(tst *testing.T) {
	if !appreq(CDFBeta(0.5, 2, 2), 0.5) {
		tst.Error("Beta(2,2) median should be 1/2")
	}
	for _, p := range []float64{0.025, 0.25, 0.5, 0.9, 0.975} {
		q := QuantileBeta(p, 3.5, 1.25)
		if !appreq(CDFBeta(q, 3.5, 1.25), p) {
			tst.Errorf("CDF(Quantile(%v)) = %v", p, CDFBeta(q, 3.5, 1.25))
		}
	}
}

func TestGammaQuantile(tst *testing.T) {
	// Gamma(1, 1) is the unit exponential, median ln 2.
	if math.Abs(QuantileGamma(0.5, 1, 1)-math.Ln2) > 1e-9 {
		tst.Error("Incorrect exponential median:", QuantileGamma(0.5, 1, 1))
	}
	for _, p := range []float64{0.025, 0.5, 0.975} {
		q := QuantileGamma(p, 4.3, 6.2)
		if math.Abs(CDFGamma(q, 4.3, 6.2)-p) > 1e-9 {
			tst.Errorf("CDF(Quantile(%v)) = %v", p, CDFGamma(q, 4.3, 6.2))
		}
	}
	if QuantileGamma(0, 2, 2) != 0 || !math.IsInf(QuantileGamma(1, 2, 2), +1) {
		tst.Error("Incorrect gamma quantile boundaries")
	}
}

func TestGammaLogPDF(tst *testing.T) {
	if !math.IsInf(GammaLogPDF(-1, 2, 2), -1) {
		tst.Error("Gamma log density of a negative value should be -Inf")
	}
	// unit exponential at 1
	if !appreq(GammaLogPDF(1, 1, 1), -1) {
		tst.Error("Incorrect gamma log density:", GammaLogPDF(1, 1, 1))
	}
}

func TestNormal(tst *testing.T) {
	if !appreq(NormalLogPDF(0, 0, 1), -0.5*math.Log(2*math.Pi)) {
		tst.Error("Incorrect standard normal log density at 0")
	}
	if math.Abs(QuantileNormal(0.975)-1.959964) > 1e-5 {
		tst.Error("Incorrect normal quantile:", QuantileNormal(0.975))
	}
}

func TestInvGammaLogPDF(tst *testing.T) {
	if !math.IsInf(InvGammaLogPDF(-1, 2, 2), -1) {
		tst.Error("Inverse gamma log density of a negative value should be -Inf")
	}
	// InvGamma(1, 1) density at 1 is e^-1
	if !appreq(InvGammaLogPDF(1, 1, 1), -1) {
		tst.Error("Incorrect inverse gamma log density:", InvGammaLogPDF(1, 1, 1))
	}
}
