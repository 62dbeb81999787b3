// Package dist implements log-densities, distribution functions and
// quantiles for the families used by the samplers and the credible set
// estimators. Only the families needed by the models are supported.
package dist

import (
	"math"

	"github.com/gonum/mathext"
)

// LnBeta returns log of the Beta function.
func LnBeta(p, q float64) float64 {
	lgp, _ := math.Lgamma(p)
	lgq, _ := math.Lgamma(q)
	lgpq, _ := math.Lgamma(p + q)
	return lgp + lgq - lgpq
}

// BetaLogPDF returns the log density of the beta distribution with
// shape parameters a and b. The log density is -Inf outside of (0, 1).
func BetaLogPDF(x, a, b float64) float64 {
	if a <= 0 || b <= 0 {
		panic("a and b of beta distribution must be > 0")
	}
	if x <= 0 || x >= 1 {
		return math.Inf(-1)
	}
	return (a-1)*math.Log(x) + (b-1)*math.Log(1-x) - LnBeta(a, b)
}

// BetaPDF returns the density of the beta distribution.
func BetaPDF(x, a, b float64) float64 {
	return math.Exp(BetaLogPDF(x, a, b))
}

/*

CDFBeta returns distribution function of the standard form of the beta
distribution, that is, the incomplete beta ratio I_x(p,q).

*/
func CDFBeta(x, p, q float64) float64 {
	if x <= 0 {
		return 0
	}
	if x >= 1 {
		return 1
	}
	return mathext.RegIncBeta(p, q, x)
}

// QuantileBeta calculates the quantile of the beta distribution.
func QuantileBeta(prob, p, q float64) float64 {
	return mathext.InvRegIncBeta(p, q, prob)
}

// GammaLogPDF returns the log density of the gamma distribution with
// a given shape and rate. The log density is -Inf for negative values.
func GammaLogPDF(x, shape, rate float64) float64 {
	if shape <= 0 || rate <= 0 {
		panic("shape and rate of gamma distribution must be > 0")
	}
	if x <= 0 {
		return math.Inf(-1)
	}
	g, _ := math.Lgamma(shape)
	return shape*math.Log(rate) + (shape-1)*math.Log(x) - rate*x - g
}

/*

IncompleteGamma returns the incomplete gamma ratio I(x,alpha) where x
is the upper limit of the integration and alpha is the shape
parameter.

*/
func IncompleteGamma(x, alpha float64) float64 {
	return mathext.GammaInc(alpha, x)
}

// CDFGamma returns the distribution function of the gamma distribution
// with a given shape and rate.
func CDFGamma(x, shape, rate float64) float64 {
	if x <= 0 {
		return 0
	}
	return IncompleteGamma(x*rate, shape)
}

// QuantileGamma returns the quantile of the gamma distribution. The
// quantile is computed by bisecting the regularized incomplete gamma
// ratio; the bracket is expanded geometrically first.
func QuantileGamma(prob, shape, rate float64) float64 {
	if prob <= 0 {
		return 0
	}
	if prob >= 1 {
		return math.Inf(+1)
	}
	lo, hi := 0.0, shape/rate+1
	for CDFGamma(hi, shape, rate) < prob {
		hi *= 2
	}
	for i := 0; i < 200 && hi-lo > 1e-12*(1+hi); i++ {
		mid := (lo + hi) / 2
		if CDFGamma(mid, shape, rate) < prob {
			lo = mid
		} else {
			hi = mid
		}
	}
	return (lo + hi) / 2
}

// NormalLogPDF returns the log density of the normal distribution with
// a given mean and standard deviation.
func NormalLogPDF(x, mean, sd float64) float64 {
	if sd <= 0 {
		panic("sd of normal distribution must be > 0")
	}
	d := (x - mean) / sd
	return -0.5*d*d - math.Log(sd) - 0.5*math.Log(2*math.Pi)
}

// QuantileNormal returns quantile for the standard normal
// distribution.
func QuantileNormal(prob float64) float64 {
	return mathext.NormalQuantile(prob)
}

// InvGammaLogPDF returns the log density of the inverse gamma
// distribution with a given shape and rate. The log density is -Inf
// for negative values.
func InvGammaLogPDF(x, shape, rate float64) float64 {
	if shape <= 0 || rate <= 0 {
		panic("shape and rate of inverse gamma distribution must be > 0")
	}
	if x <= 0 {
		return math.Inf(-1)
	}
	g, _ := math.Lgamma(shape)
	return shape*math.Log(rate) - (shape+1)*math.Log(x) - rate/x - g
}
