// Package credible implements posterior credible interval estimators.
// All estimators post-process a finished chain: either its pooled
// marginal sample, its per-iteration posterior parameters, or both.
package credible

import (
	"sort"

	"github.com/op/go-logging"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/stat"

	"github.com/baymc/baymc/conjugate"
	"github.com/baymc/baymc/dist"
)

// log is the global logging variable.
var log = logging.MustGetLogger("credible")

// Interval is a credible interval estimate. Reliable is false when the
// producing optimization did not converge; the interval is still
// usable but should be cross-checked against the order-statistic
// estimate.
type Interval struct {
	Lower, Upper float64
	Reliable     bool
}

// Width returns the interval width.
func (iv Interval) Width() float64 {
	return iv.Upper - iv.Lower
}

func checkLevel(alpha float64) error {
	if alpha <= 0 || alpha >= 1 {
		return errors.Errorf("confidence level must be in (0, 1), got 1-alpha for alpha=%v", alpha)
	}
	return nil
}

// Naive averages the closed-form equal-tail quantiles of every
// posterior replicate.
func Naive(params []conjugate.BetaParams, alpha float64) (Interval, error) {
	if err := checkLevel(alpha); err != nil {
		return Interval{}, err
	}
	if len(params) == 0 {
		return Interval{}, errors.New("no posterior replicates")
	}
	var lo, hi float64
	for _, p := range params {
		if !p.Valid() {
			return Interval{}, errors.Errorf("invalid posterior replicate %+v", p)
		}
		lo += dist.QuantileBeta(alpha/2, p.A, p.B)
		hi += dist.QuantileBeta(1-alpha/2, p.A, p.B)
	}
	n := float64(len(params))
	return Interval{Lower: lo / n, Upper: hi / n, Reliable: true}, nil
}

// OrderStatistic takes the empirical alpha/2 and 1-alpha/2 order
// statistics of the pooled marginal sample.
func OrderStatistic(sample []float64, alpha float64) (Interval, error) {
	if err := checkLevel(alpha); err != nil {
		return Interval{}, err
	}
	if len(sample) == 0 {
		return Interval{}, errors.New("empty sample")
	}
	xs := append([]float64(nil), sample...)
	sort.Float64s(xs)
	return Interval{
		Lower:    stat.Quantile(alpha/2, stat.Empirical, xs, nil),
		Upper:    stat.Quantile(1-alpha/2, stat.Empirical, xs, nil),
		Reliable: true,
	}, nil
}

// WeightedAverage starts from the order-statistic bounds and replaces
// each with the density-weighted average of the per-replicate naive
// bounds. The weight of a replicate bound is the beta density of that
// bound at the pooled posterior parameters.
func WeightedAverage(sample []float64, params []conjugate.BetaParams, alpha float64) (Interval, error) {
	iv, err := OrderStatistic(sample, alpha)
	if err != nil {
		return Interval{}, err
	}
	if len(params) == 0 {
		return Interval{}, errors.New("no posterior replicates")
	}
	var pa, pb float64
	for _, p := range params {
		pa += p.A
		pb += p.B
	}
	pa /= float64(len(params))
	pb /= float64(len(params))

	var lo, hi, wloSum, whiSum float64
	for _, p := range params {
		l := dist.QuantileBeta(alpha/2, p.A, p.B)
		u := dist.QuantileBeta(1-alpha/2, p.A, p.B)
		wl := dist.BetaPDF(l, pa, pb)
		wu := dist.BetaPDF(u, pa, pb)
		lo += wl * l
		hi += wu * u
		wloSum += wl
		whiSum += wu
	}
	if wloSum > 0 {
		iv.Lower = lo / wloSum
	}
	if whiSum > 0 {
		iv.Upper = hi / whiSum
	}
	return iv, nil
}

// ChenShao approximates the highest posterior density region: among
// all windows of round(n*(1-alpha)) consecutive sorted points it
// returns the narrowest.
func ChenShao(sample []float64, alpha float64) (Interval, error) {
	if err := checkLevel(alpha); err != nil {
		return Interval{}, err
	}
	n := len(sample)
	if n == 0 {
		return Interval{}, errors.New("empty sample")
	}
	xs := append([]float64(nil), sample...)
	sort.Float64s(xs)

	m := int(float64(n)*(1-alpha) + 0.5)
	if m < 1 {
		m = 1
	}
	if m > n {
		m = n
	}
	best := Interval{Lower: xs[0], Upper: xs[m-1], Reliable: true}
	for i := 1; i+m-1 < n; i++ {
		if w := xs[i+m-1] - xs[i]; w < best.Width() {
			best.Lower, best.Upper = xs[i], xs[i+m-1]
		}
	}
	return best, nil
}
