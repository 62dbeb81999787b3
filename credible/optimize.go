package credible

import (
	"math"

	lbfgsb "github.com/idavydov/go-lbfgsb"
	"github.com/pkg/errors"

	"github.com/baymc/baymc/conjugate"
	"github.com/baymc/baymc/dist"
)

// dH is the step of the central-difference gradient approximation.
const dH = 1e-6

// objective adapts a plain function to the bounded optimizer, with
// numerical gradients.
type objective struct {
	f    func(x []float64) float64
	grad []float64
}

func (o *objective) EvaluateFunction(x []float64) float64 {
	return o.f(x)
}

func (o *objective) EvaluateGradient(x []float64) []float64 {
	if o.grad == nil {
		o.grad = make([]float64, len(x))
	}
	for i := range x {
		v := x[i]
		x[i] = v + dH
		f2 := o.f(x)
		x[i] = v - dH
		f1 := o.f(x)
		x[i] = v
		o.grad[i] = (f2 - f1) / (2 * dH)
	}
	return o.grad
}

// minimizeBox runs the box-constrained minimizer from x0. It returns
// the minimizer position and whether the optimizer converged.
func minimizeBox(f func(x []float64) float64, x0 []float64, bounds [][2]float64) ([]float64, bool) {
	opt := new(lbfgsb.Lbfgsb)
	opt.SetApproximationSize(10)
	opt.SetFTolerance(1e-9)
	opt.SetGTolerance(1e-9)
	opt.SetBounds(bounds)

	min, exitStatus := opt.Minimize(&objective{f: f}, x0)
	log.Debugf("optimizer exit status: %v", exitStatus)
	ok := exitStatus.Code == lbfgsb.SUCCESS || exitStatus.Code == lbfgsb.APPROXIMATE
	if !ok {
		log.Warningf("bounded optimization did not converge: %v", exitStatus)
	}
	return min.X, ok
}

// unitBox is the [0,1]x[0,1] search region of the interval optimizers.
func unitBox() [][2]float64 {
	return [][2]float64{{0, 1}, {0, 1}}
}

// clamp01 keeps an endpoint inside the search box.
func clamp01(x float64) float64 {
	return math.Min(1, math.Max(0, x))
}

// CMDE is the minimum-distance estimator: it searches the unit box for
// the interval whose average posterior coverage across all replicates
// equals the requested level, starting from the order-statistic
// interval of the pooled sample.
func CMDE(sample []float64, params []conjugate.BetaParams, alpha float64) (Interval, error) {
	start, err := OrderStatistic(sample, alpha)
	if err != nil {
		return Interval{}, err
	}
	if len(params) == 0 {
		return Interval{}, errors.New("no posterior replicates")
	}
	target := 1 - alpha
	coverage := func(lo, hi float64) float64 {
		var c float64
		for _, p := range params {
			c += dist.CDFBeta(hi, p.A, p.B) - dist.CDFBeta(lo, p.A, p.B)
		}
		return c / float64(len(params))
	}
	f := func(x []float64) float64 {
		return math.Abs(coverage(x[0], x[1]) - target)
	}

	x0 := []float64{clamp01(start.Lower), clamp01(start.Upper)}
	x, ok := minimizeBox(f, x0, unitBox())
	iv := Interval{Lower: x[0], Upper: x[1], Reliable: ok}
	if iv.Lower > iv.Upper {
		iv.Lower, iv.Upper = iv.Upper, iv.Lower
		iv.Reliable = false
	}
	return iv, nil
}

// AnalyticHPD computes the highest posterior density interval of a
// closed-form beta posterior: equal density at both endpoints and the
// requested coverage, found by bounded minimization of the sum of the
// two deviations.
func AnalyticHPD(params conjugate.BetaParams, alpha float64) (Interval, error) {
	if err := checkLevel(alpha); err != nil {
		return Interval{}, err
	}
	if !params.Valid() {
		return Interval{}, errors.Errorf("invalid posterior parameters %+v", params)
	}
	target := 1 - alpha
	f := func(x []float64) float64 {
		lo, hi := x[0], x[1]
		dd := math.Abs(dist.BetaPDF(lo, params.A, params.B) - dist.BetaPDF(hi, params.A, params.B))
		dc := math.Abs(dist.CDFBeta(hi, params.A, params.B) - dist.CDFBeta(lo, params.A, params.B) - target)
		return dd + dc
	}

	x0 := []float64{
		dist.QuantileBeta(alpha/2, params.A, params.B),
		dist.QuantileBeta(1-alpha/2, params.A, params.B),
	}
	x, ok := minimizeBox(f, x0, unitBox())
	iv := Interval{Lower: x[0], Upper: x[1], Reliable: ok}
	if iv.Lower > iv.Upper {
		iv.Lower, iv.Upper = iv.Upper, iv.Lower
		iv.Reliable = false
	}
	return iv, nil
}
