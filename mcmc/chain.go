// Package mcmc implements chains of posterior draws and a generic
// Metropolis-Hastings sampler over a scalar target density.
package mcmc

import (
	"fmt"
	"io"
	"strconv"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/stat"
)

// Chain is an iteration-indexed record of sampler draws. It is grown
// by the sampler which produced it and is read-only afterwards. The
// storage is allocated once at creation, there is no growth during
// sampling.
type Chain struct {
	names []string
	buf   []float64
	arity int
	rows  int
}

// NewChain creates a chain for a given number of rows. Column names
// give the chain its arity.
func NewChain(names []string, rows int) *Chain {
	if len(names) == 0 || rows <= 0 {
		panic("chain needs at least one column and one row")
	}
	return &Chain{
		names: names,
		buf:   make([]float64, 0, rows*len(names)),
		arity: len(names),
	}
}

// Append records one iteration's state.
func (c *Chain) Append(state ...float64) {
	if len(state) != c.arity {
		panic(fmt.Sprintf("state arity mismatch: %d vs %d", len(state), c.arity))
	}
	c.buf = append(c.buf, state...)
	c.rows++
}

// Len returns the number of recorded iterations.
func (c *Chain) Len() int {
	return c.rows
}

// Arity returns the number of tracked variables.
func (c *Chain) Arity() int {
	return c.arity
}

// Names returns the column names.
func (c *Chain) Names() []string {
	return c.names
}

// Row returns the state at iteration i. The returned slice points into
// the chain storage and must not be modified.
func (c *Chain) Row(i int) []float64 {
	return c.buf[i*c.arity : (i+1)*c.arity]
}

// Marginal returns a copy of column j, suitable for interval
// estimation on the marginal sample.
func (c *Chain) Marginal(j int) []float64 {
	s := make([]float64, c.rows)
	for i := 0; i < c.rows; i++ {
		s[i] = c.buf[i*c.arity+j]
	}
	return s
}

// Mean returns the column mean after discarding burnin rows. This is
// the Bayes estimator under squared-error loss.
func (c *Chain) Mean(j, burnin int) (float64, error) {
	if burnin < 0 || burnin >= c.rows {
		return 0, errors.Errorf("burnin %d out of range for chain of length %d", burnin, c.rows)
	}
	m := c.Marginal(j)
	return stat.Mean(m[burnin:], nil), nil
}

// Means returns all column means after discarding burnin rows.
func (c *Chain) Means(burnin int) ([]float64, error) {
	v := make([]float64, c.arity)
	for j := 0; j < c.arity; j++ {
		m, err := c.Mean(j, burnin)
		if err != nil {
			return nil, err
		}
		v[j] = m
	}
	return v, nil
}

// WriteTSV writes the trajectory with a header line.
func (c *Chain) WriteTSV(w io.Writer) error {
	if _, err := fmt.Fprintf(w, "iteration\t%s\n", c.NamesString()); err != nil {
		return err
	}
	for i := 0; i < c.rows; i++ {
		if _, err := fmt.Fprintf(w, "%d\t%s\n", i, c.RowString(i)); err != nil {
			return err
		}
	}
	return nil
}

// NamesString returns tab-separated column names.
func (c *Chain) NamesString() (s string) {
	for i, n := range c.names {
		if i != 0 {
			s += "\t"
		}
		s += n
	}
	return
}

// RowString returns tab-separated values of iteration i.
func (c *Chain) RowString(i int) (s string) {
	row := c.Row(i)
	for j, v := range row {
		if j != 0 {
			s += "\t"
		}
		s += strconv.FormatFloat(v, 'f', 6, 64)
	}
	return
}
