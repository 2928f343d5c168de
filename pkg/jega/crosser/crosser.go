// Package crosser implements the Crosser operator family:
// NPointParameterizedBinaryCrosser, per SPEC_FULL.md §4.4, grounded on
// the teacher's crossover operators (algorithms/crossovers.go) adapted
// from floating-point blend crossover to the spec's fixed-precision
// bit-string crossover using pkg/jega/bitmanip.
package crosser

import (
	"fmt"
	"sort"

	"golang.org/x/exp/rand"

	"github.com/evojega/jega/pkg/jega/bitmanip"
	"github.com/evojega/jega/pkg/jega/design"
	"github.com/evojega/jega/pkg/jega/jlog"
	"github.com/evojega/jega/pkg/jega/operator"
	"github.com/evojega/jega/pkg/jega/paramdb"
)

// Crosser consumes a parent group and produces a child group.
type Crosser interface {
	operator.Operator
	Cross(parents *design.Group, rate float64) (*design.Group, error)
}

// NPointParameterizedBinaryCrosser encodes each parent variable to a
// fixed-precision unsigned integer, picks n_cross_points[v] distinct
// split points, alternates bit blocks between the two parents, and
// decodes the result back into two children.
type NPointParameterizedBinaryCrosser struct {
	h   operator.Handle
	log jlog.Logger
	bm  *bitmanip.BitManipulator

	// NumCrossPoints holds the per-variable crossover point count. A
	// single-element slice broadcasts to every variable.
	NumCrossPoints []int

	rnd *rand.Rand
}

// NewNPointParameterizedBinaryCrosser constructs the crosser bound to
// h, with one crossover point per variable by default.
func NewNPointParameterizedBinaryCrosser(h operator.Handle) *NPointParameterizedBinaryCrosser {
	c := &NPointParameterizedBinaryCrosser{
		h:              h,
		log:            h.Logger().ForOperator(string(operator.FamilyCrosser), "n_point_parameterized_binary"),
		bm:             bitmanip.New(h.Target()),
		NumCrossPoints: []int{1},
		rnd:            rand.New(rand.NewSource(1)),
	}
	c.log.OperatorConstructed()
	return c
}

func (c *NPointParameterizedBinaryCrosser) Name() string           { return "n_point_parameterized_binary" }
func (c *NPointParameterizedBinaryCrosser) Family() operator.Family { return operator.FamilyCrosser }
func (c *NPointParameterizedBinaryCrosser) Finalize() error         { c.log.OperatorFinalized(); return nil }

func (c *NPointParameterizedBinaryCrosser) Clone(h operator.Handle) (operator.Operator, error) {
	clone := NewNPointParameterizedBinaryCrosser(h)
	clone.NumCrossPoints = append([]int(nil), c.NumCrossPoints...)
	clone.log.OperatorCloned()
	return clone, nil
}

func (c *NPointParameterizedBinaryCrosser) PollForParameters(db *paramdb.DB) error {
	pts, err := db.Ints(paramdb.KeyNumCrossPoints, nil)
	if err != nil {
		return err
	}
	if pts != nil {
		c.NumCrossPoints = pts
	}
	return nil
}

func (c *NPointParameterizedBinaryCrosser) numCrossPoints(varIndex int) int {
	if len(c.NumCrossPoints) == 0 {
		return 1
	}
	if len(c.NumCrossPoints) == 1 {
		return c.NumCrossPoints[0]
	}
	if varIndex < len(c.NumCrossPoints) {
		return c.NumCrossPoints[varIndex]
	}
	return c.NumCrossPoints[len(c.NumCrossPoints)-1]
}

// Cross performs round(rate*parents.Size()) crossovers (at least one),
// each producing a pair of sibling children, so the child group holds
// twice that many Designs. Parents are chosen uniformly at random with
// replacement.
func (c *NPointParameterizedBinaryCrosser) Cross(parents *design.Group, rate float64) (*design.Group, error) {
	target := c.h.Target()
	for i := range target.Variables {
		if err := c.bm.CheckPrecision(i); err != nil {
			return nil, fmt.Errorf("jega/crosser: %w", err)
		}
	}

	pool := parents.BeginDV().Designs()
	if len(pool) == 0 {
		return nil, fmt.Errorf("jega/crosser: empty parent group")
	}

	pairs := int(float64(len(pool))*rate + 0.5)
	if pairs < 1 {
		pairs = 1
	}
	n := 2 * pairs

	children := target.NewGroup()
	children.AllowDuplicateVariables = true

	for produced := 0; produced < n; produced += 2 {
		p1 := pool[c.rnd.Intn(len(pool))]
		p2 := pool[c.rnd.Intn(len(pool))]

		child1 := c.h.NewDesignFrom(p1)
		child2 := c.h.NewDesignFrom(p2)

		for v := range target.Variables {
			nbits := c.bm.NumBits(v)
			code1 := c.bm.Encode(p1.Variables[v], v)
			code2 := c.bm.Encode(p2.Variables[v], v)

			splits := c.pickSplitPoints(nbits, c.numCrossPoints(v))
			out1, out2 := alternateBlocks(code1, code2, nbits, splits)

			child1.Variables[v] = target.Variables[v].Nature.NearestValidRep(c.bm.Decode(out1, v), target.Variables[v].Bounds)
			child2.Variables[v] = target.Variables[v].Nature.NearestValidRep(c.bm.Decode(out2, v), target.Variables[v].Bounds)
		}

		if err := children.Insert(child1); err != nil {
			return nil, err
		}
		if err := children.Insert(child2); err != nil {
			return nil, err
		}
	}

	c.log.PopulationSize(children.Size())
	return children, nil
}

// pickSplitPoints chooses up to n distinct split points from {1..nbits-1}.
func (c *NPointParameterizedBinaryCrosser) pickSplitPoints(nbits, n int) []int {
	if nbits < 2 {
		return nil
	}
	maxPoints := nbits - 1
	if n > maxPoints {
		n = maxPoints
	}
	if n < 1 {
		n = 1
	}

	candidates := make([]int, maxPoints)
	for i := range candidates {
		candidates[i] = i + 1
	}
	c.rnd.Shuffle(len(candidates), func(i, j int) { candidates[i], candidates[j] = candidates[j], candidates[i] })
	chosen := append([]int(nil), candidates[:n]...)
	sort.Ints(chosen)
	return chosen
}

// alternateBlocks splits the nbits-wide codes a and b at splits and
// alternates bit blocks between them, starting with a's leading block.
func alternateBlocks(a, b uint64, nbits int, splits []int) (uint64, uint64) {
	bounds := append([]int{0}, splits...)
	bounds = append(bounds, nbits)

	var out1, out2 uint64
	fromA := true
	for i := 0; i+1 < len(bounds); i++ {
		lo, hi := bounds[i], bounds[i+1]
		mask := blockMask(lo, hi)
		if fromA {
			out1 |= a & mask
			out2 |= b & mask
		} else {
			out1 |= b & mask
			out2 |= a & mask
		}
		fromA = !fromA
	}
	return out1, out2
}

func blockMask(lo, hi int) uint64 {
	if hi <= lo {
		return 0
	}
	width := hi - lo
	var mask uint64
	if width >= 64 {
		mask = ^uint64(0)
	} else {
		mask = (uint64(1) << uint(width)) - 1
	}
	return mask << uint(lo)
}
