// Package initializer implements the Initializer operator family:
// RandomUnique and FlatFile, per SPEC_FULL.md §4.3. Randomness is drawn
// from golang.org/x/exp/rand, the teacher's own RNG dependency
// (algorithms/nsga2.go, algorithms/helpers.go use rand.Intn/rand.Float64
// throughout).
package initializer

import (
	"fmt"

	"golang.org/x/exp/rand"

	"github.com/evojega/jega/pkg/jega/design"
	"github.com/evojega/jega/pkg/jega/jlog"
	"github.com/evojega/jega/pkg/jega/operator"
	"github.com/evojega/jega/pkg/jega/paramdb"
)

// Initializer fills an empty group with RequestedSize legal, not
// necessarily evaluated, Designs.
type Initializer interface {
	operator.Operator
	Initialize(into *design.Group, requestedSize int) error
}

// RandomUnique samples a uniform random legal representation per
// variable per Design, rejecting and resampling duplicates up to a
// retry budget proportional to the requested size.
type RandomUnique struct {
	h   operator.Handle
	log jlog.Logger

	// RetryBudgetMultiplier bounds the resample attempts at
	// RetryBudgetMultiplier * requestedSize; defaults to 20.
	RetryBudgetMultiplier int

	rand *rand.Rand
}

// NewRandomUnique constructs a RandomUnique bound to h.
func NewRandomUnique(h operator.Handle) *RandomUnique {
	r := &RandomUnique{
		h:                     h,
		log:                   h.Logger().ForOperator(string(operator.FamilyInitializer), "random_unique"),
		RetryBudgetMultiplier: 20,
		rand:                  rand.New(rand.NewSource(1)),
	}
	r.log.OperatorConstructed()
	return r
}

func (r *RandomUnique) Name() string               { return "random_unique" }
func (r *RandomUnique) Family() operator.Family     { return operator.FamilyInitializer }
func (r *RandomUnique) Finalize() error             { r.log.OperatorFinalized(); return nil }

func (r *RandomUnique) Clone(h operator.Handle) (operator.Operator, error) {
	c := NewRandomUnique(h)
	c.RetryBudgetMultiplier = r.RetryBudgetMultiplier
	c.log.OperatorCloned()
	return c, nil
}

func (r *RandomUnique) PollForParameters(db *paramdb.DB) error {
	return nil
}

// Initialize fills into with requestedSize unique Designs.
func (r *RandomUnique) Initialize(into *design.Group, requestedSize int) error {
	target := r.h.Target()
	budget := requestedSize * r.RetryBudgetMultiplier
	if budget <= 0 {
		budget = 1
	}

	attempts := 0
	for into.Size() < requestedSize {
		if attempts >= budget {
			return fmt.Errorf("jega/initializer: random_unique: exhausted retry budget (%d attempts) at %d/%d designs", attempts, into.Size(), requestedSize)
		}
		attempts++

		d := r.h.NewDesign()
		for i, v := range target.Variables {
			d.Variables[i] = v.Nature.RandomRep(v.Bounds.Lower, v.Bounds.Upper, v.Bounds, r.rand.Float64)
		}

		if into.BeginDV().FindEqual(d) != nil {
			target.TakeDesign(d)
			continue
		}
		if err := into.Insert(d); err != nil {
			target.TakeDesign(d)
			continue
		}
	}
	r.log.PopulationSize(into.Size())
	return nil
}
