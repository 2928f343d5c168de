// Package selector implements the Selector operator family:
// RouletteWheelSelector, BelowLimitSelector, and the N-Best helper,
// per SPEC_FULL.md §4.7. RouletteWheelSelector's Stochastic Universal
// Sampling algorithm (shift-by-minimum, zero-sum fallback, cumulative-
// probability table) is grounded on
// original_source/.../RouletteWheelSelector.cpp; the random draw itself
// uses golang.org/x/exp/rand, the teacher's RNG dependency.
package selector

import (
	"fmt"
	"math"
	"sort"

	"golang.org/x/exp/rand"

	"github.com/evojega/jega/pkg/jega/design"
	"github.com/evojega/jega/pkg/jega/jlog"
	"github.com/evojega/jega/pkg/jega/operator"
	"github.com/evojega/jega/pkg/jega/paramdb"
)

// Selector consumes zero or more groups and a FitnessRecord and emits
// a new population, moving Designs out of the source groups.
type Selector interface {
	operator.Operator
	Select(sources []*design.Group, record *design.FitnessRecord, count int) (*design.Group, error)
}

func pooledDesigns(sources []*design.Group) []*design.Design {
	var pool []*design.Design
	for _, g := range sources {
		pool = append(pool, g.BeginOF().Designs()...)
	}
	return pool
}

// RouletteWheelSelector performs Stochastic Universal Sampling over
// normalized fitnesses.
type RouletteWheelSelector struct {
	h    operator.Handle
	log  jlog.Logger
	rand *rand.Rand
}

// NewRouletteWheelSelector constructs the selector bound to h.
func NewRouletteWheelSelector(h operator.Handle) *RouletteWheelSelector {
	s := &RouletteWheelSelector{
		h:    h,
		log:  h.Logger().ForOperator(string(operator.FamilySelector), "roulette_wheel"),
		rand: rand.New(rand.NewSource(1)),
	}
	s.log.OperatorConstructed()
	return s
}

func (s *RouletteWheelSelector) Name() string           { return "roulette_wheel" }
func (s *RouletteWheelSelector) Family() operator.Family { return operator.FamilySelector }
func (s *RouletteWheelSelector) Finalize() error         { s.log.OperatorFinalized(); return nil }

func (s *RouletteWheelSelector) Clone(h operator.Handle) (operator.Operator, error) {
	c := NewRouletteWheelSelector(h)
	c.log.OperatorCloned()
	return c, nil
}

func (s *RouletteWheelSelector) PollForParameters(db *paramdb.DB) error { return nil }

// Select performs SUS over the pooled source designs' fitnesses,
// drawing count designs (with duplicates materialized via
// NewDesignFrom) into a freshly allocated group.
func (s *RouletteWheelSelector) Select(sources []*design.Group, record *design.FitnessRecord, count int) (*design.Group, error) {
	pool := pooledDesigns(sources)
	if len(pool) == 0 {
		return nil, fmt.Errorf("jega/selector: roulette_wheel: no candidate designs")
	}
	if count <= 0 {
		return s.h.Target().NewGroup(), nil
	}

	fitnesses := make([]float64, len(pool))
	minF, maxF, sum := pool_minMaxSum(pool, record, fitnesses)

	probs := make([]float64, len(pool))
	shift := minF
	if shift > 0 {
		shift = 0
	}
	shiftedSum := sum - shift*float64(len(pool))

	switch {
	case maxF == minF, shiftedSum == 0:
		uniform := 1.0 / float64(len(pool))
		for i := range probs {
			probs[i] = uniform
		}
	default:
		for i, f := range fitnesses {
			probs[i] = (f - shift) / shiftedSum
		}
	}

	cumulative := make([]float64, len(probs))
	running := 0.0
	for i, p := range probs {
		running += p
		cumulative[i] = running
	}

	into := s.h.Target().NewGroup()
	into.AllowDuplicateVariables = true

	k := count
	u0 := s.rand.Float64() * (1.0 / float64(k))
	selectedCount := make(map[int]int, len(pool))
	for i := 0; i < k; i++ {
		u := u0 + float64(i)/float64(k)
		idx := sort.SearchFloat64s(cumulative, u)
		if idx >= len(pool) {
			idx = len(pool) - 1
		}
		selectedCount[idx]++
	}

	for idx, n := range selectedCount {
		d := pool[idx]
		for i := 0; i < n; i++ {
			var out *design.Design
			if i == 0 {
				out = d
				if g := d.Group(); g != nil {
					g.Erase(d)
				}
			} else {
				out = s.h.NewDesignFrom(d)
			}
			if err := into.Insert(out); err != nil {
				return nil, err
			}
		}
	}

	s.log.PopulationSize(into.Size())
	return into, nil
}

func pool_minMaxSum(pool []*design.Design, record *design.FitnessRecord, out []float64) (min, max, sum float64) {
	for i, d := range pool {
		f, _ := record.Fitness(d)
		out[i] = f
		if i == 0 {
			min, max = f, f
		}
		if f < min {
			min = f
		}
		if f > max {
			max = f
		}
		sum += f
	}
	return min, max, sum
}

// BelowLimitSelector keeps every Design whose negated fitness is
// strictly less than Limit, relaxing to the next-best Designs if the
// kept count falls below the shrinkage floor.
type BelowLimitSelector struct {
	h   operator.Handle
	log jlog.Logger

	Limit         float64
	Shrinkage     float64
	MinSelections int
}

// NewBelowLimitSelector constructs the selector bound to h, with
// documented defaults (limit=6.0, shrinkage=0.9, min_selections=2).
func NewBelowLimitSelector(h operator.Handle) *BelowLimitSelector {
	s := &BelowLimitSelector{
		h:             h,
		log:           h.Logger().ForOperator(string(operator.FamilySelector), "below_limit"),
		Limit:         6.0,
		Shrinkage:     0.9,
		MinSelections: 2,
	}
	s.log.OperatorConstructed()
	return s
}

func (s *BelowLimitSelector) Name() string           { return "below_limit" }
func (s *BelowLimitSelector) Family() operator.Family { return operator.FamilySelector }
func (s *BelowLimitSelector) Finalize() error         { s.log.OperatorFinalized(); return nil }

func (s *BelowLimitSelector) Clone(h operator.Handle) (operator.Operator, error) {
	c := NewBelowLimitSelector(h)
	c.Limit, c.Shrinkage, c.MinSelections = s.Limit, s.Shrinkage, s.MinSelections
	c.log.OperatorCloned()
	return c, nil
}

func (s *BelowLimitSelector) PollForParameters(db *paramdb.DB) error {
	limit, err := db.Float64(paramdb.KeyFitnessLimit, s.Limit)
	if err != nil {
		return err
	}
	shrinkage, err := db.Float64(paramdb.KeyShrinkagePercentage, s.Shrinkage)
	if err != nil {
		return err
	}
	if shrinkage < 0 {
		return fmt.Errorf("jega/selector: below_limit: shrinkage_percentage %v is negative", shrinkage)
	}
	if shrinkage > 1 {
		s.log.Quiet("shrinkage_percentage exceeds 1.0, accepting per configured tolerance", "shrinkage", shrinkage)
	}
	s.Limit = limit
	s.Shrinkage = shrinkage
	return nil
}

// Select keeps Designs whose negated fitness is strictly less than
// Limit; if that count is below max(MinSelections,
// Shrinkage*requestedCount), it relaxes by taking next-best Designs
// (by descending fitness) until the floor is met.
func (s *BelowLimitSelector) Select(sources []*design.Group, record *design.FitnessRecord, requestedCount int) (*design.Group, error) {
	pool := pooledDesigns(sources)
	into := s.h.Target().NewGroup()
	into.AllowDuplicateVariables = true

	sort.Slice(pool, func(i, j int) bool {
		fi, _ := record.Fitness(pool[i])
		fj, _ := record.Fitness(pool[j])
		if fi != fj {
			return fi > fj // descending fitness
		}
		return pool[i].ID() < pool[j].ID()
	})

	kept := make([]bool, len(pool))
	keptCount := 0
	for i, d := range pool {
		f, _ := record.Fitness(d)
		if -f < s.Limit {
			kept[i] = true
			keptCount++
		}
	}

	floor := int(math.Ceil(s.Shrinkage * float64(requestedCount)))
	if s.MinSelections > floor {
		floor = s.MinSelections
	}

	if keptCount < floor {
		for i := range pool {
			if keptCount >= floor {
				break
			}
			if !kept[i] {
				kept[i] = true
				keptCount++
			}
		}
	}

	for i, d := range pool {
		if !kept[i] {
			continue
		}
		if g := d.Group(); g != nil {
			g.Erase(d)
		}
		if err := into.Insert(d); err != nil {
			return nil, err
		}
	}
	s.log.PopulationSize(into.Size())
	return into, nil
}

// NBest returns the n Designs with the highest fitness across sources,
// as a new OF-sorted group, moving each out of its source group. Ties
// break on ascending Design id.
func NBest(target *design.Target, sources []*design.Group, record *design.FitnessRecord, n int) *design.Group {
	pool := pooledDesigns(sources)
	sort.Slice(pool, func(i, j int) bool {
		fi, _ := record.Fitness(pool[i])
		fj, _ := record.Fitness(pool[j])
		if fi != fj {
			return fi > fj
		}
		return pool[i].ID() < pool[j].ID()
	})
	if n > len(pool) {
		n = len(pool)
	}

	out := target.NewGroup()
	out.AllowDuplicateVariables = true
	for i := 0; i < n; i++ {
		d := pool[i]
		if g := d.Group(); g != nil {
			g.Erase(d)
		}
		out.Insert(d)
	}
	return out
}
