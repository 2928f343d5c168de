// Package niche implements the NichePressureApplicator operator
// family: DistanceNiching, MaxDesigns, and Radial, per SPEC_FULL.md
// §4.8. All three share the cutoff/keep-better machinery the spec
// describes; Radial is this repository's own lightweight elaboration
// of the spec's single-radius variant, built on the same primitives
// (an Open Question resolved per SPEC_FULL.md §9).
package niche

import (
	"math"

	"github.com/evojega/jega/pkg/jega/design"
	"github.com/evojega/jega/pkg/jega/jlog"
	"github.com/evojega/jega/pkg/jega/operator"
	"github.com/evojega/jega/pkg/jega/paramdb"
)

// NichePressureApplicator thins a group in objective space, optionally
// caching niched-out Designs for PreSelection re-assimilation.
type NichePressureApplicator interface {
	operator.Operator
	Apply(group *design.Group, record *design.FitnessRecord) error
	// PreSelection re-inserts any cached niched-out Designs into group
	// at the start of the next selection cycle.
	PreSelection(group *design.Group) error
}

type cache struct {
	enabled bool
	cached  []*design.Design
}

func (c *cache) stash(d *design.Design, target *design.Target) {
	if !c.enabled {
		target.TakeDesign(d)
		return
	}
	if g := d.Group(); g != nil {
		g.Erase(d)
	}
	c.cached = append(c.cached, d)
}

func (c *cache) preSelection(group *design.Group) error {
	for _, d := range c.cached {
		if err := group.Insert(d); err != nil {
			return err
		}
	}
	c.cached = nil
	return nil
}

// objectiveRanges returns per-objective [min,max] over designs.
func objectiveRanges(designs []*design.Design, nof int) (min, max []float64) {
	min = make([]float64, nof)
	max = make([]float64, nof)
	for i := range min {
		min[i] = math.Inf(1)
		max[i] = math.Inf(-1)
	}
	for _, d := range designs {
		for i := 0; i < nof; i++ {
			if d.Objectives[i] < min[i] {
				min[i] = d.Objectives[i]
			}
			if d.Objectives[i] > max[i] {
				max[i] = d.Objectives[i]
			}
		}
	}
	return min, max
}

// isParetoExtreme reports whether d attains the min or max of some
// objective among designs; Pareto extremes are never niched out.
func isParetoExtreme(d *design.Design, min, max []float64) bool {
	for i := range min {
		if d.Objectives[i] == min[i] || d.Objectives[i] == max[i] {
			return true
		}
	}
	return false
}

func betterFitness(a, b *design.Design, record *design.FitnessRecord) bool {
	fa, _ := record.Fitness(a)
	fb, _ := record.Fitness(b)
	return fa > fb
}

// DistanceNiching computes per-objective cutoff distances as
// |pct[i]| * objective_range[i]; two Designs are "too close" if every
// objective's absolute difference is within its cutoff, in which case
// the worse (by fitness) is niched out.
type DistanceNiching struct {
	h   operator.Handle
	log jlog.Logger
	c   cache

	// Pct holds per-objective distance percentages in [0,1]. A
	// single-element slice broadcasts to every objective.
	Pct []float64
}

// NewDistanceNiching constructs the nicher bound to h.
func NewDistanceNiching(h operator.Handle) *DistanceNiching {
	n := &DistanceNiching{
		h:   h,
		log: h.Logger().ForOperator(string(operator.FamilyNichePressure), "distance_niching"),
		Pct: []float64{0.05},
	}
	n.log.OperatorConstructed()
	return n
}

func (n *DistanceNiching) Name() string           { return "distance_niching" }
func (n *DistanceNiching) Family() operator.Family { return operator.FamilyNichePressure }
func (n *DistanceNiching) Finalize() error         { n.log.OperatorFinalized(); return nil }

func (n *DistanceNiching) Clone(h operator.Handle) (operator.Operator, error) {
	c := NewDistanceNiching(h)
	c.Pct = append([]float64(nil), n.Pct...)
	c.c.enabled = n.c.enabled
	c.log.OperatorCloned()
	return c, nil
}

func (n *DistanceNiching) PollForParameters(db *paramdb.DB) error {
	pct, err := db.Float64s(paramdb.KeyNicheVector, nil)
	if err != nil {
		return err
	}
	if pct != nil {
		n.Pct = pct
	}
	cacheFlag, err := db.Bool(paramdb.KeyCacheNichedDesigns, n.c.enabled)
	if err != nil {
		return err
	}
	n.c.enabled = cacheFlag
	return nil
}

func (n *DistanceNiching) pctFor(i, nof int) float64 {
	if len(n.Pct) == 0 {
		return 0
	}
	if len(n.Pct) == 1 {
		return math.Abs(n.Pct[0])
	}
	if i < len(n.Pct) {
		return math.Abs(n.Pct[i])
	}
	return math.Abs(n.Pct[len(n.Pct)-1])
}

func (n *DistanceNiching) cutoffs(designs []*design.Design, nof int) []float64 {
	min, max := objectiveRanges(designs, nof)
	cutoffs := make([]float64, nof)
	for i := 0; i < nof; i++ {
		cutoffs[i] = n.pctFor(i, nof) * (max[i] - min[i])
	}
	return cutoffs
}

func tooClose(a, b *design.Design, cutoffs []float64) bool {
	for i, c := range cutoffs {
		if math.Abs(a.Objectives[i]-b.Objectives[i]) > c {
			return false
		}
	}
	return true
}

// Apply niches group in place. Designs are walked in OF order, each
// checked against the Designs already kept: a Design too close to a
// kept Pareto extreme is always the one niched out, and between two
// non-extremes the worse (by fitness) is niched out. Pareto extremes
// are always kept.
func (n *DistanceNiching) Apply(group *design.Group, record *design.FitnessRecord) error {
	target := n.h.Target()
	nof := target.NOF()
	designs := group.BeginOF().Designs()
	min, max := objectiveRanges(designs, nof)
	cutoffs := n.cutoffs(designs, nof)

	removed := make(map[int]bool, len(designs))
	kept := make([]int, 0, len(designs))
	for i := 0; i < len(designs); i++ {
		if isParetoExtreme(designs[i], min, max) {
			kept = append(kept, i)
			continue
		}
		placed := false
		for ki, k := range kept {
			if !tooClose(designs[i], designs[k], cutoffs) {
				continue
			}
			if isParetoExtreme(designs[k], min, max) || betterFitness(designs[k], designs[i], record) {
				removed[i] = true
			} else {
				removed[k] = true
				kept[ki] = i
			}
			placed = true
			break
		}
		if !placed {
			kept = append(kept, i)
		}
	}

	for i, d := range designs {
		if removed[i] {
			group.Erase(d)
			n.c.stash(d, target)
		}
	}
	n.log.PopulationSize(group.Size())
	return nil
}

func (n *DistanceNiching) PreSelection(group *design.Group) error { return n.c.preSelection(group) }

// MaxDesigns runs DistanceNiching, then additionally enforces a global
// population cap by removing the most-crowded remaining Designs.
type MaxDesigns struct {
	*DistanceNiching
	MaxCount int
}

// NewMaxDesigns constructs the nicher bound to h.
func NewMaxDesigns(h operator.Handle) *MaxDesigns {
	m := &MaxDesigns{DistanceNiching: NewDistanceNiching(h), MaxCount: 100}
	m.log = h.Logger().ForOperator(string(operator.FamilyNichePressure), "max_designs")
	return m
}

func (m *MaxDesigns) Name() string { return "max_designs" }

func (m *MaxDesigns) Clone(h operator.Handle) (operator.Operator, error) {
	base, _ := m.DistanceNiching.Clone(h)
	c := &MaxDesigns{DistanceNiching: base.(*DistanceNiching), MaxCount: m.MaxCount}
	c.log = h.Logger().ForOperator(string(operator.FamilyNichePressure), "max_designs")
	return c, nil
}

func (m *MaxDesigns) PollForParameters(db *paramdb.DB) error {
	if err := m.DistanceNiching.PollForParameters(db); err != nil {
		return err
	}
	max, err := db.Int("method.jega.max_designs", m.MaxCount)
	if err != nil {
		return err
	}
	m.MaxCount = max
	return nil
}

func (m *MaxDesigns) Apply(group *design.Group, record *design.FitnessRecord) error {
	if err := m.DistanceNiching.Apply(group, record); err != nil {
		return err
	}
	target := m.h.Target()
	nof := target.NOF()

	for group.Size() > m.MaxCount {
		designs := group.BeginOF().Designs()
		min, max := objectiveRanges(designs, nof)
		cutoffs := m.cutoffs(designs, nof)

		counts := make([]int, len(designs))
		for i := range designs {
			for j := range designs {
				if i != j && tooClose(designs[i], designs[j], cutoffs) {
					counts[i]++
				}
			}
		}

		worst := -1
		for i, d := range designs {
			if isParetoExtreme(d, min, max) {
				continue
			}
			if worst == -1 {
				worst = i
				continue
			}
			if counts[i] > counts[worst] {
				worst = i
				continue
			}
			if counts[i] == counts[worst] && !betterFitness(d, designs[worst], record) {
				worst = i
			}
		}
		if worst == -1 {
			break // everything remaining is a Pareto extreme
		}
		group.Erase(designs[worst])
		m.c.stash(designs[worst], target)
	}
	m.log.PopulationSize(group.Size())
	return nil
}

// Radial is identical to DistanceNiching's framework but with a single
// combined Euclidean radius in normalized objective space, rather than
// per-objective cutoffs.
type Radial struct {
	h   operator.Handle
	log jlog.Logger
	c   cache

	Radius float64
}

// NewRadial constructs the nicher bound to h.
func NewRadial(h operator.Handle) *Radial {
	r := &Radial{
		h:      h,
		log:    h.Logger().ForOperator(string(operator.FamilyNichePressure), "radial"),
		Radius: 0.05,
	}
	r.log.OperatorConstructed()
	return r
}

func (r *Radial) Name() string           { return "radial" }
func (r *Radial) Family() operator.Family { return operator.FamilyNichePressure }
func (r *Radial) Finalize() error         { r.log.OperatorFinalized(); return nil }

func (r *Radial) Clone(h operator.Handle) (operator.Operator, error) {
	c := NewRadial(h)
	c.Radius = r.Radius
	c.c.enabled = r.c.enabled
	c.log.OperatorCloned()
	return c, nil
}

func (r *Radial) PollForParameters(db *paramdb.DB) error {
	radius, err := db.Float64("method.jega.niche_radius", r.Radius)
	if err != nil {
		return err
	}
	r.Radius = radius
	cacheFlag, err := db.Bool(paramdb.KeyCacheNichedDesigns, r.c.enabled)
	if err != nil {
		return err
	}
	r.c.enabled = cacheFlag
	return nil
}

func normalizedDistance(a, b *design.Design, min, max []float64) float64 {
	var sum float64
	for i := range min {
		span := max[i] - min[i]
		if span == 0 {
			continue
		}
		d := (a.Objectives[i] - b.Objectives[i]) / span
		sum += d * d
	}
	return math.Sqrt(sum)
}

// Apply niches group by normalized Euclidean radius, walking Designs
// in OF order against those already kept -- see DistanceNiching.Apply
// for the keep/remove rule Radial shares with it.
func (r *Radial) Apply(group *design.Group, record *design.FitnessRecord) error {
	target := r.h.Target()
	nof := target.NOF()
	designs := group.BeginOF().Designs()
	min, max := objectiveRanges(designs, nof)

	removed := make(map[int]bool, len(designs))
	kept := make([]int, 0, len(designs))
	for i := 0; i < len(designs); i++ {
		if isParetoExtreme(designs[i], min, max) {
			kept = append(kept, i)
			continue
		}
		placed := false
		for ki, k := range kept {
			if normalizedDistance(designs[i], designs[k], min, max) > r.Radius {
				continue
			}
			if isParetoExtreme(designs[k], min, max) || betterFitness(designs[k], designs[i], record) {
				removed[i] = true
			} else {
				removed[k] = true
				kept[ki] = i
			}
			placed = true
			break
		}
		if !placed {
			kept = append(kept, i)
		}
	}

	for i, d := range designs {
		if removed[i] {
			group.Erase(d)
			r.c.stash(d, target)
		}
	}
	r.log.PopulationSize(group.Size())
	return nil
}

func (r *Radial) PreSelection(group *design.Group) error { return r.c.preSelection(group) }
