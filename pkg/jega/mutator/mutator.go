// Package mutator implements the Mutator operator family:
// LocalDesignVariableMutator and its design-space roadmap, per
// SPEC_FULL.md §4.5, grounded on original_source's
// LocalDesignVariableMutator.hpp for the variant taxonomy (full-block-
// change, extend-contiguous-block, move-by-1, random-reassignment,
// vertical-pair-full-block-change) and on the teacher's
// crossovers.go/helpers.go for the golang.org/x/exp/rand-based variant
// selection style.
package mutator

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"golang.org/x/exp/rand"

	"github.com/evojega/jega/pkg/jega/design"
	"github.com/evojega/jega/pkg/jega/jlog"
	"github.com/evojega/jega/pkg/jega/operator"
	"github.com/evojega/jega/pkg/jega/paramdb"
)

// Mutator mutates designs in place across population and children.
type Mutator interface {
	operator.Operator
	// CanProduceInvalidVariableValues reports whether this mutator may
	// leave a Design's representation outside its variable bounds,
	// requiring the Evaluator to reject it.
	CanProduceInvalidVariableValues() bool
	Mutate(population, children *design.Group, rate float64) error
}

type variant int

const (
	variantFullBlockChange variant = iota
	variantExtendContiguousBlock
	variantMoveBy1
	variantRandomReassignment
	variantVerticalPairFullBlockChange
)

// LocalDesignVariableMutator reads a roadmap describing correlated
// variable blocks and, for each mutation event, picks one of five
// variants at random.
type LocalDesignVariableMutator struct {
	h   operator.Handle
	log jlog.Logger

	// RoadmapPath is the file PollForParameters reads; set directly to
	// bypass file I/O in tests.
	RoadmapPath string
	Roadmap     *Roadmap

	rnd *rand.Rand
}

// NewLocalDesignVariableMutator constructs the mutator bound to h.
func NewLocalDesignVariableMutator(h operator.Handle) *LocalDesignVariableMutator {
	m := &LocalDesignVariableMutator{
		h:   h,
		log: h.Logger().ForOperator(string(operator.FamilyMutator), "local_design_variable"),
		rnd: rand.New(rand.NewSource(1)),
	}
	m.log.OperatorConstructed()
	return m
}

func (m *LocalDesignVariableMutator) Name() string           { return "local_design_variable" }
func (m *LocalDesignVariableMutator) Family() operator.Family { return operator.FamilyMutator }
func (m *LocalDesignVariableMutator) Finalize() error         { m.log.OperatorFinalized(); return nil }

// CanProduceInvalidVariableValues is false: every variant writes back
// either Nature.NearestValidRep of its result or a fresh
// Nature.RandomRep drawn within the variable's bounds.
func (m *LocalDesignVariableMutator) CanProduceInvalidVariableValues() bool { return false }

func (m *LocalDesignVariableMutator) Clone(h operator.Handle) (operator.Operator, error) {
	c := NewLocalDesignVariableMutator(h)
	c.RoadmapPath = m.RoadmapPath
	c.Roadmap = m.Roadmap
	c.log.OperatorCloned()
	return c, nil
}

func (m *LocalDesignVariableMutator) PollForParameters(db *paramdb.DB) error {
	path, err := db.String("method.jega.roadmap_file", "")
	if err != nil {
		return err
	}
	if path == "" {
		return nil
	}
	m.RoadmapPath = path

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("jega/mutator: cannot open roadmap %q: %w", path, err)
	}
	defer f.Close()

	rm, err := ParseRoadmap(bufio.NewScanner(f))
	if err != nil {
		return err
	}
	m.Roadmap = rm
	return nil
}

// Mutate mutates round(rate * max(population.Size(), children.Size()))
// designs, each drawn at random (with replacement) from children, or
// from population when children is empty, picking a random block and
// variant for each event.
func (m *LocalDesignVariableMutator) Mutate(population, children *design.Group, rate float64) error {
	target := m.h.Target()

	maxSize := population.Size()
	if children.Size() > maxSize {
		maxSize = children.Size()
	}
	count := int(float64(maxSize)*rate + 0.5)

	pool := children.BeginDV().Designs()
	if len(pool) == 0 {
		pool = population.BeginDV().Designs()
	}
	if len(pool) == 0 {
		return nil
	}

	blocks := m.Roadmap.effectiveBlocks(target.NDV())

	for i := 0; i < count; i++ {
		d := pool[m.rnd.Intn(len(pool))]
		block := blocks[m.rnd.Intn(len(blocks))]
		v := variant(m.rnd.Intn(5))
		m.applyVariant(d, block, v, target)
	}
	m.log.Debug("mutation pass complete", "events", count)
	return nil
}

// effectiveBlocks returns rm's blocks, or (if rm is nil, meaning no
// roadmap was configured) a synthetic all-Free, one-variable-per-block
// roadmap covering ndv variables.
func (rm *Roadmap) effectiveBlocks(ndv int) []Block {
	if rm != nil && len(rm.Blocks) > 0 {
		return rm.Blocks
	}
	blocks := make([]Block, ndv)
	for i := range blocks {
		blocks[i] = Block{Kind: Free, Indices: []int{i}}
	}
	return blocks
}

func (m *LocalDesignVariableMutator) applyVariant(d *design.Design, block Block, v variant, target *design.Target) {
	switch v {
	case variantFullBlockChange:
		m.fullBlockChange(d, block.Indices, target)
	case variantExtendContiguousBlock:
		m.extendContiguousBlock(d, block.Indices, target)
	case variantMoveBy1:
		m.moveBy1(d, block.Indices, target)
	case variantRandomReassignment:
		m.randomReassignment(d, block.Indices, target)
	case variantVerticalPairFullBlockChange:
		if len(block.PairWith) == len(block.Indices) && len(block.PairWith) > 0 {
			m.fullBlockChange(d, block.Indices, target)
			m.fullBlockChange(d, block.PairWith, target)
		} else {
			m.fullBlockChange(d, block.Indices, target)
		}
	}
}

// fullBlockChange replaces every variable in indices with the same
// freshly sampled representation, preserving within-block correlation.
func (m *LocalDesignVariableMutator) fullBlockChange(d *design.Design, indices []int, target *design.Target) {
	if len(indices) == 0 {
		return
	}
	i0 := indices[0]
	v0 := target.Variables[i0]
	rep := v0.Nature.RandomRep(v0.Bounds.Lower, v0.Bounds.Upper, v0.Bounds, m.rnd.Float64)
	for _, i := range indices {
		v := target.Variables[i]
		d.Variables[i] = v.Nature.NearestValidRep(rep, v.Bounds)
	}
}

// extendContiguousBlock finds the longest run of equal values starting
// at indices[0] and extends it by one more matching index, if any index
// in the block still differs.
func (m *LocalDesignVariableMutator) extendContiguousBlock(d *design.Design, indices []int, target *design.Target) {
	if len(indices) < 2 {
		return
	}
	want := d.Variables[indices[0]]
	for _, i := range indices[1:] {
		if d.Variables[i] != want {
			v := target.Variables[i]
			d.Variables[i] = v.Nature.NearestValidRep(want, v.Bounds)
			return
		}
	}
}

// moveBy1 steps one randomly chosen index's representation up or down
// by 1.0, legalizing the result against its bounds.
func (m *LocalDesignVariableMutator) moveBy1(d *design.Design, indices []int, target *design.Target) {
	if len(indices) == 0 {
		return
	}
	i := indices[m.rnd.Intn(len(indices))]
	v := target.Variables[i]
	step := 1.0
	if m.rnd.Intn(2) == 0 {
		step = -1.0
	}
	d.Variables[i] = v.Nature.NearestValidRep(d.Variables[i]+step, v.Bounds)
}

// randomReassignment resamples every variable in indices independently
// within its own legal representation range.
func (m *LocalDesignVariableMutator) randomReassignment(d *design.Design, indices []int, target *design.Target) {
	for _, i := range indices {
		v := target.Variables[i]
		d.Variables[i] = v.Nature.RandomRep(v.Bounds.Lower, v.Bounds.Upper, v.Bounds, m.rnd.Float64)
	}
}

// roadmapSectionNames lists the strict set of recognized headers as
// one comma-separated string.
var roadmapSectionNames = strings.Join([]string{"SINGLE_CHOICE", "MULTI_CHOICE", "FREE", "DATE", "PAIR"}, ", ")
