package niche_test

import (
	"testing"

	"github.com/evojega/jega/pkg/jega/design"
	"github.com/evojega/jega/pkg/jega/jlog"
	"github.com/evojega/jega/pkg/jega/niche"
)

type fakeHandle struct {
	target *design.Target
	log    jlog.Logger
}

func (h *fakeHandle) Target() *design.Target                        { return h.target }
func (h *fakeHandle) NewDesign() *design.Design                     { return h.target.NewDesign() }
func (h *fakeHandle) NewDesignFrom(p *design.Design) *design.Design { return h.target.NewDesignFrom(p) }
func (h *fakeHandle) Logger() jlog.Logger                           { return h.log }

func twoObjectiveTarget() *design.Target {
	return design.NewTarget(
		nil,
		[]design.ObjectiveInfo{{Name: "f0"}, {Name: "f1"}},
		nil,
	)
}

func TestDistanceNichingKeepsParetoExtremesAndThinsClusters(t *testing.T) {
	target := twoObjectiveTarget()
	h := &fakeHandle{target: target}
	n := niche.NewDistanceNiching(h)
	n.Pct = []float64{0.5}

	group := target.NewGroup()
	group.AllowDuplicateVariables = true
	record := design.NewFitnessRecord()

	points := [][2]float64{{0, 10}, {10, 0}, {5, 5}, {5.01, 5.01}}
	var designs []*design.Design
	for i, p := range points {
		d := target.NewDesign()
		d.Objectives = []float64{p[0], p[1]}
		group.Insert(d)
		record.Set(d, float64(i))
		designs = append(designs, d)
	}

	if err := n.Apply(group, record); err != nil {
		t.Fatalf("Apply: %v", err)
	}

	if !group.Contains(designs[0]) || !group.Contains(designs[1]) {
		t.Fatal("expected both Pareto extremes retained")
	}
	if group.Size() >= 4 {
		t.Fatalf("expected the near-duplicate cluster to be thinned, got size %d", group.Size())
	}
}

// TestDistanceNichingOnTwoObjectiveFront reproduces SPEC_FULL.md §8's
// worked boundary scenario verbatim: five Designs on a symmetric
// 2-objective front with pct=[0.1,0.1]. Both endpoints are Pareto
// extremes and must survive; (0.05,0.95) sits within cutoff of the
// (0,1) extreme and must be removed. A prior version of Apply's
// pairwise loop never compared an extreme against a non-extreme at
// all, so this case produced zero removals.
func TestDistanceNichingOnTwoObjectiveFront(t *testing.T) {
	target := twoObjectiveTarget()
	h := &fakeHandle{target: target}
	n := niche.NewDistanceNiching(h)
	n.Pct = []float64{0.1, 0.1}

	group := target.NewGroup()
	group.AllowDuplicateVariables = true
	record := design.NewFitnessRecord()

	points := [][2]float64{{0, 1}, {0.05, 0.95}, {0.5, 0.5}, {0.95, 0.05}, {1, 0}}
	var designs []*design.Design
	for i, p := range points {
		d := target.NewDesign()
		d.Objectives = []float64{p[0], p[1]}
		group.Insert(d)
		record.Set(d, float64(i))
		designs = append(designs, d)
	}

	if err := n.Apply(group, record); err != nil {
		t.Fatalf("Apply: %v", err)
	}

	if !group.Contains(designs[0]) {
		t.Fatal("expected the (0,1) Pareto extreme retained")
	}
	if !group.Contains(designs[4]) {
		t.Fatal("expected the (1,0) Pareto extreme retained")
	}
	if group.Contains(designs[1]) {
		t.Fatal("expected (0.05,0.95) removed: within cutoff of the (0,1) extreme")
	}
	if got, want := group.Size(), 4; got != want {
		t.Fatalf("group.Size() = %d, want %d", got, want)
	}
}

func TestMaxDesignsEnforcesGlobalCap(t *testing.T) {
	target := twoObjectiveTarget()
	h := &fakeHandle{target: target}
	m := niche.NewMaxDesigns(h)
	m.Pct = []float64{0.0}
	m.MaxCount = 3

	group := target.NewGroup()
	group.AllowDuplicateVariables = true
	record := design.NewFitnessRecord()
	for i := 0; i < 6; i++ {
		d := target.NewDesign()
		d.Objectives = []float64{float64(i), float64(6 - i)}
		group.Insert(d)
		record.Set(d, float64(i))
	}

	if err := m.Apply(group, record); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if group.Size() > 3 {
		t.Fatalf("group.Size() = %d, want <= 3", group.Size())
	}
}

func TestRadialThinsWithinCombinedRadius(t *testing.T) {
	target := twoObjectiveTarget()
	h := &fakeHandle{target: target}
	r := niche.NewRadial(h)
	r.Radius = 10.0 // generous radius in normalized space: everything within range clusters

	group := target.NewGroup()
	group.AllowDuplicateVariables = true
	record := design.NewFitnessRecord()
	points := [][2]float64{{0, 0}, {100, 100}, {1, 1}}
	var designs []*design.Design
	for i, p := range points {
		d := target.NewDesign()
		d.Objectives = []float64{p[0], p[1]}
		group.Insert(d)
		record.Set(d, float64(i))
		designs = append(designs, d)
	}

	if err := r.Apply(group, record); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if !group.Contains(designs[0]) || !group.Contains(designs[1]) {
		t.Fatal("expected both Pareto extremes retained")
	}
}
