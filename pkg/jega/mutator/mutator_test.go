package mutator_test

import (
	"bufio"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/evojega/jega/pkg/jega/design"
	"github.com/evojega/jega/pkg/jega/jlog"
	"github.com/evojega/jega/pkg/jega/mutator"
)

type fakeHandle struct {
	target *design.Target
	log    jlog.Logger
}

func (h *fakeHandle) Target() *design.Target                        { return h.target }
func (h *fakeHandle) NewDesign() *design.Design                     { return h.target.NewDesign() }
func (h *fakeHandle) NewDesignFrom(p *design.Design) *design.Design { return h.target.NewDesignFrom(p) }
func (h *fakeHandle) Logger() jlog.Logger                           { return h.log }

func newTarget() *design.Target {
	return design.NewTarget(
		[]design.VariableInfo{
			{Name: "x0", Nature: design.ContinuumReal{Precision: 1}, Bounds: design.Bounds{Lower: 0, Upper: 10}},
			{Name: "x1", Nature: design.ContinuumReal{Precision: 1}, Bounds: design.Bounds{Lower: 0, Upper: 10}},
		},
		[]design.ObjectiveInfo{{Name: "f0"}},
		nil,
	)
}

func TestParseRoadmapRejectsUnknownHeader(t *testing.T) {
	_, err := mutator.ParseRoadmap(bufio.NewScanner(strings.NewReader("[BOGUS]\n0 1\n")))
	if err == nil {
		t.Fatal("expected strict parse failure on unknown section header")
	}
}

func TestParseRoadmapParsesKnownSections(t *testing.T) {
	rm, err := mutator.ParseRoadmap(bufio.NewScanner(strings.NewReader("[SINGLE_CHOICE]\n0 1\n[FREE]\n2\n")))
	if err != nil {
		t.Fatalf("ParseRoadmap: %v", err)
	}

	want := []mutator.Block{
		{Kind: mutator.SingleChoice, Indices: []int{0, 1}},
		{Kind: mutator.Free, Indices: []int{2}},
	}
	if diff := cmp.Diff(want, rm.Blocks); diff != "" {
		t.Fatalf("parsed blocks mismatch (-want +got):\n%s", diff)
	}
}

func TestMutateKeepsVariablesInBounds(t *testing.T) {
	target := newTarget()
	h := &fakeHandle{target: target}
	m := mutator.NewLocalDesignVariableMutator(h)

	population := target.NewGroup()
	population.AllowDuplicateVariables = true
	for i := 0; i < 5; i++ {
		d := target.NewDesign()
		d.Variables[0] = float64(i)
		d.Variables[1] = float64(i)
		if err := population.Insert(d); err != nil {
			t.Fatal(err)
		}
	}
	children := target.NewGroup()
	children.AllowDuplicateVariables = true

	if err := m.Mutate(population, children, 1.0); err != nil {
		t.Fatalf("Mutate: %v", err)
	}

	for _, d := range population.BeginDV().Designs() {
		for i, v := range target.Variables {
			if !v.Bounds.Contains(d.Variables[i]) {
				t.Errorf("variable %d = %v out of bounds %+v after mutation", i, d.Variables[i], v.Bounds)
			}
		}
	}
}
