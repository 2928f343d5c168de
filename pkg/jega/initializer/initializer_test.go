package initializer_test

import (
	"os"
	"testing"

	"github.com/evojega/jega/pkg/jega/design"
	"github.com/evojega/jega/pkg/jega/initializer"
	"github.com/evojega/jega/pkg/jega/jlog"
	"github.com/evojega/jega/pkg/jega/operator"
)

type fakeHandle struct {
	target *design.Target
	log    jlog.Logger
}

func (h *fakeHandle) Target() *design.Target                         { return h.target }
func (h *fakeHandle) NewDesign() *design.Design                      { return h.target.NewDesign() }
func (h *fakeHandle) NewDesignFrom(p *design.Design) *design.Design  { return h.target.NewDesignFrom(p) }
func (h *fakeHandle) Logger() jlog.Logger                            { return h.log }

func newFakeHandle(vars []design.VariableInfo) *fakeHandle {
	target := design.NewTarget(vars, []design.ObjectiveInfo{{Name: "f0"}}, nil)
	return &fakeHandle{target: target}
}

var _ operator.Handle = (*fakeHandle)(nil)

func TestRandomUniqueFillsRequestedSizeWithoutDuplicates(t *testing.T) {
	h := newFakeHandle([]design.VariableInfo{
		{Name: "x0", Nature: design.ContinuumReal{Precision: 0}, Bounds: design.Bounds{Lower: 0, Upper: 100}},
	})
	ri := initializer.NewRandomUnique(h)
	group := h.Target().NewGroup()

	if err := ri.Initialize(group, 5); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	if group.Size() != 5 {
		t.Fatalf("group size = %d, want 5", group.Size())
	}
}

func TestRandomUniqueExhaustsRetryBudgetOnTinyDomain(t *testing.T) {
	h := newFakeHandle([]design.VariableInfo{
		{Name: "x0", Nature: design.SortedDiscrete([]float64{0, 1}), Bounds: design.Bounds{}},
	})
	ri := initializer.NewRandomUnique(h)
	ri.RetryBudgetMultiplier = 5
	group := h.Target().NewGroup()

	if err := ri.Initialize(group, 10); err == nil {
		t.Fatal("expected retry-budget exhaustion error for a 2-value domain requesting 10 unique designs")
	}
}

func TestFlatFileDelimiterAutodetectTabBeforeComma(t *testing.T) {
	f, err := os.CreateTemp(t.TempDir(), "flat-*.txt")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := f.WriteString("1.0\t2.0\n3.0\t4.0\n"); err != nil {
		t.Fatal(err)
	}
	f.Close()

	h := newFakeHandle([]design.VariableInfo{
		{Name: "x0", Nature: design.ContinuumReal{}, Bounds: design.Bounds{Lower: 0, Upper: 10}},
		{Name: "x1", Nature: design.ContinuumReal{}, Bounds: design.Bounds{Lower: 0, Upper: 10}},
	})
	ff := initializer.NewFlatFile(h)
	ff.Files = []string{f.Name()}
	group := h.Target().NewGroup()

	if err := ff.Initialize(group, 2); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	if group.Size() != 2 {
		t.Fatalf("group size = %d, want 2", group.Size())
	}
}

func TestFlatFileShortfallDelegatesToRandomUnique(t *testing.T) {
	f, err := os.CreateTemp(t.TempDir(), "flat-*.txt")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := f.WriteString("1.0\n"); err != nil {
		t.Fatal(err)
	}
	f.Close()

	h := newFakeHandle([]design.VariableInfo{
		{Name: "x0", Nature: design.ContinuumReal{}, Bounds: design.Bounds{Lower: 0, Upper: 10}},
	})
	ff := initializer.NewFlatFile(h)
	ff.Files = []string{f.Name()}
	group := h.Target().NewGroup()

	if err := ff.Initialize(group, 5); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	if group.Size() != 5 {
		t.Fatalf("group size = %d, want 5 (1 from file + 4 delegated)", group.Size())
	}
}
