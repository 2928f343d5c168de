package evaluator_test

import (
	"sync/atomic"
	"testing"

	"github.com/evojega/jega/pkg/jega/design"
	"github.com/evojega/jega/pkg/jega/evaluator"
	"github.com/evojega/jega/pkg/jega/jlog"
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
		[]design.VariableInfo{{Name: "x0", Nature: design.ContinuumReal{}, Bounds: design.Bounds{Lower: 0, Upper: 10}}},
		[]design.ObjectiveInfo{{Name: "f0"}},
		nil,
	)
}

func TestEvaluateSetsEvaluatedFlagAndSkipsAlreadyEvaluated(t *testing.T) {
	target := newTarget()
	h := &fakeHandle{target: target}

	var calls int32
	ev := evaluator.NewSimpleFunctorEvaluator(h, func(d *design.Design, target *design.Target) {
		atomic.AddInt32(&calls, 1)
		d.Objectives[0] = d.Variables[0] * 2
	})

	group := target.NewGroup()
	group.AllowDuplicateVariables = true
	d1 := target.NewDesign()
	d1.Variables[0] = 3
	d2 := target.NewDesign()
	d2.Variables[0] = 4
	d2.SetFlag(design.FlagEvaluated, true)
	group.Insert(d1)
	group.Insert(d2)

	if err := ev.Evaluate(group); err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if calls != 1 {
		t.Fatalf("callback called %d times, want 1 (d2 pre-evaluated)", calls)
	}
	if d1.Objectives[0] != 6 {
		t.Fatalf("d1.Objectives[0] = %v, want 6", d1.Objectives[0])
	}
	if !d1.HasFlag(design.FlagEvaluated) {
		t.Fatal("expected d1 to be flagged Evaluated")
	}
}

func TestEvaluateMissingCallbackIsFatal(t *testing.T) {
	target := newTarget()
	h := &fakeHandle{target: target}
	ev := evaluator.NewSimpleFunctorEvaluator(h, nil)
	group := target.NewGroup()

	if err := ev.Evaluate(group); err == nil {
		t.Fatal("expected fatal error for missing callback")
	}
}

func TestEvaluateParallelMatchesSequentialResults(t *testing.T) {
	target := newTarget()
	h := &fakeHandle{target: target}
	ev := evaluator.NewSimpleFunctorEvaluator(h, func(d *design.Design, target *design.Target) {
		d.Objectives[0] = d.Variables[0] * d.Variables[0]
	})
	ev.Parallel = true

	group := target.NewGroup()
	group.AllowDuplicateVariables = true
	for i := 0; i < 50; i++ {
		d := target.NewDesign()
		d.Variables[0] = float64(i)
		group.Insert(d)
	}

	if err := ev.Evaluate(group); err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	for _, d := range group.BeginDV().Designs() {
		want := d.Variables[0] * d.Variables[0]
		if d.Objectives[0] != want {
			t.Errorf("Objectives[0] = %v, want %v", d.Objectives[0], want)
		}
		if !d.HasFlag(design.FlagEvaluated) {
			t.Error("expected Evaluated flag set")
		}
	}
}
