package converger_test

import (
	"testing"
	"time"

	"github.com/evojega/jega/pkg/jega/converger"
	"github.com/evojega/jega/pkg/jega/design"
	"github.com/evojega/jega/pkg/jega/jlog"
	"github.com/evojega/jega/pkg/jega/paramdb"
)

type fakeHandle struct {
	target *design.Target
	log    jlog.Logger
}

func (h *fakeHandle) Target() *design.Target                        { return h.target }
func (h *fakeHandle) NewDesign() *design.Design                     { return h.target.NewDesign() }
func (h *fakeHandle) NewDesignFrom(p *design.Design) *design.Design { return h.target.NewDesignFrom(p) }
func (h *fakeHandle) Logger() jlog.Logger                           { return h.log }

func newHandle() *fakeHandle {
	target := design.NewTarget(nil, []design.ObjectiveInfo{{Name: "f0"}}, nil)
	return &fakeHandle{target: target}
}

func TestMetricTrackerWithinPercentChangeRequiresFullWindow(t *testing.T) {
	tr := converger.NewMetricTracker(3)
	tr.Push(1.0)
	tr.Push(1.0)
	if tr.WithinPercentChange(0.01, false) {
		t.Fatal("expected false: window not yet full")
	}
	tr.Push(1.0)
	if !tr.WithinPercentChange(0.01, false) {
		t.Fatal("expected true: full window of identical values")
	}
}

func TestMetricTrackerDetectsLargeChange(t *testing.T) {
	tr := converger.NewMetricTracker(3)
	tr.Push(1.0)
	tr.Push(1.0)
	tr.Push(100.0)
	if tr.WithinPercentChange(0.1, false) {
		t.Fatal("expected false: large relative change present in window")
	}
}

func TestMetricTrackerConvergerStopsOnMaxGenerationsCeiling(t *testing.T) {
	h := newHandle()
	c := converger.NewMetricTrackerConverger(h, converger.BestFitnessMetric)
	c.MaxGenerations = 5

	converged, err := c.Converged(converger.State{Generation: 5, BestFitness: 1.0})
	if err != nil {
		t.Fatalf("Converged: %v", err)
	}
	if !converged {
		t.Fatal("expected ceiling-forced convergence at generation 5")
	}
}

func TestMetricTrackerConvergerConvergesOnStableMetric(t *testing.T) {
	h := newHandle()
	c := converger.NewMetricTrackerConverger(h, converger.BestFitnessMetric)
	db := paramdb.New()
	db.Set(paramdb.KeyNumGenerations, 3)
	db.Set(paramdb.KeyPercentChange, 0.01)
	if err := c.PollForParameters(db); err != nil {
		t.Fatalf("PollForParameters: %v", err)
	}

	for gen := 0; gen < 2; gen++ {
		converged, err := c.Converged(converger.State{Generation: gen, BestFitness: 10.0, Elapsed: time.Second})
		if err != nil {
			t.Fatalf("Converged: %v", err)
		}
		if converged {
			t.Fatalf("did not expect convergence before window fills, gen %d", gen)
		}
	}
	converged, err := c.Converged(converger.State{Generation: 2, BestFitness: 10.0, Elapsed: time.Second})
	if err != nil {
		t.Fatalf("Converged: %v", err)
	}
	if !converged {
		t.Fatal("expected convergence once window is full of identical values")
	}
}
