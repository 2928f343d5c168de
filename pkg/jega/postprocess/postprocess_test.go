package postprocess_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/evojega/jega/pkg/jega/design"
	"github.com/evojega/jega/pkg/jega/jlog"
	"github.com/evojega/jega/pkg/jega/postprocess"
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
	t := design.NewTarget(nil, []design.ObjectiveInfo{{Name: "f0"}, {Name: "f1"}}, nil)
	t.TrackDiscards = true
	return t
}

func TestPlotPostProcessorRendersHTML(t *testing.T) {
	target := twoObjectiveTarget()
	h := &fakeHandle{target: target}
	final := target.NewGroup()
	final.AllowDuplicateVariables = true
	for i := 0; i < 3; i++ {
		d := target.NewDesign()
		d.Objectives = []float64{float64(i), float64(3 - i)}
		final.Insert(d)
	}

	p := postprocess.NewPlotPostProcessor(h)
	var buf bytes.Buffer
	p.Writer = &buf

	if err := p.Process(final); err != nil {
		t.Fatalf("Process: %v", err)
	}
	if !strings.Contains(buf.String(), "<html") {
		t.Fatal("expected rendered output to contain an <html> tag")
	}
}

func TestArchivePromotionPromotesNonDominatedDiscards(t *testing.T) {
	// One variable, so the two Designs differ in variables and the
	// promotion's duplicate-variables check does not skip the candidate.
	target := design.NewTarget(
		[]design.VariableInfo{{Name: "x0", Nature: design.ContinuumReal{}, Bounds: design.Bounds{Lower: 0, Upper: 10}}},
		[]design.ObjectiveInfo{{Name: "f0"}, {Name: "f1"}},
		nil,
	)
	target.TrackDiscards = true
	h := &fakeHandle{target: target}

	final := target.NewGroup()
	final.AllowDuplicateVariables = true
	kept := target.NewDesign()
	kept.Variables[0] = 5
	kept.Objectives = []float64{5, 5}
	final.Insert(kept)

	better := target.NewDesign()
	better.Variables[0] = 1
	better.Objectives = []float64{1, 1}
	better.SetFlag(design.FlagEvaluated, true)
	target.TakeDesign(better) // routes to discard archive since TrackDiscards is set

	p := postprocess.NewArchivePromotionPostProcessor(h)
	if err := p.Process(final); err != nil {
		t.Fatalf("Process: %v", err)
	}

	found := false
	for _, d := range final.BeginOF().Designs() {
		if d.Objectives[0] == 1 && d.Objectives[1] == 1 {
			found = true
		}
	}
	if !found {
		t.Fatal("expected the non-dominated archived design to be promoted into final")
	}
}
