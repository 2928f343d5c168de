package design_test

import (
	"testing"

	"github.com/evojega/jega/pkg/jega/design"
)

func newTestTarget() *design.Target {
	return design.NewTarget(
		[]design.VariableInfo{
			{Name: "x0", Nature: design.ContinuumReal{}, Bounds: design.Bounds{Lower: 0, Upper: 1}},
		},
		[]design.ObjectiveInfo{{Name: "f0", Sense: design.Minimize}},
		nil,
	)
}

func TestNewDesignTakeDesignRoundTrip(t *testing.T) {
	target := newTestTarget()
	group := target.NewGroup()

	d := target.NewDesign()
	d.Variables[0] = 0.5
	if err := group.Insert(d); err != nil {
		t.Fatal(err)
	}
	if group.Size() != 1 {
		t.Fatalf("expected size 1, got %d", group.Size())
	}

	target.TakeDesign(d)
	if group.Size() != 0 {
		t.Fatalf("expected group size 0 after TakeDesign, got %d", group.Size())
	}
	if target.GuffSize() != 1 {
		t.Fatalf("expected guff size 1, got %d", target.GuffSize())
	}

	d2 := target.NewDesign()
	if target.GuffSize() != 0 {
		t.Fatalf("expected guff to be drained, got %d", target.GuffSize())
	}
	if d2.Variables[0] != 0 {
		t.Fatalf("recycled Design should be reset, got %v", d2.Variables[0])
	}
}

func TestGroupInvariantsHoldAfterInsertErase(t *testing.T) {
	target := newTestTarget()
	group := target.NewGroup()

	var designs []*design.Design
	for i := 0; i < 5; i++ {
		d := target.NewDesign()
		d.Variables[0] = float64(i) / 10
		if err := group.Insert(d); err != nil {
			t.Fatal(err)
		}
		designs = append(designs, d)
	}

	if err := group.CheckInvariants(); err != nil {
		t.Fatal(err)
	}

	group.Erase(designs[2])
	if err := group.CheckInvariants(); err != nil {
		t.Fatal(err)
	}
	if group.Size() != 4 {
		t.Fatalf("expected size 4 after erase, got %d", group.Size())
	}
	if group.BeginDV().Size() != group.BeginOF().Size() {
		t.Fatal("DV-sort and OF-sort sizes diverged")
	}
}

func TestGuffNeverExceedsMax(t *testing.T) {
	target := newTestTarget()
	target.MaxGuffSize = 2

	for i := 0; i < 5; i++ {
		d := target.NewDesign()
		target.TakeDesign(d)
		if target.GuffSize() > target.MaxGuffSize {
			t.Fatalf("guff exceeded max: %d > %d", target.GuffSize(), target.MaxGuffSize)
		}
	}
}

func TestInsertRejectsDoubleOwnership(t *testing.T) {
	target := newTestTarget()
	g1 := target.NewGroup()
	g2 := target.NewGroup()

	d := target.NewDesign()
	if err := g1.Insert(d); err != nil {
		t.Fatal(err)
	}
	if err := g2.Insert(d); err == nil {
		t.Fatal("expected error inserting an already-owned Design into a second group")
	}
}

func TestDiscreteNatureRoundTrip(t *testing.T) {
	nature := design.SortedDiscrete([]float64{3.1, 1.5, 2.2})
	if nature.Values[0] != 1.5 || nature.Values[2] != 3.1 {
		t.Fatalf("expected sorted values, got %v", nature.Values)
	}
	if got := nature.RepToValue(1); got != 2.2 {
		t.Fatalf("expected index 1 -> 2.2, got %v", got)
	}
}
