package bitmanip_test

import (
	"testing"

	"github.com/evojega/jega/pkg/jega/bitmanip"
	"github.com/evojega/jega/pkg/jega/design"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	target := design.NewTarget(
		[]design.VariableInfo{
			{Name: "x0", Nature: design.ContinuumReal{Precision: 2}, Bounds: design.Bounds{Lower: 0, Upper: 10}},
		},
		[]design.ObjectiveInfo{{Name: "f0"}},
		nil,
	)
	bm := bitmanip.New(target)

	for _, v := range []float64{0, 0.01, 1.23, 5.5, 9.99, 10} {
		code := bm.Encode(v, 0)
		got := bm.Decode(code, 0)
		want := bm.RoundToPrecision(v, 0)
		if got != want {
			t.Errorf("Decode(Encode(%v)) = %v, want %v", v, got, want)
		}
	}
}

func TestNumBitsAndPrecisionCheck(t *testing.T) {
	target := design.NewTarget(
		[]design.VariableInfo{
			{Name: "coarse", Nature: design.ContinuumReal{}, Bounds: design.Bounds{Lower: 0, Upper: 1}},
			{Name: "fine", Nature: design.ContinuumReal{Precision: 4}, Bounds: design.Bounds{Lower: 0, Upper: 1}},
		},
		[]design.ObjectiveInfo{{Name: "f0"}},
		nil,
	)
	bm := bitmanip.New(target)

	if err := bm.CheckPrecision(0); err == nil {
		t.Fatal("expected insufficient-precision error for a 0..1 variable with no decimal places")
	}
	if err := bm.CheckPrecision(1); err != nil {
		t.Fatalf("expected sufficient precision for 4-decimal variable, got %v", err)
	}
}

func TestWidthsRecomputeOnMetadataChange(t *testing.T) {
	target := design.NewTarget(
		[]design.VariableInfo{
			{Name: "x0", Nature: design.ContinuumReal{Precision: 1}, Bounds: design.Bounds{Lower: 0, Upper: 1}},
		},
		[]design.ObjectiveInfo{{Name: "f0"}},
		nil,
	)
	bm := bitmanip.New(target)
	before := bm.NumBits(0)

	target.AddVariable(design.VariableInfo{Name: "x1", Nature: design.ContinuumReal{Precision: 1}, Bounds: design.Bounds{Lower: 0, Upper: 1}})

	after := bm.NumBits(1)
	if before == 0 || after == 0 {
		t.Fatal("expected non-zero widths")
	}
}
