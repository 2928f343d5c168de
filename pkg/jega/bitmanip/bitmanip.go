// Package bitmanip implements BitManipulator: the fixed-precision
// integer encoding real/integer/discrete design variables use for
// binary-space crossover and mutation, per SPEC_FULL.md §4.4's
// encoding contract and original_source/.../BitManipulator.hpp.
package bitmanip

import (
	"fmt"
	"math"

	"github.com/evojega/jega/pkg/jega/design"
)

// BitManipulator encodes/decodes a Target's variables as fixed-
// precision unsigned integers. The per-variable bit widths are cached
// and recomputed whenever the target's variable count changes.
type BitManipulator struct {
	target *design.Target

	cachedNDV int
	widths    []int
	precision []int // decimal places used for the (v - lb) * 10^p encoding
}

// New returns a BitManipulator bound to target.
func New(target *design.Target) *BitManipulator {
	bm := &BitManipulator{target: target}
	bm.recompute()
	return bm
}

func (bm *BitManipulator) recompute() {
	ndv := bm.target.NDV()
	bm.widths = make([]int, ndv)
	bm.precision = make([]int, ndv)

	for i, v := range bm.target.Variables {
		switch n := v.Nature.(type) {
		case design.Discrete:
			count := len(n.Values)
			bm.precision[i] = 0
			bm.widths[i] = bitsFor(uint64(maxInt(count-1, 0)))
		case design.ContinuumInteger:
			bm.precision[i] = 0
			span := v.Bounds.Upper - v.Bounds.Lower
			bm.widths[i] = bitsFor(uint64(math.Round(span)))
		case design.ContinuumReal:
			p := n.Precision
			if p < 0 {
				p = 0
			}
			bm.precision[i] = p
			span := (v.Bounds.Upper - v.Bounds.Lower) * math.Pow(10, float64(p))
			bm.widths[i] = bitsFor(uint64(math.Round(span)))
		default:
			// Unknown nature: fall back to zero decimal places over
			// the raw bound span.
			span := v.Bounds.Upper - v.Bounds.Lower
			bm.widths[i] = bitsFor(uint64(math.Round(span)))
		}
	}
	bm.cachedNDV = ndv
}

func bitsFor(maxValue uint64) int {
	if maxValue == 0 {
		return 1
	}
	bits := 0
	for v := maxValue; v > 0; v >>= 1 {
		bits++
	}
	return bits
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func (bm *BitManipulator) ensureFresh() {
	if bm.cachedNDV != bm.target.NDV() {
		bm.recompute()
	}
}

// NumBits returns the encoded bit width of variable i.
func (bm *BitManipulator) NumBits(i int) int {
	bm.ensureFresh()
	return bm.widths[i]
}

// CheckPrecision returns an error if variable i encodes to fewer than
// 2 bits, the NPointParameterizedBinaryCrosser's minimum.
func (bm *BitManipulator) CheckPrecision(i int) error {
	if bm.NumBits(i) < 2 {
		return fmt.Errorf("bitmanip: insufficient-precision: variable %d encodes to %d bit(s), need >= 2", i, bm.NumBits(i))
	}
	return nil
}

// Encode converts value, the representation of variable i, into its
// fixed-precision unsigned integer encoding:
// round((value - lb) * 10^p).
func (bm *BitManipulator) Encode(value float64, i int) uint64 {
	bm.ensureFresh()
	lb := bm.target.Variables[i].Bounds.Lower
	scale := math.Pow(10, float64(bm.precision[i]))
	code := math.Round((value - lb) * scale)
	if code < 0 {
		code = 0
	}
	max := float64((uint64(1) << uint(bm.widths[i])) - 1)
	if code > max {
		code = max
	}
	return uint64(code)
}

// Decode converts a fixed-precision unsigned integer encoding back
// into variable i's representation.
func (bm *BitManipulator) Decode(code uint64, i int) float64 {
	bm.ensureFresh()
	lb := bm.target.Variables[i].Bounds.Lower
	scale := math.Pow(10, float64(bm.precision[i]))
	return lb + float64(code)/scale
}

// RoundToPrecision rounds v to variable i's encoded decimal-place
// precision, the value the BitManipulator round-trip law compares
// Decode(Encode(v)) against.
func (bm *BitManipulator) RoundToPrecision(v float64, i int) float64 {
	bm.ensureFresh()
	scale := math.Pow(10, float64(bm.precision[i]))
	return math.Round(v*scale) / scale
}
