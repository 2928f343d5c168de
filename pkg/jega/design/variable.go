// Package design holds the Design population model: variable natures,
// the Design record itself, the DesignTarget that owns allocation and
// metadata, and the DesignGroup population container.
package design

import (
	"math"
	"sort"
)

// Bounds describes the legal range of a representation.
type Bounds struct {
	Lower float64
	Upper float64
}

func (b Bounds) Contains(rep float64) bool {
	return rep >= b.Lower && rep <= b.Upper
}

// Nature maps between the raw double representation operators
// manipulate and the domain value evaluators see.
type Nature interface {
	// Name identifies the nature for logging/configuration.
	Name() string

	// RepToValue converts a representation into its domain value.
	RepToValue(rep float64) float64

	// IsRepInBounds reports whether rep is a legal representation.
	IsRepInBounds(rep float64, b Bounds) bool

	// NearestValidRep legalizes rep to the closest representation this
	// nature and bounds allow.
	NearestValidRep(rep float64, b Bounds) float64

	// RandomRep samples a uniformly random legal representation in
	// [lo, hi], where lo/hi already respect b.
	RandomRep(lo, hi float64, b Bounds, next func() float64) float64

	// Distance returns the distance between two representations as
	// this nature perceives it (e.g. index distance for discrete
	// natures, not raw double distance).
	Distance(a, b float64) float64
}

// ContinuumReal is the identity nature with optional decimal-place
// rounding, used for ordinary real-valued design variables.
type ContinuumReal struct {
	// Precision is the number of decimal places to round to; 0 means
	// no rounding is applied beyond double precision.
	Precision int
}

func (n ContinuumReal) Name() string { return "continuum_real" }

func (n ContinuumReal) RepToValue(rep float64) float64 {
	return n.round(rep)
}

func (n ContinuumReal) IsRepInBounds(rep float64, b Bounds) bool {
	return b.Contains(rep)
}

func (n ContinuumReal) NearestValidRep(rep float64, b Bounds) float64 {
	if rep < b.Lower {
		return b.Lower
	}
	if rep > b.Upper {
		return b.Upper
	}
	return n.round(rep)
}

func (n ContinuumReal) RandomRep(lo, hi float64, b Bounds, next func() float64) float64 {
	if hi < lo {
		lo, hi = hi, lo
	}
	return n.round(lo + next()*(hi-lo))
}

func (n ContinuumReal) Distance(a, b float64) float64 {
	return math.Abs(a - b)
}

func (n ContinuumReal) round(v float64) float64 {
	if n.Precision <= 0 {
		return v
	}
	scale := math.Pow(10, float64(n.Precision))
	return math.Round(v*scale) / scale
}

// ContinuumInteger rounds its representation to the nearest whole
// number, for integer-valued but otherwise continuous variables.
type ContinuumInteger struct{}

func (n ContinuumInteger) Name() string { return "continuum_integer" }

func (n ContinuumInteger) RepToValue(rep float64) float64 { return math.Round(rep) }

func (n ContinuumInteger) IsRepInBounds(rep float64, b Bounds) bool {
	return b.Contains(rep)
}

func (n ContinuumInteger) NearestValidRep(rep float64, b Bounds) float64 {
	if rep < b.Lower {
		rep = b.Lower
	}
	if rep > b.Upper {
		rep = b.Upper
	}
	return math.Round(rep)
}

func (n ContinuumInteger) RandomRep(lo, hi float64, b Bounds, next func() float64) float64 {
	if hi < lo {
		lo, hi = hi, lo
	}
	lo, hi = math.Ceil(lo), math.Floor(hi)
	if hi < lo {
		hi = lo
	}
	return math.Floor(lo + next()*(hi-lo+1))
}

func (n ContinuumInteger) Distance(a, b float64) float64 {
	return math.Abs(math.Round(a) - math.Round(b))
}

// Discrete represents the representation as an index into a sorted
// list of legal values. Bounds.Lower/Upper are ignored in favor of the
// Values slice; the index itself is the representation.
type Discrete struct {
	Values []float64
}

func (n Discrete) Name() string { return "discrete" }

func (n Discrete) RepToValue(rep float64) float64 {
	idx := n.clampIndex(rep)
	return n.Values[idx]
}

func (n Discrete) IsRepInBounds(rep float64, _ Bounds) bool {
	idx := int(math.Round(rep))
	return float64(idx) == rep && idx >= 0 && idx < len(n.Values)
}

func (n Discrete) NearestValidRep(rep float64, _ Bounds) float64 {
	return float64(n.clampIndex(rep))
}

func (n Discrete) RandomRep(_, _ float64, _ Bounds, next func() float64) float64 {
	if len(n.Values) == 0 {
		return 0
	}
	return float64(int(next() * float64(len(n.Values))))
}

func (n Discrete) Distance(a, b float64) float64 {
	return math.Abs(float64(n.clampIndex(a)) - float64(n.clampIndex(b)))
}

func (n Discrete) clampIndex(rep float64) int {
	idx := int(math.Round(rep))
	if idx < 0 {
		return 0
	}
	if idx >= len(n.Values) {
		return len(n.Values) - 1
	}
	return idx
}

// SortedDiscrete builds a Discrete nature from an unsorted set of
// legal values, deduplicating and sorting them as JEGA's discrete
// design variable nature requires.
func SortedDiscrete(values []float64) Discrete {
	uniq := make([]float64, 0, len(values))
	seen := make(map[float64]bool, len(values))
	for _, v := range values {
		if !seen[v] {
			seen[v] = true
			uniq = append(uniq, v)
		}
	}
	sort.Float64s(uniq)
	return Discrete{Values: uniq}
}

// Logical is the two-element degenerate case of Discrete: true/false,
// on/off, represented as index 0 or 1.
func Logical() Discrete {
	return Discrete{Values: []float64{0, 1}}
}
