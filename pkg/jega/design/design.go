package design

// Flag bits recorded on every Design. FlagUser0..FlagUser6 give
// operators seven free attribute bits beyond the fixed ones, matching
// the spec's "plus up to N user-defined attribute bits".
type Flag uint16

const (
	FlagEvaluated Flag = 1 << iota
	FlagFeasible
	FlagFeasibleBounds
	FlagFeasibleConstraints
	FlagCloned
	FlagUser0
	FlagUser1
	FlagUser2
	FlagUser3
	FlagUser4
	FlagUser5
	FlagUser6
)

// owner identifies which container currently owns a Design: at most
// one of group/guff/discard at a time.
type owner int

const (
	ownerNone owner = iota
	ownerGroup
	ownerGuff
	ownerDiscard
)

// Design is one candidate solution: a variable-representation vector,
// an objective vector, a constraint vector, and bit flags. Designs are
// reset and rebound by DesignTarget, never reallocated, so the same
// backing arrays are reused across the guff free-list.
type Design struct {
	id int

	Variables   []float64
	Objectives  []float64
	Constraints []float64

	flags Flag

	owner      owner
	group      *Group // non-owning back-reference; nil unless owner == ownerGroup
	selectAttr bool   // transient "has been selected" marker used by selectors
}

func newDesign(ndv, nof, ncn int) *Design {
	return &Design{
		Variables:   make([]float64, ndv),
		Objectives:  make([]float64, nof),
		Constraints: make([]float64, ncn),
	}
}

// ID returns the monotonically increasing identity assigned the last
// time this Design slot was (re)activated.
func (d *Design) ID() int { return d.id }

// HasFlag reports whether the given flag bit is set.
func (d *Design) HasFlag(f Flag) bool { return d.flags&f != 0 }

// SetFlag sets or clears the given flag bit.
func (d *Design) SetFlag(f Flag, v bool) {
	if v {
		d.flags |= f
	} else {
		d.flags &^= f
	}
}

// Selected reports whether a selector has marked this Design for
// promotion into its "into" group during the current selection pass.
func (d *Design) Selected() bool { return d.selectAttr }

// SetSelected marks or clears the transient selection attribute.
func (d *Design) SetSelected(v bool) { d.selectAttr = v }

// Group returns the DesignGroup that currently owns this Design, or
// nil if it is owned by a guff or discard archive instead.
func (d *Design) Group() *Group {
	if d.owner != ownerGroup {
		return nil
	}
	return d.group
}

// reset clears a Design's content and flags without reallocating its
// backing slices, so it can be recycled from the guff.
func (d *Design) reset() {
	for i := range d.Variables {
		d.Variables[i] = 0
	}
	for i := range d.Objectives {
		d.Objectives[i] = 0
	}
	for i := range d.Constraints {
		d.Constraints[i] = 0
	}
	d.flags = 0
	d.owner = ownerNone
	d.group = nil
	d.selectAttr = false
}

// copyFrom overwrites d's content with a's, leaving ownership alone.
func (d *Design) copyFrom(a *Design) {
	copy(d.Variables, a.Variables)
	copy(d.Objectives, a.Objectives)
	copy(d.Constraints, a.Constraints)
	d.flags = a.flags
	d.flags |= FlagCloned
}

// lexLess provides a stable lexicographic total order over a slice,
// used by both the DV-sort and OF-sort views.
func lexLess(a, b []float64, precision []int) bool {
	for i := range a {
		av, bv := a[i], b[i]
		if i < len(precision) && precision[i] > 0 {
			av = roundTo(av, precision[i])
			bv = roundTo(bv, precision[i])
		}
		if av != bv {
			return av < bv
		}
	}
	return false
}

func lexEqual(a, b []float64, precision []int) bool {
	for i := range a {
		av, bv := a[i], b[i]
		if i < len(precision) && precision[i] > 0 {
			av = roundTo(av, precision[i])
			bv = roundTo(bv, precision[i])
		}
		if av != bv {
			return false
		}
	}
	return true
}

func roundTo(v float64, precision int) float64 {
	scale := pow10(precision)
	return round(v*scale) / scale
}
