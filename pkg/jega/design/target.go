package design

import "sync"

// DefaultMaxGuffSize is the default bound on the free-list of
// recyclable Design slots.
const DefaultMaxGuffSize = 1000

// Target owns the authoritative variable/objective/constraint
// metadata for a problem, the discard archive, and the guff
// (recyclable Design free-list). It is the sole allocator of Design
// values: operators call NewDesign/NewDesignFrom, never `new(Design)`.
type Target struct {
	Variables   []VariableInfo
	Objectives  []ObjectiveInfo
	Constraints []ConstraintInfo

	// ThreadSafe enables the guff/discard mutex. When false the lock
	// calls are no-ops, matching the teacher's single-threaded builds
	// that compile the lock out entirely.
	ThreadSafe bool

	// TrackDiscards routes evaluated Designs returned via TakeDesign
	// into the discard archive instead of the guff or destruction.
	TrackDiscards bool

	MaxGuffSize int

	mu       sync.Mutex
	guff     []*Design
	discard  *Group
	nextID   int
}

// NewTarget constructs a Target for the given metadata.
func NewTarget(vars []VariableInfo, objs []ObjectiveInfo, cons []ConstraintInfo) *Target {
	t := &Target{
		Variables:   vars,
		Objectives:  objs,
		Constraints: cons,
		MaxGuffSize: DefaultMaxGuffSize,
	}
	t.discard = newGroup(t)
	return t
}

func (t *Target) lock() {
	if t.ThreadSafe {
		t.mu.Lock()
	}
}

func (t *Target) unlock() {
	if t.ThreadSafe {
		t.mu.Unlock()
	}
}

// NDV, NOF, NCN return the dimensionality of variables, objectives,
// and constraints respectively.
func (t *Target) NDV() int { return len(t.Variables) }
func (t *Target) NOF() int { return len(t.Objectives) }
func (t *Target) NCN() int { return len(t.Constraints) }

func (t *Target) variablePrecision() []int {
	p := make([]int, len(t.Variables))
	for i, v := range t.Variables {
		if cr, ok := v.Nature.(ContinuumReal); ok {
			p[i] = cr.Precision
		}
	}
	return p
}

func (t *Target) objectivePrecision() []int {
	// Objectives are not nature-typed; exact lexicographic comparison
	// is used unless a future nature-aware objective type is added.
	return make([]int, len(t.Objectives))
}

// AddVariable appends a new design variable to the target's metadata.
// Per the data model, this invalidates the guff and discard archive,
// since Designs recycled from either would carry a stale-length
// Variables slice.
func (t *Target) AddVariable(v VariableInfo) {
	t.lock()
	defer t.unlock()
	t.Variables = append(t.Variables, v)
	t.flushLocked()
}

// AddObjective appends a new objective, flushing guff and discard.
func (t *Target) AddObjective(o ObjectiveInfo) {
	t.lock()
	defer t.unlock()
	t.Objectives = append(t.Objectives, o)
	t.flushLocked()
}

// AddConstraint appends a new constraint, flushing guff and discard.
func (t *Target) AddConstraint(c ConstraintInfo) {
	t.lock()
	defer t.unlock()
	t.Constraints = append(t.Constraints, c)
	t.flushLocked()
}

func (t *Target) flushLocked() {
	t.guff = nil
	t.discard = newGroup(t)
}

// NewGroup creates an empty population Group bound to this target.
func (t *Target) NewGroup() *Group { return newGroup(t) }

// NewDesign allocates a fresh Design, recycled from the guff if one is
// available there, else newly allocated. The returned Design is
// unowned (not yet inserted into any group) and carries a fresh id.
func (t *Target) NewDesign() *Design {
	t.lock()
	defer t.unlock()

	var d *Design
	if n := len(t.guff); n > 0 {
		d = t.guff[n-1]
		t.guff = t.guff[:n-1]
		d.reset()
	} else {
		d = newDesign(t.NDV(), t.NOF(), t.NCN())
	}
	t.nextID++
	d.id = t.nextID
	return d
}

// NewDesignFrom allocates a fresh Design and copies proto's content
// into it (variables, objectives, constraints, flags), marking the
// copy Cloned.
func (t *Target) NewDesignFrom(proto *Design) *Design {
	d := t.NewDesign()
	d.copyFrom(proto)
	return d
}

// TakeDesign returns ownership of d to the target. If TrackDiscards is
// set and d has been evaluated, d is routed to the discard archive.
// Otherwise, if the guff has room, d is reset and stashed there;
// if the guff is full, d is simply dropped (destroyed, in the
// teacher's terms) and becomes eligible for garbage collection.
func (t *Target) TakeDesign(d *Design) {
	if g := d.Group(); g != nil {
		g.Erase(d)
	}

	t.lock()
	defer t.unlock()

	// Apply a bound lowered by SetMaxGuffSize.
	if len(t.guff) > t.MaxGuffSize {
		keep := t.MaxGuffSize
		if keep < 0 {
			keep = 0
		}
		t.guff = t.guff[:keep]
	}

	if t.TrackDiscards && d.HasFlag(FlagEvaluated) {
		d.owner = ownerDiscard
		d.group = nil
		t.discard.dv.insert(d)
		t.discard.of.insert(d)
		return
	}

	if len(t.guff) < t.MaxGuffSize {
		d.reset()
		d.owner = ownerGuff
		t.guff = append(t.guff, d)
		return
	}
	// Guff full: destroy (drop the reference).
	d.owner = ownerNone
	d.group = nil
}

// GuffSize reports the current number of recyclable Design slots.
func (t *Target) GuffSize() int {
	t.lock()
	defer t.unlock()
	return len(t.guff)
}

// SetMaxGuffSize updates the guff's bound. Shrinking takes effect
// lazily, on the next TakeDesign call, per the spec's resource policy.
func (t *Target) SetMaxGuffSize(n int) {
	t.lock()
	defer t.unlock()
	t.MaxGuffSize = n
}

// DiscardArchive returns the DV-sorted archive of discarded, evaluated
// Designs accumulated when TrackDiscards is enabled.
func (t *Target) DiscardArchive() DVSortSet {
	t.lock()
	defer t.unlock()
	return DVSortSet{set: t.discard.dv}
}
