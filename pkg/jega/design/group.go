package design

import "fmt"

// Group is a population: two synchronized ordered sets of the same
// Design pointers, one keyed on the variable-representation vector
// (DV-sort) and one on the objective vector (OF-sort). Insert/Erase
// mutate both so the two views never drift apart (invariant I2).
type Group struct {
	target *Target // non-owning back-reference

	dv *sortedSet
	of *sortedSet

	// AllowDuplicateVariables relaxes invariant I3 for groups staged
	// as an offspring buffer prior to deduplication.
	AllowDuplicateVariables bool
}

func newGroup(t *Target) *Group {
	g := &Group{target: t}
	g.dv = newSortedSet(func(d *Design) []float64 { return d.Variables }, t.variablePrecision())
	g.of = newSortedSet(func(d *Design) []float64 { return d.Objectives }, t.objectivePrecision())
	return g
}

// Target returns the DesignTarget this group was created under.
func (g *Group) Target() *Target { return g.target }

// Size returns the number of Designs in the group (both views always
// agree on this, per invariant I2).
func (g *Group) Size() int { return g.dv.size() }

// Insert adds d to both sort views and marks d as owned by g. It is a
// contract violation to insert a Design already owned elsewhere.
func (g *Group) Insert(d *Design) error {
	if d.owner == ownerGroup && d.group != nil && d.group != g {
		return fmt.Errorf("jega/design: Design %d already owned by another group", d.id)
	}
	if !g.AllowDuplicateVariables {
		if existing := g.dv.findEqual(d); existing != nil && existing != d {
			return fmt.Errorf("jega/design: Design %d duplicates variables of Design %d in non-buffer group", d.id, existing.id)
		}
	}
	if d.owner == ownerGroup && d.group == g {
		return nil // already here
	}
	d.owner = ownerGroup
	d.group = g
	g.dv.insert(d)
	g.of.insert(d)
	return nil
}

// Erase removes d from both sort views. Ownership is cleared; the
// caller is responsible for routing d to a guff, discard archive, or
// destruction via Target.TakeDesign.
func (g *Group) Erase(d *Design) bool {
	removedDV := g.dv.erase(d)
	removedOF := g.of.erase(d)
	if removedDV != removedOF {
		panic("jega/design: DV-sort and OF-sort views diverged")
	}
	if removedDV {
		d.owner = ownerNone
		d.group = nil
	}
	return removedDV
}

// BeginDV returns a live view of the group's DV-sort order; its
// Designs method copies the current members into a slice.
func (g *Group) BeginDV() DVSortSet { return DVSortSet{set: g.dv} }

// BeginOF returns a live view of the group's OF-sort order; its
// Designs method copies the current members into a slice.
func (g *Group) BeginOF() OFSortSet { return OFSortSet{set: g.of} }

// Contains reports whether d is currently a member of g.
func (g *Group) Contains(d *Design) bool { return g.dv.contains(d) }

// CheckInvariants verifies I1/I2/I3-adjacent group-local invariants,
// returning an error describing the first violation found. Intended
// for tests and debug-build assertions, mirroring the teacher's
// EDDY_DEBUGEXEC-guarded assertions.
func (g *Group) CheckInvariants() error {
	if g.dv.size() != g.of.size() {
		return fmt.Errorf("jega/design: dv_sort.size=%d != of_sort.size=%d", g.dv.size(), g.of.size())
	}
	dvDesigns := g.dv.slice()
	for _, d := range dvDesigns {
		if d.owner != ownerGroup || d.group != g {
			return fmt.Errorf("jega/design: Design %d in dv_sort not owned by this group", d.id)
		}
		if !g.of.contains(d) {
			return fmt.Errorf("jega/design: Design %d in dv_sort missing from of_sort", d.id)
		}
	}
	return nil
}
