package operator

import "fmt"

// Factory constructs a freshly configured Operator bound to h. The GA
// composition root calls PollForParameters on the result separately.
type Factory func(h Handle) (Operator, error)

// Group is a named registry of factories partitioned by Family,
// mirroring the teacher's per-plugin registration
// (RegisterDefaults/addDefaultingFuncs) generalized to many families
// and many operators per family. A Group is a plain value built with
// NewGroup and Register; this package defines no process-wide or
// predefined (MOGA/SOGA) groups. A Group also acts as a compatibility
// gate: an
// operator not present in the group cannot be instantiated from it,
// so incompatible compositions fail at Instantiate time rather than
// at run time.
type Group struct {
	name       string
	registries map[Family]map[string]Factory
}

// NewGroup returns an empty, named Group.
func NewGroup(name string) *Group {
	return &Group{
		name:       name,
		registries: make(map[Family]map[string]Factory),
	}
}

// Register adds (or idempotently overwrites) a factory for name under
// family.
func (g *Group) Register(family Family, name string, f Factory) {
	if g.registries[family] == nil {
		g.registries[family] = make(map[string]Factory)
	}
	g.registries[family][name] = f
}

// Has reports whether family/name has a registered factory.
func (g *Group) Has(family Family, name string) bool {
	fam, ok := g.registries[family]
	if !ok {
		return false
	}
	_, ok = fam[name]
	return ok
}

// Instantiate constructs the named operator for the given family and
// Handle. It fails if the family/name pair is not registered in this
// group -- the configuration-time failure mode SPEC_FULL.md §4.1
// requires for incompatible compositions.
func (g *Group) Instantiate(family Family, name string, h Handle) (Operator, error) {
	fam, ok := g.registries[family]
	if !ok {
		return nil, fmt.Errorf("jega/operator: group %q has no operators registered for family %q", g.name, family)
	}
	factory, ok := fam[name]
	if !ok {
		return nil, fmt.Errorf("jega/operator: group %q has no operator named %q in family %q", g.name, name, family)
	}
	return factory(h)
}

// Absorb imports all of other's registrations into g, overwriting any
// name collisions. Safe to call more than once (idempotent).
func (g *Group) Absorb(other *Group) {
	for family, names := range other.registries {
		for name, factory := range names {
			g.Register(family, name, factory)
		}
	}
}

// Names lists the registered operator names for a family, for
// diagnostics and tests.
func (g *Group) Names(family Family) []string {
	fam := g.registries[family]
	out := make([]string, 0, len(fam))
	for name := range fam {
		out = append(out, name)
	}
	return out
}
