// Package operator defines the shared Operator contract every JEGA
// operator family implements (Initializer, Evaluator, FitnessAssessor,
// Selector, NichePressureApplicator, Crosser, Mutator, Converger,
// PostProcessor, MainLoop), plus the Handle the GeneticAlgorithm
// composition root exposes to them and the OperatorGroup registry
// mechanics. Concrete operators live in their own packages
// (initializer, crosser, selector, ...); this package only fixes the
// shapes, mirroring how the teacher's frameworktypes package fixes
// Plugin/Handle without depending on any concrete plugin.
package operator

import (
	"fmt"

	"github.com/evojega/jega/pkg/jega/design"
	"github.com/evojega/jega/pkg/jega/jlog"
	"github.com/evojega/jega/pkg/jega/paramdb"
)

// Family tags which operator slot a concrete operator fills.
type Family string

const (
	FamilyInitializer      Family = "initializer"
	FamilyEvaluator        Family = "evaluator"
	FamilyFitnessAssessor  Family = "fitness_assessor"
	FamilySelector         Family = "selector"
	FamilyNichePressure    Family = "niche_pressure_applicator"
	FamilyCrosser          Family = "crosser"
	FamilyMutator          Family = "mutator"
	FamilyConverger        Family = "converger"
	FamilyPostProcessor    Family = "post_processor"
	FamilyMainLoop         Family = "main_loop"
)

// Handle is the subset of the GeneticAlgorithm composition root that
// operators are allowed to see: the problem's DesignTarget, the
// guff-backed allocator, and the structured logger. It exists so this
// package (and every concrete operator package) never imports the ga
// package, avoiding an import cycle -- the same role the teacher's
// frameworktypes.Handle plays for its plugins.
type Handle interface {
	Target() *design.Target
	NewDesign() *design.Design
	NewDesignFrom(proto *design.Design) *design.Design
	Logger() jlog.Logger
}

// Operator is the base contract every concrete operator shares.
type Operator interface {
	// Name is a stable identifier used for registry lookup and
	// logging, e.g. "roulette_wheel".
	Name() string

	// Family reports which operator slot this fills.
	Family() Family

	// Clone produces an independent copy of this operator bound to a
	// (possibly different) Handle, e.g. for use by a cloned
	// GeneticAlgorithm.
	Clone(h Handle) (Operator, error)

	// PollForParameters reads this operator's configuration from db,
	// applying documented defaults for missing keys. A type mismatch
	// on a present key is always a fatal configuration error.
	PollForParameters(db *paramdb.DB) error

	// Finalize releases any resources the operator holds and emits
	// the mandatory finalize log event.
	Finalize() error
}

// ContractViolation marks a category-3 fatal error: an operator
// violated its contract (e.g. a Selector saw a Design with no
// recorded fitness, or a Design turned up owned by two groups).
type ContractViolation struct {
	Operator string
	Reason   string
}

func (e *ContractViolation) Error() string {
	return fmt.Sprintf("jega/operator: contract violation in %s: %s", e.Operator, e.Reason)
}
