// Package mainloop implements the MainLoop operator family: pure
// orchestration that drives a GeneticAlgorithm's
// Initialize/DoGeneration/Finalize lifecycle, per SPEC_FULL.md §4.10.
// It depends only on a narrow GALifecycle interface rather than the
// concrete ga package, the same Handle-style cycle-avoidance the
// operator package documents for every other family.
package mainloop

import (
	"context"

	"github.com/evojega/jega/pkg/jega/jlog"
	"github.com/evojega/jega/pkg/jega/operator"
	"github.com/evojega/jega/pkg/jega/paramdb"
)

// GALifecycle is the subset of GeneticAlgorithm the MainLoop drives.
type GALifecycle interface {
	Initialize() error
	DoGeneration() (converged bool, err error)
	Finalize() error
}

// MainLoop runs a GALifecycle's generations until convergence or
// context cancellation, checked at generation boundaries only.
type MainLoop struct {
	log jlog.Logger

	// MaxGenerationsHint caps the loop defensively even if the
	// Converger never signals; 0 means unbounded (rely solely on the
	// Converger, as the base ceiling checks already enforce a hard
	// generation cap when configured).
	MaxGenerationsHint int
}

// NewMainLoop constructs a MainLoop, logging via logger.
func NewMainLoop(logger jlog.Logger) *MainLoop {
	m := &MainLoop{log: logger.ForOperator(string(operator.FamilyMainLoop), "sequential")}
	m.log.OperatorConstructed()
	return m
}

func (m *MainLoop) Name() string           { return "sequential" }
func (m *MainLoop) Family() operator.Family { return operator.FamilyMainLoop }
func (m *MainLoop) Finalize() error         { m.log.OperatorFinalized(); return nil }

func (m *MainLoop) Clone(h operator.Handle) (operator.Operator, error) {
	c := NewMainLoop(h.Logger())
	c.MaxGenerationsHint = m.MaxGenerationsHint
	c.log.OperatorCloned()
	return c, nil
}

func (m *MainLoop) PollForParameters(db *paramdb.DB) error {
	hint, err := db.Int("method.jega.max_generations_hint", m.MaxGenerationsHint)
	if err != nil {
		return err
	}
	m.MaxGenerationsHint = hint
	return nil
}

// Run drives ga's generation loop to completion: Initialize once, then
// DoGeneration repeatedly until it reports convergence, ctx is
// cancelled, or MaxGenerationsHint generations have run (if set), then
// Finalize. An error from Initialize or DoGeneration is returned as is,
// without calling Finalize.
func (m *MainLoop) Run(ctx context.Context, ga GALifecycle) error {
	if err := ga.Initialize(); err != nil {
		return err
	}

	for gen := 0; m.MaxGenerationsHint <= 0 || gen < m.MaxGenerationsHint; gen++ {
		select {
		case <-ctx.Done():
			return ga.Finalize()
		default:
		}

		converged, err := ga.DoGeneration()
		if err != nil {
			return err
		}
		if converged {
			break
		}
	}
	return ga.Finalize()
}
