// Package ga implements GeneticAlgorithm, the composition root that
// holds one instance of each operator family plus a DesignTarget and
// drives the selection -> variation -> evaluation -> convergence loop,
// per SPEC_FULL.md §4.1. It implements operator.Handle so every
// concrete operator package depends only on that narrow interface,
// never on this package, avoiding an import cycle -- mirroring how the
// teacher's multiobjective plugin threads a klog.Logger handle through
// its New/Balance pair without the plugin's collaborators importing
// the plugin package back.
package ga

import (
	"context"
	"time"

	"github.com/evojega/jega/pkg/jega/converger"
	"github.com/evojega/jega/pkg/jega/crosser"
	"github.com/evojega/jega/pkg/jega/design"
	"github.com/evojega/jega/pkg/jega/evaluator"
	"github.com/evojega/jega/pkg/jega/fitness"
	"github.com/evojega/jega/pkg/jega/initializer"
	"github.com/evojega/jega/pkg/jega/jlog"
	"github.com/evojega/jega/pkg/jega/metrics"
	"github.com/evojega/jega/pkg/jega/mutator"
	"github.com/evojega/jega/pkg/jega/niche"
	"github.com/evojega/jega/pkg/jega/operator"
	"github.com/evojega/jega/pkg/jega/postprocess"
	"github.com/evojega/jega/pkg/jega/selector"
)

// Event is one structured progress notification emitted on the GA's
// message bus.
type Event struct {
	Generation int
	Kind       string
	Message    string
}

// Topology selects how parents and offspring flow into selection.
type Topology int

const (
	// Plus is elitist: parents and offspring both compete in selection.
	Plus Topology = iota
	// Comma discards parents; only offspring compete in selection.
	Comma
)

// Config bundles the operators and parameters a GeneticAlgorithm
// composes. Target and every operator field are required;
// PostProcessors, Metrics and Topology (which defaults to Plus) are
// optional.
type Config struct {
	Target         *design.Target
	Initializer    initializer.Initializer
	Crosser        crosser.Crosser
	Mutator        mutator.Mutator
	Evaluator      evaluator.Evaluator
	Fitness        fitness.FitnessAssessor
	Selector       selector.Selector
	Niche          niche.NichePressureApplicator
	Converger      converger.Converger
	PostProcessors []postprocess.PostProcessor

	PopulationSize int
	CrossoverRate  float64
	MutationRate   float64
	Topology       Topology

	Logger jlog.Logger

	// Metrics is optional; when set, DoGeneration and Initialize report
	// through it. Registration against a Registerer is the caller's
	// responsibility (metrics.Collectors.MustRegister).
	Metrics *metrics.Collectors
}

// GeneticAlgorithm is the composition root: one instance of each
// operator family, the owning DesignTarget, the current population,
// and generation/finalization state.
type GeneticAlgorithm struct {
	cfg Config

	population  *design.Group
	generation  int
	evaluations int
	startTime   time.Time
	finalized   bool

	events chan Event

	fitnessRecord *design.FitnessRecord
}

// New constructs a GeneticAlgorithm from cfg. The returned value
// implements operator.Handle.
func New(cfg Config) *GeneticAlgorithm {
	if cfg.Topology != Comma {
		cfg.Topology = Plus
	}
	return &GeneticAlgorithm{
		cfg:    cfg,
		events: make(chan Event, 64),
	}
}

// Target returns the owning DesignTarget, satisfying operator.Handle.
func (g *GeneticAlgorithm) Target() *design.Target { return g.cfg.Target }

// NewDesign allocates a fresh Design via the target's guff, satisfying
// operator.Handle.
func (g *GeneticAlgorithm) NewDesign() *design.Design { return g.cfg.Target.NewDesign() }

// NewDesignFrom allocates a Design copied from proto, satisfying
// operator.Handle.
func (g *GeneticAlgorithm) NewDesignFrom(proto *design.Design) *design.Design {
	return g.cfg.Target.NewDesignFrom(proto)
}

// Logger returns the structured logger, satisfying operator.Handle.
func (g *GeneticAlgorithm) Logger() jlog.Logger { return g.cfg.Logger }

// Events exposes the GA's message bus for external observers (metrics
// collectors, CLIs).
func (g *GeneticAlgorithm) Events() <-chan Event { return g.events }

func (g *GeneticAlgorithm) emit(kind, msg string) {
	select {
	case g.events <- Event{Generation: g.generation, Kind: kind, Message: msg}:
	default:
		// Drop rather than block; the bus is a best-effort observability
		// channel, not a control path.
	}
}

// Population returns the GA's current population group.
func (g *GeneticAlgorithm) Population() *design.Group { return g.population }

// Generation returns the number of completed generations.
func (g *GeneticAlgorithm) Generation() int { return g.generation }

var _ operator.Handle = (*GeneticAlgorithm)(nil)

// Initialize instructs the Initializer to fill the population (the
// generation-0 step).
func (g *GeneticAlgorithm) Initialize() error {
	g.startTime = time.Now()
	g.population = g.cfg.Target.NewGroup()
	if err := g.cfg.Initializer.Initialize(g.population, g.cfg.PopulationSize); err != nil {
		return err
	}
	if err := g.cfg.Evaluator.Evaluate(g.population); err != nil {
		return err
	}
	g.evaluations += g.population.Size()
	if g.cfg.Metrics != nil {
		g.cfg.Metrics.Evaluations.Add(float64(g.population.Size()))
		g.cfg.Metrics.PopulationSize.Set(float64(g.population.Size()))
	}
	g.emit("initialize", "population initialized")
	return nil
}

// DoGeneration runs one iteration of crossover, mutation, evaluation,
// fitness assessment, selection, and niching, then asks the Converger
// whether to stop. Returns true if convergence was signalled.
func (g *GeneticAlgorithm) DoGeneration() (bool, error) {
	children, err := g.cfg.Crosser.Cross(g.population, g.cfg.CrossoverRate)
	if err != nil {
		return false, err
	}
	if err := g.cfg.Mutator.Mutate(g.population, children, g.cfg.MutationRate); err != nil {
		return false, err
	}
	if err := g.cfg.Evaluator.Evaluate(children); err != nil {
		return false, err
	}
	g.evaluations += children.Size()
	if g.cfg.Metrics != nil {
		g.cfg.Metrics.Evaluations.Add(float64(children.Size()))
	}

	var sources []*design.Group
	switch g.cfg.Topology {
	case Comma:
		sources = []*design.Group{children}
	default:
		sources = []*design.Group{g.population, children}
	}

	pooled := g.cfg.Target.NewGroup()
	pooled.AllowDuplicateVariables = true
	for _, s := range sources {
		for _, d := range s.BeginOF().Designs() {
			s.Erase(d)
			if err := pooled.Insert(d); err != nil {
				return false, err
			}
		}
	}

	// Designs the nicher cached last generation compete again here.
	if err := g.cfg.Niche.PreSelection(pooled); err != nil {
		return false, err
	}

	record, err := g.cfg.Fitness.Assess(pooled)
	if err != nil {
		return false, err
	}
	g.fitnessRecord = record

	next, err := g.cfg.Selector.Select([]*design.Group{pooled}, record, g.cfg.PopulationSize)
	if err != nil {
		return false, err
	}
	if err := g.cfg.Niche.Apply(next, record); err != nil {
		return false, err
	}

	// Anything left in pooled lost selection outright; route it back
	// to the target via TakeDesign.
	for _, d := range pooled.BeginDV().Designs() {
		pooled.Erase(d)
		g.cfg.Target.TakeDesign(d)
	}

	g.population = next
	g.generation++
	if g.cfg.Metrics != nil {
		g.cfg.Metrics.Generations.Inc()
		g.cfg.Metrics.PopulationSize.Set(float64(next.Size()))
	}

	state := converger.State{
		Generation:  g.generation,
		Evaluations: g.evaluations,
		Elapsed:     time.Since(g.startTime),
		BestFitness: bestFitness(next, record),
	}
	converged, err := g.cfg.Converger.Converged(state)
	if err != nil {
		return false, err
	}
	if g.cfg.Metrics != nil {
		g.cfg.Metrics.RecordConvergenceCheck(converged)
	}
	g.emit("generation", "generation complete")
	return converged, nil
}

func bestFitness(group *design.Group, record *design.FitnessRecord) float64 {
	best := 0.0
	first := true
	for _, d := range group.BeginOF().Designs() {
		f, ok := record.Fitness(d)
		if !ok {
			continue
		}
		if first || f > best {
			best = f
			first = false
		}
	}
	return best
}

// Finalize runs the configured PostProcessors against the current
// population, finalizes every operator, and marks the GA terminal.
// Finalize itself does not read the discard archive: archived designs
// reach the population only through an ArchivePromotionPostProcessor
// in PostProcessors. Calling Finalize twice is a no-op.
func (g *GeneticAlgorithm) Finalize() error {
	if g.finalized {
		return nil
	}
	for _, pp := range g.cfg.PostProcessors {
		if err := pp.Process(g.population); err != nil {
			return err
		}
	}
	for _, op := range g.operators() {
		if err := op.Finalize(); err != nil {
			return err
		}
	}
	g.finalized = true
	g.emit("finalize", "genetic algorithm finalized")
	return nil
}

func (g *GeneticAlgorithm) operators() []operator.Operator {
	ops := []operator.Operator{
		g.cfg.Initializer,
		g.cfg.Crosser,
		g.cfg.Mutator,
		g.cfg.Evaluator,
		g.cfg.Fitness,
		g.cfg.Selector,
		g.cfg.Niche,
		g.cfg.Converger,
	}
	for _, pp := range g.cfg.PostProcessors {
		ops = append(ops, pp)
	}
	return ops
}

// Run drives Initialize then repeated DoGeneration calls until the
// Converger signals convergence or ctx is cancelled, checked at
// generation boundaries only (mid-generation cancellation is not
// supported), then calls Finalize.
func (g *GeneticAlgorithm) Run(ctx context.Context) error {
	if err := g.Initialize(); err != nil {
		return err
	}
	for {
		select {
		case <-ctx.Done():
			return g.Finalize()
		default:
		}
		converged, err := g.DoGeneration()
		if err != nil {
			return err
		}
		if converged {
			break
		}
	}
	return g.Finalize()
}
