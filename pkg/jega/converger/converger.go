// Package converger implements the Converger operator family: the
// base hard-ceiling checks and MetricTrackerConverger, per
// SPEC_FULL.md §4.9, grounded on the teacher's generation/time
// reporting in NSGAII.Run (algorithms/nsga2.go's log.Printf summaries)
// generalized from unconditional looping into an explicit convergence
// decision each generation.
package converger

import (
	"time"

	"github.com/evojega/jega/pkg/jega/jlog"
	"github.com/evojega/jega/pkg/jega/operator"
	"github.com/evojega/jega/pkg/jega/paramdb"
)

// Converger decides, once per generation, whether the search must
// stop.
type Converger interface {
	operator.Operator
	Converged(state State) (bool, error)
}

// State is the per-generation snapshot a Converger evaluates.
type State struct {
	Generation    int
	Evaluations   int
	Elapsed       time.Duration
	BestFitness   float64
	MeanParetoRank float64
}

// Base enforces the three hard ceilings every Converger shares: max
// generations, max evaluations, max wall time. Embed it in derived
// convergers and call CheckCeilings first; a derived converger that
// skips this loses ceiling enforcement.
type Base struct {
	h   operator.Handle
	log jlog.Logger

	MaxGenerations       int
	MaxFunctionEvaluations int
	MaxTime              time.Duration
}

// NewBase constructs a Base converger bound to h, with ceilings
// disabled (zero) until PollForParameters or direct field assignment
// sets them.
func NewBase(h operator.Handle, name string) *Base {
	b := &Base{h: h, log: h.Logger().ForOperator(string(operator.FamilyConverger), name)}
	return b
}

func (b *Base) Family() operator.Family { return operator.FamilyConverger }
func (b *Base) Finalize() error         { b.log.OperatorFinalized(); return nil }

func (b *Base) PollForParameters(db *paramdb.DB) error {
	maxIters, err := db.Int(paramdb.KeyMaxIterations, b.MaxGenerations)
	if err != nil {
		return err
	}
	maxEvals, err := db.Int(paramdb.KeyMaxFunctionEvals, b.MaxFunctionEvaluations)
	if err != nil {
		return err
	}
	maxTime, err := db.Duration(paramdb.KeyMaxTime, b.MaxTime)
	if err != nil {
		return err
	}
	b.MaxGenerations, b.MaxFunctionEvaluations, b.MaxTime = maxIters, maxEvals, maxTime
	return nil
}

// CheckCeilings reports whether any hard ceiling has been reached. A
// zero-valued ceiling field is treated as unbounded.
func (b *Base) CheckCeilings(s State) bool {
	if b.MaxGenerations > 0 && s.Generation >= b.MaxGenerations {
		return true
	}
	if b.MaxFunctionEvaluations > 0 && s.Evaluations >= b.MaxFunctionEvaluations {
		return true
	}
	if b.MaxTime > 0 && s.Elapsed >= b.MaxTime {
		return true
	}
	return false
}

// Metric extracts the scalar tracked value from a generation's State.
type Metric func(s State) float64

// BestFitnessMetric tracks the population's best fitness.
func BestFitnessMetric(s State) float64 { return s.BestFitness }

// MeanParetoRankMetric tracks the population's mean Pareto rank
// (lower is better convergence toward a single front).
func MeanParetoRankMetric(s State) float64 { return s.MeanParetoRank }

// MetricTracker is a bounded window of recent values. It keeps no
// running min, max or sum: a percent-change query compares every pair
// of stored values, so it costs O(n^2) in the window length.
type MetricTracker struct {
	window []float64
	cap    int
}

// NewMetricTracker returns a tracker holding at most capacity values.
func NewMetricTracker(capacity int) *MetricTracker {
	if capacity < 1 {
		capacity = 1
	}
	return &MetricTracker{cap: capacity}
}

// Push appends v, evicting the oldest value once the window is full.
func (t *MetricTracker) Push(v float64) {
	t.window = append(t.window, v)
	if len(t.window) > t.cap {
		t.window = t.window[1:]
	}
}

// Full reports whether the window holds cap values.
func (t *MetricTracker) Full() bool { return len(t.window) == t.cap }

// WithinPercentChange reports whether the relative change between
// every pair of values currently in the window is within pct (the
// absolute variant: divide by 1 instead of the baseline, pass
// absolute=true). It reports false until the window is full.
func (t *MetricTracker) WithinPercentChange(pct float64, absolute bool) bool {
	if len(t.window) < 2 || !t.Full() {
		return false
	}
	for i := 0; i < len(t.window); i++ {
		for j := i + 1; j < len(t.window); j++ {
			a, b := t.window[i], t.window[j]
			baseline := a
			if absolute || baseline == 0 {
				baseline = 1
			}
			change := (b - a) / baseline
			if change < 0 {
				change = -change
			}
			if change > pct {
				return false
			}
		}
	}
	return true
}

// MetricTrackerConverger pushes a derived metric each generation and
// converges once the base ceilings are hit, or once the window is
// full and every pairwise relative change is within PercentChange.
type MetricTrackerConverger struct {
	*Base

	Metric         Metric
	PercentChange  float64
	Absolute       bool
	tracker        *MetricTracker
	numGenerations int
}

// NewMetricTrackerConverger constructs the converger bound to h, with
// defaults num_generations=10, percent_change=0.1.
func NewMetricTrackerConverger(h operator.Handle, metric Metric) *MetricTrackerConverger {
	c := &MetricTrackerConverger{
		Base:           NewBase(h, "metric_tracker"),
		Metric:         metric,
		PercentChange:  0.1,
		numGenerations: 10,
	}
	c.tracker = NewMetricTracker(c.numGenerations)
	c.log.OperatorConstructed()
	return c
}

func (c *MetricTrackerConverger) Name() string { return "metric_tracker" }

func (c *MetricTrackerConverger) Clone(h operator.Handle) (operator.Operator, error) {
	clone := NewMetricTrackerConverger(h, c.Metric)
	clone.MaxGenerations, clone.MaxFunctionEvaluations, clone.MaxTime = c.MaxGenerations, c.MaxFunctionEvaluations, c.MaxTime
	clone.PercentChange, clone.Absolute = c.PercentChange, c.Absolute
	clone.numGenerations = c.numGenerations
	clone.tracker = NewMetricTracker(c.numGenerations)
	clone.log.OperatorCloned()
	return clone, nil
}

func (c *MetricTrackerConverger) PollForParameters(db *paramdb.DB) error {
	if err := c.Base.PollForParameters(db); err != nil {
		return err
	}
	numGen, err := db.Int(paramdb.KeyNumGenerations, c.numGenerations)
	if err != nil {
		return err
	}
	pct, err := db.Float64(paramdb.KeyPercentChange, c.PercentChange)
	if err != nil {
		return err
	}
	c.numGenerations = numGen
	c.PercentChange = pct
	c.tracker = NewMetricTracker(c.numGenerations)
	return nil
}

// Converged pushes this generation's metric, then returns true if a
// hard ceiling is reached or the tracked window has converged.
func (c *MetricTrackerConverger) Converged(s State) (bool, error) {
	if c.Base.CheckCeilings(s) {
		c.log.ConvergenceChecked(true, c.Metric(s))
		return true, nil
	}
	c.tracker.Push(c.Metric(s))
	converged := c.tracker.Full() && c.tracker.WithinPercentChange(c.PercentChange, c.Absolute)
	c.log.ConvergenceChecked(converged, c.Metric(s))
	return converged, nil
}
