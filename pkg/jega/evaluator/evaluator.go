// Package evaluator implements the Evaluator operator family:
// SimpleFunctorEvaluator, per SPEC_FULL.md §4.6. The optional worker
// pool is grounded directly on the teacher's NSGAII.Run parallel
// evaluation path (algorithms/nsga2.go): runtime.NumCPU() goroutines
// draining a work channel, synchronized with a sync.WaitGroup before
// the call returns.
package evaluator

import (
	"fmt"
	"runtime"
	"sync"

	"github.com/evojega/jega/pkg/jega/design"
	"github.com/evojega/jega/pkg/jega/jlog"
	"github.com/evojega/jega/pkg/jega/operator"
	"github.com/evojega/jega/pkg/jega/paramdb"
)

// Evaluator populates objective/constraint vectors and the Evaluated
// flag for every un-evaluated Design in a group.
type Evaluator interface {
	operator.Operator
	Evaluate(group *design.Group) error
}

// Func reads a Design's variable-value vector and writes its objective
// and constraint vectors. The slices are pre-sized by the caller; Func
// must not resize them.
type Func func(d *design.Design, target *design.Target)

// SimpleFunctorEvaluator forwards one Design at a time to a user
// callback, dispatching across a worker pool when Parallel is set.
type SimpleFunctorEvaluator struct {
	h   operator.Handle
	log jlog.Logger

	// Callback is the user-supplied evaluation function. A nil
	// Callback at Evaluate time is a fatal configuration error.
	Callback Func
	// Parallel enables the NumCPU()-worker dispatch path.
	Parallel bool
}

// NewSimpleFunctorEvaluator constructs the evaluator bound to h.
func NewSimpleFunctorEvaluator(h operator.Handle, fn Func) *SimpleFunctorEvaluator {
	e := &SimpleFunctorEvaluator{
		h:        h,
		log:      h.Logger().ForOperator(string(operator.FamilyEvaluator), "simple_functor"),
		Callback: fn,
	}
	e.log.OperatorConstructed()
	return e
}

func (e *SimpleFunctorEvaluator) Name() string           { return "simple_functor" }
func (e *SimpleFunctorEvaluator) Family() operator.Family { return operator.FamilyEvaluator }
func (e *SimpleFunctorEvaluator) Finalize() error         { e.log.OperatorFinalized(); return nil }

func (e *SimpleFunctorEvaluator) Clone(h operator.Handle) (operator.Operator, error) {
	c := NewSimpleFunctorEvaluator(h, e.Callback)
	c.Parallel = e.Parallel
	c.log.OperatorCloned()
	return c, nil
}

func (e *SimpleFunctorEvaluator) PollForParameters(db *paramdb.DB) error {
	parallel, err := db.Bool("method.jega.parallel_evaluation", e.Parallel)
	if err != nil {
		return err
	}
	e.Parallel = parallel
	return nil
}

// Evaluate evaluates every Design in group whose design.FlagEvaluated
// flag is clear. Batching via the worker pool never reorders Designs within
// the group: each worker writes only to the Design it was handed.
func (e *SimpleFunctorEvaluator) Evaluate(group *design.Group) error {
	if e.Callback == nil {
		return fmt.Errorf("jega/evaluator: simple_functor: no callback configured")
	}
	target := e.h.Target()

	pending := make([]*design.Design, 0, group.Size())
	for _, d := range group.BeginDV().Designs() {
		if !d.HasFlag(design.FlagEvaluated) {
			pending = append(pending, d)
		}
	}
	if len(pending) == 0 {
		return nil
	}

	if e.Parallel {
		e.evaluateParallel(pending, target)
	} else {
		for _, d := range pending {
			e.evaluateOne(d, target)
		}
	}

	e.log.Debug("evaluation pass complete", "evaluated", len(pending), "parallel", e.Parallel)
	return nil
}

func (e *SimpleFunctorEvaluator) evaluateOne(d *design.Design, target *design.Target) {
	e.Callback(d, target)
	target.EvaluateFeasibility(d)
	d.SetFlag(design.FlagEvaluated, true)
}

func (e *SimpleFunctorEvaluator) evaluateParallel(pending []*design.Design, target *design.Target) {
	numWorkers := runtime.NumCPU()
	if numWorkers > len(pending) {
		numWorkers = len(pending)
	}
	if numWorkers < 1 {
		numWorkers = 1
	}

	workChan := make(chan *design.Design, len(pending))
	wg := &sync.WaitGroup{}

	for w := 0; w < numWorkers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for d := range workChan {
				e.evaluateOne(d, target)
			}
		}()
	}

	for _, d := range pending {
		workChan <- d
	}
	close(workChan)
	wg.Wait()
}
