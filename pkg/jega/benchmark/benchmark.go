// Package benchmark provides standard multi-objective test problems
// (ZDT1, ZDT2, DTLZ1) rewritten against design.Target and
// evaluator.Func, grounded on the teacher's benchmarks package
// (benchmarks/zdt2.go, benchmarks/dtlz1.go, benchmarks/suite.go), used
// for the convergence end-to-end test in SPEC_FULL.md §8.
package benchmark

import (
	"math"

	"github.com/evojega/jega/pkg/jega/design"
	"github.com/evojega/jega/pkg/jega/evaluator"
)

// Problem bundles a benchmark's DesignTarget and evaluation callback.
type Problem struct {
	Name   string
	Target *design.Target
	Eval   evaluator.Func
}

func unitBoundsTarget(numVars, numObjectives int) *design.Target {
	vars := make([]design.VariableInfo, numVars)
	for i := range vars {
		vars[i] = design.VariableInfo{
			Name:   "x",
			Nature: design.ContinuumReal{Precision: 6},
			Bounds: design.Bounds{Lower: 0, Upper: 1},
		}
	}
	objs := make([]design.ObjectiveInfo, numObjectives)
	for i := range objs {
		objs[i] = design.ObjectiveInfo{Name: "f", Sense: design.Minimize}
	}
	return design.NewTarget(vars, objs, nil)
}

// NewZDT1 builds the ZDT1 benchmark: a convex 2-objective front,
// g(x) = 1 + 9*sum(x[1:])/(n-1), f1=x[0], f2=g*(1-sqrt(x[0]/g)).
func NewZDT1(numVars int) *Problem {
	target := unitBoundsTarget(numVars, 2)
	return &Problem{
		Name:   "ZDT1",
		Target: target,
		Eval: func(d *design.Design, t *design.Target) {
			x := d.Variables
			g := zdtG(x)
			d.Objectives[0] = x[0]
			d.Objectives[1] = g * (1 - math.Sqrt(x[0]/g))
		},
	}
}

// NewZDT2 builds the ZDT2 benchmark: a non-convex front,
// f2=g*(1-(x1/g)^2).
func NewZDT2(numVars int) *Problem {
	target := unitBoundsTarget(numVars, 2)
	return &Problem{
		Name:   "ZDT2",
		Target: target,
		Eval: func(d *design.Design, t *design.Target) {
			x := d.Variables
			g := zdtG(x)
			d.Objectives[0] = x[0]
			d.Objectives[1] = g * (1 - math.Pow(x[0]/g, 2))
		},
	}
}

func zdtG(x []float64) float64 {
	g := 1.0
	for i := 1; i < len(x); i++ {
		g += 9.0 * x[i] / float64(len(x)-1)
	}
	return g
}

// ZDT1TrueParetoFront samples numPoints points of ZDT1's analytic
// Pareto front, f2 = 1 - sqrt(f1), for convergence comparisons.
func ZDT1TrueParetoFront(numPoints int) [][2]float64 {
	points := make([][2]float64, numPoints)
	for i := 0; i < numPoints; i++ {
		x := float64(i) / float64(numPoints-1)
		points[i] = [2]float64{x, 1 - math.Sqrt(x)}
	}
	return points
}

// NewDTLZ1 builds the DTLZ1 benchmark, scalable to any objective
// count, with a linear Pareto front (sum(f) = 0.5) and many local
// fronts from the g() term's cosine ripple.
func NewDTLZ1(numVars, numObjectives int) *Problem {
	target := unitBoundsTarget(numVars, numObjectives)
	return &Problem{
		Name:   "DTLZ1",
		Target: target,
		Eval: func(d *design.Design, t *design.Target) {
			x := d.Variables
			g := dtlz1G(x, numObjectives)
			for objIdx := 0; objIdx < numObjectives; objIdx++ {
				f := 0.5 * (1 + g)
				for i := 0; i < numObjectives-objIdx-1; i++ {
					f *= x[i]
				}
				if objIdx > 0 {
					f *= 1 - x[numObjectives-objIdx-1]
				}
				d.Objectives[objIdx] = f
			}
		},
	}
}

func dtlz1G(x []float64, numObjectives int) float64 {
	k := len(x) - numObjectives + 1
	sum := 0.0
	for i := numObjectives - 1; i < len(x); i++ {
		sum += math.Pow(x[i]-0.5, 2) - math.Cos(20*math.Pi*(x[i]-0.5))
	}
	return 100 * (float64(k) + sum)
}
