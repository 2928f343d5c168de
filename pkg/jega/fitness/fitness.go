// Package fitness implements the FitnessAssessor operator family:
// ParetoRankFitnessAssessor, per SPEC_FULL.md §4.7. Non-dominated
// sorting and crowding distance are adapted from the teacher's
// NonDominatedSort/CrowdingDistance (algorithms/nsga2.go), generalized
// from the teacher's fixed minimize-all convention to per-objective
// Sense via design.ObjectiveInfo.
package fitness

import (
	"math"
	"sort"

	"github.com/evojega/jega/pkg/jega/design"
	"github.com/evojega/jega/pkg/jega/jlog"
	"github.com/evojega/jega/pkg/jega/operator"
	"github.com/evojega/jega/pkg/jega/paramdb"
)

// FitnessAssessor writes one fitness value per Design into a
// FitnessRecord; higher is always better.
type FitnessAssessor interface {
	operator.Operator
	Assess(group *design.Group) (*design.FitnessRecord, error)
}

// ParetoRankFitnessAssessor scores fitness as -rank plus a crowding
// tiebreak, so rank-0 Designs always outscore rank-1 regardless of
// crowding, and within a front, sparser (higher-crowding) Designs
// outscore clustered ones.
type ParetoRankFitnessAssessor struct {
	h   operator.Handle
	log jlog.Logger
}

// NewParetoRankFitnessAssessor constructs the assessor bound to h.
func NewParetoRankFitnessAssessor(h operator.Handle) *ParetoRankFitnessAssessor {
	a := &ParetoRankFitnessAssessor{
		h:   h,
		log: h.Logger().ForOperator(string(operator.FamilyFitnessAssessor), "pareto_rank"),
	}
	a.log.OperatorConstructed()
	return a
}

func (a *ParetoRankFitnessAssessor) Name() string           { return "pareto_rank" }
func (a *ParetoRankFitnessAssessor) Family() operator.Family { return operator.FamilyFitnessAssessor }
func (a *ParetoRankFitnessAssessor) Finalize() error         { a.log.OperatorFinalized(); return nil }

func (a *ParetoRankFitnessAssessor) Clone(h operator.Handle) (operator.Operator, error) {
	c := NewParetoRankFitnessAssessor(h)
	c.log.OperatorCloned()
	return c, nil
}

func (a *ParetoRankFitnessAssessor) PollForParameters(db *paramdb.DB) error { return nil }

// signedObjectives returns d's objective vector oriented so that lower
// is always better, negating Maximize objectives and folding SeekValue
// objectives into an absolute-deviation-from-target minimization.
func signedObjectives(d *design.Design, objs []design.ObjectiveInfo) []float64 {
	out := make([]float64, len(objs))
	for i, info := range objs {
		v := d.Objectives[i]
		switch info.Sense {
		case design.Maximize:
			out[i] = -v
		case design.SeekValue:
			out[i] = math.Abs(v - info.Target)
		default:
			out[i] = v
		}
	}
	return out
}

// dominates reports whether a's signed objectives dominate b's: no
// worse in every dimension, strictly better in at least one.
func dominates(a, b []float64) bool {
	betterSomewhere := false
	for i := range a {
		if a[i] > b[i] {
			return false
		}
		if a[i] < b[i] {
			betterSomewhere = true
		}
	}
	return betterSomewhere
}

// nonDominatedSort partitions designs into fronts by dominance count,
// front 0 being the non-dominated set.
func nonDominatedSort(designs []*design.Design, signed [][]float64) [][]int {
	n := len(designs)
	dominatedBy := make([][]int, n)
	domCount := make([]int, n)

	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			if i == j {
				continue
			}
			if dominates(signed[i], signed[j]) {
				dominatedBy[i] = append(dominatedBy[i], j)
			} else if dominates(signed[j], signed[i]) {
				domCount[i]++
			}
		}
	}

	var fronts [][]int
	current := make([]int, 0)
	for i := 0; i < n; i++ {
		if domCount[i] == 0 {
			current = append(current, i)
		}
	}
	for len(current) > 0 {
		fronts = append(fronts, current)
		var next []int
		for _, i := range current {
			for _, j := range dominatedBy[i] {
				domCount[j]--
				if domCount[j] == 0 {
					next = append(next, j)
				}
			}
		}
		current = next
	}
	return fronts
}

// crowdingDistance computes the NSGA-II crowding distance for one
// front, indexing into signed by the front's own member indices.
func crowdingDistance(front []int, signed [][]float64) map[int]float64 {
	dist := make(map[int]float64, len(front))
	for _, i := range front {
		dist[i] = 0
	}
	if len(front) <= 2 {
		for _, i := range front {
			dist[i] = math.Inf(1)
		}
		return dist
	}

	numObjectives := len(signed[front[0]])
	ordered := append([]int(nil), front...)
	for m := 0; m < numObjectives; m++ {
		sort.Slice(ordered, func(a, b int) bool {
			return signed[ordered[a]][m] < signed[ordered[b]][m]
		})
		dist[ordered[0]] = math.Inf(1)
		dist[ordered[len(ordered)-1]] = math.Inf(1)

		objRange := signed[ordered[len(ordered)-1]][m] - signed[ordered[0]][m]
		if objRange == 0 {
			continue
		}
		for k := 1; k < len(ordered)-1; k++ {
			dist[ordered[k]] += (signed[ordered[k+1]][m] - signed[ordered[k-1]][m]) / objRange
		}
	}
	return dist
}

// Assess computes non-dominated fronts and crowding distances over
// group, writing fitness = -rank + normalizedCrowding(rank) so fronts
// never interleave.
func (a *ParetoRankFitnessAssessor) Assess(group *design.Group) (*design.FitnessRecord, error) {
	target := a.h.Target()
	designs := group.BeginOF().Designs()
	record := design.NewFitnessRecord()
	if len(designs) == 0 {
		return record, nil
	}

	signed := make([][]float64, len(designs))
	for i, d := range designs {
		signed[i] = signedObjectives(d, target.Objectives)
	}

	fronts := nonDominatedSort(designs, signed)
	for rank, front := range fronts {
		dist := crowdingDistance(front, signed)
		for _, i := range front {
			d := dist[i]
			var crowdScore float64
			if math.IsInf(d, 1) {
				crowdScore = 1
			} else {
				crowdScore = d / (d + 1) // squash to (0,1), keeping infinities dominant within the rank
			}
			fitness := -float64(rank) + crowdScore*0.999
			record.Set(designs[i], fitness)
		}
	}

	a.log.Debug("fitness assessed", "designs", len(designs), "fronts", len(fronts))
	return record, nil
}
