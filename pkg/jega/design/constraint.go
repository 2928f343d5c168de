package design

// Constraint is a predicate over a Design's current variable vector,
// independent of the two-sided ConstraintInfo bookkeeping above. It is
// the shape evaluators and mutators use to check feasibility before a
// Design is committed, mirroring the teacher's
// `func(framework.Solution) bool` constraint closures.
type Constraint func(d *Design) bool

// CombineConstraints ANDs several constraints into one, short-
// circuiting on the first failure.
func CombineConstraints(constraints ...Constraint) Constraint {
	return func(d *Design) bool {
		for _, c := range constraints {
			if !c(d) {
				return false
			}
		}
		return true
	}
}

// EvaluateFeasibility checks d.Constraints against the target's
// ConstraintInfo bounds, setting FlagFeasibleConstraints and returning
// whether all were satisfied.
func (t *Target) EvaluateFeasibility(d *Design) bool {
	feasible := true
	for i, c := range t.Constraints {
		if i >= len(d.Constraints) {
			break
		}
		if !c.Satisfied(d.Constraints[i]) {
			feasible = false
			break
		}
	}
	d.SetFlag(FlagFeasibleConstraints, feasible)

	boundsOK := true
	for i, v := range t.Variables {
		if i >= len(d.Variables) {
			break
		}
		if !v.Nature.IsRepInBounds(d.Variables[i], v.Bounds) {
			boundsOK = false
			break
		}
	}
	d.SetFlag(FlagFeasibleBounds, boundsOK)
	d.SetFlag(FlagFeasible, feasible && boundsOK)
	return feasible && boundsOK
}
