// Package metrics instruments a GeneticAlgorithm run with Prometheus
// collectors, grounded on the teacher's direct dependency on
// github.com/prometheus/client_golang + prometheus/common (declared
// in its go.mod for the descheduler's own scheduling-cycle metrics;
// repurposed here for the optimizer core, which is this module's
// scope).
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Collectors bundles the GA's Prometheus instrumentation. Construct
// with NewCollectors and register against a caller-supplied
// Registerer so embedding applications choose where metrics surface.
type Collectors struct {
	Generations      prometheus.Counter
	PopulationSize   prometheus.Gauge
	Evaluations      prometheus.Counter
	ConvergenceCheck *prometheus.CounterVec
}

// NewCollectors builds a Collectors instance with the given namespace,
// without registering it.
func NewCollectors(namespace string) *Collectors {
	return &Collectors{
		Generations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "generations_total",
			Help:      "Total number of generations run by the genetic algorithm.",
		}),
		PopulationSize: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "population_size",
			Help:      "Current size of the genetic algorithm's population.",
		}),
		Evaluations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "evaluations_total",
			Help:      "Total number of Design evaluations performed.",
		}),
		ConvergenceCheck: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "convergence_checks_total",
			Help:      "Total number of convergence checks, labeled by outcome.",
		}, []string{"converged"}),
	}
}

// MustRegister registers all of c's collectors against reg, panicking
// on a duplicate-registration error as prometheus.MustRegister does.
func (c *Collectors) MustRegister(reg prometheus.Registerer) {
	reg.MustRegister(c.Generations, c.PopulationSize, c.Evaluations, c.ConvergenceCheck)
}

// RecordConvergenceCheck increments the converged/not-converged
// counter for one convergence decision.
func (c *Collectors) RecordConvergenceCheck(converged bool) {
	label := "false"
	if converged {
		label = "true"
	}
	c.ConvergenceCheck.WithLabelValues(label).Inc()
}
