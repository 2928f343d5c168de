// Package jlog wraps k8s.io/klog/v2 with the structured logging events
// SPEC_FULL.md §6.3 requires, mirroring the way the teacher plugin
// threads a klog.Logger through its lifecycle
// (klog.FromContext(ctx).WithValues("plugin", PluginName) in
// multiobjective.go).
package jlog

import (
	"context"

	"k8s.io/klog/v2"
)

// Logger is the structured logger threaded through a GeneticAlgorithm
// and its operators.
type Logger struct {
	klog.Logger
}

// FromContext derives a Logger from ctx, matching the teacher's
// klog.FromContext(ctx) call at plugin construction.
func FromContext(ctx context.Context) Logger {
	return Logger{klog.FromContext(ctx)}
}

// ForOperator returns a Logger tagged with the operator's family and
// name, so every event it emits is attributable.
func (l Logger) ForOperator(family, name string) Logger {
	return Logger{l.Logger.WithValues("family", family, "operator", name)}
}

// Quiet logs a recoverable runtime degradation (category 2 errors):
// flat file unreadable, retry budget exhausted, mutation legalized.
func (l Logger) Quiet(msg string, kv ...interface{}) {
	l.Logger.V(0).Info(msg, kv...)
}

// Verbose logs population-size-after-operator and similar routine
// progress events.
func (l Logger) Verbose(msg string, kv ...interface{}) {
	l.Logger.V(2).Info(msg, kv...)
}

// Debug logs per-mutation/per-crossover acceptance events.
func (l Logger) Debug(msg string, kv ...interface{}) {
	l.Logger.V(5).Info(msg, kv...)
}

// OperatorConstructed logs the mandatory construction event.
func (l Logger) OperatorConstructed() { l.Verbose("operator constructed") }

// OperatorCloned logs the mandatory clone event.
func (l Logger) OperatorCloned() { l.Verbose("operator cloned") }

// OperatorFinalized logs the mandatory finalize event.
func (l Logger) OperatorFinalized() { l.Verbose("operator finalized") }

// ParameterPolled logs a successfully polled (or defaulted) parameter.
func (l Logger) ParameterPolled(key string, value interface{}, usedDefault bool) {
	l.Verbose("parameter polled", "key", key, "value", value, "default", usedDefault)
}

// PopulationSize logs the population size after an operator ran.
func (l Logger) PopulationSize(size int) {
	l.Verbose("population size", "size", size)
}

// ConvergenceChecked logs a convergence decision and the metric value
// it was based on.
func (l Logger) ConvergenceChecked(converged bool, metric float64) {
	l.Verbose("convergence check", "converged", converged, "metric", metric)
}

// Fatal logs a category-1/3 fatal error (SPEC_FULL.md §7) at error
// level with its reason and location, and returns the error unchanged
// for the caller to propagate; it never exits or panics. No package in
// this module calls it; the operators return their errors directly.
func (l Logger) Fatal(reason string, location string, err error) error {
	l.Logger.Error(err, "fatal", "reason", reason, "location", location)
	return err
}
