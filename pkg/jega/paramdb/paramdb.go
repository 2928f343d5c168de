// Package paramdb implements the key -> typed-value parameter database
// each operator's PollForParameters pulls from, generalizing the
// teacher's fixed MultiObjectiveArgs struct (see defaults.go in the
// teacher plugin) into an open map since JEGA operators each define
// their own parameter set.
package paramdb

import (
	"fmt"
	"time"
)

// ErrTypeMismatch is returned when a key is present but holds a value
// of the wrong type; per the spec this is always fatal.
type ErrTypeMismatch struct {
	Key      string
	Wanted   string
	Got      interface{}
}

func (e *ErrTypeMismatch) Error() string {
	return fmt.Sprintf("paramdb: key %q: wanted %s, got %T", e.Key, e.Wanted, e.Got)
}

// DB is a key -> typed-value parameter map.
type DB struct {
	values map[string]interface{}
}

// New returns an empty DB.
func New() *DB {
	return &DB{values: make(map[string]interface{})}
}

// Set stores a raw value under key, overwriting any previous value.
func (db *DB) Set(key string, value interface{}) {
	db.values[key] = value
}

// Has reports whether key is present.
func (db *DB) Has(key string) bool {
	_, ok := db.values[key]
	return ok
}

// Float64 returns the float64 stored at key, or def if key is absent.
// A present-but-wrong-typed value returns an error.
func (db *DB) Float64(key string, def float64) (float64, error) {
	v, ok := db.values[key]
	if !ok {
		return def, nil
	}
	f, ok := v.(float64)
	if !ok {
		return 0, &ErrTypeMismatch{Key: key, Wanted: "float64", Got: v}
	}
	return f, nil
}

// Int returns the int stored at key, or def if absent.
func (db *DB) Int(key string, def int) (int, error) {
	v, ok := db.values[key]
	if !ok {
		return def, nil
	}
	i, ok := v.(int)
	if !ok {
		return 0, &ErrTypeMismatch{Key: key, Wanted: "int", Got: v}
	}
	return i, nil
}

// Bool returns the bool stored at key, or def if absent.
func (db *DB) Bool(key string, def bool) (bool, error) {
	v, ok := db.values[key]
	if !ok {
		return def, nil
	}
	b, ok := v.(bool)
	if !ok {
		return false, &ErrTypeMismatch{Key: key, Wanted: "bool", Got: v}
	}
	return b, nil
}

// String returns the string stored at key, or def if absent.
func (db *DB) String(key string, def string) (string, error) {
	v, ok := db.values[key]
	if !ok {
		return def, nil
	}
	s, ok := v.(string)
	if !ok {
		return "", &ErrTypeMismatch{Key: key, Wanted: "string", Got: v}
	}
	return s, nil
}

// Strings returns the []string stored at key, or def if absent.
func (db *DB) Strings(key string, def []string) ([]string, error) {
	v, ok := db.values[key]
	if !ok {
		return def, nil
	}
	s, ok := v.([]string)
	if !ok {
		return nil, &ErrTypeMismatch{Key: key, Wanted: "[]string", Got: v}
	}
	return s, nil
}

// Float64s returns the []float64 stored at key, or def if absent.
func (db *DB) Float64s(key string, def []float64) ([]float64, error) {
	v, ok := db.values[key]
	if !ok {
		return def, nil
	}
	s, ok := v.([]float64)
	if !ok {
		return nil, &ErrTypeMismatch{Key: key, Wanted: "[]float64", Got: v}
	}
	return s, nil
}

// Ints returns the []int stored at key, or def if absent.
func (db *DB) Ints(key string, def []int) ([]int, error) {
	v, ok := db.values[key]
	if !ok {
		return def, nil
	}
	s, ok := v.([]int)
	if !ok {
		return nil, &ErrTypeMismatch{Key: key, Wanted: "[]int", Got: v}
	}
	return s, nil
}

// Duration returns the time.Duration stored at key, or def if absent.
func (db *DB) Duration(key string, def time.Duration) (time.Duration, error) {
	v, ok := db.values[key]
	if !ok {
		return def, nil
	}
	d, ok := v.(time.Duration)
	if !ok {
		return 0, &ErrTypeMismatch{Key: key, Wanted: "time.Duration", Got: v}
	}
	return d, nil
}

// Recognized parameter database keys, per SPEC_FULL.md §6.1.
const (
	KeyNicheVector          = "method.jega.niche_vector"
	KeyNumCrossPoints       = "method.jega.num_cross_points"
	KeyCacheNichedDesigns   = "method.jega.cache_niched_designs"
	KeyNumGenerations       = "method.jega.num_generations"
	KeyPercentChange        = "method.jega.percent_change"
	KeyMaxIterations        = "method.max_iterations"
	KeyMaxFunctionEvals     = "method.max_function_evaluations"
	KeyMaxTime              = "method.max_time"
	KeyInitializerDelimiter = "method.jega.initializer_delimiter"
	KeyFlatFile             = "method.flat_file"
	KeyFlatFiles            = "method.flat_files"
	KeyFitnessLimit         = "method.fitness_limit"
	KeyShrinkagePercentage  = "method.shrinkage_percentage"
)
