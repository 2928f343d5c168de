package design

import "math"

func round(v float64) float64 { return math.Round(v) }

func pow10(n int) float64 { return math.Pow(10, float64(n)) }
