package analysis

import (
	"math"

	"golang.org/x/exp/constraints"
)

const sweepEps = 1e-9

// linearSweep steps from start by step up to and including stop.
func linearSweep[T constraints.Float](start, stop, step T) []T {
	if step == 0 {
		return []T{start}
	}
	n := int(math.Floor(float64((stop-start)/step)+sweepEps)) + 1
	if n < 1 {
		return nil
	}

	values := make([]T, n)
	for i := range n {
		values[i] = start + T(i)*step
	}
	return values
}

// linearPoints spreads n points evenly over [start, stop].
func linearPoints[T constraints.Float](start, stop T, n int) []T {
	if n <= 1 {
		return []T{start}
	}

	values := make([]T, n)
	step := (stop - start) / T(n-1)
	for i := range n {
		values[i] = start + T(i)*step
	}
	return values
}

// logSweep places perInterval points in every factor of base between start
// and stop, starting at start.
func logSweep[T constraints.Float](start, stop T, perInterval int, base T) []T {
	intervals := math.Log(float64(stop/start)) / math.Log(float64(base))
	n := int(math.Floor(intervals*float64(perInterval)+sweepEps)) + 1

	values := make([]T, n)
	for i := range n {
		values[i] = start * T(math.Pow(float64(base), float64(i)/float64(perInterval)))
	}
	return values
}

// sweepCount is the number of points linearSweep or logSweep would return,
// saturated at maxPoints+1 so it never overflows int.
func sweepCount(span, per float64) int {
	n := math.Floor(span*per+sweepEps) + 1
	switch {
	case math.IsNaN(n) || n > maxPoints:
		return maxPoints + 1
	case n < 0:
		return 0
	}
	return int(n)
}
