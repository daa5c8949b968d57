package domain

import "math"

// span is one row of an ordered range table.
type span[T any] struct {
	Min   float64
	Max   float64
	Value T
}

// rangeTable is evaluated top to bottom; the first matching row wins.
type rangeTable[T any] []span[T]

// lookup returns the value of the first row containing v. A row contains v
// when v >= Min and v is either <= Max or below the next row's Min.
func (t rangeTable[T]) lookup(v float64) (T, bool) {
	for i, row := range t {
		if !(v >= row.Min) {
			continue
		}
		next := math.Inf(1)
		if i+1 < len(t) {
			next = t[i+1].Min
		}
		if v <= row.Max || v < next {
			return row.Value, true
		}
	}
	var zero T
	return zero, false
}
