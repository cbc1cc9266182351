// Package interval defines Interval, a half-open range [Lo, Hi) of integer
// indices over a one-dimensional axis.
//
// Intervals are the currency of the vconv package: they describe stretches of
// input value elements, "expanded" positions (after fractional-stride spacing
// and padding are laid out), and output positions. An Interval is a plain
// value, immutable by convention: every method returns a new Interval.
//
// The zero value is the empty interval anchored at 0.
package interval

import (
	"fmt"

	"github.com/gomlx/exceptions"
)

// Interval is the half-open range [Lo, Hi). Invariant: Lo <= Hi, so
// Hi-Lo is the length, and length 0 represents an empty interval anchored
// at Lo.
type Interval struct {
	Lo, Hi int
}

// Make returns the interval [lo, hi). It panics if lo > hi -- use Empty for
// zero-length intervals.
func Make(lo, hi int) Interval {
	if lo > hi {
		exceptions.Panicf("interval.Make(%d, %d): lo must be <= hi", lo, hi)
	}
	return Interval{Lo: lo, Hi: hi}
}

// Empty returns the empty interval anchored at pos.
func Empty(pos int) Interval {
	return Interval{Lo: pos, Hi: pos}
}

// Len returns the number of indices in the interval.
func (in Interval) Len() int { return in.Hi - in.Lo }

// IsEmpty returns whether the interval has length 0.
func (in Interval) IsEmpty() bool { return in.Hi <= in.Lo }

// Equal compares both boundaries.
func (in Interval) Equal(other Interval) bool { return in == other }

// ContainsPos returns whether position p falls inside the interval.
func (in Interval) ContainsPos(p int) bool { return p >= in.Lo && p < in.Hi }

// Contains returns whether other is a subset of the interval. The empty
// interval is a subset of everything.
func (in Interval) Contains(other Interval) bool {
	if other.IsEmpty() {
		return true
	}
	return other.Lo >= in.Lo && other.Hi <= in.Hi
}

// Intersect returns the overlap of the two intervals. If they don't overlap,
// it returns an empty interval anchored at the closest boundary.
func (in Interval) Intersect(other Interval) Interval {
	lo := max(in.Lo, other.Lo)
	hi := min(in.Hi, other.Hi)
	if hi < lo {
		hi = lo
	}
	return Interval{Lo: lo, Hi: hi}
}

// Union returns the smallest interval covering both (the convex hull: any gap
// between the two is included). An empty interval contributes nothing.
func (in Interval) Union(other Interval) Interval {
	if in.IsEmpty() {
		return other
	}
	if other.IsEmpty() {
		return in
	}
	return Interval{Lo: min(in.Lo, other.Lo), Hi: max(in.Hi, other.Hi)}
}

// Shift returns the interval translated by delta.
func (in Interval) Shift(delta int) Interval {
	return Interval{Lo: in.Lo + delta, Hi: in.Hi + delta}
}

// RelativeTo re-expresses the interval with origin.Lo as position zero.
// It is the "trim" operation: given an outer interval on some axis and an
// inner one on the same axis, inner.RelativeTo(outer) yields the slice
// boundaries of inner within a buffer that holds exactly outer.
func (in Interval) RelativeTo(origin Interval) Interval {
	return in.Shift(-origin.Lo)
}

// String implements fmt.Stringer, printing the half-open form "[lo, hi)".
func (in Interval) String() string {
	return fmt.Sprintf("[%d, %d)", in.Lo, in.Hi)
}
