// Package xmath provides the integer division helpers the standard library
// leaves out: Go's `/` truncates toward zero, while index arithmetic over
// strided grids needs division that rounds toward -inf (FloorDiv) or
// +inf (CeilDiv) regardless of the numerator's sign.
package xmath

import "golang.org/x/exp/constraints"

// FloorDiv returns a/b rounded toward negative infinity. b must be positive.
func FloorDiv[T constraints.Signed](a, b T) T {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}

// CeilDiv returns a/b rounded toward positive infinity. b must be positive.
func CeilDiv[T constraints.Signed](a, b T) T {
	return FloorDiv(a+b-1, b)
}
