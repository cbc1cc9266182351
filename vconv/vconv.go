// Package vconv models the index geometry of convolutional networks: given a
// chain of forward (standard convolution / pooling) and transpose
// (fractional-stride, upsampling) layers, it computes the exact interval of
// input value elements that influences an interval of output positions (the
// receptive field), and the inverse mapping (the influence field).
//
// No convolution arithmetic happens here -- no weights, no sums. The package
// answers purely geometric questions, the kind needed to size and trim the
// tensors fed to a WaveNet-style autoencoder, where a stack of strided
// convolutions, an upsampling stage and an autoregressive decoder must agree
// on which samples each produced timestep actually depends on.
//
// # Fractional stride
//
// A transpose layer with inverse stride S conceptually expands its input by
// inserting S-1 spacing elements between consecutive value elements, pads the
// expanded sequence on both sides, and then slides an ordinary stride-1
// filter over it. Spacing is inserted only BETWEEN value elements: the
// non-padded region of the expanded sequence always begins and ends with a
// value element, never with a spacing slot. This convention decides the edge
// cases where a minimal output is only achievable by consuming padding or by
// reaching further into the input, and every computation here follows it.
//
// Positions in the expanded sequence are "expanded indices"; value element k
// sits at expanded index leftPad + k*S. Receptive fields are computed in
// expanded-index space first and then mapped back to value-element indices;
// padding and spacing slots contribute no value element.
//
// # Filter wings
//
// A filter is described by its left and right wing sizes rather than its
// width. A forward layer's filter at output p covers input positions
// [p*stride - leftWing, p*stride + rightWing + 1). A transpose layer's
// filter at output q covers the half-open expanded window
// [q - leftWing, q + rightWing): the reference position is counted inside
// the right wing, so the window width is leftWing + rightWing. For an even
// width w that is the symmetric split (w/2, w/2); odd widths split
// left-biased, ((w+1)/2, w/2).
//
// # Usage
//
// Layers are built with the Conv and ConvTranspose builders and are immutable
// afterwards, so all queries are pure and safe for concurrent use:
//
//	up, err := vconv.ConvTranspose(12, 12).InverseStride(5).Padding(4, 4).InputLen(4).Done()
//	...
//	rf, err := up.ReceptiveField(interval.Make(0, 1))   // -> [0, 4)
//
// Chains of layers compose through Sequence and Propagate.
package vconv

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"

	"github.com/entn-at/ae-wavenet/pkg/support/xmath"
	"github.com/entn-at/ae-wavenet/types/interval"
)

// Kind distinguishes the two layer geometries.
type Kind int

//go:generate go tool enumer -type=Kind -trimprefix=Kind

const (
	// KindForward is a standard convolution or pooling layer: stride T >= 1,
	// one output per T input positions.
	KindForward Kind = iota

	// KindTranspose is a fractional-stride (upsampling) layer: inverse
	// stride S >= 1, S-1 spacing elements inserted between consecutive
	// input value elements before filtering.
	KindTranspose
)

// Layer is the spatial configuration of one convolution or
// transpose-convolution layer. It is immutable once built (see Conv and
// ConvTranspose) and all its methods are pure, so a Layer may be shared
// freely across goroutines.
type Layer struct {
	kind      Kind
	stride    int // forward layers; always 1 for transpose.
	invStride int // transpose layers; always 1 for forward.
	leftWing  int
	rightWing int
	leftPad   int // transpose only: padding on the expanded sequence.
	rightPad  int
	inputLen  int // number of value elements; 0 means unbounded.
	name      string
}

// Kind returns the layer's kind.
func (l *Layer) Kind() Kind { return l.kind }

// Stride returns the forward stride (1 for transpose layers).
func (l *Layer) Stride() int { return l.stride }

// InverseStride returns the transpose inverse stride (1 for forward layers).
func (l *Layer) InverseStride() int { return l.invStride }

// Wings returns the left and right wing sizes.
func (l *Layer) Wings() (left, right int) { return l.leftWing, l.rightWing }

// Padding returns the left and right padding of the expanded sequence.
func (l *Layer) Padding() (left, right int) { return l.leftPad, l.rightPad }

// InputLen returns the declared number of input value elements, or 0 if the
// layer is unbounded.
func (l *Layer) InputLen() int { return l.inputLen }

// Name returns the optional label given to the layer.
func (l *Layer) Name() string { return l.name }

// window returns the filter width in expanded-index space for transpose
// layers.
func (l *Layer) window() int { return l.leftWing + l.rightWing }

// Validate checks the layer parameters in isolation. It returns an error
// wrapping ErrInvalidConfiguration if any parameter is individually
// malformed.
func (l *Layer) Validate() error {
	if l.leftWing < 0 || l.rightWing < 0 {
		return errors.Wrapf(ErrInvalidConfiguration, "%s: wing sizes must be non-negative, got (%d, %d)",
			l, l.leftWing, l.rightWing)
	}
	if l.leftPad < 0 || l.rightPad < 0 {
		return errors.Wrapf(ErrInvalidConfiguration, "%s: padding must be non-negative, got (%d, %d)",
			l, l.leftPad, l.rightPad)
	}
	if l.inputLen < 0 {
		return errors.Wrapf(ErrInvalidConfiguration, "%s: input length must be non-negative, got %d",
			l, l.inputLen)
	}
	switch l.kind {
	case KindForward:
		if l.stride < 1 {
			return errors.Wrapf(ErrInvalidConfiguration, "%s: stride must be positive, got %d", l, l.stride)
		}
		if l.invStride != 1 {
			return errors.Wrapf(ErrInvalidConfiguration, "%s: inverse stride only applies to transpose layers", l)
		}
		if l.leftPad != 0 || l.rightPad != 0 {
			// Forward padding is virtual: it belongs to the caller's input
			// domain, not to the geometric mapping.
			return errors.Wrapf(ErrInvalidConfiguration, "%s: padding only applies to transpose layers", l)
		}
	case KindTranspose:
		if l.invStride < 1 {
			return errors.Wrapf(ErrInvalidConfiguration, "%s: inverse stride must be positive, got %d",
				l, l.invStride)
		}
		if l.stride != 1 {
			return errors.Wrapf(ErrInvalidConfiguration, "%s: stride only applies to forward layers", l)
		}
		if l.window() < 1 {
			return errors.Wrapf(ErrInvalidConfiguration, "%s: transpose filter window must cover at least one position", l)
		}
	default:
		return errors.Wrapf(ErrInvalidConfiguration, "unknown layer kind %d", l.kind)
	}
	return nil
}

// ExpandedLen returns the total length of the expanded sequence of a
// transpose layer (padding + spaced value region + padding), or -1 when the
// layer has no declared input length. For forward layers it returns the
// input length itself.
func (l *Layer) ExpandedLen() int {
	if l.inputLen == 0 {
		return -1
	}
	return l.expandedLenFor(l.inputLen)
}

func (l *Layer) expandedLenFor(n int) int {
	if l.kind == KindForward {
		return n
	}
	return l.leftPad + (n-1)*l.invStride + 1 + l.rightPad
}

// OutputLen returns the number of valid output positions, or -1 when the
// layer has no declared input length. It may be zero or negative-clamped to
// zero for transpose layers whose filter is wider than any achievable
// expanded span.
func (l *Layer) OutputLen() int {
	if l.inputLen == 0 {
		return -1
	}
	return l.outputLenFor(l.inputLen)
}

func (l *Layer) outputLenFor(n int) int {
	if l.kind == KindForward {
		// Outputs whose receptive field still touches [0, n): the right
		// wing extends past the last input via virtual padding.
		return xmath.FloorDiv(n-1+l.leftWing, l.stride) + 1
	}
	out := l.expandedLenFor(n) - l.window() + 1
	return max(out, 0)
}

// MinInputLen returns the minimal number of input value elements needed to
// support an output interval of the given length. It is the derived domain
// bound: any bounded layer with fewer elements fails such queries with
// ErrInfeasibleLayer.
func (l *Layer) MinInputLen(outLen int) int {
	if outLen < 1 {
		return 0
	}
	if l.kind == KindForward {
		return max(1, (outLen-1)*l.stride-l.leftWing+1)
	}
	need := outLen + l.window() - 2 - l.leftPad - l.rightPad
	return xmath.CeilDiv(max(need, 0), l.invStride) + 1
}

// ReceptiveField returns the interval of input value-element indices that
// influence the given output interval.
//
// For forward layers the result is the closed formula
// [lo*T - leftWing, (hi-1)*T + rightWing + 1) clamped to the input domain
// when the layer is bounded; the clamped-away part is virtual padding owned
// by the caller.
//
// For transpose layers the field is computed in expanded-index space and
// mapped back to value elements; expanded boundaries landing on padding
// contribute no element, and a window that covers padding only collapses to
// the single nearest value element, so the result is never empty for a
// non-empty query. Errors: ErrInfeasibleLayer when the requested length
// exceeds what a bounded layer can produce, ErrOutOfDomain when the interval
// sits outside the valid output positions.
func (l *Layer) ReceptiveField(out interval.Interval) (interval.Interval, error) {
	if err := l.Validate(); err != nil {
		return interval.Interval{}, err
	}
	if out.IsEmpty() {
		return l.emptyReceptive(out.Lo)
	}
	if l.kind == KindForward {
		return l.forwardReceptive(out)
	}
	return l.transposeReceptive(out)
}

// emptyReceptive handles zero-length queries: allowed at any valid output
// position, answering the empty interval anchored at the collapsed input
// boundary.
func (l *Layer) emptyReceptive(pos int) (interval.Interval, error) {
	outLen := l.OutputLen()
	if pos < 0 || (outLen >= 0 && pos > outLen) {
		return interval.Interval{}, errors.Wrapf(ErrOutOfDomain,
			"%s: empty query at position %d, valid positions are [0, %d]", l, pos, outLen)
	}
	var anchor int
	if l.kind == KindForward {
		anchor = max(0, pos*l.stride-l.leftWing)
	} else {
		anchor = max(0, xmath.CeilDiv(pos-l.leftPad, l.invStride))
	}
	if l.inputLen > 0 {
		anchor = min(anchor, l.inputLen)
	}
	return interval.Empty(anchor), nil
}

func (l *Layer) forwardReceptive(out interval.Interval) (interval.Interval, error) {
	outLen := l.OutputLen()
	if out.Lo < 0 || (outLen >= 0 && out.Hi > outLen) {
		return interval.Interval{}, errors.Wrapf(ErrOutOfDomain,
			"%s: output interval %s outside valid output domain [0, %d)", l, out, outLen)
	}
	lo := out.Lo*l.stride - l.leftWing
	hi := (out.Hi-1)*l.stride + l.rightWing + 1
	lo = max(lo, 0)
	if l.inputLen > 0 {
		hi = min(hi, l.inputLen)
	}
	if hi <= lo {
		return interval.Interval{}, errors.Wrapf(ErrOutOfDomain,
			"%s: output interval %s maps entirely into virtual padding", l, out)
	}
	return interval.Make(lo, hi), nil
}

func (l *Layer) transposeReceptive(out interval.Interval) (interval.Interval, error) {
	w := l.window()
	outLen := l.OutputLen()
	if outLen >= 0 && out.Len() > outLen {
		return interval.Interval{}, errors.Wrapf(ErrInfeasibleLayer,
			"%s: output length %d needs %d expanded positions but only %d are available",
			l, out.Len(), out.Len()+w-1, l.ExpandedLen())
	}
	if out.Lo < 0 || (outLen >= 0 && out.Hi > outLen) {
		return interval.Interval{}, errors.Wrapf(ErrOutOfDomain,
			"%s: output interval %s outside valid output domain [0, %d)", l, out, outLen)
	}

	// Expanded coverage of the whole query: the union of the windows
	// [q - leftWing, q + rightWing) for q in the interval, re-anchored so
	// the first valid window starts at expanded index 0.
	eLo := out.Lo
	eHi := out.Hi - 1 + w

	// Map expanded boundaries to value elements: element k occupies
	// expanded index leftPad + k*invStride; padding and spacing slots
	// collapse away.
	kLo := xmath.CeilDiv(eLo-l.leftPad, l.invStride)
	kHi := xmath.FloorDiv(eHi-1-l.leftPad, l.invStride) + 1
	kLo = max(kLo, 0)
	if l.inputLen > 0 {
		kHi = min(kHi, l.inputLen)
	}
	if kHi <= kLo {
		// The coverage holds padding (or pure spacing) only. Consume it and
		// collapse to the nearest value element at or after the window
		// start, keeping the result minimal but non-empty.
		k := max(0, xmath.CeilDiv(eLo-l.leftPad, l.invStride))
		if l.inputLen > 0 {
			k = min(k, l.inputLen-1)
		}
		return interval.Make(k, k+1), nil
	}
	return interval.Make(kLo, kHi), nil
}

// InfluenceField returns the interval of output positions whose receptive
// field intersects the given interval of input value elements. It is the
// algebraic inverse of ReceptiveField: for any valid input interval `in`,
// `in` is a subset of ReceptiveField(InfluenceField(in)).
func (l *Layer) InfluenceField(in interval.Interval) (interval.Interval, error) {
	if err := l.Validate(); err != nil {
		return interval.Interval{}, err
	}
	if l.inputLen > 0 && (in.Lo < 0 || in.Hi > l.inputLen) {
		return interval.Interval{}, errors.Wrapf(ErrOutOfDomain,
			"%s: input interval %s outside input domain [0, %d)", l, in, l.inputLen)
	}
	if in.Lo < 0 {
		return interval.Interval{}, errors.Wrapf(ErrOutOfDomain,
			"%s: input interval %s has negative start", l, in)
	}
	outLen := l.OutputLen()
	if outLen == 0 {
		return interval.Interval{}, errors.Wrapf(ErrInfeasibleLayer,
			"%s: filter window %d wider than any achievable expanded span %d",
			l, l.window(), l.ExpandedLen())
	}
	if in.IsEmpty() {
		return l.emptyInfluence(in.Lo, outLen)
	}
	if l.kind == KindForward {
		qLo := max(0, xmath.CeilDiv(in.Lo-l.rightWing, l.stride))
		qHi := xmath.FloorDiv(in.Hi-1+l.leftWing, l.stride) + 1
		if outLen >= 0 {
			qHi = min(qHi, outLen)
		}
		if qHi <= qLo {
			// Possible only when the stride skips over the interval
			// entirely (stride wider than the filter footprint).
			return interval.Empty(qLo), nil
		}
		return interval.Make(qLo, qHi), nil
	}

	// Transpose: the input occupies expanded positions
	// [leftPad + lo*S, leftPad + (hi-1)*S + 1); every output window
	// [q, q + window) overlapping it is influenced.
	cLo := l.leftPad + in.Lo*l.invStride
	cHi := l.leftPad + (in.Hi-1)*l.invStride + 1
	qLo := max(0, cLo-l.window()+1)
	qHi := cHi
	if outLen >= 0 {
		qHi = min(qHi, outLen)
	}
	if qHi <= qLo {
		return interval.Empty(min(qLo, max(qHi, 0))), nil
	}
	return interval.Make(qLo, qHi), nil
}

func (l *Layer) emptyInfluence(pos, outLen int) (interval.Interval, error) {
	var anchor int
	if l.kind == KindForward {
		anchor = max(0, xmath.CeilDiv(pos-l.rightWing, l.stride))
	} else {
		anchor = max(0, l.leftPad+pos*l.invStride-l.window()+1)
	}
	if outLen >= 0 {
		anchor = min(anchor, outLen)
	}
	return interval.Empty(anchor), nil
}

// String implements fmt.Stringer, printing the layer geometry in one line,
// e.g. `ConvT[upsample](invStride=5, wings=(12,12), pads=(4,4), in=4)`.
func (l *Layer) String() string {
	var b strings.Builder
	if l.kind == KindForward {
		b.WriteString("Conv")
	} else {
		b.WriteString("ConvT")
	}
	if l.name != "" {
		fmt.Fprintf(&b, "[%s]", l.name)
	}
	if l.kind == KindForward {
		fmt.Fprintf(&b, "(stride=%d, wings=(%d,%d)", l.stride, l.leftWing, l.rightWing)
	} else {
		fmt.Fprintf(&b, "(invStride=%d, wings=(%d,%d), pads=(%d,%d)",
			l.invStride, l.leftWing, l.rightWing, l.leftPad, l.rightPad)
	}
	if l.inputLen > 0 {
		fmt.Fprintf(&b, ", in=%d", l.inputLen)
	}
	b.WriteString(")")
	return b.String()
}
