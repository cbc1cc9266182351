package vconv

import (
	"strings"

	"github.com/pkg/errors"
	"k8s.io/klog/v2"

	"github.com/entn-at/ae-wavenet/types/interval"
)

// Direction selects how Propagate walks a Sequence.
type Direction int

//go:generate go tool enumer -type=Direction

const (
	// Backward interprets the query as an output interval on the last layer
	// and applies ReceptiveField from last to first, yielding the interval
	// on the network's original input axis.
	Backward Direction = iota

	// Forward interprets the query as an input interval on the first layer
	// and applies InfluenceField from first to last, yielding the interval
	// on the network's final output axis.
	Forward
)

// Sequence is an ordered chain of layers, from network input to network
// output. It holds no mutable state of its own: a Sequence is just the list,
// and queries against it are pure.
type Sequence []*Layer

// Validate checks every layer's parameters and, for bounded layers, that the
// filter fits the achievable expanded span at all (at least one valid output
// exists). Failures carry the offending layer's position and do not
// partially propagate.
func (seq Sequence) Validate() error {
	for i, l := range seq {
		if err := l.Validate(); err != nil {
			return errors.Wrapf(err, "layer %d of %d", i, len(seq))
		}
		if outLen := l.OutputLen(); outLen == 0 {
			return errors.Wrapf(ErrInfeasibleLayer,
				"layer %d of %d (%s): filter window wider than the achievable expanded span %d",
				i, len(seq), l, l.ExpandedLen())
		}
	}
	return nil
}

// OutputLen chains the derived output length of every layer, starting from
// inputLen value elements on the first layer. It returns an error wrapping
// ErrInfeasibleLayer if some layer cannot produce any output from what the
// previous layers hand it.
func (seq Sequence) OutputLen(inputLen int) (int, error) {
	n := inputLen
	for i, l := range seq {
		if n < 1 {
			return 0, errors.Wrapf(ErrInfeasibleLayer,
				"layer %d of %d (%s): no input elements left to consume", i, len(seq), l)
		}
		n = l.outputLenFor(n)
	}
	if n < 1 {
		return 0, errors.Wrapf(ErrInfeasibleLayer,
			"sequence of %d layers produces no output for input length %d", len(seq), inputLen)
	}
	return n, nil
}

// Propagate composes the per-layer mapping across the sequence: Backward
// applies ReceptiveField from the last layer to the first, Forward applies
// InfluenceField from the first to the last. The result interval can only
// grow or keep its length at each step, never shrink.
//
// The sequence is validated up front; on any failure the first failing
// layer's position is reported and nothing is partially propagated.
func Propagate(seq Sequence, query interval.Interval, dir Direction) (interval.Interval, error) {
	if err := seq.Validate(); err != nil {
		return interval.Interval{}, err
	}
	cur := query
	switch dir {
	case Backward:
		for i := len(seq) - 1; i >= 0; i-- {
			next, err := seq[i].ReceptiveField(cur)
			if err != nil {
				return interval.Interval{}, errors.Wrapf(err, "layer %d of %d", i, len(seq))
			}
			klog.V(2).Infof("vconv: backward through layer %d (%s): %s -> %s", i, seq[i], cur, next)
			cur = next
		}
	case Forward:
		for i, l := range seq {
			next, err := l.InfluenceField(cur)
			if err != nil {
				return interval.Interval{}, errors.Wrapf(err, "layer %d of %d", i, len(seq))
			}
			klog.V(2).Infof("vconv: forward through layer %d (%s): %s -> %s", i, l, cur, next)
			cur = next
		}
	default:
		return interval.Interval{}, errors.Wrapf(ErrInvalidConfiguration, "unknown direction %d", dir)
	}
	return cur, nil
}

// ReceptiveField returns the interval on the network's input axis that
// influences the given output interval on the last layer. Sugar for
// Propagate with Backward.
func (seq Sequence) ReceptiveField(out interval.Interval) (interval.Interval, error) {
	return Propagate(seq, out, Backward)
}

// InfluenceField returns the interval on the network's final output axis
// influenced by the given input interval on the first layer. Sugar for
// Propagate with Forward.
func (seq Sequence) InfluenceField(in interval.Interval) (interval.Interval, error) {
	return Propagate(seq, in, Forward)
}

// String prints the geometry chain, one layer per line, input to output.
func (seq Sequence) String() string {
	parts := make([]string, len(seq))
	for i, l := range seq {
		parts[i] = l.String()
	}
	return strings.Join(parts, "\n")
}
