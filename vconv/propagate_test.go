package vconv

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/entn-at/ae-wavenet/types/interval"
)

// encDec builds a small encoder/upsampler chain: a strided forward layer
// feeding a fractional-stride layer, with the input lengths chained.
func encDec(t *testing.T) Sequence {
	t.Helper()
	enc := Conv(1, 1).Stride(2).InputLen(10).Name("enc").MustDone()
	up := ConvTranspose(12, 12).InverseStride(5).Padding(4, 4).InputLen(6).Name("up").MustDone()
	require.Equal(t, enc.OutputLen(), up.InputLen())
	return Sequence{enc, up}
}

// TestPropagateBackwardMatchesManualComposition: propagating a one-element
// output backward equals applying each layer's ReceptiveField by hand in
// reverse order.
func TestPropagateBackwardMatchesManualComposition(t *testing.T) {
	seq := encDec(t)
	query := interval.Make(0, 1)

	step1, err := seq[1].ReceptiveField(query)
	require.NoError(t, err)
	step2, err := seq[0].ReceptiveField(step1)
	require.NoError(t, err)

	got, err := Propagate(seq, query, Backward)
	require.NoError(t, err)
	assert.Equal(t, step2, got)
	assert.Equal(t, interval.Make(0, 8), got)

	viaMethod, err := seq.ReceptiveField(query)
	require.NoError(t, err)
	assert.Equal(t, got, viaMethod)
}

func TestPropagateForward(t *testing.T) {
	seq := encDec(t)

	got, err := Propagate(seq, interval.Make(0, 2), Forward)
	require.NoError(t, err)
	assert.Equal(t, interval.Make(0, 10), got)

	viaMethod, err := seq.InfluenceField(interval.Make(0, 2))
	require.NoError(t, err)
	assert.Equal(t, got, viaMethod)
}

// TestPropagateWidensOnly: at each composition step the interval can only
// grow or keep its length, so nested queries yield nested results.
func TestPropagateWidensOnly(t *testing.T) {
	seq := encDec(t)

	sub, err := Propagate(seq, interval.Make(1, 2), Backward)
	require.NoError(t, err)
	sup, err := Propagate(seq, interval.Make(0, 3), Backward)
	require.NoError(t, err)
	assert.True(t, sup.Contains(sub), "receptive %s not within %s", sub, sup)
	assert.GreaterOrEqual(t, sub.Len(), 1)

	// And step by step the interval never shrinks.
	cur := interval.Make(0, 3)
	for i := len(seq) - 1; i >= 0; i-- {
		next, err := seq[i].ReceptiveField(cur)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, next.Len(), cur.Len())
		cur = next
	}
}

func TestPropagateInfeasibleLayer(t *testing.T) {
	enc := Conv(1, 1).Stride(2).InputLen(10).MustDone()
	// 3 value elements expand to 19 positions, narrower than the 24-wide
	// filter window: no output exists at all.
	broken := ConvTranspose(12, 12).InverseStride(5).Padding(4, 4).InputLen(3).MustDone()
	seq := Sequence{enc, broken}

	_, err := Propagate(seq, interval.Make(0, 1), Backward)
	require.ErrorIs(t, err, ErrInfeasibleLayer)
	assert.Contains(t, err.Error(), "layer 1")

	// The pre-flight check reports the same failure before any propagation,
	// regardless of direction.
	_, err = Propagate(seq, interval.Make(0, 1), Forward)
	require.ErrorIs(t, err, ErrInfeasibleLayer)
	assert.Contains(t, err.Error(), "layer 1")
}

func TestPropagateErrorNamesLayer(t *testing.T) {
	seq := encDec(t)
	// Output domain of the chain is [0, 11); past it the last layer fails.
	_, err := Propagate(seq, interval.Make(20, 21), Backward)
	require.ErrorIs(t, err, ErrOutOfDomain)
	assert.Contains(t, err.Error(), "layer 1")
}

func TestPropagateUnknownDirection(t *testing.T) {
	seq := encDec(t)
	_, err := Propagate(seq, interval.Make(0, 1), Direction(42))
	require.ErrorIs(t, err, ErrInvalidConfiguration)
}

func TestSequenceOutputLen(t *testing.T) {
	seq := encDec(t)
	n, err := seq.OutputLen(10)
	require.NoError(t, err)
	assert.Equal(t, 11, n)

	// Matches chaining the per-layer derived lengths.
	assert.Equal(t, 6, seq[0].OutputLen())
	assert.Equal(t, 11, seq[1].OutputLen())

	_, err = seq.OutputLen(1)
	require.ErrorIs(t, err, ErrInfeasibleLayer)
}

func TestSequenceString(t *testing.T) {
	seq := encDec(t)
	want := "Conv[enc](stride=2, wings=(1,1), in=10)\n" +
		"ConvT[up](invStride=5, wings=(12,12), pads=(4,4), in=6)"
	assert.Equal(t, want, seq.String())
}

func TestDirectionEnum(t *testing.T) {
	assert.Equal(t, "Backward", Backward.String())
	assert.Equal(t, "Forward", Forward.String())
	dir, err := DirectionString("forward")
	require.NoError(t, err)
	assert.Equal(t, Forward, dir)
	assert.False(t, Direction(3).IsADirection())
}

func BenchmarkPropagateBackward(b *testing.B) {
	enc := Conv(1, 1).Stride(2).InputLen(4096).MustDone()
	mid := Conv(2, 2).Stride(2).InputLen(enc.OutputLen()).MustDone()
	up := ConvTranspose(12, 12).InverseStride(5).Padding(4, 4).InputLen(mid.OutputLen()).MustDone()
	seq := Sequence{enc, mid, up}
	query := interval.Make(0, 64)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := Propagate(seq, query, Backward); err != nil {
			b.Fatal(err)
		}
	}
}
