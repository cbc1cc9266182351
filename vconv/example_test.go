package vconv_test

import (
	"fmt"

	"github.com/janpfeifer/must"

	"github.com/entn-at/ae-wavenet/types/interval"
	"github.com/entn-at/ae-wavenet/vconv"
)

// A fractional-stride upsampling layer at its minimal input: the single
// supportable output reaches across both pads and all four value elements.
func ExampleLayer_ReceptiveField() {
	up := vconv.ConvTranspose(12, 12).InverseStride(5).Padding(4, 4).InputLen(4).MustDone()
	rf := must.M1(up.ReceptiveField(interval.Make(0, 1)))
	fmt.Println(rf)
	// Output: [0, 4)
}

// Chaining a strided encoder into an upsampler and asking which input
// samples the first output timestep depends on.
func ExamplePropagate() {
	seq := vconv.Sequence{
		vconv.Conv(1, 1).Stride(2).InputLen(10).Name("enc").MustDone(),
		vconv.ConvTranspose(12, 12).InverseStride(5).Padding(4, 4).InputLen(6).Name("up").MustDone(),
	}
	rf := must.M1(vconv.Propagate(seq, interval.Make(0, 1), vconv.Backward))
	fmt.Println(rf)
	// Output: [0, 8)
}

// The geometry chain prints one layer per line, input to output.
func ExampleSequence_String() {
	seq := vconv.Sequence{
		vconv.Conv(1, 1).Stride(2).Name("enc").MustDone(),
		vconv.ConvTranspose(12, 12).InverseStride(5).Padding(4, 4).Name("up").MustDone(),
	}
	fmt.Println(seq)
	// Output:
	// Conv[enc](stride=2, wings=(1,1))
	// ConvT[up](invStride=5, wings=(12,12), pads=(4,4))
}
