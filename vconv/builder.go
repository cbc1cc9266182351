package vconv

import (
	"github.com/gomlx/exceptions"
)

// LayerBuilder configures a Layer. Create one with Conv or ConvTranspose,
// chain the setters and finish with Done (or MustDone). The zero defaults
// are stride 1, inverse stride 1, no padding, unbounded input.
type LayerBuilder struct {
	layer Layer
}

// Conv starts the configuration of a forward (standard convolution or
// pooling) layer whose filter extends leftWing positions to the left and
// rightWing positions to the right of its reference position.
func Conv(leftWing, rightWing int) *LayerBuilder {
	return &LayerBuilder{layer: Layer{
		kind:      KindForward,
		stride:    1,
		invStride: 1,
		leftWing:  leftWing,
		rightWing: rightWing,
	}}
}

// ConvTranspose starts the configuration of a fractional-stride (upsampling)
// layer. The filter occupies the half-open expanded window
// [q - leftWing, q + rightWing) at output q; see the package documentation
// for the wing convention.
func ConvTranspose(leftWing, rightWing int) *LayerBuilder {
	return &LayerBuilder{layer: Layer{
		kind:      KindTranspose,
		stride:    1,
		invStride: 1,
		leftWing:  leftWing,
		rightWing: rightWing,
	}}
}

// Stride sets the forward stride. Only valid on Conv builders.
func (b *LayerBuilder) Stride(stride int) *LayerBuilder {
	b.layer.stride = stride
	return b
}

// InverseStride sets the transpose inverse stride S: S-1 spacing elements
// are inserted between consecutive input value elements. Only valid on
// ConvTranspose builders.
func (b *LayerBuilder) InverseStride(s int) *LayerBuilder {
	b.layer.invStride = s
	return b
}

// Padding sets the left and right padding applied to the expanded sequence
// of a transpose layer. Forward layers reject padding: their padding is
// virtual, owned by the caller's input domain.
func (b *LayerBuilder) Padding(left, right int) *LayerBuilder {
	b.layer.leftPad = left
	b.layer.rightPad = right
	return b
}

// InputLen declares how many input value elements the layer has available.
// Zero (the default) leaves the layer unbounded: receptive fields are not
// clamped and no feasibility limit applies.
func (b *LayerBuilder) InputLen(n int) *LayerBuilder {
	b.layer.inputLen = n
	return b
}

// Name attaches a label used by String and in error messages.
func (b *LayerBuilder) Name(name string) *LayerBuilder {
	b.layer.name = name
	return b
}

// Done validates the configuration and returns the immutable Layer, or an
// error wrapping ErrInvalidConfiguration.
func (b *LayerBuilder) Done() (*Layer, error) {
	layer := b.layer
	if err := layer.Validate(); err != nil {
		return nil, err
	}
	return &layer, nil
}

// MustDone is like Done but panics on invalid configurations. Meant for
// static layer stacks whose parameters are known correct.
func (b *LayerBuilder) MustDone() *Layer {
	layer, err := b.Done()
	if err != nil {
		exceptions.Panicf("vconv: %+v", err)
	}
	return layer
}
