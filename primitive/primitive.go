// Package primitive converts draw-call index streams from the legacy GPU's
// topologies and primitive-restart conventions into forms the host API
// accepts.
//
// The host API has no triangle fans and only understands the 0xFFFF /
// 0xFFFFFFFF restart sentinels, while the source hardware draws fans freely
// and allows an arbitrary restart index in either byte order. The Converter
// inspects the draw state, decides whether the index stream needs rewriting,
// and if so writes the converted indices into frame-scoped scratch memory.
package primitive

import "fmt"

// Type is a source primitive type, encoded as the hardware encodes it.
type Type uint8

// Source primitive types.
const (
	TypeNone          Type = 0
	TypePointList     Type = 1
	TypeLineList      Type = 2
	TypeLineStrip     Type = 3
	TypeTriangleList  Type = 4
	TypeTriangleFan   Type = 5
	TypeTriangleStrip Type = 6
	TypeRectangleList Type = 8
	TypeLineLoop      Type = 12
	TypeQuadList      Type = 13
)

// String returns the primitive type's name.
func (t Type) String() string {
	switch t {
	case TypeNone:
		return "none"
	case TypePointList:
		return "point list"
	case TypeLineList:
		return "line list"
	case TypeLineStrip:
		return "line strip"
	case TypeTriangleList:
		return "triangle list"
	case TypeTriangleFan:
		return "triangle fan"
	case TypeTriangleStrip:
		return "triangle strip"
	case TypeRectangleList:
		return "rectangle list"
	case TypeLineLoop:
		return "line loop"
	case TypeQuadList:
		return "quad list"
	}
	return fmt.Sprintf("Type(%d)", uint8(t))
}

// ReplacementType returns the host primitive type draws of t must be issued
// with. Triangle fans are not supported by the host API at all and are
// replaced with triangle lists; everything else passes through.
func ReplacementType(t Type) Type {
	if t == TypeTriangleFan {
		return TypeTriangleList
	}
	return t
}

// IndexFormat is the element width of an index stream.
type IndexFormat uint8

// Index formats.
const (
	IndexFormat16 IndexFormat = iota // 16-bit indices
	IndexFormat32                    // 32-bit indices
)

// ByteSize returns the size in bytes of one index element.
func (f IndexFormat) ByteSize() uint32 {
	if f == IndexFormat32 {
		return 4
	}
	return 2
}

// Bits returns the element width in bits.
func (f IndexFormat) Bits() uint32 {
	if f == IndexFormat32 {
		return 32
	}
	return 16
}

// ConversionResult is the outcome of a conversion attempt. No other states
// are reachable.
type ConversionResult uint8

const (
	// ConversionNotNeeded means the index buffer may be used directly.
	ConversionNotNeeded ConversionResult = iota

	// PrimitiveEmpty means the draw has too few indices to produce any
	// primitive; the caller must skip it rather than render garbage.
	PrimitiveEmpty

	// Converted means the rewritten stream at Conversion.GPUAddress must be
	// used, with exactly Conversion.IndexCount indices.
	Converted

	// Failed means scratch memory could not be allocated; the caller must
	// skip the draw. Not fatal; the pool recycles on later frames.
	Failed
)

// String returns the result's name.
func (r ConversionResult) String() string {
	switch r {
	case ConversionNotNeeded:
		return "not needed"
	case PrimitiveEmpty:
		return "empty"
	case Converted:
		return "converted"
	case Failed:
		return "failed"
	}
	return fmt.Sprintf("ConversionResult(%d)", uint8(r))
}

// Conversion describes a rewritten index stream: the device address of the
// converted data and the index count to draw with. The region is read-only
// once returned and stays valid until its frame cycles out of the pool.
type Conversion struct {
	GPUAddress uint64
	IndexCount uint32
}

// Memory translates emulated physical addresses to host-readable memory.
// The returned slice must cover at least the index data being converted.
type Memory interface {
	TranslatePhysical(address uint32) []byte
}
