// Package register models the emulated GPU's register file and the
// hardware's endian-swap conventions.
//
// Registers are opaque 32-bit words; which bits mean what is fixed by the
// emulated hardware contract and interpreted at the point of use.
package register

// Register is an index into the emulated register space.
type Register uint32

// Registers read by the draw path.
const (
	// SurfaceModeControl carries the rasterizer mode-control word; bit 21 is
	// the multi-primitive reset (primitive restart) enable.
	SurfaceModeControl Register = 0x2205

	// MultiPrimResetIndex is the raw primitive-restart index value, stored
	// in the source hardware's byte order.
	MultiPrimResetIndex Register = 0x2108
)

// registerSpace is one past the highest register index the hardware decodes.
const registerSpace = 0x5004

// File is the emulated register file: a dense array of 32-bit words.
type File struct {
	values []uint32
}

// NewFile creates a zero-initialized register file.
func NewFile() *File {
	return &File{values: make([]uint32, registerSpace)}
}

// Get reads a register word.
func (f *File) Get(r Register) uint32 { return f.values[r] }

// Set writes a register word.
func (f *File) Set(r Register, value uint32) { f.values[r] = value }

// Endian is the source hardware's byte-swap convention for GPU-visible data.
type Endian uint8

// Swap modes as encoded by the hardware.
const (
	EndianNone   Endian = 0 // no swap
	Endian8in16  Endian = 1 // swap bytes within 16-bit halves
	Endian8in32  Endian = 2 // full 32-bit byte swap
	Endian16in32 Endian = 3 // swap the 16-bit halves
)

// GpuSwap applies the hardware swap mode to a 32-bit word. Register values
// holding data constants (the restart index in particular) must be swapped
// the same way as the streams they are compared against.
func GpuSwap(value uint32, endianness Endian) uint32 {
	switch endianness {
	case Endian8in16:
		return (value&0x00FF00FF)<<8 | (value&0xFF00FF00)>>8
	case Endian8in32:
		value = (value&0x00FF00FF)<<8 | (value&0xFF00FF00)>>8
		return value<<16 | value>>16
	case Endian16in32:
		return value<<16 | value>>16
	default:
		return value
	}
}
