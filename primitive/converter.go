package primitive

import (
	"encoding/binary"
	"log"

	"github.com/gogpu/xenos/register"
	"github.com/gogpu/xenos/upload"
)

// modeControlResetEnable is the multi-primitive reset enable bit in the
// surface mode-control register.
const modeControlResetEnable = uint32(1) << 21

// Converter rewrites draw-call index streams once per draw on the thread
// recording the frame's command stream. It reads restart state from the
// register file, source indices through the memory translator, and writes
// converted streams into the upload pool.
type Converter struct {
	regs *register.File
	mem  Memory
	pool *upload.Pool
}

// NewConverter creates a converter over the given register file, emulated
// memory translator, and scratch pool.
func NewConverter(regs *register.File, mem Memory, pool *upload.Pool) *Converter {
	return &Converter{regs: regs, mem: mem, pool: pool}
}

// BeginFrame opens a frame epoch in the scratch pool.
func (c *Converter) BeginFrame() { c.pool.BeginFrame() }

// EndFrame closes the current frame epoch.
func (c *Converter) EndFrame() { c.pool.EndFrame() }

// ClearCache drops all pooled scratch storage. Used on state resets.
func (c *Converter) ClearCache() { c.pool.ClearCache() }

// Convert inspects one indexed draw and rewrites its index stream if the
// topology or restart convention is not host-compatible.
//
// The conversion outcome is a four-way discriminated result; Conversion is
// meaningful only when the result is Converted, and then carries exactly the
// count of indices written.
func (c *Converter) Convert(sourceType Type, address, indexCount uint32,
	format IndexFormat, endianness register.Endian) (Conversion, ConversionResult) {

	reset := c.regs.Get(register.SurfaceModeControl)&modeControlResetEnable != 0
	// Swap the reset index because comparisons happen against unswapped
	// stream data.
	resetIndex := register.GpuSwap(c.regs.Get(register.MultiPrimResetIndex), endianness)
	// The host pipeline uses 0xFFFF for 16-bit and 0xFFFFFFFF for 32-bit
	// indices; if the guest uses the same value, the buffer works as is.
	resetIndexHost := uint32(0xFFFF)
	if format == IndexFormat32 {
		resetIndexHost = 0xFFFFFFFF
	}

	// Already host-supported topology with a benign restart state: use the
	// buffer directly, without reading index memory at all.
	if sourceType != TypeTriangleFan && (!reset || resetIndex == resetIndexHost) {
		return Conversion{}, ConversionNotNeeded
	}

	// Exit early for clearly empty draws, still without touching memory.
	switch sourceType {
	case TypeTriangleFan, TypeTriangleStrip, TypeTriangleList:
		if indexCount < 3 {
			return Conversion{}, PrimitiveEmpty
		}
	case TypeLineStrip, TypeLineLoop, TypeLineList:
		if indexCount < 2 {
			return Conversion{}, PrimitiveEmpty
		}
	}

	if sourceType != TypeTriangleFan {
		// Restart-index remapping for strips and indexed line loops is not
		// implemented; degrade to the unconverted buffer rather than claim a
		// converted count that was never written.
		return Conversion{}, ConversionNotNeeded
	}

	if reset {
		// Triangle fans with primitive restart would need stream inspection
		// to size the output; unsupported in this iteration.
		return Conversion{}, Failed
	}

	// Fan expansion: every triangle shares the first vertex as an apex, so
	// the list form is known analytically before reading any index data.
	convertedCount := 3 * (indexCount - 2)

	source := indexView{data: c.mem.TranslatePhysical(address), format: format}
	// SIMD-phase rewriting is an extension point: a rewrite that uses SIMD
	// lane replacement would pass address&15 here to mirror the source
	// phase. The fan expansion below is scalar, so no phase is requested.
	var simdOffset uint32
	target, gpuAddress, ok := c.allocateIndices(format, convertedCount, simdOffset)
	if !ok {
		return Conversion{}, Failed
	}

	// Fans are ordered as (v1, v2, v0), (v2, v3, v0): vertex 0 is the shared
	// apex and consecutive pairs sweep the perimeter.
	out := uint32(0)
	for i := uint32(2); i < indexCount; i++ {
		target.put(out, source.at(i))
		target.put(out+1, source.at(i-1))
		target.put(out+2, source.at(0))
		out += 3
	}

	return Conversion{GPUAddress: gpuAddress, IndexCount: convertedCount}, Converted
}

// allocateIndices requests scratch space for count converted indices. The
// size is 16-aligned so SIMD rewrites stay aligned and 16- and 32-bit index
// data can share a page; a non-zero simdOffset reserves one extra 16-byte
// block and offsets the returned region by the phase so SIMD lanes line up
// identically in source and destination.
func (c *Converter) allocateIndices(format IndexFormat, count, simdOffset uint32) (indexView, uint64, bool) {
	if count == 0 {
		return indexView{}, 0, false
	}
	size := alignUp(count*format.ByteSize(), 16)
	simdOffset &= 15
	if simdOffset != 0 {
		size += 16
	}
	mapping, gpuAddress, ok := c.pool.RequestFull(size)
	if !ok {
		log.Printf("primitive: failed to allocate space for %d converted %d-bit vertex indices",
			count, format.Bits())
		return indexView{}, 0, false
	}
	return indexView{data: mapping[simdOffset:], format: format},
		gpuAddress + uint64(simdOffset), ok
}

// indexView is a typed view over raw index memory: the element format is
// chosen once per call and used consistently for every access.
type indexView struct {
	data   []byte
	format IndexFormat
}

// at reads the i-th index element.
func (v indexView) at(i uint32) uint32 {
	if v.format == IndexFormat32 {
		return binary.LittleEndian.Uint32(v.data[i*4:])
	}
	return uint32(binary.LittleEndian.Uint16(v.data[i*2:]))
}

// put writes the i-th index element.
func (v indexView) put(i, value uint32) {
	if v.format == IndexFormat32 {
		binary.LittleEndian.PutUint32(v.data[i*4:], value)
		return
	}
	binary.LittleEndian.PutUint16(v.data[i*2:], uint16(value))
}

// alignUp rounds value up to the next multiple of align (a power of two).
func alignUp(value, align uint32) uint32 {
	return (value + align - 1) &^ (align - 1)
}
