// Package upload provides a frame-scoped pool of CPU-mapped, device-visible
// upload buffers.
//
// The pool hands out contiguous, exclusively-owned regions paired with a
// device address. Regions are write-once: the recording thread fills one,
// the device reads it, and the backing page is not remapped until the frame
// that issued it has cycled out of the in-flight window. Exclusivity is
// structural (one recording thread, epochs aligned to frame boundaries),
// so the pool takes no locks.
package upload

// Buffer is a CPU-mappable device buffer created by a Device.
type Buffer interface {
	// Mapping returns the buffer's persistent CPU mapping.
	Mapping() []byte

	// GPUAddress returns the buffer's device-visible base address.
	GPUAddress() uint64
}

// Device creates upload buffers. The production implementation wraps the
// host API's allocator; tests use an in-memory device.
type Device interface {
	CreateUploadBuffer(size uint32) (Buffer, error)
}

// regionAlign is the alignment of every region the pool returns. Index
// rewriting uses SIMD-width stores, and 16-byte alignment also lets 16- and
// 32-bit index data share a page safely.
const regionAlign = 16

// framesInFlight is how many frame boundaries must pass before a retired
// page may be remapped. The device may still be consuming a page for the
// frame after the one that recorded it.
const framesInFlight = 2

// page is one upload buffer plus its sub-allocation cursor.
type page struct {
	buffer  Buffer
	size    uint32
	offset  uint32
	retired uint64 // frame index the page was retired in
}

// Pool is a frame-scoped ring of upload pages.
type Pool struct {
	device   Device
	pageSize uint32

	frame   uint64
	current *page
	inFrame []*page // pages filled earlier in the current frame
	retired []*page // pages waiting out the in-flight window
	free    []*page // reclaimed standard-size pages

	requests uint64
}

// NewPool creates a pool that sub-allocates from pages of pageSize bytes.
// Requests larger than the page size get a dedicated buffer.
func NewPool(device Device, pageSize uint32) *Pool {
	return &Pool{device: device, pageSize: pageSize}
}

// Requests returns the number of successful allocations handed out. Exposed
// so callers can assert that rejected draws perform no allocation.
func (p *Pool) Requests() uint64 { return p.requests }

// BeginFrame opens a new frame epoch and reclaims pages whose frame has
// cycled out of the in-flight window.
func (p *Pool) BeginFrame() {
	p.frame++
	kept := p.retired[:0]
	for _, pg := range p.retired {
		if pg.retired+framesInFlight <= p.frame {
			if pg.size == p.pageSize {
				pg.offset = 0
				p.free = append(p.free, pg)
			}
			// Oversized pages are not pooled; dropping the reference
			// releases them.
			continue
		}
		kept = append(kept, pg)
	}
	p.retired = kept
}

// EndFrame retires every page used during the current frame.
func (p *Pool) EndFrame() {
	if p.current != nil {
		p.inFrame = append(p.inFrame, p.current)
		p.current = nil
	}
	for _, pg := range p.inFrame {
		pg.retired = p.frame
		p.retired = append(p.retired, pg)
	}
	p.inFrame = p.inFrame[:0]
}

// ClearCache drops every pooled page unconditionally. Used on state resets;
// outstanding regions must no longer be referenced by the device.
func (p *Pool) ClearCache() {
	p.current = nil
	p.inFrame = nil
	p.retired = nil
	p.free = nil
}

// RequestFull returns a contiguous region of exactly size bytes with its
// device address. The region is exclusively owned by the caller and is never
// shared with an unrelated request. Returns ok=false when the device cannot
// provide backing memory; the caller decides whether that is fatal.
func (p *Pool) RequestFull(size uint32) (mapping []byte, gpuAddress uint64, ok bool) {
	if size == 0 {
		return nil, 0, false
	}
	if size > p.pageSize {
		pg, err := p.newPage(size)
		if err != nil {
			return nil, 0, false
		}
		pg.offset = size
		p.inFrame = append(p.inFrame, pg)
		p.requests++
		return pg.buffer.Mapping()[:size], pg.buffer.GPUAddress(), true
	}

	if p.current != nil {
		p.current.offset = alignUp(p.current.offset, regionAlign)
	}
	if p.current == nil || p.current.size-p.current.offset < size {
		if p.current != nil {
			p.inFrame = append(p.inFrame, p.current)
			p.current = nil
		}
		pg, err := p.acquirePage()
		if err != nil {
			return nil, 0, false
		}
		p.current = pg
	}

	pg := p.current
	start := pg.offset
	pg.offset = start + size
	p.requests++
	return pg.buffer.Mapping()[start : start+size : start+size],
		pg.buffer.GPUAddress() + uint64(start), true
}

// acquirePage reuses a reclaimed page or creates a fresh one.
func (p *Pool) acquirePage() (*page, error) {
	if n := len(p.free); n > 0 {
		pg := p.free[n-1]
		p.free = p.free[:n-1]
		return pg, nil
	}
	return p.newPage(p.pageSize)
}

func (p *Pool) newPage(size uint32) (*page, error) {
	buf, err := p.device.CreateUploadBuffer(size)
	if err != nil {
		return nil, err
	}
	return &page{buffer: buf, size: size}, nil
}

// alignUp rounds value up to the next multiple of align (a power of two).
func alignUp(value, align uint32) uint32 {
	return (value + align - 1) &^ (align - 1)
}
