package memory

import (
	"errors"
	"sync"
)

// PageShift is log2 of the page size. Shifting an address right by PageShift
// yields its physical page number.
const PageShift = 12

// PageSize - fixed size of a single memory page in bytes.
const PageSize = 1 << PageShift

// OffsetMask selects the page-offset bits of an address.
const OffsetMask = PageSize - 1

// ErrOutOfMemory is returned when committing one more page would exceed
// the capacity of the physical pool.
var ErrOutOfMemory = errors.New("physical memory pool exhausted")

// PhysicalAddress is a byte address within the simulated physical memory.
type PhysicalAddress uint64

// Frame is a physical page handed out by the pool: the page-aligned base
// address packed with a validity marker in bit 0. Base addresses are page
// aligned, so the low bits are otherwise unused.
type Frame uint64

const frameValid Frame = 1

// Valid reports whether the frame carries the validity marker.
// The zero Frame is not valid.
func (f Frame) Valid() bool { return f&frameValid != 0 }

// Address returns the page-aligned base address of the frame.
func (f Frame) Address() PhysicalAddress { return PhysicalAddress(f) &^ OffsetMask }

// Pool is the process-wide physical memory: a bounded, monotonic bump
// allocator over a fixed amount of conceptual RAM. Pages are handed out in
// address order and never recycled - there is no free operation.
//
// The capacity check and the commit happen under one mutex, so address
// spaces allocating concurrently cannot over-commit the pool.
type Pool struct {
	mu        sync.Mutex
	capacity  uint64 // bytes
	committed uint64 // bytes, always a multiple of PageSize
}

// NewPool returns a pool holding the given number of physical pages.
func NewPool(pages uint64) *Pool {
	return &Pool{capacity: pages * PageSize}
}

// ReservePage commits one page of physical memory and returns its frame.
// Fails with ErrOutOfMemory, leaving the pool untouched, if one more page
// does not fit.
func (p *Pool) ReservePage() (Frame, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.committed+PageSize > p.capacity {
		return 0, ErrOutOfMemory
	}
	frame := Frame(p.committed) | frameValid
	p.committed += PageSize
	return frame, nil
}

// Committed returns the number of bytes handed out so far.
func (p *Pool) Committed() uint64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.committed
}

// Capacity returns the pool size in bytes.
func (p *Pool) Capacity() uint64 {
	return p.capacity
}

// Remaining returns the number of pages still available.
func (p *Pool) Remaining() uint64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return (p.capacity - p.committed) >> PageShift
}
