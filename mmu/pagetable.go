package mmu

import (
	"fmt"

	"pagesim/memory"
)

// PageDirectory is the root of one address space's page table: a four-level
// radix tree mapping virtual pages to physical frames. Levels are built
// lazily as pages are allocated; translation walks them read-only.
//
// A directory is not safe for concurrent mutation. Callers must serialize
// AllocatePage per directory and keep Translate from overlapping it.
// Translations alone may run concurrently.
type PageDirectory struct {
	alloc NodeAllocator
	root  NodeRef

	// cursor is the next virtual page number to hand out. It only ever
	// increases, so virtual pages are never reused within one address
	// space's lifetime.
	cursor uint64
}

// NewPageDirectory returns a fresh, empty address space root: cursor at
// zero, every slot absent. Node storage comes from the supplied allocator.
func NewPageDirectory(alloc NodeAllocator) (*PageDirectory, error) {
	root, err := alloc.NewNode()
	if err != nil {
		return nil, fmt.Errorf("page directory root: %w", err)
	}
	return &PageDirectory{alloc: alloc, root: root}, nil
}

// AllocatePage reserves one physical page from the pool, maps it at the
// next virtual page, and returns that page's virtual address. Directory
// levels on the path are created on first use.
//
// Fails with ErrVirtualExhausted (nothing mutated) if the cursor has run
// past the virtual index space, with memory.ErrOutOfMemory if the pool is
// full, and with ErrNodesExhausted if the node allocator cannot supply an
// intermediate node.
func (p *PageDirectory) AllocatePage(pool *memory.Pool) (VirtualAddress, error) {
	if p.cursor >= maxPages {
		return 0, ErrVirtualExhausted
	}

	frame, err := pool.ReservePage()
	if err != nil {
		return 0, err
	}

	va := pageAddress(p.cursor)
	idx := indices(va)

	ref := p.root
	for level := 0; level < pageLevels-1; level++ {
		e := p.alloc.Node(ref)[idx[level]]
		if !e.valid() {
			child, err := p.alloc.NewNode()
			if err != nil {
				return 0, fmt.Errorf("level %d node: %w", pageLevels-1-level, err)
			}
			e = nodeEntry(child)
			// NewNode may have moved the arena, resolve ref again.
			p.alloc.Node(ref)[idx[level]] = e
		}
		ref = e.node()
	}

	p.alloc.Node(ref)[idx[pageLevels-1]] = entry(frame)
	p.cursor++
	return va, nil
}

// Translate resolves a virtual address to its physical address. The walk is
// read-only; it fails with a PageFault at the first absent slot, or at the
// leaf if the entry was never written. The page-offset bits of va carry
// over into the result, so any byte address translates, not just
// page-aligned ones.
func (p *PageDirectory) Translate(va VirtualAddress) (memory.PhysicalAddress, error) {
	idx := indices(va)

	ref := p.root
	for level := 0; level < pageLevels-1; level++ {
		e := p.alloc.Node(ref)[idx[level]]
		if !e.valid() {
			return 0, &PageFault{Addr: va, Level: pageLevels - level}
		}
		ref = e.node()
	}

	e := p.alloc.Node(ref)[idx[pageLevels-1]]
	if !e.valid() {
		return 0, &PageFault{Addr: va, Level: 1}
	}

	offset := memory.PhysicalAddress(uint64(va) & memory.OffsetMask)
	return e.frame().Address() | offset, nil
}

// Pages returns the number of pages allocated in this address space.
func (p *PageDirectory) Pages() uint64 {
	return p.cursor
}

// NextAddress returns the virtual address the next allocation will map.
func (p *PageDirectory) NextAddress() VirtualAddress {
	return pageAddress(p.cursor)
}
