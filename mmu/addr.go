package mmu

import (
	"fmt"

	"pagesim/memory"
)

// Virtual address layout, most significant bits first:
//
//	63       51 50       38 37       25 24       12 11        0
//	|   L4     |    L3     |    L2     |    L1     |  offset  |
//
// Four index fields of levelBits each plus the page offset cover the full
// 64 bits, so every virtual address decomposes without remainder. The same
// decomposition drives both the allocation cursor and translation.
const (
	// pageLevels is the depth of the directory tree: L4 root down to L1 leaf.
	pageLevels = 4

	// levelBits is the number of virtual address bits consumed per level.
	levelBits = 13

	// NodeEntries is the number of slots in one directory node.
	NodeEntries = 1 << levelBits

	// maxPages is the number of virtual pages one address space can hold.
	maxPages = uint64(1) << (pageLevels * levelBits)
)

// levelShifts holds the right-shift that exposes each level's index field,
// L4 first.
var levelShifts = [pageLevels]uint{
	3*levelBits + memory.PageShift,
	2*levelBits + memory.PageShift,
	levelBits + memory.PageShift,
	memory.PageShift,
}

// VirtualAddress is a byte address within one address space.
type VirtualAddress uint64

func (va VirtualAddress) String() string {
	return fmt.Sprintf("%#016x", uint64(va))
}

// indices decomposes a virtual address into its per-level node indices,
// L4 first. The page offset is not part of the result.
func indices(va VirtualAddress) [pageLevels]int {
	var idx [pageLevels]int
	for level, shift := range levelShifts {
		idx[level] = int((uint64(va) >> shift) & (NodeEntries - 1))
	}
	return idx
}

// pageAddress rebuilds the page-aligned virtual address of the given
// virtual page number, the inverse of indices for a zero offset.
func pageAddress(page uint64) VirtualAddress {
	return VirtualAddress(page << memory.PageShift)
}
