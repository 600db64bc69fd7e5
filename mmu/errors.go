package mmu

import (
	"errors"
	"fmt"
)

// ErrNodesExhausted is returned by a NodeAllocator that cannot supply one
// more directory node. Deliberately distinct from memory.ErrOutOfMemory:
// running out of node storage and running out of physical pages are
// different failures and callers must be able to tell them apart.
var ErrNodesExhausted = errors.New("directory node storage exhausted")

// ErrVirtualExhausted is returned when the allocation cursor has consumed
// the whole virtual index space while physical pages are still available.
// That means the address space was configured with less virtual than
// physical capacity - a setup defect, not a runtime condition.
var ErrVirtualExhausted = errors.New("internal error: virtual index space exhausted")

// PageFault reports a translation that reached an absent directory slot or
// an invalid leaf entry. Level records the directory level that faulted,
// 4 for the root down to 1 for the leaf.
type PageFault struct {
	Addr  VirtualAddress
	Level int
}

func (f *PageFault) Error() string {
	return fmt.Sprintf("page fault at %s: level %d entry not mapped", f.Addr, f.Level)
}
