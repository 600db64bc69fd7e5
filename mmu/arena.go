package mmu

import "pagesim/memory"

// entry is one directory node slot. Bit 0 is the validity marker; the zero
// value is unmapped. In an intermediate node the remaining bits carry the
// arena reference of the child, shifted into the address bits. In a leaf
// node the entry is the physical frame verbatim, which uses the same
// packing (page-aligned base, validity in bit 0).
type entry uint64

const entryValid entry = 1

func (e entry) valid() bool         { return e&entryValid != 0 }
func (e entry) node() NodeRef       { return NodeRef(e >> memory.PageShift) }
func (e entry) frame() memory.Frame { return memory.Frame(e) }

// nodeEntry packs a child node reference into an intermediate entry.
func nodeEntry(ref NodeRef) entry {
	return entry(ref)<<memory.PageShift | entryValid
}

// Node is one tier of the directory tree: a fixed array of slots, all
// unmapped when the node is created.
type Node [NodeEntries]entry

// NodeRef identifies a directory node within its NodeAllocator.
type NodeRef uint32

// NodeAllocator supplies backing storage for directory nodes. It is owned
// by the caller; the page directory only ever asks for fresh nodes and
// never frees them - the owner releases the whole allocator when the
// address space is torn down.
type NodeAllocator interface {
	// NewNode returns a reference to a fresh node with all slots unmapped.
	// Fails with ErrNodesExhausted when no more nodes can be supplied.
	NewNode() (NodeRef, error)

	// Node resolves a reference previously returned by NewNode. The
	// returned pointer is only guaranteed until the next NewNode call.
	Node(NodeRef) *Node
}

// Arena is the reference NodeAllocator: a flat growable table of nodes,
// children referenced by index. One arena backs exactly one address space,
// so dropping the arena releases the whole tree at once.
type Arena struct {
	nodes []Node
	limit int
}

// NewArena returns an arena bounded to the given number of nodes.
// A limit of zero or less means unbounded.
func NewArena(limit int) *Arena {
	return &Arena{limit: limit}
}

// NewNode appends a zeroed node to the arena.
func (a *Arena) NewNode() (NodeRef, error) {
	if a.limit > 0 && len(a.nodes) >= a.limit {
		return 0, ErrNodesExhausted
	}
	a.nodes = append(a.nodes, Node{})
	return NodeRef(len(a.nodes) - 1), nil
}

// Node resolves an arena index to its node.
func (a *Arena) Node(ref NodeRef) *Node {
	return &a.nodes[ref]
}

// Len returns the number of nodes handed out so far.
func (a *Arena) Len() int {
	return len(a.nodes)
}
