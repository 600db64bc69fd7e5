package mmu

import (
	"errors"
	"testing"

	"pagesim/memory"
)

var indicesTests = []struct {
	va  VirtualAddress
	idx [pageLevels]int
}{
	{0, [pageLevels]int{0, 0, 0, 0}},
	{memory.PageSize, [pageLevels]int{0, 0, 0, 1}},
	{memory.PageSize + 42, [pageLevels]int{0, 0, 0, 1}},
	{(NodeEntries - 1) * memory.PageSize, [pageLevels]int{0, 0, 0, NodeEntries - 1}},
	{NodeEntries * memory.PageSize, [pageLevels]int{0, 0, 1, 0}},
	{NodeEntries * NodeEntries * memory.PageSize, [pageLevels]int{0, 1, 0, 0}},
	{VirtualAddress(uint64(NodeEntries) * NodeEntries * NodeEntries * memory.PageSize), [pageLevels]int{1, 0, 0, 0}},
	{VirtualAddress(^uint64(0)), [pageLevels]int{NodeEntries - 1, NodeEntries - 1, NodeEntries - 1, NodeEntries - 1}},
}

func TestIndices(t *testing.T) {
	for _, test := range indicesTests {
		if got := indices(test.va); got != test.idx {
			t.Errorf("indices(%s) = %v, want %v", test.va, got, test.idx)
		}
	}
}

func TestRoundTrip(t *testing.T) {
	pool := memory.NewPool(8)
	dir, err := NewPageDirectory(NewArena(0))
	if err != nil {
		t.Fatal(err)
	}

	for i := uint64(0); i < 8; i++ {
		va, err := dir.AllocatePage(pool)
		if err != nil {
			t.Fatalf("AllocatePage %d: %v", i, err)
		}

		pa, err := dir.Translate(va)
		if err != nil {
			t.Fatalf("Translate(%s): %v", va, err)
		}
		// the pool is fresh and bumps from zero, so allocation i owns
		// the i-th physical page
		if want := memory.PhysicalAddress(i * memory.PageSize); pa != want {
			t.Errorf("Translate(%s) = %#x, want %#x", va, pa, want)
		}
	}
}

func TestOffsetPreservation(t *testing.T) {
	pool := memory.NewPool(4)
	dir, err := NewPageDirectory(NewArena(0))
	if err != nil {
		t.Fatal(err)
	}

	va, err := dir.AllocatePage(pool)
	if err != nil {
		t.Fatal(err)
	}
	base, err := dir.Translate(va)
	if err != nil {
		t.Fatal(err)
	}

	for _, offset := range []uint64{1, 2, 0x7ff, memory.PageSize - 1} {
		pa, err := dir.Translate(va | VirtualAddress(offset))
		if err != nil {
			t.Fatalf("Translate(%s | %#x): %v", va, offset, err)
		}
		if want := base | memory.PhysicalAddress(offset); pa != want {
			t.Errorf("Translate(%s | %#x) = %#x, want %#x", va, offset, pa, want)
		}
	}
}

func TestTranslateEmptyDirectory(t *testing.T) {
	dir, err := NewPageDirectory(NewArena(0))
	if err != nil {
		t.Fatal(err)
	}

	for _, va := range []VirtualAddress{0, 42, memory.PageSize, 1 << 40, VirtualAddress(^uint64(0))} {
		_, err := dir.Translate(va)
		var fault *PageFault
		if !errors.As(err, &fault) {
			t.Fatalf("Translate(%s) on empty directory: got %v, want PageFault", va, err)
		}
		if fault.Level != pageLevels {
			t.Errorf("Translate(%s): faulted at level %d, want %d (root)", va, fault.Level, pageLevels)
		}
	}
}

// A leaf slot that was never written must fault even though its containing
// node exists because of a sibling allocation.
func TestInvalidLeafFault(t *testing.T) {
	pool := memory.NewPool(4)
	dir, err := NewPageDirectory(NewArena(0))
	if err != nil {
		t.Fatal(err)
	}

	va, err := dir.AllocatePage(pool)
	if err != nil {
		t.Fatal(err)
	}

	// the sibling slot shares the same leaf node but holds its zero value
	sibling := va + memory.PageSize
	_, err = dir.Translate(sibling)
	var fault *PageFault
	if !errors.As(err, &fault) {
		t.Fatalf("Translate(%s): got %v, want PageFault", sibling, err)
	}
	if fault.Level != 1 {
		t.Errorf("Translate(%s): faulted at level %d, want 1 (leaf)", sibling, fault.Level)
	}
}

func TestMonotonicAddresses(t *testing.T) {
	const n = 16
	pool := memory.NewPool(n)
	dir, err := NewPageDirectory(NewArena(0))
	if err != nil {
		t.Fatal(err)
	}

	var prev VirtualAddress
	for i := 0; i < n; i++ {
		va, err := dir.AllocatePage(pool)
		if err != nil {
			t.Fatalf("AllocatePage %d: %v", i, err)
		}
		if i > 0 && va <= prev {
			t.Errorf("AllocatePage %d: address %s not above previous %s", i, va, prev)
		}
		prev = va
	}

	if pages := dir.Pages(); pages != n {
		t.Errorf("Pages() = %d, want %d", pages, n)
	}
}

func TestNodesExhausted(t *testing.T) {
	pool := memory.NewPool(4)

	// the root consumes the only node the arena holds, so the first
	// allocation cannot build its L3/L2/L1 path
	dir, err := NewPageDirectory(NewArena(1))
	if err != nil {
		t.Fatal(err)
	}

	_, err = dir.AllocatePage(pool)
	if !errors.Is(err, ErrNodesExhausted) {
		t.Fatalf("AllocatePage with full arena: got %v, want ErrNodesExhausted", err)
	}
	if errors.Is(err, memory.ErrOutOfMemory) {
		t.Error("node exhaustion must stay distinguishable from physical exhaustion")
	}

	// no room for even the root
	if _, err := NewPageDirectory(failingAllocator{}); !errors.Is(err, ErrNodesExhausted) {
		t.Errorf("NewPageDirectory with exhausted allocator: got %v, want ErrNodesExhausted", err)
	}
}

// failingAllocator is a NodeAllocator that never has storage.
type failingAllocator struct{}

func (failingAllocator) NewNode() (NodeRef, error) { return 0, ErrNodesExhausted }
func (failingAllocator) Node(NodeRef) *Node        { return nil }

func TestVirtualSpaceExhausted(t *testing.T) {
	pool := memory.NewPool(4)
	dir, err := NewPageDirectory(NewArena(0))
	if err != nil {
		t.Fatal(err)
	}

	// force the cursor to the edge of the virtual index space
	dir.cursor = maxPages

	_, err = dir.AllocatePage(pool)
	if !errors.Is(err, ErrVirtualExhausted) {
		t.Fatalf("AllocatePage past virtual capacity: got %v, want ErrVirtualExhausted", err)
	}
	// the configuration defect must not commit physical memory
	if committed := pool.Committed(); committed != 0 {
		t.Errorf("Committed() = %d after ErrVirtualExhausted, want 0", committed)
	}
	if dir.cursor != maxPages {
		t.Errorf("cursor moved to %d on failure", dir.cursor)
	}
}
