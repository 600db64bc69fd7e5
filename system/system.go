package system

import (
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"pagesim/console"
	"pagesim/memory"
	"pagesim/mmu"
)

// DefaultPoolPages is the size of the simulated physical memory, in pages.
const DefaultPoolPages = 16

// DefaultNodeBudget bounds the per-address-space directory node arena.
const DefaultNodeBudget = 64

// historyDepth is how many recent operations the status display keeps.
const historyDepth = 16

// AddressSpace bundles one page directory with the arena that backs its
// directory nodes. Dropping the address space drops the whole tree.
type AddressSpace struct {
	Name  string
	arena *mmu.Arena
	dir   *mmu.PageDirectory
}

// System definition.
type System struct {
	pool   *memory.Pool
	spaces []*AddressSpace

	// console and status output:
	console console.Console
	log     *logrus.Logger
	history *OpQueue
}

// InitializeSystem initializes the simulated MMU hardware: the physical
// pool shared by all address spaces, and the output plumbing.
func InitializeSystem(c console.Console, poolPages uint64, log *logrus.Logger) *System {
	sys := new(System)
	sys.console = c
	sys.log = log
	sys.pool = memory.NewPool(poolPages)
	sys.history = NewOpQueue(historyDepth)

	_ = sys.console.WriteConsole(fmt.Sprintf("Initializing MMU simulator, %d physical pages.\n", poolPages))
	return sys
}

// NewAddressSpace creates an empty address space on its own node arena.
func (sys *System) NewAddressSpace(name string) (*AddressSpace, error) {
	arena := mmu.NewArena(DefaultNodeBudget)
	dir, err := mmu.NewPageDirectory(arena)
	if err != nil {
		return nil, fmt.Errorf("address space %s: %w", name, err)
	}

	as := &AddressSpace{Name: name, arena: arena, dir: dir}
	sys.spaces = append(sys.spaces, as)
	sys.log.Debugf("address space %s created", name)
	return as, nil
}

// Allocate maps one page in the given address space and returns its
// virtual address.
func (sys *System) Allocate(as *AddressSpace) (mmu.VirtualAddress, error) {
	va, err := as.dir.AllocatePage(sys.pool)
	if err != nil {
		sys.history.Enqueue(fmt.Sprintf("%s: allocation failed: %v", as.Name, err))
		return 0, err
	}
	sys.history.Enqueue(fmt.Sprintf("%s: mapped %s", as.Name, va))
	sys.log.Debugf("%s: mapped %s", as.Name, va)
	return va, nil
}

// Translate resolves a virtual address against the given address space.
func (sys *System) Translate(as *AddressSpace, va mmu.VirtualAddress) (memory.PhysicalAddress, error) {
	pa, err := as.dir.Translate(va)
	if err != nil {
		sys.history.Enqueue(fmt.Sprintf("%s: %v", as.Name, err))
		return 0, err
	}
	return pa, nil
}

// Run executes the canned demonstration: two independent address spaces
// allocating interleaved from the shared pool, followed by translations of
// every mapped page, a sub-page byte address, and one deliberately
// unmapped address.
func (sys *System) Run() error {
	a, err := sys.NewAddressSpace("A")
	if err != nil {
		return err
	}
	b, err := sys.NewAddressSpace("B")
	if err != nil {
		return err
	}

	mapped := map[*AddressSpace][]mmu.VirtualAddress{}
	for _, as := range []*AddressSpace{a, a, b, b, a, b, a, b} {
		va, err := sys.Allocate(as)
		if err != nil {
			return err
		}
		pa, err := sys.Translate(as, va)
		if err != nil {
			return err
		}
		mapped[as] = append(mapped[as], va)
		_ = sys.console.WriteConsole(fmt.Sprintf("%s: page %2d  virtual %s  physical %#011x\n",
			as.Name, as.dir.Pages()-1, va, uint64(pa)))
	}

	// round trip every mapping once more, including a byte offset
	for _, as := range []*AddressSpace{a, b} {
		for _, va := range mapped[as] {
			byteAddr := va | 0x2a
			pa, err := sys.Translate(as, byteAddr)
			if err != nil {
				return err
			}
			_ = sys.console.WriteConsole(fmt.Sprintf("%s: translate %s -> %#011x\n",
				as.Name, byteAddr, uint64(pa)))
		}
	}

	// one page past A's mappings is unmapped and must fault
	unmapped := a.dir.NextAddress()
	if _, err := sys.Translate(a, unmapped); err != nil {
		var fault *mmu.PageFault
		if !errors.As(err, &fault) {
			return err
		}
		_ = sys.console.WriteConsole(fmt.Sprintf("A: translate %s -> %v (expected)\n", unmapped, fault))
	}

	_ = sys.console.WriteConsole(fmt.Sprintf("Done. %d of %d bytes committed.\n",
		sys.pool.Committed(), sys.pool.Capacity()))
	return nil
}

// DumpState renders the MMU state for the status view.
func (sys *System) DumpState() string {
	status := fmt.Sprintf("pool: %d/%d pages committed\n",
		sys.pool.Committed()>>memory.PageShift, sys.pool.Capacity()>>memory.PageShift)
	for _, as := range sys.spaces {
		status += fmt.Sprintf("%s: pages: %d  nodes: %d  next: %s\n",
			as.Name, as.dir.Pages(), as.arena.Len(), as.dir.NextAddress())
	}
	return status
}

// History returns descriptions of the most recent operations, oldest first.
func (sys *System) History() []string {
	return sys.history.Items()
}
