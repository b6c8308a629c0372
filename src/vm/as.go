// Package vm is the per-process container that ties together the four
// external collaborators a paging core needs — the descriptor table,
// the page-table editor, the frame allocator, and the swap file — plus
// the active replacement policy and offset allocator. It is grounded on
// the teacher's own vm package: Vm_t keeps the same Lock_pmap /
// Unlock_pmap / Lockassert_pmap discipline the teacher's address space
// used around page-fault resolution (a plain mutex held across a
// possibly-blocking operation, not a spinlock), but the fields
// underneath are this core's own — Vmregion/Pmap/P_pmap gave way to
// Desc/Pt/Fr/Swap/Offs/Pol, since an address space here is page-table
// mappings plus swap bookkeeping, not memory-mapped regions.
package vm

import (
	"sync"

	"desctab"
	"frame"
	"offsalloc"
	"pgtable"
	"policy"
	"swapfile"
)

// / Vm_t is one process's paging state. Per section 5, only the
// / process itself mutates this state while running; the lock exists to
// / serialize the fault handler against the lifecycle hooks (grow,
// / shrink, fork, exec, exit) rather than against other CPUs.
type Vm_t struct {
	sync.Mutex
	pgfltaken bool

	// / Desc is the page-descriptor table and residency queue.
	Desc *desctab.Desctab_t
	// / Pt is the page-table editor for this process.
	Pt pgtable.Pagetable_i
	// / Fr is the physical frame allocator.
	Fr frame.Frame_i
	// / Swap is the per-process swap file, nil for a reserved PID.
	Swap swapfile.Swapfile_i
	// / Offs is the free-offset allocator for Swap.
	Offs *offsalloc.Offsalloc_t
	// / Pol is the active replacement policy.
	Pol policy.Policy_i
}

// / Mk assembles a Vm_t from its already-constructed collaborators.
func Mk(desc *desctab.Desctab_t, pt pgtable.Pagetable_i, fr frame.Frame_i,
	swap swapfile.Swapfile_i, offs *offsalloc.Offsalloc_t, pol policy.Policy_i) *Vm_t {
	return &Vm_t{
		Desc: desc,
		Pt:   pt,
		Fr:   fr,
		Swap: swap,
		Offs: offs,
		Pol:  pol,
	}
}

// / Lock_pmap acquires the address space mutex and marks that a page
// / fault or lifecycle hook is being handled, mirroring the teacher's
// / pgfltaken bookkeeping used to catch double-locking bugs.
func (as *Vm_t) Lock_pmap() {
	as.Lock()
	as.pgfltaken = true
}

// / Unlock_pmap releases the address space mutex.
func (as *Vm_t) Unlock_pmap() {
	as.pgfltaken = false
	as.Unlock()
}

// / Lockassert_pmap panics if the address space mutex is not held.
func (as *Vm_t) Lockassert_pmap() {
	if !as.pgfltaken {
		panic("vm: pgmap lock must be held")
	}
}
