// Package pgtable is the page-table editor the paging core consumes
// as an external collaborator: walk/map/unmap plus the per-entry flag
// bits (section 6). The teacher's vm package reaches a real x86 page
// table through Pmap_t and walkpgdir; this package keeps the same
// entry-pointer API (Walk returns a pointer the caller mutates
// in-place, the way *pte_t works in the original) but backs it with a
// host-memory map, since there is no hardware table to walk.
package pgtable

import "sync"

import "mem"

// / Pagetable_i is the interface the page-fault handler and lifecycle
// / hooks use to inspect and mutate a process's mappings.
type Pagetable_i interface {
	Walk(va uintptr, create bool) (*mem.Pa_t, bool)
	Map(va uintptr, phys mem.Pa_t, flags mem.Pa_t)
	Unmap(va uintptr)
}

// / Sim_t is a host-memory stand-in for a hardware page table: a map
// / from page-aligned virtual address to a pointer-sized entry holding
// / the frame address and flag bits.
type Sim_t struct {
	sync.Mutex
	ptes map[uintptr]*mem.Pa_t
}

// / Mk allocates an empty page table.
func Mk() *Sim_t {
	return &Sim_t{ptes: make(map[uintptr]*mem.Pa_t)}
}

// / Walk returns the entry for va, page-aligning it first. When create
// / is false and no entry exists, ok is false.
func (pt *Sim_t) Walk(va uintptr, create bool) (*mem.Pa_t, bool) {
	pt.Lock()
	defer pt.Unlock()

	va = mem.PageDown(va)
	e, ok := pt.ptes[va]
	if !ok {
		if !create {
			return nil, false
		}
		e = new(mem.Pa_t)
		pt.ptes[va] = e
	}
	return e, true
}

// / Map installs phys at va with the given flags, creating the entry
// / if needed, and sets Present.
func (pt *Sim_t) Map(va uintptr, phys mem.Pa_t, flags mem.Pa_t) {
	e, _ := pt.Walk(va, true)
	pt.Lock()
	*e = (phys &^ mem.PGOFFSET) | (flags &^ mem.PTE_ADDR) | mem.PTE_P
	pt.Unlock()
}

// / Unmap removes va's entry entirely.
func (pt *Sim_t) Unmap(va uintptr) {
	pt.Lock()
	defer pt.Unlock()
	delete(pt.ptes, mem.PageDown(va))
}

// / Test reports whether all bits of flag are set in *e.
func Test(e *mem.Pa_t, flag mem.Pa_t) bool {
	return *e&flag == flag
}

// / Set turns on the bits of flag in *e.
func Set(e *mem.Pa_t, flag mem.Pa_t) {
	*e |= flag
}

// / Clear turns off the bits of flag in *e.
func Clear(e *mem.Pa_t, flag mem.Pa_t) {
	*e &^= flag
}

// / Addr extracts the frame address bits of *e.
func Addr(e *mem.Pa_t) mem.Pa_t {
	return *e & mem.PTE_ADDR
}
