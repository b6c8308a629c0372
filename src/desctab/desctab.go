// Package desctab is the per-process page-descriptor table and
// residency queue (component 4.1): the single owner of what pages a
// process has allocated and whether each is resident or paged out.
// Grounded on proc.c's pagesDS/inRAMQueue arrays and their
// accompanying fixQueue/insert/removeOffsetQueue routines, but modeled
// per design note 9 as one owner (the slot array) plus an
// integer-indexed view (the queue) and a vaddr→slot index, rather than
// the three-way back-pointer tangle a literal port would produce.
//
// Callers serialize access; the owning Vm_t's lock must be held for
// the duration of any method call here, the same discipline the
// teacher's Vm_t.Lock_pmap enforces around Pmap and Vmregion access.
package desctab

import "caller"
import "defs"
import "hashtable"

// / NoOffset is the sentinel recorded for a resident page's swap
// / offset, matching the source's file_offset = -1 convention.
const NoOffset int64 = -1

// / Descriptor_t is one page's bookkeeping record. Age is meaningful
// / only under the aging policies (NFUA/LAPA); SCFIFO and AQ ignore it.
type Descriptor_t struct {
	Vaddr     uintptr
	Offset    int64
	Resident  bool
	Allocated bool
	Age       uint32
}

// / Desctab_t is the fixed-capacity descriptor table plus its
// / residency queue and vaddr index.
type Desctab_t struct {
	slots       []Descriptor_t
	queue       []int
	maxResident int
	index       *hashtable.Hashtable_t[uintptr, int]

	AllocatedPages  int
	PagedOutNow     int
	PageFaultsTotal int
	PagedOutTotal   int
}

// / Mk allocates a table able to track maxTotal pages with at most
// / maxResident of them in RAM at once.
func Mk(maxTotal, maxResident int) *Desctab_t {
	return &Desctab_t{
		slots:       make([]Descriptor_t, maxTotal),
		queue:       make([]int, 0, maxResident),
		maxResident: maxResident,
		index:       hashtable.Mk[uintptr, int](maxTotal, hashtable.HashUintptr[uintptr]),
	}
}

// / Slot returns a pointer to the descriptor at the given slot index.
func (d *Desctab_t) Slot(i int) *Descriptor_t {
	return &d.slots[i]
}

// / FindSlot returns the slot allocated for va, if any.
func (d *Desctab_t) FindSlot(va uintptr) (int, bool) {
	i, ok := d.index.Get(va)
	if !ok || !d.slots[i].Allocated {
		return 0, false
	}
	return i, true
}

// / AllocSlot reserves the first unallocated slot for va. Fails with
// / ETOOMANYPAGES once every slot is in use, per the grow hook's
// / contract in section 4.6.
func (d *Desctab_t) AllocSlot(va uintptr) (int, defs.Err_t) {
	for i := range d.slots {
		if !d.slots[i].Allocated {
			d.slots[i] = Descriptor_t{Vaddr: va, Offset: NoOffset, Allocated: true}
			d.index.Set(va, i)
			d.AllocatedPages++
			return i, 0
		}
	}
	return 0, -defs.ETOOMANYPAGES
}

// / FreeSlot resets the slot for va. If the page was resident it is
// / pulled out of the residency queue; if it was paged out, its
// / offset is returned to the caller to hand back to the offset
// / allocator. Fails with ENOSUCHPAGE if va has no allocated slot.
func (d *Desctab_t) FreeSlot(va uintptr) (freedOffset int64, wasResident bool, err defs.Err_t) {
	i, ok := d.FindSlot(va)
	if !ok {
		return NoOffset, false, -defs.ENOSUCHPAGE
	}
	desc := &d.slots[i]
	wasResident = desc.Resident
	freedOffset = desc.Offset
	if wasResident {
		d.removeFromQueue(i)
	}
	*desc = Descriptor_t{}
	d.index.Del(va)
	d.AllocatedPages--
	if !wasResident {
		d.PagedOutNow--
	}
	return freedOffset, wasResident, 0
}

// / EnqueueResident appends slot to the tail of the residency queue.
// / Panics on overflow: a correct caller never lets resident count
// / exceed MAX_PSYC_PAGES before enqueuing (see eviction, 4.4).
func (d *Desctab_t) EnqueueResident(slot int) {
	if len(d.queue) >= d.maxResident {
		caller.Panicf("desctab: residency queue full (invariant I6/I2 violated)")
	}
	d.queue = append(d.queue, slot)
	d.slots[slot].Resident = true
}

// / DequeueResident pops the head of the residency queue.
func (d *Desctab_t) DequeueResident() (int, bool) {
	if len(d.queue) == 0 {
		return 0, false
	}
	slot := d.queue[0]
	d.queue = d.queue[1:]
	return slot, true
}

// / RemoveResident removes slot from wherever it sits in the residency
// / queue, left-packing the remainder — the same compaction fixQueue
// / performs by shifting tail entries over the removed index.
func (d *Desctab_t) RemoveResident(slot int) {
	d.removeFromQueue(slot)
}

func (d *Desctab_t) removeFromQueue(slot int) {
	for k, s := range d.queue {
		if s == slot {
			d.queue = append(d.queue[:k], d.queue[k+1:]...)
			return
		}
	}
	caller.Panicf("desctab: slot %d not present in residency queue", slot)
}

// / Queue returns the residency queue in head-to-tail order. Callers
// / must not retain the slice across a mutating call.
func (d *Desctab_t) Queue() []int {
	return d.queue
}

// / ResidentCount returns the number of descriptors currently in RAM.
func (d *Desctab_t) ResidentCount() int {
	return len(d.queue)
}

// / MaxResident returns the residency queue's capacity
// / (MAX_PSYC_PAGES).
func (d *Desctab_t) MaxResident() int {
	return d.maxResident
}

// / Cap returns the descriptor table's capacity (MAX_TOTAL_PAGES).
func (d *Desctab_t) Cap() int {
	return len(d.slots)
}

// / Snapshot captures every field of the table needed to restore it
// / verbatim — used by exec's transactional reset (section 4.6,
// / property P6).
type Snapshot_t struct {
	slots           []Descriptor_t
	queue           []int
	allocatedPages  int
	pagedOutNow     int
	pageFaultsTotal int
	pagedOutTotal   int
}

// / Snapshot takes a deep copy of the table's current state.
func (d *Desctab_t) Snapshot() Snapshot_t {
	s := Snapshot_t{
		slots:           make([]Descriptor_t, len(d.slots)),
		queue:           make([]int, len(d.queue)),
		allocatedPages:  d.AllocatedPages,
		pagedOutNow:     d.PagedOutNow,
		pageFaultsTotal: d.PageFaultsTotal,
		pagedOutTotal:   d.PagedOutTotal,
	}
	copy(s.slots, d.slots)
	copy(s.queue, d.queue)
	return s
}

// / Restore replaces the table's state with a previously taken
// / snapshot, rebuilding the vaddr index to match.
func (d *Desctab_t) Restore(s Snapshot_t) {
	d.slots = make([]Descriptor_t, len(s.slots))
	copy(d.slots, s.slots)
	d.queue = make([]int, len(s.queue))
	copy(d.queue, s.queue)
	d.AllocatedPages = s.allocatedPages
	d.PagedOutNow = s.pagedOutNow
	d.PageFaultsTotal = s.pageFaultsTotal
	d.PagedOutTotal = s.pagedOutTotal

	d.index = hashtable.Mk[uintptr, int](len(d.slots), hashtable.HashUintptr[uintptr])
	for i := range d.slots {
		if d.slots[i].Allocated {
			d.index.Set(d.slots[i].Vaddr, i)
		}
	}
}

// / CloneForFork builds a new table for a child process: every
// / descriptor, the residency queue, and the allocated/paged-out
// / counters are copied verbatim (per section 4.6, fork), but
// / PageFaultsTotal starts at zero since a child has faulted on nothing
// / yet. Policy-specific Age values ride along unchanged inside the
// / copied descriptors.
func (d *Desctab_t) CloneForFork() *Desctab_t {
	c := &Desctab_t{
		slots:           make([]Descriptor_t, len(d.slots)),
		queue:           make([]int, len(d.queue)),
		maxResident:     d.maxResident,
		index:           hashtable.Mk[uintptr, int](len(d.slots), hashtable.HashUintptr[uintptr]),
		AllocatedPages:  d.AllocatedPages,
		PagedOutNow:     d.PagedOutNow,
		PageFaultsTotal: 0,
		PagedOutTotal:   d.PagedOutTotal,
	}
	copy(c.slots, d.slots)
	copy(c.queue, d.queue)
	for i := range c.slots {
		if c.slots[i].Allocated {
			c.index.Set(c.slots[i].Vaddr, i)
		}
	}
	return c
}

// / Reset clears the table entirely, as exec does on a successful
// / image load (section 4.6): every descriptor, the queue, and the
// / fault/paged-out counters return to a fresh process's initial
// / state.
func (d *Desctab_t) Reset() {
	d.slots = make([]Descriptor_t, len(d.slots))
	d.queue = d.queue[:0]
	d.index = hashtable.Mk[uintptr, int](len(d.slots), hashtable.HashUintptr[uintptr])
	d.AllocatedPages = 0
	d.PagedOutNow = 0
	d.PageFaultsTotal = 0
	d.PagedOutTotal = 0
}
