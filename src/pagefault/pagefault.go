// Package pagefault implements the page-fault handler and eviction
// (components 4.3 and 4.4): the glue between the descriptor table,
// the active replacement policy, the frame allocator, the page-table
// editor, and the swap file. Grounded on trap.c's T_PGFLT case and
// proc.c's swapToFile/insert/removeOffsetQueue sequence, restructured
// per design note 9 to take its process context as an explicit
// argument rather than through myproc().
//
// The ordering within Fault follows section 5's happens-before chain
// verbatim: eviction of the victim completes in full — including its
// swap write and its page-table entry going P=0/PG=1 — strictly
// before a new frame is obtained and mapped for the faulting address.
// Two entries are never Present at once.
package pagefault

import "accnt"
import "caller"
import "defs"
import "desctab"
import "frame"
import "mem"
import "offsalloc"
import "oommsg"
import "pgtable"
import "policy"
import "swapfile"

// / Deps_t bundles the external collaborators and per-process state a
// / single fault or eviction needs. It is built fresh by the pvm
// / package for each call rather than stored, keeping this package
// / free of any notion of "the current process".
type Deps_t struct {
	Pid   defs.Pid_t
	Desc  *desctab.Desctab_t
	Pt    pgtable.Pagetable_i
	Fr    frame.Frame_i
	Swap  swapfile.Swapfile_i
	Pol   policy.Policy_i
	Offs  *offsalloc.Offsalloc_t
	Accnt *accnt.Accnt_t
}

// / Fault services a page fault at the given virtual address.
// /
// / Returns 0 on success. Returns -defs.ENOTOURPAGE if va has no
// / allocated descriptor — the caller treats that as a genuine
// / user-space fault and kills the process. Returns -defs.ENOMEM
// / (OutOfMemory) if no frame could be obtained; the fault is left
// / unresolved and oommsg.Notify has already been sent.
func Fault(d Deps_t, va uintptr) defs.Err_t {
	d.Desc.PageFaultsTotal++

	page := mem.PageDown(va)
	slot, ok := d.Desc.FindSlot(page)
	if !ok {
		return -defs.ENOTOURPAGE
	}

	desc := d.Desc.Slot(slot)
	if desc.Resident {
		// Spurious fault on an already-resident page: nothing to do.
		return 0
	}

	if d.Desc.ResidentCount() == d.Desc.MaxResident() {
		if err := Evict(d); err != 0 {
			return err
		}
	}

	frameAddr, ok := d.Fr.Alloc()
	if !ok {
		oommsg.Notify(d.Pid, 1)
		return -defs.ENOMEM
	}

	buf := d.Fr.Page(frameAddr)
	ioStart := d.Accnt.Now()
	err := d.Swap.Read(buf, desc.Offset)
	d.Accnt.Io_time(ioStart)
	if err != nil {
		caller.Panicf("pagefault: swap read for pid %d at %d: %v", d.Pid, desc.Offset, err)
	}

	// Map overwrites the entry wholesale: P=1, PG=0, A=0, W|U
	// installed, the new frame's address in place.
	d.Pt.Map(page, frameAddr, mem.PTE_W|mem.PTE_U)

	freedOffset := desc.Offset
	desc.Resident = true
	desc.Offset = desctab.NoOffset
	d.Desc.EnqueueResident(slot)
	d.Desc.PagedOutNow--

	d.Offs.Free(freedOffset, d.Desc.MaxResident())
	return 0
}

// / Evict asks the active policy for a victim, writes it to swap, and
// / tears down its mapping, making room for one more resident page.
// / Returns -defs.ENOMEM if the swap file's offset space is exhausted
// / (only possible with a deliberately tight Syslimit).
func Evict(d Deps_t) defs.Err_t {
	victimSlot := d.Pol.PickVictim(d.Desc, d.Pt)

	offset, ok := d.Offs.Alloc()
	if !ok {
		oommsg.Notify(d.Pid, 1)
		return -defs.ENOMEM
	}

	desc := d.Desc.Slot(victimSlot)
	e, ok := d.Pt.Walk(desc.Vaddr, false)
	if !ok {
		caller.Panicf("pagefault: evict: resident descriptor %d has no page-table entry", victimSlot)
	}
	frameAddr := pgtable.Addr(e)

	buf := d.Fr.Page(frameAddr)
	ioStart := d.Accnt.Now()
	err := d.Swap.Write(buf, offset)
	d.Accnt.Io_time(ioStart)
	if err != nil {
		caller.Panicf("pagefault: swap write for pid %d at %d: %v", d.Pid, offset, err)
	}

	pgtable.Clear(e, mem.PTE_P)
	pgtable.Set(e, mem.PTE_PG)
	pgtable.Clear(e, mem.PTE_A)
	d.Fr.Free(frameAddr)

	desc.Resident = false
	desc.Offset = offset
	d.Desc.PagedOutNow++
	d.Desc.PagedOutTotal++
	return 0
}
