// Package policy implements the four pluggable page-replacement
// strategies (component 4.2), plus the no-op policy used when paging
// is disabled. Grounded directly in proc.c's removeSCFIFO/removeNFUA/
// removeLAPA/removeAQ/agePages/advanceQueue: the four Policy_i
// implementations here are each one of those routines, generalized
// per design note 9's "capability interface... single dispatch
// decided at process creation" instead of four sets of #ifdef'd
// functions reaching through a global current-process pointer.
package policy

import "caller"
import "util"

import "desctab"
import "mem"
import "pgtable"

// / Policy_i is implemented once per replacement strategy and selected
// / at process-table construction time (see the config package).
type Policy_i interface {
	// / Name identifies the policy, used by build configuration and
	// / diagnostics.
	Name() string
	// / InitialAge is the age word a freshly allocated descriptor
	// / starts with; LAPA starts all-ones, the others start at zero.
	InitialAge() uint32
	// / Tick runs the policy's per-clock-tick bookkeeping: aging for
	// / NFUA/LAPA, queue advancement for AQ, nothing for SCFIFO.
	Tick(d *desctab.Desctab_t, pt pgtable.Pagetable_i)
	// / PickVictim selects a resident slot to evict, removes it from
	// / the residency queue itself (leaving the queue consistent with
	// / I2), and returns its slot index.
	PickVictim(d *desctab.Desctab_t, pt pgtable.Pagetable_i) int
}

// / None is a placeholder policy for a build with paging disabled. Its
// / Tick does nothing; its PickVictim panics if reached.
type None_t struct{}

func (None_t) Name() string      { return "NONE" }
func (None_t) InitialAge() uint32 { return 0 }
func (None_t) Tick(*desctab.Desctab_t, pgtable.Pagetable_i) {}
func (None_t) PickVictim(*desctab.Desctab_t, pgtable.Pagetable_i) int {
	caller.Panicf("policy: PickVictim called with paging disabled (NONE)")
	return 0
}

// / Scfifo_t is second-chance FIFO.
type Scfifo_t struct{}

func (Scfifo_t) Name() string       { return "SCFIFO" }
func (Scfifo_t) InitialAge() uint32 { return 0 }
func (Scfifo_t) Tick(*desctab.Desctab_t, pgtable.Pagetable_i) {}

func (Scfifo_t) PickVictim(d *desctab.Desctab_t, pt pgtable.Pagetable_i) int {
	n := d.ResidentCount()
	if n == 0 {
		caller.Panicf("scfifo: pick_victim with empty residency queue")
	}
	for i := 0; i < n; i++ {
		slot := d.Queue()[0]
		va := d.Slot(slot).Vaddr
		if e, ok := pt.Walk(va, false); ok && pgtable.Test(e, mem.PTE_A) {
			pgtable.Clear(e, mem.PTE_A)
			d.RemoveResident(slot)
			d.EnqueueResident(slot)
			continue
		}
		d.RemoveResident(slot)
		return slot
	}
	// Every resident page was touched since the last cycle: after a
	// full rotation the queue is back in its original order, so the
	// head is chosen unconditionally.
	victim := d.Queue()[0]
	d.RemoveResident(victim)
	return victim
}

// / Nfua_t is not-frequently-used with aging.
type Nfua_t struct{}

func (Nfua_t) Name() string       { return "NFUA" }
func (Nfua_t) InitialAge() uint32 { return 0 }

func (Nfua_t) Tick(d *desctab.Desctab_t, pt pgtable.Pagetable_i) {
	ageAllocated(d, pt)
}

func (Nfua_t) PickVictim(d *desctab.Desctab_t, pt pgtable.Pagetable_i) int {
	q := d.Queue()
	if len(q) == 0 {
		caller.Panicf("nfua: pick_victim with empty residency queue")
	}
	min := 0
	for i := 1; i < len(q); i++ {
		if d.Slot(q[i]).Age < d.Slot(q[min]).Age {
			min = i
		}
	}
	victim := q[min]
	d.RemoveResident(victim)
	return victim
}

// / Lapa_t is least-aged population approximation.
type Lapa_t struct{}

func (Lapa_t) Name() string       { return "LAPA" }
func (Lapa_t) InitialAge() uint32 { return 0xFFFFFFFF }

func (Lapa_t) Tick(d *desctab.Desctab_t, pt pgtable.Pagetable_i) {
	ageAllocated(d, pt)
}

func (Lapa_t) PickVictim(d *desctab.Desctab_t, pt pgtable.Pagetable_i) int {
	q := d.Queue()
	if len(q) == 0 {
		caller.Panicf("lapa: pick_victim with empty residency queue")
	}
	min := 0
	minCount := util.PopCount(d.Slot(q[0]).Age)
	for i := 1; i < len(q); i++ {
		age := d.Slot(q[i]).Age
		count := util.PopCount(age)
		if count < minCount || (count == minCount && age < d.Slot(q[min]).Age) {
			min, minCount = i, count
		}
	}
	victim := q[min]
	d.RemoveResident(victim)
	return victim
}

// / Aq_t is the aging queue: bubble touched pages tailward each tick,
// / evict from the head.
type Aq_t struct{}

func (Aq_t) Name() string       { return "AQ" }
func (Aq_t) InitialAge() uint32 { return 0 }

// Tick scans the queue tail toward head. Grounded on advanceQueue's
// actual comparison (not its unreachable loop bound, which is a known
// bug the original intent ignores): at each step it compares the
// entry one step closer to the head (prev) against the one one step
// closer to the tail (curr); if prev was touched and curr was not,
// they swap, carrying the touched entry one step tailward. Once the
// scan is done, every queued entry's A bit is cleared.
func (Aq_t) Tick(d *desctab.Desctab_t, pt pgtable.Pagetable_i) {
	q := d.Queue()
	for i := len(q) - 1; i >= 1; i-- {
		currSlot, prevSlot := q[i], q[i-1]
		currA := accessed(d, pt, currSlot)
		prevA := accessed(d, pt, prevSlot)
		if prevA && !currA {
			q[i], q[i-1] = q[i-1], q[i]
		}
	}
	for _, slot := range q {
		if e, ok := pt.Walk(d.Slot(slot).Vaddr, false); ok {
			pgtable.Clear(e, mem.PTE_A)
		}
	}
}

func (Aq_t) PickVictim(d *desctab.Desctab_t, pt pgtable.Pagetable_i) int {
	q := d.Queue()
	if len(q) == 0 {
		caller.Panicf("aq: pick_victim with empty residency queue")
	}
	victim := q[0]
	d.RemoveResident(victim)
	return victim
}

func accessed(d *desctab.Desctab_t, pt pgtable.Pagetable_i, slot int) bool {
	e, ok := pt.Walk(d.Slot(slot).Vaddr, false)
	return ok && pgtable.Test(e, mem.PTE_A)
}

func ageAllocated(d *desctab.Desctab_t, pt pgtable.Pagetable_i) {
	for i := 0; i < d.Cap(); i++ {
		desc := d.Slot(i)
		if !desc.Allocated {
			continue
		}
		desc.Age >>= 1
		if e, ok := pt.Walk(desc.Vaddr, false); ok && pgtable.Test(e, mem.PTE_A) {
			desc.Age |= 0x80000000
			pgtable.Clear(e, mem.PTE_A)
		}
	}
}

// / ByName resolves a build-time policy name to its implementation.
func ByName(name string) (Policy_i, bool) {
	switch name {
	case "SCFIFO":
		return Scfifo_t{}, true
	case "NFUA":
		return Nfua_t{}, true
	case "LAPA":
		return Lapa_t{}, true
	case "AQ":
		return Aq_t{}, true
	case "NONE":
		return None_t{}, true
	}
	return nil, false
}
