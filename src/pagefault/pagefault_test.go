package pagefault

import (
	"testing"

	"accnt"
	"defs"
	"desctab"
	"frame"
	"mem"
	"offsalloc"
	"pgtable"
	"policy"
	"swapfile"
)

func mkdeps(t *testing.T, maxTotal, maxResident int) Deps_t {
	t.Helper()
	sf, err := swapfile.Create(t.TempDir(), 10)
	if err != nil {
		t.Fatalf("swapfile.Create: %v", err)
	}
	t.Cleanup(func() { sf.Remove() })

	return Deps_t{
		Pid:   10,
		Desc:  desctab.Mk(maxTotal, maxResident),
		Pt:    pgtable.Mk(),
		Fr:    frame.MkPool(maxResident + 4),
		Swap:  sf,
		Pol:   policy.Scfifo_t{},
		Offs:  offsalloc.Mk(),
		Accnt: &accnt.Accnt_t{},
	}
}

func allocPage(t *testing.T, d Deps_t, va uintptr, fill uint8) int {
	t.Helper()
	slot, err := d.Desc.AllocSlot(va)
	if err != 0 {
		t.Fatalf("allocslot: %v", err)
	}
	frameAddr, ok := d.Fr.Alloc()
	if !ok {
		t.Fatalf("frame exhausted")
	}
	pg := d.Fr.Page(frameAddr)
	bpg := mem.Pg2bytes(pg)
	bpg[0] = fill
	d.Pt.Map(va, frameAddr, mem.PTE_W|mem.PTE_U)
	d.Desc.EnqueueResident(slot)
	return slot
}

func readByte(t *testing.T, d Deps_t, va uintptr) uint8 {
	t.Helper()
	e, ok := d.Pt.Walk(va, false)
	if !ok {
		t.Fatalf("no pte for va %x", va)
	}
	pg := d.Fr.Page(pgtable.Addr(e))
	return mem.Pg2bytes(pg)[0]
}

// TestRoundTrip reproduces property P4: an eviction followed by a fault
// on the same address restores byte-identical contents.
func TestRoundTrip(t *testing.T) {
	d := mkdeps(t, 4, 1)
	va := uintptr(mem.PGSIZE)
	allocPage(t, d, va, 0x42)

	if err := Evict(d); err != 0 {
		t.Fatalf("evict: %v", err)
	}
	desc := d.Desc.Slot(0)
	if desc.Resident {
		t.Fatalf("descriptor still resident after evict")
	}
	e, ok := d.Pt.Walk(va, false)
	if !ok || pgtable.Test(e, mem.PTE_P) || !pgtable.Test(e, mem.PTE_PG) {
		t.Fatalf("pte flags wrong after evict: ok=%v entry=%v", ok, e)
	}

	if err := Fault(d, va); err != 0 {
		t.Fatalf("fault: %v", err)
	}
	if got := readByte(t, d, va); got != 0x42 {
		t.Fatalf("round-trip byte = %#x, want 0x42", got)
	}
	if d.Desc.PageFaultsTotal != 1 {
		t.Fatalf("page_faults_total = %d, want 1", d.Desc.PageFaultsTotal)
	}
	if d.Desc.PagedOutNow != 0 {
		t.Fatalf("paged_out_now = %d, want 0 after fault-in", d.Desc.PagedOutNow)
	}
}

func TestFaultNotOurPage(t *testing.T) {
	d := mkdeps(t, 4, 2)
	if err := Fault(d, 0xdeadb000); err != -defs.ENOTOURPAGE {
		t.Fatalf("fault on unallocated va = %v, want ENOTOURPAGE", err)
	}
}

func TestFaultEvictsWhenFull(t *testing.T) {
	d := mkdeps(t, 4, 1)
	va0 := uintptr(mem.PGSIZE)
	va1 := uintptr(2 * mem.PGSIZE)
	allocPage(t, d, va0, 1)

	// Allocate va1's descriptor without a resident frame, as if it were
	// already paged out by a previous eviction.
	slot, err := d.Desc.AllocSlot(va1)
	if err != 0 {
		t.Fatalf("allocslot va1: %v", err)
	}
	off, ok := d.Offs.Alloc()
	if !ok {
		t.Fatalf("offs alloc")
	}
	var buf mem.Pg_t
	mem.Pg2bytes(&buf)[0] = 7
	if err := d.Swap.Write(&buf, off); err != nil {
		t.Fatalf("swap write: %v", err)
	}
	d.Desc.Slot(slot).Offset = off
	d.Desc.PagedOutNow++
	d.Pt.Map(va1, 0, mem.PTE_U)
	e, _ := d.Pt.Walk(va1, true)
	pgtable.Clear(e, mem.PTE_P)
	pgtable.Set(e, mem.PTE_PG)

	if err := Fault(d, va1); err != 0 {
		t.Fatalf("fault va1: %v", err)
	}
	if got := readByte(t, d, va1); got != 7 {
		t.Fatalf("fault-in byte = %d, want 7", got)
	}
	// va0 must have been evicted to make room (MAX_PSYC_PAGES=1).
	e0, ok := d.Pt.Walk(va0, false)
	if !ok || pgtable.Test(e0, mem.PTE_P) {
		t.Fatalf("va0 should have been evicted, pte=%v ok=%v", e0, ok)
	}
}

func TestFaultOnAlreadyResidentIsNoop(t *testing.T) {
	d := mkdeps(t, 4, 2)
	va := uintptr(mem.PGSIZE)
	allocPage(t, d, va, 3)
	if err := Fault(d, va); err != 0 {
		t.Fatalf("spurious fault on resident page: %v", err)
	}
	if d.Desc.PageFaultsTotal != 1 {
		t.Fatalf("spurious fault should still count toward page_faults_total")
	}
}

