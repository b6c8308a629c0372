package desctab

import "testing"

func mkva(i int) uintptr {
	return uintptr(0x1000 * (i + 1))
}

func TestAllocFreeRoundTrip(t *testing.T) {
	d := Mk(4, 2)

	s0, err := d.AllocSlot(mkva(0))
	if err != 0 {
		t.Fatalf("alloc: %v", err)
	}
	if d.AllocatedPages != 1 {
		t.Fatalf("allocated_pages = %d, want 1", d.AllocatedPages)
	}
	d.EnqueueResident(s0)
	if d.ResidentCount() != 1 {
		t.Fatalf("resident count = %d, want 1", d.ResidentCount())
	}

	off, wasResident, ferr := d.FreeSlot(mkva(0))
	if ferr != 0 {
		t.Fatalf("free: %v", ferr)
	}
	if !wasResident {
		t.Fatalf("expected wasResident = true")
	}
	if off != NoOffset {
		t.Fatalf("freed offset = %d, want NoOffset", off)
	}
	if d.AllocatedPages != 0 || d.ResidentCount() != 0 {
		t.Fatalf("state not reset after free: alloc=%d resident=%d", d.AllocatedPages, d.ResidentCount())
	}
}

func TestFreeSlotMissingFails(t *testing.T) {
	d := Mk(2, 2)
	if _, _, err := d.FreeSlot(mkva(9)); err == 0 {
		t.Fatalf("expected ENOSUCHPAGE for unallocated va")
	}
}

func TestAllocSlotExhaustion(t *testing.T) {
	d := Mk(2, 2)
	if _, err := d.AllocSlot(mkva(0)); err != 0 {
		t.Fatalf("alloc 0: %v", err)
	}
	if _, err := d.AllocSlot(mkva(1)); err != 0 {
		t.Fatalf("alloc 1: %v", err)
	}
	if _, err := d.AllocSlot(mkva(2)); err == 0 {
		t.Fatalf("expected ETOOMANYPAGES on third allocation")
	}
}

func TestRemoveResidentCompactsQueue(t *testing.T) {
	d := Mk(4, 4)
	slots := make([]int, 3)
	for i := range slots {
		s, err := d.AllocSlot(mkva(i))
		if err != 0 {
			t.Fatalf("alloc %d: %v", i, err)
		}
		d.EnqueueResident(s)
		slots[i] = s
	}
	d.RemoveResident(slots[1])
	q := d.Queue()
	if len(q) != 2 || q[0] != slots[0] || q[1] != slots[2] {
		t.Fatalf("queue after removal = %v, want [%d %d]", q, slots[0], slots[2])
	}
}

func TestEnqueueResidentOverflowPanics(t *testing.T) {
	d := Mk(4, 1)
	s0, _ := d.AllocSlot(mkva(0))
	d.EnqueueResident(s0)
	s1, _ := d.AllocSlot(mkva(1))

	defer func() {
		if r := recover(); r == nil {
			t.Fatalf("expected panic on residency queue overflow")
		}
	}()
	d.EnqueueResident(s1)
}

func TestDequeueResidentFIFO(t *testing.T) {
	d := Mk(4, 4)
	var slots []int
	for i := 0; i < 3; i++ {
		s, _ := d.AllocSlot(mkva(i))
		d.EnqueueResident(s)
		slots = append(slots, s)
	}
	for _, want := range slots {
		got, ok := d.DequeueResident()
		if !ok || got != want {
			t.Fatalf("dequeue = %d,%v want %d", got, ok, want)
		}
	}
	if _, ok := d.DequeueResident(); ok {
		t.Fatalf("expected empty queue to report ok=false")
	}
}

func TestSnapshotRestore(t *testing.T) {
	d := Mk(4, 4)
	s0, _ := d.AllocSlot(mkva(0))
	d.EnqueueResident(s0)
	d.PageFaultsTotal = 7
	snap := d.Snapshot()

	d.AllocSlot(mkva(1))
	d.PageFaultsTotal = 99

	d.Restore(snap)
	if d.AllocatedPages != 1 || d.PageFaultsTotal != 7 {
		t.Fatalf("restore left alloc=%d faults=%d, want 1,7", d.AllocatedPages, d.PageFaultsTotal)
	}
	if slot, ok := d.FindSlot(mkva(1)); ok {
		t.Fatalf("post-restore slot for va1 unexpectedly present at %d", slot)
	}
	if _, ok := d.FindSlot(mkva(0)); !ok {
		t.Fatalf("post-restore slot for va0 missing")
	}
}

func TestCloneForForkResetsFaultsOnly(t *testing.T) {
	d := Mk(4, 4)
	s0, _ := d.AllocSlot(mkva(0))
	d.EnqueueResident(s0)
	d.PageFaultsTotal = 5
	d.PagedOutTotal = 2

	c := d.CloneForFork()
	if c.PageFaultsTotal != 0 {
		t.Fatalf("clone PageFaultsTotal = %d, want 0", c.PageFaultsTotal)
	}
	if c.AllocatedPages != d.AllocatedPages || c.PagedOutTotal != d.PagedOutTotal {
		t.Fatalf("clone counters diverged: alloc=%d pagedOutTotal=%d", c.AllocatedPages, c.PagedOutTotal)
	}
	if slot, ok := c.FindSlot(mkva(0)); !ok || slot != s0 {
		t.Fatalf("clone missing cloned slot")
	}

	// Mutating the clone must not affect the parent.
	c.FreeSlot(mkva(0))
	if _, ok := d.FindSlot(mkva(0)); !ok {
		t.Fatalf("freeing clone's slot affected parent table")
	}
}

func TestResetClearsEverything(t *testing.T) {
	d := Mk(4, 4)
	s0, _ := d.AllocSlot(mkva(0))
	d.EnqueueResident(s0)
	d.PageFaultsTotal = 3
	d.Reset()
	if d.AllocatedPages != 0 || d.ResidentCount() != 0 || d.PageFaultsTotal != 0 || d.PagedOutTotal != 0 {
		t.Fatalf("reset left non-zero state: %+v", d)
	}
	if _, ok := d.FindSlot(mkva(0)); ok {
		t.Fatalf("reset left a stale index entry")
	}
}
