// Package offsalloc is the per-process free-offset allocator for the
// swap file (component 4.5): a small free set plus a monotonically
// advancing cursor. The free set is tiny (bounded by MAX_PSYC_PAGES)
// so a plain slice suffices for it, but the system-wide ceiling on how
// far the cursor may advance is tracked through limits.Syslimit the
// way the teacher's resource limits package tracks shared caps with a
// give/take bitmap-adjacent counter — grounded in the same
// pool-with-a-freeCount shape as the bitmap frame allocator the wider
// example pack uses for physical memory.
package offsalloc

import "caller"
import "limits"
import "mem"

// / Offsalloc_t hands out and reclaims page-aligned swap offsets for
// / one process. taken counts how many blocks this allocator currently
// / has charged against the system-wide limits.Syslimit.MaxSwapBlocks
// / budget, so that budget can be given back in full when the
// / allocator's whole offset space goes away (exec's post-load reset,
// / process exit) instead of only ever draining.
type Offsalloc_t struct {
	free  []int64
	next  int64
	taken int64
}

// / Mk allocates an offset allocator with an empty free set and the
// / cursor at byte zero.
func Mk() *Offsalloc_t {
	return &Offsalloc_t{free: make([]int64, 0)}
}

// / Alloc returns the head of the free set if non-empty; otherwise it
// / returns the current cursor and advances it by one page. ok is
// / false only when the system-wide swap block budget (Syslimit) is
// / exhausted — practically unreachable with the default budget, but
// / real for a build configured with a tight one.
func (o *Offsalloc_t) Alloc() (off int64, ok bool) {
	if len(o.free) > 0 {
		off = o.free[0]
		o.free = o.free[1:]
		return off, true
	}
	if !limits.Syslimit.MaxSwapBlocks.Take() {
		return 0, false
	}
	off = o.next
	o.next += int64(mem.PGSIZE)
	o.taken++
	return off, true
}

// / Free pushes off onto the free set for reuse by a later Alloc call
// / on this same allocator. It does not give anything back to the
// / system-wide budget: the block is still owned by this process's
// / swap file, just temporarily unused, and a later Alloc reusing it
// / from the free set does not re-Take it either. Overflowing the set
// / (more entries than MAX_PSYC_PAGES) means invariant I3/I6 has
// / already broken elsewhere; this can never trigger in a correct run,
// / so it panics rather than returning an error.
func (o *Offsalloc_t) Free(off int64, maxFree int) {
	if len(o.free) >= maxFree {
		caller.Panicf("offsalloc: free set overflow (I3/I6 violated)")
	}
	o.free = append(o.free, off)
}

// / Cursor returns next_swap_offset, for snapshotting and diagnostics.
func (o *Offsalloc_t) Cursor() int64 {
	return o.next
}

// / FreeSet returns the current free set, for snapshotting. Callers
// / must not retain it across a mutating call.
func (o *Offsalloc_t) FreeSet() []int64 {
	return o.free
}

// / Snapshot_t captures an offset allocator's state for exec rollback.
type Snapshot_t struct {
	free  []int64
	next  int64
	taken int64
}

// / Snapshot takes a deep copy of the allocator's current state.
func (o *Offsalloc_t) Snapshot() Snapshot_t {
	s := Snapshot_t{free: make([]int64, len(o.free)), next: o.next, taken: o.taken}
	copy(s.free, o.free)
	return s
}

// / Restore replaces the allocator's state with a previously taken
// / snapshot. The budget charge (taken) is restored along with cursor
// / and free set, since a rolled-back Exec never gave anything back to
// / Syslimit in the first place — there is nothing to reconcile here,
// / just the three fields moving together.
func (o *Offsalloc_t) Restore(s Snapshot_t) {
	o.free = make([]int64, len(s.free))
	copy(o.free, s.free)
	o.next = s.next
	o.taken = s.taken
}

// / Clone builds an independent copy of the allocator for a forked
// / child: same free set, same cursor. Per section 4.6, a child starts
// / with its parent's free-offset set rather than an empty one. The
// / clone's taken starts at zero rather than the parent's: the blocks
// / it inherits were already charged to Syslimit once, by the parent,
// / and the budget tracks reservations rather than physical bytes on
// / disk, so cloning does not charge them a second time. Only offsets
// / the child allocates past what it inherited — via its own later
// / Alloc calls — are charged, and only those are given back when the
// / child's own Release runs.
func (o *Offsalloc_t) Clone() *Offsalloc_t {
	c := &Offsalloc_t{free: make([]int64, len(o.free)), next: o.next}
	copy(c.free, o.free)
	return c
}

// / Release gives every block this allocator has taken from the
// / system-wide budget back to it, and returns the allocator to its
// / empty initial state. Called when the whole offset space a budget
// / charge was reserved for goes away: a successful exec replacing the
// / swap file (via Reset) and process exit.
func (o *Offsalloc_t) Release() {
	if o.taken > 0 {
		limits.Syslimit.MaxSwapBlocks.Given(uint(o.taken))
	}
	o.free = o.free[:0]
	o.next = 0
	o.taken = 0
}

// / Reset returns the allocator to a fresh process's initial state, as
// / exec does on a successful image load, giving back every block it
// / had taken from the system-wide budget along the way.
func (o *Offsalloc_t) Reset() {
	o.Release()
}
