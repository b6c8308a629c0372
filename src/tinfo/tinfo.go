// Package tinfo tracks per-thread liveness state. The paging core
// consults it only to decide whether to service a thread's fault at
// all or give up because the thread has been doomed; the note is
// looked up by thread id in the owning process's Threadinfo_t, which
// is passed explicitly, rather than through a global "current thread"
// accessor.
package tinfo

import "sync"

import "defs"

/// Tnote_t stores per-thread state consulted by the fault handler.
type Tnote_t struct {
	Alive    bool
	Killed   bool
	Isdoomed bool
	// protects Killed, Killnaps.Cond and Kerr, and is a leaf lock
	sync.Mutex
	Killnaps struct {
		Killch chan bool
		Cond   *sync.Cond
		Kerr   defs.Err_t
	}
}

/// Doomed reports whether the thread is marked as doomed: a fault for
/// such a thread is given up rather than serviced, since the thread is
/// being torn down anyway.
func (t *Tnote_t) Doomed() bool {
	t.Lock()
	defer t.Unlock()
	return t.Isdoomed
}

/// Threadinfo_t tracks all live thread notes, keyed by thread id.
type Threadinfo_t struct {
	Notes map[defs.Tid_t]*Tnote_t
	sync.Mutex
}

/// Init initializes the thread info map.
func (t *Threadinfo_t) Init() {
	t.Notes = make(map[defs.Tid_t]*Tnote_t)
}

/// Add registers a new thread note under tid.
func (t *Threadinfo_t) Add(tid defs.Tid_t, tn *Tnote_t) {
	t.Lock()
	defer t.Unlock()
	t.Notes[tid] = tn
}

/// Remove forgets tid's thread note, as happens when a thread exits.
func (t *Threadinfo_t) Remove(tid defs.Tid_t) {
	t.Lock()
	defer t.Unlock()
	delete(t.Notes, tid)
}

/// Get returns tid's thread note, or nil if it isn't tracked.
func (t *Threadinfo_t) Get(tid defs.Tid_t) *Tnote_t {
	t.Lock()
	defer t.Unlock()
	return t.Notes[tid]
}
