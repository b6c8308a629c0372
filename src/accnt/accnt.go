// Package accnt accumulates per-process CPU accounting. The paging
// core charges the time pvm.Fault spends servicing a fault to the
// process's system time, with the swap I/O wait inside it netted back
// out through Io_time. The process-status pretty-printer does not
// report these figures.
package accnt

import "sync"
import "sync/atomic"
import "time"

// / Accnt_t accumulates per-process accounting information.
// /
// / Both Userns and Sysns store runtime in nanoseconds. The embedded
// / mutex allows callers to take a consistent snapshot of the fields
// / when merging usage from a child into a parent.
type Accnt_t struct {
	/// Nanoseconds of user time consumed.
	Userns int64
	/// Nanoseconds of system time consumed.
	Sysns int64
	/// Protects concurrent access when reporting usage data.
	sync.Mutex
}

/// Systadd adds delta nanoseconds to the system-time counter.
func (a *Accnt_t) Systadd(delta int) {
	atomic.AddInt64(&a.Sysns, int64(delta))
}

/// Now returns the current time in nanoseconds.
func (a *Accnt_t) Now() int {
	return int(time.Now().UnixNano())
}

/// Io_time removes time spent waiting for swap I/O from system time.
func (a *Accnt_t) Io_time(since int) {
	d := a.Now() - since
	a.Systadd(-d)
}

/// Finish finalizes accounting by adding time since inttime to system time.
func (a *Accnt_t) Finish(inttime int) {
	a.Systadd(a.Now() - inttime)
}

/// Add merges a child's accounting record into this one. No lifecycle
/// hook in this module calls it; pvm.Exit leaves accounting untouched.
func (a *Accnt_t) Add(n *Accnt_t) {
	a.Lock()
	a.Userns += n.Userns
	a.Sysns += n.Sysns
	a.Unlock()
}
