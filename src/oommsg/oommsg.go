// Package oommsg carries out-of-memory notifications from the
// page-fault handler to whatever in the kernel wants to react to frame
// exhaustion (log it, trigger reclaim elsewhere, wake an admin thread).
// The fault handler never blocks on OomCh; it sends best-effort and
// moves on, per the OutOfMemory disposition in the error table.
package oommsg

import "defs"

/// OomCh is notified whenever a fault-in fails to obtain a frame.
var OomCh chan Oommsg_t = make(chan Oommsg_t, 16)

/// Oommsg_t describes one out-of-memory event.
type Oommsg_t struct {
	/// Pid identifies the process that faulted.
	Pid defs.Pid_t
	/// Need is the number of frames that were wanted (always 1 for a
	/// single fault-in, but kept as a count for future batch callers).
	Need int
}

/// Notify sends an out-of-memory event without blocking; a full
/// channel means nobody is listening and the event is dropped rather
/// than stalling the faulting process further.
func Notify(pid defs.Pid_t, need int) {
	select {
	case OomCh <- Oommsg_t{Pid: pid, Need: need}:
	default:
	}
}
