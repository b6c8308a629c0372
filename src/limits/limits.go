// Package limits tracks the system-wide caps a build of the paging
// core is configured with: how many swap blocks the backing file may
// grow to and how many processes it is prepared to track. The swap
// block budget is enforced with the same atomic give/take pattern the
// kernel used for its resource limits, taken and given back by the
// offset allocator; the process count is recorded but nothing in the
// core checks it.
package limits

import "sync/atomic"
import "unsafe"

// / Sysatomic_t is a numeric limit that can be atomically taken from
// / and given back to, without ever going negative.
type Sysatomic_t int64

// / Syslimit_t holds the system-wide tunables a build of the paging
// / core is configured with. MaxSwapBlocks bounds the swap file's free
// / offset allocator (component 4.5); MaxProcesses is a plain value
// / that no process-construction path checks.
type Syslimit_t struct {
	// total swap blocks, shared by the offset allocator across all
	// processes
	MaxSwapBlocks Sysatomic_t
	// total concurrently-tracked processes
	MaxProcesses int
}

// / Syslimit describes the configured system wide limits.
var Syslimit *Syslimit_t = MkSysLimit()

// / MkSysLimit returns a pointer to the default set of limits.
func MkSysLimit() *Syslimit_t {
	return &Syslimit_t{
		MaxSwapBlocks: 1 << 16,
		MaxProcesses:  1024,
	}
}

func (s *Sysatomic_t) _aptr() *int64 {
	return (*int64)(unsafe.Pointer(s))
}

// / Given increases the limit by the provided amount.
func (s *Sysatomic_t) Given(_n uint) {
	n := int64(_n)
	atomic.AddInt64(s._aptr(), n)
}

// / Taken tries to decrement the limit by the provided amount. It
// / returns true on success, false (and leaves the limit unchanged) if
// / doing so would take it negative.
func (s *Sysatomic_t) Taken(_n uint) bool {
	n := int64(_n)
	g := atomic.AddInt64(s._aptr(), -n)
	if g >= 0 {
		return true
	}
	atomic.AddInt64(s._aptr(), n)
	return false
}

// / Take decrements the limit by one and reports whether it succeeded.
func (s *Sysatomic_t) Take() bool {
	return s.Taken(1)
}

// / Give increments the limit by one.
func (s *Sysatomic_t) Give() {
	s.Given(1)
}

// / Val reads the current value.
func (s *Sysatomic_t) Val() int64 {
	return atomic.LoadInt64(s._aptr())
}
