// Package stats provides the lightweight atomic counters behind the
// system-wide lifecycle-hook figures (pvm.Sysstats) and their
// reflective rendering for the verbose process-status pretty-printer.
// The per-process counters (page_faults_total, paged_out_now, and
// friends) are plain fields of desctab.Desctab_t and do not use this
// package.
package stats

import "reflect"
import "sync/atomic"
import "strconv"
import "strings"
import "unsafe"

/// Counter_t is a monotonically-incrementing statistic, such as the
/// fork/exec/exit counts in pvm.Sysstats.
type Counter_t int64

/// Cycles_t holds an elapsed-time accumulator in nanoseconds.
type Cycles_t int64

/// Inc increments the counter by one.
func (c *Counter_t) Inc() {
	n := (*int64)(unsafe.Pointer(c))
	atomic.AddInt64(n, 1)
}

/// Set stores an absolute value, for level counters that move up and
/// down rather than only up.
func (c *Counter_t) Set(v int) {
	n := (*int64)(unsafe.Pointer(c))
	atomic.StoreInt64(n, int64(v))
}

/// Val reads the current value.
func (c *Counter_t) Val() int64 {
	n := (*int64)(unsafe.Pointer(c))
	return atomic.LoadInt64(n)
}

/// Add adds elapsed nanoseconds since start to the accumulator.
func (c *Cycles_t) Add(startns int64, nowns int64) {
	n := (*int64)(unsafe.Pointer(c))
	atomic.AddInt64(n, nowns-startns)
}

/// Stats2String renders every Counter_t and Cycles_t field of st,
/// reflectively, as a diagnostic string. Used by the verbose form of
/// the process-status pretty-printer.
func Stats2String(st interface{}) string {
	v := reflect.ValueOf(st)
	s := ""
	for i := 0; i < v.NumField(); i++ {
		t := v.Field(i).Type().String()
		if strings.HasSuffix(t, "Counter_t") {
			n := v.Field(i).Interface().(Counter_t)
			s += "\n\t#" + v.Type().Field(i).Name + ": " + strconv.FormatInt(int64(n), 10)
		}
		if strings.HasSuffix(t, "Cycles_t") {
			n := v.Field(i).Interface().(Cycles_t)
			s += "\n\t#" + v.Type().Field(i).Name + ": " + strconv.FormatInt(int64(n), 10)
		}

	}
	return s + "\n"
}
