// Package caller formats the call stack leading into a panic so that an
// invariant violation (I1-I6) can be diagnosed instead of just
// crashing: QueueFull, OffsetOverflow, and the other "must never
// trigger in a correct run" errors all go through Dump before panicking.
package caller

import (
	"fmt"
	"runtime"
)

// Dump formats the call stack starting at the given depth, one frame
// per line, innermost frame first and outermost caller last.
//
// Parameters:
//
//	start - stack frame to begin printing (0 is Dump itself, 1 its caller).
func Dump(start int) string {
	i := start
	s := ""
	for {
		_, f, l, ok := runtime.Caller(i)
		if !ok {
			break
		}
		i++
		if s == "" {
			s = fmt.Sprintf("%s:%d\n", f, l)
		} else {
			s += fmt.Sprintf("\t<-%s:%d\n", f, l)
		}
	}
	return s
}

// Panicf dumps the call stack leading to the caller and then panics
// with the formatted message. Used for the structural invariant
// violations the specification says must never occur in a correct run.
func Panicf(format string, args ...interface{}) {
	trace := Dump(2)
	msg := fmt.Sprintf(format, args...)
	panic(fmt.Sprintf("%s\n%s", msg, trace))
}
