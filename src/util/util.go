// Package util contains small integer helpers: alignment arithmetic
// and the population count the LAPA policy ranks age words by (the
// policy package is its only user);
// the byte-packing helpers the kernel used for user-copy paths have no
// home here since user-copy is explicitly out of scope.
package util

// Int is satisfied by all built-in integer types.
type Int interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 | ~uintptr
}

// Min returns the smaller of a and b.
func Min[T Int](a, b T) T {
	if a < b {
		return a
	}
	return b
}

// Rounddown aligns v down to the nearest multiple of b.
func Rounddown[T Int](v, b T) T {
	return v - (v % b)
}

// Roundup aligns v up to the nearest multiple of b.
func Roundup[T Int](v, b T) T {
	return Rounddown(v+b-1, b)
}

// PopCount returns the number of set bits in v, used by the LAPA
// policy to rank age words by population.
func PopCount(v uint32) int {
	n := 0
	for v != 0 {
		v &= v - 1
		n++
	}
	return n
}
