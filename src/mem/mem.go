// Package mem defines the page-granular address constants and the page
// table entry flag bits that the paging core and its external
// collaborators (the frame allocator and the page-table editor) agree
// on. It deliberately knows nothing about how a page table is walked or
// how a physical frame is obtained; those live behind the Frame_i and
// Pagetable_i interfaces in sibling packages.
package mem

import "unsafe"

/// PGSHIFT is the base-2 exponent for the page size.
const PGSHIFT uint = 12

/// PGSIZE is the size of a single page in bytes.
const PGSIZE int = 1 << PGSHIFT

/// PGOFFSET masks offsets within a page.
const PGOFFSET Pa_t = Pa_t(PGSIZE - 1)

/// PGMASK masks the page number of an address.
const PGMASK Pa_t = ^PGOFFSET

// Page table entry flag bits. Unlike biscuit's full x86 PTE, the paging
// core only needs the five bits the specification names: present,
// paged-out, accessed, writable, and user.

/// PTE_P marks a page as present (resident, backed by a frame).
const PTE_P Pa_t = 1 << 0

/// PTE_W marks a page writable.
const PTE_W Pa_t = 1 << 1

/// PTE_U marks a page user-accessible.
const PTE_U Pa_t = 1 << 2

/// PTE_A is the hardware accessed bit consulted by aging policies.
const PTE_A Pa_t = 1 << 3

/// PTE_PG marks a page as paged-out to swap; mutually exclusive with
/// PTE_P under invariant I5.
const PTE_PG Pa_t = 1 << 4

/// PTE_ADDR extracts the frame address bits of a PTE.
const PTE_ADDR Pa_t = PGMASK

/// Pa_t represents a physical address or a page table entry; both are
/// manipulated as flat integers throughout this package.
type Pa_t uintptr

/// Bytepg_t is a byte-addressed page.
type Bytepg_t [PGSIZE]uint8

/// Pg_t is a page viewed as an array of machine words, the unit the
/// frame allocator and swap I/O move around.
type Pg_t [PGSIZE / 8]uint64

/// Pg2bytes reinterprets a word page as a byte page.
func Pg2bytes(pg *Pg_t) *Bytepg_t {
	return (*Bytepg_t)(unsafe.Pointer(pg))
}

/// Bytepg2pg reinterprets a byte page as a word page.
func Bytepg2pg(pg *Bytepg_t) *Pg_t {
	return (*Pg_t)(unsafe.Pointer(pg))
}

/// Pgn returns the page number (frame-granular) of a physical or
/// virtual address.
func Pgn(a uintptr) uintptr {
	return a >> PGSHIFT
}

/// PageDown rounds a virtual address down to its containing page
/// boundary, as the fault handler does with the faulting address.
func PageDown(va uintptr) uintptr {
	return va &^ uintptr(PGOFFSET)
}

/// PageUp rounds a byte length up to a whole number of pages.
func PageUp(n int) int {
	return (n + PGSIZE - 1) &^ (PGSIZE - 1)
}
