// Package hashtable provides the sharded, mostly lock-free index the
// descriptor table uses to answer find_slot_by_vaddr(va) in O(1)
// instead of scanning MAX_TOTAL_PAGES entries on every fault. It is
// purely a cache: the descriptor array remains the single owner of
// page state (see design note on cyclic references), and every
// mutation to the index happens alongside the corresponding
// descriptor-table mutation, never instead of it.
package hashtable

import (
	"fmt"
	"sync"
	"sync/atomic"
	"unsafe"
)

type elem_t[K comparable, V any] struct {
	key     K
	value   V
	keyHash uint32
	next    *elem_t[K, V]
}

type bucket_t[K comparable, V any] struct {
	sync.RWMutex
	first *elem_t[K, V]
}

func (b *bucket_t[K, V]) len() int {
	b.RLock()
	defer b.RUnlock()

	l := 0
	for e := b.first; e != nil; e = e.next {
		l++
	}
	return l
}

// / Hashtable_t maps keys to values with a lock-free Get: readers walk
// / a bucket chain using atomic pointer loads while Set and Del hold
// / the owning bucket's lock. Capacity is fixed at Mk time; the
// / descriptor table sizes it to MAX_TOTAL_PAGES up front rather than
// / growing it, since the page count of a process is bounded.
type Hashtable_t[K comparable, V any] struct {
	table  []*bucket_t[K, V]
	hashfn func(K) uint32
}

// / Mk allocates a table with nbuckets shards, hashing keys with hashfn.
func Mk[K comparable, V any](nbuckets int, hashfn func(K) uint32) *Hashtable_t[K, V] {
	if nbuckets <= 0 {
		panic("hashtable: bad bucket count")
	}
	ht := &Hashtable_t[K, V]{hashfn: hashfn}
	ht.table = make([]*bucket_t[K, V], nbuckets)
	for i := range ht.table {
		ht.table[i] = &bucket_t[K, V]{}
	}
	return ht
}

// / HashUintptr is the Hashfn used to key the descriptor index by
// / page-aligned virtual address.
func HashUintptr[K ~uintptr | ~int](k K) uint32 {
	h := uint64(k)
	h ^= h >> 33
	h *= 0xff51afd7ed558ccd
	h ^= h >> 33
	return uint32(h)
}

// / String renders the non-empty bucket chains, for diagnostics.
func (ht *Hashtable_t[K, V]) String() string {
	s := ""
	for i, b := range ht.table {
		b.RLock()
		if b.first != nil {
			s += fmt.Sprintf("b %d:\n", i)
			for e := loadptr(&b.first); e != nil; e = loadptr(&e.next) {
				s += fmt.Sprintf("(%v, %v), ", e.keyHash, e.key)
			}
			s += "\n"
		}
		b.RUnlock()
	}
	return s
}

// / Size returns the total number of entries stored in the table.
func (ht *Hashtable_t[K, V]) Size() int {
	n := 0
	for _, b := range ht.table {
		n += b.len()
	}
	return n
}

func (ht *Hashtable_t[K, V]) bucketFor(kh uint32) *bucket_t[K, V] {
	return ht.table[kh%uint32(len(ht.table))]
}

// / Get looks up key without taking a lock, returning its value and
// / whether it was present.
func (ht *Hashtable_t[K, V]) Get(key K) (V, bool) {
	kh := ht.hashfn(key)
	b := ht.bucketFor(kh)
	for e := loadptr(&b.first); e != nil; e = loadptr(&e.next) {
		if e.keyHash == kh && e.key == key {
			return e.value, true
		}
	}
	var zero V
	return zero, false
}

// / Set inserts or overwrites key's value.
func (ht *Hashtable_t[K, V]) Set(key K, value V) {
	kh := ht.hashfn(key)
	b := ht.bucketFor(kh)
	b.Lock()
	defer b.Unlock()

	for e := b.first; e != nil; e = e.next {
		if e.keyHash == kh && e.key == key {
			e.value = value
			return
		}
	}
	n := &elem_t[K, V]{key: key, value: value, keyHash: kh, next: b.first}
	storeptr(&b.first, n)
}

// / Del removes key from the table. Unlike the original implementation,
// / deleting an absent key is a harmless no-op.
func (ht *Hashtable_t[K, V]) Del(key K) {
	kh := ht.hashfn(key)
	b := ht.bucketFor(kh)
	b.Lock()
	defer b.Unlock()

	var prev *elem_t[K, V]
	for e := b.first; e != nil; e = e.next {
		if e.keyHash == kh && e.key == key {
			if prev == nil {
				storeptr(&b.first, e.next)
			} else {
				storeptr(&prev.next, e.next)
			}
			return
		}
		prev = e
	}
}

// Without an explicit memory model, it is hard to know if this code is
// correct. LoadPointer/StorePointer don't issue a memory fence, but for
// traversing pointers in Get() and updating them in Set()/Del(), this
// might be ok on x86. The Go compiler also hopefully doesn't reorder
// loads wrt. LoadPointer.
func loadptr[K comparable, V any](e **elem_t[K, V]) *elem_t[K, V] {
	ptr := (*unsafe.Pointer)(unsafe.Pointer(e))
	p := atomic.LoadPointer(ptr)
	return (*elem_t[K, V])(p)
}

func storeptr[K comparable, V any](p **elem_t[K, V], n *elem_t[K, V]) {
	ptr := (*unsafe.Pointer)(unsafe.Pointer(p))
	atomic.StorePointer(ptr, unsafe.Pointer(n))
}
