package hashtable

import "testing"

func TestSetGetDel(t *testing.T) {
	ht := Mk[uintptr, int](4, HashUintptr[uintptr])

	ht.Set(0x1000, 1)
	ht.Set(0x2000, 2)
	if v, ok := ht.Get(0x1000); !ok || v != 1 {
		t.Fatalf("get 0x1000 = %d,%v want 1,true", v, ok)
	}
	if ht.Size() != 2 {
		t.Fatalf("size = %d, want 2", ht.Size())
	}

	ht.Set(0x1000, 9)
	if v, _ := ht.Get(0x1000); v != 9 {
		t.Fatalf("overwrite didn't take, got %d want 9", v)
	}

	ht.Del(0x1000)
	if _, ok := ht.Get(0x1000); ok {
		t.Fatalf("key still present after Del")
	}
	if ht.Size() != 1 {
		t.Fatalf("size after del = %d, want 1", ht.Size())
	}
}

func TestDelMissingIsNoop(t *testing.T) {
	ht := Mk[uintptr, int](4, HashUintptr[uintptr])
	ht.Del(0xdead)
	if ht.Size() != 0 {
		t.Fatalf("size = %d, want 0", ht.Size())
	}
}

func TestCollidingKeysCoexistInOneBucket(t *testing.T) {
	ht := Mk[uintptr, int](1, HashUintptr[uintptr])
	for i := uintptr(0); i < 8; i++ {
		ht.Set(i, int(i)*10)
	}
	for i := uintptr(0); i < 8; i++ {
		if v, ok := ht.Get(i); !ok || v != int(i)*10 {
			t.Fatalf("get %d = %d,%v want %d,true", i, v, ok, int(i)*10)
		}
	}
	if ht.Size() != 8 {
		t.Fatalf("size = %d, want 8", ht.Size())
	}
}

func TestMkRejectsNonPositiveBuckets(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Fatalf("expected panic for nbuckets <= 0")
		}
	}()
	Mk[uintptr, int](0, HashUintptr[uintptr])
}
