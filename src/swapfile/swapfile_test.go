package swapfile

import (
	"os"
	"testing"

	"defs"
	"mem"
)

func TestCreateWriteReadRemove(t *testing.T) {
	dir := t.TempDir()
	sf, err := Create(dir, defs.Pid_t(42))
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	var out mem.Pg_t
	bpg := mem.Pg2bytes(&out)
	for i := range bpg {
		bpg[i] = byte(i % 251)
	}
	if err := sf.Write(&out, 0); err != nil {
		t.Fatalf("write: %v", err)
	}

	var in mem.Pg_t
	if err := sf.Read(&in, 0); err != nil {
		t.Fatalf("read: %v", err)
	}
	if in != out {
		t.Fatalf("read back contents differ from what was written")
	}

	path := sf.Path()
	if err := sf.Remove(); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("swap file still exists after Remove: %v", err)
	}
}

func TestSamePidGetsDistinctFiles(t *testing.T) {
	dir := t.TempDir()
	a, err := Create(dir, 1)
	if err != nil {
		t.Fatalf("create a: %v", err)
	}
	defer a.Remove()
	b, err := Create(dir, 1)
	if err != nil {
		t.Fatalf("create b: %v", err)
	}
	defer b.Remove()
	if a.Path() == b.Path() {
		t.Fatalf("two swap files for the same pid collided at %s", a.Path())
	}
}

func TestWriteAtSecondPage(t *testing.T) {
	dir := t.TempDir()
	sf, err := Create(dir, 3)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	defer sf.Remove()

	var p0, p1 mem.Pg_t
	mem.Pg2bytes(&p0)[0] = 0xAA
	mem.Pg2bytes(&p1)[0] = 0xBB
	if err := sf.Write(&p0, 0); err != nil {
		t.Fatalf("write p0: %v", err)
	}
	if err := sf.Write(&p1, int64(mem.PGSIZE)); err != nil {
		t.Fatalf("write p1: %v", err)
	}

	var got0, got1 mem.Pg_t
	sf.Read(&got0, 0)
	sf.Read(&got1, int64(mem.PGSIZE))
	if mem.Pg2bytes(&got0)[0] != 0xAA || mem.Pg2bytes(&got1)[0] != 0xBB {
		t.Fatalf("page-granular offsets not independent: %x %x", mem.Pg2bytes(&got0)[0], mem.Pg2bytes(&got1)[0])
	}
}
