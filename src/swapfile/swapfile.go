// Package swapfile is the per-process backing store the paging core
// consumes as an external collaborator (section 6): create/remove and
// page-aligned read/write. The teacher's fs/ahci layers talk to a
// simulated block device through the filesystem's own buffered I/O;
// this package takes the more direct route the rest of the example
// pack uses for on-disk state (tinySQL's pager talks straight to
// *os.File with ReadAt/WriteAt), since a page-fault handler wants
// synchronous, page-granular access with no cache layer of its own.
package swapfile

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"

	"defs"
	"mem"
)

// / Swapfile_i is the per-process backing store consumed by the
// / page-fault handler and the lifecycle hooks.
type Swapfile_i interface {
	Read(buf *mem.Pg_t, off int64) error
	Write(buf *mem.Pg_t, off int64) error
	Remove() error
	Path() string
}

// / File_t is an os.File-backed swap file. Each process above the
// / reserved PID range gets one, named with its PID plus a random UUID
// / so that a PID reused after a process exits can never open a stale
// / swap file left behind by a crash.
type File_t struct {
	f    *os.File
	path string
	// sema enforces the single-reader/single-writer contract section 6
	// promises for the persisted swap-file layout: at most one I/O in
	// flight against this file at a time, regardless of how many
	// goroutines a caller's retry path ends up spawning.
	sema *semaphore.Weighted
}

// / Create opens a fresh swap file for pid under dir. Reserved PIDs
// / (section 6) never reach this call; the lifecycle hooks enforce
// / that exemption before calling Create.
func Create(dir string, pid defs.Pid_t) (*File_t, error) {
	name := fmt.Sprintf("proc-%d-%s.swap", pid, uuid.NewString())
	path := filepath.Join(dir, name)
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_EXCL, 0600)
	if err != nil {
		return nil, fmt.Errorf("swapfile: create: %w", err)
	}
	return &File_t{f: f, path: path, sema: semaphore.NewWeighted(1)}, nil
}

// / Read fills buf with the page at byte offset off.
func (sf *File_t) Read(buf *mem.Pg_t, off int64) error {
	if err := sf.sema.Acquire(context.Background(), 1); err != nil {
		return fmt.Errorf("swapfile: read at %d: %w", off, err)
	}
	defer sf.sema.Release(1)

	bpg := mem.Pg2bytes(buf)
	n, err := sf.f.ReadAt(bpg[:], off)
	if err != nil {
		return fmt.Errorf("swapfile: read at %d: %w", off, err)
	}
	if n != mem.PGSIZE {
		return fmt.Errorf("swapfile: short read at %d: got %d bytes", off, n)
	}
	return nil
}

// / Write persists buf at byte offset off.
func (sf *File_t) Write(buf *mem.Pg_t, off int64) error {
	if err := sf.sema.Acquire(context.Background(), 1); err != nil {
		return fmt.Errorf("swapfile: write at %d: %w", off, err)
	}
	defer sf.sema.Release(1)

	bpg := mem.Pg2bytes(buf)
	n, err := sf.f.WriteAt(bpg[:], off)
	if err != nil {
		return fmt.Errorf("swapfile: write at %d: %w", off, err)
	}
	if n != mem.PGSIZE {
		return fmt.Errorf("swapfile: short write at %d: wrote %d bytes", off, n)
	}
	return nil
}

// / Remove closes and deletes the backing file, as exit and
// / exec-time replacement both do.
func (sf *File_t) Remove() error {
	cerr := sf.f.Close()
	rerr := os.Remove(sf.path)
	if rerr != nil {
		return fmt.Errorf("swapfile: remove: %w", rerr)
	}
	if cerr != nil {
		return fmt.Errorf("swapfile: close: %w", cerr)
	}
	return nil
}

// / Path returns the backing file's path, for diagnostics.
func (sf *File_t) Path() string {
	return sf.path
}
