// Package pvm implements the five lifecycle hooks of section 4.6 —
// allocate (grow), deallocate (shrink), fork, exec, and exit — plus the
// process-status pretty-printer of section 6. It is the glue the rest
// of the kernel calls into; everything else in this module (desctab,
// policy, pagefault, offsalloc, swapfile, pgtable, frame) is a
// collaborator this package wires together per process.
//
// Grounded on proc.c's allocuvm/deallocuvm/fork/exec/exit sequence and
// on design note 9: every routine here takes its Proc_t explicitly
// rather than reaching through a "current process" global, and the
// exec hook structures its rollback as a deferred restore so the
// snapshot is guaranteed to come back on every error path, not just the
// ones a caller remembered to check.
package pvm

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"accnt"
	"caller"
	"config"
	"defs"
	"desctab"
	"frame"
	"mem"
	"offsalloc"
	"oommsg"
	"pagefault"
	"pgtable"
	"policy"
	"stats"
	"swapfile"
	"tinfo"
	"vm"
)

// / Sysstats_t holds the system-wide (cross-process) counters the
// / verbose status line reports via stats.Stats2String: how many times
// / each lifecycle hook has run, system-wide, since the core started.
// / Per-process counters live in desctab.Desctab_t instead, since they
// / reset on exec along with everything else that does.
type Sysstats_t struct {
	Forks stats.Counter_t
	Execs stats.Counter_t
	Exits stats.Counter_t
}

// / Sysstats accumulates lifecycle-hook invocations across every
// / process this build of the core has ever handled.
var Sysstats Sysstats_t

// / Proc_t is everything the paging core tracks for one process: its
// / paging state (Vm), its accounting, and the thread liveness table
// / FaultForThread consults before servicing a fault.
type Proc_t struct {
	Pid     defs.Pid_t
	Name    string
	Vm      *vm.Vm_t
	Accnt   accnt.Accnt_t
	Threads tinfo.Threadinfo_t

	cfg config.Config_t
}

// / New constructs a fresh process's paging state per cfg. Processes
// / with Pid <= cfg.DefaultProcesses are the reserved init/shell PIDs
// / (section 6) and never get a swap file.
func New(pid defs.Pid_t, name string, cfg config.Config_t, fr frame.Frame_i) (*Proc_t, defs.Err_t) {
	pol, ok := policy.ByName(cfg.Policy)
	if !ok {
		caller.Panicf("pvm: unknown policy %q reached process construction", cfg.Policy)
	}

	var sf swapfile.Swapfile_i
	if pid > defs.Pid_t(cfg.DefaultProcesses) && cfg.Policy != "NONE" {
		f, err := swapfile.Create(cfg.SwapDir, pid)
		if err != nil {
			return nil, -defs.ENOMEM
		}
		sf = f
	}

	desc := desctab.Mk(cfg.MaxTotalPages, cfg.MaxPsycPages)
	p := &Proc_t{
		Pid:  pid,
		Name: name,
		cfg:  cfg,
		Vm:   vm.Mk(desc, pgtable.Mk(), fr, sf, offsalloc.Mk(), pol),
	}
	p.Threads.Init()
	p.Threads.Add(0, &tinfo.Tnote_t{Alive: true})
	return p, 0
}

// / deps hands the policy-agnostic pagefault package the collaborators
// / it needs. Every call site is several frames below whichever
// / lifecycle hook took the lock, exactly the kind of distance the
// / teacher's pgfltaken assertion exists to catch a future caller
// / forgetting to bridge.
func (p *Proc_t) deps() pagefault.Deps_t {
	p.Vm.Lockassert_pmap()
	return pagefault.Deps_t{
		Pid:   p.Pid,
		Desc:  p.Vm.Desc,
		Pt:    p.Vm.Pt,
		Fr:    p.Vm.Fr,
		Swap:  p.Vm.Swap,
		Pol:   p.Vm.Pol,
		Offs:  p.Vm.Offs,
		Accnt: &p.Accnt,
	}
}

// / Fault is the trap-entry boundary: the only place in this package
// / that reaches a *Proc_t from a dispatcher-supplied context and hands
// / its state to the policy-agnostic fault handler. Time spent servicing
// / the fault is charged to the process's system-time accounting.
func Fault(p *Proc_t, va uintptr) defs.Err_t {
	start := p.Accnt.Now()
	defer p.Accnt.Finish(start)

	p.Vm.Lock_pmap()
	defer p.Vm.Unlock_pmap()
	return pagefault.Fault(p.deps(), va)
}

// / FaultForThread is Fault preceded by a doomed-thread check against
// / the thread-liveness table: for a thread marked doomed (its process
// / is being torn down) it returns -defs.ENOTOURPAGE without servicing
// / the fault, rather than paging in memory nothing will read.
func FaultForThread(p *Proc_t, tid defs.Tid_t, va uintptr) defs.Err_t {
	if tn := p.Threads.Get(tid); tn != nil && tn.Doomed() {
		return -defs.ENOTOURPAGE
	}
	return Fault(p, va)
}

// / Tick runs the active policy's per-clock-interrupt bookkeeping:
// / aging for NFUA/LAPA, queue advancement for AQ, nothing for SCFIFO
// / (section 4.6, "aging tick").
func Tick(p *Proc_t) {
	p.Vm.Lock_pmap()
	defer p.Vm.Unlock_pmap()
	p.Vm.Pol.Tick(p.Vm.Desc, p.Vm.Pt)
}

// / Allocate grows the process by n pages starting at the page-aligned
// / virtual address va (section 4.6, "allocate (grow)"). Capacity is
// / checked up front so a TooManyPages failure leaves every descriptor,
// / the residency queue, and all counters bitwise unchanged — property
// / S6.
func Allocate(p *Proc_t, va uintptr, n int) defs.Err_t {
	p.Vm.Lock_pmap()
	defer p.Vm.Unlock_pmap()

	va = mem.PageDown(va)
	if p.Vm.Desc.Cap()-p.Vm.Desc.AllocatedPages < n {
		return -defs.ETOOMANYPAGES
	}

	for i := 0; i < n; i++ {
		pageva := va + uintptr(i*mem.PGSIZE)

		if p.Vm.Desc.ResidentCount() == p.Vm.Desc.MaxResident() {
			if err := pagefault.Evict(p.deps()); err != 0 {
				return err
			}
		}

		frameAddr, ok := p.Vm.Fr.Alloc()
		if !ok {
			oommsg.Notify(p.Pid, 1)
			return -defs.ENOMEM
		}

		slot, err := p.Vm.Desc.AllocSlot(pageva)
		if err != 0 {
			p.Vm.Fr.Free(frameAddr)
			return err
		}

		p.Vm.Pt.Map(pageva, frameAddr, mem.PTE_W|mem.PTE_U)
		p.Vm.Desc.EnqueueResident(slot)
	}
	return 0
}

// / Deallocate surrenders n pages starting at the page-aligned virtual
// / address va (section 4.6, "deallocate (shrink)"): each page's
// / descriptor is freed, and its backing resource — a physical frame if
// / resident, a swap offset otherwise — is released.
func Deallocate(p *Proc_t, va uintptr, n int) defs.Err_t {
	p.Vm.Lock_pmap()
	defer p.Vm.Unlock_pmap()

	va = mem.PageDown(va)
	for i := 0; i < n; i++ {
		pageva := va + uintptr(i*mem.PGSIZE)

		freedOffset, wasResident, err := p.Vm.Desc.FreeSlot(pageva)
		if err != 0 {
			return err
		}
		if wasResident {
			if e, ok := p.Vm.Pt.Walk(pageva, false); ok {
				p.Vm.Fr.Free(pgtable.Addr(e))
			}
			p.Vm.Pt.Unmap(pageva)
		} else {
			p.Vm.Offs.Free(freedOffset, p.Vm.Desc.MaxResident())
		}
	}
	return 0
}

// / Fork clones parent into a new process for childPid (section 4.6,
// / "fork"). Resident pages get a fresh frame with their contents
// / copied by the page-table editor's stand-in; paged-out pages are
// / copied swap-file-to-swap-file at the same offset, exactly as the
// / specification requires so the child's offset allocator (itself
// / cloned from the parent's) stays consistent with what it reads back.
// / Fault counters start at zero; every other counter and the
// / policy-specific Age words carry over unchanged.
func Fork(parent *Proc_t, childPid defs.Pid_t, childName string, fr frame.Frame_i) (*Proc_t, defs.Err_t) {
	parent.Vm.Lock_pmap()
	defer parent.Vm.Unlock_pmap()

	child := &Proc_t{
		Pid:  childPid,
		Name: childName,
		cfg:  parent.cfg,
	}
	child.Threads.Init()
	child.Threads.Add(0, &tinfo.Tnote_t{Alive: true})

	childDesc := parent.Vm.Desc.CloneForFork()
	childOffs := parent.Vm.Offs.Clone()
	child.Vm = vm.Mk(childDesc, pgtable.Mk(), fr, nil, childOffs, parent.Vm.Pol)

	if childPid > defs.Pid_t(parent.cfg.DefaultProcesses) && parent.cfg.Policy != "NONE" {
		sf, err := swapfile.Create(parent.cfg.SwapDir, childPid)
		if err != nil {
			return nil, -defs.ENOMEM
		}
		child.Vm.Swap = sf
	}

	for i := 0; i < childDesc.Cap(); i++ {
		d := childDesc.Slot(i)
		if !d.Allocated {
			continue
		}
		if d.Resident {
			frameAddr, ok := fr.Alloc()
			if !ok {
				oommsg.Notify(childPid, 1)
				return nil, -defs.ENOMEM
			}
			parentPte, ok := parent.Vm.Pt.Walk(d.Vaddr, false)
			if !ok {
				caller.Panicf("pvm: fork: resident descriptor for pid %d has no page-table entry", parent.Pid)
			}
			newPg := fr.Page(frameAddr)
			*newPg = *parent.Vm.Fr.Page(pgtable.Addr(parentPte))
			child.Vm.Pt.Map(d.Vaddr, frameAddr, mem.PTE_W|mem.PTE_U)
		} else {
			var buf mem.Pg_t
			if err := parent.Vm.Swap.Read(&buf, d.Offset); err != nil {
				caller.Panicf("pvm: fork: read parent swap pid %d off %d: %v", parent.Pid, d.Offset, err)
			}
			if err := child.Vm.Swap.Write(&buf, d.Offset); err != nil {
				caller.Panicf("pvm: fork: write child swap pid %d off %d: %v", childPid, d.Offset, err)
			}
		}
	}

	Sysstats.Forks.Inc()
	return child, 0
}

// / Exec replaces p's image transactionally (section 4.6, "exec"). The
// / paging state is snapshotted before loader runs; the deferred
// / restore fires on every path except the explicit commit at the end,
// / so a panic or early return inside loader can never leave Exec
// / without a restore, per design note 9's scoped-acquisition guidance.
func Exec(p *Proc_t, loader func(*Proc_t) error) defs.Err_t {
	p.Vm.Lock_pmap()
	defer p.Vm.Unlock_pmap()

	descSnap := p.Vm.Desc.Snapshot()
	offsSnap := p.Vm.Offs.Snapshot()
	committed := false
	defer func() {
		if !committed {
			p.Vm.Desc.Restore(descSnap)
			p.Vm.Offs.Restore(offsSnap)
		}
	}()

	if err := loader(p); err != nil {
		return -defs.ELOADERFAIL
	}

	p.Vm.Desc.Reset()
	p.Vm.Offs.Reset()

	if p.Pid > defs.Pid_t(p.cfg.DefaultProcesses) && p.cfg.Policy != "NONE" {
		if p.Vm.Swap != nil {
			if err := p.Vm.Swap.Remove(); err != nil {
				caller.Panicf("pvm: exec: remove old swap file for pid %d: %v", p.Pid, err)
			}
		}
		sf, err := swapfile.Create(p.cfg.SwapDir, p.Pid)
		if err != nil {
			return -defs.ELOADERFAIL
		}
		p.Vm.Swap = sf
	}

	committed = true
	Sysstats.Execs.Inc()
	return 0
}

// / Exit tears down p (section 4.6, "exit"): the swap file is removed,
// / every resident frame is handed back to the allocator via the
// / page-table teardown path, and every swap block this process still
// / had charged against the system-wide budget is given back.
func Exit(p *Proc_t) {
	p.Vm.Lock_pmap()
	defer p.Vm.Unlock_pmap()

	for _, slot := range append([]int(nil), p.Vm.Desc.Queue()...) {
		d := p.Vm.Desc.Slot(slot)
		if e, ok := p.Vm.Pt.Walk(d.Vaddr, false); ok {
			p.Vm.Fr.Free(pgtable.Addr(e))
			p.Vm.Pt.Unmap(d.Vaddr)
		}
	}
	if p.Vm.Swap != nil {
		if err := p.Vm.Swap.Remove(); err != nil {
			caller.Panicf("pvm: exit: remove swap file for pid %d: %v", p.Pid, err)
		}
	}
	p.Vm.Offs.Release()
	Sysstats.Exits.Inc()
}

var statusPrinter = message.NewPrinter(language.English)

// / Status renders the process-status line exposed to the rest of the
// / kernel (section 6): `<pid> state=<s> alloc=<a> paged-out=<p>
// / faults=<f> paged-out-total=<t> <name>`. Counters print with
// / thousands separators for readability in long-running diagnostics.
func Status(p *Proc_t, state string) string {
	return statusPrinter.Sprintf("%d state=%s alloc=%d paged-out=%d faults=%d paged-out-total=%d %s",
		int64(p.Pid), state,
		p.Vm.Desc.AllocatedPages, p.Vm.Desc.PagedOutNow,
		p.Vm.Desc.PageFaultsTotal, p.Vm.Desc.PagedOutTotal,
		p.Name)
}

// / StatusVerbose appends the system-wide lifecycle-hook counters
// / (Sysstats) to Status's line, rendered the way stats.Stats2String
// / formats any counters struct: one "#Field: value" line apiece.
func StatusVerbose(p *Proc_t, state string) string {
	return Status(p, state) + stats.Stats2String(Sysstats)
}
