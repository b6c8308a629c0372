// Command pgsim assembles the paging core's packages into a runnable
// whole: it loads a config file (or the compiled-in defaults), builds
// one or two simulated processes, and drives them through the
// lifecycle hooks — allocate, fault, fork, exec, exit — printing the
// status line after each step the way the kernel's own process-status
// pretty-printer would.
package main

import (
	"flag"
	"fmt"
	"os"

	"config"
	"defs"
	"frame"
	"mem"
	"pvm"
)

func main() {
	cfgPath := flag.String("config", "", "path to a YAML config file (defaults to compiled-in defaults)")
	verbose := flag.Bool("verbose", false, "print system-wide lifecycle counters after each step")
	pages := flag.Int("pages", 16, "number of pages the demo process allocates")
	flag.Parse()

	cfg := config.Default()
	if *cfgPath != "" {
		loaded, err := config.Load(*cfgPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "pgsim: load config: %v\n", err)
			os.Exit(1)
		}
		cfg = loaded
	}
	dir, derr := os.MkdirTemp("", "pgsim-swap")
	if derr != nil {
		fmt.Fprintf(os.Stderr, "pgsim: create swap dir: %v\n", derr)
		os.Exit(1)
	}
	defer os.RemoveAll(dir)
	cfg.SwapDir = dir

	fr := frame.MkPool(cfg.MaxPsycPages * 2)
	p, err := pvm.New(10, "pgsim", cfg, fr)
	if err != 0 {
		fmt.Fprintf(os.Stderr, "pgsim: new process: %v\n", err)
		os.Exit(1)
	}
	printStatus(p, "RUNNING", *verbose)

	for i := 0; i < *pages; i++ {
		va := uintptr((i + 1) * mem.PGSIZE)
		if err := pvm.Allocate(p, va, 1); err != 0 {
			fmt.Fprintf(os.Stderr, "pgsim: allocate page %d: %v\n", i, err)
			os.Exit(1)
		}
	}
	fmt.Printf("allocated %d pages\n", *pages)
	printStatus(p, "RUNNING", *verbose)

	// Fault the first page back in; under every policy the head of the
	// address range is the one most likely to have been evicted by now.
	va0 := uintptr(mem.PGSIZE)
	if err := pvm.Fault(p, va0); err != 0 && err != -defs.ENOTOURPAGE {
		fmt.Fprintf(os.Stderr, "pgsim: fault page 0: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("faulted page 0 back in")
	printStatus(p, "RUNNING", *verbose)

	childFr := frame.MkPool(cfg.MaxPsycPages * 2)
	child, err := pvm.Fork(p, 11, "pgsim-child", childFr)
	if err != 0 {
		fmt.Fprintf(os.Stderr, "pgsim: fork: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("forked child")
	printStatus(child, "RUNNING", *verbose)

	if err := pvm.Exec(child, func(*pvm.Proc_t) error { return nil }); err != 0 {
		fmt.Fprintf(os.Stderr, "pgsim: exec: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("child exec'd a fresh image")
	printStatus(child, "RUNNING", *verbose)

	pvm.Exit(child)
	pvm.Exit(p)
	fmt.Println("both processes exited")
}

func printStatus(p *pvm.Proc_t, state string, verbose bool) {
	if verbose {
		fmt.Println(pvm.StatusVerbose(p, state))
		return
	}
	fmt.Println(pvm.Status(p, state))
}
