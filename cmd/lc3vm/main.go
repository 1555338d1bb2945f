package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/wireframe-systems/lc3vm/internal/debugger"
	"github.com/wireframe-systems/lc3vm/vm"
)

const usage = "lc3vm [-debug] [-symtable file] image [image ...]"

var (
	debugFlag    bool
	symtableFlag string
)

func init() {
	exe, _ := os.Executable()
	log.SetFlags(0)
	log.SetPrefix(fmt.Sprintf("%s: ", filepath.Base(exe)))
	log.SetOutput(os.Stderr)

	flag.BoolVar(&debugFlag, "debug", false, "run with the interactive stepper")
	flag.StringVar(&symtableFlag, "symtable", "", "gob-encoded address->label file for -debug output")
}

func main() {
	flag.Parse()
	os.Exit(run(flag.Args()))
}

func run(images []string) int {
	if len(images) == 0 {
		log.Println(usage)
		return 2
	}

	console := vm.NewTermConsole()
	machine := vm.New(console)

	for _, path := range images {
		if err := loadImageFile(machine, path); err != nil {
			log.Printf("failed to load image %s: %v", path, err)
			return 1
		}
	}

	var dbg *debugger.Debugger
	if debugFlag {
		dbg = debugger.New(log.New(os.Stderr, "", 0))
		if symtableFlag != "" {
			if err := loadSymTable(dbg, symtableFlag); err != nil {
				log.Printf("failed to load symbol table: %v", err)
			}
		}
	}

	if err := console.EnableRaw(); err != nil {
		log.Printf("failed to enable raw terminal mode: %v", err)
		return 1
	}
	defer console.Restore()

	// Mirrors the reference C tutorial's signal(SIGINT, handle_interrupt):
	// an interrupt restores the terminal and exits immediately, regardless
	// of what the run loop is doing (including blocked in a console read).
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, os.Interrupt)
	go func() {
		<-sigc
		console.Restore()
		fmt.Println()
		os.Exit(-2)
	}()

	return exitCodeFor(runMachine(machine, dbg))
}

// runMachine drives the fetch-decode-execute loop, optionally pausing at
// breakpoints when dbg is non-nil.
func runMachine(m *vm.Machine, dbg *debugger.Debugger) error {
	if dbg == nil {
		return m.Run()
	}

	for {
		pc := m.Registers().PC
		if dbg.AtBreakpoint(pc) {
			repl(m, dbg)
		}

		if err := m.Step(); err != nil {
			return err
		}
		dbg.Trace(pc, m.Registers())
	}
}

func exitCodeFor(err error) int {
	if err == nil || errors.Is(err, vm.ErrHalted) {
		return 0
	}
	log.Println(err)
	return 1
}

func loadImageFile(m *vm.Machine, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return m.LoadImage(f)
}

func loadSymTable(dbg *debugger.Debugger, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	sym, err := debugger.LoadSymTable(f)
	if err != nil {
		return err
	}
	dbg.Sym = sym
	return nil
}
