// Package debugger implements an optional, interactive stepping/inspection
// layer over a *vm.Machine. It never assembles or disassembles a program
// (that stays out of scope per the core spec's Non-goals); it only labels
// addresses, tracks breakpoints, and prints already-decoded state.
package debugger

import (
	"fmt"
	"log"
	"os"
	"sort"

	"github.com/wireframe-systems/lc3vm/vm"
)

// SymTable maps an address to a human label, decoded from a sidecar
// .lc3dbg file. It is read-only input to the debugger: the core VM never
// writes it.
type SymTable map[uint16]string

// Debugger tracks breakpoints and formats trace output for a running
// Machine. It has no opinion on how the host drives Step/Run; cmd/lc3vm's
// REPL owns that loop.
type Debugger struct {
	Breakpoints []uint16
	Sym         SymTable
	Logger      *log.Logger

	color bool
}

// New returns a Debugger that logs to logger (typically stderr, configured
// the way cmd/lc3vm's main.go sets up the package logger). Output is
// colorized with the same ANSI bold convention lassandro-golc3's debugger
// uses for labels and register names, unless NO_COLOR is set per
// https://no-color.org.
func New(logger *log.Logger) *Debugger {
	return &Debugger{Logger: logger, color: os.Getenv("NO_COLOR") == ""}
}

// Bold wraps s in an ANSI bold escape, or returns s unchanged when NO_COLOR
// disabled color on construction.
func (d *Debugger) Bold(s string) string {
	if !d.color {
		return s
	}
	return "\033[1m" + s + "\033[0m"
}

// AddBreakpoint registers addr as a breakpoint if it isn't already one.
func (d *Debugger) AddBreakpoint(addr uint16) {
	for _, bp := range d.Breakpoints {
		if bp == addr {
			return
		}
	}
	d.Breakpoints = append(d.Breakpoints, addr)
}

// RemoveBreakpoint deletes the i-th breakpoint in listing order.
func (d *Debugger) RemoveBreakpoint(i int) error {
	if i < 0 || i >= len(d.Breakpoints) {
		return fmt.Errorf("no breakpoint #%d", i)
	}
	target := d.ListBreakpoints()[i]
	for j, bp := range d.Breakpoints {
		if bp == target {
			d.Breakpoints = append(d.Breakpoints[:j], d.Breakpoints[j+1:]...)
			break
		}
	}
	return nil
}

// ListBreakpoints returns breakpoints in a stable, sorted order for
// display.
func (d *Debugger) ListBreakpoints() []uint16 {
	out := append([]uint16(nil), d.Breakpoints...)
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// AtBreakpoint reports whether pc matches a registered breakpoint.
func (d *Debugger) AtBreakpoint(pc uint16) bool {
	for _, bp := range d.Breakpoints {
		if bp == pc {
			return true
		}
	}
	return false
}

// Label returns the symbol for addr if one was loaded, otherwise a plain
// hex address.
func (d *Debugger) Label(addr uint16) string {
	if d.Sym != nil {
		if name, ok := d.Sym[addr]; ok {
			return fmt.Sprintf("%s (%#04x)", d.Bold(name), addr)
		}
	}
	return fmt.Sprintf("%#04x", addr)
}

// Trace logs one executed step: the PC it ran from and the register file
// immediately after. Pass the PC from before Step, since Step advances it.
func (d *Debugger) Trace(pc uint16, reg vm.Registers) {
	d.Logger.Printf(
		"%s %-14s R0=%#04x R1=%#04x R2=%#04x R3=%#04x R4=%#04x R5=%#04x R6=%#04x R7=%#04x PC=%#04x COND=%03b",
		d.Bold("step"),
		d.Label(pc),
		reg.GP[0], reg.GP[1], reg.GP[2], reg.GP[3],
		reg.GP[4], reg.GP[5], reg.GP[6], reg.GP[7],
		reg.PC, reg.Cond,
	)
}
