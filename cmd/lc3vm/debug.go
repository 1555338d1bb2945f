package main

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/wireframe-systems/lc3vm/internal/debugger"
	"github.com/wireframe-systems/lc3vm/vm"
)

var lastReplCmd []string

// repl pauses execution at a breakpoint and hands the terminal to the user
// for inspection, following golc3's cmd/golc3/debug.go command vocabulary
// (break/register/memory/continue/step/quit) trimmed to what this VM
// exposes: no watchpoints or disassembly, since neither exists here. All
// REPL output goes through dbg.Logger (stderr), matching the stdout/stderr
// split in the External Interfaces design: stdout carries only guest TRAP
// output, never debugger chatter.
func repl(m *vm.Machine, dbg *debugger.Debugger) {
	scanner := bufio.NewScanner(os.Stdin)
	w := dbg.Logger.Writer()

	for {
		fmt.Fprint(w, "(lc3dbg) ")

		if !scanner.Scan() {
			fmt.Fprintln(w)
			os.Exit(0)
		}

		args := strings.Fields(scanner.Text())
		if len(args) == 0 {
			if len(lastReplCmd) == 0 {
				continue
			}
			args = lastReplCmd
		} else {
			lastReplCmd = append([]string(nil), args...)
		}

		cmd := args[0]
		args = args[1:]

		switch cmd {
		case "b", "break":
			replBreak(dbg, args)
		case "r", "reg", "registers":
			replRegisters(dbg, m)
		case "m", "mem", "memory":
			replMemory(dbg, m, args)
		case "c", "continue":
			return
		case "n", "next", "step":
			if err := m.Step(); err != nil {
				dbg.Logger.Print(err)
			}
			return
		case "q", "quit", "exit":
			os.Exit(0)
		default:
			dbg.Logger.Printf("unrecognized command %q (try: break, registers, memory, continue, step, quit)", cmd)
		}
	}
}

func replBreak(dbg *debugger.Debugger, args []string) {
	const usage = "break [add <hex>|list|remove <#>]"

	if len(args) == 0 {
		args = []string{"list"}
	}

	switch args[0] {
	case "add":
		if len(args) != 2 {
			dbg.Logger.Print(usage)
			return
		}
		addr, err := parseAddr(args[1])
		if err != nil {
			dbg.Logger.Print(err)
			return
		}
		dbg.AddBreakpoint(addr)
		dbg.Logger.Printf("breakpoint set at %s", dbg.Label(addr))

	case "list":
		for i, addr := range dbg.ListBreakpoints() {
			dbg.Logger.Printf("%s %s", dbg.Bold(fmt.Sprintf("#%d:", i)), dbg.Label(addr))
		}

	case "remove":
		if len(args) != 2 {
			dbg.Logger.Print(usage)
			return
		}
		i, err := strconv.Atoi(args[1])
		if err != nil {
			dbg.Logger.Print(err)
			return
		}
		if err := dbg.RemoveBreakpoint(i); err != nil {
			dbg.Logger.Print(err)
		}

	default:
		dbg.Logger.Print(usage)
	}
}

func replRegisters(dbg *debugger.Debugger, m *vm.Machine) {
	reg := m.Registers()
	var line strings.Builder
	for i, v := range reg.GP {
		fmt.Fprintf(&line, "%s=%#04x ", dbg.Bold(fmt.Sprintf("R%d", i)), v)
	}
	fmt.Fprintf(&line, "%s=%#04x %s=%03b", dbg.Bold("PC"), reg.PC, dbg.Bold("COND"), reg.Cond)
	dbg.Logger.Print(line.String())
}

func replMemory(dbg *debugger.Debugger, m *vm.Machine, args []string) {
	const usage = "memory <hex> [count]"

	if len(args) == 0 {
		dbg.Logger.Print(usage)
		return
	}

	addr, err := parseAddr(args[0])
	if err != nil {
		dbg.Logger.Print(err)
		return
	}

	count := 1
	if len(args) > 1 {
		count, err = strconv.Atoi(args[1])
		if err != nil {
			dbg.Logger.Print(err)
			return
		}
	}

	for i := 0; i < count; i++ {
		a := addr + uint16(i)
		dbg.Logger.Printf("%s: %#04x", dbg.Label(a), m.MemoryAt(a))
	}
}

func parseAddr(s string) (uint16, error) {
	s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	v, err := strconv.ParseUint(s, 16, 16)
	if err != nil {
		return 0, fmt.Errorf("invalid address %q: %w", s, err)
	}
	return uint16(v), nil
}
