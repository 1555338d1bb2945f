// Package vm implements the core of an LC-3 user-space emulator: a flat
// 65,536-word memory with a memory-mapped keyboard, an eight-register CPU
// with condition flags, and the six TRAP service routines that bind guest
// programs to a host terminal.
package vm

// Machine groups the parts that make up one emulation session — memory, the
// register file, and the TRAP service — into a single context value passed
// into every instruction handler, rather than package-level globals. There
// is no separate running flag: Step reports a HALT by returning ErrHalted.
type Machine struct {
	memory *Memory
	reg    Registers
	trap   trapService
}

// New constructs a Machine wired to console for both its keyboard MMIO and
// its TRAP I/O. PC starts at UserSpaceStart (0x3000) and COND starts ZRO,
// per the data model.
func New(console Console) *Machine {
	return &Machine{
		memory: newMemory(console),
		reg:    newRegisters(),
		trap:   trapService{console: console},
	}
}

// Registers exposes a snapshot of the guest-visible register file, chiefly
// for tests and an interactive debugger.
func (m *Machine) Registers() Registers {
	return m.reg
}

// MemoryAt reads one cell without going through the KBSR latch side effect
// that Memory.Read applies; used by tests and the debugger to inspect state
// without disturbing it. Reading KBSR itself still bypasses the MMIO path,
// which is the point: this is an inspection hook, not a guest-facing read.
func (m *Machine) MemoryAt(addr uint16) uint16 {
	return m.memory.cells[addr]
}

// loadWords copies a decoded image's words into memory starting at its
// origin. See LoadImage (loader.go) for the byte-stream variant used by the
// CLI.
func (m *Machine) loadWords(origin uint16, words []uint16) {
	addr := origin
	for _, w := range words {
		m.memory.Write(addr, w)
		addr++
		if addr == 0 {
			break // wrapped past 0xFFFF; image does not fit
		}
	}
}

// Run executes Step in a loop until it returns a non-nil error. ErrHalted is
// the expected, clean termination (HALT trap); any other error is either a
// *FatalError (RES/RTI/undecodable opcode) or an I/O failure from a
// blocking console read and is returned to the caller unchanged.
func (m *Machine) Run() error {
	for {
		if err := m.Step(); err != nil {
			return err
		}
	}
}
