package vm

import (
	"errors"
	"fmt"
)

// Trap service numbers, dispatched on the low byte of a TRAP instruction.
const (
	TRAP_GETC  uint16 = 0x20 // read a character, no echo
	TRAP_OUT   uint16 = 0x21 // write a character
	TRAP_PUTS  uint16 = 0x22 // write a NUL-terminated word string
	TRAP_IN    uint16 = 0x23 // read a character, echoed, with a prompt
	TRAP_PUTSP uint16 = 0x24 // write a NUL-terminated packed-byte string
	TRAP_HALT  uint16 = 0x25 // stop the run loop
)

// ErrHalted is returned by Step (via trapService.dispatch) when the guest
// executes TRAP HALT. The run loop treats it as clean termination, not a
// failure: check with errors.Is.
var ErrHalted = errors.New("lc3: machine halted")

// FatalError is returned by Step for RES, RTI, or any undecodable opcode.
// These indicate a malformed or privileged-mode program this emulator does
// not support; the PC is left one past the offending instruction, matching
// where fetch's post-increment left it.
type FatalError struct {
	Opcode Opcode
	PC     uint16
	Reason string
}

func (e *FatalError) Error() string {
	return fmt.Sprintf("lc3: fatal opcode %04b at pc=0x%04x: %s", e.Opcode, e.PC, e.Reason)
}

// trapService implements the six recognized TRAP service numbers. It does
// not save PC into R7 on entry: this matches original_source/main.c (the
// tutorial this family of implementations derives from) rather than the
// LC-3 reference ISA spec, a deliberate source-bug-parity choice since none
// of the six traps below are ever resumed via RET.
type trapService struct {
	console Console
}

func (t *trapService) dispatch(m *Machine, call uint16) error {
	switch call {
	case TRAP_GETC:
		return t.getc(m)
	case TRAP_OUT:
		return t.out(m)
	case TRAP_PUTS:
		return t.puts(m)
	case TRAP_IN:
		return t.in(m)
	case TRAP_PUTSP:
		return t.putsp(m)
	case TRAP_HALT:
		return t.halt(m)
	default:
		return &FatalError{Opcode: OP_TRAP, PC: m.reg.PC - 1, Reason: fmt.Sprintf("unrecognized trap vector 0x%02x", call)}
	}
}

func (t *trapService) getc(m *Machine) error {
	b, err := t.console.ReadByte()
	if err != nil {
		return fmt.Errorf("trap GETC: %w", err)
	}
	m.reg.GP[R0] = uint16(b)
	return nil
}

func (t *trapService) out(m *Machine) error {
	if err := t.console.WriteByte(byte(m.reg.GP[R0] & 0xFF)); err != nil {
		return fmt.Errorf("trap OUT: %w", err)
	}
	return t.console.Flush()
}

func (t *trapService) puts(m *Machine) error {
	addr := m.reg.GP[R0]

	var out []byte
	for c := m.memory.Read(addr); c != 0; c = m.memory.Read(addr) {
		out = append(out, byte(c&0xFF))
		addr++
	}

	if err := t.console.WriteString(string(out)); err != nil {
		return fmt.Errorf("trap PUTS: %w", err)
	}
	return t.console.Flush()
}

func (t *trapService) in(m *Machine) error {
	if err := t.console.WriteString("Enter a character: "); err != nil {
		return fmt.Errorf("trap IN: %w", err)
	}
	if err := t.console.Flush(); err != nil {
		return fmt.Errorf("trap IN: %w", err)
	}

	b, err := t.console.ReadByte()
	if err != nil {
		return fmt.Errorf("trap IN: %w", err)
	}
	if err := t.console.WriteByte(b); err != nil {
		return fmt.Errorf("trap IN: %w", err)
	}

	m.reg.GP[R0] = uint16(b)
	m.reg.updateFlags(R0)
	return t.console.Flush()
}

func (t *trapService) putsp(m *Machine) error {
	addr := m.reg.GP[R0]

	var out []byte
	for w := m.memory.Read(addr); w != 0; w = m.memory.Read(addr) {
		out = append(out, byte(w&0xFF))
		if hi := byte(w >> 8); hi != 0 {
			out = append(out, hi)
		}
		addr++
	}

	if err := t.console.WriteString(string(out)); err != nil {
		return fmt.Errorf("trap PUTSP: %w", err)
	}
	return t.console.Flush()
}

func (t *trapService) halt(m *Machine) error {
	if err := t.console.WriteString("HALT\n"); err != nil {
		return fmt.Errorf("trap HALT: %w", err)
	}
	if err := t.console.Flush(); err != nil {
		return fmt.Errorf("trap HALT: %w", err)
	}
	return ErrHalted
}
