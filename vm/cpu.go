package vm

// Opcode is the top nibble of an instruction word.
type Opcode uint16

const (
	OP_BR Opcode = iota
	OP_ADD
	OP_LD
	OP_ST
	OP_JSR
	OP_AND
	OP_LDR
	OP_STR
	OP_RTI
	OP_NOT
	OP_LDI
	OP_STI
	OP_JMP
	OP_RES
	OP_LEA
	OP_TRAP
)

// Step fetches one instruction from PC, post-increments PC, decodes the top
// nibble and executes it. It returns ErrHalted when the HALT trap fires, and
// a *FatalError for RES, RTI, or any instruction whose opcode this switch
// doesn't otherwise reach (unreachable in practice: a uint16 right-shifted
// by 12 only ever produces 0..15, all of which are handled below).
func (m *Machine) Step() error {
	instruction := m.memory.Read(m.reg.PC)
	m.reg.PC++

	op := Opcode(instruction >> 12)

	switch op {
	case OP_ADD:
		dr := (instruction >> 9) & 0b111
		sr1 := (instruction >> 6) & 0b111

		if (instruction>>5)&0b1 == 1 {
			imm5 := SignExtend(instruction&0x1F, 5)
			m.reg.GP[dr] = m.reg.GP[sr1] + imm5
		} else {
			sr2 := instruction & 0b111
			m.reg.GP[dr] = m.reg.GP[sr1] + m.reg.GP[sr2]
		}
		m.reg.updateFlags(dr)

	case OP_AND:
		dr := (instruction >> 9) & 0b111
		sr1 := (instruction >> 6) & 0b111

		if (instruction>>5)&0b1 == 1 {
			imm5 := SignExtend(instruction&0x1F, 5)
			m.reg.GP[dr] = m.reg.GP[sr1] & imm5
		} else {
			sr2 := instruction & 0b111
			m.reg.GP[dr] = m.reg.GP[sr1] & m.reg.GP[sr2]
		}
		m.reg.updateFlags(dr)

	case OP_NOT:
		dr := (instruction >> 9) & 0b111
		sr := (instruction >> 6) & 0b111

		m.reg.GP[dr] = ^m.reg.GP[sr]
		m.reg.updateFlags(dr)

	case OP_BR:
		nzp := (instruction >> 9) & 0b111
		offset9 := SignExtend(instruction&0x1FF, 9)

		if nzp&uint16(m.reg.Cond) != 0 {
			m.reg.PC += offset9
		}

	case OP_JMP:
		baseR := (instruction >> 6) & 0b111
		m.reg.PC = m.reg.GP[baseR]

	case OP_JSR:
		m.reg.GP[R7] = m.reg.PC

		if (instruction>>11)&0b1 == 1 {
			offset11 := SignExtend(instruction&0x7FF, 11)
			m.reg.PC += offset11
		} else {
			baseR := (instruction >> 6) & 0b111
			m.reg.PC = m.reg.GP[baseR]
		}

	case OP_LD:
		dr := (instruction >> 9) & 0b111
		offset9 := SignExtend(instruction&0x1FF, 9)

		m.reg.GP[dr] = m.memory.Read(m.reg.PC + offset9)
		m.reg.updateFlags(dr)

	case OP_LDI:
		dr := (instruction >> 9) & 0b111
		offset9 := SignExtend(instruction&0x1FF, 9)

		m.reg.GP[dr] = m.memory.Read(m.memory.Read(m.reg.PC + offset9))
		m.reg.updateFlags(dr)

	case OP_LDR:
		dr := (instruction >> 9) & 0b111
		baseR := (instruction >> 6) & 0b111
		offset6 := SignExtend(instruction&0x3F, 6)

		m.reg.GP[dr] = m.memory.Read(m.reg.GP[baseR] + offset6)
		m.reg.updateFlags(dr)

	case OP_LEA:
		dr := (instruction >> 9) & 0b111
		offset9 := SignExtend(instruction&0x1FF, 9)

		m.reg.GP[dr] = m.reg.PC + offset9
		m.reg.updateFlags(dr)

	case OP_ST:
		sr := (instruction >> 9) & 0b111
		offset9 := SignExtend(instruction&0x1FF, 9)

		m.memory.Write(m.reg.PC+offset9, m.reg.GP[sr])

	case OP_STI:
		sr := (instruction >> 9) & 0b111
		offset9 := SignExtend(instruction&0x1FF, 9)

		m.memory.Write(m.memory.Read(m.reg.PC+offset9), m.reg.GP[sr])

	case OP_STR:
		sr := (instruction >> 9) & 0b111
		baseR := (instruction >> 6) & 0b111
		offset6 := SignExtend(instruction&0x3F, 6)

		m.memory.Write(m.reg.GP[baseR]+offset6, m.reg.GP[sr])

	case OP_TRAP:
		return m.trap.dispatch(m, instruction&0xFF)

	case OP_RTI:
		return &FatalError{Opcode: op, PC: m.reg.PC - 1, Reason: "RTI is not supported: no supervisor mode"}

	case OP_RES:
		return &FatalError{Opcode: op, PC: m.reg.PC - 1, Reason: "reserved opcode"}

	default:
		return &FatalError{Opcode: op, PC: m.reg.PC - 1, Reason: "undecodable opcode"}
	}

	return nil
}
