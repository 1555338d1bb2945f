package vm_test

import (
	"bytes"
	"errors"
	"testing"

	"github.com/wireframe-systems/lc3vm/vm"
)

func TestTrapGetcNoEchoNoFlagUpdate(t *testing.T) {
	console := &memConsole{in: []byte{'x'}}
	m := vm.New(console)

	img := image(0x3000,
		0xF020, // TRAP GETC
		0xF025, // HALT
	)
	if err := m.LoadImage(bytes.NewReader(img)); err != nil {
		t.Fatalf("LoadImage: %v", err)
	}

	if err := m.Step(); err != nil {
		t.Fatalf("Step (GETC): %v", err)
	}
	if reg := m.Registers(); reg.GP[0] != uint16('x') {
		t.Fatalf("R0 = %#04x, want %#04x", reg.GP[0], uint16('x'))
	}
	if got := console.out.String(); got != "" {
		t.Fatalf("GETC must not echo, got output %q", got)
	}

	if err := m.Step(); !errors.Is(err, vm.ErrHalted) {
		t.Fatalf("Step (HALT): %v, want ErrHalted", err)
	}
}

func TestTrapInPromptsEchoesAndStores(t *testing.T) {
	console := &memConsole{in: []byte{'y'}}
	m := vm.New(console)

	img := image(0x3000,
		0xF023, // TRAP IN
		0xF025, // HALT
	)
	if err := m.LoadImage(bytes.NewReader(img)); err != nil {
		t.Fatalf("LoadImage: %v", err)
	}

	if err := m.Step(); err != nil {
		t.Fatalf("Step (IN): %v", err)
	}
	if reg := m.Registers(); reg.GP[0] != uint16('y') {
		t.Fatalf("R0 = %#04x, want %#04x", reg.GP[0], uint16('y'))
	}

	got := console.out.String()
	want := "Enter a character: y"
	if got != want {
		t.Fatalf("stdout = %q, want %q", got, want)
	}
}

func TestTrapPutspPacksTwoBytesPerWord(t *testing.T) {
	console := &memConsole{}
	m := vm.New(console)

	img := image(0x3000,
		0xE002, // LEA R0, +2
		0xF024, // TRAP PUTSP
		0xF025, // HALT
		0x6261, // 'a' | 'b'<<8
		0x0063, // 'c', high byte zero: stop after low byte
		0x0000, // NUL
	)
	if err := m.LoadImage(bytes.NewReader(img)); err != nil {
		t.Fatalf("LoadImage: %v", err)
	}

	err := m.Run()
	if !errors.Is(err, vm.ErrHalted) {
		t.Fatalf("Run: %v, want ErrHalted", err)
	}

	if got, want := console.out.String(), "abcHALT\n"; got != want {
		t.Fatalf("stdout = %q, want %q", got, want)
	}
}

func TestTrapOutMasksToLowByte(t *testing.T) {
	console := &memConsole{}
	m := vm.New(console)

	img := image(0x3000,
		0x2002, // LD R0, +2
		0xF021, // TRAP OUT
		0xF025, // HALT
		0xFF42, // high byte garbage, low byte 'B'
	)
	if err := m.LoadImage(bytes.NewReader(img)); err != nil {
		t.Fatalf("LoadImage: %v", err)
	}

	err := m.Run()
	if !errors.Is(err, vm.ErrHalted) {
		t.Fatalf("Run: %v, want ErrHalted", err)
	}
	if got, want := console.out.String(), "BHALT\n"; got != want {
		t.Fatalf("stdout = %q, want %q", got, want)
	}
}

func TestUnrecognizedTrapVectorIsFatal(t *testing.T) {
	console := &memConsole{}
	m := vm.New(console)

	img := image(0x3000, 0xF0FF) // TRAP 0xFF, not one of the six service numbers
	if err := m.LoadImage(bytes.NewReader(img)); err != nil {
		t.Fatalf("LoadImage: %v", err)
	}

	err := m.Step()
	var fe *vm.FatalError
	if !errors.As(err, &fe) {
		t.Fatalf("Step = %v (%T), want *vm.FatalError", err, err)
	}
}
