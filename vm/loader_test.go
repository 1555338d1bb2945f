package vm_test

import (
	"bytes"
	"testing"

	"github.com/wireframe-systems/lc3vm/vm"
)

func TestLoadImageRoundTrip(t *testing.T) {
	console := &memConsole{}
	m := vm.New(console)

	payload := []uint16{0x1111, 0x2222, 0x3333, 0x0000, 0xFFFF}
	origin := uint16(0x4000)

	if err := m.LoadImage(bytes.NewReader(image(origin, payload...))); err != nil {
		t.Fatalf("LoadImage: %v", err)
	}

	for i, want := range payload {
		addr := origin + uint16(i)
		if got := m.MemoryAt(addr); got != want {
			t.Errorf("memory[%#04x] = %#04x, want %#04x", addr, got, want)
		}
	}
}

func TestLoadImageTooShortFails(t *testing.T) {
	console := &memConsole{}
	m := vm.New(console)

	if err := m.LoadImage(bytes.NewReader([]byte{0x30})); err == nil {
		t.Fatal("LoadImage on a 1-byte stream: want error, got nil")
	}
}

func TestLoadImageClampsNearTopOfMemory(t *testing.T) {
	console := &memConsole{}
	m := vm.New(console)

	// Origin leaves room for exactly one word before wrapping past 0xFFFF.
	origin := uint16(0xFFFF)
	img := image(origin, 0xAAAA, 0xBBBB) // second word would overflow

	if err := m.LoadImage(bytes.NewReader(img)); err != nil {
		t.Fatalf("LoadImage: %v", err)
	}
	if got := m.MemoryAt(0xFFFF); got != 0xAAAA {
		t.Errorf("memory[0xFFFF] = %#04x, want 0xAAAA", got)
	}
}
