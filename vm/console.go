package vm

import (
	"bufio"
	"io"
	"os"

	"github.com/pkg/term/termios"
	"golang.org/x/sys/unix"
	"golang.org/x/term"
)

// Console is the host-facing surface a TRAP or a KBSR read needs: a
// non-blocking probe, a blocking read, and buffered output. A real terminal
// (TermConsole) and a test double both satisfy it.
type Console interface {
	KeyboardDevice
	ReadByte() (byte, error)
	WriteByte(b byte) error
	WriteString(s string) error
	Flush() error
}

// TermConsole binds the guest's console TRAPs to the host's standard input
// and output, putting stdin into raw mode (no line buffering, no local
// echo) for the lifetime of a session.
type TermConsole struct {
	in  *os.File
	out *bufio.Writer

	raw      bool
	original unix.Termios
}

// NewTermConsole wires stdin/stdout as the guest console.
func NewTermConsole() *TermConsole {
	return &TermConsole{
		in:  os.Stdin,
		out: bufio.NewWriter(os.Stdout),
	}
}

// EnableRaw puts stdin into raw mode, the way the teacher's vm/io.go does
// with github.com/pkg/term/termios. It is a no-op when stdin is not
// attached to a terminal (redirected input, tests, CI), matching
// golang.org/x/term's IsTerminal check rather than failing the session.
func (c *TermConsole) EnableRaw() error {
	fd := c.in.Fd()
	if !term.IsTerminal(int(fd)) {
		return nil
	}

	if err := termios.Tcgetattr(fd, &c.original); err != nil {
		return err
	}

	raw := c.original
	raw.Lflag &^= unix.ICANON | unix.ECHO
	if err := termios.Tcsetattr(fd, termios.TCSANOW, &raw); err != nil {
		return err
	}

	c.raw = true
	return nil
}

// Restore puts stdin back into whatever mode it was in before EnableRaw.
// Safe to call even when EnableRaw was a no-op or was never called.
func (c *TermConsole) Restore() error {
	if !c.raw {
		return nil
	}
	c.raw = false
	return termios.Tcsetattr(c.in.Fd(), termios.TCSANOW, &c.original)
}

// TryReadByte makes one non-blocking attempt to read a byte from stdin. It
// puts the descriptor in non-blocking mode for the duration of the call
// using golang.org/x/sys/unix, rather than running a background poller:
// this is what resolves the KBSR check-then-read race flagged in §9 of the
// design notes, since there is only ever one syscall per KBSR read.
func (c *TermConsole) TryReadByte() (byte, bool, error) {
	fd := int(c.in.Fd())

	if err := unix.SetNonblock(fd, true); err != nil {
		return 0, false, err
	}
	defer unix.SetNonblock(fd, false)

	var buf [1]byte
	n, err := unix.Read(fd, buf[:])
	if err != nil {
		if err == unix.EAGAIN || err == unix.EWOULDBLOCK {
			return 0, false, nil
		}
		return 0, false, err
	}
	if n == 0 {
		return 0, false, nil
	}

	return buf[0], true, nil
}

// ReadByte blocks until one byte is available on stdin.
func (c *TermConsole) ReadByte() (byte, error) {
	var buf [1]byte
	if _, err := io.ReadFull(c.in, buf[:]); err != nil {
		return 0, err
	}
	return buf[0], nil
}

// WriteByte writes a single byte to the buffered stdout writer.
func (c *TermConsole) WriteByte(b byte) error {
	return c.out.WriteByte(b)
}

// WriteString writes s to the buffered stdout writer.
func (c *TermConsole) WriteString(s string) error {
	_, err := c.out.WriteString(s)
	return err
}

// Flush flushes buffered stdout.
func (c *TermConsole) Flush() error {
	return c.out.Flush()
}
