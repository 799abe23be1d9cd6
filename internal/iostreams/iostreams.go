package iostreams

import (
	"bytes"
	"io"
	"os"

	"github.com/mattn/go-isatty"
	"golang.org/x/term"
)

var osStreams *IOStreams

type IOStreams struct {
	In     io.Reader
	Out    io.Writer
	ErrOut io.Writer
}

// Empty type to represent the _type_ IOStreams . Genesis is to support a key in a Context
type Key struct{}

// StreamsKey is a global instance of the Key type
var StreamsKey = Key{}

// Get a singleton instance of the OS IOStreams
func GetOSIOStreams() *IOStreams {
	if osStreams == nil {
		osStreams = &IOStreams{
			In:     os.Stdin,
			Out:    os.Stdout,
			ErrOut: os.Stderr,
		}
	}
	return osStreams
}

func NewTestIOStreams() (IOStreams, *bytes.Buffer, *bytes.Buffer, *bytes.Buffer) {
	in := &bytes.Buffer{}
	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}
	return IOStreams{
		In:     in,
		Out:    out,
		ErrOut: errOut,
	}, in, out, errOut
}

const (
	defaultWidth  = 120
	defaultHeight = 24
)

type fdProvider interface {
	Fd() uintptr
}

// IsTerminal reports whether w is attached to a terminal.
func IsTerminal(w any) bool {
	fd, ok := fileDescriptor(w)
	if !ok {
		return false
	}
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// Size returns the terminal dimensions behind w, falling back to 120x24 when
// w is not a terminal or the size cannot be read.
func Size(w any) (width, height int) {
	width, height = defaultWidth, defaultHeight
	fd, ok := fileDescriptor(w)
	if !ok {
		return width, height
	}
	if w, h, err := term.GetSize(int(fd)); err == nil && w > 0 && h > 0 {
		return w, h
	}
	return width, height
}

// IsInteractive reports whether both input and output are terminals.
func (s *IOStreams) IsInteractive() bool {
	return s != nil && IsTerminal(s.In) && IsTerminal(s.Out)
}

func fileDescriptor(w any) (uintptr, bool) {
	fp, ok := w.(fdProvider)
	if !ok {
		return 0, false
	}
	fd := fp.Fd()
	if fd == ^uintptr(0) {
		return 0, false
	}
	return fd, true
}
