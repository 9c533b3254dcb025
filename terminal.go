package shell

import (
	"fmt"
	"io"
	"os"
	"sync"

	"golang.org/x/sys/unix"
	"golang.org/x/term"
)

const (
	defaultRows = 24
	defaultCols = 80
)

// Terminal is the part of a screen the shell draws on. Rows and columns
// are 1-based.
type Terminal interface {
	io.Writer
	WriteAt(row, col int, text string) error
	Cursor() (row, col int, err error)
	SetCursor(row, col int) error
	Size() (rows, cols int)
	Clear() error
}

// Suspender is implemented by terminals that must leave raw mode while an
// external program owns the screen.
type Suspender interface {
	Suspend() error
	Resume() error
}

// Input produces key events.
type Input interface {
	ReadEvent() (Key, error)
}

// VTTerminal drives a VT100 compatible terminal attached to in and out.
// All output goes through one mutex, including cursor reports.
type VTTerminal struct {
	mu sync.Mutex

	in  *os.File
	out *os.File

	keys    *keyReader
	decoder *Decoder

	defaultTermios unix.Termios
	raw            bool
}

func NewVTTerminal(in, out *os.File) *VTTerminal {
	keys := newKeyReader(in)
	return &VTTerminal{
		in:      in,
		out:     out,
		keys:    keys,
		decoder: newDecoderFrom(keys),
	}
}

// IsTerminal reports whether f is attached to a terminal.
func IsTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// EnterRaw switches the input side to raw mode, remembering the mode to go
// back to.
func (t *VTTerminal) EnterRaw() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.enterRaw()
}

func (t *VTTerminal) enterRaw() error {
	if t.raw {
		return nil
	}
	fd := int(t.in.Fd())
	termios, err := getTermios(fd)
	if err != nil {
		return fmt.Errorf("reading terminal mode: %w", err)
	}
	t.defaultTermios = *termios

	raw := *termios
	raw.Lflag &^= unix.ECHO | unix.ICANON | unix.ISIG | unix.IEXTEN
	raw.Iflag &^= unix.IXON | unix.ICRNL
	raw.Cc[unix.VMIN] = 1
	raw.Cc[unix.VTIME] = 0
	if err := setTermios(fd, &raw); err != nil {
		return fmt.Errorf("entering raw mode: %w", err)
	}
	t.raw = true
	return nil
}

// Restore puts the terminal back into the mode it was in before EnterRaw.
func (t *VTTerminal) Restore() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.restore()
}

func (t *VTTerminal) restore() error {
	if !t.raw {
		return nil
	}
	if err := setTermios(int(t.in.Fd()), &t.defaultTermios); err != nil {
		return fmt.Errorf("restoring terminal mode: %w", err)
	}
	t.raw = false
	return nil
}

func (t *VTTerminal) Suspend() error {
	return t.Restore()
}

func (t *VTTerminal) Resume() error {
	return t.EnterRaw()
}

func (t *VTTerminal) ReadEvent() (Key, error) {
	return t.decoder.ReadEvent()
}

func (t *VTTerminal) Write(p []byte) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.out.Write(p)
}

func (t *VTTerminal) WriteAt(row, col int, text string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	vtMoveAbsolute(row, col, t.out)
	_, err := io.WriteString(t.out, text)
	return err
}

func (t *VTTerminal) SetCursor(row, col int) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return vtMoveAbsolute(row, col, t.out)
}

func (t *VTTerminal) Clear() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, err := io.WriteString(t.out, "\x1b[3J\x1b[H\x1b[2J"); err != nil {
		return err
	}
	return vtMoveAbsolute(1, 1, t.out)
}

func (t *VTTerminal) Size() (int, int) {
	winsize, err := unix.IoctlGetWinsize(int(t.out.Fd()), unix.TIOCGWINSZ)
	if err == nil && winsize.Col != 0 && winsize.Row != 0 {
		return int(winsize.Row), int(winsize.Col)
	}
	if cols, rows, err := term.GetSize(int(t.in.Fd())); err == nil && cols > 0 && rows > 0 {
		return rows, cols
	}
	return defaultRows, defaultCols
}

// Cursor asks the terminal where the cursor is. Input that arrives before
// the report is kept for ReadEvent.
func (t *VTTerminal) Cursor() (int, int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, err := io.WriteString(t.out, "\x1b[6n"); err != nil {
		return 0, 0, err
	}
	return t.keys.readCursorReport()
}

func (k *keyReader) readCursorReport() (int, int, error) {
	const (
		free = iota
		sawEsc
		sawBracket
		inRow
		sawSemicolon
		inCol
	)

	state := free
	var seq []byte
	row, col := 0, 0
	for {
		c, err := k.r.ReadByte()
		if err != nil {
			return 0, 0, fmt.Errorf("reading cursor position: %w", err)
		}

		isDigit := c >= '0' && c <= '9'
		switch state {
		case free:
			if c == 0x1b {
				state = sawEsc
				seq = append(seq[:0], c)
			} else {
				k.stash(c)
			}
			continue
		case sawEsc:
			if c == '[' {
				state = sawBracket
				seq = append(seq, c)
				continue
			}
		case sawBracket:
			if isDigit {
				row = int(c - '0')
				state = inRow
				seq = append(seq, c)
				continue
			}
		case inRow:
			if isDigit {
				row = row*10 + int(c-'0')
				seq = append(seq, c)
				continue
			}
			if c == ';' {
				state = sawSemicolon
				seq = append(seq, c)
				continue
			}
		case sawSemicolon:
			if isDigit {
				col = int(c - '0')
				state = inCol
				seq = append(seq, c)
				continue
			}
		case inCol:
			if isDigit {
				col = col*10 + int(c-'0')
				seq = append(seq, c)
				continue
			}
			if c == 'R' {
				return row, col, nil
			}
		}

		// Not a cursor report after all; keep it as input.
		k.stash(seq...)
		seq = seq[:0]
		state = free
		if c == 0x1b {
			state = sawEsc
			seq = append(seq, c)
		} else {
			k.stash(c)
		}
	}
}

// StreamTerminal writes to a plain stream. It cannot position the cursor,
// so everything drawn at a position is dropped.
type StreamTerminal struct {
	mu   sync.Mutex
	w    io.Writer
	rows int
	cols int
}

func NewStreamTerminal(w io.Writer) *StreamTerminal {
	return &StreamTerminal{w: w, rows: defaultRows, cols: defaultCols}
}

func (s *StreamTerminal) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.w.Write(p)
}

func (s *StreamTerminal) WriteAt(int, int, string) error {
	return nil
}

func (s *StreamTerminal) Cursor() (int, int, error) {
	return 1, 1, nil
}

func (s *StreamTerminal) SetCursor(int, int) error {
	return nil
}

func (s *StreamTerminal) Size() (int, int) {
	return s.rows, s.cols
}

func (s *StreamTerminal) Clear() error {
	return nil
}

func screenSize(term Terminal) (int, int) {
	rows, cols := term.Size()
	if rows <= 0 || cols <= 0 {
		return defaultRows, defaultCols
	}
	return rows, cols
}

func vtMoveAbsolute(row, col int, w io.Writer) error {
	_, err := fmt.Fprintf(w, "\x1b[%d;%dH", row, col)
	return err
}
