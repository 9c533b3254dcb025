package shell

import (
	"context"
	"io"
	"strings"
	"sync"
)

// fakeScreen is an in-memory Terminal: a grid of cells with a cursor.
// Escape sequences in written text are dropped.
type fakeScreen struct {
	mu         sync.Mutex
	rows, cols int
	grid       [][]rune
	row, col   int
	wrap       bool
	scrolled   int
}

func newFakeScreen(rows, cols int) *fakeScreen {
	s := &fakeScreen{rows: rows, cols: cols}
	s.blank()
	return s
}

func (s *fakeScreen) blank() {
	s.grid = make([][]rune, s.rows)
	for i := range s.grid {
		s.grid[i] = []rune(strings.Repeat(" ", s.cols))
	}
	s.row, s.col, s.wrap = 1, 1, false
}

func (s *fakeScreen) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.write(string(p))
	return len(p), nil
}

func (s *fakeScreen) write(text string) {
	r := []rune(text)
	for i := 0; i < len(r); i++ {
		switch c := r[i]; {
		case c == 0x1b:
			if i+1 < len(r) && r[i+1] == '[' {
				i += 2
				for i < len(r) && (r[i] < 0x40 || r[i] > 0x7e) {
					i++
				}
			}
		case c == '\r':
			s.col, s.wrap = 1, false
		case c == '\n':
			s.lineFeed()
			s.wrap = false
		default:
			if s.wrap {
				s.col = 1
				s.lineFeed()
				s.wrap = false
			}
			s.grid[s.row-1][s.col-1] = c
			if s.col == s.cols {
				s.wrap = true
			} else {
				s.col++
			}
		}
	}
}

func (s *fakeScreen) lineFeed() {
	if s.row < s.rows {
		s.row++
		return
	}
	copy(s.grid, s.grid[1:])
	s.grid[s.rows-1] = []rune(strings.Repeat(" ", s.cols))
	s.scrolled++
}

func (s *fakeScreen) WriteAt(row, col int, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.moveTo(row, col)
	s.write(text)
	return nil
}

func (s *fakeScreen) Cursor() (int, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.row, s.col, nil
}

func (s *fakeScreen) SetCursor(row, col int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.moveTo(row, col)
	return nil
}

func (s *fakeScreen) moveTo(row, col int) {
	s.row = min(max(row, 1), s.rows)
	s.col = min(max(col, 1), s.cols)
	s.wrap = false
}

func (s *fakeScreen) Size() (int, int) {
	return s.rows, s.cols
}

func (s *fakeScreen) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.blank()
	return nil
}

// line returns the text of a 1-based row without trailing blanks.
func (s *fakeScreen) line(row int) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return strings.TrimRight(string(s.grid[row-1]), " ")
}

func (s *fakeScreen) text() string {
	lines := make([]string, s.rows)
	for i := range lines {
		lines[i] = s.line(i + 1)
	}
	return strings.TrimRight(strings.Join(lines, "\n"), "\n")
}

// scriptedInput replays keys and then reports the end of input.
type scriptedInput struct {
	keys []Key
}

func (in *scriptedInput) ReadEvent() (Key, error) {
	if len(in.keys) == 0 {
		return Key{}, io.EOF
	}
	k := in.keys[0]
	in.keys = in.keys[1:]
	return k, nil
}

func typed(text string) []Key {
	var keys []Key
	for _, r := range text {
		keys = append(keys, Key{Code: KeyRune, Rune: r})
	}
	return keys
}

// lines types each line and presses enter after it.
func lines(text ...string) []Key {
	var keys []Key
	for _, t := range text {
		keys = append(keys, typed(t)...)
		keys = append(keys, Plain(KeyEnter))
	}
	return keys
}

func keys(groups ...[]Key) []Key {
	var out []Key
	for _, g := range groups {
		out = append(out, g...)
	}
	return out
}

type fakeResolver map[string]string

func (r fakeResolver) LookPath(name, _ string) (string, error) {
	if path, ok := r[name]; ok {
		return path, nil
	}
	return "", ErrNotFound
}

type fakeLauncher struct {
	specs  []ProcessSpec
	output string
	code   int
	err    error
}

func (l *fakeLauncher) Start(_ context.Context, spec ProcessSpec) (Process, error) {
	l.specs = append(l.specs, spec)
	if l.err != nil {
		return nil, l.err
	}
	stdout, _, flush := spec.writers()
	if stdout != nil && l.output != "" {
		_, _ = io.WriteString(stdout, l.output)
	}
	return fakeProcess{code: l.code, flush: flush}, nil
}

type fakeProcess struct {
	code  int
	flush func()
}

func (p fakeProcess) Wait() (int, error) {
	p.flush()
	return p.code, nil
}

type fakeInterpreter struct {
	lines []string
	dirs  []string
	err   error
}

func (i *fakeInterpreter) Run(_ context.Context, line, dir string, _ Streams) (int, error) {
	i.lines = append(i.lines, line)
	i.dirs = append(i.dirs, dir)
	return 0, i.err
}
