package shell

import (
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readAll(t *testing.T, d *Decoder) []Key {
	t.Helper()
	var got []Key
	for {
		k, err := d.ReadEvent()
		if errors.Is(err, io.EOF) {
			return got
		}
		require.NoError(t, err)
		got = append(got, k)
	}
}

func TestDecoder(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []Key
	}{
		{"printable", "ab", []Key{{Code: KeyRune, Rune: 'a'}, {Code: KeyRune, Rune: 'b'}}},
		{"utf8", "é✓", []Key{{Code: KeyRune, Rune: 'é'}, {Code: KeyRune, Rune: '✓'}}},
		{"enter", "\r\n", []Key{Plain(KeyEnter), Plain(KeyEnter)}},
		{"tab", "\t", []Key{Plain(KeyTab)}},
		{"backspace", "\x7f\b", []Key{Plain(KeyBackspace), Plain(KeyBackspace)}},
		{"control letters", "\x01\x04\x0c", []Key{Ctrl('a'), Ctrl('d'), Ctrl('l')}},
		{"nul is skipped", "\x00x", []Key{{Code: KeyRune, Rune: 'x'}}},
		{"arrows", "\x1b[A\x1b[B\x1b[C\x1b[D", []Key{Plain(KeyUp), Plain(KeyDown), Plain(KeyRight), Plain(KeyLeft)}},
		{"ss3 arrows", "\x1bOA\x1bOH\x1bOF", []Key{Plain(KeyUp), Plain(KeyHome), Plain(KeyEnd)}},
		{"ctrl arrow", "\x1b[1;5C", []Key{{Code: KeyRight, Modifiers: ModifierCtrl}}},
		{"alt arrow", "\x1b[1;3D", []Key{{Code: KeyLeft, Modifiers: ModifierAlt}}},
		{"tilde keys", "\x1b[1~\x1b[2~\x1b[3~\x1b[4~\x1b[5~\x1b[6~\x1b[7~\x1b[8~", []Key{
			Plain(KeyHome), Plain(KeyInsert), Plain(KeyDelete), Plain(KeyEnd),
			Plain(KeyPageUp), Plain(KeyPageDown), Plain(KeyHome), Plain(KeyEnd),
		}},
		{"home end", "\x1b[H\x1b[F", []Key{Plain(KeyHome), Plain(KeyEnd)}},
		{"backtab", "\x1b[Z", []Key{{Code: KeyBacktab, Modifiers: ModifierShift}}},
		{"alt letter", "\x1bb", []Key{Alt('b')}},
		{"unknown sequence is skipped", "\x1b[99~x", []Key{{Code: KeyRune, Rune: 'x'}}},
		{"lone escape", "x\x1b", []Key{{Code: KeyRune, Rune: 'x'}, Plain(KeyEscape)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := readAll(t, NewDecoder(strings.NewReader(tt.input)))
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCursorReport(t *testing.T) {
	k := newKeyReader(strings.NewReader("x\x1b[12;40Ry"))
	row, col, err := k.readCursorReport()
	require.NoError(t, err)
	assert.Equal(t, 12, row)
	assert.Equal(t, 40, col)

	got := readAll(t, newDecoderFrom(k))
	assert.Equal(t, []Key{{Code: KeyRune, Rune: 'x'}, {Code: KeyRune, Rune: 'y'}}, got)
}

func TestCursorReportKeepsKeysTypedAhead(t *testing.T) {
	k := newKeyReader(strings.NewReader("\x1b[Aq\x1b[3;4R"))
	row, col, err := k.readCursorReport()
	require.NoError(t, err)
	assert.Equal(t, 3, row)
	assert.Equal(t, 4, col)

	got := readAll(t, newDecoderFrom(k))
	assert.Equal(t, []Key{Plain(KeyUp), {Code: KeyRune, Rune: 'q'}}, got)
}

func TestCursorReportEOF(t *testing.T) {
	k := newKeyReader(strings.NewReader("\x1b[1"))
	_, _, err := k.readCursorReport()
	assert.ErrorIs(t, err, io.EOF)
}
