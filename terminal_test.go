package shell

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStreamTerminal(t *testing.T) {
	var out bytes.Buffer
	term := NewStreamTerminal(&out)

	_, err := term.Write([]byte("text"))
	require.NoError(t, err)
	require.NoError(t, term.WriteAt(3, 3, "dropped"))
	require.NoError(t, term.SetCursor(2, 2))
	require.NoError(t, term.Clear())
	assert.Equal(t, "text", out.String())

	row, col, err := term.Cursor()
	require.NoError(t, err)
	assert.Equal(t, 1, row)
	assert.Equal(t, 1, col)
	rows, cols := term.Size()
	assert.Equal(t, defaultRows, rows)
	assert.Equal(t, defaultCols, cols)
}

type zeroSizeScreen struct{ *fakeScreen }

func (zeroSizeScreen) Size() (int, int) { return 0, 0 }

func TestScreenSizeFallback(t *testing.T) {
	rows, cols := screenSize(zeroSizeScreen{newFakeScreen(1, 1)})
	assert.Equal(t, defaultRows, rows)
	assert.Equal(t, defaultCols, cols)
}

func TestVTMoveAbsolute(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, vtMoveAbsolute(4, 12, &out))
	assert.Equal(t, "\x1b[4;12H", out.String())
}

func TestMessageSplitsLines(t *testing.T) {
	h := newHarness(t)
	s := h.newShell()
	s.Message(MessageNotice, "one\r\ntwo\n")
	assert.Equal(t, []string{"one", "two"}, h.screenLines())
}
