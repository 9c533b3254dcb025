package shell

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

// lineView tracks where the edited line sits on screen. The origin is the
// cell right after the prompt; long lines wrap at the screen width.
type lineView struct {
	originRow int
	originCol int
	drawn     int
}

func (v *lineView) reset(row, col int) {
	v.originRow = row
	v.originCol = col
	v.drawn = 0
}

// shift moves the origin up after the screen scrolled by rows.
func (v *lineView) shift(rows int) {
	v.originRow -= rows
}

func (v *lineView) position(cols, cells int) (int, int) {
	offset := v.originCol - 1 + cells
	return v.originRow + offset/cols, offset%cols + 1
}

// render draws the line, blanks the tail of a longer earlier version and
// places the cursor.
func (v *lineView) render(term Terminal, line *CommandLine) error {
	rows, cols := screenSize(term)
	text := line.Text()
	width := runewidth.StringWidth(text)
	pad := 0
	if v.drawn > width {
		pad = v.drawn - width
	}
	if err := term.WriteAt(v.originRow, v.originCol, text+strings.Repeat(" ", pad)); err != nil {
		return err
	}
	v.drawn = width

	if total := width + pad; total > 0 {
		lastRow, _ := v.position(cols, total-1)
		if lastRow > rows {
			v.shift(lastRow - rows)
		}
	}

	cells := runewidth.StringWidth(string([]rune(text)[:line.Cursor()]))
	return v.place(term, rows, cols, cells)
}

// end puts the cursor after the last character of the line.
func (v *lineView) end(term Terminal, line *CommandLine) error {
	rows, cols := screenSize(term)
	return v.place(term, rows, cols, runewidth.StringWidth(line.Text()))
}

func (v *lineView) place(term Terminal, rows, cols, cells int) error {
	row, col := v.position(cols, cells)
	if row > rows {
		// Right past the last cell of the screen: make room for the cursor.
		if err := term.SetCursor(rows, 1); err != nil {
			return err
		}
		if _, err := term.Write([]byte("\n")); err != nil {
			return err
		}
		v.shift(row - rows)
		row = rows
	}
	return term.SetCursor(row, col)
}

// rowsBelowCursor counts the screen rows the line takes up under the cursor.
func (v *lineView) rowsBelowCursor(term Terminal, line *CommandLine) int {
	_, cols := screenSize(term)
	text := []rune(line.Text())
	cursorRow, _ := v.position(cols, runewidth.StringWidth(string(text[:line.Cursor()])))
	width := runewidth.StringWidth(string(text))
	if width == 0 {
		return 0
	}
	endRow, _ := v.position(cols, width-1)
	if endRow < cursorRow {
		return 0
	}
	return endRow - cursorRow
}
