package shell

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

const peekEllipsis = "..."

type previewRegion struct {
	top    int
	height int
	cols   int

	cursorRow int
	cursorCol int
}

// Peek shows the candidates in columns starting below+1 rows under the
// cursor, then puts the cursor back. When the screen is too short it is
// scrolled up first; the number of rows scrolled is returned so the caller
// can move whatever it drew above. What still does not fit is cut off with
// an ellipsis.
func (c *Completer) Peek(term Terminal, below int) (int, error) {
	if len(c.candidates) == 0 {
		return 0, nil
	}

	row, col, err := term.Cursor()
	if err != nil {
		return 0, err
	}
	if c.preview != nil {
		if err := c.clearPreview(term, false); err != nil {
			return 0, err
		}
	}

	rows, cols := screenSize(term)

	peekMax := c.PeekMax
	if peekMax <= 0 {
		peekMax = DefaultPeekMax
	}
	items := c.candidates
	selected := c.index
	truncated := false
	if len(items) > peekMax {
		items = items[:peekMax]
		truncated = true
	}

	width := columnWidth(items, cols)
	perRow := cols / width
	cells := len(items)
	if truncated {
		cells++
	}
	needed := (cells + perRow - 1) / perRow

	top := row + below + 1
	available := rows - top + 1
	scrolled := 0
	if needed > available {
		scroll := needed - available
		// The cursor row itself has to stay on screen.
		if scroll > row-1 {
			scroll = row - 1
		}
		if scroll > 0 {
			if err := c.scroll(term, rows, scroll); err != nil {
				return 0, err
			}
			scrolled = scroll
			row -= scroll
			top -= scroll
			available += scroll
		}
	}
	if available <= 0 {
		return scrolled, term.SetCursor(row, col)
	}
	if needed > available {
		keep := available*perRow - 1
		if keep < len(items) {
			items = items[:keep]
		}
		truncated = true
		needed = available
	}

	for i, item := range items {
		text := runewidth.Truncate(item, width, peekEllipsis)
		style := stylePeek
		if i == selected {
			style = Style{ForegroundColor: MakeXtermColor(XtermColorBlue)}
		}
		if err := term.WriteAt(top+i/perRow, 1+(i%perRow)*width, style.Render(text)); err != nil {
			return scrolled, err
		}
	}
	if truncated {
		i := len(items)
		if err := term.WriteAt(top+i/perRow, 1+(i%perRow)*width, stylePeek.Render(peekEllipsis)); err != nil {
			return scrolled, err
		}
	}

	c.preview = &previewRegion{
		top:       top,
		height:    needed,
		cols:      cols,
		cursorRow: row,
		cursorCol: col,
	}
	return scrolled, term.SetCursor(row, col)
}

// Previewing reports whether a preview is on screen.
func (c *Completer) Previewing() bool {
	return c.preview != nil
}

// ClearPreview blanks the preview, if one is shown, and puts the cursor back
// where it was when the preview was drawn. The candidates are kept.
func (c *Completer) ClearPreview(term Terminal) error {
	if c.preview == nil {
		return nil
	}
	return c.clearPreview(term, true)
}

func (c *Completer) scroll(term Terminal, rows, count int) error {
	if err := term.SetCursor(rows, 1); err != nil {
		return err
	}
	_, err := term.Write([]byte(strings.Repeat("\n", count)))
	return err
}

func (c *Completer) clearPreview(term Terminal, restoreCursor bool) error {
	p := c.preview
	c.preview = nil
	blank := strings.Repeat(" ", p.cols)
	for r := p.top; r < p.top+p.height; r++ {
		if err := term.WriteAt(r, 1, blank); err != nil {
			return err
		}
	}
	if !restoreCursor {
		return nil
	}
	return term.SetCursor(p.cursorRow, p.cursorCol)
}

// columnWidth is the widest item plus two, grown until it divides the
// screen width.
func columnWidth(items []string, cols int) int {
	width := runewidth.StringWidth(peekEllipsis)
	for _, item := range items {
		if w := runewidth.StringWidth(item); w > width {
			width = w
		}
	}
	width += 2
	if width >= cols {
		return cols
	}
	for cols%width != 0 {
		width++
	}
	return width
}
