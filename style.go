package shell

import (
	"fmt"
	"io"
	"strings"
)

type XtermColor int

const (
	XtermColorBlack XtermColor = iota
	XtermColorRed
	XtermColorGreen
	XtermColorYellow
	XtermColorBlue
	XtermColorMagenta
	XtermColorCyan
	XtermColorWhite
	XtermColorUnchanged
	XtermColorDefault
)

type Color struct {
	R uint8
	G uint8
	B uint8

	Xterm8  XtermColor
	IsXterm bool
	Bright  bool

	HasValue bool
}

func MakeXtermColor(color XtermColor) Color {
	return Color{
		IsXterm:  true,
		HasValue: true,
		Xterm8:   color,
	}
}

func MakeBrightColor(color XtermColor) Color {
	c := MakeXtermColor(color)
	c.Bright = true
	return c
}

func MakeRGBColor(r, g, b uint8) Color {
	return Color{R: r, G: g, B: b, HasValue: true}
}

type Style struct {
	ForegroundColor Color
	BackgroundColor Color
	Bold            bool
	Italic          bool
	Underline       bool
}

var StyleReset = Style{
	ForegroundColor: Color{
		Xterm8:   XtermColorDefault,
		IsXterm:  true,
		HasValue: true,
	},
	BackgroundColor: Color{
		Xterm8:   XtermColorDefault,
		IsXterm:  true,
		HasValue: true,
	},
}

func (s *Style) IsEmpty() bool {
	return !s.ForegroundColor.HasValue &&
		!s.BackgroundColor.HasValue &&
		!s.Bold &&
		!s.Italic &&
		!s.Underline
}

// Render wraps text in the escapes for s, followed by a reset.
func (s Style) Render(text string) string {
	if s.IsEmpty() {
		return text
	}
	var b strings.Builder
	vtApplyStyle(s, &b)
	b.WriteString(text)
	vtApplyStyle(StyleReset, &b)
	return b.String()
}

func vtApplyStyle(style Style, w io.Writer) {
	b := 22
	if style.Bold {
		b = 1
	}
	u := 24
	if style.Underline {
		u = 4
	}
	i := 23
	if style.Italic {
		i = 3
	}
	_, _ = fmt.Fprintf(w, "\x1b[%d;%d;%dm%s%s",
		b, u, i,
		style.ForegroundColor.toVTString(true),
		style.BackgroundColor.toVTString(false))
}

func (c *Color) toVTString(foreground bool) string {
	if !c.HasValue {
		return ""
	}

	if c.IsXterm && c.Xterm8 == XtermColorUnchanged {
		return ""
	}

	x := 40
	if foreground {
		x = 30
	}
	if c.IsXterm {
		if c.Bright && c.Xterm8 != XtermColorDefault {
			x += 60
		}
		return fmt.Sprintf("\x1b[%dm", int(c.Xterm8)+x)
	}

	return fmt.Sprintf("\x1b[%d;2;%d;%d;%dm", x+8, c.R, c.G, c.B)
}

// MessageKind selects the color a message line is shown in.
type MessageKind int

const (
	MessageContent MessageKind = iota
	MessageInfo
	MessageSpecial
	MessageNotice
	MessageWarning
	MessageError
)

func (k MessageKind) String() string {
	switch k {
	case MessageContent:
		return "content"
	case MessageInfo:
		return "info"
	case MessageSpecial:
		return "special"
	case MessageNotice:
		return "notice"
	case MessageWarning:
		return "warning"
	case MessageError:
		return "error"
	}
	return fmt.Sprintf("MessageKind(%d)", int(k))
}

var (
	styleHeader  = Style{ForegroundColor: MakeXtermColor(XtermColorCyan)}
	stylePrompt  = Style{ForegroundColor: MakeXtermColor(XtermColorWhite)}
	styleSpecial = Style{ForegroundColor: MakeBrightColor(XtermColorGreen)}
	styleNotice  = Style{ForegroundColor: MakeBrightColor(XtermColorCyan)}
	styleWarning = Style{ForegroundColor: MakeBrightColor(XtermColorYellow)}
	styleError   = Style{ForegroundColor: MakeBrightColor(XtermColorRed)}
	styleContent = Style{ForegroundColor: MakeBrightColor(XtermColorBlack)}
	stylePeek    = Style{ForegroundColor: MakeXtermColor(XtermColorGreen)}
)

func messageStyle(kind MessageKind) Style {
	switch kind {
	case MessageInfo:
		return styleHeader
	case MessageSpecial:
		return styleSpecial
	case MessageNotice:
		return styleNotice
	case MessageWarning:
		return styleWarning
	case MessageError:
		return styleError
	}
	return styleContent
}
