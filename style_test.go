package shell

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStyleRender(t *testing.T) {
	assert.Equal(t, "plain", Style{}.Render("plain"))

	red := Style{ForegroundColor: MakeXtermColor(XtermColorRed), Bold: true}
	assert.Equal(t, "\x1b[1;24;23m\x1b[31mhi\x1b[22;24;23m\x1b[39m\x1b[49m", red.Render("hi"))

	bright := Style{ForegroundColor: MakeBrightColor(XtermColorRed)}
	assert.Contains(t, bright.Render("x"), "\x1b[91m")

	rgb := Style{BackgroundColor: MakeRGBColor(1, 2, 3)}
	assert.Contains(t, rgb.Render("x"), "\x1b[48;2;1;2;3m")
}

func TestMessageStyle(t *testing.T) {
	assert.Equal(t, styleError, messageStyle(MessageError))
	assert.Equal(t, styleWarning, messageStyle(MessageWarning))
	assert.Equal(t, styleContent, messageStyle(MessageContent))
	assert.Equal(t, styleContent, messageStyle(MessageKind(42)))
	assert.Equal(t, "notice", MessageNotice.String())
}
