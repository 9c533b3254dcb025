package shell

import (
	"strings"
)

const noToken = -1

type tokenSpan struct {
	start int
	end   int
}

// CommandLine is an editable line of input. Every character is mapped to
// the token it belongs to, so the cursor always knows which word it is on.
type CommandLine struct {
	text     []rune
	cursor   int
	tokenMap []int
	spans    []tokenSpan
	quoted   []string
	unquoted []string

	tokenIndex  int
	tokenOffset int
	tokenLength int

	overtype bool
}

// NewCommandLine parses text and places the cursor at its end.
func NewCommandLine(text string) *CommandLine {
	c := &CommandLine{}
	c.setText([]rune(text))
	c.SetCursor(len(c.text))
	return c
}

func (c *CommandLine) Text() string {
	return string(c.text)
}

func (c *CommandLine) Len() int {
	return len(c.text)
}

// SetText replaces the whole line. The cursor is kept where it was, clamped
// to the new length.
func (c *CommandLine) SetText(s string) {
	c.setText([]rune(s))
	c.SetCursor(c.cursor)
}

func (c *CommandLine) setText(text []rune) {
	c.text = text
	c.tokenMap, c.spans = scanTokens(text)
	c.quoted = make([]string, len(c.spans))
	c.unquoted = make([]string, len(c.spans))
	for i, span := range c.spans {
		c.quoted[i] = string(text[span.start:span.end])
		c.unquoted[i] = Unquote(c.quoted[i])
	}
}

// Clear empties the line and resets the cursor.
func (c *CommandLine) Clear() {
	c.setText(nil)
	c.SetCursor(0)
}

func (c *CommandLine) Cursor() int {
	return c.cursor
}

// SetCursor moves the cursor, clamped to [0, Len()], and recomputes the
// token under it. A cursor resting on whitespace right after a token still
// belongs to that token.
func (c *CommandLine) SetCursor(pos int) {
	if pos < 0 {
		pos = 0
	}
	if pos > len(c.text) {
		pos = len(c.text)
	}
	c.cursor = pos
	c.tokenIndex = noToken
	c.tokenOffset = -1
	c.tokenLength = 0

	if len(c.text) == 0 {
		return
	}

	at := pos
	if at == len(c.text) {
		at--
	}
	index := c.tokenMap[at]
	// Whitespace right after a token still selects it, also mid-line, so a
	// token just replaced by completion stays current for the next cycle.
	if index == noToken && at == pos && at > 0 {
		index = c.tokenMap[at-1]
	}
	if index == noToken {
		return
	}

	c.tokenIndex = index
	c.tokenOffset = c.spans[index].start
	c.tokenLength = c.spans[index].end - c.spans[index].start
}

// CurrentTokenIndex returns the index of the token under the cursor, or -1.
func (c *CommandLine) CurrentTokenIndex() int {
	return c.tokenIndex
}

func (c *CommandLine) CurrentTokenOffset() int {
	return c.tokenOffset
}

func (c *CommandLine) CurrentTokenLength() int {
	return c.tokenLength
}

// CurrentToken returns the unquoted token under the cursor.
func (c *CommandLine) CurrentToken() (string, bool) {
	if c.tokenIndex == noToken {
		return "", false
	}
	return c.unquoted[c.tokenIndex], true
}

// SetCurrentToken replaces the token under the cursor with value, quoting it
// when needed, and moves the cursor right after it. Without a current token
// the value is inserted at the cursor as a new token.
func (c *CommandLine) SetCurrentToken(value string) {
	quoted := []rune(Quote(value))

	if c.tokenIndex == noToken {
		cursor := c.cursor + len(quoted)
		c.setText(concatRunes(c.text[:c.cursor], quoted, c.text[c.cursor:]))
		c.SetCursor(cursor)
		return
	}

	offset := c.tokenOffset
	c.setText(concatRunes(c.text[:offset], quoted, c.text[offset+c.tokenLength:]))
	c.SetCursor(offset + len(quoted))
}

func (c *CommandLine) Home() {
	c.SetCursor(0)
}

func (c *CommandLine) End() {
	c.SetCursor(len(c.text))
}

func (c *CommandLine) Left() {
	if c.cursor > 0 {
		c.SetCursor(c.cursor - 1)
	}
}

func (c *CommandLine) Right() {
	if c.cursor < len(c.text) {
		c.SetCursor(c.cursor + 1)
	}
}

// PrevToken moves to the start of the current token, or to the start of the
// previous one when already there.
func (c *CommandLine) PrevToken() {
	i := c.cursor
	for i > 0 && c.tokenMap[i-1] == noToken {
		i--
	}
	if i == 0 {
		c.SetCursor(0)
		return
	}
	index := c.tokenMap[i-1]
	for i > 0 && c.tokenMap[i-1] == index {
		i--
	}
	c.SetCursor(i)
}

// NextToken moves to the start of the next token, or to the end of the line.
func (c *CommandLine) NextToken() {
	i := c.cursor
	n := len(c.text)
	if i < n && c.tokenMap[i] != noToken {
		index := c.tokenMap[i]
		for i < n && c.tokenMap[i] == index {
			i++
		}
	}
	for i < n && c.tokenMap[i] == noToken {
		i++
	}
	c.SetCursor(i)
}

func (c *CommandLine) IsOvertype() bool {
	return c.overtype
}

func (c *CommandLine) ToggleOvertype() {
	c.overtype = !c.overtype
}

func (c *CommandLine) InsertRune(r rune) {
	c.Insert(string(r))
}

// Insert types s at the cursor, replacing characters in overtype mode.
func (c *CommandLine) Insert(s string) {
	r := []rune(s)
	if len(r) == 0 {
		return
	}
	var text []rune
	if c.overtype {
		end := c.cursor + len(r)
		if end > len(c.text) {
			end = len(c.text)
		}
		text = concatRunes(c.text[:c.cursor], r, c.text[end:])
	} else {
		text = concatRunes(c.text[:c.cursor], r, c.text[c.cursor:])
	}
	cursor := c.cursor + len(r)
	c.setText(text)
	c.SetCursor(cursor)
}

// Backspace deletes the character before the cursor.
func (c *CommandLine) Backspace() bool {
	if c.cursor == 0 {
		return false
	}
	cursor := c.cursor - 1
	c.setText(concatRunes(c.text[:cursor], c.text[c.cursor:]))
	c.SetCursor(cursor)
	return true
}

// Delete deletes the character under the cursor.
func (c *CommandLine) Delete() bool {
	if c.cursor == len(c.text) {
		return false
	}
	c.setText(concatRunes(c.text[:c.cursor], c.text[c.cursor+1:]))
	c.SetCursor(c.cursor)
	return true
}

func (c *CommandLine) EraseToEnd() {
	c.setText(concatRunes(c.text[:c.cursor]))
	c.SetCursor(c.cursor)
}

func (c *CommandLine) KillToStart() {
	c.setText(concatRunes(c.text[c.cursor:]))
	c.SetCursor(0)
}

func (c *CommandLine) EraseWordBackward() {
	i := c.cursor
	for i > 0 && isSpace(c.text[i-1]) {
		i--
	}
	for i > 0 && !isSpace(c.text[i-1]) {
		i--
	}
	c.setText(concatRunes(c.text[:i], c.text[c.cursor:]))
	c.SetCursor(i)
}

// Command returns the first token, unquoted.
func (c *CommandLine) Command() string {
	if len(c.unquoted) == 0 {
		return ""
	}
	return c.unquoted[0]
}

// Arguments parses every token after the command. None of the switches take
// a value; use ArgumentsWithOptions for that.
func (c *CommandLine) Arguments() *Arguments {
	return c.ArgumentsWithOptions("")
}

// ArgumentsWithOptions parses the arguments treating the switches named in
// optionNames (separated with '|', ',' or ' ') as taking the next token as
// their value.
func (c *CommandLine) ArgumentsWithOptions(optionNames string) *Arguments {
	var args []string
	if len(c.unquoted) > 1 {
		args = c.unquoted[1:]
	}
	return ParseArguments(args, optionNames)
}

// Tokens returns the unquoted tokens.
func (c *CommandLine) Tokens() []string {
	return append([]string(nil), c.unquoted...)
}

// QuotedTokens returns the tokens exactly as typed.
func (c *CommandLine) QuotedTokens() []string {
	return append([]string(nil), c.quoted...)
}

// TokenMap returns a copy of the per-character token indices.
func (c *CommandLine) TokenMap() []int {
	return append([]int(nil), c.tokenMap...)
}

// scanTokens maps each character to its token. A quote character opens a
// quoted section, the same character closes it, and doubled inside that
// section it stands for itself. Unterminated quotes run to the end.
func scanTokens(text []rune) ([]int, []tokenSpan) {
	tokenMap := make([]int, len(text))
	var spans []tokenSpan
	var quote rune
	index := noToken
	inToken := false

	for i := 0; i < len(text); i++ {
		c := text[i]
		if !inToken {
			if isSpace(c) {
				tokenMap[i] = noToken
				continue
			}
			inToken = true
			index++
			spans = append(spans, tokenSpan{start: i})
		}

		tokenMap[i] = index
		switch {
		case quote == 0 && isSpace(c):
			tokenMap[i] = noToken
			spans[index].end = i
			inToken = false
		case quote == 0 && isQuote(c):
			quote = c
		case quote != 0 && c == quote:
			if i+1 < len(text) && text[i+1] == quote {
				i++
				tokenMap[i] = index
			} else {
				quote = 0
			}
		}
	}
	if inToken {
		spans[index].end = len(text)
	}
	return tokenMap, spans
}

// Split breaks line into tokens. With keepQuotes the tokens keep their
// quote characters.
func Split(line string, keepQuotes bool) []string {
	text := []rune(line)
	_, spans := scanTokens(text)
	parts := make([]string, 0, len(spans))
	for _, span := range spans {
		part := string(text[span.start:span.end])
		if !keepQuotes {
			part = Unquote(part)
		}
		parts = append(parts, part)
	}
	return parts
}

// Quote wraps part in double quotes when it would not survive as a single
// token otherwise. Parts already enclosed in double quotes are returned as is.
func Quote(part string) string {
	if len(part) >= 2 && strings.HasPrefix(part, `"`) && strings.HasSuffix(part, `"`) {
		return part
	}
	if !strings.ContainsFunc(part, func(r rune) bool { return isSpace(r) || isQuote(r) }) {
		return part
	}
	return `"` + strings.ReplaceAll(part, `"`, `""`) + `"`
}

// Unquote strips quote delimiters and collapses doubled quotes. Incomplete
// quoting is accepted.
func Unquote(part string) string {
	var b strings.Builder
	var quote rune
	r := []rune(part)
	for i := 0; i < len(r); i++ {
		c := r[i]
		switch {
		case quote == 0 && isQuote(c):
			quote = c
		case quote != 0 && c == quote:
			if i+1 < len(r) && r[i+1] == quote {
				b.WriteRune(quote)
				i++
			} else {
				quote = 0
			}
		default:
			b.WriteRune(c)
		}
	}
	return b.String()
}

// Join quotes the parts and joins them with spaces.
func Join(parts []string) string {
	quoted := make([]string, len(parts))
	for i, p := range parts {
		quoted[i] = Quote(p)
	}
	return strings.Join(quoted, " ")
}

func isSpace(c rune) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

func isQuote(c rune) bool {
	return c == '"' || c == '\''
}

func concatRunes(parts ...[]rune) []rune {
	n := 0
	for _, p := range parts {
		n += len(p)
	}
	out := make([]rune, 0, n)
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}
