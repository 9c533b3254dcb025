package shell

import (
	"bufio"
	"io"
	"strconv"
	"strings"
	"unicode/utf8"
)

type byteSource interface {
	io.ByteReader
	Buffered() int
}

// keyReader hands out bytes that were read ahead of time (while waiting for
// a cursor report, say) before reading new ones.
type keyReader struct {
	r       *bufio.Reader
	pending []byte
}

func newKeyReader(r io.Reader) *keyReader {
	return &keyReader{r: bufio.NewReader(r)}
}

func (k *keyReader) ReadByte() (byte, error) {
	if len(k.pending) > 0 {
		b := k.pending[0]
		k.pending = k.pending[1:]
		return b, nil
	}
	return k.r.ReadByte()
}

func (k *keyReader) Buffered() int {
	return len(k.pending) + k.r.Buffered()
}

func (k *keyReader) stash(b ...byte) {
	k.pending = append(k.pending, b...)
}

// Decoder turns the byte stream of a VT terminal into key events.
type Decoder struct {
	src byteSource
}

func NewDecoder(r io.Reader) *Decoder {
	return &Decoder{src: newKeyReader(r)}
}

func newDecoderFrom(src byteSource) *Decoder {
	return &Decoder{src: src}
}

// ReadEvent blocks until a whole key has been read. Sequences it does not
// know are skipped.
func (d *Decoder) ReadEvent() (Key, error) {
	for {
		b, err := d.src.ReadByte()
		if err != nil {
			return Key{}, err
		}

		var k Key
		var ok bool
		if b == 0x1b {
			k, ok, err = d.readEscape()
		} else {
			k, ok, err = d.decodeByte(b)
		}
		if err != nil {
			return Key{}, err
		}
		if ok {
			return k, nil
		}
	}
}

func (d *Decoder) readEscape() (Key, bool, error) {
	// A lone escape has nothing queued up behind it.
	if d.src.Buffered() == 0 {
		return Plain(KeyEscape), true, nil
	}
	b, err := d.src.ReadByte()
	if err != nil {
		return Key{}, false, err
	}
	switch b {
	case '[':
		return d.readCSI()
	case 'O':
		return d.readSS3()
	case 0x1b:
		return Plain(KeyEscape), true, nil
	}
	k, ok, err := d.decodeByte(b)
	k.Modifiers |= ModifierAlt
	return k, ok, err
}

func (d *Decoder) decodeByte(b byte) (Key, bool, error) {
	switch {
	case b == 0:
		return Key{}, false, nil
	case b == '\r' || b == '\n':
		return Plain(KeyEnter), true, nil
	case b == '\t':
		return Plain(KeyTab), true, nil
	case b == '\b' || b == 127:
		return Plain(KeyBackspace), true, nil
	case b < 27:
		return Ctrl(rune('a' + b - 1)), true, nil
	case b < 32:
		return Key{Code: KeyRune, Rune: rune(b) + '@', Modifiers: ModifierCtrl}, true, nil
	case b < utf8.RuneSelf:
		return Key{Code: KeyRune, Rune: rune(b)}, true, nil
	}

	buf := []byte{b}
	for !utf8.FullRune(buf) && len(buf) < utf8.UTFMax {
		next, err := d.src.ReadByte()
		if err != nil {
			return Key{}, false, err
		}
		buf = append(buf, next)
	}
	r, _ := utf8.DecodeRune(buf)
	if r == utf8.RuneError {
		return Key{}, false, nil
	}
	return Key{Code: KeyRune, Rune: r}, true, nil
}

func (d *Decoder) readCSI() (Key, bool, error) {
	var parameterBytes []byte
	var final byte
	for {
		b, err := d.src.ReadByte()
		if err != nil {
			return Key{}, false, err
		}
		if b >= 0x30 && b <= 0x3f { // '0123456789:;<=>?'
			parameterBytes = append(parameterBytes, b)
			continue
		}
		if b >= 0x20 && b <= 0x2f { // ' !"#$%&\'()*+,-./'
			continue
		}
		final = b
		break
	}
	if final < 0x40 || final > 0x7e {
		return Key{}, false, nil
	}

	var params []int
	for _, p := range strings.Split(string(parameterBytes), ";") {
		value, err := strconv.Atoi(p)
		if err != nil {
			value = 0
		}
		params = append(params, value)
	}
	var param1, param2 int
	if len(params) > 0 {
		param1 = params[0]
	}
	if len(params) > 1 {
		param2 = params[1]
	}
	modifiers := 0
	if param2 > 0 {
		modifiers = param2 - 1
	}

	var code KeyCode
	switch final {
	case 'A':
		code = KeyUp
	case 'B':
		code = KeyDown
	case 'C':
		code = KeyRight
	case 'D':
		code = KeyLeft
	case 'H':
		code = KeyHome
	case 'F':
		code = KeyEnd
	case 'Z':
		return Key{Code: KeyBacktab, Modifiers: ModifierShift}, true, nil
	case '~':
		switch param1 {
		case 1, 7:
			code = KeyHome
		case 2:
			code = KeyInsert
		case 3:
			code = KeyDelete
		case 4, 8:
			code = KeyEnd
		case 5:
			code = KeyPageUp
		case 6:
			code = KeyPageDown
		default:
			return Key{}, false, nil
		}
	default:
		return Key{}, false, nil
	}
	return Key{Code: code, Modifiers: modifiers}, true, nil
}

func (d *Decoder) readSS3() (Key, bool, error) {
	b, err := d.src.ReadByte()
	if err != nil {
		return Key{}, false, err
	}
	switch b {
	case 'A':
		return Plain(KeyUp), true, nil
	case 'B':
		return Plain(KeyDown), true, nil
	case 'C':
		return Plain(KeyRight), true, nil
	case 'D':
		return Plain(KeyLeft), true, nil
	case 'H':
		return Plain(KeyHome), true, nil
	case 'F':
		return Plain(KeyEnd), true, nil
	}
	return Key{}, false, nil
}
