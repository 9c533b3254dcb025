package shell

import (
	"fmt"
	"sort"
	"strings"
	"unicode"
)

const (
	ModifierShift = 1
	ModifierAlt   = 2
	ModifierCtrl  = 4
)

type KeyCode int

const (
	KeyRune KeyCode = iota
	KeyEnter
	KeyTab
	KeyBacktab
	KeyBackspace
	KeyDelete
	KeyInsert
	KeyHome
	KeyEnd
	KeyLeft
	KeyRight
	KeyUp
	KeyDown
	KeyPageUp
	KeyPageDown
	KeyEscape
)

var keyNames = map[KeyCode]string{
	KeyEnter:     "Enter",
	KeyTab:       "Tab",
	KeyBacktab:   "Backtab",
	KeyBackspace: "Backspace",
	KeyDelete:    "Delete",
	KeyInsert:    "Insert",
	KeyHome:      "Home",
	KeyEnd:       "End",
	KeyLeft:      "Left",
	KeyRight:     "Right",
	KeyUp:        "Up",
	KeyDown:      "Down",
	KeyPageUp:    "PageUp",
	KeyPageDown:  "PageDown",
	KeyEscape:    "Escape",
}

// Key is one decoded input event. Rune is only set for KeyRune.
type Key struct {
	Code      KeyCode
	Rune      rune
	Modifiers int
}

func Ctrl(r rune) Key {
	return Key{Code: KeyRune, Rune: unicode.ToLower(r), Modifiers: ModifierCtrl}
}

func Alt(r rune) Key {
	return Key{Code: KeyRune, Rune: r, Modifiers: ModifierAlt}
}

func Plain(code KeyCode) Key {
	return Key{Code: code}
}

func (k Key) String() string {
	var b strings.Builder
	if k.Modifiers&ModifierCtrl != 0 {
		b.WriteString("Ctrl+")
	}
	if k.Modifiers&ModifierAlt != 0 {
		b.WriteString("Alt+")
	}
	if k.Modifiers&ModifierShift != 0 {
		b.WriteString("Shift+")
	}
	if k.Code == KeyRune {
		if k.Modifiers&ModifierCtrl != 0 {
			b.WriteRune(unicode.ToUpper(k.Rune))
		} else {
			b.WriteRune(k.Rune)
		}
		return b.String()
	}
	if name, ok := keyNames[k.Code]; ok {
		b.WriteString(name)
	} else {
		fmt.Fprintf(&b, "Key(%d)", int(k.Code))
	}
	return b.String()
}

// Action is what the shell loop does with a bound key. Keys without an
// action go to the line editor.
type Action int

const (
	ActionNone Action = iota
	ActionSubmit
	ActionExit
	ActionClear
	ActionComplete
	ActionCompleteBack
	ActionHistoryPrev
	ActionHistoryNext
	ActionInterrupt
)

func (a Action) String() string {
	switch a {
	case ActionNone:
		return "none"
	case ActionSubmit:
		return "submit"
	case ActionExit:
		return "exit"
	case ActionClear:
		return "clear"
	case ActionComplete:
		return "complete"
	case ActionCompleteBack:
		return "complete-back"
	case ActionHistoryPrev:
		return "history-prev"
	case ActionHistoryNext:
		return "history-next"
	case ActionInterrupt:
		return "interrupt"
	}
	return fmt.Sprintf("Action(%d)", int(a))
}

type Keymap struct {
	bindings map[Key]Action
}

func NewKeymap() *Keymap {
	return &Keymap{bindings: make(map[Key]Action)}
}

func DefaultKeymap() *Keymap {
	m := NewKeymap()
	m.Bind(Plain(KeyEnter), ActionSubmit)
	m.Bind(Ctrl('D'), ActionExit)
	m.Bind(Ctrl('L'), ActionClear)
	m.Bind(Plain(KeyTab), ActionComplete)
	m.Bind(Key{Code: KeyBacktab, Modifiers: ModifierShift}, ActionCompleteBack)
	m.Bind(Plain(KeyUp), ActionHistoryPrev)
	m.Bind(Plain(KeyDown), ActionHistoryNext)
	m.Bind(Ctrl('C'), ActionInterrupt)
	return m
}

// Bind assigns action to k, replacing any previous binding. Binding
// ActionNone removes it.
func (m *Keymap) Bind(k Key, action Action) {
	if action == ActionNone {
		delete(m.bindings, k)
		return
	}
	m.bindings[k] = action
}

func (m *Keymap) Lookup(k Key) Action {
	return m.bindings[k]
}

// Keys returns the keys bound to action.
func (m *Keymap) Keys(action Action) []Key {
	var keys []Key
	for k, a := range m.bindings {
		if a == action {
			keys = append(keys, k)
		}
	}
	sort.Slice(keys, func(i, j int) bool {
		return keys[i].String() < keys[j].String()
	})
	return keys
}

func (m *Keymap) Clone() *Keymap {
	c := NewKeymap()
	for k, a := range m.bindings {
		c.bindings[k] = a
	}
	return c
}
