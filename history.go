package shell

import (
	"bytes"
	"compress/flate"
	"encoding/base64"
	"fmt"
	"io"
	"strings"
)

const notBrowsing = -1

// History keeps submitted lines in chronological order. The browse cursor
// counts back from the newest entry.
type History struct {
	entries []string
	cursor  int
}

func NewHistory(lines ...string) *History {
	h := &History{cursor: notBrowsing}
	for _, line := range lines {
		h.Add(line)
	}
	return h
}

// Add appends line unless it is blank or repeats the newest entry.
func (h *History) Add(line string) {
	line = strings.TrimSpace(line)
	if line == "" {
		return
	}
	if n := len(h.entries); n > 0 && h.entries[n-1] == line {
		return
	}
	h.entries = append(h.entries, line)
}

// Prev moves one entry into the past. When browsing starts with a non-empty
// draft, the draft is stored first so that Next can bring it back.
func (h *History) Prev(draft string) (string, bool) {
	if len(h.entries) == 0 {
		return "", false
	}
	if h.cursor == notBrowsing {
		if draft = strings.TrimSpace(draft); draft != "" {
			h.Add(draft)
			h.cursor = 0
		}
	}
	h.cursor++
	if h.cursor > len(h.entries)-1 {
		h.cursor = len(h.entries) - 1
	}
	return h.Peek(h.cursor)
}

// Next moves one entry toward the present. At the newest entry, or when not
// browsing, it returns nothing and the cursor stays where it is.
func (h *History) Next() (string, bool) {
	if h.cursor <= 0 {
		return "", false
	}
	h.cursor--
	return h.Peek(h.cursor)
}

// Peek returns the entry level positions back from the newest.
func (h *History) Peek(level int) (string, bool) {
	if level < 0 || level >= len(h.entries) {
		return "", false
	}
	return h.entries[len(h.entries)-1-level], true
}

func (h *History) Reset() {
	h.cursor = notBrowsing
}

func (h *History) Browsing() bool {
	return h.cursor != notBrowsing
}

func (h *History) Len() int {
	return len(h.entries)
}

func (h *History) Entries() []string {
	return append([]string(nil), h.entries...)
}

func (h *History) Clear() {
	h.entries = nil
	h.cursor = notBrowsing
}

// String lists the entries oldest first, one per line. With skipLast the
// newest entry is left out.
func (h *History) String(skipLast bool) string {
	entries := h.entries
	if skipLast && len(entries) > 0 {
		entries = entries[:len(entries)-1]
	}
	var b strings.Builder
	for _, entry := range entries {
		b.WriteString(entry)
		b.WriteByte('\n')
	}
	return b.String()
}

// MarshalBinary returns the deflated, newline-joined entries, or nil for an
// empty history.
func (h *History) MarshalBinary() ([]byte, error) {
	if len(h.entries) == 0 {
		return nil, nil
	}
	var buf bytes.Buffer
	w, err := flate.NewWriter(&buf, flate.BestCompression)
	if err != nil {
		return nil, err
	}
	if _, err := io.WriteString(w, strings.Join(h.entries, "\n")); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// UnmarshalBinary replaces the entries with the ones in data.
func (h *History) UnmarshalBinary(data []byte) error {
	h.Clear()
	if len(data) == 0 {
		return nil
	}
	r := flate.NewReader(bytes.NewReader(data))
	defer r.Close()
	text, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("inflating history: %w", err)
	}
	h.entries = strings.Split(string(text), "\n")
	return nil
}

// EncodeHistory returns the settings form of h: base64 of MarshalBinary.
func EncodeHistory(h *History) (string, error) {
	data, err := h.MarshalBinary()
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(data), nil
}

// DecodeHistory parses the settings form of a history. It always returns a
// usable history; on corrupt input it is empty and the error says why.
func DecodeHistory(s string) (*History, error) {
	h := NewHistory()
	s = strings.TrimSpace(s)
	if s == "" {
		return h, nil
	}
	data, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return h, fmt.Errorf("decoding history: %w", err)
	}
	if err := h.UnmarshalBinary(data); err != nil {
		h.Clear()
		return h, err
	}
	return h, nil
}
