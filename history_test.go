package shell

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHistoryAdd(t *testing.T) {
	h := NewHistory()
	h.Add("ls")
	h.Add("ls")
	h.Add("  ")
	h.Add(" cd .. ")
	h.Add("ls")
	assert.Equal(t, []string{"ls", "cd ..", "ls"}, h.Entries())
}

func TestHistoryNoAdjacentDuplicates(t *testing.T) {
	h := NewHistory("a", "a", "b", "b", "b", "a")
	entries := h.Entries()
	for i := 1; i < len(entries); i++ {
		assert.NotEqual(t, entries[i-1], entries[i])
	}
	assert.Equal(t, []string{"a", "b", "a"}, entries)
}

func TestHistoryBrowse(t *testing.T) {
	h := NewHistory("a", "b", "c")

	v, ok := h.Prev("")
	require.True(t, ok)
	assert.Equal(t, "c", v)
	v, _ = h.Prev("")
	assert.Equal(t, "b", v)
	v, _ = h.Prev("")
	assert.Equal(t, "a", v)
	v, _ = h.Prev("")
	assert.Equal(t, "a", v, "oldest entry is sticky")

	v, _ = h.Next()
	assert.Equal(t, "b", v)
	v, _ = h.Next()
	assert.Equal(t, "c", v)
	_, ok = h.Next()
	assert.False(t, ok)
	assert.True(t, h.Browsing())

	h.Reset()
	assert.False(t, h.Browsing())
	_, ok = h.Next()
	assert.False(t, ok)
}

func TestHistoryDraftComesBack(t *testing.T) {
	h := NewHistory("a", "b")

	v, ok := h.Prev("draft")
	require.True(t, ok)
	assert.Equal(t, "b", v)
	v, _ = h.Prev("ignored while browsing")
	assert.Equal(t, "a", v)

	v, _ = h.Next()
	assert.Equal(t, "b", v)
	v, ok = h.Next()
	require.True(t, ok)
	assert.Equal(t, "draft", v)
	assert.Equal(t, []string{"a", "b", "draft"}, h.Entries())
}

func TestHistoryEmpty(t *testing.T) {
	h := NewHistory()
	_, ok := h.Prev("draft")
	assert.False(t, ok)
	assert.False(t, h.Browsing())
	assert.Equal(t, 0, h.Len())
}

func TestHistoryPeek(t *testing.T) {
	h := NewHistory("a", "b", "c")
	v, ok := h.Peek(0)
	require.True(t, ok)
	assert.Equal(t, "c", v)
	v, _ = h.Peek(2)
	assert.Equal(t, "a", v)
	_, ok = h.Peek(3)
	assert.False(t, ok)
	_, ok = h.Peek(-1)
	assert.False(t, ok)
}

func TestHistoryString(t *testing.T) {
	h := NewHistory("a", "b", "history")
	assert.Equal(t, "a\nb\nhistory\n", h.String(false))
	assert.Equal(t, "a\nb\n", h.String(true))
	assert.Equal(t, "", NewHistory().String(true))
}

func TestHistoryEncodeRoundTrip(t *testing.T) {
	h := NewHistory("a", "b", "c")
	s, err := EncodeHistory(h)
	require.NoError(t, err)

	_, err = base64.StdEncoding.DecodeString(s)
	require.NoError(t, err)

	got, err := DecodeHistory(s)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, got.Entries())
	assert.False(t, got.Browsing())
}

func TestHistoryUnmarshalKeepsEntries(t *testing.T) {
	stored := &History{entries: []string{" a ", "b", "b"}, cursor: notBrowsing}
	data, err := stored.MarshalBinary()
	require.NoError(t, err)

	got := NewHistory("old")
	require.NoError(t, got.UnmarshalBinary(data))
	assert.Equal(t, []string{" a ", "b", "b"}, got.Entries())
}

func TestHistoryEncodeEmpty(t *testing.T) {
	s, err := EncodeHistory(NewHistory())
	require.NoError(t, err)
	assert.Equal(t, "", s)

	got, err := DecodeHistory(s)
	require.NoError(t, err)
	assert.Equal(t, 0, got.Len())
}

func TestHistoryDecodeCorrupt(t *testing.T) {
	for _, input := range []string{
		"not base64 !!",
		base64.StdEncoding.EncodeToString([]byte{0xff, 0xff, 0xff, 0xff}),
	} {
		got, err := DecodeHistory(input)
		assert.Error(t, err, input)
		require.NotNil(t, got)
		assert.Equal(t, 0, got.Len())
	}
}

func TestHistoryClear(t *testing.T) {
	h := NewHistory("a", "b")
	h.Prev("")
	h.Clear()
	assert.Equal(t, 0, h.Len())
	assert.False(t, h.Browsing())
}
