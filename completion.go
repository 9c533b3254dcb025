package shell

import (
	"path/filepath"
	"sort"
	"strings"
)

const DefaultPeekMax = 255

// Completer produces the completion candidates for a token and cycles
// through them.
type Completer struct {
	PeekMax int

	fsys       FileSystem
	commands   []string
	candidates []string
	index      int
	pathPrefix string
	matched    bool

	preview *previewRegion
}

func NewCompleter(fsys FileSystem, commands ...string) *Completer {
	c := &Completer{
		PeekMax: DefaultPeekMax,
		fsys:    fsys,
		index:   -1,
	}
	c.AddCommands(commands...)
	return c
}

// AddCommands registers command names offered next to directory entries.
// Names differing only in case are registered once.
func (c *Completer) AddCommands(names ...string) {
	for _, name := range names {
		if name == "" || containsFold(c.commands, name) {
			continue
		}
		c.commands = append(c.commands, name)
	}
}

func (c *Completer) Commands() []string {
	return append([]string(nil), c.commands...)
}

// Match computes the candidates for prefix and returns the offset in prefix
// where the completed part starts, or -1 when nothing matches a prefix
// without a directory part.
func (c *Completer) Match(prefix string, includeCommands bool) int {
	c.candidates = nil
	c.index = -1
	c.pathPrefix = ""
	c.matched = true

	if prefix == "" {
		c.candidates = c.list(".", "", includeCommands)
		return 0
	}

	if i := lastSeparator(prefix); i >= 0 {
		c.pathPrefix = prefix[:i+1]
		c.candidates = c.list(c.pathPrefix, prefix[i+1:], false)
		return i + 1
	}

	c.candidates = c.list(".", prefix, includeCommands)
	if len(c.candidates) == 0 {
		return -1
	}
	return 0
}

func lastSeparator(s string) int {
	seps := "/"
	if filepath.Separator != '/' {
		seps += string(filepath.Separator)
	}
	return strings.LastIndexAny(s, seps)
}

func (c *Completer) list(dir, stem string, includeCommands bool) []string {
	stem = strings.ToLower(stem)
	seen := map[string]bool{}
	var names []string
	add := func(name string) {
		if seen[name] || !strings.HasPrefix(strings.ToLower(name), stem) {
			return
		}
		seen[name] = true
		names = append(names, name)
	}

	if entries, err := c.fsys.ReadDir(dir); err == nil {
		for _, entry := range entries {
			add(entry.Name())
		}
	}
	if includeCommands {
		for _, name := range c.commands {
			add(name)
		}
	}

	sort.Slice(names, func(i, j int) bool {
		a, b := strings.ToLower(names[i]), strings.ToLower(names[j])
		if a != b {
			return a < b
		}
		return names[i] < names[j]
	})
	return names
}

// Next returns the following candidate, wrapping around after the last.
func (c *Completer) Next() (string, bool) {
	if len(c.candidates) == 0 {
		return "", false
	}
	c.index = (c.index + 1) % len(c.candidates)
	return c.pathPrefix + c.candidates[c.index], true
}

// Previous steps backwards through the candidates.
func (c *Completer) Previous() (string, bool) {
	if len(c.candidates) == 0 {
		return "", false
	}
	if c.index <= 0 {
		c.index = len(c.candidates)
	}
	c.index--
	return c.pathPrefix + c.candidates[c.index], true
}

func (c *Completer) Count() int {
	return len(c.candidates)
}

// Index of the candidate last returned, or -1.
func (c *Completer) Index() int {
	return c.index
}

// Active reports whether a completion attempt is in progress.
func (c *Completer) Active() bool {
	return c.matched
}

func (c *Completer) Candidates() []string {
	return append([]string(nil), c.candidates...)
}

func (c *Completer) PathPrefix() string {
	return c.pathPrefix
}

// Reset removes the preview, if one is shown, and forgets the candidates.
func (c *Completer) Reset(term Terminal) error {
	var err error
	if c.preview != nil {
		err = c.clearPreview(term, true)
	}
	c.candidates = nil
	c.index = -1
	c.pathPrefix = ""
	c.matched = false
	return err
}
