package shell

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sys/unix"
)

var ErrNotFound = errors.New("executable file not found")

// PathResolver finds the executable a command name refers to. dir is the
// directory relative names are resolved against.
type PathResolver interface {
	LookPath(name, dir string) (string, error)
}

// PathLookup searches the directories of a PATH style list.
type PathLookup struct {
	// Path is the list to search. When empty $PATH is used.
	Path string
}

func (p PathLookup) LookPath(name, dir string) (string, error) {
	if name == "" {
		return "", ErrNotFound
	}
	if strings.ContainsRune(name, '/') {
		path := name
		if !filepath.IsAbs(path) {
			path = filepath.Join(dir, path)
		}
		if isExecutable(path) {
			return path, nil
		}
		return "", ErrNotFound
	}

	list := p.Path
	if list == "" {
		list = os.Getenv("PATH")
	}
	for _, d := range filepath.SplitList(list) {
		if d == "" {
			d = "."
		}
		if !filepath.IsAbs(d) {
			d = filepath.Join(dir, d)
		}
		path := filepath.Join(d, name)
		if isExecutable(path) {
			return path, nil
		}
	}
	return "", ErrNotFound
}

func isExecutable(path string) bool {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return false
	}
	return unix.Access(path, unix.X_OK) == nil
}
