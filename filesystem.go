package shell

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"
)

var (
	ErrNoSuchFile      = errors.New("no such file")
	ErrNoSuchDirectory = errors.New("no such directory")
)

// FileSystem is the file access the shell needs. Relative names are resolved
// against the session working directory, which is separate from the
// process one.
type FileSystem interface {
	Stat(name string) (fs.FileInfo, error)
	ReadFile(name string) ([]byte, error)
	WriteFile(name string, data []byte) error
	ReadDir(name string) ([]fs.DirEntry, error)
	Create(name string) error
	Touch(name string, t time.Time) error

	Getwd() string
	Chdir(dir string) error
	Abs(name string) string
}

type OSFileSystem struct {
	mu  sync.RWMutex
	dir string
}

// NewOSFileSystem starts a session in dir, or in the process working
// directory when dir is empty.
func NewOSFileSystem(dir string) (*OSFileSystem, error) {
	if dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, err
		}
		dir = wd
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(abs)
	if err != nil || !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrNoSuchDirectory, dir)
	}
	return &OSFileSystem{dir: abs}, nil
}

func (o *OSFileSystem) Getwd() string {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.dir
}

func (o *OSFileSystem) Abs(name string) string {
	if filepath.IsAbs(name) {
		return filepath.Clean(name)
	}
	return filepath.Join(o.Getwd(), name)
}

func (o *OSFileSystem) Chdir(dir string) error {
	abs := o.Abs(dir)
	info, err := os.Stat(abs)
	if err != nil || !info.IsDir() {
		return fmt.Errorf("%w: %s", ErrNoSuchDirectory, dir)
	}
	o.mu.Lock()
	o.dir = abs
	o.mu.Unlock()
	return nil
}

func (o *OSFileSystem) Stat(name string) (fs.FileInfo, error) {
	return os.Stat(o.Abs(name))
}

func (o *OSFileSystem) ReadFile(name string) ([]byte, error) {
	return os.ReadFile(o.Abs(name))
}

func (o *OSFileSystem) WriteFile(name string, data []byte) error {
	return os.WriteFile(o.Abs(name), data, 0o644)
}

func (o *OSFileSystem) ReadDir(name string) ([]fs.DirEntry, error) {
	return os.ReadDir(o.Abs(name))
}

// Create makes an empty file, failing if it exists already.
func (o *OSFileSystem) Create(name string) error {
	f, err := os.OpenFile(o.Abs(name), os.O_RDWR|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return err
	}
	return f.Close()
}

func (o *OSFileSystem) Touch(name string, t time.Time) error {
	return os.Chtimes(o.Abs(name), t, t)
}
