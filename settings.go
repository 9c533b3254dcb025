package shell

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"
)

// Settings is a string key/value store that outlives the session.
type Settings interface {
	Get(key string) (string, bool)
	Set(key, value string) error
	Delete(key string) error
}

type MemorySettings struct {
	mu     sync.Mutex
	values map[string]string
}

func NewMemorySettings() *MemorySettings {
	return &MemorySettings{values: map[string]string{}}
}

func (m *MemorySettings) Get(key string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.values[key]
	return v, ok
}

func (m *MemorySettings) Set(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}

func (m *MemorySettings) Delete(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values, key)
	return nil
}

const DefaultSettingsSection = "shell"

// FileSettings keeps one named section of a YAML document of sections. The
// file is rewritten on every change; other sections are left as they were.
type FileSettings struct {
	mu      sync.Mutex
	path    string
	section string
	doc     map[string]map[string]string
}

// OpenFileSettings loads path. A missing file is an empty document.
func OpenFileSettings(path, section string) (*FileSettings, error) {
	if section == "" {
		section = DefaultSettingsSection
	}
	f := &FileSettings{
		path:    path,
		section: section,
		doc:     map[string]map[string]string{},
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return f, nil
	}
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(data, &f.doc); err != nil {
		return nil, fmt.Errorf("parsing settings %s: %w", path, err)
	}
	if f.doc == nil {
		f.doc = map[string]map[string]string{}
	}
	return f, nil
}

func (f *FileSettings) Path() string {
	return f.path
}

func (f *FileSettings) Get(key string) (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.doc[f.section][key]
	return v, ok
}

func (f *FileSettings) Set(key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	values := f.doc[f.section]
	if values == nil {
		values = map[string]string{}
		f.doc[f.section] = values
	}
	values[key] = value
	return f.save()
}

func (f *FileSettings) Delete(key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	values, ok := f.doc[f.section]
	if !ok {
		return nil
	}
	if _, ok := values[key]; !ok {
		return nil
	}
	delete(values, key)
	if len(values) == 0 {
		delete(f.doc, f.section)
	}
	return f.save()
}

func (f *FileSettings) save() error {
	data, err := yaml.Marshal(f.doc)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(f.path), 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(f.path), ".settings-*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), f.path)
}
