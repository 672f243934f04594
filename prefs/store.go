package prefs

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"
)

// Store is the injected preference store.
type Store interface {
	Read() Preferences
	Write(patch Patch) (Preferences, error)
	Subscribe(listener func(Preferences)) (unsubscribe func())
}

// Backend persists the whole record. Load reports found=false when
// nothing has been stored yet.
type Backend interface {
	Load() (p Preferences, found bool, err error)
	Save(p Preferences) error
	Clear() error
}

type MemoryBackend struct {
	mu    sync.Mutex
	prefs *Preferences
}

func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{}
}

func (m *MemoryBackend) Load() (Preferences, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.prefs == nil {
		return Defaults(), false, nil
	}
	return m.prefs.clone(), true, nil
}

func (m *MemoryBackend) Save(p Preferences) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c := p.clone()
	m.prefs = &c
	return nil
}

func (m *MemoryBackend) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.prefs = nil
	return nil
}

// FileBackend keeps the record as an indented JSON file.
type FileBackend struct {
	Path string
}

func (s FileBackend) Load() (Preferences, bool, error) {
	b, err := os.ReadFile(s.Path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Defaults(), false, nil
		}
		return Preferences{}, false, err
	}
	var p Preferences
	if err := json.Unmarshal(b, &p); err != nil {
		return Preferences{}, false, err
	}
	return p.normalize(), true, nil
}

func (s FileBackend) Save(p Preferences) error {
	if err := os.MkdirAll(filepath.Dir(s.Path), 0o755); err != nil {
		return err
	}
	b, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return err
	}
	b = append(b, '\n')
	return os.WriteFile(s.Path, b, 0o600)
}

func (s FileBackend) Clear() error {
	if err := os.Remove(s.Path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}
