package prefs

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"
)

// Theme selects the display appearance.
type Theme string

const (
	ThemeLight  Theme = "light"
	ThemeDark   Theme = "dark"
	ThemeSystem Theme = "system"
)

func ParseTheme(s string) (Theme, error) {
	switch Theme(s) {
	case ThemeLight, ThemeDark, ThemeSystem:
		return Theme(s), nil
	}
	return "", fmt.Errorf("unknown theme: %q", s)
}

type prefsFile struct {
	Theme Theme `yaml:"theme"`
}

// Store persists user preferences to a YAML file. Reads come from memory
// after the initial load; writes go to a temp file first and rename over
// the target so a crash mid-write never leaves a corrupt file.
type Store struct {
	path string

	mu    sync.Mutex
	theme Theme
}

// NewStore loads the preferences at path. A missing or unreadable file
// falls back to defaults, applying a preference must not block startup.
func NewStore(path string) *Store {
	s := &Store{path: path, theme: ThemeSystem}

	data, err := os.ReadFile(path)
	if err != nil {
		return s
	}

	var file prefsFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return s
	}
	if theme, err := ParseTheme(string(file.Theme)); err == nil {
		s.theme = theme
	}
	return s
}

func (s *Store) Theme() Theme {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.theme
}

func (s *Store) SetTheme(theme Theme) error {
	if _, err := ParseTheme(string(theme)); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	previous := s.theme
	s.theme = theme
	if err := s.save(); err != nil {
		s.theme = previous
		return err
	}
	return nil
}

// save writes the current preferences. Callers hold s.mu.
func (s *Store) save() error {
	data, err := yaml.Marshal(prefsFile{Theme: s.theme})
	if err != nil {
		return fmt.Errorf("failed to encode preferences: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".prefs-*")
	if err != nil {
		return fmt.Errorf("failed to write preferences: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write preferences: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write preferences: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write preferences: %w", err)
	}
	return nil
}
