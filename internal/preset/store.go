// Package preset persists named connection presets as a JSON file next
// to the executable. Passwords are stored in plain text: the tool runs
// on isolated delivery networks where the preset file never leaves the
// operator's machine.
package preset

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/hmkang/pgsetup/pkg/pgsetup"
)

// Preset is one saved connection.
type Preset struct {
	Name     string `json:"name"`
	Host     string `json:"host"`
	Port     int    `json:"port"`
	Username string `json:"user"`
	Password string `json:"password"`
	Database string `json:"dbname"`
}

// DisplayName returns the preset's name, or user@host:port/db when the
// name is empty.
func (p Preset) DisplayName() string {
	if p.Name != "" {
		return p.Name
	}
	return fmt.Sprintf("%s@%s:%d/%s", p.Username, p.Host, p.Port, p.Database)
}

// Config converts the preset into a ConnectionConfig.
func (p Preset) Config() *pgsetup.ConnectionConfig {
	return &pgsetup.ConnectionConfig{
		Host:     p.Host,
		Port:     p.Port,
		Username: p.Username,
		Password: p.Password,
		Database: p.Database,
		SSLMode:  pgsetup.DefaultSSLMode,
	}
}

// Store reads and writes the preset file. Presets keep their file order;
// saving an existing name overwrites it in place.
type Store struct {
	path string
}

// NewStore creates a Store for the given file path.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// DefaultStore locates the preset file next to the executable, falling
// back to the working directory when the executable path is unknown.
func DefaultStore() *Store {
	dir := "."
	if exe, err := os.Executable(); err == nil {
		dir = filepath.Dir(exe)
	}
	return NewStore(filepath.Join(dir, pgsetup.PresetFileName))
}

// Path returns the preset file location.
func (s *Store) Path() string {
	return s.path
}

// LoadAll returns all saved presets. A missing file is an empty list.
func (s *Store) LoadAll() ([]Preset, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read preset file: %w", err)
	}

	var presets []Preset
	if err := json.Unmarshal(data, &presets); err != nil {
		return nil, fmt.Errorf("preset file %s is corrupt: %w", s.path, err)
	}
	return presets, nil
}

// Get returns the preset with the given name.
func (s *Store) Get(name string) (Preset, error) {
	presets, err := s.LoadAll()
	if err != nil {
		return Preset{}, err
	}
	for _, p := range presets {
		if p.Name == name {
			return p, nil
		}
	}
	return Preset{}, fmt.Errorf("preset %q: %w", name, pgsetup.ErrPresetNotFound)
}

// Save stores a preset, overwriting any existing preset with the same name.
func (s *Store) Save(p Preset) error {
	if p.Name == "" {
		return fmt.Errorf("preset name is required: %w", pgsetup.ErrInvalidConfig)
	}

	presets, err := s.LoadAll()
	if err != nil {
		return err
	}

	replaced := false
	for i := range presets {
		if presets[i].Name == p.Name {
			presets[i] = p
			replaced = true
			break
		}
	}
	if !replaced {
		presets = append(presets, p)
	}

	return s.write(presets)
}

// Delete removes the preset with the given name. Deleting a preset that
// does not exist returns ErrPresetNotFound.
func (s *Store) Delete(name string) error {
	presets, err := s.LoadAll()
	if err != nil {
		return err
	}

	filtered := presets[:0]
	found := false
	for _, p := range presets {
		if p.Name == name {
			found = true
			continue
		}
		filtered = append(filtered, p)
	}
	if !found {
		return fmt.Errorf("preset %q: %w", name, pgsetup.ErrPresetNotFound)
	}

	return s.write(filtered)
}

func (s *Store) write(presets []Preset) error {
	if presets == nil {
		presets = []Preset{}
	}
	data, err := json.MarshalIndent(presets, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')

	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write preset file: %w", err)
	}
	return nil
}
