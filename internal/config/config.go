// Package config provides persistent storage for rotations and application settings.
package config

import (
	"encoding/json"
	"errors"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"oneclick/internal/keys"
)

const (
	rotationsFile = "rotations.json"
	settingsFile  = "settings.json"
)

// Rotation is a named trigger key and the ordered keys it cycles through.
// The JSON layout is the on-disk format of rotations.json.
type Rotation struct {
	// Name identifies the rotation (e.g. "combo1")
	Name string `json:"name"`

	// Sequence is the ordered list of keys emitted one per trigger press
	Sequence []string `json:"sequence"`

	// Trigger is the key that advances the rotation
	Trigger string `json:"trigger"`
}

// Settings contains general application settings
type Settings struct {
	// UIPort is the port for the configuration UI (0 picks a free port)
	UIPort int `json:"ui_port"`

	// OpenUIOnStart opens the configuration UI when the service starts
	OpenUIOnStart bool `json:"open_ui_on_start"`

	// StartOnBoot determines if app starts on login
	StartOnBoot bool `json:"start_on_boot"`
}

// DefaultSettings returns the settings used when no settings file exists
func DefaultSettings() Settings {
	return Settings{}
}

// Store holds the rotations in creation order and writes the whole list
// to disk on every change.
type Store struct {
	mu        sync.Mutex
	dir       string
	rotations []Rotation
	settings  Settings
}

// NewStore creates a store rooted at dir. An empty dir selects the per-OS default.
func NewStore(dir string) (*Store, error) {
	if dir == "" {
		var err error
		dir, err = DefaultDir()
		if err != nil {
			return nil, err
		}
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, &PersistenceError{Op: "mkdir", Path: dir, Err: err}
	}

	return &Store{
		dir:      dir,
		settings: DefaultSettings(),
	}, nil
}

// DefaultDir returns the per-OS configuration directory
func DefaultDir() (string, error) {
	switch runtime.GOOS {
	case "darwin":
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, "Library", "Application Support", "oneclick"), nil
	case "windows":
		appData := os.Getenv("APPDATA")
		if appData == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", err
			}
			appData = filepath.Join(home, "AppData", "Roaming")
		}
		return filepath.Join(appData, "oneclick"), nil
	default:
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, ".config", "oneclick"), nil
	}
}

// Dir returns the directory holding the store files
func (s *Store) Dir() string {
	return s.dir
}

// Path returns the path of the rotations file
func (s *Store) Path() string {
	return filepath.Join(s.dir, rotationsFile)
}

// Load reads the rotations from disk. A missing file leaves the store empty
// and is not an error. Malformed content is returned as a PersistenceError
// and the store is left empty.
func (s *Store) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.rotations = nil

	data, err := os.ReadFile(s.Path())
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return &PersistenceError{Op: "read", Path: s.Path(), Err: err}
	}

	var loaded []Rotation
	if err := json.Unmarshal(data, &loaded); err != nil {
		return &PersistenceError{Op: "parse", Path: s.Path(), Err: err}
	}

	for i := range loaded {
		loaded[i] = normalize(loaded[i])
		if err := validate(loaded[i]); err != nil {
			log.Printf("Config: Loaded rotation %q is not usable: %v", loaded[i].Name, err)
		}
	}
	s.rotations = loaded
	return nil
}

// List returns a copy of the rotations in creation order
func (s *Store) List() []Rotation {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Rotation, len(s.rotations))
	for i, r := range s.rotations {
		out[i] = r.clone()
	}
	return out
}

// Len returns the number of stored rotations
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.rotations)
}

// Get returns the rotation at index
func (s *Store) Get(index int) (Rotation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if index < 0 || index >= len(s.rotations) {
		return Rotation{}, &IndexError{Index: index, Len: len(s.rotations)}
	}
	return s.rotations[index].clone(), nil
}

// Create validates r and appends it. On a write failure the rotation stays
// in memory and a PersistenceError is returned.
func (s *Store) Create(r Rotation) (Rotation, error) {
	r = normalize(r)
	if err := validate(r); err != nil {
		return Rotation{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.rotations {
		if strings.EqualFold(existing.Name, r.Name) {
			return Rotation{}, &ValidationError{Field: "name", Reason: "a rotation named " + existing.Name + " already exists"}
		}
	}

	s.rotations = append(s.rotations, r)
	return r.clone(), s.saveLocked()
}

// Delete removes the rotation at index and returns it. On a write failure the
// removal is kept in memory and a PersistenceError is returned.
func (s *Store) Delete(index int) (Rotation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if index < 0 || index >= len(s.rotations) {
		return Rotation{}, &IndexError{Index: index, Len: len(s.rotations)}
	}

	removed := s.rotations[index]
	s.rotations = append(s.rotations[:index:index], s.rotations[index+1:]...)
	return removed, s.saveLocked()
}

func (s *Store) saveLocked() error {
	list := s.rotations
	if list == nil {
		list = []Rotation{}
	}

	data, err := json.MarshalIndent(list, "", "  ")
	if err != nil {
		return &PersistenceError{Op: "encode", Path: s.Path(), Err: err}
	}

	log.Printf("Config: Saving %d rotation(s) to %s", len(list), s.Path())
	if err := os.WriteFile(s.Path(), data, 0644); err != nil {
		return &PersistenceError{Op: "write", Path: s.Path(), Err: err}
	}
	return nil
}

// LoadSettings reads settings from disk, keeping defaults when the file is missing
func (s *Store) LoadSettings() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	path := filepath.Join(s.dir, settingsFile)
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return &PersistenceError{Op: "read", Path: path, Err: err}
	}

	settings := DefaultSettings()
	if err := json.Unmarshal(data, &settings); err != nil {
		return &PersistenceError{Op: "parse", Path: path, Err: err}
	}
	s.settings = settings
	return nil
}

// Settings returns the current settings
func (s *Store) Settings() Settings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.settings
}

// SaveSettings replaces the settings and writes them to disk
func (s *Store) SaveSettings(settings Settings) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.settings = settings
	path := filepath.Join(s.dir, settingsFile)
	data, err := json.MarshalIndent(settings, "", "  ")
	if err != nil {
		return &PersistenceError{Op: "encode", Path: path, Err: err}
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return &PersistenceError{Op: "write", Path: path, Err: err}
	}
	return nil
}

// Validate checks a rotation against the key validation set
func Validate(r Rotation) error {
	return validate(normalize(r))
}

func validate(r Rotation) error {
	if r.Name == "" {
		return &ValidationError{Field: "name", Reason: "all fields are required"}
	}
	if r.Trigger == "" {
		return &ValidationError{Field: "trigger", Reason: "all fields are required"}
	}
	if len(r.Sequence) == 0 {
		return &ValidationError{Field: "sequence", Reason: "all fields are required"}
	}
	if !keys.IsValid(r.Trigger) {
		return &ValidationError{Field: "trigger", InvalidKeys: []string{r.Trigger}}
	}
	if invalid := keys.Invalid(r.Sequence); len(invalid) > 0 {
		return &ValidationError{Field: "sequence", InvalidKeys: invalid}
	}
	return nil
}

func normalize(r Rotation) Rotation {
	out := Rotation{
		Name:    strings.TrimSpace(r.Name),
		Trigger: keys.Normalize(r.Trigger),
	}
	if len(r.Sequence) > 0 {
		out.Sequence = make([]string, len(r.Sequence))
		for i, k := range r.Sequence {
			out.Sequence[i] = keys.Normalize(k)
		}
	}
	return out
}

func (r Rotation) clone() Rotation {
	r.Sequence = append([]string(nil), r.Sequence...)
	return r
}

// IsPersistence reports whether err is a PersistenceError. Such errors leave
// the in-memory state updated and are logged rather than surfaced.
func IsPersistence(err error) bool {
	var pe *PersistenceError
	return errors.As(err, &pe)
}
