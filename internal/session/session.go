// Package session coordinates the rotation store, the runner and the
// current selection for the UI, tray and command line.
package session

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"oneclick/internal/config"
	"oneclick/internal/console"
	"oneclick/internal/rotation"
)

// ErrNoSelection is returned by Start when no rotation is selected
var ErrNoSelection = errors.New("no rotation selected")

// Status is the state reported to the UI
type Status struct {
	Selected     int    `json:"selected"`
	SelectedName string `json:"selected_name,omitempty"`
	Running      bool   `json:"running"`
	Active       string `json:"active,omitempty"`
	Trigger      string `json:"trigger,omitempty"`
	Cursor       int    `json:"cursor"`
	Emitted      int    `json:"emitted"`
	RunID        string `json:"run_id,omitempty"`
}

// Session is the foreground controller. All methods are safe for concurrent use.
type Session struct {
	mu       sync.Mutex
	store    *config.Store
	runner   *rotation.Runner
	console  *console.Console
	selected int

	onChange []func()
}

// New creates a session with nothing selected
func New(store *config.Store, runner *rotation.Runner, con *console.Console) *Session {
	s := &Session{
		store:    store,
		runner:   runner,
		console:  con,
		selected: -1,
	}

	runner.SetOnEmit(func(e rotation.Emission) {
		if e.Err != nil {
			con.Logf("Error executing key: %v", e.Err)
			return
		}
		con.Logf("Executed key: %s", e.Key)
	})

	return s
}

// OnChange registers a callback invoked after the rotation list, the
// selection or the running state changes
func (s *Session) OnChange(callback func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onChange = append(s.onChange, callback)
}

// Console returns the activity console
func (s *Session) Console() *console.Console {
	return s.console
}

// ReportLoad writes the outcome of the startup load to the console
func (s *Session) ReportLoad(err error) {
	switch n := s.store.Len(); {
	case err != nil:
		s.console.Logf("Error loading configs: %v", err)
	case n == 0:
		s.console.Logf("No saved configurations found")
	default:
		s.console.Logf("Loaded %d configuration(s)", n)
	}
}

// Rotations returns the stored rotations in creation order
func (s *Session) Rotations() []config.Rotation {
	return s.store.List()
}

// Create stores a new rotation. Validation errors are returned; a failed
// write is logged and the rotation is kept in memory.
func (s *Session) Create(r config.Rotation) (config.Rotation, error) {
	s.mu.Lock()
	created, err := s.store.Create(r)
	if err != nil && !config.IsPersistence(err) {
		s.mu.Unlock()
		s.console.Logf("Error creating configuration: %v", err)
		return config.Rotation{}, err
	}
	if err != nil {
		s.console.Logf("Error saving configs: %v", err)
	}
	s.console.Logf("Created new configuration: %s", created.Name)
	s.mu.Unlock()

	s.changed()
	return created, nil
}

// Delete removes the rotation at index. A running rotation with the same
// name is stopped first.
func (s *Session) Delete(index int) error {
	s.mu.Lock()
	target, err := s.store.Get(index)
	if err != nil {
		s.mu.Unlock()
		return err
	}

	if st := s.runner.State(); st.Running && st.Rotation.Name == target.Name {
		s.stopLocked()
	}

	removed, err := s.store.Delete(index)
	if err != nil && !config.IsPersistence(err) {
		s.mu.Unlock()
		return err
	}
	if err != nil {
		s.console.Logf("Error saving configs: %v", err)
	}

	switch {
	case s.selected == index:
		s.selected = -1
	case s.selected > index:
		s.selected--
	}
	s.console.Logf("Deleted configuration: %s", removed.Name)
	s.mu.Unlock()

	s.changed()
	return nil
}

// Select makes the rotation at index current. Selecting while a rotation
// runs stops it; the runner is left idle.
func (s *Session) Select(index int) error {
	s.mu.Lock()
	if _, err := s.store.Get(index); err != nil {
		s.mu.Unlock()
		return err
	}

	if s.runner.Active() {
		s.stopLocked()
	}
	s.selected = index
	s.mu.Unlock()

	s.changed()
	return nil
}

// SelectByName selects the rotation with the given name, ignoring case
func (s *Session) SelectByName(name string) error {
	for i, r := range s.store.List() {
		if strings.EqualFold(r.Name, name) {
			return s.Select(i)
		}
	}
	return fmt.Errorf("rotation not found: %s", name)
}

// Start activates the selected rotation
func (s *Session) Start() error {
	s.mu.Lock()
	if s.selected < 0 {
		s.mu.Unlock()
		return ErrNoSelection
	}

	r, err := s.store.Get(s.selected)
	if err != nil {
		s.mu.Unlock()
		return err
	}

	if err := s.runner.Start(r); err != nil {
		s.mu.Unlock()
		s.console.Logf("Error starting rotation: %v", err)
		return err
	}
	s.console.Logf("Started rotation: %s", r.Name)
	s.mu.Unlock()

	s.changed()
	return nil
}

// Stop deactivates the running rotation
func (s *Session) Stop() error {
	s.mu.Lock()
	if !s.runner.Active() {
		s.mu.Unlock()
		return rotation.ErrNotActive
	}
	s.stopLocked()
	s.mu.Unlock()

	s.changed()
	return nil
}

// Toggle starts the selected rotation when idle and stops it when active
func (s *Session) Toggle() error {
	if s.runner.Active() {
		return s.Stop()
	}
	return s.Start()
}

// Status returns the selection and runner state
func (s *Session) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.runner.State()
	status := Status{
		Selected: s.selected,
		Running:  st.Running,
		Cursor:   st.Cursor,
		Emitted:  st.Emitted,
		RunID:    st.RunID,
	}
	if st.Running {
		status.Active = st.Rotation.Name
		status.Trigger = st.Rotation.Trigger
	}
	if r, err := s.store.Get(s.selected); err == nil {
		status.SelectedName = r.Name
	}
	return status
}

// Shutdown stops any running rotation
func (s *Session) Shutdown() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.runner.Active() {
		s.stopLocked()
	}
}

func (s *Session) stopLocked() bool {
	if err := s.runner.Stop(); err != nil {
		return false
	}
	s.console.Logf("Stopped rotation")
	return true
}

func (s *Session) changed() {
	s.mu.Lock()
	callbacks := append([]func(){}, s.onChange...)
	s.mu.Unlock()
	for _, fn := range callbacks {
		fn()
	}
}
