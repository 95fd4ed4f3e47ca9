package session

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

const (
	ThemeLight = "light"
	ThemeDark  = "dark"
)

// Session is the state owned by one chat widget: the dataset queries run
// against and the display theme. Nothing is persisted.
type Session struct {
	id        uuid.UUID
	createdAt time.Time

	mu            sync.RWMutex
	activeDataset string
	darkMode      bool
}

func New() *Session {
	return &Session{id: uuid.New(), createdAt: time.Now()}
}

func (s *Session) ID() uuid.UUID { return s.id }

func (s *Session) CreatedAt() time.Time { return s.createdAt }

// ActiveDataset returns the identifier of the last successful upload. An empty
// identifier counts as no dataset.
func (s *Session) ActiveDataset() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.activeDataset, s.activeDataset != ""
}

// SetActiveDataset records a successful upload. Last write wins.
func (s *Session) SetActiveDataset(name string) {
	s.mu.Lock()
	s.activeDataset = name
	s.mu.Unlock()
}

func (s *Session) DarkMode() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.darkMode
}

// ToggleDarkMode flips the theme and returns the new theme name.
func (s *Session) ToggleDarkMode() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.darkMode = !s.darkMode
	return themeName(s.darkMode)
}

// Theme returns "dark" or "light".
func (s *Session) Theme() string {
	return themeName(s.DarkMode())
}

func themeName(dark bool) string {
	if dark {
		return ThemeDark
	}
	return ThemeLight
}
