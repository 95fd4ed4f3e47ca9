package session

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewSessionHasNoDataset(t *testing.T) {
	s := New()

	name, ok := s.ActiveDataset()
	assert.False(t, ok)
	assert.Empty(t, name)
	assert.Equal(t, ThemeLight, s.Theme())
	assert.NotEqual(t, New().ID(), s.ID())
}

func TestSetActiveDataset(t *testing.T) {
	s := New()

	s.SetActiveDataset("sales")
	name, ok := s.ActiveDataset()
	assert.True(t, ok)
	assert.Equal(t, "sales", name)

	s.SetActiveDataset("")
	_, ok = s.ActiveDataset()
	assert.False(t, ok)
}

func TestToggleDarkMode(t *testing.T) {
	s := New()

	assert.Equal(t, ThemeDark, s.ToggleDarkMode())
	assert.True(t, s.DarkMode())
	assert.Equal(t, ThemeLight, s.ToggleDarkMode())
	assert.False(t, s.DarkMode())
}

func TestConcurrentWritesLastOneWins(t *testing.T) {
	s := New()

	var wg sync.WaitGroup
	for _, name := range []string{"a", "b", "c", "d"} {
		wg.Add(1)
		go func(n string) {
			defer wg.Done()
			s.SetActiveDataset(n)
		}(name)
	}
	wg.Wait()

	name, ok := s.ActiveDataset()
	assert.True(t, ok)
	assert.Contains(t, []string{"a", "b", "c", "d"}, name)
}
