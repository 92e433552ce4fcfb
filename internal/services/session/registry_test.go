package session

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/legalaid/internal/models"
)

func TestRegistry_Lifecycle(t *testing.T) {
	registry := NewRegistry("English", arbor.NewLogger())

	s := registry.Create("  Asha ", "")
	assert.Equal(t, "Asha", s.DisplayName)
	assert.Equal(t, "English", s.Language)
	assert.NotEmpty(t, s.ID)

	got, err := registry.Get(s.ID)
	require.NoError(t, err)
	assert.Same(t, s, got)

	other := registry.Create("Ravi", "Tamil - தமிழ்")
	assert.NotEqual(t, s.ID, other.ID)
	assert.Equal(t, 2, registry.Len())

	registry.Delete(s.ID)
	_, err = registry.Get(s.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)
	assert.ErrorIs(t, registry.Do(s.ID, func(*models.Session) error { return nil }), ErrSessionNotFound)
}

func TestRegistry_DoSerialises(t *testing.T) {
	registry := NewRegistry("English", arbor.NewLogger())
	s := registry.Create("Asha", "")

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = registry.Do(s.ID, func(s *models.Session) error {
				s.AppendTurn(models.RoleUser, "q")
				return nil
			})
		}()
	}
	wg.Wait()

	assert.Len(t, s.Transcript, 50)
}
