// Package session keeps the in-memory conversation sessions created by display-name login.
package session

import (
	"errors"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/legalaid/internal/models"
)

// ErrSessionNotFound is returned for unknown or deleted session ids
var ErrSessionNotFound = errors.New("session not found")

// Registry maps session ids to sessions. Requests for one session run one at a time.
type Registry struct {
	mu              sync.RWMutex
	sessions        map[string]*models.Session
	defaultLanguage string
	logger          arbor.ILogger
}

// NewRegistry creates an empty registry
func NewRegistry(defaultLanguage string, logger arbor.ILogger) *Registry {
	return &Registry{
		sessions:        make(map[string]*models.Session),
		defaultLanguage: defaultLanguage,
		logger:          logger,
	}
}

// Create starts a session for displayName. An empty language uses the default.
func (r *Registry) Create(displayName, language string) *models.Session {
	if language == "" {
		language = r.defaultLanguage
	}
	s := models.NewSession(uuid.New().String(), strings.TrimSpace(displayName), language)

	r.mu.Lock()
	r.sessions[s.ID] = s
	r.mu.Unlock()

	r.logger.Info().
		Str("session", s.ID).
		Str("language", language).
		Msg("Session created")
	return s
}

// Get returns the session with id
func (r *Registry) Get(id string) (*models.Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return s, nil
}

// Delete removes a session; unknown ids are ignored
func (r *Registry) Delete(id string) {
	r.mu.Lock()
	delete(r.sessions, id)
	r.mu.Unlock()
}

// Len returns the number of live sessions
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// Do runs fn with exclusive access to the session, so at most one request
// per session is in flight
func (r *Registry) Do(id string, fn func(*models.Session) error) error {
	s, err := r.Get(id)
	if err != nil {
		return err
	}

	s.Lock()
	defer s.Unlock()
	return fn(s)
}
