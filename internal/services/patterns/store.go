package patterns

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/legalaid/internal/common"
	"github.com/ternarybob/legalaid/internal/interfaces"
	"github.com/ternarybob/legalaid/internal/models"
)

// Store holds the active rule set. Readers never block; Reload swaps the whole set.
type Store struct {
	path   string
	rules  atomic.Pointer[[]models.PatternRule]
	logger arbor.ILogger
}

var _ interfaces.PatternMatcher = (*Store)(nil)

// NewStore loads the rule file once and returns the store
func NewStore(path string, logger arbor.ILogger) *Store {
	s := &Store{path: path, logger: logger}
	rules := Load(path, logger)
	s.rules.Store(&rules)
	return s
}

// NewStoreFromRules builds a store over a fixed rule set
func NewStoreFromRules(rules []models.PatternRule, logger arbor.ILogger) *Store {
	s := &Store{logger: logger}
	s.rules.Store(&rules)
	return s
}

// Rules returns the active rules in load order
func (s *Store) Rules() []models.PatternRule {
	return *s.rules.Load()
}

// Len returns the number of active rules
func (s *Store) Len() int {
	return len(s.Rules())
}

// Match returns the first rule whose pattern occurs in the normalized query.
// Patterns are lower-cased and trimmed at match time; blank patterns never match.
func (s *Store) Match(normalizedQuery string) (models.PatternRule, bool) {
	for _, rule := range s.Rules() {
		pattern := strings.ToLower(strings.TrimSpace(rule.Pattern))
		if pattern == "" {
			continue
		}
		if strings.Contains(normalizedQuery, pattern) {
			return rule, true
		}
	}
	return models.PatternRule{}, false
}

// Reload re-reads the rule file. A removed file empties the set; a file that
// exists but cannot be parsed leaves the previous set in place.
func (s *Store) Reload() error {
	if s.path == "" {
		return nil
	}

	rules, err := Parse(s.path)
	switch {
	case err == nil:
	case isMissing(err):
		rules = []models.PatternRule{}
	default:
		s.logger.Warn().Str("path", s.path).Err(err).Msg("Pattern reload failed, keeping previous rules")
		return err
	}

	s.rules.Store(&rules)
	s.logger.Info().Str("path", s.path).Int("rules", len(rules)).Msg("Patterns reloaded")
	return nil
}

// Watch reloads the store whenever the rule file changes, until ctx is done.
// The parent directory is watched so editors that replace the file are seen.
func (s *Store) Watch(ctx context.Context) error {
	if s.path == "" {
		return fmt.Errorf("pattern store has no file to watch")
	}

	target, err := filepath.Abs(s.path)
	if err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create pattern watcher: %w", err)
	}
	if err := watcher.Add(filepath.Dir(target)); err != nil {
		watcher.Close()
		return fmt.Errorf("failed to watch %s: %w", filepath.Dir(target), err)
	}

	common.SafeGo(s.logger, "pattern-watcher", func() {
		defer watcher.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != target {
					continue
				}
				if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
					continue
				}
				_ = s.Reload()
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				s.logger.Warn().Err(err).Msg("Pattern watcher error")
			}
		}
	})

	s.logger.Info().Str("path", target).Msg("Watching pattern file for changes")
	return nil
}
