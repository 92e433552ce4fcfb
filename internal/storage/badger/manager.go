package badger

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/legalaid/internal/common"
	"github.com/ternarybob/legalaid/internal/interfaces"
)

// SecretFile is one entry of a keys/*.toml file:
//
//	[GEMINI_API_KEY]
//	value = "..."
//	description = "optional description"
type SecretFile struct {
	Value       string `toml:"value"`
	Description string `toml:"description"`
}

// Manager owns the secret store database and its seeding
type Manager struct {
	db     *BadgerDB
	kv     *KVStorage
	logger arbor.ILogger
}

// NewManager opens the secret store described by config
func NewManager(logger arbor.ILogger, config *common.BadgerConfig) (*Manager, error) {
	db, err := NewBadgerDB(logger, config)
	if err != nil {
		return nil, err
	}
	return newManager(db, logger), nil
}

// NewInMemoryManager opens a non-persistent secret store
func NewInMemoryManager(logger arbor.ILogger) (*Manager, error) {
	db, err := NewInMemoryBadgerDB(logger)
	if err != nil {
		return nil, err
	}
	return newManager(db, logger), nil
}

func newManager(db *BadgerDB, logger arbor.ILogger) *Manager {
	return &Manager{
		db:     db,
		kv:     NewKVStorage(db, logger),
		logger: logger,
	}
}

// KeyValueStorage returns the secret store
func (m *Manager) KeyValueStorage() interfaces.KeyValueStorage {
	return m.kv
}

// LoadSecretsFromDir upserts every [name] value from *.toml files in dirPath.
// A missing directory is not an error.
func (m *Manager) LoadSecretsFromDir(ctx context.Context, dirPath string) error {
	entries, err := os.ReadDir(dirPath)
	if err != nil {
		if os.IsNotExist(err) {
			m.logger.Debug().Str("dir", dirPath).Msg("Keys directory not found, skipping")
			return nil
		}
		m.logger.Warn().Err(err).Str("dir", dirPath).Msg("Failed to read keys directory")
		return nil
	}

	loadedCount, skippedCount, errorCount := 0, 0, 0
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".toml") {
			continue
		}
		l, s, e := m.loadSecretsFromFile(ctx, filepath.Join(dirPath, entry.Name()))
		loadedCount += l
		skippedCount += s
		errorCount += e
	}

	m.logger.Debug().
		Str("dir", dirPath).
		Int("loaded", loadedCount).
		Int("skipped", skippedCount).
		Int("errors", errorCount).
		Msg("Finished loading secrets from files")

	return nil
}

func (m *Manager) loadSecretsFromFile(ctx context.Context, filePath string) (loaded, skipped, errors int) {
	content, err := os.ReadFile(filePath)
	if err != nil {
		m.logger.Warn().Err(err).Str("file", filePath).Msg("Failed to read secrets file")
		return 0, 0, 1
	}

	var secrets map[string]SecretFile
	if err := toml.Unmarshal(content, &secrets); err != nil {
		m.logger.Warn().Err(err).Str("file", filePath).Msg("Failed to parse secrets file")
		return 0, 0, 1
	}

	fileName := filepath.Base(filePath)
	for key, secret := range secrets {
		if strings.TrimSpace(secret.Value) == "" {
			m.logger.Warn().Str("file", fileName).Str("key", key).Msg("Skipping secret with empty value")
			skipped++
			continue
		}

		description := secret.Description
		if description == "" {
			description = "Loaded from " + fileName
		}

		if _, err := m.kv.Upsert(ctx, key, secret.Value, description); err != nil {
			m.logger.Error().Err(err).Str("key", key).Msg("Failed to store secret")
			errors++
			continue
		}
		loaded++
	}

	return loaded, skipped, errors
}

// Close closes the underlying database
func (m *Manager) Close() error {
	return m.db.Close()
}
