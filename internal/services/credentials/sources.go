package credentials

import (
	"context"
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
	"github.com/ternarybob/legalaid/internal/interfaces"
)

// SecretStoreSource reads credentials from the persisted secret store
type SecretStoreSource struct {
	Store interfaces.KeyValueStorage
}

func (s SecretStoreSource) Name() string { return "secret_store" }

func (s SecretStoreSource) Lookup(ctx context.Context, name string) (string, bool) {
	if s.Store == nil {
		return "", false
	}
	value, err := s.Store.Get(ctx, name)
	if err != nil {
		return "", false
	}
	return value, true
}

// EnvSource reads credentials from the process environment
type EnvSource struct{}

func (EnvSource) Name() string { return "environment" }

func (EnvSource) Lookup(_ context.Context, name string) (string, bool) {
	return os.LookupEnv(name)
}

// FileSource reads top-level string keys from a TOML file such as .streamlit/secrets.toml.
// The file is read on every lookup so edits apply without a restart.
type FileSource struct {
	Path string
}

func (f FileSource) Name() string { return "secrets_file" }

func (f FileSource) Lookup(_ context.Context, name string) (string, bool) {
	values, err := ReadSecretsFile(f.Path)
	if err != nil {
		return "", false
	}
	value, ok := values[name].(string)
	return value, ok
}

// ReadSecretsFile parses a TOML key/value file
func ReadSecretsFile(path string) (map[string]interface{}, error) {
	if path == "" {
		return nil, fmt.Errorf("secrets file path is empty")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var values map[string]interface{}
	if err := toml.Unmarshal(data, &values); err != nil {
		return nil, fmt.Errorf("failed to parse secrets file %s: %w", path, err)
	}
	return values, nil
}
