package common

import (
	"errors"
	"io/fs"

	"github.com/joho/godotenv"
	"github.com/ternarybob/arbor"
)

// LoadEnvFile loads KEY=value pairs from path into the process environment.
// Variables already set in the environment win. A missing file is not an error.
func LoadEnvFile(path string, logger arbor.ILogger) error {
	if path == "" {
		return nil
	}

	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			logger.Debug().Str("file", path).Msg(".env file does not exist, skipping")
			return nil
		}
		return err
	}

	logger.Debug().Str("file", path).Msg("Loaded environment from .env file")
	return nil
}
