// Package patterns holds the curated pattern→response rules used when the
// hosted model is unavailable.
package patterns

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
	"github.com/pelletier/go-toml/v2"
	"github.com/samber/lo"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/legalaid/internal/models"
	"gopkg.in/yaml.v3"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("notblank", validators.NotBlank)
	return v
}

// tomlFile is the TOML layout: one [[patterns]] table per rule
type tomlFile struct {
	Patterns []map[string]interface{} `toml:"patterns"`
}

// Load reads the rule file at path. A missing or malformed file yields an
// empty list and a logged warning; it never fails the caller.
func Load(path string, logger arbor.ILogger) []models.PatternRule {
	rules, err := Parse(path)
	if err != nil {
		logger.Warn().Str("path", path).Err(err).Msg("Pattern file unavailable, continuing without patterns")
		return []models.PatternRule{}
	}

	logger.Debug().Str("path", path).Int("rules", len(rules)).Msg("Patterns loaded")
	return rules
}

// Parse reads and validates the rule file at path, choosing the decoder by extension.
// Entries that are not objects or lack a pattern or response are dropped.
func Parse(path string) ([]models.PatternRule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var entries []map[string]interface{}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		entries, err = decodeYAML(data)
	case ".toml":
		var file tomlFile
		err = toml.Unmarshal(data, &file)
		entries = file.Patterns
	default:
		entries, err = decodeJSON(data)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse pattern file %s: %w", path, err)
	}

	rules := lo.FilterMap(entries, func(entry map[string]interface{}, _ int) (models.PatternRule, bool) {
		return toRule(entry)
	})
	return rules, nil
}

func decodeJSON(data []byte) ([]map[string]interface{}, error) {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	entries := make([]map[string]interface{}, 0, len(raw))
	for _, item := range raw {
		var entry map[string]interface{}
		if err := json.Unmarshal(item, &entry); err != nil {
			continue
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func decodeYAML(data []byte) ([]map[string]interface{}, error) {
	var raw []yaml.Node
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	entries := make([]map[string]interface{}, 0, len(raw))
	for i := range raw {
		var entry map[string]interface{}
		if err := raw[i].Decode(&entry); err != nil {
			continue
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// toRule keeps an entry only when both fields are non-blank strings
func toRule(entry map[string]interface{}) (models.PatternRule, bool) {
	if entry == nil {
		return models.PatternRule{}, false
	}
	pattern, _ := entry["pattern"].(string)
	response, _ := entry["response"].(string)

	rule := models.PatternRule{Pattern: pattern, Response: response}
	if err := validate.Struct(rule); err != nil {
		return models.PatternRule{}, false
	}
	return rule, true
}

// isMissing reports whether err means the rule file is absent
func isMissing(err error) bool {
	return errors.Is(err, os.ErrNotExist)
}
