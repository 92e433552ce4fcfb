// Package credentials resolves API keys through an ordered list of sources.
// The first source returning a non-empty value wins; absence is not fatal.
package credentials

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ternarybob/arbor"
)

// ErrNotFound is returned when no source holds the requested credential
var ErrNotFound = errors.New("credential not found")

// Source is one tier of the lookup chain
type Source interface {
	Name() string
	Lookup(ctx context.Context, name string) (string, bool)
}

// SourceFunc adapts a plain function into a Source
type SourceFunc struct {
	Label string
	Fn    func(ctx context.Context, name string) (string, bool)
}

func (f SourceFunc) Name() string { return f.Label }

func (f SourceFunc) Lookup(ctx context.Context, name string) (string, bool) {
	return f.Fn(ctx, name)
}

// Chain tries its sources in order
type Chain struct {
	sources []Source
	logger  arbor.ILogger
}

// NewChain creates a chain over the given sources; nil sources are dropped
func NewChain(logger arbor.ILogger, sources ...Source) *Chain {
	chain := &Chain{logger: logger}
	for _, source := range sources {
		if source != nil {
			chain.sources = append(chain.sources, source)
		}
	}
	return chain
}

// Resolve returns the first non-empty value for name and the source that produced it
func (c *Chain) Resolve(ctx context.Context, name string) (string, string, error) {
	for _, source := range c.sources {
		value, ok := source.Lookup(ctx, name)
		value = strings.TrimSpace(value)
		if !ok || value == "" {
			continue
		}

		c.logger.Debug().
			Str("credential", name).
			Str("source", source.Name()).
			Msg("Credential resolved")
		return value, source.Name(), nil
	}

	return "", "", fmt.Errorf("%w: %s (checked %s)", ErrNotFound, name, strings.Join(c.SourceNames(), ", "))
}

// SourceNames lists the tiers in lookup order
func (c *Chain) SourceNames() []string {
	names := make([]string, 0, len(c.sources))
	for _, source := range c.sources {
		names = append(names, source.Name())
	}
	return names
}
