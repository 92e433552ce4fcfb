// Package i18n provides the localized user-facing strings for the supported languages.
package i18n

import (
	_ "embed"
	"fmt"
	"strings"

	"github.com/abadojack/whatlanggo"
	"github.com/pelletier/go-toml/v2"
	"github.com/ternarybob/legalaid/internal/interfaces"
)

// DefaultLanguage is always present in the catalog
const DefaultLanguage = "English"

// Catalog keys used outside the presentation layer
const (
	KeyNoResponse  = "no_response"
	KeyWelcome     = "welcome"
	KeyAskQuery    = "ask_query"
	KeyInfoSection = "info_section"
)

const fallbackNoResponse = "Sorry, I couldn't find a matching response for your query."

//go:embed translations.toml
var embeddedTranslations []byte

// Language describes one selectable language
type Language struct {
	Name    string            `toml:"name" json:"name"`
	Code    string            `toml:"code" json:"code"`
	Strings map[string]string `toml:"strings" json:"-"`
}

type catalogFile struct {
	Languages []Language `toml:"languages"`
}

// Catalog is an immutable lookup of localized strings
type Catalog struct {
	languages []Language
	byName    map[string]*Language
	byCode    map[string]*Language
}

var _ interfaces.Translator = (*Catalog)(nil)

// NewCatalog loads the embedded catalog
func NewCatalog() (*Catalog, error) {
	return Parse(embeddedTranslations)
}

// MustCatalog loads the embedded catalog and panics if it is broken
func MustCatalog() *Catalog {
	catalog, err := NewCatalog()
	if err != nil {
		panic(err)
	}
	return catalog
}

// Parse builds a catalog from TOML data
func Parse(data []byte) (*Catalog, error) {
	var file catalogFile
	if err := toml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse translations: %w", err)
	}

	c := &Catalog{
		languages: file.Languages,
		byName:    make(map[string]*Language, len(file.Languages)),
		byCode:    make(map[string]*Language, len(file.Languages)),
	}
	for i := range c.languages {
		lang := &c.languages[i]
		c.byName[lang.Name] = lang
		c.byCode[strings.ToLower(lang.Code)] = lang
	}
	return c, nil
}

// Languages returns the supported languages in display order
func (c *Catalog) Languages() []Language {
	return c.languages
}

// Has reports whether language is a known language name
func (c *Catalog) Has(language string) bool {
	_, ok := c.byName[language]
	return ok
}

// Text returns the string for key in language, falling back to English and then to the key itself
func (c *Catalog) Text(language, key string) string {
	if lang, ok := c.byName[language]; ok {
		if s := lang.Strings[key]; s != "" {
			return s
		}
	}
	if lang, ok := c.byName[DefaultLanguage]; ok {
		if s := lang.Strings[key]; s != "" {
			return s
		}
	}
	return key
}

// NoResponse returns the localized "no match" default. It is never empty.
func (c *Catalog) NoResponse(language string) string {
	if s := c.Text(language, KeyNoResponse); s != KeyNoResponse {
		return s
	}
	return fallbackNoResponse
}

// Detect guesses the catalog language of text. Only reliable guesses for
// supported languages are reported.
func (c *Catalog) Detect(text string) (string, bool) {
	info := whatlanggo.Detect(text)
	if !info.IsReliable() {
		return "", false
	}
	lang, ok := c.byCode[info.Lang.Iso6391()]
	if !ok {
		return "", false
	}
	return lang.Name, true
}
