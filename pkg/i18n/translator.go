// Package i18n loads the console's translation catalogs and resolves keys per language.
package i18n

import (
	"embed"
	"fmt"
	"path"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed locales/*.yaml
var localeFS embed.FS

// Func resolves a translation key into a localized string.
type Func func(key string) string

// Catalog holds flattened translation tables keyed by language code.
type Catalog struct {
	mu       sync.RWMutex
	fallback string
	tables   map[string]map[string]string
}

// NewCatalog builds an empty catalog that falls back to the provided language.
func NewCatalog(fallback string) *Catalog {
	return &Catalog{fallback: normalize(fallback), tables: make(map[string]map[string]string)}
}

// Default returns a catalog preloaded with the embedded locales.
func Default(fallback string) (*Catalog, error) {
	c := NewCatalog(fallback)
	entries, err := localeFS.ReadDir("locales")
	if err != nil {
		return nil, fmt.Errorf("read embedded locales: %w", err)
	}
	for _, entry := range entries {
		name := entry.Name()
		raw, err := localeFS.ReadFile(path.Join("locales", name))
		if err != nil {
			return nil, fmt.Errorf("read locale %s: %w", name, err)
		}
		lang := strings.TrimSuffix(name, path.Ext(name))
		if err := c.Load(lang, raw); err != nil {
			return nil, err
		}
	}
	if _, ok := c.tables[c.fallback]; !ok {
		return nil, fmt.Errorf("fallback language %q has no catalog", c.fallback)
	}
	return c, nil
}

// Load parses a nested YAML document and registers it under lang.
// Nested maps are flattened into dotted keys ("status.pending").
func (c *Catalog) Load(lang string, raw []byte) error {
	var doc map[string]interface{}
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return fmt.Errorf("parse locale %s: %w", lang, err)
	}
	table := make(map[string]string)
	flatten("", doc, table)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.tables[normalize(lang)] = table
	return nil
}

// Languages lists the registered language codes in sorted order.
func (c *Catalog) Languages() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	langs := make([]string, 0, len(c.tables))
	for lang := range c.tables {
		langs = append(langs, lang)
	}
	sort.Strings(langs)
	return langs
}

// Supports reports whether lang has a catalog.
func (c *Catalog) Supports(lang string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.tables[normalize(lang)]
	return ok
}

// Resolve returns the language that will actually serve lang.
func (c *Catalog) Resolve(lang string) string {
	if c.Supports(lang) {
		return normalize(lang)
	}
	return c.fallback
}

// T returns a translation function bound to lang. Missing keys fall back to
// the fallback language and finally to the key itself.
func (c *Catalog) T(lang string) Func {
	lang = normalize(lang)
	return func(key string) string {
		c.mu.RLock()
		defer c.mu.RUnlock()
		if value, ok := c.tables[lang][key]; ok {
			return value
		}
		if value, ok := c.tables[c.fallback][key]; ok {
			return value
		}
		return key
	}
}

func flatten(prefix string, node map[string]interface{}, out map[string]string) {
	for key, value := range node {
		full := key
		if prefix != "" {
			full = prefix + "." + key
		}
		switch typed := value.(type) {
		case map[string]interface{}:
			flatten(full, typed, out)
		case nil:
			out[full] = ""
		default:
			out[full] = fmt.Sprint(typed)
		}
	}
}

func normalize(lang string) string {
	lang = strings.ToLower(strings.TrimSpace(lang))
	if idx := strings.IndexAny(lang, "-_"); idx > 0 {
		lang = lang[:idx]
	}
	return lang
}
