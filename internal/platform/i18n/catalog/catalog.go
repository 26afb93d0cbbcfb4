// Package catalog loads the command message catalog and exposes it
// through x/text printers that format numbers for the caller's locale.
package catalog

import (
	"bytes"
	"embed"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	xcatalog "golang.org/x/text/message/catalog"
	"gopkg.in/yaml.v3"
)

// BaseLocale is the canonical source locale for catalogs. Lookups that match
// no other locale fall back to it.
const BaseLocale = "en-US"

type catalogFile struct {
	Locale    string            `yaml:"locale"`
	Namespace string            `yaml:"namespace"`
	Messages  map[string]string `yaml:"messages"`
}

// LocaleCatalog stores all messages for one locale, grouped by namespace.
type LocaleCatalog struct {
	Locale     string
	Namespaces map[string]map[string]string
	Messages   map[string]string
}

// Bundle contains all locale catalogs.
type Bundle struct {
	locales map[string]*LocaleCatalog
	builder *xcatalog.Builder
}

//go:embed locales/*/*.yaml
var embeddedCatalogFS embed.FS

var defaultBundle = mustLoadEmbedded()

// Default returns the process-wide embedded catalog bundle.
func Default() *Bundle {
	return defaultBundle
}

// LoadEmbedded loads catalog files embedded in this package.
func LoadEmbedded() (*Bundle, error) {
	return LoadFromFS(embeddedCatalogFS)
}

// LoadFromFS loads locales/<locale>/<namespace>.yaml files from catalogFS.
func LoadFromFS(catalogFS fs.FS) (*Bundle, error) {
	paths, err := fs.Glob(catalogFS, "locales/*/*.yaml")
	if err != nil {
		return nil, fmt.Errorf("glob locale catalogs: %w", err)
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no catalog files found")
	}
	sort.Strings(paths)

	bundle := &Bundle{locales: map[string]*LocaleCatalog{}}
	for _, path := range paths {
		data, err := fs.ReadFile(catalogFS, path)
		if err != nil {
			return nil, fmt.Errorf("read catalog %s: %w", path, err)
		}
		parsed, err := parseCatalogFile(data)
		if err != nil {
			return nil, fmt.Errorf("parse catalog %s: %w", path, err)
		}
		if err := bundle.addFile(path, parsed); err != nil {
			return nil, err
		}
	}
	if !bundle.HasLocale(BaseLocale) {
		return nil, fmt.Errorf("base locale %s is not defined in catalogs", BaseLocale)
	}
	if err := bundle.build(); err != nil {
		return nil, err
	}
	return bundle, nil
}

func parseCatalogFile(data []byte) (catalogFile, error) {
	var out catalogFile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&out); err != nil {
		return catalogFile{}, err
	}
	if strings.TrimSpace(out.Locale) == "" {
		return catalogFile{}, fmt.Errorf("missing locale")
	}
	if strings.TrimSpace(out.Namespace) == "" {
		return catalogFile{}, fmt.Errorf("missing namespace")
	}
	if len(out.Messages) == 0 {
		return catalogFile{}, fmt.Errorf("missing messages")
	}
	return out, nil
}

func (b *Bundle) addFile(path string, file catalogFile) error {
	localeFromPath := filepath.Base(filepath.Dir(path))
	namespaceFromPath := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))

	locale := strings.TrimSpace(file.Locale)
	if locale != localeFromPath {
		return fmt.Errorf("catalog %s: locale %q must match path locale %q", path, locale, localeFromPath)
	}
	if _, err := language.Parse(locale); err != nil {
		return fmt.Errorf("catalog %s: parse locale %q: %w", path, locale, err)
	}
	namespace := strings.TrimSpace(file.Namespace)
	if namespace != namespaceFromPath {
		return fmt.Errorf("catalog %s: namespace %q must match filename namespace %q", path, namespace, namespaceFromPath)
	}

	localeCatalog, ok := b.locales[locale]
	if !ok {
		localeCatalog = &LocaleCatalog{
			Locale:     locale,
			Namespaces: map[string]map[string]string{},
			Messages:   map[string]string{},
		}
		b.locales[locale] = localeCatalog
	}
	if _, exists := localeCatalog.Namespaces[namespace]; exists {
		return fmt.Errorf("catalog %s: namespace %q already defined for locale %q", path, namespace, locale)
	}

	namespaceMessages := make(map[string]string, len(file.Messages))
	for key, value := range file.Messages {
		trimmedKey := strings.TrimSpace(key)
		if trimmedKey == "" {
			return fmt.Errorf("catalog %s: message key cannot be blank", path)
		}
		if _, exists := localeCatalog.Messages[trimmedKey]; exists {
			return fmt.Errorf("catalog %s: duplicate key %q in locale %q", path, trimmedKey, locale)
		}
		localeCatalog.Messages[trimmedKey] = value
		namespaceMessages[trimmedKey] = value
	}
	localeCatalog.Namespaces[namespace] = namespaceMessages
	return nil
}

// build registers every message under its locale and the locale's base
// language. Base locale messages also go under the root tag, which every
// lookup reaches last.
func (b *Bundle) build() error {
	builder := xcatalog.NewBuilder(xcatalog.Fallback(language.MustParse(BaseLocale)))
	for _, locale := range b.Locales() {
		tag := language.MustParse(locale)
		tags := []language.Tag{tag}
		if base, confidence := tag.Base(); confidence != language.No {
			if baseTag, err := language.Compose(base); err == nil && baseTag.String() != tag.String() {
				tags = append(tags, baseTag)
			}
		}
		if locale == BaseLocale {
			tags = append(tags, language.Und)
		}
		messages := b.locales[locale].Messages
		keys := make([]string, 0, len(messages))
		for key := range messages {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		for _, key := range keys {
			for _, registerTag := range tags {
				if err := builder.SetString(registerTag, key, messages[key]); err != nil {
					return fmt.Errorf("register %s %q: %w", locale, key, err)
				}
			}
		}
	}
	b.builder = builder
	return nil
}

// Printer returns a printer that formats numbers for locale and resolves
// message keys against the bundle.
func (b *Bundle) Printer(locale string) (*message.Printer, error) {
	tag, err := language.Parse(strings.TrimSpace(locale))
	if err != nil {
		return nil, fmt.Errorf("parse locale %q: %w", locale, err)
	}
	return message.NewPrinter(tag, message.Catalog(b.builder)), nil
}

// HasLocale reports whether the locale exists in this bundle.
func (b *Bundle) HasLocale(locale string) bool {
	if b == nil {
		return false
	}
	_, ok := b.locales[strings.TrimSpace(locale)]
	return ok
}

// Locales returns all available locale identifiers.
func (b *Bundle) Locales() []string {
	if b == nil {
		return nil
	}
	out := make([]string, 0, len(b.locales))
	for locale := range b.locales {
		out = append(out, locale)
	}
	sort.Strings(out)
	return out
}

// Message returns one message value with base-locale fallback.
func (b *Bundle) Message(locale, key string) (string, bool) {
	if b == nil {
		return "", false
	}
	trimmedKey := strings.TrimSpace(key)
	if catalog, ok := b.locales[strings.TrimSpace(locale)]; ok {
		if value, exists := catalog.Messages[trimmedKey]; exists {
			return value, true
		}
	}
	value, exists := b.locales[BaseLocale].Messages[trimmedKey]
	return value, exists
}

func mustLoadEmbedded() *Bundle {
	bundle, err := LoadEmbedded()
	if err != nil {
		panic(err)
	}
	return bundle
}
