// Package i18n loads the embedded message catalogs and hands out printers for
// a requested locale.
package i18n

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
	"gopkg.in/yaml.v3"
)

// BaseLocale supplies any key a translation leaves out.
const BaseLocale = "en-US"

type catalogFile struct {
	Locale   string            `yaml:"locale"`
	Messages map[string]string `yaml:"messages"`
}

//go:embed locales/*/*.yaml
var embeddedFS embed.FS

// Bundle holds every loaded locale.
type Bundle struct {
	messages map[string]map[string]string
	tags     []language.Tag
	builder  *catalog.Builder
	matcher  language.Matcher
}

func LoadEmbedded() (*Bundle, error) {
	return LoadFromFS(embeddedFS)
}

func LoadFromFS(fsys fs.FS) (*Bundle, error) {
	paths, err := fs.Glob(fsys, "locales/*/*.yaml")
	if err != nil {
		return nil, fmt.Errorf("glob locale catalogs: %w", err)
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no catalog files found")
	}
	sort.Strings(paths)

	b := &Bundle{messages: map[string]map[string]string{}}
	for _, p := range paths {
		raw, err := fs.ReadFile(fsys, p)
		if err != nil {
			return nil, fmt.Errorf("read catalog %s: %w", p, err)
		}
		file := catalogFile{}
		if err := yaml.Unmarshal(raw, &file); err != nil {
			return nil, fmt.Errorf("parse catalog %s: %w", p, err)
		}
		if err := b.add(p, file); err != nil {
			return nil, err
		}
	}
	base, ok := b.messages[BaseLocale]
	if !ok {
		return nil, fmt.Errorf("base locale %s is not defined in catalogs", BaseLocale)
	}

	b.builder = catalog.NewBuilder(catalog.Fallback(language.MustParse(BaseLocale)))
	for _, locale := range b.Locales() {
		tag, err := language.Parse(locale)
		if err != nil {
			return nil, fmt.Errorf("parse locale tag %q: %w", locale, err)
		}
		for key, fallback := range base {
			msg, ok := b.messages[locale][key]
			if !ok {
				msg = fallback
			}
			if err := b.builder.SetString(tag, key, msg); err != nil {
				return nil, fmt.Errorf("register %s/%s: %w", locale, key, err)
			}
		}
		b.tags = append(b.tags, tag)
	}
	b.matcher = language.NewMatcher(b.tags)
	return b, nil
}

func (b *Bundle) add(p string, file catalogFile) error {
	fromPath := path.Base(path.Dir(p))
	locale := strings.TrimSpace(file.Locale)
	if locale != fromPath {
		return fmt.Errorf("catalog %s: locale %q must match path locale %q", p, locale, fromPath)
	}
	if file.Messages == nil {
		return fmt.Errorf("catalog %s: messages map is required", p)
	}
	msgs, ok := b.messages[locale]
	if !ok {
		msgs = map[string]string{}
		b.messages[locale] = msgs
	}
	for key, value := range file.Messages {
		key = strings.TrimSpace(key)
		if key == "" {
			return fmt.Errorf("catalog %s: message key cannot be blank", p)
		}
		if _, dup := msgs[key]; dup {
			return fmt.Errorf("catalog %s: duplicate key %q in locale %q", p, key, locale)
		}
		msgs[key] = value
	}
	return nil
}

// Locales returns the loaded locale identifiers, base locale first.
func (b *Bundle) Locales() []string {
	out := make([]string, 0, len(b.messages))
	for locale := range b.messages {
		if locale != BaseLocale {
			out = append(out, locale)
		}
	}
	sort.Strings(out)
	return append([]string{BaseLocale}, out...)
}

// Printer returns a printer for the closest supported match of locale.
func (b *Bundle) Printer(locale string) *message.Printer {
	return message.NewPrinter(b.Match(locale), message.Catalog(b.builder))
}

// Match resolves locale to the closest loaded tag, falling back to the base.
func (b *Bundle) Match(locale string) language.Tag {
	requested, err := language.Parse(strings.TrimSpace(locale))
	if err != nil {
		return b.tags[0]
	}
	_, idx, conf := b.matcher.Match(requested)
	if conf == language.No {
		return b.tags[0]
	}
	return b.tags[idx]
}
