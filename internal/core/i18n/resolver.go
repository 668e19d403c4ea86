// Package i18n resolves message keys against embedded locale catalogs.
package i18n

import (
	"embed"
	"fmt"
	"io/fs"
	"sort"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
	"gopkg.in/yaml.v3"
)

// DefaultLocale is the fallback catalog.
const DefaultLocale = "en"

//go:embed locales/*.yaml
var embeddedFS embed.FS

type catalogFile struct {
	Locale   string            `yaml:"locale"`
	Messages map[string]string `yaml:"messages"`
}

// Resolver looks up localized messages by key.
type Resolver struct {
	builder  *catalog.Builder
	matcher  language.Matcher
	tags     []language.Tag
	messages map[string]map[string]string
	fallback language.Tag
}

// LoadEmbedded loads the catalogs shipped with the binary.
func LoadEmbedded() (*Resolver, error) {
	return LoadFromFS(embeddedFS)
}

// LoadFromFS loads locales/*.yaml from fsys. The default locale must be present.
func LoadFromFS(fsys fs.FS) (*Resolver, error) {
	paths, err := fs.Glob(fsys, "locales/*.yaml")
	if err != nil {
		return nil, fmt.Errorf("glob locale catalogs: %w", err)
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no catalog files found")
	}
	sort.Strings(paths)

	r := &Resolver{
		builder:  catalog.NewBuilder(catalog.Fallback(language.Make(DefaultLocale))),
		messages: map[string]map[string]string{},
		fallback: language.Make(DefaultLocale),
	}

	for _, path := range paths {
		data, err := fs.ReadFile(fsys, path)
		if err != nil {
			return nil, fmt.Errorf("read catalog %s: %w", path, err)
		}
		var file catalogFile
		if err := yaml.Unmarshal(data, &file); err != nil {
			return nil, fmt.Errorf("parse catalog %s: %w", path, err)
		}
		if err := r.add(path, file); err != nil {
			return nil, err
		}
	}

	if _, ok := r.messages[r.fallback.String()]; !ok {
		return nil, fmt.Errorf("default locale %s is not defined in catalogs", DefaultLocale)
	}

	// Matcher prefers its first tag when nothing matches.
	tags := []language.Tag{r.fallback}
	for _, tag := range r.tags {
		if tag != r.fallback {
			tags = append(tags, tag)
		}
	}
	r.tags = tags
	r.matcher = language.NewMatcher(r.tags)

	return r, nil
}

func (r *Resolver) add(path string, file catalogFile) error {
	locale := strings.TrimSpace(file.Locale)
	if locale == "" {
		return fmt.Errorf("catalog %s: locale is required", path)
	}
	tag, err := language.Parse(locale)
	if err != nil {
		return fmt.Errorf("catalog %s: parse locale %q: %w", path, locale, err)
	}
	if _, exists := r.messages[tag.String()]; exists {
		return fmt.Errorf("catalog %s: locale %q already defined", path, locale)
	}

	messages := make(map[string]string, len(file.Messages))
	for key, value := range file.Messages {
		key = strings.TrimSpace(key)
		if key == "" {
			return fmt.Errorf("catalog %s: message key cannot be blank", path)
		}
		// The printer formats catalog text, so a literal % must be escaped.
		if err := r.builder.SetString(tag, key, strings.ReplaceAll(value, "%", "%%")); err != nil {
			return fmt.Errorf("catalog %s: key %q: %w", path, key, err)
		}
		messages[key] = value
	}

	r.messages[tag.String()] = messages
	r.tags = append(r.tags, tag)
	return nil
}

// Match picks the supported locale for a raw Accept-Language value.
func (r *Resolver) Match(raw string) language.Tag {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return r.fallback
	}
	desired, _, err := language.ParseAcceptLanguage(raw)
	if err != nil || len(desired) == 0 {
		return r.fallback
	}
	_, index, confidence := r.matcher.Match(desired...)
	if confidence == language.No {
		return r.fallback
	}
	return r.tags[index]
}

// Locales returns the supported locale tags, default first.
func (r *Resolver) Locales() []string {
	out := make([]string, 0, len(r.tags))
	for _, tag := range r.tags {
		out = append(out, tag.String())
	}
	return out
}

// Messages returns every message for the locale matched from raw,
// filled in from the default locale where a key is missing.
func (r *Resolver) Messages(raw string) (string, map[string]string) {
	tag := r.Match(raw)
	out := make(map[string]string, len(r.messages[r.fallback.String()]))
	for key, value := range r.messages[r.fallback.String()] {
		out[key] = value
	}
	for key, value := range r.messages[tag.String()] {
		out[key] = value
	}
	return tag.String(), out
}

// Resolve returns the message for key in the locale matched from raw, with
// {name} placeholders replaced from variables. Unknown keys resolve to the key.
func (r *Resolver) Resolve(raw, key string, variables map[string]any) string {
	tag := r.Match(raw)
	if _, ok := r.messages[tag.String()][key]; !ok {
		tag = r.fallback
	}

	text := key
	if _, ok := r.messages[tag.String()][key]; ok {
		text = message.NewPrinter(tag, message.Catalog(r.builder)).Sprintf(key)
	}
	return interpolate(text, variables)
}

func interpolate(text string, variables map[string]any) string {
	if len(variables) == 0 || !strings.Contains(text, "{") {
		return text
	}
	pairs := make([]string, 0, len(variables)*2)
	for name, value := range variables {
		pairs = append(pairs, "{"+name+"}", fmt.Sprint(value))
	}
	return strings.NewReplacer(pairs...).Replace(text)
}
