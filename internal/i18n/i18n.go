// Package i18n looks up translated strings for rendered notifications.
// Bundles are embedded YAML files, one per language, loaded into a
// universal-translator instance.
package i18n

import (
	"embed"
	"fmt"
	"path"
	"strings"

	"github.com/go-playground/locales/en"
	"github.com/go-playground/locales/ru"
	"github.com/go-playground/locales/uk"
	ut "github.com/go-playground/universal-translator"
	"gopkg.in/yaml.v3"
)

// DefaultLanguage is used for unknown languages and missing keys
const DefaultLanguage = "en"

//go:embed locales/*.yaml
var bundles embed.FS

type bundle struct {
	Lang       string            `yaml:"lang"`
	Messages   map[string]string `yaml:"messages"`
	BadWeather []string          `yaml:"bad_weather"`
}

// Catalog holds every loaded language.
type Catalog struct {
	uni        *ut.UniversalTranslator
	badWeather map[string][]string
}

// NewCatalog loads the embedded bundles
func NewCatalog() (*Catalog, error) {
	fallback := en.New()
	uni := ut.New(fallback, fallback, ru.New(), uk.New())

	entries, err := bundles.ReadDir("locales")
	if err != nil {
		return nil, fmt.Errorf("read locale bundles: %w", err)
	}

	catalog := &Catalog{uni: uni, badWeather: make(map[string][]string)}
	for _, entry := range entries {
		raw, err := bundles.ReadFile(path.Join("locales", entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("read bundle %s: %w", entry.Name(), err)
		}
		if err := catalog.load(raw); err != nil {
			return nil, fmt.Errorf("load bundle %s: %w", entry.Name(), err)
		}
	}

	if _, ok := catalog.badWeather[DefaultLanguage]; !ok {
		return nil, fmt.Errorf("bundle for default language %q is missing", DefaultLanguage)
	}
	return catalog, nil
}

func (c *Catalog) load(raw []byte) error {
	var b bundle
	if err := yaml.Unmarshal(raw, &b); err != nil {
		return err
	}

	trans, found := c.uni.GetTranslator(b.Lang)
	if !found || trans.Locale() != b.Lang {
		return fmt.Errorf("unsupported language %q", b.Lang)
	}
	for key, text := range b.Messages {
		if err := trans.Add(key, text, true); err != nil {
			return fmt.Errorf("key %s: %w", key, err)
		}
	}

	lexicon := make([]string, 0, len(b.BadWeather))
	for _, word := range b.BadWeather {
		lexicon = append(lexicon, strings.ToLower(strings.TrimSpace(word)))
	}
	c.badWeather[b.Lang] = lexicon
	return nil
}

// For returns the translator for lang, falling back to English. Region
// suffixes such as "ru-RU" are ignored.
func (c *Catalog) For(lang string) *Translator {
	lang = normalizeLanguage(lang)
	if _, ok := c.badWeather[lang]; !ok {
		lang = DefaultLanguage
	}

	trans, _ := c.uni.GetTranslator(lang)
	fallback, _ := c.uni.GetTranslator(DefaultLanguage)
	return &Translator{
		trans:      trans,
		fallback:   fallback,
		badWeather: c.badWeather[lang],
	}
}

func normalizeLanguage(lang string) string {
	lang = strings.ToLower(strings.TrimSpace(lang))
	if i := strings.IndexAny(lang, "-_"); i > 0 {
		lang = lang[:i]
	}
	return lang
}

// Translator resolves keys for one language.
type Translator struct {
	trans      ut.Translator
	fallback   ut.Translator
	badWeather []string
}

// T translates key. A key missing in the language falls back to English and
// then to the key itself.
func (t *Translator) T(key string, params ...string) string {
	if text, err := t.trans.T(key, params...); err == nil {
		return text
	}
	if text, err := t.fallback.T(key, params...); err == nil {
		return text
	}
	return key
}

// IsBadWeather reports whether description contains a term from the
// language's bad-weather lexicon.
func (t *Translator) IsBadWeather(description string) bool {
	description = strings.ReplaceAll(strings.ToLower(description), "ё", "е")
	for _, word := range t.badWeather {
		if strings.Contains(description, strings.ReplaceAll(word, "ё", "е")) {
			return true
		}
	}
	return false
}
