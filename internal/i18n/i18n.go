// Package i18n holds the message catalogs and locale-aware formatting.
// Catalogs are YAML files embedded in the binary and parsed with Viper,
// the same loader the config package uses.
package i18n

import (
	"bytes"
	"embed"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/locales"
	"github.com/go-playground/locales/en"
	"github.com/go-playground/locales/pt_BR"
	"github.com/spf13/viper"
	"golang.org/x/text/language"

	"github.com/fleveque/lastmosaic/internal/model"
)

const (
	English   = "en"
	Brazilian = "pt-BR"

	DefaultLocale = English
)

// Locales lists the supported locales, default first.
var Locales = []string{English, Brazilian}

// Go note: embed.FS is a read-only filesystem compiled into the binary.
// The directive below must sit directly above the variable.
//
//go:embed messages/*.yaml
var messageFiles embed.FS

var matcher = language.NewMatcher([]language.Tag{
	language.English,
	language.BrazilianPortuguese,
})

// Catalog maps locale -> flattened message key -> template.
type Catalog struct {
	messages   map[string]map[string]string
	formatters map[string]locales.Translator
}

// Load parses every embedded catalog.
func Load() (*Catalog, error) {
	c := &Catalog{
		messages: make(map[string]map[string]string, len(Locales)),
		formatters: map[string]locales.Translator{
			English:   en.New(),
			Brazilian: pt_BR.New(),
		},
	}

	for _, locale := range Locales {
		data, err := messageFiles.ReadFile("messages/" + locale + ".yaml")
		if err != nil {
			return nil, fmt.Errorf("reading %s messages: %w", locale, err)
		}
		msgs, err := parseMessages(data)
		if err != nil {
			return nil, fmt.Errorf("parsing %s messages: %w", locale, err)
		}
		c.messages[locale] = msgs
	}

	return c, nil
}

// parseMessages flattens nested YAML into dotted keys.
// Viper lower-cases keys, so lookups lower-case too.
func parseMessages(data []byte) (map[string]string, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	if err := v.ReadConfig(bytes.NewReader(data)); err != nil {
		return nil, err
	}

	msgs := make(map[string]string)
	for _, key := range v.AllKeys() {
		msgs[key] = v.GetString(key)
	}
	return msgs, nil
}

// Normalize maps loose locale spellings (pt_BR, pt-br, en-US) onto a
// supported locale, falling back to the default.
func Normalize(locale string) string {
	l := strings.ToLower(strings.ReplaceAll(locale, "_", "-"))
	switch {
	case l == "pt-br" || strings.HasPrefix(l, "pt"):
		return Brazilian
	default:
		return DefaultLocale
	}
}

// Negotiate picks a supported locale from an Accept-Language header.
func Negotiate(acceptLanguage string) string {
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return DefaultLocale
	}
	_, idx, conf := matcher.Match(tags...)
	if conf == language.No {
		return DefaultLocale
	}
	return Locales[idx]
}

// T returns the message for key in locale with {name} placeholders filled.
// Unknown locales use the default catalog; unknown keys return the key.
func (c *Catalog) T(locale, key string, params map[string]string) string {
	msgs, ok := c.messages[Normalize(locale)]
	if !ok {
		msgs = c.messages[DefaultLocale]
	}

	tmpl, ok := msgs[strings.ToLower(key)]
	if !ok {
		return key
	}

	if len(params) == 0 {
		return tmpl
	}
	pairs := make([]string, 0, len(params)*2)
	for name, value := range params {
		pairs = append(pairs, "{"+name+"}", value)
	}
	return strings.NewReplacer(pairs...).Replace(tmpl)
}

// Translator binds the catalog to one locale.
func (c *Catalog) Translator(locale string) model.TranslateFunc {
	return func(key string, params map[string]string) string {
		return c.T(locale, key, params)
	}
}

// FormatNumber groups digits the way the locale does (1,234 vs 1.234).
func (c *Catalog) FormatNumber(n int, locale string) string {
	return c.formatter(locale).FmtNumber(float64(n), 0)
}

// FormatDate renders a medium-length date, e.g. "Jan 2, 2026".
func (c *Catalog) FormatDate(t time.Time, locale string) string {
	return c.formatter(locale).FmtDateMedium(t)
}

func (c *Catalog) formatter(locale string) locales.Translator {
	if f, ok := c.formatters[Normalize(locale)]; ok {
		return f
	}
	return c.formatters[DefaultLocale]
}

// DownloadOptions returns options with the translator and number
// formatter bound to this catalog.
func (c *Catalog) DownloadOptions(locale string) model.DownloadOptions {
	locale = Normalize(locale)
	return model.DownloadOptions{
		Locale:       locale,
		DateString:   c.FormatDate(time.Now(), locale),
		T:            c.Translator(locale),
		FormatNumber: c.FormatNumber,
	}
}
