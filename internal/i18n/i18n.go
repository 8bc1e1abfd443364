// Package i18n holds the interface strings of VidAdmin in every supported
// locale and gives translators that look them up by key.
package i18n

import (
	"fmt"
	"strings"
	"sync"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

// Locale is an interface language supported by VidAdmin.
type Locale string

const (
	English Locale = "en"
	Russian Locale = "ru"
)

// Default is the locale used when none has been chosen.
const Default = English

func (l Locale) String() string {
	return string(l)
}

// Tag gives the language tag of the locale.
func (l Locale) Tag() language.Tag {
	if l == Russian {
		return language.Russian
	}
	return language.English
}

// Toggle gives the other of the two supported locales.
func (l Locale) Toggle() Locale {
	if l == Russian {
		return English
	}
	return Russian
}

// ParseLocale parses a language tag such as "ru", "en-US" or "RU" into one of
// the supported locales.
func ParseLocale(s string) (Locale, error) {
	tag, err := language.Parse(strings.TrimSpace(s))
	if err != nil {
		return Default, fmt.Errorf("not a language tag: %q", s)
	}
	base, _ := tag.Base()
	switch base.String() {
	case English.String():
		return English, nil
	case Russian.String():
		return Russian, nil
	default:
		return Default, fmt.Errorf("unsupported language %q; must be one of 'en' or 'ru'", s)
	}
}

var messages = catalog.NewBuilder(catalog.Fallback(language.English))

func init() {
	for key, m := range translations {
		if err := messages.SetString(language.English, key, m.en); err != nil {
			panic(fmt.Sprintf("register %q: %v", key, err))
		}
		if err := messages.SetString(language.Russian, key, m.ru); err != nil {
			panic(fmt.Sprintf("register %q: %v", key, err))
		}
	}
}

// Translator gives the interface strings for one locale. The zero value is
// not usable; call New.
type Translator struct {
	locale  Locale
	printer *message.Printer
}

// New creates a Translator for the given locale.
func New(l Locale) Translator {
	return Translator{
		locale:  l,
		printer: message.NewPrinter(l.Tag(), message.Catalog(messages)),
	}
}

// Locale returns the locale the Translator translates into.
func (tr Translator) Locale() Locale {
	return tr.locale
}

// T translates the given key. Any args are used to fill in the format verbs of
// the translated string. Keys that are not known are returned unchanged, which
// lets server-defined values such as unknown video statuses pass through.
func (tr Translator) T(key string, args ...interface{}) string {
	if _, ok := translations[key]; !ok {
		return key
	}
	return tr.printer.Sprintf(key, args...)
}

// Known returns whether key has a translation.
func Known(key string) bool {
	_, ok := translations[key]
	return ok
}

// Live is a translator whose locale can be switched after it has been handed
// out. Everything holding the same Live sees the switch immediately. It is
// safe for concurrent use.
type Live struct {
	mtx sync.RWMutex
	tr  Translator
}

// NewLive creates a Live translating into l.
func NewLive(l Locale) *Live {
	return &Live{tr: New(l)}
}

// T translates key in the current locale. See Translator.T.
func (lv *Live) T(key string, args ...interface{}) string {
	lv.mtx.RLock()
	defer lv.mtx.RUnlock()
	return lv.tr.T(key, args...)
}

// Locale returns the current locale.
func (lv *Live) Locale() Locale {
	lv.mtx.RLock()
	defer lv.mtx.RUnlock()
	return lv.tr.Locale()
}

// Set switches to locale l.
func (lv *Live) Set(l Locale) {
	lv.mtx.Lock()
	defer lv.mtx.Unlock()
	lv.tr = New(l)
}
