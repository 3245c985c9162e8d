package i18n

import (
	"embed"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"golang.org/x/text/language"
)

//go:embed locales/*.json
var localeFS embed.FS

// Bundle holds the message catalogues for the supported storefront locales.
type Bundle struct {
	dict     map[string]map[string]string
	fallback string
	matcher  language.Matcher
	tags     []language.Tag
	names    []string
}

// Load reads the embedded locale catalogues. The fallback locale must be
// present; other locales may be missing and resolve through the fallback.
func Load(fallback string, supported []string) (*Bundle, error) {
	fallback = strings.ToLower(strings.TrimSpace(fallback))
	if fallback == "" {
		return nil, fmt.Errorf("i18n: fallback locale is required")
	}
	if len(supported) == 0 {
		supported = []string{fallback}
	}

	b := &Bundle{
		dict:     map[string]map[string]string{},
		fallback: fallback,
	}

	seen := map[string]struct{}{}
	ordered := append([]string{fallback}, supported...)
	for _, raw := range ordered {
		name := strings.ToLower(strings.TrimSpace(raw))
		if name == "" {
			continue
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}

		tag, err := language.Parse(name)
		if err != nil {
			return nil, fmt.Errorf("i18n: invalid locale %q: %w", name, err)
		}

		data, err := localeFS.ReadFile("locales/" + name + ".json")
		if err != nil {
			if name == fallback {
				return nil, fmt.Errorf("i18n: load fallback locale %s: %w", name, err)
			}
			continue
		}
		var messages map[string]string
		if err := json.Unmarshal(data, &messages); err != nil {
			return nil, fmt.Errorf("i18n: unmarshal locale %s: %w", name, err)
		}

		b.dict[name] = messages
		b.tags = append(b.tags, tag)
		b.names = append(b.names, name)
	}

	if _, ok := b.dict[fallback]; !ok {
		return nil, fmt.Errorf("i18n: fallback locale %s not loaded", fallback)
	}

	// The fallback sits first so the matcher defaults to it.
	b.matcher = language.NewMatcher(b.tags)
	return b, nil
}

// Supported returns the loaded locale names, fallback first.
func (b *Bundle) Supported() []string {
	out := append([]string(nil), b.names...)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i] == b.fallback {
			return out[j] != b.fallback
		}
		return false
	})
	return out
}

// Fallback returns the configured fallback locale name.
func (b *Bundle) Fallback() string { return b.fallback }

// IsSupported reports whether the locale has a loaded catalogue.
func (b *Bundle) IsSupported(locale string) bool {
	_, ok := b.dict[strings.ToLower(strings.TrimSpace(locale))]
	return ok
}

// T returns the translation for key in the given locale, falling back to the
// default locale and finally the key itself.
func (b *Bundle) T(locale, key string) string {
	locale = strings.ToLower(strings.TrimSpace(locale))
	if locale != "" {
		if m, ok := b.dict[locale]; ok {
			if v, ok := m[key]; ok {
				return v
			}
		}
	}
	if m, ok := b.dict[b.fallback]; ok {
		if v, ok := m[key]; ok {
			return v
		}
	}
	return key
}

// Resolve chooses the best supported locale from an Accept-Language header
// value. An explicit locale override wins when it names a supported locale.
func (b *Bundle) Resolve(override, acceptLanguage string) string {
	if override = strings.ToLower(strings.TrimSpace(override)); override != "" {
		if b.IsSupported(override) {
			return override
		}
	}
	if strings.TrimSpace(acceptLanguage) == "" {
		return b.fallback
	}

	desired, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(desired) == 0 {
		return b.fallback
	}
	_, index, conf := b.matcher.Match(desired...)
	if conf == language.No || index < 0 || index >= len(b.names) {
		return b.fallback
	}
	return b.names[index]
}
