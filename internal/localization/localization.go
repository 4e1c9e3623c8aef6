// Package localization provides translated message templates. Translations
// live in JSON files named by language code (e.g. "en.json"); the built-in
// set is embedded into the binary.
package localization

import (
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"
	"sync"
)

const DefaultLang = "en"

//go:embed locales/*.json
var builtin embed.FS

// Localizer holds the translations of every loaded language.
type Localizer struct {
	translations map[string]map[string]string
	mu           sync.RWMutex
}

var (
	defaultOnce sync.Once
	defaultLoc  *Localizer
)

// Default returns the localizer over the embedded translations.
func Default() *Localizer {
	defaultOnce.Do(func() {
		l, err := Load(builtin, "locales")
		if err != nil {
			panic(fmt.Sprintf("localization: embedded locales: %v", err))
		}
		defaultLoc = l
	})
	return defaultLoc
}

// Load reads every *.json file of dir in fsys.
func Load(fsys fs.FS, dir string) (*Localizer, error) {
	l := &Localizer{
		translations: make(map[string]map[string]string),
	}

	files, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read localization directory: %w", err)
	}

	for _, file := range files {
		if file.IsDir() || !strings.HasSuffix(file.Name(), ".json") {
			continue
		}

		lang := strings.TrimSuffix(file.Name(), ".json")
		data, err := fs.ReadFile(fsys, path.Join(dir, file.Name()))
		if err != nil {
			return nil, fmt.Errorf("failed to read localization file %s: %w", file.Name(), err)
		}

		var translations map[string]string
		if err := json.Unmarshal(data, &translations); err != nil {
			return nil, fmt.Errorf("failed to parse localization file %s: %w", file.Name(), err)
		}
		l.translations[lang] = translations
	}

	return l, nil
}

// Languages lists the loaded language codes in order.
func (l *Localizer) Languages() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	langs := make([]string, 0, len(l.translations))
	for lang := range l.translations {
		langs = append(langs, lang)
	}
	sort.Strings(langs)
	return langs
}

// GetString returns the string for key in lang, falling back to English
// and then to the key itself.
func (l *Localizer) GetString(lang, key string) string {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if t, ok := l.translations[lang]; ok {
		if value, ok := t[key]; ok {
			return value
		}
	}
	if lang != DefaultLang {
		if t, ok := l.translations[DefaultLang]; ok {
			if value, ok := t[key]; ok {
				return value
			}
		}
	}
	return key
}

// Format resolves key and substitutes {name} placeholders from vars.
func (l *Localizer) Format(lang, key string, vars map[string]string) string {
	s := l.GetString(lang, key)
	if len(vars) == 0 {
		return s
	}
	pairs := make([]string, 0, len(vars)*2)
	for k, v := range vars {
		pairs = append(pairs, "{"+k+"}", v)
	}
	return strings.NewReplacer(pairs...).Replace(s)
}
