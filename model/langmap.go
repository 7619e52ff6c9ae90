package model

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"golang.org/x/text/language"
)

// untagged holds a bare-string label until the default language is known.
const untagged = ""

// LangMap maps a language tag to text. In JSON it is either an object
// ({"en": "...", "fr": "..."}) or a bare string, which is stored under the
// default language by Normalize.
type LangMap map[string]string

// UnmarshalJSON accepts a string or an object of strings.
func (m *LangMap) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*m = LangMap{untagged: s}
		return nil
	}
	var raw map[string]string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("expected a string or an object of language to text")
	}
	*m = LangMap(raw)
	return nil
}

// Normalize returns a copy with an untagged entry moved under defaultLang.
// An explicit entry for defaultLang wins over the untagged one.
func (m LangMap) Normalize(defaultLang string) LangMap {
	if m == nil {
		return nil
	}
	out := make(LangMap, len(m))
	for lang, text := range m {
		if lang != untagged {
			out[lang] = text
		}
	}
	if text, ok := m[untagged]; ok {
		if _, exists := out[defaultLang]; !exists {
			out[defaultLang] = text
		}
	}
	return out
}

// Languages returns the language tags in sorted order.
func (m LangMap) Languages() []string {
	langs := make([]string, 0, len(m))
	for lang := range m {
		langs = append(langs, lang)
	}
	sort.Strings(langs)
	return langs
}

// Get returns the text for lang, or the empty string.
func (m LangMap) Get(lang string) string {
	return m[lang]
}

// ValidLanguageTag reports whether tag is a well-formed BCP 47 tag that
// can be written after "@" in Turtle.
func ValidLanguageTag(tag string) bool {
	if tag == "" || strings.Trim(tag, "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789-") != "" {
		return false
	}
	_, err := language.Parse(tag)
	return err == nil
}

// check reports why the map is unusable as a required label, or "".
// Entries are checked in language order so the reason is stable.
func (m LangMap) check(requireEnglish bool) string {
	if len(m) == 0 {
		return "at least one language entry is required"
	}
	for _, lang := range m.Languages() {
		if lang != untagged && !ValidLanguageTag(lang) {
			return fmt.Sprintf("%q is not a valid language tag", lang)
		}
		if m[lang] == "" {
			return fmt.Sprintf("empty text for language %q", lang)
		}
	}
	if requireEnglish {
		if _, ok := m["en"]; !ok {
			return `an "en" entry is required`
		}
	}
	return ""
}

// StringList is a JSON value that is either one string or a list of strings.
type StringList []string

// UnmarshalJSON accepts "x" or ["x", "y"].
func (l *StringList) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*l = StringList{s}
		return nil
	}
	var list []string
	if err := json.Unmarshal(data, &list); err != nil {
		return fmt.Errorf("expected a string or a list of strings")
	}
	*l = StringList(list)
	return nil
}
