package core

import (
	"encoding/json"
	"strings"
	"unicode"
)

// Theme holds the color settings of an app definition.
type Theme struct {
	ThemeColor  string `json:"themeColor,omitempty" yaml:"themeColor,omitempty"`
	SplashColor string `json:"splashColor,omitempty" yaml:"splashColor,omitempty"`
}

// Page is a page entry of an app definition. Blocks and other page content
// are kept opaque in Definition.Raw.
type Page struct {
	Name string `json:"name" yaml:"name"`
}

// Definition is the structured document describing an app.
type Definition struct {
	Name            string   `json:"name" yaml:"name"`
	Description     string   `json:"description,omitempty" yaml:"description,omitempty"`
	DefaultPage     string   `json:"defaultPage,omitempty" yaml:"defaultPage,omitempty"`
	DefaultLanguage string   `json:"defaultLanguage,omitempty" yaml:"defaultLanguage,omitempty"`
	Languages       []string `json:"languages,omitempty" yaml:"languages,omitempty"`
	Theme           Theme    `json:"theme,omitempty" yaml:"theme,omitempty"`
	Pages           []Page   `json:"pages,omitempty" yaml:"pages,omitempty"`

	// Raw is the complete stored document, including fields not modelled above.
	Raw json.RawMessage `json:"-" yaml:"-"`
}

// ParseDefinition decodes a stored JSON definition and keeps the raw bytes.
func ParseDefinition(data []byte) (Definition, error) {
	var def Definition
	if len(data) == 0 {
		return def, nil
	}
	if err := json.Unmarshal(data, &def); err != nil {
		return Definition{}, err
	}
	def.Raw = append(json.RawMessage(nil), data...)
	return def, nil
}

// DefaultPageSlug returns the URL segment of the default page, or "" when the
// definition has none.
func (d Definition) DefaultPageSlug() string {
	return Slug(d.DefaultPage)
}

// Slug normalizes a page name into a URL path segment: lower case, runs of
// anything other than letters and digits collapsed into a single dash.
func Slug(s string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if dash && b.Len() > 0 {
				b.WriteByte('-')
			}
			dash = false
			b.WriteRune(r)
			continue
		}
		dash = true
	}
	return b.String()
}
