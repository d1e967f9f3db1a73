package shell

import (
	"golang.org/x/text/language"

	"github.com/leapstack-labs/approuter/pkg/core"
)

// negotiateLanguage picks the definition language that best matches the
// Accept-Language header. Without a match it returns the definition's
// default language, then "en".
func negotiateLanguage(acceptLanguage string, def core.Definition) string {
	fallback := def.DefaultLanguage
	if fallback == "" {
		fallback = fallbackLanguage
	}

	var (
		names []string
		tags  []language.Tag
	)
	for _, name := range def.Languages {
		tag, err := language.Parse(name)
		if err != nil {
			continue
		}
		names = append(names, name)
		tags = append(tags, tag)
	}
	if len(tags) == 0 || acceptLanguage == "" {
		return fallback
	}

	desired, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(desired) == 0 {
		return fallback
	}

	_, idx, confidence := language.NewMatcher(tags).Match(desired...)
	if confidence == language.No {
		return fallback
	}
	return names[idx]
}
