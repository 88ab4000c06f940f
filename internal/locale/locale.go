// Package locale resolves a request's display language and overlays
// translated product text at serialization time.
package locale

import "strings"

type Locale string

const (
	English  Locale = "en"
	Spanish  Locale = "es"
	Chinese  Locale = "zh"
	Japanese Locale = "ja"

	Default = English
)

var supported = map[Locale]struct{}{
	English:  {},
	Spanish:  {},
	Chinese:  {},
	Japanese: {},
}

func IsSupported(l Locale) bool {
	_, ok := supported[l]
	return ok
}

// Resolve picks the locale for a request. A supported explicit parameter
// wins; otherwise the primary tag of the first Accept-Language entry is
// used ("es-ES,es;q=0.9" -> es); otherwise Default.
func Resolve(param, acceptLanguage string) Locale {
	if l := Locale(strings.ToLower(strings.TrimSpace(param))); IsSupported(l) {
		return l
	}
	if acceptLanguage == "" {
		return Default
	}
	first, _, _ := strings.Cut(acceptLanguage, ",")
	first, _, _ = strings.Cut(first, ";")
	base, _, _ := strings.Cut(strings.ToLower(strings.TrimSpace(first)), "-")
	if l := Locale(base); IsSupported(l) {
		return l
	}
	return Default
}

// Text is the localized display text for a product.
type Text struct {
	Name        string
	Description string
}

// ProductText returns name and description for productID in l, falling
// back to the stored values for anything the table does not cover.
func ProductText(l Locale, productID int64, name, description string) Text {
	out := Text{Name: name, Description: description}
	entry, ok := productContent[l][productID]
	if !ok {
		return out
	}
	if entry.Name != "" {
		out.Name = entry.Name
	}
	if entry.Description != "" {
		out.Description = entry.Description
	}
	return out
}
