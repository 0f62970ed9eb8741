package i18n

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// GenerateLabel turns a key such as "rental_price_title" into "Rental Price
// Title", upper-casing the first letter of each word with the rules of lang.
func GenerateLabel(key, lang string) string {
	tag, err := language.Parse(lang)
	if err != nil {
		tag = language.English
	}
	caser := cases.Title(tag, cases.NoLower)
	parts := strings.Split(key, wordSeparator)
	words := make([]string, 0, len(parts))
	for _, p := range parts {
		if p == "" {
			continue
		}
		words = append(words, caser.String(p))
	}
	return strings.Join(words, " ")
}
