// Package naming turns raw design-tool style names into source identifiers.
package naming

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/jmylchreest/stylegen/internal/protocol"
)

// Format converts raw into an identifier under convention.
//
// Distinct raw names may format to the same identifier ("Primary Blue" and
// "primary-blue"). Such collisions are returned as-is; callers do not
// deduplicate.
func Format(raw string, convention protocol.NameFormat) (string, error) {
	if !convention.Valid() {
		return "", &protocol.UnsupportedOptionError{Option: "nameFormat", Value: string(convention)}
	}
	if strings.TrimSpace(raw) == "" {
		return "", &protocol.InvalidNameError{Name: raw, Reason: "name is empty"}
	}

	words := Tokenize(raw)
	if len(words) == 0 {
		return "", &protocol.InvalidNameError{Name: raw, Reason: "name has no letters or digits"}
	}

	switch convention {
	case protocol.NameKebabHyphen:
		return strings.Join(words, "-"), nil
	case protocol.NameKebabUnderscore:
		return strings.Join(words, "_"), nil
	case protocol.NameCamel:
		return words[0] + titleJoin(words[1:]), nil
	default:
		return titleJoin(words), nil
	}
}

// Tokenize splits raw into lowercase words. Any rune that is not a letter or
// digit separates words, and every uppercase or titlecase letter starts a new
// word, so acronyms split per letter ("HTMLColor" is h, t, m, l, color).
// Combining marks stay with the word they follow, keeping decomposed text and
// multi-rune lowercase forms ("İ" lowers to "i̇") whole; a mark that follows
// no letter or digit is a separator.
// Formatting an already formatted name yields the same name.
func Tokenize(raw string) []string {
	lower := cases.Lower(language.Und)

	var (
		words   []string
		current strings.Builder
	)
	flush := func() {
		if current.Len() > 0 {
			words = append(words, lower.String(current.String()))
			current.Reset()
		}
	}

	for _, r := range raw {
		switch {
		case unicode.IsMark(r) && current.Len() > 0:
		case !unicode.IsLetter(r) && !unicode.IsDigit(r):
			flush()
			continue
		case unicode.IsUpper(r) || unicode.IsTitle(r):
			flush()
		}
		current.WriteRune(r)
	}
	flush()

	return words
}

func titleJoin(words []string) string {
	title := cases.Title(language.Und, cases.NoLower)
	var b strings.Builder
	for _, w := range words {
		b.WriteString(title.String(w))
	}
	return b.String()
}
