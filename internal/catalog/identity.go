package catalog

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

const cardPrefix = "card-"

// CardID derives the stable identifier of a card from its source position and
// model name. Runs of whitespace in the name become a single hyphen and the
// result is lowercased, so "First Principles" at (0, 3) yields
// "card-0-3-first-principles". The positional indices make the id unique
// within one dataset even when names repeat.
func CardID(categoryIndex, modelIndex int, modelName string) string {
	return fmt.Sprintf("%s%d-%d-%s", cardPrefix, categoryIndex, modelIndex, slug(modelName))
}

func slug(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	inSpace := false
	for _, r := range name {
		if isSlugSpace(r) {
			if !inSpace {
				b.WriteByte('-')
			}
			inSpace = true
			continue
		}
		inSpace = false
		b.WriteRune(r)
	}
	return strings.ToLower(b.String())
}

// isSlugSpace is the ECMAScript \s class: Unicode spaces plus U+FEFF,
// without U+0085.
func isSlugSpace(r rune) bool {
	switch r {
	case '\ufeff':
		return true
	case '\u0085':
		return false
	}
	return unicode.IsSpace(r)
}

// ParseCardID splits an identifier produced by CardID.
func ParseCardID(id string) (categoryIndex, modelIndex int, name string, ok bool) {
	rest, found := strings.CutPrefix(id, cardPrefix)
	if !found {
		return 0, 0, "", false
	}
	parts := strings.SplitN(rest, "-", 3)
	if len(parts) != 3 {
		return 0, 0, "", false
	}
	c, err := strconv.Atoi(parts[0])
	if err != nil || c < 0 {
		return 0, 0, "", false
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 0 {
		return 0, 0, "", false
	}
	return c, m, parts[2], true
}

// CategoryAnchor is the viewport anchor of a category header.
func CategoryAnchor(categoryIndex int) string {
	return "category-" + strconv.Itoa(categoryIndex)
}
