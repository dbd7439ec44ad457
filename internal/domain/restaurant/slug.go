package restaurant

import (
	"errors"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var ErrUnsluggableName = errors.New("name has no slug-safe characters")

var (
	nonWordRe    = regexp.MustCompile(`[^a-z0-9\s-]+`)
	whitespaceRe = regexp.MustCompile(`[\s-]+`)
)

// Normalize lowers the name, folds accented letters to their ASCII base,
// strips everything that is neither word character nor space, and
// collapses runs of spaces into single hyphens. "Café Déjà Vu!" becomes
// "cafe-deja-vu".
func Normalize(name string) string {
	folded, _, err := transform.String(transform.Chain(
		norm.NFD,
		runes.Remove(runes.In(unicode.Mn)),
		norm.NFC,
	), name)

	if err != nil {
		folded = name
	}

	s := strings.ToLower(folded)
	s = nonWordRe.ReplaceAllString(s, "")
	s = whitespaceRe.ReplaceAllString(strings.TrimSpace(s), "-")

	return strings.Trim(s, "-")
}

// NewSlug derives a globally unique slug from the restaurant name by
// appending a creation-time suffix. No check-and-retry loop is needed:
// the suffix alone keeps collisions out in practice, and the unique index
// on the column backstops the rest. A name that normalizes to nothing is
// rejected instead of producing a digits-only slug.
func NewSlug(name string, now time.Time) (string, error) {
	base := Normalize(name)

	if base == "" {
		return "", ErrUnsluggableName
	}

	return base + "-" + strconv.FormatInt(now.UnixMilli(), 10), nil
}
