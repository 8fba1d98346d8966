// SPDX-License-Identifier: MIT

package post

import (
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// deaccent strips combining marks after NFD decomposition, so "café" slugs
// as "cafe".
var deaccent = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// NormalizeSlug folds a raw slug to lowercase ASCII letters, digits and
// hyphens. Runs of other characters collapse to a single hyphen.
func NormalizeSlug(raw string) (string, error) {
	folded, _, err := transform.String(deaccent, raw)
	if err != nil {
		// Undecodable input; fall back to the raw bytes.
		folded = raw
	}

	var b strings.Builder
	lastHyphen := true // suppress leading hyphen
	for _, r := range strings.ToLower(folded) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastHyphen = false
		default:
			if !lastHyphen {
				b.WriteByte('-')
				lastHyphen = true
			}
		}
	}

	slug := strings.TrimSuffix(b.String(), "-")
	if slug == "" {
		return "", fmt.Errorf("slug %q has no usable characters", raw)
	}
	return slug, nil
}
