package bankimport

import "strings"

// sepaTags are the SEPA subfields banks pack into the free-text reference
// field, in canonical order. A subfield starts with its tag name and a plus
// sign and is separated from the next by a single space.
var sepaTags = []string{"EREF", "KREF", "MREF", "CRED", "DEBT", "SVWZ", "ABWA", "ABWE"}

// stripWrapPadding removes every 28th character if it is a space. Banks wrap
// the reference field in 27-character lines and pad the breaks with spaces.
func stripWrapPadding(s string) string {
	var sb strings.Builder
	sb.Grow(len(s))
	for i, c := range []rune(s) {
		if i%28 == 27 && c == ' ' {
			continue
		}
		sb.WriteRune(c)
	}
	return sb.String()
}

// CleanupReference normalizes a statement reference field: the line-wrap
// padding is stripped first, then the tagged SEPA subfields are re-extracted
// and rejoined with single spaces. A reference that does not consist of
// tagged subfields is passed through unchanged.
func CleanupReference(reference string) string {
	stripped := stripWrapPadding(reference)
	segments, ok := splitTagged(stripped, sepaTags)
	if !ok {
		return reference
	}
	return strings.Join(segments, " ")
}

// splitTagged splits s into tagged subfields appearing in canonical tag
// order. Each subfield runs from its tag to the space preceding the next
// recognized subfield, or to the end of the string; the shortest viable
// subfield wins. It reports false when s does not have that structure.
func splitTagged(s string, tags []string) ([]string, bool) {
	if s == "" {
		return nil, true
	}
	for k, tag := range tags {
		if !strings.HasPrefix(s, tag+"+") {
			continue
		}
		for i := 0; i+1 < len(s); i++ {
			if s[i] != ' ' {
				continue
			}
			rest, ok := splitTagged(s[i+1:], tags[k+1:])
			if ok {
				return append([]string{s[:i]}, rest...), true
			}
		}
		// No viable split point: the subfield extends to the end.
		return []string{s}, true
	}
	return nil, false
}
