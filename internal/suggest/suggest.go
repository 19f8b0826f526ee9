// Package suggest derives template suggestion identifiers from the pattern
// that matched a banner, so themes can provide per-section display variants.
package suggest

import "strings"

var strippedPrefixes = []string{"bundle_", "node_type_", "view_"}

// FromMatchedSection sanitizes a matched target pattern into an identifier
// usable in template names: lowercase, with every character outside
// [a-z0-9-_] replaced by an underscore, known pattern prefixes stripped, and
// separator/wildcard residue trimmed from both ends.
//
//	"bundle:article" -> "article"
//	"/news/*"        -> "news"
//	"view.frontpage" -> "frontpage"
func FromMatchedSection(pattern string) string {
	var b strings.Builder
	b.Grow(len(pattern))
	for _, r := range strings.ToLower(pattern) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	id := b.String()

	for _, prefix := range strippedPrefixes {
		if strings.HasPrefix(id, prefix) {
			id = id[len(prefix):]
			break
		}
	}

	return strings.Trim(id, "_-")
}
