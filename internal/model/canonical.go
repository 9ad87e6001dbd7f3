package model

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// CanonicalID returns the canonical form of an entity id: NFC-normalized
// with surrounding whitespace trimmed. All id comparisons in the analyzer
// (entity lookup, finding deduplication) go through this, so two spellings
// of the same id that differ only in Unicode composition compare equal.
func CanonicalID(id string) string {
	return norm.NFC.String(strings.TrimSpace(id))
}
