package identity

import (
	"encoding/hex"
	"sort"
	"strings"

	"golang.org/x/crypto/sha3"

	"github.com/patternqa/patternqa/internal/model"
)

// ValuePrefixLength is the number of value bytes that participate in the
// identity digest. Truncation keeps near-duplicate long values (whole inline
// script bodies, for example) from exploding the key space while still
// distinguishing most content differences. This makes identity deliberately
// lossy: a precision/cost trade-off, not a defect. Changing it changes
// every computed key.
const ValuePrefixLength = 100

// pairSeparator joins the normalized attribute pairs before hashing.
const pairSeparator = "|"

// Key is the content-derived identity of a pattern occurrence, as a
// hex-encoded digest string.
type Key string

// Fingerprint computes the identity key for an occurrence.
//
// The key is a SHA3-256 digest over the occurrence's non-empty attributes
// (type, location, truncated value, selector, attribute), serialized as
// sorted "name:value" pairs. Sorting makes the serialization deterministic;
// omitting empty attributes means an occurrence missing a field hashes the
// same as one carrying it explicitly empty.
//
// Fingerprint is a pure function: identical input tuples always yield
// identical keys. Collision resistance beyond SHA3's is not required; the
// digest only needs to be deterministic with a low collision rate over the
// observed value space.
//
// Edge case: an occurrence with every attribute empty collapses to the one
// canonical empty key. Callers must tolerate unrelated all-empty occurrences
// colliding there; this is accepted by design.
func Fingerprint(o *model.PatternOccurrence) Key {
	attrs := map[string]string{
		"attribute": o.Attribute,
		"location":  o.Location,
		"selector":  o.Selector,
		"type":      o.Type.String(),
		"value":     truncateValue(o.Value),
	}
	// The zero PatternType stringifies to "unknown"; treat it as absent so
	// typeless occurrences don't all share a spurious "type:unknown" pair.
	if o.Type == model.PatternTypeUnknown {
		attrs["type"] = ""
	}

	names := make([]string, 0, len(attrs))
	for name, value := range attrs {
		if value == "" {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)

	pairs := make([]string, 0, len(names))
	for _, name := range names {
		pairs = append(pairs, name+":"+attrs[name])
	}

	digest := sha3.Sum256([]byte(strings.Join(pairs, pairSeparator)))
	return Key(hex.EncodeToString(digest[:]))
}

// truncateValue bounds the value to ValuePrefixLength bytes.
func truncateValue(v string) string {
	if len(v) > ValuePrefixLength {
		return v[:ValuePrefixLength]
	}
	return v
}
