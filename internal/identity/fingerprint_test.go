package identity

import (
	"math/rand"
	"strings"
	"testing"

	"github.com/patternqa/patternqa/internal/model"
)

// TestFingerprintDeterminism tests that identical occurrences always hash to
// the same key.
func TestFingerprintDeterminism(t *testing.T) {
	t.Parallel()

	occ := &model.PatternOccurrence{
		Name:     "meta_generator_wordpress",
		Type:     model.PatternTypeMeta,
		Location: "head",
		Value:    "WordPress 6.2",
		Selector: "meta[name=generator]",
	}

	first := Fingerprint(occ)
	for i := 0; i < 10; i++ {
		if got := Fingerprint(occ); got != first {
			t.Fatalf("fingerprint not deterministic: %q != %q", got, first)
		}
	}
}

// TestFingerprintIgnoresName tests that the detector-assigned name never
// participates in identity.
func TestFingerprintIgnoresName(t *testing.T) {
	t.Parallel()

	a := &model.PatternOccurrence{
		Name:     "meta_generator_wordpress",
		Type:     model.PatternTypeMeta,
		Location: "head",
		Value:    "WordPress",
	}
	b := &model.PatternOccurrence{
		Name:     "meta_generator_cms",
		Type:     model.PatternTypeMeta,
		Location: "head",
		Value:    "WordPress",
	}

	if Fingerprint(a) != Fingerprint(b) {
		t.Error("occurrences differing only by name must share an identity key")
	}
}

// TestFingerprintDistinguishesAttributes tests that changing any identity
// attribute changes the key.
func TestFingerprintDistinguishesAttributes(t *testing.T) {
	t.Parallel()

	base := model.PatternOccurrence{
		Type:      model.PatternTypeJavaScript,
		Location:  "body",
		Value:     "wp-emoji-release.min.js",
		Selector:  "script",
		Attribute: "src",
	}
	baseKey := Fingerprint(&base)

	testCases := []struct {
		name   string
		mutate func(*model.PatternOccurrence)
	}{
		{"type", func(o *model.PatternOccurrence) { o.Type = model.PatternTypeCSS }},
		{"location", func(o *model.PatternOccurrence) { o.Location = "head" }},
		{"value", func(o *model.PatternOccurrence) { o.Value = "jquery.min.js" }},
		{"selector", func(o *model.PatternOccurrence) { o.Selector = "link" }},
		{"attribute", func(o *model.PatternOccurrence) { o.Attribute = "href" }},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			mutated := base
			tc.mutate(&mutated)
			if Fingerprint(&mutated) == baseKey {
				t.Errorf("changing %s did not change the identity key", tc.name)
			}
		})
	}
}

// TestFingerprintValueTruncation tests that values are only compared up to
// ValuePrefixLength bytes.
func TestFingerprintValueTruncation(t *testing.T) {
	t.Parallel()

	prefix := strings.Repeat("a", ValuePrefixLength)
	a := &model.PatternOccurrence{Type: model.PatternTypeJavaScript, Value: prefix + "tail-one"}
	b := &model.PatternOccurrence{Type: model.PatternTypeJavaScript, Value: prefix + "tail-two"}

	if Fingerprint(a) != Fingerprint(b) {
		t.Error("values identical in the first ValuePrefixLength bytes must share a key")
	}

	// A difference inside the prefix must still be visible.
	c := &model.PatternOccurrence{Type: model.PatternTypeJavaScript, Value: "b" + prefix[1:]}
	if Fingerprint(a) == Fingerprint(c) {
		t.Error("values differing inside the prefix must not share a key")
	}
}

// TestFingerprintEmptyCollapse tests that all-empty occurrences collapse to
// one canonical key. This collision is accepted by design.
func TestFingerprintEmptyCollapse(t *testing.T) {
	t.Parallel()

	a := &model.PatternOccurrence{Name: "first"}
	b := &model.PatternOccurrence{Name: "second"}

	if Fingerprint(a) != Fingerprint(b) {
		t.Error("all-empty occurrences must collapse to the canonical empty key")
	}
}

// TestFingerprintEmptyFieldOmission tests that an empty field hashes the
// same as an absent one, and that empty fields never shadow set ones.
func TestFingerprintEmptyFieldOmission(t *testing.T) {
	t.Parallel()

	withEmpty := &model.PatternOccurrence{
		Type:     model.PatternTypeHeader,
		Location: "x-powered-by",
		Value:    "",
		Selector: "",
	}
	minimal := &model.PatternOccurrence{
		Type:     model.PatternTypeHeader,
		Location: "x-powered-by",
	}

	if Fingerprint(withEmpty) != Fingerprint(minimal) {
		t.Error("explicitly empty fields must hash the same as absent fields")
	}
}

// TestFingerprintRandomizedTuples tests the equality property over random
// tuples: keys are equal iff the normalized identity tuples are equal.
func TestFingerprintRandomizedTuples(t *testing.T) {
	t.Parallel()

	// Fixed seed keeps the test reproducible.
	rng := rand.New(rand.NewSource(42))

	types := []model.PatternType{
		model.PatternTypeUnknown, model.PatternTypeMeta, model.PatternTypeJavaScript,
		model.PatternTypeCSS, model.PatternTypeStructure, model.PatternTypeHeader,
	}
	values := []string{"", "WordPress", "wp-content", strings.Repeat("x", 150)}
	locations := []string{"", "head", "body", "x-generator"}
	qualifiers := []string{"", "meta", "src"}

	random := func() model.PatternOccurrence {
		return model.PatternOccurrence{
			Type:      types[rng.Intn(len(types))],
			Location:  locations[rng.Intn(len(locations))],
			Value:     values[rng.Intn(len(values))],
			Selector:  qualifiers[rng.Intn(len(qualifiers))],
			Attribute: qualifiers[rng.Intn(len(qualifiers))],
		}
	}

	normalize := func(o model.PatternOccurrence) [5]string {
		typ := o.Type.String()
		if o.Type == model.PatternTypeUnknown {
			typ = ""
		}
		val := o.Value
		if len(val) > ValuePrefixLength {
			val = val[:ValuePrefixLength]
		}
		return [5]string{typ, o.Location, val, o.Selector, o.Attribute}
	}

	for i := 0; i < 500; i++ {
		a, b := random(), random()
		sameKey := Fingerprint(&a) == Fingerprint(&b)
		sameTuple := normalize(a) == normalize(b)
		if sameKey != sameTuple {
			t.Fatalf("key equality %v but tuple equality %v for %+v vs %+v",
				sameKey, sameTuple, a, b)
		}
	}
}
