package loader

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/patternqa/patternqa/internal/model"
)

// referenceFile mirrors the on-disk reference layout. Some reference files
// predate the technology field; for those the technology is inferred from
// the file name stem.
type referenceFile struct {
	Technology            string   `json:"technology"`
	CMS                   string   `json:"cms"`
	RequiredPatterns      []string `json:"required_patterns"`
	DiscriminatorPatterns []string `json:"discriminator_patterns"`
}

// LoadReference reads a reference pattern set from path.
//
// An unreadable or unparsable file is an error. A file that parses but
// defines no required patterns returns the set together with
// ErrEmptyReference (wrapped) so callers can surface it as a configuration
// problem instead of evaluating against nothing.
func LoadReference(path string) (*model.ReferencePatternSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("loader: read reference %s: %w", path, err)
	}

	var file referenceFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("loader: parse reference %s: %w", path, err)
	}

	technology := file.Technology
	if technology == "" {
		technology = file.CMS
	}
	if technology == "" {
		technology = technologyFromFileName(path)
	}

	set := &model.ReferencePatternSet{
		Technology:            strings.ToLower(technology),
		RequiredPatterns:      file.RequiredPatterns,
		DiscriminatorPatterns: file.DiscriminatorPatterns,
	}

	if set.IsEmpty() {
		return set, fmt.Errorf("%w: %s", ErrEmptyReference, path)
	}

	return set, nil
}

// technologyFromFileName derives a technology label from a reference file
// name such as "wordpress-reference.json" or "drupal_required.json".
func technologyFromFileName(path string) string {
	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	stem = strings.ToLower(stem)
	for _, suffix := range []string{"-reference", "_reference", "-required", "_required", "-patterns", "_patterns"} {
		stem = strings.TrimSuffix(stem, suffix)
	}
	return stem
}
