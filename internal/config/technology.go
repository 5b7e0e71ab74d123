package config

import "strings"

// TechnologyConfig holds per-technology settings from the config file.
type TechnologyConfig struct {
	// Reference is the path to the technology's reference pattern set.
	Reference string `yaml:"reference,omitempty"`

	// Aliases are alternative detector labels for this technology
	// (e.g. "wp" for wordpress). Matching is case-insensitive.
	Aliases []string `yaml:"aliases,omitempty"`
}

// File represents the structure of the .patternqa configuration file.
type File struct {
	// Technologies maps canonical technology names to their settings.
	// Keys should be lowercase (e.g. "wordpress").
	Technologies map[string]TechnologyConfig `yaml:"technologies,omitempty"`
}

// ReferenceFor returns the reference file path configured for the named
// technology, or empty if none is configured. The lookup is
// case-insensitive and follows aliases.
func (f *File) ReferenceFor(technology string) string {
	technology = strings.ToLower(technology)

	if tc, ok := f.Technologies[technology]; ok {
		return tc.Reference
	}

	for _, tc := range f.Technologies {
		for _, alias := range tc.Aliases {
			if strings.EqualFold(alias, technology) {
				return tc.Reference
			}
		}
	}
	return ""
}

// AliasMap builds the lowercase alias to canonical name table used to
// normalize detector labels at load time.
func (f *File) AliasMap() map[string]string {
	aliases := make(map[string]string)
	for canonical, tc := range f.Technologies {
		canonical = strings.ToLower(canonical)
		for _, alias := range tc.Aliases {
			aliases[strings.ToLower(alias)] = canonical
		}
	}
	return aliases
}
