package model

import (
	"encoding/json"
	"strings"
)

// EvidenceBundle is the raw collected material for one site: the HTML
// document, the script and stylesheet artifacts, the URLs discovered while
// crawling, and the HTTP response headers. It is read-only input for the
// verifier; the evaluation core never mutates it.
//
// Design decision: We keep both inline bodies and external URLs as plain
// string slices rather than structured elements because the verifier only
// ever does substring matching against them. The collector already did the
// structural extraction; re-modelling it here would add nothing.
type EvidenceBundle struct {
	// HTML is the raw page markup.
	HTML string `json:"html,omitempty"`

	// InlineScripts contains the bodies of inline <script> blocks.
	InlineScripts []string `json:"inline_scripts,omitempty"`

	// ExternalScripts contains the src URLs of external scripts.
	ExternalScripts []string `json:"external_scripts,omitempty"`

	// InlineStyles contains the bodies of inline <style> blocks.
	InlineStyles []string `json:"inline_styles,omitempty"`

	// ExternalStyles contains the href URLs of external stylesheets.
	ExternalStyles []string `json:"external_styles,omitempty"`

	// URLs contains all URLs collected from the site (links, assets, API paths).
	URLs []string `json:"urls,omitempty"`

	// Headers maps HTTP response header names to their values.
	// Names are stored as collected; lookups must be case-insensitive.
	Headers map[string]string `json:"headers,omitempty"`
}

// GetHeader returns the value of the named header using a case-insensitive
// lookup, and whether it was present. HTTP header names are case-insensitive
// but stored records preserve whatever casing the collector saw.
func (e *EvidenceBundle) GetHeader(name string) (string, bool) {
	for k, v := range e.Headers {
		if strings.EqualFold(k, name) {
			return v, true
		}
	}
	return "", false
}

// Flatten serializes the whole bundle into one searchable string.
// This backs the permissive fallback used when a pattern carries no usable
// type information: recall over precision. The JSON encoding doubles as a
// canonical serialization so header names and values both become searchable.
func (e *EvidenceBundle) Flatten() string {
	data, err := json.Marshal(e)
	if err != nil {
		// Marshal of a struct of strings and string maps cannot fail in
		// practice; fall back to the HTML alone if it somehow does.
		return e.HTML
	}
	return string(data)
}

// IsEmpty returns true if the bundle carries no evidence at all.
func (e *EvidenceBundle) IsEmpty() bool {
	return e.HTML == "" &&
		len(e.InlineScripts) == 0 && len(e.ExternalScripts) == 0 &&
		len(e.InlineStyles) == 0 && len(e.ExternalStyles) == 0 &&
		len(e.URLs) == 0 && len(e.Headers) == 0
}
