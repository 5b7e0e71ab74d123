package verifier

import (
	"strings"

	"github.com/patternqa/patternqa/internal/model"
)

// matchScript verifies a JavaScript pattern: the value must appear in an
// inline script body, an external script URL, or anywhere in the page
// markup. The markup fallback covers script content the collector did not
// extract into the script lists.
func matchScript(evidence *model.EvidenceBundle, occ *model.PatternOccurrence) bool {
	if containsAny(evidence.InlineScripts, occ.Value) {
		return true
	}
	if containsAny(evidence.ExternalScripts, occ.Value) {
		return true
	}
	return evidence.HTML != "" && strings.Contains(evidence.HTML, occ.Value)
}

// matchStyle verifies a CSS pattern: inline style bodies, external
// stylesheet URLs, or class names mentioned in the markup.
func matchStyle(evidence *model.EvidenceBundle, occ *model.PatternOccurrence) bool {
	if containsAny(evidence.InlineStyles, occ.Value) {
		return true
	}
	if containsAny(evidence.ExternalStyles, occ.Value) {
		return true
	}
	return evidence.HTML != "" && strings.Contains(evidence.HTML, occ.Value)
}

// matchStructure verifies a URL/file structure pattern against the
// collected URLs and the external resource URLs.
func matchStructure(evidence *model.EvidenceBundle, occ *model.PatternOccurrence) bool {
	if containsAny(evidence.URLs, occ.Value) {
		return true
	}
	if containsAny(evidence.ExternalScripts, occ.Value) {
		return true
	}
	return containsAny(evidence.ExternalStyles, occ.Value)
}

// matchHeader verifies a header pattern: the pattern name must appear in
// a header name, or the value in a header value. Header names compare
// case-insensitively; values keep their case.
func matchHeader(evidence *model.EvidenceBundle, occ *model.PatternOccurrence) bool {
	if len(evidence.Headers) == 0 {
		return false
	}

	name := strings.ToLower(occ.Name)
	for headerName, headerValue := range evidence.Headers {
		if strings.Contains(strings.ToLower(headerName), name) {
			return true
		}
		if strings.Contains(headerValue, occ.Value) {
			return true
		}
	}
	return false
}

// containsAny reports whether value is a substring of any entry.
func containsAny(entries []string, value string) bool {
	for _, entry := range entries {
		if strings.Contains(entry, value) {
			return true
		}
	}
	return false
}
