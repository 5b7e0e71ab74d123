package verifier

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/patternqa/patternqa/internal/model"
)

// matchMeta verifies a meta tag pattern against the page markup.
//
// Generator claims get a structural check: the value must appear in the
// content of an actual <meta name="generator"> tag, not merely anywhere
// in the page. Other meta claims match if any meta tag's attributes
// contain the value.
func matchMeta(evidence *model.EvidenceBundle, occ *model.PatternOccurrence) bool {
	if evidence.HTML == "" {
		return false
	}

	metas := collectMetaTags(evidence.HTML)
	if strings.Contains(strings.ToLower(occ.Name), "generator") {
		value := strings.ToLower(occ.Value)
		for _, meta := range metas {
			if !strings.EqualFold(attrValue(meta, "name"), "generator") {
				continue
			}
			if strings.Contains(strings.ToLower(attrValue(meta, "content")), value) {
				return true
			}
		}
		return false
	}

	value := strings.ToLower(occ.Value)
	for _, meta := range metas {
		var sb strings.Builder
		for _, attr := range meta.Attr {
			sb.WriteString(attr.Key)
			sb.WriteString("=\"")
			sb.WriteString(attr.Val)
			sb.WriteString("\" ")
		}
		if strings.Contains(strings.ToLower(sb.String()), value) {
			return true
		}
	}
	return false
}

// collectMetaTags parses the markup and returns every meta element.
// The parser is tolerant of broken markup, which collected pages
// regularly are; an unparsable document just yields no tags.
func collectMetaTags(markup string) []*html.Node {
	doc, err := html.Parse(strings.NewReader(markup))
	if err != nil {
		return nil
	}

	var metas []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.DataAtom == atom.Meta {
			metas = append(metas, n)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return metas
}

// attrValue returns the named attribute's value, empty when absent.
func attrValue(n *html.Node, key string) string {
	for _, attr := range n.Attr {
		if strings.EqualFold(attr.Key, key) {
			return attr.Val
		}
	}
	return ""
}
