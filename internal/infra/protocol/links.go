// Package protocol implements the outbound network collaborators of the
// publishing pipelines: endpoint discovery, mention delivery, hub callbacks
// and client metadata resolution.
package protocol

import (
	"net/url"
	"strings"

	"golang.org/x/net/html"
)

// parseLinkHeader extracts the URI of the first link carrying the wanted rel
// from an HTTP Link header value. Multiple links may share one header,
// comma-separated. An empty URI with found=true means the link target is the
// requested resource itself.
func parseLinkHeader(header, wantRel string) (uri string, found bool) {
	for _, part := range strings.Split(header, ",") {
		segments := strings.Split(part, ";")
		if len(segments) < 2 {
			continue
		}

		candidate := strings.TrimSpace(segments[0])
		if !strings.HasPrefix(candidate, "<") || !strings.HasSuffix(candidate, ">") {
			continue
		}
		candidate = strings.Trim(candidate, "<>")

		for _, param := range segments[1:] {
			key, value, ok := strings.Cut(strings.TrimSpace(param), "=")
			if !ok || !strings.EqualFold(strings.TrimSpace(key), "rel") {
				continue
			}
			value = strings.Trim(strings.TrimSpace(value), `"`)
			if hasRelValue(value, wantRel) {
				return candidate, true
			}
		}
	}

	return "", false
}

func hasRelValue(relAttr, want string) bool {
	for _, rel := range strings.Fields(relAttr) {
		if strings.EqualFold(rel, want) {
			return true
		}
	}

	return false
}

// findRelLink walks an HTML document and returns the href of the first
// <link> or <a> element whose rel contains wantRel. An empty href resolves
// to the page URL itself, per the webmention discovery algorithm.
func findRelLink(doc *html.Node, wantRel string) (href string, found bool) {
	var walk func(*html.Node) bool
	walk = func(n *html.Node) bool {
		if n.Type == html.ElementNode && (n.Data == "link" || n.Data == "a") {
			var rel string
			var hrefAttr string
			var hasHref bool
			for _, attr := range n.Attr {
				switch attr.Key {
				case "rel":
					rel = attr.Val
				case "href":
					hrefAttr = attr.Val
					hasHref = true
				}
			}
			if hasRelValue(rel, wantRel) && hasHref {
				href = hrefAttr

				return true
			}
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			if walk(child) {
				return true
			}
		}

		return false
	}

	return href, walk(doc)
}

// collectLinkTargets gathers every href and src attribute in the document.
func collectLinkTargets(doc *html.Node) []string {
	var targets []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			for _, attr := range n.Attr {
				if attr.Key == "href" || attr.Key == "src" {
					targets = append(targets, attr.Val)
				}
			}
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(doc)

	return targets
}

// resolveRef resolves a possibly-relative reference against a base URL.
// Returns the reference unchanged when either side fails to parse.
func resolveRef(base, ref string) string {
	baseURL, err := url.Parse(base)
	if err != nil {
		return ref
	}
	refURL, err := url.Parse(ref)
	if err != nil {
		return ref
	}

	return baseURL.ResolveReference(refURL).String()
}

// sameURL compares two URLs ignoring fragments and trailing slashes.
func sameURL(a, b string) bool {
	return normalizeURL(a) == normalizeURL(b)
}

func normalizeURL(raw string) string {
	parsed, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	parsed.Fragment = ""
	out := parsed.String()

	return strings.TrimRight(out, "/")
}
