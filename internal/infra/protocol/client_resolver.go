package protocol

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"plume/internal/domain/service"
	"plume/internal/errors"

	"golang.org/x/net/html"
)

const clientResolveTimeout = 10 * time.Second

// httpClientResolver implements the domain ClientResolver interface by
// fetching the client_id URL and scraping its declared metadata.
type httpClientResolver struct {
	client *http.Client
	logger *slog.Logger
}

// NewClientResolver is the constructor for httpClientResolver.
func NewClientResolver(logger *slog.Logger) service.ClientResolver {
	return &httpClientResolver{
		client: &http.Client{Timeout: clientResolveTimeout},
		logger: logger,
	}
}

// Resolve fetches the client_id URL and extracts the application name and
// declared redirect URIs. Fetch failures yield empty metadata, not errors:
// same-origin redirect URIs must still be honored for unreachable clients.
func (r *httpClientResolver) Resolve(ctx context.Context, clientID string) (*service.ClientMetadata, error) {
	meta := &service.ClientMetadata{ClientID: clientID}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, clientID, nil)
	if err != nil {
		return nil, errors.Wrap(err, "failed to build client request")
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := r.client.Do(req)
	if err != nil {
		r.logger.LogAttrs(ctx, slog.LevelDebug, "client metadata fetch failed",
			slog.String("clientId", clientID),
			slog.String("error", err.Error()),
		)

		return meta, nil
	}
	defer resp.Body.Close()

	for _, header := range resp.Header.Values("Link") {
		if uri, found := parseLinkHeader(header, "redirect_uri"); found && uri != "" {
			meta.RedirectURIs = append(meta.RedirectURIs, resolveRef(clientID, uri))
		}
	}

	if !strings.Contains(resp.Header.Get("Content-Type"), "html") {
		return meta, nil
	}

	doc, err := html.Parse(io.LimitReader(resp.Body, maxSourceBodyBytes))
	if err != nil {
		return meta, nil
	}

	r.scrapeClientPage(doc, clientID, meta)

	return meta, nil
}

// scrapeClientPage walks the client page for <link rel="redirect_uri">
// declarations and an h-app/h-x-app name.
func (r *httpClientResolver) scrapeClientPage(doc *html.Node, clientID string, meta *service.ClientMetadata) {
	var walk func(n *html.Node, inApp bool)
	walk = func(n *html.Node, inApp bool) {
		if n.Type == html.ElementNode {
			var rel, href, class string
			for _, attr := range n.Attr {
				switch attr.Key {
				case "rel":
					rel = attr.Val
				case "href":
					href = attr.Val
				case "class":
					class = attr.Val
				}
			}
			if hasRelValue(rel, "redirect_uri") && href != "" {
				meta.RedirectURIs = append(meta.RedirectURIs, resolveRef(clientID, href))
			}
			if strings.Contains(class, "h-app") || strings.Contains(class, "h-x-app") {
				inApp = true
			}
			if inApp && meta.Name == "" && strings.Contains(class, "p-name") {
				meta.Name = strings.TrimSpace(textContent(n))
			}
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child, inApp)
		}
	}
	walk(doc, false)
}

func textContent(n *html.Node) string {
	if n.Type == html.TextNode {
		return n.Data
	}

	var sb strings.Builder
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		sb.WriteString(textContent(child))
	}

	return sb.String()
}
