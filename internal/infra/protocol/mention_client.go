package protocol

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"plume/config"
	domainerrors "plume/internal/domain/errors"
	"plume/internal/domain/service"
	"plume/internal/errors"

	"github.com/cenkalti/backoff/v4"
	"golang.org/x/net/html"
)

const (
	maxSourceBodyBytes = 2 << 20 // 2 MiB is plenty for any sane page
	userAgent          = "plume/1.0 (webmention)"
)

// webMentionClient implements the domain MentionClient interface over HTTP.
type webMentionClient struct {
	client *http.Client
	cfg    *config.Config
	logger *slog.Logger
}

// NewMentionClient is the constructor for webMentionClient.
func NewMentionClient(cfg *config.Config, logger *slog.Logger) service.MentionClient {
	return &webMentionClient{
		client: &http.Client{Timeout: cfg.WebMention.FetchTimeout},
		cfg:    cfg,
		logger: logger,
	}
}

// DiscoverEndpoint finds the webmention endpoint advertised by target. The
// Link response header is checked first via a HEAD request; when absent the
// body is fetched and scanned for <link>/<a> rel=webmention, in document
// order. Relative endpoints resolve against the final response URL.
func (c *webMentionClient) DiscoverEndpoint(ctx context.Context, target string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, target, nil)
	if err != nil {
		return "", errors.Wrap(err, "failed to build discovery request")
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", domainerrors.ErrTransport.WrapMessage(err.Error())
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()

	finalURL := target
	if resp.Request != nil && resp.Request.URL != nil {
		finalURL = resp.Request.URL.String()
	}

	for _, header := range resp.Header.Values("Link") {
		if endpoint, found := parseLinkHeader(header, "webmention"); found {
			return resolveRef(finalURL, endpoint), nil
		}
	}

	return c.discoverInBody(ctx, target)
}

func (c *webMentionClient) discoverInBody(ctx context.Context, target string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return "", errors.Wrap(err, "failed to build discovery request")
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", domainerrors.ErrTransport.WrapMessage(err.Error())
	}
	defer resp.Body.Close()

	finalURL := target
	if resp.Request != nil && resp.Request.URL != nil {
		finalURL = resp.Request.URL.String()
	}

	for _, header := range resp.Header.Values("Link") {
		if endpoint, found := parseLinkHeader(header, "webmention"); found {
			return resolveRef(finalURL, endpoint), nil
		}
	}

	if !strings.Contains(resp.Header.Get("Content-Type"), "html") {
		return "", nil
	}

	doc, err := html.Parse(io.LimitReader(resp.Body, maxSourceBodyBytes))
	if err != nil {
		return "", errors.Wrap(err, "failed to parse discovery body")
	}

	href, found := findRelLink(doc, "webmention")
	if !found {
		return "", nil
	}

	// An empty href means the page itself accepts mentions.
	return resolveRef(finalURL, href), nil
}

// Deliver posts the mention to the endpoint, retrying transport failures and
// 5xx responses with exponential backoff up to the configured attempt bound.
// 4xx responses are the endpoint's verdict and are never retried.
func (c *webMentionClient) Deliver(ctx context.Context, endpoint, source, target, vouch string) error {
	form := url.Values{}
	form.Set("source", source)
	form.Set("target", target)
	if vouch != "" {
		form.Set("vouch", vouch)
	}
	body := form.Encode()

	operation := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(body))
		if err != nil {
			return backoff.Permanent(errors.Wrap(err, "failed to build delivery request"))
		}
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		req.Header.Set("User-Agent", userAgent)

		resp, err := c.client.Do(req)
		if err != nil {
			return domainerrors.ErrTransport.WrapMessage(err.Error())
		}
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()

		switch {
		case resp.StatusCode >= 200 && resp.StatusCode < 300:
			return nil
		case resp.StatusCode >= 500:
			return domainerrors.ErrTransport.WrapMessage(fmt.Sprintf("endpoint returned %d", resp.StatusCode))
		default:
			return backoff.Permanent(domainerrors.ErrVerificationFailed.WrapMessage(fmt.Sprintf("endpoint rejected mention with %d", resp.StatusCode)))
		}
	}

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = c.cfg.WebMention.DeliveryBackoff
	retries := uint64(c.cfg.WebMention.DeliveryRetries) //nolint:gosec // bounded by config validation

	err := backoff.Retry(operation, backoff.WithContext(backoff.WithMaxRetries(policy, retries), ctx))
	if err != nil {
		c.logger.LogAttrs(ctx, slog.LevelWarn, "webmention delivery failed",
			slog.String("endpoint", endpoint),
			slog.String("target", target),
			slog.String("error", err.Error()),
		)
	}

	return err
}

// FetchSource retrieves the source page for inbound verification.
func (c *webMentionClient) FetchSource(ctx context.Context, source string) (*service.SourcePage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, source, nil)
	if err != nil {
		return nil, errors.Wrap(err, "failed to build source request")
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html, application/json, text/plain")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, domainerrors.ErrTransport.WrapMessage(err.Error())
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, domainerrors.ErrVerificationFailed.WrapMessage(fmt.Sprintf("source returned %d", resp.StatusCode))
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxSourceBodyBytes))
	if err != nil {
		return nil, domainerrors.ErrTransport.WrapMessage(err.Error())
	}

	finalURL := source
	if resp.Request != nil && resp.Request.URL != nil {
		finalURL = resp.Request.URL.String()
	}

	return &service.SourcePage{
		URL:         finalURL,
		ContentType: resp.Header.Get("Content-Type"),
		Body:        body,
	}, nil
}

// LinksBack reports whether the fetched page links to target. HTML bodies
// are parsed and every href/src resolved before comparison; JSON and plain
// text fall back to a substring search.
func (c *webMentionClient) LinksBack(page *service.SourcePage, target string) bool {
	if page == nil {
		return false
	}

	if strings.Contains(page.ContentType, "html") {
		doc, err := html.Parse(strings.NewReader(string(page.Body)))
		if err != nil {
			return false
		}
		for _, ref := range collectLinkTargets(doc) {
			if sameURL(resolveRef(page.URL, ref), target) {
				return true
			}
		}

		return false
	}

	return strings.Contains(string(page.Body), target)
}

// ExtractLinks returns the absolute http(s) URLs linked from an HTML
// fragment, resolved against base, in document order without duplicates.
func (c *webMentionClient) ExtractLinks(base, htmlFragment string) []string {
	doc, err := html.Parse(strings.NewReader(htmlFragment))
	if err != nil {
		return nil
	}

	seen := make(map[string]struct{})
	var links []string
	for _, ref := range collectLinkTargets(doc) {
		resolved := resolveRef(base, ref)
		parsed, err := url.Parse(resolved)
		if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") {
			continue
		}
		if _, ok := seen[resolved]; ok {
			continue
		}
		seen[resolved] = struct{}{}
		links = append(links, resolved)
	}

	return links
}
