package service

import "context"

// SourcePage is a fetched mention source, kept as raw bytes plus the
// content type so verification can pick the right backlink strategy.
type SourcePage struct {
	URL         string
	ContentType string
	Body        []byte
}

// MentionClient performs the network legs of the webmention pipeline. All
// calls are time-bounded by the implementation; exceeding the bound is a
// transport failure.
type MentionClient interface {
	// DiscoverEndpoint finds the webmention endpoint advertised by target,
	// first in the Link response header, then in the HTML body. An empty
	// string with a nil error means the target does not support
	// webmentions, which is not a transport failure.
	DiscoverEndpoint(ctx context.Context, target string) (string, error)

	// Deliver posts source/target (and optional vouch) to the endpoint.
	// Transport failures are retried a bounded number of times with backoff
	// before being returned.
	Deliver(ctx context.Context, endpoint, source, target, vouch string) error

	// FetchSource retrieves the source page for inbound verification.
	FetchSource(ctx context.Context, source string) (*SourcePage, error)

	// LinksBack reports whether the fetched source page contains a link to
	// target. HTML pages are parsed; JSON and plain text are searched for
	// the target URL verbatim.
	LinksBack(page *SourcePage, target string) bool

	// ExtractLinks returns the absolute URLs linked from an HTML fragment,
	// resolved against base. Used to pick outbound mention targets.
	ExtractLinks(base, htmlFragment string) []string
}
