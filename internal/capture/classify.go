package capture

import (
	"fmt"
	"net/url"
	"strings"
)

// Classify maps a URL to its SourceKind. Matching priority: tweet domains,
// then video domains, then any other http(s) URL as generic web. Shortener
// links (t.co and friends) deliberately fall through to the web kind, which
// follows redirects; the tweet adapter needs a numeric status id in the URL.
func Classify(rawURL string) (SourceKind, error) {
	trimmed := strings.TrimSpace(rawURL)
	lower := strings.ToLower(trimmed)
	if !strings.HasPrefix(lower, "http://") && !strings.HasPrefix(lower, "https://") {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedURL, rawURL)
	}
	u, err := url.Parse(trimmed)
	if err != nil || u.Hostname() == "" {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedURL, rawURL)
	}

	host := strings.ToLower(u.Hostname())
	switch {
	case hostIs(host, "twitter.com"), hostIs(host, "x.com"):
		return SourceTweet, nil
	case hostIs(host, "youtu.be"):
		return SourceVideo, nil
	case hostIs(host, "youtube.com") && videoPath(u.Path):
		return SourceVideo, nil
	}
	return SourceWeb, nil
}

func hostIs(host, domain string) bool {
	return host == domain || strings.HasSuffix(host, "."+domain)
}

func videoPath(path string) bool {
	return path == "/watch" || strings.HasPrefix(path, "/shorts/") || strings.HasPrefix(path, "/live/")
}
