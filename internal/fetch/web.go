package fetch

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/stellarlinkco/linkclaw/internal/capture"
)

// maxWebTextLen bounds extraction, not storage; pages routinely carry far
// more boilerplate text than is worth keeping.
const maxWebTextLen = 6000

// skipSelectors never contribute readable text.
const skipSelectors = "script, style, nav, header, footer, aside, iframe, noscript, form, svg"

// WebAdapter fetches arbitrary pages and extracts readable text.
type WebAdapter struct {
	Client  *http.Client
	Timeout time.Duration
}

func NewWebAdapter(timeout time.Duration) *WebAdapter {
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	return &WebAdapter{Client: &http.Client{}, Timeout: timeout}
}

func (a *WebAdapter) Kind() capture.SourceKind { return capture.SourceWeb }

func (a *WebAdapter) Fetch(ctx context.Context, rawURL string) (*capture.RawResult, error) {
	ctx, cancel := context.WithTimeout(ctx, a.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build page request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept-Language", "en,zh;q=0.8")

	resp, err := a.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch page: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("fetch page: status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse page: %w", err)
	}

	finalURL := rawURL
	if resp.Request != nil && resp.Request.URL != nil {
		finalURL = resp.Request.URL.String()
	}

	data := &capture.WebData{
		FinalURL:    finalURL,
		Title:       pageTitle(doc),
		Author:      pageAuthor(doc),
		Domain:      domainOf(finalURL),
		PublishedAt: pagePublished(doc),
		Text:        pageText(doc),
	}
	if data.Text == "" && data.Title == "" {
		return nil, fmt.Errorf("%w: no readable text at %s", ErrEmptyResult, rawURL)
	}
	return &capture.RawResult{Kind: capture.SourceWeb, Web: data}, nil
}

func pageTitle(doc *goquery.Document) string {
	if v, ok := doc.Find(`meta[property="og:title"]`).Attr("content"); ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v)
	}
	return strings.TrimSpace(doc.Find("title").First().Text())
}

func pageAuthor(doc *goquery.Document) string {
	if v, ok := doc.Find(`meta[name="author"]`).Attr("content"); ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v)
	}
	// article:author is frequently a profile URL rather than a name.
	if v, ok := doc.Find(`meta[property="article:author"]`).Attr("content"); ok {
		v = strings.TrimSpace(v)
		if v != "" && !strings.HasPrefix(v, "http") {
			return v
		}
	}
	if v := strings.TrimSpace(doc.Find(`a[rel="author"]`).First().Text()); v != "" {
		return v
	}
	return ""
}

func pagePublished(doc *goquery.Document) string {
	if v, ok := doc.Find(`meta[property="article:published_time"]`).Attr("content"); ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v)
	}
	if v, ok := doc.Find("time[datetime]").First().Attr("datetime"); ok {
		return strings.TrimSpace(v)
	}
	return ""
}

// pageText prefers the article element when one exists; otherwise it takes
// the whole body after stripping chrome.
func pageText(doc *goquery.Document) string {
	doc.Find(skipSelectors).Remove()
	sel := doc.Find("article").First()
	if sel.Length() == 0 {
		sel = doc.Find("body").First()
	}
	var text string
	if sel.Length() > 0 {
		text = sel.Text()
	} else {
		text = doc.Text()
	}
	return clip(strings.Join(strings.Fields(text), " "), maxWebTextLen)
}

func domainOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
}
