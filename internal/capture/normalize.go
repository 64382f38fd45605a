package capture

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

const (
	tweetTitleLen = 55
	videoTitleLen = 50
	webTitleLen   = 60

	// placeholderHandle is what reader-mirror fetch paths report as the
	// author for /i/status/ redirect URLs instead of the real handle.
	placeholderHandle = "i"

	// quoteMarker separates the tweet body from an appended quoted-tweet
	// block inside Content. Summarize relies on it to recover the body.
	quoteMarker = "\n\nQuoting"
)

// trailingAttribution matches the "(@handle) Jan 1, 2024" credit that reader
// mirrors append at the very end of tweet text.
var trailingAttribution = regexp.MustCompile(`@(\w+)\)\s*[A-Za-z]+ \d{1,2}, \d{4}\s*$`)

// Normalize converts an adapter's raw record into the canonical Capture.
// The content size cap is applied here exactly once; downstream stages must
// not truncate Content again.
func Normalize(raw *RawResult, rawURL string) (*Capture, error) {
	if raw == nil {
		return nil, fmt.Errorf("normalize: nil raw result")
	}

	var c *Capture
	switch raw.Kind {
	case SourceTweet:
		if raw.Tweet == nil {
			return nil, fmt.Errorf("normalize: tweet result without tweet data")
		}
		c = normalizeTweet(raw.Tweet)
	case SourceVideo:
		if raw.Video == nil {
			return nil, fmt.Errorf("normalize: video result without video data")
		}
		c = normalizeVideo(raw.Video)
	case SourceWeb:
		if raw.Web == nil {
			return nil, fmt.Errorf("normalize: web result without web data")
		}
		c = normalizeWeb(raw.Web, rawURL)
	default:
		return nil, fmt.Errorf("normalize: unknown source kind %q", raw.Kind)
	}

	c.URL = rawURL
	c.Kind = raw.Kind
	c.Content = truncate(c.Content, maxContentLen)
	if c.Stats == nil {
		c.Stats = map[string]int64{}
	}
	if c.Extra == nil {
		c.Extra = map[string]string{}
	}
	return c, nil
}

func normalizeTweet(t *TweetData) *Capture {
	author := resolveTweetAuthor(t.Handle, t.Text)

	content := strings.TrimSpace(t.Text)
	if t.QuoteText != "" {
		quote := quoteMarker
		if h := strings.TrimPrefix(t.QuoteHandle, "@"); h != "" {
			quote += " @" + h
		}
		content += quote + ": " + t.QuoteText
	}

	title := truncate(flatten(t.Text), tweetTitleLen)
	if h := strings.TrimPrefix(author, "@"); h != "" {
		title = strings.TrimSpace("[@" + h + "] " + title)
	}

	extra := map[string]string{}
	if t.QuoteHandle != "" {
		extra["quote_handle"] = strings.TrimPrefix(t.QuoteHandle, "@")
	}
	if t.QuoteText != "" {
		extra["quote_text"] = t.QuoteText
	}
	if len(t.MediaURLs) > 0 {
		extra["media_urls"] = strings.Join(t.MediaURLs, "\n")
	}

	return &Capture{
		Title:       title,
		Author:      author,
		Content:     content,
		PublishedAt: coerceDate(t.PublishedAt),
		Stats: map[string]int64{
			"views":     t.Views,
			"likes":     t.Likes,
			"retweets":  t.Retweets,
			"bookmarks": t.Bookmarks,
			"replies":   t.Replies,
		},
		Extra: extra,
	}
}

// resolveTweetAuthor corrects the placeholder handle reported for redirect
// URLs by scanning the trailing attribution of the raw text. The placeholder
// stands when nothing is recoverable.
func resolveTweetAuthor(handle, text string) string {
	h := strings.TrimPrefix(strings.TrimSpace(handle), "@")
	if h != "" && h != placeholderHandle {
		return "@" + h
	}
	if m := trailingAttribution.FindStringSubmatch(strings.TrimSpace(text)); m != nil {
		return "@" + m[1]
	}
	if h == "" {
		return ""
	}
	return "@" + h
}

func normalizeVideo(v *VideoData) *Capture {
	channel := v.Channel
	if channel == "" {
		channel = v.Uploader
	}

	var title string
	if channel != "" {
		title = "[" + channel + "] " + truncate(flatten(v.Title), videoTitleLen)
	} else {
		title = truncate(flatten(v.Title), webTitleLen)
	}

	body := v.Transcript
	if body == "" {
		body = v.Description
	}
	var b strings.Builder
	b.WriteString(strings.TrimSpace(body))
	if len(v.Chapters) > 0 {
		b.WriteString("\n\nChapters:")
		for _, ch := range v.Chapters {
			b.WriteString(fmt.Sprintf("\n- [%s] %s", formatOffset(ch.StartSecs), ch.Title))
		}
	}

	extra := map[string]string{
		"transcript_method": v.Method,
	}
	if v.DurationSecs > 0 {
		extra["duration_secs"] = strconv.FormatInt(v.DurationSecs, 10)
	}
	if len(v.Tags) > 0 {
		extra["tags"] = strings.Join(v.Tags, ", ")
	}

	return &Capture{
		Title:       strings.TrimSpace(title),
		Author:      channel,
		Content:     b.String(),
		PublishedAt: coerceDate(v.UploadDate),
		Stats: map[string]int64{
			"views":    v.Views,
			"likes":    v.Likes,
			"comments": v.Comments,
		},
		Extra: extra,
	}
}

func normalizeWeb(w *WebData, rawURL string) *Capture {
	title := truncate(flatten(w.Title), webTitleLen)
	if title == "" {
		title = rawURL
	}
	author := w.Author
	if author == "" {
		author = w.Domain
	}

	extra := map[string]string{}
	if w.Domain != "" {
		extra["domain"] = w.Domain
	}
	if w.FinalURL != "" && w.FinalURL != rawURL {
		extra["final_url"] = w.FinalURL
	}

	return &Capture{
		Title:       title,
		Author:      author,
		Content:     strings.TrimSpace(w.Text),
		PublishedAt: coerceDate(w.PublishedAt),
		Stats:       map[string]int64{},
		Extra:       extra,
	}
}

// coerceDate reduces the date formats adapters report (compact YYYYMMDD,
// ISO prefixes, Twitter's legacy created_at) to YYYY-MM-DD.
func coerceDate(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	if len(s) == 8 && allDigits(s) {
		return s[:4] + "-" + s[4:6] + "-" + s[6:]
	}
	if len(s) >= 10 {
		if _, err := time.Parse("2006-01-02", s[:10]); err == nil {
			return s[:10]
		}
	}
	if t, err := time.Parse(time.RubyDate, s); err == nil {
		return t.UTC().Format("2006-01-02")
	}
	return ""
}

func allDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}

func formatOffset(secs float64) string {
	total := int(secs)
	h := total / 3600
	m := (total % 3600) / 60
	s := total % 60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}

// truncate cuts s to at most n runes. Multi-byte text is never split
// mid-character.
func truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}

// flatten collapses all whitespace runs to single spaces.
func flatten(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
