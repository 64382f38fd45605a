package capture

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
)

const (
	maxSummaryLen   = 600
	tweetExcerptLen = 240
	quoteExcerptLen = 150
	bodyExcerptLen  = 400
)

// Summarize builds the bounded synopsis stored alongside a capture. Pure and
// deterministic: the same Capture always yields the same summary. The overall
// cap is applied last, whatever the source kind.
func Summarize(c *Capture) string {
	var lines []string
	switch c.Kind {
	case SourceTweet:
		lines = tweetSummary(c)
	case SourceVideo:
		lines = videoSummary(c)
	default:
		lines = webSummary(c)
	}
	return truncate(strings.TrimSpace(strings.Join(lines, "\n")), maxSummaryLen)
}

func tweetSummary(c *Capture) []string {
	var lines []string
	head := c.Author
	if c.PublishedAt != "" {
		if head != "" {
			head += " · " + c.PublishedAt
		} else {
			head = c.PublishedAt
		}
	}
	if head != "" {
		lines = append(lines, head)
	}

	body := c.Content
	if i := strings.Index(body, quoteMarker); i >= 0 {
		body = body[:i]
	}
	if body = excerpt(body, tweetExcerptLen); body != "" {
		lines = append(lines, body)
	}
	if stats := statsLine(c); stats != "" {
		lines = append(lines, stats)
	}
	if q := c.Extra["quote_text"]; q != "" {
		quote := "Quoting"
		if h := c.Extra["quote_handle"]; h != "" {
			quote += " @" + h
		}
		lines = append(lines, quote+": "+excerpt(q, quoteExcerptLen))
	}
	return lines
}

func videoSummary(c *Capture) []string {
	var head []string
	if c.Author != "" {
		head = append(head, c.Author)
	}
	if secs, _ := strconv.ParseInt(c.Extra["duration_secs"], 10, 64); secs >= 60 {
		head = append(head, fmt.Sprintf("%d min", secs/60))
	}
	if m := c.Extra["transcript_method"]; m != "" {
		head = append(head, m)
	}

	var lines []string
	if len(head) > 0 {
		lines = append(lines, strings.Join(head, " · "))
	}
	if body := excerpt(c.Content, bodyExcerptLen); body != "" {
		lines = append(lines, body)
	}
	return lines
}

func webSummary(c *Capture) []string {
	domain := c.Extra["domain"]
	head := c.Author
	switch {
	case head == "":
		head = domain
	case domain != "" && head != domain:
		head += " · " + domain
	}

	var lines []string
	if head != "" {
		lines = append(lines, head)
	}
	if body := excerpt(c.Content, bodyExcerptLen); body != "" {
		lines = append(lines, body)
	}
	return lines
}

// statsLine renders the non-zero engagement counters in display order with
// thousands separators.
func statsLine(c *Capture) string {
	parts := make([]string, 0, 4)
	for _, s := range [...]string{"views", "likes", "retweets", "bookmarks"} {
		if v := c.Stat(s); v > 0 {
			parts = append(parts, humanize.Comma(v)+" "+s)
		}
	}
	return strings.Join(parts, " · ")
}

// excerpt flattens whitespace and bounds the result for display.
func excerpt(s string, n int) string {
	return truncate(flatten(s), n)
}
