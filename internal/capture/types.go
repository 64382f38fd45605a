// Package capture holds the canonical capture record and the pure
// transformations over it: URL classification, normalization of raw fetch
// results, summarizing, scoring, and labeling. Nothing in this package
// performs I/O.
package capture

import "errors"

// ErrUnsupportedURL marks URLs outside the supported set; the pipeline must
// not attempt a fetch for them.
var ErrUnsupportedURL = errors.New("unsupported url")

// SourceKind identifies how a URL's content is fetched. Decided once by
// Classify, never re-derived downstream.
type SourceKind string

const (
	SourceTweet SourceKind = "tweet"
	SourceVideo SourceKind = "video"
	SourceWeb   SourceKind = "web"
)

// Transcript acquisition methods recorded by the video adapter.
const (
	TranscriptSubtitles   = "subtitles"
	TranscriptSpeech      = "speech-to-text"
	TranscriptDescription = "description-only"
)

// maxContentLen bounds the persisted content body. Applied once, in Normalize.
const maxContentLen = 20000

// Capture is the unified, source-agnostic record for one fetched URL.
type Capture struct {
	URL         string
	Kind        SourceKind
	Title       string
	Author      string
	Content     string
	PublishedAt string
	Stats       map[string]int64
	Extra       map[string]string
}

// Stat returns a named counter, zero when absent.
func (c *Capture) Stat(name string) int64 {
	if c.Stats == nil {
		return 0
	}
	return c.Stats[name]
}

// RawResult is the intermediate record an adapter hands to Normalize.
// Exactly one variant is set, matching Kind; the adapter that produced it
// must not reuse it afterwards.
type RawResult struct {
	Kind  SourceKind
	Tweet *TweetData
	Video *VideoData
	Web   *WebData
}

// TweetData is the tweet adapter's raw record.
type TweetData struct {
	Handle      string
	Name        string
	Text        string
	PublishedAt string
	Views       int64
	Likes       int64
	Retweets    int64
	Bookmarks   int64
	Replies     int64
	QuoteHandle string
	QuoteText   string
	MediaURLs   []string
}

// VideoData is the video adapter's raw record. Transcript carries the text of
// whichever acquisition tier succeeded; Method says which one that was.
type VideoData struct {
	Title        string
	Channel      string
	Uploader     string
	Description  string
	UploadDate   string
	DurationSecs int64
	Views        int64
	Likes        int64
	Comments     int64
	Tags         []string
	Chapters     []Chapter
	Transcript   string
	Method       string
}

// Chapter is one named offset within a video.
type Chapter struct {
	Title     string
	StartSecs float64
}

// WebData is the generic web adapter's raw record.
type WebData struct {
	FinalURL    string
	Title       string
	Author      string
	Domain      string
	PublishedAt string
	Text        string
}
