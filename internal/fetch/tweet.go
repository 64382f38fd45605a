package fetch

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/stellarlinkco/linkclaw/internal/capture"
)

// DefaultTweetAPIBase is the public FxTwitter endpoint.
const DefaultTweetAPIBase = "https://api.fxtwitter.com"

var statusIDPattern = regexp.MustCompile(`/status(?:es)?/(\d+)`)

// TweetAdapter reads tweets through an FxTwitter-compatible JSON API.
type TweetAdapter struct {
	APIBase string
	Client  *http.Client
	Timeout time.Duration
}

func NewTweetAdapter(apiBase string, timeout time.Duration) *TweetAdapter {
	if apiBase == "" {
		apiBase = DefaultTweetAPIBase
	}
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &TweetAdapter{
		APIBase: strings.TrimRight(apiBase, "/"),
		Client:  &http.Client{},
		Timeout: timeout,
	}
}

func (a *TweetAdapter) Kind() capture.SourceKind { return capture.SourceTweet }

func (a *TweetAdapter) Fetch(ctx context.Context, url string) (*capture.RawResult, error) {
	m := statusIDPattern.FindStringSubmatch(url)
	if m == nil {
		return nil, fmt.Errorf("no status id in %q", url)
	}
	id := m[1]

	ctx, cancel := context.WithTimeout(ctx, a.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.APIBase+"/status/"+id, nil)
	if err != nil {
		return nil, fmt.Errorf("build tweet request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := a.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("tweet api: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("tweet api: status %d for tweet %s", resp.StatusCode, id)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, fmt.Errorf("read tweet response: %w", err)
	}

	var decoded fxResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return nil, fmt.Errorf("decode tweet response: %w", err)
	}
	if decoded.Code != http.StatusOK || decoded.Tweet == nil {
		return nil, fmt.Errorf("tweet api: code %d %s", decoded.Code, decoded.Message)
	}

	t := decoded.Tweet
	data := &capture.TweetData{
		Handle:    t.Author.ScreenName,
		Name:      t.Author.Name,
		Text:      t.Text,
		Views:     t.Views,
		Likes:     t.Likes,
		Retweets:  t.Retweets,
		Bookmarks: t.Bookmarks,
		Replies:   t.Replies,
	}
	// Long-form posts carry their body in the article block.
	if data.Text == "" && t.Article != nil {
		data.Text = t.Article.Text
	}
	if t.CreatedTimestamp > 0 {
		data.PublishedAt = time.Unix(t.CreatedTimestamp, 0).UTC().Format("2006-01-02")
	} else {
		data.PublishedAt = t.CreatedAt
	}
	if t.Quote != nil {
		data.QuoteHandle = t.Quote.Author.ScreenName
		data.QuoteText = t.Quote.Text
	}
	if t.Media != nil {
		for _, media := range t.Media.All {
			if media.URL != "" {
				data.MediaURLs = append(data.MediaURLs, media.URL)
			}
		}
	}

	if data.Text == "" && data.QuoteText == "" && len(data.MediaURLs) == 0 {
		return nil, fmt.Errorf("%w: tweet %s has no content", ErrEmptyResult, id)
	}
	return &capture.RawResult{Kind: capture.SourceTweet, Tweet: data}, nil
}

type fxResponse struct {
	Code    int      `json:"code"`
	Message string   `json:"message"`
	Tweet   *fxTweet `json:"tweet"`
}

type fxTweet struct {
	Text             string `json:"text"`
	CreatedAt        string `json:"created_at"`
	CreatedTimestamp int64  `json:"created_timestamp"`
	Views            int64  `json:"views"`
	Likes            int64  `json:"likes"`
	Retweets         int64  `json:"retweets"`
	Bookmarks        int64  `json:"bookmarks"`
	Replies          int64  `json:"replies"`
	Author           struct {
		ScreenName string `json:"screen_name"`
		Name       string `json:"name"`
	} `json:"author"`
	Quote *fxTweet `json:"quote"`
	Media *struct {
		All []struct {
			Type string `json:"type"`
			URL  string `json:"url"`
		} `json:"all"`
	} `json:"media"`
	Article *struct {
		Title string `json:"title"`
		Text  string `json:"text"`
	} `json:"article"`
}
