package fetch

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

const fxTweetOK = `{
  "code": 200,
  "message": "OK",
  "tweet": {
    "text": "big launch day",
    "created_timestamp": 1704103200,
    "views": 12000,
    "likes": 340,
    "retweets": 25,
    "bookmarks": 90,
    "replies": 12,
    "author": {"screen_name": "alice", "name": "Alice"},
    "quote": {"text": "the original", "author": {"screen_name": "bob", "name": "Bob"}},
    "media": {"all": [{"type": "photo", "url": "https://pbs.example/img.jpg"}]}
  }
}`

func TestTweetAdapter_Fetch(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(fxTweetOK))
	}))
	defer srv.Close()

	a := NewTweetAdapter(srv.URL, time.Second)
	raw, err := a.Fetch(context.Background(), "https://x.com/alice/status/1234567890")
	if err != nil {
		t.Fatalf("Fetch error: %v", err)
	}
	if gotPath != "/status/1234567890" {
		t.Errorf("request path = %q, want /status/1234567890", gotPath)
	}

	tw := raw.Tweet
	if tw == nil {
		t.Fatal("tweet data missing")
	}
	if tw.Handle != "alice" {
		t.Errorf("handle = %q, want alice", tw.Handle)
	}
	if tw.Text != "big launch day" {
		t.Errorf("text = %q", tw.Text)
	}
	if tw.Views != 12000 || tw.Bookmarks != 90 || tw.Replies != 12 {
		t.Errorf("stats = views %d bookmarks %d replies %d", tw.Views, tw.Bookmarks, tw.Replies)
	}
	if tw.PublishedAt != "2024-01-01" {
		t.Errorf("publishedAt = %q, want 2024-01-01", tw.PublishedAt)
	}
	if tw.QuoteHandle != "bob" || tw.QuoteText != "the original" {
		t.Errorf("quote = @%s %q", tw.QuoteHandle, tw.QuoteText)
	}
	if len(tw.MediaURLs) != 1 {
		t.Errorf("media urls = %v, want one", tw.MediaURLs)
	}
}

func TestTweetAdapter_NoStatusID(t *testing.T) {
	a := NewTweetAdapter("http://unused.invalid", time.Second)
	if _, err := a.Fetch(context.Background(), "https://x.com/home"); err == nil {
		t.Error("expected error for URL without status id")
	}
}

func TestTweetAdapter_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusInternalServerError)
	}))
	defer srv.Close()

	a := NewTweetAdapter(srv.URL, time.Second)
	_, err := a.Fetch(context.Background(), "https://x.com/a/status/1")
	if err == nil || !strings.Contains(err.Error(), "500") {
		t.Errorf("error = %v, want status 500", err)
	}
}

func TestTweetAdapter_APICode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"code": 404, "message": "NOT_FOUND"}`))
	}))
	defer srv.Close()

	a := NewTweetAdapter(srv.URL, time.Second)
	_, err := a.Fetch(context.Background(), "https://x.com/a/status/1")
	if err == nil || !strings.Contains(err.Error(), "NOT_FOUND") {
		t.Errorf("error = %v, want NOT_FOUND", err)
	}
}

func TestTweetAdapter_EmptyTweet(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"code": 200, "tweet": {"text": "", "author": {"screen_name": "alice"}}}`))
	}))
	defer srv.Close()

	a := NewTweetAdapter(srv.URL, time.Second)
	_, err := a.Fetch(context.Background(), "https://x.com/alice/status/1")
	if !errors.Is(err, ErrEmptyResult) {
		t.Errorf("error = %v, want ErrEmptyResult", err)
	}
}

func TestTweetAdapter_ArticleBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"code": 200, "tweet": {"text": "", "author": {"screen_name": "alice"},
			"article": {"title": "Long Read", "text": "full article body"}}}`))
	}))
	defer srv.Close()

	a := NewTweetAdapter(srv.URL, time.Second)
	raw, err := a.Fetch(context.Background(), "https://x.com/alice/status/1")
	if err != nil {
		t.Fatalf("Fetch error: %v", err)
	}
	if raw.Tweet.Text != "full article body" {
		t.Errorf("text = %q, want article body", raw.Tweet.Text)
	}
}
