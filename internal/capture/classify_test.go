package capture

import (
	"errors"
	"testing"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		url  string
		want SourceKind
	}{
		{"twitter status", "https://twitter.com/alice/status/123", SourceTweet},
		{"x.com status", "https://x.com/alice/status/123", SourceTweet},
		{"x.com redirect path", "https://x.com/i/status/99", SourceTweet},
		{"mobile twitter", "https://mobile.twitter.com/alice/status/5", SourceTweet},
		{"youtube watch", "https://www.youtube.com/watch?v=dQw4w9WgXcQ", SourceVideo},
		{"youtu.be short link", "https://youtu.be/dQw4w9WgXcQ", SourceVideo},
		{"youtube shorts", "https://youtube.com/shorts/abc123", SourceVideo},
		{"youtube live", "https://www.youtube.com/live/abc123", SourceVideo},
		{"plain article", "https://example.com/post/1", SourceWeb},
		{"youtube channel page is web", "https://www.youtube.com/@somechannel", SourceWeb},
		{"t.co shortener is web", "https://t.co/AbCd123", SourceWeb},
		{"lookalike domain is web", "https://fakex.com/i/status/1", SourceWeb},
		{"plain http", "http://example.org", SourceWeb},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Classify(tt.url)
			if err != nil {
				t.Fatalf("Classify(%q) error: %v", tt.url, err)
			}
			if got != tt.want {
				t.Errorf("Classify(%q) = %q, want %q", tt.url, got, tt.want)
			}
		})
	}
}

func TestClassify_Unsupported(t *testing.T) {
	urls := []string{
		"",
		"not a url",
		"ftp://example.com/file",
		"twitter.com/alice/status/1",
		"mailto:alice@example.com",
		"https://",
	}
	for _, u := range urls {
		if _, err := Classify(u); !errors.Is(err, ErrUnsupportedURL) {
			t.Errorf("Classify(%q) error = %v, want ErrUnsupportedURL", u, err)
		}
	}
}
