package capture

// Importance tiers. Quantized on purpose: consumers sort and bucket by these
// exact values, so Score never interpolates between them.
const (
	ImportanceHighest  = 0.9
	ImportanceHigh     = 0.8
	ImportanceModerate = 0.65
	ImportanceBaseline = 0.5
)

// Score derives the importance tier from engagement stats. Thresholds are
// strict greater-than and evaluated in order; the first match wins, so a
// counter sitting exactly on a threshold takes the lower tier.
func Score(c *Capture) float64 {
	switch c.Kind {
	case SourceTweet:
		views := c.Stat("views")
		likes := c.Stat("likes")
		bookmarks := c.Stat("bookmarks")
		switch {
		case views > 500000 || bookmarks > 5000:
			return ImportanceHighest
		case views > 100000 || bookmarks > 2000 || likes > 5000:
			return ImportanceHigh
		case views > 10000 || likes > 500:
			return ImportanceModerate
		}
	case SourceVideo:
		switch views := c.Stat("views"); {
		case views > 1000000:
			return ImportanceHigh
		case views > 100000:
			return ImportanceModerate
		}
	}
	return ImportanceBaseline
}
