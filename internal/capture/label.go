package capture

import "strings"

// maxLabels caps the label set, the mandatory source label included.
const maxLabels = 6

// LabelRule maps one topic label to the keywords that trigger it.
type LabelRule struct {
	Label    string   `yaml:"label" json:"label"`
	Keywords []string `yaml:"keywords" json:"keywords"`
}

// DefaultLabelRules is the built-in topic table, used when no rules file is
// configured. Order matters: topic labels append in table order.
func DefaultLabelRules() []LabelRule {
	return []LabelRule{
		{Label: "ai-agents", Keywords: []string{"agent", "agentic", "llm", "mcp", "autonomous"}},
		{Label: "machine-learning", Keywords: []string{"model", "training", "neural", "dataset", "inference"}},
		{Label: "robotics", Keywords: []string{"robot", "humanoid", "embodied", "drone"}},
		{Label: "engineering", Keywords: []string{"code", "api", "pipeline", "github", "open source"}},
		{Label: "content-strategy", Keywords: []string{"content", "audience", "viral", "growth", "newsletter"}},
		{Label: "startups", Keywords: []string{"startup", "founder", "funding", "venture"}},
		{Label: "twitter", Keywords: []string{"twitter", "tweet", "thread"}},
	}
}

// Label derives the ordered label set for a capture: `source-<kind>` first,
// always, then topic labels in rule-table order. A rule fires the first time
// any of its keywords appears as a substring of the lower-cased title plus
// summary (title plus a content excerpt when the summary is empty). The set
// is capped at maxLabels; later candidates are dropped once full.
func Label(c *Capture, summary string, rules []LabelRule) []string {
	labels := []string{"source-" + string(c.Kind)}

	haystack := c.Title + " " + summary
	if strings.TrimSpace(summary) == "" {
		haystack = c.Title + " " + truncate(c.Content, 500)
	}
	haystack = strings.ToLower(haystack)

	for _, rule := range rules {
		if len(labels) >= maxLabels {
			break
		}
		for _, kw := range rule.Keywords {
			kw = strings.ToLower(strings.TrimSpace(kw))
			if kw == "" {
				continue
			}
			if strings.Contains(haystack, kw) {
				labels = append(labels, rule.Label)
				break
			}
		}
	}
	return labels
}
