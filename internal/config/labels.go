package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/stellarlinkco/linkclaw/internal/capture"
)

// LoadLabelRules reads an ordered label-rule table from a YAML file:
//
//	- label: ai-agents
//	  keywords: [agent, llm]
//
// A blank path or a missing file returns nil, which callers treat as "use
// the built-in defaults". Table order is preserved; it decides label order.
func LoadLabelRules(path string) ([]capture.LabelRule, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read label rules %q: %w", path, err)
	}

	var rules []capture.LabelRule
	if err := yaml.Unmarshal(data, &rules); err != nil {
		return nil, fmt.Errorf("parse label rules %q: %w", path, err)
	}

	out := make([]capture.LabelRule, 0, len(rules))
	for _, r := range rules {
		label := strings.TrimSpace(r.Label)
		keywords := sanitizeKeywords(r.Keywords)
		if label == "" || len(keywords) == 0 {
			continue
		}
		out = append(out, capture.LabelRule{Label: label, Keywords: keywords})
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("label rules %q: no usable rules", path)
	}
	return out, nil
}

// Keywords are matched against a lowercased haystack, so they are folded
// here once at load time.
func sanitizeKeywords(keywords []string) []string {
	out := make([]string, 0, len(keywords))
	for _, keyword := range keywords {
		normalized := strings.ToLower(strings.TrimSpace(keyword))
		if normalized == "" {
			continue
		}
		out = append(out, normalized)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
