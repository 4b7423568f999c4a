package markdown

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// splitFrontMatter separates a leading YAML front matter block from the
// body. Input without a closed front matter block is returned unchanged.
func splitFrontMatter(content string) (map[string]any, string, error) {
	lines := strings.SplitAfter(content, "\n")

	// Check for front matter delimiters
	if len(lines) == 0 || strings.TrimSpace(lines[0]) != "---" {
		return nil, content, nil
	}

	// Find end of front matter
	end := -1
	for i := 1; i < len(lines); i++ {
		if strings.TrimSpace(lines[i]) == "---" {
			end = i
			break
		}
	}
	if end == -1 {
		return nil, content, nil
	}

	var meta map[string]any
	yamlContent := strings.Join(lines[1:end], "")
	if err := yaml.Unmarshal([]byte(yamlContent), &meta); err != nil {
		return nil, "", fmt.Errorf("failed to parse front matter: %w", err)
	}

	// Skip leading blank lines in body
	body := lines[end+1:]
	for len(body) > 0 && strings.TrimSpace(body[0]) == "" {
		body = body[1:]
	}

	return meta, strings.Join(body, ""), nil
}
