package format

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/mohammad-safakhou/doppel/tools/linkedin/models"
)

// Format renders posts as a numbered list: "<n>. <title>\n<content>",
// records separated by a blank line. Rendering order is authoritative; the
// Index field on the records is advisory only.
func Format(posts []models.PostRecord) string {
	parts := make([]string, 0, len(posts))
	for i, p := range posts {
		parts = append(parts, fmt.Sprintf("%d. %s\n%s", i+1, p.Title, p.Content))
	}
	return strings.Join(parts, "\n\n")
}

// strategy attempts one parse of raw text into records. Absence of a match
// is not an error, just a miss.
type strategy func(raw string) ([]models.PostRecord, bool)

// strategies are tried in priority order, short-circuiting on the first
// success. The final whole-text fallback always succeeds, so Parse never
// fails on malformed input.
var strategies = []strategy{
	parseJSONArray,
	parseNumberedList,
	parseTitledBlocks,
}

// Parse recovers post records from generated or scraped text. It accepts the
// exact shape Format produces and degrades gracefully on anything else,
// ultimately treating the entire text as one untitled post.
func Parse(raw string) []models.PostRecord {
	for _, try := range strategies {
		if posts, ok := try(raw); ok {
			return reindex(posts)
		}
	}
	return []models.PostRecord{{
		Index:   1,
		Title:   "LinkedIn Post",
		Content: strings.TrimSpace(raw),
	}}
}

// parseJSONArray finds the outermost JSON array in the text and decodes it.
func parseJSONArray(raw string) ([]models.PostRecord, bool) {
	start := strings.Index(raw, "[")
	end := strings.LastIndex(raw, "]")
	if start < 0 || end <= start {
		return nil, false
	}
	var posts []models.PostRecord
	if err := json.Unmarshal([]byte(raw[start:end+1]), &posts); err != nil {
		return nil, false
	}
	if len(posts) == 0 {
		return nil, false
	}
	for _, p := range posts {
		if p.Title == "" && p.Content == "" {
			return nil, false
		}
	}
	return posts, true
}

var numberedItem = regexp.MustCompile(`(?m)^\s*\d+\.\s+`)

// parseNumberedList splits on "<n>. " line starts; within each segment the
// first line is the title and the remainder is the content.
func parseNumberedList(raw string) ([]models.PostRecord, bool) {
	bounds := numberedItem.FindAllStringIndex(raw, -1)
	if len(bounds) == 0 {
		return nil, false
	}

	var posts []models.PostRecord
	for i, b := range bounds {
		end := len(raw)
		if i+1 < len(bounds) {
			end = bounds[i+1][0]
		}
		segment := strings.TrimSpace(raw[b[1]:end])
		if segment == "" {
			continue
		}
		title, content := splitFirstLine(segment)
		posts = append(posts, models.PostRecord{Title: title, Content: content})
	}
	if len(posts) == 0 {
		return nil, false
	}
	return posts, true
}

// parseTitledBlocks accepts the alternate "title line + body" framing:
// blank-line separated blocks without numbering. At least one block must
// have a body, otherwise the text is likely plain prose.
func parseTitledBlocks(raw string) ([]models.PostRecord, bool) {
	blocks := strings.Split(strings.TrimSpace(raw), "\n\n")
	if len(blocks) < 2 {
		return nil, false
	}

	var posts []models.PostRecord
	withBody := 0
	for _, block := range blocks {
		block = strings.TrimSpace(block)
		if block == "" {
			continue
		}
		title, content := splitFirstLine(block)
		if content != "" {
			withBody++
		}
		posts = append(posts, models.PostRecord{Title: title, Content: content})
	}
	if len(posts) == 0 || withBody == 0 {
		return nil, false
	}
	return posts, true
}

func splitFirstLine(s string) (string, string) {
	parts := strings.SplitN(s, "\n", 2)
	title := strings.TrimSpace(parts[0])
	content := ""
	if len(parts) > 1 {
		content = strings.TrimSpace(parts[1])
	}
	return title, content
}

func reindex(posts []models.PostRecord) []models.PostRecord {
	for i := range posts {
		posts[i].Index = i + 1
	}
	return posts
}
