package normalize

import (
	"fmt"
	"strings"

	"github.com/mohammad-safakhou/doppel/tools/linkedin/models"
)

// Titles that identify profile boilerplate rather than posts. Matching is
// exact: "Open to work today" is a real post.
var noiseTitles = map[string]struct{}{
	"Open to work": {},
	"Share that you're hiring and attract qualified candidates": {},
}

// Content substrings that identify profile metadata blocks.
var noiseContent = []string{
	"Premium • You",
	"Visible to anyone",
}

// Engagement-metadata keywords. Activity containers often lead with a
// "128 likes · 12 comments" header line; real content starts after it.
var metadataKeywords = []string{"likes", "comments", "reactions"}

const (
	minTitleChars   = 5
	titleCandidates = 3
	maxTitleChars   = 50

	fallbackTitle    = "LinkedIn Post"
	placeholderTitle = "LinkedIn Profile Information"
)

// Normalize converts raw fragments into deduplicated post records. The
// result is never empty: when nothing survives filtering, a single
// placeholder record is emitted instead.
func Normalize(fragments []models.RawFragment, profile string) []models.PostRecord {
	records := Records(fragments)
	if len(records) == 0 {
		return []models.PostRecord{Placeholder(profile)}
	}
	return records
}

// Records runs the per-fragment split, the noise filter and the global
// first-wins dedup pass, without the placeholder fallback.
func Records(fragments []models.RawFragment) []models.PostRecord {
	seen := make(map[string]struct{})
	var records []models.PostRecord
	for _, f := range fragments {
		rec, ok := record(f)
		if !ok {
			continue
		}
		fp := rec.Fingerprint()
		if _, dup := seen[fp]; dup {
			continue
		}
		seen[fp] = struct{}{}
		rec.Index = len(records) + 1
		records = append(records, rec)
	}
	return records
}

// Placeholder is the record returned when a scrape produced nothing; callers
// never receive an empty result silently.
func Placeholder(profile string) models.PostRecord {
	if profile == "" {
		profile = "the target profile"
	}
	return models.PostRecord{
		Index: 1,
		Title: placeholderTitle,
		Content: fmt.Sprintf("No posts were found on the LinkedIn profile %s. "+
			"Check that the profile has public posts, or try a different profile.", profile),
	}
}

func record(f models.RawFragment) (models.PostRecord, bool) {
	var title, content string
	if f.Section == models.SectionActivity {
		title, content = splitActivity(f.Text)
	} else {
		title, content = splitLines(f.Text)
	}

	if _, noisy := noiseTitles[title]; noisy {
		return models.PostRecord{}, false
	}
	for _, sub := range noiseContent {
		if strings.Contains(content, sub) {
			return models.PostRecord{}, false
		}
	}

	// A record must carry a title; promote the first substantive content
	// line when the split produced none.
	if title == "" {
		title, content = promoteTitle(content)
	}
	if title == "" && content == "" {
		return models.PostRecord{}, false
	}

	return models.PostRecord{Title: title, Content: content, URL: f.URL}, true
}

// splitLines treats the first line as the title and the rest as content.
// Used for article, featured and about fragments.
func splitLines(text string) (string, string) {
	lines := strings.Split(text, "\n")
	title := strings.TrimSpace(lines[0])
	content := ""
	if len(lines) > 1 {
		content = strings.TrimSpace(strings.Join(lines[1:], "\n"))
	}
	return title, content
}

// splitActivity skips past leading engagement-metadata lines, takes the
// first substantive line among the next few candidates as the title, and
// removes one occurrence of the title from the remaining content. When
// nothing remains, the entire text becomes the content.
func splitActivity(text string) (string, string) {
	lines := strings.Split(text, "\n")

	contentStart := 0
	for i, line := range lines {
		if containsMetadata(line) {
			contentStart = i + 1
			break
		}
	}

	title := fallbackTitle
	end := contentStart + titleCandidates
	if end > len(lines) {
		end = len(lines)
	}
	for _, line := range lines[contentStart:end] {
		if len(strings.TrimSpace(line)) > minTitleChars {
			title = strings.TrimSpace(line)
			break
		}
	}

	content := strings.TrimSpace(strings.Replace(strings.Join(lines[contentStart:], "\n"), title, "", 1))
	if content == "" && contentStart > 0 {
		content = text
	}

	if r := []rune(title); len(r) > maxTitleChars {
		title = string(r[:maxTitleChars]) + "..."
	}
	return title, content
}

func containsMetadata(line string) bool {
	lower := strings.ToLower(line)
	for _, kw := range metadataKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// promoteTitle lifts the first substantive content line into the title so a
// record is never emitted titled blank. Falls back to the first non-empty
// line when no line clears the length floor.
func promoteTitle(content string) (string, string) {
	lines := strings.Split(content, "\n")
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if len(line) > minTitleChars {
			return line, strings.TrimSpace(strings.Replace(content, line, "", 1))
		}
	}
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line != "" {
			return line, strings.TrimSpace(strings.Replace(content, line, "", 1))
		}
	}
	return "", ""
}
