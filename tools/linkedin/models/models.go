package models

import "errors"

// ErrCredentialsMissing is returned before any navigation happens when the
// LinkedIn email or password is absent from configuration.
var ErrCredentialsMissing = errors.New("linkedin credentials not configured (linkedin.email / linkedin.password)")

// Section identifies one area of a LinkedIn profile page.
type Section string

const (
	SectionArticle  Section = "article"
	SectionFeatured Section = "featured"
	SectionActivity Section = "activity"
	SectionAbout    Section = "about"
)

// AuthResult reports the outcome of a login attempt.
type AuthResult int

const (
	AuthSuccess AuthResult = iota
	AuthSecurityChallenge
	AuthFailure
)

func (a AuthResult) String() string {
	switch a {
	case AuthSuccess:
		return "success"
	case AuthSecurityChallenge:
		return "security_challenge"
	default:
		return "failure"
	}
}

// RawFragment is the text captured from one page container, plus the post URL
// when one could be located. Fragments exist only between extraction and
// normalization.
type RawFragment struct {
	Section Section
	Text    string
	URL     string
}

// PostRecord is the canonical unit handed to consumers of the scrape.
type PostRecord struct {
	Index   int    `json:"index"`
	Title   string `json:"title"`
	Content string `json:"content"`
	URL     string `json:"url,omitempty"`
}

// fingerprintChars is how much of the content participates in the dedup key.
// Two genuinely distinct posts sharing a title and their first 100 characters
// collide; that is a known limitation of the heuristic, not a bug.
const fingerprintChars = 100

// Fingerprint returns the dedup key: title plus the first 100 characters of
// content.
func (p PostRecord) Fingerprint() string {
	content := []rune(p.Content)
	if len(content) > fingerprintChars {
		content = content[:fingerprintChars]
	}
	return p.Title + string(content)
}
