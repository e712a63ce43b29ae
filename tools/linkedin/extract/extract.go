package extract

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"
	"golang.org/x/net/html"

	"github.com/mohammad-safakhou/doppel/tools/linkedin/models"
)

// Minimum text lengths per container. Anything shorter is UI chrome, not a
// post. Tunable, but some floor must exist.
var (
	MinContainerChars = 30
	MinArticleChars   = 50
)

// Class-name patterns for post containers. LinkedIn's DOM is unstable; these
// are best-effort heuristics tried in priority order.
var (
	feedUpdatePattern = regexp.MustCompile(`feed-shared-update-v2`)
	occludablePattern = regexp.MustCompile(`occludable-update`)
	containerPattern  = regexp.MustCompile(`occludable-update|feed-shared-update-v2`)
	cardPattern       = regexp.MustCompile(`artdeco-card`)
)

// contentRules is the priority list of (tag, class-pattern) pairs tried when
// pulling text out of a container. The first rule yielding non-empty text
// wins; when none match, the container's whole visible text is used.
var contentRules = []struct {
	tag     string
	pattern *regexp.Regexp
}{
	{"div", regexp.MustCompile(`update-components-text|feed-shared-update-v2__description-wrapper`)},
	{"span", regexp.MustCompile(`break-words`)},
	{"div", regexp.MustCompile(`feed-shared-text|feed-shared-inline-show-more-text`)},
	{"div", regexp.MustCompile(`feed-shared-update-v2__commentary`)},
}

// Containers locates candidate post containers in a captured page and pulls a
// RawFragment out of each, up to limit. Unparseable HTML yields an error;
// absence of containers yields an empty slice.
func Containers(pageSource string, section models.Section, limit int) ([]models.RawFragment, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(pageSource))
	if err != nil {
		return nil, err
	}

	switch section {
	case models.SectionArticle:
		return articleFragments(doc, limit), nil
	case models.SectionFeatured:
		return featuredFragments(doc, limit), nil
	case models.SectionActivity:
		return activityFragments(doc, limit), nil
	case models.SectionAbout:
		return aboutFragments(doc), nil
	default:
		return nil, nil
	}
}

// ArticlePage converts a whole article page into a single fragment via
// readability. Used when no article containers matched the class heuristics.
func ArticlePage(pageSource, pageURL string) (models.RawFragment, bool) {
	parsed, err := url.Parse(pageURL)
	if err != nil {
		parsed = &url.URL{}
	}
	article, err := readability.FromReader(strings.NewReader(pageSource), parsed)
	if err != nil {
		return models.RawFragment{}, false
	}
	title := strings.TrimSpace(article.Title)
	text := strings.TrimSpace(article.TextContent)
	if len(text) < MinArticleChars {
		return models.RawFragment{}, false
	}
	return models.RawFragment{
		Section: models.SectionArticle,
		Text:    title + "\n" + text,
		URL:     pageURL,
	}, true
}

func articleFragments(doc *goquery.Document, limit int) []models.RawFragment {
	cards := doc.Find("div").FilterFunction(func(_ int, s *goquery.Selection) bool {
		cls, _ := s.Attr("class")
		return strings.Contains(cls, "ember-view") && cardPattern.MatchString(cls)
	})

	var frags []models.RawFragment
	cards.EachWithBreak(func(_ int, s *goquery.Selection) bool {
		text := visibleText(s)
		if len(text) < MinArticleChars || strings.Contains(text, "Loading") {
			return true
		}
		frags = append(frags, models.RawFragment{Section: models.SectionArticle, Text: text})
		return len(frags) < limit
	})
	return frags
}

func featuredFragments(doc *goquery.Document, limit int) []models.RawFragment {
	items := featuredItems(doc)
	if items == nil {
		return nil
	}
	var frags []models.RawFragment
	items.EachWithBreak(func(_ int, s *goquery.Selection) bool {
		text := strings.TrimSpace(visibleText(s))
		if len(text) < MinContainerChars {
			return true
		}
		frags = append(frags, models.RawFragment{Section: models.SectionFeatured, Text: text})
		return len(frags) < limit
	})
	return frags
}

// featuredItems tries, in order: list items inside the Featured section,
// cards inside it, then known post containers anywhere on the page. A page
// without a Featured section yields nothing; that is not an error.
func featuredItems(doc *goquery.Document) *goquery.Selection {
	section := sectionByHeader(doc, "Featured")
	if section == nil {
		return nil
	}
	if items := section.Find("li"); items.Length() > 0 {
		return items
	}
	if cards := classMatch(section.Find("div"), cardPattern); cards.Length() > 0 {
		return cards
	}
	return classMatch(doc.Find("div"), containerPattern)
}

func activityFragments(doc *goquery.Document, limit int) []models.RawFragment {
	containers := classMatch(doc.Find("div"), feedUpdatePattern)
	if containers.Length() == 0 {
		containers = classMatch(doc.Find("div"), occludablePattern)
	}

	var frags []models.RawFragment
	containers.EachWithBreak(func(_ int, s *goquery.Selection) bool {
		text := strings.TrimSpace(contentText(s))
		if len(text) < MinContainerChars {
			return true
		}
		frags = append(frags, models.RawFragment{
			Section: models.SectionActivity,
			Text:    text,
			URL:     PostURL(s),
		})
		return len(frags) < limit
	})
	return frags
}

func aboutFragments(doc *goquery.Document) []models.RawFragment {
	section := sectionByHeader(doc, "About")
	if section == nil {
		return nil
	}
	text := strings.TrimSpace(strings.Replace(visibleText(section), "About", "", 1))
	if len(text) < MinContainerChars {
		return nil
	}
	return []models.RawFragment{{Section: models.SectionAbout, Text: text}}
}

// PostURL finds the best link inside an activity container: canonical post
// links first, then feed-update links, then any substantial linkedin.com
// link. Returns "" when nothing qualifies.
func PostURL(container *goquery.Selection) string {
	links := container.Find("a[href]")

	if href := firstHref(links, func(h string) bool {
		return strings.Contains(h, "/posts/") || strings.Contains(h, "/pulse/")
	}); href != "" {
		return href
	}
	if href := firstHref(links, func(h string) bool {
		return strings.Contains(h, "/activity/") || strings.Contains(h, "/feed/update/")
	}); href != "" {
		return href
	}
	return firstHref(links, func(h string) bool {
		return strings.Contains(h, "linkedin.com") && len(h) > 30
	})
}

func firstHref(links *goquery.Selection, match func(string) bool) string {
	var found string
	links.EachWithBreak(func(_ int, s *goquery.Selection) bool {
		href, _ := s.Attr("href")
		if href != "" && match(href) {
			found = href
			return false
		}
		return true
	})
	return found
}

// contentText applies the contentRules priority list, falling back to the
// container's whole visible text.
func contentText(container *goquery.Selection) string {
	for _, rule := range contentRules {
		el := classMatch(container.Find(rule.tag), rule.pattern).First()
		if el.Length() == 0 {
			continue
		}
		if text := strings.TrimSpace(visibleText(el)); text != "" {
			return text
		}
	}
	return visibleText(container)
}

// sectionByHeader returns the first <section> containing a <span> whose text
// equals header, or nil.
func sectionByHeader(doc *goquery.Document, header string) *goquery.Selection {
	sections := doc.Find("section").FilterFunction(func(_ int, s *goquery.Selection) bool {
		found := false
		s.Find("span").EachWithBreak(func(_ int, sp *goquery.Selection) bool {
			if strings.TrimSpace(sp.Text()) == header {
				found = true
				return false
			}
			return true
		})
		return found
	})
	if sections.Length() == 0 {
		return nil
	}
	return sections.First()
}

// classMatch filters a selection to elements whose class attribute matches
// the pattern, skipping elements nested inside an already-matching ancestor
// so one post is not captured twice.
func classMatch(sel *goquery.Selection, pattern *regexp.Regexp) *goquery.Selection {
	return sel.FilterFunction(func(_ int, s *goquery.Selection) bool {
		cls, _ := s.Attr("class")
		if !pattern.MatchString(cls) {
			return false
		}
		for p := s.Parent(); p.Length() > 0; p = p.Parent() {
			pcls, _ := p.Attr("class")
			if pattern.MatchString(pcls) {
				return false
			}
		}
		return true
	})
}

var blockTags = map[string]bool{
	"article": true, "br": true, "div": true, "h1": true, "h2": true,
	"h3": true, "h4": true, "h5": true, "h6": true, "header": true,
	"li": true, "p": true, "section": true, "tr": true, "ul": true,
}

// visibleText renders a selection's text the way a browser lays it out:
// block elements become line breaks, inline runs are joined by spaces, and
// script/style content is dropped. The normalizer depends on those line
// breaks to split titles from bodies.
func visibleText(sel *goquery.Selection) string {
	var b strings.Builder
	for _, n := range sel.Nodes {
		writeNodeText(n, &b)
	}
	return tidyLines(b.String())
}

func writeNodeText(n *html.Node, b *strings.Builder) {
	switch n.Type {
	case html.TextNode:
		t := strings.TrimSpace(n.Data)
		if t == "" {
			return
		}
		if b.Len() > 0 && !strings.HasSuffix(b.String(), "\n") {
			b.WriteByte(' ')
		}
		b.WriteString(t)
		return
	case html.ElementNode:
		if n.Data == "script" || n.Data == "style" {
			return
		}
	case html.DocumentNode:
	default:
		return
	}

	block := n.Type == html.ElementNode && blockTags[n.Data]
	if block {
		b.WriteByte('\n')
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		writeNodeText(c, b)
	}
	if block {
		b.WriteByte('\n')
	}
}

func tidyLines(raw string) string {
	var lines []string
	for _, line := range strings.Split(raw, "\n") {
		line = strings.Join(strings.Fields(line), " ")
		if line != "" {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n")
}
