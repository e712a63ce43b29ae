package linkedin

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"time"

	"github.com/mohammad-safakhou/doppel/tools/linkedin/extract"
	"github.com/mohammad-safakhou/doppel/tools/linkedin/format"
	"github.com/mohammad-safakhou/doppel/tools/linkedin/models"
	"github.com/mohammad-safakhou/doppel/tools/linkedin/normalize"
	"github.com/mohammad-safakhou/doppel/tools/linkedin/session"
)

const (
	baseURL = "https://www.linkedin.com"

	articlesLinkSelector = `a[href*="/detail/recent-activity/posts/"]`
	activityLinkSelector = `a[href*="/detail/recent-activity/"]`

	scrollMin = 300
	scrollMax = 500
)

// Driver is the browser behaviour the scraper needs from a session. The
// chromedp-backed session implements it; tests substitute canned pages.
type Driver interface {
	Authenticate(username, password string) (models.AuthResult, error)
	Navigate(url string) error
	ClickFirst(selector string) error
	ScrollBy(px int) error
	PageSource() (string, error)
	Pause()
	PauseScroll()
	Wait(d time.Duration)
	Close()
}

// Config carries everything one scrape needs. Values come from the linkedin
// section of the application config.
type Config struct {
	Email    string
	Password string
	Profile  string

	Headless   bool
	ChromePath string

	Pacing session.Pacing
	Waits  session.Waits

	MaxArticles  int
	MaxFeatured  int
	MaxPosts     int
	ScrollPasses int
}

// Scraper drives one browser session through a profile's sections and
// converts what it finds into post records. Stateless between calls.
type Scraper struct {
	cfg    Config
	logger *log.Logger

	// open is swapped out in tests.
	open func(ctx context.Context) (Driver, error)
}

func New(cfg Config, logger *log.Logger) *Scraper {
	if logger == nil {
		logger = log.New(log.Writer(), "[SCRAPER] ", log.LstdFlags)
	}
	s := &Scraper{cfg: cfg, logger: logger}
	s.open = func(ctx context.Context) (Driver, error) {
		return session.Open(ctx, session.Options{
			Headless:   cfg.Headless,
			ChromePath: cfg.ChromePath,
			Pacing:     cfg.Pacing,
			Waits:      cfg.Waits,
			Logger:     logger,
		})
	}
	return s
}

// Scrape runs the whole pipeline and returns the numbered-list rendering of
// the profile's posts. It never returns an error: total failures come back
// as descriptive text, so callers always receive well-formed content.
func (s *Scraper) Scrape(ctx context.Context) string {
	posts, err := s.scrape(ctx)
	if err != nil {
		s.logger.Printf("scrape failed: %v", err)
		return "There was an error scraping the LinkedIn profile: " + err.Error()
	}
	return format.Format(posts)
}

func (s *Scraper) scrape(ctx context.Context) ([]models.PostRecord, error) {
	// Checked before any browser is launched.
	if s.cfg.Email == "" || s.cfg.Password == "" {
		return nil, models.ErrCredentialsMissing
	}

	drv, err := s.open(ctx)
	if err != nil {
		return nil, fmt.Errorf("opening session: %w", err)
	}
	defer drv.Close()

	res, err := drv.Authenticate(s.cfg.Email, s.cfg.Password)
	if err != nil {
		return nil, fmt.Errorf("authenticating: %w", err)
	}
	if res == models.AuthSecurityChallenge {
		// The session already yielded its grace window; keep going and let
		// the sections we can still reach decide what we get.
		s.logger.Printf("continuing after security challenge")
	}

	profileURL := fmt.Sprintf("%s/in/%s/", baseURL, s.cfg.Profile)
	s.logger.Printf("navigating to profile %s", s.cfg.Profile)
	if err := drv.Navigate(profileURL); err != nil {
		return nil, fmt.Errorf("opening profile: %w", err)
	}
	drv.Wait(s.cfg.Waits.Medium)
	s.scroll(drv)

	var fragments []models.RawFragment
	fragments = append(fragments, s.articleSection(drv, profileURL)...)
	fragments = append(fragments, s.pageSection(drv, models.SectionFeatured, s.cfg.MaxFeatured)...)
	fragments = append(fragments, s.activitySection(drv)...)

	// About is a fallback content source, only consulted when the other
	// sections produced too little.
	if len(normalize.Records(fragments)) < 2 {
		if err := drv.Navigate(profileURL); err == nil {
			drv.Wait(s.cfg.Waits.Short)
			fragments = append(fragments, s.pageSection(drv, models.SectionAbout, 1)...)
		}
	}

	return normalize.Normalize(fragments, s.cfg.Profile), nil
}

// scroll nudges the viewport down a few times with human-ish pacing so
// lazy-loaded content renders before extraction.
func (s *Scraper) scroll(drv Driver) {
	for i := 0; i < s.cfg.ScrollPasses; i++ {
		if err := drv.ScrollBy(scrollMin + rand.Intn(scrollMax-scrollMin+1)); err != nil {
			s.logger.Printf("scroll: %v", err)
			return
		}
		drv.PauseScroll()
	}
}

// articleSection opens the recent-activity posts page when a link to it
// exists, captures it, and returns to the profile. A missing link means the
// profile has no articles, not a failure.
func (s *Scraper) articleSection(drv Driver, profileURL string) []models.RawFragment {
	if err := drv.ClickFirst(articlesLinkSelector); err != nil {
		s.logger.Printf("no articles tab: %v", err)
		return nil
	}
	drv.Wait(s.cfg.Waits.Short)

	frags := s.pageSection(drv, models.SectionArticle, s.cfg.MaxArticles)
	if len(frags) == 0 {
		if src, err := drv.PageSource(); err == nil {
			if frag, ok := extract.ArticlePage(src, profileURL); ok {
				frags = []models.RawFragment{frag}
			}
		}
	}

	if err := drv.Navigate(profileURL); err != nil {
		s.logger.Printf("returning to profile: %v", err)
		return frags
	}
	drv.Wait(s.cfg.Waits.Short)
	return frags
}

// activitySection prefers the dedicated activity page when a "see all
// activity" link exists, otherwise uses posts already on the current page.
func (s *Scraper) activitySection(drv Driver) []models.RawFragment {
	if err := drv.ClickFirst(activityLinkSelector); err != nil {
		s.logger.Printf("no activity link, using current page: %v", err)
	} else {
		drv.Wait(s.cfg.Waits.Short)
	}
	return s.pageSection(drv, models.SectionActivity, s.cfg.MaxPosts)
}

// pageSection extracts one section's fragments from the current page.
// Extraction errors are local: logged and reduced to an empty result.
func (s *Scraper) pageSection(drv Driver, section models.Section, limit int) []models.RawFragment {
	src, err := drv.PageSource()
	if err != nil {
		s.logger.Printf("%s: page source: %v", section, err)
		return nil
	}
	frags, err := extract.Containers(src, section, limit)
	if err != nil {
		s.logger.Printf("%s: extraction: %v", section, err)
		return nil
	}
	s.logger.Printf("%s: %d fragment(s)", section, len(frags))
	return frags
}
