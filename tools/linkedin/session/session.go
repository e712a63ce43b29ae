package session

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"strings"
	"time"

	"github.com/chromedp/chromedp"

	"github.com/mohammad-safakhou/doppel/tools/linkedin/models"
)

const (
	loginURL = "https://www.linkedin.com/login"

	// How long to wait for a DOM lookup before treating the element as
	// absent. Kept short so a missing section degrades fast.
	lookupTimeout = 5 * time.Second

	userAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/125.0 Safari/537.36"
)

// Pacing holds the randomized delay ranges applied between interactive
// actions. Distinct ranges exist for keystrokes, scrolls and everything else.
type Pacing struct {
	ActionMin    time.Duration
	ActionMax    time.Duration
	KeystrokeMin time.Duration
	KeystrokeMax time.Duration
	ScrollMin    time.Duration
	ScrollMax    time.Duration
}

// Waits holds the fixed page-load settle periods and the grace window granted
// for a manual security-challenge resolution.
type Waits struct {
	Short         time.Duration
	Medium        time.Duration
	Long          time.Duration
	SecurityGrace time.Duration
}

// Options configures a browser session.
type Options struct {
	Headless   bool
	ChromePath string
	Pacing     Pacing
	Waits      Waits
	Logger     *log.Logger
}

// Session owns one Chrome instance. It is the only mutable external resource
// of a scrape and must be closed on every exit path.
type Session struct {
	ctx    context.Context
	cancel []context.CancelFunc

	pacing Pacing
	waits  Waits
	logger *log.Logger
}

// Open launches an isolated browser configured to look less like an
// automated one: no automation blink feature, no notifications, no popups.
func Open(ctx context.Context, opts Options) (*Session, error) {
	if opts.Logger == nil {
		opts.Logger = log.New(log.Writer(), "[SESSION] ", log.LstdFlags)
	}

	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", opts.Headless),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-notifications", true),
		chromedp.Flag("disable-popup-blocking", true),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.UserAgent(userAgent),
	)
	if opts.ChromePath != "" {
		allocOpts = append(allocOpts, chromedp.ExecPath(opts.ChromePath))
	}

	actx, cancelAlloc := chromedp.NewExecAllocator(ctx, allocOpts...)
	bctx, cancelBrowser := chromedp.NewContext(actx)

	s := &Session{
		ctx:    bctx,
		cancel: []context.CancelFunc{cancelBrowser, cancelAlloc},
		pacing: opts.Pacing,
		waits:  opts.Waits,
		logger: opts.Logger,
	}

	if err := chromedp.Run(bctx, chromedp.Navigate("about:blank")); err != nil {
		s.Close()
		return nil, fmt.Errorf("starting chrome: %w", err)
	}
	return s, nil
}

// Authenticate logs in to LinkedIn, typing both credentials character by
// character with randomized inter-keystroke delays. A detected security
// challenge is not an error: the session sleeps the configured grace window
// so a human can resolve it out of band, then proceeds regardless.
func (s *Session) Authenticate(username, password string) (models.AuthResult, error) {
	if strings.TrimSpace(username) == "" || strings.TrimSpace(password) == "" {
		return models.AuthFailure, models.ErrCredentialsMissing
	}

	if err := s.Navigate(loginURL); err != nil {
		return models.AuthFailure, fmt.Errorf("login page: %w", err)
	}
	s.Pause()

	challenged := false
	if s.securityChallengePresent() {
		challenged = true
		s.waitOutChallenge("initial page load")
	}

	if err := s.typeSlowly("#username", username); err != nil {
		return models.AuthFailure, fmt.Errorf("typing username: %w", err)
	}
	s.PauseScroll()
	if err := s.typeSlowly("#password", password); err != nil {
		return models.AuthFailure, fmt.Errorf("typing password: %w", err)
	}
	s.Pause()

	if err := s.run(chromedp.KeyEvent("\r")); err != nil {
		return models.AuthFailure, fmt.Errorf("submitting login form: %w", err)
	}

	s.logger.Printf("waiting for login to complete")
	s.Wait(s.waits.Long)

	if s.securityChallengePresent() {
		challenged = true
		s.waitOutChallenge("after login")
	}
	if challenged {
		return models.AuthSecurityChallenge, nil
	}
	return models.AuthSuccess, nil
}

// Navigate loads a URL and blocks until the body is ready.
func (s *Session) Navigate(url string) error {
	return s.run(
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
	)
}

// PageSource returns the current document's outer HTML.
func (s *Session) PageSource() (string, error) {
	var html string
	if err := s.run(chromedp.OuterHTML("html", &html, chromedp.ByQuery)); err != nil {
		return "", err
	}
	return html, nil
}

// ClickFirst clicks the first element matching the selector. A missing
// element surfaces as an error within lookupTimeout; callers treat that as
// "section absent", never as a fatal condition.
func (s *Session) ClickFirst(selector string) error {
	ctx, cancel := context.WithTimeout(s.ctx, lookupTimeout)
	defer cancel()
	return chromedp.Run(ctx, chromedp.Click(selector, chromedp.ByQuery, chromedp.NodeVisible))
}

// ScrollBy moves the viewport down by px pixels.
func (s *Session) ScrollBy(px int) error {
	return s.run(chromedp.Evaluate(fmt.Sprintf("window.scrollBy(0, %d);", px), nil))
}

// Pause sleeps a random duration from the generic action range.
func (s *Session) Pause() { randomSleep(s.pacing.ActionMin, s.pacing.ActionMax) }

// PauseScroll sleeps a random duration from the scroll range.
func (s *Session) PauseScroll() { randomSleep(s.pacing.ScrollMin, s.pacing.ScrollMax) }

// Wait sleeps a fixed settle period.
func (s *Session) Wait(d time.Duration) {
	if d > 0 {
		time.Sleep(d)
	}
}

// Close releases every browser resource. Safe to call more than once.
func (s *Session) Close() {
	for _, cancel := range s.cancel {
		cancel()
	}
}

func (s *Session) run(actions ...chromedp.Action) error {
	return chromedp.Run(s.ctx, actions...)
}

// typeSlowly sends text one character at a time with a randomized delay
// between keystrokes, to emulate human typing rather than an instant fill.
func (s *Session) typeSlowly(selector, text string) error {
	ctx, cancel := context.WithTimeout(s.ctx, lookupTimeout)
	defer cancel()
	if err := chromedp.Run(ctx, chromedp.WaitVisible(selector, chromedp.ByQuery)); err != nil {
		return err
	}
	for _, ch := range text {
		if err := s.run(chromedp.SendKeys(selector, string(ch), chromedp.ByQuery)); err != nil {
			return err
		}
		randomSleep(s.pacing.KeystrokeMin, s.pacing.KeystrokeMax)
	}
	return nil
}

// securityChallengePresent reports whether the current page looks like a
// verification interstitial.
func (s *Session) securityChallengePresent() bool {
	src, err := s.PageSource()
	if err != nil {
		return false
	}
	lower := strings.ToLower(src)
	return strings.Contains(lower, "security check") || strings.Contains(lower, "security verification")
}

// waitOutChallenge yields the configured grace window so a human can solve
// the challenge in the open browser window. There is no automated solving
// and no retry: after the window the flow continues either way.
func (s *Session) waitOutChallenge(where string) {
	s.logger.Printf("security challenge detected (%s); waiting %s for manual resolution", where, s.waits.SecurityGrace)
	s.Wait(s.waits.SecurityGrace)
}

func randomSleep(min, max time.Duration) {
	if max <= min {
		if min > 0 {
			time.Sleep(min)
		}
		return
	}
	time.Sleep(min + time.Duration(rand.Int63n(int64(max-min))))
}
