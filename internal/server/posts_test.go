package server

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"golang.org/x/time/rate"

	"github.com/mohammad-safakhou/doppel/internal/cache"
	"github.com/mohammad-safakhou/doppel/internal/index"
	"github.com/mohammad-safakhou/doppel/tools/linkedin/format"
	"github.com/mohammad-safakhou/doppel/tools/linkedin/models"
)

// stubScraper returns canned numbered-list output and counts invocations.
type stubScraper struct {
	out   string
	calls int
}

func (s *stubScraper) Scrape(context.Context) string {
	s.calls++
	return s.out
}

func samplePosts() []models.PostRecord {
	return []models.PostRecord{
		{Index: 1, Title: "Scaling the ingest pipeline", Content: "How we handled ten times the traffic."},
		{Index: 2, Title: "Hiring engineers", Content: "We are growing the platform team."},
	}
}

func newPostsHandler(t *testing.T, scraper Scraper, limiter *rate.Limiter) *PostsHandler {
	t.Helper()
	idx, err := index.New()
	if err != nil {
		t.Fatalf("index: %v", err)
	}
	if limiter == nil {
		limiter = rate.NewLimiter(rate.Inf, 1)
	}
	return &PostsHandler{
		Scraper: scraper,
		Cache:   cache.NewMemory(time.Hour),
		Index:   idx,
		Limiter: limiter,
		Profile: "jane-doe",
		Logger:  log.New(io.Discard, "", 0),
	}
}

func serve(h *PostsHandler, method, target string) *httptest.ResponseRecorder {
	e := echo.New()
	h.Register(e.Group("/api/linkedin"))
	req := httptest.NewRequest(method, target, nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func decodePosts(t *testing.T, rec *httptest.ResponseRecorder) []models.PostRecord {
	t.Helper()
	var posts []models.PostRecord
	if err := json.Unmarshal(rec.Body.Bytes(), &posts); err != nil {
		t.Fatalf("decoding response: %v\n%s", err, rec.Body.String())
	}
	return posts
}

func TestGetPostsScrapesOnColdCache(t *testing.T) {
	scraper := &stubScraper{out: format.Format(samplePosts())}
	h := newPostsHandler(t, scraper, nil)

	rec := serve(h, http.MethodGet, "/api/linkedin/posts")
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
	}
	posts := decodePosts(t, rec)
	if len(posts) != 2 || posts[0].Title != "Scaling the ingest pipeline" {
		t.Fatalf("unexpected posts: %+v", posts)
	}
	if scraper.calls != 1 {
		t.Fatalf("scraper called %d times", scraper.calls)
	}
}

func TestGetPostsServedFromCache(t *testing.T) {
	scraper := &stubScraper{out: format.Format(samplePosts())}
	h := newPostsHandler(t, scraper, nil)

	e := echo.New()
	h.Register(e.Group("/api/linkedin"))
	for i := 0; i < 3; i++ {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/linkedin/posts", nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("request %d: status %d", i, rec.Code)
		}
	}
	if scraper.calls != 1 {
		t.Fatalf("scraper called %d times, want 1", scraper.calls)
	}
}

func TestRefreshForcesNewScrape(t *testing.T) {
	scraper := &stubScraper{out: format.Format(samplePosts())}
	h := newPostsHandler(t, scraper, nil)

	e := echo.New()
	h.Register(e.Group("/api/linkedin"))

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/linkedin/posts", nil))
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/linkedin/posts/refresh", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("refresh status %d: %s", rec.Code, rec.Body.String())
	}
	if scraper.calls != 2 {
		t.Fatalf("scraper called %d times, want 2", scraper.calls)
	}
}

func TestRefreshRateLimited(t *testing.T) {
	scraper := &stubScraper{out: format.Format(samplePosts())}
	// One scrape per hour: the initial fill consumes the only token.
	h := newPostsHandler(t, scraper, rate.NewLimiter(rate.Every(time.Hour), 1))

	e := echo.New()
	h.Register(e.Group("/api/linkedin"))

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/linkedin/posts", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("initial fill: status %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/linkedin/posts/refresh", nil))
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("status %d, want 429", rec.Code)
	}
	if scraper.calls != 1 {
		t.Fatalf("scraper called %d times, want 1", scraper.calls)
	}
}

func TestSearchPosts(t *testing.T) {
	scraper := &stubScraper{out: format.Format(samplePosts())}
	h := newPostsHandler(t, scraper, nil)

	rec := serve(h, http.MethodGet, "/api/linkedin/posts/search?q=hiring")
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
	}
	posts := decodePosts(t, rec)
	if len(posts) != 1 || posts[0].Title != "Hiring engineers" {
		t.Fatalf("unexpected hits: %+v", posts)
	}
}

func TestSearchRequiresQuery(t *testing.T) {
	h := newPostsHandler(t, &stubScraper{out: "irrelevant"}, nil)

	rec := serve(h, http.MethodGet, "/api/linkedin/posts/search")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status %d, want 400", rec.Code)
	}
}

func TestScraperErrorTextStillServed(t *testing.T) {
	// Scrape failures come back as descriptive text, not errors; the handler
	// wraps that text into a single well-formed record.
	scraper := &stubScraper{out: "There was an error scraping the LinkedIn profile: boom"}
	h := newPostsHandler(t, scraper, nil)

	rec := serve(h, http.MethodGet, "/api/linkedin/posts")
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
	}
	posts := decodePosts(t, rec)
	if len(posts) != 1 {
		t.Fatalf("unexpected posts: %+v", posts)
	}
	if posts[0].Title == "" && posts[0].Content == "" {
		t.Fatalf("empty record served: %+v", posts[0])
	}
}

func TestDedupDropsRepeatedRecords(t *testing.T) {
	posts := dedup([]models.PostRecord{
		{Index: 1, Title: "Same title", Content: "same body"},
		{Index: 2, Title: "Same title", Content: "same body"},
		{Index: 3, Title: "Other", Content: "different"},
	})
	if len(posts) != 2 {
		t.Fatalf("got %d posts, want 2", len(posts))
	}
	if posts[0].Index != 1 || posts[1].Index != 2 {
		t.Fatalf("indexes not rewritten: %+v", posts)
	}
}
