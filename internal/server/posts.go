package server

import (
	"context"
	"errors"
	"log"
	"net/http"
	"sync"

	"github.com/labstack/echo/v4"
	"golang.org/x/time/rate"

	"github.com/mohammad-safakhou/doppel/internal/cache"
	"github.com/mohammad-safakhou/doppel/internal/index"
	"github.com/mohammad-safakhou/doppel/tools/linkedin/format"
	"github.com/mohammad-safakhou/doppel/tools/linkedin/models"
	"github.com/mohammad-safakhou/doppel/tools/linkedin/normalize"
)

// Scraper is the scrape surface the handlers need; the linkedin scraper
// implements it and tests stub it.
type Scraper interface {
	Scrape(ctx context.Context) string
}

// ErrScrapeRateLimited is returned when a scrape is requested before the
// minimum interval since the previous one has passed.
var ErrScrapeRateLimited = errors.New("scrape rate limit reached, try again later")

// PostsHandler serves the scraped posts, backed by the explicit cache.
type PostsHandler struct {
	Scraper Scraper
	Cache   cache.Cache
	Index   *index.Index
	Limiter *rate.Limiter
	Profile string
	Logger  *log.Logger

	// serializes scrapes; one browser at a time.
	mu sync.Mutex
}

func (h *PostsHandler) Register(g *echo.Group) {
	g.GET("/posts", h.get)
	g.POST("/posts/refresh", h.refresh)
	g.GET("/posts/search", h.search)
}

func (h *PostsHandler) get(c echo.Context) error {
	posts, err := h.Posts(c.Request().Context())
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, posts)
}

func (h *PostsHandler) refresh(c echo.Context) error {
	ctx := c.Request().Context()
	if err := h.Cache.Invalidate(ctx); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	posts, err := h.scrape(ctx)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, posts)
}

func (h *PostsHandler) search(c echo.Context) error {
	q := c.QueryParam("q")
	if q == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "q required")
	}
	if _, err := h.Posts(c.Request().Context()); err != nil && !errors.Is(err, ErrScrapeRateLimited) {
		return httpError(err)
	}
	posts, err := h.Index.Search(q, 10)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, posts)
}

// Posts returns the cached records, scraping on a cold cache.
func (h *PostsHandler) Posts(ctx context.Context) ([]models.PostRecord, error) {
	posts, hit, err := h.Cache.Get(ctx)
	if err != nil {
		return nil, err
	}
	if hit {
		return posts, nil
	}
	return h.scrape(ctx)
}

// scrape runs one scrape, parses its textual output back into records,
// dedups, and fills cache and index. The scraper's output is always
// well-formed text, including on failure, so parsing never errors.
func (h *PostsHandler) scrape(ctx context.Context) ([]models.PostRecord, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	// Another request may have finished the scrape while we waited.
	if posts, hit, err := h.Cache.Get(ctx); err == nil && hit {
		return posts, nil
	}

	if !h.Limiter.Allow() {
		return nil, ErrScrapeRateLimited
	}

	scrapesTotal.Inc()
	raw := h.Scraper.Scrape(ctx)
	posts := dedup(format.Parse(raw))
	if len(posts) == 0 {
		posts = []models.PostRecord{normalize.Placeholder(h.Profile)}
	}
	postsScraped.Set(float64(len(posts)))

	if err := h.Cache.Set(ctx, posts); err != nil {
		h.Logger.Printf("cache set: %v", err)
	}
	if err := h.Index.Reindex(posts); err != nil {
		h.Logger.Printf("reindex: %v", err)
	}
	return posts, nil
}

// dedup keeps the first record per content fingerprint, in order.
func dedup(posts []models.PostRecord) []models.PostRecord {
	seen := make(map[string]struct{}, len(posts))
	out := posts[:0]
	for _, p := range posts {
		fp := p.Fingerprint()
		if _, dup := seen[fp]; dup {
			continue
		}
		seen[fp] = struct{}{}
		p.Index = len(out) + 1
		out = append(out, p)
	}
	return out
}

func httpError(err error) error {
	if errors.Is(err, ErrScrapeRateLimited) {
		return echo.NewHTTPError(http.StatusTooManyRequests, err.Error())
	}
	return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
}
