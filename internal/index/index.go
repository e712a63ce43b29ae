package index

import (
	"strconv"
	"sync"

	"github.com/blevesearch/bleve"

	"github.com/mohammad-safakhou/doppel/tools/linkedin/models"
)

// Index is an in-memory full-text index over the cached posts, rebuilt after
// every scrape.
type Index struct {
	mu    sync.RWMutex
	idx   bleve.Index
	posts map[string]models.PostRecord
}

type document struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

func New() (*Index, error) {
	idx, err := bleve.NewMemOnly(bleve.NewIndexMapping())
	if err != nil {
		return nil, err
	}
	return &Index{idx: idx, posts: map[string]models.PostRecord{}}, nil
}

// Reindex replaces the index contents with the given posts.
func (i *Index) Reindex(posts []models.PostRecord) error {
	idx, err := bleve.NewMemOnly(bleve.NewIndexMapping())
	if err != nil {
		return err
	}
	lookup := make(map[string]models.PostRecord, len(posts))
	batch := idx.NewBatch()
	for n, p := range posts {
		id := strconv.Itoa(n)
		lookup[id] = p
		if err := batch.Index(id, document{Title: p.Title, Content: p.Content}); err != nil {
			return err
		}
	}
	if err := idx.Batch(batch); err != nil {
		return err
	}

	i.mu.Lock()
	old := i.idx
	i.idx = idx
	i.posts = lookup
	i.mu.Unlock()
	if old != nil {
		_ = old.Close()
	}
	return nil
}

// Search returns posts matching the query, best first.
func (i *Index) Search(q string, limit int) ([]models.PostRecord, error) {
	if limit <= 0 {
		limit = 10
	}
	i.mu.RLock()
	defer i.mu.RUnlock()

	req := bleve.NewSearchRequestOptions(bleve.NewMatchQuery(q), limit, 0, false)
	res, err := i.idx.Search(req)
	if err != nil {
		return nil, err
	}

	out := make([]models.PostRecord, 0, len(res.Hits))
	for _, hit := range res.Hits {
		if p, ok := i.posts[hit.ID]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}
