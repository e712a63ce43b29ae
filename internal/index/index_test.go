package index

import (
	"testing"

	"github.com/mohammad-safakhou/doppel/tools/linkedin/models"
)

func testPosts() []models.PostRecord {
	return []models.PostRecord{
		{Index: 1, Title: "Scaling the ingest pipeline", Content: "How we handled ten times the traffic."},
		{Index: 2, Title: "Hiring engineers", Content: "We are growing the platform team."},
		{Index: 3, Title: "Conference recap", Content: "Notes from the systems conference keynote."},
	}
}

func TestSearchFindsMatchingPost(t *testing.T) {
	idx, err := New()
	if err != nil {
		t.Fatalf("new index: %v", err)
	}
	if err := idx.Reindex(testPosts()); err != nil {
		t.Fatalf("reindex: %v", err)
	}

	hits, err := idx.Search("hiring", 10)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(hits) != 1 || hits[0].Title != "Hiring engineers" {
		t.Fatalf("unexpected hits: %+v", hits)
	}
}

func TestSearchMatchesContent(t *testing.T) {
	idx, err := New()
	if err != nil {
		t.Fatalf("new index: %v", err)
	}
	if err := idx.Reindex(testPosts()); err != nil {
		t.Fatalf("reindex: %v", err)
	}

	hits, err := idx.Search("keynote", 10)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(hits) != 1 || hits[0].Title != "Conference recap" {
		t.Fatalf("unexpected hits: %+v", hits)
	}
}

func TestReindexReplacesContents(t *testing.T) {
	idx, err := New()
	if err != nil {
		t.Fatalf("new index: %v", err)
	}
	if err := idx.Reindex(testPosts()); err != nil {
		t.Fatalf("reindex: %v", err)
	}
	if err := idx.Reindex([]models.PostRecord{{Index: 1, Title: "Only post", Content: "nothing else remains"}}); err != nil {
		t.Fatalf("second reindex: %v", err)
	}

	hits, err := idx.Search("hiring", 10)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(hits) != 0 {
		t.Fatalf("stale hits after reindex: %+v", hits)
	}
}

func TestSearchOnEmptyIndex(t *testing.T) {
	idx, err := New()
	if err != nil {
		t.Fatalf("new index: %v", err)
	}
	hits, err := idx.Search("anything", 10)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(hits) != 0 {
		t.Fatalf("unexpected hits: %+v", hits)
	}
}
