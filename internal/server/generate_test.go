package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/mohammad-safakhou/doppel/internal/agent"
	"github.com/mohammad-safakhou/doppel/tools/linkedin/format"
)

type stubGenerator struct {
	result  agent.Result
	err     error
	samples string
}

func (g *stubGenerator) GeneratePost(_ context.Context, topic, description, samples string) (agent.Result, error) {
	g.samples = samples
	return g.result, g.err
}

func serveGenerate(h *GenerateHandler, body string) *httptest.ResponseRecorder {
	e := echo.New()
	h.Register(e.Group("/api/generate"))
	req := httptest.NewRequest(http.MethodPost, "/api/generate/post", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestGeneratePost(t *testing.T) {
	gen := &stubGenerator{result: agent.Result{Research: "research notes", Post: "the generated post"}}
	h := &GenerateHandler{
		Posts:     newPostsHandler(t, &stubScraper{out: format.Format(samplePosts())}, nil),
		Generator: gen,
	}

	rec := serveGenerate(h, `{"topic": "platform reliability", "description": "focus on incidents"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
	}

	var resp generateResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if resp.ID == "" {
		t.Fatalf("missing id")
	}
	if resp.Topic != "platform reliability" || resp.GeneratedPost != "the generated post" {
		t.Fatalf("unexpected response: %+v", resp)
	}
	if resp.Research != "research notes" {
		t.Fatalf("unexpected research: %q", resp.Research)
	}
	if len(resp.LinkedInPosts) != 2 {
		t.Fatalf("unexpected sample posts: %+v", resp.LinkedInPosts)
	}
	if !strings.Contains(gen.samples, "1. Scaling the ingest pipeline") {
		t.Fatalf("samples not passed to generator: %q", gen.samples)
	}
}

func TestGenerateRequiresTopic(t *testing.T) {
	h := &GenerateHandler{
		Posts:     newPostsHandler(t, &stubScraper{out: format.Format(samplePosts())}, nil),
		Generator: &stubGenerator{},
	}

	rec := serveGenerate(h, `{"description": "no topic here"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status %d, want 400", rec.Code)
	}
}

func TestGenerateProviderFailure(t *testing.T) {
	h := &GenerateHandler{
		Posts:     newPostsHandler(t, &stubScraper{out: format.Format(samplePosts())}, nil),
		Generator: &stubGenerator{err: fmt.Errorf("model unavailable")},
	}

	rec := serveGenerate(h, `{"topic": "anything"}`)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status %d, want 500", rec.Code)
	}
}
