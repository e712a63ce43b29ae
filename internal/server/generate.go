package server

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/mohammad-safakhou/doppel/internal/agent"
	"github.com/mohammad-safakhou/doppel/tools/linkedin/format"
	"github.com/mohammad-safakhou/doppel/tools/linkedin/models"
)

// Generator runs the research-then-compose pipeline.
type Generator interface {
	GeneratePost(ctx context.Context, topic, description, samples string) (agent.Result, error)
}

type GenerateHandler struct {
	Posts     *PostsHandler
	Generator Generator
}

type generateRequest struct {
	Topic       string `json:"topic"`
	Description string `json:"description,omitempty"`
}

type generateResponse struct {
	ID            string              `json:"id"`
	Topic         string              `json:"topic"`
	Description   string              `json:"description,omitempty"`
	LinkedInPosts []models.PostRecord `json:"linkedin_posts"`
	Research      string              `json:"research_result"`
	GeneratedPost string              `json:"generated_post"`
	Timestamp     string              `json:"timestamp"`
}

func (h *GenerateHandler) Register(g *echo.Group) {
	g.POST("/post", h.post)
}

// post generates a LinkedIn post about a topic: sample posts establish the
// writing style, the research step gathers material, and the compose step
// writes in that style.
func (h *GenerateHandler) post(c echo.Context) error {
	var req generateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if req.Topic == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "topic is required")
	}

	ctx := c.Request().Context()
	posts, err := h.Posts.Posts(ctx)
	if err != nil {
		return httpError(err)
	}
	samples := format.Format(posts)

	result, err := h.Generator.GeneratePost(ctx, req.Topic, req.Description, samples)
	if err != nil {
		generationsTotal.WithLabelValues("error").Inc()
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	generationsTotal.WithLabelValues("ok").Inc()

	return c.JSON(http.StatusOK, generateResponse{
		ID:            uuid.NewString(),
		Topic:         req.Topic,
		Description:   req.Description,
		LinkedInPosts: posts,
		Research:      result.Research,
		GeneratedPost: result.Post,
		Timestamp:     time.Now().Format(time.RFC3339),
	})
}
