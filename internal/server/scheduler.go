package server

import (
	"context"
	"log"
	"time"

	"github.com/gorhill/cronexpr"
)

// Scheduler refreshes the post cache on a cron schedule so the dashboard
// sees reasonably fresh posts without a user pressing refresh.
type Scheduler struct {
	expr   *cronexpr.Expression
	posts  *PostsHandler
	stop   chan struct{}
	logger *log.Logger
}

func NewScheduler(cronSpec string, posts *PostsHandler) (*Scheduler, error) {
	expr, err := cronexpr.Parse(cronSpec)
	if err != nil {
		return nil, err
	}
	return &Scheduler{
		expr:   expr,
		posts:  posts,
		stop:   make(chan struct{}),
		logger: log.New(log.Writer(), "[SCHED] ", log.LstdFlags),
	}, nil
}

func (s *Scheduler) Start() {
	go s.loop()
}

func (s *Scheduler) Shutdown() {
	close(s.stop)
}

func (s *Scheduler) loop() {
	for {
		next := s.expr.Next(time.Now())
		if next.IsZero() {
			s.logger.Printf("cron expression yields no future run, stopping")
			return
		}
		select {
		case <-time.After(time.Until(next)):
			s.refresh()
		case <-s.stop:
			return
		}
	}
}

func (s *Scheduler) refresh() {
	ctx := context.Background()
	if err := s.posts.Cache.Invalidate(ctx); err != nil {
		s.logger.Printf("invalidate: %v", err)
		return
	}
	if _, err := s.posts.scrape(ctx); err != nil {
		s.logger.Printf("refresh scrape: %v", err)
		return
	}
	s.logger.Printf("post cache refreshed")
}
