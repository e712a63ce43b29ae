package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	scrapesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "doppel_scrapes_total",
		Help: "Number of LinkedIn scrapes attempted.",
	})
	postsScraped = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "doppel_posts_cached",
		Help: "Number of post records currently cached.",
	})
	generationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "doppel_generations_total",
		Help: "Number of post generations, by result.",
	}, []string{"result"})
)
