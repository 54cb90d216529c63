package verifycache

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	cacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "celld",
		Subsystem: "verify_cache",
		Name:      "hits_total",
		Help:      "Number of verification cache lookups that found a usable entry.",
	})
	cacheMisses = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "celld",
		Subsystem: "verify_cache",
		Name:      "misses_total",
		Help:      "Number of verification cache lookups that found nothing usable.",
	})
)
