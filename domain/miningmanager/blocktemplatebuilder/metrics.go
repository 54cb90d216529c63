package blocktemplatebuilder

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	blockTemplatesBuilt = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "celld",
		Subsystem: "blocktemplate",
		Name:      "built_total",
		Help:      "Number of block templates built.",
	})
	templateTransactions = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "celld",
		Subsystem: "blocktemplate",
		Name:      "transactions",
		Help:      "Number of pool transactions in the latest block template.",
	})
)
