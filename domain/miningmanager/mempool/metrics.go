package mempool

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	poolTransactions = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "celld",
		Subsystem: "mempool",
		Name:      "transactions",
		Help:      "Number of transactions in the pool.",
	})
	poolBytes = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "celld",
		Subsystem: "mempool",
		Name:      "bytes",
		Help:      "Total serialized size of the pool transactions.",
	})
	poolCycles = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "celld",
		Subsystem: "mempool",
		Name:      "cycles",
		Help:      "Total script cycles of the pool transactions.",
	})
	poolOrphans = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "celld",
		Subsystem: "mempool",
		Name:      "orphans",
		Help:      "Number of transactions in the orphan pool.",
	})
	rejectedTransactions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "celld",
		Subsystem: "mempool",
		Name:      "rejected_transactions_total",
		Help:      "Number of rejected transactions by reject code.",
	}, []string{"code"})
)

// this function MUST be called with the mempool mutex locked for reads
func (mp *mempool) updateMetrics() {
	poolTransactions.Set(float64(mp.transactionsPool.transactionCount()))
	poolBytes.Set(float64(mp.transactionsPool.totalSize))
	poolCycles.Set(float64(mp.transactionsPool.totalCycles))
	poolOrphans.Set(float64(len(mp.orphansPool.allOrphans)))
}

func observeRejection(err error) {
	reject, ok := ExtractReject(err)
	if !ok {
		return
	}
	rejectedTransactions.WithLabelValues(reject.Code.String()).Inc()
}
