package jobs

import (
	"context"
	"log"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"moneytalk/internal/convo"
)

var activeContexts = promauto.NewGauge(prometheus.GaugeOpts{
	Name: "moneytalk_active_conversations",
	Help: "Conversation contexts currently alive in the store.",
})

// ContextMetricsJob periodically reaps expired conversation contexts
// and exports the live count.
type ContextMetricsJob struct {
	store    *convo.Store
	interval time.Duration
}

func NewContextMetricsJob(store *convo.Store) *ContextMetricsJob {
	return &ContextMetricsJob{store: store, interval: 5 * time.Minute}
}

func (j *ContextMetricsJob) Run(context.Context) error {
	count := j.store.Reap()
	activeContexts.Set(float64(count))
	log.Printf("💬 [CONTEXT] %d active conversations", count)
	return nil
}

func (j *ContextMetricsJob) NextRun() time.Time {
	return time.Now().Add(j.interval)
}
