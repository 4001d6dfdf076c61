package correlate

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel/metric"

	"github.com/worklens/worklens/internal/telemetry"
	"github.com/worklens/worklens/internal/types"
)

var runMetrics struct {
	items         metric.Int64Counter
	rejected      metric.Int64Counter
	relationships metric.Int64Counter
	stories       metric.Int64Counter
	duration      metric.Float64Histogram
}

var runMetricsOnce sync.Once

func initRunMetrics() {
	m := telemetry.Meter("github.com/worklens/worklens/correlate")
	runMetrics.items, _ = m.Int64Counter("worklens.run.items",
		metric.WithDescription("Evidence items submitted to correlation runs"),
		metric.WithUnit("{item}"),
	)
	runMetrics.rejected, _ = m.Int64Counter("worklens.run.rejected_items",
		metric.WithDescription("Evidence items rejected during ingestion"),
		metric.WithUnit("{item}"),
	)
	runMetrics.relationships, _ = m.Int64Counter("worklens.run.relationships",
		metric.WithDescription("Relationships accepted above the confidence threshold"),
		metric.WithUnit("{relationship}"),
	)
	runMetrics.stories, _ = m.Int64Counter("worklens.run.stories",
		metric.WithDescription("Work stories produced by correlation runs"),
		metric.WithUnit("{story}"),
	)
	runMetrics.duration, _ = m.Float64Histogram("worklens.run.duration",
		metric.WithDescription("Correlation run duration in milliseconds"),
		metric.WithUnit("ms"),
	)
}

func recordRunMetrics(ctx context.Context, submitted int, out *types.CorrelatedCollection, elapsed time.Duration) {
	runMetricsOnce.Do(initRunMetrics)

	rejected := 0
	for _, w := range out.Warnings {
		if w.ItemID != "" {
			rejected++
		}
	}

	runMetrics.items.Add(ctx, int64(submitted))
	runMetrics.rejected.Add(ctx, int64(rejected))
	runMetrics.relationships.Add(ctx, int64(len(out.Relationships)))
	runMetrics.stories.Add(ctx, int64(len(out.Stories)))
	runMetrics.duration.Record(ctx, float64(elapsed.Milliseconds()))
}
