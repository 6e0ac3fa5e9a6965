package pool

import (
	"context"
	"time"

	"github.com/Borislavv/advanced-pool/internal/pool/api"
	"github.com/Borislavv/advanced-pool/pkg/prometheus/metrics"
	"github.com/Borislavv/advanced-pool/pkg/prometheus/metrics/keyword"
	"github.com/Borislavv/advanced-pool/pkg/utils"
)

// registerPoolGauges binds pull-style gauges straight to the pool accessors:
// every scrape reads the live values, no sampling loop involved.
func registerPoolGauges(meter metrics.Meter, p *api.ConnPool) {
	meter.RegisterGauge(keyword.PoolAvailableMetricName, func() float64 { return float64(p.Available()) })
	meter.RegisterGauge(keyword.PoolInUseMetricName, func() float64 { return float64(p.InUseCount()) })
	meter.RegisterGauge(keyword.PoolSizeMetricName, func() float64 { return float64(p.Size()) })
	meter.RegisterGauge(keyword.PoolCapacityMetricName, func() float64 { return float64(p.Capacity()) })
	meter.RegisterGauge(keyword.PoolPeakUsageMetricName, func() float64 { return float64(p.Stats().PeakUsage) })
}

// runStatsCollector mirrors the pool's cumulative statistics into prometheus
// counters on a short interval.
func runStatsCollector(ctx context.Context, meter metrics.Meter, p *api.ConnPool) {
	go func() {
		t := utils.NewTicker(ctx, 5*time.Second)
		for {
			select {
			case <-ctx.Done():
				return
			case <-t:
				st := p.Stats()
				meter.SetCounter(keyword.PoolHitsMetricName, st.Hits)
				meter.SetCounter(keyword.PoolMissesMetricName, st.Misses)
				meter.SetCounter(keyword.PoolCleanupsMetricName, st.Cleanups)
				meter.SetCounter(keyword.PoolTimeoutsMetricName, st.TimeoutCount)
				meter.SetCounter(keyword.PoolWaitsMetricName, st.WaitCount)
			}
		}
	}()
}
