// Package metrics はPrometheusメトリクスの収集と公開を提供する。
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsCollector はメトリクス収集のインターフェース。
// インポートサービスとアートワーク取得から利用する。
type MetricsCollector interface {
	RecordOutcome(status string)
	RecordArtworkFailure()
	RecordFetchLatency(duration time.Duration)
}

// Collector はPrometheusメトリクスを収集する実装。
type Collector struct {
	outcomes     *prometheus.CounterVec
	artworkFail  prometheus.Counter
	fetchLatency prometheus.Histogram
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		outcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "castpress_import_outcomes_total",
			Help: "処理結果種別ごとのインポート件数",
		}, []string{"status"}),
		artworkFail: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "castpress_artwork_fail_total",
			Help: "アートワーク取得失敗の合計数",
		}),
		fetchLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "castpress_feed_fetch_latency_seconds",
			Help:    "フィードフェッチのレイテンシ（秒）",
			Buckets: prometheus.DefBuckets,
		}),
	}

	reg.MustRegister(
		c.outcomes,
		c.artworkFail,
		c.fetchLatency,
	)

	return c
}

// RecordOutcome はインポート結果種別を記録する。
func (c *Collector) RecordOutcome(status string) {
	c.outcomes.WithLabelValues(status).Inc()
}

// RecordArtworkFailure はアートワーク取得失敗を記録する。
func (c *Collector) RecordArtworkFailure() {
	c.artworkFail.Inc()
}

// RecordFetchLatency はフィードフェッチのレイテンシを記録する。
func (c *Collector) RecordFetchLatency(duration time.Duration) {
	c.fetchLatency.Observe(duration.Seconds())
}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// compile-time interface check
var _ MetricsCollector = (*Collector)(nil)
