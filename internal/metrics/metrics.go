// Package metrics はPrometheusメトリクスの収集と公開を提供する。
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsCollector はメトリクス収集のインターフェース。
// 認証・リセット・レシピ・レジャーの各サービス層から利用する。
type MetricsCollector interface {
	RecordSignup(success bool)
	RecordLogin(success bool)
	RecordResetIssued()
	RecordResetCompleted()
	RecordResetRejected()
	RecordUpstreamRequest(endpoint string, statusCode int, duration time.Duration)
	RecordLedgerWrite(ledger, op string)
	RecordSessionsPurged(count int)
}

// Collector はPrometheusメトリクスを収集する実装。
type Collector struct {
	signups         *prometheus.CounterVec
	logins          *prometheus.CounterVec
	resetIssued     prometheus.Counter
	resetCompleted  prometheus.Counter
	resetRejected   prometheus.Counter
	upstreamStatus  *prometheus.CounterVec
	upstreamLatency prometheus.Histogram
	ledgerWrites    *prometheus.CounterVec
	sessionsPurged  prometheus.Counter
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		signups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "kondate_signups_total",
			Help: "サインアップ試行の合計数（成否別）",
		}, []string{"result"}),
		logins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "kondate_logins_total",
			Help: "ログイン試行の合計数（成否別）",
		}, []string{"result"}),
		resetIssued: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "kondate_reset_tokens_issued_total",
			Help: "発行されたパスワード再設定トークンの合計数",
		}),
		resetCompleted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "kondate_reset_completed_total",
			Help: "完了したパスワード再設定の合計数",
		}),
		resetRejected: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "kondate_reset_rejected_total",
			Help: "拒否されたパスワード再設定トークンの合計数",
		}),
		upstreamStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "kondate_recipe_api_requests_total",
			Help: "レシピAPIリクエストの合計数（エンドポイント・ステータス別）",
		}, []string{"endpoint", "status_code"}),
		upstreamLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "kondate_recipe_api_latency_seconds",
			Help:    "レシピAPIリクエストのレイテンシ（秒）",
			Buckets: prometheus.DefBuckets,
		}),
		ledgerWrites: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "kondate_ledger_writes_total",
			Help: "レジャー書き込み操作の合計数（種別・操作別）",
		}, []string{"ledger", "op"}),
		sessionsPurged: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "kondate_sessions_purged_total",
			Help: "パージされた期限切れセッションの合計数",
		}),
	}

	reg.MustRegister(
		c.signups,
		c.logins,
		c.resetIssued,
		c.resetCompleted,
		c.resetRejected,
		c.upstreamStatus,
		c.upstreamLatency,
		c.ledgerWrites,
		c.sessionsPurged,
	)

	return c
}

// RecordSignup はサインアップ試行を成否別に記録する。
func (c *Collector) RecordSignup(success bool) {
	c.signups.WithLabelValues(resultLabel(success)).Inc()
}

// RecordLogin はログイン試行を成否別に記録する。
func (c *Collector) RecordLogin(success bool) {
	c.logins.WithLabelValues(resultLabel(success)).Inc()
}

// RecordResetIssued はリセットトークンの発行を記録する。
func (c *Collector) RecordResetIssued() {
	c.resetIssued.Inc()
}

// RecordResetCompleted はパスワード再設定の完了を記録する。
func (c *Collector) RecordResetCompleted() {
	c.resetCompleted.Inc()
}

// RecordResetRejected はリセットトークンの拒否を記録する。
func (c *Collector) RecordResetRejected() {
	c.resetRejected.Inc()
}

// RecordUpstreamRequest はレシピAPIへのリクエスト結果を記録する。
// statusCode 0 は接続失敗を表す。
func (c *Collector) RecordUpstreamRequest(endpoint string, statusCode int, duration time.Duration) {
	c.upstreamStatus.WithLabelValues(endpoint, strconv.Itoa(statusCode)).Inc()
	c.upstreamLatency.Observe(duration.Seconds())
}

// RecordLedgerWrite はレジャーへの書き込み操作を記録する。
func (c *Collector) RecordLedgerWrite(ledger, op string) {
	c.ledgerWrites.WithLabelValues(ledger, op).Inc()
}

// RecordSessionsPurged はパージされた期限切れセッション数を記録する。
func (c *Collector) RecordSessionsPurged(count int) {
	c.sessionsPurged.Add(float64(count))
}

func resultLabel(success bool) string {
	if success {
		return "success"
	}
	return "failure"
}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// SetupMetricsRoute は/metricsエンドポイントを提供するHTTPハンドラーを返す。
// Prometheusスクレイプに対応する。
func SetupMetricsRoute(gatherer prometheus.Gatherer) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler(gatherer))
	return mux
}
