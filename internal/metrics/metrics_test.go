package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// TestNewCollector_ReturnsNonNil はCollectorが正常に生成されることを検証する。
func TestNewCollector_ReturnsNonNil(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	if c == nil {
		t.Fatal("expected non-nil Collector")
	}
}

// counterValue は指定名・ラベルのカウンタ値をレジストリから取得する。
func counterValue(t *testing.T, reg *prometheus.Registry, name string, labels map[string]string) float64 {
	t.Helper()
	metrics, err := reg.Gather()
	if err != nil {
		t.Fatalf("failed to gather metrics: %v", err)
	}

	for _, mf := range metrics {
		if mf.GetName() != name {
			continue
		}
		for _, m := range mf.GetMetric() {
			matched := true
			for _, lp := range m.GetLabel() {
				if want, ok := labels[lp.GetName()]; ok && lp.GetValue() != want {
					matched = false
					break
				}
			}
			if matched {
				return m.GetCounter().GetValue()
			}
		}
	}
	t.Fatalf("metric %s with labels %v not found", name, labels)
	return 0
}

// TestRecordSignup_IncrementsCounter はサインアップカウンタが成否別に増加することを検証する。
func TestRecordSignup_IncrementsCounter(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordSignup(true)
	c.RecordSignup(true)
	c.RecordSignup(false)

	if got := counterValue(t, reg, "kondate_signups_total", map[string]string{"result": "success"}); got != 2 {
		t.Errorf("signups success = %v, want 2", got)
	}
	if got := counterValue(t, reg, "kondate_signups_total", map[string]string{"result": "failure"}); got != 1 {
		t.Errorf("signups failure = %v, want 1", got)
	}
}

// TestRecordLogin_IncrementsCounter はログインカウンタが成否別に増加することを検証する。
func TestRecordLogin_IncrementsCounter(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordLogin(false)
	c.RecordLogin(false)

	if got := counterValue(t, reg, "kondate_logins_total", map[string]string{"result": "failure"}); got != 2 {
		t.Errorf("logins failure = %v, want 2", got)
	}
}

// TestRecordReset_Counters はリセット関連の3カウンタが独立に増加することを検証する。
func TestRecordReset_Counters(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordResetIssued()
	c.RecordResetIssued()
	c.RecordResetCompleted()
	c.RecordResetRejected()
	c.RecordResetRejected()
	c.RecordResetRejected()

	if got := counterValue(t, reg, "kondate_reset_tokens_issued_total", nil); got != 2 {
		t.Errorf("reset issued = %v, want 2", got)
	}
	if got := counterValue(t, reg, "kondate_reset_completed_total", nil); got != 1 {
		t.Errorf("reset completed = %v, want 1", got)
	}
	if got := counterValue(t, reg, "kondate_reset_rejected_total", nil); got != 3 {
		t.Errorf("reset rejected = %v, want 3", got)
	}
}

// TestRecordUpstreamRequest はレシピAPIリクエストがエンドポイント・ステータス別に
// 記録されることを検証する。
func TestRecordUpstreamRequest(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordUpstreamRequest("/recipes/findByIngredients", 200, 120*time.Millisecond)
	c.RecordUpstreamRequest("/recipes/findByIngredients", 200, 80*time.Millisecond)
	c.RecordUpstreamRequest("/recipes/101/information", 500, 30*time.Millisecond)

	if got := counterValue(t, reg, "kondate_recipe_api_requests_total",
		map[string]string{"endpoint": "/recipes/findByIngredients", "status_code": "200"}); got != 2 {
		t.Errorf("upstream 200 = %v, want 2", got)
	}
	if got := counterValue(t, reg, "kondate_recipe_api_requests_total",
		map[string]string{"endpoint": "/recipes/101/information", "status_code": "500"}); got != 1 {
		t.Errorf("upstream 500 = %v, want 1", got)
	}
}

// TestRecordLedgerWrite はレジャー書き込みが種別・操作別に記録されることを検証する。
func TestRecordLedgerWrite(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordLedgerWrite("favorite", "add")
	c.RecordLedgerWrite("favorite", "remove")
	c.RecordLedgerWrite("favorite", "add")

	if got := counterValue(t, reg, "kondate_ledger_writes_total",
		map[string]string{"ledger": "favorite", "op": "add"}); got != 2 {
		t.Errorf("ledger add = %v, want 2", got)
	}
	if got := counterValue(t, reg, "kondate_ledger_writes_total",
		map[string]string{"ledger": "favorite", "op": "remove"}); got != 1 {
		t.Errorf("ledger remove = %v, want 1", got)
	}
}

// TestRecordSessionsPurged はセッションパージ数が加算されることを検証する。
func TestRecordSessionsPurged(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordSessionsPurged(3)
	c.RecordSessionsPurged(2)

	if got := counterValue(t, reg, "kondate_sessions_purged_total", nil); got != 5 {
		t.Errorf("sessions purged = %v, want 5", got)
	}
}
