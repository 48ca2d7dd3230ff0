package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"golang.org/x/time/rate"
)

func newTestRateLimiter(perMin int) *RateLimiter {
	return NewRateLimiter(DefaultRateLimiterConfig(perMin))
}

func TestImportMiddleware_バースト内のリクエストは許可される(t *testing.T) {
	rl := newTestRateLimiter(3)
	defer rl.Stop()

	handler := rl.ImportMiddleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/import", nil)
		req.RemoteAddr = "203.0.113.1:50000"
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		if w.Code != http.StatusOK {
			t.Fatalf("request %d: expected 200, got %d", i+1, w.Code)
		}
	}
}

func TestImportMiddleware_バーストを超えると429(t *testing.T) {
	rl := newTestRateLimiter(1)
	defer rl.Stop()

	handler := rl.ImportMiddleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	first := httptest.NewRequest(http.MethodPost, "/api/import", nil)
	first.RemoteAddr = "203.0.113.1:50000"
	w1 := httptest.NewRecorder()
	handler.ServeHTTP(w1, first)
	if w1.Code != http.StatusOK {
		t.Fatalf("first: expected 200, got %d", w1.Code)
	}

	second := httptest.NewRequest(http.MethodPost, "/api/import", nil)
	second.RemoteAddr = "203.0.113.1:50001" // 同一ホスト、別ポート
	w2 := httptest.NewRecorder()
	handler.ServeHTTP(w2, second)
	if w2.Code != http.StatusTooManyRequests {
		t.Fatalf("second: expected 429, got %d", w2.Code)
	}
	if w2.Header().Get("Retry-After") == "" {
		t.Error("expected Retry-After header")
	}
}

func TestImportMiddleware_クライアントごとに独立して制限される(t *testing.T) {
	rl := newTestRateLimiter(1)
	defer rl.Stop()

	handler := rl.ImportMiddleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	a := httptest.NewRequest(http.MethodPost, "/api/import", nil)
	a.RemoteAddr = "203.0.113.1:50000"
	wa := httptest.NewRecorder()
	handler.ServeHTTP(wa, a)

	// 別クライアントは最初のクライアントの消費に影響されない
	b := httptest.NewRequest(http.MethodPost, "/api/import", nil)
	b.RemoteAddr = "203.0.113.2:50000"
	wb := httptest.NewRecorder()
	handler.ServeHTTP(wb, b)

	if wa.Code != http.StatusOK || wb.Code != http.StatusOK {
		t.Errorf("expected both 200, got %d and %d", wa.Code, wb.Code)
	}
	if rl.LimiterCount() != 2 {
		t.Errorf("expected 2 limiter entries, got %d", rl.LimiterCount())
	}
}

func TestDefaultRateLimiterConfig(t *testing.T) {
	cfg := DefaultRateLimiterConfig(6)
	if cfg.ImportRate != rate.Limit(0.1) {
		t.Errorf("expected rate 0.1 req/sec, got %v", cfg.ImportRate)
	}
	if cfg.ImportBurst != 6 {
		t.Errorf("expected burst 6, got %d", cfg.ImportBurst)
	}

	// 不正値は最低1回/分に丸める
	cfg = DefaultRateLimiterConfig(0)
	if cfg.ImportBurst != 1 {
		t.Errorf("expected burst 1, got %d", cfg.ImportBurst)
	}
}

func TestCleanup_期限切れエントリが削除される(t *testing.T) {
	rl := NewRateLimiter(RateLimiterConfig{
		ImportRate:      rate.Limit(1),
		ImportBurst:     1,
		CleanupInterval: 10 * time.Millisecond,
	})
	defer rl.Stop()

	rl.getOrCreateLimiter("203.0.113.1")
	if rl.LimiterCount() != 1 {
		t.Fatalf("expected 1 entry, got %d", rl.LimiterCount())
	}

	// TTL（CleanupInterval * 2）を過ぎた後のクリーンアップで削除される
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if rl.LimiterCount() == 0 {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Error("expected expired entry to be cleaned up")
}
