package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/hitoshi/castpress/internal/model"
)

// --- モック定義 ---

// mockSettingRepo はSettingRepositoryのモック実装。
type mockSettingRepo struct {
	values map[string]string
	getErr error
	setErr error
}

func newMockSettingRepo() *mockSettingRepo {
	return &mockSettingRepo{values: make(map[string]string)}
}

func (m *mockSettingRepo) Get(_ context.Context, key string) (string, error) {
	if m.getErr != nil {
		return "", m.getErr
	}
	return m.values[key], nil
}

func (m *mockSettingRepo) Set(_ context.Context, key, value string) error {
	if m.setErr != nil {
		return m.setErr
	}
	m.values[key] = value
	return nil
}

// mockDetector はFeedURLDetectorのモック実装。
type mockDetector struct {
	detectFn func(ctx context.Context, inputURL string) (string, error)
}

func (m *mockDetector) DetectFeedURL(ctx context.Context, inputURL string) (string, error) {
	if m.detectFn != nil {
		return m.detectFn(ctx, inputURL)
	}
	return inputURL, nil
}

// --- テストヘルパー ---

// parseAPIErrorResponse はレスポンスボディからAPIErrorレスポンスをパースするヘルパー。
func parseAPIErrorResponse(t *testing.T, w *httptest.ResponseRecorder) map[string]string {
	t.Helper()
	var result map[string]string
	if err := json.NewDecoder(w.Body).Decode(&result); err != nil {
		t.Fatalf("failed to decode error response: %v", err)
	}
	return result
}

// --- テスト ---

func TestGetFeedURL_設定済みのURLを返す(t *testing.T) {
	repo := newMockSettingRepo()
	repo.values["feed_url"] = "https://podcast.example.com/feed.xml"
	h := NewSettingsHandler(repo, &mockDetector{})

	req := httptest.NewRequest(http.MethodGet, "/api/settings/feed-url", nil)
	w := httptest.NewRecorder()
	h.GetFeedURL(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var resp feedURLResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode: %v", err)
	}
	if resp.FeedURL != "https://podcast.example.com/feed.xml" {
		t.Errorf("unexpected feed_url: %s", resp.FeedURL)
	}
}

func TestGetFeedURL_未設定の場合は空文字列(t *testing.T) {
	h := NewSettingsHandler(newMockSettingRepo(), &mockDetector{})

	req := httptest.NewRequest(http.MethodGet, "/api/settings/feed-url", nil)
	w := httptest.NewRecorder()
	h.GetFeedURL(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var resp feedURLResponse
	json.NewDecoder(w.Body).Decode(&resp)
	if resp.FeedURL != "" {
		t.Errorf("expected empty feed_url, got %s", resp.FeedURL)
	}
}

func TestUpdateFeedURL_検出されたフィードURLを保存する(t *testing.T) {
	repo := newMockSettingRepo()
	detector := &mockDetector{
		detectFn: func(_ context.Context, inputURL string) (string, error) {
			// サイトURLからフィードURLが検出される想定
			return "https://podcast.example.com/feed.xml", nil
		},
	}
	h := NewSettingsHandler(repo, detector)

	body, _ := json.Marshal(map[string]string{"url": "https://podcast.example.com"})
	req := httptest.NewRequest(http.MethodPut, "/api/settings/feed-url", bytes.NewReader(body))
	w := httptest.NewRecorder()
	h.UpdateFeedURL(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if repo.values["feed_url"] != "https://podcast.example.com/feed.xml" {
		t.Errorf("expected detected URL to be stored, got %q", repo.values["feed_url"])
	}
}

func TestUpdateFeedURL_空のURLは400(t *testing.T) {
	h := NewSettingsHandler(newMockSettingRepo(), &mockDetector{})

	body, _ := json.Marshal(map[string]string{"url": ""})
	req := httptest.NewRequest(http.MethodPut, "/api/settings/feed-url", bytes.NewReader(body))
	w := httptest.NewRecorder()
	h.UpdateFeedURL(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	resp := parseAPIErrorResponse(t, w)
	if resp["code"] != model.ErrCodeInvalidURL {
		t.Errorf("expected INVALID_URL, got %s", resp["code"])
	}
}

func TestUpdateFeedURL_不正なJSONは400(t *testing.T) {
	h := NewSettingsHandler(newMockSettingRepo(), &mockDetector{})

	req := httptest.NewRequest(http.MethodPut, "/api/settings/feed-url", bytes.NewReader([]byte("{broken")))
	w := httptest.NewRecorder()
	h.UpdateFeedURL(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestUpdateFeedURL_フィード未検出は422(t *testing.T) {
	repo := newMockSettingRepo()
	detector := &mockDetector{
		detectFn: func(_ context.Context, inputURL string) (string, error) {
			return "", model.NewFeedNotDetectedError(inputURL)
		},
	}
	h := NewSettingsHandler(repo, detector)

	body, _ := json.Marshal(map[string]string{"url": "https://example.com/no-feed"})
	req := httptest.NewRequest(http.MethodPut, "/api/settings/feed-url", bytes.NewReader(body))
	w := httptest.NewRecorder()
	h.UpdateFeedURL(w, req)

	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", w.Code)
	}
	// 検出に失敗した場合、設定は変更されない
	if _, ok := repo.values["feed_url"]; ok {
		t.Error("setting should not be updated on detection failure")
	}
}

func TestUpdateFeedURL_SSRFブロックは403(t *testing.T) {
	detector := &mockDetector{
		detectFn: func(_ context.Context, _ string) (string, error) {
			return "", model.NewSSRFBlockedError()
		},
	}
	h := NewSettingsHandler(newMockSettingRepo(), detector)

	body, _ := json.Marshal(map[string]string{"url": "http://192.168.1.1/feed"})
	req := httptest.NewRequest(http.MethodPut, "/api/settings/feed-url", bytes.NewReader(body))
	w := httptest.NewRecorder()
	h.UpdateFeedURL(w, req)

	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", w.Code)
	}
}

func TestUpdateFeedURL_保存失敗は500(t *testing.T) {
	repo := newMockSettingRepo()
	repo.setErr = errors.New("db error")
	h := NewSettingsHandler(repo, &mockDetector{})

	body, _ := json.Marshal(map[string]string{"url": "https://podcast.example.com/feed.xml"})
	req := httptest.NewRequest(http.MethodPut, "/api/settings/feed-url", bytes.NewReader(body))
	w := httptest.NewRecorder()
	h.UpdateFeedURL(w, req)

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", w.Code)
	}
}
