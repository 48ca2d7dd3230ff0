package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/hitoshi/castpress/internal/model"
	"github.com/hitoshi/castpress/internal/repository"
)

// FeedURLDetector はユーザー入力URLからフィードURLを確定するインターフェース。
// 入力が直接フィードの場合はそのまま、HTMLページの場合はautodiscoveryで検出する。
type FeedURLDetector interface {
	DetectFeedURL(ctx context.Context, inputURL string) (string, error)
}

// SettingsHandler はフィードURL設定のHTTPハンドラー。
type SettingsHandler struct {
	settingRepo repository.SettingRepository
	detector    FeedURLDetector
}

// NewSettingsHandler はSettingsHandlerを生成する。
func NewSettingsHandler(settingRepo repository.SettingRepository, detector FeedURLDetector) *SettingsHandler {
	return &SettingsHandler{
		settingRepo: settingRepo,
		detector:    detector,
	}
}

// feedURLResponse はフィードURL設定のAPIレスポンス。
type feedURLResponse struct {
	FeedURL string `json:"feed_url"`
}

// updateFeedURLRequest はフィードURL更新リクエストのボディ。
type updateFeedURLRequest struct {
	URL string `json:"url"`
}

// GetFeedURL は現在設定されているフィードURLを返す。未設定の場合は空文字列。
// GET /api/settings/feed-url
func (h *SettingsHandler) GetFeedURL(w http.ResponseWriter, r *http.Request) {
	feedURL, err := h.settingRepo.Get(r.Context(), repository.SettingKeyFeedURL)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSONResponse(w, http.StatusOK, feedURLResponse{FeedURL: feedURL})
}

// UpdateFeedURL は入力URLからフィードURLを検出して保存する。
// 検出に成功した場合のみ設定が更新される。
// PUT /api/settings/feed-url
func (h *SettingsHandler) UpdateFeedURL(w http.ResponseWriter, r *http.Request) {
	var req updateFeedURLRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, &model.APIError{
			Code:     "INVALID_REQUEST",
			Message:  "リクエストボディの解析に失敗しました。",
			Category: "validation",
			Action:   "正しいJSON形式でリクエストしてください。",
		})
		return
	}

	if req.URL == "" {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewInvalidURLError("URLが空です"))
		return
	}

	feedURL, err := h.detector.DetectFeedURL(r.Context(), req.URL)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	if err := h.settingRepo.Set(r.Context(), repository.SettingKeyFeedURL, feedURL); err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSONResponse(w, http.StatusOK, feedURLResponse{FeedURL: feedURL})
}
