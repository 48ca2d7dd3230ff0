package handler

import (
	"context"
	"net/http"

	"github.com/hitoshi/castpress/internal/model"
	"github.com/hitoshi/castpress/internal/repository"
)

// EpisodeFetcher は設定済みフィードからエピソード候補列を取得するインターフェース。
type EpisodeFetcher interface {
	Fetch(ctx context.Context, feedURL string) ([]model.Episode, error)
}

// ImportChecker はGUIDがインポート済みかどうかを判定するインターフェース。
type ImportChecker interface {
	ExistsByGUID(ctx context.Context, guid string) (bool, error)
}

// EpisodesHandler はエピソード一覧のHTTPハンドラー。
// 管理UIのチェックリスト表示用に、フィードの現在の内容とインポート状況を返す。
type EpisodesHandler struct {
	settingRepo repository.SettingRepository
	fetcher     EpisodeFetcher
	posts       ImportChecker
}

// NewEpisodesHandler はEpisodesHandlerを生成する。
func NewEpisodesHandler(settingRepo repository.SettingRepository, fetcher EpisodeFetcher, posts ImportChecker) *EpisodesHandler {
	return &EpisodesHandler{
		settingRepo: settingRepo,
		fetcher:     fetcher,
		posts:       posts,
	}
}

// episodeResponse はエピソード1件のAPIレスポンス。
type episodeResponse struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Link        string `json:"link"`
	ArtworkURL  string `json:"artwork_url"`
	PublishedAt string `json:"published_at"`
	Duration    string `json:"duration"`
	Season      string `json:"season"`
	Imported    bool   `json:"imported"`
}

// episodesResponse はエピソード一覧のAPIレスポンス。
type episodesResponse struct {
	Episodes []episodeResponse `json:"episodes"`
}

// ListEpisodes は設定済みフィードをフェッチし、エピソード一覧を返す。
// 各エピソードにはインポート済みかどうかのフラグを付与する。
// GET /api/feed/episodes
func (h *EpisodesHandler) ListEpisodes(w http.ResponseWriter, r *http.Request) {
	feedURL, err := h.settingRepo.Get(r.Context(), repository.SettingKeyFeedURL)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	if feedURL == "" {
		writeAPIErrorResponse(w, http.StatusPreconditionFailed, model.NewFeedURLNotSetError())
		return
	}

	episodes, err := h.fetcher.Fetch(r.Context(), feedURL)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	resp := episodesResponse{
		Episodes: make([]episodeResponse, 0, len(episodes)),
	}
	for _, ep := range episodes {
		imported, err := h.posts.ExistsByGUID(r.Context(), ep.GUID)
		if err != nil {
			handleServiceError(w, err)
			return
		}
		resp.Episodes = append(resp.Episodes, episodeResponse{
			ID:          ep.GUID,
			Title:       ep.Title,
			Description: ep.Description,
			Link:        ep.Link,
			ArtworkURL:  ep.ArtworkURL,
			PublishedAt: ep.PublishedAt,
			Duration:    ep.Duration,
			Season:      ep.Season,
			Imported:    imported,
		})
	}

	writeJSONResponse(w, http.StatusOK, resp)
}
