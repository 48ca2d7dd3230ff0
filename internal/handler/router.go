package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/hitoshi/castpress/internal/metrics"
	"github.com/hitoshi/castpress/internal/middleware"
	"github.com/hitoshi/castpress/internal/repository"
)

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	Logger      *slog.Logger
	RateLimiter *middleware.RateLimiter

	// 設定
	SettingRepo repository.SettingRepository
	Detector    FeedURLDetector

	// フィード
	Fetcher EpisodeFetcher
	Posts   ImportChecker

	// インポート
	Importer BatchImporter

	// ヘルスチェック・メトリクス
	DB       DBPinger
	Gatherer prometheus.Gatherer
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	RecoveryMiddleware → LoggingMiddleware
//
// インポート起動（POST /api/import）には専用のレート制限を追加する。
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	settingsHandler := NewSettingsHandler(deps.SettingRepo, deps.Detector)
	episodesHandler := NewEpisodesHandler(deps.SettingRepo, deps.Fetcher, deps.Posts)
	importHandler := NewImportHandler(deps.Importer)
	healthHandler := NewHealthHandler(deps.DB)

	// --- 運用ルート（ミドルウェアチェーンの外） ---

	r.Get("/health", healthHandler.Health)
	r.Method(http.MethodGet, "/metrics", metrics.Handler(deps.Gatherer))

	// --- 管理APIルート ---

	r.Group(func(r chi.Router) {
		r.Use(middleware.NewRecoveryMiddleware())
		r.Use(middleware.NewLoggingMiddleware(deps.Logger))

		// 設定管理
		r.Route("/api/settings/feed-url", func(r chi.Router) {
			r.Get("/", settingsHandler.GetFeedURL)
			r.Put("/", settingsHandler.UpdateFeedURL)
		})

		// エピソード一覧（チェックリスト用）
		r.Get("/api/feed/episodes", episodesHandler.ListEpisodes)

		// インポート起動（専用レート制限付き）
		r.With(deps.RateLimiter.ImportMiddleware()).Post("/api/import", importHandler.Import)
	})

	return r
}
