// Package importer はエピソードのバッチインポートを統括する。
//
// インポートは単一パスのバッチ処理であり、管理操作ごとに1回起動される。
// バッチ内のアイテムは入力順に逐次処理され、1アイテムの失敗は他のアイテムの
// 処理・報告を妨げない（アイテム単位の分離）。
package importer

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/castpress/internal/metrics"
	"github.com/hitoshi/castpress/internal/model"
	"github.com/hitoshi/castpress/internal/repository"
)

// skipReasonImported は重複スキップ時の報告理由。
const skipReasonImported = "already imported"

// FeedSource はフィードからエピソード候補列を取得するインターフェース。
type FeedSource interface {
	Fetch(ctx context.Context, feedURL string) ([]model.Episode, error)
}

// PostStore はインポートが必要とする記事永続化操作のインターフェース。
// repository.PostRepositoryのサブセット。
type PostStore interface {
	ExistsByGUID(ctx context.Context, guid string) (bool, error)
	Create(ctx context.Context, post *model.Post) error
	SetCategories(ctx context.Context, postID string, categoryIDs []string) error
}

// ArtworkAttacher はアートワーク取得・関連付けのインターフェース。
type ArtworkAttacher interface {
	Attach(ctx context.Context, imageURL, postID string) error
}

// CategoryResolver はシーズンスラグからカテゴリIDへの解決のインターフェース。
type CategoryResolver interface {
	Resolve(ctx context.Context, seasonSlug string) (string, error)
}

// TitleSanitizer は記事タイトルのマークアップ除去のインターフェース。
type TitleSanitizer interface {
	StripMarkup(raw string) string
}

// ImportService は選択されたGUID集合に対するインポートパイプラインを駆動する。
//
// 重複防止は二段構え:
//   - ExistsByGUIDによる事前チェック（高速パス、ロックなしの時点チェック）
//   - posts.guidのUNIQUE制約（最終的な権威。並行バッチが事前チェックを同時に
//     通過しても、Createの競合で一方はErrDuplicatePostとなりSkippedに縮退する）
//
// さらにバッチ全体をミューテックスで直列化し、単一プロセス内の並行起動では
// そもそも競合が発生しないようにしている。
type ImportService struct {
	mu sync.Mutex

	settingRepo repository.SettingRepository
	fetcher     FeedSource
	posts       PostStore
	artwork     ArtworkAttacher
	categories  CategoryResolver
	sanitizer   TitleSanitizer
	collector   metrics.MetricsCollector
	logger      *slog.Logger
}

// NewImportService はImportServiceの新しいインスタンスを生成する。
func NewImportService(
	settingRepo repository.SettingRepository,
	fetcher FeedSource,
	posts PostStore,
	artwork ArtworkAttacher,
	categories CategoryResolver,
	sanitizer TitleSanitizer,
	collector metrics.MetricsCollector,
	logger *slog.Logger,
) *ImportService {
	return &ImportService{
		settingRepo: settingRepo,
		fetcher:     fetcher,
		posts:       posts,
		artwork:     artwork,
		categories:  categories,
		sanitizer:   sanitizer,
		collector:   collector,
		logger:      logger,
	}
}

// ImportBatch は選択されたGUID集合を入力順に処理し、アイテムごとの結果列を返す。
//
// フィードのフェッチはバッチにつき最大1回。全アイテムがスキップされる場合は
// フェッチ自体が行われない。フェッチ失敗時は未処理のアイテムがそれぞれFailedとして
// 報告され、既に確定したSkipped等の結果はそのまま保持される。
// 結果は常に入力と同数・同順で返る。
//
// エラーを返すのはフィードURL未設定と設定ストア障害のみ。それ以外の障害は
// すべてアイテム単位の結果に閉じ込める。
func (s *ImportService) ImportBatch(ctx context.Context, ids []string) ([]model.ImportOutcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	feedURL, err := s.settingRepo.Get(ctx, repository.SettingKeyFeedURL)
	if err != nil {
		return nil, err
	}
	if feedURL == "" {
		return nil, model.NewFeedURLNotSetError()
	}

	start := time.Now()
	outcomes := make([]model.ImportOutcome, 0, len(ids))

	// フェッチは最初の未インポートのアイテムに到達した時点で1回だけ行う
	var index map[string]model.Episode
	var fetchErr error
	fetched := false

	for _, id := range ids {
		outcome := s.importOne(ctx, feedURL, id, &index, &fetchErr, &fetched)
		s.collector.RecordOutcome(string(outcome.Status))
		outcomes = append(outcomes, outcome)
	}

	s.logger.Info("バッチインポートが完了しました",
		slog.String("feed_url", feedURL),
		slog.Int("total", len(ids)),
		slog.Int("imported", countStatus(outcomes, model.OutcomeImported)),
		slog.Int("skipped", countStatus(outcomes, model.OutcomeSkipped)),
		slog.Int("not_found", countStatus(outcomes, model.OutcomeNotFound)),
		slog.Int("failed", countStatus(outcomes, model.OutcomeFailed)),
		slog.Float64("duration_ms", float64(time.Since(start).Milliseconds())),
	)

	return outcomes, nil
}

// importOne は1アイテムを処理して結果を返す。障害はアイテム内に閉じ込める。
func (s *ImportService) importOne(
	ctx context.Context,
	feedURL, id string,
	index *map[string]model.Episode,
	fetchErr *error,
	fetched *bool,
) model.ImportOutcome {
	// 事前チェック（高速パス）。スキップと判定されたアイテムはフェッチを必要としない。
	imported, err := s.posts.ExistsByGUID(ctx, id)
	if err != nil {
		s.logger.Error("重複チェックに失敗しました",
			slog.String("guid", id),
			slog.String("error", err.Error()),
		)
		return model.Failed(id, err.Error())
	}
	if imported {
		return model.Skipped(id, skipReasonImported)
	}

	// バッチにつき1回だけフィードをフェッチし、GUID→エピソードの索引を構築する
	if !*fetched {
		*fetched = true
		fetchStart := time.Now()
		episodes, err := s.fetcher.Fetch(ctx, feedURL)
		if err != nil {
			*fetchErr = err
		} else {
			s.collector.RecordFetchLatency(time.Since(fetchStart))
			m := make(map[string]model.Episode, len(episodes))
			for _, ep := range episodes {
				// フィードが同一GUIDを複数アイテムで再利用している場合は先勝ち
				if _, ok := m[ep.GUID]; !ok {
					m[ep.GUID] = ep
				}
			}
			*index = m
		}
	}
	if *fetchErr != nil {
		return model.Failed(id, (*fetchErr).Error())
	}

	// 選択とインポートの間にフィードが変化した場合、GUIDは索引に存在しない。
	// 黙って無視せず明示的にNotFoundとして報告する。
	ep, ok := (*index)[id]
	if !ok {
		return model.NotFound(id)
	}

	return s.persistEpisode(ctx, ep)
}

// persistEpisode はエピソード候補を記事として永続化し、
// アートワークとカテゴリを関連付ける。
func (s *ImportService) persistEpisode(ctx context.Context, ep model.Episode) model.ImportOutcome {
	now := time.Now()
	post := &model.Post{
		ID: uuid.New().String(),
		// タイトルはマークアップを除去、本文はフィードの値をそのまま保存する
		Title:     s.sanitizer.StripMarkup(ep.Title),
		Body:      ep.Description,
		Status:    model.PostStatusPublished,
		GUID:      ep.GUID,
		Link:      ep.Link,
		PubDate:   ep.PublishedAt,
		AudioURL:  ep.AudioURL,
		Duration:  ep.Duration,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.posts.Create(ctx, post); err != nil {
		if errors.Is(err, model.ErrDuplicatePost) {
			// 事前チェック後に別のバッチが同一GUIDを作成した場合。
			// UNIQUE制約が二重作成を防いでいるため、スキップとして報告する。
			return model.Skipped(ep.GUID, skipReasonImported)
		}
		s.logger.Error("記事の作成に失敗しました",
			slog.String("guid", ep.GUID),
			slog.String("error", err.Error()),
		)
		return model.Failed(ep.GUID, err.Error())
	}

	// アートワーク取得はベストエフォート。失敗してもインポート自体は成功扱い。
	if ep.HasArtwork() {
		if err := s.artwork.Attach(ctx, ep.ArtworkURL, post.ID); err != nil {
			s.collector.RecordArtworkFailure()
			s.logger.Warn("アートワークの取得に失敗しました（記事はサムネイルなしでインポートされます）",
				slog.String("guid", ep.GUID),
				slog.String("post_id", post.ID),
				slog.String("artwork_url", ep.ArtworkURL),
				slog.String("error", err.Error()),
			)
		}
	}

	// カテゴリ帰属の失敗はストア障害であり、黙って無視せずFailedとして報告する
	if ep.HasSeason() {
		categoryID, err := s.categories.Resolve(ctx, ep.Season)
		if err == nil {
			err = s.posts.SetCategories(ctx, post.ID, []string{categoryID})
		}
		if err != nil {
			s.logger.Error("カテゴリの関連付けに失敗しました",
				slog.String("guid", ep.GUID),
				slog.String("post_id", post.ID),
				slog.String("season", ep.Season),
				slog.String("error", err.Error()),
			)
			return model.Failed(ep.GUID, "カテゴリの関連付けに失敗しました: "+err.Error())
		}
	}

	return model.Imported(ep.GUID, post.Title)
}

// countStatus は結果列のうち指定ステータスの件数を数える。
func countStatus(outcomes []model.ImportOutcome, status model.OutcomeStatus) int {
	n := 0
	for _, o := range outcomes {
		if o.Status == status {
			n++
		}
	}
	return n
}
