package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hitoshi/castpress/internal/model"
)

// PostgresPostRepo はPostgreSQLを使用した記事リポジトリ。
type PostgresPostRepo struct {
	db *sql.DB
}

// NewPostgresPostRepo はPostgresPostRepoを生成する。
func NewPostgresPostRepo(db *sql.DB) *PostgresPostRepo {
	return &PostgresPostRepo{db: db}
}

// ExistsByGUID は指定GUIDの記事が公開状態を問わず存在するかを返す。
func (r *PostgresPostRepo) ExistsByGUID(ctx context.Context, guid string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM posts WHERE guid = $1)`,
		guid,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("GUIDによる記事の存在確認に失敗しました: %w", err)
	}
	return exists, nil
}

// FindByGUID は指定GUIDの記事を取得する。見つからない場合はnilを返す。
func (r *PostgresPostRepo) FindByGUID(ctx context.Context, guid string) (*model.Post, error) {
	post := &model.Post{}
	var thumbnailAssetID sql.NullString

	err := r.db.QueryRowContext(ctx,
		`SELECT id, title, body, status, guid, link, pub_date, audio_url, duration,
		        thumbnail_asset_id, created_at, updated_at
		 FROM posts WHERE guid = $1`,
		guid,
	).Scan(
		&post.ID, &post.Title, &post.Body, &post.Status,
		&post.GUID, &post.Link, &post.PubDate, &post.AudioURL, &post.Duration,
		&thumbnailAssetID, &post.CreatedAt, &post.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("GUIDによる記事の検索に失敗しました: %w", err)
	}

	if thumbnailAssetID.Valid {
		post.ThumbnailAssetID = thumbnailAssetID.String
	}

	return post, nil
}

// Create は記事を作成する。
// guidのUNIQUE制約と衝突した場合はmodel.ErrDuplicatePostを返す。
// ON CONFLICT DO NOTHINGを使用するため、並行バッチが同一GUIDで競合しても
// どちらか一方だけが行を作成し、もう一方は重複として報告される。
func (r *PostgresPostRepo) Create(ctx context.Context, post *model.Post) error {
	result, err := r.db.ExecContext(ctx,
		`INSERT INTO posts (id, title, body, status, guid, link, pub_date, audio_url, duration,
		                    created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		 ON CONFLICT (guid) DO NOTHING`,
		post.ID, post.Title, post.Body, post.Status,
		post.GUID, post.Link, post.PubDate, post.AudioURL, post.Duration,
		post.CreatedAt, post.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("記事の作成に失敗しました: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("記事作成の結果確認に失敗しました: %w", err)
	}
	if affected == 0 {
		return model.ErrDuplicatePost
	}

	return nil
}

// SetThumbnail は記事のサムネイルアセットを設定する。
func (r *PostgresPostRepo) SetThumbnail(ctx context.Context, postID, assetID string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE posts SET thumbnail_asset_id = $2, updated_at = now() WHERE id = $1`,
		postID, assetID,
	)
	if err != nil {
		return fmt.Errorf("サムネイルの設定に失敗しました: %w", err)
	}
	return nil
}

// SetCategories は記事のカテゴリ帰属を設定する。
// 既存の帰属と重複する場合はDO NOTHINGで冪等に処理する。
func (r *PostgresPostRepo) SetCategories(ctx context.Context, postID string, categoryIDs []string) error {
	for _, categoryID := range categoryIDs {
		_, err := r.db.ExecContext(ctx,
			`INSERT INTO post_categories (post_id, category_id) VALUES ($1, $2)
			 ON CONFLICT DO NOTHING`,
			postID, categoryID,
		)
		if err != nil {
			return fmt.Errorf("カテゴリ帰属の設定に失敗しました: %w", err)
		}
	}
	return nil
}

// compile-time interface check
var _ PostRepository = (*PostgresPostRepo)(nil)
