package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hitoshi/castpress/internal/model"
)

// PostgresMediaRepo はPostgreSQLを使用したメディアアセットリポジトリ。
type PostgresMediaRepo struct {
	db *sql.DB
}

// NewPostgresMediaRepo はPostgresMediaRepoを生成する。
func NewPostgresMediaRepo(db *sql.DB) *PostgresMediaRepo {
	return &PostgresMediaRepo{db: db}
}

// CreateAsset はメディアアセットを登録する。
func (r *PostgresMediaRepo) CreateAsset(ctx context.Context, asset *model.MediaAsset) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO media_assets (id, post_id, path, mime_type, size_bytes, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		asset.ID, asset.PostID, asset.Path, asset.MimeType, asset.SizeBytes, asset.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("メディアアセットの登録に失敗しました: %w", err)
	}
	return nil
}

// FindAssetByID は指定IDのアセットを取得する。見つからない場合はnilを返す。
func (r *PostgresMediaRepo) FindAssetByID(ctx context.Context, id string) (*model.MediaAsset, error) {
	asset := &model.MediaAsset{}

	err := r.db.QueryRowContext(ctx,
		`SELECT id, post_id, path, mime_type, size_bytes, created_at
		 FROM media_assets WHERE id = $1`,
		id,
	).Scan(&asset.ID, &asset.PostID, &asset.Path, &asset.MimeType, &asset.SizeBytes, &asset.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("メディアアセットの取得に失敗しました: %w", err)
	}

	return asset, nil
}

// CreateVariant はアセットの派生画像を登録する。
// 同一アセット・同一名の派生は上書きされる（再生成時の冪等性確保）。
func (r *PostgresMediaRepo) CreateVariant(ctx context.Context, variant *model.MediaVariant) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO media_variants (id, asset_id, name, path, width, height)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (asset_id, name) DO UPDATE SET path = $4, width = $5, height = $6`,
		variant.ID, variant.AssetID, variant.Name, variant.Path, variant.Width, variant.Height,
	)
	if err != nil {
		return fmt.Errorf("派生画像の登録に失敗しました: %w", err)
	}
	return nil
}

// compile-time interface check
var _ MediaRepository = (*PostgresMediaRepo)(nil)
