package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hitoshi/castpress/internal/model"
)

// PostgresCategoryRepo はPostgreSQLを使用したカテゴリリポジトリ。
type PostgresCategoryRepo struct {
	db *sql.DB
}

// NewPostgresCategoryRepo はPostgresCategoryRepoを生成する。
func NewPostgresCategoryRepo(db *sql.DB) *PostgresCategoryRepo {
	return &PostgresCategoryRepo{db: db}
}

// FindBySlug はスラグでカテゴリを検索する。見つからない場合はnilを返す。
func (r *PostgresCategoryRepo) FindBySlug(ctx context.Context, slug string) (*model.Category, error) {
	category := &model.Category{}

	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, slug, created_at FROM categories WHERE slug = $1`,
		slug,
	).Scan(&category.ID, &category.Name, &category.Slug, &category.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("スラグによるカテゴリの検索に失敗しました: %w", err)
	}

	return category, nil
}

// Create はカテゴリを作成して返す。
// slugのUNIQUE制約と衝突した場合（並行作成の競合）は既存のカテゴリを取得して返す。
// 同一スラグに対してカテゴリが2件作成されることはない。
func (r *PostgresCategoryRepo) Create(ctx context.Context, name, slug string) (*model.Category, error) {
	category := &model.Category{
		ID:        uuid.New().String(),
		Name:      name,
		Slug:      slug,
		CreatedAt: time.Now(),
	}

	result, err := r.db.ExecContext(ctx,
		`INSERT INTO categories (id, name, slug, created_at) VALUES ($1, $2, $3, $4)
		 ON CONFLICT (slug) DO NOTHING`,
		category.ID, category.Name, category.Slug, category.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("カテゴリの作成に失敗しました: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("カテゴリ作成の結果確認に失敗しました: %w", err)
	}
	if affected == 0 {
		// 競合により別のバッチが先に作成した場合は既存行を返す
		existing, findErr := r.FindBySlug(ctx, slug)
		if findErr != nil {
			return nil, findErr
		}
		if existing == nil {
			return nil, fmt.Errorf("カテゴリの作成が競合しましたが既存行を取得できませんでした: slug=%s", slug)
		}
		return existing, nil
	}

	return category, nil
}

// compile-time interface check
var _ CategoryRepository = (*PostgresCategoryRepo)(nil)
