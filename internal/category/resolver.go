// Package category はシーズンスラグからカテゴリへの解決を提供する。
package category

import (
	"context"
	"log/slog"

	"github.com/hitoshi/castpress/internal/repository"
)

// Resolver はシーズンスラグを既存または新規のカテゴリに解決する。
// スラグに対して冪等であり、同一スラグに対してカテゴリを複数作成することはない
// （categories.slugのUNIQUE制約が最終的な保証を与える）。
type Resolver struct {
	categoryRepo repository.CategoryRepository
	logger       *slog.Logger
}

// NewResolver はResolverの新しいインスタンスを生成する。
func NewResolver(categoryRepo repository.CategoryRepository, logger *slog.Logger) *Resolver {
	return &Resolver{
		categoryRepo: categoryRepo,
		logger:       logger,
	}
}

// Resolve はスラグでカテゴリを検索し、存在しなければ作成してIDを返す。
// カテゴリ名はスラグをそのまま使用する。
func (r *Resolver) Resolve(ctx context.Context, seasonSlug string) (string, error) {
	existing, err := r.categoryRepo.FindBySlug(ctx, seasonSlug)
	if err != nil {
		return "", err
	}
	if existing != nil {
		return existing.ID, nil
	}

	created, err := r.categoryRepo.Create(ctx, seasonSlug, seasonSlug)
	if err != nil {
		return "", err
	}

	r.logger.Info("カテゴリを作成しました",
		slog.String("category_id", created.ID),
		slog.String("slug", created.Slug),
	)

	return created.ID, nil
}
