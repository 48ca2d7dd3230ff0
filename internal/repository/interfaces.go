// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"

	"github.com/hitoshi/castpress/internal/model"
)

// PostRepository は記事（コンテンツレコード）の永続化インターフェース。
type PostRepository interface {
	// ExistsByGUID は指定GUIDの記事が公開状態を問わず存在するかを返す。
	// 重複判定の高速パスとして使用される。0件でもエラーにはならない。
	ExistsByGUID(ctx context.Context, guid string) (bool, error)

	// FindByGUID は指定GUIDの記事を取得する。見つからない場合はnilを返す。
	FindByGUID(ctx context.Context, guid string) (*model.Post, error)

	// Create は記事を作成する。
	// posts.guidのUNIQUE制約と衝突した場合はmodel.ErrDuplicatePostを返し、行は作成されない。
	// この制約が重複インポート防止の最終的な権威であり、並行バッチの競合でも二重作成は起きない。
	Create(ctx context.Context, post *model.Post) error

	// SetThumbnail は記事のサムネイルアセットを設定する。
	SetThumbnail(ctx context.Context, postID, assetID string) error

	// SetCategories は記事のカテゴリ帰属を設定する。同一カテゴリへの再帰属は冪等。
	SetCategories(ctx context.Context, postID string, categoryIDs []string) error
}

// CategoryRepository はカテゴリ（タクソノミーターム）の永続化インターフェース。
type CategoryRepository interface {
	// FindBySlug はスラグでカテゴリを検索する。見つからない場合はnilを返す。
	FindBySlug(ctx context.Context, slug string) (*model.Category, error)

	// Create はカテゴリを作成して返す。
	// slugのUNIQUE制約と衝突した場合は既存のカテゴリを取得して返す（競合時も冪等）。
	Create(ctx context.Context, name, slug string) (*model.Category, error)
}

// MediaRepository はメディアアセットの永続化インターフェース。
type MediaRepository interface {
	// CreateAsset はメディアアセットを登録する。
	CreateAsset(ctx context.Context, asset *model.MediaAsset) error

	// FindAssetByID は指定IDのアセットを取得する。見つからない場合はnilを返す。
	FindAssetByID(ctx context.Context, id string) (*model.MediaAsset, error)

	// CreateVariant はアセットの派生画像を登録する。
	CreateVariant(ctx context.Context, variant *model.MediaVariant) error
}

// SettingRepository はキーバリュー形式の設定の永続化インターフェース。
// フィードURL等の運用設定を保持する。
type SettingRepository interface {
	// Get は指定キーの設定値を取得する。未設定の場合は空文字列を返す。
	Get(ctx context.Context, key string) (string, error)

	// Set は設定値を保存する。既存キーは上書きされる。
	Set(ctx context.Context, key, value string) error
}

// SettingKeyFeedURL はインポート対象のポッドキャストフィードURLを保持する設定キー。
const SettingKeyFeedURL = "feed_url"
