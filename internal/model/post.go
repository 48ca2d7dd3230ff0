package model

import "time"

// PostStatus は記事の公開状態を表す。
type PostStatus string

const (
	// PostStatusPublished は公開済みの記事を示す。インポートされた記事は常にこの状態で作成される。
	PostStatusPublished PostStatus = "published"
)

// Post はインポート済みエピソードの永続的な表現（コンテンツレコード）を表す。
// guid列にはUNIQUE制約があり、同一GUIDの記事は store レベルで高々1件に保たれる。
type Post struct {
	ID     string
	Title  string
	Body   string
	Status PostStatus

	// エピソードメタデータ。フィードアイテムから転記される。
	GUID     string
	Link     string
	PubDate  string
	AudioURL string
	Duration string

	// ThumbnailAssetID はサムネイルとして関連付けられたメディアアセットのID。未設定の場合は空。
	ThumbnailAssetID string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Category はスラグをキーとするタクソノミータームを表す。
// slug列にはUNIQUE制約があり、同一スラグのカテゴリは高々1件。
type Category struct {
	ID        string
	Name      string
	Slug      string
	CreatedAt time.Time
}

// MediaAsset は保存済みのバイナリファイルとその派生物を表す。
// ちょうど1件のPostにサムネイルとして帰属する。
type MediaAsset struct {
	ID        string
	PostID    string
	Path      string
	MimeType  string
	SizeBytes int64
	CreatedAt time.Time
}

// MediaVariant はメディアアセットから生成された派生画像（リサイズ済み）を表す。
type MediaVariant struct {
	ID      string
	AssetID string
	Name    string // "thumbnail", "medium" など
	Path    string
	Width   int
	Height  int
}
