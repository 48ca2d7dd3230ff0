// Package model はドメインモデルを定義する。
package model

// Episode はフィードの1アイテムを正規化した一時的なエピソード候補を表す。
// Extractorが生成し、インポート処理が即座に消費する。永続化はされない。
type Episode struct {
	// GUID はフィード由来の安定識別子。重複判定のキーとして無加工のまま使用する。
	GUID string

	Title       string
	Description string
	Link        string

	// PublishedAt はフィードが提供する公開日時の文字列。
	// パース・検証は行わず不透明なテキストとして保持する。
	PublishedAt string

	// AudioURL / Duration はenclosure（音声ファイル参照）由来。
	// enclosureが存在しない場合はともに空文字列。
	AudioURL string
	Duration string

	// ArtworkURL はiTunes名前空間のimageタグのhref属性。タグ欠落時は空文字列。
	ArtworkURL string

	// Season はiTunes名前空間のseasonタグをスラグ正規化した値。タグ欠落時は空文字列。
	Season string
}

// HasArtwork はアートワークURLが存在するかを返す。
func (e *Episode) HasArtwork() bool {
	return e.ArtworkURL != ""
}

// HasSeason はシーズンスラグが存在するかを返す。
func (e *Episode) HasSeason() bool {
	return e.Season != ""
}
