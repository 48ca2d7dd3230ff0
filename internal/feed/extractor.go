package feed

import (
	"github.com/mmcdole/gofeed"

	"github.com/hitoshi/castpress/internal/model"
)

// ExtractEpisode はgofeedのフィードアイテム1件をエピソード候補に正規化する。
// 純粋関数であり失敗しない。オプションのフィールド（enclosure、アートワーク、シーズン）が
// 欠落している場合はエラーではなく空値に縮退する。
func ExtractEpisode(item *gofeed.Item) model.Episode {
	ep := model.Episode{
		Title:       item.Title,
		Description: item.Description,
		Link:        item.Link,
		// 公開日時はフィードの文字列を不透明なテキストとして保持する（パース・検証なし）
		PublishedAt: item.Published,
	}

	// GUIDは重複判定キーとして無加工で使用する。
	// GUIDを持たないフィードではgofeedの慣例に合わせてlinkで代用する。
	ep.GUID = item.GUID
	if ep.GUID == "" {
		ep.GUID = item.Link
	}

	// enclosure（音声ファイル参照）: 欠落時はURL・durationとも空
	if len(item.Enclosures) > 0 && item.Enclosures[0] != nil {
		ep.AudioURL = item.Enclosures[0].URL
	}

	// iTunes名前空間の拡張タグ
	if item.ITunesExt != nil {
		// duration: enclosure自体はdurationを持たないため itunes:duration を使用する
		ep.Duration = item.ITunesExt.Duration
		// image: 最初のimageタグのhref属性。欠落時は空文字列
		ep.ArtworkURL = item.ITunesExt.Image
		// season: スラグ正規化して保持。欠落時は空文字列
		if item.ITunesExt.Season != "" {
			ep.Season = Slugify(item.ITunesExt.Season)
		}
	}

	return ep
}

// ExtractEpisodes はパース済みフィードの全アイテムをエピソード候補列に変換する。
func ExtractEpisodes(parsed *gofeed.Feed) []model.Episode {
	episodes := make([]model.Episode, 0, len(parsed.Items))
	for _, item := range parsed.Items {
		if item == nil {
			continue
		}
		episodes = append(episodes, ExtractEpisode(item))
	}
	return episodes
}
