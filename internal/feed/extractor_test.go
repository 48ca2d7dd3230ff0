package feed

import (
	"testing"

	"github.com/mmcdole/gofeed"
	ext "github.com/mmcdole/gofeed/extensions"
)

func TestExtractEpisode_全フィールドが揃ったアイテム(t *testing.T) {
	item := &gofeed.Item{
		GUID:        "ep-123",
		Title:       "第12回 Goの並行処理",
		Description: "<p>今回はgoroutineについて話しました</p>",
		Link:        "https://podcast.example.com/episodes/12",
		Published:   "Mon, 02 Jan 2006 15:04:05 +0900",
		Enclosures: []*gofeed.Enclosure{
			{URL: "https://cdn.example.com/ep12.mp3", Type: "audio/mpeg"},
		},
		ITunesExt: &ext.ITunesItemExtension{
			Duration: "45:30",
			Image:    "https://cdn.example.com/ep12.jpg",
			Season:   "2",
		},
	}

	got := ExtractEpisode(item)

	if got.GUID != "ep-123" {
		t.Errorf("GUID: expected ep-123, got %s", got.GUID)
	}
	if got.Title != item.Title {
		t.Errorf("Title mismatch: %s", got.Title)
	}
	// 本文はそのまま保持する（サニタイズは記事化の段階で行う）
	if got.Description != item.Description {
		t.Errorf("Description should be verbatim: %s", got.Description)
	}
	if got.PublishedAt != item.Published {
		t.Errorf("PublishedAt should keep the raw feed string, got %s", got.PublishedAt)
	}
	if got.AudioURL != "https://cdn.example.com/ep12.mp3" {
		t.Errorf("AudioURL: got %s", got.AudioURL)
	}
	if got.Duration != "45:30" {
		t.Errorf("Duration: got %s", got.Duration)
	}
	if got.ArtworkURL != "https://cdn.example.com/ep12.jpg" {
		t.Errorf("ArtworkURL: got %s", got.ArtworkURL)
	}
	if got.Season != "2" {
		t.Errorf("Season: got %s", got.Season)
	}
}

func TestExtractEpisode_GUIDがない場合はlinkで代用する(t *testing.T) {
	item := &gofeed.Item{
		Title: "タイトル",
		Link:  "https://podcast.example.com/episodes/1",
	}

	got := ExtractEpisode(item)

	if got.GUID != item.Link {
		t.Errorf("expected GUID to fall back to link, got %s", got.GUID)
	}
}

func TestExtractEpisode_オプションフィールド欠落時は空値に縮退する(t *testing.T) {
	item := &gofeed.Item{
		GUID:  "ep-bare",
		Title: "素のエピソード",
	}

	got := ExtractEpisode(item)

	if got.AudioURL != "" {
		t.Errorf("expected empty AudioURL, got %s", got.AudioURL)
	}
	if got.Duration != "" {
		t.Errorf("expected empty Duration, got %s", got.Duration)
	}
	if got.ArtworkURL != "" {
		t.Errorf("expected empty ArtworkURL, got %s", got.ArtworkURL)
	}
	if got.Season != "" {
		t.Errorf("expected empty Season, got %s", got.Season)
	}
	if got.HasArtwork() || got.HasSeason() {
		t.Error("bare episode should report no artwork and no season")
	}
}

func TestExtractEpisode_シーズンはスラグ正規化される(t *testing.T) {
	item := &gofeed.Item{
		GUID: "ep-1",
		ITunesExt: &ext.ITunesItemExtension{
			Season: "Season 1!",
		},
	}

	got := ExtractEpisode(item)

	if got.Season != "season-1" {
		t.Errorf("expected slug season-1, got %s", got.Season)
	}
}

func TestExtractEpisodes_nilアイテムはスキップする(t *testing.T) {
	parsed := &gofeed.Feed{
		Items: []*gofeed.Item{
			{GUID: "ep-1"},
			nil,
			{GUID: "ep-2"},
		},
	}

	got := ExtractEpisodes(parsed)

	if len(got) != 2 {
		t.Fatalf("expected 2 episodes, got %d", len(got))
	}
	if got[0].GUID != "ep-1" || got[1].GUID != "ep-2" {
		t.Errorf("unexpected episodes: %+v", got)
	}
}
