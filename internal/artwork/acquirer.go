// Package artwork はエピソードアートワークの取得と記事への関連付けを提供する。
package artwork

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/hitoshi/castpress/internal/model"
)

// SSRFValidator はSSRF検証のインターフェース。
type SSRFValidator interface {
	ValidateURL(rawURL string) error
	NewSafeClient(timeout time.Duration, maxResponseSize int64) *http.Client
}

// MediaStore はメディアアセットの保存操作のインターフェース。
type MediaStore interface {
	// StoreFile はバイト列をファイルとして保存し、保存先パスを返す。
	StoreFile(data []byte, filename string) (string, error)
	// RegisterAsset は保存済みファイルをメディアアセットとして登録する。
	RegisterAsset(ctx context.Context, path, mimeType, parentPostID string, sizeBytes int64) (*model.MediaAsset, error)
	// GenerateDerived はアセットから派生画像を生成する。
	GenerateDerived(ctx context.Context, asset *model.MediaAsset) error
}

// ThumbnailSetter は記事へのサムネイル関連付けのインターフェース。
type ThumbnailSetter interface {
	SetThumbnail(ctx context.Context, postID, assetID string) error
}

// Acquirer はアートワーク画像のダウンロードとメディアアセット化を行う。
// 取得失敗は診断情報としてエラーを返すが、呼び出し元はログに記録して続行する想定
// （サムネイルはベストエフォートであり、記事のインポート自体は成功扱いとなる）。
type Acquirer struct {
	ssrfGuard SSRFValidator
	store     MediaStore
	posts     ThumbnailSetter
	logger    *slog.Logger
	timeout   time.Duration
	maxSize   int64
}

// NewAcquirer はAcquirerの新しいインスタンスを生成する。
func NewAcquirer(
	ssrfGuard SSRFValidator,
	store MediaStore,
	posts ThumbnailSetter,
	logger *slog.Logger,
	timeout time.Duration,
	maxSize int64,
) *Acquirer {
	return &Acquirer{
		ssrfGuard: ssrfGuard,
		store:     store,
		posts:     posts,
		logger:    logger,
		timeout:   timeout,
		maxSize:   maxSize,
	}
}

// Attach はimageURLの画像をダウンロードし、メディアアセットとして保存した上で
// 指定記事のサムネイルに設定する。
//
// ファイル名はURLと記事IDのハッシュから導出する。URLの末尾セグメントを使うと
// 別エピソード間でベース名が衝突した際に上書きが起きるため採用しない。
// MIMEタイプはダウンロードしたバイト列から判定し、Content-Typeヘッダーは
// 判定不能時のフォールバックとしてのみ使用する。
func (a *Acquirer) Attach(ctx context.Context, imageURL, postID string) error {
	// SSRF検証
	if err := a.ssrfGuard.ValidateURL(imageURL); err != nil {
		return model.NewArtworkFailedError(fmt.Sprintf("URL検証に失敗: %v", err))
	}

	data, headerMime, err := a.download(ctx, imageURL)
	if err != nil {
		return err
	}

	// MIME判定: バイト列からの検出を優先し、汎用値の場合のみヘッダーへフォールバック
	mimeType := http.DetectContentType(data)
	if mimeType == "application/octet-stream" && headerMime != "" {
		mimeType = headerMime
	}
	if !strings.HasPrefix(mimeType, "image/") {
		return model.NewArtworkFailedError(fmt.Sprintf("画像ではないContent-Type: %s", mimeType))
	}

	// ファイル名: sha256(URL + 記事ID) + MIME由来の拡張子
	filename := deriveFilename(imageURL, postID, mimeType)

	path, err := a.store.StoreFile(data, filename)
	if err != nil {
		return model.NewArtworkFailedError(err.Error())
	}

	asset, err := a.store.RegisterAsset(ctx, path, mimeType, postID, int64(len(data)))
	if err != nil {
		return model.NewArtworkFailedError(err.Error())
	}

	// 派生画像の生成失敗は警告のみ（元アセットとサムネイル設定は維持する）
	if err := a.store.GenerateDerived(ctx, asset); err != nil {
		a.logger.Warn("派生画像の生成に失敗しました",
			slog.String("asset_id", asset.ID),
			slog.String("post_id", postID),
			slog.String("error", err.Error()),
		)
	}

	if err := a.posts.SetThumbnail(ctx, postID, asset.ID); err != nil {
		return model.NewArtworkFailedError(err.Error())
	}

	a.logger.Info("アートワークを記事に関連付けました",
		slog.String("post_id", postID),
		slog.String("asset_id", asset.ID),
		slog.String("mime_type", mimeType),
		slog.Int("size_bytes", len(data)),
	)

	return nil
}

// download は画像をサイズ上限付きでダウンロードする。
// 上限を超えるペイロードはエラーとして扱う。
func (a *Acquirer) download(ctx context.Context, imageURL string) (data []byte, headerMime string, err error) {
	client := a.ssrfGuard.NewSafeClient(a.timeout, a.maxSize)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return nil, "", model.NewArtworkFailedError(err.Error())
	}
	req.Header.Set("User-Agent", "Castpress/1.0 Podcast Importer")

	resp, err := client.Do(req)
	if err != nil {
		return nil, "", model.NewArtworkFailedError(err.Error())
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, "", model.NewArtworkFailedError(fmt.Sprintf("HTTPステータス %d", resp.StatusCode))
	}

	// 上限+1バイト読んで超過を検出する
	body, err := io.ReadAll(io.LimitReader(resp.Body, a.maxSize+1))
	if err != nil {
		return nil, "", model.NewArtworkFailedError(err.Error())
	}
	if int64(len(body)) > a.maxSize {
		return nil, "", model.NewArtworkFailedError(fmt.Sprintf("サイズ上限 %d バイトを超過しました", a.maxSize))
	}

	return body, extractMimeType(resp.Header.Get("Content-Type")), nil
}

// mimeExtensions はMIMEタイプから保存ファイルの拡張子への対応。
var mimeExtensions = map[string]string{
	"image/jpeg":    ".jpg",
	"image/png":     ".png",
	"image/gif":     ".gif",
	"image/webp":    ".webp",
	"image/svg+xml": ".svg",
}

// deriveFilename はURLと記事IDのハッシュからファイル名を導出する。
func deriveFilename(imageURL, postID, mimeType string) string {
	sum := sha256.Sum256([]byte(imageURL + "|" + postID))
	ext, ok := mimeExtensions[mimeType]
	if !ok {
		ext = ".img"
	}
	return hex.EncodeToString(sum[:16]) + ext
}

// extractMimeType はContent-Typeヘッダーからメディアタイプを抽出する。
func extractMimeType(contentType string) string {
	if contentType == "" {
		return ""
	}
	// セミコロンの前の部分（charset等を除去）
	parts := strings.SplitN(contentType, ";", 2)
	return strings.TrimSpace(strings.ToLower(parts[0]))
}
