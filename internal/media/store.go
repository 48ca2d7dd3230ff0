// Package media はメディアアセットのファイル保存と派生画像生成を提供する。
package media

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/jpeg"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "image/gif"
	_ "image/png"

	"github.com/google/uuid"
	"golang.org/x/image/draw"

	"github.com/hitoshi/castpress/internal/model"
	"github.com/hitoshi/castpress/internal/repository"
)

// variantSpec は生成する派生画像の定義。
type variantSpec struct {
	name     string
	maxWidth int
}

// variantSpecs は各アセットから生成する派生画像のリスト。
var variantSpecs = []variantSpec{
	{name: "thumbnail", maxWidth: 150},
	{name: "medium", maxWidth: 300},
}

// Store はディスクへのファイル保存とアセット登録を行うメディアストア。
type Store struct {
	baseDir   string
	mediaRepo repository.MediaRepository
	logger    *slog.Logger
}

// NewStore はStoreの新しいインスタンスを生成する。
// baseDirは保存先ディレクトリで、存在しない場合は保存時に作成される。
func NewStore(baseDir string, mediaRepo repository.MediaRepository, logger *slog.Logger) *Store {
	return &Store{
		baseDir:   baseDir,
		mediaRepo: mediaRepo,
		logger:    logger,
	}
}

// StoreFile はバイト列をファイルとして保存し、保存先パスを返す。
func (s *Store) StoreFile(data []byte, filename string) (string, error) {
	if err := os.MkdirAll(s.baseDir, 0o755); err != nil {
		return "", fmt.Errorf("メディアディレクトリの作成に失敗しました: %w", err)
	}

	path := filepath.Join(s.baseDir, filename)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("ファイルの保存に失敗しました: %w", err)
	}

	return path, nil
}

// RegisterAsset は保存済みファイルをメディアアセットとして登録する。
// アセットはちょうど1件の記事（parentPostID）に帰属する。
func (s *Store) RegisterAsset(ctx context.Context, path, mimeType, parentPostID string, sizeBytes int64) (*model.MediaAsset, error) {
	asset := &model.MediaAsset{
		ID:        uuid.New().String(),
		PostID:    parentPostID,
		Path:      path,
		MimeType:  mimeType,
		SizeBytes: sizeBytes,
		CreatedAt: time.Now(),
	}

	if err := s.mediaRepo.CreateAsset(ctx, asset); err != nil {
		return nil, err
	}

	return asset, nil
}

// GenerateDerived はアセットから派生画像（リサイズ済みJPEG）を生成して登録する。
// デコード不能な画像や個別の派生の失敗はログに記録して継続する。
// 派生の生成失敗は元アセットおよびサムネイル関連付けに影響しない。
func (s *Store) GenerateDerived(ctx context.Context, asset *model.MediaAsset) error {
	data, err := os.ReadFile(asset.Path)
	if err != nil {
		return fmt.Errorf("アセットファイルの読み取りに失敗しました: %w", err)
	}

	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("画像のデコードに失敗しました: %w", err)
	}

	for _, spec := range variantSpecs {
		variant, genErr := s.generateVariant(ctx, asset, src, spec)
		if genErr != nil {
			s.logger.Warn("派生画像の生成に失敗しました",
				slog.String("asset_id", asset.ID),
				slog.String("variant", spec.name),
				slog.String("error", genErr.Error()),
			)
			continue
		}
		s.logger.Info("派生画像を生成しました",
			slog.String("asset_id", asset.ID),
			slog.String("variant", variant.Name),
			slog.Int("width", variant.Width),
			slog.Int("height", variant.Height),
		)
	}

	return nil
}

// generateVariant は1つの派生画像を生成・保存・登録する。
// 元画像がmaxWidth以下の場合も等倍で生成する（派生の存在を一定に保つ）。
func (s *Store) generateVariant(ctx context.Context, asset *model.MediaAsset, src image.Image, spec variantSpec) (*model.MediaVariant, error) {
	bounds := src.Bounds()
	srcW := bounds.Dx()
	srcH := bounds.Dy()
	if srcW <= 0 || srcH <= 0 {
		return nil, fmt.Errorf("画像サイズが不正です: %dx%d", srcW, srcH)
	}

	dstW := srcW
	dstH := srcH
	if srcW > spec.maxWidth {
		dstW = spec.maxWidth
		dstH = srcH * spec.maxWidth / srcW
		if dstH < 1 {
			dstH = 1
		}
	}

	dst := image.NewRGBA(image.Rect(0, 0, dstW, dstH))
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), src, bounds, draw.Over, nil)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: 85}); err != nil {
		return nil, fmt.Errorf("派生画像のエンコードに失敗しました: %w", err)
	}

	base := filepath.Base(asset.Path)
	ext := filepath.Ext(base)
	filename := fmt.Sprintf("%s-%s.jpg", base[:len(base)-len(ext)], spec.name)

	path, err := s.StoreFile(buf.Bytes(), filename)
	if err != nil {
		return nil, err
	}

	variant := &model.MediaVariant{
		ID:      uuid.New().String(),
		AssetID: asset.ID,
		Name:    spec.name,
		Path:    path,
		Width:   dstW,
		Height:  dstH,
	}

	if err := s.mediaRepo.CreateVariant(ctx, variant); err != nil {
		return nil, err
	}

	return variant, nil
}
