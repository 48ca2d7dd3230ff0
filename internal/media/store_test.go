package media

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/png"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/hitoshi/castpress/internal/model"
)

// mockMediaRepo はMediaRepositoryのテスト用モック。
type mockMediaRepo struct {
	assets       []*model.MediaAsset
	variants     []*model.MediaVariant
	createAssErr error
	createVarErr error
}

func (m *mockMediaRepo) CreateAsset(_ context.Context, asset *model.MediaAsset) error {
	if m.createAssErr != nil {
		return m.createAssErr
	}
	m.assets = append(m.assets, asset)
	return nil
}

func (m *mockMediaRepo) FindAssetByID(_ context.Context, id string) (*model.MediaAsset, error) {
	for _, a := range m.assets {
		if a.ID == id {
			return a, nil
		}
	}
	return nil, nil
}

func (m *mockMediaRepo) CreateVariant(_ context.Context, variant *model.MediaVariant) error {
	if m.createVarErr != nil {
		return m.createVarErr
	}
	m.variants = append(m.variants, variant)
	return nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

// testPNG は指定サイズのPNG画像バイト列を生成する。
func testPNG(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, w, h))); err != nil {
		t.Fatalf("failed to encode png: %v", err)
	}
	return buf.Bytes()
}

func TestStoreFile_ディレクトリを作成してファイルを保存する(t *testing.T) {
	baseDir := filepath.Join(t.TempDir(), "media")
	store := NewStore(baseDir, &mockMediaRepo{}, testLogger())

	data := []byte("file content")
	path, err := store.StoreFile(data, "test.jpg")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read stored file: %v", err)
	}
	if !bytes.Equal(got, data) {
		t.Error("stored content mismatch")
	}
}

func TestRegisterAsset_アセットを登録する(t *testing.T) {
	repo := &mockMediaRepo{}
	store := NewStore(t.TempDir(), repo, testLogger())

	asset, err := store.RegisterAsset(context.Background(), "/media/a.jpg", "image/jpeg", "post-1", 1024)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if asset.ID == "" {
		t.Error("expected generated asset ID")
	}
	if asset.PostID != "post-1" || asset.MimeType != "image/jpeg" || asset.SizeBytes != 1024 {
		t.Errorf("asset mismatch: %+v", asset)
	}
	if len(repo.assets) != 1 {
		t.Errorf("expected 1 registered asset, got %d", len(repo.assets))
	}
}

func TestGenerateDerived_リサイズ済み派生画像を生成する(t *testing.T) {
	baseDir := t.TempDir()
	repo := &mockMediaRepo{}
	store := NewStore(baseDir, repo, testLogger())

	// 600x400の元画像を保存
	data := testPNG(t, 600, 400)
	path, err := store.StoreFile(data, "original.png")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	asset := &model.MediaAsset{ID: "asset-1", Path: path, MimeType: "image/png"}
	if err := store.GenerateDerived(context.Background(), asset); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(repo.variants) != 2 {
		t.Fatalf("expected 2 variants, got %d", len(repo.variants))
	}

	byName := make(map[string]*model.MediaVariant)
	for _, v := range repo.variants {
		byName[v.Name] = v
	}

	// アスペクト比を維持して縮小される
	thumb := byName["thumbnail"]
	if thumb == nil || thumb.Width != 150 || thumb.Height != 100 {
		t.Errorf("thumbnail: expected 150x100, got %+v", thumb)
	}
	medium := byName["medium"]
	if medium == nil || medium.Width != 300 || medium.Height != 200 {
		t.Errorf("medium: expected 300x200, got %+v", medium)
	}

	// 派生ファイルがディスクに存在する
	for _, v := range repo.variants {
		if _, err := os.Stat(v.Path); err != nil {
			t.Errorf("variant file missing: %s", v.Path)
		}
		if !strings.HasSuffix(v.Path, "-"+v.Name+".jpg") {
			t.Errorf("unexpected variant filename: %s", v.Path)
		}
	}
}

func TestGenerateDerived_小さい画像は等倍で生成する(t *testing.T) {
	baseDir := t.TempDir()
	repo := &mockMediaRepo{}
	store := NewStore(baseDir, repo, testLogger())

	data := testPNG(t, 100, 80)
	path, err := store.StoreFile(data, "small.png")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	asset := &model.MediaAsset{ID: "asset-1", Path: path}
	if err := store.GenerateDerived(context.Background(), asset); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, v := range repo.variants {
		if v.Width != 100 || v.Height != 80 {
			t.Errorf("variant %s: expected 100x80, got %dx%d", v.Name, v.Width, v.Height)
		}
	}
}

func TestGenerateDerived_デコード不能な画像はエラーを返す(t *testing.T) {
	baseDir := t.TempDir()
	store := NewStore(baseDir, &mockMediaRepo{}, testLogger())

	path, err := store.StoreFile([]byte("not an image"), "broken.jpg")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	asset := &model.MediaAsset{ID: "asset-1", Path: path}
	if err := store.GenerateDerived(context.Background(), asset); err == nil {
		t.Fatal("expected error for undecodable image")
	}
}

func TestGenerateDerived_個別の登録失敗でも継続する(t *testing.T) {
	baseDir := t.TempDir()
	repo := &mockMediaRepo{createVarErr: errors.New("db error")}
	store := NewStore(baseDir, repo, testLogger())

	data := testPNG(t, 600, 400)
	path, err := store.StoreFile(data, "original.png")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	asset := &model.MediaAsset{ID: "asset-1", Path: path}
	// 登録が全件失敗してもGenerateDerived自体はエラーにならない
	if err := store.GenerateDerived(context.Background(), asset); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(repo.variants) != 0 {
		t.Errorf("expected no registered variants, got %d", len(repo.variants))
	}
}
