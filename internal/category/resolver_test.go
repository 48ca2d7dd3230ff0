package category

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/hitoshi/castpress/internal/model"
)

// mockCategoryRepo はCategoryRepositoryのテスト用モック。
type mockCategoryRepo struct {
	bySlug      map[string]*model.Category
	findErr     error
	createErr   error
	createCalls int
}

func newMockCategoryRepo() *mockCategoryRepo {
	return &mockCategoryRepo{bySlug: make(map[string]*model.Category)}
}

func (m *mockCategoryRepo) FindBySlug(_ context.Context, slug string) (*model.Category, error) {
	if m.findErr != nil {
		return nil, m.findErr
	}
	return m.bySlug[slug], nil
}

func (m *mockCategoryRepo) Create(_ context.Context, name, slug string) (*model.Category, error) {
	m.createCalls++
	if m.createErr != nil {
		return nil, m.createErr
	}
	cat := &model.Category{ID: "cat-" + slug, Name: name, Slug: slug}
	m.bySlug[slug] = cat
	return cat, nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func TestResolve_既存カテゴリはそのまま返す(t *testing.T) {
	repo := newMockCategoryRepo()
	repo.bySlug["season-1"] = &model.Category{ID: "cat-existing", Slug: "season-1"}

	resolver := NewResolver(repo, testLogger())

	id, err := resolver.Resolve(context.Background(), "season-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id != "cat-existing" {
		t.Errorf("expected cat-existing, got %s", id)
	}
	if repo.createCalls != 0 {
		t.Errorf("expected no creation, got %d", repo.createCalls)
	}
}

func TestResolve_未知のスラグはカテゴリを作成する(t *testing.T) {
	repo := newMockCategoryRepo()
	resolver := NewResolver(repo, testLogger())

	id, err := resolver.Resolve(context.Background(), "season-2")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id != "cat-season-2" {
		t.Errorf("unexpected id: %s", id)
	}
	if repo.createCalls != 1 {
		t.Errorf("expected 1 creation, got %d", repo.createCalls)
	}
}

func TestResolve_同一スラグに対して冪等(t *testing.T) {
	repo := newMockCategoryRepo()
	resolver := NewResolver(repo, testLogger())

	first, err := resolver.Resolve(context.Background(), "season-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := resolver.Resolve(context.Background(), "season-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if first != second {
		t.Errorf("expected same category id, got %s and %s", first, second)
	}
	if repo.createCalls != 1 {
		t.Errorf("expected exactly 1 creation, got %d", repo.createCalls)
	}
}

func TestResolve_リポジトリ障害はエラーを返す(t *testing.T) {
	repo := newMockCategoryRepo()
	repo.findErr = errors.New("db error")

	resolver := NewResolver(repo, testLogger())

	if _, err := resolver.Resolve(context.Background(), "season-1"); err == nil {
		t.Fatal("expected error")
	}
}
