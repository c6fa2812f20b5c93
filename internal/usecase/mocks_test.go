package usecase

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/vadimbarashkov/ziplink/internal/entity"
)

type MockLinkRepository struct {
	mock.Mock
}

func (m *MockLinkRepository) Save(ctx context.Context, link *entity.Link) (*entity.Link, error) {
	args := m.Called(ctx, link)
	saved, _ := args.Get(0).(*entity.Link)
	return saved, args.Error(1)
}

func (m *MockLinkRepository) RetrieveByID(ctx context.Context, id string) (*entity.Link, error) {
	args := m.Called(ctx, id)
	link, _ := args.Get(0).(*entity.Link)
	return link, args.Error(1)
}

func (m *MockLinkRepository) RetrieveActiveBySlug(ctx context.Context, slug string) (*entity.Link, error) {
	args := m.Called(ctx, slug)
	link, _ := args.Get(0).(*entity.Link)
	return link, args.Error(1)
}

func (m *MockLinkRepository) ListByOwner(ctx context.Context, userID string) ([]entity.Link, error) {
	args := m.Called(ctx, userID)
	links, _ := args.Get(0).([]entity.Link)
	return links, args.Error(1)
}

func (m *MockLinkRepository) ListGuest(ctx context.Context) ([]entity.Link, error) {
	args := m.Called(ctx)
	links, _ := args.Get(0).([]entity.Link)
	return links, args.Error(1)
}

func (m *MockLinkRepository) OwnerStats(ctx context.Context, userID string) (*entity.OwnerStats, error) {
	args := m.Called(ctx, userID)
	stats, _ := args.Get(0).(*entity.OwnerStats)
	return stats, args.Error(1)
}

func (m *MockLinkRepository) Update(ctx context.Context, id string, upd entity.LinkUpdate) (*entity.Link, error) {
	args := m.Called(ctx, id, upd)
	link, _ := args.Get(0).(*entity.Link)
	return link, args.Error(1)
}

func (m *MockLinkRepository) Remove(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type MockClickRepository struct {
	mock.Mock
}

func (m *MockClickRepository) Record(ctx context.Context, click entity.ClickEvent) (*entity.Link, error) {
	args := m.Called(ctx, click)
	link, _ := args.Get(0).(*entity.Link)
	return link, args.Error(1)
}

func (m *MockClickRepository) Rollup(ctx context.Context, linkID string, dim entity.Dimension) ([]entity.BucketCount, error) {
	args := m.Called(ctx, linkID, dim)
	rows, _ := args.Get(0).([]entity.BucketCount)
	return rows, args.Error(1)
}

type MockLinkCache struct {
	mock.Mock
}

func (m *MockLinkCache) Get(ctx context.Context, slug string) (*entity.Link, bool, error) {
	args := m.Called(ctx, slug)
	link, _ := args.Get(0).(*entity.Link)
	return link, args.Bool(1), args.Error(2)
}

func (m *MockLinkCache) Set(ctx context.Context, link *entity.Link) error {
	args := m.Called(ctx, link)
	return args.Error(0)
}

func (m *MockLinkCache) Delete(ctx context.Context, slug string) error {
	args := m.Called(ctx, slug)
	return args.Error(0)
}

func ptr[T any](v T) *T {
	return &v
}
