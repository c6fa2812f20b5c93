package http

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/vadimbarashkov/ziplink/internal/entity"
)

type MockLinkUseCase struct {
	mock.Mock
}

func (m *MockLinkUseCase) CreateLink(ctx context.Context, userID string, nl entity.NewLink) (*entity.Link, error) {
	args := m.Called(ctx, userID, nl)
	link, _ := args.Get(0).(*entity.Link)
	return link, args.Error(1)
}

func (m *MockLinkUseCase) CreateGuestLink(ctx context.Context, nl entity.NewLink) (*entity.Link, error) {
	args := m.Called(ctx, nl)
	link, _ := args.Get(0).(*entity.Link)
	return link, args.Error(1)
}

func (m *MockLinkUseCase) MyLinks(ctx context.Context, userID string) ([]entity.Link, error) {
	args := m.Called(ctx, userID)
	links, _ := args.Get(0).([]entity.Link)
	return links, args.Error(1)
}

func (m *MockLinkUseCase) PublicLinks(ctx context.Context) ([]entity.Link, error) {
	args := m.Called(ctx)
	links, _ := args.Get(0).([]entity.Link)
	return links, args.Error(1)
}

func (m *MockLinkUseCase) OwnerStats(ctx context.Context, userID string) (*entity.OwnerStats, error) {
	args := m.Called(ctx, userID)
	stats, _ := args.Get(0).(*entity.OwnerStats)
	return stats, args.Error(1)
}

func (m *MockLinkUseCase) UpdateLink(ctx context.Context, userID, id string, upd entity.LinkUpdate) (*entity.Link, error) {
	args := m.Called(ctx, userID, id, upd)
	link, _ := args.Get(0).(*entity.Link)
	return link, args.Error(1)
}

func (m *MockLinkUseCase) DeleteLink(ctx context.Context, userID, id string) error {
	args := m.Called(ctx, userID, id)
	return args.Error(0)
}

func (m *MockLinkUseCase) Resolve(ctx context.Context, slug string, visitor entity.Visitor) (*entity.Link, error) {
	args := m.Called(ctx, slug, visitor)
	link, _ := args.Get(0).(*entity.Link)
	return link, args.Error(1)
}

type MockAnalyticsUseCase struct {
	mock.Mock
}

func (m *MockAnalyticsUseCase) DailyClicks(ctx context.Context, callerID, linkID string) ([]entity.DailyClicks, error) {
	args := m.Called(ctx, callerID, linkID)
	rows, _ := args.Get(0).([]entity.DailyClicks)
	return rows, args.Error(1)
}

func (m *MockAnalyticsUseCase) ReferrerClicks(ctx context.Context, callerID, linkID string) ([]entity.ReferrerClicks, error) {
	args := m.Called(ctx, callerID, linkID)
	rows, _ := args.Get(0).([]entity.ReferrerClicks)
	return rows, args.Error(1)
}

func (m *MockAnalyticsUseCase) MonthlyClicks(ctx context.Context, callerID, linkID string) ([]entity.MonthlyClicks, error) {
	args := m.Called(ctx, callerID, linkID)
	rows, _ := args.Get(0).([]entity.MonthlyClicks)
	return rows, args.Error(1)
}

func (m *MockAnalyticsUseCase) CountryClicks(ctx context.Context, callerID, linkID string) ([]entity.CountryClicks, error) {
	args := m.Called(ctx, callerID, linkID)
	rows, _ := args.Get(0).([]entity.CountryClicks)
	return rows, args.Error(1)
}
