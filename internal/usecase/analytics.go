package usecase

import (
	"context"
	"fmt"
	"slices"

	"github.com/vadimbarashkov/ziplink/internal/analytics"
	"github.com/vadimbarashkov/ziplink/internal/entity"
)

type linkFinder interface {
	RetrieveByID(ctx context.Context, id string) (*entity.Link, error)
}

type clickRollup interface {
	Rollup(ctx context.Context, linkID string, dim entity.Dimension) ([]entity.BucketCount, error)
}

// AnalyticsUseCase builds click reports for a single link.
//
// Every report first checks access: an authenticated caller may only read
// links they own, an anonymous caller may only read guest links.
type AnalyticsUseCase struct {
	linkRepo  linkFinder
	clickRepo clickRollup
}

func NewAnalyticsUseCase(linkRepo linkFinder, clickRepo clickRollup) *AnalyticsUseCase {
	return &AnalyticsUseCase{
		linkRepo:  linkRepo,
		clickRepo: clickRepo,
	}
}

func (uc *AnalyticsUseCase) DailyClicks(ctx context.Context, callerID, linkID string) ([]entity.DailyClicks, error) {
	const op = "usecase.AnalyticsUseCase.DailyClicks"

	rows, err := uc.rollup(ctx, callerID, linkID, entity.DimensionDay)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return analytics.Daily(slices.Values(rows)), nil
}

func (uc *AnalyticsUseCase) ReferrerClicks(ctx context.Context, callerID, linkID string) ([]entity.ReferrerClicks, error) {
	const op = "usecase.AnalyticsUseCase.ReferrerClicks"

	rows, err := uc.rollup(ctx, callerID, linkID, entity.DimensionReferrer)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return analytics.Referrers(slices.Values(rows)), nil
}

func (uc *AnalyticsUseCase) MonthlyClicks(ctx context.Context, callerID, linkID string) ([]entity.MonthlyClicks, error) {
	const op = "usecase.AnalyticsUseCase.MonthlyClicks"

	rows, err := uc.rollup(ctx, callerID, linkID, entity.DimensionMonth)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return analytics.Monthly(slices.Values(rows)), nil
}

// CountryClicks returns at most analytics.TopCountries rows.
func (uc *AnalyticsUseCase) CountryClicks(ctx context.Context, callerID, linkID string) ([]entity.CountryClicks, error) {
	const op = "usecase.AnalyticsUseCase.CountryClicks"

	rows, err := uc.rollup(ctx, callerID, linkID, entity.DimensionCountry)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return analytics.Countries(slices.Values(rows)), nil
}

func (uc *AnalyticsUseCase) rollup(ctx context.Context, callerID, linkID string, dim entity.Dimension) ([]entity.BucketCount, error) {
	if err := uc.authorize(ctx, callerID, linkID); err != nil {
		return nil, err
	}

	rows, err := uc.clickRepo.Rollup(ctx, linkID, dim)
	if err != nil {
		return nil, fmt.Errorf("failed to roll up clicks by %s: %w", dim, err)
	}

	return rows, nil
}

// authorize treats an empty callerID as an anonymous caller.
func (uc *AnalyticsUseCase) authorize(ctx context.Context, callerID, linkID string) error {
	link, err := uc.linkRepo.RetrieveByID(ctx, linkID)
	if err != nil {
		return fmt.Errorf("failed to get link: %w", err)
	}

	if callerID == "" {
		if !link.IsGuest() {
			return entity.ErrForbidden
		}
		return nil
	}

	if !link.OwnedBy(callerID) {
		return entity.ErrForbidden
	}

	return nil
}
