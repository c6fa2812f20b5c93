package http

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/vadimbarashkov/ziplink/internal/entity"
	"github.com/vadimbarashkov/ziplink/pkg/response"
)

// AnalyticsUseCase defines the click reports of a link. An empty callerID means an anonymous caller.
type AnalyticsUseCase interface {
	DailyClicks(ctx context.Context, callerID, linkID string) ([]entity.DailyClicks, error)
	ReferrerClicks(ctx context.Context, callerID, linkID string) ([]entity.ReferrerClicks, error)
	MonthlyClicks(ctx context.Context, callerID, linkID string) ([]entity.MonthlyClicks, error)
	CountryClicks(ctx context.Context, callerID, linkID string) ([]entity.CountryClicks, error)
}

func handleDailyClicks(analytics AnalyticsUseCase) http.HandlerFunc {
	const op = "delivery.http.handleDailyClicks"
	const successMsg = "The daily clicks were retrieved successfully."

	return func(w http.ResponseWriter, r *http.Request) {
		rows, err := analytics.DailyClicks(r.Context(), callerFromContext(r.Context()), chi.URLParam(r, "id"))
		if err != nil {
			renderError(w, r, op, err)
			return
		}

		render.Status(r, http.StatusOK)
		render.JSON(w, r, response.SuccessResponse(http.StatusOK, successMsg, mapRows(rows, toDailyClicksResponse)))
	}
}

func handleReferrerClicks(analytics AnalyticsUseCase) http.HandlerFunc {
	const op = "delivery.http.handleReferrerClicks"
	const successMsg = "The referrer clicks were retrieved successfully."

	return func(w http.ResponseWriter, r *http.Request) {
		rows, err := analytics.ReferrerClicks(r.Context(), callerFromContext(r.Context()), chi.URLParam(r, "id"))
		if err != nil {
			renderError(w, r, op, err)
			return
		}

		render.Status(r, http.StatusOK)
		render.JSON(w, r, response.SuccessResponse(http.StatusOK, successMsg, mapRows(rows, toReferrerClicksResponse)))
	}
}

func handleMonthlyClicks(analytics AnalyticsUseCase) http.HandlerFunc {
	const op = "delivery.http.handleMonthlyClicks"
	const successMsg = "The monthly clicks were retrieved successfully."

	return func(w http.ResponseWriter, r *http.Request) {
		rows, err := analytics.MonthlyClicks(r.Context(), callerFromContext(r.Context()), chi.URLParam(r, "id"))
		if err != nil {
			renderError(w, r, op, err)
			return
		}

		render.Status(r, http.StatusOK)
		render.JSON(w, r, response.SuccessResponse(http.StatusOK, successMsg, mapRows(rows, toMonthlyClicksResponse)))
	}
}

// handleCountryClicks answers with at most six countries, unknown ones excluded.
func handleCountryClicks(analytics AnalyticsUseCase) http.HandlerFunc {
	const op = "delivery.http.handleCountryClicks"
	const successMsg = "The country clicks were retrieved successfully."

	return func(w http.ResponseWriter, r *http.Request) {
		rows, err := analytics.CountryClicks(r.Context(), callerFromContext(r.Context()), chi.URLParam(r, "id"))
		if err != nil {
			renderError(w, r, op, err)
			return
		}

		render.Status(r, http.StatusOK)
		render.JSON(w, r, response.SuccessResponse(http.StatusOK, successMsg, mapRows(rows, toCountryClicksResponse)))
	}
}
