package http

import (
	"reflect"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/vadimbarashkov/ziplink/internal/entity"
)

var slugPattern = regexp.MustCompile(`^[a-z0-9-]+$`)

// getValidate initializes a new validator instance for validating incoming request payloads.
// It customizes tag name extraction from struct fields to match JSON tags and adds the "slug" rule.
func getValidate() *validator.Validate {
	validate := validator.New()

	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	if err := validate.RegisterValidation("slug", func(fl validator.FieldLevel) bool {
		return slugPattern.MatchString(fl.Field().String())
	}); err != nil {
		panic(err)
	}

	return validate
}

// createLinkRequest represents the request payload for creating an owned or a guest link.
type createLinkRequest struct {
	Title       string  `json:"title" validate:"required,min=3,max=100"`
	URL         string  `json:"url" validate:"required,url"`
	Description *string `json:"description" validate:"omitempty,max=500"`
	CustomSlug  string  `json:"custom_slug" validate:"omitempty,min=3,max=30,slug"`
}

func (req createLinkRequest) toEntity() entity.NewLink {
	return entity.NewLink{
		Title:       req.Title,
		URL:         req.URL,
		Description: req.Description,
		CustomSlug:  req.CustomSlug,
	}
}

// updateLinkRequest represents the request payload for updating a link. Omitted fields are kept.
type updateLinkRequest struct {
	Title       *string `json:"title" validate:"omitempty,min=3,max=100"`
	URL         *string `json:"url" validate:"omitempty,url"`
	Description *string `json:"description" validate:"omitempty,max=500"`
	IsActive    *bool   `json:"is_active"`
}

func (req updateLinkRequest) toEntity() entity.LinkUpdate {
	return entity.LinkUpdate{
		Title:       req.Title,
		URL:         req.URL,
		Description: req.Description,
		IsActive:    req.IsActive,
	}
}

// linkResponse represents the response payload of a link.
type linkResponse struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	URL         string     `json:"url"`
	Slug        string     `json:"slug"`
	Description *string    `json:"description,omitempty"`
	IsActive    bool       `json:"is_active"`
	Clicks      int64      `json:"clicks"`
	IsCustom    bool       `json:"is_custom"`
	UserID      *string    `json:"user_id,omitempty"`
	Favicon     *string    `json:"favicon,omitempty"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func toLinkResponse(link *entity.Link) linkResponse {
	return linkResponse{
		ID:          link.ID,
		Title:       link.Title,
		URL:         link.URL,
		Slug:        link.Slug,
		Description: link.Description,
		IsActive:    link.IsActive,
		Clicks:      link.Clicks,
		IsCustom:    link.IsCustom,
		UserID:      link.UserID,
		Favicon:     link.Favicon,
		ExpiresAt:   link.ExpiresAt,
		CreatedAt:   link.CreatedAt,
		UpdatedAt:   link.UpdatedAt,
	}
}

func toLinkResponses(links []entity.Link) []linkResponse {
	resp := make([]linkResponse, 0, len(links))
	for i := range links {
		resp = append(resp, toLinkResponse(&links[i]))
	}
	return resp
}

type ownerStatsResponse struct {
	TotalLinks  int64 `json:"total_links"`
	TotalClicks int64 `json:"total_clicks"`
}

type dailyClicksResponse struct {
	Date  string `json:"date"`
	Count int64  `json:"count"`
}

type monthlyClicksResponse struct {
	Month string `json:"month"`
	Count int64  `json:"count"`
}

type referrerClicksResponse struct {
	Referrer string `json:"referrer"`
	Count    int64  `json:"count"`
}

type countryClicksResponse struct {
	Country string `json:"country"`
	Count   int64  `json:"count"`
}

func mapRows[T, R any](rows []T, fn func(T) R) []R {
	out := make([]R, 0, len(rows))
	for _, row := range rows {
		out = append(out, fn(row))
	}
	return out
}

func toDailyClicksResponse(row entity.DailyClicks) dailyClicksResponse {
	return dailyClicksResponse{Date: row.Date, Count: row.Count}
}

func toMonthlyClicksResponse(row entity.MonthlyClicks) monthlyClicksResponse {
	return monthlyClicksResponse{Month: row.Month, Count: row.Count}
}

func toReferrerClicksResponse(row entity.ReferrerClicks) referrerClicksResponse {
	return referrerClicksResponse{Referrer: row.Referrer, Count: row.Count}
}

func toCountryClicksResponse(row entity.CountryClicks) countryClicksResponse {
	return countryClicksResponse{Country: row.Country, Count: row.Count}
}
