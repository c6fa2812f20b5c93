package http

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httplog/v2"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"
	"github.com/vadimbarashkov/ziplink/internal/entity"
	"github.com/vadimbarashkov/ziplink/pkg/response"
)

// LinkUseCase defines the link management and redirect operations exposed over HTTP.
type LinkUseCase interface {
	// CreateLink stores a new link owned by userID.
	CreateLink(ctx context.Context, userID string, nl entity.NewLink) (*entity.Link, error)

	// CreateGuestLink stores a new link without an owner that expires after a fixed TTL.
	CreateGuestLink(ctx context.Context, nl entity.NewLink) (*entity.Link, error)

	MyLinks(ctx context.Context, userID string) ([]entity.Link, error)
	PublicLinks(ctx context.Context) ([]entity.Link, error)
	OwnerStats(ctx context.Context, userID string) (*entity.OwnerStats, error)

	// UpdateLink and DeleteLink fail with entity.ErrForbidden unless userID owns the link.
	UpdateLink(ctx context.Context, userID, id string, upd entity.LinkUpdate) (*entity.Link, error)
	DeleteLink(ctx context.Context, userID, id string) error

	// Resolve returns the destination of slug and records a click for the visitor.
	Resolve(ctx context.Context, slug string, visitor entity.Visitor) (*entity.Link, error)
}

// handlePing handles health check requests to ensure the server is running.
func handlePing(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	fmt.Fprintln(w, "pong")
}

// decodeRequest decodes and validates the JSON body into req.
// On failure it renders the error envelope and reports false.
func decodeRequest(w http.ResponseWriter, r *http.Request, validate *validator.Validate, req any) bool {
	if err := render.DecodeJSON(r.Body, req); err != nil {
		if errors.Is(err, io.EOF) {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.EmptyRequestBodyResponse)
			return false
		}

		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.BadRequestResponse)
		return false
	}

	if err := validate.Struct(req); err != nil {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.ValidationErrorResponse(err))
		return false
	}

	return true
}

// renderError maps usecase errors to their envelopes. Errors without a mapping
// are attached to the request log entry and answered with a server error.
func renderError(w http.ResponseWriter, r *http.Request, op string, err error) {
	var resp response.Response

	switch {
	case errors.Is(err, entity.ErrLinkNotFound):
		resp = response.ResourceNotFoundResponse
	case errors.Is(err, entity.ErrLinkExpired):
		resp = response.LinkExpiredResponse
	case errors.Is(err, entity.ErrForbidden):
		resp = response.ForbiddenResponse
	case errors.Is(err, entity.ErrSlugExists):
		resp = response.SlugExistsResponse
	default:
		httplog.LogEntrySetFields(r.Context(), map[string]any{"op": op, "err": err})
		resp = response.ServerErrorResponse
	}

	render.Status(r, resp.StatusCode)
	render.JSON(w, r, resp)
}

// handleCreateLink handles POST requests creating a link owned by the caller.
func handleCreateLink(links LinkUseCase, validate *validator.Validate) http.HandlerFunc {
	const op = "delivery.http.handleCreateLink"
	const successMsg = "The link has been created successfully."

	return func(w http.ResponseWriter, r *http.Request) {
		var req createLinkRequest
		if !decodeRequest(w, r, validate, &req) {
			return
		}

		link, err := links.CreateLink(r.Context(), callerFromContext(r.Context()), req.toEntity())
		if err != nil {
			renderError(w, r, op, err)
			return
		}

		render.Status(r, http.StatusCreated)
		render.JSON(w, r, response.SuccessResponse(http.StatusCreated, successMsg, toLinkResponse(link)))
	}
}

// handleCreateGuestLink handles POST requests creating a link without an owner.
//
// Guest links expire; the expiration time is part of the returned link.
func handleCreateGuestLink(links LinkUseCase, validate *validator.Validate) http.HandlerFunc {
	const op = "delivery.http.handleCreateGuestLink"
	const successMsg = "The guest link has been created successfully."

	return func(w http.ResponseWriter, r *http.Request) {
		var req createLinkRequest
		if !decodeRequest(w, r, validate, &req) {
			return
		}

		link, err := links.CreateGuestLink(r.Context(), req.toEntity())
		if err != nil {
			renderError(w, r, op, err)
			return
		}

		render.Status(r, http.StatusCreated)
		render.JSON(w, r, response.SuccessResponse(http.StatusCreated, successMsg, toLinkResponse(link)))
	}
}

func handleMyLinks(links LinkUseCase) http.HandlerFunc {
	const op = "delivery.http.handleMyLinks"
	const successMsg = "The links were retrieved successfully."

	return func(w http.ResponseWriter, r *http.Request) {
		list, err := links.MyLinks(r.Context(), callerFromContext(r.Context()))
		if err != nil {
			renderError(w, r, op, err)
			return
		}

		render.Status(r, http.StatusOK)
		render.JSON(w, r, response.SuccessResponse(http.StatusOK, successMsg, toLinkResponses(list)))
	}
}

func handlePublicLinks(links LinkUseCase) http.HandlerFunc {
	const op = "delivery.http.handlePublicLinks"
	const successMsg = "The public links were retrieved successfully."

	return func(w http.ResponseWriter, r *http.Request) {
		list, err := links.PublicLinks(r.Context())
		if err != nil {
			renderError(w, r, op, err)
			return
		}

		render.Status(r, http.StatusOK)
		render.JSON(w, r, response.SuccessResponse(http.StatusOK, successMsg, toLinkResponses(list)))
	}
}

func handleOwnerStats(links LinkUseCase) http.HandlerFunc {
	const op = "delivery.http.handleOwnerStats"
	const successMsg = "The link statistics were retrieved successfully."

	return func(w http.ResponseWriter, r *http.Request) {
		stats, err := links.OwnerStats(r.Context(), callerFromContext(r.Context()))
		if err != nil {
			renderError(w, r, op, err)
			return
		}

		render.Status(r, http.StatusOK)
		render.JSON(w, r, response.SuccessResponse(http.StatusOK, successMsg, ownerStatsResponse{
			TotalLinks:  stats.TotalLinks,
			TotalClicks: stats.TotalClicks,
		}))
	}
}

// handleUpdateLink handles PUT requests to modify a link of the caller.
func handleUpdateLink(links LinkUseCase, validate *validator.Validate) http.HandlerFunc {
	const op = "delivery.http.handleUpdateLink"
	const successMsg = "The link was successfully updated."

	return func(w http.ResponseWriter, r *http.Request) {
		var req updateLinkRequest
		if !decodeRequest(w, r, validate, &req) {
			return
		}

		id := chi.URLParam(r, "id")

		link, err := links.UpdateLink(r.Context(), callerFromContext(r.Context()), id, req.toEntity())
		if err != nil {
			renderError(w, r, op, err)
			return
		}

		render.Status(r, http.StatusOK)
		render.JSON(w, r, response.SuccessResponse(http.StatusOK, successMsg, toLinkResponse(link)))
	}
}

func handleDeleteLink(links LinkUseCase) http.HandlerFunc {
	const op = "delivery.http.handleDeleteLink"
	const successMsg = "The link was successfully deleted."

	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		if err := links.DeleteLink(r.Context(), callerFromContext(r.Context()), id); err != nil {
			renderError(w, r, op, err)
			return
		}

		render.Status(r, http.StatusOK)
		render.JSON(w, r, response.SuccessResponse(http.StatusOK, successMsg))
	}
}

// handleRedirect handles GET requests for a slug: it records the click and
// redirects to the destination, or answers 404 for unknown or inactive slugs
// and 410 for expired links.
func handleRedirect(links LinkUseCase) http.HandlerFunc {
	const op = "delivery.http.handleRedirect"

	return func(w http.ResponseWriter, r *http.Request) {
		slug := chi.URLParam(r, "slug")

		link, err := links.Resolve(r.Context(), slug, visitorFromRequest(r))
		if err != nil {
			renderError(w, r, op, err)
			return
		}

		http.Redirect(w, r, link.URL, http.StatusFound)
	}
}

func visitorFromRequest(r *http.Request) entity.Visitor {
	return entity.Visitor{
		UserAgent: r.UserAgent(),
		Referrer:  r.Referer(),
		IP:        clientIP(r),
	}
}

// clientIP returns the host part of RemoteAddr. After middleware.RealIP the
// address may already be a bare IP.
func clientIP(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}

	if ip := net.ParseIP(r.RemoteAddr); ip != nil {
		return ip.String()
	}

	return ""
}
