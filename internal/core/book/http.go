// Copyright (c) 2026 Embershelf. All rights reserved.
// Author: dev@embershelf.app

package book

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/embershelf/embershelf/internal/platform/apperr"
	"github.com/embershelf/embershelf/internal/platform/middleware"
	requestutil "github.com/embershelf/embershelf/internal/platform/request"
	"github.com/embershelf/embershelf/internal/platform/respond"
	"github.com/embershelf/embershelf/internal/platform/sec"
	"github.com/embershelf/embershelf/pkg/pagination"
)

// # Handler Implementation

// Handler implements the HTTP layer for the book catalog.
type Handler struct {
	service *Service
}

// NewHandler constructs a new book [Handler].
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns a [chi.Router] configured with the book domain's endpoints.
//
// # Routing Strategy
//
//   - Discovery (Public): Browsing published books.
//   - Curation (Restricted): Creation, tagging, axes, covers, and quotes
//     require [sec.RoleCurator] or higher.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	// ## Public Discovery Endpoints
	router.Get("/", handler.listBooks)
	router.Get("/{identifier}", handler.getBook)

	// ## Curation Endpoints
	router.Group(func(curatorRoute chi.Router) {
		curatorRoute.Use(middleware.RequireRole(sec.RoleCurator))

		curatorRoute.Post("/", handler.createBook)
		curatorRoute.Post("/duplicate-check", handler.duplicateCheck)
		curatorRoute.Get("/{id}/validation", handler.validation)
		curatorRoute.Post("/{id}/tags", handler.addTag)
		curatorRoute.Delete("/{id}/tags/{tagID}", handler.removeTag)
		curatorRoute.Put("/{id}/axes", handler.setAxes)
		curatorRoute.Post("/{id}/covers", handler.addCover)
		curatorRoute.Post("/{id}/quotes", handler.addQuote)
	})

	return router
}

// # Discovery

// listBooks returns the paginated catalog. Visitors only see published
// books; curators may filter by any status.
func (handler *Handler) listBooks(writer http.ResponseWriter, request *http.Request) {
	params := pagination.FromRequest(request)

	filter := Filter{
		SeriesName: request.URL.Query().Get("series"),
		Query:      request.URL.Query().Get("q"),
		Sort:       request.URL.Query().Get("sort"),
		SortDir:    request.URL.Query().Get("sort_dir"),
	}

	isCurator := false
	if claims := requestutil.Claims(request); claims != nil {
		isCurator = sec.UserRole(claims.Role).AtLeast(sec.RoleCurator)
	}

	if isCurator {
		if status := request.URL.Query().Get("status"); status != "" {
			filter.Status = []Status{Status(status)}
		}
	} else {
		filter.Status = []Status{StatusPublished}
	}

	books, total, err := handler.service.ListBooks(request.Context(), filter, params.Limit, params.Offset())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Paginated(writer, books, pagination.NewMeta(params.Page, params.Limit, total))
}

func (handler *Handler) getBook(writer http.ResponseWriter, request *http.Request) {
	entity, err := handler.service.GetBook(request.Context(), requestutil.Param(request, "identifier"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	// Drafts are invisible to the public catalog.
	if entity.Status != StatusPublished {
		claims := requestutil.Claims(request)
		if claims == nil || !sec.UserRole(claims.Role).AtLeast(sec.RoleCurator) {
			respond.Error(writer, request, apperr.NotFound("Book"))
			return
		}
	}

	respond.OK(writer, entity)
}

// # Curation

// duplicateCheckRequest is the standalone duplicate-detector payload.
type duplicateCheckRequest struct {
	Title      string `json:"title"`
	AuthorName string `json:"author_name,omitempty"`
	Identifier string `json:"identifier,omitempty"`
}

func (handler *Handler) duplicateCheck(writer http.ResponseWriter, request *http.Request) {
	var payload duplicateCheckRequest
	if err := requestutil.DecodeJSON(request, &payload); err != nil {
		respond.Error(writer, request, err)
		return
	}

	candidates, _, err := handler.service.DetectDuplicates(request.Context(), payload.Title, payload.AuthorName, payload.Identifier)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, map[string]any{"candidates": candidates})
}

func (handler *Handler) createBook(writer http.ResponseWriter, request *http.Request) {
	claims, err := requestutil.RequiredClaims(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input CreateInput
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	entity, candidates, err := handler.service.CreateBook(request.Context(), input, claims.UserID)
	if err != nil {
		// A duplicate refusal carries the candidate list alongside the error
		// so the client can render or override it.
		if appError := apperr.As(err); appError != nil && appError.Code == "DUPLICATES_FOUND" {
			respond.JSON(writer, appError.HTTPStatus, map[string]any{
				"error":      appError.Message,
				"code":       appError.Code,
				"candidates": candidates,
			})
			return
		}
		respond.Error(writer, request, err)
		return
	}
	respond.Created(writer, entity)
}

func (handler *Handler) validation(writer http.ResponseWriter, request *http.Request) {
	result, err := handler.service.Validation(request.Context(), requestutil.ID(request, "id"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, result)
}

// addTagRequest carries the tag to attach.
type addTagRequest struct {
	TagID string `json:"tag_id"`
}

func (handler *Handler) addTag(writer http.ResponseWriter, request *http.Request) {
	claims, err := requestutil.RequiredClaims(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var payload addTagRequest
	if err := requestutil.DecodeJSON(request, &payload); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.service.AddTag(request.Context(), requestutil.ID(request, "id"), payload.TagID, claims.UserID); err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.NoContent(writer)
}

func (handler *Handler) removeTag(writer http.ResponseWriter, request *http.Request) {
	claims, err := requestutil.RequiredClaims(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	err = handler.service.RemoveTag(request.Context(),
		requestutil.ID(request, "id"),
		requestutil.ID(request, "tagID"),
		claims.UserID,
	)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.NoContent(writer)
}

func (handler *Handler) setAxes(writer http.ResponseWriter, request *http.Request) {
	claims, err := requestutil.RequiredClaims(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var axes AxesIDs
	if err := requestutil.DecodeJSON(request, &axes); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.service.SetAxes(request.Context(), requestutil.ID(request, "id"), axes, claims.UserID); err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.NoContent(writer)
}

// addCoverRequest carries the next cover image.
type addCoverRequest struct {
	ImageURL string `json:"image_url"`
	Ready    bool   `json:"ready"`
}

func (handler *Handler) addCover(writer http.ResponseWriter, request *http.Request) {
	claims, err := requestutil.RequiredClaims(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var payload addCoverRequest
	if err := requestutil.DecodeJSON(request, &payload); err != nil {
		respond.Error(writer, request, err)
		return
	}

	cover, err := handler.service.AddCover(request.Context(), requestutil.ID(request, "id"), payload.ImageURL, payload.Ready, claims.UserID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Created(writer, cover)
}

// addQuoteRequest carries one standout quote.
type addQuoteRequest struct {
	Quote     string `json:"quote"`
	SortOrder int    `json:"sort_order"`
}

func (handler *Handler) addQuote(writer http.ResponseWriter, request *http.Request) {
	claims, err := requestutil.RequiredClaims(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var payload addQuoteRequest
	if err := requestutil.DecodeJSON(request, &payload); err != nil {
		respond.Error(writer, request, err)
		return
	}

	quote, err := handler.service.AddQuote(request.Context(), requestutil.ID(request, "id"), payload.Quote, payload.SortOrder, claims.UserID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Created(writer, quote)
}
