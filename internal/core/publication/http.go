// Copyright (c) 2026 Embershelf. All rights reserved.
// Author: dev@embershelf.app

package publication

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/embershelf/embershelf/internal/platform/middleware"
	requestutil "github.com/embershelf/embershelf/internal/platform/request"
	"github.com/embershelf/embershelf/internal/platform/respond"
	"github.com/embershelf/embershelf/internal/platform/sec"
	"github.com/embershelf/embershelf/pkg/pagination"
)

// Handler implements the HTTP layer for publishing.
type Handler struct {
	service *Service
}

// NewHandler constructs a new publication [Handler].
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// BookRoutes returns the per-book publishing endpoints. It expects to be
// mounted under a book route carrying a {bookID} parameter.
func (handler *Handler) BookRoutes() chi.Router {
	router := chi.NewRouter()

	router.Group(func(authorRoute chi.Router) {
		authorRoute.Use(middleware.RequireRole(sec.RoleAuthor))
		authorRoute.Get("/", handler.history)
	})

	router.Group(func(curatorRoute chi.Router) {
		curatorRoute.Use(middleware.RequireRole(sec.RoleCurator))
		curatorRoute.Get("/preview", handler.preview)
		curatorRoute.Post("/", handler.publish)
	})

	return router
}

// Routes returns the standalone publication endpoints: lookup by id and
// the curator worklist.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Group(func(authorRoute chi.Router) {
		authorRoute.Use(middleware.RequireRole(sec.RoleAuthor))
		authorRoute.Get("/{publicationID}", handler.get)
	})

	router.Group(func(curatorRoute chi.Router) {
		curatorRoute.Use(middleware.RequireRole(sec.RoleCurator))
		curatorRoute.Get("/worklist", handler.worklist)
	})

	return router
}

func (handler *Handler) get(writer http.ResponseWriter, request *http.Request) {
	record, err := handler.service.GetPublication(request.Context(), requestutil.ID(request, "publicationID"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, record)
}

func (handler *Handler) history(writer http.ResponseWriter, request *http.Request) {
	params := pagination.FromRequest(request)

	records, total, err := handler.service.History(
		request.Context(), requestutil.ID(request, "bookID"), params.Limit, params.Offset(),
	)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Paginated(writer, records, pagination.NewMeta(params.Page, params.Limit, total))
}

func (handler *Handler) worklist(writer http.ResponseWriter, request *http.Request) {
	params := pagination.FromRequest(request)

	entries, total, err := handler.service.Worklist(request.Context(), params.Limit, params.Offset())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Paginated(writer, entries, pagination.NewMeta(params.Page, params.Limit, total))
}

func (handler *Handler) preview(writer http.ResponseWriter, request *http.Request) {
	preview, err := handler.service.PreviewPublish(request.Context(), requestutil.ID(request, "bookID"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, preview)
}

func (handler *Handler) publish(writer http.ResponseWriter, request *http.Request) {
	claims, err := requestutil.RequiredClaims(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	result, err := handler.service.Publish(request.Context(), requestutil.ID(request, "bookID"), claims.UserID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Created(writer, result)
}
