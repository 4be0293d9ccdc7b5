// Copyright (c) 2026 Embershelf. All rights reserved.
// Author: dev@embershelf.app

package author

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/embershelf/embershelf/internal/platform/middleware"
	requestutil "github.com/embershelf/embershelf/internal/platform/request"
	"github.com/embershelf/embershelf/internal/platform/respond"
	"github.com/embershelf/embershelf/internal/platform/sec"
	"github.com/embershelf/embershelf/pkg/pagination"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	// Public
	router.Get("/", handler.listAuthors)
	router.Get("/{authorID}", handler.getAuthor)

	router.Group(func(curatorRoute chi.Router) {
		curatorRoute.Use(middleware.RequireRole(sec.RoleCurator))

		curatorRoute.Post("/", handler.createAuthor)
		curatorRoute.Patch("/{authorID}", handler.updateAuthor)

		// Admin strict only
		curatorRoute.With(middleware.RequireRole(sec.RoleAdmin)).Delete("/{authorID}", handler.deleteAuthor)
	})

	return router
}

func (handler *Handler) listAuthors(writer http.ResponseWriter, request *http.Request) {
	paginationParams := pagination.FromRequest(request)

	filter := Filter{
		Query: request.URL.Query().Get("q"),
	}

	authors, total, err := handler.service.ListAuthors(request.Context(), filter, paginationParams.Limit, paginationParams.Offset())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, authors, pagination.NewMeta(paginationParams.Page, paginationParams.Limit, total))
}

func (handler *Handler) getAuthor(writer http.ResponseWriter, request *http.Request) {
	author, err := handler.service.GetAuthor(request.Context(), requestutil.ID(request, "authorID"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, author)
}

func (handler *Handler) createAuthor(writer http.ResponseWriter, request *http.Request) {
	var input Author
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.service.CreateAuthor(request.Context(), &input); err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Created(writer, input)
}

func (handler *Handler) updateAuthor(writer http.ResponseWriter, request *http.Request) {
	var input Author
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.service.UpdateAuthor(request.Context(), requestutil.ID(request, "authorID"), &input); err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, input)
}

func (handler *Handler) deleteAuthor(writer http.ResponseWriter, request *http.Request) {
	if err := handler.service.DeleteAuthor(request.Context(), requestutil.ID(request, "authorID")); err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.NoContent(writer)
}
