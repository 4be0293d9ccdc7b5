// Copyright (c) 2026 Embershelf. All rights reserved.
// Author: dev@embershelf.app

package evidence

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/embershelf/embershelf/internal/platform/middleware"
	requestutil "github.com/embershelf/embershelf/internal/platform/request"
	"github.com/embershelf/embershelf/internal/platform/respond"
	"github.com/embershelf/embershelf/internal/platform/sec"
)

// Handler implements the HTTP layer for the evidence ledger. It expects to
// be mounted under a book route carrying a {bookID} parameter.
type Handler struct {
	service *Service
}

// NewHandler constructs a new evidence [Handler].
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns a [chi.Router] with the evidence endpoints. All writes are
// curator-gated; the listing is visible to authors reviewing their books.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Group(func(authorRoute chi.Router) {
		authorRoute.Use(middleware.RequireRole(sec.RoleAuthor))
		authorRoute.Get("/", handler.list)
	})

	router.Group(func(curatorRoute chi.Router) {
		curatorRoute.Use(middleware.RequireRole(sec.RoleCurator))
		curatorRoute.Post("/", handler.create)
		curatorRoute.Delete("/{evidenceID}", handler.remove)
	})

	return router
}

func (handler *Handler) list(writer http.ResponseWriter, request *http.Request) {
	records, err := handler.service.ListForBook(request.Context(), requestutil.ID(request, "bookID"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, records)
}

func (handler *Handler) create(writer http.ResponseWriter, request *http.Request) {
	claims, err := requestutil.RequiredClaims(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var record Evidence
	if err := requestutil.DecodeJSON(request, &record); err != nil {
		respond.Error(writer, request, err)
		return
	}
	record.BookID = requestutil.ID(request, "bookID")

	if err := handler.service.Create(request.Context(), &record, claims.UserID); err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Created(writer, record)
}

func (handler *Handler) remove(writer http.ResponseWriter, request *http.Request) {
	claims, err := requestutil.RequiredClaims(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.service.Delete(request.Context(), requestutil.ID(request, "evidenceID"), claims.UserID); err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.NoContent(writer)
}
