// Copyright (c) 2026 Embershelf. All rights reserved.
// Author: dev@embershelf.app

package intake

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

// Handler implements the HTTP layer for the intake workflow.
type Handler struct {
	service *Service
}

// NewHandler constructs a new intake [Handler].
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns a [chi.Router] with the intake endpoints. Authors submit
// and see their own intakes; the review queue and decisions are
// curator-gated.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Group(func(authorRoute chi.Router) {
		authorRoute.Use(middleware.RequireRole(sec.RoleAuthor))
		authorRoute.Post("/", handler.submit)
		authorRoute.Get("/", handler.list)
		authorRoute.Get("/{intakeID}", handler.get)
	})

	router.Group(func(curatorRoute chi.Router) {
		curatorRoute.Use(middleware.RequireRole(sec.RoleCurator))
		curatorRoute.Post("/{intakeID}/decision", handler.decide)
	})

	return router
}

func (handler *Handler) submit(writer http.ResponseWriter, request *http.Request) {
	claims, err := requestutil.RequiredClaims(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input SubmitInput
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	record, err := handler.service.Submit(request.Context(), input, claims.UserID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Created(writer, record)
}

// list shows curators the full queue and everyone else their own intakes.
func (handler *Handler) list(writer http.ResponseWriter, request *http.Request) {
	claims, err := requestutil.RequiredClaims(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	filter := Filter{State: State(request.URL.Query().Get("state"))}
	if filter.State != "" && !filter.State.IsValid() {
		respond.Error(writer, request, apperr.ValidationError("state must be pending, approved, or rejected"))
		return
	}
	if !sec.UserRole(claims.Role).AtLeast(sec.RoleCurator) {
		filter.SubmittedBy = claims.UserID
	}

	params := pagination.FromRequest(request)
	records, total, err := handler.service.ListIntakes(request.Context(), filter, params.Limit, params.Offset())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Paginated(writer, records, pagination.NewMeta(params.Page, params.Limit, total))
}

func (handler *Handler) get(writer http.ResponseWriter, request *http.Request) {
	claims, err := requestutil.RequiredClaims(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	record, err := handler.service.GetIntake(request.Context(), requestutil.ID(request, "intakeID"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	// Authors only ever see their own submissions.
	if record.SubmittedBy != claims.UserID && !sec.UserRole(claims.Role).AtLeast(sec.RoleCurator) {
		respond.Error(writer, request, apperr.NotFound("Intake"))
		return
	}
	respond.OK(writer, record)
}

func (handler *Handler) decide(writer http.ResponseWriter, request *http.Request) {
	claims, err := requestutil.RequiredClaims(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input DecideInput
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	record, err := handler.service.Decide(request.Context(), requestutil.ID(request, "intakeID"), input, claims.UserID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, record)
}
