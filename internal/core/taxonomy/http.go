package taxonomy

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/embershelf/embershelf/internal/platform/middleware"
	requestutil "github.com/embershelf/embershelf/internal/platform/request"
	"github.com/embershelf/embershelf/internal/platform/respond"
	"github.com/embershelf/embershelf/internal/platform/sec"
)

// PreferenceSource resolves a member's content-filter preferences. The
// account service implements it; a nil source disables personalization.
type PreferenceSource interface {
	ContentPreferences(context context.Context, memberID string) (hideSensitive bool, mutedTagIDs []string, maxHeatLevel string)
}

// Handler implements the HTTP layer for the taxonomy reference data.
type Handler struct {
	service     *Service
	preferences PreferenceSource
}

// NewHandler constructs a new taxonomy [Handler].
func NewHandler(service *Service, preferences PreferenceSource) *Handler {
	return &Handler{service: service, preferences: preferences}
}

// Routes returns a [chi.Router] configured with the taxonomy endpoints.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	// # Public Catalog
	router.Get("/", handler.catalog)
	router.Get("/tags/{id}", handler.getTag)
	router.Get("/{category}/by-slug/{slug}", handler.getTagBySlug)

	// # Admin Writes
	router.Group(func(adminRoute chi.Router) {
		adminRoute.Use(middleware.RequireRole(sec.RoleAdmin))

		adminRoute.Post("/tags", handler.createTag)
		adminRoute.Patch("/tags/{id}", handler.updateTag)
	})

	return router
}

// catalog lists every category with child tags. Curators and admins see the
// raw moderation view; signed-in members get the catalog shaped by their
// reading preferences (sensitive opt-in, muted tags, heat-level cap).
func (handler *Handler) catalog(writer http.ResponseWriter, request *http.Request) {
	claims := requestutil.Claims(request)
	moderationView := claims != nil && sec.UserRole(claims.Role).AtLeast(sec.RoleCurator)

	includeSensitive := moderationView
	var mutedTagIDs []string
	var maxHeatLevel string
	if claims != nil && !moderationView && handler.preferences != nil {
		var hideSensitive bool
		hideSensitive, mutedTagIDs, maxHeatLevel = handler.preferences.ContentPreferences(request.Context(), claims.UserID)
		includeSensitive = !hideSensitive
	}

	catalog, err := handler.service.Catalog(request.Context(), includeSensitive)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, personalizeCatalog(catalog, mutedTagIDs, maxHeatLevel))
}

func (handler *Handler) getTag(writer http.ResponseWriter, request *http.Request) {
	tag, err := handler.service.GetTag(request.Context(), requestutil.ID(request, "id"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, tag)
}

func (handler *Handler) getTagBySlug(writer http.ResponseWriter, request *http.Request) {
	tag, err := handler.service.GetTagBySlug(request.Context(),
		requestutil.Param(request, "category"),
		requestutil.Param(request, "slug"),
	)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, tag)
}

func (handler *Handler) createTag(writer http.ResponseWriter, request *http.Request) {
	var tag Tag
	if err := requestutil.DecodeJSON(request, &tag); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.service.CreateTag(request.Context(), &tag); err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Created(writer, tag)
}

func (handler *Handler) updateTag(writer http.ResponseWriter, request *http.Request) {
	var tag Tag
	if err := requestutil.DecodeJSON(request, &tag); err != nil {
		respond.Error(writer, request, err)
		return
	}
	tag.ID = requestutil.ID(request, "id")

	if err := handler.service.UpdateTag(request.Context(), &tag); err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, tag)
}
