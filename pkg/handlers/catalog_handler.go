package handlers

import (
	"net/http"

	"github.com/jinzhu/inflection"
	"go.uber.org/zap"

	"github.com/ekaya-inc/archcatalog/pkg/services"
)

// CatalogHandler serves the REST collection of one catalog entity type:
//
//	GET    /api/<kinds>
//	GET    /api/<kinds>/{id}
//	POST   /api/<kinds>
//	PUT    /api/<kinds>/{id}
//	DELETE /api/<kinds>/{id}
type CatalogHandler[T any] struct {
	kind    string
	service services.CatalogService[T]
	logger  *zap.Logger
}

// NewCatalogHandler creates a handler for the entity named kind (singular, e.g. "capability").
func NewCatalogHandler[T any](kind string, service services.CatalogService[T], logger *zap.Logger) *CatalogHandler[T] {
	return &CatalogHandler[T]{
		kind:    kind,
		service: service,
		logger:  logger.Named(kind + "-handler"),
	}
}

// Collection returns the plural path segment of the entity, e.g. "capabilities".
func (h *CatalogHandler[T]) Collection() string {
	return inflection.Plural(h.kind)
}

// RegisterRoutes registers the collection routes on the given mux.
func (h *CatalogHandler[T]) RegisterRoutes(mux *http.ServeMux) {
	base := "/api/" + h.Collection()

	mux.HandleFunc("GET "+base, h.List)
	mux.HandleFunc("GET "+base+"/{id}", h.Get)
	mux.HandleFunc("POST "+base, h.Create)
	mux.HandleFunc("PUT "+base+"/{id}", h.Update)
	mux.HandleFunc("DELETE "+base+"/{id}", h.Delete)
}

// List handles GET /api/<kinds>
func (h *CatalogHandler[T]) List(w http.ResponseWriter, r *http.Request) {
	entities, err := h.service.List(r.Context())
	if err != nil {
		writeServiceError(w, err, "list_"+h.Collection()+"_failed", h.logger)
		return
	}

	if entities == nil {
		entities = []*T{}
	}
	if err := WriteJSON(w, http.StatusOK, entities); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// Get handles GET /api/<kinds>/{id}
func (h *CatalogHandler[T]) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := ParsePathID(w, r, "id", h.logger)
	if !ok {
		return
	}

	entity, err := h.service.Get(r.Context(), id)
	if err != nil {
		writeServiceError(w, err, "get_"+h.kind+"_failed", h.logger)
		return
	}
	if entity == nil {
		if err := ErrorResponse(w, http.StatusNotFound, "not_found", h.kind+" not found"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	if err := WriteJSON(w, http.StatusOK, entity); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// Create handles POST /api/<kinds>
func (h *CatalogHandler[T]) Create(w http.ResponseWriter, r *http.Request) {
	entity := new(T)
	if !DecodeBody(w, r, entity, h.logger) {
		return
	}

	created, err := h.service.Create(r.Context(), entity)
	if err != nil {
		writeServiceError(w, err, "create_"+h.kind+"_failed", h.logger)
		return
	}

	if err := WriteJSON(w, http.StatusCreated, created); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// Update handles PUT /api/<kinds>/{id}
func (h *CatalogHandler[T]) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := ParsePathID(w, r, "id", h.logger)
	if !ok {
		return
	}

	entity := new(T)
	if !DecodeBody(w, r, entity, h.logger) {
		return
	}

	updated, err := h.service.Update(r.Context(), id, entity)
	if err != nil {
		writeServiceError(w, err, "update_"+h.kind+"_failed", h.logger)
		return
	}

	if err := WriteJSON(w, http.StatusOK, updated); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// Delete handles DELETE /api/<kinds>/{id}
func (h *CatalogHandler[T]) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := ParsePathID(w, r, "id", h.logger)
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		writeServiceError(w, err, "delete_"+h.kind+"_failed", h.logger)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
