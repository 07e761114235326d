package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/ekaya-inc/archcatalog/pkg/models"
	"github.com/ekaya-inc/archcatalog/pkg/services"
)

// RelationshipHandler serves typed owner/application edges.
type RelationshipHandler struct {
	service services.OwnerRelationshipService
	logger  *zap.Logger
}

// NewRelationshipHandler creates a new RelationshipHandler.
func NewRelationshipHandler(service services.OwnerRelationshipService, logger *zap.Logger) *RelationshipHandler {
	return &RelationshipHandler{
		service: service,
		logger:  logger.Named("relationship-handler"),
	}
}

// RegisterRoutes registers the relationship routes on the given mux.
func (h *RelationshipHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/relationships", h.List)
	mux.HandleFunc("GET /api/relationships/owner/{ownerId}", h.ListByOwner)
	mux.HandleFunc("GET /api/relationships/application/{applicationId}", h.ListByApplication)
	mux.HandleFunc("POST /api/relationships", h.Create)
	mux.HandleFunc("DELETE /api/relationships/{ownerId}/{applicationId}/{relationshipType}", h.Delete)
}

// List handles GET /api/relationships
func (h *RelationshipHandler) List(w http.ResponseWriter, r *http.Request) {
	rels, err := h.service.List(r.Context())
	h.writeList(w, rels, err)
}

// ListByOwner handles GET /api/relationships/owner/{ownerId}
func (h *RelationshipHandler) ListByOwner(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := ParsePathID(w, r, "ownerId", h.logger)
	if !ok {
		return
	}

	rels, err := h.service.ListByOwner(r.Context(), ownerID)
	h.writeList(w, rels, err)
}

// ListByApplication handles GET /api/relationships/application/{applicationId}
func (h *RelationshipHandler) ListByApplication(w http.ResponseWriter, r *http.Request) {
	applicationID, ok := ParsePathID(w, r, "applicationId", h.logger)
	if !ok {
		return
	}

	rels, err := h.service.ListByApplication(r.Context(), applicationID)
	h.writeList(w, rels, err)
}

func (h *RelationshipHandler) writeList(w http.ResponseWriter, rels []*models.OwnerRelationship, err error) {
	if err != nil {
		writeServiceError(w, err, "list_relationships_failed", h.logger)
		return
	}

	if rels == nil {
		rels = []*models.OwnerRelationship{}
	}
	if err := WriteJSON(w, http.StatusOK, rels); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// Create handles POST /api/relationships
// Body: {"ownerId": "...", "applicationId": "...", "relationshipType": "owner"|"developer"}
func (h *RelationshipHandler) Create(w http.ResponseWriter, r *http.Request) {
	var rel models.OwnerRelationship
	if !DecodeBody(w, r, &rel, h.logger) {
		return
	}

	created, err := h.service.Create(r.Context(), &rel)
	if err != nil {
		writeServiceError(w, err, "create_relationship_failed", h.logger)
		return
	}

	if err := WriteJSON(w, http.StatusCreated, created); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// Delete handles DELETE /api/relationships/{ownerId}/{applicationId}/{relationshipType}
func (h *RelationshipHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := ParsePathID(w, r, "ownerId", h.logger)
	if !ok {
		return
	}
	applicationID, ok := ParsePathID(w, r, "applicationId", h.logger)
	if !ok {
		return
	}
	relType := models.RelationshipType(r.PathValue("relationshipType"))

	if err := h.service.Delete(r.Context(), ownerID, applicationID, relType); err != nil {
		writeServiceError(w, err, "delete_relationship_failed", h.logger)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
