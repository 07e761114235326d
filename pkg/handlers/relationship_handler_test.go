package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ekaya-inc/archcatalog/pkg/apperrors"
	"github.com/ekaya-inc/archcatalog/pkg/models"
)

func newRelationshipMux(svc *mockRelationshipService) *http.ServeMux {
	mux := http.NewServeMux()
	NewRelationshipHandler(svc, zap.NewNop()).RegisterRoutes(mux)
	return mux
}

func TestRelationshipHandler_List(t *testing.T) {
	svc := &mockRelationshipService{rels: []*models.OwnerRelationship{
		{OwnerID: "o1", ApplicationID: "a1", Type: models.RelationshipOwner, OwnerName: "Ana"},
	}}

	rec := serve(newRelationshipMux(svc), http.MethodGet, "/api/relationships", "")

	require.Equal(t, http.StatusOK, rec.Code)
	var got []models.OwnerRelationship
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
	require.Len(t, got, 1)
	assert.Equal(t, "Ana", got[0].OwnerName)
}

func TestRelationshipHandler_List_EmptyIsArray(t *testing.T) {
	rec := serve(newRelationshipMux(&mockRelationshipService{}), http.MethodGet, "/api/relationships", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestRelationshipHandler_ListByOwner(t *testing.T) {
	svc := &mockRelationshipService{}

	rec := serve(newRelationshipMux(svc), http.MethodGet, "/api/relationships/owner/o1", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "o1", svc.ownerID)
}

func TestRelationshipHandler_ListByApplication(t *testing.T) {
	svc := &mockRelationshipService{}

	rec := serve(newRelationshipMux(svc), http.MethodGet, "/api/relationships/application/a1", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "a1", svc.appID)
}

func TestRelationshipHandler_Create(t *testing.T) {
	svc := &mockRelationshipService{}

	rec := serve(newRelationshipMux(svc), http.MethodPost, "/api/relationships",
		`{"ownerId":"o1","applicationId":"a1","relationshipType":"developer"}`)

	require.Equal(t, http.StatusCreated, rec.Code)
	require.NotNil(t, svc.created)
	assert.Equal(t, "o1", svc.created.OwnerID)
	assert.Equal(t, "a1", svc.created.ApplicationID)
	assert.Equal(t, models.RelationshipDeveloper, svc.created.Type)
}

func TestRelationshipHandler_Create_Duplicate(t *testing.T) {
	svc := &mockRelationshipService{err: fmt.Errorf("%w: relationship already exists", apperrors.ErrConflict)}

	rec := serve(newRelationshipMux(svc), http.MethodPost, "/api/relationships",
		`{"ownerId":"o1","applicationId":"a1","relationshipType":"owner"}`)

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "conflict", decodeError(t, rec))
}

func TestRelationshipHandler_Create_InvalidBody(t *testing.T) {
	svc := &mockRelationshipService{}

	rec := serve(newRelationshipMux(svc), http.MethodPost, "/api/relationships", `[`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Nil(t, svc.created)
}

func TestRelationshipHandler_Delete(t *testing.T) {
	svc := &mockRelationshipService{}

	rec := serve(newRelationshipMux(svc), http.MethodDelete, "/api/relationships/o1/a1/owner", "")

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "o1", svc.ownerID)
	assert.Equal(t, "a1", svc.appID)
	assert.Equal(t, models.RelationshipOwner, svc.deletedType)
}

func TestRelationshipHandler_Delete_InvalidType(t *testing.T) {
	svc := &mockRelationshipService{err: fmt.Errorf("%w: invalid relationshipType", apperrors.ErrInvalidInput)}

	rec := serve(newRelationshipMux(svc), http.MethodDelete, "/api/relationships/o1/a1/sponsor", "")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "validation_error", decodeError(t, rec))
}
