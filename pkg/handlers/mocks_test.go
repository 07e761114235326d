package handlers

import (
	"context"

	"github.com/ekaya-inc/archcatalog/pkg/models"
)

// ============================================================================
// Mock Implementations for Handler Tests
// ============================================================================

type mockCapabilityService struct {
	items     []*models.Capability
	item      *models.Capability
	err       error
	createdIn *models.Capability
	updatedID string
	deletedID string
}

func (m *mockCapabilityService) List(ctx context.Context) ([]*models.Capability, error) {
	return m.items, m.err
}

func (m *mockCapabilityService) Get(ctx context.Context, id string) (*models.Capability, error) {
	return m.item, m.err
}

func (m *mockCapabilityService) Create(ctx context.Context, c *models.Capability) (*models.Capability, error) {
	m.createdIn = c
	if m.err != nil {
		return nil, m.err
	}
	out := *c
	out.ID = "cap-new"
	return &out, nil
}

func (m *mockCapabilityService) Update(ctx context.Context, id string, c *models.Capability) (*models.Capability, error) {
	m.updatedID = id
	if m.err != nil {
		return nil, m.err
	}
	out := *c
	out.ID = id
	return &out, nil
}

func (m *mockCapabilityService) Delete(ctx context.Context, id string) error {
	m.deletedID = id
	return m.err
}

type mockRelationshipService struct {
	rels        []*models.OwnerRelationship
	err         error
	ownerID     string
	appID       string
	deletedType models.RelationshipType
	created     *models.OwnerRelationship
}

func (m *mockRelationshipService) List(ctx context.Context) ([]*models.OwnerRelationship, error) {
	return m.rels, m.err
}

func (m *mockRelationshipService) ListByOwner(ctx context.Context, ownerID string) ([]*models.OwnerRelationship, error) {
	m.ownerID = ownerID
	return m.rels, m.err
}

func (m *mockRelationshipService) ListByApplication(ctx context.Context, applicationID string) ([]*models.OwnerRelationship, error) {
	m.appID = applicationID
	return m.rels, m.err
}

func (m *mockRelationshipService) Create(ctx context.Context, rel *models.OwnerRelationship) (*models.OwnerRelationship, error) {
	m.created = rel
	if m.err != nil {
		return nil, m.err
	}
	return rel, nil
}

func (m *mockRelationshipService) Delete(ctx context.Context, ownerID, applicationID string, relType models.RelationshipType) error {
	m.ownerID = ownerID
	m.appID = applicationID
	m.deletedType = relType
	return m.err
}

type mockPinger struct {
	err error
}

func (m *mockPinger) Ping(ctx context.Context) error {
	return m.err
}
