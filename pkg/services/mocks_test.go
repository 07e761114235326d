package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/ekaya-inc/archcatalog/pkg/apperrors"
	"github.com/ekaya-inc/archcatalog/pkg/models"
)

// ============================================================================
// Mock Implementations for Service Tests
// ============================================================================

type mockApplicationRepo struct {
	apps      map[string]*models.Application
	nextID    int
	listCalls int
	created   *models.Application
	updated   *models.Application
	createErr error
	updateErr error
	deleteErr error
	listErr   error
	getErr    error
}

func newMockApplicationRepo() *mockApplicationRepo {
	return &mockApplicationRepo{apps: make(map[string]*models.Application)}
}

func (m *mockApplicationRepo) List(ctx context.Context) ([]*models.Application, error) {
	m.listCalls++
	if m.listErr != nil {
		return nil, m.listErr
	}
	result := make([]*models.Application, 0, len(m.apps))
	for _, app := range m.apps {
		result = append(result, app)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

func (m *mockApplicationRepo) GetByID(ctx context.Context, id string) (*models.Application, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	return m.apps[id], nil
}

func (m *mockApplicationRepo) Create(ctx context.Context, app *models.Application) (*models.Application, error) {
	m.created = app
	if m.createErr != nil {
		return nil, m.createErr
	}
	m.nextID++
	stored := *app
	stored.ID = fmt.Sprintf("app-%d", m.nextID)
	m.apps[stored.ID] = &stored
	return &stored, nil
}

func (m *mockApplicationRepo) Update(ctx context.Context, id string, app *models.Application) (*models.Application, error) {
	m.updated = app
	if m.updateErr != nil {
		return nil, m.updateErr
	}
	if _, ok := m.apps[id]; !ok {
		return nil, apperrors.ErrNotFound
	}
	stored := *app
	stored.ID = id
	m.apps[id] = &stored
	return &stored, nil
}

func (m *mockApplicationRepo) Delete(ctx context.Context, id string) error {
	if m.deleteErr != nil {
		return m.deleteErr
	}
	delete(m.apps, id)
	return nil
}

type mockRelationshipRepo struct {
	rels      []*models.OwnerRelationship
	listCalls int
	createErr error
	deleteErr error
	deleted   []string
}

func (m *mockRelationshipRepo) List(ctx context.Context) ([]*models.OwnerRelationship, error) {
	m.listCalls++
	return m.rels, nil
}

func (m *mockRelationshipRepo) ListByOwner(ctx context.Context, ownerID string) ([]*models.OwnerRelationship, error) {
	m.listCalls++
	result := make([]*models.OwnerRelationship, 0)
	for _, rel := range m.rels {
		if rel.OwnerID == ownerID {
			result = append(result, rel)
		}
	}
	return result, nil
}

func (m *mockRelationshipRepo) ListByApplication(ctx context.Context, applicationID string) ([]*models.OwnerRelationship, error) {
	m.listCalls++
	result := make([]*models.OwnerRelationship, 0)
	for _, rel := range m.rels {
		if rel.ApplicationID == applicationID {
			result = append(result, rel)
		}
	}
	return result, nil
}

func (m *mockRelationshipRepo) Create(ctx context.Context, rel *models.OwnerRelationship) (*models.OwnerRelationship, error) {
	if m.createErr != nil {
		return nil, m.createErr
	}
	for _, existing := range m.rels {
		if existing.OwnerID == rel.OwnerID && existing.ApplicationID == rel.ApplicationID && existing.Type == rel.Type {
			return nil, fmt.Errorf("%w: relationship already exists", apperrors.ErrConflict)
		}
	}
	stored := *rel
	m.rels = append(m.rels, &stored)
	return &stored, nil
}

func (m *mockRelationshipRepo) Delete(ctx context.Context, ownerID, applicationID string, relType models.RelationshipType) error {
	if m.deleteErr != nil {
		return m.deleteErr
	}
	m.deleted = append(m.deleted, ownerID+"/"+applicationID+"/"+string(relType))
	return nil
}

// memoryListCache is an in-process ListCache with the same version semantics as Redis.
type memoryListCache struct {
	version       int64
	entries       map[string][]byte
	lookupErr     error
	invalidateErr error
	invalidates   int
}

func newMemoryListCache() *memoryListCache {
	return &memoryListCache{entries: make(map[string][]byte)}
}

func (c *memoryListCache) key(kind string, version int64) string {
	return fmt.Sprintf("%s:%d", kind, version)
}

func (c *memoryListCache) Lookup(ctx context.Context, kind string, dest any) (bool, int64, error) {
	if c.lookupErr != nil {
		return false, 0, c.lookupErr
	}
	data, ok := c.entries[c.key(kind, c.version)]
	if !ok {
		return false, c.version, nil
	}
	return true, c.version, json.Unmarshal(data, dest)
}

func (c *memoryListCache) Store(ctx context.Context, kind string, version int64, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.entries[c.key(kind, version)] = data
	return nil
}

func (c *memoryListCache) Invalidate(ctx context.Context) error {
	c.invalidates++
	if c.invalidateErr != nil {
		return c.invalidateErr
	}
	c.version++
	return nil
}
