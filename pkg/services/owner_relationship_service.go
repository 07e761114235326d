package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/ekaya-inc/archcatalog/pkg/cache"
	"github.com/ekaya-inc/archcatalog/pkg/models"
	"github.com/ekaya-inc/archcatalog/pkg/repositories"
)

// OwnerRelationshipService manages typed owner/application edges.
type OwnerRelationshipService interface {
	// List returns every edge with owner and application names.
	List(ctx context.Context) ([]*models.OwnerRelationship, error)

	// ListByOwner returns the edges of one owner.
	ListByOwner(ctx context.Context, ownerID string) ([]*models.OwnerRelationship, error)

	// ListByApplication returns the edges of one application.
	ListByApplication(ctx context.Context, applicationID string) ([]*models.OwnerRelationship, error)

	// Create adds an edge. A repeated (owner, application, type) returns apperrors.ErrConflict.
	Create(ctx context.Context, rel *models.OwnerRelationship) (*models.OwnerRelationship, error)

	// Delete removes an edge if it exists.
	Delete(ctx context.Context, ownerID, applicationID string, relType models.RelationshipType) error
}

type ownerRelationshipService struct {
	repo   repositories.OwnerRelationshipRepository
	cache  cache.ListCache
	logger *zap.Logger
}

// NewOwnerRelationshipService creates a new OwnerRelationshipService.
func NewOwnerRelationshipService(repo repositories.OwnerRelationshipRepository, listCache cache.ListCache, logger *zap.Logger) OwnerRelationshipService {
	if listCache == nil {
		listCache = cache.NewNoopListCache()
	}
	listCache = cache.Guard(listCache)
	return &ownerRelationshipService{
		repo:   repo,
		cache:  listCache,
		logger: logger.Named("relationship-service"),
	}
}

var _ OwnerRelationshipService = (*ownerRelationshipService)(nil)

func (s *ownerRelationshipService) List(ctx context.Context) ([]*models.OwnerRelationship, error) {
	return s.cachedList(ctx, "relationships", s.repo.List)
}

func (s *ownerRelationshipService) ListByOwner(ctx context.Context, ownerID string) ([]*models.OwnerRelationship, error) {
	return s.cachedList(ctx, "relationships:owner:"+ownerID, func(ctx context.Context) ([]*models.OwnerRelationship, error) {
		return s.repo.ListByOwner(ctx, ownerID)
	})
}

func (s *ownerRelationshipService) ListByApplication(ctx context.Context, applicationID string) ([]*models.OwnerRelationship, error) {
	return s.cachedList(ctx, "relationships:application:"+applicationID, func(ctx context.Context) ([]*models.OwnerRelationship, error) {
		return s.repo.ListByApplication(ctx, applicationID)
	})
}

func (s *ownerRelationshipService) cachedList(
	ctx context.Context,
	key string,
	load func(context.Context) ([]*models.OwnerRelationship, error),
) ([]*models.OwnerRelationship, error) {
	var cached []*models.OwnerRelationship
	hit, version, lookupErr := s.cache.Lookup(ctx, key, &cached)
	if lookupErr != nil {
		s.logger.Warn("List cache lookup failed", zap.String("key", key), zap.Error(lookupErr))
	}
	if hit {
		return cached, nil
	}

	rels, err := load(ctx)
	if err != nil {
		s.logger.Error("Failed to list relationships", zap.String("key", key), zap.Error(err))
		return nil, fmt.Errorf("list relationships: %w", err)
	}

	if lookupErr == nil {
		if err := s.cache.Store(ctx, key, version, rels); err != nil {
			s.logger.Warn("List cache store failed", zap.String("key", key), zap.Error(err))
		}
	}
	return rels, nil
}

func (s *ownerRelationshipService) Create(ctx context.Context, rel *models.OwnerRelationship) (*models.OwnerRelationship, error) {
	if err := normalizeOwnerRelationship(rel); err != nil {
		return nil, err
	}

	created, err := s.repo.Create(ctx, rel)
	if err != nil {
		fields := []zap.Field{
			zap.String("owner_id", rel.OwnerID),
			zap.String("application_id", rel.ApplicationID),
			zap.String("relationship_type", string(rel.Type)),
			zap.Error(err),
		}
		if isClientError(err) {
			s.logger.Warn("Rejected relationship", fields...)
		} else {
			s.logger.Error("Failed to create relationship", fields...)
		}
		return nil, fmt.Errorf("create relationship: %w", err)
	}

	s.invalidate(ctx)
	s.logger.Info("Created relationship",
		zap.String("owner_id", rel.OwnerID),
		zap.String("application_id", rel.ApplicationID),
		zap.String("relationship_type", string(rel.Type)))

	return created, nil
}

func (s *ownerRelationshipService) Delete(ctx context.Context, ownerID, applicationID string, relType models.RelationshipType) error {
	if !relType.IsValid() {
		return invalidf("relationshipType must be %q or %q, got %q",
			models.RelationshipOwner, models.RelationshipDeveloper, string(relType))
	}

	if err := s.repo.Delete(ctx, ownerID, applicationID, relType); err != nil {
		s.logger.Error("Failed to delete relationship",
			zap.String("owner_id", ownerID),
			zap.String("application_id", applicationID),
			zap.String("relationship_type", string(relType)),
			zap.Error(err))
		return fmt.Errorf("delete relationship: %w", err)
	}

	s.invalidate(ctx)
	return nil
}

func (s *ownerRelationshipService) invalidate(ctx context.Context) {
	if err := s.cache.Invalidate(ctx); err != nil {
		s.logger.Warn("Failed to invalidate list cache", zap.Error(err))
	}
}
