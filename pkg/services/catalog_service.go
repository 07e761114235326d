package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/jinzhu/inflection"
	"go.uber.org/zap"

	"github.com/ekaya-inc/archcatalog/pkg/apperrors"
	"github.com/ekaya-inc/archcatalog/pkg/cache"
	"github.com/ekaya-inc/archcatalog/pkg/models"
	"github.com/ekaya-inc/archcatalog/pkg/repositories"
)

// CatalogService provides CRUD operations for one catalog entity type.
type CatalogService[T any] interface {
	// List returns every entity with its relationship sets.
	List(ctx context.Context) ([]*T, error)

	// Get returns one entity, or nil when it does not exist.
	Get(ctx context.Context, id string) (*T, error)

	// Create validates and stores a new entity and returns it as persisted.
	Create(ctx context.Context, entity *T) (*T, error)

	// Update replaces every field and relationship set of an existing entity.
	// Returns apperrors.ErrNotFound for an unknown id.
	Update(ctx context.Context, id string, entity *T) (*T, error)

	// Delete removes the entity. Unknown ids are not an error.
	Delete(ctx context.Context, id string) error
}

// catalogRepository is the repository surface shared by every entity repository.
type catalogRepository[T any] interface {
	List(ctx context.Context) ([]*T, error)
	GetByID(ctx context.Context, id string) (*T, error)
	Create(ctx context.Context, entity *T) (*T, error)
	Update(ctx context.Context, id string, entity *T) (*T, error)
	Delete(ctx context.Context, id string) error
}

// normalizeFunc validates entity in place and canonicalizes its fields.
// id is empty on create.
type normalizeFunc[T any] func(id string, entity *T) error

type catalogService[T any] struct {
	kind      string
	repo      catalogRepository[T]
	normalize normalizeFunc[T]
	cache     cache.ListCache
	logger    *zap.Logger
}

func newCatalogService[T any](
	kind string,
	repo catalogRepository[T],
	normalize normalizeFunc[T],
	listCache cache.ListCache,
	logger *zap.Logger,
) *catalogService[T] {
	if listCache == nil {
		listCache = cache.NewNoopListCache()
	}
	listCache = cache.Guard(listCache)
	return &catalogService[T]{
		kind:      kind,
		repo:      repo,
		normalize: normalize,
		cache:     listCache,
		logger:    logger.Named(kind + "-service"),
	}
}

// NewApplicationService creates the service for applications.
func NewApplicationService(repo repositories.ApplicationRepository, listCache cache.ListCache, logger *zap.Logger) CatalogService[models.Application] {
	return newCatalogService[models.Application]("application", repo, normalizeApplication, listCache, logger)
}

// NewCapabilityService creates the service for capabilities.
func NewCapabilityService(repo repositories.CapabilityRepository, listCache cache.ListCache, logger *zap.Logger) CatalogService[models.Capability] {
	return newCatalogService[models.Capability]("capability", repo, normalizeCapability, listCache, logger)
}

// NewProcessService creates the service for processes.
func NewProcessService(repo repositories.ProcessRepository, listCache cache.ListCache, logger *zap.Logger) CatalogService[models.Process] {
	return newCatalogService[models.Process]("process", repo, normalizeProcess, listCache, logger)
}

// NewTechnologyService creates the service for technologies.
func NewTechnologyService(repo repositories.TechnologyRepository, listCache cache.ListCache, logger *zap.Logger) CatalogService[models.Technology] {
	return newCatalogService[models.Technology]("technology", repo, normalizeTechnology, listCache, logger)
}

// NewOwnerService creates the service for owners.
func NewOwnerService(repo repositories.OwnerRepository, listCache cache.ListCache, logger *zap.Logger) CatalogService[models.Owner] {
	return newCatalogService[models.Owner]("owner", repo, normalizeOwner, listCache, logger)
}

// NewInterfaceService creates the service for interfaces.
func NewInterfaceService(repo repositories.InterfaceRepository, listCache cache.ListCache, logger *zap.Logger) CatalogService[models.Interface] {
	return newCatalogService[models.Interface]("interface", repo, normalizeInterface, listCache, logger)
}

// NewSkillService creates the service for skills.
func NewSkillService(repo repositories.SkillRepository, listCache cache.ListCache, logger *zap.Logger) CatalogService[models.Skill] {
	return newCatalogService[models.Skill]("skill", repo, normalizeSkill, listCache, logger)
}

func (s *catalogService[T]) cacheKind() string {
	return inflection.Plural(s.kind)
}

func (s *catalogService[T]) List(ctx context.Context) ([]*T, error) {
	var cached []*T
	hit, version, lookupErr := s.cache.Lookup(ctx, s.cacheKind(), &cached)
	if lookupErr != nil {
		s.logger.Warn("List cache lookup failed", zap.Error(lookupErr))
	}
	if hit {
		return cached, nil
	}

	entities, err := s.repo.List(ctx)
	if err != nil {
		s.logger.Error("Failed to list "+s.cacheKind(), zap.Error(err))
		return nil, fmt.Errorf("list %s: %w", s.cacheKind(), err)
	}

	// Without a version from Lookup the entry could outlive a write.
	if lookupErr == nil {
		if storeErr := s.cache.Store(ctx, s.cacheKind(), version, entities); storeErr != nil {
			s.logger.Warn("List cache store failed", zap.Error(storeErr))
		}
	}

	return entities, nil
}

func (s *catalogService[T]) Get(ctx context.Context, id string) (*T, error) {
	entity, err := s.repo.GetByID(ctx, id)
	if err != nil {
		s.logger.Error("Failed to get "+s.kind,
			zap.String("id", id),
			zap.Error(err))
		return nil, fmt.Errorf("get %s: %w", s.kind, err)
	}
	return entity, nil
}

func (s *catalogService[T]) Create(ctx context.Context, entity *T) (*T, error) {
	if entity == nil {
		return nil, fmt.Errorf("%w: %s body is required", apperrors.ErrInvalidInput, s.kind)
	}
	if err := s.normalize("", entity); err != nil {
		s.logger.Debug("Rejected "+s.kind, zap.Error(err))
		return nil, err
	}

	created, err := s.repo.Create(ctx, entity)
	if err != nil {
		s.logWriteFailure("create", "", err)
		return nil, fmt.Errorf("create %s: %w", s.kind, err)
	}

	s.invalidate(ctx)
	s.logger.Info("Created "+s.kind, zap.String("id", entityID(created)))

	return created, nil
}

func (s *catalogService[T]) Update(ctx context.Context, id string, entity *T) (*T, error) {
	if entity == nil {
		return nil, fmt.Errorf("%w: %s body is required", apperrors.ErrInvalidInput, s.kind)
	}
	if err := s.normalize(id, entity); err != nil {
		s.logger.Debug("Rejected "+s.kind, zap.String("id", id), zap.Error(err))
		return nil, err
	}

	updated, err := s.repo.Update(ctx, id, entity)
	if err != nil {
		s.logWriteFailure("update", id, err)
		return nil, fmt.Errorf("update %s: %w", s.kind, err)
	}

	s.invalidate(ctx)
	s.logger.Info("Updated "+s.kind, zap.String("id", id))

	return updated, nil
}

func (s *catalogService[T]) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		s.logWriteFailure("delete", id, err)
		return fmt.Errorf("delete %s: %w", s.kind, err)
	}

	s.invalidate(ctx)
	s.logger.Info("Deleted "+s.kind, zap.String("id", id))

	return nil
}

// invalidate drops cached lists after a committed write. Writes cascade
// across kinds, so every list goes.
func (s *catalogService[T]) invalidate(ctx context.Context) {
	if err := s.cache.Invalidate(ctx); err != nil {
		s.logger.Warn("Failed to invalidate list cache", zap.Error(err))
	}
}

func (s *catalogService[T]) logWriteFailure(op, id string, err error) {
	fields := []zap.Field{zap.String("id", id), zap.Error(err)}
	if isClientError(err) {
		s.logger.Warn("Rejected "+op+" of "+s.kind, fields...)
		return
	}
	s.logger.Error("Failed to "+op+" "+s.kind, fields...)
}

func isClientError(err error) bool {
	return errors.Is(err, apperrors.ErrNotFound) ||
		errors.Is(err, apperrors.ErrConflict) ||
		errors.Is(err, apperrors.ErrInvalidInput)
}

// entityID reads the id of a persisted catalog entity for logging.
func entityID(entity any) string {
	switch e := entity.(type) {
	case *models.Application:
		return e.ID
	case *models.Capability:
		return e.ID
	case *models.Process:
		return e.ID
	case *models.Technology:
		return e.ID
	case *models.Owner:
		return e.ID
	case *models.Interface:
		return e.ID
	case *models.Skill:
		return e.ID
	}
	return ""
}
