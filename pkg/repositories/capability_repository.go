package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/ekaya-inc/archcatalog/pkg/apperrors"
	"github.com/ekaya-inc/archcatalog/pkg/models"
)

// CapabilityRepository provides data access for business capabilities.
type CapabilityRepository interface {
	List(ctx context.Context) ([]*models.Capability, error)
	GetByID(ctx context.Context, id string) (*models.Capability, error)
	// Create and Update reject a parent that does not exist or that would close a cycle.
	Create(ctx context.Context, capability *models.Capability) (*models.Capability, error)
	Update(ctx context.Context, id string, capability *models.Capability) (*models.Capability, error)
	Delete(ctx context.Context, id string) error
}

type capabilityRepository struct{}

// NewCapabilityRepository creates a new CapabilityRepository.
func NewCapabilityRepository() CapabilityRepository {
	return &capabilityRepository{}
}

var _ CapabilityRepository = (*capabilityRepository)(nil)

const capabilityColumns = `id, name, description, criticality, coverage_score, parent_id, created_at, updated_at`

func (r *capabilityRepository) List(ctx context.Context) ([]*models.Capability, error) {
	conn, err := scopedConn(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := conn.Query(ctx, `SELECT `+capabilityColumns+` FROM capabilities ORDER BY name, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query capabilities: %w", err)
	}
	defer rows.Close()

	capabilities := make([]*models.Capability, 0)
	for rows.Next() {
		c, err := scanCapability(rows)
		if err != nil {
			return nil, err
		}
		capabilities = append(capabilities, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating capabilities: %w", err)
	}

	return capabilities, nil
}

func (r *capabilityRepository) GetByID(ctx context.Context, id string) (*models.Capability, error) {
	conn, err := scopedConn(ctx)
	if err != nil {
		return nil, err
	}

	c, err := scanCapability(conn.QueryRow(ctx, `SELECT `+capabilityColumns+` FROM capabilities WHERE id = $1`, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return c, nil
}

func (r *capabilityRepository) Create(ctx context.Context, capability *models.Capability) (*models.Capability, error) {
	id := uuid.NewString()
	now := time.Now()

	err := inTx(ctx, func(tx pgx.Tx) error {
		if err := checkCapabilityParent(ctx, tx, id, capability.ParentID); err != nil {
			return err
		}

		query := `
			INSERT INTO capabilities (
				id, name, description, criticality, coverage_score, parent_id,
				created_at, updated_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

		if _, err := tx.Exec(ctx, query,
			id,
			capability.Name,
			nullString(capability.Description),
			nullString(string(capability.Criticality)),
			capability.CoverageScore,
			capability.ParentID,
			now,
			now,
		); err != nil {
			return fmt.Errorf("failed to create capability: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return r.GetByID(ctx, id)
}

func (r *capabilityRepository) Update(ctx context.Context, id string, capability *models.Capability) (*models.Capability, error) {
	err := inTx(ctx, func(tx pgx.Tx) error {
		if err := checkCapabilityParent(ctx, tx, id, capability.ParentID); err != nil {
			return err
		}

		query := `
			UPDATE capabilities
			SET name = $2, description = $3, criticality = $4, coverage_score = $5,
			    parent_id = $6, updated_at = $7
			WHERE id = $1`

		result, err := tx.Exec(ctx, query,
			id,
			capability.Name,
			nullString(capability.Description),
			nullString(string(capability.Criticality)),
			capability.CoverageScore,
			capability.ParentID,
			time.Now(),
		)
		if err != nil {
			return fmt.Errorf("failed to update capability: %w", err)
		}
		if result.RowsAffected() == 0 {
			return apperrors.ErrNotFound
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return r.GetByID(ctx, id)
}

func (r *capabilityRepository) Delete(ctx context.Context, id string) error {
	conn, err := scopedConn(ctx)
	if err != nil {
		return err
	}

	if _, err := conn.Exec(ctx, `DELETE FROM capabilities WHERE id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete capability: %w", err)
	}
	return nil
}

// checkCapabilityParent walks the ancestors of parentID and fails if the
// parent is unknown or if id is among them.
func checkCapabilityParent(ctx context.Context, q querier, id string, parentID *string) error {
	if parentID == nil {
		return nil
	}
	if *parentID == id {
		return fmt.Errorf("%w: capability cannot be its own parent", apperrors.ErrInvalidInput)
	}

	// UNION (not UNION ALL) terminates on an already-cyclic chain.
	query := `
		WITH RECURSIVE ancestors (id, parent_id) AS (
			SELECT id, parent_id FROM capabilities WHERE id = $1
			UNION
			SELECT c.id, c.parent_id
			FROM capabilities c
			JOIN ancestors a ON c.id = a.parent_id
		)
		SELECT id FROM ancestors`

	rows, err := q.Query(ctx, query, *parentID)
	if err != nil {
		return fmt.Errorf("failed to walk capability ancestors: %w", err)
	}
	defer rows.Close()

	found := false
	for rows.Next() {
		var ancestor string
		if err := rows.Scan(&ancestor); err != nil {
			return fmt.Errorf("failed to scan capability ancestor: %w", err)
		}
		found = true
		if ancestor == id {
			return fmt.Errorf("%w: parent %s would create a capability cycle", apperrors.ErrInvalidInput, *parentID)
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("error iterating capability ancestors: %w", err)
	}

	if !found {
		return fmt.Errorf("%w: parent capability %s not found", apperrors.ErrInvalidInput, *parentID)
	}
	return nil
}

func scanCapability(row pgx.Row) (*models.Capability, error) {
	var c models.Capability
	var description, criticality *string

	err := row.Scan(
		&c.ID,
		&c.Name,
		&description,
		&criticality,
		&c.CoverageScore,
		&c.ParentID,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan capability: %w", err)
	}

	c.Description = derefString(description)
	c.Criticality = models.Criticality(derefString(criticality))

	return &c, nil
}
