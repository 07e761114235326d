package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/ekaya-inc/archcatalog/pkg/apperrors"
	"github.com/ekaya-inc/archcatalog/pkg/models"
)

// OwnerRelationshipRepository provides data access for typed owner/application edges.
// Edges are created and deleted individually, never synchronized as a set.
type OwnerRelationshipRepository interface {
	// List returns every edge ordered by application name, then owner name.
	List(ctx context.Context) ([]*models.OwnerRelationship, error)

	// ListByOwner returns the edges of one owner ordered by application name.
	ListByOwner(ctx context.Context, ownerID string) ([]*models.OwnerRelationship, error)

	// ListByApplication returns the edges of one application ordered by owner name.
	ListByApplication(ctx context.Context, applicationID string) ([]*models.OwnerRelationship, error)

	// Create inserts the edge. An identical existing edge yields apperrors.ErrConflict.
	Create(ctx context.Context, rel *models.OwnerRelationship) (*models.OwnerRelationship, error)

	// Delete removes the edge if present.
	Delete(ctx context.Context, ownerID, applicationID string, relType models.RelationshipType) error
}

type ownerRelationshipRepository struct{}

// NewOwnerRelationshipRepository creates a new OwnerRelationshipRepository.
func NewOwnerRelationshipRepository() OwnerRelationshipRepository {
	return &ownerRelationshipRepository{}
}

var _ OwnerRelationshipRepository = (*ownerRelationshipRepository)(nil)

const ownerRelationshipSelect = `
	SELECT oa.owner_id, oa.application_id, oa.relationship_type, oa.created_at,
	       o.name, o.matricula, a.name
	FROM owner_applications oa
	JOIN owners o ON o.id = oa.owner_id
	JOIN applications a ON a.id = oa.application_id`

func (r *ownerRelationshipRepository) List(ctx context.Context) ([]*models.OwnerRelationship, error) {
	return r.query(ctx, ownerRelationshipSelect+` ORDER BY a.name, o.name, oa.relationship_type`)
}

func (r *ownerRelationshipRepository) ListByOwner(ctx context.Context, ownerID string) ([]*models.OwnerRelationship, error) {
	return r.query(ctx, ownerRelationshipSelect+`
		WHERE oa.owner_id = $1
		ORDER BY a.name, oa.relationship_type`, ownerID)
}

func (r *ownerRelationshipRepository) ListByApplication(ctx context.Context, applicationID string) ([]*models.OwnerRelationship, error) {
	return r.query(ctx, ownerRelationshipSelect+`
		WHERE oa.application_id = $1
		ORDER BY o.name, oa.relationship_type`, applicationID)
}

func (r *ownerRelationshipRepository) Create(ctx context.Context, rel *models.OwnerRelationship) (*models.OwnerRelationship, error) {
	var created *models.OwnerRelationship

	err := inTx(ctx, func(tx pgx.Tx) error {
		var exists bool
		err := tx.QueryRow(ctx, `
			SELECT EXISTS (
				SELECT 1 FROM owner_applications
				WHERE owner_id = $1 AND application_id = $2 AND relationship_type = $3
			)`, rel.OwnerID, rel.ApplicationID, string(rel.Type)).Scan(&exists)
		if err != nil {
			return fmt.Errorf("failed to check owner relationship: %w", err)
		}
		if exists {
			return fmt.Errorf("%w: relationship already exists", apperrors.ErrConflict)
		}

		_, err = tx.Exec(ctx, `
			INSERT INTO owner_applications (owner_id, application_id, relationship_type, created_at)
			VALUES ($1, $2, $3, $4)`,
			rel.OwnerID, rel.ApplicationID, string(rel.Type), time.Now())
		if err != nil {
			// A concurrent insert of the same edge lands here.
			if isUniqueViolation(err) {
				return fmt.Errorf("%w: relationship already exists", apperrors.ErrConflict)
			}
			if isForeignKeyViolation(err) {
				return fmt.Errorf("%w: unknown owner or application", apperrors.ErrInvalidInput)
			}
			return fmt.Errorf("failed to create owner relationship: %w", err)
		}

		created, err = scanOwnerRelationship(tx.QueryRow(ctx, ownerRelationshipSelect+`
			WHERE oa.owner_id = $1 AND oa.application_id = $2 AND oa.relationship_type = $3`,
			rel.OwnerID, rel.ApplicationID, string(rel.Type)))
		return err
	})
	if err != nil {
		return nil, err
	}

	return created, nil
}

func (r *ownerRelationshipRepository) Delete(ctx context.Context, ownerID, applicationID string, relType models.RelationshipType) error {
	conn, err := scopedConn(ctx)
	if err != nil {
		return err
	}

	_, err = conn.Exec(ctx, `
		DELETE FROM owner_applications
		WHERE owner_id = $1 AND application_id = $2 AND relationship_type = $3`,
		ownerID, applicationID, string(relType))
	if err != nil {
		return fmt.Errorf("failed to delete owner relationship: %w", err)
	}
	return nil
}

func (r *ownerRelationshipRepository) query(ctx context.Context, query string, args ...any) ([]*models.OwnerRelationship, error) {
	conn, err := scopedConn(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := conn.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query owner relationships: %w", err)
	}
	defer rows.Close()

	rels := make([]*models.OwnerRelationship, 0)
	for rows.Next() {
		rel, err := scanOwnerRelationship(rows)
		if err != nil {
			return nil, err
		}
		rels = append(rels, rel)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating owner relationships: %w", err)
	}

	return rels, nil
}

func scanOwnerRelationship(row pgx.Row) (*models.OwnerRelationship, error) {
	var rel models.OwnerRelationship
	var relType string

	err := row.Scan(
		&rel.OwnerID,
		&rel.ApplicationID,
		&relType,
		&rel.CreatedAt,
		&rel.OwnerName,
		&rel.OwnerMatricula,
		&rel.ApplicationName,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to scan owner relationship: %w", err)
	}

	rel.Type = models.RelationshipType(relType)
	return &rel, nil
}
