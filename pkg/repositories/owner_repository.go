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

// OwnerRepository provides data access for owners.
// A duplicate matricula is reported as apperrors.ErrConflict.
type OwnerRepository interface {
	List(ctx context.Context) ([]*models.Owner, error)
	GetByID(ctx context.Context, id string) (*models.Owner, error)
	Create(ctx context.Context, owner *models.Owner) (*models.Owner, error)
	Update(ctx context.Context, id string, owner *models.Owner) (*models.Owner, error)
	Delete(ctx context.Context, id string) error
}

type ownerRepository struct{}

// NewOwnerRepository creates a new OwnerRepository.
func NewOwnerRepository() OwnerRepository {
	return &ownerRepository{}
}

var _ OwnerRepository = (*ownerRepository)(nil)

const ownerColumns = `id, matricula, name, area, created_at, updated_at`

func (r *ownerRepository) List(ctx context.Context) ([]*models.Owner, error) {
	conn, err := scopedConn(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := conn.Query(ctx, `SELECT `+ownerColumns+` FROM owners ORDER BY name, matricula`)
	if err != nil {
		return nil, fmt.Errorf("failed to query owners: %w", err)
	}
	defer rows.Close()

	owners := make([]*models.Owner, 0)
	for rows.Next() {
		o, err := scanOwner(rows)
		if err != nil {
			return nil, err
		}
		owners = append(owners, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating owners: %w", err)
	}

	return owners, nil
}

func (r *ownerRepository) GetByID(ctx context.Context, id string) (*models.Owner, error) {
	conn, err := scopedConn(ctx)
	if err != nil {
		return nil, err
	}

	o, err := scanOwner(conn.QueryRow(ctx, `SELECT `+ownerColumns+` FROM owners WHERE id = $1`, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return o, nil
}

func (r *ownerRepository) Create(ctx context.Context, owner *models.Owner) (*models.Owner, error) {
	conn, err := scopedConn(ctx)
	if err != nil {
		return nil, err
	}

	id := uuid.NewString()
	now := time.Now()

	query := `
		INSERT INTO owners (id, matricula, name, area, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)`

	if _, err := conn.Exec(ctx, query,
		id,
		owner.Matricula,
		owner.Name,
		nullString(owner.Area),
		now,
		now,
	); err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("%w: matricula %s already registered", apperrors.ErrConflict, owner.Matricula)
		}
		return nil, fmt.Errorf("failed to create owner: %w", err)
	}

	return r.GetByID(ctx, id)
}

func (r *ownerRepository) Update(ctx context.Context, id string, owner *models.Owner) (*models.Owner, error) {
	conn, err := scopedConn(ctx)
	if err != nil {
		return nil, err
	}

	query := `
		UPDATE owners
		SET matricula = $2, name = $3, area = $4, updated_at = $5
		WHERE id = $1`

	result, err := conn.Exec(ctx, query,
		id,
		owner.Matricula,
		owner.Name,
		nullString(owner.Area),
		time.Now(),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("%w: matricula %s already registered", apperrors.ErrConflict, owner.Matricula)
		}
		return nil, fmt.Errorf("failed to update owner: %w", err)
	}
	if result.RowsAffected() == 0 {
		return nil, apperrors.ErrNotFound
	}

	return r.GetByID(ctx, id)
}

func (r *ownerRepository) Delete(ctx context.Context, id string) error {
	conn, err := scopedConn(ctx)
	if err != nil {
		return err
	}

	if _, err := conn.Exec(ctx, `DELETE FROM owners WHERE id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete owner: %w", err)
	}
	return nil
}

func scanOwner(row pgx.Row) (*models.Owner, error) {
	var o models.Owner
	var area *string

	err := row.Scan(&o.ID, &o.Matricula, &o.Name, &area, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan owner: %w", err)
	}

	o.Area = derefString(area)
	return &o, nil
}
