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

// InterfaceRepository provides data access for application interfaces.
// Reads carry the source and target application names.
type InterfaceRepository interface {
	List(ctx context.Context) ([]*models.Interface, error)
	GetByID(ctx context.Context, id string) (*models.Interface, error)
	Create(ctx context.Context, iface *models.Interface) (*models.Interface, error)
	Update(ctx context.Context, id string, iface *models.Interface) (*models.Interface, error)
	Delete(ctx context.Context, id string) error
}

type interfaceRepository struct{}

// NewInterfaceRepository creates a new InterfaceRepository.
func NewInterfaceRepository() InterfaceRepository {
	return &interfaceRepository{}
}

var _ InterfaceRepository = (*interfaceRepository)(nil)

const interfaceSelect = `
	SELECT i.id, i.source_application_id, i.target_application_id,
	       src.name, tgt.name, i.interface_type, i.frequency, i.description,
	       i.created_at, i.updated_at
	FROM interfaces i
	JOIN applications src ON src.id = i.source_application_id
	JOIN applications tgt ON tgt.id = i.target_application_id`

func (r *interfaceRepository) List(ctx context.Context) ([]*models.Interface, error) {
	conn, err := scopedConn(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := conn.Query(ctx, interfaceSelect+` ORDER BY src.name, tgt.name, i.id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query interfaces: %w", err)
	}
	defer rows.Close()

	ifaces := make([]*models.Interface, 0)
	for rows.Next() {
		iface, err := scanInterface(rows)
		if err != nil {
			return nil, err
		}
		ifaces = append(ifaces, iface)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating interfaces: %w", err)
	}

	return ifaces, nil
}

func (r *interfaceRepository) GetByID(ctx context.Context, id string) (*models.Interface, error) {
	conn, err := scopedConn(ctx)
	if err != nil {
		return nil, err
	}

	iface, err := scanInterface(conn.QueryRow(ctx, interfaceSelect+` WHERE i.id = $1`, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return iface, nil
}

func (r *interfaceRepository) Create(ctx context.Context, iface *models.Interface) (*models.Interface, error) {
	conn, err := scopedConn(ctx)
	if err != nil {
		return nil, err
	}

	id := uuid.NewString()
	now := time.Now()

	query := `
		INSERT INTO interfaces (
			id, source_application_id, target_application_id, interface_type,
			frequency, description, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	if _, err := conn.Exec(ctx, query,
		id,
		iface.SourceApplicationID,
		iface.TargetApplicationID,
		nullString(string(iface.InterfaceType)),
		nullString(string(iface.Frequency)),
		nullString(iface.Description),
		now,
		now,
	); err != nil {
		return nil, fmt.Errorf("failed to create interface: %w", err)
	}

	return r.GetByID(ctx, id)
}

func (r *interfaceRepository) Update(ctx context.Context, id string, iface *models.Interface) (*models.Interface, error) {
	conn, err := scopedConn(ctx)
	if err != nil {
		return nil, err
	}

	query := `
		UPDATE interfaces
		SET source_application_id = $2, target_application_id = $3,
		    interface_type = $4, frequency = $5, description = $6, updated_at = $7
		WHERE id = $1`

	result, err := conn.Exec(ctx, query,
		id,
		iface.SourceApplicationID,
		iface.TargetApplicationID,
		nullString(string(iface.InterfaceType)),
		nullString(string(iface.Frequency)),
		nullString(iface.Description),
		time.Now(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to update interface: %w", err)
	}
	if result.RowsAffected() == 0 {
		return nil, apperrors.ErrNotFound
	}

	return r.GetByID(ctx, id)
}

func (r *interfaceRepository) Delete(ctx context.Context, id string) error {
	conn, err := scopedConn(ctx)
	if err != nil {
		return err
	}

	if _, err := conn.Exec(ctx, `DELETE FROM interfaces WHERE id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete interface: %w", err)
	}
	return nil
}

func scanInterface(row pgx.Row) (*models.Interface, error) {
	var i models.Interface
	var interfaceType, frequency, description *string

	err := row.Scan(
		&i.ID,
		&i.SourceApplicationID,
		&i.TargetApplicationID,
		&i.SourceApplicationName,
		&i.TargetApplicationName,
		&interfaceType,
		&frequency,
		&description,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan interface: %w", err)
	}

	i.InterfaceType = models.InterfaceType(derefString(interfaceType))
	i.Frequency = models.Frequency(derefString(frequency))
	i.Description = derefString(description)

	return &i, nil
}
