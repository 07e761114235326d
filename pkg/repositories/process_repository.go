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

// ProcessRepository provides data access for business processes.
type ProcessRepository interface {
	List(ctx context.Context) ([]*models.Process, error)
	GetByID(ctx context.Context, id string) (*models.Process, error)
	Create(ctx context.Context, process *models.Process) (*models.Process, error)
	Update(ctx context.Context, id string, process *models.Process) (*models.Process, error)
	Delete(ctx context.Context, id string) error
}

type processRepository struct{}

// NewProcessRepository creates a new ProcessRepository.
func NewProcessRepository() ProcessRepository {
	return &processRepository{}
}

var _ ProcessRepository = (*processRepository)(nil)

const processColumns = `id, name, description, criticality, efficiency_score, automation_level, created_at, updated_at`

func (r *processRepository) List(ctx context.Context) ([]*models.Process, error) {
	conn, err := scopedConn(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := conn.Query(ctx, `SELECT `+processColumns+` FROM processes ORDER BY name, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query processes: %w", err)
	}
	defer rows.Close()

	processes := make([]*models.Process, 0)
	for rows.Next() {
		p, err := scanProcess(rows)
		if err != nil {
			return nil, err
		}
		processes = append(processes, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating processes: %w", err)
	}

	return processes, nil
}

func (r *processRepository) GetByID(ctx context.Context, id string) (*models.Process, error) {
	conn, err := scopedConn(ctx)
	if err != nil {
		return nil, err
	}

	p, err := scanProcess(conn.QueryRow(ctx, `SELECT `+processColumns+` FROM processes WHERE id = $1`, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return p, nil
}

func (r *processRepository) Create(ctx context.Context, process *models.Process) (*models.Process, error) {
	conn, err := scopedConn(ctx)
	if err != nil {
		return nil, err
	}

	id := uuid.NewString()
	now := time.Now()

	query := `
		INSERT INTO processes (
			id, name, description, criticality, efficiency_score, automation_level,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	if _, err := conn.Exec(ctx, query,
		id,
		process.Name,
		nullString(process.Description),
		nullString(string(process.Criticality)),
		process.EfficiencyScore,
		nullString(string(process.AutomationLevel)),
		now,
		now,
	); err != nil {
		return nil, fmt.Errorf("failed to create process: %w", err)
	}

	return r.GetByID(ctx, id)
}

func (r *processRepository) Update(ctx context.Context, id string, process *models.Process) (*models.Process, error) {
	conn, err := scopedConn(ctx)
	if err != nil {
		return nil, err
	}

	query := `
		UPDATE processes
		SET name = $2, description = $3, criticality = $4, efficiency_score = $5,
		    automation_level = $6, updated_at = $7
		WHERE id = $1`

	result, err := conn.Exec(ctx, query,
		id,
		process.Name,
		nullString(process.Description),
		nullString(string(process.Criticality)),
		process.EfficiencyScore,
		nullString(string(process.AutomationLevel)),
		time.Now(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to update process: %w", err)
	}
	if result.RowsAffected() == 0 {
		return nil, apperrors.ErrNotFound
	}

	return r.GetByID(ctx, id)
}

func (r *processRepository) Delete(ctx context.Context, id string) error {
	conn, err := scopedConn(ctx)
	if err != nil {
		return err
	}

	if _, err := conn.Exec(ctx, `DELETE FROM processes WHERE id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete process: %w", err)
	}
	return nil
}

func scanProcess(row pgx.Row) (*models.Process, error) {
	var p models.Process
	var description, criticality, automation *string

	err := row.Scan(
		&p.ID,
		&p.Name,
		&description,
		&criticality,
		&p.EfficiencyScore,
		&automation,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan process: %w", err)
	}

	p.Description = derefString(description)
	p.Criticality = models.Criticality(derefString(criticality))
	p.AutomationLevel = models.AutomationLevel(derefString(automation))

	return &p, nil
}
