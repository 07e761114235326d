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

// TechnologyRepository provides data access for technologies.
type TechnologyRepository interface {
	List(ctx context.Context) ([]*models.Technology, error)
	GetByID(ctx context.Context, id string) (*models.Technology, error)
	Create(ctx context.Context, tech *models.Technology) (*models.Technology, error)
	Update(ctx context.Context, id string, tech *models.Technology) (*models.Technology, error)
	Delete(ctx context.Context, id string) error
}

type technologyRepository struct{}

// NewTechnologyRepository creates a new TechnologyRepository.
func NewTechnologyRepository() TechnologyRepository {
	return &technologyRepository{}
}

var _ TechnologyRepository = (*technologyRepository)(nil)

const technologyColumns = `id, name, description, category, maturity_level, adoption_score, strategic_fit, created_at, updated_at`

func (r *technologyRepository) List(ctx context.Context) ([]*models.Technology, error) {
	conn, err := scopedConn(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := conn.Query(ctx, `SELECT `+technologyColumns+` FROM technologies ORDER BY name, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query technologies: %w", err)
	}
	defer rows.Close()

	techs := make([]*models.Technology, 0)
	for rows.Next() {
		t, err := scanTechnology(rows)
		if err != nil {
			return nil, err
		}
		techs = append(techs, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating technologies: %w", err)
	}

	return techs, nil
}

func (r *technologyRepository) GetByID(ctx context.Context, id string) (*models.Technology, error) {
	conn, err := scopedConn(ctx)
	if err != nil {
		return nil, err
	}

	t, err := scanTechnology(conn.QueryRow(ctx, `SELECT `+technologyColumns+` FROM technologies WHERE id = $1`, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return t, nil
}

func (r *technologyRepository) Create(ctx context.Context, tech *models.Technology) (*models.Technology, error) {
	conn, err := scopedConn(ctx)
	if err != nil {
		return nil, err
	}

	id := uuid.NewString()
	now := time.Now()

	query := `
		INSERT INTO technologies (
			id, name, description, category, maturity_level, adoption_score,
			strategic_fit, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	if _, err := conn.Exec(ctx, query,
		id,
		tech.Name,
		nullString(tech.Description),
		nullString(tech.Category),
		nullString(string(tech.MaturityLevel)),
		tech.AdoptionScore,
		nullString(string(tech.StrategicFit)),
		now,
		now,
	); err != nil {
		return nil, fmt.Errorf("failed to create technology: %w", err)
	}

	return r.GetByID(ctx, id)
}

func (r *technologyRepository) Update(ctx context.Context, id string, tech *models.Technology) (*models.Technology, error) {
	conn, err := scopedConn(ctx)
	if err != nil {
		return nil, err
	}

	query := `
		UPDATE technologies
		SET name = $2, description = $3, category = $4, maturity_level = $5,
		    adoption_score = $6, strategic_fit = $7, updated_at = $8
		WHERE id = $1`

	result, err := conn.Exec(ctx, query,
		id,
		tech.Name,
		nullString(tech.Description),
		nullString(tech.Category),
		nullString(string(tech.MaturityLevel)),
		tech.AdoptionScore,
		nullString(string(tech.StrategicFit)),
		time.Now(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to update technology: %w", err)
	}
	if result.RowsAffected() == 0 {
		return nil, apperrors.ErrNotFound
	}

	return r.GetByID(ctx, id)
}

func (r *technologyRepository) Delete(ctx context.Context, id string) error {
	conn, err := scopedConn(ctx)
	if err != nil {
		return err
	}

	if _, err := conn.Exec(ctx, `DELETE FROM technologies WHERE id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete technology: %w", err)
	}
	return nil
}

func scanTechnology(row pgx.Row) (*models.Technology, error) {
	var t models.Technology
	var description, category, maturity, strategicFit *string

	err := row.Scan(
		&t.ID,
		&t.Name,
		&description,
		&category,
		&maturity,
		&t.AdoptionScore,
		&strategicFit,
		&t.CreatedAt,
		&t.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan technology: %w", err)
	}

	t.Description = derefString(description)
	t.Category = derefString(category)
	t.MaturityLevel = models.MaturityLevel(derefString(maturity))
	t.StrategicFit = models.Fit(derefString(strategicFit))

	return &t, nil
}
