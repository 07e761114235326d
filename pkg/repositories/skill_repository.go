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

// SkillRepository provides data access for skills and their technology and
// developer links. A duplicate skill code is reported as apperrors.ErrConflict.
type SkillRepository interface {
	List(ctx context.Context) ([]*models.Skill, error)
	GetByID(ctx context.Context, id string) (*models.Skill, error)
	Create(ctx context.Context, skill *models.Skill) (*models.Skill, error)
	Update(ctx context.Context, id string, skill *models.Skill) (*models.Skill, error)
	Delete(ctx context.Context, id string) error
}

type skillRepository struct{}

// NewSkillRepository creates a new SkillRepository.
func NewSkillRepository() SkillRepository {
	return &skillRepository{}
}

var _ SkillRepository = (*skillRepository)(nil)

const skillColumns = `id, name, code, description, guidance_notes, level_description, created_at, updated_at`

func (r *skillRepository) List(ctx context.Context) ([]*models.Skill, error) {
	conn, err := scopedConn(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := conn.Query(ctx, `SELECT `+skillColumns+` FROM skills ORDER BY name, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query skills: %w", err)
	}
	defer rows.Close()

	skills := make([]*models.Skill, 0)
	for rows.Next() {
		s, err := scanSkill(rows)
		if err != nil {
			return nil, err
		}
		skills = append(skills, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating skills: %w", err)
	}

	if err := r.attachLinks(ctx, conn, skills); err != nil {
		return nil, err
	}

	return skills, nil
}

func (r *skillRepository) GetByID(ctx context.Context, id string) (*models.Skill, error) {
	conn, err := scopedConn(ctx)
	if err != nil {
		return nil, err
	}

	s, err := scanSkill(conn.QueryRow(ctx, `SELECT `+skillColumns+` FROM skills WHERE id = $1`, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	if err := r.attachLinks(ctx, conn, []*models.Skill{s}); err != nil {
		return nil, err
	}
	return s, nil
}

func (r *skillRepository) Create(ctx context.Context, skill *models.Skill) (*models.Skill, error) {
	technologies, developers, err := skillLinks(skill)
	if err != nil {
		return nil, err
	}

	id := uuid.NewString()
	now := time.Now()

	err = inTx(ctx, func(tx pgx.Tx) error {
		query := `
			INSERT INTO skills (
				id, name, code, description, guidance_notes, level_description,
				created_at, updated_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

		if _, err := tx.Exec(ctx, query,
			id,
			skill.Name,
			skill.Code,
			nullString(skill.Description),
			nullString(skill.GuidanceNotes),
			nullString(skill.LevelDescription),
			now,
			now,
		); err != nil {
			if isUniqueViolation(err) {
				return fmt.Errorf("%w: skill code %s already exists", apperrors.ErrConflict, skill.Code)
			}
			return fmt.Errorf("failed to create skill: %w", err)
		}

		if len(technologies) > 0 {
			if err := SyncLinks(ctx, tx, skillTechnologiesTable, id, technologies); err != nil {
				return err
			}
		}
		if len(developers) > 0 {
			if err := SyncLinks(ctx, tx, skillDevelopersTable, id, developers); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return r.GetByID(ctx, id)
}

func (r *skillRepository) Update(ctx context.Context, id string, skill *models.Skill) (*models.Skill, error) {
	technologies, developers, err := skillLinks(skill)
	if err != nil {
		return nil, err
	}

	err = inTx(ctx, func(tx pgx.Tx) error {
		query := `
			UPDATE skills
			SET name = $2, code = $3, description = $4, guidance_notes = $5,
			    level_description = $6, updated_at = $7
			WHERE id = $1`

		result, err := tx.Exec(ctx, query,
			id,
			skill.Name,
			skill.Code,
			nullString(skill.Description),
			nullString(skill.GuidanceNotes),
			nullString(skill.LevelDescription),
			time.Now(),
		)
		if err != nil {
			if isUniqueViolation(err) {
				return fmt.Errorf("%w: skill code %s already exists", apperrors.ErrConflict, skill.Code)
			}
			return fmt.Errorf("failed to update skill: %w", err)
		}
		if result.RowsAffected() == 0 {
			return apperrors.ErrNotFound
		}

		if err := SyncLinks(ctx, tx, skillTechnologiesTable, id, technologies); err != nil {
			return err
		}
		return SyncLinks(ctx, tx, skillDevelopersTable, id, developers)
	})
	if err != nil {
		return nil, err
	}

	return r.GetByID(ctx, id)
}

func (r *skillRepository) Delete(ctx context.Context, id string) error {
	conn, err := scopedConn(ctx)
	if err != nil {
		return err
	}

	if _, err := conn.Exec(ctx, `DELETE FROM skills WHERE id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete skill: %w", err)
	}
	return nil
}

// skillLinks converts the skill's link lists to synchronizer descriptors.
func skillLinks(skill *models.Skill) (technologies, developers []Link, err error) {
	technologies = make([]Link, 0, len(skill.Technologies))
	for _, t := range skill.Technologies {
		start, err := dateParam(t.StartDate)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: technology %s start date: %v", apperrors.ErrInvalidInput, t.TechnologyID, err)
		}
		end, err := optionalDateParam(t.EndDate)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: technology %s end date: %v", apperrors.ErrInvalidInput, t.TechnologyID, err)
		}
		technologies = append(technologies, Link{
			TargetID: t.TechnologyID,
			Attrs:    []any{t.ProficiencyLevel, start, end},
		})
	}

	developers = make([]Link, 0, len(skill.Developers))
	for _, d := range skill.Developers {
		certified, err := optionalDateParam(d.CertificationDate)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: developer %s certification date: %v", apperrors.ErrInvalidInput, d.OwnerID, err)
		}
		developers = append(developers, Link{
			TargetID: d.OwnerID,
			Attrs:    []any{d.ProficiencyLevel, certified, nullString(d.Notes)},
		})
	}

	return technologies, developers, nil
}

// attachLinks loads technology and developer links once for all skills.
func (r *skillRepository) attachLinks(ctx context.Context, q querier, skills []*models.Skill) error {
	ids := make([]string, len(skills))
	for i, s := range skills {
		ids[i] = s.ID
	}

	technologies, err := loadSkillTechnologies(ctx, q, ids)
	if err != nil {
		return err
	}
	developers, err := loadSkillDevelopers(ctx, q, ids)
	if err != nil {
		return err
	}

	for _, s := range skills {
		s.Technologies = nonNil(technologies[s.ID])
		s.Developers = nonNil(developers[s.ID])
	}
	return nil
}

func loadSkillTechnologies(ctx context.Context, q querier, skillIDs []string) (map[string][]models.SkillTechnology, error) {
	result := make(map[string][]models.SkillTechnology, len(skillIDs))
	if len(skillIDs) == 0 {
		return result, nil
	}

	query := `
		SELECT skill_id, id, technology_id, proficiency_level,
		       to_char(start_date, 'YYYY-MM-DD'), to_char(end_date, 'YYYY-MM-DD')
		FROM skill_technologies
		WHERE skill_id = ANY($1)
		ORDER BY skill_id, technology_id`

	rows, err := q.Query(ctx, query, skillIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to query skill technologies: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var skillID string
		var startDate *string
		var t models.SkillTechnology
		if err := rows.Scan(&skillID, &t.ID, &t.TechnologyID, &t.ProficiencyLevel, &startDate, &t.EndDate); err != nil {
			return nil, fmt.Errorf("failed to scan skill technology: %w", err)
		}
		t.StartDate = derefString(startDate)
		result[skillID] = append(result[skillID], t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating skill technologies: %w", err)
	}

	return result, nil
}

func loadSkillDevelopers(ctx context.Context, q querier, skillIDs []string) (map[string][]models.SkillDeveloper, error) {
	result := make(map[string][]models.SkillDeveloper, len(skillIDs))
	if len(skillIDs) == 0 {
		return result, nil
	}

	query := `
		SELECT skill_id, id, owner_id, proficiency_level,
		       to_char(certification_date, 'YYYY-MM-DD'), notes
		FROM skill_developers
		WHERE skill_id = ANY($1)
		ORDER BY skill_id, owner_id`

	rows, err := q.Query(ctx, query, skillIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to query skill developers: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var skillID string
		var notes *string
		var d models.SkillDeveloper
		if err := rows.Scan(&skillID, &d.ID, &d.OwnerID, &d.ProficiencyLevel, &d.CertificationDate, &notes); err != nil {
			return nil, fmt.Errorf("failed to scan skill developer: %w", err)
		}
		d.Notes = derefString(notes)
		result[skillID] = append(result[skillID], d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating skill developers: %w", err)
	}

	return result, nil
}

func scanSkill(row pgx.Row) (*models.Skill, error) {
	var s models.Skill
	var description, guidance, level *string

	err := row.Scan(
		&s.ID,
		&s.Name,
		&s.Code,
		&description,
		&guidance,
		&level,
		&s.CreatedAt,
		&s.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan skill: %w", err)
	}

	s.Description = derefString(description)
	s.GuidanceNotes = derefString(guidance)
	s.LevelDescription = derefString(level)

	return &s, nil
}
