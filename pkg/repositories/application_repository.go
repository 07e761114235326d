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

// ApplicationRepository provides data access for applications and the
// relationship sets they own.
type ApplicationRepository interface {
	// List returns every application ordered by name, with relationship sets.
	List(ctx context.Context) ([]*models.Application, error)

	// GetByID returns nil, nil when the application does not exist.
	GetByID(ctx context.Context, id string) (*models.Application, error)

	// Create inserts the application with a fresh id and links its relationship sets.
	Create(ctx context.Context, app *models.Application) (*models.Application, error)

	// Update replaces every scalar field and every relationship set.
	Update(ctx context.Context, id string, app *models.Application) (*models.Application, error)

	// Delete removes the application and its join rows. Unknown ids are ignored.
	Delete(ctx context.Context, id string) error
}

type applicationRepository struct{}

// NewApplicationRepository creates a new ApplicationRepository.
func NewApplicationRepository() ApplicationRepository {
	return &applicationRepository{}
}

var _ ApplicationRepository = (*applicationRepository)(nil)

const applicationColumns = `
	id, name, description, lifecycle_phase, criticality, hosting_type,
	health_score, technical_fit, functional_fit, estimated_cost, currency,
	created_at, updated_at`

func (r *applicationRepository) List(ctx context.Context) ([]*models.Application, error) {
	conn, err := scopedConn(ctx)
	if err != nil {
		return nil, err
	}

	query := `SELECT ` + applicationColumns + ` FROM applications ORDER BY name, id`

	rows, err := conn.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query applications: %w", err)
	}
	defer rows.Close()

	apps := make([]*models.Application, 0)
	for rows.Next() {
		app, err := scanApplication(rows)
		if err != nil {
			return nil, err
		}
		apps = append(apps, app)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating applications: %w", err)
	}

	if err := r.attachLinks(ctx, conn, apps); err != nil {
		return nil, err
	}

	return apps, nil
}

func (r *applicationRepository) GetByID(ctx context.Context, id string) (*models.Application, error) {
	conn, err := scopedConn(ctx)
	if err != nil {
		return nil, err
	}

	query := `SELECT ` + applicationColumns + ` FROM applications WHERE id = $1`

	app, err := scanApplication(conn.QueryRow(ctx, query, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	if err := r.attachLinks(ctx, conn, []*models.Application{app}); err != nil {
		return nil, err
	}

	return app, nil
}

func (r *applicationRepository) Create(ctx context.Context, app *models.Application) (*models.Application, error) {
	id := uuid.NewString()
	now := time.Now()

	err := inTx(ctx, func(tx pgx.Tx) error {
		query := `
			INSERT INTO applications (
				id, name, description, lifecycle_phase, criticality, hosting_type,
				health_score, technical_fit, functional_fit, estimated_cost, currency,
				created_at, updated_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`

		if _, err := tx.Exec(ctx, query,
			id,
			app.Name,
			nullString(app.Description),
			nullString(string(app.LifecyclePhase)),
			nullString(string(app.Criticality)),
			nullString(app.HostingType),
			app.HealthScore,
			nullString(string(app.TechnicalFit)),
			nullString(string(app.FunctionalFit)),
			app.EstimatedCost,
			nullString(app.Currency),
			now,
			now,
		); err != nil {
			return fmt.Errorf("failed to create application: %w", err)
		}

		for _, set := range applicationLinkSets(app) {
			if len(set.ids) == 0 {
				continue
			}
			if err := SyncLinks(ctx, tx, set.table, id, idLinks(set.ids)); err != nil {
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

func (r *applicationRepository) Update(ctx context.Context, id string, app *models.Application) (*models.Application, error) {
	err := inTx(ctx, func(tx pgx.Tx) error {
		query := `
			UPDATE applications
			SET name = $2, description = $3, lifecycle_phase = $4, criticality = $5,
			    hosting_type = $6, health_score = $7, technical_fit = $8,
			    functional_fit = $9, estimated_cost = $10, currency = $11,
			    updated_at = $12
			WHERE id = $1`

		result, err := tx.Exec(ctx, query,
			id,
			app.Name,
			nullString(app.Description),
			nullString(string(app.LifecyclePhase)),
			nullString(string(app.Criticality)),
			nullString(app.HostingType),
			app.HealthScore,
			nullString(string(app.TechnicalFit)),
			nullString(string(app.FunctionalFit)),
			app.EstimatedCost,
			nullString(app.Currency),
			time.Now(),
		)
		if err != nil {
			return fmt.Errorf("failed to update application: %w", err)
		}
		if result.RowsAffected() == 0 {
			return apperrors.ErrNotFound
		}

		for _, set := range applicationLinkSets(app) {
			if err := SyncLinks(ctx, tx, set.table, id, idLinks(set.ids)); err != nil {
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

func (r *applicationRepository) Delete(ctx context.Context, id string) error {
	conn, err := scopedConn(ctx)
	if err != nil {
		return err
	}

	if _, err := conn.Exec(ctx, `DELETE FROM applications WHERE id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete application: %w", err)
	}

	return nil
}

type applicationLinkSet struct {
	table LinkTable
	ids   []string
}

func applicationLinkSets(app *models.Application) []applicationLinkSet {
	return []applicationLinkSet{
		{applicationCapabilitiesTable, app.RelatedCapabilities},
		{applicationProcessesTable, app.RelatedProcesses},
		{applicationTechnologiesTable, app.RelatedTechnologies},
		{applicationRelationsTable, app.RelatedApplications},
	}
}

// attachLinks loads each relationship kind once for all apps.
func (r *applicationRepository) attachLinks(ctx context.Context, q querier, apps []*models.Application) error {
	ids := make([]string, len(apps))
	for i, app := range apps {
		ids[i] = app.ID
	}

	capabilities, err := loadLinkIDs(ctx, q, applicationCapabilitiesTable, ids)
	if err != nil {
		return err
	}
	processes, err := loadLinkIDs(ctx, q, applicationProcessesTable, ids)
	if err != nil {
		return err
	}
	technologies, err := loadLinkIDs(ctx, q, applicationTechnologiesTable, ids)
	if err != nil {
		return err
	}
	related, err := loadLinkIDs(ctx, q, applicationRelationsTable, ids)
	if err != nil {
		return err
	}

	for _, app := range apps {
		app.RelatedCapabilities = nonNil(capabilities[app.ID])
		app.RelatedProcesses = nonNil(processes[app.ID])
		app.RelatedTechnologies = nonNil(technologies[app.ID])
		app.RelatedApplications = nonNil(related[app.ID])
	}
	return nil
}

func scanApplication(row pgx.Row) (*models.Application, error) {
	var a models.Application
	var description, lifecycle, criticality, hosting, technicalFit, functionalFit, currency *string

	err := row.Scan(
		&a.ID,
		&a.Name,
		&description,
		&lifecycle,
		&criticality,
		&hosting,
		&a.HealthScore,
		&technicalFit,
		&functionalFit,
		&a.EstimatedCost,
		&currency,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan application: %w", err)
	}

	a.Description = derefString(description)
	a.LifecyclePhase = models.LifecyclePhase(derefString(lifecycle))
	a.Criticality = models.Criticality(derefString(criticality))
	a.HostingType = derefString(hosting)
	a.TechnicalFit = models.Fit(derefString(technicalFit))
	a.FunctionalFit = models.Fit(derefString(functionalFit))
	a.Currency = derefString(currency)

	return &a, nil
}
