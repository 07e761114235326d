package main

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/jinzhu/inflection"
	"go.uber.org/zap"

	"github.com/ekaya-inc/archcatalog/pkg/models"
)

const (
	kindOwners       = "owners"
	kindTechnologies = "technologies"
	kindCapabilities = "capabilities"
	kindProcesses    = "processes"
	kindApplications = "applications"
	kindSkills       = "skills"
)

// catalogRef is the subset of any catalog entity needed to match rows.
type catalogRef struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Matricula string `json:"matricula"`
	Code      string `json:"code"`
}

// naturalKey is the identity a row is matched on: matricula for owners,
// code for skills and name for everything else.
func naturalKey(kind string, ref catalogRef) string {
	switch kind {
	case kindOwners:
		return ref.Matricula
	case kindSkills:
		return ref.Code
	default:
		return ref.Name
	}
}

func keyColumn(kind string) string {
	switch kind {
	case kindOwners:
		return "matricula"
	case kindSkills:
		return "code"
	default:
		return "name"
	}
}

// Importer creates catalog entities from CSV rows through the HTTP API.
type Importer struct {
	client *apiClient
	logger *zap.Logger
	// kind -> lower-cased natural key -> id
	ids map[string]map[string]string
}

// NewImporter creates a new Importer.
func NewImporter(client *apiClient, logger *zap.Logger) *Importer {
	return &Importer{
		client: client,
		logger: logger,
		ids:    make(map[string]map[string]string),
	}
}

// Run imports every configured file in dependency order. The returned report
// is never nil; err is set when a file or the API could not be read at all.
func (imp *Importer) Run(ctx context.Context, files Files) (*Report, error) {
	report := &Report{}

	steps := []struct {
		kind string
		path string
		run  func(context.Context, []record, *KindReport) error
	}{
		{kindOwners, files.Owners, imp.importOwners},
		{kindTechnologies, files.Technologies, imp.importTechnologies},
		{kindCapabilities, files.Capabilities, imp.importCapabilities},
		{kindApplications, files.Applications, imp.importApplications},
		{kindSkills, files.Skills, imp.importSkills},
	}

	for _, step := range steps {
		if step.path == "" {
			continue
		}
		rows, err := readCSVFile(step.path, keyColumn(step.kind))
		if err != nil {
			return report, err
		}
		if _, err := imp.index(ctx, step.kind); err != nil {
			return report, err
		}

		imp.logger.Info("Importing", zap.String("kind", step.kind), zap.String("file", step.path), zap.Int("rows", len(rows)))
		if err := step.run(ctx, rows, report.kind(step.kind)); err != nil {
			return report, err
		}
	}
	return report, nil
}

// index returns the natural-key index of a kind, loading it on first use.
func (imp *Importer) index(ctx context.Context, kind string) (map[string]string, error) {
	if idx, ok := imp.ids[kind]; ok {
		return idx, nil
	}

	var refs []catalogRef
	if err := imp.client.list(ctx, kind, &refs); err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", kind, err)
	}

	idx := make(map[string]string, len(refs))
	for _, ref := range refs {
		if key := naturalKey(kind, ref); key != "" {
			idx[strings.ToLower(key)] = ref.ID
		}
	}
	imp.ids[kind] = idx
	return idx, nil
}

func (imp *Importer) resolve(ctx context.Context, kind, key string) (string, error) {
	idx, err := imp.index(ctx, kind)
	if err != nil {
		return "", err
	}
	id, ok := idx[strings.ToLower(key)]
	if !ok {
		return "", fmt.Errorf("unknown %s %q", inflection.Singular(kind), key)
	}
	return id, nil
}

func (imp *Importer) resolveAll(ctx context.Context, kind string, keys []string) ([]string, error) {
	ids := make([]string, 0, len(keys))
	for _, key := range keys {
		id, err := imp.resolve(ctx, kind, key)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// importRow creates one entity unless its natural key already exists.
// Row-level problems are counted in rep; only API listing failures are returned.
func (imp *Importer) importRow(ctx context.Context, kind string, row record, rep *KindReport, build func() (any, error)) error {
	key := row.get(keyColumn(kind))
	if key == "" {
		rep.fail(row, fmt.Errorf("%s is required", keyColumn(kind)))
		return nil
	}

	idx, err := imp.index(ctx, kind)
	if err != nil {
		return err
	}
	if _, exists := idx[strings.ToLower(key)]; exists {
		rep.Skipped++
		imp.logger.Debug("Skipping existing", zap.String("kind", kind), zap.String("key", key))
		return nil
	}

	payload, err := build()
	if err != nil {
		rep.fail(row, err)
		imp.logger.Warn("Rejected row", zap.String("kind", kind), zap.Int("line", row.line), zap.Error(err))
		return nil
	}

	var created catalogRef
	if err := imp.client.create(ctx, kind, payload, &created); err != nil {
		if isConflict(err) {
			rep.Skipped++
			return nil
		}
		rep.fail(row, err)
		imp.logger.Warn("Create failed", zap.String("kind", kind), zap.Int("line", row.line), zap.Error(err))
		return nil
	}

	idx[strings.ToLower(key)] = created.ID
	rep.Created++
	imp.logger.Debug("Created", zap.String("kind", kind), zap.String("key", key), zap.String("id", created.ID))
	return nil
}

// Columns: matricula, name, area
func (imp *Importer) importOwners(ctx context.Context, rows []record, rep *KindReport) error {
	for _, row := range rows {
		err := imp.importRow(ctx, kindOwners, row, rep, func() (any, error) {
			return &models.Owner{
				Matricula: row.get("matricula"),
				Name:      row.get("name"),
				Area:      row.get("area"),
			}, nil
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// Columns: name, description, category, maturity_level, adoption_score, strategic_fit
func (imp *Importer) importTechnologies(ctx context.Context, rows []record, rep *KindReport) error {
	for _, row := range rows {
		err := imp.importRow(ctx, kindTechnologies, row, rep, func() (any, error) {
			score, err := row.optionalInt("adoption_score")
			if err != nil {
				return nil, err
			}
			return &models.Technology{
				Name:          row.get("name"),
				Description:   row.get("description"),
				Category:      row.get("category"),
				MaturityLevel: models.MaturityLevel(row.get("maturity_level")),
				AdoptionScore: score,
				StrategicFit:  models.Fit(row.get("strategic_fit")),
			}, nil
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// Columns: name, description, criticality, coverage_score, parent (capability name)
//
// Rows are retried until their parent exists, so children may precede parents in the file.
func (imp *Importer) importCapabilities(ctx context.Context, rows []record, rep *KindReport) error {
	pendingNames := make(map[string]bool, len(rows))
	for _, row := range rows {
		pendingNames[strings.ToLower(row.get("name"))] = true
	}

	idx, err := imp.index(ctx, kindCapabilities)
	if err != nil {
		return err
	}

	pending := rows
	for len(pending) > 0 {
		var deferred []record
		for _, row := range pending {
			parent := strings.ToLower(row.get("parent"))
			if _, known := idx[parent]; parent != "" && !known && pendingNames[parent] {
				deferred = append(deferred, row)
				continue
			}

			err := imp.importRow(ctx, kindCapabilities, row, rep, func() (any, error) {
				score, err := row.optionalInt("coverage_score")
				if err != nil {
					return nil, err
				}
				capability := &models.Capability{
					Name:          row.get("name"),
					Description:   row.get("description"),
					Criticality:   models.Criticality(row.get("criticality")),
					CoverageScore: score,
				}
				if parent := row.get("parent"); parent != "" {
					parentID, err := imp.resolve(ctx, kindCapabilities, parent)
					if err != nil {
						return nil, err
					}
					capability.ParentID = &parentID
				}
				return capability, nil
			})
			if err != nil {
				return err
			}
			delete(pendingNames, strings.ToLower(row.get("name")))
		}

		if len(deferred) == len(pending) {
			for _, row := range deferred {
				rep.fail(row, fmt.Errorf("parent %q is never created", row.get("parent")))
			}
			break
		}
		pending = deferred
	}
	return nil
}

// Columns: name, description, lifecycle_phase, criticality, hosting_type,
// health_score, technical_fit, functional_fit, estimated_cost, currency,
// technologies, capabilities, processes, related_applications (';'-separated names)
func (imp *Importer) importApplications(ctx context.Context, rows []record, rep *KindReport) error {
	for _, row := range rows {
		err := imp.importRow(ctx, kindApplications, row, rep, func() (any, error) {
			health, err := row.optionalInt("health_score")
			if err != nil {
				return nil, err
			}
			cost, err := row.optionalFloat("estimated_cost")
			if err != nil {
				return nil, err
			}

			app := &models.Application{
				Name:           row.get("name"),
				Description:    row.get("description"),
				LifecyclePhase: models.LifecyclePhase(row.get("lifecycle_phase")),
				Criticality:    models.Criticality(row.get("criticality")),
				HostingType:    row.get("hosting_type"),
				HealthScore:    health,
				TechnicalFit:   models.Fit(row.get("technical_fit")),
				FunctionalFit:  models.Fit(row.get("functional_fit")),
				EstimatedCost:  cost,
				Currency:       row.get("currency"),
			}
			if app.RelatedTechnologies, err = imp.resolveAll(ctx, kindTechnologies, row.list("technologies")); err != nil {
				return nil, err
			}
			if app.RelatedCapabilities, err = imp.resolveAll(ctx, kindCapabilities, row.list("capabilities")); err != nil {
				return nil, err
			}
			if app.RelatedProcesses, err = imp.resolveAll(ctx, kindProcesses, row.list("processes")); err != nil {
				return nil, err
			}
			if app.RelatedApplications, err = imp.resolveAll(ctx, kindApplications, row.list("related_applications")); err != nil {
				return nil, err
			}
			return app, nil
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// Columns: code, name, description, guidance_notes, level_description,
// technologies ("Name:level:start[:end]" entries), developers ("matricula:level[:certified]" entries)
func (imp *Importer) importSkills(ctx context.Context, rows []record, rep *KindReport) error {
	for _, row := range rows {
		err := imp.importRow(ctx, kindSkills, row, rep, func() (any, error) {
			skill := &models.Skill{
				Code:             row.get("code"),
				Name:             row.get("name"),
				Description:      row.get("description"),
				GuidanceNotes:    row.get("guidance_notes"),
				LevelDescription: row.get("level_description"),
			}

			for _, entry := range row.list("technologies") {
				parts := strings.Split(entry, ":")
				if len(parts) < 3 || len(parts) > 4 {
					return nil, fmt.Errorf("technology entry %q: want Name:level:start[:end]", entry)
				}
				techID, err := imp.resolve(ctx, kindTechnologies, strings.TrimSpace(parts[0]))
				if err != nil {
					return nil, err
				}
				level, err := strconv.Atoi(strings.TrimSpace(parts[1]))
				if err != nil {
					return nil, fmt.Errorf("technology entry %q: bad level", entry)
				}
				link := models.SkillTechnology{
					TechnologyID:     techID,
					ProficiencyLevel: level,
					StartDate:        strings.TrimSpace(parts[2]),
				}
				if len(parts) == 4 {
					end := strings.TrimSpace(parts[3])
					link.EndDate = &end
				}
				skill.Technologies = append(skill.Technologies, link)
			}

			for _, entry := range row.list("developers") {
				parts := strings.Split(entry, ":")
				if len(parts) < 2 || len(parts) > 3 {
					return nil, fmt.Errorf("developer entry %q: want matricula:level[:certified]", entry)
				}
				ownerID, err := imp.resolve(ctx, kindOwners, strings.TrimSpace(parts[0]))
				if err != nil {
					return nil, err
				}
				level, err := strconv.Atoi(strings.TrimSpace(parts[1]))
				if err != nil {
					return nil, fmt.Errorf("developer entry %q: bad level", entry)
				}
				link := models.SkillDeveloper{OwnerID: ownerID, ProficiencyLevel: level}
				if len(parts) == 3 {
					certified := strings.TrimSpace(parts[2])
					link.CertificationDate = &certified
				}
				skill.Developers = append(skill.Developers, link)
			}
			return skill, nil
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// KindReport counts the outcome of every row of one kind.
type KindReport struct {
	Kind    string
	Created int
	Skipped int
	Errors  []string
}

func (k *KindReport) fail(row record, err error) {
	k.Errors = append(k.Errors, fmt.Sprintf("line %d: %v", row.line, err))
}

// Report is the outcome of an import run.
type Report struct {
	Kinds []*KindReport
}

func (r *Report) kind(name string) *KindReport {
	for _, k := range r.Kinds {
		if k.Kind == name {
			return k
		}
	}
	k := &KindReport{Kind: name}
	r.Kinds = append(r.Kinds, k)
	return k
}

// Failed returns the number of rows that could not be imported.
func (r *Report) Failed() int {
	n := 0
	for _, k := range r.Kinds {
		n += len(k.Errors)
	}
	return n
}

// Print writes a summary table followed by every row error.
func (r *Report) Print(w io.Writer) {
	header := color.New(color.Bold)
	failure := color.New(color.FgRed)

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	header.Fprintln(tw, "KIND\tCREATED\tSKIPPED\tFAILED")
	for _, k := range r.Kinds {
		fmt.Fprintf(tw, "%s\t%d\t%d\t%d\n", k.Kind, k.Created, k.Skipped, len(k.Errors))
	}
	_ = tw.Flush()

	for _, k := range r.Kinds {
		for _, msg := range k.Errors {
			failure.Fprintf(w, "%s %s\n", k.Kind, msg)
		}
	}
}
