package services

import (
	"fmt"
	"strings"
	"time"

	"github.com/ekaya-inc/archcatalog/pkg/apperrors"
	"github.com/ekaya-inc/archcatalog/pkg/models"
)

const (
	minScore = 0
	maxScore = 100
)

func invalidf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", apperrors.ErrInvalidInput, fmt.Sprintf(format, args...))
}

func requireText(field, value string) (string, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", invalidf("%s is required", field)
	}
	return value, nil
}

func checkScore(field string, score *int) error {
	if score != nil && (*score < minScore || *score > maxScore) {
		return invalidf("%s must be between %d and %d, got %d", field, minScore, maxScore, *score)
	}
	return nil
}

func checkProficiency(field string, level int) error {
	if level < models.MinProficiency || level > models.MaxProficiency {
		return invalidf("%s must be between %d and %d, got %d", field, models.MinProficiency, models.MaxProficiency, level)
	}
	return nil
}

type enumValue interface {
	IsValid() bool
}

func checkEnum[E interface {
	enumValue
	~string
}](field string, value E) error {
	if !value.IsValid() {
		return invalidf("unknown %s %q", field, string(value))
	}
	return nil
}

func parseDate(field, value string) (time.Time, error) {
	t, err := time.Parse(models.DateLayout, value)
	if err != nil {
		return time.Time{}, invalidf("%s must be a date in YYYY-MM-DD form, got %q", field, value)
	}
	return t, nil
}

// cleanIDs trims ids, drops blanks and removes repeats, keeping first-seen order.
func cleanIDs(ids []string) []string {
	out := make([]string, 0, len(ids))
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

func optionalID(id *string) *string {
	if id == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*id)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func normalizeApplication(id string, app *models.Application) error {
	var err error
	if app.Name, err = requireText("name", app.Name); err != nil {
		return err
	}
	if err := checkEnum("lifecyclePhase", app.LifecyclePhase); err != nil {
		return err
	}
	if err := checkEnum("criticality", app.Criticality); err != nil {
		return err
	}
	if err := checkEnum("technicalFit", app.TechnicalFit); err != nil {
		return err
	}
	if err := checkEnum("functionalFit", app.FunctionalFit); err != nil {
		return err
	}
	if err := checkScore("healthScore", app.HealthScore); err != nil {
		return err
	}
	if app.EstimatedCost != nil && *app.EstimatedCost < 0 {
		return invalidf("estimatedCost must not be negative")
	}

	app.Currency = strings.ToUpper(strings.TrimSpace(app.Currency))
	if len(app.Currency) > 3 {
		return invalidf("currency must be a 3-letter code, got %q", app.Currency)
	}
	app.HostingType = strings.TrimSpace(app.HostingType)

	app.RelatedCapabilities = cleanIDs(app.RelatedCapabilities)
	app.RelatedProcesses = cleanIDs(app.RelatedProcesses)
	app.RelatedTechnologies = cleanIDs(app.RelatedTechnologies)
	app.RelatedApplications = cleanIDs(app.RelatedApplications)

	if id != "" {
		for _, related := range app.RelatedApplications {
			if related == id {
				return invalidf("application cannot be related to itself")
			}
		}
	}
	return nil
}

func normalizeCapability(id string, c *models.Capability) error {
	var err error
	if c.Name, err = requireText("name", c.Name); err != nil {
		return err
	}
	if err := checkEnum("criticality", c.Criticality); err != nil {
		return err
	}
	if err := checkScore("coverageScore", c.CoverageScore); err != nil {
		return err
	}

	c.ParentID = optionalID(c.ParentID)
	if c.ParentID != nil && id != "" && *c.ParentID == id {
		return invalidf("capability cannot be its own parent")
	}
	return nil
}

func normalizeProcess(_ string, p *models.Process) error {
	var err error
	if p.Name, err = requireText("name", p.Name); err != nil {
		return err
	}
	if err := checkEnum("criticality", p.Criticality); err != nil {
		return err
	}
	if err := checkEnum("automationLevel", p.AutomationLevel); err != nil {
		return err
	}
	return checkScore("efficiencyScore", p.EfficiencyScore)
}

func normalizeTechnology(_ string, t *models.Technology) error {
	var err error
	if t.Name, err = requireText("name", t.Name); err != nil {
		return err
	}
	if err := checkEnum("maturityLevel", t.MaturityLevel); err != nil {
		return err
	}
	if err := checkEnum("strategicFit", t.StrategicFit); err != nil {
		return err
	}
	t.Category = strings.TrimSpace(t.Category)
	return checkScore("adoptionScore", t.AdoptionScore)
}

func normalizeOwner(_ string, o *models.Owner) error {
	var err error
	if o.Matricula, err = requireText("matricula", o.Matricula); err != nil {
		return err
	}
	if o.Name, err = requireText("name", o.Name); err != nil {
		return err
	}
	o.Area = strings.TrimSpace(o.Area)
	return nil
}

func normalizeInterface(_ string, i *models.Interface) error {
	var err error
	if i.SourceApplicationID, err = requireText("sourceApplicationId", i.SourceApplicationID); err != nil {
		return err
	}
	if i.TargetApplicationID, err = requireText("targetApplicationId", i.TargetApplicationID); err != nil {
		return err
	}
	if i.SourceApplicationID == i.TargetApplicationID {
		return invalidf("interface source and target must be different applications")
	}
	if err := checkEnum("interfaceType", i.InterfaceType); err != nil {
		return err
	}
	return checkEnum("frequency", i.Frequency)
}

func normalizeSkill(_ string, s *models.Skill) error {
	var err error
	if s.Name, err = requireText("name", s.Name); err != nil {
		return err
	}
	if s.Code, err = requireText("code", s.Code); err != nil {
		return err
	}

	for i := range s.Technologies {
		link := &s.Technologies[i]
		if link.TechnologyID, err = requireText(fmt.Sprintf("technologies[%d].technologyId", i), link.TechnologyID); err != nil {
			return err
		}
		if err := checkProficiency(fmt.Sprintf("technologies[%d].proficiencyLevel", i), link.ProficiencyLevel); err != nil {
			return err
		}
		start, err := parseDate(fmt.Sprintf("technologies[%d].startDate", i), link.StartDate)
		if err != nil {
			return err
		}
		if link.EndDate != nil {
			end, err := parseDate(fmt.Sprintf("technologies[%d].endDate", i), *link.EndDate)
			if err != nil {
				return err
			}
			if end.Before(start) {
				return invalidf("technologies[%d].endDate must not precede startDate", i)
			}
		}
	}

	for i := range s.Developers {
		link := &s.Developers[i]
		if link.OwnerID, err = requireText(fmt.Sprintf("developers[%d].ownerId", i), link.OwnerID); err != nil {
			return err
		}
		if err := checkProficiency(fmt.Sprintf("developers[%d].proficiencyLevel", i), link.ProficiencyLevel); err != nil {
			return err
		}
		if link.CertificationDate != nil {
			if _, err := parseDate(fmt.Sprintf("developers[%d].certificationDate", i), *link.CertificationDate); err != nil {
				return err
			}
		}
	}
	return nil
}

func normalizeOwnerRelationship(rel *models.OwnerRelationship) error {
	var err error
	if rel.OwnerID, err = requireText("ownerId", rel.OwnerID); err != nil {
		return err
	}
	if rel.ApplicationID, err = requireText("applicationId", rel.ApplicationID); err != nil {
		return err
	}
	if !rel.Type.IsValid() {
		return invalidf("relationshipType must be %q or %q, got %q",
			models.RelationshipOwner, models.RelationshipDeveloper, string(rel.Type))
	}
	return nil
}
