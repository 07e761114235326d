package repositories

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// querier is the statement surface shared by pgx.Tx and *pgxpool.Conn.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// LinkTable describes a many-to-many join table owned by one entity.
// Table and column names are trusted identifiers and are never taken from input.
type LinkTable struct {
	Name         string
	OwnerColumn  string
	TargetColumn string
	// AttrColumns lists per-link attribute columns in the order of Link.Attrs.
	AttrColumns []string
	// SurrogateID marks tables keyed by their own id column instead of (owner, target).
	SurrogateID bool
}

// Link is one member of an owned relationship set.
type Link struct {
	TargetID string
	Attrs    []any
}

// Join tables owned by applications and skills.
var (
	applicationCapabilitiesTable = LinkTable{
		Name:         "application_capabilities",
		OwnerColumn:  "application_id",
		TargetColumn: "capability_id",
	}
	applicationProcessesTable = LinkTable{
		Name:         "application_processes",
		OwnerColumn:  "application_id",
		TargetColumn: "process_id",
	}
	applicationTechnologiesTable = LinkTable{
		Name:         "application_technologies",
		OwnerColumn:  "application_id",
		TargetColumn: "technology_id",
	}
	applicationRelationsTable = LinkTable{
		Name:         "application_relations",
		OwnerColumn:  "application_id",
		TargetColumn: "related_application_id",
	}
	skillTechnologiesTable = LinkTable{
		Name:         "skill_technologies",
		OwnerColumn:  "skill_id",
		TargetColumn: "technology_id",
		AttrColumns:  []string{"proficiency_level", "start_date", "end_date"},
		SurrogateID:  true,
	}
	skillDevelopersTable = LinkTable{
		Name:         "skill_developers",
		OwnerColumn:  "skill_id",
		TargetColumn: "owner_id",
		AttrColumns:  []string{"proficiency_level", "certification_date", "notes"},
		SurrogateID:  true,
	}
)

func (t LinkTable) deleteSQL() string {
	return fmt.Sprintf("DELETE FROM %s WHERE %s = $1", t.Name, t.OwnerColumn)
}

func (t LinkTable) insertSQL() string {
	columns := make([]string, 0, len(t.AttrColumns)+3)
	if t.SurrogateID {
		columns = append(columns, "id")
	}
	columns = append(columns, t.OwnerColumn, t.TargetColumn)
	columns = append(columns, t.AttrColumns...)

	placeholders := make([]string, len(columns))
	for i := range columns {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
	}

	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		t.Name, strings.Join(columns, ", "), strings.Join(placeholders, ", "))
}

func (t LinkTable) selectSQL() string {
	return fmt.Sprintf("SELECT %s, %s FROM %s WHERE %s = ANY($1) ORDER BY %s, created_at, %s",
		t.OwnerColumn, t.TargetColumn, t.Name, t.OwnerColumn, t.OwnerColumn, t.TargetColumn)
}

// dedupeLinks collapses repeated target ids. The last descriptor for an id
// supplies the attributes; the link keeps the position of its first occurrence.
func dedupeLinks(links []Link) []Link {
	if len(links) == 0 {
		return nil
	}

	index := make(map[string]int, len(links))
	out := make([]Link, 0, len(links))
	for _, link := range links {
		if i, seen := index[link.TargetID]; seen {
			out[i] = link
			continue
		}
		index[link.TargetID] = len(out)
		out = append(out, link)
	}
	return out
}

// SyncLinks replaces every row owned by ownerID in table with links.
// It must run inside the caller's transaction: a failed insert leaves the
// table half-written until the caller rolls back.
func SyncLinks(ctx context.Context, q querier, table LinkTable, ownerID string, links []Link) error {
	if _, err := q.Exec(ctx, table.deleteSQL(), ownerID); err != nil {
		return fmt.Errorf("failed to clear %s for %s: %w", table.Name, ownerID, err)
	}

	links = dedupeLinks(links)
	if len(links) == 0 {
		return nil
	}

	query := table.insertSQL()
	for i, link := range links {
		if len(link.Attrs) != len(table.AttrColumns) {
			return fmt.Errorf("%s link %d has %d attributes, want %d",
				table.Name, i, len(link.Attrs), len(table.AttrColumns))
		}

		args := make([]any, 0, len(link.Attrs)+3)
		if table.SurrogateID {
			args = append(args, uuid.NewString())
		}
		args = append(args, ownerID, link.TargetID)
		args = append(args, link.Attrs...)

		if _, err := q.Exec(ctx, query, args...); err != nil {
			return fmt.Errorf("failed to insert %s link %s for %s: %w", table.Name, link.TargetID, ownerID, err)
		}
	}

	return nil
}

// loadLinkIDs returns the target ids linked to each of ownerIDs. Owners
// without links are absent from the map.
func loadLinkIDs(ctx context.Context, q querier, table LinkTable, ownerIDs []string) (map[string][]string, error) {
	result := make(map[string][]string, len(ownerIDs))
	if len(ownerIDs) == 0 {
		return result, nil
	}

	rows, err := q.Query(ctx, table.selectSQL(), ownerIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", table.Name, err)
	}
	defer rows.Close()

	for rows.Next() {
		var ownerID, targetID string
		if err := rows.Scan(&ownerID, &targetID); err != nil {
			return nil, fmt.Errorf("failed to scan %s row: %w", table.Name, err)
		}
		result[ownerID] = append(result[ownerID], targetID)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating %s: %w", table.Name, err)
	}

	return result, nil
}

// idLinks converts a plain id list to attribute-free links.
func idLinks(ids []string) []Link {
	links := make([]Link, len(ids))
	for i, id := range ids {
		links[i] = Link{TargetID: id}
	}
	return links
}
