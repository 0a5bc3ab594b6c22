package storage

import (
	"context"
	"fmt"
	"strings"

	"outlay/internal/core"
)

// dimensionMeta maps each dimension variant to its table and the fact
// table's foreign key column. All dimension queries go through this table
// instead of branching on strings.
type dimensionMeta struct {
	table    string
	fkColumn string
}

var dimensions = map[core.Dimension]dimensionMeta{
	core.DimensionCategory: {table: "categories", fkColumn: "category_id"},
	core.DimensionStore:    {table: "stores", fkColumn: "store_id"},
}

func dimensionTable(kind core.Dimension) (dimensionMeta, error) {
	meta, ok := dimensions[kind]
	if !ok {
		return dimensionMeta{}, core.ErrUnknownDimension
	}
	return meta, nil
}

// ResolveDimension finds or creates the reference row for a label and returns
// its id. A blank label resolves to no reference (nil, nil) and creates
// nothing. The upsert is atomic: two callers racing on a new label hit the
// UNIQUE constraint on the normalized name and both get the surviving row's
// id. The first writer's display name wins; case is preserved.
func (r *Repository) ResolveDimension(ctx context.Context, q DBTX, kind core.Dimension, label string) (*int64, error) {
	label = strings.TrimSpace(label)
	if label == "" {
		return nil, nil
	}

	meta, err := dimensionTable(kind)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`INSERT INTO %s (name, normalized_name) VALUES (?, ?)
		ON CONFLICT (normalized_name) DO UPDATE SET normalized_name = normalized_name
		RETURNING id`, meta.table)

	var id int64
	if err := q.QueryRowContext(ctx, query, label, core.NormalizeLabel(label)).Scan(&id); err != nil {
		return nil, fmt.Errorf("resolve %s %q: %w", kind, label, err)
	}
	return &id, nil
}

// ResolveLabels resolves a batch of labels, touching storage once per
// distinct normalized label. The returned map is keyed by the raw label so
// every occurrence in the batch finds its id.
func (r *Repository) ResolveLabels(ctx context.Context, q DBTX, kind core.Dimension, labels []string) (map[string]*int64, error) {
	resolved := make(map[string]*int64, len(labels))
	byNormalized := make(map[string]*int64)

	for _, label := range labels {
		trimmed := strings.TrimSpace(label)
		if trimmed == "" {
			resolved[label] = nil
			continue
		}
		norm := core.NormalizeLabel(trimmed)
		if id, ok := byNormalized[norm]; ok {
			resolved[label] = id
			continue
		}
		id, err := r.ResolveDimension(ctx, q, kind, trimmed)
		if err != nil {
			return nil, err
		}
		byNormalized[norm] = id
		resolved[label] = id
	}

	return resolved, nil
}

// DimensionName returns the display name for a dimension id.
func (r *Repository) DimensionName(ctx context.Context, kind core.Dimension, id int64) (string, error) {
	meta, err := dimensionTable(kind)
	if err != nil {
		return "", err
	}
	var name string
	query := fmt.Sprintf("SELECT name FROM %s WHERE id = ?", meta.table)
	if err := r.db.QueryRowContext(ctx, query, id).Scan(&name); err != nil {
		return "", fmt.Errorf("get %s name: %w", kind, err)
	}
	return name, nil
}

// ListDimensionNames returns the distinct dimension names the owner has at
// least one expense against, name ascending. Dimension rows are shared
// across users, so the join through owner-filtered expenses is what keeps
// one user's labels invisible to another.
func (r *Repository) ListDimensionNames(ctx context.Context, userID int64, kind core.Dimension) ([]string, error) {
	meta, err := dimensionTable(kind)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`SELECT DISTINCT d.name
		FROM %s d
		JOIN expenses e ON e.%s = d.id
		WHERE e.user_id = ?
		ORDER BY d.name`, meta.table, meta.fkColumn)

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list %s names: %w", kind, err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan %s name: %w", kind, err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}
