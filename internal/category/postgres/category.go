package postgres

import (
	"context"
	"fmt"

	"github.com/frahmantamala/ngo-platform/internal/category"
	"github.com/jmoiron/sqlx"
)

type CategoryRepository struct {
	db *sqlx.DB
}

func NewCategoryRepository(db *sqlx.DB) category.RepositoryAPI {
	return &CategoryRepository{db: db}
}

type countRow struct {
	Category string `db:"category"`
	Count    int    `db:"count"`
}

func (r *CategoryRepository) CountActiveByCategory(ctx context.Context) (map[string]int, error) {
	var rows []countRow
	query := `
SELECT category, COUNT(*) AS count
FROM verified_organizations
WHERE is_active = TRUE
GROUP BY category
`
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("count organizations by category: %w", err)
	}

	counts := make(map[string]int, len(rows))
	for _, row := range rows {
		counts[row.Category] = row.Count
	}
	return counts, nil
}
