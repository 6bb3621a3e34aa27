package postgres

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/frahmantamala/ngo-platform/internal/directory"
	"github.com/jmoiron/sqlx"
)

const selectColumns = `SELECT id, name, category, mission, website, contact_email, contact_phone,
	location, total_donations_cents, approved_at
	FROM verified_organizations`

type DirectoryRepository struct {
	db *sqlx.DB
}

func NewDirectoryRepository(db *sqlx.DB) directory.Repository {
	return &DirectoryRepository{db: db}
}

func (r *DirectoryRepository) ListActive(ctx context.Context) ([]*directory.Row, error) {
	rows := []*directory.Row{}
	query := selectColumns + ` WHERE is_active = ? ORDER BY total_donations_cents DESC, name ASC`
	err := r.db.SelectContext(ctx, &rows, r.db.Rebind(query), true)
	return rows, err
}

func (r *DirectoryRepository) Search(ctx context.Context, q directory.SearchQuery) ([]*directory.Row, error) {
	var (
		clauses = []string{"is_active = ?"}
		args    = []interface{}{true}
	)
	if q.Keyword != "" {
		pattern := "%" + escapeLike(strings.ToLower(q.Keyword)) + "%"
		clauses = append(clauses, `(LOWER(name) LIKE ? ESCAPE '\' OR LOWER(mission) LIKE ? ESCAPE '\')`)
		args = append(args, pattern, pattern)
	}
	if q.Category != "" {
		clauses = append(clauses, "category = ?")
		args = append(args, q.Category)
	}

	query := selectColumns + " WHERE " + strings.Join(clauses, " AND ") + " ORDER BY name ASC"
	rows := []*directory.Row{}
	err := r.db.SelectContext(ctx, &rows, r.db.Rebind(query), args...)
	return rows, err
}

func (r *DirectoryRepository) Recent(ctx context.Context, limit int) ([]*directory.Row, error) {
	rows := []*directory.Row{}
	query := selectColumns + ` WHERE is_active = ? ORDER BY approved_at DESC LIMIT ?`
	err := r.db.SelectContext(ctx, &rows, r.db.Rebind(query), true, limit)
	return rows, err
}

func (r *DirectoryRepository) GetActive(ctx context.Context, id int64) (*directory.Row, error) {
	var row directory.Row
	query := selectColumns + ` WHERE id = ? AND is_active = ?`
	err := r.db.GetContext(ctx, &row, r.db.Rebind(query), id, true)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, directory.ErrOrganizationNotFound
		}
		return nil, err
	}
	return &row, nil
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
