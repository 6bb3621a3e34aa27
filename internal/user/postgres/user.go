package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/frahmantamala/ngo-platform/internal/core/datamodel/user"
	domain "github.com/frahmantamala/ngo-platform/internal/user"
	"github.com/jmoiron/sqlx"
)

type userRow struct {
	ID        int64        `db:"id"`
	Email     string       `db:"email"`
	Name      string       `db:"name"`
	IsActive  bool         `db:"is_active"`
	CreatedAt sql.NullTime `db:"created_at"`
	UpdatedAt sql.NullTime `db:"updated_at"`
}

type pgRepo struct {
	db *sqlx.DB
}

func NewUserRepository(db *sqlx.DB) domain.Repository {
	return &pgRepo{db: db}
}

func (p *pgRepo) GetByID(ctx context.Context, id int64) (*user.User, error) {
	var row userRow
	query := p.db.Rebind(`SELECT id, email, name, is_active, created_at, updated_at FROM users WHERE id = ?`)
	if err := p.db.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return &user.User{
		ID:        row.ID,
		Email:     row.Email,
		Name:      row.Name,
		IsActive:  row.IsActive,
		CreatedAt: row.CreatedAt.Time,
		UpdatedAt: row.UpdatedAt.Time,
	}, nil
}

func (p *pgRepo) GetPermissions(ctx context.Context, userID int64) ([]string, error) {
	perms := []string{}
	query := p.db.Rebind(`
SELECT p.name
FROM user_permissions up
JOIN permissions p ON up.permission_id = p.id
WHERE up.user_id = ?
ORDER BY p.name
`)
	if err := p.db.SelectContext(ctx, &perms, query, userID); err != nil {
		return nil, fmt.Errorf("get permissions: %w", err)
	}
	return perms, nil
}
