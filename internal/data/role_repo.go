package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/target/admin-sso-bridge/internal/data/pgxutil"
	domainauth "github.com/target/admin-sso-bridge/internal/domain/auth"
	apperrors "github.com/target/admin-sso-bridge/internal/errors"
)

// RoleRepo provides database operations for administrative roles.
type RoleRepo struct {
	DB *sql.DB
}

// NewRoleRepo creates a new RoleRepo.
func NewRoleRepo(db *sql.DB) *RoleRepo {
	return &RoleRepo{DB: db}
}

type roleRow struct {
	ID   string `db:"id"`
	Code string `db:"code"`
	Name string `db:"name"`
}

func (r roleRow) toDomain() domainauth.Role {
	return domainauth.Role{ID: r.ID, Code: r.Code, Name: r.Name}
}

// FindByCode resolves a role by its well-known code.
func (r *RoleRepo) FindByCode(ctx context.Context, code string) (*domainauth.Role, error) {
	var row roleRow
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, queryErr := conn.Query(ctx,
			`SELECT id, code, name FROM admin_roles WHERE code = $1`,
			strings.TrimSpace(code),
		)
		if queryErr != nil {
			return queryErr
		}
		defer rows.Close()
		var collectErr error
		row, collectErr = pgx.CollectOneRow(rows, pgx.RowToStructByName[roleRow])
		return collectErr
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrRoleNotFound
		}
		return nil, fmt.Errorf("get role by code: %w", apperrors.MapDBError(err))
	}

	out := row.toDomain()
	return &out, nil
}
