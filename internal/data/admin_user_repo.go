package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/target/admin-sso-bridge/internal/data/pgxutil"
	domainauth "github.com/target/admin-sso-bridge/internal/domain/auth"
	apperrors "github.com/target/admin-sso-bridge/internal/errors"
)

// AdminUserRepo provides database operations for administrative accounts.
type AdminUserRepo struct {
	DB           *sql.DB
	timeProvider TimeProvider
}

// NewAdminUserRepo creates a new AdminUserRepo with the real time provider.
func NewAdminUserRepo(db *sql.DB) *AdminUserRepo {
	return &AdminUserRepo{DB: db, timeProvider: &RealTimeProvider{}}
}

// NewAdminUserRepoWithTimeProvider creates a new AdminUserRepo with a custom time provider (useful for tests).
func NewAdminUserRepoWithTimeProvider(db *sql.DB, tp TimeProvider) *AdminUserRepo {
	return &AdminUserRepo{DB: db, timeProvider: tp}
}

// adminUserRow is the flat row shape of admin_users; roles are loaded
// separately from the join table.
type adminUserRow struct {
	ID          string     `db:"id"`
	Email       *string    `db:"email"`
	Username    string     `db:"username"`
	FirstName   string     `db:"first_name"`
	LastName    string     `db:"last_name"`
	IsActive    bool       `db:"is_active"`
	LastLoginAt *time.Time `db:"last_login_at"`
	CreatedAt   time.Time  `db:"created_at"`
	UpdatedAt   time.Time  `db:"updated_at"`
}

func (r adminUserRow) toDomain() domainauth.AdminUser {
	email := ""
	if r.Email != nil {
		email = *r.Email
	}
	return domainauth.AdminUser{
		ID:          r.ID,
		Email:       email,
		Username:    r.Username,
		FirstName:   r.FirstName,
		LastName:    r.LastName,
		IsActive:    r.IsActive,
		LastLoginAt: r.LastLoginAt,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

const adminUserColumns = `id, email, username, first_name, last_name, is_active, last_login_at, created_at, updated_at`

const (
	adminUserByEmailQuery = `
		SELECT ` + adminUserColumns + `
		FROM admin_users
		WHERE email = $1`

	adminUserByUsernameQuery = `
		SELECT ` + adminUserColumns + `
		FROM admin_users
		WHERE username = $1`

	adminUserRolesQuery = `
		SELECT r.id, r.code, r.name
		FROM admin_roles r
		JOIN admin_user_roles ur ON ur.role_id = r.id
		WHERE ur.user_id = $1
		ORDER BY r.code`
)

// FindByEmail returns the account whose email matches exactly.
// Email is the sole authoritative lookup key for the SSO exchange.
func (r *AdminUserRepo) FindByEmail(ctx context.Context, email string) (*domainauth.AdminUser, error) {
	return r.getByQuery(ctx, adminUserByEmailQuery, strings.TrimSpace(email))
}

// FindByUsername returns the account whose username matches exactly.
// Used only for the legacy-repair path where a migrated record's username
// holds an email value.
func (r *AdminUserRepo) FindByUsername(ctx context.Context, username string) (*domainauth.AdminUser, error) {
	return r.getByQuery(ctx, adminUserByUsernameQuery, strings.TrimSpace(username))
}

// Create inserts a new account and attaches the given role in one
// transaction. The UNIQUE constraint on email is the race guard for
// concurrent provisioning; callers detect the loss of that race via
// apperrors.IsUniqueViolation.
func (r *AdminUserRepo) Create(
	ctx context.Context,
	user domainauth.AdminUser,
	role domainauth.Role,
) (*domainauth.AdminUser, error) {
	now := r.timeProvider.Now().UTC()
	id := user.ID
	if id == "" {
		id = uuid.NewString()
	}

	var row adminUserRow
	err := pgxutil.WithPgxTx(ctx, r.DB, func(tx pgx.Tx) error {
		rows, err := tx.Query(ctx, `
			INSERT INTO admin_users (
				id, email, username, first_name, last_name, is_active, last_login_at, created_at, updated_at
			) VALUES (
				$1, $2, $3, $4, $5, $6, NULL, $7, $7
			) RETURNING `+adminUserColumns,
			id,
			strings.TrimSpace(user.Email),
			strings.TrimSpace(user.Username),
			user.FirstName,
			user.LastName,
			user.IsActive,
			now,
		)
		if err != nil {
			return err
		}
		defer rows.Close()
		row, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[adminUserRow])
		if err != nil {
			return err
		}

		_, err = tx.Exec(ctx,
			`INSERT INTO admin_user_roles (user_id, role_id) VALUES ($1, $2)`,
			row.ID, role.ID,
		)
		return err
	})
	if err != nil {
		return nil, apperrors.MapDBError(err)
	}

	out := row.toDomain()
	out.Roles = []domainauth.Role{role}
	return &out, nil
}

// UpdateNames sets the display-name fields from the SSO claim (the claim
// is the source of truth for display names) and stamps last login.
func (r *AdminUserRepo) UpdateNames(ctx context.Context, id, firstName, lastName string) (*domainauth.AdminUser, error) {
	now := r.timeProvider.Now().UTC()
	return r.updateByQuery(ctx, `
		UPDATE admin_users
		SET first_name = $2, last_name = $3, last_login_at = $4, updated_at = $4
		WHERE id = $1
		RETURNING `+adminUserColumns,
		id, firstName, lastName, now,
	)
}

// RepairLegacyEmail sets the email on a legacy record matched by username
// and marks it active.
func (r *AdminUserRepo) RepairLegacyEmail(ctx context.Context, id, email string) (*domainauth.AdminUser, error) {
	now := r.timeProvider.Now().UTC()
	return r.updateByQuery(ctx, `
		UPDATE admin_users
		SET email = $2, is_active = TRUE, last_login_at = $3, updated_at = $3
		WHERE id = $1
		RETURNING `+adminUserColumns,
		id, strings.TrimSpace(email), now,
	)
}

// TouchLastLogin stamps the last-login timestamp without touching names.
func (r *AdminUserRepo) TouchLastLogin(ctx context.Context, id string) error {
	now := r.timeProvider.Now().UTC()
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		ct, execErr := conn.Exec(ctx,
			`UPDATE admin_users SET last_login_at = $2 WHERE id = $1`, id, now)
		if execErr != nil {
			return execErr
		}
		if ct.RowsAffected() == 0 {
			return ErrUserNotFound
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return err
		}
		return fmt.Errorf("touch last login: %w", apperrors.MapDBError(err))
	}
	return nil
}

// --- helpers ---

func (r *AdminUserRepo) getByQuery(ctx context.Context, q string, arg string) (*domainauth.AdminUser, error) {
	var row adminUserRow
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, queryErr := conn.Query(ctx, q, arg)
		if queryErr != nil {
			return queryErr
		}
		defer rows.Close()
		var collectErr error
		row, collectErr = pgx.CollectOneRow(rows, pgx.RowToStructByName[adminUserRow])
		return collectErr
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("get admin user: %w", apperrors.MapDBError(err))
	}
	return r.withRoles(ctx, row)
}

func (r *AdminUserRepo) updateByQuery(ctx context.Context, q string, args ...any) (*domainauth.AdminUser, error) {
	var row adminUserRow
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, queryErr := conn.Query(ctx, q, args...)
		if queryErr != nil {
			return queryErr
		}
		defer rows.Close()
		var collectErr error
		row, collectErr = pgx.CollectOneRow(rows, pgx.RowToStructByName[adminUserRow])
		return collectErr
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("update admin user: %w", apperrors.MapDBError(err))
	}
	return r.withRoles(ctx, row)
}

// withRoles loads the account's roles from the join table.
func (r *AdminUserRepo) withRoles(ctx context.Context, row adminUserRow) (*domainauth.AdminUser, error) {
	var roles []roleRow
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, queryErr := conn.Query(ctx, adminUserRolesQuery, row.ID)
		if queryErr != nil {
			return queryErr
		}
		defer rows.Close()
		var collectErr error
		roles, collectErr = pgx.CollectRows(rows, pgx.RowToStructByName[roleRow])
		return collectErr
	})
	if err != nil {
		return nil, fmt.Errorf("load admin user roles: %w", apperrors.MapDBError(err))
	}

	out := row.toDomain()
	out.Roles = make([]domainauth.Role, len(roles))
	for i, rr := range roles {
		out.Roles[i] = rr.toDomain()
	}
	return &out, nil
}
