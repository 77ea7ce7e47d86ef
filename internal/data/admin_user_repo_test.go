package data

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	domainauth "github.com/target/admin-sso-bridge/internal/domain/auth"
	apperrors "github.com/target/admin-sso-bridge/internal/errors"
	"github.com/target/admin-sso-bridge/internal/testutil"
)

func superAdminRole(t *testing.T, db *sql.DB) domainauth.Role {
	t.Helper()
	role, err := NewRoleRepo(db).FindByCode(context.Background(), "super-admin")
	require.NoError(t, err, "super-admin role should be seeded by migrations")
	return *role
}

func uniqueEmail() string {
	return fmt.Sprintf("user-%d@example.com", time.Now().UnixNano())
}

func TestAdminUserRepo_CreateAndFindByEmail(t *testing.T) {
	testutil.SkipIfNoTestDB(t)

	testutil.WithTestDB(t, func(db *sql.DB) {
		ctx := context.Background()
		repo := NewAdminUserRepo(db)
		role := superAdminRole(t, db)
		email := uniqueEmail()

		created, err := repo.Create(ctx, domainauth.AdminUser{
			Email:     email,
			Username:  email,
			FirstName: "Jane",
			LastName:  "Doe",
			IsActive:  true,
		}, role)
		require.NoError(t, err)
		require.NotEmpty(t, created.ID)
		assert.Equal(t, email, created.Email)
		assert.Equal(t, email, created.Username)
		assert.True(t, created.IsActive)
		assert.Nil(t, created.LastLoginAt)
		require.Len(t, created.Roles, 1)
		assert.Equal(t, "super-admin", created.Roles[0].Code)

		found, err := repo.FindByEmail(ctx, email)
		require.NoError(t, err)
		assert.Equal(t, created.ID, found.ID)
		require.Len(t, found.Roles, 1)
	})
}

func TestAdminUserRepo_FindByEmail_NotFound(t *testing.T) {
	testutil.SkipIfNoTestDB(t)

	testutil.WithTestDB(t, func(db *sql.DB) {
		repo := NewAdminUserRepo(db)
		_, err := repo.FindByEmail(context.Background(), "nobody@example.com")
		assert.ErrorIs(t, err, ErrUserNotFound)
	})
}

func TestAdminUserRepo_Create_DuplicateEmailIsUniqueViolation(t *testing.T) {
	testutil.SkipIfNoTestDB(t)

	testutil.WithTestDB(t, func(db *sql.DB) {
		ctx := context.Background()
		repo := NewAdminUserRepo(db)
		role := superAdminRole(t, db)
		email := uniqueEmail()

		_, err := repo.Create(ctx, domainauth.AdminUser{
			Email: email, Username: email, IsActive: true,
		}, role)
		require.NoError(t, err)

		_, err = repo.Create(ctx, domainauth.AdminUser{
			Email: email, Username: "other-" + email, IsActive: true,
		}, role)
		require.Error(t, err)
		assert.True(t, apperrors.IsUniqueViolation(err))
	})
}

func TestAdminUserRepo_UpdateNames(t *testing.T) {
	testutil.SkipIfNoTestDB(t)

	testutil.WithTestDB(t, func(db *sql.DB) {
		ctx := context.Background()
		repo := NewAdminUserRepo(db)
		role := superAdminRole(t, db)
		email := uniqueEmail()

		created, err := repo.Create(ctx, domainauth.AdminUser{
			Email: email, Username: email, FirstName: "Old", LastName: "Name", IsActive: true,
		}, role)
		require.NoError(t, err)

		updated, err := repo.UpdateNames(ctx, created.ID, "New", "Name")
		require.NoError(t, err)
		assert.Equal(t, "New", updated.FirstName)
		assert.Equal(t, "Name", updated.LastName)
		require.NotNil(t, updated.LastLoginAt)
	})
}

func TestAdminUserRepo_RepairLegacyEmail(t *testing.T) {
	testutil.SkipIfNoTestDB(t)

	testutil.WithTestDB(t, func(db *sql.DB) {
		ctx := context.Background()
		repo := NewAdminUserRepo(db)
		email := uniqueEmail()

		// Seed a migrated record: email column empty, username holds the
		// email, account deactivated.
		id := uuid.NewString()
		_, err := db.ExecContext(ctx, `
			INSERT INTO admin_users (id, email, username, first_name, last_name, is_active, created_at, updated_at)
			VALUES ($1, NULL, $2, '', '', FALSE, NOW(), NOW())`, id, email)
		require.NoError(t, err)

		legacy, err := repo.FindByUsername(ctx, email)
		require.NoError(t, err)
		assert.Equal(t, id, legacy.ID)
		assert.Empty(t, legacy.Email)
		assert.False(t, legacy.IsActive)

		repaired, err := repo.RepairLegacyEmail(ctx, id, email)
		require.NoError(t, err)
		assert.Equal(t, email, repaired.Email)
		assert.True(t, repaired.IsActive)
		require.NotNil(t, repaired.LastLoginAt)

		// Now resolvable by email like any other account.
		found, err := repo.FindByEmail(ctx, email)
		require.NoError(t, err)
		assert.Equal(t, id, found.ID)
	})
}

func TestAdminUserRepo_TouchLastLogin(t *testing.T) {
	testutil.SkipIfNoTestDB(t)

	testutil.WithTestDB(t, func(db *sql.DB) {
		ctx := context.Background()
		repo := NewAdminUserRepo(db)
		role := superAdminRole(t, db)
		email := uniqueEmail()

		created, err := repo.Create(ctx, domainauth.AdminUser{
			Email: email, Username: email, IsActive: true,
		}, role)
		require.NoError(t, err)

		require.NoError(t, repo.TouchLastLogin(ctx, created.ID))

		found, err := repo.FindByEmail(ctx, email)
		require.NoError(t, err)
		require.NotNil(t, found.LastLoginAt)

		assert.ErrorIs(t, repo.TouchLastLogin(ctx, uuid.NewString()), ErrUserNotFound)
	})
}

func TestRoleRepo_FindByCode(t *testing.T) {
	testutil.SkipIfNoTestDB(t)

	testutil.WithTestDB(t, func(db *sql.DB) {
		ctx := context.Background()
		repo := NewRoleRepo(db)

		role, err := repo.FindByCode(ctx, "super-admin")
		require.NoError(t, err)
		assert.Equal(t, "super-admin", role.Code)
		assert.NotEmpty(t, role.ID)

		_, err = repo.FindByCode(ctx, "no-such-role")
		assert.ErrorIs(t, err, ErrRoleNotFound)
	})
}
