package db

import (
	"path/filepath"
	"testing"

	"growth_hub/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func TestAutoMigrateCreatesEveryTable(t *testing.T) {
	gdb, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "migrate.db")), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, AutoMigrate(gdb))
	// Running twice must be a no-op.
	require.NoError(t, AutoMigrate(gdb))

	for _, model := range Models() {
		require.True(t, gdb.Migrator().HasTable(model), "missing table for %T", model)
	}
}

func TestPromoteAdmin(t *testing.T) {
	gdb, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "promote.db")), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, AutoMigrate(gdb))
	u := domain.User{Username: "alice", Password: "x", Role: domain.RoleSeller}
	require.NoError(t, gdb.Create(&u).Error)

	require.NoError(t, PromoteAdmin(gdb, "Alice"))
	var got domain.User
	require.NoError(t, gdb.First(&got, u.ID).Error)
	assert.Equal(t, domain.RoleAdmin, got.Role)

	assert.ErrorIs(t, PromoteAdmin(gdb, "nobody"), gorm.ErrRecordNotFound)
}
