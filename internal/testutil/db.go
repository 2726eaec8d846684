// Package testutil provides shared fixtures for backend tests.
package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"

	"craftnexus/internal/database"
	"craftnexus/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var dbSeq atomic.Int64

// NewSQLiteDB opens an isolated in-memory database with every persistent model migrated.
// One connection is shared so transactions and plain queries see the same data.
func NewSQLiteDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:craftnexus_test_%d?mode=memory&cache=shared", dbSeq.Add(1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(database.PersistentModels()...))
	return db
}

// CreateUser inserts a profile with the given username.
func CreateUser(t *testing.T, db *gorm.DB, username string, admin bool) *models.User {
	t.Helper()
	u := &models.User{
		ID:       uuid.New(),
		Username: username,
		Email:    username + "@example.com",
		IsAdmin:  admin,
	}
	require.NoError(t, db.Create(u).Error)
	return u
}
