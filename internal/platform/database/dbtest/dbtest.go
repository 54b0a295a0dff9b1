// Package dbtest hands each test its own migrated in-memory store.
package dbtest

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/Apurer/go-gin-supply-api/internal/platform/database"
	"github.com/Apurer/go-gin-supply-api/internal/platform/migrations"
)

// Open returns a freshly migrated sqlite database that lives until the test
// ends. Databases are named per call so parallel tests never share rows.
func Open(t testing.TB) *gorm.DB {
	t.Helper()
	ctx := context.Background()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := database.Open(ctx, database.Config{
		Driver:   database.DriverSQLite,
		DSN:      dsn,
		LogLevel: gormlogger.Silent,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close(db) })
	require.NoError(t, migrations.Run(ctx, db, nil))
	return db
}
