package services

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/oceanwatch/marinewatch/internal/config"
	"github.com/oceanwatch/marinewatch/internal/models"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	// A uniquely named shared-cache DSN so every pooled connection sees the
	// same in-memory database for the duration of the test.
	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(&models.User{}, &models.RefreshToken{}, &models.Report{}))
	return db
}

func testConfig() *config.Config {
	return &config.Config{
		JWTSecret:        "test-secret",
		JWTAccessExpiry:  time.Hour,
		JWTRefreshExpiry: 24 * time.Hour,
	}
}

func seedUser(t *testing.T, db *gorm.DB, role string) *models.User {
	t.Helper()

	user := &models.User{
		ID:       uuid.New(),
		Name:     "Test User",
		Email:    uuid.NewString() + "@example.com",
		Password: "irrelevant",
		Role:     role,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func seedReport(t *testing.T, db *gorm.DB, ownerID uuid.UUID, mutate ...func(*models.Report)) *models.Report {
	t.Helper()

	report := &models.Report{
		ID:      uuid.New(),
		OwnerID: ownerID,
		Title:   "Debris sighting",
		Status:  models.StatusPending,
	}
	for _, m := range mutate {
		m(report)
	}
	require.NoError(t, db.Create(report).Error)
	return report
}

func strPtr(s string) *string   { return &s }
func f64Ptr(f float64) *float64 { return &f }

func TestSetupTestDB_SharedAcrossConnections(t *testing.T) {
	db := setupTestDB(t)
	user := seedUser(t, db, models.RolePublic)

	// Force subsequent queries onto a fresh pooled connection.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxIdleConns(0)

	var got models.User
	require.NoError(t, db.First(&got, "id = ?", user.ID).Error)
	require.Equal(t, user.Email, got.Email)
}
