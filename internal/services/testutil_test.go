package services

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/taskhive/taskhive/internal/models"
	"github.com/taskhive/taskhive/internal/utils"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

var testDBSeq atomic.Int64

var (
	testStart = time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	testEnd   = time.Date(2025, 3, 8, 17, 0, 0, 0, time.UTC)
)

// setupTestDB opens a fresh in-memory database with the full schema
// migrated. Each call gets its own database so tests stay independent.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:testdb%d?mode=memory&cache=shared", testDBSeq.Add(1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.RefreshToken{},
		&models.Project{},
		&models.Membership{},
		&models.MemberProfile{},
		&models.Task{},
		&models.Attachment{},
		&models.SystemLog{},
	))

	return db
}

func createTestUser(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()

	hashed, err := utils.HashPassword("password123")
	require.NoError(t, err)

	user := &models.User{
		Username: username,
		Password: hashed,
		IsActive: true,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func createTestProject(t *testing.T, db *gorm.DB, creatorID uint, name string) *models.Project {
	t.Helper()

	svc := NewProjectService(db, NewMembershipService(db), nil)
	project, err := svc.Create(creatorID, &CreateProjectRequest{Name: name})
	require.NoError(t, err)
	return project
}
