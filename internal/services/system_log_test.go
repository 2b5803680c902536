package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taskhive/taskhive/internal/models"
)

func TestWriteAndListSystemLogs(t *testing.T) {
	db := setupTestDB(t)
	InitSystemLogger(db)
	defer InitSystemLogger(nil)

	userID := uint(7)
	LogInfo("project", "create", "project created", &userID, "127.0.0.1", "test-agent", map[string]string{"name": "hive"})
	LogWarning("auth", "login", "login failed", nil, "127.0.0.1", "test-agent", nil)

	svc := NewSystemLogService(db)
	resp, err := svc.List(&SystemLogListRequest{}, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(2), resp.Total)

	resp, err = svc.List(&SystemLogListRequest{Level: "warning"}, nil)
	require.NoError(t, err)
	require.Len(t, resp.Items, 1)
	assert.Equal(t, "auth", resp.Items[0].Module)

	resp, err = svc.List(&SystemLogListRequest{Module: "project"}, nil)
	require.NoError(t, err)
	require.Len(t, resp.Items, 1)
	assert.Contains(t, resp.Items[0].Extra, "hive")
}

func TestListSystemLogsScopedToUser(t *testing.T) {
	db := setupTestDB(t)
	InitSystemLogger(db)
	defer InitSystemLogger(nil)

	alice := uint(1)
	bob := uint(2)
	LogInfo("project", "create", "project created", &alice, "10.0.0.1", "test-agent", nil)
	LogInfo("task", "create", "task created", &bob, "10.0.0.2", "test-agent", nil)
	LogInfo("system", "cleanup", "cleanup ran", nil, "", "", nil)

	svc := NewSystemLogService(db)

	resp, err := svc.List(&SystemLogListRequest{}, &alice)
	require.NoError(t, err)
	require.Len(t, resp.Items, 1)
	assert.Equal(t, int64(1), resp.Total)
	require.NotNil(t, resp.Items[0].UserID)
	assert.Equal(t, alice, *resp.Items[0].UserID)

	// A scoped list never surfaces another user's entries or the
	// unattributed system rows
	resp, err = svc.List(&SystemLogListRequest{Module: "task"}, &alice)
	require.NoError(t, err)
	assert.Zero(t, resp.Total)
	assert.Empty(t, resp.Items)
}

func TestCleanupOldLogs(t *testing.T) {
	db := setupTestDB(t)

	old := models.SystemLog{Level: "info", Module: "auth", Action: "login", CreatedAt: time.Now().AddDate(0, 0, -40)}
	recent := models.SystemLog{Level: "info", Module: "auth", Action: "login", CreatedAt: time.Now()}
	require.NoError(t, db.Create(&old).Error)
	require.NoError(t, db.Create(&recent).Error)

	svc := NewSystemLogService(db)

	deleted, err := svc.CleanupOldLogs(30)
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	var count int64
	db.Model(&models.SystemLog{}).Count(&count)
	assert.Equal(t, int64(1), count)

	// Retention of zero disables cleanup entirely
	deleted, err = svc.CleanupOldLogs(0)
	require.NoError(t, err)
	assert.Zero(t, deleted)
}
