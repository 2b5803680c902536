package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taskhive/taskhive/internal/models"
	"github.com/taskhive/taskhive/internal/permissions"
)

func TestJoinCreatesMembershipAndProfile(t *testing.T) {
	db := setupTestDB(t)
	svc := NewMembershipService(db)

	creator := createTestUser(t, db, "creator")
	member := createTestUser(t, db, "member")
	project := createTestProject(t, db, creator.ID, "hive")

	require.NoError(t, svc.Join(project.ID, member.ID))

	m, err := svc.GetMembership(project.ID, member.ID)
	require.NoError(t, err)
	assert.Equal(t, string(permissions.LevelRead), m.Level)

	var profile models.MemberProfile
	require.NoError(t, db.Where("project_id = ? AND user_id = ?", project.ID, member.ID).
		First(&profile).Error)
	assert.Nil(t, profile.DisplayName)
	assert.Nil(t, profile.Role)
}

func TestJoinIsIdempotent(t *testing.T) {
	db := setupTestDB(t)
	svc := NewMembershipService(db)

	creator := createTestUser(t, db, "creator")
	member := createTestUser(t, db, "member")
	project := createTestProject(t, db, creator.ID, "hive")

	require.NoError(t, svc.Join(project.ID, member.ID))
	require.NoError(t, svc.ChangeLevel(project.ID, creator.ID, member.ID, permissions.LevelModifyTasks))

	// A second join must not reset the level
	require.NoError(t, svc.Join(project.ID, member.ID))

	m, err := svc.GetMembership(project.ID, member.ID)
	require.NoError(t, err)
	assert.Equal(t, string(permissions.LevelModifyTasks), m.Level)

	var count int64
	db.Model(&models.Membership{}).
		Where("project_id = ? AND user_id = ?", project.ID, member.ID).
		Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestRejoinStartsOver(t *testing.T) {
	db := setupTestDB(t)
	svc := NewMembershipService(db)

	creator := createTestUser(t, db, "creator")
	member := createTestUser(t, db, "member")
	project := createTestProject(t, db, creator.ID, "hive")

	require.NoError(t, svc.Join(project.ID, member.ID))
	require.NoError(t, svc.ChangeLevel(project.ID, creator.ID, member.ID, permissions.LevelDeleteTasks))

	name := "Old Name"
	_, err := NewProfileService(db).Update(project.ID, member.ID, &UpdateProfileRequest{DisplayName: &name})
	require.NoError(t, err)

	require.NoError(t, svc.Leave(project.ID, member.ID))

	_, err = svc.GetMembership(project.ID, member.ID)
	assert.ErrorIs(t, err, ErrNotAMember)

	var profiles int64
	db.Model(&models.MemberProfile{}).
		Where("project_id = ? AND user_id = ?", project.ID, member.ID).
		Count(&profiles)
	assert.Equal(t, int64(0), profiles)

	// Rejoining starts from scratch: lowest level, blank profile
	require.NoError(t, svc.Join(project.ID, member.ID))

	m, err := svc.GetMembership(project.ID, member.ID)
	require.NoError(t, err)
	assert.Equal(t, string(permissions.LevelRead), m.Level)

	profile, err := NewProfileService(db).Get(project.ID, member.ID)
	require.NoError(t, err)
	assert.Nil(t, profile.DisplayName)
}

func TestChangeLevelRequiresDominance(t *testing.T) {
	db := setupTestDB(t)
	svc := NewMembershipService(db)

	creator := createTestUser(t, db, "creator")
	manager := createTestUser(t, db, "manager")
	member := createTestUser(t, db, "member")
	project := createTestProject(t, db, creator.ID, "hive")

	require.NoError(t, svc.Join(project.ID, manager.ID))
	require.NoError(t, svc.Join(project.ID, member.ID))
	require.NoError(t, svc.ChangeLevel(project.ID, creator.ID, manager.ID, permissions.LevelModifyTasks))

	// Granting a level at or above one's own is refused
	err := svc.ChangeLevel(project.ID, manager.ID, member.ID, permissions.LevelModifyTasks)
	assert.ErrorIs(t, err, ErrInsufficientPrivilege)
	err = svc.ChangeLevel(project.ID, manager.ID, member.ID, permissions.LevelDeleteProject)
	assert.ErrorIs(t, err, ErrInsufficientPrivilege)

	// Below one's own level is fine
	require.NoError(t, svc.ChangeLevel(project.ID, manager.ID, member.ID, permissions.LevelAddUsers))

	m, err := svc.GetMembership(project.ID, member.ID)
	require.NoError(t, err)
	assert.Equal(t, string(permissions.LevelAddUsers), m.Level)
}

func TestChangeLevelTargetMustBeBelowActor(t *testing.T) {
	db := setupTestDB(t)
	svc := NewMembershipService(db)

	creator := createTestUser(t, db, "creator")
	a := createTestUser(t, db, "alpha")
	b := createTestUser(t, db, "beta")
	project := createTestProject(t, db, creator.ID, "hive")

	require.NoError(t, svc.Join(project.ID, a.ID))
	require.NoError(t, svc.Join(project.ID, b.ID))
	require.NoError(t, svc.ChangeLevel(project.ID, creator.ID, a.ID, permissions.LevelModifyTasks))
	require.NoError(t, svc.ChangeLevel(project.ID, creator.ID, b.ID, permissions.LevelModifyTasks))

	// Peers at the same level cannot demote each other
	err := svc.ChangeLevel(project.ID, a.ID, b.ID, permissions.LevelRead)
	assert.ErrorIs(t, err, ErrInsufficientPrivilege)

	// And nobody touches the creator
	err = svc.ChangeLevel(project.ID, a.ID, creator.ID, permissions.LevelRead)
	assert.ErrorIs(t, err, ErrInsufficientPrivilege)
}

func TestChangeLevelCreatorIsReserved(t *testing.T) {
	db := setupTestDB(t)
	svc := NewMembershipService(db)

	creator := createTestUser(t, db, "creator")
	member := createTestUser(t, db, "member")
	project := createTestProject(t, db, creator.ID, "hive")

	require.NoError(t, svc.Join(project.ID, member.ID))

	err := svc.ChangeLevel(project.ID, creator.ID, member.ID, permissions.LevelCreator)
	assert.ErrorIs(t, err, ErrReservedLevel)
}

func TestChangeLevelUnknownTarget(t *testing.T) {
	db := setupTestDB(t)
	svc := NewMembershipService(db)

	creator := createTestUser(t, db, "creator")
	outsider := createTestUser(t, db, "outsider")
	project := createTestProject(t, db, creator.ID, "hive")

	err := svc.ChangeLevel(project.ID, creator.ID, outsider.ID, permissions.LevelRead)
	assert.ErrorIs(t, err, ErrNotAMember)
}

func TestRemoveRequiresManageAndDominance(t *testing.T) {
	db := setupTestDB(t)
	svc := NewMembershipService(db)

	creator := createTestUser(t, db, "creator")
	reader := createTestUser(t, db, "reader")
	manager := createTestUser(t, db, "manager")
	project := createTestProject(t, db, creator.ID, "hive")

	require.NoError(t, svc.Join(project.ID, reader.ID))
	require.NoError(t, svc.Join(project.ID, manager.ID))
	require.NoError(t, svc.ChangeLevel(project.ID, creator.ID, manager.ID, permissions.LevelAddUsers))

	// A plain reader cannot remove anyone
	err := svc.Remove(project.ID, reader.ID, manager.ID)
	assert.ErrorIs(t, err, ErrInsufficientPrivilege)

	// A manager cannot remove the creator
	err = svc.Remove(project.ID, manager.ID, creator.ID)
	assert.ErrorIs(t, err, ErrInsufficientPrivilege)

	// But can remove the reader below them
	require.NoError(t, svc.Remove(project.ID, manager.ID, reader.ID))
	_, err = svc.GetMembership(project.ID, reader.ID)
	assert.ErrorIs(t, err, ErrNotAMember)
}

func TestBulkChangeLevelIsAtomic(t *testing.T) {
	db := setupTestDB(t)
	svc := NewMembershipService(db)

	creator := createTestUser(t, db, "creator")
	a := createTestUser(t, db, "alpha")
	b := createTestUser(t, db, "beta")
	peer := createTestUser(t, db, "peer")
	actor := createTestUser(t, db, "actor")
	project := createTestProject(t, db, creator.ID, "hive")

	for _, u := range []*models.User{a, b, peer, actor} {
		require.NoError(t, svc.Join(project.ID, u.ID))
	}
	require.NoError(t, svc.ChangeLevel(project.ID, creator.ID, actor.ID, permissions.LevelDeleteTasks))
	require.NoError(t, svc.ChangeLevel(project.ID, creator.ID, peer.ID, permissions.LevelDeleteTasks))

	// peer is at the actor's own level, so the whole batch must fail
	err := svc.BulkChangeLevel(project.ID, actor.ID, []uint{a.ID, b.ID, peer.ID}, permissions.LevelModifyTasks)
	assert.ErrorIs(t, err, ErrInsufficientPrivilege)

	for _, id := range []uint{a.ID, b.ID} {
		m, err := svc.GetMembership(project.ID, id)
		require.NoError(t, err)
		assert.Equal(t, string(permissions.LevelRead), m.Level)
	}

	// Without the offending target the batch goes through
	require.NoError(t, svc.BulkChangeLevel(project.ID, actor.ID, []uint{a.ID, b.ID}, permissions.LevelModifyTasks))
	for _, id := range []uint{a.ID, b.ID} {
		m, err := svc.GetMembership(project.ID, id)
		require.NoError(t, err)
		assert.Equal(t, string(permissions.LevelModifyTasks), m.Level)
	}
}

func TestBulkRemoveIsAtomic(t *testing.T) {
	db := setupTestDB(t)
	svc := NewMembershipService(db)

	creator := createTestUser(t, db, "creator")
	a := createTestUser(t, db, "alpha")
	actor := createTestUser(t, db, "actor")
	project := createTestProject(t, db, creator.ID, "hive")

	require.NoError(t, svc.Join(project.ID, a.ID))
	require.NoError(t, svc.Join(project.ID, actor.ID))
	require.NoError(t, svc.ChangeLevel(project.ID, creator.ID, actor.ID, permissions.LevelAddUsers))

	// The creator in the batch poisons the whole removal
	err := svc.BulkRemove(project.ID, actor.ID, []uint{a.ID, creator.ID})
	assert.ErrorIs(t, err, ErrInsufficientPrivilege)

	_, err = svc.GetMembership(project.ID, a.ID)
	assert.NoError(t, err)

	require.NoError(t, svc.BulkRemove(project.ID, actor.ID, []uint{a.ID}))
	_, err = svc.GetMembership(project.ID, a.ID)
	assert.ErrorIs(t, err, ErrNotAMember)
}

func TestEligibleTargets(t *testing.T) {
	db := setupTestDB(t)
	svc := NewMembershipService(db)

	creator := createTestUser(t, db, "creator")
	below := createTestUser(t, db, "below")
	peer := createTestUser(t, db, "peer")
	above := createTestUser(t, db, "above")
	actor := createTestUser(t, db, "actor")
	project := createTestProject(t, db, creator.ID, "hive")

	for _, u := range []*models.User{below, peer, above, actor} {
		require.NoError(t, svc.Join(project.ID, u.ID))
	}
	require.NoError(t, svc.ChangeLevel(project.ID, creator.ID, actor.ID, permissions.LevelModifyTasks))
	require.NoError(t, svc.ChangeLevel(project.ID, creator.ID, peer.ID, permissions.LevelModifyTasks))
	require.NoError(t, svc.ChangeLevel(project.ID, creator.ID, above.ID, permissions.LevelDeleteTasks))

	targets, err := svc.EligibleTargets(project.ID, actor.ID)
	require.NoError(t, err)

	ids := make([]uint, 0, len(targets))
	for _, m := range targets {
		ids = append(ids, m.UserID)
	}
	assert.Equal(t, []uint{below.ID}, ids)
}

func TestAssignableLevels(t *testing.T) {
	db := setupTestDB(t)
	svc := NewMembershipService(db)

	creator := createTestUser(t, db, "creator")
	member := createTestUser(t, db, "member")
	project := createTestProject(t, db, creator.ID, "hive")

	require.NoError(t, svc.Join(project.ID, member.ID))
	require.NoError(t, svc.ChangeLevel(project.ID, creator.ID, member.ID, permissions.LevelModifyTasks))

	levels, err := svc.AssignableLevels(project.ID, member.ID)
	require.NoError(t, err)
	assert.Equal(t, []permissions.Level{
		permissions.LevelRead,
		permissions.LevelAddUsers,
		permissions.LevelModifyTasks,
	}, levels)

	// The creator can hand out everything except the creator level itself
	levels, err = svc.AssignableLevels(project.ID, creator.ID)
	require.NoError(t, err)
	assert.NotContains(t, levels, permissions.LevelCreator)
	assert.Len(t, levels, 6)
}
