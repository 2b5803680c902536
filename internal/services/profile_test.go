package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProfileUpdateAndClear(t *testing.T) {
	db := setupTestDB(t)
	memberships := NewMembershipService(db)
	svc := NewProfileService(db)

	creator := createTestUser(t, db, "creator")
	member := createTestUser(t, db, "member")
	project := createTestProject(t, db, creator.ID, "hive")
	require.NoError(t, memberships.Join(project.ID, member.ID))

	name := "Member One"
	role := "tester"
	_, err := svc.Update(project.ID, member.ID, &UpdateProfileRequest{
		DisplayName: &name,
		Role:        &role,
	})
	require.NoError(t, err)

	profile, err := svc.Get(project.ID, member.ID)
	require.NoError(t, err)
	require.NotNil(t, profile.DisplayName)
	assert.Equal(t, "Member One", *profile.DisplayName)
	require.NotNil(t, profile.Role)
	assert.Equal(t, "tester", *profile.Role)
	assert.Nil(t, profile.PhoneNumber)

	// An empty string clears the field back to unset
	empty := ""
	_, err = svc.Update(project.ID, member.ID, &UpdateProfileRequest{Role: &empty})
	require.NoError(t, err)

	profile, err = svc.Get(project.ID, member.ID)
	require.NoError(t, err)
	assert.Nil(t, profile.Role)
	require.NotNil(t, profile.DisplayName)
	assert.Equal(t, "Member One", *profile.DisplayName)
}

func TestProfileScopedPerProject(t *testing.T) {
	db := setupTestDB(t)
	memberships := NewMembershipService(db)
	svc := NewProfileService(db)

	creator := createTestUser(t, db, "creator")
	member := createTestUser(t, db, "member")
	projectA := createTestProject(t, db, creator.ID, "a")
	projectB := createTestProject(t, db, creator.ID, "b")
	require.NoError(t, memberships.Join(projectA.ID, member.ID))
	require.NoError(t, memberships.Join(projectB.ID, member.ID))

	name := "Only in A"
	_, err := svc.Update(projectA.ID, member.ID, &UpdateProfileRequest{DisplayName: &name})
	require.NoError(t, err)

	inB, err := svc.Get(projectB.ID, member.ID)
	require.NoError(t, err)
	assert.Nil(t, inB.DisplayName)
}

func TestProfileNonMember(t *testing.T) {
	db := setupTestDB(t)
	svc := NewProfileService(db)

	creator := createTestUser(t, db, "creator")
	outsider := createTestUser(t, db, "outsider")
	project := createTestProject(t, db, creator.ID, "hive")

	_, err := svc.Get(project.ID, outsider.ID)
	assert.ErrorIs(t, err, ErrNotAMember)

	name := "ghost"
	_, err = svc.Update(project.ID, outsider.ID, &UpdateProfileRequest{DisplayName: &name})
	assert.ErrorIs(t, err, ErrNotAMember)
}
