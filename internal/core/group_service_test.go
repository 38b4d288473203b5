package core

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tablevote-backend-go/internal/db"
	"tablevote-backend-go/internal/models"
)

// fakeGroupRepository is an in-memory db.GroupRepository used to exercise
// the service layer without Firestore.
type fakeGroupRepository struct {
	groups map[string]*models.Group
	nextID int
}

func newFakeGroupRepository() *fakeGroupRepository {
	return &fakeGroupRepository{groups: make(map[string]*models.Group)}
}

func (f *fakeGroupRepository) Create(_ context.Context, group *models.Group) (string, error) {
	f.nextID++
	group.ID = fmt.Sprintf("group-%d", f.nextID)
	copied := *group
	f.groups[group.ID] = &copied
	return group.ID, nil
}

func (f *fakeGroupRepository) GetByID(_ context.Context, groupID string) (*models.Group, error) {
	group, ok := f.groups[groupID]
	if !ok {
		return nil, db.ErrNotFound
	}
	copied := *group
	return &copied, nil
}

func (f *fakeGroupRepository) ListByMember(_ context.Context, email string) ([]*models.Group, error) {
	var out []*models.Group
	for _, g := range f.groups {
		if g.HasMember(email) {
			copied := *g
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (f *fakeGroupRepository) UpdateMembers(_ context.Context, groupID string, members []string) error {
	group, ok := f.groups[groupID]
	if !ok {
		return db.ErrNotFound
	}
	group.Members = members
	return nil
}

func (f *fakeGroupRepository) AddRestaurants(_ context.Context, groupID string, restaurantIDs []string) ([]string, error) {
	group, ok := f.groups[groupID]
	if !ok {
		return nil, db.ErrNotFound
	}
	return group.MergeRestaurants(restaurantIDs), nil
}

func (f *fakeGroupRepository) LeaveGroup(_ context.Context, groupID, email string) (bool, error) {
	group, ok := f.groups[groupID]
	if !ok {
		return false, db.ErrNotFound
	}
	group.RemoveMember(email)
	if len(group.Members) == 0 {
		delete(f.groups, groupID)
		return true, nil
	}
	return false, nil
}

func (f *fakeGroupRepository) Delete(_ context.Context, groupID string) error {
	if _, ok := f.groups[groupID]; !ok {
		return db.ErrNotFound
	}
	delete(f.groups, groupID)
	return nil
}

func (f *fakeGroupRepository) Watch(ctx context.Context, groupID string) <-chan db.GroupSnapshot {
	ch := make(chan db.GroupSnapshot)
	close(ch)
	return ch
}

func TestCreateGroupRequiresAuthentication(t *testing.T) {
	svc := NewGroupService(newFakeGroupRepository())

	_, err := svc.CreateGroup(context.Background(), "", models.CreateGroupRequest{Name: "Dinner"})

	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestCreateGroupRejectsBlankName(t *testing.T) {
	svc := NewGroupService(newFakeGroupRepository())

	_, err := svc.CreateGroup(context.Background(), "alice@example.com", models.CreateGroupRequest{Name: "   "})

	assert.ErrorIs(t, err, ErrBlankGroupName)
}

func TestCreateGroupDeduplicatesCreator(t *testing.T) {
	repo := newFakeGroupRepository()
	svc := NewGroupService(repo)

	group, err := svc.CreateGroup(context.Background(), "alice@example.com", models.CreateGroupRequest{
		Name:    "Dinner",
		Members: []string{"alice@example.com", "bob@example.com"},
	})

	require.NoError(t, err)
	assert.NotEmpty(t, group.ID)
	assert.Equal(t, []string{"alice@example.com", "bob@example.com"}, group.Members)
}

func TestGetGroupNotFound(t *testing.T) {
	svc := NewGroupService(newFakeGroupRepository())

	_, err := svc.GetGroup(context.Background(), "missing")

	assert.ErrorIs(t, err, ErrGroupNotFound)
}

func TestAddRestaurantsAllDuplicatesIsNoOp(t *testing.T) {
	repo := newFakeGroupRepository()
	svc := NewGroupService(repo)
	group, err := svc.CreateGroup(context.Background(), "alice@example.com", models.CreateGroupRequest{Name: "Dinner"})
	require.NoError(t, err)

	added, err := svc.AddRestaurants(context.Background(), group.ID, []string{"r1", "r2"})
	require.NoError(t, err)
	assert.Equal(t, []string{"r1", "r2"}, added)

	added, err = svc.AddRestaurants(context.Background(), group.ID, []string{"r1", "r2"})
	require.NoError(t, err)
	assert.Empty(t, added, "re-adding an existing shortlist is a no-op, not an error")
}

func TestAddRestaurantsRequiresAtLeastOneID(t *testing.T) {
	svc := NewGroupService(newFakeGroupRepository())

	_, err := svc.AddRestaurants(context.Background(), "group-1", nil)

	assert.ErrorIs(t, err, ErrNoRestaurants)
}

func TestLeaveGroupLastMemberDeletesGroup(t *testing.T) {
	repo := newFakeGroupRepository()
	svc := NewGroupService(repo)
	group, err := svc.CreateGroup(context.Background(), "alice@example.com", models.CreateGroupRequest{
		Name:    "Dinner",
		Members: []string{"bob@example.com"},
	})
	require.NoError(t, err)

	deleted, err := svc.LeaveGroup(context.Background(), "bob@example.com", group.ID)
	require.NoError(t, err)
	assert.False(t, deleted)

	deleted, err = svc.LeaveGroup(context.Background(), "alice@example.com", group.ID)
	require.NoError(t, err)
	assert.True(t, deleted, "the group is deleted when the last member leaves")

	_, err = svc.GetGroup(context.Background(), group.ID)
	assert.ErrorIs(t, err, ErrGroupNotFound)
}

func TestDeleteGroupOnlyByCreator(t *testing.T) {
	repo := newFakeGroupRepository()
	svc := NewGroupService(repo)
	group, err := svc.CreateGroup(context.Background(), "alice@example.com", models.CreateGroupRequest{
		Name:    "Dinner",
		Members: []string{"bob@example.com"},
	})
	require.NoError(t, err)

	err = svc.DeleteGroup(context.Background(), "bob@example.com", group.ID)
	assert.ErrorIs(t, err, ErrNotGroupCreator)

	err = svc.DeleteGroup(context.Background(), "alice@example.com", group.ID)
	require.NoError(t, err)

	_, err = svc.GetGroup(context.Background(), group.ID)
	assert.ErrorIs(t, err, ErrGroupNotFound)
}
