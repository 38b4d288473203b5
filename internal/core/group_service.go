package core

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"tablevote-backend-go/internal/db"
	"tablevote-backend-go/internal/models"
)

// Custom errors for the GroupService.
var (
	ErrUnauthenticated = errors.New("authentication required")
	ErrBlankGroupName  = errors.New("group name cannot be blank")
	ErrBlankGroupID    = errors.New("group id cannot be blank")
	ErrNoRestaurants   = errors.New("at least one restaurant id is required")
	ErrGroupNotFound   = errors.New("group not found")
	ErrNotGroupCreator = errors.New("only the group creator may delete the group")
)

// groupService implements the GroupService interface.
type groupService struct {
	groupRepo db.GroupRepository
}

// NewGroupService creates a new GroupService instance.
func NewGroupService(groupRepo db.GroupRepository) GroupService {
	return &groupService{groupRepo: groupRepo}
}

// CreateGroup persists a new group owned by creatorEmail. The creator is
// always a member and appears exactly once, even when also listed in the
// request. Fails with ErrUnauthenticated before any write when no creator
// is known.
func (s *groupService) CreateGroup(ctx context.Context, creatorEmail string, req models.CreateGroupRequest) (*models.Group, error) {
	if creatorEmail == "" {
		return nil, ErrUnauthenticated
	}
	if strings.TrimSpace(req.Name) == "" {
		return nil, ErrBlankGroupName
	}

	group := models.NewGroup(req.Name, creatorEmail, req.Members)
	if _, err := s.groupRepo.Create(ctx, group); err != nil {
		return nil, fmt.Errorf("failed to create group '%s': %w", req.Name, err)
	}
	return group, nil
}

// GetGroup retrieves a single group by id.
func (s *groupService) GetGroup(ctx context.Context, groupID string) (*models.Group, error) {
	if groupID == "" {
		return nil, ErrBlankGroupID
	}
	group, err := s.groupRepo.GetByID(ctx, groupID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, fmt.Errorf("%w: id '%s'", ErrGroupNotFound, groupID)
		}
		return nil, fmt.Errorf("failed to get group '%s': %w", groupID, err)
	}
	return group, nil
}

// ListGroups returns every group the user is a member of.
func (s *groupService) ListGroups(ctx context.Context, memberEmail string) ([]*models.Group, error) {
	if memberEmail == "" {
		return nil, ErrUnauthenticated
	}
	groups, err := s.groupRepo.ListByMember(ctx, memberEmail)
	if err != nil {
		return nil, fmt.Errorf("failed to list groups for '%s': %w", memberEmail, err)
	}
	return groups, nil
}

// UpdateMembers overwrites the group's member list. Last writer wins.
func (s *groupService) UpdateMembers(ctx context.Context, groupID string, members []string) error {
	if groupID == "" {
		return ErrBlankGroupID
	}
	if err := s.groupRepo.UpdateMembers(ctx, groupID, members); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return fmt.Errorf("%w: id '%s'", ErrGroupNotFound, groupID)
		}
		return fmt.Errorf("failed to update members of group '%s': %w", groupID, err)
	}
	return nil
}

// AddRestaurants adds the given restaurant ids to the group shortlist,
// skipping ids already present. The returned slice holds the ids actually
// added; an empty slice with a nil error means every id was a duplicate —
// a no-op outcome, deliberately not an error.
func (s *groupService) AddRestaurants(ctx context.Context, groupID string, restaurantIDs []string) ([]string, error) {
	if groupID == "" {
		return nil, ErrBlankGroupID
	}
	if len(restaurantIDs) == 0 {
		return nil, ErrNoRestaurants
	}

	added, err := s.groupRepo.AddRestaurants(ctx, groupID, restaurantIDs)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, fmt.Errorf("%w: id '%s'", ErrGroupNotFound, groupID)
		}
		return nil, fmt.Errorf("failed to add restaurants to group '%s': %w", groupID, err)
	}
	return added, nil
}

// LeaveGroup removes the user from the group. When the last member leaves,
// the group and all of its polls are deleted in the same transaction; the
// returned bool reports that deletion.
func (s *groupService) LeaveGroup(ctx context.Context, userEmail, groupID string) (bool, error) {
	if userEmail == "" {
		return false, ErrUnauthenticated
	}
	if groupID == "" {
		return false, ErrBlankGroupID
	}

	deleted, err := s.groupRepo.LeaveGroup(ctx, groupID, userEmail)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return false, fmt.Errorf("%w: id '%s'", ErrGroupNotFound, groupID)
		}
		return false, fmt.Errorf("failed to leave group '%s': %w", groupID, err)
	}
	return deleted, nil
}

// DeleteGroup deletes the group and cascade-deletes its polls. Only the
// creator may delete; the check lives here because the repository performs
// no ownership checks of its own.
func (s *groupService) DeleteGroup(ctx context.Context, callerEmail, groupID string) error {
	if callerEmail == "" {
		return ErrUnauthenticated
	}
	if groupID == "" {
		return ErrBlankGroupID
	}

	group, err := s.GetGroup(ctx, groupID)
	if err != nil {
		return err
	}
	if group.CreatedBy != callerEmail {
		return fmt.Errorf("%w: group '%s'", ErrNotGroupCreator, groupID)
	}

	if err := s.groupRepo.Delete(ctx, groupID); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return fmt.Errorf("%w: id '%s'", ErrGroupNotFound, groupID)
		}
		return fmt.Errorf("failed to delete group '%s': %w", groupID, err)
	}
	return nil
}
