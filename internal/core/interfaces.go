package core

import (
	"context"

	"tablevote-backend-go/internal/models"
)

// UserService defines the interface for user-related operations.
type UserService interface {
	// GetOrCreate retrieves a user by ID. If the user doesn't exist, it
	// creates a new directory entry from the auth token claims.
	GetOrCreate(ctx context.Context, userID, email, displayName, photoURL string) (*models.User, bool, error)
	GetByID(ctx context.Context, userID string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
}

// GroupService defines the interface for group lifecycle operations.
// Authorization is enforced here (the repository trusts its caller): only
// the creator may delete a group.
type GroupService interface {
	CreateGroup(ctx context.Context, creatorEmail string, req models.CreateGroupRequest) (*models.Group, error)
	GetGroup(ctx context.Context, groupID string) (*models.Group, error)
	ListGroups(ctx context.Context, memberEmail string) ([]*models.Group, error)
	UpdateMembers(ctx context.Context, groupID string, members []string) error
	// AddRestaurants returns the ids actually added; an empty result with a
	// nil error means every requested id was already on the shortlist.
	AddRestaurants(ctx context.Context, groupID string, restaurantIDs []string) ([]string, error)
	// LeaveGroup reports whether the group was deleted because its last
	// member left.
	LeaveGroup(ctx context.Context, userEmail, groupID string) (bool, error)
	DeleteGroup(ctx context.Context, callerEmail, groupID string) error
}

// PollService defines the interface for poll creation and voting.
type PollService interface {
	CreatePoll(ctx context.Context, creatorEmail, groupID string, restaurantIDs []string) (*models.Poll, error)
	GetPoll(ctx context.Context, pollID string) (*models.Poll, error)
	// ToggleVote casts, retracts or switches the voter's single vote in the
	// poll and returns the resulting state.
	ToggleVote(ctx context.Context, voterEmail, groupID, pollID, restaurantID string) (*models.Poll, error)
	EndPoll(ctx context.Context, callerEmail, groupID, pollID string) (*models.Poll, error)
}
