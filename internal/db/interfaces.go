package db

import (
	"context"

	"tablevote-backend-go/internal/models"
)

// GroupSnapshot is one element of a live group watch stream: either a
// freshly deserialized group state or the error that replaced it.
type GroupSnapshot struct {
	Group *models.Group
	Err   error
}

// GroupRepository defines the interface for group data storage operations.
// All multi-field and multi-document mutations run inside Firestore
// transactions so concurrent member edits and votes serialize correctly.
type GroupRepository interface {
	// Create persists a new group and returns its id. The id is generated
	// client-side before the write and stored inside the document.
	Create(ctx context.Context, group *models.Group) (string, error)
	GetByID(ctx context.Context, groupID string) (*models.Group, error)
	// ListByMember returns every group whose members array contains email.
	ListByMember(ctx context.Context, email string) ([]*models.Group, error)
	// UpdateMembers overwrites the member list; last writer wins.
	UpdateMembers(ctx context.Context, groupID string, members []string) error
	// AddRestaurants appends shortlist refs for ids not already present,
	// keyed on restaurant_id, and returns the ids actually added. An
	// all-duplicates call is a no-op, not an error.
	AddRestaurants(ctx context.Context, groupID string, restaurantIDs []string) ([]string, error)
	// LeaveGroup removes email from the member list. When the last member
	// leaves, the group and every poll referencing it are deleted in the
	// same transaction; the returned bool reports that deletion.
	LeaveGroup(ctx context.Context, groupID, email string) (bool, error)
	// Delete removes the group and cascade-deletes its polls atomically.
	// Ownership checks are the caller's responsibility.
	Delete(ctx context.Context, groupID string) error
	// Watch streams snapshots of a single group document until ctx is
	// cancelled. The channel is closed when the stream ends.
	Watch(ctx context.Context, groupID string) <-chan GroupSnapshot
}

// PollRepository defines the interface for poll data storage operations.
// It is the only writer of poll state: every mutation updates the canonical
// polls document and the embedded copy in the owning group in one
// transaction.
type PollRepository interface {
	Create(ctx context.Context, poll *models.Poll) (string, error)
	GetByID(ctx context.Context, pollID string) (*models.Poll, error)
	// CastVote applies one vote/unvote/switch transition for voter and
	// returns the resulting poll state.
	CastVote(ctx context.Context, groupID, pollID, restaurantID, voter string) (*models.Poll, error)
	// End marks the poll as ended; no further votes are accepted.
	End(ctx context.Context, groupID, pollID string) (*models.Poll, error)
}

// UserRepository defines the interface for the user directory.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, userID string) (*models.User, error)
	// GetByEmail resolves a directory entry by email (exact match, limit 1).
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	// ListAll returns the full directory, used by the member-search cache.
	ListAll(ctx context.Context) ([]models.User, error)
	Update(ctx context.Context, user *models.User) error
}
