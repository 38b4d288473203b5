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

// fakePollRepository is an in-memory db.PollRepository applying the same
// vote transition the Firestore implementation runs transactionally.
type fakePollRepository struct {
	polls  map[string]*models.Poll
	nextID int

	castVoteErr error
}

func newFakePollRepository() *fakePollRepository {
	return &fakePollRepository{polls: make(map[string]*models.Poll)}
}

func (f *fakePollRepository) Create(_ context.Context, poll *models.Poll) (string, error) {
	f.nextID++
	poll.ID = fmt.Sprintf("poll-%d", f.nextID)
	copied := *poll
	f.polls[poll.ID] = &copied
	return poll.ID, nil
}

func (f *fakePollRepository) GetByID(_ context.Context, pollID string) (*models.Poll, error) {
	poll, ok := f.polls[pollID]
	if !ok {
		return nil, db.ErrNotFound
	}
	copied := *poll
	return &copied, nil
}

func (f *fakePollRepository) CastVote(_ context.Context, groupID, pollID, restaurantID, voter string) (*models.Poll, error) {
	if f.castVoteErr != nil {
		return nil, f.castVoteErr
	}
	poll, ok := f.polls[pollID]
	if !ok || poll.GroupID != groupID {
		return nil, db.ErrPollNotFoundInGroup
	}
	if err := poll.ToggleVote(restaurantID, voter); err != nil {
		return nil, err
	}
	copied := *poll
	return &copied, nil
}

func (f *fakePollRepository) End(_ context.Context, groupID, pollID string) (*models.Poll, error) {
	poll, ok := f.polls[pollID]
	if !ok || poll.GroupID != groupID {
		return nil, db.ErrPollNotFoundInGroup
	}
	if poll.IsEnded {
		return nil, models.ErrPollEnded
	}
	poll.IsEnded = true
	copied := *poll
	return &copied, nil
}

func newPollServiceWithPoll(t *testing.T) (PollService, *fakePollRepository, *models.Poll) {
	t.Helper()
	repo := newFakePollRepository()
	svc := NewPollService(repo)
	poll, err := svc.CreatePoll(context.Background(), "alice@example.com", "group-1", []string{"rest-a", "rest-b"})
	require.NoError(t, err)
	return svc, repo, poll
}

func TestCreatePollValidation(t *testing.T) {
	svc := NewPollService(newFakePollRepository())
	ctx := context.Background()

	_, err := svc.CreatePoll(ctx, "", "group-1", []string{"rest-a"})
	assert.ErrorIs(t, err, ErrUnauthenticated)

	_, err = svc.CreatePoll(ctx, "alice@example.com", "", []string{"rest-a"})
	assert.ErrorIs(t, err, ErrBlankGroupID)

	_, err = svc.CreatePoll(ctx, "alice@example.com", "group-1", nil)
	assert.ErrorIs(t, err, ErrNoRestaurants)
}

func TestToggleVoteRoundTrip(t *testing.T) {
	svc, _, poll := newPollServiceWithPoll(t)
	ctx := context.Background()

	updated, err := svc.ToggleVote(ctx, "bob@example.com", "group-1", poll.ID, "rest-a")
	require.NoError(t, err)
	assert.Equal(t, []string{"bob@example.com"}, updated.Restaurants[0].VotedUsers)

	updated, err = svc.ToggleVote(ctx, "bob@example.com", "group-1", poll.ID, "rest-b")
	require.NoError(t, err)
	assert.Empty(t, updated.Restaurants[0].VotedUsers)
	assert.Equal(t, []string{"bob@example.com"}, updated.Restaurants[1].VotedUsers)
}

func TestToggleVoteEndedPollFastPath(t *testing.T) {
	svc, repo, poll := newPollServiceWithPoll(t)
	ctx := context.Background()
	_, err := svc.EndPoll(ctx, "alice@example.com", "group-1", poll.ID)
	require.NoError(t, err)

	// Force the transactional path to fail loudly: a correct fast path
	// never reaches the repository.
	repo.castVoteErr = fmt.Errorf("CastVote must not be called for an ended poll")

	_, err = svc.ToggleVote(ctx, "bob@example.com", "group-1", poll.ID, "rest-a")
	assert.ErrorIs(t, err, models.ErrPollEnded)
}

func TestToggleVoteUnknownRestaurantPassesThrough(t *testing.T) {
	svc, _, poll := newPollServiceWithPoll(t)

	_, err := svc.ToggleVote(context.Background(), "bob@example.com", "group-1", poll.ID, "rest-zzz")

	assert.ErrorIs(t, err, models.ErrRestaurantNotInPoll)
}

func TestToggleVoteMapsMissingPoll(t *testing.T) {
	svc, _, _ := newPollServiceWithPoll(t)

	_, err := svc.ToggleVote(context.Background(), "bob@example.com", "group-1", "poll-missing", "rest-a")

	assert.ErrorIs(t, err, ErrPollNotFound)
}

func TestToggleVoteSurfacesContention(t *testing.T) {
	svc, repo, poll := newPollServiceWithPoll(t)
	repo.castVoteErr = db.ErrTransactionAborted

	_, err := svc.ToggleVote(context.Background(), "bob@example.com", "group-1", poll.ID, "rest-a")

	assert.ErrorIs(t, err, db.ErrTransactionAborted)
}

func TestEndPollOnlyByCreator(t *testing.T) {
	svc, _, poll := newPollServiceWithPoll(t)
	ctx := context.Background()

	_, err := svc.EndPoll(ctx, "bob@example.com", "group-1", poll.ID)
	assert.ErrorIs(t, err, ErrNotPollCreator)

	ended, err := svc.EndPoll(ctx, "alice@example.com", "group-1", poll.ID)
	require.NoError(t, err)
	assert.True(t, ended.IsEnded)

	// Ending twice is rejected.
	_, err = svc.EndPoll(ctx, "alice@example.com", "group-1", poll.ID)
	assert.ErrorIs(t, err, models.ErrPollEnded)
}
