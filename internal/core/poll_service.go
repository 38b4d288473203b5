package core

import (
	"context"
	"errors"
	"fmt"

	"tablevote-backend-go/internal/db"
	"tablevote-backend-go/internal/models"
)

// Custom errors for the PollService.
var (
	ErrBlankPollID       = errors.New("poll id cannot be blank")
	ErrBlankRestaurantID = errors.New("restaurant id cannot be blank")
	ErrPollNotFound      = errors.New("poll not found")
	ErrNotPollCreator    = errors.New("only the poll creator may end the poll")
)

// pollService implements the PollService interface on top of the
// transactional PollRepository, the single writer of poll state.
type pollService struct {
	pollRepo db.PollRepository
}

// NewPollService creates a new PollService instance.
func NewPollService(pollRepo db.PollRepository) PollService {
	return &pollService{pollRepo: pollRepo}
}

// CreatePoll starts a new poll over the given restaurant candidates.
func (s *pollService) CreatePoll(ctx context.Context, creatorEmail, groupID string, restaurantIDs []string) (*models.Poll, error) {
	if creatorEmail == "" {
		return nil, ErrUnauthenticated
	}
	if groupID == "" {
		return nil, ErrBlankGroupID
	}
	if len(restaurantIDs) == 0 {
		return nil, ErrNoRestaurants
	}

	poll := models.NewPoll(groupID, creatorEmail, restaurantIDs)
	if _, err := s.pollRepo.Create(ctx, poll); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, fmt.Errorf("%w: id '%s'", ErrGroupNotFound, groupID)
		}
		return nil, fmt.Errorf("failed to create poll in group '%s': %w", groupID, err)
	}
	return poll, nil
}

// GetPoll retrieves the canonical poll document.
func (s *pollService) GetPoll(ctx context.Context, pollID string) (*models.Poll, error) {
	if pollID == "" {
		return nil, ErrBlankPollID
	}
	poll, err := s.pollRepo.GetByID(ctx, pollID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, fmt.Errorf("%w: id '%s'", ErrPollNotFound, pollID)
		}
		return nil, fmt.Errorf("failed to get poll '%s': %w", pollID, err)
	}
	return poll, nil
}

// ToggleVote applies one vote action for voterEmail on restaurantID. An
// ended poll is rejected before any transaction is opened; the transaction
// re-checks the flag against the state it actually reads.
func (s *pollService) ToggleVote(ctx context.Context, voterEmail, groupID, pollID, restaurantID string) (*models.Poll, error) {
	if voterEmail == "" {
		return nil, ErrUnauthenticated
	}
	if groupID == "" {
		return nil, ErrBlankGroupID
	}
	if pollID == "" {
		return nil, ErrBlankPollID
	}
	if restaurantID == "" {
		return nil, ErrBlankRestaurantID
	}

	// Fast path: no transaction for a poll already known to be ended. The
	// canonical doc may be missing (only the embedded copy survives); that
	// case is left to the transaction's fallback read.
	if poll, err := s.pollRepo.GetByID(ctx, pollID); err == nil && poll.IsEnded {
		return nil, models.ErrPollEnded
	}

	poll, err := s.pollRepo.CastVote(ctx, groupID, pollID, restaurantID, voterEmail)
	if err != nil {
		switch {
		case errors.Is(err, db.ErrNotFound):
			return nil, fmt.Errorf("%w: id '%s'", ErrGroupNotFound, groupID)
		case errors.Is(err, db.ErrPollNotFoundInGroup):
			return nil, fmt.Errorf("%w: poll '%s' in group '%s'", ErrPollNotFound, pollID, groupID)
		case errors.Is(err, models.ErrPollEnded),
			errors.Is(err, models.ErrRestaurantNotInPoll),
			errors.Is(err, db.ErrTransactionAborted),
			errors.Is(err, db.ErrFailedToDeserialize):
			return nil, err
		}
		return nil, fmt.Errorf("failed to cast vote in poll '%s': %w", pollID, err)
	}
	return poll, nil
}

// EndPoll marks the poll as ended. Only its creator may end it.
func (s *pollService) EndPoll(ctx context.Context, callerEmail, groupID, pollID string) (*models.Poll, error) {
	if callerEmail == "" {
		return nil, ErrUnauthenticated
	}
	if groupID == "" {
		return nil, ErrBlankGroupID
	}
	if pollID == "" {
		return nil, ErrBlankPollID
	}

	poll, err := s.GetPoll(ctx, pollID)
	if err != nil {
		return nil, err
	}
	if poll.CreatedBy != callerEmail {
		return nil, fmt.Errorf("%w: poll '%s'", ErrNotPollCreator, pollID)
	}

	ended, err := s.pollRepo.End(ctx, groupID, pollID)
	if err != nil {
		switch {
		case errors.Is(err, db.ErrNotFound):
			return nil, fmt.Errorf("%w: id '%s'", ErrGroupNotFound, groupID)
		case errors.Is(err, db.ErrPollNotFoundInGroup):
			return nil, fmt.Errorf("%w: poll '%s' in group '%s'", ErrPollNotFound, pollID, groupID)
		case errors.Is(err, models.ErrPollEnded):
			return nil, err
		}
		return nil, fmt.Errorf("failed to end poll '%s': %w", pollID, err)
	}
	return ended, nil
}
