package db

import (
	"context"
	"errors"
	"fmt"
	"log"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"tablevote-backend-go/internal/models"
)

const pollsCollection = "polls"

// firestorePollRepository implements the PollRepository interface using
// Firestore. It is the only writer of poll state: every mutation runs one
// transaction that updates the canonical polls document and the embedded
// copy inside the owning group, so the two representations cannot drift.
type firestorePollRepository struct {
	client *firestore.Client
}

// NewFirestorePollRepository creates a new instance of firestorePollRepository.
func NewFirestorePollRepository(client *firestore.Client) PollRepository {
	if client == nil {
		log.Fatal("Firestore client is not initialized for PollRepository.")
	}
	return &firestorePollRepository{client: client}
}

// Create persists a new poll. The canonical document and the embedded copy
// in the owning group's polls array are written in the same transaction.
func (r *firestorePollRepository) Create(ctx context.Context, poll *models.Poll) (string, error) {
	if poll.GroupID == "" {
		return "", errors.New("poll groupID cannot be empty for Create operation")
	}

	groupRef := r.client.Collection(groupsCollection).Doc(poll.GroupID)
	pollRef := r.client.Collection(pollsCollection).NewDoc()
	poll.ID = pollRef.ID

	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		groupSnap, err := tx.Get(groupRef)
		if err != nil {
			if status.Code(err) == codes.NotFound {
				return fmt.Errorf("group with ID '%s' not found: %w", poll.GroupID, ErrNotFound)
			}
			return err
		}
		var group models.Group
		if err := groupSnap.DataTo(&group); err != nil {
			return fmt.Errorf("%w: group '%s': %v", ErrFailedToDeserialize, poll.GroupID, err)
		}

		if err := tx.Create(pollRef, poll); err != nil {
			return err
		}
		return tx.Update(groupRef, []firestore.Update{
			{Path: "polls", Value: append(group.Polls, *poll)},
		})
	}, firestore.MaxAttempts(maxTxAttempts))
	if err != nil {
		return "", wrapTxError(err)
	}
	return poll.ID, nil
}

// GetByID retrieves the canonical poll document by its ID.
func (r *firestorePollRepository) GetByID(ctx context.Context, pollID string) (*models.Poll, error) {
	if pollID == "" {
		return nil, errors.New("pollID cannot be empty for GetByID operation")
	}
	docSnap, err := r.client.Collection(pollsCollection).Doc(pollID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, fmt.Errorf("poll with ID '%s' not found: %w", pollID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get poll with ID '%s': %w", pollID, err)
	}

	var poll models.Poll
	if err := docSnap.DataTo(&poll); err != nil {
		return nil, fmt.Errorf("%w: poll '%s': %v", ErrFailedToDeserialize, pollID, err)
	}
	poll.ID = docSnap.Ref.ID

	return &poll, nil
}

// CastVote applies one vote/unvote/switch transition for voter inside a
// single transaction:
//
//  1. read the group document — the embedded polls array is the source of
//     truth for "does this poll belong to this group";
//  2. read the canonical poll document, falling back to the embedded copy
//     when it is missing (the inconsistency is logged, not fatal);
//  3. apply the transition and write the canonical document (full replace)
//     plus the group's polls array with only the matching entry changed.
//
// Firestore retries the whole body up to maxTxAttempts on optimistic
// conflicts; a conflict surviving the retries surfaces as
// ErrTransactionAborted and is safe to re-run.
func (r *firestorePollRepository) CastVote(ctx context.Context, groupID, pollID, restaurantID, voter string) (*models.Poll, error) {
	if groupID == "" || pollID == "" || restaurantID == "" || voter == "" {
		return nil, errors.New("groupID, pollID, restaurantID and voter are required for CastVote")
	}

	groupRef := r.client.Collection(groupsCollection).Doc(groupID)
	pollRef := r.client.Collection(pollsCollection).Doc(pollID)

	var result *models.Poll
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		groupSnap, err := tx.Get(groupRef)
		if err != nil {
			if status.Code(err) == codes.NotFound {
				return fmt.Errorf("group with ID '%s' not found: %w", groupID, ErrNotFound)
			}
			return err
		}
		var group models.Group
		if err := groupSnap.DataTo(&group); err != nil {
			return fmt.Errorf("%w: group '%s': %v", ErrFailedToDeserialize, groupID, err)
		}

		idx := group.PollIndex(pollID)
		if idx < 0 {
			return fmt.Errorf("poll '%s' in group '%s': %w", pollID, groupID, ErrPollNotFoundInGroup)
		}

		var poll models.Poll
		pollSnap, err := tx.Get(pollRef)
		switch {
		case err == nil:
			if err := pollSnap.DataTo(&poll); err != nil {
				return fmt.Errorf("%w: poll '%s': %v", ErrFailedToDeserialize, pollID, err)
			}
			poll.ID = pollSnap.Ref.ID
		case status.Code(err) == codes.NotFound:
			// The canonical document is missing while the embedded copy
			// still exists. The write below restores the canonical doc.
			log.Printf("Poll '%s' missing from polls collection, using embedded copy from group '%s'.", pollID, groupID)
			poll = group.Polls[idx]
			poll.ID = pollID
		default:
			return err
		}

		if err := poll.ToggleVote(restaurantID, voter); err != nil {
			return err
		}

		if err := tx.Set(pollRef, &poll); err != nil {
			return err
		}
		group.Polls[idx].Restaurants = poll.Restaurants
		if err := tx.Update(groupRef, []firestore.Update{
			{Path: "polls", Value: group.Polls},
		}); err != nil {
			return err
		}
		result = &poll
		return nil
	}, firestore.MaxAttempts(maxTxAttempts))
	if err != nil {
		return nil, wrapTxError(err)
	}
	return result, nil
}

// End marks a poll as ended in both representations. Ending an already
// ended poll returns models.ErrPollEnded and changes nothing.
func (r *firestorePollRepository) End(ctx context.Context, groupID, pollID string) (*models.Poll, error) {
	if groupID == "" || pollID == "" {
		return nil, errors.New("groupID and pollID cannot be empty for End operation")
	}

	groupRef := r.client.Collection(groupsCollection).Doc(groupID)
	pollRef := r.client.Collection(pollsCollection).Doc(pollID)

	var result *models.Poll
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		groupSnap, err := tx.Get(groupRef)
		if err != nil {
			if status.Code(err) == codes.NotFound {
				return fmt.Errorf("group with ID '%s' not found: %w", groupID, ErrNotFound)
			}
			return err
		}
		var group models.Group
		if err := groupSnap.DataTo(&group); err != nil {
			return fmt.Errorf("%w: group '%s': %v", ErrFailedToDeserialize, groupID, err)
		}

		idx := group.PollIndex(pollID)
		if idx < 0 {
			return fmt.Errorf("poll '%s' in group '%s': %w", pollID, groupID, ErrPollNotFoundInGroup)
		}

		var poll models.Poll
		pollSnap, err := tx.Get(pollRef)
		switch {
		case err == nil:
			if err := pollSnap.DataTo(&poll); err != nil {
				return fmt.Errorf("%w: poll '%s': %v", ErrFailedToDeserialize, pollID, err)
			}
			poll.ID = pollSnap.Ref.ID
		case status.Code(err) == codes.NotFound:
			log.Printf("Poll '%s' missing from polls collection, using embedded copy from group '%s'.", pollID, groupID)
			poll = group.Polls[idx]
			poll.ID = pollID
		default:
			return err
		}

		if poll.IsEnded {
			return models.ErrPollEnded
		}
		poll.IsEnded = true

		if err := tx.Set(pollRef, &poll); err != nil {
			return err
		}
		group.Polls[idx] = poll
		if err := tx.Update(groupRef, []firestore.Update{
			{Path: "polls", Value: group.Polls},
		}); err != nil {
			return err
		}
		result = &poll
		return nil
	}, firestore.MaxAttempts(maxTxAttempts))
	if err != nil {
		return nil, wrapTxError(err)
	}
	return result, nil
}
