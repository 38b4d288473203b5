package db

import (
	"context"
	"errors"
	"fmt"
	"log"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"tablevote-backend-go/internal/models"
)

const groupsCollection = "groups"

// maxTxAttempts bounds the optimistic-concurrency retry loop. Firestore
// re-runs the whole read-compute-write body on each Aborted attempt.
const maxTxAttempts = 5

// firestoreGroupRepository implements the GroupRepository interface using Firestore.
type firestoreGroupRepository struct {
	client *firestore.Client
}

// NewFirestoreGroupRepository creates a new instance of firestoreGroupRepository.
func NewFirestoreGroupRepository(client *firestore.Client) GroupRepository {
	if client == nil {
		log.Fatal("Firestore client is not initialized for GroupRepository.")
	}
	return &firestoreGroupRepository{client: client}
}

// Create adds a new group document. The document id is generated with
// NewDoc before the write and embedded in the document, so the stored id
// field always equals the document id and no create-then-patch window exists.
func (r *firestoreGroupRepository) Create(ctx context.Context, group *models.Group) (string, error) {
	docRef := r.client.Collection(groupsCollection).NewDoc()
	group.ID = docRef.ID

	if _, err := docRef.Create(ctx, group); err != nil {
		return "", fmt.Errorf("failed to create group: %w", err)
	}
	return docRef.ID, nil
}

// GetByID retrieves a group document from Firestore by its ID.
func (r *firestoreGroupRepository) GetByID(ctx context.Context, groupID string) (*models.Group, error) {
	if groupID == "" {
		return nil, errors.New("groupID cannot be empty for GetByID operation")
	}
	docSnap, err := r.client.Collection(groupsCollection).Doc(groupID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, fmt.Errorf("group with ID '%s' not found: %w", groupID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get group with ID '%s': %w", groupID, err)
	}

	var group models.Group
	if err := docSnap.DataTo(&group); err != nil {
		return nil, fmt.Errorf("%w: group '%s': %v", ErrFailedToDeserialize, groupID, err)
	}
	group.ID = docSnap.Ref.ID

	return &group, nil
}

// ListByMember retrieves every group whose members array contains email,
// newest first.
func (r *firestoreGroupRepository) ListByMember(ctx context.Context, email string) ([]*models.Group, error) {
	if email == "" {
		return nil, errors.New("email cannot be empty for ListByMember operation")
	}

	query := r.client.Collection(groupsCollection).
		Where("members", "array-contains", email).
		OrderBy("createdAt", firestore.Desc)

	iter := query.Documents(ctx)
	defer iter.Stop()

	var groups []*models.Group
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to iterate groups for member '%s': %w", email, err)
		}

		var group models.Group
		if err := doc.DataTo(&group); err != nil {
			log.Printf("Error decoding group data (ID: %s) for member '%s': %v. Skipping.", doc.Ref.ID, email, err)
			continue
		}
		group.ID = doc.Ref.ID
		groups = append(groups, &group)
	}

	return groups, nil
}

// UpdateMembers overwrites the members field of a group. No merge or diff
// logic is applied; the last writer wins.
func (r *firestoreGroupRepository) UpdateMembers(ctx context.Context, groupID string, members []string) error {
	if groupID == "" {
		return errors.New("groupID cannot be empty for UpdateMembers operation")
	}
	_, err := r.client.Collection(groupsCollection).Doc(groupID).Update(ctx, []firestore.Update{
		{Path: "members", Value: members},
	})
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return fmt.Errorf("group with ID '%s' not found for member update: %w", groupID, ErrNotFound)
		}
		return fmt.Errorf("failed to update members of group '%s': %w", groupID, err)
	}
	return nil
}

// AddRestaurants appends shortlist refs for restaurant ids not already
// present. The read, the dedup keyed on restaurant_id and the write all run
// in one transaction, so two concurrent adders of overlapping ids cannot
// produce duplicate refs. Returns the ids actually added; an all-duplicates
// call returns an empty slice and performs no write.
func (r *firestoreGroupRepository) AddRestaurants(ctx context.Context, groupID string, restaurantIDs []string) ([]string, error) {
	if groupID == "" {
		return nil, errors.New("groupID cannot be empty for AddRestaurants operation")
	}

	docRef := r.client.Collection(groupsCollection).Doc(groupID)
	var added []string
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		snap, err := tx.Get(docRef)
		if err != nil {
			if status.Code(err) == codes.NotFound {
				return fmt.Errorf("group with ID '%s' not found: %w", groupID, ErrNotFound)
			}
			return err
		}
		var group models.Group
		if err := snap.DataTo(&group); err != nil {
			return fmt.Errorf("%w: group '%s': %v", ErrFailedToDeserialize, groupID, err)
		}

		added = group.MergeRestaurants(restaurantIDs)
		if len(added) == 0 {
			return nil
		}
		return tx.Update(docRef, []firestore.Update{
			{Path: "restaurants", Value: group.Restaurants},
		})
	}, firestore.MaxAttempts(maxTxAttempts))
	if err != nil {
		return nil, wrapTxError(err)
	}
	return added, nil
}

// LeaveGroup removes email from the group's member list inside a
// transaction. If the member list becomes empty the group document and
// every poll referencing it are deleted in the same transaction, so a
// partial cascade can never be observed.
func (r *firestoreGroupRepository) LeaveGroup(ctx context.Context, groupID, email string) (bool, error) {
	if groupID == "" || email == "" {
		return false, errors.New("groupID and email cannot be empty for LeaveGroup operation")
	}

	docRef := r.client.Collection(groupsCollection).Doc(groupID)
	deleted := false
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		snap, err := tx.Get(docRef)
		if err != nil {
			if status.Code(err) == codes.NotFound {
				return fmt.Errorf("group with ID '%s' not found: %w", groupID, ErrNotFound)
			}
			return err
		}
		var group models.Group
		if err := snap.DataTo(&group); err != nil {
			return fmt.Errorf("%w: group '%s': %v", ErrFailedToDeserialize, groupID, err)
		}

		group.RemoveMember(email)
		if len(group.Members) > 0 {
			deleted = false
			return tx.Update(docRef, []firestore.Update{
				{Path: "members", Value: group.Members},
			})
		}

		// Last member left: delete the group and cascade to its polls.
		pollRefs, err := pollRefsForGroup(tx, r.client, groupID)
		if err != nil {
			return err
		}
		for _, ref := range pollRefs {
			if err := tx.Delete(ref); err != nil {
				return err
			}
		}
		if err := tx.Delete(docRef); err != nil {
			return err
		}
		deleted = true
		return nil
	}, firestore.MaxAttempts(maxTxAttempts))
	if err != nil {
		return false, wrapTxError(err)
	}
	return deleted, nil
}

// Delete removes the group document and cascade-deletes all polls whose
// groupId references it, atomically. The repository performs no ownership
// check; callers enforce that only the creator may delete.
func (r *firestoreGroupRepository) Delete(ctx context.Context, groupID string) error {
	if groupID == "" {
		return errors.New("groupID cannot be empty for Delete operation")
	}

	docRef := r.client.Collection(groupsCollection).Doc(groupID)
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		if _, err := tx.Get(docRef); err != nil {
			if status.Code(err) == codes.NotFound {
				return fmt.Errorf("group with ID '%s' not found for deletion: %w", groupID, ErrNotFound)
			}
			return err
		}
		pollRefs, err := pollRefsForGroup(tx, r.client, groupID)
		if err != nil {
			return err
		}
		for _, ref := range pollRefs {
			if err := tx.Delete(ref); err != nil {
				return err
			}
		}
		return tx.Delete(docRef)
	}, firestore.MaxAttempts(maxTxAttempts))
	return wrapTxError(err)
}

// pollRefsForGroup reads, within tx, the refs of all poll documents whose
// groupId equals groupID. Transaction rules require this read to happen
// before any of the cascade deletes.
func pollRefsForGroup(tx *firestore.Transaction, client *firestore.Client, groupID string) ([]*firestore.DocumentRef, error) {
	iter := tx.Documents(client.Collection(pollsCollection).Where("groupId", "==", groupID))
	defer iter.Stop()

	var refs []*firestore.DocumentRef
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to query polls of group '%s': %w", groupID, err)
		}
		refs = append(refs, doc.Ref)
	}
	return refs, nil
}

// Watch streams snapshots of a single group document. Each underlying
// change delivers a full snapshot on the returned channel; the channel is
// closed when ctx is cancelled or the listener fails terminally.
func (r *firestoreGroupRepository) Watch(ctx context.Context, groupID string) <-chan GroupSnapshot {
	out := make(chan GroupSnapshot, 1)
	go func() {
		defer close(out)
		iter := r.client.Collection(groupsCollection).Doc(groupID).Snapshots(ctx)
		defer iter.Stop()

		for {
			snap, err := iter.Next()
			if err != nil {
				if ctx.Err() != nil || status.Code(err) == codes.Canceled {
					return
				}
				// The iterator does not recover after an error; surface it
				// and end the stream.
				select {
				case out <- GroupSnapshot{Err: fmt.Errorf("group watch '%s': %w", groupID, err)}:
				case <-ctx.Done():
				}
				return
			}

			var next GroupSnapshot
			if !snap.Exists() {
				next.Err = fmt.Errorf("group with ID '%s' no longer exists: %w", groupID, ErrNotFound)
			} else {
				var group models.Group
				if err := snap.DataTo(&group); err != nil {
					next.Err = fmt.Errorf("%w: group '%s': %v", ErrFailedToDeserialize, groupID, err)
				} else {
					group.ID = snap.Ref.ID
					next.Group = &group
				}
			}

			select {
			case out <- next:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}
