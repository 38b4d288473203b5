package db

import (
	"errors"
	"fmt"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"tablevote-backend-go/internal/models"
)

// Sentinel errors shared by the Firestore repositories. Services match on
// these with errors.Is and translate them to their own error vocabulary.
var (
	// ErrNotFound is returned when a document does not exist.
	ErrNotFound = errors.New("document not found")
	// ErrPollNotFoundInGroup is returned when the owning group exists but
	// carries no embedded poll with the requested id.
	ErrPollNotFoundInGroup = errors.New("poll not found in group")
	// ErrFailedToDeserialize is returned when a stored document cannot be
	// decoded into its model type.
	ErrFailedToDeserialize = errors.New("failed to deserialize document")
	// ErrTransactionAborted is returned when a transaction still fails with
	// an optimistic-concurrency conflict after the bounded in-repository
	// retries. The whole operation is safe to re-run.
	ErrTransactionAborted = errors.New("transaction aborted by concurrent modification")
)

// wrapTxError classifies an error coming out of RunTransaction. Domain
// errors returned by the transaction body pass through untouched; gRPC
// abort/contention codes are mapped to ErrTransactionAborted.
func wrapTxError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrPollNotFoundInGroup) ||
		errors.Is(err, ErrFailedToDeserialize) ||
		errors.Is(err, models.ErrPollEnded) ||
		errors.Is(err, models.ErrRestaurantNotInPoll) {
		return err
	}
	switch status.Code(err) {
	case codes.Aborted, codes.FailedPrecondition:
		return fmt.Errorf("%w: %s", ErrTransactionAborted, err)
	}
	return err
}
