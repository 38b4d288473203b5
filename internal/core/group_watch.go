package core

import (
	"context"
	"sort"

	"go.uber.org/zap"

	"tablevote-backend-go/internal/db"
	"tablevote-backend-go/internal/models"
)

// GroupDetailState is the normalized, presentation-ready view of one group:
// the group document plus its embedded polls sorted newest first. When the
// stream delivers an error the last-known-good Group/Polls are retained —
// stale data beats a blank screen.
type GroupDetailState struct {
	IsLoading bool          `json:"isLoading"`
	Group     *models.Group `json:"group,omitempty"`
	Polls     []models.Poll `json:"polls"`
	Err       string        `json:"error,omitempty"`
}

// GroupStreamer is the slice of db.GroupRepository the watcher depends on.
type GroupStreamer interface {
	Watch(ctx context.Context, groupID string) <-chan db.GroupSnapshot
}

// GroupWatcher reconciles the raw snapshot stream of a single group
// document into a GroupDetailState stream.
type GroupWatcher struct {
	streamer GroupStreamer
	logger   *zap.Logger
}

// NewGroupWatcher creates a new GroupWatcher instance.
func NewGroupWatcher(streamer GroupStreamer, logger *zap.Logger) *GroupWatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GroupWatcher{streamer: streamer, logger: logger}
}

// Watch publishes a GroupDetailState for the initial loading phase and for
// every snapshot pushed by the store, until ctx is cancelled or the
// underlying stream ends. The returned channel is closed when the stream
// terminates.
func (w *GroupWatcher) Watch(ctx context.Context, groupID string) <-chan GroupDetailState {
	out := make(chan GroupDetailState, 1)
	go func() {
		defer close(out)

		state := GroupDetailState{IsLoading: true}
		select {
		case out <- state:
		case <-ctx.Done():
			return
		}

		for snap := range w.streamer.Watch(ctx, groupID) {
			state.IsLoading = false
			if snap.Err != nil {
				w.logger.Warn("Group snapshot error; keeping last known state",
					zap.String("groupID", groupID),
					zap.Error(snap.Err),
				)
				state.Err = snap.Err.Error()
			} else {
				state = GroupDetailState{
					Group: snap.Group,
					Polls: sortPollsNewestFirst(snap.Group.Polls),
				}
			}

			select {
			case out <- state:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}

// sortPollsNewestFirst returns a copy of polls ordered by descending
// creation time, leaving the embedded array untouched.
func sortPollsNewestFirst(polls []models.Poll) []models.Poll {
	sorted := make([]models.Poll, len(polls))
	copy(sorted, polls)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].CreatedAt.After(sorted[j].CreatedAt)
	})
	return sorted
}
