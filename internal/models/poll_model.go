package models

import (
	"errors"
	"time"
)

// Domain errors for the vote transition. These are returned by the pure
// logic below and wrapped by the repository/service layers.
var (
	ErrPollEnded           = errors.New("poll has ended")
	ErrRestaurantNotInPoll = errors.New("restaurant is not an option in this poll")
)

// RestaurantOption is one candidate restaurant within a poll, together with
// the emails of the users who voted for it.
type RestaurantOption struct {
	RestaurantID string   `json:"restaurantId" firestore:"restaurantId"`
	VotedUsers   []string `json:"votedUsers" firestore:"votedUsers"`
}

// HasVoter reports whether the given email currently holds a vote on this option.
func (o *RestaurantOption) HasVoter(email string) bool {
	for _, v := range o.VotedUsers {
		if v == email {
			return true
		}
	}
	return false
}

func (o *RestaurantOption) removeVoter(email string) {
	kept := o.VotedUsers[:0]
	for _, v := range o.VotedUsers {
		if v != email {
			kept = append(kept, v)
		}
	}
	o.VotedUsers = kept
}

// Poll represents a single round of voting over restaurant candidates,
// scoped to one group.
//
// A poll is stored in two places: the canonical document in the polls
// collection and an embedded copy inside the owning group's polls array
// (a read optimization so the group detail view is a single document read).
// Every mutation must go through PollRepository, which writes both
// representations in one transaction; nothing else may update poll state.
type Poll struct {
	ID          string             `json:"id" firestore:"id"`
	GroupID     string             `json:"groupId" firestore:"groupId"`
	CreatedBy   string             `json:"createdBy" firestore:"createdBy"`
	CreatedAt   time.Time          `json:"createdAt" firestore:"createdAt"`
	IsEnded     bool               `json:"isEnded" firestore:"isEnded"`
	Restaurants []RestaurantOption `json:"restaurants" firestore:"restaurants"`
}

// NewPoll builds an open poll over the given restaurant ids with empty vote sets.
func NewPoll(groupID, createdBy string, restaurantIDs []string) *Poll {
	options := make([]RestaurantOption, 0, len(restaurantIDs))
	seen := make(map[string]struct{}, len(restaurantIDs))
	for _, id := range restaurantIDs {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		options = append(options, RestaurantOption{RestaurantID: id, VotedUsers: []string{}})
	}
	return &Poll{
		GroupID:     groupID,
		CreatedBy:   createdBy,
		CreatedAt:   time.Now().UTC(),
		Restaurants: options,
	}
}

// OptionIndex returns the index of the option for restaurantID, or -1.
func (p *Poll) OptionIndex(restaurantID string) int {
	for i := range p.Restaurants {
		if p.Restaurants[i].RestaurantID == restaurantID {
			return i
		}
	}
	return -1
}

// VotedOptionIndex returns the index of the option the voter currently
// holds a vote on, or -1 if the voter has not voted in this poll.
func (p *Poll) VotedOptionIndex(voter string) int {
	for i := range p.Restaurants {
		if p.Restaurants[i].HasVoter(voter) {
			return i
		}
	}
	return -1
}

// ToggleVote applies a single vote action by voter on restaurantID:
//
//   - voter has not voted in this poll  -> vote is added to restaurantID
//   - voter already voted restaurantID  -> vote is retracted
//   - voter voted a different option    -> vote moves to restaurantID
//
// A voter holds at most one vote across all options of a poll; this
// invariant holds after every successful call. An ended poll rejects all
// actions with ErrPollEnded and is left unchanged.
func (p *Poll) ToggleVote(restaurantID, voter string) error {
	if p.IsEnded {
		return ErrPollEnded
	}
	target := p.OptionIndex(restaurantID)
	if target < 0 {
		return ErrRestaurantNotInPoll
	}

	current := p.VotedOptionIndex(voter)
	if current == target {
		p.Restaurants[target].removeVoter(voter)
		return nil
	}
	if current >= 0 {
		p.Restaurants[current].removeVoter(voter)
	}
	p.Restaurants[target].VotedUsers = append(p.Restaurants[target].VotedUsers, voter)
	return nil
}
