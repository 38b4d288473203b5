package models

// CreateGroupRequest represents the request body for creating a new group.
// Members may be empty; the authenticated creator is always added.
type CreateGroupRequest struct {
	Name    string   `json:"name" binding:"required"`
	Members []string `json:"members"`
}

// UpdateMembersRequest replaces a group's member list wholesale.
// Last writer wins; no merge is attempted.
type UpdateMembersRequest struct {
	Members []string `json:"members" binding:"required"`
}

// AddRestaurantsRequest adds restaurant ids to a group's shortlist.
type AddRestaurantsRequest struct {
	RestaurantIDs []string `json:"restaurantIds" binding:"required"`
}

// CreatePollRequest starts a poll over the given restaurant candidates.
type CreatePollRequest struct {
	RestaurantIDs []string `json:"restaurantIds" binding:"required"`
}

// VoteRequest casts, retracts or switches the caller's vote in a poll.
type VoteRequest struct {
	RestaurantID string `json:"restaurantId" binding:"required"`
}
