package api

// ErrorResponse is a generic structure for returning errors via API.
type ErrorResponse struct {
	Error   string `json:"error"`             // A high-level error message or code
	Details string `json:"details,omitempty"` // More specific details about the error, if available
}

// SuccessResponse is a generic structure for simple success messages.
type SuccessResponse struct {
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// AddRestaurantsResponse reports the outcome of a shortlist add. An empty
// Added slice means every requested id was already on the shortlist — a
// no-op, not a failure, so clients can tell the two apart.
type AddRestaurantsResponse struct {
	Added   []string `json:"added"`
	Message string   `json:"message"`
}

// LeaveGroupResponse reports whether leaving dissolved the group entirely
// (the caller was its last member).
type LeaveGroupResponse struct {
	GroupDeleted bool   `json:"groupDeleted"`
	Message      string `json:"message"`
}
