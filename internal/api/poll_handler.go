package api

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"tablevote-backend-go/internal/core"
	"tablevote-backend-go/internal/db"
	"tablevote-backend-go/internal/models"
)

// PollHandler handles API endpoints related to polls and voting.
type PollHandler struct {
	pollService core.PollService
}

// NewPollHandler creates a new PollHandler.
func NewPollHandler(ps core.PollService) *PollHandler {
	return &PollHandler{pollService: ps}
}

// mapPollErrorToStatus maps errors from core.PollService to HTTP status
// codes and an ErrorResponse body.
func mapPollErrorToStatus(c *gin.Context, err error) {
	var statusCode int
	var errResponse ErrorResponse

	switch {
	case errors.Is(err, core.ErrUnauthenticated):
		statusCode = http.StatusUnauthorized
		errResponse = ErrorResponse{Error: core.ErrUnauthenticated.Error()}
	case errors.Is(err, core.ErrBlankGroupID),
		errors.Is(err, core.ErrBlankPollID),
		errors.Is(err, core.ErrBlankRestaurantID),
		errors.Is(err, core.ErrNoRestaurants),
		errors.Is(err, models.ErrRestaurantNotInPoll):
		statusCode = http.StatusBadRequest
		errResponse = ErrorResponse{Error: err.Error()}
	case errors.Is(err, core.ErrGroupNotFound), errors.Is(err, core.ErrPollNotFound):
		statusCode = http.StatusNotFound
		errResponse = ErrorResponse{Error: err.Error()}
	case errors.Is(err, core.ErrNotPollCreator):
		statusCode = http.StatusForbidden
		errResponse = ErrorResponse{Error: core.ErrNotPollCreator.Error()}
	case errors.Is(err, models.ErrPollEnded):
		// Terminal state: the client must not resubmit the vote.
		statusCode = http.StatusConflict
		errResponse = ErrorResponse{Error: models.ErrPollEnded.Error()}
	case errors.Is(err, db.ErrTransactionAborted):
		// Optimistic-concurrency conflict that survived the bounded
		// in-repository retries; the client may retry the whole action.
		statusCode = http.StatusConflict
		errResponse = ErrorResponse{Error: "Concurrent modification, please retry", Details: err.Error()}
	default:
		log.Printf("Internal Server Error: %v", err)
		statusCode = http.StatusInternalServerError
		errResponse = ErrorResponse{Error: "An unexpected internal server error occurred."}
	}
	c.JSON(statusCode, errResponse)
}

// CreatePoll handles POST /groups/:groupId/polls
func (h *PollHandler) CreatePoll(c *gin.Context) {
	email, ok := callerEmail(c)
	if !ok {
		return
	}

	var req models.CreatePollRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request payload", Details: err.Error()})
		return
	}

	poll, err := h.pollService.CreatePoll(c.Request.Context(), email, c.Param("groupId"), req.RestaurantIDs)
	if err != nil {
		mapPollErrorToStatus(c, err)
		return
	}
	c.JSON(http.StatusCreated, poll)
}

// GetPoll handles GET /groups/:groupId/polls/:pollId
func (h *PollHandler) GetPoll(c *gin.Context) {
	poll, err := h.pollService.GetPoll(c.Request.Context(), c.Param("pollId"))
	if err != nil {
		mapPollErrorToStatus(c, err)
		return
	}
	c.JSON(http.StatusOK, poll)
}

// Vote handles POST /groups/:groupId/polls/:pollId/vote.
// The same endpoint casts, retracts and switches the caller's vote; the
// poll state machine decides which transition applies.
func (h *PollHandler) Vote(c *gin.Context) {
	email, ok := callerEmail(c)
	if !ok {
		return
	}

	var req models.VoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request payload", Details: err.Error()})
		return
	}

	poll, err := h.pollService.ToggleVote(c.Request.Context(), email, c.Param("groupId"), c.Param("pollId"), req.RestaurantID)
	if err != nil {
		mapPollErrorToStatus(c, err)
		return
	}
	c.JSON(http.StatusOK, poll)
}

// EndPoll handles POST /groups/:groupId/polls/:pollId/end — poll creator only.
func (h *PollHandler) EndPoll(c *gin.Context) {
	email, ok := callerEmail(c)
	if !ok {
		return
	}

	poll, err := h.pollService.EndPoll(c.Request.Context(), email, c.Param("groupId"), c.Param("pollId"))
	if err != nil {
		mapPollErrorToStatus(c, err)
		return
	}
	c.JSON(http.StatusOK, poll)
}
