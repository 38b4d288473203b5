package api

import (
	"errors"
	"io"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"tablevote-backend-go/internal/core"
	"tablevote-backend-go/internal/models"
)

// GroupHandler handles API endpoints related to groups.
type GroupHandler struct {
	groupService core.GroupService
	watcher      *core.GroupWatcher
}

// NewGroupHandler creates a new GroupHandler.
func NewGroupHandler(gs core.GroupService, watcher *core.GroupWatcher) *GroupHandler {
	return &GroupHandler{groupService: gs, watcher: watcher}
}

// mapGroupErrorToStatus maps errors from core.GroupService to HTTP status
// codes and an ErrorResponse body.
func mapGroupErrorToStatus(c *gin.Context, err error) {
	var statusCode int
	var errResponse ErrorResponse

	switch {
	case errors.Is(err, core.ErrUnauthenticated):
		statusCode = http.StatusUnauthorized
		errResponse = ErrorResponse{Error: core.ErrUnauthenticated.Error()}
	case errors.Is(err, core.ErrBlankGroupName),
		errors.Is(err, core.ErrBlankGroupID),
		errors.Is(err, core.ErrNoRestaurants):
		statusCode = http.StatusBadRequest
		errResponse = ErrorResponse{Error: err.Error()}
	case errors.Is(err, core.ErrGroupNotFound):
		statusCode = http.StatusNotFound
		errResponse = ErrorResponse{Error: core.ErrGroupNotFound.Error()}
	case errors.Is(err, core.ErrNotGroupCreator):
		statusCode = http.StatusForbidden
		errResponse = ErrorResponse{Error: core.ErrNotGroupCreator.Error()}
	default:
		log.Printf("Internal Server Error: %v", err)
		statusCode = http.StatusInternalServerError
		errResponse = ErrorResponse{Error: "An unexpected internal server error occurred."}
	}
	c.JSON(statusCode, errResponse)
}

// callerEmail extracts the authenticated user's email from the context.
func callerEmail(c *gin.Context) (string, bool) {
	email := c.GetString("userEmail")
	if email == "" {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "User email not found in context"})
		return "", false
	}
	return email, true
}

// CreateGroup handles POST /groups
func (h *GroupHandler) CreateGroup(c *gin.Context) {
	email, ok := callerEmail(c)
	if !ok {
		return
	}

	var req models.CreateGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request payload", Details: err.Error()})
		return
	}

	group, err := h.groupService.CreateGroup(c.Request.Context(), email, req)
	if err != nil {
		mapGroupErrorToStatus(c, err)
		return
	}
	c.JSON(http.StatusCreated, group)
}

// ListGroups handles GET /groups — groups the caller is a member of.
func (h *GroupHandler) ListGroups(c *gin.Context) {
	email, ok := callerEmail(c)
	if !ok {
		return
	}

	groups, err := h.groupService.ListGroups(c.Request.Context(), email)
	if err != nil {
		mapGroupErrorToStatus(c, err)
		return
	}
	c.JSON(http.StatusOK, groups)
}

// GetGroup handles GET /groups/:groupId
func (h *GroupHandler) GetGroup(c *gin.Context) {
	group, err := h.groupService.GetGroup(c.Request.Context(), c.Param("groupId"))
	if err != nil {
		mapGroupErrorToStatus(c, err)
		return
	}
	c.JSON(http.StatusOK, group)
}

// UpdateMembers handles PUT /groups/:groupId/members
func (h *GroupHandler) UpdateMembers(c *gin.Context) {
	var req models.UpdateMembersRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request payload", Details: err.Error()})
		return
	}

	if err := h.groupService.UpdateMembers(c.Request.Context(), c.Param("groupId"), req.Members); err != nil {
		mapGroupErrorToStatus(c, err)
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{Message: "Group members updated"})
}

// AddRestaurants handles POST /groups/:groupId/restaurants
func (h *GroupHandler) AddRestaurants(c *gin.Context) {
	var req models.AddRestaurantsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request payload", Details: err.Error()})
		return
	}

	added, err := h.groupService.AddRestaurants(c.Request.Context(), c.Param("groupId"), req.RestaurantIDs)
	if err != nil {
		mapGroupErrorToStatus(c, err)
		return
	}

	resp := AddRestaurantsResponse{Added: added, Message: "Restaurants added to group"}
	if len(added) == 0 {
		resp.Added = []string{}
		resp.Message = "All restaurants are already on the group shortlist"
	}
	c.JSON(http.StatusOK, resp)
}

// LeaveGroup handles POST /groups/:groupId/leave
func (h *GroupHandler) LeaveGroup(c *gin.Context) {
	email, ok := callerEmail(c)
	if !ok {
		return
	}

	deleted, err := h.groupService.LeaveGroup(c.Request.Context(), email, c.Param("groupId"))
	if err != nil {
		mapGroupErrorToStatus(c, err)
		return
	}

	resp := LeaveGroupResponse{GroupDeleted: deleted, Message: "Left group"}
	if deleted {
		resp.Message = "Left group; group deleted because no members remain"
	}
	c.JSON(http.StatusOK, resp)
}

// DeleteGroup handles DELETE /groups/:groupId — creator only.
func (h *GroupHandler) DeleteGroup(c *gin.Context) {
	email, ok := callerEmail(c)
	if !ok {
		return
	}

	if err := h.groupService.DeleteGroup(c.Request.Context(), email, c.Param("groupId")); err != nil {
		mapGroupErrorToStatus(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// StreamGroup handles GET /groups/:groupId/events — a server-sent-event
// stream of the live group read model. Each store-pushed snapshot becomes
// one "group" event carrying the reconciled GroupDetailState.
func (h *GroupHandler) StreamGroup(c *gin.Context) {
	groupID := c.Param("groupId")
	if groupID == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Group ID is required"})
		return
	}

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")

	states := h.watcher.Watch(c.Request.Context(), groupID)
	c.Stream(func(w io.Writer) bool {
		state, open := <-states
		if !open {
			return false
		}
		c.SSEvent("group", state)
		return true
	})
}
