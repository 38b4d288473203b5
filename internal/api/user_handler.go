package api

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"tablevote-backend-go/internal/core"
)

// UserHandler handles user-profile and directory-search API endpoints.
type UserHandler struct {
	userService core.UserService
	directory   *core.DirectoryCache
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(us core.UserService, directory *core.DirectoryCache) *UserHandler {
	return &UserHandler{userService: us, directory: directory}
}

// GetCurrentUserProfile handles GET /api/v1/users/me.
func (h *UserHandler) GetCurrentUserProfile(c *gin.Context) {
	rawUserID, exists := c.Get("userID")
	if !exists {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Authentication error: User ID not found in context"})
		return
	}
	firebaseUserID, ok := rawUserID.(string)
	if !ok || firebaseUserID == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid user ID format in context"})
		return
	}

	user, err := h.userService.GetByID(c.Request.Context(), firebaseUserID)
	if err != nil {
		if errors.Is(err, core.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "User profile not found"})
			return
		}
		log.Printf("GetCurrentUserProfile Error: userService.GetByID failed for userID %s: %v", firebaseUserID, err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to retrieve user profile", Details: err.Error()})
		return
	}

	c.JSON(http.StatusOK, user)
}

// SearchUsers handles GET /api/v1/users/search?q=<substring>.
// It filters the cached directory by case-insensitive substring match on
// email or display name, excluding the caller. The cache is filled at
// startup; POST /users/search/refresh re-syncs it on demand.
func (h *UserHandler) SearchUsers(c *gin.Context) {
	callerEmail := c.GetString("userEmail")
	matches := h.directory.Search(c.Query("q"), callerEmail)
	c.JSON(http.StatusOK, matches)
}

// RefreshDirectory handles POST /api/v1/users/search/refresh.
func (h *UserHandler) RefreshDirectory(c *gin.Context) {
	if err := h.directory.Refresh(c.Request.Context()); err != nil {
		log.Printf("RefreshDirectory Error: %v", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to refresh user directory", Details: err.Error()})
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{Message: "User directory refreshed"})
}
