package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tablevote-backend-go/internal/core"
	"tablevote-backend-go/internal/models"
)

// stubGroupService returns canned results for handler tests.
type stubGroupService struct {
	group   *models.Group
	groups  []*models.Group
	added   []string
	deleted bool
	err     error
}

func (s *stubGroupService) CreateGroup(_ context.Context, _ string, _ models.CreateGroupRequest) (*models.Group, error) {
	return s.group, s.err
}
func (s *stubGroupService) GetGroup(_ context.Context, _ string) (*models.Group, error) {
	return s.group, s.err
}
func (s *stubGroupService) ListGroups(_ context.Context, _ string) ([]*models.Group, error) {
	return s.groups, s.err
}
func (s *stubGroupService) UpdateMembers(_ context.Context, _ string, _ []string) error {
	return s.err
}
func (s *stubGroupService) AddRestaurants(_ context.Context, _ string, _ []string) ([]string, error) {
	return s.added, s.err
}
func (s *stubGroupService) LeaveGroup(_ context.Context, _, _ string) (bool, error) {
	return s.deleted, s.err
}
func (s *stubGroupService) DeleteGroup(_ context.Context, _, _ string) error {
	return s.err
}

func newGroupTestRouter(svc core.GroupService, email string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(func(c *gin.Context) {
		if email != "" {
			c.Set("userEmail", email)
		}
		c.Next()
	})
	handler := NewGroupHandler(svc, core.NewGroupWatcher(nil, nil))
	router.POST("/groups", handler.CreateGroup)
	router.GET("/groups/:groupId", handler.GetGroup)
	router.POST("/groups/:groupId/restaurants", handler.AddRestaurants)
	router.POST("/groups/:groupId/leave", handler.LeaveGroup)
	router.DELETE("/groups/:groupId", handler.DeleteGroup)
	return router
}

func TestCreateGroupReturns201(t *testing.T) {
	group := models.NewGroup("Dinner", "alice@example.com", nil)
	group.ID = "g1"
	router := newGroupTestRouter(&stubGroupService{group: group}, "alice@example.com")

	rec := postJSON(t, router, "/groups", models.CreateGroupRequest{Name: "Dinner"})

	require.Equal(t, http.StatusCreated, rec.Code)
	var got models.Group
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "g1", got.ID)
	assert.Equal(t, []string{"alice@example.com"}, got.Members)
}

func TestGetGroupNotFoundMapsTo404(t *testing.T) {
	router := newGroupTestRouter(&stubGroupService{err: core.ErrGroupNotFound}, "alice@example.com")

	req := httptest.NewRequest(http.MethodGet, "/groups/missing", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAddRestaurantsDistinguishesNoOp(t *testing.T) {
	t.Run("restaurants added", func(t *testing.T) {
		router := newGroupTestRouter(&stubGroupService{added: []string{"r1"}}, "alice@example.com")

		rec := postJSON(t, router, "/groups/g1/restaurants", models.AddRestaurantsRequest{RestaurantIDs: []string{"r1"}})

		require.Equal(t, http.StatusOK, rec.Code)
		var resp AddRestaurantsResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, []string{"r1"}, resp.Added)
		assert.Equal(t, "Restaurants added to group", resp.Message)
	})

	t.Run("all duplicates", func(t *testing.T) {
		router := newGroupTestRouter(&stubGroupService{}, "alice@example.com")

		rec := postJSON(t, router, "/groups/g1/restaurants", models.AddRestaurantsRequest{RestaurantIDs: []string{"r1"}})

		require.Equal(t, http.StatusOK, rec.Code)
		var resp AddRestaurantsResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Empty(t, resp.Added)
		assert.Equal(t, "All restaurants are already on the group shortlist", resp.Message)
	})
}

func TestLeaveGroupReportsDeletion(t *testing.T) {
	router := newGroupTestRouter(&stubGroupService{deleted: true}, "alice@example.com")

	rec := postJSON(t, router, "/groups/g1/leave", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp LeaveGroupResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.GroupDeleted)
}

func TestDeleteGroupForbiddenForNonCreator(t *testing.T) {
	router := newGroupTestRouter(&stubGroupService{err: core.ErrNotGroupCreator}, "bob@example.com")

	req := httptest.NewRequest(http.MethodDelete, "/groups/g1", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestDeleteGroupReturns204(t *testing.T) {
	router := newGroupTestRouter(&stubGroupService{}, "alice@example.com")

	req := httptest.NewRequest(http.MethodDelete, "/groups/g1", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
}
