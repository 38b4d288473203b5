package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewGroupCreatorIsFirstMemberExactlyOnce(t *testing.T) {
	group := NewGroup("Dinner Club", "alice@example.com",
		[]string{"bob@example.com", "alice@example.com", "bob@example.com", "carol@example.com"})

	assert.Equal(t, "alice@example.com", group.CreatedBy)
	assert.Equal(t, []string{"alice@example.com", "bob@example.com", "carol@example.com"}, group.Members)
	assert.NotNil(t, group.Restaurants)
	assert.NotNil(t, group.Polls)
}

func TestNewGroupCreatorOnly(t *testing.T) {
	group := NewGroup("Solo", "alice@example.com", nil)

	assert.Equal(t, []string{"alice@example.com"}, group.Members)
}

func TestHasMember(t *testing.T) {
	group := NewGroup("g", "alice@example.com", []string{"bob@example.com"})

	assert.True(t, group.HasMember("bob@example.com"))
	assert.False(t, group.HasMember("mallory@example.com"))
}

func TestRemoveMember(t *testing.T) {
	group := NewGroup("g", "alice@example.com", []string{"bob@example.com"})

	assert.True(t, group.RemoveMember("bob@example.com"))
	assert.Equal(t, []string{"alice@example.com"}, group.Members)

	assert.False(t, group.RemoveMember("bob@example.com"), "second removal is a no-op")

	assert.True(t, group.RemoveMember("alice@example.com"))
	assert.Empty(t, group.Members)
}

func TestMergeRestaurantsSkipsDuplicates(t *testing.T) {
	group := NewGroup("g", "alice@example.com", nil)

	added := group.MergeRestaurants([]string{"r1", "r2"})
	assert.Equal(t, []string{"r1", "r2"}, added)

	added = group.MergeRestaurants([]string{"r2", "r3", "r2"})
	assert.Equal(t, []string{"r3"}, added)

	require.Len(t, group.Restaurants, 3)
	assert.Equal(t, "r1", group.Restaurants[0].RestaurantID)
	assert.Equal(t, "r3", group.Restaurants[2].RestaurantID)
}

func TestMergeRestaurantsDedupKeyedOnIDNotWholeRef(t *testing.T) {
	group := NewGroup("g", "alice@example.com", nil)
	group.MergeRestaurants([]string{"r1"})

	// Simulate a shortlist entry whose count drifted; re-adding the same
	// restaurant must still be recognized as a duplicate.
	group.Restaurants[0].Count = 7

	added := group.MergeRestaurants([]string{"r1"})

	assert.Empty(t, added)
	require.Len(t, group.Restaurants, 1)
	assert.Equal(t, 7, group.Restaurants[0].Count)
}

func TestMergeRestaurantsAllDuplicatesIsNoOp(t *testing.T) {
	group := NewGroup("g", "alice@example.com", nil)
	group.MergeRestaurants([]string{"r1", "r2"})

	added := group.MergeRestaurants([]string{"r1", "r2"})

	assert.Empty(t, added)
	assert.Len(t, group.Restaurants, 2)
}

func TestPollIndex(t *testing.T) {
	group := NewGroup("g", "alice@example.com", nil)
	group.Polls = []Poll{{ID: "p1"}, {ID: "p2"}}

	assert.Equal(t, 1, group.PollIndex("p2"))
	assert.Equal(t, -1, group.PollIndex("p9"))
}
