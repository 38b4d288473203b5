package models

import "time"

// RestaurantRef is an entry in a group's shared restaurant shortlist,
// referencing a restaurant by its external places-API identifier.
// The shortlist is unique by RestaurantID.
type RestaurantRef struct {
	RestaurantID string `json:"restaurant_id" firestore:"restaurant_id"`
	Count        int    `json:"count" firestore:"count"`
}

// Group represents a set of users deciding where to eat together, with a
// shared restaurant shortlist and the polls run over it.
//
// The ID field is stored inside the document and always equals the Firestore
// document id: ids are pre-generated with NewDoc before the first write, so
// there is no create-then-patch window where the two disagree.
type Group struct {
	ID          string          `json:"id" firestore:"id"`
	Name        string          `json:"name" firestore:"name"`
	Members     []string        `json:"members" firestore:"members"`
	CreatedBy   string          `json:"createdBy" firestore:"createdBy"`
	CreatedAt   time.Time       `json:"createdAt" firestore:"createdAt"`
	Restaurants []RestaurantRef `json:"restaurants" firestore:"restaurants"`
	Polls       []Poll          `json:"polls" firestore:"polls"`
}

// NewGroup builds a group owned by creator. The creator is always a member
// and appears exactly once, even when also present in memberEmails; other
// duplicates in memberEmails are dropped while preserving insertion order.
func NewGroup(name, creator string, memberEmails []string) *Group {
	members := []string{creator}
	seen := map[string]struct{}{creator: {}}
	for _, m := range memberEmails {
		if _, dup := seen[m]; dup {
			continue
		}
		seen[m] = struct{}{}
		members = append(members, m)
	}
	return &Group{
		Name:        name,
		Members:     members,
		CreatedBy:   creator,
		CreatedAt:   time.Now().UTC(),
		Restaurants: []RestaurantRef{},
		Polls:       []Poll{},
	}
}

// HasMember reports whether email is a member of the group.
func (g *Group) HasMember(email string) bool {
	for _, m := range g.Members {
		if m == email {
			return true
		}
	}
	return false
}

// RemoveMember drops email from the member list and reports whether it was
// present. The caller decides what an empty member list means (deletion).
func (g *Group) RemoveMember(email string) bool {
	kept := g.Members[:0]
	removed := false
	for _, m := range g.Members {
		if m == email {
			removed = true
			continue
		}
		kept = append(kept, m)
	}
	g.Members = kept
	return removed
}

// MergeRestaurants appends a RestaurantRef for every id not already on the
// shortlist and returns the ids actually added. Deduplication is keyed on
// RestaurantID alone, never on structural equality of the whole ref, so a
// ref with a non-zero count can never be duplicated by a concurrent add.
func (g *Group) MergeRestaurants(restaurantIDs []string) []string {
	existing := make(map[string]struct{}, len(g.Restaurants))
	for _, ref := range g.Restaurants {
		existing[ref.RestaurantID] = struct{}{}
	}

	var added []string
	for _, id := range restaurantIDs {
		if _, ok := existing[id]; ok {
			continue
		}
		existing[id] = struct{}{}
		g.Restaurants = append(g.Restaurants, RestaurantRef{RestaurantID: id, Count: 0})
		added = append(added, id)
	}
	return added
}

// PollIndex returns the index of the embedded poll with the given id, or -1.
func (g *Group) PollIndex(pollID string) int {
	for i := range g.Polls {
		if g.Polls[i].ID == pollID {
			return i
		}
	}
	return -1
}
