package core

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"tablevote-backend-go/internal/db"
	"tablevote-backend-go/internal/models"
)

// DirectoryCache holds an in-memory copy of the user directory for member
// search and autocomplete. It is filled once and only re-synced on an
// explicit Refresh call; snapshot staleness is accepted by design of the
// member-search feature.
type DirectoryCache struct {
	userRepo db.UserRepository

	mu    sync.RWMutex
	users []models.User
}

// NewDirectoryCache creates an empty cache; call Refresh to populate it.
func NewDirectoryCache(userRepo db.UserRepository) *DirectoryCache {
	return &DirectoryCache{userRepo: userRepo}
}

// Refresh replaces the cached directory with a fresh full fetch.
func (d *DirectoryCache) Refresh(ctx context.Context) error {
	users, err := d.userRepo.ListAll(ctx)
	if err != nil {
		return fmt.Errorf("failed to refresh user directory: %w", err)
	}

	d.mu.Lock()
	d.users = users
	d.mu.Unlock()
	return nil
}

// Search filters the cached directory by case-insensitive substring match
// against email or display name. An empty query returns the full directory.
// The excludeEmail entry (typically the caller) is omitted.
func (d *DirectoryCache) Search(query, excludeEmail string) []models.User {
	q := strings.ToLower(strings.TrimSpace(query))

	d.mu.RLock()
	defer d.mu.RUnlock()

	matches := make([]models.User, 0, len(d.users))
	for _, u := range d.users {
		if u.Email == excludeEmail {
			continue
		}
		if q == "" ||
			strings.Contains(strings.ToLower(u.Email), q) ||
			strings.Contains(strings.ToLower(u.DisplayName), q) {
			matches = append(matches, u)
		}
	}
	return matches
}

// Len reports the number of cached entries.
func (d *DirectoryCache) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.users)
}
