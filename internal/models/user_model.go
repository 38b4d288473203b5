package models

import "time"

// User is a directory entry for a registered user. Documents are keyed by
// the Firebase Auth UID; group membership and votes reference users by email.
type User struct {
	ID          string    `json:"id" firestore:"-"` // Firebase Auth UID, the document ID
	Email       string    `json:"email" firestore:"email"`
	DisplayName string    `json:"displayName,omitempty" firestore:"displayName,omitempty"`
	PhotoURL    string    `json:"photoURL,omitempty" firestore:"photoURL,omitempty"`
	CreatedAt   time.Time `json:"createdAt" firestore:"createdAt,serverTimestamp"`
	UpdatedAt   time.Time `json:"updatedAt" firestore:"updatedAt,serverTimestamp"`
}
