package models

import "time"

// User is the minimal account record this service keeps. It exists so that
// node creation can resolve a display name for the created_by field; account
// management and authentication live elsewhere.
type User struct {
	ID          string    `bson:"_id"             json:"id"`
	DisplayName string    `bson:"display_name"    json:"display_name"`
	Email       string    `bson:"email,omitempty" json:"email,omitempty"`
	CreatedAt   time.Time `bson:"created_at"      json:"created_at"`
	UpdatedAt   time.Time `bson:"updated_at"      json:"updated_at"`
}
