// Package userstore provides read access to user records.
//
// Account management and authentication live outside this service; the only
// thing node creation needs here is a display name for the created_by field.
package userstore

import (
	"context"
	"time"

	"github.com/dalemusser/procdoc/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// CollectionName is the MongoDB collection for user records.
const CollectionName = "users"

// Store provides access to the users collection.
type Store struct {
	c *mongo.Collection
}

// New creates a new user store.
func New(db *mongo.Database) *Store {
	return &Store{
		c: db.Collection(CollectionName),
	}
}

// DisplayName resolves a user's display name. Returns "" (and no error)
// when the user record does not exist; callers fall back to the raw id.
func (s *Store) DisplayName(ctx context.Context, userID string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var u models.User
	proj := options.FindOne().SetProjection(bson.M{"display_name": 1})
	err := s.c.FindOne(ctx, bson.M{"_id": userID}, proj).Decode(&u)
	if err == mongo.ErrNoDocuments {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return u.DisplayName, nil
}

// Upsert stores a user record. Used by seeding and tests.
func (s *Store) Upsert(ctx context.Context, u models.User) error {
	now := time.Now().UTC()
	_, err := s.c.UpdateOne(ctx,
		bson.M{"_id": u.ID},
		bson.M{
			"$set":         bson.M{"display_name": u.DisplayName, "email": u.Email, "updated_at": now},
			"$setOnInsert": bson.M{"created_at": now},
		},
		options.Update().SetUpsert(true),
	)
	return err
}
