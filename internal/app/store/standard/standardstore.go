// Package standard provides storage for compliance standard records.
//
// Standards mirror KPIs: file nodes reference them via selected_standards
// and the association syncer maintains each standard's reverse list of
// referencing processes.
package standard

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/procdoc/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// CollectionName is the MongoDB collection for standard records.
const CollectionName = "standards"

// ErrNotFound is returned when the requested standard does not exist.
var ErrNotFound = errors.New("standard not found")

// Store provides access to the standards collection.
type Store struct {
	c *mongo.Collection
}

// New creates a new standard store.
func New(db *mongo.Database) *Store {
	return &Store{
		c: db.Collection(CollectionName),
	}
}

// CreateInput contains the input for creating a standard.
type CreateInput struct {
	ID          string // optional; generated when empty
	UserID      string
	Name        string
	Reference   string
	Description string
}

// Create inserts a new standard record.
func (s *Store) Create(ctx context.Context, input CreateInput) (*models.Standard, error) {
	id := input.ID
	if id == "" {
		id = uuid.NewString()
	}

	now := time.Now().UTC()
	std := models.Standard{
		ID:          id,
		UserID:      input.UserID,
		Name:        input.Name,
		NameCI:      text.Fold(input.Name),
		Reference:   input.Reference,
		Description: input.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if _, err := s.c.InsertOne(ctx, std); err != nil {
		return nil, err
	}
	return &std, nil
}

// GetByID retrieves a standard by id, scoped to the owning user.
func (s *Store) GetByID(ctx context.Context, userID, id string) (*models.Standard, error) {
	var std models.Standard
	err := s.c.FindOne(ctx, bson.M{"_id": id, "user_id": userID}).Decode(&std)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &std, nil
}

// ListByUser returns the user's standards, name-sorted.
func (s *Store) ListByUser(ctx context.Context, userID string) ([]models.Standard, error) {
	findOpts := options.Find().SetSort(bson.D{{Key: "name_ci", Value: 1}})
	cursor, err := s.c.Find(ctx, bson.M{"user_id": userID}, findOpts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var standards []models.Standard
	if err := cursor.All(ctx, &standards); err != nil {
		return nil, err
	}
	return standards, nil
}

// AddProcessRef records that the given file node selected this standard.
func (s *Store) AddProcessRef(ctx context.Context, standardID, nodeID string) error {
	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": standardID},
		bson.M{
			"$addToSet": bson.M{"associated_bpmn_processes": nodeID},
			"$set":      bson.M{"updated_at": time.Now().UTC()},
		},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// RemoveProcessRef drops the file node's id from this standard's reverse list.
func (s *Store) RemoveProcessRef(ctx context.Context, standardID, nodeID string) error {
	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": standardID},
		bson.M{
			"$pull": bson.M{"associated_bpmn_processes": nodeID},
			"$set":  bson.M{"updated_at": time.Now().UTC()},
		},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// ReplaceProcessRefs overwrites the reverse list wholesale. Used by the
// reconcile job to repair drift from failed best-effort syncs.
func (s *Store) ReplaceProcessRefs(ctx context.Context, standardID string, nodeIDs []string) error {
	if nodeIDs == nil {
		nodeIDs = []string{}
	}
	_, err := s.c.UpdateOne(ctx,
		bson.M{"_id": standardID},
		bson.M{"$set": bson.M{
			"associated_bpmn_processes": nodeIDs,
			"updated_at":                time.Now().UTC(),
		}},
	)
	return err
}

// ListAll returns every standard record. Used by the reconcile job.
func (s *Store) ListAll(ctx context.Context) ([]models.Standard, error) {
	cursor, err := s.c.Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var standards []models.Standard
	if err := cursor.All(ctx, &standards); err != nil {
		return nil, err
	}
	return standards, nil
}
