// Package kpi provides storage for Key Performance Indicator records.
//
// KPIs are authored outside the node tree. This store exists so the catalog
// API can list them and so the association syncer can maintain each KPI's
// associated_bpmn_processes reverse-reference list.
package kpi

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

// CollectionName is the MongoDB collection for KPI records.
const CollectionName = "kpis"

// ErrNotFound is returned when the requested KPI does not exist.
var ErrNotFound = errors.New("kpi not found")

// Store provides access to the kpis collection.
type Store struct {
	c *mongo.Collection
}

// New creates a new KPI store.
func New(db *mongo.Database) *Store {
	return &Store{
		c: db.Collection(CollectionName),
	}
}

// CreateInput contains the input for creating a KPI.
type CreateInput struct {
	ID          string // optional; generated when empty
	UserID      string
	Name        string
	Description string
	Target      string
	Unit        string
}

// Create inserts a new KPI record.
func (s *Store) Create(ctx context.Context, input CreateInput) (*models.KPI, error) {
	id := input.ID
	if id == "" {
		id = uuid.NewString()
	}

	now := time.Now().UTC()
	k := models.KPI{
		ID:          id,
		UserID:      input.UserID,
		Name:        input.Name,
		NameCI:      text.Fold(input.Name),
		Description: input.Description,
		Target:      input.Target,
		Unit:        input.Unit,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if _, err := s.c.InsertOne(ctx, k); err != nil {
		return nil, err
	}
	return &k, nil
}

// GetByID retrieves a KPI by id, scoped to the owning user.
func (s *Store) GetByID(ctx context.Context, userID, id string) (*models.KPI, error) {
	var k models.KPI
	err := s.c.FindOne(ctx, bson.M{"_id": id, "user_id": userID}).Decode(&k)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &k, nil
}

// ListByUser returns the user's KPIs, name-sorted.
func (s *Store) ListByUser(ctx context.Context, userID string) ([]models.KPI, error) {
	findOpts := options.Find().SetSort(bson.D{{Key: "name_ci", Value: 1}})
	cursor, err := s.c.Find(ctx, bson.M{"user_id": userID}, findOpts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var kpis []models.KPI
	if err := cursor.All(ctx, &kpis); err != nil {
		return nil, err
	}
	return kpis, nil
}

// AddProcessRef records that the given file node selected this KPI.
// $addToSet makes repeated adds a no-op.
func (s *Store) AddProcessRef(ctx context.Context, kpiID, nodeID string) error {
	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": kpiID},
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

// RemoveProcessRef drops the file node's id from this KPI's reverse list.
// $pull on an absent value is a no-op, so retried removes are safe and the
// list never holds duplicates.
func (s *Store) RemoveProcessRef(ctx context.Context, kpiID, nodeID string) error {
	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": kpiID},
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
func (s *Store) ReplaceProcessRefs(ctx context.Context, kpiID string, nodeIDs []string) error {
	if nodeIDs == nil {
		nodeIDs = []string{}
	}
	_, err := s.c.UpdateOne(ctx,
		bson.M{"_id": kpiID},
		bson.M{"$set": bson.M{
			"associated_bpmn_processes": nodeIDs,
			"updated_at":                time.Now().UTC(),
		}},
	)
	return err
}

// ListAll returns every KPI record. Used by the reconcile job.
func (s *Store) ListAll(ctx context.Context) ([]models.KPI, error) {
	cursor, err := s.c.Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var kpis []models.KPI
	if err := cursor.All(ctx, &kpis); err != nil {
		return nil, err
	}
	return kpis, nil
}
