// internal/app/system/indexes/indexes.go
package indexes

import (
	"context"
	"errors"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

/*
EnsureAll is called at startup (and by the test harness). Each ensure*
function is idempotent; problems are aggregated so startup can fail fast
with everything that is wrong, not just the first error.
*/
func EnsureAll(ctx context.Context, db *mongo.Database) error {
	var problems []string

	if err := ensureNodes(ctx, db); err != nil {
		problems = append(problems, "bpmn_nodes: "+err.Error())
	}
	if err := ensureKPIs(ctx, db); err != nil {
		problems = append(problems, "kpis: "+err.Error())
	}
	if err := ensureStandards(ctx, db); err != nil {
		problems = append(problems, "standards: "+err.Error())
	}
	if err := ensureUsers(ctx, db); err != nil {
		problems = append(problems, "users: "+err.Error())
	}

	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

// ensureNodes creates the indexes every hierarchy query depends on:
// all listing is scoped by user_id, and the tree walk (and the delete
// cascade) query user_id + parent_id.
func ensureNodes(ctx context.Context, db *mongo.Database) error {
	coll := db.Collection("bpmn_nodes")
	_, err := coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "name_ci", Value: 1}}},
		{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "parent_id", Value: 1}}},
		{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "type", Value: 1}}},
	})
	return err
}

// ensureKPIs indexes the per-user listing and the reverse-reference lookups
// used by the reconcile job.
func ensureKPIs(ctx context.Context, db *mongo.Database) error {
	coll := db.Collection("kpis")
	_, err := coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "name_ci", Value: 1}}},
		{Keys: bson.D{{Key: "associated_bpmn_processes", Value: 1}}},
	})
	return err
}

func ensureStandards(ctx context.Context, db *mongo.Database) error {
	coll := db.Collection("standards")
	_, err := coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "name_ci", Value: 1}}},
		{Keys: bson.D{{Key: "associated_bpmn_processes", Value: 1}}},
	})
	return err
}

func ensureUsers(ctx context.Context, db *mongo.Database) error {
	coll := db.Collection("users")
	_, err := coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "email", Value: 1}},
			Options: options.Index().
				SetUnique(true).
				SetPartialFilterExpression(bson.M{"email": bson.M{"$type": "string"}}),
		},
	})
	return err
}
