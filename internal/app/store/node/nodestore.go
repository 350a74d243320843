// Package node provides storage for the per-user process hierarchy.
//
// Nodes are stored flat in the bpmn_nodes collection: each node carries a
// parent_id pointer and each folder caches its child ids in children. Every
// mutation that touches more than one document (create under a parent,
// reparent, cascading delete) runs through txn.Run so the pointer and the
// cache move together where the server supports transactions.
package node

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dalemusser/procdoc/internal/app/system/txn"
	"github.com/dalemusser/procdoc/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// CollectionName is the MongoDB collection for hierarchy nodes.
const CollectionName = "bpmn_nodes"

var (
	// ErrNotFound is returned when the requested node does not exist or is
	// owned by a different user.
	ErrNotFound = errors.New("node not found")
	// ErrParentNotFound is returned when a referenced parent does not exist
	// or is owned by a different user.
	ErrParentNotFound = errors.New("parent node not found")
	// ErrParentNotFolder is returned when a referenced parent exists but is
	// not a folder.
	ErrParentNotFolder = errors.New("parent node is not a folder")
	// ErrParentInSubtree is returned when a reparent would place a node
	// under itself or one of its own descendants.
	ErrParentInSubtree = errors.New("parent node is within the node's own subtree")
)

// Store provides access to the bpmn_nodes collection.
type Store struct {
	db     *mongo.Database
	c      *mongo.Collection
	logger *zap.Logger
}

// New creates a new node store.
func New(db *mongo.Database, logger *zap.Logger) *Store {
	return &Store{
		db:     db,
		c:      db.Collection(CollectionName),
		logger: logger,
	}
}

// CreateInput contains the input for creating a node.
type CreateInput struct {
	ID       string // optional; generated when empty
	UserID   string
	Type     string // models.NodeTypeFolder or models.NodeTypeFile
	Name     string
	ParentID *string

	// File payload; ignored for folders.
	Content           string
	Process           *models.ProcessDetails
	SignOff           *models.SignOffBlock
	History           *models.HistoryBlock
	Trigger           *models.TriggerBlock
	Advanced          *models.AdvancedDetails
	SelectedStandards []string
	SelectedKPIs      []string
	CreatedBy         string
}

// Create inserts a new node and, when a parent is given, appends the new id
// to the parent's children cache. The parent must exist, belong to the same
// user, and be a folder.
func (s *Store) Create(ctx context.Context, input CreateInput) (*models.Node, error) {
	id := input.ID
	if id == "" {
		id = uuid.NewString()
	}

	now := time.Now().UTC()
	n := models.Node{
		ID:        id,
		UserID:    input.UserID,
		Type:      input.Type,
		Name:      input.Name,
		NameCI:    text.Fold(input.Name),
		ParentID:  input.ParentID,
		CreatedBy: input.CreatedBy,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if input.Type == models.NodeTypeFile {
		n.Content = input.Content
		n.Process = input.Process
		n.SignOff = input.SignOff
		n.History = input.History
		n.Trigger = input.Trigger
		n.Advanced = input.Advanced
		n.SelectedStandards = input.SelectedStandards
		n.SelectedKPIs = input.SelectedKPIs
	}

	err := txn.Run(ctx, s.db, s.logger, func(ctx context.Context) error {
		if input.ParentID != nil {
			if err := s.requireFolder(ctx, input.UserID, *input.ParentID); err != nil {
				return err
			}
		}
		if _, err := s.c.InsertOne(ctx, n); err != nil {
			return err
		}
		if input.ParentID != nil {
			return s.pushChild(ctx, input.UserID, *input.ParentID, id)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &n, nil
}

// GetByID retrieves a node by id, scoped to the owning user.
func (s *Store) GetByID(ctx context.Context, userID, id string) (*models.Node, error) {
	var n models.Node
	err := s.c.FindOne(ctx, bson.M{"_id": id, "user_id": userID}).Decode(&n)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &n, nil
}

// ListByUser returns every node the user owns, folders first, name-sorted.
func (s *Store) ListByUser(ctx context.Context, userID string) ([]models.Node, error) {
	findOpts := options.Find().SetSort(bson.D{
		{Key: "type", Value: -1}, // folders before files
		{Key: "name_ci", Value: 1},
	})
	cursor, err := s.c.Find(ctx, bson.M{"user_id": userID}, findOpts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var nodes []models.Node
	if err := cursor.All(ctx, &nodes); err != nil {
		return nil, err
	}
	return nodes, nil
}

// ListByParent returns the user's nodes whose parent_id equals parentID.
// Pass nil for root-level nodes. This queries the parent pointer directly
// rather than trusting the children cache.
func (s *Store) ListByParent(ctx context.Context, userID string, parentID *string) ([]models.Node, error) {
	filter := bson.M{"user_id": userID, "parent_id": parentID}
	findOpts := options.Find().SetSort(bson.D{{Key: "name_ci", Value: 1}})

	cursor, err := s.c.Find(ctx, filter, findOpts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var nodes []models.Node
	if err := cursor.All(ctx, &nodes); err != nil {
		return nil, err
	}
	return nodes, nil
}

// ListFilesWithSelections returns every file node across all users,
// projected down to its id and selection lists. The reconcile job uses this
// to rebuild the KPI/standard reverse references from the authoritative
// source.
func (s *Store) ListFilesWithSelections(ctx context.Context) ([]models.Node, error) {
	findOpts := options.Find().SetProjection(bson.M{
		"_id":                1,
		"user_id":            1,
		"type":               1,
		"selected_kpis":      1,
		"selected_standards": 1,
	})
	cursor, err := s.c.Find(ctx, bson.M{"type": models.NodeTypeFile}, findOpts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var nodes []models.Node
	if err := cursor.All(ctx, &nodes); err != nil {
		return nil, err
	}
	return nodes, nil
}

// UpdateInput contains the mutable fields for a node update. Nil pointers
// leave the stored value untouched.
type UpdateInput struct {
	Name    *string
	Content *string

	Process *models.ProcessDetails
	SignOff *models.SignOffBlock
	History *models.HistoryBlock
	Trigger *models.TriggerBlock

	// Advanced triggers an unconditional patch-version bump and a fresh
	// modification date on the stored block.
	Advanced *models.AdvancedDetails

	SelectedStandards []string
	SelectedKPIs      []string

	// ParentID moves the node: the id is pulled from the old parent's
	// children and pushed onto the new parent's. Use MoveToRoot to move a
	// nested node to the root level.
	ParentID   *string
	MoveToRoot bool
}

// Update applies a partial update and returns the updated node. Reparenting
// and the children-cache maintenance run inside one transaction.
func (s *Store) Update(ctx context.Context, userID, id string, input UpdateInput) (*models.Node, error) {
	var updated models.Node

	err := txn.Run(ctx, s.db, s.logger, func(ctx context.Context) error {
		current, err := s.GetByID(ctx, userID, id)
		if err != nil {
			return err
		}

		set := bson.M{"updated_at": time.Now().UTC()}
		if input.Name != nil {
			set["name"] = *input.Name
			set["name_ci"] = text.Fold(*input.Name)
		}
		if input.Content != nil {
			set["content"] = *input.Content
		}
		if input.Process != nil {
			set["process"] = input.Process
		}
		if input.SignOff != nil {
			set["sign_off"] = input.SignOff
		}
		if input.History != nil {
			set["history"] = input.History
		}
		if input.Trigger != nil {
			set["trigger"] = input.Trigger
		}
		if input.Advanced != nil {
			adv := *input.Advanced
			prev := ""
			if current.Advanced != nil {
				prev = current.Advanced.Version
			}
			adv.Version = BumpPatch(prev)
			adv.ModifiedAt = time.Now().UTC()
			set["advanced"] = adv
		}
		if input.SelectedStandards != nil {
			set["selected_standards"] = input.SelectedStandards
		}
		if input.SelectedKPIs != nil {
			set["selected_kpis"] = input.SelectedKPIs
		}

		// Reparent: pull from the old parent, validate and push to the new.
		newParent := current.ParentID
		if input.MoveToRoot {
			newParent = nil
		} else if input.ParentID != nil {
			newParent = input.ParentID
		}
		if !sameParent(current.ParentID, newParent) {
			if newParent != nil {
				if err := s.requireFolder(ctx, userID, *newParent); err != nil {
					return err
				}
				if err := s.ensureOutsideSubtree(ctx, userID, id, *newParent); err != nil {
					return err
				}
			}
			if current.ParentID != nil {
				if err := s.pullChild(ctx, userID, *current.ParentID, id); err != nil {
					return err
				}
			}
			if newParent != nil {
				if err := s.pushChild(ctx, userID, *newParent, id); err != nil {
					return err
				}
				set["parent_id"] = *newParent
			}
		}

		update := bson.M{"$set": set}
		if !sameParent(current.ParentID, newParent) && newParent == nil {
			update["$unset"] = bson.M{"parent_id": ""}
		}

		res := s.c.FindOneAndUpdate(ctx,
			bson.M{"_id": id, "user_id": userID},
			update,
			options.FindOneAndUpdate().SetReturnDocument(options.After),
		)
		if err := res.Decode(&updated); err != nil {
			if err == mongo.ErrNoDocuments {
				return ErrNotFound
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// Delete removes the node and every descendant, depth-first, and pulls the
// node's id from its former parent's children. Descendants are discovered by
// querying parent_id, not by trusting the children cache, so cache drift
// cannot leave orphans behind. The deleted nodes are returned so callers can
// prune KPI and standard back-references held by deleted files.
func (s *Store) Delete(ctx context.Context, userID, id string) ([]models.Node, error) {
	root, err := s.GetByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	subtree, err := s.collectSubtree(ctx, userID, *root)
	if err != nil {
		return nil, err
	}

	ids := make([]string, len(subtree))
	for i, n := range subtree {
		ids[i] = n.ID
	}

	err = txn.Run(ctx, s.db, s.logger, func(ctx context.Context) error {
		res, err := s.c.DeleteMany(ctx, bson.M{"user_id": userID, "_id": bson.M{"$in": ids}})
		if err != nil {
			return err
		}
		if res.DeletedCount != int64(len(ids)) {
			s.logger.Warn("cascading delete removed fewer nodes than collected",
				zap.String("node_id", id),
				zap.Int64("deleted", res.DeletedCount),
				zap.Int("collected", len(ids)))
		}
		if root.ParentID != nil {
			return s.pullChild(ctx, userID, *root.ParentID, id)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return subtree, nil
}

// collectSubtree gathers the node and all descendants depth-first.
func (s *Store) collectSubtree(ctx context.Context, userID string, n models.Node) ([]models.Node, error) {
	out := []models.Node{n}
	if !n.IsFolder() {
		return out, nil
	}
	children, err := s.ListByParent(ctx, userID, &n.ID)
	if err != nil {
		return nil, err
	}
	for _, child := range children {
		sub, err := s.collectSubtree(ctx, userID, child)
		if err != nil {
			return nil, err
		}
		out = append(out, sub...)
	}
	return out, nil
}

// ensureOutsideSubtree rejects moving a node under itself or one of its own
// descendants; a parent-pointer cycle would orphan the subtree from the tree
// view and make the cascading delete recurse without end. It walks the
// candidate parent's ancestor chain toward the root: the chain reaching the
// node being moved means the candidate sits inside that node's subtree.
func (s *Store) ensureOutsideSubtree(ctx context.Context, userID, id, parentID string) error {
	seen := make(map[string]struct{})
	cur := &parentID
	for cur != nil {
		if *cur == id {
			return fmt.Errorf("%w: %s", ErrParentInSubtree, parentID)
		}
		if _, ok := seen[*cur]; ok {
			// Pre-existing loop not involving this node; stop walking.
			return nil
		}
		seen[*cur] = struct{}{}
		anc, err := s.GetByID(ctx, userID, *cur)
		if err == ErrNotFound {
			return nil
		}
		if err != nil {
			return err
		}
		cur = anc.ParentID
	}
	return nil
}

// requireFolder verifies that the given id names an existing folder owned by
// the user.
func (s *Store) requireFolder(ctx context.Context, userID, id string) error {
	parent, err := s.GetByID(ctx, userID, id)
	if err == ErrNotFound {
		return ErrParentNotFound
	}
	if err != nil {
		return err
	}
	if !parent.IsFolder() {
		return fmt.Errorf("%w: %s", ErrParentNotFolder, id)
	}
	return nil
}

// pushChild appends childID to the folder's children cache. $addToSet keeps
// the operation idempotent under retries.
func (s *Store) pushChild(ctx context.Context, userID, folderID, childID string) error {
	_, err := s.c.UpdateOne(ctx,
		bson.M{"_id": folderID, "user_id": userID},
		bson.M{"$addToSet": bson.M{"children": childID}},
	)
	return err
}

// pullChild removes childID from the folder's children cache. $pull on a
// missing value is a no-op, so repeated pulls are safe.
func (s *Store) pullChild(ctx context.Context, userID, folderID, childID string) error {
	_, err := s.c.UpdateOne(ctx,
		bson.M{"_id": folderID, "user_id": userID},
		bson.M{"$pull": bson.M{"children": childID}},
	)
	return err
}

func sameParent(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

// BumpPatch increments the patch component of a "major.minor.patch" version
// string. Unparseable components fall back to major=1, minor=0, patch=0, so
// a missing or malformed version becomes "1.0.1".
func BumpPatch(version string) string {
	major, minor, patch := 1, 0, 0
	parts := strings.Split(version, ".")
	if len(parts) > 0 {
		if v, err := strconv.Atoi(strings.TrimSpace(parts[0])); err == nil {
			major = v
		}
	}
	if len(parts) > 1 {
		if v, err := strconv.Atoi(strings.TrimSpace(parts[1])); err == nil {
			minor = v
		}
	}
	if len(parts) > 2 {
		if v, err := strconv.Atoi(strings.TrimSpace(parts[2])); err == nil {
			patch = v
		}
	}
	return fmt.Sprintf("%d.%d.%d", major, minor, patch+1)
}
