// Package tree reconstructs the nested folder/file hierarchy from the flat
// node collection.
//
// Build is a pure function over an already-loaded slice; it performs no
// database access. Sibling order follows each folder's children cache where
// the cache is accurate; nodes the cache has drifted away from (present by
// parent_id but missing from children) still render, name-sorted, after the
// cached order, so cache drift can never hide a node from the client.
package tree

import (
	"sort"
	"strings"

	"github.com/dalemusser/procdoc/internal/domain/models"
)

// Entry is one node with its resolved children nested beneath it. Only
// folders carry children; files are leaves.
type Entry struct {
	models.Node
	Children []Entry `json:"children,omitempty"`
}

// Build assembles the nested tree for the nodes whose parent pointer equals
// parentID (nil for the root level). The input slice is expected to hold
// all of one user's nodes.
func Build(nodes []models.Node, parentID *string) []Entry {
	byParent := make(map[string][]models.Node)
	byID := make(map[string]models.Node, len(nodes))
	for _, n := range nodes {
		byParent[parentKey(n.ParentID)] = append(byParent[parentKey(n.ParentID)], n)
		byID[n.ID] = n
	}
	return build(byParent, byID, parentID)
}

func build(byParent map[string][]models.Node, byID map[string]models.Node, parentID *string) []Entry {
	siblings := byParent[parentKey(parentID)]
	if len(siblings) == 0 {
		return nil
	}

	ordered := orderSiblings(siblings, cachedOrder(byID, parentID))

	entries := make([]Entry, 0, len(ordered))
	for _, n := range ordered {
		e := Entry{Node: n}
		if n.IsFolder() {
			e.Children = build(byParent, byID, &n.ID)
		}
		entries = append(entries, e)
	}
	return entries
}

// cachedOrder returns the parent folder's children list, or nil at the root
// (the root has no cache; root siblings are name-sorted).
func cachedOrder(byID map[string]models.Node, parentID *string) []string {
	if parentID == nil {
		return nil
	}
	parent, ok := byID[*parentID]
	if !ok {
		return nil
	}
	return parent.Children
}

// orderSiblings sorts nodes by their position in the cached children order,
// with uncached stragglers appended in case-insensitive name order.
func orderSiblings(siblings []models.Node, cached []string) []models.Node {
	pos := make(map[string]int, len(cached))
	for i, id := range cached {
		pos[id] = i
	}

	var inCache, stragglers []models.Node
	for _, n := range siblings {
		if _, ok := pos[n.ID]; ok {
			inCache = append(inCache, n)
		} else {
			stragglers = append(stragglers, n)
		}
	}

	sort.SliceStable(inCache, func(i, j int) bool {
		return pos[inCache[i].ID] < pos[inCache[j].ID]
	})
	sort.SliceStable(stragglers, func(i, j int) bool {
		return strings.ToLower(stragglers[i].Name) < strings.ToLower(stragglers[j].Name)
	})

	return append(inCache, stragglers...)
}

func parentKey(parentID *string) string {
	if parentID == nil {
		return ""
	}
	return *parentID
}
