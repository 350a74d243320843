package models

import "time"

// Node types. A node is either a folder (structural) or a file (a BPMN
// process document).
const (
	NodeTypeFolder = "folder"
	NodeTypeFile   = "file"
)

// Node represents one entry in a user's process hierarchy.
//
// The tree is stored flat: each node carries a parent pointer, and each
// folder additionally caches its child ids in Children. The cache is
// maintained alongside parent_id inside the same transaction (see the node
// store), and the delete walk queries parent_id directly so drift in the
// cache cannot hide descendants.
type Node struct {
	ID       string   `bson:"_id"                 json:"id"`
	UserID   string   `bson:"user_id"             json:"user_id"`
	Type     string   `bson:"type"                json:"type"` // "folder" or "file"
	Name     string   `bson:"name"                json:"name"`
	NameCI   string   `bson:"name_ci"             json:"-"` // Case-insensitive for sorting/search
	ParentID *string  `bson:"parent_id,omitempty" json:"parent_id,omitempty"` // nil = root
	Children []string `bson:"children,omitempty"  json:"child_ids,omitempty"` // folders only

	// File payload. Conventionally absent on folders.
	Content           string           `bson:"content,omitempty"            json:"content,omitempty"` // BPMN diagram XML
	Process           *ProcessDetails  `bson:"process,omitempty"            json:"process,omitempty"`
	SignOff           *SignOffBlock    `bson:"sign_off,omitempty"           json:"sign_off,omitempty"`
	History           *HistoryBlock    `bson:"history,omitempty"            json:"history,omitempty"`
	Trigger           *TriggerBlock    `bson:"trigger,omitempty"            json:"trigger,omitempty"`
	Advanced          *AdvancedDetails `bson:"advanced,omitempty"           json:"advanced,omitempty"`
	SelectedStandards []string         `bson:"selected_standards,omitempty" json:"selected_standards,omitempty"`
	SelectedKPIs      []string         `bson:"selected_kpis,omitempty"      json:"selected_kpis,omitempty"`

	CreatedBy string    `bson:"created_by,omitempty" json:"created_by,omitempty"`
	CreatedAt time.Time `bson:"created_at"           json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at"           json:"updated_at"`
}

// IsFolder returns true if the node is a folder.
func (n *Node) IsFolder() bool {
	return n.Type == NodeTypeFolder
}

// IsRoot returns true if the node is at the root level.
func (n *Node) IsRoot() bool {
	return n.ParentID == nil
}

// ProcessDetails holds the descriptive metadata entered in the process form.
type ProcessDetails struct {
	Name        string `bson:"name,omitempty"        json:"name,omitempty"`
	Description string `bson:"description,omitempty" json:"description,omitempty"`
	Owner       string `bson:"owner,omitempty"       json:"owner,omitempty"`
	Manager     string `bson:"manager,omitempty"     json:"manager,omitempty"`
}

// SignOffBlock records who approved the process document and when.
type SignOffBlock struct {
	Responsibility string `bson:"responsibility,omitempty" json:"responsibility,omitempty"`
	Name           string `bson:"name,omitempty"           json:"name,omitempty"`
	Date           string `bson:"date,omitempty"           json:"date,omitempty"`
	Signature      string `bson:"signature,omitempty"      json:"signature,omitempty"`
}

// HistoryBlock records one revision entry for the document history table.
type HistoryBlock struct {
	Version string `bson:"version,omitempty" json:"version,omitempty"`
	Date    string `bson:"date,omitempty"    json:"date,omitempty"`
	Author  string `bson:"author,omitempty"  json:"author,omitempty"`
	Changes string `bson:"changes,omitempty" json:"changes,omitempty"`
}

// TriggerBlock describes what starts the process.
type TriggerBlock struct {
	Type        string `bson:"type,omitempty"        json:"type,omitempty"`
	Description string `bson:"description,omitempty" json:"description,omitempty"`
}

// AdvancedDetails is the version/status/audit metadata block attached to
// file nodes. Supplying it on update always bumps the patch component of
// Version and stamps ModifiedAt; callers cannot suppress this.
type AdvancedDetails struct {
	Version           string    `bson:"version,omitempty"            json:"version,omitempty"` // "major.minor.patch"
	Status            string    `bson:"status,omitempty"             json:"status,omitempty"`
	Classification    string    `bson:"classification,omitempty"     json:"classification,omitempty"`
	EffectiveDate     string    `bson:"effective_date,omitempty"     json:"effective_date,omitempty"`
	ReviewDate        string    `bson:"review_date,omitempty"        json:"review_date,omitempty"`
	LastModifiedBy    string    `bson:"last_modified_by,omitempty"   json:"last_modified_by,omitempty"`
	ModifiedAt        time.Time `bson:"modified_at,omitempty"        json:"modified_at,omitempty"`
	ChangeDescription string    `bson:"change_description,omitempty" json:"change_description,omitempty"`
	CreatedBy         string    `bson:"created_by,omitempty"         json:"created_by,omitempty"`
}
