package types

import (
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	ENTRY_TYPE_ENTRY        = "entry"
	ENTRY_TYPE_BRANCH_ENTRY = "branch_entry"
)

// EntryRow is one stored entry as read from the entry collections. The
// submitted payload stays a raw JSON blob (EntryData); it is only decoded
// during export, row by row, so a malformed blob never breaks a query.
type EntryRow struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	EntryUUID      string             `bson:"entry_uuid" json:"entry_uuid"`
	ProjectRef     string             `bson:"project_ref" json:"project_ref"`
	FormRef        string             `bson:"form_ref" json:"form_ref"`
	OwnerInputRef  string             `bson:"owner_input_ref,omitempty" json:"owner_input_ref,omitempty"`
	OwnerEntryUUID string             `bson:"owner_entry_uuid,omitempty" json:"owner_entry_uuid,omitempty"`
	Title          string             `bson:"title" json:"title"`
	EntryData      string             `bson:"entry_data" json:"entry_data"`
	BranchCounts   string             `bson:"branch_counts,omitempty" json:"branch_counts,omitempty"`
	UserID         int64              `bson:"user_id" json:"user_id"`
	UploadedAt     time.Time          `bson:"uploaded_at" json:"uploaded_at"`
}

// EntryDocument is the decoded shape of EntryRow.EntryData.
type EntryDocument struct {
	Type          string        `json:"type"`
	Entry         *EntryPayload `json:"entry,omitempty"`
	BranchEntry   *EntryPayload `json:"branch_entry,omitempty"`
	Relationships Relationships `json:"relationships,omitempty"`
}

// Payload returns the nested payload selected by the document type.
func (d EntryDocument) Payload() (*EntryPayload, error) {
	switch d.Type {
	case ENTRY_TYPE_ENTRY:
		if d.Entry == nil {
			return nil, fmt.Errorf("entry document without entry payload")
		}
		return d.Entry, nil
	case ENTRY_TYPE_BRANCH_ENTRY:
		if d.BranchEntry == nil {
			return nil, fmt.Errorf("branch entry document without branch_entry payload")
		}
		return d.BranchEntry, nil
	default:
		return nil, fmt.Errorf("unknown entry document type: %s", d.Type)
	}
}

type EntryPayload struct {
	EntryUUID string            `json:"entry_uuid"`
	CreatedAt string            `json:"created_at"`
	Title     string            `json:"title,omitempty"`
	Answers   map[string]Answer `json:"answers"`
}

type Answer struct {
	Answer interface{} `json:"answer"`
}

type Relationships struct {
	Parent *RelationshipData `json:"parent,omitempty"`
	Branch *RelationshipData `json:"branch,omitempty"`
}

type RelationshipData struct {
	Data *RelationshipRefs `json:"data,omitempty"`
}

type RelationshipRefs struct {
	ParentFormRef   string `json:"parent_form_ref,omitempty"`
	ParentEntryUUID string `json:"parent_entry_uuid,omitempty"`
	OwnerInputRef   string `json:"owner_input_ref,omitempty"`
	OwnerEntryUUID  string `json:"owner_entry_uuid,omitempty"`
}

// ParentEntryUUID returns the linked parent entry UUID, or "" for top level
// hierarchy entries.
func (d EntryDocument) ParentEntryUUID() string {
	if d.Relationships.Parent == nil || d.Relationships.Parent.Data == nil {
		return ""
	}
	return d.Relationships.Parent.Data.ParentEntryUUID
}

// OwnerEntryUUID returns the owning entry UUID for branch entry documents.
func (d EntryDocument) OwnerEntryUUID() string {
	if d.Relationships.Branch == nil || d.Relationships.Branch.Data == nil {
		return ""
	}
	return d.Relationships.Branch.Data.OwnerEntryUUID
}
