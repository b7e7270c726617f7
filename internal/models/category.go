package models

import (
	"time"

	"github.com/google/uuid"
)

// LocalizedName holds the Arabic and English display names of a category.
// A nil field means the source record did not carry that language.
type LocalizedName struct {
	Ar *string `json:"ar,omitempty"`
	En *string `json:"en,omitempty"`
}

// FlatRecord is one category entry as it arrives from an export: a bilingual
// name and an optional reference to its parent's id.
type FlatRecord struct {
	ID       string         `json:"id"`
	Name     *LocalizedName `json:"name"`
	ParentID *string        `json:"parentId,omitempty"`
}

// HasParent reports whether the record names a parent at all.
func (r FlatRecord) HasParent() bool {
	return r.ParentID != nil && *r.ParentID != ""
}

// Node is a category in a nested forest. SubCategories is nil for leaves so
// that the field is absent from serialized output.
type Node struct {
	ID            string        `json:"id"`
	Name          LocalizedName `json:"name"`
	SubCategories []Node        `json:"subCategories,omitempty"`
}

// IsLeaf reports whether the node has no children.
func (n Node) IsLeaf() bool {
	return len(n.SubCategories) == 0
}

// TreeSnapshot describes a forest published to object storage
type TreeSnapshot struct {
	TenantID   uuid.UUID `json:"tenant_id"`
	Bucket     string    `json:"bucket"`
	ObjectName string    `json:"object_name"`
	URL        string    `json:"url,omitempty"`
	Roots      int       `json:"roots"`
	Nodes      int       `json:"nodes"`
	Size       int64     `json:"size"`
	CreatedAt  time.Time `json:"created_at"`
}

// ImportSummary is returned after a tenant's flat records were replaced
type ImportSummary struct {
	TenantID    uuid.UUID `json:"tenant_id"`
	Records     int       `json:"records"`
	Roots       int       `json:"roots"`
	Nodes       int       `json:"nodes"`
	Unreachable []string  `json:"unreachable,omitempty"`
	Collisions  []string  `json:"collisions,omitempty"`
}

// StringPtr returns a pointer to s.
func StringPtr(s string) *string {
	return &s
}
