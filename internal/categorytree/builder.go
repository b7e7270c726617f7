// Package categorytree turns flat category exports into nested forests.
//
// Parent references are matched on a normalized key (upper case, '-' replaced
// by '_'), so "fresh-food" and "FRESH_FOOD" name the same category. The
// original id is kept untouched on the output node.
package categorytree

import (
	"strings"

	"elafcatalog/internal/models"
)

// Options tunes a build. The zero value reproduces the plain conversion.
type Options struct {
	// RejectCycles fails the build when a record's parent chain loops
	// instead of dropping the looping records from the forest.
	RejectCycles bool
}

// Report is the outcome of BuildWithOptions.
type Report struct {
	Forest []models.Node
	// Unreachable lists ids of records on a parent cycle. They are linked
	// to each other but to no root, so they are absent from Forest.
	Unreachable []string
	// Collisions lists normalized keys shared by more than one record. The
	// last record with the key receives the children.
	Collisions []string
}

// Nodes returns the number of nodes in the forest.
func (r *Report) Nodes() int {
	return Count(r.Forest)
}

type node struct {
	id       string
	name     models.LocalizedName
	children []*node
}

// NormalizeKey returns the key used to match a parent reference to a record id.
func NormalizeKey(id string) string {
	return strings.ReplaceAll(strings.ToUpper(id), "-", "_")
}

// Build converts flat records into a forest. Roots and children keep the
// order in which their records appear in the input.
func Build(records []models.FlatRecord) ([]models.Node, error) {
	report, err := BuildWithOptions(records, Options{})
	if err != nil {
		return nil, err
	}
	return report.Forest, nil
}

// BuildWithOptions is Build with cycle handling and diagnostics.
func BuildWithOptions(records []models.FlatRecord, opts Options) (*Report, error) {
	if err := Validate(records); err != nil {
		return nil, err
	}

	report := &Report{}

	// index pass
	nodes := make([]*node, len(records))
	byKey := make(map[string]*node, len(records))
	seen := make(map[string]bool)
	for i, rec := range records {
		n := &node{id: rec.ID, name: copyName(rec.Name)}
		key := NormalizeKey(rec.ID)
		if _, dup := byKey[key]; dup && !seen[key] {
			seen[key] = true
			report.Collisions = append(report.Collisions, key)
		}
		byKey[key] = n
		nodes[i] = n
	}

	// link pass
	var roots []*node
	for i, rec := range records {
		current := nodes[i]
		if !rec.HasParent() {
			roots = append(roots, current)
			continue
		}
		parent, ok := byKey[NormalizeKey(*rec.ParentID)]
		if !ok {
			roots = append(roots, current)
			continue
		}
		parent.children = append(parent.children, current)
	}

	reached := make(map[*node]bool, len(nodes))
	for _, root := range roots {
		mark(root, reached)
	}
	for i, n := range nodes {
		if reached[n] {
			continue
		}
		if opts.RejectCycles {
			return nil, &RecordError{Index: i, ID: records[i].ID, Err: ErrCycle}
		}
		report.Unreachable = append(report.Unreachable, n.id)
	}

	// compaction pass
	report.Forest = make([]models.Node, 0, len(roots))
	for _, root := range roots {
		report.Forest = append(report.Forest, freeze(root))
	}
	return report, nil
}

// Validate checks that every record carries an id and a name.
func Validate(records []models.FlatRecord) error {
	for i, rec := range records {
		if rec.ID == "" {
			return &RecordError{Index: i, Err: ErrMissingID}
		}
		if rec.Name == nil {
			return &RecordError{Index: i, ID: rec.ID, Err: ErrMissingName}
		}
	}
	return nil
}

// Count returns the number of nodes in a forest, descendants included.
func Count(forest []models.Node) int {
	total := 0
	for _, n := range forest {
		total += 1 + Count(n.SubCategories)
	}
	return total
}

func mark(n *node, reached map[*node]bool) {
	if reached[n] {
		return
	}
	reached[n] = true
	for _, child := range n.children {
		mark(child, reached)
	}
}

// freeze copies the linked node into an immutable value. Only called on
// nodes reachable from a root, which never sit on a cycle.
func freeze(n *node) models.Node {
	out := models.Node{ID: n.id, Name: n.name}
	if len(n.children) == 0 {
		return out
	}
	out.SubCategories = make([]models.Node, 0, len(n.children))
	for _, child := range n.children {
		out.SubCategories = append(out.SubCategories, freeze(child))
	}
	return out
}

func copyName(name *models.LocalizedName) models.LocalizedName {
	var out models.LocalizedName
	if name.Ar != nil {
		ar := *name.Ar
		out.Ar = &ar
	}
	if name.En != nil {
		en := *name.En
		out.En = &en
	}
	return out
}
