package categorytree

import (
	"errors"
	"testing"

	"elafcatalog/internal/models"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func name(ar, en string) *models.LocalizedName {
	return &models.LocalizedName{Ar: models.StringPtr(ar), En: models.StringPtr(en)}
}

func rec(id, parent string) models.FlatRecord {
	r := models.FlatRecord{ID: id, Name: name(id+"-ar", id+"-en")}
	if parent != "" {
		r.ParentID = models.StringPtr(parent)
	}
	return r
}

func leaf(id string) models.Node {
	return models.Node{ID: id, Name: *name(id+"-ar", id+"-en")}
}

func branch(id string, children ...models.Node) models.Node {
	n := leaf(id)
	n.SubCategories = children
	return n
}

func TestNormalizeKey(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"fresh-food", "FRESH_FOOD"},
		{"FRESH_FOOD", "FRESH_FOOD"},
		{"Fresh-Food_x", "FRESH_FOOD_X"},
		{"a--b", "A__B"},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeKey(tt.in))
		})
	}
}

func TestBuild(t *testing.T) {
	tests := []struct {
		name    string
		records []models.FlatRecord
		want    []models.Node
	}{
		{
			name:    "empty input",
			records: nil,
			want:    []models.Node{},
		},
		{
			name:    "no parents gives a flat forest in input order",
			records: []models.FlatRecord{rec("dairy", ""), rec("bakery", ""), rec("fruits", "")},
			want:    []models.Node{leaf("dairy"), leaf("bakery"), leaf("fruits")},
		},
		{
			name:    "parent matched after normalization",
			records: []models.FlatRecord{rec("fresh-food", ""), rec("milk", "FRESH_FOOD")},
			want:    []models.Node{branch("fresh-food", leaf("milk"))},
		},
		{
			name:    "unresolvable parent becomes a root",
			records: []models.FlatRecord{rec("fruits", ""), rec("orphan", "ghost")},
			want:    []models.Node{leaf("fruits"), leaf("orphan")},
		},
		{
			name:    "empty parent id is a root",
			records: []models.FlatRecord{{ID: "x", Name: name("x-ar", "x-en"), ParentID: models.StringPtr("")}},
			want:    []models.Node{leaf("x")},
		},
		{
			name: "children keep input order even before their parent",
			records: []models.FlatRecord{
				rec("apple", "fruits"),
				rec("fruits", ""),
				rec("banana", "fruits"),
				rec("veg", ""),
			},
			want: []models.Node{branch("fruits", leaf("apple"), leaf("banana")), leaf("veg")},
		},
		{
			name: "nested levels",
			records: []models.FlatRecord{
				rec("food", ""),
				rec("fresh-food", "food"),
				rec("fruits", "fresh_food"),
				rec("apple", "FRUITS"),
			},
			want: []models.Node{
				branch("food", branch("fresh-food", branch("fruits", leaf("apple")))),
			},
		},
		{
			name: "colliding keys attach children to the last record",
			records: []models.FlatRecord{
				rec("fresh-food", ""),
				rec("FRESH_FOOD", ""),
				rec("milk", "fresh-food"),
			},
			want: []models.Node{leaf("fresh-food"), branch("FRESH_FOOD", leaf("milk"))},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Build(tt.records)
			require.NoError(t, err)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("forest mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestBuild_CountMatchesInputWithoutCycles(t *testing.T) {
	records := []models.FlatRecord{
		rec("a", ""),
		rec("b", "a"),
		rec("c", "b"),
		rec("d", "a"),
		rec("e", "missing"),
		rec("A", ""),
	}

	report, err := BuildWithOptions(records, Options{})
	require.NoError(t, err)
	assert.Equal(t, len(records), report.Nodes())
	assert.Empty(t, report.Unreachable)
	assert.Equal(t, []string{"A"}, report.Collisions)
}

func TestBuild_CollidingIDsKeepBothRecords(t *testing.T) {
	records := []models.FlatRecord{
		rec("fresh-food", ""),
		rec("FRESH_FOOD", ""),
		rec("milk", "fresh_food"),
	}

	report, err := BuildWithOptions(records, Options{})
	require.NoError(t, err)

	want := []models.Node{leaf("fresh-food"), branch("FRESH_FOOD", leaf("milk"))}
	if diff := cmp.Diff(want, report.Forest); diff != "" {
		t.Errorf("forest mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, []string{"FRESH_FOOD"}, report.Collisions)
}

func TestBuild_SelfReference(t *testing.T) {
	records := []models.FlatRecord{rec("root", ""), rec("loop", "LOOP")}

	report, err := BuildWithOptions(records, Options{})
	require.NoError(t, err)
	assert.Equal(t, []models.Node{leaf("root")}, report.Forest)
	assert.Equal(t, []string{"loop"}, report.Unreachable)

	_, err = BuildWithOptions(records, Options{RejectCycles: true})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrCycle))
	var recErr *RecordError
	require.ErrorAs(t, err, &recErr)
	assert.Equal(t, 1, recErr.Index)
	assert.Equal(t, "loop", recErr.ID)
}

func TestBuild_ParentCycle(t *testing.T) {
	records := []models.FlatRecord{
		rec("a", "c"),
		rec("b", "a"),
		rec("c", "b"),
		rec("d", "b"),
		rec("root", ""),
	}

	report, err := BuildWithOptions(records, Options{})
	require.NoError(t, err)
	assert.Equal(t, []models.Node{leaf("root")}, report.Forest)
	assert.Equal(t, []string{"a", "b", "c", "d"}, report.Unreachable)

	_, err = BuildWithOptions(records, Options{RejectCycles: true})
	assert.ErrorIs(t, err, ErrCycle)
}

func TestBuild_MissingLanguagePassesThrough(t *testing.T) {
	records := []models.FlatRecord{
		{ID: "only-en", Name: &models.LocalizedName{En: models.StringPtr("Only English")}},
		{ID: "none", Name: &models.LocalizedName{}},
	}

	forest, err := Build(records)
	require.NoError(t, err)
	require.Len(t, forest, 2)
	assert.Nil(t, forest[0].Name.Ar)
	assert.Equal(t, "Only English", *forest[0].Name.En)
	assert.Nil(t, forest[1].Name.Ar)
	assert.Nil(t, forest[1].Name.En)
}

func TestBuild_DoesNotAliasInput(t *testing.T) {
	records := []models.FlatRecord{rec("fruits", "")}

	forest, err := Build(records)
	require.NoError(t, err)

	*records[0].Name.En = "changed"
	assert.Equal(t, "fruits-en", *forest[0].Name.En)
}

func TestBuild_Validation(t *testing.T) {
	tests := []struct {
		name    string
		records []models.FlatRecord
		wantErr error
		index   int
		id      string
	}{
		{
			name:    "missing id",
			records: []models.FlatRecord{rec("ok", ""), {Name: name("a", "b")}},
			wantErr: ErrMissingID,
			index:   1,
		},
		{
			name:    "missing name",
			records: []models.FlatRecord{rec("ok", ""), rec("fine", "ok"), {ID: "nameless"}},
			wantErr: ErrMissingName,
			index:   2,
			id:      "nameless",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			forest, err := Build(tt.records)
			assert.Nil(t, forest)
			require.ErrorIs(t, err, tt.wantErr)

			var recErr *RecordError
			require.ErrorAs(t, err, &recErr)
			assert.Equal(t, tt.index, recErr.Index)
			assert.Equal(t, tt.id, recErr.ID)
		})
	}
}

func TestRecordError_Message(t *testing.T) {
	err := &RecordError{Index: 3, ID: "milk", Err: ErrMissingName}
	assert.Equal(t, `record 3 (id "milk"): category record has no name`, err.Error())

	err = &RecordError{Index: 0, Err: ErrMissingID}
	assert.Equal(t, "record 0: category record has no id", err.Error())
}
