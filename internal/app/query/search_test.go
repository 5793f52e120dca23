package query

import (
	"cmp"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testSize struct {
	id    int64
	name  string
	notes *string
}

func sizeFields() Fields[testSize] {
	return Fields[testSize]{
		"name": Text(func(s testSize) string { return s.name }),
		"notes": func(s testSize) (string, bool) {
			if s.notes == nil {
				return "", false
			}
			return *s.notes, true
		},
	}
}

func sizeSorts() Sorts[testSize] {
	return Sorts[testSize]{
		"id":   func(a, b testSize) int { return cmp.Compare(a.id, b.id) },
		"name": func(a, b testSize) int { return cmp.Compare(a.name, b.name) },
	}
}

func sizeIDs(items []testSize) []int64 {
	ids := make([]int64, len(items))
	for i, s := range items {
		ids[i] = s.id
	}
	return ids
}

func sizeFixture() []testSize {
	bulk := "Bulk Pack for cafes"
	return []testSize{
		{id: 3, name: "1kg", notes: &bulk},
		{id: 1, name: "250g"},
		{id: 2, name: "500g"},
		{id: 4, name: "250G"},
	}
}

var discard = slog.New(slog.DiscardHandler)

func TestSearch_DefaultSortsByID(t *testing.T) {
	got, err := Search(sizeFixture(), Params{}, sizeFields(), sizeSorts(), discard)
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2, 3, 4}, sizeIDs(got))
}

func TestSearch_FreeText(t *testing.T) {
	tests := []struct {
		name   string
		search string
		want   []int64
	}{
		{"matches any field", "bulk", []int64{3}},
		{"case insensitive", "250G", []int64{1, 4}},
		{"no match", "espresso", []int64{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Search(sizeFixture(), Params{"search": tt.search}, sizeFields(), sizeSorts(), discard)
			require.NoError(t, err)
			assert.Equal(t, tt.want, sizeIDs(got))
		})
	}
}

func TestSearch_FieldEquality(t *testing.T) {
	got, err := Search(sizeFixture(), Params{"name": " 250g "}, sizeFields(), sizeSorts(), discard)
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 4}, sizeIDs(got))

	got, err = Search(sizeFixture(), Params{"name": "1kg", "notes": "bulk pack for cafes"}, sizeFields(), sizeSorts(), discard)
	require.NoError(t, err)
	assert.Equal(t, []int64{3}, sizeIDs(got))

	got, err = Search(sizeFixture(), Params{"name": "1kg", "notes": "other"}, sizeFields(), sizeSorts(), discard)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestSearch_NullFieldNeverMatches(t *testing.T) {
	got, err := Search(sizeFixture(), Params{"notes": ""}, sizeFields(), sizeSorts(), discard)
	require.NoError(t, err)
	assert.Len(t, got, 4, "blank filter value adds no constraint")

	got, err = Search(sizeFixture(), Params{"search": "g"}, sizeFields(), sizeSorts(), discard)
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2, 3, 4}, sizeIDs(got))
}

func TestSearch_SortOrder(t *testing.T) {
	got, err := Search(sizeFixture(), Params{"sort": "name", "order": "DESC"}, sizeFields(), sizeSorts(), discard)
	require.NoError(t, err)
	assert.Equal(t, []int64{2, 1, 4, 3}, sizeIDs(got))
}

func TestSearch_UnknownSortKeepsOrder(t *testing.T) {
	got, err := Search(sizeFixture(), Params{"sort": "weight"}, sizeFields(), sizeSorts(), discard)
	require.NoError(t, err)
	assert.Equal(t, []int64{3, 1, 2, 4}, sizeIDs(got))
}

func TestSearch_RejectsUnknownKeys(t *testing.T) {
	_, err := Search(sizeFixture(), Params{"nmae": "250g"}, sizeFields(), sizeSorts(), discard)
	require.ErrorIs(t, err, ErrInvalidFilter)
	assert.Contains(t, err.Error(), "nmae")
}

func TestSearch_AcceptsPagingKeys(t *testing.T) {
	got, err := Search(sizeFixture(), Params{"page": "3", "size": "1"}, sizeFields(), sizeSorts(), discard)
	require.NoError(t, err)
	assert.Len(t, got, 4, "pagination is left to the caller")
}

func TestSearch_DoesNotMutateInput(t *testing.T) {
	items := sizeFixture()
	_, err := Search(items, Params{"search": "250", "sort": "name"}, sizeFields(), sizeSorts(), discard)
	require.NoError(t, err)
	assert.Equal(t, []int64{3, 1, 2, 4}, sizeIDs(items))
}
