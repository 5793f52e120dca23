package query

import (
	"log/slog"
	"slices"
	"strings"
)

// Accessor reads one searchable text field from an entity. ok is false when the field is null.
type Accessor[T any] func(T) (value string, ok bool)

// Comparator orders two entities the way cmp.Compare does.
type Comparator[T any] func(a, b T) int

// Fields maps filterable parameter names to accessors.
type Fields[T any] map[string]Accessor[T]

// Sorts maps sort keys to comparators.
type Sorts[T any] map[string]Comparator[T]

// Text adapts a plain string getter into an Accessor that is never null.
func Text[T any](get func(T) string) Accessor[T] {
	return func(item T) (string, bool) {
		return get(item), true
	}
}

var searchKeys = NewKeySet(KeySort, KeyOrder, KeySearch, KeyPage, KeySize)

const (
	defaultSearchSort = "id"
	orderAsc          = "asc"
	orderDesc         = "desc"
)

// Search filters and sorts items for any entity type.
//
// "search" keeps items where any field contains the text, case-insensitively.
// Every other parameter naming a field keeps items whose field equals the value,
// case-insensitively; several such parameters combine with AND. "sort" picks a
// comparator (default "id") and "order=desc" reverses it. An unregistered sort key
// leaves the filtered order unchanged. Pagination is left to the caller.
func Search[T any](items []T, params Params, fields Fields[T], sorts Sorts[T], logger *slog.Logger) ([]T, error) {
	allowed := make(KeySet, len(fields))
	for key := range fields {
		allowed[key] = struct{}{}
	}
	if err := Validate(params, searchKeys.Union(allowed)); err != nil {
		return nil, err
	}

	sortKey, ok := ExtractString(params, KeySort)
	if !ok {
		sortKey = defaultSearchSort
	}
	order, ok := ExtractLowerCase(params, KeyOrder)
	if !ok {
		order = orderAsc
	}

	result := slices.Clone(items)

	if text, ok := ExtractLowerCase(params, KeySearch); ok {
		result = slices.DeleteFunc(result, func(item T) bool {
			return !anyFieldContains(item, fields, text)
		})
	}

	keys := make([]string, 0, len(params))
	for key := range params {
		if _, isField := fields[key]; isField && !searchKeys.Has(key) {
			keys = append(keys, key)
		}
	}
	slices.Sort(keys)
	for _, key := range keys {
		want, ok := ExtractLowerCase(params, key)
		if !ok {
			// blank value: no constraint
			continue
		}
		get := fields[key]
		result = slices.DeleteFunc(result, func(item T) bool {
			v, ok := get(item)
			return !ok || strings.ToLower(strings.TrimSpace(v)) != want
		})
	}

	compare, ok := sorts[sortKey]
	if !ok {
		logger.Debug("Unknown sort key, keeping filtered order",
			slog.String("sort", sortKey),
		)
		return result, nil
	}
	if order == orderDesc {
		compare = reversed(compare)
	}
	slices.SortStableFunc(result, compare)

	return result, nil
}

func anyFieldContains[T any](item T, fields Fields[T], text string) bool {
	for _, get := range fields {
		if v, ok := get(item); ok && strings.Contains(strings.ToLower(v), text) {
			return true
		}
	}
	return false
}

func reversed[T any](compare Comparator[T]) Comparator[T] {
	return func(a, b T) int {
		return compare(b, a)
	}
}
