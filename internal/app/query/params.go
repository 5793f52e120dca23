package query

import (
	"slices"
	"strconv"
	"strings"
)

// Params is a flat filter map, one raw value per key. Multi-value filters are comma-joined.
type Params map[string]string

// KeySet is an allow-list of parameter names.
type KeySet map[string]struct{}

// NewKeySet builds a KeySet from the given names.
func NewKeySet(keys ...string) KeySet {
	s := make(KeySet, len(keys))
	for _, k := range keys {
		s[k] = struct{}{}
	}
	return s
}

// Has reports whether key is in the set.
func (s KeySet) Has(key string) bool {
	_, ok := s[key]
	return ok
}

// Union returns a new set holding the keys of s and every other set.
func (s KeySet) Union(others ...KeySet) KeySet {
	out := make(KeySet, len(s))
	for k := range s {
		out[k] = struct{}{}
	}
	for _, o := range others {
		for k := range o {
			out[k] = struct{}{}
		}
	}
	return out
}

// ExtractString returns the trimmed value of key. ok is false when the key is absent or blank.
func ExtractString(params Params, key string) (value string, ok bool) {
	raw, present := params[key]
	if !present {
		return "", false
	}
	value = strings.TrimSpace(raw)
	return value, value != ""
}

// ExtractLowerCase is ExtractString followed by lower-casing.
func ExtractLowerCase(params Params, key string) (string, bool) {
	v, ok := ExtractString(params, key)
	return strings.ToLower(v), ok
}

// ExtractInt64 parses key as a base-10 integer. A present but unparsable value is an InvalidFilter error.
func ExtractInt64(params Params, key string) (value int64, ok bool, err error) {
	raw, ok := ExtractString(params, key)
	if !ok {
		return 0, false, nil
	}
	value, err = strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, false, invalidFilter(key, raw, "expected an integer for")
	}
	return value, true, nil
}

// ExtractInt is ExtractInt64 narrowed to int.
func ExtractInt(params Params, key string) (int, bool, error) {
	raw, ok := ExtractString(params, key)
	if !ok {
		return 0, false, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false, invalidFilter(key, raw, "expected an integer for")
	}
	return value, true, nil
}

// ExtractList splits key on commas, trims and lower-cases each element and drops empties.
// An absent key yields an empty, non-nil slice.
func ExtractList(params Params, key string) []string {
	return splitList(params[key])
}

// ExtractInt64List is ExtractList with every element parsed as an integer.
func ExtractInt64List(params Params, key string) ([]int64, error) {
	items := ExtractList(params, key)
	out := make([]int64, 0, len(items))
	for _, item := range items {
		n, err := strconv.ParseInt(item, 10, 64)
		if err != nil {
			return nil, invalidFilter(key, item, "expected an integer for")
		}
		out = append(out, n)
	}
	return out, nil
}

func splitList(raw string) []string {
	out := []string{}
	for _, part := range strings.Split(raw, ",") {
		part = strings.ToLower(strings.TrimSpace(part))
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Validate rejects params holding any key outside allowed. All offending keys are named, sorted.
func Validate(params Params, allowed KeySet) error {
	return validate(params, func(key string) bool { return allowed.Has(key) })
}

func validate(params Params, allowed func(string) bool) error {
	var unknown []string
	for key := range params {
		if !allowed(key) {
			unknown = append(unknown, key)
		}
	}
	if len(unknown) == 0 {
		return nil
	}
	slices.Sort(unknown)
	return invalidFilter(strings.Join(unknown, ","), "", "unknown parameter")
}
