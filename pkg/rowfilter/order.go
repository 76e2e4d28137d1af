package rowfilter

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
)

// OrderKey is one sort column.
type OrderKey struct {
	Field string
	Desc  bool
}

// ParseOrder parses "col", "-col", "col desc" segments separated by commas.
// Only declared fields may be used and each at most once.
func ParseOrder(raw string, fields []Field) ([]OrderKey, error) {
	allowed := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		allowed[f.Name] = struct{}{}
	}

	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}

	var keys []OrderKey
	seen := make(map[string]struct{})
	for _, seg := range strings.Split(raw, ",") {
		seg = strings.TrimSpace(seg)
		if seg == "" {
			continue
		}
		parts := strings.Fields(seg)
		key := OrderKey{Field: parts[0]}
		if strings.HasPrefix(key.Field, "-") {
			key.Field = strings.TrimPrefix(key.Field, "-")
			key.Desc = true
		}
		switch len(parts) {
		case 1:
		case 2:
			switch strings.ToLower(parts[1]) {
			case "asc":
				key.Desc = false
			case "desc":
				key.Desc = true
			default:
				return nil, fmt.Errorf("invalid direction %q for field %q", parts[1], key.Field)
			}
		default:
			return nil, fmt.Errorf("invalid order segment %q", seg)
		}
		if _, ok := allowed[key.Field]; !ok {
			return nil, fmt.Errorf("field %q cannot be used for ordering", key.Field)
		}
		if _, dup := seen[key.Field]; dup {
			return nil, fmt.Errorf("duplicate order key %q", key.Field)
		}
		seen[key.Field] = struct{}{}
		keys = append(keys, key)
	}
	if len(keys) == 0 {
		return nil, errors.New("order has no keys")
	}
	return keys, nil
}

// Sort orders rows in place by keys. Rows that compare equal keep their order.
func Sort[R ~map[string]any](rows []R, keys []OrderKey) {
	if len(keys) == 0 {
		return
	}
	sort.SliceStable(rows, func(i, j int) bool {
		for _, key := range keys {
			c := compare(rows[i][key.Field], rows[j][key.Field])
			if c == 0 {
				continue
			}
			if key.Desc {
				return c > 0
			}
			return c < 0
		}
		return false
	})
}

// compare orders nil first, then values of the same type naturally. Mixed
// types fall back to their text form.
func compare(a, b any) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	}
	switch av := a.(type) {
	case int64:
		if bv, ok := b.(int64); ok {
			return cmpOrdered(av, bv)
		}
	case string:
		if bv, ok := b.(string); ok {
			return strings.Compare(av, bv)
		}
	case time.Time:
		if bv, ok := b.(time.Time); ok {
			return av.Compare(bv)
		}
	}
	return strings.Compare(fmt.Sprint(a), fmt.Sprint(b))
}

func cmpOrdered(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
