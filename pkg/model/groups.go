package model

import gridjson "github.com/gridbase/gridbase/pkg/json"

func marshalJSON(v interface{}) ([]byte, error) {
	return gridjson.Marshal(v)
}

// RowGroups is an ordered mapping from group key to rows. Key order is
// first-seen order over the input row sequence, which the UI preserves;
// a plain map would lose it. With multi-valued group columns a row can
// appear in several groups, so the sum of group sizes may exceed the
// row count.
type RowGroups struct {
	keys   []string
	groups map[string][]Row
}

// NewRowGroups returns an empty ordered group mapping.
func NewRowGroups() *RowGroups {
	return &RowGroups{groups: make(map[string][]Row)}
}

// Add appends a row to the named group, creating the group at the end
// of the key order if it does not exist yet.
func (g *RowGroups) Add(key string, row Row) {
	if _, ok := g.groups[key]; !ok {
		g.keys = append(g.keys, key)
	}
	g.groups[key] = append(g.groups[key], row)
}

// AddKey ensures the named group exists (possibly empty) without
// appending a row.
func (g *RowGroups) AddKey(key string) {
	if _, ok := g.groups[key]; !ok {
		g.keys = append(g.keys, key)
		g.groups[key] = nil
	}
}

// Keys returns the group keys in first-seen order.
func (g *RowGroups) Keys() []string {
	out := make([]string, len(g.keys))
	copy(out, g.keys)
	return out
}

// Rows returns the rows in the named group.
func (g *RowGroups) Rows(key string) []Row {
	return g.groups[key]
}

// Len returns the number of groups.
func (g *RowGroups) Len() int {
	return len(g.keys)
}

// TotalRows returns the sum of group sizes. With fan-out grouping this
// can exceed the number of distinct rows.
func (g *RowGroups) TotalRows() int {
	total := 0
	for _, rows := range g.groups {
		total += len(rows)
	}
	return total
}

// MarshalJSON encodes the groups as an object whose member order
// follows the group key order.
func (g *RowGroups) MarshalJSON() ([]byte, error) {
	buf := make([]byte, 0, 256)
	buf = append(buf, '{')
	for i, key := range g.keys {
		if i > 0 {
			buf = append(buf, ',')
		}
		keyJSON, err := marshalJSON(key)
		if err != nil {
			return nil, err
		}
		rowsJSON, err := marshalJSON(g.groups[key])
		if err != nil {
			return nil, err
		}
		buf = append(buf, keyJSON...)
		buf = append(buf, ':')
		buf = append(buf, rowsJSON...)
	}
	buf = append(buf, '}')
	return buf, nil
}
