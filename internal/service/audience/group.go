package audience

import "strings"

// signatureSeparator joins field names into a group key.
const signatureSeparator = "|"

// HashedRow holds one digest per present field, in schema order.
type HashedRow []string

// SchemaGroup collects rows that share the same field-presence signature.
// Every row has len(Schema) entries in Schema order.
type SchemaGroup struct {
	Key    string
	Schema []Field
	Rows   []HashedRow
}

// SignatureKey returns the group key for an ordered schema.
func SignatureKey(schema []Field) string {
	names := make([]string, len(schema))
	for i, f := range schema {
		names[i] = string(f)
	}
	return strings.Join(names, signatureSeparator)
}

// Group hashes records and partitions them by signature. Records without any
// identifier are dropped. Groups come back in first-seen order and rows keep
// input order within a group. An empty result means there is nothing to upload.
func Group(records []CustomerRecord) []SchemaGroup {
	var groups []SchemaGroup
	index := make(map[string]int)

	for _, rec := range records {
		row, schema := rec.hashRow()
		if len(row) == 0 {
			continue
		}

		key := SignatureKey(schema)
		i, ok := index[key]
		if !ok {
			i = len(groups)
			index[key] = i
			groups = append(groups, SchemaGroup{Key: key, Schema: schema})
		}
		groups[i].Rows = append(groups[i].Rows, row)
	}
	return groups
}

// RowCount returns the number of rows across groups.
func RowCount(groups []SchemaGroup) int {
	n := 0
	for _, g := range groups {
		n += len(g.Rows)
	}
	return n
}
