package audience

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// Field is a canonical identifier column name.
type Field string

const (
	FieldEmail     Field = "EMAIL"
	FieldPhone     Field = "PHONE"
	FieldFirstName Field = "FN"
	FieldLastName  Field = "LN"
)

// CanonicalFields fixes presence-check and column order.
var CanonicalFields = []Field{FieldEmail, FieldPhone, FieldFirstName, FieldLastName}

// CustomerRecord is one caller-supplied customer. An empty string means the
// field was not provided.
type CustomerRecord struct {
	Email     string
	Phone     string
	FirstName string
	LastName  string
}

// Value returns the raw value of f.
func (r CustomerRecord) Value(f Field) string {
	switch f {
	case FieldEmail:
		return r.Email
	case FieldPhone:
		return r.Phone
	case FieldFirstName:
		return r.FirstName
	case FieldLastName:
		return r.LastName
	default:
		return ""
	}
}

// Hash lowercases and trims value, then returns its SHA-256 digest as
// lowercase hex. ok is false for an empty value, which callers treat as
// "not provided".
func Hash(value string) (digest string, ok bool) {
	if value == "" {
		return "", false
	}
	normalized := strings.TrimSpace(strings.ToLower(value))
	sum := sha256.Sum256([]byte(normalized))
	return hex.EncodeToString(sum[:]), true
}

// hashRow hashes every present field in canonical order and returns the row
// together with its schema. Both are empty when no field is present.
func (r CustomerRecord) hashRow() (HashedRow, []Field) {
	var (
		row    HashedRow
		schema []Field
	)
	for _, f := range CanonicalFields {
		digest, ok := Hash(r.Value(f))
		if !ok {
			continue
		}
		row = append(row, digest)
		schema = append(schema, f)
	}
	return row, schema
}
