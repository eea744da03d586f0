package audience

import (
	"time"

	"github.com/ignite/meta-audience-relay/internal/meta"
)

// BatchSize is the maximum number of rows sent in one upload call.
const BatchSize = 10000

// SessionIDSource hands out upload session ids that are unique within one request.
type SessionIDSource interface {
	Next() int64
}

// SessionSequence derives ids from a millisecond timestamp scaled by 1000
// plus a per-request counter, so every batch of a request gets a distinct id
// even when several groups are split within the same millisecond. It is not
// safe for concurrent use.
type SessionSequence struct {
	next int64
}

// NewSessionSequence seeds a sequence from now.
func NewSessionSequence(now time.Time) *SessionSequence {
	return &SessionSequence{next: now.UnixMilli() * 1000}
}

// Next returns the next session id.
func (s *SessionSequence) Next() int64 {
	id := s.next
	s.next++
	return id
}

// Batch is a contiguous slice of one group's rows plus its session metadata.
type Batch struct {
	GroupKey string
	Schema   []Field
	Rows     []HashedRow
	Session  meta.UploadSession
}

// Payload converts the batch into the platform's wire shape.
func (b Batch) Payload() meta.UsersPayload {
	schema := make([]string, len(b.Schema))
	for i, f := range b.Schema {
		schema[i] = string(f)
	}
	data := make([][]string, len(b.Rows))
	for i, row := range b.Rows {
		data[i] = []string(row)
	}
	return meta.UsersPayload{Schema: schema, Data: data, Session: b.Session}
}

// Split cuts a group into batches of at most batchSize rows, preserving row
// order. EstimatedNumTotal is the group's row count, not the request total.
func Split(group SchemaGroup, batchSize int, ids SessionIDSource) []Batch {
	if batchSize <= 0 {
		batchSize = BatchSize
	}
	total := len(group.Rows)
	batches := make([]Batch, 0, (total+batchSize-1)/batchSize)

	for i, start := 0, 0; start < total; i, start = i+1, start+batchSize {
		end := min(start+batchSize, total)
		batches = append(batches, Batch{
			GroupKey: group.Key,
			Schema:   group.Schema,
			Rows:     group.Rows[start:end:end],
			Session: meta.UploadSession{
				SessionID:         ids.Next(),
				BatchSeq:          i + 1,
				LastBatchFlag:     end >= total,
				EstimatedNumTotal: total,
			},
		})
	}
	return batches
}

// SplitAll splits every group in order, sharing one id source across groups.
func SplitAll(groups []SchemaGroup, batchSize int, ids SessionIDSource) []Batch {
	var batches []Batch
	for _, g := range groups {
		batches = append(batches, Split(g, batchSize, ids)...)
	}
	return batches
}
