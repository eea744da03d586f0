package audience

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGroup_BySignature(t *testing.T) {
	records := []CustomerRecord{
		{Email: "a@x.com"},
		{Email: "b@x.com", Phone: "5551234567"},
		{Email: "c@x.com"},
		{},
		{FirstName: "Ann", LastName: "Lee"},
	}

	groups := Group(records)
	require.Len(t, groups, 3)

	assert.Equal(t, "EMAIL", groups[0].Key)
	assert.Equal(t, []Field{FieldEmail}, groups[0].Schema)
	assert.Len(t, groups[0].Rows, 2)

	assert.Equal(t, "EMAIL|PHONE", groups[1].Key)
	assert.Len(t, groups[1].Rows, 1)

	assert.Equal(t, "FN|LN", groups[2].Key)
	assert.Len(t, groups[2].Rows, 1)

	assert.Equal(t, 4, RowCount(groups))
}

func TestGroup_RowsMatchSchemaLength(t *testing.T) {
	records := []CustomerRecord{
		{Email: "a@x.com", Phone: "1", FirstName: "A", LastName: "B"},
		{Phone: "2"},
		{Email: "c@x.com", LastName: "D"},
		{Phone: "3"},
	}

	for _, g := range Group(records) {
		for _, row := range g.Rows {
			assert.Len(t, row, len(g.Schema), "group %s", g.Key)
		}
	}
}

func TestGroup_PreservesInputOrder(t *testing.T) {
	first, _ := Hash("first@x.com")
	second, _ := Hash("second@x.com")

	groups := Group([]CustomerRecord{
		{Email: "first@x.com"},
		{Phone: "555"},
		{Email: "second@x.com"},
	})
	require.Len(t, groups, 2)
	assert.Equal(t, []HashedRow{{first}, {second}}, groups[0].Rows)
}

func TestGroup_AllEmpty(t *testing.T) {
	assert.Empty(t, Group([]CustomerRecord{{}, {}}))
	assert.Empty(t, Group(nil))
}

func TestSignatureKey(t *testing.T) {
	assert.Equal(t, "EMAIL|PHONE|FN|LN", SignatureKey(CanonicalFields))
	assert.Equal(t, "", SignatureKey(nil))
}
