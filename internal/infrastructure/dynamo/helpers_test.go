package dynamo

import (
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildUpdateExpr_SortedAndDeterministic(t *testing.T) {
	expr, names, values, err := buildUpdateExpr(map[string]interface{}{
		"display_name":  "Alice",
		"password_hash": "h",
	})
	require.NoError(t, err)

	// Keys are sorted, so placeholder numbering is stable across runs.
	assert.Equal(t, "SET #f0 = :v0, #f1 = :v1", expr)
	assert.Equal(t, map[string]string{"#f0": "display_name", "#f1": "password_hash"}, names)

	v0, ok := values[":v0"].(*types.AttributeValueMemberS)
	require.True(t, ok)
	assert.Equal(t, "Alice", v0.Value)
}

func TestBuildUpdateExpr_SingleField(t *testing.T) {
	expr, names, values, err := buildUpdateExpr(map[string]interface{}{"google_sub": "sub1"})
	require.NoError(t, err)
	assert.Equal(t, "SET #f0 = :v0", expr)
	assert.Equal(t, "google_sub", names["#f0"])
	assert.Len(t, values, 1)
}

func TestBuildUpdateExpr_Empty(t *testing.T) {
	_, _, _, err := buildUpdateExpr(map[string]interface{}{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no fields to update")
}

func TestStrKey(t *testing.T) {
	key := strKey("user_id", "u1")
	v, ok := key["user_id"].(*types.AttributeValueMemberS)
	require.True(t, ok)
	assert.Equal(t, "u1", v.Value)
}
