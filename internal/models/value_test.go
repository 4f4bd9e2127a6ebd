package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValue_String(t *testing.T) {
	assert.Equal(t, "abc", StringValue("abc").String())
	assert.Equal(t, "3", NumberValue(3).String())
	assert.Equal(t, "2.5", NumberValue(2.5).String())
	assert.Equal(t, "1", BoolValue(true).String())
	assert.Equal(t, "0", BoolValue(false).String())
}

func TestValue_IsEmpty(t *testing.T) {
	assert.True(t, StringValue("").IsEmpty())
	assert.True(t, StringValue("   ").IsEmpty())
	assert.False(t, StringValue("x").IsEmpty())
	assert.False(t, BoolValue(false).IsEmpty(), "false is a provided value")
	assert.False(t, NumberValue(0).IsEmpty(), "0 is a provided value")
}

func TestValue_Truthy(t *testing.T) {
	assert.True(t, BoolValue(true).Truthy())
	assert.False(t, StringValue("false").Truthy())
	assert.False(t, StringValue("0").Truthy())
	assert.True(t, StringValue("yes").Truthy())
	assert.True(t, NumberValue(1).Truthy())
}

func TestFieldsFromMap(t *testing.T) {
	var raw map[string]any
	require.NoError(t, json.Unmarshal([]byte(`{"issue_subject":"Hello","issue_estimated_hours":2,"issue_is_private":true}`), &raw))

	fields, err := FieldsFromMap(raw)
	require.NoError(t, err)

	assert.Equal(t, ValueString, fields["issue_subject"].Kind())
	assert.Equal(t, ValueNumber, fields["issue_estimated_hours"].Kind())
	assert.Equal(t, ValueBool, fields["issue_is_private"].Kind())
	assert.Equal(t, "2", fields["issue_estimated_hours"].String())

	_, err = FieldsFromMap(map[string]any{"nested": map[string]any{"a": 1}})
	assert.Error(t, err)
}

func TestValue_JSON(t *testing.T) {
	data, err := json.Marshal(Fields{"a": NumberValue(1.5)})
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":1.5}`, string(data))

	var v Value
	require.NoError(t, json.Unmarshal([]byte(`true`), &v))
	assert.Equal(t, ValueBool, v.Kind())
}
