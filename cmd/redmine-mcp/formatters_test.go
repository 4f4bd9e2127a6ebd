package main

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/redmine-mcp/internal/models"
	"github.com/ternarybob/redmine-mcp/internal/services/query"
)

func callRequest(args map[string]any) mcp.CallToolRequest {
	var request mcp.CallToolRequest
	request.Params.Name = "test"
	request.Params.Arguments = args
	return request
}

func resultText(t *testing.T, result *mcp.CallToolResult) map[string]any {
	t.Helper()
	require.Len(t, result.Content, 1)
	text, ok := result.Content[0].(mcp.TextContent)
	require.True(t, ok)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal([]byte(text.Text), &decoded))
	return decoded
}

func TestFieldsArgument(t *testing.T) {
	fields, err := fieldsArgument(callRequest(map[string]any{
		"fields": map[string]any{"subject": "Export", "cf_5": 3.0, "issue_is_private": true},
	}))
	require.NoError(t, err)
	assert.Equal(t, "Export", fields["subject"].String())
	assert.Equal(t, models.ValueNumber, fields["cf_5"].Kind())
	assert.True(t, fields["issue_is_private"].Truthy())

	fromString, err := fieldsArgument(callRequest(map[string]any{"fields": `{"notes": "done"}`}))
	require.NoError(t, err)
	assert.Equal(t, "done", fromString["notes"].String())

	_, err = fieldsArgument(callRequest(map[string]any{}))
	assert.Error(t, err)

	_, err = fieldsArgument(callRequest(map[string]any{"fields": []any{"a"}}))
	assert.Error(t, err)

	_, err = fieldsArgument(callRequest(map[string]any{"fields": map[string]any{"watchers": []any{"1"}}}))
	assert.Error(t, err)
}

func TestRequireArgument(t *testing.T) {
	value, failed := requireArgument(callRequest(map[string]any{"issue_id": " 42 "}), "issue_id")
	assert.Nil(t, failed)
	assert.Equal(t, "42", value)

	_, failed = requireArgument(callRequest(map[string]any{"issue_id": "  "}), "issue_id")
	require.NotNil(t, failed)
	assert.False(t, failed.Success)
	assert.Equal(t, models.KindValidationFailed, failed.ErrorKind)
	assert.Contains(t, failed.Message, "issue_id parameter is required")
}

func TestHandle_RendersIndentedJSON(t *testing.T) {
	handler := handle(arbor.NewLogger(), "get_projects", func(context.Context, mcp.CallToolRequest) any {
		return &models.ProjectsResponse{
			Result:   models.Result{Success: true, Message: "Found 1 projects"},
			Projects: []models.ProjectRecord{{ID: "demo", Name: "Demo"}},
		}
	})

	result, err := handler(context.Background(), callRequest(nil))
	require.NoError(t, err)

	text := result.Content[0].(mcp.TextContent).Text
	assert.Contains(t, text, "\n  \"success\": true")

	decoded := resultText(t, result)
	assert.Equal(t, true, decoded["success"])
	assert.Len(t, decoded["projects"], 1)
}

func TestHandle_RecoversPanic(t *testing.T) {
	handler := handle(arbor.NewLogger(), "create_issue", func(context.Context, mcp.CallToolRequest) any {
		panic("boom")
	})

	result, err := handler(context.Background(), callRequest(nil))
	require.NoError(t, err)

	decoded := resultText(t, result)
	assert.Equal(t, false, decoded["success"])
	assert.Contains(t, decoded["message"], "internal error in create_issue")
}

func TestSearchCriteria(t *testing.T) {
	criteria := searchCriteria(callRequest(map[string]any{
		"project_id":  "demo",
		"description": "stack trace",
		"notes":       "regression",
		"page":        2.0,
	}))

	assert.Equal(t, "demo", criteria.ProjectID)
	assert.Equal(t, "stack trace", criteria.Description)
	assert.Equal(t, "regression", criteria.Notes)
	assert.Equal(t, 2, criteria.Page)

	byNotes := searchCriteria(callRequest(map[string]any{"notes": "regression"}))
	assert.Equal(t, "regression", query.SearchText(byNotes))
	assert.Equal(t, 1, byNotes.Page)
}
