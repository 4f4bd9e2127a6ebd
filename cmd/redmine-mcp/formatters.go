package main

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/redmine-mcp/internal/common"
	"github.com/ternarybob/redmine-mcp/internal/models"
)

// toolFunc returns an engine response struct for a tool call
type toolFunc func(ctx context.Context, request mcp.CallToolRequest) any

// handle adapts fn into an MCP handler. Responses are rendered as indented JSON;
// a panic becomes a failed response instead of taking the server down.
func handle(logger arbor.ILogger, name string, fn toolFunc) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var response any
		err := common.SafeCall(logger, name, func() error {
			response = fn(ctx, request)
			return nil
		})
		if err != nil {
			response = &models.GeneralResponse{Result: models.FailResult(err)}
		}

		logger.Debug().Str("tool", name).Msg("Tool call completed")
		return textResult(formatResponse(response)), nil
	}
}

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.NewTextContent(text),
		},
	}
}

// formatResponse renders a response struct as indented JSON
func formatResponse(response any) string {
	data, err := json.MarshalIndent(response, "", "  ")
	if err != nil {
		return fmt.Sprintf(`{"success": false, "message": %q}`, "failed to encode response: "+err.Error())
	}
	return string(data)
}

// requireArgument reads a required string argument. The second result is the
// failure response to return when it is missing.
func requireArgument(request mcp.CallToolRequest, name string) (string, *models.GeneralResponse) {
	value, err := request.RequireString(name)
	if err != nil || strings.TrimSpace(value) == "" {
		return "", argumentError(fmt.Errorf("%s parameter is required", name))
	}
	return strings.TrimSpace(value), nil
}

func argumentError(err error) *models.GeneralResponse {
	return &models.GeneralResponse{
		Result: models.FailResult(models.NewEngineError(models.KindValidationFailed, nil, "Error: %v", err)),
	}
}

// fieldsArgument decodes the fields object. Clients that send the object as a
// JSON string are accepted too.
func fieldsArgument(request mcp.CallToolRequest) (models.Fields, error) {
	raw, ok := request.GetArguments()["fields"]
	if !ok || raw == nil {
		return nil, fmt.Errorf("fields parameter is required")
	}

	switch v := raw.(type) {
	case map[string]any:
		return models.FieldsFromMap(v)
	case string:
		var m map[string]any
		if err := json.Unmarshal([]byte(v), &m); err != nil {
			return nil, fmt.Errorf("fields must be an object: %w", err)
		}
		return models.FieldsFromMap(m)
	default:
		return nil, fmt.Errorf("fields must be an object, got %T", raw)
	}
}
