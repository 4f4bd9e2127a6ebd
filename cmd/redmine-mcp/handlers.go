package main

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/redmine-mcp/internal/models"
	"github.com/ternarybob/redmine-mcp/internal/services/redmine"
)

const defaultHistoryLimit = 20

// registerTools adds every Redmine tool to the server
func registerTools(s *server.MCPServer, service *redmine.Service, logger arbor.ILogger) {
	// Session
	s.AddTool(createLoginTool(), handle(logger, "redmine_login", func(ctx context.Context, _ mcp.CallToolRequest) any {
		return service.Login(ctx)
	}))
	s.AddTool(createLogoutTool(), handle(logger, "logout", func(ctx context.Context, _ mcp.CallToolRequest) any {
		return service.Logout(ctx)
	}))
	s.AddTool(createServerInfoTool(), handle(logger, "get_server_info", func(context.Context, mcp.CallToolRequest) any {
		return service.ServerInfo()
	}))

	// Reading
	s.AddTool(createGetProjectsTool(), handle(logger, "get_projects", func(ctx context.Context, _ mcp.CallToolRequest) any {
		return service.GetProjects(ctx)
	}))
	s.AddTool(createSearchIssuesTool(), handle(logger, "search_issues", handleSearchIssues(service)))
	s.AddTool(createGetIssueDetailsTool(), handle(logger, "get_issue_details", func(ctx context.Context, request mcp.CallToolRequest) any {
		issueID, failed := requireArgument(request, "issue_id")
		if failed != nil {
			return failed
		}
		return service.GetIssueDetails(ctx, issueID)
	}))
	s.AddTool(createGetProjectMembersTool(), handle(logger, "get_project_members", func(ctx context.Context, request mcp.CallToolRequest) any {
		projectID, failed := requireArgument(request, "project_id")
		if failed != nil {
			return failed
		}
		return service.GetProjectMembers(ctx, projectID)
	}))
	s.AddTool(createGetTimeEntriesTool(), handle(logger, "get_time_entries", handleGetTimeEntries(service)))

	// Schema
	s.AddTool(createGetTrackersTool(), handle(logger, "get_available_trackers", func(ctx context.Context, request mcp.CallToolRequest) any {
		return service.DescribeTrackers(ctx, request.GetString("project_id", ""), request.GetBool("include_fields", false))
	}))
	s.AddTool(createGetCreationStatusesTool(), handle(logger, "get_creation_statuses", func(ctx context.Context, request mcp.CallToolRequest) any {
		projectID, failed := requireArgument(request, "project_id")
		if failed != nil {
			return failed
		}
		return service.DescribeCreationStatuses(ctx, projectID, request.GetString("tracker_id", ""))
	}))
	s.AddTool(createGetAvailableStatusesTool(), handle(logger, "get_available_statuses", func(ctx context.Context, request mcp.CallToolRequest) any {
		issueID, failed := requireArgument(request, "issue_id")
		if failed != nil {
			return failed
		}
		return service.DescribeEditStatuses(ctx, issueID)
	}))
	s.AddTool(createGetTrackerFieldsTool(), handle(logger, "get_tracker_fields", func(ctx context.Context, request mcp.CallToolRequest) any {
		if issueID := request.GetString("issue_id", ""); issueID != "" {
			return service.DescribeEditFields(ctx, issueID)
		}
		return service.DescribeFields(ctx, request.GetString("project_id", ""), request.GetString("tracker_id", ""))
	}))

	// Writing
	s.AddTool(createCreateIssueTool(), handle(logger, "create_issue", handleCreateIssue(service)))
	s.AddTool(createUpdateIssueTool(), handle(logger, "update_issue", handleUpdateIssue(service)))
	s.AddTool(createValidateIssueFieldsTool(), handle(logger, "validate_issue_fields", handleValidateIssueFields(service)))
	s.AddTool(createGetSubmissionHistoryTool(), handle(logger, "get_submission_history", func(ctx context.Context, request mcp.CallToolRequest) any {
		limit := request.GetInt("limit", defaultHistoryLimit)
		if limit <= 0 {
			limit = defaultHistoryLimit
		}
		return service.SubmissionHistory(ctx, request.GetString("issue_id", ""), limit)
	}))
}

// handleSearchIssues implements the search_issues tool
func handleSearchIssues(service *redmine.Service) toolFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) any {
		return service.SearchIssues(ctx, searchCriteria(request))
	}
}

func searchCriteria(request mcp.CallToolRequest) models.SearchCriteria {
	return models.SearchCriteria{
		ProjectID:    request.GetString("project_id", ""),
		StatusID:     request.GetString("status_id", ""),
		TrackerID:    request.GetString("tracker_id", ""),
		AssignedToID: request.GetString("assigned_to_id", ""),
		ParentID:     request.GetString("parent_id", ""),
		Query:        request.GetString("q", ""),
		Subject:      request.GetString("subject", ""),
		Description:  request.GetString("description", ""),
		Notes:        request.GetString("notes", ""),
		Page:         request.GetInt("page", 1),
	}
}

// handleGetTimeEntries implements the get_time_entries tool
func handleGetTimeEntries(service *redmine.Service) toolFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) any {
		criteria := models.TimeEntryCriteria{
			ProjectID: request.GetString("project_id", ""),
			UserID:    request.GetString("user_id", ""),
			StartDate: request.GetString("start_date", ""),
			EndDate:   request.GetString("end_date", ""),
			Page:      request.GetInt("page", 1),
		}
		return service.GetTimeEntries(ctx, criteria)
	}
}

// handleCreateIssue implements the create_issue tool
func handleCreateIssue(service *redmine.Service) toolFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) any {
		projectID, failed := requireArgument(request, "project_id")
		if failed != nil {
			return failed
		}
		tracker, failed := requireArgument(request, "tracker_id")
		if failed != nil {
			return failed
		}
		fields, err := fieldsArgument(request)
		if err != nil {
			return argumentError(err)
		}
		return service.CreateIssue(ctx, projectID, tracker, fields)
	}
}

// handleUpdateIssue implements the update_issue tool
func handleUpdateIssue(service *redmine.Service) toolFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) any {
		issueID, failed := requireArgument(request, "issue_id")
		if failed != nil {
			return failed
		}
		fields, err := fieldsArgument(request)
		if err != nil {
			return argumentError(err)
		}
		return service.UpdateIssue(ctx, issueID, fields)
	}
}

// handleValidateIssueFields implements the validate_issue_fields tool
func handleValidateIssueFields(service *redmine.Service) toolFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) any {
		projectID, failed := requireArgument(request, "project_id")
		if failed != nil {
			return failed
		}
		fields, err := fieldsArgument(request)
		if err != nil {
			return argumentError(err)
		}
		return service.ValidateIssueFields(ctx, projectID, request.GetString("tracker_id", ""), fields)
	}
}
