package main

import (
	"github.com/mark3labs/mcp-go/mcp"
)

func createLoginTool() mcp.Tool {
	return mcp.NewTool("redmine_login",
		mcp.WithDescription("Log in to Redmine. Uses configured credentials, or waits for the login (including two-factor approval) to be completed in the browser window"),
	)
}

func createLogoutTool() mcp.Tool {
	return mcp.NewTool("logout",
		mcp.WithDescription("Log out of Redmine and close the browser"),
	)
}

func createServerInfoTool() mcp.Tool {
	return mcp.NewTool("get_server_info",
		mcp.WithDescription("Show the Redmine URLs, timeouts and current session state"),
	)
}

func createGetProjectsTool() mcp.Tool {
	return mcp.NewTool("get_projects",
		mcp.WithDescription("List the projects visible to the logged in user"),
	)
}

// createSearchIssuesTool returns the search_issues tool definition
func createSearchIssuesTool() mcp.Tool {
	return mcp.NewTool("search_issues",
		mcp.WithDescription("Search issues using Redmine's issue list filters"),
		mcp.WithString("project_id",
			mcp.Description("Project identifier (e.g. 'demo'). Empty searches all projects"),
		),
		mcp.WithString("status_id",
			mcp.Description("Status id, or 'open', 'closed', '*'"),
		),
		mcp.WithString("tracker_id",
			mcp.Description("Tracker id or tracker name"),
		),
		mcp.WithString("assigned_to_id",
			mcp.Description("Assignee user id, or 'me'"),
		),
		mcp.WithString("parent_id",
			mcp.Description("Parent issue id"),
		),
		mcp.WithString("q",
			mcp.Description("Free text searched in subject, description and notes"),
		),
		mcp.WithString("subject",
			mcp.Description("Text searched when q is empty"),
		),
		mcp.WithString("description",
			mcp.Description("Text searched when q and subject are empty"),
		),
		mcp.WithString("notes",
			mcp.Description("Text searched when q, subject and description are empty"),
		),
		mcp.WithNumber("page",
			mcp.Description("Page number (default: 1)"),
		),
	)
}

func createGetIssueDetailsTool() mcp.Tool {
	return mcp.NewTool("get_issue_details",
		mcp.WithDescription("Read an issue including its attributes, description and history"),
		mcp.WithString("issue_id",
			mcp.Required(),
			mcp.Description("Issue number"),
		),
	)
}

func createGetTrackersTool() mcp.Tool {
	return mcp.NewTool("get_available_trackers",
		mcp.WithDescription("List the trackers offered on the issue creation form"),
		mcp.WithString("project_id",
			mcp.Description("Project identifier. Empty uses the global creation form"),
		),
		mcp.WithBoolean("include_fields",
			mcp.Description("Also return each tracker's form fields (one page load per tracker)"),
		),
	)
}

func createGetCreationStatusesTool() mcp.Tool {
	return mcp.NewTool("get_creation_statuses",
		mcp.WithDescription("List the statuses selectable when creating an issue"),
		mcp.WithString("project_id",
			mcp.Required(),
			mcp.Description("Project identifier"),
		),
		mcp.WithString("tracker_id",
			mcp.Description("Tracker id or name (default: the project's default tracker)"),
		),
	)
}

func createGetAvailableStatusesTool() mcp.Tool {
	return mcp.NewTool("get_available_statuses",
		mcp.WithDescription("List the status transitions available on an existing issue"),
		mcp.WithString("issue_id",
			mcp.Required(),
			mcp.Description("Issue number"),
		),
	)
}

func createGetTrackerFieldsTool() mcp.Tool {
	return mcp.NewTool("get_tracker_fields",
		mcp.WithDescription("Describe the live form fields: the creation form for a project and tracker, or the edit form of an issue"),
		mcp.WithString("project_id",
			mcp.Description("Project identifier (creation form)"),
		),
		mcp.WithString("tracker_id",
			mcp.Description("Tracker id or name (creation form)"),
		),
		mcp.WithString("issue_id",
			mcp.Description("Issue number - describes the edit form instead"),
		),
	)
}

func createCreateIssueTool() mcp.Tool {
	return mcp.NewTool("create_issue",
		mcp.WithDescription("Create an issue. Fields are validated against the live creation form before anything is submitted"),
		mcp.WithString("project_id",
			mcp.Required(),
			mcp.Description("Project identifier"),
		),
		mcp.WithString("tracker_id",
			mcp.Required(),
			mcp.Description("Tracker id or name"),
		),
		mcp.WithObject("fields",
			mcp.Required(),
			mcp.Description("Field values keyed by field id (issue_subject), short name (subject) or cf_<id> for custom fields"),
		),
	)
}

func createUpdateIssueTool() mcp.Tool {
	return mcp.NewTool("update_issue",
		mcp.WithDescription("Update an issue through its edit form. Only the given fields change; notes adds a comment"),
		mcp.WithString("issue_id",
			mcp.Required(),
			mcp.Description("Issue number"),
		),
		mcp.WithObject("fields",
			mcp.Required(),
			mcp.Description("Field values keyed by field id, short name or cf_<id>"),
		),
	)
}

func createValidateIssueFieldsTool() mcp.Tool {
	return mcp.NewTool("validate_issue_fields",
		mcp.WithDescription("Check creation fields against the live form without submitting"),
		mcp.WithString("project_id",
			mcp.Required(),
			mcp.Description("Project identifier"),
		),
		mcp.WithString("tracker_id",
			mcp.Description("Tracker id or name"),
		),
		mcp.WithObject("fields",
			mcp.Required(),
			mcp.Description("Field values keyed by field id, short name or cf_<id>"),
		),
	)
}

func createGetProjectMembersTool() mcp.Tool {
	return mcp.NewTool("get_project_members",
		mcp.WithDescription("List project members with their user ids and roles"),
		mcp.WithString("project_id",
			mcp.Required(),
			mcp.Description("Project identifier"),
		),
	)
}

func createGetTimeEntriesTool() mcp.Tool {
	return mcp.NewTool("get_time_entries",
		mcp.WithDescription("List logged time for a project"),
		mcp.WithString("project_id",
			mcp.Required(),
			mcp.Description("Project identifier"),
		),
		mcp.WithString("user_id",
			mcp.Description("Only entries of this user id"),
		),
		mcp.WithString("start_date",
			mcp.Description("From date (YYYY-MM-DD)"),
		),
		mcp.WithString("end_date",
			mcp.Description("To date (YYYY-MM-DD)"),
		),
		mcp.WithNumber("page",
			mcp.Description("Page number (default: 1)"),
		),
	)
}

func createGetSubmissionHistoryTool() mcp.Tool {
	return mcp.NewTool("get_submission_history",
		mcp.WithDescription("Show recent create/update submissions recorded by this server, newest first"),
		mcp.WithString("issue_id",
			mcp.Description("Only submissions for this issue"),
		),
		mcp.WithNumber("limit",
			mcp.Description("Max results (default: 20)"),
		),
	)
}
