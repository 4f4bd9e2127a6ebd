package redmine

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/ternarybob/redmine-mcp/internal/models"
	"github.com/ternarybob/redmine-mcp/internal/services/pages"
	"github.com/ternarybob/redmine-mcp/internal/services/query"
)

var criteriaValidator = validator.New()

// projectListLimit caps the project ids quoted when a project is not found
const projectListLimit = 10

// GetProjects lists the projects visible to the session
func (s *Service) GetProjects(ctx context.Context) *models.ProjectsResponse {
	s.mu.Lock()
	defer s.mu.Unlock()

	response := &models.ProjectsResponse{Projects: []models.ProjectRecord{}}
	if err := s.requireSession(); err != nil {
		response.Fail(err)
		return response
	}

	projects, err := s.listProjects(ctx)
	if err != nil {
		response.Fail(err)
		return response
	}

	response.Success = true
	response.Message = fmt.Sprintf("Found %d projects", len(projects))
	response.Projects = projects
	return response
}

func (s *Service) listProjects(ctx context.Context) ([]models.ProjectRecord, error) {
	doc, _, err := s.open(ctx, s.config.ProjectsURL())
	if err != nil {
		return nil, err
	}
	return s.extractor.Projects(doc), nil
}

// projectError rewrites a not-found failure of a project-scoped page into a
// message listing the visible projects. The listing is best-effort.
func (s *Service) projectError(ctx context.Context, projectID string, err error) error {
	if projectID == "" || models.KindOf(err) != models.KindResourceNotFound {
		return err
	}

	projects, listErr := s.listProjects(ctx)
	if listErr != nil || len(projects) == 0 {
		return models.NewEngineError(models.KindResourceNotFound, nil, "Project '%s' not found or not accessible", projectID)
	}

	ids := make([]string, 0, len(projects))
	for _, p := range projects {
		ids = append(ids, p.ID)
	}
	suffix := ""
	if len(ids) > projectListLimit {
		ids = ids[:projectListLimit]
		suffix = ", ..."
	}
	return models.NewEngineError(models.KindResourceNotFound, nil,
		"Project '%s' not found or not accessible. Available projects: %s%s", projectID, strings.Join(ids, ", "), suffix)
}

// SearchIssues runs an issue query. A tracker given by name is resolved to its id;
// "me" is passed through as the assignee.
func (s *Service) SearchIssues(ctx context.Context, criteria models.SearchCriteria) *models.IssuesResponse {
	s.mu.Lock()
	defer s.mu.Unlock()

	response := &models.IssuesResponse{Issues: []models.IssueRecord{}, CurrentPage: max(criteria.Page, 1)}
	if err := s.requireSession(); err != nil {
		response.Fail(err)
		return response
	}
	if err := criteriaValidator.Struct(criteria); err != nil {
		response.Fail(models.NewEngineError(models.KindValidationFailed, err, "invalid search criteria"))
		return response
	}

	trackerID, err := s.resolveTrackerID(ctx, criteria.ProjectID, criteria.TrackerID)
	if err != nil {
		response.Fail(err)
		return response
	}
	criteria.TrackerID = trackerID
	criteria.AssignedToID = query.NormalizeAssignee(criteria.AssignedToID)

	searchURL := query.IssuesURL(s.config.Redmine.BaseURL, criteria)
	response.SearchURL = searchURL
	s.logger.Debug().Str("url", searchURL).Msg("Searching issues")

	doc, _, err := s.open(ctx, searchURL)
	if err != nil {
		response.Fail(s.projectError(ctx, criteria.ProjectID, err))
		return response
	}

	issues := s.extractor.Issues(doc)
	if len(issues) == 0 {
		if banner := pages.ErrorBanner(doc); banner != "" {
			response.Fail(models.NewEngineError(models.KindValidationFailed, nil, "Search rejected: %s", banner))
			return response
		}
	}

	total, ok := query.TotalCount(doc)
	if !ok {
		total = len(issues)
		response.TotalEstimated = true
		s.logger.Debug().Int("total_count", total).Msg("Total count not rendered - estimated from returned rows")
	}

	response.Success = true
	response.Issues = issues
	response.TotalCount = total
	response.HasNext = query.HasNextPage(doc)
	response.Message = fmt.Sprintf("Found %d issues (showing page %d)", total, response.CurrentPage)
	if response.TotalEstimated {
		response.Message = fmt.Sprintf("Found %d issues on page %d (total estimated)", total, response.CurrentPage)
	}
	return response
}

// GetIssueDetails reads an issue detail page including its journals
func (s *Service) GetIssueDetails(ctx context.Context, issueID string) *models.IssueDetailResponse {
	s.mu.Lock()
	defer s.mu.Unlock()

	response := &models.IssueDetailResponse{}
	if err := s.requireSession(); err != nil {
		response.Fail(err)
		return response
	}

	doc, _, err := s.open(ctx, s.issueURL(issueID))
	if err != nil {
		if models.KindOf(err) == models.KindResourceNotFound {
			err = models.NewEngineError(models.KindResourceNotFound, nil, "Issue #%s not found or not accessible", issueID)
		}
		response.Fail(err)
		return response
	}

	issue, journals := s.extractor.IssueDetail(doc, issueID)
	issue.URL = s.issueURL(issueID)

	response.Success = true
	response.Message = fmt.Sprintf("Issue #%s", issueID)
	response.Issue = issue
	response.Journals = journals
	return response
}

// GetTimeEntries lists a project's time entries, optionally for one user and a date range
func (s *Service) GetTimeEntries(ctx context.Context, criteria models.TimeEntryCriteria) *models.TimeEntriesResponse {
	s.mu.Lock()
	defer s.mu.Unlock()

	response := &models.TimeEntriesResponse{TimeEntries: []models.TimeEntryRecord{}, CurrentPage: max(criteria.Page, 1)}
	if err := s.requireSession(); err != nil {
		response.Fail(err)
		return response
	}
	if err := criteriaValidator.Struct(criteria); err != nil {
		response.Fail(models.NewEngineError(models.KindValidationFailed, err, "invalid time entry criteria"))
		return response
	}

	entriesURL := query.TimeEntriesURL(s.config.Redmine.BaseURL, criteria)
	doc, _, err := s.open(ctx, entriesURL)
	if err != nil {
		response.Fail(s.projectError(ctx, criteria.ProjectID, err))
		return response
	}

	entries := s.extractor.TimeEntries(doc)
	total, ok := query.TotalCount(doc)
	if !ok {
		total = len(entries)
		response.TotalEstimated = true
		s.logger.Debug().Int("total_count", total).Msg("Time entry total not rendered - estimated from returned rows")
	}

	response.Success = true
	response.TimeEntries = entries
	response.TotalCount = total
	response.HasNext = query.HasNextPage(doc)
	response.Message = fmt.Sprintf("Found %d time entries (showing page %d)", total, response.CurrentPage)
	if response.TotalEstimated {
		response.Message = fmt.Sprintf("Found %d time entries on page %d (total estimated)", total, response.CurrentPage)
	}
	return response
}

// GetProjectMembers lists the members of a project
func (s *Service) GetProjectMembers(ctx context.Context, projectID string) *models.MembersResponse {
	s.mu.Lock()
	defer s.mu.Unlock()

	response := &models.MembersResponse{Members: []models.MemberRecord{}}
	if err := s.requireSession(); err != nil {
		response.Fail(err)
		return response
	}

	members, err := s.describeMembers(ctx, projectID)
	if err != nil {
		response.Fail(s.projectError(ctx, projectID, err))
		return response
	}

	response.Success = true
	response.Message = fmt.Sprintf("Found %d members", len(members))
	response.Members = members
	return response
}

// describeMembers reads the members settings tab, falling back to the project
// overview's member box when the settings page is not accessible
func (s *Service) describeMembers(ctx context.Context, projectID string) ([]models.MemberRecord, error) {
	doc, _, err := s.open(ctx, s.membersURL(projectID))
	if models.KindOf(err) == models.KindResourceNotFound {
		s.logger.Debug().Str("project_id", projectID).Msg("Members settings not accessible - reading project overview")
		doc, _, err = s.open(ctx, s.projectURL(projectID))
	}
	if err != nil {
		return nil, err
	}
	return s.extractor.Members(doc), nil
}

// SubmissionHistory returns recent create/update outcomes, newest first
func (s *Service) SubmissionHistory(ctx context.Context, issueID string, limit int) *models.SubmissionHistoryResponse {
	response := &models.SubmissionHistoryResponse{Submissions: []models.Submission{}}
	if s.journal == nil {
		response.Success = true
		response.Message = "Submission journal is disabled"
		return response
	}

	submissions, err := s.journal.ListRecent(ctx, issueID, limit)
	if err != nil {
		response.Fail(err)
		return response
	}

	response.Success = true
	response.Message = fmt.Sprintf("Found %d submissions", len(submissions))
	response.Submissions = submissions
	return response
}
