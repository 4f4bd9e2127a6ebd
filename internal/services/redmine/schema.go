package redmine

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/ternarybob/redmine-mcp/internal/models"
	"github.com/ternarybob/redmine-mcp/internal/services/pages"
)

// formPage is a loaded creation or edit form with its live schema
type formPage struct {
	url       string
	location  string
	doc       *goquery.Document
	fields    []models.FieldDescriptor
	projectID string
	trackerID string
}

func (f *formPage) field(id string) (models.FieldDescriptor, bool) {
	for _, field := range f.fields {
		if field.ID == id {
			return field, true
		}
	}
	return models.FieldDescriptor{}, false
}

func (f *formPage) fieldIDs() []string {
	ids := make([]string, len(f.fields))
	for i, field := range f.fields {
		ids[i] = field.ID
	}
	return ids
}

// loadForm opens an issue form and reads its fields. The schema is never cached.
func (s *Service) loadForm(ctx context.Context, target string) (*formPage, error) {
	doc, location, err := s.open(ctx, target)
	if err != nil {
		return nil, introspectionError(err, target)
	}

	fields := s.extractor.Fields(doc)
	if len(fields) == 0 {
		return nil, models.NewEngineError(models.KindIntrospectionFailed, nil, "no form fields found at %s", target)
	}

	s.logger.Debug().Str("url", target).Int("fields", len(fields)).Msg("Form schema loaded")

	return &formPage{
		url:       target,
		location:  location,
		doc:       doc,
		fields:    fields,
		projectID: pages.ProjectIdentifier(doc),
		trackerID: pages.SelectedValue(doc, "issue_tracker_id"),
	}, nil
}

// introspectionError keeps session and lookup failures as they are and reports
// everything else as IntrospectionFailed
func introspectionError(err error, target string) error {
	switch models.KindOf(err) {
	case models.KindSessionExpired, models.KindResourceNotFound, models.KindBrowserClosed, models.KindNotAuthenticated:
		return err
	}
	return models.NewEngineError(models.KindIntrospectionFailed, err, "failed to load form %s", target)
}

func isNumeric(s string) bool {
	_, err := strconv.Atoi(s)
	return err == nil
}

// DescribeFields returns the live creation form schema for a project and tracker.
// tracker may be an id or a tracker name.
func (s *Service) DescribeFields(ctx context.Context, projectID, tracker string) *models.FieldsResponse {
	s.mu.Lock()
	defer s.mu.Unlock()

	response := &models.FieldsResponse{Fields: []models.FieldDescriptor{}}
	if err := s.requireSession(); err != nil {
		response.Fail(err)
		return response
	}

	trackerID, err := s.resolveTrackerID(ctx, projectID, tracker)
	if err != nil {
		response.Fail(err)
		return response
	}

	form, err := s.loadForm(ctx, s.newIssueURL(projectID, trackerID))
	if err != nil {
		response.Fail(s.projectError(ctx, projectID, err))
		return response
	}

	response.Success = true
	response.Message = fmt.Sprintf("Found %d fields", len(form.fields))
	response.Fields = form.fields
	return response
}

// DescribeEditFields returns the live edit form schema of an issue
func (s *Service) DescribeEditFields(ctx context.Context, issueID string) *models.FieldsResponse {
	s.mu.Lock()
	defer s.mu.Unlock()

	response := &models.FieldsResponse{Fields: []models.FieldDescriptor{}}
	if err := s.requireSession(); err != nil {
		response.Fail(err)
		return response
	}

	form, err := s.loadForm(ctx, s.editIssueURL(issueID))
	if err != nil {
		response.Fail(err)
		return response
	}

	response.Success = true
	response.Message = fmt.Sprintf("Found %d fields for issue #%s", len(form.fields), issueID)
	response.Fields = form.fields
	return response
}

// DescribeTrackers lists the trackers offered on the creation form, optionally
// with each tracker's field schema
func (s *Service) DescribeTrackers(ctx context.Context, projectID string, includeFields bool) *models.TrackersResponse {
	s.mu.Lock()
	defer s.mu.Unlock()

	response := &models.TrackersResponse{Trackers: []models.TrackerInfo{}}
	if err := s.requireSession(); err != nil {
		response.Fail(err)
		return response
	}

	trackers, err := s.describeTrackers(ctx, projectID)
	if err != nil {
		response.Fail(s.projectError(ctx, projectID, err))
		return response
	}

	if includeFields {
		for i := range trackers {
			form, err := s.loadForm(ctx, s.newIssueURL(projectID, trackers[i].ID))
			if err != nil {
				switch models.KindOf(err) {
				case models.KindSessionExpired, models.KindBrowserClosed:
					response.Fail(err)
					return response
				}
				s.logger.Warn().Err(err).Str("tracker_id", trackers[i].ID).Msg("Failed to load tracker fields")
				continue
			}
			trackers[i].Fields = form.fields
		}
	}

	response.Success = true
	response.Message = fmt.Sprintf("Found %d available trackers", len(trackers))
	response.Trackers = trackers
	return response
}

func (s *Service) describeTrackers(ctx context.Context, projectID string) ([]models.TrackerInfo, error) {
	target := s.newIssueURL(projectID, "")
	doc, _, err := s.open(ctx, target)
	if err != nil {
		return nil, introspectionError(err, target)
	}

	options, ok := pages.SelectOptions(doc, "issue_tracker_id")
	if !ok {
		return nil, models.NewEngineError(models.KindIntrospectionFailed, nil, "tracker selector not found at %s", target)
	}

	trackers := make([]models.TrackerInfo, 0, len(options))
	for _, o := range options {
		trackers = append(trackers, models.TrackerInfo{ID: o.Value, Name: o.Text})
	}
	return trackers, nil
}

// matchTracker finds a tracker by id or case-insensitive name
func matchTracker(trackers []models.TrackerInfo, value string) (models.TrackerInfo, bool) {
	for _, t := range trackers {
		if t.ID == value || strings.EqualFold(t.Name, value) {
			return t, true
		}
	}
	return models.TrackerInfo{}, false
}

func trackerChoices(trackers []models.TrackerInfo) []string {
	choices := make([]string, len(trackers))
	for i, t := range trackers {
		choices[i] = t.ID + ":" + t.Name
	}
	return choices
}

// resolveTrackerID maps a tracker name to its id. Numeric values pass through
// without a lookup.
func (s *Service) resolveTrackerID(ctx context.Context, projectID, tracker string) (string, error) {
	tracker = strings.TrimSpace(tracker)
	if tracker == "" || isNumeric(tracker) {
		return tracker, nil
	}

	trackers, err := s.describeTrackers(ctx, projectID)
	if err != nil {
		return "", s.projectError(ctx, projectID, err)
	}
	if t, ok := matchTracker(trackers, tracker); ok {
		s.logger.Debug().Str("tracker", tracker).Str("tracker_id", t.ID).Msg("Resolved tracker name")
		return t.ID, nil
	}
	return "", trackerMismatch(tracker, projectID, trackers)
}

func trackerMismatch(tracker, projectID string, trackers []models.TrackerInfo) error {
	scope := ""
	if projectID != "" {
		scope = " for project " + projectID
	}
	return models.NewEngineError(models.KindValidationFailed, nil,
		"tracker '%s' is not available%s. Available trackers: %s", tracker, scope, strings.Join(trackerChoices(trackers), ", "))
}

// DescribeCreationStatuses lists the statuses selectable when creating an issue
func (s *Service) DescribeCreationStatuses(ctx context.Context, projectID, tracker string) *models.StatusesResponse {
	s.mu.Lock()
	defer s.mu.Unlock()

	response := &models.StatusesResponse{Statuses: []models.Option{}}
	if err := s.requireSession(); err != nil {
		response.Fail(err)
		return response
	}

	trackerID, err := s.resolveTrackerID(ctx, projectID, tracker)
	if err != nil {
		response.Fail(err)
		return response
	}

	statuses, found, err := s.describeStatuses(ctx, s.newIssueURL(projectID, trackerID))
	if err != nil {
		response.Fail(s.projectError(ctx, projectID, err))
		return response
	}
	fillStatuses(response, statuses, found, "creation")
	return response
}

// DescribeEditStatuses lists the workflow transitions available on an issue's
// edit form. This set differs from the creation statuses.
func (s *Service) DescribeEditStatuses(ctx context.Context, issueID string) *models.StatusesResponse {
	s.mu.Lock()
	defer s.mu.Unlock()

	response := &models.StatusesResponse{Statuses: []models.Option{}}
	if err := s.requireSession(); err != nil {
		response.Fail(err)
		return response
	}

	statuses, found, err := s.describeStatuses(ctx, s.editIssueURL(issueID))
	if err != nil {
		response.Fail(err)
		return response
	}
	fillStatuses(response, statuses, found, "edit")
	return response
}

func (s *Service) describeStatuses(ctx context.Context, target string) ([]models.Option, bool, error) {
	doc, _, err := s.open(ctx, target)
	if err != nil {
		return nil, false, introspectionError(err, target)
	}
	statuses, found := pages.SelectOptions(doc, "issue_status_id")
	return statuses, found, nil
}

func fillStatuses(response *models.StatusesResponse, statuses []models.Option, found bool, kind string) {
	response.Success = true
	if !found {
		response.Message = fmt.Sprintf("Status is not selectable on the %s form", kind)
		return
	}
	response.Statuses = statuses
	response.Message = fmt.Sprintf("Found %d %s statuses", len(statuses), kind)
}
