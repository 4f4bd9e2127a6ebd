package redmine

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"sort"

	"github.com/ternarybob/redmine-mcp/internal/common"
	"github.com/ternarybob/redmine-mcp/internal/models"
	"github.com/ternarybob/redmine-mcp/internal/services/browser"
	"github.com/ternarybob/redmine-mcp/internal/services/pages"
)

var (
	issuePathPattern = regexp.MustCompile(`/issues/(\d+)/?$`)

	submitSelectors = []string{`input[name="commit"]`, `button[type="submit"]`}

	// fields that reshape the form when changed are applied first
	leadingFields = []string{projectField, trackerField}
)

// CreateIssue validates the payload against the live creation form, fills the
// form and submits it. The creation page is only opened for submission after
// validation passed.
func (s *Service) CreateIssue(ctx context.Context, projectID, tracker string, fields models.Fields) *models.SubmitResponse {
	s.mu.Lock()
	defer s.mu.Unlock()

	submission := &models.Submission{
		SessionID: s.sessionID(),
		Operation: "create",
		ProjectID: projectID,
		TrackerID: tracker,
	}
	response := s.createIssue(ctx, submission, projectID, tracker, fields)
	s.record(ctx, submission, response)
	return response
}

func (s *Service) createIssue(ctx context.Context, submission *models.Submission, projectID, tracker string, fields models.Fields) *models.SubmitResponse {
	response := newSubmitResponse()
	if err := s.requireSession(); err != nil {
		response.Fail(err)
		return response
	}

	s.logger.Info().Str("project_id", projectID).Str("tracker", tracker).Int("fields", len(fields)).Msg("Creating issue")

	form, result, err := s.prepareCreate(ctx, projectID, tracker, fields)
	if !validationPassed(response, result, err) {
		return response
	}

	trackerID := result.Normalized[trackerField].String()
	submission.TrackerID = trackerID
	s.submitForm(ctx, response, form, s.newIssueURL(projectID, trackerID), result.Normalized, trackerField)
	if response.Success {
		response.Message = fmt.Sprintf("Successfully created issue #%s", response.IssueID)
	}
	return response
}

// UpdateIssue validates the payload against the issue's edit form, fills it and submits it
func (s *Service) UpdateIssue(ctx context.Context, issueID string, fields models.Fields) *models.SubmitResponse {
	s.mu.Lock()
	defer s.mu.Unlock()

	submission := &models.Submission{
		SessionID: s.sessionID(),
		Operation: "update",
		IssueID:   issueID,
	}
	response := s.updateIssue(ctx, submission, issueID, fields)
	s.record(ctx, submission, response)
	return response
}

func (s *Service) updateIssue(ctx context.Context, submission *models.Submission, issueID string, fields models.Fields) *models.SubmitResponse {
	response := newSubmitResponse()
	if err := s.requireSession(); err != nil {
		response.Fail(err)
		return response
	}

	s.logger.Info().Str("issue_id", issueID).Int("fields", len(fields)).Msg("Updating issue")

	form, result, err := s.prepareUpdate(ctx, issueID, fields)
	if !validationPassed(response, result, err) {
		return response
	}

	submission.ProjectID = form.projectID
	submission.TrackerID = form.trackerID
	s.submitForm(ctx, response, form, s.editIssueURL(issueID), result.Normalized)
	if response.Success {
		if response.IssueID != issueID {
			s.logger.Warn().Str("issue_id", issueID).Str("landed_on", response.IssueID).Msg("Update landed on a different issue")
		}
		response.Message = fmt.Sprintf("Successfully updated issue #%s", issueID)
	}
	return response
}

func newSubmitResponse() *models.SubmitResponse {
	return &models.SubmitResponse{FieldsSet: []string{}, FieldsSkipped: []string{}}
}

// validationPassed fills response for a failed preparation and reports whether
// submission may proceed
func validationPassed(response *models.SubmitResponse, result models.ValidationResult, err error) bool {
	if err != nil {
		response.Fail(err)
		response.Validation = &models.ValidationResult{Valid: false, Reason: err.Error()}
		return false
	}
	response.Validation = &result
	if !result.Valid {
		response.Fail(models.NewEngineError(models.KindValidationFailed, nil, "Field validation failed: %s", result.Reason))
		return false
	}
	return true
}

// submitForm opens target, applies payload best-effort, clicks the commit
// control and classifies the page it lands on. presetKeys are carried by the
// target URL and counted as set.
func (s *Service) submitForm(ctx context.Context, response *models.SubmitResponse, form *formPage, target string, payload models.Fields, presetKeys ...string) {
	_, formLocation, err := s.open(ctx, target)
	if err != nil {
		response.Fail(err)
		return
	}

	set, skipped, err := s.fillForm(ctx, form, payload, presetKeys)
	response.FieldsSet, response.FieldsSkipped = set, skipped
	if err != nil {
		response.Fail(err)
		return
	}
	if len(skipped) > 0 {
		s.logger.Warn().Strs("fields_skipped", skipped).Msg("Some fields could not be set")
	}

	if err := s.clickSubmit(ctx); err != nil {
		response.Fail(err)
		return
	}

	err = common.PollUntil(ctx, s.config.SubmitTimeout(), s.config.PollInterval(), func(ctx context.Context) (bool, error) {
		location, err := s.browser.Location(ctx)
		if err != nil {
			return false, err
		}
		return location != formLocation, nil
	})
	if err != nil && !errors.Is(err, common.ErrPollTimeout) {
		response.Fail(s.browserError(err, "failed while waiting for submission"))
		return
	}

	s.classifySubmission(ctx, response)
}

// fillForm sets every payload field that can be located, recording the rest.
// Only a closed browser aborts the loop.
func (s *Service) fillForm(ctx context.Context, form *formPage, payload models.Fields, presetKeys []string) (set, skipped []string, err error) {
	set, skipped = []string{}, []string{}
	preset := make(map[string]bool, len(presetKeys))
	for _, key := range presetKeys {
		preset[key] = true
	}

	for _, key := range fillOrder(payload) {
		if preset[key] {
			set = append(set, key)
			continue
		}

		field, ok := form.field(key)
		if !ok {
			skipped = append(skipped, key+" (unknown field)")
			continue
		}
		if !field.Enabled {
			skipped = append(skipped, key+" (disabled)")
			continue
		}

		if err := s.setField(ctx, field, payload[key]); err != nil {
			if errors.Is(err, models.ErrBrowserClosed) {
				return set, skipped, s.browserError(err, "browser closed while filling the form")
			}
			s.logger.Debug().Err(err).Str("field", key).Msg("Could not set field")
			skipped = append(skipped, fmt.Sprintf("%s (%v)", key, err))
			continue
		}
		set = append(set, key)
	}
	return set, skipped, nil
}

func fillOrder(payload models.Fields) []string {
	keys := make([]string, 0, len(payload))
	for key := range payload {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	ordered := make([]string, 0, len(keys))
	for _, lead := range leadingFields {
		if _, ok := payload[lead]; ok {
			ordered = append(ordered, lead)
		}
	}
	for _, key := range keys {
		if key != projectField && key != trackerField {
			ordered = append(ordered, key)
		}
	}
	return ordered
}

// setField applies a value according to the element kind. An element that is
// not rendered is reported as not found rather than as a browser failure.
func (s *Service) setField(ctx context.Context, field models.FieldDescriptor, value models.Value) error {
	selector := browser.IDSelector(field.ID)
	found, err := s.browser.Exists(ctx, selector)
	if err != nil {
		return err
	}
	if !found {
		return errors.New("not found")
	}

	switch field.InputKind {
	case models.InputSelect:
		return s.browser.SelectValue(ctx, selector, value.String())
	case models.InputCheckbox, models.InputRadio:
		return s.browser.SetChecked(ctx, selector, value.Truthy())
	default:
		return s.browser.SetText(ctx, selector, value.String())
	}
}

func (s *Service) clickSubmit(ctx context.Context) error {
	for _, selector := range submitSelectors {
		found, err := s.browser.Exists(ctx, selector)
		if err != nil {
			return s.browserError(err, "failed to locate submit control")
		}
		if !found {
			continue
		}
		if err := s.browser.Click(ctx, selector); err != nil {
			return s.browserError(err, "failed to click submit control")
		}
		return nil
	}
	return models.NewEngineError(models.KindSubmissionRejected, nil, "submit control not found on the form")
}

// classifySubmission reads the landing page: an error banner rejects the
// submission, an issue page is success, anything else is ambiguous.
func (s *Service) classifySubmission(ctx context.Context, response *models.SubmitResponse) {
	location, err := s.browser.Location(ctx)
	if err != nil {
		response.Fail(s.browserError(err, "failed to read location after submit"))
		return
	}
	s.logger.Info().Str("location", location).Msg("Submission landed")

	if s.isLoginLocation(location) {
		response.Fail(s.expire())
		return
	}

	doc, err := s.currentPage(ctx)
	if err != nil {
		response.Fail(err)
		return
	}

	if banner := pages.ErrorBanner(doc); banner != "" {
		response.Fail(models.NewEngineError(models.KindSubmissionRejected, nil, "Submission rejected: %s", banner))
		return
	}

	if id := issueIDFromLocation(location); id != "" {
		s.touch()
		response.Success = true
		response.IssueID = id
		response.IssueURL = location
		return
	}

	response.IssueURL = location
	response.Fail(models.NewEngineError(models.KindAmbiguousResult, nil, "Unexpected redirect after submit: %s", location))
}

// issueIDFromLocation extracts the id of an issue detail URL. Creation and
// edit pages do not match.
func issueIDFromLocation(location string) string {
	u, err := url.Parse(location)
	if err != nil {
		return ""
	}
	if m := issuePathPattern.FindStringSubmatch(u.Path); m != nil {
		return m[1]
	}
	return ""
}

// record writes the outcome of a create or update to the submission journal
func (s *Service) record(ctx context.Context, submission *models.Submission, response *models.SubmitResponse) {
	if s.journal == nil {
		return
	}

	if submission.IssueID == "" {
		submission.IssueID = response.IssueID
	}
	submission.URL = response.IssueURL
	submission.Success = response.Success
	submission.Message = response.Message
	submission.ErrorKind = string(response.ErrorKind)
	submission.FieldsSet = response.FieldsSet
	submission.FieldsSkipped = response.FieldsSkipped

	if err := s.journal.Record(ctx, submission); err != nil {
		s.logger.Warn().Err(err).Str("operation", submission.Operation).Msg("Failed to record submission")
	}
}
