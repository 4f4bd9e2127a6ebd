package redmine

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/ternarybob/redmine-mcp/internal/models"
	"github.com/ternarybob/redmine-mcp/internal/services/pages"
)

const (
	assigneeField = "issue_assigned_to_id"
	trackerField  = "issue_tracker_id"
	projectField  = "issue_project_id"

	// assigneeGuidanceLimit caps the member list quoted in a failure message
	assigneeGuidanceLimit = 5
)

var customFieldAliasPattern = regexp.MustCompile(`^cf_(\d+)$`)

// normalizeKeys maps payload aliases onto field ids: cf_<id> to the custom
// field element, and short names such as subject to issue_subject. Exact field
// ids win over aliases for the same field.
func normalizeKeys(form *formPage, payload models.Fields) models.Fields {
	out := make(models.Fields, len(payload))
	var aliases []string
	for key, value := range payload {
		if _, ok := form.field(key); ok {
			out[key] = value
			continue
		}
		aliases = append(aliases, key)
	}
	sort.Strings(aliases)

	for _, key := range aliases {
		id := aliasTarget(form, key)
		if _, exists := out[id]; exists && id != key {
			continue
		}
		out[id] = payload[key]
	}
	return out
}

func aliasTarget(form *formPage, key string) string {
	if m := customFieldAliasPattern.FindStringSubmatch(key); m != nil {
		for _, field := range form.fields {
			if field.IsCustomField && field.CustomFieldID == m[1] {
				return field.ID
			}
		}
	}
	if _, ok := form.field("issue_" + key); ok {
		return "issue_" + key
	}
	return key
}

func invalid(reason string, context map[string][]string) models.ValidationResult {
	return models.ValidationResult{Valid: false, Reason: reason, Context: context}
}

// validate checks a payload against a loaded form, short-circuiting on the
// first failing rule. On creation every required field must be supplied; on
// update required fields keep their current value unless explicitly blanked.
// The returned error is reserved for session-level failures.
func (s *Service) validate(ctx context.Context, form *formPage, payload models.Fields, creating bool) (models.ValidationResult, error) {
	normalized := normalizeKeys(form, payload)

	// Required fields
	var missing, missingIDs []string
	for _, field := range form.fields {
		if !field.Required || !field.Enabled {
			continue
		}
		value, ok := normalized[field.ID]
		if (creating && (!ok || value.IsEmpty())) || (!creating && ok && value.IsEmpty()) {
			missing = append(missing, fmt.Sprintf("%s (%s)", field.Label, field.ID))
			missingIDs = append(missingIDs, field.ID)
		}
	}
	if len(missing) > 0 {
		return invalid("Missing required fields: "+strings.Join(missing, ", "),
			map[string][]string{"missing_fields": missingIDs}), nil
	}

	// Unknown keys
	var unknown []string
	for key := range normalized {
		if _, ok := form.field(key); !ok {
			unknown = append(unknown, key)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		available := form.fieldIDs()
		return invalid(fmt.Sprintf("Unknown fields: %s. Available fields: %s", strings.Join(unknown, ", "), strings.Join(available, ", ")),
			map[string][]string{"unknown_fields": unknown, "available_fields": available}), nil
	}

	// Assignee
	if value, ok := normalized[assigneeField]; ok && !value.IsEmpty() {
		result, err := s.checkAssignee(ctx, form.projectID, normalized, value.String())
		if err != nil || !result.Valid {
			return result, err
		}
	}

	// Tracker
	if value, ok := normalized[trackerField]; ok && !value.IsEmpty() {
		if result := checkTracker(form, normalized, value.String()); !result.Valid {
			return result, nil
		}
	}

	return models.ValidationResult{Valid: true, Normalized: normalized}, nil
}

// checkAssignee matches the assignee against project members by id or
// case-insensitive name, rewriting names to ids. A member list that cannot be
// read or is empty allows the value; a definite mismatch rejects it.
func (s *Service) checkAssignee(ctx context.Context, projectID string, normalized models.Fields, assignee string) (models.ValidationResult, error) {
	if strings.EqualFold(strings.TrimSpace(assignee), "me") {
		if userID := s.currentUserID(); userID != "" {
			normalized[assigneeField] = models.StringValue(userID)
		}
		return models.ValidationResult{Valid: true}, nil
	}

	members, err := s.describeMembers(ctx, projectID)
	if err != nil {
		switch models.KindOf(err) {
		case models.KindSessionExpired, models.KindBrowserClosed:
			return invalid(err.Error(), nil), err
		}
		s.logger.Debug().Err(err).Str("project_id", projectID).Msg("Could not get project members for assignee validation - allowing")
		return models.ValidationResult{Valid: true}, nil
	}
	if len(members) == 0 {
		s.logger.Debug().Str("project_id", projectID).Msg("No project members found for assignee validation - allowing")
		return models.ValidationResult{Valid: true}, nil
	}

	for _, m := range members {
		if m.ID == assignee || strings.EqualFold(m.Name, assignee) {
			normalized[assigneeField] = models.StringValue(m.ID)
			return models.ValidationResult{Valid: true}, nil
		}
	}

	available := make([]string, 0, len(members))
	for _, m := range members {
		available = append(available, fmt.Sprintf("%s (ID: %s)", m.Name, m.ID))
	}
	shown := available
	suffix := ""
	if len(shown) > assigneeGuidanceLimit {
		shown = shown[:assigneeGuidanceLimit]
		suffix = "..."
	}
	return invalid(fmt.Sprintf("Assignee '%s' not found in project members. Available: %s%s", assignee, strings.Join(shown, ", "), suffix),
		map[string][]string{"available_assignees": available}), nil
}

// checkTracker matches the tracker against the form's tracker options by id or
// case-insensitive name, rewriting names to ids
func checkTracker(form *formPage, normalized models.Fields, tracker string) models.ValidationResult {
	options, ok := pages.SelectOptions(form.doc, trackerField)
	if !ok {
		if tracker == form.trackerID {
			return models.ValidationResult{Valid: true}
		}
		return invalid(fmt.Sprintf("Tracker '%s' cannot be selected on this form", tracker), nil)
	}

	trackers := make([]models.TrackerInfo, 0, len(options))
	for _, o := range options {
		trackers = append(trackers, models.TrackerInfo{ID: o.Value, Name: o.Text})
	}
	if t, found := matchTracker(trackers, tracker); found {
		normalized[trackerField] = models.StringValue(t.ID)
		return models.ValidationResult{Valid: true}
	}
	return trackerInvalid(tracker, form.projectID, trackers)
}

func trackerInvalid(tracker, projectID string, trackers []models.TrackerInfo) models.ValidationResult {
	return invalid(trackerMismatch(tracker, projectID, trackers).Error(),
		map[string][]string{"available_trackers": trackerChoices(trackers)})
}

// prepareCreate loads the creation form for the resolved tracker and validates
// the payload against it. The tracker argument overrides any tracker in fields.
func (s *Service) prepareCreate(ctx context.Context, projectID, tracker string, fields models.Fields) (*formPage, models.ValidationResult, error) {
	trackerID := strings.TrimSpace(tracker)
	if trackerID != "" && !isNumeric(trackerID) {
		trackers, err := s.describeTrackers(ctx, projectID)
		if err != nil {
			return nil, models.ValidationResult{}, s.projectError(ctx, projectID, err)
		}
		t, ok := matchTracker(trackers, trackerID)
		if !ok {
			return nil, trackerInvalid(trackerID, projectID, trackers), nil
		}
		trackerID = t.ID
	}

	form, err := s.loadForm(ctx, s.newIssueURL(projectID, trackerID))
	if err != nil {
		return nil, models.ValidationResult{}, s.projectError(ctx, projectID, err)
	}
	if form.projectID == "" {
		form.projectID = projectID
	}

	payload := fields.Clone()
	if trackerID != "" {
		delete(payload, "tracker_id")
		payload[trackerField] = models.StringValue(trackerID)
	}

	result, err := s.validate(ctx, form, payload, true)
	return form, result, err
}

// prepareUpdate loads the edit form of an issue and validates the payload against it
func (s *Service) prepareUpdate(ctx context.Context, issueID string, fields models.Fields) (*formPage, models.ValidationResult, error) {
	form, err := s.loadForm(ctx, s.editIssueURL(issueID))
	if err != nil {
		return nil, models.ValidationResult{}, err
	}
	if len(fields) == 0 {
		return form, invalid("No fields provided for update", map[string][]string{"available_fields": form.fieldIDs()}), nil
	}

	result, err := s.validate(ctx, form, fields.Clone(), false)
	return form, result, err
}

// ValidateIssueFields checks a creation payload against the live schema without submitting
func (s *Service) ValidateIssueFields(ctx context.Context, projectID, tracker string, fields models.Fields) *models.ValidationResponse {
	s.mu.Lock()
	defer s.mu.Unlock()

	response := &models.ValidationResponse{}
	if err := s.requireSession(); err != nil {
		response.Fail(err)
		response.Validation = invalid(err.Error(), nil)
		return response
	}

	_, result, err := s.prepareCreate(ctx, projectID, tracker, fields)
	if err != nil {
		response.Fail(err)
		response.Validation = invalid(err.Error(), nil)
		return response
	}

	response.Validation = result
	if !result.Valid {
		response.Fail(models.NewEngineError(models.KindValidationFailed, nil, "Field validation failed: %s", result.Reason))
		return response
	}
	response.Success = true
	response.Message = "Fields are valid"
	return response
}
