package models

import "time"

// InputKind is the kind of an interactive form element
type InputKind string

const (
	InputText     InputKind = "text"
	InputTextarea InputKind = "textarea"
	InputSelect   InputKind = "select"
	InputCheckbox InputKind = "checkbox"
	InputRadio    InputKind = "radio"
	InputDate     InputKind = "date"
	InputNumber   InputKind = "number"
)

// Option is a select option
type Option struct {
	Value string `json:"value"`
	Text  string `json:"text"`
}

// FieldDescriptor describes one field of a live creation/edit form.
// Descriptors are produced per request and never cached.
type FieldDescriptor struct {
	ID            string    `json:"id"`
	Label         string    `json:"label"`
	InputKind     InputKind `json:"input_kind"`
	Required      bool      `json:"required"`
	Options       []Option  `json:"options,omitempty"` // nil for non-select fields
	IsCustomField bool      `json:"is_custom_field"`
	CustomFieldID string    `json:"custom_field_id,omitempty"`
	Enabled       bool      `json:"enabled"`
}

// PayloadKey is the key downstream consumers use for the field value:
// cf_<id> for custom fields, the element id otherwise.
func (f FieldDescriptor) PayloadKey() string {
	if f.IsCustomField && f.CustomFieldID != "" {
		return "cf_" + f.CustomFieldID
	}
	return f.ID
}

// ProjectRecord is a project row from the projects listing
type ProjectRecord struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	URL         string `json:"url,omitempty"`
}

// IssueRecord is an issue from a listing or detail page
type IssueRecord struct {
	ID            string            `json:"id"`
	Subject       string            `json:"subject"`
	URL           string            `json:"url,omitempty"`
	Tracker       string            `json:"tracker,omitempty"`
	Status        string            `json:"status,omitempty"`
	Priority      string            `json:"priority,omitempty"`
	AssignedTo    string            `json:"assigned_to,omitempty"`
	Category      string            `json:"category,omitempty"`
	TargetVersion string            `json:"target_version,omitempty"`
	StartDate     string            `json:"start_date,omitempty"`
	DueDate       string            `json:"due_date,omitempty"`
	EstimatedTime string            `json:"estimated_time,omitempty"`
	Progress      string            `json:"progress,omitempty"`
	SpentTime     string            `json:"spent_time,omitempty"`
	Description   string            `json:"description,omitempty"`
	DescriptionMD string            `json:"description_markdown,omitempty"`
	CreatedOn     string            `json:"created_on,omitempty"`
	UpdatedOn     string            `json:"updated_on,omitempty"`
	CustomFields  map[string]string `json:"custom_fields,omitempty"`
}

// Journal is one history entry on an issue detail page
type Journal struct {
	ID      string   `json:"id"`
	Author  string   `json:"author,omitempty"`
	Notes   string   `json:"notes,omitempty"`
	Details []string `json:"details,omitempty"`
}

// MemberRecord is a project member
type MemberRecord struct {
	ID             string   `json:"id"`
	Name           string   `json:"name"`
	Roles          []string `json:"roles"`
	IsCurrentUser  bool     `json:"is_current_user"`
	AdditionalInfo string   `json:"additional_info,omitempty"`
}

// TimeEntryRecord is a row of the time entries listing
type TimeEntryRecord struct {
	ID       string `json:"id,omitempty"`
	SpentOn  string `json:"spent_on,omitempty"`
	User     string `json:"user,omitempty"`
	UserID   string `json:"user_id,omitempty"`
	Activity string `json:"activity,omitempty"`
	Issue    string `json:"issue,omitempty"`
	IssueID  string `json:"issue_id,omitempty"`
	Comments string `json:"comments,omitempty"`
	Hours    string `json:"hours,omitempty"`
}

// TrackerInfo is a tracker option, optionally with its live field schema
type TrackerInfo struct {
	ID     string            `json:"id"`
	Name   string            `json:"name"`
	Fields []FieldDescriptor `json:"fields,omitempty"`
}

// SearchCriteria are the issue search filters. Page is 1-based.
type SearchCriteria struct {
	ProjectID    string `json:"project_id,omitempty"`
	StatusID     string `json:"status_id,omitempty"`
	TrackerID    string `json:"tracker_id,omitempty"`
	AssignedToID string `json:"assigned_to_id,omitempty"`
	ParentID     string `json:"parent_id,omitempty" validate:"omitempty,numeric"`
	Query        string `json:"q,omitempty"`
	Subject      string `json:"subject,omitempty"`
	Description  string `json:"description,omitempty"`
	Notes        string `json:"notes,omitempty"`
	Page         int    `json:"page,omitempty" validate:"gte=0"`
}

// TimeEntryCriteria are the time entry filters. Dates are YYYY-MM-DD.
type TimeEntryCriteria struct {
	ProjectID string `json:"project_id" validate:"required"`
	UserID    string `json:"user_id,omitempty" validate:"omitempty,numeric"`
	StartDate string `json:"start_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	EndDate   string `json:"end_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	Page      int    `json:"page,omitempty" validate:"gte=0"`
}

// ValidationResult is the outcome of checking a payload against the live schema.
type ValidationResult struct {
	Valid   bool                `json:"valid"`
	Reason  string              `json:"reason,omitempty"`
	Context map[string][]string `json:"context,omitempty"`

	// Normalized is the payload after alias and name-to-id rewriting.
	Normalized Fields `json:"-"`
}

// Session is the authenticated browser session state
type Session struct {
	ID            string    `json:"id"`
	Authenticated bool      `json:"authenticated"`
	Headless      bool      `json:"headless"`
	LastActivity  time.Time `json:"last_activity"`
	CurrentUserID string    `json:"current_user_id,omitempty"`
}

// Submission is a journal entry for one create/update submission
type Submission struct {
	ID            string    `json:"id"`
	SessionID     string    `json:"session_id"`
	Operation     string    `json:"operation"` // "create" or "update"
	ProjectID     string    `json:"project_id,omitempty"`
	TrackerID     string    `json:"tracker_id,omitempty"`
	IssueID       string    `json:"issue_id,omitempty"`
	URL           string    `json:"url,omitempty"`
	Success       bool      `json:"success"`
	Message       string    `json:"message"`
	ErrorKind     string    `json:"error_kind,omitempty"`
	FieldsSet     []string  `json:"fields_set,omitempty"`
	FieldsSkipped []string  `json:"fields_skipped,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}
