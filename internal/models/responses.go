package models

// Result is embedded in every engine response
type Result struct {
	Success   bool      `json:"success"`
	Message   string    `json:"message,omitempty"`
	ErrorKind ErrorKind `json:"error_kind,omitempty"`
}

// Fail fills the result from err
func (r *Result) Fail(err error) {
	r.Success = false
	r.Message = err.Error()
	r.ErrorKind = KindOf(err)
}

// FailResult builds a failed Result from err
func FailResult(err error) Result {
	var r Result
	r.Fail(err)
	return r
}

type LoginResponse struct {
	Result
	RedirectURL   string `json:"redirect_url,omitempty"`
	CurrentUserID string `json:"current_user_id,omitempty"`
	Headless      bool   `json:"headless"`
}

type GeneralResponse struct {
	Result
}

type ServerInfoResponse struct {
	Result
	BaseURL        string `json:"base_url"`
	LoginURL       string `json:"login_url"`
	ProjectsURL    string `json:"projects_url"`
	State          string `json:"state"`
	Authenticated  bool   `json:"authenticated"`
	Headless       bool   `json:"headless"`
	SessionID      string `json:"session_id,omitempty"`
	CurrentUserID  string `json:"current_user_id,omitempty"`
	IdleSeconds    int64  `json:"idle_seconds"`
	SessionTimeout string `json:"session_timeout"`
	RequestTimeout string `json:"request_timeout"`
	LoginTimeout   string `json:"login_timeout"`
	Version        string `json:"version"`
}

type ProjectsResponse struct {
	Result
	Projects []ProjectRecord `json:"projects"`
}

type IssuesResponse struct {
	Result
	Issues         []IssueRecord `json:"issues"`
	TotalCount     int           `json:"total_count"`
	TotalEstimated bool          `json:"total_estimated"`
	CurrentPage    int           `json:"current_page"`
	HasNext        bool          `json:"has_next"`
	SearchURL      string        `json:"search_url,omitempty"`
}

type IssueDetailResponse struct {
	Result
	Issue    *IssueRecord `json:"issue,omitempty"`
	Journals []Journal    `json:"journals,omitempty"`
}

type TrackersResponse struct {
	Result
	Trackers []TrackerInfo `json:"trackers"`
}

type StatusesResponse struct {
	Result
	Statuses []Option `json:"statuses"`
}

type FieldsResponse struct {
	Result
	Fields []FieldDescriptor `json:"fields"`
}

type MembersResponse struct {
	Result
	Members []MemberRecord `json:"members"`
}

type TimeEntriesResponse struct {
	Result
	TimeEntries    []TimeEntryRecord `json:"time_entries"`
	TotalCount     int               `json:"total_count"`
	TotalEstimated bool              `json:"total_estimated"`
	CurrentPage    int               `json:"current_page"`
	HasNext        bool              `json:"has_next"`
}

type ValidationResponse struct {
	Result
	Validation ValidationResult `json:"validation"`
}

// SubmitResponse is returned by create and update
type SubmitResponse struct {
	Result
	IssueID       string            `json:"issue_id,omitempty"`
	IssueURL      string            `json:"issue_url,omitempty"`
	FieldsSet     []string          `json:"fields_set"`
	FieldsSkipped []string          `json:"fields_skipped"`
	Validation    *ValidationResult `json:"validation,omitempty"`
}

type SubmissionHistoryResponse struct {
	Result
	Submissions []Submission `json:"submissions"`
}
