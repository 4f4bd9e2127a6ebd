// Package query builds Redmine list URLs using the issue/time entry filter grammar:
// f[]=name, op[name]=operator, v[name][]=value.
package query

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/ternarybob/redmine-mcp/internal/models"
)

// Filter operators understood by Redmine queries
const (
	OpEquals   = "="
	OpContains = "~"
	OpBetween  = "><"
	OpOpen     = "o"
	OpClosed   = "c"
	OpAny      = "*"
)

// Issue list columns requested from Redmine
var IssueColumns = []string{"tracker", "status", "priority", "subject", "assigned_to", "updated_on"}

// Time entry list columns requested from Redmine
var TimeEntryColumns = []string{"spent_on", "user", "activity", "issue", "comments", "hours"}

type param struct {
	key   string
	value string
}

// Builder accumulates query parameters in insertion order
type Builder struct {
	params []param
}

// NewBuilder starts a filtered query sorted by sort (e.g. "id:desc")
func NewBuilder(sort string) *Builder {
	b := &Builder{}
	b.Add("set_filter", "1")
	if sort != "" {
		b.Add("sort", sort)
	}
	return b
}

// Add appends a raw parameter
func (b *Builder) Add(key, value string) *Builder {
	b.params = append(b.params, param{key: key, value: value})
	return b
}

// Filter appends a filter triplet. Operators without values (o, c, *) emit no v[] entries.
func (b *Builder) Filter(name, op string, values ...string) *Builder {
	b.Add("f[]", name)
	b.Add("op["+name+"]", op)
	for _, v := range values {
		b.Add("v["+name+"][]", v)
	}
	return b
}

// Columns appends c[] display columns
func (b *Builder) Columns(cols ...string) *Builder {
	for _, c := range cols {
		b.Add("c[]", c)
	}
	return b
}

// Page appends page=N for pages after the first
func (b *Builder) Page(page int) *Builder {
	if page > 1 {
		b.Add("page", strconv.Itoa(page))
	}
	return b
}

// Encode renders the parameters. Brackets in keys stay literal; values are fully
// escaped with spaces as %20.
func (b *Builder) Encode() string {
	parts := make([]string, 0, len(b.params))
	for _, p := range b.params {
		parts = append(parts, escapeKey(p.key)+"="+escapeValue(p.value))
	}
	return strings.Join(parts, "&")
}

func escapeKey(key string) string {
	k := url.QueryEscape(key)
	k = strings.ReplaceAll(k, "%5B", "[")
	return strings.ReplaceAll(k, "%5D", "]")
}

func escapeValue(value string) string {
	return strings.ReplaceAll(url.QueryEscape(value), "+", "%20")
}

// StatusFilter maps a status argument to an operator and values.
// open, closed and * select Redmine's status groups; anything else is an exact id.
func StatusFilter(status string) (string, []string) {
	switch strings.ToLower(strings.TrimSpace(status)) {
	case "open", OpOpen:
		return OpOpen, nil
	case "closed", OpClosed:
		return OpClosed, nil
	case "*", "all", "any":
		return OpAny, nil
	default:
		return OpEquals, []string{status}
	}
}

// NormalizeAssignee passes "me" (any case) through as "me"
func NormalizeAssignee(assignee string) string {
	if strings.EqualFold(strings.TrimSpace(assignee), "me") {
		return "me"
	}
	return assignee
}

// SearchText is the first non-empty of q, subject, description, notes
func SearchText(c models.SearchCriteria) string {
	for _, s := range []string{c.Query, c.Subject, c.Description, c.Notes} {
		if strings.TrimSpace(s) != "" {
			return s
		}
	}
	return ""
}

// IssuesURL builds the issue listing URL for criteria
func IssuesURL(baseURL string, c models.SearchCriteria) string {
	b := NewBuilder("id:desc")

	if c.StatusID != "" {
		op, values := StatusFilter(c.StatusID)
		b.Filter("status_id", op, values...)
	}
	if c.TrackerID != "" {
		b.Filter("tracker_id", OpEquals, c.TrackerID)
	}
	if c.AssignedToID != "" {
		b.Filter("assigned_to_id", OpEquals, NormalizeAssignee(c.AssignedToID))
	}
	if c.ParentID != "" {
		b.Filter("parent_id", OpEquals, c.ParentID)
	}
	if text := SearchText(c); text != "" {
		b.Filter("any_searchable", OpContains, text)
	}

	b.Add("f[]", "")
	b.Columns(IssueColumns...)
	b.Add("group_by", "")
	b.Add("t[]", "")
	b.Page(c.Page)

	path := "/issues"
	if c.ProjectID != "" {
		path = "/projects/" + url.PathEscape(c.ProjectID) + "/issues"
	}
	return strings.TrimRight(baseURL, "/") + path + "?" + b.Encode()
}

// TimeEntriesURL builds the project time entry listing URL for criteria
func TimeEntriesURL(baseURL string, c models.TimeEntryCriteria) string {
	b := NewBuilder("spent_on:desc")

	if c.StartDate != "" || c.EndDate != "" {
		start, end := c.StartDate, c.EndDate
		if start == "" {
			start = end
		}
		if end == "" {
			end = start
		}
		b.Filter("spent_on", OpBetween, start, end)
	}
	if c.UserID != "" {
		b.Filter("user_id", OpEquals, c.UserID)
	}

	b.Add("f[]", "")
	b.Columns(TimeEntryColumns...)
	b.Page(c.Page)

	return strings.TrimRight(baseURL, "/") + "/projects/" + url.PathEscape(c.ProjectID) + "/time_entries?" + b.Encode()
}
