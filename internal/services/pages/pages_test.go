package pages

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/redmine-mcp/internal/models"
)

const testBaseURL = "https://redmine.example.com"

func newTestExtractor() *Extractor {
	return NewExtractor(testBaseURL, arbor.NewLogger())
}

func mustParse(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := Parse(html)
	require.NoError(t, err)
	return doc
}

func TestProjects_BoardStrategy(t *testing.T) {
	projects := newTestExtractor().Projects(mustParse(t, projectsBoardHTML))

	require.Len(t, projects, 2, "duplicates merged by id")
	assert.Equal(t, models.ProjectRecord{
		ID:          "demo",
		Name:        "Demo",
		Description: "Demo project for tests",
		URL:         testBaseURL + "/projects/demo",
	}, projects[0])
	assert.Equal(t, "ops", projects[1].ID)
}

func TestProjects_LinkScanFallback(t *testing.T) {
	html := `<div id="content"><a href="/projects/alpha">Alpha</a><a href="/projects/new">New project</a><a href="/projects/alpha/issues">Issues</a><a href="/projects">Projects</a></div>`
	projects := newTestExtractor().Projects(mustParse(t, html))

	require.Len(t, projects, 1)
	assert.Equal(t, "alpha", projects[0].ID)
}

func TestIssues_TableStrategy(t *testing.T) {
	issues := newTestExtractor().Issues(mustParse(t, issueListHTML))

	require.Len(t, issues, 2)

	assert.Equal(t, "42", issues[0].ID)
	assert.Equal(t, "Login page crashes", issues[0].Subject, "id-only link resolves subject from the subject cell")
	assert.Equal(t, "Bug", issues[0].Tracker)
	assert.Equal(t, "New", issues[0].Status)
	assert.Equal(t, "High", issues[0].Priority)
	assert.Equal(t, "alice", issues[0].AssignedTo)
	assert.Equal(t, testBaseURL+"/issues/42", issues[0].URL)

	assert.Equal(t, "41", issues[1].ID)
	assert.Equal(t, "Export to CSV", issues[1].Subject, "denylisted cells skipped")
	assert.Equal(t, "Feature", issues[1].Tracker, "positional fallback for unclassed cells")
	assert.Equal(t, "Open", issues[1].Status)
	assert.Equal(t, "Normal", issues[1].Priority)
}

func TestIssues_LinkScanFallback(t *testing.T) {
	issues := newTestExtractor().Issues(mustParse(t, issueLinksHTML))

	require.Len(t, issues, 2)
	assert.Equal(t, "7", issues[0].ID)
	assert.Equal(t, "Wrong timezone", issues[0].Subject)
	assert.Equal(t, "8", issues[1].ID)
	assert.Equal(t, "Broken link", issues[1].Subject)
}

func TestIssues_SubjectFromRowLinks(t *testing.T) {
	html := `<div id="content"><table class="list issues"><tr>
		<td><a href="/issues/5">5</a></td>
		<td>Bug</td>
		<td class="other"><a href="/issues/5" title="x">Timeout on export</a></td>
	</tr></table></div>`
	issues := newTestExtractor().Issues(mustParse(t, html))

	require.Len(t, issues, 1)
	assert.Equal(t, "Timeout on export", issues[0].Subject)
}

func TestIssues_PlaceholderSubject(t *testing.T) {
	html := `<div id="content"><table class="list issues"><tr><td><a href="/issues/5">5</a></td></tr></table></div>`
	issues := newTestExtractor().Issues(mustParse(t, html))

	require.Len(t, issues, 1)
	assert.Equal(t, "Issue #5", issues[0].Subject)
}

func TestMembers(t *testing.T) {
	members := newTestExtractor().Members(mustParse(t, membersHTML))

	require.Len(t, members, 2, "group rows skipped")
	assert.Equal(t, "7", members[0].ID)
	assert.Equal(t, "Alice Smith", members[0].Name)
	assert.Equal(t, []string{"Manager", "Developer"}, members[0].Roles)
	assert.True(t, members[0].IsCurrentUser)
	assert.Equal(t, "9", members[1].ID)
	assert.False(t, members[1].IsCurrentUser)
}

func TestMembers_LinkScanFallback(t *testing.T) {
	html := `<div id="top-menu"><a class="user active" href="/users/7">alice</a></div>
		<div id="content"><a href="/users/9">Bob</a><a href="/users/9">Bob again</a><a href="/users/10"></a></div>`
	members := newTestExtractor().Members(mustParse(t, html))

	require.Len(t, members, 1, "header account link is outside #content")
	assert.Equal(t, "9", members[0].ID)
	assert.Equal(t, "Bob", members[0].Name)
	assert.Empty(t, members[0].Roles)
}

func TestTimeEntries_ByClass(t *testing.T) {
	entries := newTestExtractor().TimeEntries(mustParse(t, timeEntriesHTML))

	require.Len(t, entries, 1)
	assert.Equal(t, models.TimeEntryRecord{
		ID:       "11",
		SpentOn:  "2025-01-03",
		User:     "alice",
		UserID:   "7",
		Activity: "Development",
		Issue:    "Bug #42: Login page crashes",
		IssueID:  "42",
		Comments: "Investigated",
		Hours:    "1.50",
	}, entries[0])
}

func TestTimeEntries_Positional(t *testing.T) {
	entries := newTestExtractor().TimeEntries(mustParse(t, timeEntriesPositionalHTML))

	require.Len(t, entries, 1)
	assert.Equal(t, "2025-01-04", entries[0].SpentOn)
	assert.Equal(t, "bob", entries[0].User)
	assert.Equal(t, "5", entries[0].IssueID)
	assert.Equal(t, "2.00", entries[0].Hours)
}

func TestIssueDetail(t *testing.T) {
	issue, journals := newTestExtractor().IssueDetail(mustParse(t, issueDetailHTML), "42")

	assert.Equal(t, "42", issue.ID)
	assert.Equal(t, "Login page crashes", issue.Subject)
	assert.Equal(t, "Bug", issue.Tracker)
	assert.Equal(t, "New", issue.Status, "cf_ block with a standard label stays custom")
	assert.Equal(t, "High", issue.Priority)
	assert.Equal(t, "Bob Jones", issue.AssignedTo)
	assert.Equal(t, "2025-02-01", issue.DueDate, "only the first line of a value is kept")
	assert.Equal(t, "50%", issue.Progress)
	assert.Equal(t, "2025-01-10", issue.StartDate, "Japanese standard label")
	assert.Equal(t, "Added by alice 2 days ago.", issue.CreatedOn)

	assert.Equal(t, map[string]string{
		"cf_5":     "ACME",
		"cf_6":     "custom-but-japanese-label",
		"Severity": "Major",
	}, issue.CustomFields)

	assert.Equal(t, "Steps to reproduce:\nopen /login", issue.Description)
	assert.Contains(t, issue.DescriptionMD, "**reproduce**")

	require.Len(t, journals, 1)
	assert.Equal(t, "100", journals[0].ID)
	assert.Equal(t, "Bob Jones", journals[0].Author)
	assert.Equal(t, "Looking into it.", journals[0].Notes)
	assert.Equal(t, []string{"Status changed from New to In Progress"}, journals[0].Details)
}

func TestIssueDetail_MatchesListingSubject(t *testing.T) {
	extractor := newTestExtractor()
	listed := extractor.Issues(mustParse(t, issueListHTML))
	detail, _ := extractor.IssueDetail(mustParse(t, issueDetailHTML), listed[0].ID)

	assert.Equal(t, listed[0].ID, detail.ID)
	assert.Equal(t, listed[0].Subject, detail.Subject)
}

func fieldByID(fields []models.FieldDescriptor, id string) (models.FieldDescriptor, bool) {
	for _, f := range fields {
		if f.ID == id {
			return f, true
		}
	}
	return models.FieldDescriptor{}, false
}

func TestFields(t *testing.T) {
	fields := newTestExtractor().Fields(mustParse(t, issueFormHTML))

	var ids []string
	seen := map[string]bool{}
	for _, f := range fields {
		assert.False(t, seen[f.ID], "duplicate field id %s", f.ID)
		seen[f.ID] = true
		ids = append(ids, f.ID)
	}
	assert.Equal(t, []string{
		"issue_tracker_id", "issue_subject", "issue_description", "issue_status_id",
		"issue_assigned_to_id", "issue_due_date", "issue_estimated_hours",
		"issue_custom_field_values_5", "issue_custom_field_values_8", "issue_is_private",
	}, ids)

	subject, _ := fieldByID(fields, "issue_subject")
	assert.Equal(t, "Subject", subject.Label)
	assert.True(t, subject.Required)
	assert.Equal(t, models.InputText, subject.InputKind)
	assert.Nil(t, subject.Options)

	tracker, _ := fieldByID(fields, "issue_tracker_id")
	assert.Equal(t, models.InputSelect, tracker.InputKind)
	assert.Equal(t, []models.Option{{Value: "1", Text: "Bug"}, {Value: "2", Text: "Feature"}}, tracker.Options)

	description, _ := fieldByID(fields, "issue_description")
	assert.False(t, description.Required)
	assert.Equal(t, models.InputTextarea, description.InputKind)

	due, _ := fieldByID(fields, "issue_due_date")
	assert.Equal(t, "Due date", due.Label, "label inside the parent")
	assert.True(t, due.Required, "required class on the parent")
	assert.Equal(t, models.InputDate, due.InputKind)

	hours, _ := fieldByID(fields, "issue_estimated_hours")
	assert.False(t, hours.Enabled)
	assert.Equal(t, models.InputNumber, hours.InputKind)

	customer, _ := fieldByID(fields, "issue_custom_field_values_5")
	assert.True(t, customer.IsCustomField)
	assert.Equal(t, "5", customer.CustomFieldID)
	assert.True(t, customer.Required, "required attribute")
	assert.Equal(t, "cf_5", customer.PayloadKey())

	billable, _ := fieldByID(fields, "issue_custom_field_values_8")
	assert.True(t, billable.IsCustomField)
	assert.Equal(t, "8", billable.CustomFieldID)
	assert.Equal(t, models.InputCheckbox, billable.InputKind)

	private, _ := fieldByID(fields, "issue_is_private")
	assert.Equal(t, "Is Private", private.Label, "synthesized from id")

	_, found := fieldByID(fields, "q")
	assert.False(t, found, "elements outside the issue form are ignored")
}

func TestSelectOptions(t *testing.T) {
	doc := mustParse(t, issueFormHTML)

	statuses, ok := SelectOptions(doc, "issue_status_id")
	require.True(t, ok)
	assert.Equal(t, []models.Option{{Value: "1", Text: "New"}, {Value: "2", Text: "In Progress"}}, statuses)

	assignees, ok := SelectOptions(doc, "issue_assigned_to_id")
	require.True(t, ok)
	assert.Len(t, assignees, 2, "blank option dropped")

	_, ok = SelectOptions(doc, "issue_category_id")
	assert.False(t, ok)
}

func TestPageHelpers(t *testing.T) {
	assert.Equal(t, "7", CurrentUserID(mustParse(t, membersHTML)))
	assert.True(t, IsNotFound(mustParse(t, notFoundHTML)))
	assert.False(t, IsNotFound(mustParse(t, issueDetailHTML)))

	banner := ErrorBanner(mustParse(t, rejectedHTML))
	assert.Equal(t, "Subject cannot be blank; Due date is not a valid date", banner)
	assert.Empty(t, ErrorBanner(mustParse(t, issueDetailHTML)))

	assert.True(t, HasLoginForm(mustParse(t, `<form id="login-form"><input id="login-submit" type="submit"></form>`)))
	assert.False(t, strings.Contains(ErrorBanner(mustParse(t, issueListHTML)), "error"))
}

func TestProjectIdentifierAndSelectedValue(t *testing.T) {
	edit := mustParse(t, `<html><body class="theme-Default project-demo controller-issues action-edit">
		<form id="issue-form">
			<select id="issue_tracker_id"><option value="1">Bug</option><option value="2" selected="selected">Feature</option></select>
			<select id="issue_status_id"><option value="3">Resolved</option></select>
		</form></body></html>`)
	assert.Equal(t, "demo", ProjectIdentifier(edit))
	assert.Equal(t, "2", SelectedValue(edit, "issue_tracker_id"))
	assert.Equal(t, "3", SelectedValue(edit, "issue_status_id"), "first option when none selected")
	assert.Empty(t, SelectedValue(edit, "issue_priority_id"))

	global := mustParse(t, `<html><body class="controller-issues action-new">
		<select id="issue_project_id"><option value="5" selected>Demo</option></select></body></html>`)
	assert.Equal(t, "5", ProjectIdentifier(global))
}
