package redmine

import (
	"fmt"
	"strings"
)

const testBaseURL = "https://redmine.example.com"

const loginPageHTML = `<html><body class="controller-account action-login">
<div id="content">
<div id="login-form">
  <form action="/login" method="post">
    <input type="text" name="username" id="username">
    <input type="password" name="password" id="password">
    <input type="submit" name="login" value="Login" id="login-submit">
  </form>
</div>
</div>
</body></html>`

const twoFactorPageHTML = `<html><body><div id="content"><h2>Two-factor authentication</h2><p>Approve the sign-in on your device.</p></div></body></html>`

const projectsPageHTML = `<html><body class="controller-projects action-index">
<div id="top-menu"><a class="user active" href="/users/7">alice</a></div>
<div id="content">
  <h2>Projects</h2>
  <div id="projects-index">
    <ul class="projects root">
      <li class="root"><div class="root"><a class="project root leaf" href="/projects/demo">Demo</a></div></li>
      <li class="root"><div class="root"><a class="project root leaf" href="/projects/ops">Operations</a></div></li>
    </ul>
  </div>
</div>
</body></html>`

const logoutConfirmHTML = `<html><body>
<div id="content">
  <form action="/logout" method="post"><input type="submit" value="Sign out"></form>
</div>
</body></html>`

const notFoundPageHTML = `<html><body><div id="content"><h2>404</h2><p id="errorExplanation">The page you were trying to access doesn't exist or has been removed.</p></div></body></html>`

const membersPageHTML = `<html><body class="project-demo">
<div id="top-menu"><a class="user active" href="/users/7">alice</a></div>
<div id="content">
  <div id="tab-content-members">
    <table class="list members">
      <thead><tr><th>User / Group</th><th>Roles</th></tr></thead>
      <tbody>
        <tr><td class="name user"><a href="/users/7">Alice Smith</a></td><td class="roles"><span>Manager</span></td></tr>
        <tr><td class="name user"><a href="/users/9">Bob Jones</a></td><td class="roles"><span>Developer</span></td></tr>
      </tbody>
    </table>
  </div>
</div>
</body></html>`

// newIssueFormHTML renders the creation form with the given tracker selected.
// The Feature tracker (2) additionally requires a due date.
func newIssueFormHTML(trackerID string) string {
	selected := func(id string) string {
		if id == trackerID {
			return ` selected="selected"`
		}
		return ""
	}
	dueRequired := ""
	if trackerID == "2" {
		dueRequired = `<span class="required"> *</span>`
	}
	return `<html><body class="project-demo controller-issues action-new">
<div id="content">
<form id="issue-form" action="/projects/demo/issues" method="post">
  <input type="hidden" name="authenticity_token" value="abc">
  <p><label for="issue_tracker_id">Tracker<span class="required"> *</span></label>
    <select id="issue_tracker_id" name="issue[tracker_id]">
      <option value="1"` + selected("1") + `>Bug</option>
      <option value="2"` + selected("2") + `>Feature</option>
    </select></p>
  <p><label for="issue_subject">Subject<span class="required"> *</span></label>
    <input id="issue_subject" name="issue[subject]" type="text"></p>
  <p><label for="issue_description">Description</label>
    <textarea id="issue_description" name="issue[description]"></textarea></p>
  <p><label for="issue_status_id">Status</label>
    <select id="issue_status_id" name="issue[status_id]"><option value="1">New</option></select></p>
  <p><label for="issue_assigned_to_id">Assignee</label>
    <select id="issue_assigned_to_id" name="issue[assigned_to_id]">
      <option value=""></option>
      <option value="7">&lt;&lt; me &gt;&gt;</option>
      <option value="9">Bob Jones</option>
    </select></p>
  <p><label for="issue_due_date">Due date` + dueRequired + `</label>
    <input id="issue_due_date" name="issue[due_date]" type="date"></p>
  <p><label for="issue_estimated_hours">Estimated time</label>
    <input id="issue_estimated_hours" name="issue[estimated_hours]" type="number" disabled></p>
  <p><label for="issue_custom_field_values_5">Customer</label>
    <input id="issue_custom_field_values_5" name="issue[custom_field_values][5]" type="text"></p>
  <input type="submit" name="commit" value="Create">
</form>
</div>
</body></html>`
}

const editIssueFormHTML = `<html><body class="project-demo controller-issues action-edit">
<div id="content">
<form id="issue-form" action="/issues/42" method="post">
  <p><label for="issue_tracker_id">Tracker<span class="required"> *</span></label>
    <select id="issue_tracker_id" name="issue[tracker_id]"><option value="1" selected="selected">Bug</option></select></p>
  <p><label for="issue_subject">Subject<span class="required"> *</span></label>
    <input id="issue_subject" name="issue[subject]" type="text" value="Login page crashes"></p>
  <p><label for="issue_status_id">Status<span class="required"> *</span></label>
    <select id="issue_status_id" name="issue[status_id]">
      <option value="1" selected="selected">New</option>
      <option value="2">In Progress</option>
      <option value="3">Resolved</option>
    </select></p>
  <p><label for="issue_notes">Notes</label>
    <textarea id="issue_notes" name="issue[notes]"></textarea></p>
  <input type="submit" name="commit" value="Submit">
</form>
</div>
</body></html>`

const issueDetailPageHTML = `<html><body class="project-demo controller-issues action-show">
<div id="content">
  <h2>Bug #42</h2>
  <div class="issue details">
    <div class="subject"><div><h3>Login page crashes</h3></div></div>
    <div class="attributes">
      <div class="status attribute"><div class="label">Status:</div><div class="value">New</div></div>
    </div>
  </div>
</div>
</body></html>`

const createdIssuePageHTML = `<html><body class="project-demo controller-issues action-show">
<div id="flash_notice" class="flash notice">Issue #43 created.</div>
<div id="content"><h2>Feature #43</h2><div class="subject"><div><h3>Export to CSV</h3></div></div></div>
</body></html>`

const rejectedFormHTML = `<html><body class="project-demo">
<div id="content">
  <div id="errorExplanation"><ul><li>Subject cannot be blank</li></ul></div>
  <form id="issue-form"><input id="issue_subject" name="issue[subject]"></form>
</div>
</body></html>`

const issueIndexHTML = `<html><body class="project-demo"><div id="content"><h2>Issues</h2><p class="nodata">No data to display</p></div></body></html>`

// issueListPageHTML renders one page of a paginated issue listing holding
// issues total..1 in descending order.
func issueListPageHTML(total, page, perPage int) string {
	var rows strings.Builder
	first := total - (page-1)*perPage
	last := max(first-perPage+1, 1)
	for id := first; id >= last; id-- {
		fmt.Fprintf(&rows, `<tr id="issue-%d" class="issue"><td class="id"><a href="/issues/%d">%d</a></td>`+
			`<td class="tracker">Bug</td><td class="status">New</td>`+
			`<td class="subject"><a href="/issues/%d">Issue number %d</a></td></tr>`, id, id, id, id, id)
	}

	next := ""
	if last > 1 {
		next = fmt.Sprintf(`<li class="next page"><a href="/projects/demo/issues?page=%d">Next »</a></li>`, page+1)
	}
	return fmt.Sprintf(`<html><body class="project-demo"><div id="content">
<table class="list issues"><tbody>%s</tbody></table>
<span class="pagination"><ul>%s</ul><span class="items">(%d-%d/%d)</span></span>
</div></body></html>`, rows.String(), next, (page-1)*perPage+1, (page-1)*perPage+(first-last+1), total)
}
