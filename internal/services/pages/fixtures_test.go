package pages

const projectsBoardHTML = `<html><body>
<div id="top-menu"><a class="user active" href="/users/7">alice</a></div>
<div id="content">
  <h2>Projects</h2>
  <div id="projects-index">
    <ul class="projects root">
      <li class="root"><div class="root">
        <a class="project root leaf" href="/projects/demo">Demo</a>
        <div class="wiki description"><p>Demo project for tests</p></div>
      </div></li>
      <li class="root"><div class="root">
        <a class="project root leaf" href="/projects/ops">Operations</a>
      </div></li>
      <li class="root"><div class="root">
        <a class="project root leaf" href="/projects/demo">Demo (again)</a>
      </div></li>
    </ul>
  </div>
  <p><a href="/projects/new">New project</a></p>
</div>
</body></html>`

const issueListHTML = `<html><body>
<div id="content">
  <table class="list issues">
    <thead><tr><th></th><th>#</th><th>Tracker</th><th>Status</th><th>Priority</th><th>Subject</th><th>Assignee</th><th>Updated</th></tr></thead>
    <tbody>
      <tr id="issue-42" class="issue">
        <td class="checkbox"><input type="checkbox" name="ids[]" value="42"></td>
        <td class="id"><a href="/issues/42">42</a></td>
        <td class="tracker">Bug</td>
        <td class="status">New</td>
        <td class="priority">High</td>
        <td class="subject"><a href="/issues/42">Login page crashes</a></td>
        <td class="assigned_to"><a href="/users/7">alice</a></td>
        <td class="updated_on">2025-01-02 10:00</td>
      </tr>
      <tr id="issue-41" class="issue">
        <td></td>
        <td><a href="/issues/41">41</a></td>
        <td>Feature</td>
        <td>Open</td>
        <td>Normal</td>
        <td>Export to CSV</td>
        <td></td>
        <td>2025-01-01 09:00</td>
      </tr>
      <tr class="group"><td colspan="8">Group header</td></tr>
      <tr id="issue-42-dup" class="issue">
        <td class="id"><a href="/issues/42">42</a></td>
        <td class="subject"><a href="/issues/42">Duplicate row</a></td>
      </tr>
    </tbody>
  </table>
  <span class="pagination"><ul><li class="current">1</li></ul><span class="items">(1-2/2)</span></span>
</div>
</body></html>`

const issueLinksHTML = `<html><body>
<div id="content">
  <ul>
    <li><a href="/issues/7">#7</a> <a href="/issues/7" title="Wrong timezone">Wrong timezone</a></li>
    <li><a href="/issues/8">Broken link</a></li>
    <li><a href="/issues/new">New issue</a></li>
    <li><a href="/issues/9/edit">Edit</a></li>
  </ul>
</div>
</body></html>`

const membersHTML = `<html><body>
<div id="top-menu"><a class="user active" href="/users/7">alice</a></div>
<div id="content">
  <div id="tab-content-members">
    <table class="list members">
      <thead><tr><th>User / Group</th><th>Roles</th><th></th></tr></thead>
      <tbody>
        <tr id="member-1"><td class="name user"><a href="/users/7">Alice Smith</a></td><td class="roles"><span>Manager, Developer</span></td><td class="buttons">Edit</td></tr>
        <tr id="member-2"><td class="name user"><a href="/users/9">Bob Jones</a></td><td class="roles"><span>Reporter</span></td><td class="buttons"></td></tr>
        <tr id="member-3"><td class="name group"><a href="/groups/3">Team</a></td><td class="roles">Developer</td><td></td></tr>
      </tbody>
    </table>
  </div>
</div>
</body></html>`

const timeEntriesHTML = `<html><body>
<div id="content">
  <table class="list time-entries">
    <thead><tr><th></th><th>Date</th><th>User</th><th>Activity</th><th>Issue</th><th>Comment</th><th>Hours</th></tr></thead>
    <tbody>
      <tr id="time-entry-11" class="time-entry">
        <td class="checkbox"><input type="checkbox"></td>
        <td class="spent_on">2025-01-03</td>
        <td class="user"><a href="/users/7">alice</a></td>
        <td class="activity">Development</td>
        <td class="issue"><a href="/issues/42">Bug #42</a>: Login page crashes</td>
        <td class="comments">Investigated</td>
        <td class="hours">1.50</td>
      </tr>
    </tbody>
  </table>
</div>
</body></html>`

const timeEntriesPositionalHTML = `<html><body>
<div id="content">
  <table class="list">
    <tr><th></th><th>Date</th></tr>
    <tr><td></td><td>2025-01-04</td><td>bob</td><td>Design</td><td>Task #5: Draft</td><td>Sketches</td><td>2.00</td></tr>
  </table>
</div>
</body></html>`

const issueDetailHTML = `<html><body>
<div id="content">
  <h2>Bug #42</h2>
  <div class="issue tracker-1 status-1 priority-2 details">
    <div class="subject"><div><h3>Login page crashes</h3></div></div>
    <p class="author">Added by <a class="user" href="/users/7">alice</a> 2 days ago.<br>Updated 1 day ago.</p>
    <div class="attributes">
      <div class="status attribute"><div class="label">Status:</div><div class="value">New</div></div>
      <div class="priority attribute"><div class="label">Priority:</div><div class="value">High</div></div>
      <div class="assigned-to attribute"><div class="label">Assignee:</div><div class="value"><a href="/users/9">Bob Jones</a></div></div>
      <div class="due-date attribute"><div class="label">Due date:</div><div class="value">2025-02-01<br><span class="overdue">(5 days late)</span></div></div>
      <div class="progress attribute"><div class="label">% Done:</div><div class="value"><table class="progress"><tr><td></td></tr></table><p class="percent">50%</p></div></div>
      <div class="cf_5 attribute"><div class="label">Customer:</div><div class="value">ACME</div></div>
      <div class="cf_6 attribute"><div class="label">ステータス:</div><div class="value">custom-but-japanese-label</div></div>
      <div class="attribute"><div class="label">開始日:</div><div class="value">2025-01-10</div></div>
      <div class="attribute"><div class="label">Severity:</div><div class="value">Major</div></div>
      <div class="attribute"><div class="label">Total spent time:</div><div class="value">3.00 h</div></div>
    </div>
    <div class="description">
      <div class="wiki"><p>Steps to <strong>reproduce</strong>:</p><ul><li>open /login</li></ul></div>
    </div>
  </div>
  <div id="history">
    <div id="change-100" class="journal has-notes">
      <h4><a class="user" href="/users/9">Bob Jones</a></h4>
      <ul class="details"><li><strong>Status</strong> changed from <i>New</i> to <i>In Progress</i></li></ul>
      <div id="journal-100-notes" class="wiki"><p>Looking into it.</p></div>
    </div>
  </div>
</div>
</body></html>`

const issueFormHTML = `<html><body>
<div id="quick-search"><input type="text" id="q" name="q"></div>
<div id="content">
<form id="issue-form" action="/projects/demo/issues" method="post">
  <input type="hidden" name="utf8" value="✓">
  <input type="hidden" name="authenticity_token" value="abc">
  <div id="all_attributes">
    <p><label for="issue_tracker_id">Tracker<span class="required"> *</span></label>
      <select id="issue_tracker_id" name="issue[tracker_id]">
        <option value="1" selected="selected">Bug</option>
        <option value="2">Feature</option>
      </select></p>
    <p><label for="issue_subject">Subject<span class="required"> *</span></label>
      <input id="issue_subject" name="issue[subject]" type="text"></p>
    <p><label for="issue_description">Description</label>
      <textarea id="issue_description" name="issue[description]"></textarea></p>
    <p><label for="issue_status_id">Status<span class="required"> *</span></label>
      <select id="issue_status_id" name="issue[status_id]">
        <option value="1">New</option>
        <option value="2">In Progress</option>
      </select></p>
    <p><label for="issue_assigned_to_id">Assignee</label>
      <select id="issue_assigned_to_id" name="issue[assigned_to_id]">
        <option value=""></option>
        <option value="7">&lt;&lt; me &gt;&gt;</option>
        <option value="9">Bob Jones</option>
      </select></p>
    <p class="required"><label>Due date</label>
      <input id="issue_due_date" name="issue[due_date]" type="date"></p>
    <p><label for="issue_estimated_hours">Estimated time</label>
      <input id="issue_estimated_hours" name="issue[estimated_hours]" type="number" disabled></p>
    <p class="cf_5"><label for="issue_custom_field_values_5">Customer</label>
      <input id="issue_custom_field_values_5" name="issue[custom_field_values][5]" type="text" required></p>
    <p><label for="issue_custom_field_values_8">Billable</label>
      <input type="hidden" name="issue[custom_field_values][8]" value="0">
      <input id="issue_custom_field_values_8" name="issue[custom_field_values][8]" type="checkbox" value="1"></p>
    <p><input id="issue_is_private" name="issue[is_private]" type="checkbox" value="1"></p>
    <p><input id="issue_subject" name="issue[subject_dup]" type="text"></p>
  </div>
  <input type="file" name="attachments[dummy][file]">
  <input type="submit" name="commit" value="Create">
</form>
</div>
</body></html>`

const notFoundHTML = `<html><body><div id="content"><h2>404</h2><p id="errorExplanation">The page you were trying to access doesn't exist or has been removed.</p></div></body></html>`

const rejectedHTML = `<html><body><div id="content"><div id="errorExplanation"><ul><li>Subject cannot be blank</li><li>Due date is not a valid date</li></ul></div><form id="issue-form"></form></div></body></html>`
