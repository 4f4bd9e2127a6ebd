package pages

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/ternarybob/redmine-mcp/internal/models"
)

var issueLinkPattern = regexp.MustCompile(`/issues/(\d+)/?(?:[?#].*)?$`)

// Cell texts that are never an issue subject
var subjectDenylist = map[string]bool{
	"new": true, "open": true, "closed": true, "resolved": true, "in progress": true,
	"low": true, "normal": true, "high": true, "urgent": true, "immediate": true,
	"bug": true, "feature": true, "task": true, "support": true,
}

// Cell classes of listing columns that never hold the subject
var nonSubjectColumns = []string{"checkbox", "id", "project", "tracker", "status", "priority", "assigned_to", "author", "updated_on", "created_on"}

func trivialSubject(text, id string) bool {
	return text == "" || strings.HasPrefix(text, "#") || text == id
}

func deniedSubject(text string) bool {
	lower := strings.ToLower(text)
	return subjectDenylist[lower] || strings.HasSuffix(lower, "-project")
}

func placeholderSubject(id string) string {
	return "Issue #" + id
}

// IssueStrategies: the issue list table, then an anchor scan.
func (e *Extractor) IssueStrategies() []Strategy[models.IssueRecord] {
	return []Strategy[models.IssueRecord]{
		{Name: "table", Extract: e.issuesFromTable},
		{Name: "links", Extract: e.issuesFromLinks},
	}
}

// Issues extracts the issue listing
func (e *Extractor) Issues(doc *goquery.Document) []models.IssueRecord {
	return Run(e.logger, "issues", doc, e.IssueStrategies(), func(i models.IssueRecord) string { return i.ID })
}

func (e *Extractor) issuesFromTable(doc *goquery.Document) []models.IssueRecord {
	var issues []models.IssueRecord
	doc.Find("#content table.list.issues tr").Each(func(_ int, row *goquery.Selection) {
		cells := row.ChildrenFiltered("td")
		if cells.Length() == 0 {
			return
		}

		// Primary link: first issue link scanning cells left to right
		var link *goquery.Selection
		var id, href string
		linkCell := -1
		cells.EachWithBreak(func(i int, cell *goquery.Selection) bool {
			cell.Find(`a[href*="/issues/"]`).EachWithBreak(func(_ int, a *goquery.Selection) bool {
				h, _ := a.Attr("href")
				if m := matchID(issueHrefPattern, h); m != "" {
					link, id, href = a, m, h
					return false
				}
				return true
			})
			if link != nil {
				linkCell = i
				return false
			}
			return true
		})
		if link == nil {
			return
		}

		issue := models.IssueRecord{ID: id, URL: e.absURL(href)}
		issue.Subject = tableSubject(row, cells, linkCell, link, id)
		attributeColumns(&issue, cells, linkCell)
		issues = append(issues, issue)
	})
	return issues
}

func tableSubject(row, cells *goquery.Selection, linkCell int, link *goquery.Selection, id string) string {
	if text := cleanText(link.Text()); !trivialSubject(text, id) {
		return text
	}

	acceptable := func(text string) bool {
		return !trivialSubject(text, id) && !deniedSubject(text)
	}

	// Same-cell sibling links
	subject := ""
	cells.Eq(linkCell).Find("a").EachWithBreak(func(_ int, a *goquery.Selection) bool {
		if a.IsSelection(link) {
			return true
		}
		if text := cleanText(a.Text()); acceptable(text) {
			subject = text
			return false
		}
		return true
	})
	if subject != "" {
		return subject
	}

	// Following cells
	for j := linkCell + 1; j < cells.Length() && j <= linkCell+5; j++ {
		cell := cells.Eq(j)
		if hasAnyClass(cell, nonSubjectColumns) {
			continue
		}
		text := cleanText(cell.Text())
		if len(text) <= 3 || deniedSubject(text) {
			continue
		}
		cell.Find("a").EachWithBreak(func(_ int, a *goquery.Selection) bool {
			if t := cleanText(a.Text()); acceptable(t) {
				subject = t
				return false
			}
			return true
		})
		if subject != "" {
			return subject
		}
		// The first following cell is often the project column
		if j > linkCell+1 {
			return text
		}
	}

	// Other row links to the same issue
	first := cleanText(link.Text())
	row.Find(`a[href*="/issues/"]`).EachWithBreak(func(_ int, a *goquery.Selection) bool {
		h, _ := a.Attr("href")
		text := cleanText(a.Text())
		if matchID(issueHrefPattern, h) == id && text != first && acceptable(text) {
			subject = text
			return false
		}
		return true
	})
	if subject != "" {
		return subject
	}

	if text := cleanText(row.ChildrenFiltered("td.subject").Text()); text != "" {
		return text
	}
	return placeholderSubject(id)
}

func hasAnyClass(sel *goquery.Selection, classes []string) bool {
	for _, c := range classes {
		if sel.HasClass(c) {
			return true
		}
	}
	return false
}

// attributeColumns fills tracker/status/priority from cell classes, falling back
// to the requested column order (tracker, status, priority after the id cell)
// for unclassed cells.
func attributeColumns(issue *models.IssueRecord, cells *goquery.Selection, linkCell int) {
	cells.Each(func(_ int, cell *goquery.Selection) {
		text := cleanText(cell.Text())
		if text == "" {
			return
		}
		switch {
		case cell.HasClass("tracker") && issue.Tracker == "":
			issue.Tracker = text
		case cell.HasClass("status") && issue.Status == "":
			issue.Status = text
		case cell.HasClass("priority") && issue.Priority == "":
			issue.Priority = text
		case cell.HasClass("assigned_to") && issue.AssignedTo == "":
			issue.AssignedTo = text
		case cell.HasClass("updated_on") && issue.UpdatedOn == "":
			issue.UpdatedOn = text
		}
	})

	positional := []*string{&issue.Tracker, &issue.Status, &issue.Priority}
	for offset, target := range positional {
		cell := cells.Eq(linkCell + 1 + offset)
		if *target != "" || cell.Length() == 0 {
			continue
		}
		if class, ok := cell.Attr("class"); ok && strings.TrimSpace(class) != "" {
			continue
		}
		*target = cleanText(cell.Text())
	}
}

func (e *Extractor) issuesFromLinks(doc *goquery.Document) []models.IssueRecord {
	var issues []models.IssueRecord
	index := map[string]int{}
	doc.Find(`a[href*="/issues/"]`).Each(func(_ int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		id := matchID(issueLinkPattern, href)
		if id == "" {
			return
		}
		text := cleanText(a.Text())
		if trivialSubject(text, id) {
			title, _ := a.Attr("title")
			text = cleanText(title)
		}

		if i, ok := index[id]; ok {
			if issues[i].Subject == placeholderSubject(id) && !trivialSubject(text, id) {
				issues[i].Subject = text
			}
			return
		}
		if trivialSubject(text, id) {
			text = placeholderSubject(id)
		}
		index[id] = len(issues)
		issues = append(issues, models.IssueRecord{ID: id, Subject: text, URL: e.absURL(href)})
	})
	return issues
}
