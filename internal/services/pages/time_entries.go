package pages

import (
	"regexp"

	"github.com/PuerkitoBio/goquery"

	"github.com/ternarybob/redmine-mcp/internal/models"
)

var timeEntryRowPattern = regexp.MustCompile(`time-entry-(\d+)`)

// TimeEntryStrategies: cells identified by class, then the default column positions.
func (e *Extractor) TimeEntryStrategies() []Strategy[models.TimeEntryRecord] {
	return []Strategy[models.TimeEntryRecord]{
		{Name: "classes", Extract: timeEntriesByClass},
		{Name: "positional", Extract: timeEntriesByPosition},
	}
}

// TimeEntries extracts the time entry listing
func (e *Extractor) TimeEntries(doc *goquery.Document) []models.TimeEntryRecord {
	return Run(e.logger, "time_entries", doc, e.TimeEntryStrategies(), func(t models.TimeEntryRecord) string { return t.ID })
}

func timeEntryRows(doc *goquery.Document) *goquery.Selection {
	return doc.Find("#content table.list tr").FilterFunction(func(_ int, row *goquery.Selection) bool {
		return row.ChildrenFiltered("td").Length() > 0
	})
}

func timeEntryID(row *goquery.Selection) string {
	id, _ := row.Attr("id")
	return matchID(timeEntryRowPattern, id)
}

func fillIssue(entry *models.TimeEntryRecord, cell *goquery.Selection) {
	entry.Issue = cleanText(cell.Text())
	entry.IssueID = matchID(hashIDPattern, entry.Issue)
	if entry.IssueID == "" {
		href, _ := cell.Find(`a[href*="/issues/"]`).First().Attr("href")
		entry.IssueID = matchID(issueHrefPattern, href)
	}
}

func timeEntriesByClass(doc *goquery.Document) []models.TimeEntryRecord {
	var entries []models.TimeEntryRecord
	timeEntryRows(doc).Each(func(_ int, row *goquery.Selection) {
		spentOn := row.ChildrenFiltered("td.spent_on")
		hours := row.ChildrenFiltered("td.hours")
		if spentOn.Length() == 0 && hours.Length() == 0 {
			return
		}

		entry := models.TimeEntryRecord{
			ID:       timeEntryID(row),
			SpentOn:  cleanText(spentOn.Text()),
			Activity: cleanText(row.ChildrenFiltered("td.activity").Text()),
			Comments: cleanText(row.ChildrenFiltered("td.comments").Text()),
			Hours:    cleanText(hours.Text()),
		}
		user := row.ChildrenFiltered("td.user")
		entry.User = cleanText(user.Text())
		href, _ := user.Find("a").First().Attr("href")
		entry.UserID = matchID(userHrefPattern, href)

		if issue := row.ChildrenFiltered("td.issue"); issue.Length() > 0 {
			fillIssue(&entry, issue)
		}
		entries = append(entries, entry)
	})
	return entries
}

// Default layout: checkbox, date, user, activity, issue, comments, hours
func timeEntriesByPosition(doc *goquery.Document) []models.TimeEntryRecord {
	var entries []models.TimeEntryRecord
	timeEntryRows(doc).Each(func(_ int, row *goquery.Selection) {
		cells := row.ChildrenFiltered("td")
		if cells.Length() < 7 {
			return
		}
		entry := models.TimeEntryRecord{
			ID:       timeEntryID(row),
			SpentOn:  cleanText(cells.Eq(1).Text()),
			User:     cleanText(cells.Eq(2).Text()),
			Activity: cleanText(cells.Eq(3).Text()),
			Comments: cleanText(cells.Eq(5).Text()),
			Hours:    cleanText(cells.Eq(6).Text()),
		}
		href, _ := cells.Eq(2).Find("a").First().Attr("href")
		entry.UserID = matchID(userHrefPattern, href)
		fillIssue(&entry, cells.Eq(4))
		entries = append(entries, entry)
	})
	return entries
}
