package pages

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/ternarybob/redmine-mcp/internal/models"
)

var (
	trackerHeadingPattern = regexp.MustCompile(`^([^#]+?)\s*#\d+`)
	journalIDPattern      = regexp.MustCompile(`change-(\d+)`)
)

type issueSetter func(issue *models.IssueRecord, value string)

// Standard attribute blocks keyed by their div.attribute class token
var standardClasses = map[string]issueSetter{
	"status":          func(i *models.IssueRecord, v string) { i.Status = v },
	"priority":        func(i *models.IssueRecord, v string) { i.Priority = v },
	"assigned-to":     func(i *models.IssueRecord, v string) { i.AssignedTo = v },
	"category":        func(i *models.IssueRecord, v string) { i.Category = v },
	"fixed-version":   func(i *models.IssueRecord, v string) { i.TargetVersion = v },
	"start-date":      func(i *models.IssueRecord, v string) { i.StartDate = v },
	"due-date":        func(i *models.IssueRecord, v string) { i.DueDate = v },
	"estimated-hours": func(i *models.IssueRecord, v string) { i.EstimatedTime = v },
	"progress":        func(i *models.IssueRecord, v string) { i.Progress = v },
	"spent-time":      func(i *models.IssueRecord, v string) { i.SpentTime = v },
}

// Standard attribute labels in English and Japanese, used when a block has no
// recognizable class token. Labels are lowercased with any trailing colon removed.
var standardLabels = map[string]string{
	"status":         "status",
	"priority":       "priority",
	"assignee":       "assigned-to",
	"assigned to":    "assigned-to",
	"category":       "category",
	"target version": "fixed-version",
	"start date":     "start-date",
	"due date":       "due-date",
	"estimated time": "estimated-hours",
	"% done":         "progress",
	"done ratio":     "progress",
	"progress":       "progress",
	"spent time":     "spent-time",
	"ステータス":          "status",
	"優先度":            "priority",
	"担当者":            "assigned-to",
	"カテゴリ":           "category",
	"対象バージョン":        "fixed-version",
	"開始日":            "start-date",
	"期日":             "due-date",
	"予定工数":           "estimated-hours",
	"進捗率":            "progress",
	"作業時間":           "spent-time",
}

// Labels of derived blocks that are neither standard attributes nor custom fields
var ignoredLabels = map[string]bool{
	"total estimated time": true,
	"total spent time":     true,
	"合計予定工数":               true,
	"合計作業時間":               true,
}

func normalizeLabel(label string) string {
	label = strings.TrimSpace(label)
	label = strings.TrimSuffix(label, ":")
	label = strings.TrimSuffix(label, "：")
	return strings.ToLower(strings.TrimSpace(label))
}

// IssueDetail extracts the issue detail page for issueID
func (e *Extractor) IssueDetail(doc *goquery.Document, issueID string) (*models.IssueRecord, []models.Journal) {
	issue := &models.IssueRecord{
		ID:           issueID,
		URL:          e.baseURL + "/issues/" + issueID,
		Subject:      cleanText(doc.Find(".subject h3").First().Text()),
		CustomFields: map[string]string{},
	}

	if m := trackerHeadingPattern.FindStringSubmatch(cleanText(doc.Find("#content > h2").First().Text())); m != nil {
		issue.Tracker = strings.TrimSpace(m[1])
	}

	doc.Find("div.attribute").Each(func(_ int, block *goquery.Selection) {
		label := cleanText(block.ChildrenFiltered("div.label").Text())
		if label == "" {
			return
		}
		value := firstLine(block.ChildrenFiltered("div.value"))
		e.assignAttribute(issue, block, label, value)
	})

	description := doc.Find(".description .wiki, .issue-description .wiki").First()
	if description.Length() > 0 {
		issue.Description = visibleText(description)
		if html, err := description.Html(); err == nil {
			issue.DescriptionMD = e.toMarkdown(html)
		}
	}

	issue.CreatedOn = firstLine(doc.Find(".created-on, p.author, .author").First())
	issue.UpdatedOn = firstLine(doc.Find(".updated-on").First())

	if len(issue.CustomFields) == 0 {
		issue.CustomFields = nil
	}
	return issue, e.journals(doc)
}

// assignAttribute routes one attribute block: a cf_<id> class is authoritative,
// then a standard class token, then a standard label in either language.
func (e *Extractor) assignAttribute(issue *models.IssueRecord, block *goquery.Selection, label, value string) {
	if id := customFieldIDFromClass(block); id != "" {
		issue.CustomFields["cf_"+id] = value
		return
	}

	for class, set := range standardClasses {
		if block.HasClass(class) {
			set(issue, value)
			return
		}
	}

	normalized := normalizeLabel(label)
	if class, ok := standardLabels[normalized]; ok {
		standardClasses[class](issue, value)
		return
	}
	if ignoredLabels[normalized] || strings.HasPrefix(normalized, "total ") {
		return
	}

	issue.CustomFields[strings.TrimSuffix(strings.TrimSpace(label), ":")] = value
}

func (e *Extractor) journals(doc *goquery.Document) []models.Journal {
	var journals []models.Journal
	doc.Find("#history .journal").Each(func(_ int, j *goquery.Selection) {
		id, _ := j.Attr("id")
		journal := models.Journal{
			ID:     matchID(journalIDPattern, id),
			Author: cleanText(j.Find("h4 a.user, h4 .user").First().Text()),
			Notes:  visibleText(j.Find(".wiki").First()),
		}
		j.Find("ul.details li, ul.journal-details li").Each(func(_ int, li *goquery.Selection) {
			if text := cleanText(li.Text()); text != "" {
				journal.Details = append(journal.Details, text)
			}
		})
		if journal.ID == "" {
			if idAttr, ok := j.Find("[id^=note-]").First().Attr("id"); ok {
				journal.ID = strings.TrimPrefix(idAttr, "note-")
			}
		}
		journals = append(journals, journal)
	})
	return journals
}
