package pages

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/ternarybob/redmine-mcp/internal/models"
)

// MemberStrategies: the settings members table, then a user link scan.
func (e *Extractor) MemberStrategies(currentUserID string) []Strategy[models.MemberRecord] {
	return []Strategy[models.MemberRecord]{
		{Name: "table", Extract: func(doc *goquery.Document) []models.MemberRecord {
			return membersFromTable(doc, currentUserID)
		}},
		{Name: "links", Extract: func(doc *goquery.Document) []models.MemberRecord {
			return membersFromLinks(doc, currentUserID)
		}},
	}
}

// Members extracts project members from /projects/{id}/settings/members
func (e *Extractor) Members(doc *goquery.Document) []models.MemberRecord {
	current := CurrentUserID(doc)
	return Run(e.logger, "members", doc, e.MemberStrategies(current), func(m models.MemberRecord) string { return m.ID })
}

func membersFromTable(doc *goquery.Document, currentUserID string) []models.MemberRecord {
	var members []models.MemberRecord
	doc.Find("#tab-content-members > table > tbody > tr").Each(func(_ int, row *goquery.Selection) {
		cells := row.ChildrenFiltered("td")
		if cells.Length() < 2 {
			return
		}
		link := cells.First().Find(`a[href*="/users/"]`).First()
		href, _ := link.Attr("href")
		id := matchID(userHrefPattern, href)
		name := cleanText(link.Text())
		if id == "" || name == "" {
			return
		}

		roles := []string{}
		for _, role := range strings.Split(cleanText(cells.Eq(1).Text()), ",") {
			if role = strings.TrimSpace(role); role != "" {
				roles = append(roles, role)
			}
		}

		member := models.MemberRecord{
			ID:            id,
			Name:          name,
			Roles:         roles,
			IsCurrentUser: currentUserID != "" && id == currentUserID,
		}
		if cells.Length() > 2 {
			member.AdditionalInfo = cleanText(cells.Eq(2).Text())
		}
		members = append(members, member)
	})
	return members
}

func membersFromLinks(doc *goquery.Document, currentUserID string) []models.MemberRecord {
	scope := doc.Find("#content")
	if scope.Length() == 0 {
		scope = doc.Selection
	}

	var members []models.MemberRecord
	scope.Find(`a[href*="/users/"]`).Each(func(_ int, link *goquery.Selection) {
		href, _ := link.Attr("href")
		id := matchID(userHrefPattern, href)
		name := cleanText(link.Text())
		if id == "" || name == "" {
			return
		}
		members = append(members, models.MemberRecord{
			ID:            id,
			Name:          name,
			Roles:         []string{},
			IsCurrentUser: currentUserID != "" && id == currentUserID,
		})
	})
	return members
}
