package pages

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/ternarybob/redmine-mcp/internal/models"
)

// ProjectStrategies: projects table, then the board layout, then a link scan.
func (e *Extractor) ProjectStrategies() []Strategy[models.ProjectRecord] {
	return []Strategy[models.ProjectRecord]{
		{Name: "table", Extract: e.projectsFromTable},
		{Name: "board", Extract: e.projectsFromBoard},
		{Name: "links", Extract: e.projectsFromLinks},
	}
}

// Projects extracts the project listing
func (e *Extractor) Projects(doc *goquery.Document) []models.ProjectRecord {
	return Run(e.logger, "projects", doc, e.ProjectStrategies(), func(p models.ProjectRecord) string { return p.ID })
}

func (e *Extractor) projectsFromTable(doc *goquery.Document) []models.ProjectRecord {
	var projects []models.ProjectRecord
	doc.Find("table.projects tr, table.list tr").Each(func(_ int, row *goquery.Selection) {
		cells := row.ChildrenFiltered("td")
		if cells.Length() == 0 {
			return
		}
		link := cells.First().Find("a").First()
		href, _ := link.Attr("href")
		id := matchID(projectHrefPattern, href)
		name := cleanText(link.Text())
		if id == "" || name == "" {
			return
		}
		description := ""
		if cells.Length() > 1 {
			description = cleanText(cells.Eq(1).Text())
		}
		projects = append(projects, models.ProjectRecord{
			ID:          id,
			Name:        name,
			Description: description,
			URL:         e.absURL(href),
		})
	})
	return projects
}

func (e *Extractor) projectsFromBoard(doc *goquery.Document) []models.ProjectRecord {
	var projects []models.ProjectRecord
	doc.Find(".projects a.project").Each(func(_ int, link *goquery.Selection) {
		href, _ := link.Attr("href")
		id := matchID(projectHrefPattern, href)
		name := cleanText(link.Text())
		if id == "" || name == "" {
			return
		}
		projects = append(projects, models.ProjectRecord{
			ID:          id,
			Name:        name,
			Description: visibleText(link.Parent().ChildrenFiltered(".description")),
			URL:         e.absURL(href),
		})
	})
	return projects
}

var projectNavNames = map[string]bool{"projects": true, "new project": true, "settings": true}

func (e *Extractor) projectsFromLinks(doc *goquery.Document) []models.ProjectRecord {
	var projects []models.ProjectRecord
	doc.Find(`a[href*="/projects/"]`).Each(func(_ int, link *goquery.Selection) {
		href, _ := link.Attr("href")
		if !projectLinkPattern.MatchString(href) {
			return
		}
		name := cleanText(link.Text())
		if len(name) <= 1 || projectNavNames[strings.ToLower(name)] {
			return
		}
		id := matchID(projectHrefPattern, href)
		if id == "" || id == "new" {
			return
		}
		projects = append(projects, models.ProjectRecord{ID: id, Name: name, URL: e.absURL(href)})
	})
	return projects
}
