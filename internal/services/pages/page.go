package pages

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var bodyProjectClassPattern = regexp.MustCompile(`(?:^|\s)project-(\S+)`)

// CurrentUserID reads the logged-in user's id from the account menu link
func CurrentUserID(doc *goquery.Document) string {
	id := ""
	doc.Find("a.user.active").EachWithBreak(func(_ int, a *goquery.Selection) bool {
		href, _ := a.Attr("href")
		id = matchID(userHrefPattern, href)
		return id == ""
	})
	return id
}

// ErrorBanner returns the text of a flash error or validation error block, "" if none
func ErrorBanner(doc *goquery.Document) string {
	banner := doc.Find(".flash.error, #flash_error, #errorExplanation, .errorExplanation").First()
	if banner.Length() == 0 {
		return ""
	}
	return strings.Join(renderLines(banner), "; ")
}

// IsNotFound reports a Redmine 404/403 error page
func IsNotFound(doc *goquery.Document) bool {
	heading := cleanText(doc.Find("#content > h2").First().Text())
	return heading == "404" || heading == "403"
}

// HasLoginForm reports whether the page is the login form
func HasLoginForm(doc *goquery.Document) bool {
	return doc.Find("#login-form, form#login-form, input#login-submit").Length() > 0
}

// ProjectIdentifier returns the project the page belongs to: the body's
// project-<identifier> class, else the selected project of an issue form.
func ProjectIdentifier(doc *goquery.Document) string {
	if class, ok := doc.Find("body").Attr("class"); ok {
		if id := matchID(bodyProjectClassPattern, class); id != "" {
			return id
		}
	}
	return SelectedValue(doc, "issue_project_id")
}

// SelectedValue returns the selected option value of select#id. Browsers
// submit the first option when none is marked selected.
func SelectedValue(doc *goquery.Document, id string) string {
	sel := doc.Find(`select[id="` + id + `"]`).First()
	if sel.Length() == 0 {
		return ""
	}
	option := sel.Find("option[selected]").First()
	if option.Length() == 0 {
		option = sel.Find("option").First()
	}
	if value, ok := option.Attr("value"); ok {
		return value
	}
	return cleanText(option.Text())
}
