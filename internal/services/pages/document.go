// Package pages reads Redmine HTML pages into structured records. Every function
// here is a pure function of the parsed document.
package pages

import (
	"net/url"
	"regexp"
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/PuerkitoBio/goquery"
	"github.com/ternarybob/arbor"
)

var (
	issueHrefPattern       = regexp.MustCompile(`/issues/(\d+)`)
	projectHrefPattern     = regexp.MustCompile(`/projects/([^/?#]+)`)
	projectLinkPattern     = regexp.MustCompile(`/projects/[^/?#]+/?$`)
	userHrefPattern        = regexp.MustCompile(`/users/(\d+)`)
	customFieldClass       = regexp.MustCompile(`(?:^|\s)cf_(\d+)(?:\s|$)`)
	customFieldIDPattern   = regexp.MustCompile(`custom_field_values_(\d+)`)
	customFieldNamePattern = regexp.MustCompile(`\[custom_field_values\]\[(\d+)\]`)
	hashIDPattern          = regexp.MustCompile(`#(\d+)`)
	whitespace             = regexp.MustCompile(`\s+`)
)

// Extractor converts rendered pages into records
type Extractor struct {
	baseURL string
	logger  arbor.ILogger
}

// NewExtractor creates an extractor resolving relative links against baseURL
func NewExtractor(baseURL string, logger arbor.ILogger) *Extractor {
	return &Extractor{
		baseURL: strings.TrimRight(baseURL, "/"),
		logger:  logger,
	}
}

// Parse parses rendered HTML
func Parse(html string) (*goquery.Document, error) {
	return goquery.NewDocumentFromReader(strings.NewReader(html))
}

// absURL resolves href against the base URL
func (e *Extractor) absURL(href string) string {
	if href == "" {
		return ""
	}
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	if ref.IsAbs() {
		return href
	}
	base, err := url.Parse(e.baseURL + "/")
	if err != nil {
		return href
	}
	return base.ResolveReference(ref).String()
}

// toMarkdown converts an HTML fragment, returning "" on failure
func (e *Extractor) toMarkdown(html string) string {
	if strings.TrimSpace(html) == "" {
		return ""
	}
	converter := md.NewConverter(e.baseURL, true, nil)
	out, err := converter.ConvertString(html)
	if err != nil {
		e.logger.Debug().Err(err).Msg("Markdown conversion failed")
		return ""
	}
	return strings.TrimSpace(out)
}

// cleanText collapses whitespace the way a browser renders inline text
func cleanText(s string) string {
	return strings.TrimSpace(whitespace.ReplaceAllString(s, " "))
}

var blockElements = map[string]bool{
	"p": true, "div": true, "li": true, "ul": true, "ol": true, "tr": true, "table": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true, "pre": true,
	"blockquote": true, "dd": true, "dt": true,
}

// renderLines renders the selection as visible text lines: <br> and block
// elements break lines, runs of whitespace collapse, empty lines are dropped.
func renderLines(sel *goquery.Selection) []string {
	var b strings.Builder
	var walk func(*goquery.Selection)
	walk = func(s *goquery.Selection) {
		s.Contents().Each(func(_ int, c *goquery.Selection) {
			name := goquery.NodeName(c)
			switch {
			case name == "#text":
				b.WriteString(whitespace.ReplaceAllString(c.Text(), " "))
			case name == "br":
				b.WriteString("\n")
			case name == "script" || name == "style":
			case blockElements[name]:
				b.WriteString("\n")
				walk(c)
				b.WriteString("\n")
			default:
				walk(c)
			}
		})
	}
	walk(sel)

	var lines []string
	for _, line := range strings.Split(b.String(), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

// firstLine is the first visible line of the selection
func firstLine(sel *goquery.Selection) string {
	lines := renderLines(sel)
	if len(lines) == 0 {
		return ""
	}
	return lines[0]
}

// visibleText is the rendered text with lines joined by newlines
func visibleText(sel *goquery.Selection) string {
	return strings.Join(renderLines(sel), "\n")
}

func matchID(pattern *regexp.Regexp, s string) string {
	if m := pattern.FindStringSubmatch(s); m != nil {
		return m[1]
	}
	return ""
}

// customFieldIDFromClass returns N for a cf_N class token on sel
func customFieldIDFromClass(sel *goquery.Selection) string {
	class, _ := sel.Attr("class")
	return matchID(customFieldClass, class)
}
