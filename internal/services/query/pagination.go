package query

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var (
	totalCountPattern  = regexp.MustCompile(`\(?\d+-\d+/(\d+)\)?`)
	countTextPattern   = regexp.MustCompile(`(?i)(\d+)\s*(?:issues?|件|個|results?)`)
	strictPagerPattern = regexp.MustCompile(`\(\d+-\d+/(\d+)\)`)
)

// HasNextPage reports whether the listing offers an enabled next-page link.
func HasNextPage(doc *goquery.Document) bool {
	for _, selector := range []string{"#content > span > ul > li.next.page", ".pagination li.next"} {
		found := false
		doc.Find(selector).EachWithBreak(func(_ int, li *goquery.Selection) bool {
			if li.HasClass("disabled") {
				return true
			}
			if href, ok := li.Find("a").Attr("href"); ok && strings.TrimSpace(href) != "" {
				found = true
				return false
			}
			return true
		})
		if found {
			return true
		}
	}
	return false
}

// TotalCount reads the listing total. It tries the "(start-end/total)" pager
// text, then count labels such as "101 issues" or "101件", then the first
// pager-shaped text anywhere in the page. ok is false when nothing matched.
func TotalCount(doc *goquery.Document) (total int, ok bool) {
	if total, ok = firstMatch(doc.Find(".pagination, .paginator, .page-info, .items-info, .items"), totalCountPattern); ok {
		return total, ok
	}
	if total, ok = firstMatch(doc.Find(".count, .total-count, .issue-count, .results-info"), countTextPattern); ok {
		return total, ok
	}
	return firstMatch(doc.Selection, strictPagerPattern)
}

func firstMatch(sel *goquery.Selection, pattern *regexp.Regexp) (total int, ok bool) {
	sel.EachWithBreak(func(_ int, s *goquery.Selection) bool {
		m := pattern.FindStringSubmatch(s.Text())
		if m == nil {
			return true
		}
		n, err := strconv.Atoi(m[len(m)-1])
		if err != nil {
			return true
		}
		total, ok = n, true
		return false
	})
	return total, ok
}
