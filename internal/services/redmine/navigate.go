package redmine

import (
	"context"
	"errors"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/ternarybob/redmine-mcp/internal/models"
	"github.com/ternarybob/redmine-mcp/internal/services/pages"
)

// open navigates to target and parses the resulting page. A landing on the
// login path expires the session; a 404/403 page is ResourceNotFound.
func (s *Service) open(ctx context.Context, target string) (*goquery.Document, string, error) {
	location, err := s.browser.Navigate(ctx, target)
	if err != nil {
		return nil, "", s.browserError(err, "failed to load %s", target)
	}
	if s.isLoginLocation(location) {
		return nil, location, s.expire()
	}

	doc, err := s.currentPage(ctx)
	if err != nil {
		return nil, location, err
	}
	if pages.IsNotFound(doc) {
		return nil, location, models.NewEngineError(models.KindResourceNotFound, nil, "resource not found: %s", target)
	}

	s.touch()
	return doc, location, nil
}

// currentPage parses the page the browser is showing
func (s *Service) currentPage(ctx context.Context) (*goquery.Document, error) {
	html, err := s.browser.HTML(ctx)
	if err != nil {
		return nil, s.browserError(err, "failed to read page")
	}
	doc, err := pages.Parse(html)
	if err != nil {
		return nil, models.NewEngineError(models.KindTransientRequestFailure, err, "failed to parse page")
	}
	return doc, nil
}

// browserError classifies a browser failure. A closed browser ends the session.
func (s *Service) browserError(err error, format string, args ...any) error {
	if errors.Is(err, models.ErrBrowserClosed) {
		s.setState(StateUnauthenticated)
		return err
	}
	var engineErr *models.EngineError
	if errors.As(err, &engineErr) {
		return err
	}
	return models.NewEngineError(models.KindTransientRequestFailure, err, format, args...)
}

func (s *Service) isLoginLocation(location string) bool {
	u, err := url.Parse(location)
	if err != nil {
		return false
	}
	return strings.HasSuffix(strings.TrimRight(u.Path, "/"), s.config.LoginPath())
}

// sameLocation compares two URLs ignoring query, fragment and a trailing slash
func sameLocation(a, b string) bool {
	return normalizeLocation(a) == normalizeLocation(b)
}

func normalizeLocation(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return strings.TrimRight(raw, "/")
	}
	u.RawQuery = ""
	u.Fragment = ""
	return strings.TrimRight(u.String(), "/")
}

func (s *Service) projectURL(projectID string) string {
	return s.config.Redmine.BaseURL + "/projects/" + url.PathEscape(projectID)
}

// newIssueURL is the creation form, scoped to the project when one is given
func (s *Service) newIssueURL(projectID, trackerID string) string {
	u := s.config.Redmine.BaseURL + "/issues/new"
	if projectID != "" {
		u = s.projectURL(projectID) + "/issues/new"
	}
	if trackerID != "" {
		u += "?issue[tracker_id]=" + url.QueryEscape(trackerID)
	}
	return u
}

func (s *Service) issueURL(issueID string) string {
	return s.config.Redmine.BaseURL + "/issues/" + url.PathEscape(issueID)
}

func (s *Service) editIssueURL(issueID string) string {
	return s.issueURL(issueID) + "/edit"
}

func (s *Service) membersURL(projectID string) string {
	return s.projectURL(projectID) + "/settings/members"
}
