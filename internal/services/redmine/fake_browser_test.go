package redmine

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/PuerkitoBio/goquery"

	"github.com/ternarybob/redmine-mcp/internal/models"
)

// fakePage is what the browser shows after a navigation or click
type fakePage struct {
	location string
	html     string
}

// fakeBrowser is a scripted interfaces.Browser. Unknown URLs render a 404 page.
type fakeBrowser struct {
	mu sync.Mutex

	pages     map[string]fakePage
	onClick   map[string]fakePage
	locations []string // consumed by Location before the current page's location
	failSet   map[string]error

	onLocation func()
	startErr   error
	switchErr  error

	current  fakePage
	running  bool
	headless bool

	navigations []string
	actions     []string
}

func newFakeBrowser() *fakeBrowser {
	return &fakeBrowser{
		pages:   map[string]fakePage{},
		onClick: map[string]fakePage{},
		failSet: map[string]error{},
	}
}

func (b *fakeBrowser) page(url, html string) {
	b.pages[url] = fakePage{location: url, html: html}
}

func (b *fakeBrowser) redirect(url, location, html string) {
	b.pages[url] = fakePage{location: location, html: html}
}

func (b *fakeBrowser) Start(ctx context.Context, headless bool) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.startErr != nil {
		return b.startErr
	}
	if !b.running {
		b.running = true
		b.headless = headless
	}
	return nil
}

func (b *fakeBrowser) Navigate(ctx context.Context, url string) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.navigate(url)
}

func (b *fakeBrowser) navigate(url string) (string, error) {
	if !b.running {
		return "", models.ErrBrowserClosed
	}
	b.navigations = append(b.navigations, url)
	page, ok := b.pages[url]
	if !ok {
		page = fakePage{location: url, html: notFoundPageHTML}
	}
	b.current = page
	return page.location, nil
}

func (b *fakeBrowser) Location(ctx context.Context) (string, error) {
	if b.onLocation != nil {
		b.onLocation()
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.running {
		return "", models.ErrBrowserClosed
	}
	if len(b.locations) > 0 {
		location := b.locations[0]
		b.locations = b.locations[1:]
		return location, nil
	}
	return b.current.location, nil
}

func (b *fakeBrowser) HTML(ctx context.Context) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.running {
		return "", models.ErrBrowserClosed
	}
	return b.current.html, nil
}

func (b *fakeBrowser) find(selector string) (*goquery.Selection, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(b.current.html))
	if err != nil {
		return nil, err
	}
	return doc.Find(selector), nil
}

func (b *fakeBrowser) Exists(ctx context.Context, selector string) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.running {
		return false, models.ErrBrowserClosed
	}
	sel, err := b.find(selector)
	if err != nil {
		return false, err
	}
	return sel.Length() > 0, nil
}

func (b *fakeBrowser) act(selector, action string) error {
	if !b.running {
		return models.ErrBrowserClosed
	}
	if err := b.failSet[selector]; err != nil {
		return err
	}
	b.actions = append(b.actions, action)
	return nil
}

func (b *fakeBrowser) SetText(ctx context.Context, selector, value string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.act(selector, fmt.Sprintf("set %s=%s", selector, value))
}

func (b *fakeBrowser) SelectValue(ctx context.Context, selector, value string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	sel, err := b.find(selector + ` option[value="` + value + `"]`)
	if err != nil {
		return err
	}
	if sel.Length() == 0 {
		return fmt.Errorf("no option %s", value)
	}
	return b.act(selector, fmt.Sprintf("select %s=%s", selector, value))
}

func (b *fakeBrowser) SetChecked(ctx context.Context, selector string, checked bool) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.act(selector, fmt.Sprintf("check %s=%t", selector, checked))
}

func (b *fakeBrowser) Click(ctx context.Context, selector string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.act(selector, "click "+selector); err != nil {
		return err
	}
	if next, ok := b.onClick[selector]; ok {
		b.current = next
	}
	return nil
}

func (b *fakeBrowser) SwitchToHeadless(ctx context.Context, reloadURL string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.switchErr != nil {
		b.running = false
		return b.switchErr
	}
	b.headless = true
	_, err := b.navigate(reloadURL)
	return err
}

func (b *fakeBrowser) Headless() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.headless
}

func (b *fakeBrowser) Running() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.running
}

func (b *fakeBrowser) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.running = false
	return nil
}

func (b *fakeBrowser) Navigations() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.navigations...)
}

func (b *fakeBrowser) Actions() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.actions...)
}

func (b *fakeBrowser) resetHistory() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.navigations = nil
	b.actions = nil
}

// fakeJournal is an in-memory interfaces.SubmissionStorage
type fakeJournal struct {
	mu          sync.Mutex
	submissions []models.Submission
}

func (j *fakeJournal) Record(ctx context.Context, submission *models.Submission) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	submission.ID = fmt.Sprintf("sub-%d", len(j.submissions)+1)
	j.submissions = append(j.submissions, *submission)
	return nil
}

func (j *fakeJournal) Get(ctx context.Context, id string) (*models.Submission, error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	for i := range j.submissions {
		if j.submissions[i].ID == id {
			s := j.submissions[i]
			return &s, nil
		}
	}
	return nil, fmt.Errorf("not found")
}

func (j *fakeJournal) ListRecent(ctx context.Context, issueID string, limit int) ([]models.Submission, error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	var out []models.Submission
	for i := len(j.submissions) - 1; i >= 0; i-- {
		if issueID == "" || j.submissions[i].IssueID == issueID {
			out = append(out, j.submissions[i])
		}
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (j *fakeJournal) Close() error { return nil }
