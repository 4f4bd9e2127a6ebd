package browser

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
	"github.com/ternarybob/arbor"
	"golang.org/x/time/rate"

	"github.com/ternarybob/redmine-mcp/internal/models"
)

// Options configures the controlled browser
type Options struct {
	UserAgent             string
	DisableGPU            bool
	NoSandbox             bool
	ExecPath              string
	RequestTimeout        time.Duration
	MinNavigationInterval time.Duration
	Retry                 *RetryPolicy
}

// Controller drives one chrome instance through chromedp. Operations are
// serialized; Close may be called concurrently and aborts the running one.
type Controller struct {
	opts    Options
	logger  arbor.ILogger
	limiter *rate.Limiter

	opMu sync.Mutex

	mu            sync.RWMutex
	browserCtx    context.Context
	browserCancel context.CancelFunc
	allocCancel   context.CancelFunc
	headless      bool
	running       bool
}

// NewController creates a controller. The browser is not started until Start.
func NewController(opts Options, logger arbor.ILogger) *Controller {
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = 30 * time.Second
	}
	if opts.Retry == nil {
		opts.Retry = NewRetryPolicy(0, time.Second)
	}

	limit := rate.Inf
	if opts.MinNavigationInterval > 0 {
		limit = rate.Every(opts.MinNavigationInterval)
	}

	return &Controller{
		opts:    opts,
		logger:  logger,
		limiter: rate.NewLimiter(limit, 1),
	}
}

// Start launches chrome. Calling Start on a running browser is a no-op.
func (c *Controller) Start(ctx context.Context, headless bool) error {
	c.opMu.Lock()
	defer c.opMu.Unlock()

	if c.Running() {
		return nil
	}
	return c.launch(ctx, headless)
}

func (c *Controller) launch(ctx context.Context, headless bool) error {
	startTime := time.Now()

	allocatorOpts := append(
		chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", headless),
		chromedp.Flag("disable-gpu", c.opts.DisableGPU),
		chromedp.Flag("no-sandbox", c.opts.NoSandbox),
		chromedp.Flag("disable-dev-shm-usage", true),
	)
	if c.opts.UserAgent != "" {
		allocatorOpts = append(allocatorOpts, chromedp.UserAgent(c.opts.UserAgent))
	}
	if c.opts.ExecPath != "" {
		allocatorOpts = append(allocatorOpts, chromedp.ExecPath(c.opts.ExecPath))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), allocatorOpts...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx)

	// The first Run allocates chrome and ties the process to the context it
	// gets, so it must be the long-lived browser context
	if err := chromedp.Run(browserCtx); err != nil {
		browserCancel()
		allocCancel()
		return fmt.Errorf("failed to start browser: %w", err)
	}

	// Startup test
	testCtx, testCancel := context.WithTimeout(browserCtx, c.opts.RequestTimeout)
	defer testCancel()
	stop := context.AfterFunc(ctx, testCancel)
	defer stop()

	if err := chromedp.Run(testCtx, chromedp.Navigate("about:blank")); err != nil {
		browserCancel()
		allocCancel()
		return fmt.Errorf("browser failed startup test: %w", err)
	}

	c.mu.Lock()
	c.browserCtx = browserCtx
	c.browserCancel = browserCancel
	c.allocCancel = allocCancel
	c.headless = headless
	c.running = true
	c.mu.Unlock()

	c.logger.Info().
		Bool("headless", headless).
		Dur("startup_time", time.Since(startTime)).
		Msg("Browser started")

	return nil
}

// run executes actions against the live browser under the request timeout.
// A browser that went away while running is reported as ErrBrowserClosed.
func (c *Controller) run(ctx context.Context, actions ...chromedp.Action) error {
	c.mu.RLock()
	browserCtx, running := c.browserCtx, c.running
	c.mu.RUnlock()

	if !running || browserCtx.Err() != nil {
		return models.ErrBrowserClosed
	}

	runCtx, cancel := context.WithTimeout(browserCtx, c.opts.RequestTimeout)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	err := chromedp.Run(runCtx, actions...)
	if err == nil {
		return nil
	}
	if browserCtx.Err() != nil {
		c.markClosed()
		return models.ErrBrowserClosed
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}
	return err
}

func (c *Controller) markClosed() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.running = false
}

// Navigate loads url, retrying transient failures, and returns the final location
func (c *Controller) Navigate(ctx context.Context, url string) (string, error) {
	c.opMu.Lock()
	defer c.opMu.Unlock()
	return c.navigate(ctx, url)
}

func (c *Controller) navigate(ctx context.Context, url string) (string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", err
	}

	var location string
	err := c.opts.Retry.Execute(ctx, c.logger, "navigate", func(ctx context.Context) error {
		err := c.run(ctx, chromedp.Navigate(url), chromedp.Location(&location))
		if err != nil && strings.Contains(err.Error(), "net::ERR_") {
			return models.NewEngineError(models.KindTransientRequestFailure, err, "failed to load %s", url)
		}
		return err
	})
	if err != nil {
		return "", err
	}

	c.logger.Debug().Str("url", url).Str("location", location).Msg("Navigated")
	return location, nil
}

func (c *Controller) Location(ctx context.Context) (string, error) {
	c.opMu.Lock()
	defer c.opMu.Unlock()

	var location string
	if err := c.run(ctx, chromedp.Location(&location)); err != nil {
		return "", err
	}
	return location, nil
}

func (c *Controller) HTML(ctx context.Context) (string, error) {
	c.opMu.Lock()
	defer c.opMu.Unlock()

	var html string
	if err := c.run(ctx, chromedp.OuterHTML("html", &html, chromedp.ByQuery)); err != nil {
		return "", err
	}
	return html, nil
}

func (c *Controller) Exists(ctx context.Context, selector string) (bool, error) {
	c.opMu.Lock()
	defer c.opMu.Unlock()

	var found bool
	script := fmt.Sprintf(`document.querySelector(%s) !== null`, jsString(selector))
	if err := c.run(ctx, chromedp.Evaluate(script, &found)); err != nil {
		return false, err
	}
	return found, nil
}

// Element scripts report "ok", "missing" or an error text.
const (
	setTextScript = `(function(sel, value) {
	const el = document.querySelector(sel);
	if (!el) return "missing";
	el.focus();
	el.value = value;
	el.dispatchEvent(new Event("input", {bubbles: true}));
	el.dispatchEvent(new Event("change", {bubbles: true}));
	return "ok";
})(%s, %s)`

	selectScript = `(function(sel, value) {
	const el = document.querySelector(sel);
	if (!el) return "missing";
	if (!Array.from(el.options || []).some(o => o.value === value)) return "no option " + value;
	el.value = value;
	el.dispatchEvent(new Event("change", {bubbles: true}));
	return "ok";
})(%s, %s)`

	checkScript = `(function(sel, checked) {
	const el = document.querySelector(sel);
	if (!el) return "missing";
	if (el.checked !== checked) el.click();
	return "ok";
})(%s, %t)`

	clickScript = `(function(sel) {
	const el = document.querySelector(sel);
	if (!el) return "missing";
	el.click();
	return "ok";
})(%s)`
)

func (c *Controller) evalElement(ctx context.Context, selector, script string) error {
	c.opMu.Lock()
	defer c.opMu.Unlock()

	var result string
	if err := c.run(ctx, chromedp.Evaluate(script, &result)); err != nil {
		return err
	}
	switch result {
	case "ok":
		return nil
	case "missing":
		return fmt.Errorf("element not found: %s", selector)
	default:
		return fmt.Errorf("%s: %s", selector, result)
	}
}

func (c *Controller) SetText(ctx context.Context, selector, value string) error {
	return c.evalElement(ctx, selector, fmt.Sprintf(setTextScript, jsString(selector), jsString(value)))
}

func (c *Controller) SelectValue(ctx context.Context, selector, value string) error {
	return c.evalElement(ctx, selector, fmt.Sprintf(selectScript, jsString(selector), jsString(value)))
}

func (c *Controller) SetChecked(ctx context.Context, selector string, checked bool) error {
	return c.evalElement(ctx, selector, fmt.Sprintf(checkScript, jsString(selector), checked))
}

func (c *Controller) Click(ctx context.Context, selector string) error {
	return c.evalElement(ctx, selector, fmt.Sprintf(clickScript, jsString(selector)))
}

// SwitchToHeadless copies the cookies of the visible browser into a fresh
// headless one and reloads reloadURL there. The visible browser is closed
// either way; on failure the new one is released too.
func (c *Controller) SwitchToHeadless(ctx context.Context, reloadURL string) error {
	c.opMu.Lock()
	defer c.opMu.Unlock()

	var cookies []*network.Cookie
	err := c.run(ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		var err error
		cookies, err = network.GetCookies().Do(ctx)
		return err
	}))
	if err != nil {
		c.shutdown()
		return fmt.Errorf("failed to read session cookies: %w", err)
	}

	c.shutdown()

	if err := c.launch(ctx, true); err != nil {
		return fmt.Errorf("failed to start headless browser: %w", err)
	}

	params := cookieParams(cookies)
	err = c.run(ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		return network.SetCookies(params).Do(ctx)
	}))
	if err != nil {
		c.shutdown()
		return fmt.Errorf("failed to restore session cookies: %w", err)
	}

	if _, err := c.navigate(ctx, reloadURL); err != nil {
		c.shutdown()
		return fmt.Errorf("failed to reload %s in headless browser: %w", reloadURL, err)
	}

	c.logger.Info().Int("cookies", len(params)).Msg("Session moved to headless browser")
	return nil
}

func cookieParams(cookies []*network.Cookie) []*network.CookieParam {
	params := make([]*network.CookieParam, 0, len(cookies))
	for _, ck := range cookies {
		p := &network.CookieParam{
			Name:     ck.Name,
			Value:    ck.Value,
			Domain:   ck.Domain,
			Path:     ck.Path,
			Secure:   ck.Secure,
			HTTPOnly: ck.HTTPOnly,
			SameSite: ck.SameSite,
		}
		if !ck.Session && ck.Expires > 0 {
			expires := cdp.TimeSinceEpoch(time.Unix(int64(ck.Expires), 0))
			p.Expires = &expires
		}
		params = append(params, p)
	}
	return params
}

func (c *Controller) Headless() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.headless
}

func (c *Controller) Running() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.running && c.browserCtx != nil && c.browserCtx.Err() == nil
}

// Close releases the browser. It does not wait for in-flight operations,
// which observe the cancellation and return ErrBrowserClosed.
func (c *Controller) Close() error {
	c.shutdown()
	return nil
}

func (c *Controller) shutdown() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.browserCancel != nil {
		c.browserCancel()
	}
	if c.allocCancel != nil {
		c.allocCancel()
	}
	if c.running {
		c.logger.Debug().Msg("Browser closed")
	}
	c.browserCancel = nil
	c.allocCancel = nil
	c.running = false
}

// jsString quotes s as a JavaScript string literal
func jsString(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}

// IDSelector matches an element by id. Redmine ids such as
// issue_custom_field_values_5 are valid here even when they would need
// escaping after '#'.
func IDSelector(id string) string {
	return `[id="` + strings.NewReplacer(`\`, `\\`, `"`, `\"`).Replace(id) + `"]`
}
