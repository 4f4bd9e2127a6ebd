package interfaces

import (
	"context"
)

// Browser drives a single browser instance holding the Redmine session cookies.
// Selectors are CSS selectors; element ids are passed as `[id="..."]`.
type Browser interface {
	// Start launches the browser. Calling Start on a running browser is a no-op.
	Start(ctx context.Context, headless bool) error

	// Navigate loads url and returns the final location after redirects
	Navigate(ctx context.Context, url string) (string, error)

	// Location returns the current page URL
	Location(ctx context.Context) (string, error)

	// HTML returns the rendered document
	HTML(ctx context.Context) (string, error)

	// Exists reports whether selector matches an element. Absence is not an error.
	Exists(ctx context.Context, selector string) (bool, error)

	// SetText replaces the element value and fires input and change events
	SetText(ctx context.Context, selector, value string) error

	// SelectValue selects the option with value. Fails when no such option exists.
	SelectValue(ctx context.Context, selector, value string) error

	// SetChecked sets a checkbox or radio, clicking only when the state differs
	SetChecked(ctx context.Context, selector string, checked bool) error

	Click(ctx context.Context, selector string) error

	// SwitchToHeadless moves the session cookies into a new headless instance and
	// reloads reloadURL there. On failure both instances are released.
	SwitchToHeadless(ctx context.Context, reloadURL string) error

	Headless() bool
	Running() bool

	// Close releases the browser. In-flight calls return models.ErrBrowserClosed.
	Close() error
}
