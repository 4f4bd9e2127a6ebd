package redmine

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ternarybob/redmine-mcp/internal/common"
	"github.com/ternarybob/redmine-mcp/internal/models"
	"github.com/ternarybob/redmine-mcp/internal/services/pages"
)

const (
	usernameSelector    = "#username"
	passwordSelector    = "#password"
	loginSubmitSelector = "#login-submit"
)

// Login authenticates the session. With configured credentials the login form
// is filled and submitted; otherwise a human completes it in the visible browser
// (including second-factor approval) within the login timeout.
func (s *Service) Login(ctx context.Context) *models.LoginResponse {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.State() == StateAuthenticated && s.browser.Running() {
		session := s.Session()
		return &models.LoginResponse{
			Result:        models.Result{Success: true, Message: "Already authenticated"},
			RedirectURL:   s.config.ProjectsURL(),
			CurrentUserID: session.CurrentUserID,
			Headless:      session.Headless,
		}
	}

	response := &models.LoginResponse{}
	session, err := s.login(ctx)
	if err != nil {
		s.setState(StateUnauthenticated)
		s.logger.Warn().Err(err).Msg("Login failed")
		response.Fail(err)
		return response
	}

	s.startSession(session)
	response.Success = true
	response.Message = "Login successful"
	response.RedirectURL = s.config.ProjectsURL()
	response.CurrentUserID = session.CurrentUserID
	response.Headless = session.Headless
	return response
}

func (s *Service) login(ctx context.Context) (*models.Session, error) {
	s.setState(StateAuthenticating)

	headless := !s.config.Browser.InteractiveLogin
	if err := s.browser.Start(ctx, headless); err != nil {
		return nil, models.NewEngineError(models.KindNotAuthenticated, err, "failed to start browser")
	}

	loginURL := s.config.LoginURL()
	s.logger.Info().Str("url", loginURL).Bool("headless", headless).Msg("Opening login page")
	if _, err := s.browser.Navigate(ctx, loginURL); err != nil {
		return nil, s.browserError(err, "failed to load login page")
	}

	if s.config.Redmine.Username != "" {
		if err := s.submitCredentials(ctx); err != nil {
			return nil, err
		}
	} else {
		s.logger.Info().
			Dur("timeout", s.config.LoginTimeout()).
			Msg("No credentials configured - waiting for login in the browser window")
	}

	if err := s.waitForLanding(ctx); err != nil {
		return nil, err
	}

	doc, err := s.currentPage(ctx)
	if err != nil {
		return nil, err
	}
	userID := pages.CurrentUserID(doc)
	if userID == "" {
		s.logger.Warn().Msg("Could not read current user id from page")
	}

	if s.config.Browser.SwitchToHeadless && !s.browser.Headless() {
		if err := s.switchToHeadless(ctx); err != nil {
			return nil, err
		}
	}

	return &models.Session{
		ID:            uuid.New().String(),
		Authenticated: true,
		Headless:      s.browser.Headless(),
		LastActivity:  time.Now(),
		CurrentUserID: userID,
	}, nil
}

// submitCredentials fills the login form. A form that is not rendered (SSO
// pages, an existing session) is left to the landing poll.
func (s *Service) submitCredentials(ctx context.Context) error {
	found, err := s.browser.Exists(ctx, usernameSelector)
	if err != nil {
		return s.browserError(err, "failed to inspect login page")
	}
	if !found {
		s.logger.Warn().Msg("Login form not found - waiting for login in the browser window")
		return nil
	}

	steps := []struct {
		name string
		run  func() error
	}{
		{"username", func() error { return s.browser.SetText(ctx, usernameSelector, s.config.Redmine.Username) }},
		{"password", func() error { return s.browser.SetText(ctx, passwordSelector, s.config.Redmine.Password) }},
		{"submit", func() error { return s.browser.Click(ctx, loginSubmitSelector) }},
	}
	for _, step := range steps {
		if err := step.run(); err != nil {
			return s.browserError(err, "failed to fill login form (%s)", step.name)
		}
	}

	s.logger.Debug().Str("username", s.config.Redmine.Username).Msg("Credentials submitted")
	return nil
}

// waitForLanding polls the browser location until it reaches the projects page.
// A second-factor page moves the state to TWO_FACTOR_PENDING while waiting.
func (s *Service) waitForLanding(ctx context.Context) error {
	landing := s.config.ProjectsURL()
	timeout := s.config.LoginTimeout()

	err := common.PollUntil(ctx, timeout, s.config.PollInterval(), func(ctx context.Context) (bool, error) {
		location, err := s.browser.Location(ctx)
		if err != nil {
			return false, err
		}
		if strings.Contains(strings.ToLower(location), "twofa") && s.State() != StateTwoFactorPending {
			s.setState(StateTwoFactorPending)
		}
		return sameLocation(location, landing), nil
	})

	switch {
	case err == nil:
		return nil
	case errors.Is(err, common.ErrPollTimeout):
		return models.NewEngineError(models.KindAuthenticationTimeout, nil,
			"authentication timeout: login was not completed within %s", timeout)
	default:
		return s.browserError(err, "failed while waiting for login")
	}
}

// switchToHeadless moves the session cookies into a headless browser. Any
// failure leaves the session unauthenticated with the browser released.
func (s *Service) switchToHeadless(ctx context.Context) error {
	landing := s.config.ProjectsURL()
	if err := s.browser.SwitchToHeadless(ctx, landing); err != nil {
		_ = s.browser.Close()
		return models.NewEngineError(models.KindNotAuthenticated, err, "failed to move session to headless browser")
	}

	location, err := s.browser.Location(ctx)
	if err != nil {
		_ = s.browser.Close()
		return models.NewEngineError(models.KindNotAuthenticated, err, "failed to verify headless session")
	}
	if s.isLoginLocation(location) {
		_ = s.browser.Close()
		return models.NewEngineError(models.KindNotAuthenticated, nil, "session cookies were not accepted by the headless browser")
	}

	s.logger.Info().Str("location", location).Msg("Switched to headless browser")
	return nil
}

// Logout navigates to the logout endpoint when the browser is free, then
// releases the browser and resets the session regardless of the outcome.
func (s *Service) Logout(ctx context.Context) *models.GeneralResponse {
	if s.mu.TryLock() {
		s.logoutPage(ctx)
		s.mu.Unlock()
	} else {
		s.logger.Warn().Msg("Another operation is in progress - skipping logout navigation")
	}

	if err := s.browser.Close(); err != nil {
		s.logger.Warn().Err(err).Msg("Failed to close browser")
	}
	s.setState(StateUnauthenticated)

	return &models.GeneralResponse{Result: models.Result{Success: true, Message: "Logged out"}}
}

func (s *Service) logoutPage(ctx context.Context) {
	if !s.browser.Running() {
		return
	}

	ctx, cancel := context.WithTimeout(ctx, s.config.RequestTimeout())
	defer cancel()

	if _, err := s.browser.Navigate(ctx, s.config.LogoutURL()); err != nil {
		s.logger.Warn().Err(err).Msg("Logout navigation failed")
		return
	}

	// Recent Redmine versions confirm logout with a POST form
	confirm := `#content form[action$="/logout"] [type="submit"]`
	if found, err := s.browser.Exists(ctx, confirm); err == nil && found {
		if err := s.browser.Click(ctx, confirm); err != nil {
			s.logger.Warn().Err(err).Msg("Logout confirmation failed")
		}
	}
}

// ServerInfo reports configuration and session state. It never touches the browser.
func (s *Service) ServerInfo() *models.ServerInfoResponse {
	response := &models.ServerInfoResponse{
		Result:         models.Result{Success: true, Message: "Server information"},
		BaseURL:        s.config.Redmine.BaseURL,
		LoginURL:       s.config.LoginURL(),
		ProjectsURL:    s.config.ProjectsURL(),
		State:          string(s.State()),
		Headless:       s.browser.Headless(),
		SessionTimeout: s.config.SessionTimeout().String(),
		RequestTimeout: s.config.RequestTimeout().String(),
		LoginTimeout:   s.config.LoginTimeout().String(),
		Version:        common.GetVersion(),
	}

	if session := s.Session(); session != nil {
		response.Authenticated = true
		response.SessionID = session.ID
		response.CurrentUserID = session.CurrentUserID
		response.IdleSeconds = int64(time.Since(session.LastActivity).Seconds())
		if idle := time.Since(session.LastActivity); idle > s.config.SessionTimeout() {
			response.Message = fmt.Sprintf("Session idle for %s, longer than the configured session timeout", idle.Round(time.Second))
		}
	}
	return response
}
