package redmine

import (
	"sync"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/redmine-mcp/internal/common"
	"github.com/ternarybob/redmine-mcp/internal/interfaces"
	"github.com/ternarybob/redmine-mcp/internal/models"
	"github.com/ternarybob/redmine-mcp/internal/services/pages"
)

// State is the authentication state of the session
type State string

const (
	StateUnauthenticated  State = "UNAUTHENTICATED"
	StateAuthenticating   State = "AUTHENTICATING"
	StateTwoFactorPending State = "TWO_FACTOR_PENDING"
	StateAuthenticated    State = "AUTHENTICATED"
)

// Service is the engine facade: one authenticated identity driving one browser.
// Operations are strictly sequential; mu is held for the duration of each one.
type Service struct {
	config    *common.Config
	browser   interfaces.Browser
	journal   interfaces.SubmissionStorage
	extractor *pages.Extractor
	logger    arbor.ILogger

	mu sync.Mutex

	stateMu sync.RWMutex
	state   State
	session *models.Session
}

// NewService creates the engine. journal may be nil, in which case submissions
// are not recorded.
func NewService(config *common.Config, browser interfaces.Browser, journal interfaces.SubmissionStorage, logger arbor.ILogger) *Service {
	return &Service{
		config:    config,
		browser:   browser,
		journal:   journal,
		extractor: pages.NewExtractor(config.Redmine.BaseURL, logger),
		logger:    logger,
		state:     StateUnauthenticated,
	}
}

// State returns the current authentication state
func (s *Service) State() State {
	s.stateMu.RLock()
	defer s.stateMu.RUnlock()
	return s.state
}

// Session returns a copy of the current session, nil when not authenticated
func (s *Service) Session() *models.Session {
	s.stateMu.RLock()
	defer s.stateMu.RUnlock()
	if s.session == nil {
		return nil
	}
	session := *s.session
	return &session
}

func (s *Service) setState(state State) {
	s.stateMu.Lock()
	old := s.state
	s.state = state
	if state != StateAuthenticated {
		s.session = nil
	}
	s.stateMu.Unlock()

	if old != state {
		s.logger.Info().
			Str("old_state", string(old)).
			Str("new_state", string(state)).
			Msg("Session state changed")
	}
}

func (s *Service) startSession(session *models.Session) {
	s.stateMu.Lock()
	s.session = session
	s.state = StateAuthenticated
	s.stateMu.Unlock()

	s.logger.Info().
		Str("session_id", session.ID).
		Str("current_user_id", session.CurrentUserID).
		Bool("headless", session.Headless).
		Msg("Session authenticated")
}

func (s *Service) touch() {
	s.stateMu.Lock()
	defer s.stateMu.Unlock()
	if s.session != nil {
		s.session.LastActivity = time.Now()
	}
}

func (s *Service) currentUserID() string {
	s.stateMu.RLock()
	defer s.stateMu.RUnlock()
	if s.session == nil {
		return ""
	}
	return s.session.CurrentUserID
}

func (s *Service) sessionID() string {
	s.stateMu.RLock()
	defer s.stateMu.RUnlock()
	if s.session == nil {
		return ""
	}
	return s.session.ID
}

// requireSession guards every operation that talks to Redmine
func (s *Service) requireSession() error {
	if s.State() != StateAuthenticated {
		return models.ErrNotAuthenticated
	}
	if !s.browser.Running() {
		s.setState(StateUnauthenticated)
		return models.ErrBrowserClosed
	}
	return nil
}

// expire resets the session after a login redirect
func (s *Service) expire() error {
	s.logger.Warn().Msg("Redirected to login page - session expired")
	s.setState(StateUnauthenticated)
	return models.ErrSessionExpired
}
