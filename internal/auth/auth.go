// Package auth is the client-side gateway to the identity service. It
// holds the active session and notifies subscribers when it changes.
package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"

	"github.com/timelyapp/timely/internal/model"
)

// ErrInvalidCredentials is returned when the identity service rejects the
// supplied email/password pair.
var ErrInvalidCredentials = errors.New("auth: invalid credentials")

// Session is the signed-in identity. A nil session means signed out.
type Session struct {
	UserID      string
	Email       string
	DisplayName string
}

// Service talks to the identity endpoints and owns the session.
type Service struct {
	rc  *resty.Client
	log zerolog.Logger

	mu        sync.Mutex
	session   *Session
	observers []func(*Session)
}

// NewService builds a Service against the identity base URL.
func NewService(baseURL string, timeout time.Duration, log zerolog.Logger) *Service {
	rc := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetTimeout(timeout).
		SetHeader("Content-Type", "application/json")
	return &Service{
		rc:  rc,
		log: log.With().Str("component", "auth").Logger(),
	}
}

type sessionResponse struct {
	UserID    string `json:"userId"`
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

func (r sessionResponse) toSession() *Session {
	name := strings.TrimSpace(r.FirstName + " " + r.LastName)
	if name == "" {
		name, _, _ = strings.Cut(r.Email, "@")
	}
	return &Session{UserID: r.UserID, Email: r.Email, DisplayName: name}
}

// SignIn exchanges email/password for a session.
func (s *Service) SignIn(ctx context.Context, email, password string) error {
	if err := model.ValidateEmail(email); err != nil {
		return err
	}
	var out sessionResponse
	resp, err := s.rc.R().
		SetContext(ctx).
		SetBody(map[string]string{"email": email, "password": password}).
		SetResult(&out).
		Post("/api/auth/signin")
	if err != nil {
		return &model.NetworkError{Op: "signin", Err: err}
	}
	if err := checkAuthStatus("signin", resp); err != nil {
		return err
	}
	s.setSession(out.toSession())
	return nil
}

// SignUp registers a new account. First and last name become the display
// name of the stored profile.
func (s *Service) SignUp(ctx context.Context, email, password, firstName, lastName string) error {
	if err := model.ValidateEmail(email); err != nil {
		return err
	}
	if password == "" {
		return fmt.Errorf("%w: password required", model.ErrValidation)
	}
	var out sessionResponse
	resp, err := s.rc.R().
		SetContext(ctx).
		SetBody(map[string]string{
			"email":     email,
			"password":  password,
			"firstName": firstName,
			"lastName":  lastName,
		}).
		SetResult(&out).
		Post("/api/auth/signup")
	if err != nil {
		return &model.NetworkError{Op: "signup", Err: err}
	}
	if err := checkAuthStatus("signup", resp); err != nil {
		return err
	}
	s.setSession(out.toSession())
	return nil
}

// SendPasswordReset asks the identity service to mail a reset link.
func (s *Service) SendPasswordReset(ctx context.Context, email string) error {
	if err := model.ValidateEmail(email); err != nil {
		return err
	}
	resp, err := s.rc.R().
		SetContext(ctx).
		SetBody(map[string]string{"email": email}).
		Post("/api/auth/reset")
	if err != nil {
		return &model.NetworkError{Op: "reset", Err: err}
	}
	return checkAuthStatus("reset", resp)
}

// SignOut clears the session.
func (s *Service) SignOut() {
	s.setSession(nil)
}

// CurrentUserID returns the signed-in user id, or "".
func (s *Service) CurrentUserID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.session == nil {
		return ""
	}
	return s.session.UserID
}

// CurrentEmail returns the signed-in email, or "".
func (s *Service) CurrentEmail() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.session == nil {
		return ""
	}
	return s.session.Email
}

// Session returns a copy of the current session, or nil when signed out.
func (s *Service) Session() *Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.session == nil {
		return nil
	}
	cp := *s.session
	return &cp
}

// Subscribe registers fn to run on every session change. Callbacks run
// outside the lock; a nil argument means signed out.
func (s *Service) Subscribe(fn func(*Session)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.observers = append(s.observers, fn)
}

func (s *Service) setSession(sess *Session) {
	s.mu.Lock()
	s.session = sess
	obs := append([](func(*Session))(nil), s.observers...)
	s.mu.Unlock()

	if sess == nil {
		s.log.Info().Msg("signed out")
	} else {
		s.log.Info().Str("user_id", sess.UserID).Msg("session established")
	}
	for _, fn := range obs {
		var cp *Session
		if sess != nil {
			c := *sess
			cp = &c
		}
		fn(cp)
	}
}

func checkAuthStatus(op string, resp *resty.Response) error {
	switch {
	case resp.IsSuccess():
		return nil
	case resp.StatusCode() == http.StatusUnauthorized || resp.StatusCode() == http.StatusForbidden:
		return ErrInvalidCredentials
	default:
		return &model.PersistenceError{Op: op, StatusCode: resp.StatusCode(), Err: errors.New(strings.TrimSpace(string(resp.Body())))}
	}
}
