// Package browsertest provides an in-memory browser.Session for tests.
package browsertest

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/nao1215/trendscan/internal/browser"
	"github.com/nao1215/trendscan/internal/model"
)

// ErrNavigation is the default error of a failing navigation.
var ErrNavigation = errors.New("navigation failed")

// Session is a scripted browser.Session. Selectors listed in Present are
// found immediately; any other wait times out with browser.ErrStageTimeout.
type Session struct {
	mu sync.Mutex

	EndpointValue model.ProxyEndpoint

	// Present lists the selectors that WaitPresent finds.
	Present map[string]bool
	// TextsBySelector is returned by Texts.
	TextsBySelector map[string][]string
	// FailNavigation makes Navigate fail for the listed URLs.
	FailNavigation map[string]bool
	// TextsErr is returned by Texts when set.
	TextsErr error
	// CloseErr is returned by Close.
	CloseErr error
	// PanicOnClose makes Close panic.
	PanicOnClose bool
	// PNG is returned by Screenshot.
	PNG []byte

	// Recorded calls.
	Navigations []string
	Waits       []string
	Typed       map[string]string
	CloseCalls  int
}

// NewSession creates a Session bound to endpoint with the given selectors present.
func NewSession(endpoint model.ProxyEndpoint, present ...string) *Session {
	s := &Session{
		EndpointValue:   endpoint,
		Present:         make(map[string]bool),
		TextsBySelector: make(map[string][]string),
		FailNavigation:  make(map[string]bool),
		Typed:           make(map[string]string),
		PNG:             []byte("\x89PNG\r\n\x1a\n"),
	}
	for _, sel := range present {
		s.Present[sel] = true
	}
	return s
}

// Navigate implements browser.Session.
func (s *Session) Navigate(ctx context.Context, url string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Navigations = append(s.Navigations, url)
	if s.FailNavigation[url] {
		return fmt.Errorf("%w: %s", ErrNavigation, url)
	}
	return nil
}

// WaitPresent implements browser.Session.
func (s *Session) WaitPresent(ctx context.Context, selector string, timeout time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Waits = append(s.Waits, selector)
	if s.Present[selector] {
		return nil
	}
	return fmt.Errorf("%w: %s not present after %s", browser.ErrStageTimeout, selector, timeout)
}

// SendKeys implements browser.Session.
func (s *Session) SendKeys(ctx context.Context, selector, keys string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Typed[selector] += keys
	return nil
}

// Texts implements browser.Session.
func (s *Session) Texts(ctx context.Context, selector string, limit int) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.TextsErr != nil {
		return nil, s.TextsErr
	}
	texts := s.TextsBySelector[selector]
	if limit > 0 && len(texts) > limit {
		texts = texts[:limit]
	}
	return append([]string(nil), texts...), nil
}

// Screenshot implements browser.Session.
func (s *Session) Screenshot(context.Context) ([]byte, error) {
	return s.PNG, nil
}

// Endpoint implements browser.Session.
func (s *Session) Endpoint() model.ProxyEndpoint {
	return s.EndpointValue
}

// Close implements browser.Session.
func (s *Session) Close() error {
	s.mu.Lock()
	s.CloseCalls++
	panicNow := s.PanicOnClose
	err := s.CloseErr
	s.mu.Unlock()
	if panicNow {
		panic("close exploded")
	}
	return err
}

// Closed reports whether Close was called at least once.
func (s *Session) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.CloseCalls > 0
}

// Launcher hands out scripted sessions per endpoint and records launches.
type Launcher struct {
	mu sync.Mutex

	// Sessions maps endpoint "host:port" to the session to return.
	Sessions map[string]*Session
	// Errs maps endpoint "host:port" to a launch error.
	Errs map[string]error
	// Launched lists the endpoints in launch order.
	Launched []model.ProxyEndpoint
}

// NewLauncher creates an empty Launcher.
func NewLauncher() *Launcher {
	return &Launcher{
		Sessions: make(map[string]*Session),
		Errs:     make(map[string]error),
	}
}

// Launch implements browser.Launcher.
func (l *Launcher) Launch(ctx context.Context, endpoint model.ProxyEndpoint) (browser.Session, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Launched = append(l.Launched, endpoint)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err, ok := l.Errs[endpoint.String()]; ok {
		return nil, err
	}
	if s, ok := l.Sessions[endpoint.String()]; ok {
		return s, nil
	}
	return nil, fmt.Errorf("%w: no scripted session for %s", browser.ErrSessionLaunch, endpoint)
}

// LaunchedEndpoints returns the endpoints launched so far as "host:port" strings.
func (l *Launcher) LaunchedEndpoints() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]string, len(l.Launched))
	for i, ep := range l.Launched {
		out[i] = ep.String()
	}
	return out
}
