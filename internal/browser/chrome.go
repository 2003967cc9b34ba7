package browser

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/fetch"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"

	"github.com/nao1215/trendscan/internal/model"
)

// Window size reported to the site.
const (
	windowWidth  = 1920
	windowHeight = 1080
)

// textsScript reads innerText of the matching elements. innerText keeps the
// line breaks of the rendered layout, which the trend parser relies on.
const textsScript = `(() => {
	const nodes = Array.from(document.querySelectorAll(%q));
	const limit = %d;
	return (limit > 0 ? nodes.slice(0, limit) : nodes).map(n => n.innerText || "");
})()`

// ChromeLauncher starts a fresh Chrome per endpoint with chromedp.
type ChromeLauncher struct {
	headless      bool
	execPath      string
	userAgents    []string
	creds         model.Credentials
	launchTimeout time.Duration
	logger        *slog.Logger
	pick          func(n int) int
}

// ChromeOption configures a ChromeLauncher.
type ChromeOption func(*ChromeLauncher)

// WithHeadless toggles headless mode.
func WithHeadless(headless bool) ChromeOption {
	return func(l *ChromeLauncher) {
		l.headless = headless
	}
}

// WithExecPath sets the browser executable.
func WithExecPath(path string) ChromeOption {
	return func(l *ChromeLauncher) {
		l.execPath = path
	}
}

// WithUserAgents sets the pool a user agent is drawn from for every session.
func WithUserAgents(agents []string) ChromeOption {
	return func(l *ChromeLauncher) {
		l.userAgents = append([]string(nil), agents...)
	}
}

// WithProxyAuth sets the credentials answered to proxy auth challenges.
func WithProxyAuth(creds model.Credentials) ChromeOption {
	return func(l *ChromeLauncher) {
		l.creds = creds
	}
}

// WithLaunchTimeout bounds browser start-up.
func WithLaunchTimeout(d time.Duration) ChromeOption {
	return func(l *ChromeLauncher) {
		l.launchTimeout = d
	}
}

// WithLauncherLogger sets the logger for browser diagnostics.
func WithLauncherLogger(logger *slog.Logger) ChromeOption {
	return func(l *ChromeLauncher) {
		l.logger = logger
	}
}

// NewChromeLauncher creates a headless launcher with a 30 second start-up bound.
func NewChromeLauncher(opts ...ChromeOption) *ChromeLauncher {
	l := &ChromeLauncher{
		headless:      true,
		launchTimeout: 30 * time.Second,
		pick:          rand.IntN,
	}
	for _, opt := range opts {
		opt(l)
	}
	if l.logger == nil {
		l.logger = slog.Default()
	}
	return l
}

// userAgent picks one identity for a session; empty means Chrome's own.
func (l *ChromeLauncher) userAgent() string {
	if len(l.userAgents) == 0 {
		return ""
	}
	return l.userAgents[l.pick(len(l.userAgents))]
}

// allocatorOptions builds the launch flags for endpoint.
func (l *ChromeLauncher) allocatorOptions(endpoint model.ProxyEndpoint, ua string) []chromedp.ExecAllocatorOption {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", l.headless),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.Flag("incognito", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disk-cache-size", "0"),
		chromedp.WindowSize(windowWidth, windowHeight),
		chromedp.ProxyServer(endpoint.URL()),
	)
	if ua != "" {
		opts = append(opts, chromedp.UserAgent(ua))
	}
	if l.execPath != "" {
		opts = append(opts, chromedp.ExecPath(l.execPath))
	}
	return opts
}

// Launch starts Chrome routed through endpoint and returns the ready tab.
// The browser lives until the returned Session is closed; ctx only bounds start-up.
func (l *ChromeLauncher) Launch(ctx context.Context, endpoint model.ProxyEndpoint) (Session, error) {
	ua := l.userAgent()
	logger := l.logger.With("endpoint", endpoint.String())

	// The browser must outlive ctx, so it hangs off a detached context.
	allocCtx, allocCancel := chromedp.NewExecAllocator(context.WithoutCancel(ctx), l.allocatorOptions(endpoint, ua)...)
	tabCtx, tabCancel := chromedp.NewContext(allocCtx,
		chromedp.WithLogf(func(format string, args ...any) {
			logger.Debug(fmt.Sprintf(format, args...))
		}),
		chromedp.WithErrorf(func(format string, args ...any) {
			logger.Debug("cdp error: " + fmt.Sprintf(format, args...))
		}),
	)

	s := &chromeSession{
		ctx:      tabCtx,
		endpoint: endpoint,
		cancel: func() {
			tabCancel()
			allocCancel()
		},
	}

	needsAuth := l.creds.Present() && !endpoint.IsSOCKS()
	if needsAuth {
		listenProxyAuth(tabCtx, l.creds, logger)
	}

	setup := []chromedp.Action{
		network.Enable(),
		network.SetCacheDisabled(true),
	}
	if needsAuth {
		setup = append(setup, fetch.Enable().WithHandleAuthRequests(true))
	}

	done := make(chan error, 1)
	go func() {
		done <- chromedp.Run(tabCtx, setup...)
	}()

	timer := time.NewTimer(l.launchTimeout)
	defer timer.Stop()

	select {
	case err := <-done:
		if err != nil {
			s.cancel()
			return nil, fmt.Errorf("%w: %w", ErrSessionLaunch, err)
		}
	case <-timer.C:
		s.cancel()
		return nil, fmt.Errorf("%w: start-up exceeded %s", ErrSessionLaunch, l.launchTimeout)
	case <-ctx.Done():
		s.cancel()
		return nil, fmt.Errorf("%w: %w", ErrSessionLaunch, ctx.Err())
	}

	logger.Debug("browser session ready", "user_agent", ua, "headless", l.headless)
	return s, nil
}

// listenProxyAuth answers Fetch events on the tab: paused requests continue
// unchanged and proxy challenges get the credentials once per request.
func listenProxyAuth(tabCtx context.Context, creds model.Credentials, logger *slog.Logger) {
	var mu sync.Mutex
	answered := make(map[fetch.RequestID]bool)

	chromedp.ListenTarget(tabCtx, func(ev any) {
		switch ev := ev.(type) {
		case *fetch.EventRequestPaused:
			go func() {
				if err := runOnTarget(tabCtx, fetch.ContinueRequest(ev.RequestID)); err != nil {
					logger.Debug("failed to continue request", "error", err)
				}
			}()
		case *fetch.EventAuthRequired:
			resp := &fetch.AuthChallengeResponse{Response: fetch.AuthChallengeResponseResponseDefault}
			if ev.AuthChallenge != nil && ev.AuthChallenge.Source == fetch.AuthChallengeSourceProxy {
				mu.Lock()
				retry := answered[ev.RequestID]
				answered[ev.RequestID] = true
				mu.Unlock()

				if retry {
					// Same request challenged again: the credentials were rejected.
					logger.Warn("proxy rejected credentials", "origin", ev.AuthChallenge.Origin)
					resp.Response = fetch.AuthChallengeResponseResponseCancelAuth
				} else {
					resp.Response = fetch.AuthChallengeResponseResponseProvideCredentials
					resp.Username = creds.Username
					resp.Password = creds.Password
				}
			}
			go func() {
				if err := runOnTarget(tabCtx, fetch.ContinueWithAuth(ev.RequestID, resp)); err != nil {
					logger.Debug("failed to answer auth challenge", "error", err)
				}
			}()
		}
	})
}

// runOnTarget executes a CDP command from inside an event listener, where
// chromedp.Run would deadlock.
func runOnTarget(tabCtx context.Context, action chromedp.Action) error {
	c := chromedp.FromContext(tabCtx)
	if c == nil || c.Target == nil {
		return ErrSessionClosed
	}
	return action.Do(cdp.WithExecutor(tabCtx, c.Target))
}

// chromeSession is a Session backed by a chromedp tab.
type chromeSession struct {
	ctx      context.Context
	cancel   func()
	endpoint model.ProxyEndpoint

	closeOnce sync.Once
	closeErr  error
	closed    bool
	mu        sync.Mutex
}

// scope returns a context bound to the tab that is also cancelled with ctx.
func (s *chromeSession) scope(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc, error) {
	s.mu.Lock()
	closed := s.closed
	s.mu.Unlock()
	if closed {
		return nil, nil, ErrSessionClosed
	}

	var (
		runCtx context.Context
		cancel context.CancelFunc
	)
	if timeout > 0 {
		runCtx, cancel = context.WithTimeout(s.ctx, timeout)
	} else {
		runCtx, cancel = context.WithCancel(s.ctx)
	}
	stop := context.AfterFunc(ctx, cancel)
	return runCtx, func() {
		stop()
		cancel()
	}, nil
}

func (s *chromeSession) Navigate(ctx context.Context, url string) error {
	runCtx, cancel, err := s.scope(ctx, 0)
	if err != nil {
		return err
	}
	defer cancel()

	if err := chromedp.Run(runCtx, chromedp.Navigate(url)); err != nil {
		return fmt.Errorf("failed to navigate to %s: %w", url, err)
	}
	return nil
}

func (s *chromeSession) WaitPresent(ctx context.Context, selector string, timeout time.Duration) error {
	runCtx, cancel, err := s.scope(ctx, timeout)
	if err != nil {
		return err
	}
	defer cancel()

	err = chromedp.Run(runCtx, chromedp.WaitReady(selector, chromedp.ByQuery))
	if err == nil {
		return nil
	}
	if errors.Is(runCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
		return fmt.Errorf("%w: %s not present after %s", ErrStageTimeout, selector, timeout)
	}
	return fmt.Errorf("failed waiting for %s: %w", selector, err)
}

func (s *chromeSession) SendKeys(ctx context.Context, selector, keys string) error {
	runCtx, cancel, err := s.scope(ctx, 0)
	if err != nil {
		return err
	}
	defer cancel()

	if err := chromedp.Run(runCtx, chromedp.SendKeys(selector, keys, chromedp.ByQuery)); err != nil {
		return fmt.Errorf("failed to type into %s: %w", selector, err)
	}
	return nil
}

func (s *chromeSession) Texts(ctx context.Context, selector string, limit int) ([]string, error) {
	runCtx, cancel, err := s.scope(ctx, 0)
	if err != nil {
		return nil, err
	}
	defer cancel()

	var texts []string
	if err := chromedp.Run(runCtx, chromedp.Evaluate(fmt.Sprintf(textsScript, selector, limit), &texts)); err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", selector, err)
	}
	return texts, nil
}

func (s *chromeSession) Screenshot(ctx context.Context) ([]byte, error) {
	runCtx, cancel, err := s.scope(ctx, 0)
	if err != nil {
		return nil, err
	}
	defer cancel()

	var buf []byte
	if err := chromedp.Run(runCtx, chromedp.CaptureScreenshot(&buf)); err != nil {
		return nil, fmt.Errorf("failed to capture screenshot: %w", err)
	}
	return buf, nil
}

func (s *chromeSession) Endpoint() model.ProxyEndpoint {
	return s.endpoint
}

// Close asks Chrome to exit, then cancels the allocator.
func (s *chromeSession) Close() error {
	s.closeOnce.Do(func() {
		s.mu.Lock()
		s.closed = true
		s.mu.Unlock()

		s.closeErr = chromedp.Cancel(s.ctx)
		s.cancel()
		if errors.Is(s.closeErr, context.Canceled) {
			s.closeErr = nil
		}
	})
	return s.closeErr
}
