// Package rod renders pages in headless Chrome using go-rod.
package rod

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/fwojciec/vidmetrics"
	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
)

// Ensure Renderer implements vidmetrics.Renderer at compile time.
var _ vidmetrics.Renderer = (*Renderer)(nil)

// Default timeouts and wait selector.
const (
	DefaultNavigationTimeout = 30 * time.Second
	DefaultElementTimeout    = 30 * time.Second
	DefaultWaitSelector      = "strong"
)

// Renderer renders pages with a fresh headless browser per call. The browser
// process is started when Render begins and killed before it returns.
// Renderer is safe for concurrent use; each call owns its own browser.
type Renderer struct {
	navTimeout     time.Duration
	elementTimeout time.Duration
	waitSelector   string
	maxInflight    int
	quietWindow    time.Duration
	bin            string
	noSandbox      bool

	lastPID atomic.Int64
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithNavigationTimeout bounds navigation plus the network idle wait.
func WithNavigationTimeout(d time.Duration) Option {
	return func(r *Renderer) {
		r.navTimeout = d
	}
}

// WithElementTimeout bounds the wait for the wait selector.
func WithElementTimeout(d time.Duration) Option {
	return func(r *Renderer) {
		r.elementTimeout = d
	}
}

// WithWaitSelector sets the selector that must match at least one element
// before the page is read.
func WithWaitSelector(selector string) Option {
	return func(r *Renderer) {
		r.waitSelector = selector
	}
}

// WithIdlePolicy sets how many in-flight requests still count as idle and
// how long that state must hold.
func WithIdlePolicy(maxInflight int, quietWindow time.Duration) Option {
	return func(r *Renderer) {
		r.maxInflight = maxInflight
		r.quietWindow = quietWindow
	}
}

// WithBrowserBin sets the Chrome/Chromium binary. By default rod looks up a
// local installation or downloads one.
func WithBrowserBin(path string) Option {
	return func(r *Renderer) {
		r.bin = path
	}
}

// WithNoSandbox disables the Chrome sandbox, required when running as root
// in containers.
func WithNoSandbox(noSandbox bool) Option {
	return func(r *Renderer) {
		r.noSandbox = noSandbox
	}
}

// NewRenderer creates a new Renderer. No browser is started until Render.
func NewRenderer(opts ...Option) *Renderer {
	r := &Renderer{
		navTimeout:     DefaultNavigationTimeout,
		elementTimeout: DefaultElementTimeout,
		waitSelector:   DefaultWaitSelector,
		maxInflight:    DefaultMaxInflight,
		quietWindow:    DefaultQuietWindow,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Render navigates to the URL and returns the rendered HTML once the network
// is idle and the wait selector matches.
func (r *Renderer) Render(ctx context.Context, url string) (string, error) {
	// Check context before launching a browser
	if err := ctx.Err(); err != nil {
		return "", err
	}

	s, err := r.open()
	if err != nil {
		return "", err
	}
	defer s.close()

	page, err := s.browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		return "", fmt.Errorf("creating page: %w", err)
	}
	s.page = page

	navCtx, cancel := context.WithTimeout(ctx, r.navTimeout)
	defer cancel()

	// Listen before navigating so the document request is counted.
	tracker := newNetTracker(r.maxInflight, time.Now)
	evCtx, stopEvents := context.WithCancel(navCtx)
	defer stopEvents()
	wait := page.Context(evCtx).EachEvent(
		func(e *proto.NetworkRequestWillBeSent) { tracker.started(e.RequestID) },
		func(e *proto.NetworkLoadingFinished) { tracker.finished(e.RequestID) },
		func(e *proto.NetworkLoadingFailed) { tracker.finished(e.RequestID) },
	)
	go wait()

	nav := page.Context(navCtx)
	if err := nav.Navigate(url); err != nil {
		return "", fmt.Errorf("navigating: %w", err)
	}
	if err := nav.WaitLoad(); err != nil {
		return "", fmt.Errorf("waiting for load: %w", err)
	}
	if err := tracker.waitIdle(navCtx, r.quietWindow); err != nil {
		return "", fmt.Errorf("waiting for network idle: %w", err)
	}
	stopEvents()

	if _, err := page.Context(ctx).Timeout(r.elementTimeout).Element(r.waitSelector); err != nil {
		return "", fmt.Errorf("waiting for %q: %w", r.waitSelector, err)
	}

	html, err := page.Context(ctx).HTML()
	if err != nil {
		return "", fmt.Errorf("reading HTML: %w", err)
	}
	return html, nil
}

// LauncherPID returns the process ID of the browser started by the most
// recent Render, or 0 if none was started. The process is already gone by
// the time Render returns.
func (r *Renderer) LauncherPID() int {
	return int(r.lastPID.Load())
}

// session is one launched browser process and its connection.
type session struct {
	launcher *launcher.Launcher
	browser  *rod.Browser
	page     *rod.Page
}

func (r *Renderer) open() (*session, error) {
	l := launcher.New().
		Set("disable-dev-shm-usage").
		Set("disable-gpu").
		Leakless(true).
		Headless(true).
		NoSandbox(r.noSandbox)
	if r.bin != "" {
		l = l.Bin(r.bin)
	}

	u, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("launching browser: %w", err)
	}

	r.lastPID.Store(int64(l.PID()))

	browser := rod.New().ControlURL(u)
	if err := browser.Connect(); err != nil {
		l.Kill() // Clean up launched process on connection failure
		l.Cleanup()
		return nil, fmt.Errorf("connecting to browser: %w", err)
	}

	return &session{launcher: l, browser: browser}, nil
}

// close releases the page, the browser connection and the process, in that
// order. Errors are ignored: the process is killed regardless.
func (s *session) close() {
	if s.page != nil {
		_ = s.page.Close()
	}
	_ = s.browser.Close()
	s.launcher.Kill()
	s.launcher.Cleanup()
}
