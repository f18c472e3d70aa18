// internal/browser/session/session.go
package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/itw-creative-works/puppeteer-profiles/internal/config"
	"github.com/itw-creative-works/puppeteer-profiles/internal/humanoid"
)

// Manager attaches to an already running browser and opens one tab per Session.
// Launching the browser is the caller's concern.
type Manager struct {
	browserCfg  config.BrowserConfig
	humanoidCfg config.HumanoidConfig
	logger      *zap.Logger

	allocCtx    context.Context
	allocCancel context.CancelFunc
	limiter     *rate.Limiter

	mu       sync.Mutex
	sessions map[string]*Session
	opened   int64
}

// NewManager connects to the DevTools endpoint in cfg.Browser().RemoteURL.
// Both ws:// browser URLs and http://host:port endpoints are accepted.
func NewManager(ctx context.Context, cfg config.Interface, logger *zap.Logger) *Manager {
	allocCtx, cancel := chromedp.NewRemoteAllocator(ctx, cfg.Browser().RemoteURL)
	return newManager(allocCtx, cancel, cfg, logger)
}

// newManager builds a Manager over any chromedp allocator context.
func newManager(allocCtx context.Context, cancel context.CancelFunc, cfg config.Interface, logger *zap.Logger) *Manager {
	browserCfg := cfg.Browser()
	return &Manager{
		browserCfg:  browserCfg,
		humanoidCfg: cfg.Humanoid(),
		logger:      logger.Named("session_manager"),
		allocCtx:    allocCtx,
		allocCancel: cancel,
		limiter:     rate.NewLimiter(rate.Limit(browserCfg.PageOpenRate), 1),
		sessions:    make(map[string]*Session),
	}
}

// NewSession opens a tab, paced by the configured page-open rate, and binds a
// Humanoid to it.
func (m *Manager) NewSession(ctx context.Context) (*Session, error) {
	if err := m.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("session: waiting to open page: %w", err)
	}

	tabCtx, tabCancel := chromedp.NewContext(m.allocCtx)
	// The first Run creates the target.
	if err := chromedp.Run(tabCtx); err != nil {
		tabCancel()
		return nil, fmt.Errorf("session: opening page: %w", err)
	}

	m.mu.Lock()
	m.opened++
	index := m.opened
	m.mu.Unlock()

	id := uuid.NewString()
	log := m.logger.With(zap.String("session_id", id))

	hcfg := m.humanoidCfg
	if hcfg.Seed != 0 {
		// Distinct but reproducible streams per session.
		hcfg.Seed += index - 1
	}

	executor := NewCDPExecutor(tabCtx, log, m.browserCfg.ActionTimeout)
	s := &Session{
		id:                id,
		ctx:               tabCtx,
		cancel:            tabCancel,
		logger:            log,
		executor:          executor,
		humanoid:          humanoid.New(hcfg, log, executor),
		navigationTimeout: m.browserCfg.NavigationTimeout,
	}
	s.onClose = func() { m.forget(id) }

	m.mu.Lock()
	m.sessions[id] = s
	m.mu.Unlock()

	log.Info("Session opened.")
	return s, nil
}

// Sessions returns the open sessions.
func (m *Manager) Sessions() []*Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		out = append(out, s)
	}
	return out
}

func (m *Manager) forget(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
}

// Close closes every open session and disconnects from the browser.
// The browser process itself keeps running.
func (m *Manager) Close() error {
	var firstErr error
	for _, s := range m.Sessions() {
		if err := s.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	m.allocCancel()
	return firstErr
}

// Session is one tab and the Humanoid that drives it.
type Session struct {
	id                string
	ctx               context.Context
	cancel            context.CancelFunc
	logger            *zap.Logger
	executor          *CDPExecutor
	humanoid          *humanoid.Humanoid
	navigationTimeout time.Duration

	closeOnce sync.Once
	onClose   func()
}

// ID returns the session's unique identifier.
func (s *Session) ID() string { return s.id }

// Humanoid returns the gesture controller bound to this tab.
func (s *Session) Humanoid() *humanoid.Humanoid { return s.humanoid }

// Executor returns the CDP driver of this tab.
func (s *Session) Executor() *CDPExecutor { return s.executor }

// Navigate loads url and waits for the document body, bounded by the navigation timeout.
func (s *Session) Navigate(ctx context.Context, url string) error {
	navCtx, cancel := context.WithTimeout(ctx, s.navigationTimeout)
	defer cancel()

	s.logger.Debug("Navigating.", zap.String("url", url))
	err := s.executor.runActionsFunc(navCtx,
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
	)
	if err != nil {
		return fmt.Errorf("session: navigating to '%s': %w", url, err)
	}
	return nil
}

// Close closes the tab. It is safe to call more than once.
func (s *Session) Close() error {
	var err error
	s.closeOnce.Do(func() {
		// Cancel closes the target and waits for it to go away.
		err = chromedp.Cancel(s.ctx)
		s.cancel()
		if s.onClose != nil {
			s.onClose()
		}
		s.logger.Info("Session closed.")
	})
	if err != nil {
		return fmt.Errorf("session: closing page: %w", err)
	}
	return nil
}
