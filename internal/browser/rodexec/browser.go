// internal/browser/rodexec/browser.go
package rodexec

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/itw-creative-works/puppeteer-profiles/internal/config"
	"github.com/itw-creative-works/puppeteer-profiles/internal/humanoid"
)

// Browser is a connection to an already running browser.
// Closing it drops the connection and leaves the browser process alone.
type Browser struct {
	browser     *rod.Browser
	cancel      context.CancelFunc
	browserCfg  config.BrowserConfig
	humanoidCfg config.HumanoidConfig
	logger      *zap.Logger
	limiter     *rate.Limiter

	mu     sync.Mutex
	opened int64
}

// Connect attaches to cfg.Browser().RemoteURL. An http://host:port endpoint is
// resolved to its websocket URL first.
func Connect(ctx context.Context, cfg config.Interface, logger *zap.Logger) (*Browser, error) {
	controlURL := cfg.Browser().RemoteURL
	if !strings.HasPrefix(controlURL, "ws") {
		resolved, err := launcher.ResolveURL(controlURL)
		if err != nil {
			return nil, fmt.Errorf("rod: resolving '%s': %w", controlURL, err)
		}
		controlURL = resolved
	}

	connCtx, cancel := context.WithCancel(ctx)
	b := rod.New().ControlURL(controlURL).Context(connCtx)
	if err := b.Connect(); err != nil {
		cancel()
		return nil, fmt.Errorf("rod: connecting to '%s': %w", controlURL, err)
	}
	return wrap(b, cancel, cfg, logger), nil
}

func wrap(b *rod.Browser, cancel context.CancelFunc, cfg config.Interface, logger *zap.Logger) *Browser {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Browser{
		browser:     b,
		cancel:      cancel,
		browserCfg:  cfg.Browser(),
		humanoidCfg: cfg.Humanoid(),
		logger:      logger.Named("rod_browser"),
		limiter:     rate.NewLimiter(rate.Limit(cfg.Browser().PageOpenRate), 1),
	}
}

// NewPage opens a blank tab and binds a Humanoid to it.
func (b *Browser) NewPage(ctx context.Context) (*Page, error) {
	if err := b.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rod: waiting to open page: %w", err)
	}
	page, err := b.browser.Context(ctx).Page(proto.TargetCreateTarget{URL: "about:blank"})
	if err != nil {
		return nil, fmt.Errorf("rod: opening page: %w", err)
	}
	// Detach the page from the call's context; gestures bind their own.
	page = page.Context(context.Background())

	b.mu.Lock()
	b.opened++
	index := b.opened
	b.mu.Unlock()

	hcfg := b.humanoidCfg
	if hcfg.Seed != 0 {
		hcfg.Seed += index - 1
	}

	id := uuid.NewString()
	log := b.logger.With(zap.String("session_id", id))
	executor := NewExecutor(page, log)
	log.Info("Page opened.")

	return &Page{
		id:                id,
		page:              page,
		logger:            log,
		executor:          executor,
		humanoid:          humanoid.New(hcfg, log, executor),
		navigationTimeout: b.browserCfg.NavigationTimeout,
	}, nil
}

// Close drops the connection.
func (b *Browser) Close() error {
	b.cancel()
	return nil
}

// Page is one rod tab and the Humanoid that drives it.
type Page struct {
	id                string
	page              *rod.Page
	logger            *zap.Logger
	executor          *Executor
	humanoid          *humanoid.Humanoid
	navigationTimeout time.Duration
	closeOnce         sync.Once
}

// ID returns the page's unique identifier.
func (p *Page) ID() string { return p.id }

// Humanoid returns the gesture controller bound to this tab.
func (p *Page) Humanoid() *humanoid.Humanoid { return p.humanoid }

// Navigate loads url and waits for the load event.
func (p *Page) Navigate(ctx context.Context, url string) error {
	timeout := p.navigationTimeout
	if timeout <= 0 {
		timeout = time.Minute
	}
	navCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	p.logger.Debug("Navigating.", zap.String("url", url))
	page := p.page.Context(navCtx)
	if err := page.Navigate(url); err != nil {
		return fmt.Errorf("rod: navigating to '%s': %w", url, err)
	}
	if err := page.WaitLoad(); err != nil {
		return fmt.Errorf("rod: waiting for '%s' to load: %w", url, err)
	}
	return nil
}

// Close closes the tab. It is safe to call more than once.
func (p *Page) Close() error {
	var err error
	p.closeOnce.Do(func() {
		err = p.page.Close()
		p.logger.Info("Page closed.")
	})
	if err != nil {
		return fmt.Errorf("rod: closing page: %w", err)
	}
	return nil
}
