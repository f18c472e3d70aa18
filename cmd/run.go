// cmd/run.go
package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/mitchellh/go-homedir"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/itw-creative-works/puppeteer-profiles/internal/browser/rodexec"
	"github.com/itw-creative-works/puppeteer-profiles/internal/browser/session"
	"github.com/itw-creative-works/puppeteer-profiles/internal/config"
	"github.com/itw-creative-works/puppeteer-profiles/internal/observability"
	"github.com/itw-creative-works/puppeteer-profiles/internal/script"
)

// targetOpener opens n pages on the configured browser. The returned closer releases them.
type targetOpener func(ctx context.Context, cfg config.Interface, logger *zap.Logger, n int) ([]script.Target, func() error, error)

// openTargets is replaced in tests.
var openTargets targetOpener = openBrowserTargets

func newRunCmd() *cobra.Command {
	var (
		remoteURL string
		driver    string
		sessions  int
		seed      int64
		debug     bool
	)

	runCmd := &cobra.Command{
		Use:   "run <script>",
		Short: "Run a gesture script against one or more pages of a running browser",
		Long: `Runs a YAML or JSON gesture script. The browser must already be running
with remote debugging enabled; each session opens its own tab.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := observability.GetLogger()

			cfg, err := configFromContext(ctx)
			if err != nil {
				return err
			}

			flags := cmd.Flags()
			if flags.Changed("remote-url") {
				cfg.SetBrowserRemoteURL(remoteURL)
			}
			if flags.Changed("driver") {
				cfg.SetBrowserDriver(driver)
			}
			if flags.Changed("sessions") {
				cfg.SetBrowserSessions(sessions)
			}
			if flags.Changed("seed") {
				cfg.SetHumanoidSeed(seed)
			}
			if flags.Changed("debug") {
				cfg.SetBrowserDebug(debug)
			}
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid flags: %w", err)
			}

			path, err := homedir.Expand(args[0])
			if err != nil {
				return fmt.Errorf("expanding script path: %w", err)
			}
			s, err := script.Load(path)
			if err != nil {
				return err
			}

			return runScript(ctx, cfg, logger, s)
		},
	}

	runCmd.Flags().StringVar(&remoteURL, "remote-url", "", "DevTools endpoint of the running browser (ws:// or http://host:port)")
	runCmd.Flags().StringVar(&driver, "driver", "", "protocol client: chromedp or rod")
	runCmd.Flags().IntVarP(&sessions, "sessions", "n", 0, "number of pages to drive concurrently")
	runCmd.Flags().Int64Var(&seed, "seed", 0, "fix the random source (0 seeds from the clock)")
	runCmd.Flags().BoolVar(&debug, "debug", false, "show the debug cursor overlay")
	return runCmd
}

// runScript opens the configured number of pages and runs s on all of them.
func runScript(ctx context.Context, cfg config.Interface, logger *zap.Logger, s *script.Script) error {
	n := cfg.Browser().Sessions
	logger.Info("Starting run.",
		zap.String("script", s.Name),
		zap.String("driver", cfg.Browser().Driver),
		zap.Int("sessions", n))

	targets, closeAll, err := openTargets(ctx, cfg, logger, n)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := closeAll(); cerr != nil {
			logger.Warn("Failed to close pages cleanly.", zap.Error(cerr))
		}
	}()

	if err := script.RunAll(ctx, logger, s, targets); err != nil {
		return err
	}
	logger.Info("Run complete.", zap.Int("sessions", n))
	return nil
}

// openBrowserTargets attaches to the browser with the configured driver.
func openBrowserTargets(ctx context.Context, cfg config.Interface, logger *zap.Logger, n int) ([]script.Target, func() error, error) {
	switch cfg.Browser().Driver {
	case config.DriverRod:
		return openRodTargets(ctx, cfg, logger, n)
	default:
		return openChromedpTargets(ctx, cfg, logger, n)
	}
}

func openChromedpTargets(ctx context.Context, cfg config.Interface, logger *zap.Logger, n int) ([]script.Target, func() error, error) {
	manager := session.NewManager(ctx, cfg, logger)
	targets := make([]script.Target, 0, n)
	for i := 0; i < n; i++ {
		s, err := manager.NewSession(ctx)
		if err != nil {
			return nil, nil, errors.Join(err, manager.Close())
		}
		targets = append(targets, script.Target{ID: s.ID(), Controller: s.Humanoid(), Navigator: s})
	}
	return targets, manager.Close, nil
}

func openRodTargets(ctx context.Context, cfg config.Interface, logger *zap.Logger, n int) ([]script.Target, func() error, error) {
	browser, err := rodexec.Connect(ctx, cfg, logger)
	if err != nil {
		return nil, nil, err
	}

	var pages []*rodexec.Page
	closeAll := func() error {
		var errs []error
		for _, p := range pages {
			errs = append(errs, p.Close())
		}
		errs = append(errs, browser.Close())
		return errors.Join(errs...)
	}

	targets := make([]script.Target, 0, n)
	for i := 0; i < n; i++ {
		p, err := browser.NewPage(ctx)
		if err != nil {
			return nil, nil, errors.Join(err, closeAll())
		}
		pages = append(pages, p)
		targets = append(targets, script.Target{ID: p.ID(), Controller: p.Humanoid(), Navigator: p})
	}
	return targets, closeAll, nil
}
