// Package app wires configuration, stores, runners and the engine together
// for the CLI entry points.
package app

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/ZoeDepthTokyo/jseeker-sub000/internal/answerbank"
	"github.com/ZoeDepthTokyo/jseeker-sub000/internal/apply"
	"github.com/ZoeDepthTokyo/jseeker-sub000/internal/browser"
	"github.com/ZoeDepthTokyo/jseeker-sub000/internal/config"
	"github.com/ZoeDepthTokyo/jseeker-sub000/internal/engine"
	"github.com/ZoeDepthTokyo/jseeker-sub000/internal/monitor"
	"github.com/ZoeDepthTokyo/jseeker-sub000/internal/queue"
	"github.com/ZoeDepthTokyo/jseeker-sub000/internal/reporter"
	"github.com/ZoeDepthTokyo/jseeker-sub000/internal/runner"
	"github.com/ZoeDepthTokyo/jseeker-sub000/internal/runner/greenhouse"
	"github.com/ZoeDepthTokyo/jseeker-sub000/internal/runner/workday"
	"github.com/ZoeDepthTokyo/jseeker-sub000/internal/verifier"
)

type App struct {
	Cfg    *config.Config
	Store  queue.Store
	Engine *engine.Engine
	Bank   *answerbank.AnswerBank

	browserMgr *browser.Manager
	closers    []func()
}

// Bootstrap builds the full stack. Configuration errors are fatal here, never
// silently defaulted. withBrowser=false is enough for queue-only commands.
func Bootstrap(ctx context.Context, cfgPath string, withBrowser bool) (*App, error) {
	cfg := config.Load(cfgPath)
	a := &App{Cfg: cfg}

	bank, err := answerbank.Load(cfg.AnswersPath)
	if err != nil {
		return nil, err
	}
	a.Bank = bank

	//durable store: Postgres when configured, JSON file otherwise
	if cfg.DatabaseURL != "" {
		pg, err := queue.ConnectPostgres(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		a.Store = pg
		a.closers = append(a.closers, pg.Close)
		log.Println("🗄️ Using Postgres queue store")
	} else {
		fs, err := queue.NewFileStore(cfg.QueueDir)
		if err != nil {
			return nil, err
		}
		a.Store = fs
		log.Printf("🗄️ Using file queue store in %s", cfg.QueueDir)
	}

	//selector tables drive both detection and filling
	runners, hints, err := loadRunners(cfg.SelectorsDir)
	if err != nil {
		return nil, err
	}

	var rep *reporter.TelegramReporter
	if cfg.TelegramToken != "" && cfg.TelegramChatID != 0 {
		rep, err = reporter.NewTelegramReporter(cfg.TelegramToken, cfg.TelegramChatID)
		if err != nil {
			return nil, err
		}
		log.Println("🤖 Telegram reporter initialized")
	}

	mon := monitor.New(monitor.Config{
		FailureThreshold: cfg.FailureThreshold,
		HourlyCap:        cfg.HourlyCap,
		DailyCap:         cfg.DailyCap,
	}, func(platform apply.Platform, reason string) {
		if rep != nil {
			if err := rep.AlertCircuitOpen(platform, reason); err != nil {
				log.Printf("⚠️ Failed to send circuit alert: %v", err)
			}
		}
	})

	var sessions engine.SessionFactory
	if withBrowser {
		mgr, err := browser.NewManager(cfg.Headless)
		if err != nil {
			return nil, err
		}
		a.browserMgr = mgr
		a.closers = append(a.closers, func() { mgr.Close() })
		sessions = a.sessionFactory
	}

	engineCfg := engine.Config{
		Runners:       runners,
		Hints:         hints,
		Store:         a.Store,
		Monitor:       mon,
		Verifier:      verifier.New(),
		Bank:          bank,
		Sessions:      sessions,
		ArtifactsRoot: cfg.ArtifactsDir,
	}
	if rep != nil {
		engineCfg.Reporter = rep
	}
	a.Engine = engine.New(engineCfg)
	return a, nil
}

func loadRunners(dir string) ([]runner.Runner, map[apply.Platform]verifier.Hints, error) {
	files, err := os.ReadDir(dir)
	if err != nil {
		return nil, nil, fmt.Errorf("could not read selectors dir %s: %w", dir, err)
	}

	var runners []runner.Runner
	hints := make(map[apply.Platform]verifier.Hints)
	for _, f := range files {
		if f.IsDir() || !strings.HasSuffix(f.Name(), ".yaml") {
			continue
		}
		table, err := runner.LoadSelectorTable(filepath.Join(dir, f.Name()))
		if err != nil {
			return nil, nil, err
		}
		switch apply.Platform(table.Platform) {
		case apply.PlatformWorkday:
			runners = append(runners, workday.New(table))
		case apply.PlatformGreenhouse:
			runners = append(runners, greenhouse.New(table))
		default:
			log.Printf("⚠️ Selector table %s targets unknown platform %q, skipping", f.Name(), table.Platform)
			continue
		}
		hints[apply.Platform(table.Platform)] = verifier.HintsFromTable(table)
		log.Printf("🧩 Loaded runner: %s", table.Platform)
	}
	if len(runners) == 0 {
		return nil, nil, fmt.Errorf("no usable selector tables in %s", dir)
	}
	return runners, hints, nil
}

// sessionFactory creates a fresh context and page per attempt; the release
// callback tears the context down so sessions are never shared.
func (a *App) sessionFactory(platform apply.Platform) (runner.Session, func(), error) {
	cookieFile := filepath.Join(a.Cfg.CookiesPath, fmt.Sprintf("cookies-%s.json", platform))
	cookies, err := browser.LoadCookies(cookieFile)
	if err != nil {
		log.Printf("⚠️ Could not load %s cookies: %v. Continuing unauthenticated.", platform, err)
	} else {
		log.Printf("🍪 Loaded %s cookies (%d)", platform, len(cookies))
	}

	browserCtx, err := a.browserMgr.NewContext(cookies)
	if err != nil {
		return nil, nil, err
	}
	sess, err := browser.NewSession(browserCtx)
	if err != nil {
		browserCtx.Close()
		return nil, nil, err
	}
	return sess, func() { browserCtx.Close() }, nil
}

func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}
