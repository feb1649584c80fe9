package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/sync/errgroup"

	"github.com/l1jgo/statecore/internal/app"
	"github.com/l1jgo/statecore/internal/config"
	"github.com/l1jgo/statecore/internal/platform"
	"github.com/l1jgo/statecore/internal/platform/headless"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

// ── Startup display helpers ────────────────────────────────────────

func printBanner(name string) {
	fmt.Println()
	fmt.Printf("\033[36;1m  ┌%s┐\033[0m\n", strings.Repeat("─", 43))
	pad := 43 - headless.Cells(name)
	if pad < 0 {
		pad = 0
	}
	left := pad / 2
	fmt.Printf("\033[36;1m  │\033[0m%s%s%s\033[36;1m│\033[0m\n",
		strings.Repeat(" ", left), name, strings.Repeat(" ", pad-left))
	fmt.Printf("\033[36;1m  └%s┘\033[0m\n", strings.Repeat("─", 43))
	fmt.Println()
}

func printSection(title string) {
	lineLen := 46 - headless.Cells(title) - 1
	if lineLen < 3 {
		lineLen = 3
	}
	fmt.Printf("  \033[33m── %s %s\033[0m\n", title, strings.Repeat("─", lineLen))
}

func printStat(label string, count int) {
	numStr := fmt.Sprintf("%d", count)
	dotsLen := 42 - headless.Cells(label) - len(numStr)
	if dotsLen < 3 {
		dotsLen = 3
	}
	fmt.Printf("  %s \033[90m%s\033[0m \033[32m%s\033[0m\n", label, strings.Repeat("·", dotsLen), numStr)
}

func printOK(msg string) {
	fmt.Printf("  \033[32m✓\033[0m %s\n", msg)
}

func run() error {
	// 1. Load config
	cfgPath := "config/statecore.toml"
	if p := os.Getenv("STATECORE_CONFIG"); p != "" {
		cfgPath = p
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// 2. Init logger
	log, err := newLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	printBanner(cfg.App.Name)

	// 3. Platform and app. This goroutine becomes the main thread.
	p := headless.New(cfg.Dispatch, log)
	a := app.New(p, log)

	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(shutdownCh)

	var producers errgroup.Group
	a.Run(func(cx *app.AppContext) {
		printSection("entities")
		d := buildDemo(cx, cfg.Window, log)
		printOK("document, status bar and word count created")

		producers.Go(func() error {
			defer a.Quit()
			return drive(a, d, log)
		})
		go func() {
			select {
			case sig := <-shutdownCh:
				log.Info("shutdown signal", zap.String("signal", sig.String()))
				a.Quit()
			case <-d.finished:
			}
		}()
	})

	if err := producers.Wait(); err != nil {
		return fmt.Errorf("producers: %w", err)
	}

	fmt.Println()
	printSection("summary")
	var stats app.Stats
	a.Update(func(cx *app.AppContext) { stats = cx.Stats() })
	printStat("entities", stats.Entities)
	printStat("windows", stats.Windows)
	printStat("observers", stats.Observers)
	printStat("subscribers", stats.Subscribers)
	printStat("flushes", int(stats.Flushes))
	return nil
}

// drive edits the document from several goroutines, then opens and
// updates the window's root view from off the main thread.
func drive(a *app.App, d *demo, log *zap.Logger) error {
	defer close(d.finished)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	wh, err := d.window.Wait(ctx)
	if err != nil {
		return fmt.Errorf("open window: %w", err)
	}
	printOK("window opened")

	words := []string{"entities", "effects", "observers", "handles", "windows", "天堂"}
	g, ctx := errgroup.WithContext(ctx)
	for i, word := range words {
		g.Go(func() error {
			var task *app.Task[int]
			a.Update(func(cx *app.AppContext) {
				task = app.SpawnOnMain(cx, func(_ platform.Platform, cx *app.AppContext) (int, error) {
					return d.append(cx, word), nil
				})
			})
			rev, err := task.Wait(ctx)
			if err != nil {
				return err
			}
			log.Debug("edit applied", zap.Int("producer", i), zap.Int("revision", rev))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	a.Update(func(cx *app.AppContext) {
		_, err = app.UpdateRoot(cx, wh, func(doc *document, mc *app.ModelContext[document]) struct{} {
			doc.title = "statecore demo"
			mc.Notify()
			return struct{}{}
		})
	})
	if err != nil {
		return fmt.Errorf("update root view: %w", err)
	}

	var summary string
	a.Update(func(cx *app.AppContext) {
		summary = d.summary(cx)
		_, err = app.UpdateWindow(cx, wh.Any(), func(wc *app.WindowContext) struct{} {
			wc.Close()
			return struct{}{}
		})
	})
	if err != nil {
		return fmt.Errorf("close window: %w", err)
	}
	printOK(summary)
	return nil
}

func newLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = zapcore.InfoLevel
	}

	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		zapCfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
		zapCfg.EncoderConfig.ConsoleSeparator = "  "
		zapCfg.DisableCaller = true
		zapCfg.DisableStacktrace = true
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	return zapCfg.Build()
}
