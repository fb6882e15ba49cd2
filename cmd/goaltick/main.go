package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"

	"goaltick/internal/app"
	"goaltick/internal/config"
	"goaltick/internal/goals"
	appLog "goaltick/internal/log"
	"goaltick/internal/materialize"
	"goaltick/internal/notify"
	"goaltick/internal/store"
	"goaltick/internal/timing"
	"goaltick/internal/web"
)

// flagConfig holds CLI flag values.
type flagConfig struct {
	configPath string
	listen     string
	once       bool
}

func main() {
	appLog.Info("goaltick starting", "version", "0.1.0-dev")

	flags := parseFlags()

	conf, err := config.Load(flags.configPath)
	if err != nil {
		appLog.Error("failed to load config", err, "config_path", flags.configPath)
		os.Exit(1)
	}

	// CLI --listen overrides config file listen if provided.
	if flags.listen != "" {
		conf.Listen = flags.listen
	}

	appLog.SetLevel(appLog.ParseLevel(conf.LogLevel))

	appLog.Info("effective config",
		"listen", conf.Listen,
		"timezone", conf.Timezone,
		"tick", conf.TickCron,
		"window_days", conf.WindowDays,
		"notify_hour", conf.NotifyHour,
		"weekly_day", conf.WeeklyDay,
		"storage_dir", conf.StorageDir,
		"goals_file", conf.GoalsFile,
		"once", flags.once,
	)

	loc, err := time.LoadLocation(conf.Timezone)
	if err != nil {
		appLog.Error("failed to load timezone, using local", err, "timezone", conf.Timezone)
		loc = time.Local
	}
	now := func() time.Time { return time.Now().In(loc) }

	// Root context with cancellation on SIGINT/SIGTERM.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		appLog.Info("signal received, shutting down", "signal", sig.String())
		cancel()
	}()

	if err := run(ctx, conf, flags, now); err != nil {
		appLog.Error("goaltick failed", err)
		os.Exit(1)
	}

	appLog.Info("goaltick exiting")
}

func run(ctx context.Context, conf *config.Config, flags flagConfig, now func() time.Time) error {
	repo, err := store.NewFileRepo(conf.StorageDir)
	if err != nil {
		return err
	}

	mat := materialize.New(repo,
		materialize.WithWindow(conf.WindowDays),
		materialize.WithNow(now),
	)

	var sender notify.Sender = notify.LogSender{}
	if conf.SMTP != nil && conf.SMTP.Host != "" {
		sender = notify.NewMailer(*conf.SMTP)
	}
	publisher := notify.NewPublisher(conf.StorageDir)

	application := app.New(conf, repo, mat, sender, publisher, now)

	// Single-shot mode: one materialization pass, then exit.
	if flags.once {
		return application.UpdateGoals(ctx)
	}

	catchup, err := timing.NewCatchUp(filepath.Join(conf.StorageDir, "catchup.txt"), now())
	if err != nil {
		return err
	}
	defer func() {
		if cerr := catchup.Close(); cerr != nil {
			appLog.Error("failed to persist catch-up set", cerr)
		}
	}()

	watcher, err := goals.NewWatcher(conf.GoalsFile)
	if err != nil {
		// The tick still reloads once per day without the watcher.
		appLog.Error("goals watcher unavailable", err, "file", conf.GoalsFile)
		watcher = nil
	} else {
		defer watcher.Close()
	}

	weeklyDay, err := timing.ParseWeekday(conf.WeeklyDay)
	if err != nil {
		return err
	}

	tickerOpts := []timing.TickerOption{timing.WithTickerNow(now)}
	if watcher != nil {
		tickerOpts = append(tickerOpts, timing.WithGoalsDirty(watcher.ConsumeDirty))
	}
	ticker := timing.NewTicker(timing.NewState(), catchup, application, conf.NotifyHour, weeklyDay, tickerOpts...)

	// Periodic tick via cron, in the configured timezone.
	sched := cron.New(cron.WithLocation(now().Location()))
	if _, err := sched.AddFunc(conf.TickCron, func() { ticker.Tick(ctx) }); err != nil {
		return err
	}
	sched.Start()
	defer func() { <-sched.Stop().Done() }()

	// Run the first tick immediately so a restart does not wait for the
	// next cron slot.
	ticker.Tick(ctx)

	// Status API.
	srv := &http.Server{
		Addr:    conf.Listen,
		Handler: web.NewServer(conf, application).Handler(),
	}
	errCh := make(chan error, 1)
	go func() {
		appLog.Info("starting HTTP server", "listen", "http://"+conf.Listen)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		return err
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLog.Error("HTTP shutdown failed", err)
	}
	return nil
}

func parseFlags() flagConfig {
	var cfg flagConfig

	flag.StringVar(&cfg.configPath, "config", "/etc/goaltick/config.yaml", "Path to config file")
	flag.StringVar(&cfg.listen, "listen", "", "HTTP listen address (overrides config if set)")
	flag.BoolVar(&cfg.once, "once", false, "Run one goals reload + materialization pass and exit")

	flag.Parse()

	return cfg
}
