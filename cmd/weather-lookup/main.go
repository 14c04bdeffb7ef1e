package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"weather-lookup/config"
	v1 "weather-lookup/internal/controllers/http/v1"
	"weather-lookup/internal/preferences"
	"weather-lookup/internal/repositories"
	"weather-lookup/internal/scheduler"
	"weather-lookup/internal/services/weather"
	"weather-lookup/internal/weatherapi"
	"weather-lookup/pkg/httpserver"
	"weather-lookup/pkg/logger"
	"weather-lookup/pkg/observe"
)

// @title Weather Lookup API
// @version 1.0.0
// @description City search, persisted selection and current conditions backed by WeatherAPI.com.

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /
// @schemes http https

// @tag.name Weather
// @tag.description City search, selection and current conditions
func main() {
	// A missing .env is fine; the environment may already be set.
	_ = godotenv.Load()

	cnf, err := config.NewConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	writers := []io.Writer{os.Stdout}
	var hook *observe.SentryHook
	if cnf.Sentry.DSN != "" {
		hook = observe.NewSentryHook(cnf.App.Env, cnf.App.Name, cnf.Sentry.DSN, cnf.Sentry.Debug)
		writers = append(writers, hook)
	}
	l := logger.NewZapLogger(logger.Options{
		AppName: cnf.App.Name,
		AppEnv:  cnf.App.Env,
		Level:   cnf.Log.Level,
		Writers: writers,
	})
	if hook != nil {
		hook.SetLogger(l)
	}

	ctx, cancel := context.WithCancel(context.Background())

	client, err := weatherapi.NewClient(weatherapi.Options{
		BaseURL:         cnf.Weather.BaseURL,
		APIKey:          cnf.Weather.APIKey,
		Timeout:         cnf.Weather.Timeout,
		BreakerFailures: cnf.Weather.BreakerFailures,
		BreakerTimeout:  cnf.Weather.BreakerTimeout,
	}, l)
	if err != nil {
		l.Fatal("cannot create weather client", map[string]any{"err": err})
	}
	repo := repositories.NewWeatherRepository(client, l)

	store, closeStore := newPreferenceStore(ctx, cnf, l)

	controller := weather.NewController(repo, store, l, weather.Options{
		SearchConcurrency: cnf.Search.Concurrency,
	})
	runDone := make(chan error, 1)
	go func() { runDone <- controller.Run(ctx) }()

	sched := scheduler.New(controller, cnf.Scheduler.RefreshInterval, l)
	if err := sched.Start(); err != nil {
		l.Fatal("cannot start scheduler", map[string]any{"err": err})
	}

	app := httpserver.InitFiberServer(httpserver.Options{
		AppName:      cnf.App.Name,
		ReadTimeout:  cnf.Server.ReadTimeout,
		WriteTimeout: cnf.Server.WriteTimeout,
		IdleTimeout:  cnf.Server.IdleTimeout,
		Ready:        func() bool { return ctx.Err() == nil },
	}, l)

	v1.NewRouter(
		app,
		controller,
		repo,
		l,
	)

	go func() {
		if err := app.Listen(":" + cnf.Server.Port); err != nil {
			l.Fatal("cannot run the server", map[string]any{"err": err})
		}
	}()

	l.Info("application started successfully", map[string]any{
		"port":        cnf.Server.Port,
		"preferences": preferenceBackend(cnf),
		"version":     cnf.App.Version,
	})

	sigCh := make(chan os.Signal, 2)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer func() {
		l.Warning("stopping application services")
		signal.Stop(sigCh)

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		_ = app.ShutdownWithContext(shutdownCtx)
		sched.Stop()
		cancel()
		select {
		case <-runDone:
		case <-shutdownCtx.Done():
		}
		closeStore()
		if hook != nil {
			hook.Flush()
		}
		_ = l.Stop()
	}()

	select {
	case <-sigCh:
		l.Info("received shutdown signal")
	case err := <-runDone:
		if err != nil && !errors.Is(err, context.Canceled) {
			l.Error(err)
		}
		// Run already returned; the deferred wait must not block on it.
		runDone <- nil
	}
}

func preferenceBackend(cnf *config.Config) string {
	if cnf.Preferences.RedisURL != "" {
		return "redis"
	}
	return "memory"
}

func newPreferenceStore(ctx context.Context, cnf *config.Config, l *logger.Logger) (preferences.Store, func()) {
	if cnf.Preferences.RedisURL == "" {
		return preferences.NewMemoryStore(), func() {}
	}

	connectCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	rdb, err := preferences.Connect(connectCtx, cnf.Preferences.RedisURL)
	if err != nil {
		l.Fatal("cannot connect to redis", map[string]any{"err": err})
	}
	return preferences.NewRedisStore(rdb, cnf.Preferences.Namespace, l), func() { _ = rdb.Close() }
}
