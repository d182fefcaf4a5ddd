package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"

	"github.com/bnuredini/homehub/internal/calendar"
	"github.com/bnuredini/homehub/internal/conf"
	"github.com/bnuredini/homehub/internal/database"
	"github.com/bnuredini/homehub/internal/httphandler"
	"github.com/bnuredini/homehub/internal/services/files"
	"github.com/bnuredini/homehub/internal/services/network"
	"github.com/bnuredini/homehub/internal/services/reminders"
	"github.com/bnuredini/homehub/internal/services/settings"
	"github.com/bnuredini/homehub/internal/services/weather"
	"github.com/bnuredini/homehub/internal/templates"
)

const shutdownTimeout = 10 * time.Second

type universe struct {
	DB              *sql.DB
	Config          *conf.Config
	TemplateManager *templates.Manager
	Handler         *httphandler.Handler
}

func main() {
	config, err := conf.Init()
	if err != nil {
		log.Fatalf("failed to parse the config: %v", err)
	}

	slog.SetLogLoggerLevel(slog.Level(config.LogLevel))

	if config.SentryDSN != "" {
		err = sentry.Init(sentry.ClientOptions{
			Dsn:     config.SentryDSN,
			Release: conf.Version(),
		})
		if err != nil {
			log.Fatalf("failed to initialize sentry: %v", err)
		}
		defer sentry.Flush(2 * time.Second)
	}

	db, err := database.Open(config.DBDriver, config.DBConnStr)
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()

	if err = database.Migrate(db, config.DBDriver); err != nil {
		log.Fatal(err)
	}

	templateManager, err := templates.NewManager()
	if err != nil {
		log.Fatal(err)
	}

	fileService, err := files.NewService(config.ShareDir, db, config.ShareLinkDuration())
	if err != nil {
		log.Fatal(err)
	}

	loc := calendar.ParseLocale(config.Locale)
	lang, _ := loc.Tag.Base()

	arp := network.CommandScanner{}
	deviceStore := network.NewDeviceStore(db)
	networkService := network.NewService(
		network.Options{
			ExternalIPURL:    config.ExternalIPURL,
			ConnectivityAddr: config.ConnectivityProbeAddr,
		},
		arp,
		deviceStore,
	)

	weatherClient := weather.NewClient(weather.Options{
		BaseURL:   config.WeatherBaseURL,
		APIKey:    config.WeatherAPIKey,
		Lang:      lang.String(),
		RateLimit: config.WeatherRateLimit,
	})
	if config.WeatherAPIKey == "" {
		slog.Warn("no weather API key configured; the weather widget will stay empty")
	}

	uni := &universe{
		DB:              db,
		Config:          &config,
		TemplateManager: templateManager,
		Handler: httphandler.New(templateManager, loc, httphandler.Services{
			Settings:  settings.NewStore(db, config.DefaultCity),
			Reminders: reminders.NewStore(db),
			Files:     fileService,
			Weather:   weatherClient,
			Network:   networkService,
		}),
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()

		scanner := &network.Scanner{
			ARP:      arp,
			Store:    deviceStore,
			Interval: config.DeviceScanDuration(),
		}
		scanner.Run(ctx)
	}()

	if err = startServer(ctx, uni); err != nil {
		slog.Error("failed to serve", "err", err)
		stop()
		wg.Wait()
		os.Exit(1)
	}

	wg.Wait()
}

// startServer serves until ctx is cancelled and then shuts down gracefully.
func startServer(ctx context.Context, uni *universe) error {
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", uni.Config.Port),
		Handler: routes(uni),
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("starting server", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	return srv.Shutdown(shutdownCtx)
}
