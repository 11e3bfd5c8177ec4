package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	firebase "firebase.google.com/go/v4"

	"habitTrackerAPI/internal/config"
	"habitTrackerAPI/internal/firebaseapp"
	"habitTrackerAPI/internal/identity"
	"habitTrackerAPI/internal/logger"
	"habitTrackerAPI/internal/notification"
	"habitTrackerAPI/internal/store"
	"habitTrackerAPI/internal/store/docstore"
	"habitTrackerAPI/internal/store/postgres"
	"habitTrackerAPI/internal/workers"
	"habitTrackerAPI/middleware"
	"habitTrackerAPI/services"
)

const (
	reminderWorkers = 5
	visitorMaxIdle  = 3 * time.Minute
)

type Application struct {
	config      *config.Config
	store       store.Store
	auth        *middleware.Authenticator
	directory   identity.Directory
	rateLimiter *middleware.RateLimiter
	dispatcher  *services.ReminderDispatcher
	hub         *services.LiveHub
	scheduler   *workers.Scheduler

	habitService        *services.HabitService
	journalService      *services.JournalService
	userService         *services.UserService
	notificationService *services.NotificationService

	handler  http.Handler
	server   *http.Server
	listener net.Listener
}

// New builds every dependency named by cfg. Nothing listens until Start.
func New(ctx context.Context, cfg *config.Config) (*Application, error) {
	loc := cfg.Location()

	var fbApp *firebase.App
	if cfg.Store.Backend == config.BackendFirestore || cfg.Auth.Provider == config.AuthFirebase {
		var err error
		fbApp, err = firebaseapp.New(ctx, firebaseapp.Credentials{
			ProjectID:          cfg.Firebase.ProjectID,
			ServiceAccountJSON: cfg.Firebase.ServiceAccountJSON,
			CredentialsFile:    cfg.Firebase.CredentialsFile,
		})
		if err != nil {
			return nil, err
		}
	}

	st, err := openStore(ctx, cfg, fbApp)
	if err != nil {
		return nil, err
	}

	verifier, directory, err := openIdentity(ctx, cfg, fbApp)
	if err != nil {
		st.Close()
		return nil, err
	}

	dispatcher := services.NewReminderDispatcher(pushProvider(ctx, fbApp), reminderWorkers)

	a := &Application{
		config:      cfg,
		store:       st,
		auth:        middleware.NewAuthenticator(verifier),
		directory:   directory,
		rateLimiter: middleware.NewRateLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst),
		dispatcher:  dispatcher,
		hub:         services.NewLiveHub(st, st),
		scheduler:   workers.New(loc),

		habitService:        services.NewHabitService(st, loc),
		journalService:      services.NewJournalService(st, loc),
		userService:         services.NewUserService(directory),
		notificationService: services.NewNotificationService(st, st, dispatcher, loc),
	}

	if err := a.setupJobs(); err != nil {
		a.close()
		return nil, err
	}

	middleware.InitPrometheus()
	a.handler = a.routes()

	return a, nil
}

func openStore(ctx context.Context, cfg *config.Config, fbApp *firebase.App) (store.Store, error) {
	switch cfg.Store.Backend {
	case config.BackendPostgres:
		pg, err := postgres.New(ctx, cfg.Store.DatabaseURL)
		if err != nil {
			return nil, err
		}
		return pg, nil
	case config.BackendFirestore:
		client, err := fbApp.Firestore(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to create firestore client: %w", err)
		}
		logger.Info("connected to firestore")
		return docstore.New(client), nil
	case config.BackendMemory:
		logger.Warn("using in-memory store, data is lost on restart")
		return store.NewMemory(), nil
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}
}

func openIdentity(ctx context.Context, cfg *config.Config, fbApp *firebase.App) (identity.Verifier, identity.Directory, error) {
	switch cfg.Auth.Provider {
	case config.AuthFirebase:
		fa, err := identity.NewFirebaseAuth(ctx, fbApp)
		if err != nil {
			return nil, nil, err
		}
		return fa, fa, nil
	case config.AuthClerk:
		return identity.NewClerkVerifier(cfg.Auth.ClerkSecretKey), identity.NewMemoryDirectory(), nil
	case config.AuthDev:
		logger.Warn("using dev token verifier, do not run this in production")
		return identity.NewDevVerifier(cfg.Auth.DevSecret), identity.NewMemoryDirectory(), nil
	default:
		return nil, nil, fmt.Errorf("unknown auth provider %q", cfg.Auth.Provider)
	}
}

// pushProvider falls back to logging when FCM is unavailable.
func pushProvider(ctx context.Context, fbApp *firebase.App) services.PushNotificationProvider {
	if fbApp == nil {
		return services.LogPushProvider{}
	}
	fcm, err := notification.NewFCMService(ctx, fbApp)
	if err != nil {
		logger.Warn("could not initialize FCM, reminders will only be logged", "error", err)
		return services.LogPushProvider{}
	}
	logger.Info("FCM push provider initialized")
	return fcm
}

func (a *Application) setupJobs() error {
	if err := a.scheduler.Add("visitor-cleanup", "@every 1m", 0, func(ctx context.Context) error {
		if n := a.rateLimiter.Cleanup(visitorMaxIdle); n > 0 {
			logger.Debug("dropped idle visitors", "count", n)
		}
		return nil
	}); err != nil {
		return err
	}

	if !a.config.Reminders.Enabled {
		return nil
	}
	return a.scheduler.Add("habit-reminders", a.config.Reminders.Cron, time.Minute, a.sendReminders)
}

// sendReminders is the reminder job; SendReminders logs the outcome.
func (a *Application) sendReminders(ctx context.Context) error {
	_, err := a.notificationService.SendReminders(ctx)
	return err
}

// Handler is the fully wrapped HTTP handler.
func (a *Application) Handler() http.Handler {
	return a.handler
}

// Addr is the bound address once Start has returned.
func (a *Application) Addr() string {
	if a.listener == nil {
		return ""
	}
	return a.listener.Addr().String()
}

func (a *Application) Start() error {
	ln, err := net.Listen("tcp", ":"+a.config.Server.Port)
	if err != nil {
		return fmt.Errorf("failed to listen on port %s: %w", a.config.Server.Port, err)
	}
	a.listener = ln

	a.server = &http.Server{
		Handler:      a.handler,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	a.scheduler.Start()

	go func() {
		logger.Info("starting server", "addr", ln.Addr().String())
		if err := a.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server stopped", "error", err)
		}
	}()

	return nil
}

// Stop drains HTTP traffic, disconnects live clients and stops background work.
func (a *Application) Stop(ctx context.Context) error {
	var errs []error

	if a.server != nil {
		if err := a.server.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("server shutdown: %w", err))
		}
	}

	if err := a.close(); err != nil {
		errs = append(errs, err)
	}

	logger.Info("application stopped")
	return errors.Join(errs...)
}

func (a *Application) close() error {
	a.hub.Shutdown()
	a.scheduler.Stop()
	a.dispatcher.Stop()

	sent, failed := a.dispatcher.Stats()
	logger.Debug("reminder dispatcher stopped", "sent", sent, "failed", failed)

	if err := a.store.Close(); err != nil {
		return fmt.Errorf("store close: %w", err)
	}
	return nil
}
