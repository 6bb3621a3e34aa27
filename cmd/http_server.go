package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/frahmantamala/ngo-platform/internal"
	"github.com/frahmantamala/ngo-platform/internal/auth"
	authpg "github.com/frahmantamala/ngo-platform/internal/auth/postgres"
	"github.com/frahmantamala/ngo-platform/internal/category"
	categorypg "github.com/frahmantamala/ngo-platform/internal/category/postgres"
	"github.com/frahmantamala/ngo-platform/internal/core/events"
	"github.com/frahmantamala/ngo-platform/internal/core/token"
	"github.com/frahmantamala/ngo-platform/internal/directory"
	directorypg "github.com/frahmantamala/ngo-platform/internal/directory/postgres"
	"github.com/frahmantamala/ngo-platform/internal/donation"
	donationpg "github.com/frahmantamala/ngo-platform/internal/donation/postgres"
	"github.com/frahmantamala/ngo-platform/internal/moderation"
	moderationpg "github.com/frahmantamala/ngo-platform/internal/moderation/postgres"
	"github.com/frahmantamala/ngo-platform/internal/notification"
	"github.com/frahmantamala/ngo-platform/internal/paymentgateway"
	"github.com/frahmantamala/ngo-platform/internal/registration"
	registrationpg "github.com/frahmantamala/ngo-platform/internal/registration/postgres"
	"github.com/frahmantamala/ngo-platform/internal/storage"
	"github.com/frahmantamala/ngo-platform/internal/transport/rest"
	"github.com/frahmantamala/ngo-platform/internal/user"
	userpg "github.com/frahmantamala/ngo-platform/internal/user/postgres"
	"github.com/frahmantamala/ngo-platform/pkg/logger"

	"github.com/go-chi/chi"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

var httpServerCmd = &cobra.Command{
	Use:   "server",
	Short: "Start HTTP server",
	Long:  `Start the HTTP server to handle API requests`,
	Run: func(cmd *cobra.Command, args []string) {
		startHTTPServer()
	},
}

type Dependencies struct {
	Config     *internal.Config
	DB         *sqlx.DB
	Gorm       *gorm.DB
	EventBus   *events.EventBus
	Dispatcher *notification.Dispatcher
	Donations  *donation.Service
	Handlers   rest.Handlers
	Router     *chi.Mux
	Logger     *slog.Logger
}

func startHTTPServer() {
	deps, err := initializeDependencies(context.Background())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}

	setupRoutes(deps)

	addr := fmt.Sprintf(":%d", deps.Config.Server.Port)
	deps.Logger.Info("starting http server", "address", addr, "base_url", deps.Config.Server.BaseURL)

	server := &http.Server{
		Addr:              addr,
		Handler:           deps.Router,
		ReadHeaderTimeout: deps.Config.Server.ReadHeaderTimeout,
		ReadTimeout:       deps.Config.Server.ReadTimeout,
		WriteTimeout:      deps.Config.Server.WriteTimeout,
		IdleTimeout:       deps.Config.Server.IdleTimeout,
	}

	// Signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrChan := make(chan error, 1)
	go func() {
		serverErrChan <- server.ListenAndServe()
	}()

	select {
	case sig := <-sigChan:
		deps.Logger.Info("received signal, shutting down", "signal", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			deps.Logger.Error("server shutdown error", "error", err)
		}
		deps.Close(ctx)
	case err := <-serverErrChan:
		if err != nil && err != http.ErrServerClosed {
			deps.Logger.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}

	deps.Logger.Info("server stopped")
}

func setupRoutes(deps *Dependencies) {
	rest.RegisterAllRoutes(deps.Router, deps.DB, deps.Handlers, deps.Config.Server.Origins(), deps.Logger)
}

// Close drains in-flight event handlers before the mail queue so that a
// handler still enqueueing is not cut off, then closes the pool.
func (d *Dependencies) Close(ctx context.Context) {
	if err := d.EventBus.Drain(ctx); err != nil {
		d.Logger.Warn("event bus did not drain", "error", err)
	}
	d.Dispatcher.Shutdown(ctx)
	if err := d.DB.Close(); err != nil {
		d.Logger.Error("database close error", "error", err)
	}
}

func initializeDependencies(ctx context.Context) (*Dependencies, error) {
	config, err := loadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	log := logger.LoggerWrapper()

	db, err := initDB(config.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	gormDB, err := initGorm(db)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize gorm: %w", err)
	}

	store, err := initStorage(ctx, config.Storage, log)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	dispatcher, err := initDispatcher(config.Mail, log)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize notifications: %w", err)
	}

	eventBus := events.NewEventBus(log)
	notification.NewSubscriber(dispatcher, log).Register(eventBus)

	gateway := paymentgateway.NewClient(paymentgateway.Config{
		SecretKey:         config.Payment.SecretKey,
		BackendURL:        config.Payment.BackendURL,
		Timeout:           config.Payment.Timeout,
		MaxNetworkRetries: 2,
	}, log)

	registrationSigner := token.NewSigner(config.Security.TokenSecret, registration.TokenPurpose, config.Security.RegistrationTokenTTL)
	intentSigner := token.NewSigner(config.Security.TokenSecret, donation.IntentPurpose, config.Security.DonationIntentTTL)

	authService := auth.NewService(
		authpg.NewRepository(gormDB),
		auth.NewJWTTokenGenerator(config.Security.JWTSecret, config.Security.AccessTokenDuration),
		log,
	)
	registrationService := registration.NewService(
		registrationpg.NewRegistrationRepository(gormDB),
		store,
		dispatcher,
		registrationSigner,
		config.Server.BaseURL,
		log,
	)
	moderationService := moderation.NewService(moderationpg.NewModerationRepository(gormDB), eventBus, log)
	donationService := donation.NewService(
		donationpg.NewDonationRepository(gormDB),
		gateway,
		intentSigner,
		eventBus,
		donation.Config{
			Currency:       config.Payment.Currency,
			SuccessURL:     config.Payment.SuccessURL,
			CancelURL:      config.Payment.CancelURL,
			GatewayTimeout: config.Payment.Timeout,
		},
		log,
	)
	directoryService := directory.NewService(directorypg.NewDirectoryRepository(db), log)
	categoryService := category.NewService(categorypg.NewCategoryRepository(db), log)
	userService := user.NewService(userpg.NewUserRepository(db), log)

	handlers := rest.Handlers{
		Auth:         auth.NewHandler(authService),
		Registration: registration.NewHandler(registrationService, config.Security.MaxUploadSizeMegabytes<<20),
		Moderation:   moderation.NewHandler(moderationService),
		Donation:     donation.NewHandler(donationService, config.Server.SecureCookies),
		Directory:    directory.NewHandler(directoryService),
		Category:     category.NewHandler(categoryService),
		User:         user.NewHandler(userService),
	}
	if config.Payment.WebhookSecret != "" {
		handlers.Webhook = donation.NewWebhookHandler(donationService, config.Payment.WebhookSecret)
	} else {
		log.Info("payment webhook disabled, settlement relies on redirects and the reconcile worker")
	}

	return &Dependencies{
		Config:     config,
		Logger:     log,
		DB:         db,
		Gorm:       gormDB,
		EventBus:   eventBus,
		Dispatcher: dispatcher,
		Donations:  donationService,
		Handlers:   handlers,
		Router:     chi.NewRouter(),
	}, nil
}

// initDB initializes the database connection
func initDB(cfg internal.DatabaseConfig) (*sqlx.DB, error) {
	const driver = "pgx"

	dbConn, err := sqlx.Connect(driver, cfg.Source)
	if err != nil {
		return nil, fmt.Errorf("failed to open db connection: %w", err)
	}

	dbConn.SetMaxIdleConns(cfg.MaxIdleConns)
	dbConn.SetMaxOpenConns(cfg.MaxOpenConns)
	dbConn.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	dbConn.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	// verify connection; close underlying *sql.DB on failure
	if err := dbConn.Ping(); err != nil {
		_ = dbConn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return dbConn, nil
}

// initGorm shares the sqlx pool with gorm so both sides see one set of connections.
func initGorm(db *sqlx.DB) (*gorm.DB, error) {
	return gorm.Open(postgres.New(postgres.Config{Conn: db.DB}), &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Warn),
	})
}

func initStorage(ctx context.Context, cfg internal.StorageConfig, log *slog.Logger) (storage.DocumentStore, error) {
	if cfg.Driver == "s3" {
		return storage.NewS3StoreFromEnv(ctx, cfg.S3Bucket, cfg.S3Region, cfg.S3Prefix, log)
	}
	if err := os.MkdirAll(cfg.UploadDir, 0o750); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return storage.NewLocalStore(cfg.UploadDir, log), nil
}

func initDispatcher(cfg internal.MailConfig, log *slog.Logger) (*notification.Dispatcher, error) {
	renderer, err := notification.NewRenderer()
	if err != nil {
		return nil, err
	}

	var sender notification.Sender
	if cfg.Host == "" {
		log.Warn("mail host not configured, emails will only be logged")
		sender = notification.NewLogSender(log)
	} else {
		sender = notification.NewSMTPSender(notification.SMTPConfig{
			Host:     cfg.Host,
			Port:     cfg.Port,
			Username: cfg.Username,
			Password: cfg.Password,
			From:     cfg.From,
			Timeout:  cfg.Timeout,
		}, log)
	}

	return notification.NewDispatcher(renderer, sender, notification.DispatcherConfig{
		MaxWorkers:  cfg.Workers,
		QueueSize:   cfg.QueueSize,
		SendTimeout: cfg.Timeout,
	}, log), nil
}
