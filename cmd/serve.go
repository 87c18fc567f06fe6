package cmd

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"gorm.io/gorm"

	"fintrek-backend/catalog"
	"fintrek-backend/config"
	"fintrek-backend/controllers"
	"fintrek-backend/controllers/analytics"
	"fintrek-backend/controllers/assistant"
	"fintrek-backend/controllers/authentication"
	"fintrek-backend/controllers/community"
	"fintrek-backend/controllers/gamification"
	"fintrek-backend/controllers/learning"
	"fintrek-backend/controllers/notifications"
	"fintrek-backend/controllers/profile"
	"fintrek-backend/controllers/quizzes"
	"fintrek-backend/controllers/transactions"
	"fintrek-backend/services"
)

func newServeCommand() *cobra.Command {
	var autoMigrate bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, db, err := openDB()
			if err != nil {
				return err
			}
			if autoMigrate {
				if err := migrate(db); err != nil {
					return err
				}
			}
			return serve(cmd.Context(), cfg, db)
		},
	}
	cmd.Flags().BoolVar(&autoMigrate, "migrate", false, "migrate the database before serving")
	return cmd
}

func newCatalog(cfg config.Config, db *gorm.DB) (catalog.Catalog, error) {
	if cfg.CatalogSource == "supabase" {
		return catalog.NewSupabase(cfg.SupabaseURL, cfg.SupabaseKey)
	}
	return catalog.NewDatabase(db), nil
}

// wire builds every handler from the configuration.
func wire(ctx context.Context, cfg config.Config, db *gorm.DB) (*controllers.Server, *services.Notifier, error) {
	content, err := newCatalog(cfg, db)
	if err != nil {
		return nil, nil, err
	}

	notifier := &services.Notifier{DB: db}
	if cfg.PushEnabled() {
		notifier.Pusher = &services.WebPush{
			PublicKey:  cfg.VAPIDPublicKey,
			PrivateKey: cfg.VAPIDPrivateKey,
			Subject:    cfg.VAPIDSubject,
		}
	}
	game := &services.Gamification{DB: db, Catalog: content, Notifier: notifier}

	tokens := authentication.NewTokenIssuer(cfg.JWTSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)
	auth := &authentication.Handler{
		DB:          db,
		Tokens:      tokens,
		Provisioner: game,
		UserInfoURL: authentication.DefaultGoogleUserInfoURL,
	}
	if cfg.GoogleOAuthEnabled() {
		auth.Google = authentication.NewGoogleConfig(cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.GoogleRedirectURL)
		auth.Sessions = config.NewSessionStore(cfg)
	}

	profiles := &profile.Handler{DB: db, Catalog: content, Gamification: game}
	if cfg.DriveEnabled() {
		avatars, err := services.NewDriveAvatars(ctx, cfg.DriveCredentialsFile, cfg.DriveFolderID)
		if err != nil {
			return nil, nil, err
		}
		profiles.Avatars = avatars
	}

	var tutor assistant.Asker
	if cfg.GeminiAPIKey != "" {
		tutor = &services.Assistant{APIKey: cfg.GeminiAPIKey, Model: cfg.GeminiModel, BaseURL: cfg.GeminiBaseURL}
	}

	return &controllers.Server{
		Version:        version,
		AllowedOrigins: cfg.CORSAllowedOrigins,
		Guard:          &authentication.Guard{Tokens: tokens, DB: db},
		Auth:           auth,
		Profile:        profiles,
		Transactions:   &transactions.Handler{DB: db},
		Analytics:      &analytics.Handler{DB: db},
		Learning:       &learning.Handler{DB: db, Catalog: content, Gamification: game},
		Quizzes:        &quizzes.Handler{DB: db, Catalog: content, Gamification: game},
		Gamification:   &gamification.Handler{DB: db, Gamification: game},
		Community:      &community.Handler{DB: db, Notifier: notifier},
		Notifications:  &notifications.Handler{DB: db, VAPIDPublicKey: cfg.VAPIDPublicKey},
		Assistant:      &assistant.Handler{Assistant: tutor},
	}, notifier, nil
}

func serve(ctx context.Context, cfg config.Config, db *gorm.DB) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := services.SetupTracing(ctx, "fintrek-backend", cfg.OTelEndpoint, cfg.OTelEnabled)
	if err != nil {
		return fmt.Errorf("tracing: %w", err)
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(flushCtx); err != nil {
			log.Printf("tracing shutdown: %v", err)
		}
	}()

	server, notifier, err := wire(ctx, cfg, db)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           otelhttp.NewHandler(server.Routes(), "fintrek"),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("FinTrek Backend server is running on port %s", cfg.Port)
		log.Printf("Environment: %s", cfg.AppEnv)
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

	log.Println("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	notifier.Wait()
	return nil
}
