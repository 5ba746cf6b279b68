package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Arisudan/Varshini-Industrries/internal/api"
	"github.com/Arisudan/Varshini-Industrries/internal/auth"
	"github.com/Arisudan/Varshini-Industrries/internal/catalog"
	"github.com/Arisudan/Varshini-Industrries/internal/categories"
	"github.com/Arisudan/Varshini-Industrries/internal/config"
	"github.com/Arisudan/Varshini-Industrries/internal/dashboard"
	"github.com/Arisudan/Varshini-Industrries/internal/intake"
	"github.com/Arisudan/Varshini-Industrries/internal/logging"
	"github.com/Arisudan/Varshini-Industrries/internal/notify"
	"github.com/Arisudan/Varshini-Industrries/internal/storage"
	"github.com/Arisudan/Varshini-Industrries/internal/store"
	"github.com/Arisudan/Varshini-Industrries/internal/storefront"
	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	sesv2 "github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	// Load environment variables from .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}
	logging.Setup(cfg.LogLevel)
	slog.Info("Varshini API starting", "env", cfg.Env, "store", cfg.StoreDriver, "auth_mode", cfg.AuthMode)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var awsCfg *aws.Config
	if needsAWS(cfg) {
		c, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.AWSRegion))
		if err != nil {
			slog.Error("Failed to load AWS config", "error", err)
			os.Exit(1)
		}
		awsCfg = &c
	}
	if cfg.SecretsARN != "" {
		if err := cfg.ApplySecrets(ctx, secretsmanager.NewFromConfig(*awsCfg)); err != nil {
			slog.Error("Failed to read secrets", "error", err)
			os.Exit(1)
		}
	}
	if err := cfg.Finalize(); err != nil {
		slog.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}

	st, err := store.Open(ctx, store.Options{
		Driver:      cfg.StoreDriver,
		FilePath:    cfg.DBFile,
		SQLitePath:  cfg.SQLitePath,
		DatabaseURL: cfg.DatabaseURL,
	})
	if err != nil {
		slog.Error("Failed to open store", "error", err)
		os.Exit(1)
	}
	defer st.Close()

	issuer := auth.NewTokenIssuer(cfg.JWTSecret, cfg.TokenTTL)
	sessions := auth.NewSessionManager(cfg.SessionKey, cfg.SessionTTL, cfg.CookieSecure, cfg.CookieDomain)
	strategy, err := auth.NewStrategy(cfg.AuthMode, issuer, sessions)
	if err != nil {
		slog.Error("Invalid auth mode", "error", err)
		os.Exit(1)
	}

	leads := intake.NewService(st, notifier(cfg, awsCfg))
	handler := api.NewHandler(api.Deps{
		Store:         st,
		Authenticator: auth.NewAuthenticator(st, issuer),
		Strategy:      strategy,
		Sessions:      sessions,
		AuthMode:      cfg.AuthMode,
		Catalog:       catalog.NewService(st),
		Intake:        leads,
		Categories:    categories.NewService(st),
		Dashboard:     dashboard.NewService(st),
		Carts:         storefront.NewCartStore(storefront.NewCookieStore(cfg.SessionKey, cfg.CookieSecure, cfg.CookieDomain)),
		Images:        &storage.Images{Uploader: uploader(cfg, awsCfg), MaxBytes: cfg.MaxUploadBytes},
		WhatsAppPhone: cfg.WhatsAppPhone,
	})

	if os.Getenv("GIN_MODE") == "" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := api.NewRouter(handler, api.RouterConfig{
		CORSOrigins: cfg.CORSOrigins,
		UploadDir:   cfg.UploadDir,
		Limiter:     api.NewRateLimiter(ctx, cfg.SubmitWindow),
	})

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		slog.Info("Server starting", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server failed to listen and serve", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	slog.Info("Shutting down server gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server shutdown failed", "error", err)
	}
	leads.Wait()
	slog.Info("Server exited gracefully.")
}

func needsAWS(cfg *config.Config) bool {
	return cfg.SecretsARN != "" || cfg.S3Bucket != "" ||
		(cfg.SESFromEmail != "" && len(cfg.NotifyEmailTo) > 0) || len(cfg.NotifySMSTo) > 0
}

// uploader stores images in S3 when a bucket is configured, falling back to
// the local upload directory.
func uploader(cfg *config.Config, awsCfg *aws.Config) storage.Uploader {
	local := storage.NewLocalUploader(cfg.UploadDir)
	if cfg.S3Bucket == "" || awsCfg == nil {
		return local
	}
	slog.Info("Product images stored in S3", "bucket", cfg.S3Bucket)
	return storage.NewS3Uploader(s3.NewFromConfig(*awsCfg), cfg.S3Bucket, cfg.AssetsBaseURL, local)
}

func notifier(cfg *config.Config, awsCfg *aws.Config) intake.LeadNotifier {
	if awsCfg == nil {
		return nil
	}
	var out notify.Multi
	if cfg.SESFromEmail != "" && len(cfg.NotifyEmailTo) > 0 {
		out = append(out, notify.NewEmailNotifier(sesv2.NewFromConfig(*awsCfg), cfg.SESFromEmail, cfg.NotifyEmailTo))
	}
	if len(cfg.NotifySMSTo) > 0 {
		out = append(out, notify.NewSMSNotifier(sns.NewFromConfig(*awsCfg), cfg.NotifySMSTo))
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
