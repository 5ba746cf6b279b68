package main

import (
	"context"
	"fmt"
	"os"

	"github.com/Arisudan/Varshini-Industrries/internal/config"
	"github.com/Arisudan/Varshini-Industrries/internal/logging"
	"github.com/Arisudan/Varshini-Industrries/internal/mediaaudit"
	"github.com/Arisudan/Varshini-Industrries/internal/storage"
	"github.com/Arisudan/Varshini-Industrries/internal/store"
	"github.com/aws/aws-lambda-go/lambda"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
)

func handler(ctx context.Context, ev mediaaudit.Event) (mediaaudit.Result, error) {
	cfg, err := config.Load()
	if err != nil {
		return mediaaudit.Result{}, err
	}
	if cfg.S3Bucket == "" {
		return mediaaudit.Result{}, fmt.Errorf("S3_BUCKET env var is required")
	}
	if ev.Prefix == "" {
		ev.Prefix = os.Getenv("AUDIT_PREFIX")
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.AWSRegion))
	if err != nil {
		return mediaaudit.Result{}, err
	}
	// DATABASE_URL via Secrets Manager
	if err := cfg.ApplySecrets(ctx, secretsmanager.NewFromConfig(awsCfg)); err != nil {
		return mediaaudit.Result{}, err
	}

	st, err := store.Open(ctx, store.Options{
		Driver:      cfg.StoreDriver,
		FilePath:    cfg.DBFile,
		SQLitePath:  cfg.SQLitePath,
		DatabaseURL: cfg.DatabaseURL,
	})
	if err != nil {
		return mediaaudit.Result{}, err
	}
	defer st.Close()

	bucket := storage.NewS3Uploader(s3.NewFromConfig(awsCfg), cfg.S3Bucket, cfg.AssetsBaseURL, nil)
	return mediaaudit.New(st, bucket).Run(ctx, ev)
}

func main() {
	logging.Setup(os.Getenv("LOG_LEVEL"))
	lambda.Start(handler)
}
