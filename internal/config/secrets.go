package config

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
)

// SecretsClient is the part of the Secrets Manager API used here.
type SecretsClient interface {
	GetSecretValue(ctx context.Context, in *secretsmanager.GetSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error)
}

type secretPayload struct {
	JWTSecret   string `json:"JWT_SECRET"`
	SessionKey  string `json:"SESSION_KEY"`
	DatabaseURL string `json:"DATABASE_URL"`
}

// ApplySecrets fills secrets from a JSON Secrets Manager entry.
// Values already present in the environment win.
func (c *Config) ApplySecrets(ctx context.Context, sm SecretsClient) error {
	if c.SecretsARN == "" {
		return nil
	}
	out, err := sm.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{SecretId: aws.String(c.SecretsARN)})
	if err != nil {
		return fmt.Errorf("get secret: %w", err)
	}
	var payload secretPayload
	if err := json.Unmarshal([]byte(aws.ToString(out.SecretString)), &payload); err != nil {
		return fmt.Errorf("parse secret: %w", err)
	}
	if len(c.JWTSecret) == 0 && payload.JWTSecret != "" {
		c.JWTSecret = []byte(payload.JWTSecret)
	}
	if len(c.SessionKey) == 0 && payload.SessionKey != "" {
		c.SessionKey = []byte(payload.SessionKey)
	}
	if c.DatabaseURL == "" {
		c.DatabaseURL = payload.DatabaseURL
	}
	return nil
}
