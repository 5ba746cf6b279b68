package config

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("APP_ENV", "")
	t.Setenv("AUTH_MODE", "")
	t.Setenv("JWT_TTL", "")
	t.Setenv("CORS_ORIGINS", "http://a.test, http://b.test,")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "3000", cfg.Port)
	assert.Equal(t, "hybrid", cfg.AuthMode)
	assert.Equal(t, time.Hour, cfg.TokenTTL)
	assert.Equal(t, int64(10<<20), cfg.MaxUploadBytes)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORSOrigins)
	assert.False(t, cfg.IsProduction())
}

func TestLoad_RejectsBadValues(t *testing.T) {
	t.Setenv("AUTH_MODE", "magic")
	_, err := Load()
	assert.Error(t, err)

	t.Setenv("AUTH_MODE", "token")
	t.Setenv("JWT_TTL", "soon")
	_, err = Load()
	assert.Error(t, err)
}

func TestLoad_InvalidPortFallsBack(t *testing.T) {
	t.Setenv("PORT", "http")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "3000", cfg.Port)
}

func TestFinalize_ProductionRequiresSecrets(t *testing.T) {
	cfg := &Config{Env: "production", JWTSecret: []byte("x")}
	err := cfg.Finalize()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SESSION_KEY")
}

func TestFinalize_DevelopmentGeneratesKeys(t *testing.T) {
	cfg := &Config{Env: "development"}
	require.NoError(t, cfg.Finalize())
	assert.Len(t, cfg.JWTSecret, 32)
	assert.Len(t, cfg.SessionKey, 32)
}

type fakeSecrets struct {
	value string
	err   error
	asked string
}

func (f *fakeSecrets) GetSecretValue(_ context.Context, in *secretsmanager.GetSecretValueInput, _ ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error) {
	f.asked = aws.ToString(in.SecretId)
	if f.err != nil {
		return nil, f.err
	}
	return &secretsmanager.GetSecretValueOutput{SecretString: aws.String(f.value)}, nil
}

func TestApplySecrets(t *testing.T) {
	sm := &fakeSecrets{value: `{"JWT_SECRET":"from-sm","SESSION_KEY":"sess","DATABASE_URL":"postgres://x"}`}
	cfg := &Config{SecretsARN: "arn:secret", SessionKey: []byte("env-wins")}

	require.NoError(t, cfg.ApplySecrets(context.Background(), sm))
	assert.Equal(t, "arn:secret", sm.asked)
	assert.Equal(t, "from-sm", string(cfg.JWTSecret))
	assert.Equal(t, "env-wins", string(cfg.SessionKey))
	assert.Equal(t, "postgres://x", cfg.DatabaseURL)
}

func TestApplySecrets_SkippedWithoutARN(t *testing.T) {
	sm := &fakeSecrets{err: errors.New("should not be called")}
	require.NoError(t, (&Config{}).ApplySecrets(context.Background(), sm))
	assert.Empty(t, sm.asked)
}

func TestApplySecrets_Errors(t *testing.T) {
	cfg := &Config{SecretsARN: "arn"}
	assert.Error(t, cfg.ApplySecrets(context.Background(), &fakeSecrets{err: errors.New("denied")}))
	assert.Error(t, cfg.ApplySecrets(context.Background(), &fakeSecrets{value: "not json"}))
}
