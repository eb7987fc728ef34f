package vault

import (
	"context"
	"fmt"

	"github.com/hashicorp/vault/api"
	"go.uber.org/zap"
)

const (
	databasePath = "secret/data/database"
	jwtPath      = "secret/data/jwt"
	platformPath = "secret/data/platform"
)

type SecretManager struct {
	client *api.Client
	log    *zap.Logger
}

func NewSecretManager(address, token string, log *zap.Logger) (*SecretManager, error) {
	config := api.DefaultConfig()
	config.Address = address

	client, err := api.NewClient(config)
	if err != nil {
		return nil, fmt.Errorf("failed to create vault client: %w", err)
	}

	client.SetToken(token)

	return &SecretManager{client: client, log: log}, nil
}

func (sm *SecretManager) GetDatabaseURL(ctx context.Context) (string, error) {
	return sm.read(ctx, databasePath, "connection_string")
}

func (sm *SecretManager) GetJWTSecret(ctx context.Context) (string, error) {
	return sm.read(ctx, jwtPath, "secret")
}

// GetPlatformToken returns the service token for the platform history API.
func (sm *SecretManager) GetPlatformToken(ctx context.Context) (string, error) {
	return sm.read(ctx, platformPath, "api_token")
}

// read fetches one string field of a KV v2 secret.
func (sm *SecretManager) read(ctx context.Context, path, field string) (string, error) {
	secret, err := sm.client.Logical().ReadWithContext(ctx, path)
	if err != nil {
		return "", fmt.Errorf("vault read %s: %w", path, err)
	}
	if secret == nil || secret.Data == nil {
		return "", fmt.Errorf("vault secret %s not found", path)
	}

	data, ok := secret.Data["data"].(map[string]interface{})
	if !ok {
		return "", fmt.Errorf("vault secret %s has no data", path)
	}

	value, ok := data[field].(string)
	if !ok || value == "" {
		return "", fmt.Errorf("vault secret %s has no %q", path, field)
	}

	sm.log.Debug("Secret loaded from vault", zap.String("path", path), zap.String("field", field))
	return value, nil
}
