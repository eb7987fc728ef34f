package vault

import (
	"context"

	"go.uber.org/zap"

	"github.com/seu-repo/sigec-reports/pkg/config"
)

// ResolveSecrets fills empty secret settings from vault. Values already set
// through config or env win.
func ResolveSecrets(ctx context.Context, cfg *config.Config, log *zap.Logger) error {
	if !cfg.Vault.Enabled {
		return nil
	}

	sm, err := NewSecretManager(cfg.Vault.Address, cfg.Vault.Token, log)
	if err != nil {
		return err
	}

	fields := []struct {
		target *string
		fetch  func(context.Context) (string, error)
		needed bool
	}{
		{&cfg.JWT.Secret, sm.GetJWTSecret, true},
		{&cfg.Database.URL, sm.GetDatabaseURL, cfg.Reports.Source == "postgres"},
		{&cfg.Reports.APIToken, sm.GetPlatformToken, cfg.Reports.Source == "api"},
	}

	for _, f := range fields {
		if *f.target != "" || !f.needed {
			continue
		}
		value, err := f.fetch(ctx)
		if err != nil {
			return err
		}
		*f.target = value
	}

	log.Info("Secrets resolved from vault", zap.String("address", cfg.Vault.Address))
	return nil
}
