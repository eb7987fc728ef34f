package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/seu-repo/sigec-reports/internal/adapter/cache"
	"github.com/seu-repo/sigec-reports/internal/adapter/queue"
	"github.com/seu-repo/sigec-reports/internal/adapter/source"
	"github.com/seu-repo/sigec-reports/internal/adapter/vault"
	"github.com/seu-repo/sigec-reports/internal/domain"
	"github.com/seu-repo/sigec-reports/internal/ports"
	"github.com/seu-repo/sigec-reports/internal/service/auth"
	"github.com/seu-repo/sigec-reports/internal/service/report"
	"github.com/seu-repo/sigec-reports/pkg/config"
)

// TokenIssuer mints viewer tokens.
type TokenIssuer interface {
	GenerateAccessToken(viewer domain.Viewer) (string, error)
}

// App holds the services used by reportctl commands. Nil services are built
// from configuration before the first command runs.
type App struct {
	Reports ports.ReportService
	Tokens  TokenIssuer
	Events  EventSubscriber
	Log     *zap.Logger
	Out     io.Writer

	configFile string
	closers    []func() error
}

// NewRootCmd creates the top-level "reportctl" command.
func NewRootCmd(app *App) *cobra.Command {
	if app.Out == nil {
		app.Out = os.Stdout
	}
	if app.Log == nil {
		app.Log = zap.NewNop()
	}

	root := &cobra.Command{
		Use:           "reportctl",
		Short:         "Compute SIGEC-VE owner reports from the command line",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return app.init(cmd.Context())
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return app.Close()
		},
	}
	root.SetOut(app.Out)
	root.PersistentFlags().StringVar(&app.configFile, "config", "", "Config file (default ./configs/config.yaml)")

	root.AddCommand(
		newOwnerCmd(app),
		newTokenCmd(app),
		newWatchCmd(app),
	)

	return root
}

func (a *App) init(ctx context.Context) error {
	if a.Reports != nil {
		return nil
	}
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := config.LoadWithViper(viper.New(), a.configFile)
	if err != nil {
		return err
	}
	if err := vault.ResolveSecrets(ctx, cfg, a.Log); err != nil {
		return err
	}

	if a.Tokens == nil && cfg.JWT.Secret != "" {
		a.Tokens = auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.AccessTokenDuration, nil, a.Log)
	}

	sources, err := source.NewFromConfig(cfg, a.Log)
	if err != nil {
		return err
	}
	a.closers = append(a.closers, sources.Close)

	var reportCache ports.Cache
	if cfg.Redis.Enabled {
		reportCache = cache.NewFromConfig(cfg.Redis, a.Log)
		a.closers = append(a.closers, reportCache.Close)
	}

	mq, err := queue.NewFromConfig(cfg, a.Log)
	if err != nil {
		return err
	}
	if mq != nil {
		a.closers = append(a.closers, mq.Close)
		if a.Events == nil {
			a.Events = mq
		}
	}

	loc, err := cfg.Reports.Location()
	if err != nil {
		return err
	}

	a.Reports = report.NewService(sources.Sessions, sources.Stations, reportCache, mq, report.ServiceConfig{
		Paginator: report.PaginatorConfig{
			PageSize:    cfg.Reports.PageSize,
			MaxPages:    cfg.Reports.MaxPages,
			NewestFirst: cfg.Reports.NewestFirst,
		},
		CacheTTL: cfg.Reports.CacheTTL,
		Location: loc,
	}, a.Log)
	return nil
}

// Close releases connections opened by init, newest first.
func (a *App) Close() error {
	var firstErr error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("close: %w", err)
		}
	}
	a.closers = nil
	return firstErr
}
