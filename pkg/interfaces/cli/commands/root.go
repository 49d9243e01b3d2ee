package commands

import (
	"database/sql"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/vsinha/presupuesto/pkg/application/services"
	"github.com/vsinha/presupuesto/pkg/application/services/costing"
	"github.com/vsinha/presupuesto/pkg/domain/repositories"
	"github.com/vsinha/presupuesto/pkg/infrastructure/config"
	"github.com/vsinha/presupuesto/pkg/infrastructure/events"
	"github.com/vsinha/presupuesto/pkg/infrastructure/logging"
	csvloader "github.com/vsinha/presupuesto/pkg/infrastructure/repositories/csv"
	"github.com/vsinha/presupuesto/pkg/infrastructure/repositories/sqlite"
)

// App carries process-wide state shared by every command. Config and Logger
// are filled by the root command before any subcommand runs unless already set.
type App struct {
	ConfigPath string
	Config     *config.Config
	Logger     *zap.Logger

	logLevel string
	dbPath   string
	formula  string
}

// NewRootCmd creates the top-level "presupuesto" command and registers all
// subcommands against the provided App.
func NewRootCmd(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:           "presupuesto",
		Short:         "Construction cost estimation: APU pricing, shared prices and budget totals",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return app.init()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if app.Logger != nil {
				_ = app.Logger.Sync()
			}
		},
	}

	root.PersistentFlags().StringVar(&app.ConfigPath, "config", "presupuesto.yaml", "Path to YAML config file")
	root.PersistentFlags().StringVar(&app.logLevel, "log-level", "", "Override log level (debug, info, warn, error)")
	root.PersistentFlags().StringVar(&app.dbPath, "db", "", "Override SQLite database path")
	root.PersistentFlags().StringVar(&app.formula, "formula", "", "Override totals formula (tax_only, tax_and_profit)")

	root.AddCommand(
		newComputeCmd(app),
		newValidateCmd(app),
		newImportCmd(app),
		newEditCmd(app),
		newServeCmd(app),
	)

	return root
}

func (a *App) init() error {
	if a.Config == nil {
		cfg, err := config.Load(a.ConfigPath)
		if err != nil {
			return err
		}
		a.Config = cfg
	}

	// CLI flags win over file and environment
	if a.logLevel != "" {
		a.Config.Log.Level = a.logLevel
	}
	if a.dbPath != "" {
		a.Config.DBPath = a.dbPath
	}
	if a.formula != "" {
		a.Config.Totals.Formula = a.formula
	}
	if err := a.Config.Validate(); err != nil {
		return err
	}

	if a.Logger == nil {
		logger, err := logging.New(a.Config.Log.Level, a.Config.Log.Format)
		if err != nil {
			return err
		}
		a.Logger = logger
	}
	return nil
}

func (a *App) loader() *csvloader.Loader {
	return csvloader.NewLoaderWithConfig(csvloader.LoaderConfig{
		DefaultTaxPct:    a.Config.Totals.DefaultTaxPct,
		DefaultProfitPct: a.Config.Totals.DefaultProfitPct,
	})
}

// newService builds a budget service whose events are logged
func (a *App) newService(store repositories.Store) (*services.BudgetService, error) {
	formula, err := costing.ParseTotalsFormula(a.Config.Totals.Formula)
	if err != nil {
		return nil, err
	}

	eventStore := events.NewInMemoryEventStore(a.Logger)
	err = eventStore.Subscribe([]string{
		events.PriceSynchronizedEvent,
		events.LineEditedEvent,
		events.BudgetRecomputedEvent,
		events.PartidaPricingFailedEvent,
	}, events.HandlerFunc(func(e events.Event) error {
		a.Logger.Debug("event", zap.String("type", e.Type()), zap.String("budget", e.StreamID()), zap.Any("data", e.Data()))
		return nil
	}))
	if err != nil {
		return nil, err
	}

	return services.NewBudgetServiceWithConfig(store, services.BudgetServiceConfig{
		Engine:    costing.EngineConfig{TotalsFormula: formula},
		Publisher: eventStore,
		Logger:    a.Logger,
	}), nil
}

// openStore opens and migrates the configured SQLite database
func (a *App) openStore() (*sqlite.Store, *sql.DB, error) {
	db, err := sqlite.OpenAndMigrate(a.Config.DBPath, a.Logger)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open database %s: %w", a.Config.DBPath, err)
	}
	return sqlite.NewStore(db), db, nil
}
