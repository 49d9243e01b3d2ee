package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/vsinha/presupuesto/pkg/domain/entities"
	"github.com/vsinha/presupuesto/pkg/infrastructure/repositories/memory"
	"github.com/vsinha/presupuesto/pkg/interfaces/cli/output"
)

type computeOptions struct {
	scenarios []string
	budgetID  string
	format    string
	outputDir string
	verbose   bool
}

func newComputeCmd(app *App) *cobra.Command {
	var opts computeOptions

	cmd := &cobra.Command{
		Use:   "compute",
		Short: "Price every partida and print title subtotals and budget totals",
		Long: `Compute prices one or more CSV scenario directories (--scenario, repeatable;
scenarios are computed concurrently) or a budget stored in the SQLite
database (--budget). Stored budgets get their computed prices written back.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			reports, timings, err := app.computeReports(cmd.Context(), opts)
			if err != nil {
				return err
			}
			for i, report := range reports {
				if i > 0 && opts.format == output.FormatText {
					fmt.Fprintln(cmd.OutOrStdout())
				}
				cfg := output.Config{
					Format:      opts.format,
					OutputDir:   opts.outputDir,
					Verbose:     opts.verbose,
					ComputeTime: timings[i],
				}
				if err := output.Generate(cmd.OutOrStdout(), report, cfg); err != nil {
					return err
				}
			}
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&opts.scenarios, "scenario", nil, "Scenario directory with CSV files (repeatable)")
	cmd.Flags().StringVar(&opts.budgetID, "budget", "", "Budget ID stored in the database")
	cmd.Flags().StringVar(&opts.format, "format", output.FormatText, "Output format: text, json, yaml, csv")
	cmd.Flags().StringVar(&opts.outputDir, "output", "", "Output directory for results (optional)")
	cmd.Flags().BoolVar(&opts.verbose, "verbose", false, "Include shared prices and timing")

	return cmd
}

func (a *App) computeReports(ctx context.Context, opts computeOptions) ([]output.Report, []time.Duration, error) {
	switch {
	case len(opts.scenarios) > 0 && opts.budgetID != "":
		return nil, nil, fmt.Errorf("use either --scenario or --budget, not both")
	case len(opts.scenarios) > 0:
		return a.computeScenarios(ctx, opts.scenarios)
	case opts.budgetID != "":
		report, elapsed, err := a.computeStored(ctx, entities.BudgetID(opts.budgetID))
		if err != nil {
			return nil, nil, err
		}
		return []output.Report{report}, []time.Duration{elapsed}, nil
	default:
		return nil, nil, fmt.Errorf("either --scenario or --budget is required")
	}
}

// computeScenarios prices each scenario in its own in-memory store
func (a *App) computeScenarios(ctx context.Context, dirs []string) ([]output.Report, []time.Duration, error) {
	reports := make([]output.Report, len(dirs))
	timings := make([]time.Duration, len(dirs))

	g, ctx := errgroup.WithContext(ctx)
	for i, dir := range dirs {
		i, dir := i, dir
		g.Go(func() error {
			scenario, err := a.loader().LoadScenario(dir)
			if err != nil {
				return fmt.Errorf("scenario %s: %w", dir, err)
			}

			store := memory.NewStore(len(scenario.Partidas))
			if err := scenario.Store(ctx, store); err != nil {
				return fmt.Errorf("scenario %s: %w", dir, err)
			}
			service, err := a.newService(store)
			if err != nil {
				return err
			}

			start := time.Now()
			result, err := service.Compute(ctx, scenario.Budget.ID)
			if err != nil {
				return fmt.Errorf("scenario %s: %w", dir, err)
			}
			timings[i] = time.Since(start)

			snapshot, err := service.LoadSnapshot(ctx, scenario.Budget.ID)
			if err != nil {
				return err
			}
			reports[i] = output.Report{Snapshot: snapshot, Result: result}

			a.Logger.Debug("scenario computed", zap.String("dir", dir), zap.Duration("elapsed", timings[i]))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return reports, timings, nil
}

func (a *App) computeStored(ctx context.Context, budgetID entities.BudgetID) (output.Report, time.Duration, error) {
	store, db, err := a.openStore()
	if err != nil {
		return output.Report{}, 0, err
	}
	defer db.Close()

	service, err := a.newService(store)
	if err != nil {
		return output.Report{}, 0, err
	}

	start := time.Now()
	result, err := service.Compute(ctx, budgetID)
	if err != nil {
		return output.Report{}, 0, err
	}
	elapsed := time.Since(start)

	snapshot, err := service.LoadSnapshot(ctx, budgetID)
	if err != nil {
		return output.Report{}, 0, err
	}
	return output.Report{Snapshot: snapshot, Result: result}, elapsed, nil
}
