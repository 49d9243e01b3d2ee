package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/vsinha/presupuesto/pkg/domain/entities"
)

func newImportCmd(app *App) *cobra.Command {
	var scenarios []string
	var compute bool

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Load CSV scenario directories into the SQLite database",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(scenarios) == 0 {
				return fmt.Errorf("at least one --scenario is required")
			}

			store, db, err := app.openStore()
			if err != nil {
				return err
			}
			defer db.Close()

			service, err := app.newService(store)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			for _, dir := range scenarios {
				scenario, err := app.loader().LoadScenario(dir)
				if err != nil {
					return fmt.Errorf("scenario %s: %w", dir, err)
				}
				if err := scenario.Store(ctx, store); err != nil {
					return fmt.Errorf("scenario %s: %w", dir, err)
				}
				app.Logger.Info("scenario imported",
					zap.String("dir", dir),
					zap.String("budget", string(scenario.Budget.ID)),
					zap.Int("partidas", len(scenario.Partidas)))

				msg := fmt.Sprintf("📥 Imported %s (%s) from %s", scenario.Budget.ID, scenario.Budget.Name, dir)
				if compute {
					result, err := service.Compute(ctx, scenario.Budget.ID)
					if err != nil {
						return fmt.Errorf("budget %s: %w", scenario.Budget.ID, err)
					}
					msg += fmt.Sprintf(", total %s", result.Total.StringFixed(entities.MoneyPlaces))
				}
				fmt.Fprintln(cmd.OutOrStdout(), msg)
			}
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&scenarios, "scenario", nil, "Scenario directory with CSV files (repeatable)")
	cmd.Flags().BoolVar(&compute, "compute", true, "Compute and store prices after importing")

	return cmd
}
