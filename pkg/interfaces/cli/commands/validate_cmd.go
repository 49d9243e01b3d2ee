package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vsinha/presupuesto/pkg/domain/entities"
	domainservices "github.com/vsinha/presupuesto/pkg/domain/services"
	"github.com/vsinha/presupuesto/pkg/infrastructure/repositories/memory"
)

func newValidateCmd(app *App) *cobra.Command {
	var scenarioDir, budgetID string

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check titles, partidas and nested references for structural problems",
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := app.validate(cmd.Context(), scenarioDir, entities.BudgetID(budgetID))
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if result.Valid() {
				fmt.Fprintln(out, "✅ Budget structure is valid")
				return nil
			}
			fmt.Fprintf(out, "❌ %d structural problem(s):\n", len(result.Errors))
			for _, e := range result.Errors {
				fmt.Fprintf(out, "  - %s\n", e)
			}
			return fmt.Errorf("validation failed: %s", strings.Join(result.Errors, "; "))
		},
	}

	cmd.Flags().StringVar(&scenarioDir, "scenario", "", "Scenario directory with CSV files")
	cmd.Flags().StringVar(&budgetID, "budget", "", "Budget ID stored in the database")

	return cmd
}

func (a *App) validate(ctx context.Context, scenarioDir string, budgetID entities.BudgetID) (*domainservices.ValidationResult, error) {
	if scenarioDir != "" {
		scenario, err := a.loader().LoadScenario(scenarioDir)
		if err != nil {
			return nil, err
		}
		store := memory.NewStore(len(scenario.Partidas))
		if err := scenario.Store(ctx, store); err != nil {
			return nil, err
		}
		service, err := a.newService(store)
		if err != nil {
			return nil, err
		}
		return service.Validate(ctx, scenario.Budget.ID)
	}

	if budgetID == "" {
		return nil, fmt.Errorf("either --scenario or --budget is required")
	}
	store, db, err := a.openStore()
	if err != nil {
		return nil, err
	}
	defer db.Close()

	service, err := a.newService(store)
	if err != nil {
		return nil, err
	}
	return service.Validate(ctx, budgetID)
}
