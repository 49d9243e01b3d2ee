package commands

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/vsinha/presupuesto/pkg/application/services"
	"github.com/vsinha/presupuesto/pkg/application/services/costing"
	"github.com/vsinha/presupuesto/pkg/domain/entities"
)

// lineFlags addresses one resource line of a stored budget
type lineFlags struct {
	budgetID  string
	partidaID string
	lineID    string
}

func (f *lineFlags) register(cmd *cobra.Command, withLine bool) {
	cmd.Flags().StringVar(&f.budgetID, "budget", "", "Budget ID")
	cmd.Flags().StringVar(&f.partidaID, "partida", "", "Partida ID")
	_ = cmd.MarkFlagRequired("budget")
	_ = cmd.MarkFlagRequired("partida")
	if withLine {
		cmd.Flags().StringVar(&f.lineID, "line", "", "Resource line ID")
		_ = cmd.MarkFlagRequired("line")
	}
}

func (f *lineFlags) ref() costing.LineRef {
	return costing.LineRef{PartidaID: entities.PartidaID(f.partidaID), LineID: entities.LineID(f.lineID)}
}

func newEditCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "edit",
		Short: "Edit a stored budget and recompute it",
	}
	cmd.AddCommand(
		newEditPriceCmd(app),
		newEditOverrideCmd(app),
		newEditCrewCmd(app),
		newEditQuantityCmd(app),
		newEditAPUCmd(app),
	)
	return cmd
}

// runEdit opens the database, applies one edit and reports the new total
func (a *App) runEdit(cmd *cobra.Command, edit func(ctx context.Context, s *services.BudgetService) (*services.EditResult, error)) error {
	store, db, err := a.openStore()
	if err != nil {
		return err
	}
	defer db.Close()

	service, err := a.newService(store)
	if err != nil {
		return err
	}

	result, err := edit(cmd.Context(), service)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	for _, ref := range result.Changed {
		fmt.Fprintf(out, "✏️  %s\n", ref)
	}
	fmt.Fprintf(out, "Subtotal %s  Total %s\n",
		result.Budget.BudgetSubtotal.StringFixed(entities.MoneyPlaces),
		result.Budget.Total.StringFixed(entities.MoneyPlaces))
	return nil
}

func parseValue(name, s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid %s: %s", name, s)
	}
	return d, nil
}

func newEditPriceCmd(app *App) *cobra.Command {
	var line lineFlags
	var price string

	cmd := &cobra.Command{
		Use:   "price",
		Short: "Set a line price; non-overridden lines of the same resource follow",
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := parseValue("price", price)
			if err != nil {
				return err
			}
			return app.runEdit(cmd, func(ctx context.Context, s *services.BudgetService) (*services.EditResult, error) {
				return s.EditLinePrice(ctx, entities.BudgetID(line.budgetID), line.ref(), p)
			})
		},
	}
	line.register(cmd, true)
	cmd.Flags().StringVar(&price, "price", "", "New price")
	_ = cmd.MarkFlagRequired("price")
	return cmd
}

func newEditOverrideCmd(app *App) *cobra.Command {
	var line lineFlags
	var price string
	var release bool

	cmd := &cobra.Command{
		Use:   "override",
		Short: "Pin a line to its own price, or release it back to the shared price (--release)",
		RunE: func(cmd *cobra.Command, args []string) error {
			p := decimal.Zero
			if !release {
				var err error
				if p, err = parseValue("price", price); err != nil {
					return err
				}
			}
			return app.runEdit(cmd, func(ctx context.Context, s *services.BudgetService) (*services.EditResult, error) {
				return s.SetLineOverride(ctx, entities.BudgetID(line.budgetID), line.ref(), !release, p)
			})
		},
	}
	line.register(cmd, true)
	cmd.Flags().StringVar(&price, "price", "", "Pinned price")
	cmd.Flags().BoolVar(&release, "release", false, "Remove the override")
	return cmd
}

func newEditCrewCmd(app *App) *cobra.Command {
	var line lineFlags
	var crew string

	cmd := &cobra.Command{
		Use:   "crew",
		Short: "Set the crew size of an hh/hm line",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := parseValue("crew size", crew)
			if err != nil {
				return err
			}
			return app.runEdit(cmd, func(ctx context.Context, s *services.BudgetService) (*services.EditResult, error) {
				return s.EditLineCrew(ctx, entities.BudgetID(line.budgetID), line.ref(), c)
			})
		},
	}
	line.register(cmd, true)
	cmd.Flags().StringVar(&crew, "crew", "", "Crew size")
	_ = cmd.MarkFlagRequired("crew")
	return cmd
}

func newEditQuantityCmd(app *App) *cobra.Command {
	var line lineFlags
	var quantity string

	cmd := &cobra.Command{
		Use:   "quantity",
		Short: "Set the quantity of a line",
		RunE: func(cmd *cobra.Command, args []string) error {
			q, err := parseValue("quantity", quantity)
			if err != nil {
				return err
			}
			return app.runEdit(cmd, func(ctx context.Context, s *services.BudgetService) (*services.EditResult, error) {
				return s.EditLineQuantity(ctx, entities.BudgetID(line.budgetID), line.ref(), q)
			})
		},
	}
	line.register(cmd, true)
	cmd.Flags().StringVar(&quantity, "quantity", "", "Quantity")
	_ = cmd.MarkFlagRequired("quantity")
	return cmd
}

func newEditAPUCmd(app *App) *cobra.Command {
	var line lineFlags
	var yield, shift string

	cmd := &cobra.Command{
		Use:   "apu",
		Short: "Set the yield and shift length of a partida's analysis",
		RunE: func(cmd *cobra.Command, args []string) error {
			y, err := parseValue("yield", yield)
			if err != nil {
				return err
			}
			sh, err := parseValue("shift length", shift)
			if err != nil {
				return err
			}
			return app.runEdit(cmd, func(ctx context.Context, s *services.BudgetService) (*services.EditResult, error) {
				return s.EditYieldShift(ctx, entities.BudgetID(line.budgetID), entities.PartidaID(line.partidaID), y, sh)
			})
		},
	}
	line.register(cmd, false)
	cmd.Flags().StringVar(&yield, "yield", "", "Units produced per shift")
	cmd.Flags().StringVar(&shift, "shift", "8", "Shift length in hours")
	_ = cmd.MarkFlagRequired("yield")
	return cmd
}
