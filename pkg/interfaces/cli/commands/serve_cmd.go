package commands

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/vsinha/presupuesto/pkg/interfaces/httpapi"
)

func newServeCmd(app *App) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the budget HTTP API over the SQLite database",
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr == "" {
				addr = app.Config.ListenAddr
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

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			return httpapi.NewServer(service, app.Logger).ListenAndServe(ctx, addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (defaults to listen_addr from config)")
	return cmd
}
