package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/apodwikat/abtest/internal/web"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the web dashboard",
	Long: `Start the dashboard and JSON API.

Examples:
  abtest serve                    # Listen on ABTEST_ADDR (default :8050)
  abtest serve --addr :3000       # Listen on port 3000
  abtest serve --dataset data.csv # Serve a CSV export instead of the default workbook`,
	RunE: runServe,
}

var serveAddr string

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVarP(&serveAddr, "addr", "a", "", "Address to listen on, overrides ABTEST_ADDR")
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := NewAppContext(ctx, settings, appLog, appOptions{dataset: true, history: true, metrics: true})
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := app.Close(closeCtx); err != nil {
			appLog.Warn("shutdown incomplete", zap.Error(err))
		}
	}()

	addr := settings.Addr
	if serveAddr != "" {
		addr = serveAddr
	}

	var opts []web.Option
	if app.MetricsHandler != nil {
		opts = append(opts, web.WithMetricsHandler(app.MetricsHandler))
	}
	server := web.NewServer(addr, app.Service, app.Charts, appLog, opts...)
	return server.Start(ctx)
}
