package cmd

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	httpLayer "loan-simulator/http"
	"loan-simulator/scheduler"
)

func newServeCmd(root *rootFlags) *cobra.Command {
	var (
		addr      string
		noRefresh bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the JSON API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(root)
			if err != nil {
				return err
			}
			defer a.Close()

			sc := a.cfg.Server
			if addr != "" {
				sc.Addr = addr
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if a.cfg.Scraper.RefreshCron != "" && !noRefresh {
				refresher, err := scheduler.NewRateRefresher(a.cfg.Scraper.RefreshCron, a.rates,
					a.cfg.Scraper.Timeout.Duration*2, a.logger.Named("refresher"))
				if err != nil {
					return err
				}
				if err := refresher.Start(ctx); err != nil {
					return err
				}
				defer refresher.Stop()
			}

			var limiter *httpLayer.RateLimiter
			if sc.RateLimit > 0 {
				limiter = httpLayer.NewRateLimiter(sc.RateLimit, sc.RateWindow.Duration)
				defer limiter.Stop()
			}

			api := httpLayer.NewServer(httpLayer.Options{
				Loans:    a.loans,
				Compare:  a.compare,
				Rates:    a.rates,
				Sessions: a.sessions,
				Limiter:  limiter,
				Metrics:  sc.Metrics,
				Timeout:  sc.WriteTimeout.Duration,
				Logger:   a.logger.Named("http"),
			})

			server := &http.Server{
				Addr:         sc.Addr,
				Handler:      api.Handler(),
				ReadTimeout:  sc.ReadTimeout.Duration,
				WriteTimeout: sc.WriteTimeout.Duration,
				IdleTimeout:  sc.IdleTimeout.Duration,
			}

			serverErr := make(chan error, 1)
			go func() {
				a.logger.Info("API listening", zap.String("addr", sc.Addr))
				if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					serverErr <- err
				}
			}()

			select {
			case err := <-serverErr:
				return err
			case <-ctx.Done():
				a.logger.Info("shutting down server")
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), sc.ShutdownTimeout.Duration)
			defer cancel()

			if err := server.Shutdown(shutdownCtx); err != nil {
				a.logger.Error("server shutdown", zap.Error(err))
				return err
			}
			a.logger.Info("server exited")
			return nil
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (overrides the configured one)")
	cmd.Flags().BoolVar(&noRefresh, "no-refresh", false, "Do not refresh rates on the configured cron schedule")
	return cmd
}
