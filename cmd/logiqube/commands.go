package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/jaminalder/logiqube/internal/app"
	"github.com/jaminalder/logiqube/internal/cli"
	"github.com/jaminalder/logiqube/internal/config"
	"github.com/jaminalder/logiqube/internal/domain"
	"github.com/jaminalder/logiqube/internal/logging"
	"github.com/jaminalder/logiqube/internal/web"
)

type rootOptions struct {
	configPath string
	logLevel   string
	cfg        config.Config
	log        *slog.Logger
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:           "logiqube",
		Short:         "4x4x4 three-dimensional tic-tac-toe",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(opts.configPath)
			if err != nil {
				return err
			}
			if opts.logLevel != "" {
				cfg.Log.Level = opts.logLevel
				if err := cfg.Validate(); err != nil {
					return err
				}
			}
			opts.cfg = cfg
			opts.log = logging.New(cfg.Log, cmd.ErrOrStderr())
			return nil
		},
	}
	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "path to a YAML config file")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "override log.level (debug, info, warn, error)")

	root.AddCommand(newPlayCmd(opts), newServeCmd(opts), newLinesCmd())
	return root
}

func newPlayCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "play",
		Short: "Play a hot-seat game in the terminal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			s := cli.NewSession(cmd.InOrStdin(), cmd.OutOrStdout(), opts.log, opts.cfg.Hints.ThreatLevel)
			err := s.Run(ctx)
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		},
	}
}

func newServeCmd(opts *rootOptions) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the board to a local browser",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr != "" {
				opts.cfg.Server.Addr = addr
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx, opts.cfg, opts.log)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides server.addr)")
	return cmd
}

func serve(ctx context.Context, cfg config.Config, log *slog.Logger) error {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	svc := app.NewService()
	svc.SetLogger(log)
	svc.SetMetrics(app.NewMetrics(reg))

	handler := web.NewServer(svc, web.Options{
		Logger:      log,
		Heartbeat:   cfg.Server.EventHeartbeat,
		ThreatLevel: cfg.Hints.ThreatLevel,
		Metrics:     promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
	})
	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("starting server", "address", cfg.Server.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("listen on %s: %w", cfg.Server.Addr, err)
	case <-ctx.Done():
	}

	log.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func newLinesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "lines",
		Short: "List the 76 winning lines by family",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return printLines(cmd.OutOrStdout())
		},
	}
}

func printLines(w io.Writer) error {
	lines := domain.Lines()
	if err := domain.ValidateLines(lines); err != nil {
		return err
	}
	counts := domain.FamilyCounts()
	for f := domain.FamilyRow; f <= domain.FamilySpaceDiagonal; f++ {
		fmt.Fprintf(w, "%-18s %2d\n", f, counts[f])
	}
	fmt.Fprintf(w, "%-18s %2d\n\n", "total", len(lines))
	for i, l := range lines {
		f, _ := domain.FamilyOf(i)
		fmt.Fprintf(w, "%2d %-18s %v %v %v %v\n", i, f, l[0], l[1], l[2], l[3])
	}
	return nil
}
