// Moodmate: a mood-aware daily companion for adults with ADHD.
//
// One binary serves the HTTP API used by the app (chat streaming, Google
// sign-in, AI connection tests) and, optionally, an MCP server on stdio
// exposing the same stores to AI tools.
//
// Usage:
//
//	moodmate serve         # HTTP API
//	moodmate serve --mcp   # HTTP API plus MCP on stdio
//	moodmate mcp           # MCP on stdio only
//	moodmate config        # Print the effective configuration
//	moodmate version       # Print the version
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/HendryAvila/moodmate/internal/app"
	"github.com/HendryAvila/moodmate/internal/config"
	"github.com/HendryAvila/moodmate/internal/httpapi"
	"github.com/HendryAvila/moodmate/internal/logging"
	mmserver "github.com/HendryAvila/moodmate/internal/server"
	"github.com/HendryAvila/moodmate/internal/updater"
	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var cfgPath string

	root := &cobra.Command{
		Use:           "moodmate",
		Short:         "Moodmate, a mood-aware daily companion",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&cfgPath, "config", "", "path to moodmate.yaml (default: ./moodmate.yaml or ~/.moodmate/moodmate.yaml)")

	var withMCP bool
	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), cfgPath, true, withMCP)
		},
	}
	serveCmd.Flags().BoolVar(&withMCP, "mcp", false, "also serve MCP on stdio")

	mcpCmd := &cobra.Command{
		Use:   "mcp",
		Short: "Start the MCP server (stdio transport)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), cfgPath, false, true)
		},
	}

	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration with secrets masked",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(cfgPath)
			if err != nil {
				return err
			}
			b, err := cfg.YAML()
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(b)
			return err
		},
	}

	var check bool
	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "moodmate %s\n", mmserver.Version)
			if !check {
				return nil
			}
			res, err := updater.NewChecker().Check(cmd.Context(), mmserver.Version)
			if err != nil {
				return err
			}
			if res.UpdateAvailable {
				fmt.Fprintf(out, "Update available: %s → %s\n%s\n", res.CurrentVersion, res.LatestVersion, res.ReleaseURL)
			} else {
				fmt.Fprintln(out, "Up to date.")
			}
			return nil
		},
	}
	versionCmd.Flags().BoolVar(&check, "check", false, "look for a newer release on GitHub")

	root.AddCommand(serveCmd, mcpCmd, configCmd, versionCmd)
	return root
}

// run loads the configuration, builds the application and serves the
// requested surfaces until a signal arrives or one of them fails.
func run(parent context.Context, cfgPath string, withHTTP, withMCP bool) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return err
	}
	log, err := logging.New(cfg.Logging)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	a, err := app.New(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := a.Close(); err != nil {
			log.Error("closing app", zap.Error(err))
		}
	}()

	g, ctx := errgroup.WithContext(ctx)

	if withHTTP {
		api := httpapi.New(httpapi.Deps{Chat: a.Chat, Google: a.Google, AIConn: a.AIConn}, cfg.HTTP.AllowedOrigins, log.Named("http"))
		srv := &http.Server{
			Addr:              cfg.HTTP.Addr,
			Handler:           api.Handler(),
			ReadHeaderTimeout: cfg.HTTP.ReadHeaderTimeout,
		}
		g.Go(func() error {
			log.Info("http: listening", zap.String("addr", cfg.HTTP.Addr))
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("http: %w", err)
			}
			return nil
		})
		g.Go(func() error {
			<-ctx.Done()
			sctx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
			defer cancel()
			return srv.Shutdown(sctx)
		})
	}

	if withMCP {
		stdio := server.NewStdioServer(mmserver.New(a))
		g.Go(func() error {
			log.Info("mcp: serving on stdio")
			err := stdio.Listen(ctx, os.Stdin, os.Stdout)
			if err != nil && !errors.Is(err, context.Canceled) {
				return fmt.Errorf("mcp: %w", err)
			}
			return nil
		})
	}

	go checkForUpdates(ctx, log)

	return g.Wait()
}

// checkForUpdates logs a notice when a newer release exists. Failures are
// only logged at debug level.
func checkForUpdates(ctx context.Context, log *zap.Logger) {
	ctx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()
	res, err := updater.NewChecker().Check(ctx, mmserver.Version)
	if err != nil {
		log.Debug("update check failed", zap.Error(err))
		return
	}
	if res.UpdateAvailable {
		log.Info("update available",
			zap.String("current", res.CurrentVersion),
			zap.String("latest", res.LatestVersion),
			zap.String("release", res.ReleaseURL),
		)
	}
}
