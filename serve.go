package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/pkg/profile"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/regland/regland/logger"
	"github.com/regland/regland/pkg/config"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd() *cobra.Command {
	var (
		addr        string
		profileMode string
		profileDir  string
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr != "" {
				cfg.Server.Addr = addr
			}
			stop, err := startProfile(profileMode, profileDir)
			if err != nil {
				return err
			}
			defer stop()

			ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()
			return serve(ctx, cfg)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides server.addr)")
	cmd.Flags().StringVar(&profileMode, "profile", "", "write a cpu or mem profile while serving")
	cmd.Flags().StringVar(&profileDir, "profile-dir", ".", "directory for profile output")
	return cmd
}

func startProfile(mode, dir string) (func(), error) {
	switch mode {
	case "":
		return func() {}, nil
	case "cpu":
		return profile.Start(profile.CPUProfile, profile.ProfilePath(dir), profile.NoShutdownHook).Stop, nil
	case "mem":
		return profile.Start(profile.MemProfile, profile.ProfilePath(dir), profile.NoShutdownHook).Stop, nil
	default:
		return nil, fmt.Errorf("unknown profile mode %q (want cpu or mem)", mode)
	}
}

// serve runs the HTTP server, the optional expression file watcher and the
// config watcher until ctx is done, then shuts down gracefully.
func serve(ctx context.Context, c *config.Config) error {
	db, err := openDB(c)
	if err != nil {
		return err
	}
	a := newApp(c, db)
	defer a.Close()

	config.Watch(vip, nil)

	srv := &http.Server{
		Addr:         c.Server.Addr,
		Handler:      NewRouter(a.api, a.responses, logger.L()),
		ReadTimeout:  c.Server.ReadTimeout,
		WriteTimeout: c.Server.WriteTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Start:", zap.String("Version", VERSION))
		logger.Info("Server starting", zap.String("addr", c.Server.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Server shutting down")
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(sctx)
	})
	if c.Expression.Watch {
		g.Go(func() error {
			if err := a.api.Expression.Watch(gctx, c.Expression.Path); err != nil {
				logger.Warn("Expression watcher stopped", zap.Error(err))
			}
			return nil
		})
	}
	return g.Wait()
}
