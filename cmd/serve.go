package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/bizmapper/internal/api"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API for the map UI",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}
		cfg.Server.Port = port

		env, err := initEnv(cfg, "serve", envOptions{})
		if err != nil {
			return err
		}

		// Warm the live demographics in the background; readers fall back to
		// the reference table until it lands.
		if env.Live != nil {
			go func() {
				if _, err := env.Live.Ensure(ctx); err != nil {
					zap.L().Warn("live demographics warm-up failed", zap.Error(err))
				}
			}()
		}

		srv := &http.Server{
			Addr:              fmt.Sprintf(":%d", port),
			Handler:           newAPIServer(env).Router(),
			ReadHeaderTimeout: 10 * time.Second,
		}

		// Graceful shutdown
		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()

		zap.L().Info("starting server", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

func newAPIServer(env *appEnv) *api.Server {
	deps := api.Deps{
		Resolver:       env.Pipeline,
		Demographics:   env.Demographics,
		Centroids:      env.Centroids,
		Metrics:        env.Metrics,
		Breakers:       env.Breakers,
		AllowedOrigins: cfg.Server.AllowedOrigins,
	}
	if env.Tiles != nil {
		deps.Tiles = env.Tiles
	}
	return api.NewServer(deps)
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
