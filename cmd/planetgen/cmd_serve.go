package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"planetgenerator/config"
	"planetgenerator/planet"
	"planetgenerator/server"
)

func (a *app) serveCmd() *cobra.Command {
	var (
		port  int
		watch bool
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve planet meshes over HTTP and websockets",
		Long: `Starts the mesh service. Renderers connect to /ws, receive the default
planet and may request others; /api/planet returns one mesh as JSON.

With --watch, edits to the settings file change the default planet and every
connected renderer receives the new mesh.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("port") {
				a.settings.Server.Port = port
			}
			return a.runServe(cmd, watch)
		},
	}
	cmd.Flags().IntVarP(&port, "port", "p", 0, "Listen port (overrides server.port)")
	cmd.Flags().BoolVar(&watch, "watch", true, "Reload planet defaults when the settings file changes")
	return cmd
}

func (a *app) runServe(cmd *cobra.Command, watch bool) error {
	s := a.settings
	palette, err := s.Palette.Parse()
	if err != nil {
		return err
	}

	gen := planet.NewGenerator(a.logger, planet.WithWorkers(s.Server.Workers), planet.WithPalette(palette))
	cache, err := planet.NewCache(gen, s.Server.CacheSize)
	if err != nil {
		return err
	}
	srv := server.New(a.logger, cache, s.Params(), server.Options{
		MaxConcurrentJobs:   s.Server.MaxConcurrentJobs,
		MaxGridSize:         s.Server.MaxGridSize,
		AtmosphereThickness: s.Planet.AtmosphereThickness,
	})

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	watchDone := make(chan struct{})
	if watch {
		go func() {
			defer close(watchDone)
			a.watchSettings(ctx, srv)
		}()
	} else {
		close(watchDone)
	}

	err = srv.ListenAndServe(ctx, fmt.Sprintf(":%d", s.Server.Port))
	stop()
	<-watchDone

	st := cache.Stats()
	a.logger.Info("Mesh service stopped",
		zap.Int64("cacheHits", st.Hits),
		zap.Int64("cacheMisses", st.Misses))
	return err
}

// watchSettings pushes reloaded planet defaults to the server. Palette and
// server limits only take effect on restart.
func (a *app) watchSettings(ctx context.Context, srv *server.Server) {
	err := config.Watch(ctx, a.configPath, a.logger, func(s *config.Settings) {
		p := s.Params()
		if p == srv.Defaults() {
			return
		}
		if err := srv.SetDefaults(ctx, p); err != nil {
			a.logger.Warn("Failed to apply reloaded defaults", zap.Error(err))
		}
	})
	if err != nil {
		a.logger.Warn("Config watcher stopped", zap.Error(err))
	}
}
