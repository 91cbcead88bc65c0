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

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	router "github.com/dkeye/WatchParty/internal/adapters/http"
	"github.com/dkeye/WatchParty/internal/adapters/rtc"
	signaladapter "github.com/dkeye/WatchParty/internal/adapters/signal"
	"github.com/dkeye/WatchParty/internal/app"
	"github.com/dkeye/WatchParty/internal/app/orch"
	"github.com/dkeye/WatchParty/internal/config"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "watchparty",
		Short:         "Watch-together room coordination and signaling server",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(cmd.Flags())
			if err != nil {
				log.Error().Err(err).Msg("failed to load config")
				return err
			}
			setupLogging(cfg.Mode)
			ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()
			if err := run(ctx, cfg); err != nil {
				log.Error().Err(err).Msg("server stopped with error")
				return err
			}
			return nil
		},
	}
	f := cmd.Flags()
	f.String("config", "", "config file (default config/config.$CONFIG_ENV.yaml)")
	f.String("mode", "release", "debug, release or test")
	f.Int("port", 8080, "HTTP listen port")
	f.String("static-path", "./web", "directory with the web client")
	f.String("secret", "", "cookie session key")
	return cmd
}

func setupLogging(mode string) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if mode == "debug" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	ice, err := rtc.NewWebRTCConfig(cfg.ICEServers)
	if err != nil {
		return err
	}

	rooms := app.NewRoomStore(cfg.ChatHistoryLimit)
	reg := app.NewRegistry()
	out := app.NewBroadcaster(reg, app.SimplePolicy{})
	o := orch.New(rooms, reg, out, orch.Options{
		RequireExistingRoom: cfg.RequireExistingRoom,
		GateScreenShare:     cfg.GateScreenShare,
	})
	dispatcher := app.NewDispatcher(1024)
	sweeper := &app.Sweeper{
		Dispatcher: dispatcher,
		Rooms:      rooms,
		TTL:        cfg.EmptyRoomTTL,
		Interval:   cfg.SweepInterval,
	}
	ctl := signaladapter.NewSignalWSController(o, dispatcher, cfg)

	r := router.SetupRouter(ctx, cfg, router.Deps{
		Orch:       o,
		Dispatcher: dispatcher,
		Signal:     ctl,
		ICE:        ice,
	})
	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return dispatcher.Run(ctx) })
	g.Go(func() error { return sweeper.Run(ctx) })
	g.Go(func() error { return ctl.RunLimiterPrune(ctx, cfg.SweepInterval) })
	g.Go(func() error {
		log.Info().Str("addr", addr).Msg("WatchParty server started")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		log.Info().Msg("Shutting down")
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("Server forced to shutdown")
		}
		return nil
	})

	err = g.Wait()
	log.Info().Msg("Server exited gracefully")
	return err
}
