package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"cocan/internal/advisor"
	"cocan/internal/api"
	"cocan/internal/database"
	"cocan/internal/kitchen"
	"cocan/internal/monitoring"
	"cocan/internal/stage"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the game over HTTP",
	Long: `Start a game and serve it: REST commands under /api, the event stream
on /ws and prometheus metrics on /metrics (and on server.metrics_addr when
set). Stops gracefully on SIGINT or SIGTERM.`,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, log, err := loadConfig()
	if err != nil {
		return err
	}
	gin.SetMode(cfg.Server.Mode)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := database.Open(cfg.Database.Driver, cfg.Database.DSN)
	if err != nil {
		return err
	}
	defer store.Close()
	if err := store.Migrate(); err != nil {
		return err
	}

	model, err := advisor.NewModel(cfg.Advisor)
	if err != nil {
		return err
	}
	adv := advisor.New(model, log.Named("advisor"), cfg.Advisor.Timeout)

	hub := api.NewHub(log.Named("ws"))
	defer hub.Close()
	monitor := monitoring.NewMonitor()
	metrics := monitoring.NewMetrics("cocan")

	k, err := kitchen.New(cfg.Kitchen(),
		kitchen.WithSink(stage.Fanout{hub, monitor}),
		kitchen.WithRecorder(metrics),
		kitchen.WithLedger(store),
		kitchen.WithLogger(log.Named("kitchen")),
	)
	if err != nil {
		return err
	}
	monitor.SetSession(cfg.Scenario, k.ID())
	log.Infof("session %s", k.ID())

	loop := kitchen.NewLoop(k, cfg.Simulation.TickInterval)
	go loop.Run(ctx)

	server := api.NewServer(api.Deps{
		Loop:     loop,
		Session:  k.ID(),
		Scenario: cfg.Scenario,
		Hub:      hub,
		Monitor:  monitor,
		Metrics:  metrics,
		Store:    store,
		Advisor:  adv,
		Auth:     api.NewAuth(cfg.Auth.Secret, cfg.Auth.TokenTTL, k.ID()),
		Log:      log.Named("api"),
	})

	if cfg.Server.MetricsAddr != "" {
		metricsRouter := gin.New()
		metricsRouter.GET("/metrics", gin.WrapH(metrics.Handler()))
		go func() {
			if err := api.ListenAndServe(ctx, cfg.Server.MetricsAddr, metricsRouter, log.Named("metrics")); err != nil {
				log.Errorf("metrics server: %v", err)
			}
		}()
	}

	err = api.ListenAndServe(ctx, cfg.Server.Addr, server.Router(), log.Named("api"))
	stop()
	<-loop.Done()
	if err != nil {
		return fmt.Errorf("api server: %w", err)
	}
	return nil
}
