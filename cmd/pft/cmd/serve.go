package cmd

import (
	"errors"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"pft/internal/amqp"
	"pft/internal/app"
	"pft/internal/cli"
	"pft/internal/finance"
	apphttp "pft/internal/http"
	"pft/internal/log"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the finance tracker web UI",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := cli.LoadAndValidateConfig()
	if err != nil {
		cli.SetupLogger("info").Error("Configuration validation failed", log.FieldError, err)
		return err
	}
	logger := cli.SetupLogger(cfg.LogLevel)

	var api finance.API = finance.NewClient(cfg.APIBaseURL, cfg.APITimeout)
	api = finance.NewCachedAPI(api, cfg.CacheSize, cfg.CacheTTL, logger)

	opts := []app.Option{
		app.WithLogger(logger),
		app.WithCurrencySymbol(cfg.CurrencySymbol),
	}
	if cfg.EventsEnabled() {
		pub, err := amqp.NewPublisher(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPRoutingKey, logger)
		if err != nil {
			logger.Error("Failed to connect to AMQP", log.FieldError, err, "exchange", cfg.AMQPExchange)
			return err
		}
		defer pub.Close()
		opts = append(opts, app.WithPublisher(pub))
		logger.Info("Record events enabled", "exchange", cfg.AMQPExchange, "routing_key", cfg.AMQPRoutingKey)
	}
	tracker := app.NewTracker(api, opts...)

	srv := apphttp.NewServer(cfg.Addr(), tracker, api, apphttp.Options{
		RateLimitRPM: cfg.RateLimitRPM,
		Logger:       logger,
	})
	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 2*cfg.APITimeout + 5*time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16

	ctx, stop := cli.ShutdownContext(cmd.Context(), logger)
	defer stop()

	logger.Info("Starting pft server",
		log.FieldOperation, log.OpStartup,
		"port", cfg.Port,
		"api_base_url", cfg.APIBaseURL,
		"cache_ttl", cfg.CacheTTL.String())

	err = cli.RunWithShutdown(ctx, logger, 30*time.Second, srv.ListenAndServe, srv.Shutdown)
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server error", log.FieldError, err, "port", cfg.Port)
		return err
	}
	logger.Info("Server stopped gracefully")
	return nil
}
