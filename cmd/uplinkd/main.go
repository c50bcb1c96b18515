package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"uplink"
	"uplink/internal/api"
	"uplink/internal/config"
)

func main() {
	var (
		configPath = flag.String("config", "", "YAML config path")
		addr       = flag.String("addr", "", "HTTP bind address (overrides config)")
		dbPath     = flag.String("db", "", "SQLite DB path (overrides config)")
		debug      = flag.Bool("debug", false, "enable pprof debug routes")
	)
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}
	if *addr != "" {
		cfg.Addr = *addr
	}
	if *dbPath != "" {
		cfg.DBPath = *dbPath
	}

	level, _ := zerolog.ParseLevel(cfg.LogLevel)
	zerolog.SetGlobalLevel(level)
	zerolog.TimeFieldFormat = time.RFC3339
	if cfg.Pretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout})
	}

	opts := []uplink.Option{
		uplink.WithBaseURL(cfg.BaseURL),
		uplink.WithRequestTimeout(cfg.RequestTimeout.Std()),
		uplink.WithLogger(log.Logger),
		uplink.WithNotifier(uplink.LogNotifier{Log: log.Logger}),
	}
	if cfg.AuthToken != "" {
		opts = append(opts, uplink.WithStaticToken(cfg.AuthToken))
	}
	if cfg.Headers != nil {
		opts = append(opts, uplink.WithDefaultHeaders(cfg.Headers))
	}
	if cfg.OfflineNotice {
		opts = append(opts, uplink.WithOfflineNotice())
	}
	if cfg.ProbeURL != "" {
		opts = append(opts, uplink.WithConnectivitySignal(uplink.Probe{URL: cfg.ProbeURL}))
	}
	if cfg.BackgroundOnly {
		opts = append(opts, uplink.WithBackgroundOnlySync())
	}

	client, err := uplink.New(cfg.DBPath, opts...)
	if err != nil {
		log.Fatal().Err(err).Msg("open store")
	}
	defer client.Close()

	for _, qc := range cfg.QueueConfigs() {
		if err := client.RegisterQueue(qc); err != nil {
			log.Fatal().Err(err).Str("queue", qc.Name).Msg("register queue")
		}
	}

	if len(cfg.Queues) > 0 {
		if cfg.SyncSpec != "" {
			err = client.StartScheduledSyncSpec(cfg.SyncSpec)
		} else {
			err = client.StartScheduledSync(cfg.SyncInterval.Std())
		}
		if err != nil {
			log.Fatal().Err(err).Msg("start scheduled sync")
		}
	}

	srv := &http.Server{Addr: cfg.Addr, Handler: api.NewServerWithDebug(client, *debug)}
	go func() {
		log.Info().Str("addr", cfg.Addr).Msg("HTTP server starting")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("http server")
		}
	}()

	// Graceful shutdown
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	<-c
	log.Info().Msg("shutting down")
	_ = client.StopScheduledSync()
	ctxTimeout, cancelTimeout := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelTimeout()
	_ = srv.Shutdown(ctxTimeout)
}
