package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"creatorhub/config"
	"creatorhub/core/events"
	"creatorhub/native/platform"
	"creatorhub/native/token"
	"creatorhub/observability/logging"
	"creatorhub/rpc"
	"creatorhub/storage"
)

func main() {
	configPath := flag.String("config", "./config.toml", "path to the daemon configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logging.Setup("creatorhubd", "", "").Error("failed to load configuration", "path", *configPath, "error", err)
		os.Exit(1)
	}
	log := logging.Setup("creatorhubd", cfg.Env, cfg.LogFile)

	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		log.Error("failed to create data directory", "dir", cfg.DataDir, "error", err)
		os.Exit(1)
	}
	db, err := storage.NewLevelDB(filepath.Join(cfg.DataDir, "ledger"))
	if err != nil {
		log.Error("failed to open ledger database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	kv := storage.NewKV(db)
	recorder := events.NewRecorder(cfg.EventTailLimit)

	engine := platform.NewEngine()
	engine.SetState(platform.NewState(kv))
	engine.SetEmitter(recorder)
	if err := engine.SetPlatformFeeBps(cfg.PlatformFeeBps); err != nil {
		log.Error("invalid platform fee", "bps", cfg.PlatformFeeBps, "error", err)
		os.Exit(1)
	}
	if cfg.PaymentToken != "" {
		tokenAddr, err := cfg.PaymentTokenAddress()
		if err != nil {
			log.Error("invalid payment token", "error", err)
			os.Exit(1)
		}
		engine.SetPaymentToken(tokenAddr)
	}
	if cfg.FeeCollector != "" {
		collector, err := cfg.FeeCollectorAddress()
		if err != nil {
			log.Error("invalid fee collector", "error", err)
			os.Exit(1)
		}
		engine.SetFeeCollector(collector)
	}
	if cfg.PaymentsEnabled {
		engine.SetPayments(token.NewLedger(kv))
		log.Info("payment settlement enabled", "feeBps", cfg.PlatformFeeBps)
	} else {
		log.Warn("payment settlement disabled; counters update without value transfer")
	}

	rpcServer := &http.Server{
		Addr:              cfg.RPCAddress,
		Handler:           rpc.NewServer(engine, recorder, cfg.RPCAuthToken, log),
		ReadHeaderTimeout: 5 * time.Second,
	}

	ops := chi.NewRouter()
	ops.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	ops.Handle("/metrics", promhttp.Handler())
	opsServer := &http.Server{
		Addr:              cfg.OpsAddress,
		Handler:           ops,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 2)
	go func() {
		log.Info("rpc listening", "address", cfg.RPCAddress)
		errCh <- rpcServer.ListenAndServe()
	}()
	go func() {
		log.Info("ops listening", "address", cfg.OpsAddress)
		errCh <- opsServer.ListenAndServe()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-stop:
		log.Info("shutting down", "signal", sig.String())
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server failed", "error", err)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = rpcServer.Shutdown(ctx)
	_ = opsServer.Shutdown(ctx)
}
