// Command databroker is the broker's process entrypoint: flag/env
// parsing, VSS metadata loading, a minimal HTTP status/metrics/debug
// surface, and graceful shutdown wiring. It is deliberately not a
// gRPC/VISS wire server — those remain external adapters per spec.md's
// scope — but it is a complete, runnable, inspectable process.
//
// Grounded on the teacher's cmd/cc-backend entrypoint: flag parsing in
// cli.go, a thin init.go, server.go building the http.Handler, and
// main.go doing nothing but wiring the two together and handling
// signals.
package main

import (
	"context"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/google/gops/agent"
	"github.com/joho/godotenv"

	"github.com/eclipse-kuksa/kuksa-databroker-go/internal/broker"
	"github.com/eclipse-kuksa/kuksa-databroker-go/internal/config"
	"github.com/eclipse-kuksa/kuksa-databroker-go/internal/lifecycle"
	"github.com/eclipse-kuksa/kuksa-databroker-go/internal/store"
	"github.com/eclipse-kuksa/kuksa-databroker-go/internal/tokendecoder"
	"github.com/eclipse-kuksa/kuksa-databroker-go/internal/vss"
	"github.com/eclipse-kuksa/kuksa-databroker-go/pkg/log"
)

func main() {
	cliInit()

	if flagGops {
		if err := agent.Listen(agent.Options{}); err != nil {
			log.Fatalf("gops/agent.Listen failed: %s", err.Error())
		}
	}

	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Warnf("loading .env file failed: %s", err.Error())
	}

	cfg, err := resolveConfig()
	if err != nil {
		log.Fatalf("configuration error: %s", err.Error())
	}
	log.SetLogLevel(cfg.LogLevel)
	log.SetLogDateTime(cfg.LogDateTime)

	s := store.New()
	if err := loadMetadata(s, cfg); err != nil {
		log.Fatalf("metadata loading failed: %s", err.Error())
	}

	engine := broker.NewEngineWithQueueDepth(s, cfg.SubscriberQueueDepth)

	var decoder *tokendecoder.Decoder
	if cfg.JWTPublicKeyFile != "" {
		raw, err := os.ReadFile(cfg.JWTPublicKeyFile)
		if err != nil {
			log.Fatalf("reading jwt public key file: %s", err.Error())
		}
		decoder, err = tokendecoder.NewFromBase64(string(raw))
		if err != nil {
			log.Fatalf("loading jwt public key: %s", err.Error())
		}
	} else if !cfg.DisableAuthentication {
		log.Warn("no --jwt-public-key given; authorization is not enabled and every request will be allowed")
	}

	coordinator, err := lifecycle.New()
	if err != nil {
		log.Fatalf("lifecycle coordinator: %s", err.Error())
	}
	housekeeping, err := time.ParseDuration(cfg.HousekeepingInterval)
	if err != nil {
		housekeeping = time.Second
	}
	if err := coordinator.Every("subscription-cleanup", housekeeping, engine.Cleanup); err != nil {
		log.Fatalf("scheduling housekeeping: %s", err.Error())
	}
	coordinator.Start()

	addr := net.JoinHostPort(cfg.Address, strconv.Itoa(cfg.Port))
	httpServer := &http.Server{
		Addr:         addr,
		Handler:      newRouter(s, decoder, cfg.DisableAuthentication),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	listener, err := net.Listen("tcp", addr)
	if err != nil {
		log.Fatalf("listen on %s: %s", addr, err.Error())
	}

	coordinator.Go(func(ctx context.Context) error {
		log.Infof("databroker listening at %s", addr)
		if err := httpServer.Serve(listener); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	<-sigs

	log.Info("shutting down")
	engine.Shutdown()
	coordinator.Shutdown()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Errorf("http server shutdown: %s", err.Error())
	}

	if err := coordinator.Wait(); err != nil {
		log.Errorf("background worker error: %s", err.Error())
	}
	log.Info("graceful shutdown complete")
}

// loadMetadata registers either the built-in dummy tree or every
// configured metadata file against s, in the order given, so later
// files can extend a tree an earlier one started (idempotent
// re-registration makes overlapping branches safe).
func loadMetadata(s *store.Store, cfg config.Config) error {
	if cfg.DummyMetadata {
		n, err := vss.Load([]byte(dummyMetadataJSON), s)
		if err != nil {
			return err
		}
		log.Infof("registered %d entries from built-in dummy metadata", n)
		return nil
	}

	for _, path := range cfg.MetadataFiles {
		raw, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		n, err := vss.Load(raw, s)
		if err != nil {
			return err
		}
		log.Infof("registered %d entries from %s", n, path)
	}
	return nil
}
