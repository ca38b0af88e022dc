// Command agentrelay serves the agent-to-agent protocol and its
// resilience layer over HTTP, announcing protocol and error events to
// NATS.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	relayhttp "github.com/Strob0t/AgentRelay/internal/adapter/http"
	"github.com/Strob0t/AgentRelay/internal/adapter/memory"
	relaynats "github.com/Strob0t/AgentRelay/internal/adapter/nats"
	relayotel "github.com/Strob0t/AgentRelay/internal/adapter/otel"
	"github.com/Strob0t/AgentRelay/internal/adapter/ristretto"
	"github.com/Strob0t/AgentRelay/internal/config"
	"github.com/Strob0t/AgentRelay/internal/domain/agent"
	"github.com/Strob0t/AgentRelay/internal/domain/message"
	"github.com/Strob0t/AgentRelay/internal/domain/task"
	"github.com/Strob0t/AgentRelay/internal/logger"
	"github.com/Strob0t/AgentRelay/internal/middleware"
	"github.com/Strob0t/AgentRelay/internal/port/delegate"
	"github.com/Strob0t/AgentRelay/internal/resilience"
	"github.com/Strob0t/AgentRelay/internal/service"
)

const version = "0.1.0"

func main() {
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})))

	if err := run(); err != nil {
		slog.Error("fatal", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	log, logCloser := logger.New(cfg.Logging)
	slog.SetDefault(log)
	defer logCloser.Close()

	slog.Info("config loaded",
		"port", cfg.Server.Port,
		"log_level", cfg.Logging.Level,
		"breaker_max_failures", cfg.Breaker.MaxFailures,
	)

	ctx := context.Background()

	shutdownTelemetry := relayotel.Init(cfg.Logging.Service)
	defer func() { _ = shutdownTelemetry(ctx) }()

	// --- Infrastructure ---

	announcer, err := relaynats.Connect(ctx, cfg.NATS.URL)
	if err != nil {
		return fmt.Errorf("nats: %w", err)
	}
	defer func() { _ = announcer.Close() }()

	guard, err := ristretto.NewGuard(cfg.Replay.MaxIDs, cfg.Replay.TTL)
	if err != nil {
		return fmt.Errorf("replay guard: %w", err)
	}
	defer guard.Close()

	metrics, err := relayotel.NewMetrics()
	if err != nil {
		return fmt.Errorf("metrics: %w", err)
	}

	// --- Core ---

	store := memory.NewCircuitStore()
	strategies := memory.NewRecoveryRegistry()
	coord := resilience.NewCoordinator(store, announcer, strategies, cfg.Breaker.MaxFailures, cfg.Breaker.OpenFor)
	coord.SetRecorder(metrics)

	caps := memory.NewCapabilityRegistry(capabilitiesFromConfig(cfg.Protocol.Capabilities))

	self := agent.Identity{ID: cfg.Protocol.SystemID, Name: cfg.Protocol.SystemName}
	protocol := service.NewProtocol(self, announcer, caps, coord, cfg.Protocol.MaxDelegations)
	protocol.SetMetrics(metrics)

	// Reference executor: echoes the task description back as the result.
	// Deployments swap in a real backend here.
	executor := delegate.Func(func(_ context.Context, t task.Task) (json.RawMessage, error) {
		return json.Marshal(map[string]string{"echo": t.Description})
	})

	// --- HTTP ---

	baseURL := "http://localhost:" + cfg.Server.Port
	handler := relayhttp.NewHandler(protocol, executor, guard, caps, relayhttp.CardInfo{
		Name:        cfg.Protocol.SystemName,
		Description: "Agent-to-agent protocol relay with fault classification and circuit breaking",
		BaseURL:     baseURL,
		Version:     version,
	})
	handler.AnnouncerUp = announcer.IsConnected
	handler.CircuitCount = store.Len

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(relayotel.HTTPMiddleware(cfg.Logging.Service))
	handler.MountRoutes(r)

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	go func() {
		slog.Info("http server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("http server failed", "error", err)
			done <- syscall.SIGTERM
		}
	}()

	<-done
	slog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("http shutdown failed", "error", err)
	}
	if err := announcer.Drain(); err != nil {
		slog.Error("announcer drain failed", "error", err)
	}
	return nil
}

func capabilitiesFromConfig(caps []config.Capability) []message.Capability {
	out := make([]message.Capability, 0, len(caps))
	for _, c := range caps {
		out = append(out, message.Capability{
			ID:          c.ID,
			Name:        c.Name,
			Description: c.Description,
		})
	}
	return out
}
