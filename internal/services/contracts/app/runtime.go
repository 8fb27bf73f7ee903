// Package app wires the contract bot runtime: store, timers, controller,
// dispatcher, audit log, health serving, and the archive reaper loop.
package app

import (
	"context"
	"fmt"
	"log"
	"net"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	grpc_health_v1 "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/Sasabodun/kontraktbot/internal/services/contracts/domain"
	"github.com/Sasabodun/kontraktbot/internal/services/contracts/gateway"
	"github.com/Sasabodun/kontraktbot/internal/services/contracts/render"
	"github.com/Sasabodun/kontraktbot/internal/storage"
	sqlitestore "github.com/Sasabodun/kontraktbot/internal/storage/sqlite"
	"github.com/Sasabodun/kontraktbot/internal/telemetry"
)

const (
	defaultPort           = 8090
	defaultDBPath         = "data/bot.db"
	defaultReaperInterval = 10 * time.Minute
)

// RuntimeConfig controls bot startup, dependencies, and schedule.
type RuntimeConfig struct {
	Port        int
	DBPath      string
	Locale      string
	RoleMention string

	JoinWindow        time.Duration
	AnnouncementDelay time.Duration
	AnnouncementTTL   time.Duration
	ReaperInterval    time.Duration
	Retention         time.Duration

	DMDeletePause time.Duration
	DMScanLimit   int

	// Gateway adapts the chat-platform session. The session itself lives
	// outside this repo; offline runs use gateway.NewMemory.
	Gateway gateway.Gateway
}

// Bot is the assembled runtime plus the inbound command surface.
type Bot struct {
	cfg        RuntimeConfig
	controller *domain.Controller
	dispatcher *gateway.Dispatcher
	renderer   *render.Renderer
	audit      *sqlitestore.Store
}

// New assembles a bot runtime from the config.
func New(cfg RuntimeConfig) (*Bot, error) {
	if cfg.Gateway == nil {
		return nil, fmt.Errorf("platform gateway is required")
	}
	if cfg.Port <= 0 {
		cfg.Port = defaultPort
	}
	if strings.TrimSpace(cfg.DBPath) == "" {
		cfg.DBPath = defaultDBPath
	}
	if cfg.ReaperInterval <= 0 {
		cfg.ReaperInterval = defaultReaperInterval
	}

	if dir := filepath.Dir(cfg.DBPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create bot storage dir: %w", err)
		}
	}
	auditStore, err := sqlitestore.Open(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("open audit store: %w", err)
	}

	dispatcher := gateway.NewDispatcher(cfg.Gateway, gateway.DispatcherConfig{
		DeletePause: cfg.DMDeletePause,
		ScanLimit:   cfg.DMScanLimit,
	})
	renderer := render.NewRenderer(render.ParseLocale(cfg.Locale), cfg.RoleMention)
	recorder := &auditRecorder{emitter: telemetry.NewEmitter(auditStore)}

	contractStore := domain.NewStore(nil)
	timers := domain.NewTimerEngine()
	controller := domain.NewController(contractStore, timers, dispatcher, renderer, recorder, domain.Timing{
		JoinWindow:        cfg.JoinWindow,
		AnnouncementDelay: cfg.AnnouncementDelay,
		AnnouncementTTL:   cfg.AnnouncementTTL,
		Retention:         cfg.Retention,
	}, nil)

	return &Bot{
		cfg:        cfg,
		controller: controller,
		dispatcher: dispatcher,
		renderer:   renderer,
		audit:      auditStore,
	}, nil
}

// Close releases the audit store.
func (b *Bot) Close() error {
	return b.audit.Close()
}

// Run serves the health endpoint and drives the archive reaper until the
// context ends. Outstanding contract timers are cancelled on the way out;
// contract state is memory-resident and intentionally lost with the process.
func (b *Bot) Run(ctx context.Context) error {
	listener, err := net.Listen("tcp", fmt.Sprintf(":%d", b.cfg.Port))
	if err != nil {
		return fmt.Errorf("listen on bot port %d: %w", b.cfg.Port, err)
	}
	defer listener.Close()

	grpcServer := grpc.NewServer(grpc.StatsHandler(otelgrpc.NewServerHandler()))
	healthServer := health.NewServer()
	grpc_health_v1.RegisterHealthServer(grpcServer, healthServer)
	healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)
	healthServer.SetServingStatus("contracts.runtime", grpc_health_v1.HealthCheckResponse_SERVING)

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- grpcServer.Serve(listener)
	}()
	defer func() {
		healthServer.Shutdown()
		grpcServer.GracefulStop()
		<-serveErr
	}()

	log.Printf("bot health server listening at %v", listener.Addr())

	b.controller.Start(ctx)
	defer b.controller.Shutdown()

	ticker := time.NewTicker(b.cfg.ReaperInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case now := <-ticker.C:
			b.controller.SweepArchive(ctx, now)
		}
	}
}

type auditRecorder struct {
	emitter *telemetry.Emitter
}

func (r *auditRecorder) Record(ctx context.Context, kind, contractID, detail string) {
	event := storage.AuditEvent{Kind: kind, ContractID: contractID, Detail: detail}
	if err := r.emitter.Emit(ctx, event); err != nil {
		log.Printf("record audit event %s for %s: %v", kind, contractID, err)
	}
}
