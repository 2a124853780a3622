// Command emulator runs the mobile-network + edge-placement emulator
// process: it owns the mobility core, edge network, event log, and
// exposure bus, and serves the control-plane API. Bootstrapping and
// signal handling mirror the teacher's cmd/resin/main.go shutdown
// sequence.
package main

import (
	"context"
	"fmt"
	"log"
	"math/rand/v2"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/mnedge/emulator/internal/api"
	"github.com/mnedge/emulator/internal/config"
	"github.com/mnedge/emulator/internal/edge"
	"github.com/mnedge/emulator/internal/eventbus"
	"github.com/mnedge/emulator/internal/geo"
	"github.com/mnedge/emulator/internal/exposure"
	"github.com/mnedge/emulator/internal/httpclient"
	"github.com/mnedge/emulator/internal/metrics"
	"github.com/mnedge/emulator/internal/mobility"
	"github.com/mnedge/emulator/internal/requestlog"
	"github.com/mnedge/emulator/internal/service"
)

func main() {
	cfg, err := config.LoadEmulatorEnvConfig()
	if err != nil {
		fatalf("%v", err)
	}

	if err := os.MkdirAll(cfg.StateDir, 0o755); err != nil {
		fatalf("create state dir %s: %v", cfg.StateDir, err)
	}

	addrs, err := mobility.GenerateAddrs(cfg.IPPoolCIDR, cfg.NumUsers)
	if err != nil {
		fatalf("generate ip pool: %v", err)
	}
	rng := rand.New(rand.NewPCG(1, 2))
	core := mobility.NewBootstrap(mobility.BootstrapConfig{
		NumUsers:     cfg.NumUsers,
		NumCells:     cfg.NumCells,
		Bounds:       cfg.SimBounds,
		UserVelocity: cfg.UserVelocity,
		CellRadius:   cfg.CellRadius,
		IPPoolAddrs:  addrs,
		RNG:          rng,
	})
	log.Printf("[mobility] bootstrapped %d users, %d cells, bounds=%.1f", cfg.NumUsers, cfg.NumCells, cfg.SimBounds)

	network := edge.NewNetwork(bootstrapEDCs(cfg.NumEDCs, cfg.SimBounds, rng))

	eventsDBPath := filepath.Join(cfg.StateDir, "events.db")
	eventLog, err := eventbus.OpenSQLiteLog(eventsDBPath)
	if err != nil {
		fatalf("open event log %s: %v", eventsDBPath, err)
	}
	defer eventLog.Close()
	log.Printf("[eventbus] event log ready at %s", eventsDBPath)

	outboundClient := httpclient.New(httpclient.Options{Timeout: 10 * time.Second, UserAgent: "mnedge-emulator/1.0"})
	bus := exposure.New(outboundClient)

	metricsManager := metrics.NewManager()

	requestLogPath := filepath.Join(cfg.StateDir, "requests.db")
	requestLog, err := requestlog.Open(requestLogPath, cfg.RequestLogRetainCount*1000)
	if err != nil {
		fatalf("open request log %s: %v", requestLogPath, err)
	}
	defer requestLog.Close()

	svc := service.NewEmulatorServiceWithMetrics(core, network, eventLog, bus, metricsManager)

	srv := api.NewServer(api.Config{
		Port:            cfg.Port,
		APIMaxBodyBytes: cfg.APIMaxBodyBytes,
		Service:         svc,
		Metrics:         metricsManager,
		RequestLog:      requestLog,
	})

	serverErrCh := make(chan error, 1)
	go func() {
		log.Printf("[api] listening on :%d", cfg.Port)
		if err := srv.ListenAndServe(); err != nil {
			serverErrCh <- err
		}
	}()

	tickerDone := make(chan struct{})
	go runTickLoop(tickerDone, cfg.TickInterval, svc)

	trimDone := make(chan struct{})
	go runRequestLogTrimLoop(trimDone, requestLog)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case sig := <-quit:
		log.Printf("[emulator] received signal %s, shutting down...", sig)
	case err := <-serverErrCh:
		log.Printf("[api] server error: %v, shutting down...", err)
	}

	close(tickerDone)
	close(trimDone)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("[api] shutdown error: %v", err)
	}
	log.Println("[emulator] stopped")
}

// runTickLoop drives one MobilityCore tick every interval, logged the same
// way the control-plane's own POST /mobile_network/update_user_positions
// does, until done is closed. A mobility.ErrInvariantViolation panic
// propagates out of this goroutine and crashes the process.
func runTickLoop(done <-chan struct{}, interval time.Duration, svc *service.EmulatorService) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), interval)
			if err := svc.UpdateUserPositions(ctx); err != nil {
				log.Printf("[scheduler] tick failed: %v", err)
			}
			cancel()
		}
	}
}

// runRequestLogTrimLoop periodically bounds the request log's row count
// (internal/requestlog.Repo.Trim is not called per-request, see its doc
// comment).
func runRequestLogTrimLoop(done <-chan struct{}, repo *requestlog.Repo) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			if err := repo.Trim(ctx); err != nil {
				log.Printf("[requestlog] trim failed: %v", err)
			}
			cancel()
		}
	}
}

// bootstrapEDCs scatters n edge data centers uniformly at random within
// [-bounds,+bounds]^2, mirroring mobility.NewBootstrap's own synthetic
// layout generation: a pre-generated input layout, not behavior under
// test.
func bootstrapEDCs(n int, bounds float64, rng *rand.Rand) []*edge.DataCenter {
	edcs := make([]*edge.DataCenter, 0, n)
	for i := 0; i < n; i++ {
		pos := geo.Point{X: (rng.Float64()*2 - 1) * bounds, Y: (rng.Float64()*2 - 1) * bounds}
		id := uint32(i + 1)
		edcs = append(edcs, edge.NewDataCenter(id, fmt.Sprintf("edc-%d", id), pos))
	}
	return edcs
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "fatal: "+format+"\n", args...)
	os.Exit(1)
}
