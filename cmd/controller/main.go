// Command controller runs the placement controller process: it polls the
// emulator's control-plane API on a fixed period (or cron schedule) and
// relocates applications toward the weighted centroid of the traffic
// driving their usage. Bootstrapping and signal handling mirror the
// teacher's cmd/resin/main.go shutdown sequence.
package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mnedge/emulator/internal/config"
	"github.com/mnedge/emulator/internal/controllerengine"
	"github.com/mnedge/emulator/internal/httpclient"
)

func main() {
	cfg, err := config.LoadControllerEnvConfig()
	if err != nil {
		fatalf("%v", err)
	}

	client := httpclient.New(httpclient.Options{Timeout: cfg.HTTPTimeout, UserAgent: "mnedge-controller/1.0"})
	emulatorClient := controllerengine.NewHTTPEmulatorClient(cfg.EmulatorBaseURL, client)
	ctrl := controllerengine.New(emulatorClient, nil)

	mux := http.NewServeMux()
	mux.Handle("GET /controller/history", controllerengine.HandleHistory(ctrl))
	mux.Handle("GET /healthz", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	historyPort := cfg.HistoryPort
	srv := &http.Server{Addr: fmt.Sprintf(":%d", historyPort), Handler: mux}
	serverErrCh := make(chan error, 1)
	go func() {
		log.Printf("[controller] history endpoint listening on :%d", historyPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrCh <- err
		}
	}()

	loopCtx, stopLoop := context.WithCancel(context.Background())
	loopDone := make(chan struct{})
	go func() {
		defer close(loopDone)
		log.Printf("[controller] polling %s every %s (schedule=%q)", cfg.EmulatorBaseURL, cfg.PollPeriod, cfg.PollSchedule)
		ctrl.Run(loopCtx, controllerengine.LoopConfig{Period: cfg.PollPeriod, Schedule: cfg.PollSchedule})
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case sig := <-quit:
		log.Printf("[controller] received signal %s, shutting down...", sig)
	case err := <-serverErrCh:
		log.Printf("[controller] history server error: %v, shutting down...", err)
	}

	stopLoop()
	<-loopDone

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("[controller] shutdown error: %v", err)
	}
	log.Println("[controller] stopped")
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "fatal: "+format+"\n", args...)
	os.Exit(1)
}
