// Command pydidasd is an example pydidas run server: it wires a fixed
// demo WorkflowTree (see internal/plugin/demo) to the REST control surface
// and the WebSocket progress relay, and re-execs itself as a worker
// process when invoked with --pydidas-worker.
package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pydidas/pydidas-go/internal/expcontext"
	"github.com/pydidas/pydidas-go/internal/plugin/demo"
	"github.com/pydidas/pydidas-go/internal/restapi"
	"github.com/pydidas/pydidas-go/internal/scancontext"
	"github.com/pydidas/pydidas-go/internal/worker"
	"github.com/pydidas/pydidas-go/internal/workflow"
	"github.com/pydidas/pydidas-go/internal/wsprogress"
	"github.com/pydidas/pydidas-go"
)

func main() {
	// --pydidas-worker must be detected before any other startup logic:
	// the re-exec'd child process is not a server, it's one worker loop
	// reading task frames from stdin and writing result frames to stdout.
	if isWorkerMode(os.Args[1:]) {
		if err := worker.RunProcessor(os.Stdin, os.Stdout); err != nil {
			os.Exit(1)
		}
		return
	}

	var (
		restAddr   = flag.String("rest-addr", "", "REST/WS listen address (overrides config)")
		numWorkers = flag.Int("workers", 0, "Worker process count (overrides config)")
	)
	flag.Parse()

	cfg := pydidas.LoadConfig()
	if *restAddr != "" {
		cfg.RESTAddr = *restAddr
	}
	if *numWorkers > 0 {
		cfg.NumWorkers = *numWorkers
	}

	log := pydidas.SetupLogging(cfg.LogLevel)
	log.Info().Str("addr", cfg.RESTAddr).Int("workers", cfg.NumWorkers).Msg("starting pydidasd")

	scan, tree := buildDemoRun()

	hub := wsprogress.NewHub(log)
	go hub.Run()

	reExecArgs := []string{os.Args[0], "--pydidas-worker"}
	runs := newRunManager(scan, tree, cfg.NumWorkers, reExecArgs, hub, log)

	restServer := restapi.NewServer(runs, cfg.JWTSigningKey, log)
	wsHandler := wsprogress.NewHandler(hub, log)

	mux := http.NewServeMux()
	mux.Handle("/runs", restServer.Handler())
	mux.Handle("/runs/", restServer.Handler())
	mux.Handle("GET /runs/{id}/stream", wsHandler)

	httpServer := &http.Server{
		Addr:         cfg.RESTAddr,
		Handler:      mux,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("server failed")
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	exitIfErr(httpServer.Shutdown(ctx), log)
	log.Info().Msg("exited gracefully")
}

// buildDemoRun constructs the scan geometry and WorkflowTree pydidasd runs
// when a client starts a run: a 2D 4x3 scan over a frame-loader/transform
// pair from internal/plugin/demo, since no concrete detector or processing
// plugin is part of this build.
func buildDemoRun() (*scancontext.Context, *workflow.Tree) {
	scan := scancontext.New()
	_ = scan.Params().SetValue("scan_dim", 2)
	_ = scan.Params().SetValue("scan_dim0_n_points", 4)
	_ = scan.Params().SetValue("scan_dim1_n_points", 3)

	_ = expcontext.Instance() // registered as the process-wide diffraction setup; unused by the demo plugins

	tree := workflow.New()
	loaderNode, err := tree.CreateAndAddNode(demo.NewFrameLoader(16, 16), nil, false)
	if err != nil {
		panic(err)
	}
	if _, err := tree.CreateAndAddNode(demo.NewTransform("input_shape[0:1]"), loaderNode, false); err != nil {
		panic(err)
	}
	if err := tree.PropagateShapesAndGlobalConfig(); err != nil {
		panic(err)
	}
	return scan, tree
}
