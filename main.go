// Command driftsim runs the dashboard service: a web UI and JSON API over
// the run database, plus a websocket live view of simulated episodes.
package main

import (
	"context"
	"embed"
	"flag"
	"io/fs"
	"log"
	"net/http"
	"os/signal"
	"sync"
	"syscall"

	"github.com/openlaps/driftsim/internal/config"
	"github.com/openlaps/driftsim/internal/dashboard"
	"github.com/openlaps/driftsim/internal/driving"
	"github.com/openlaps/driftsim/internal/store"
	"github.com/openlaps/driftsim/internal/version"
)

var (
	//go:embed static/*
	staticFiles embed.FS

	devMode    = flag.Bool("dev", false, "Serve static files from ./static instead of the embedded copy")
	listen     = flag.String("listen", ":8080", "Listen address")
	dbFile     = flag.String("db", "driftsim.db", "Path to the run database")
	configFile = flag.String("config", "driftsim.yaml", "Optional YAML config overriding simulation defaults")
)

func main() {
	flag.Parse()

	if *listen == "" {
		log.Fatal("listen address is required")
	}
	log.Printf("driftsim %s", version.String())

	cfgFile, err := config.Load(*configFile, true)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	envCfg := driving.DefaultConfig()
	if err := cfgFile.ApplyEnv(&envCfg); err != nil {
		log.Fatalf("invalid config: %v", err)
	}

	db, err := store.Open(*dbFile)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	// Read static files from the embedded filesystem in production or from
	// the local ./static in dev for easier iteration without restarting the
	// server.
	var staticHandler http.Handler
	if *devMode {
		staticHandler = http.FileServer(http.Dir("./static"))
	} else {
		sub, err := fs.Sub(staticFiles, "static")
		if err != nil {
			log.Fatalf("failed to mount embedded static files: %v", err)
		}
		staticHandler = http.FileServer(http.FS(sub))
	}

	ws := dashboard.NewWebServer(dashboard.Config{
		Address: *listen,
		Store:   db,
		EnvCfg:  envCfg,
		Static:  staticHandler,
	})

	var wg sync.WaitGroup
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := ws.Start(ctx); err != nil {
			log.Printf("web server error: %v", err)
		}
		log.Print("web server routine terminated")
	}()

	wg.Wait()
	log.Print("shutdown complete")
}
