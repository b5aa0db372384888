package main

import (
	"context"
	"flag"
	"fmt"
	"io/fs"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	mcpserver "github.com/mark3labs/mcp-go/server"
	pacemap "github.com/meltforce/pacemap"
	"github.com/meltforce/pacemap/internal/app"
	"github.com/meltforce/pacemap/internal/config"
	"github.com/meltforce/pacemap/internal/geo"
	"github.com/meltforce/pacemap/internal/mcp"
	"github.com/meltforce/pacemap/internal/server"
	"github.com/meltforce/pacemap/internal/session"
	"github.com/meltforce/pacemap/internal/storage"
	"tailscale.com/tsnet"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	migrateOnly := flag.Bool("migrate-only", false, "run migrations and exit (postgres driver)")
	flag.Parse()

	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	log.Info("PaceMap starting", "version", Version)

	// Load config
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Open the blob store
	ctx := context.Background()
	var blobs storage.BlobStore

	switch cfg.Database.Driver {
	case "postgres":
		dsn := cfg.Database.DSN()
		if err := storage.RunMigrations(dsn, "migrations"); err != nil {
			log.Error("migration failed", "error", err)
			os.Exit(1)
		}
		log.Info("migrations applied")
		if *migrateOnly {
			log.Info("migrate-only: exiting")
			return
		}
		blobs, err = storage.OpenPostgres(ctx, dsn)
	default:
		blobs, err = storage.OpenSQLite(cfg.Database.Path)
	}
	if err != nil {
		log.Error("failed to open blob store", "driver", cfg.Database.Driver, "error", err)
		os.Exit(1)
	}
	defer blobs.Close()
	log.Info("blob store ready", "driver", cfg.Database.Driver)

	// Wire the application
	archive := storage.NewArchive(blobs, log)
	store := session.New()
	view := app.NewViewState()

	var locator app.Locator = app.UnavailableLocator{}
	if cfg.Map.HomeLat != nil && cfg.Map.HomeLng != nil {
		locator = app.FixedLocator{Coords: geo.Coordinates{Lat: *cfg.Map.HomeLat, Lng: *cfg.Map.HomeLng}}
	}

	ctrl := app.NewController(store, archive, view, locator, app.Options{
		DefaultCenter:   geo.Coordinates{Lat: cfg.Map.CenterLat, Lng: cfg.Map.CenterLng},
		DefaultZoom:     cfg.Map.Zoom,
		TileURL:         cfg.Map.TileURL,
		TileAttribution: cfg.Map.TileAttribution,
		LocateTimeout:   time.Duration(cfg.Map.LocateTimeoutSec) * time.Second,
	}, log)
	ctrl.Start(ctx)

	// Create server
	srv := server.New(ctrl, view, log)

	// MCP access layer
	mcpSrv := mcp.New(ctrl, view, Version, log)
	srv.MountMCP(mcpserver.NewStreamableHTTPServer(mcpSrv))

	// Serve embedded frontend
	webDist, err := fs.Sub(pacemap.WebFS, "web/dist")
	if err != nil {
		log.Error("failed to load embedded frontend", "error", err)
		os.Exit(1)
	}
	srv.SetFrontend(webDist)

	// Start server — tsnet or plain HTTP
	var listener net.Listener
	var tsServer *tsnet.Server

	if cfg.Tailscale.Enabled {
		tsServer = &tsnet.Server{
			Hostname: cfg.Tailscale.Hostname,
			Dir:      cfg.Tailscale.StateDir,
		}
		if err := tsServer.Start(); err != nil {
			log.Error("tsnet start failed", "error", err)
			os.Exit(1)
		}
		defer tsServer.Close()

		listener, err = tsServer.Listen("tcp", ":80")
		if err != nil {
			log.Error("tsnet listen failed", "error", err)
			os.Exit(1)
		}
		log.Info("tsnet server starting", "hostname", cfg.Tailscale.Hostname)
	} else {
		addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
		listener, err = net.Listen("tcp", addr)
		if err != nil {
			log.Error("listen failed", "addr", addr, "error", err)
			os.Exit(1)
		}
		log.Info("server starting", "addr", addr, "mode", "dev (no tailscale)")
	}

	httpSrv := &http.Server{Handler: srv}

	go func() {
		if err := httpSrv.Serve(listener); err != nil && err != http.ErrServerClosed {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	log.Info("shutting down", "signal", sig)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown error", "error", err)
	}
	log.Info("server stopped")
}
