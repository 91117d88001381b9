package main

import (
	"context"
	"log"
	"os"

	"github.com/existflow/neocount/internal/config"
	"github.com/existflow/neocount/internal/db"
	"github.com/existflow/neocount/internal/logger"
	"github.com/existflow/neocount/internal/store"
	"github.com/existflow/neocount/server"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	port := os.Getenv("PORT")
	addr := cfg.Listen
	if port != "" {
		addr = ":" + port
	}

	if err := logger.Init(logger.Config{
		Level:      logger.ParseLevel(cfg.LogLevel),
		FilePath:   cfg.LogFile,
		MaxSize:    10 * 1024 * 1024, // 10MB
		MaxAge:     7,
		MaxBackups: 5,
		Console:    true,
	}); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Close()

	opts, cleanup, err := serverOptions(context.Background(), cfg)
	if err != nil {
		log.Fatalf("Failed to open event store: %v", err)
	}
	defer cleanup()

	srv, err := server.New(opts)
	if err != nil {
		log.Fatalf("Failed to create server: %v", err)
	}
	defer func() {
		if err := srv.Close(); err != nil {
			log.Printf("Error closing server: %v", err)
		}
	}()

	log.Printf("NeoCount server starting on %s (%s storage)", addr, cfg.Storage)
	if err := srv.Start(addr); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}

// serverOptions serves the hosted table per token subject in remote mode, or
// the local slot without authentication
func serverOptions(ctx context.Context, cfg *config.Config) (server.Options, func(), error) {
	if cfg.IsRemote() {
		if cfg.Identity.JWTSecret == "" {
			return server.Options{}, nil, server.ErrSecretRequired
		}
		dsn := os.Getenv("DATABASE_URL")
		if dsn == "" {
			dsn = cfg.RemoteURL
		}
		conn, err := store.OpenPostgres(dsn)
		if err != nil {
			return server.Options{}, nil, err
		}
		if err := store.MigrateRemote(ctx, conn); err != nil {
			_ = conn.Close()
			return server.Options{}, nil, err
		}
		opts := server.Options{
			Stores:      server.RemoteStores(conn),
			RequireAuth: true,
			JWTSecret:   cfg.Identity.JWTSecret,
		}
		return opts, func() { _ = conn.Close() }, nil
	}

	database, err := db.Open(cfg.DatabasePath)
	if err != nil {
		return server.Options{}, nil, err
	}
	local, err := store.OpenLocal(ctx, database)
	if err != nil {
		_ = database.Close()
		return server.Options{}, nil, err
	}
	return server.Options{Stores: server.LocalStores(local)}, func() { _ = database.Close() }, nil
}
