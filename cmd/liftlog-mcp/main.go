package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/claude/liftlog/internal/mcp"
	"github.com/claude/liftlog/internal/repository"
	"github.com/claude/liftlog/internal/storage"
	"github.com/mark3labs/mcp-go/server"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	dbPath := flag.String("db", "", "path to a local LiftLog database (local mode)")
	baseURL := flag.String("base-url", "", "base URL of a running LiftLog server (remote mode)")
	flag.Parse()

	// Logs go to stderr: stdout carries the MCP stdio transport.
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

	if (*dbPath == "") == (*baseURL == "") {
		fmt.Fprintf(os.Stderr, "Usage: liftlog-mcp -db /path/to/liftlog.db | -base-url http://host:port\n")
		flag.PrintDefaults()
		os.Exit(1)
	}

	var ds mcp.DataSource
	if *dbPath != "" {
		db, err := storage.Open(*dbPath)
		if err != nil {
			log.Error("failed to open database", "path", *dbPath, "error", err)
			os.Exit(1)
		}
		defer db.Close()

		if err := db.RunMigrations(); err != nil {
			log.Error("migration failed", "error", err)
			os.Exit(1)
		}

		repo := repository.New(db, log)
		if err := repo.SeedIfEmpty(context.Background()); err != nil {
			log.Error("catalog seed failed", "error", err)
			os.Exit(1)
		}
		ds = repo
		log.Info("MCP server starting", "mode", "local", "db", *dbPath)
	} else {
		ds = mcp.NewHTTPClient(*baseURL)
		log.Info("MCP server starting", "mode", "remote", "base_url", *baseURL)
	}

	s := mcp.New(ds, Version, log)
	if err := server.ServeStdio(s); err != nil {
		log.Error("stdio server error", "error", err)
		os.Exit(1)
	}
}
