package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/claude/liftlog/internal/storage"
)

func main() {
	dbPath := flag.String("db", "", "path to the LiftLog database (required)")
	outPath := flag.String("o", "", "output file (default stdout)")
	flag.Parse()

	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

	if *dbPath == "" {
		fmt.Fprintf(os.Stderr, "Usage: liftlog-export -db /path/to/liftlog.db [-o sets.csv]\n")
		flag.PrintDefaults()
		os.Exit(1)
	}

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

	rows, err := db.ExportRows(context.Background())
	if err != nil {
		log.Error("export query failed", "error", err)
		os.Exit(1)
	}

	var out io.Writer = os.Stdout
	if *outPath != "" {
		f, err := os.Create(*outPath)
		if err != nil {
			log.Error("failed to create output file", "path", *outPath, "error", err)
			os.Exit(1)
		}
		defer func() { _ = f.Close() }()
		out = f
	}

	if err := storage.WriteCSV(out, rows); err != nil {
		log.Error("csv write failed", "error", err)
		os.Exit(1)
	}
	log.Info("export complete", "sets", len(rows), "output", *outPath)
}
