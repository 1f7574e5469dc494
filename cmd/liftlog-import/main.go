package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/claude/liftlog/internal/importer"
	"github.com/claude/liftlog/internal/storage"
)

func main() {
	dbPath := flag.String("db", "", "path to the LiftLog database (required)")
	csvPath := flag.String("path", "", "path to a LiftLog CSV export, optionally gzipped (required)")
	dryRun := flag.Bool("dry-run", false, "report counts without inserting into database")
	flag.Parse()

	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	if *dbPath == "" || *csvPath == "" {
		fmt.Fprintf(os.Stderr, "Usage: liftlog-import -db /path/to/liftlog.db -path export.csv [-dry-run]\n")
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
	log.Info("migrations applied")

	if *dryRun {
		log.Info("DRY RUN mode — no data will be written to the database")
	}

	imp := importer.New(db, log, *dryRun)
	stats, err := imp.Import(context.Background(), *csvPath)
	if err != nil {
		log.Error("import failed", "error", err)
		printStats(log, stats)
		os.Exit(1)
	}

	printStats(log, stats)
	log.Info("import complete")
}

func printStats(log *slog.Logger, stats *importer.Stats) {
	log.Info("import stats",
		"rows_read", stats.RowsRead,
		"rows_skipped", stats.RowsSkipped,
		"workouts_inserted", stats.WorkoutsInserted,
		"workouts_duplicated", stats.WorkoutsDuplicated,
		"sets_inserted", stats.SetsInserted,
		"exercises_created", stats.ExercisesCreated,
	)
}
