package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/linkz-dao/linkz-controller/internal/scan"
	"github.com/linkz-dao/linkz-controller/internal/session"
)

// #region main

func main() {
	dbPath := flag.String("db", "linkz_sessions.db", "path to linkz_sessions.db")
	once := flag.Bool("once", false, "sweep once and exit")
	interval := flag.Duration("interval", 5*time.Minute, "sweep cadence in loop mode")
	flag.Parse()

	zl, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer zl.Sync()
	logger := zl.Sugar()

	store, err := session.NewStore(*dbPath)
	if err != nil {
		logger.Fatalw("open session store", "error", err)
	}
	defer store.Close()

	job := scan.NewJob(store, scan.Config{Interval: *interval}, logger)

	if *once {
		updated, err := job.RunOnce(context.Background())
		if err != nil {
			fmt.Fprintf(os.Stderr, "sweep: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("sweep complete: %d session(s) updated\n", updated)
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Infow("scan loop started", "db", *dbPath, "interval", *interval)
	job.Run(ctx)
}

// #endregion main
