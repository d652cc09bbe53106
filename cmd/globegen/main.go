package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"
)

func main() {
	var cfgPath string
	flag.StringVar(&cfgPath, "config", "", "path to generator configuration file")
	flag.Parse()

	prefix := os.Getenv(envLogPrefix)
	if prefix == "" {
		prefix = "globegen"
	}
	logger := log.New(os.Stderr, prefix+" ", log.LstdFlags)

	cfg, err := loadConfig(cfgPath)
	if err != nil {
		logger.Fatalf("load config: %v", err)
	}

	w, err := newWorker(cfg, logger)
	if err != nil {
		logger.Fatalf("initialise worker: %v", err)
	}

	ctx, cancel := signalContext(logger)
	defer cancel()

	if err := w.run(ctx); err != nil {
		logger.Fatalf("worker exited with error: %v", err)
	}
}

func signalContext(logger *log.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		defer signal.Stop(signals)
		select {
		case <-signals:
			cancel()
		case <-ctx.Done():
		}

		// Ensure the process terminates if shutdown stalls.
		time.AfterFunc(10*time.Second, func() {
			logger.Printf("forced shutdown after timeout")
			os.Exit(1)
		})
	}()

	return ctx, cancel
}
