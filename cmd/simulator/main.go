package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
)

var (
	addr     = flag.String("addr", ":9090", "Listen address")
	ownerID  = flag.String("owner", "owner-1", "Simulated owner ID")
	orgID    = flag.String("org", "org-1", "Simulated organization ID")
	token    = flag.String("token", "", "Required bearer token (empty disables auth)")
	stations = flag.Int("stations", 6, "Number of stations")
	sessions = flag.Int("sessions", 2000, "Number of sessions")
	days     = flag.Int("days", 400, "History depth in days")
	seed     = flag.Int64("seed", 42, "Random seed")
	failPage = flag.Int("fail-page", 0, "History page answered with 503 (0 disables)")
	verbose  = flag.Bool("verbose", false, "Enable verbose logging")
)

func main() {
	flag.Parse()

	// Setup logger
	var logger *zap.Logger
	var err error
	if *verbose {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	config := &SimulatorConfig{
		OwnerID:  *ownerID,
		OrgID:    *orgID,
		Token:    *token,
		Stations: *stations,
		Sessions: *sessions,
		Days:     *days,
		Seed:     *seed,
		FailPage: *failPage,
	}

	app := NewSimulator(config, logger).App()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		fmt.Println("\nShutting down simulator...")
		if err := app.Shutdown(); err != nil {
			logger.Error("Simulator shutdown failed", zap.Error(err))
		}
	}()

	fmt.Printf("Platform history simulator listening on %s\n", *addr)
	fmt.Printf("  Owner: %s  Org: %s\n", *ownerID, *orgID)
	fmt.Printf("  Sessions: %d over %d days\n", *sessions, *days)

	if err := app.Listen(*addr); err != nil {
		logger.Fatal("Simulator failed", zap.Error(err))
	}
}
