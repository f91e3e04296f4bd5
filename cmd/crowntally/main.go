package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/abrezinsky/crowntally/internal/app"
	"github.com/abrezinsky/crowntally/internal/auth"
	"github.com/abrezinsky/crowntally/internal/logger"
)

var version = "dev"

func main() {
	port := flag.Int("port", 8082, "HTTP server port")
	dbPath := flag.String("db", "crowntally.db", "SQLite database path")
	organizerPw := flag.String("organizerpw", "", "Organizer password (auto-generated if not set)")
	baseURL := flag.String("baseurl", "", "Base URL for judge QR codes (default http://localhost:<port>)")
	logLevel := flag.String("loglevel", "info", "Log level (debug, info, warn, error)")
	showVersion := flag.Bool("version", false, "Show version and exit")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, `CrownTally - Pageant Scoring & Ranking Engine

Usage:
  crowntally [options]

Options:
  -port int        HTTP server port (default 8082)
  -db string       SQLite database path (default "crowntally.db")
  -organizerpw str Organizer password (auto-generated if not set)
  -baseurl str     Base URL embedded in judge QR codes
  -loglevel str    Log level: debug, info, warn, error (default "info")
  -version         Show version and exit
  -help            Show this help message

Examples:
  crowntally                            # Run on port 8082 with crowntally.db
  crowntally -port 8080                 # Run on port 8080
  crowntally -db /data/pageant.db       # Use custom database path
  crowntally -organizerpw secret123     # Use specific organizer password

`)
	}

	flag.Parse()

	if *showVersion {
		fmt.Printf("crowntally %s\n", version)
		os.Exit(0)
	}

	password := *organizerPw
	if password == "" {
		password = auth.GeneratePassword()
	}
	organizerAuth := auth.New(password)

	appLog := logger.NewWithLevel(logger.ParseLevel(*logLevel))

	base := *baseURL
	if base == "" {
		base = fmt.Sprintf("http://localhost:%d", *port)
	}

	a, err := app.New(appLog, *dbPath, base, organizerAuth)
	if err != nil {
		log.Fatal("Failed to initialize application:", err)
	}
	defer a.Close()

	appLog.Info("Organizer password", "password", password)

	if err := a.Run(app.Addr(*port)); err != nil {
		log.Fatal(err)
	}
}
