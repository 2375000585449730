package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/marcus/skillmatch/internal/config"
	"github.com/marcus/skillmatch/internal/logger"
	"github.com/marcus/skillmatch/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long: `Start an HTTP server that exposes REST endpoints for user profiles, job postings, recommendations, learning paths, and assessments.

Configuration can be loaded from a JSON file using --config. Command-line arguments override config file values; environment variables fill whatever is left unset.`,
	RunE: runServe,
}

var (
	serveConfigPath       string
	serveAddr             string
	serveDatabaseURL      string
	serveAttemptQuestions int
	serveFetchTimeout     int
	serveUseBrowser       bool
	serveLogJSON          bool
	serveDebug            bool
)

func init() {
	serveCmd.Flags().StringVar(&serveConfigPath, "config", "", "Path to config.json file (values can be overridden by other flags)")
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (default :8080)")
	serveCmd.Flags().StringVar(&serveDatabaseURL, "db-url", "", "PostgreSQL connection URL (optional, defaults to DATABASE_URL env var)")
	serveCmd.Flags().IntVar(&serveAttemptQuestions, "attempt-questions", 0, "Questions drawn per assessment attempt")
	serveCmd.Flags().IntVar(&serveFetchTimeout, "fetch-timeout", 0, "Ingest fetch timeout in seconds")
	serveCmd.Flags().BoolVar(&serveUseBrowser, "use-browser", false, "Render ingested pages with a headless browser (requires Chrome)")
	serveCmd.Flags().BoolVar(&serveLogJSON, "log-json", false, "Emit JSON log lines instead of console output")
	serveCmd.Flags().BoolVar(&serveDebug, "debug", false, "Enable debug-level logging")

	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	// Step 1: Load config file if provided
	var cfg config.Config
	if serveConfigPath != "" {
		loaded, err := config.LoadConfig(serveConfigPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		cfg = *loaded
	}

	// Step 2: Apply CLI overrides (command-line args take priority)
	// Only override if the flag was explicitly set
	if cmd.Flags().Changed("addr") {
		cfg.ListenAddr = serveAddr
	}
	if cmd.Flags().Changed("db-url") {
		cfg.DatabaseURL = serveDatabaseURL
	}
	if cmd.Flags().Changed("attempt-questions") {
		cfg.AttemptQuestions = serveAttemptQuestions
	}
	if cmd.Flags().Changed("fetch-timeout") {
		cfg.FetchTimeout = serveFetchTimeout
	}
	if cmd.Flags().Changed("use-browser") {
		cfg.UseBrowser = serveUseBrowser
	}
	if cmd.Flags().Changed("log-json") {
		cfg.LogJSON = serveLogJSON
	}
	if cmd.Flags().Changed("debug") {
		cfg.Debug = serveDebug
	}

	// Step 3: Environment fills what neither flags nor the file set,
	// then built-in defaults close the rest
	cfg = cfg.MergeWithDefaults(config.FromEnv())
	cfg = cfg.MergeWithDefaults(config.Defaults())

	if err := cfg.Validate(); err != nil {
		return err
	}
	if cfg.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL environment variable or --db-url flag is required")
	}

	log, err := logger.New(cfg.LogJSON, cfg.Debug)
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	srv, err := server.New(server.Config{
		Addr:             cfg.ListenAddr,
		DatabaseURL:      cfg.DatabaseURL,
		AttemptQuestions: cfg.AttemptQuestions,
		FetchTimeout:     time.Duration(cfg.FetchTimeout) * time.Second,
		UseBrowser:       cfg.UseBrowser,
	}, log)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	return srv.Start()
}
