// Package main is the claimsat CLI entry point.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/RameshMYatnalli/new-claimsat/internal/app"
	"github.com/RameshMYatnalli/new-claimsat/internal/cli"
	"github.com/RameshMYatnalli/new-claimsat/internal/config"
	"github.com/RameshMYatnalli/new-claimsat/internal/models"
	"github.com/RameshMYatnalli/new-claimsat/internal/storage"
	"github.com/RameshMYatnalli/new-claimsat/internal/sweep"
	"github.com/RameshMYatnalli/new-claimsat/internal/watcher"
	"github.com/RameshMYatnalli/new-claimsat/pkg/utils"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

var version = "dev"

const defaultConfigPath = "/usr/local/etc/claimsat/config.yaml"

// loadConfig loads config from path. When path is the default, config.yaml in the
// current directory wins if present. When no file exists at the default path the
// built-in defaults plus environment overrides are used.
// Returns the config and the path that was actually loaded ("" for defaults).
func loadConfig(path string) (*config.Config, string, error) {
	if path == defaultConfigPath {
		if cwd, err := os.Getwd(); err == nil {
			fallback := filepath.Join(cwd, "config.yaml")
			if _, err := os.Stat(fallback); err == nil {
				cfg, err := config.Load(fallback)
				if err != nil {
					return nil, "", err
				}
				return cfg, fallback, nil
			}
		}
		if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
			cfg, err := config.Default()
			if err != nil {
				return nil, "", err
			}
			return cfg, "", nil
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "Failed to read .env: %v\n", err)
	}
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}
	command := os.Args[1]
	switch command {
	case "server":
		runServer()
	case "seed":
		runSeed()
	case "score":
		runScore()
	case "match":
		runMatch()
	case "sweep":
		runSweep()
	case "status":
		runStatus()
	case "version", "--version", "-v":
		fmt.Printf("claimsat version %s\n", version)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

// setup loads config, creates the logger, and builds the components. It exits on failure.
func setup(configPath string, debug bool) (*config.Config, *zap.Logger, *app.Components) {
	cfg, resolved, err := loadConfig(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	debugMode := cfg.Debug || debug
	logger, err := utils.NewLogger(debugMode)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	logger.Debug("config loaded", zap.String("config_path", resolved), zap.Bool("debug", debugMode))

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	components, err := app.Build(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize components", zap.Error(err))
	}
	return cfg, logger, components
}

func runServer() {
	fs := flag.NewFlagSet("server", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	debug := fs.Bool("debug", false, "enable debug logging")
	_ = fs.Parse(os.Args[2:])

	cfg, logger, components := setup(*configPath, *debug)
	defer logger.Sync()
	defer components.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if len(cfg.Inbox.Directories) > 0 {
		inbox := watcher.NewInbox(cfg.Inbox, components.Claims, logger)
		if err := inbox.Start(ctx); err != nil {
			logger.Fatal("Failed to start evidence inbox", zap.Error(err))
		}
		defer inbox.Stop()
		logger.Info("evidence inbox watching", zap.Strings("directories", cfg.Inbox.Directories))
	}

	if cfg.Sweep.Enabled {
		sweeper := sweep.New(components.Reunify, cfg.Matching.MinConfidence, components.Metrics, logger)
		if err := sweeper.Start(ctx, cfg.Sweep.Schedule); err != nil {
			logger.Fatal("Failed to start re-match sweep", zap.Error(err))
		}
		defer sweeper.Stop()
	}

	srv := components.Server(logger)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutting down...")
	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	_ = srv.Stop(shutdownCtx)
}

func runSeed() {
	fs := flag.NewFlagSet("seed", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	_ = fs.Parse(os.Args[2:])

	_, logger, components := setup(*configPath, false)
	defer logger.Sync()
	defer components.Close()

	res, err := seed(context.Background(), components, time.Now())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Seed failed: %v\n", err)
		os.Exit(1)
	}
	res.Print(os.Stdout)
}

func runScore() {
	fs := flag.NewFlagSet("score", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	serverURL := fs.String("server", "", "server URL (empty = use direct storage)")
	outputFormat := fs.String("output", "text", "output format: text or json")
	_ = fs.Parse(os.Args[2:])

	if fs.NArg() < 1 {
		fmt.Println("Usage: claimsat score [flags] <claim_id>")
		os.Exit(1)
	}
	claimID := fs.Arg(0)
	format := parseFormat(*outputFormat)

	var score *models.ClaimScore
	if *serverURL != "" {
		var err error
		score, err = callAPI[*models.ClaimScore](http.MethodPost, *serverURL+"/api/v1/claims/"+url.PathEscape(claimID)+"/score")
		if err != nil {
			fmt.Fprintf(os.Stderr, "Score failed: %v\n", err)
			os.Exit(1)
		}
	} else {
		_, logger, components := setup(*configPath, false)
		defer logger.Sync()
		defer components.Close()
		var err error
		score, err = components.Claims.ScoreClaim(context.Background(), claimID)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Score failed: %v\n", err)
			os.Exit(1)
		}
	}
	if err := cli.WriteClaimScore(os.Stdout, claimID, score, format); err != nil {
		fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
		os.Exit(1)
	}
}

func runMatch() {
	fs := flag.NewFlagSet("match", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	serverURL := fs.String("server", "", "server URL (empty = use direct storage)")
	missing := fs.String("missing", "", "missing person id to find survivors for")
	survivor := fs.String("survivor", "", "survivor id to find missing persons for")
	minConfidence := fs.Float64("min-confidence", -1, "minimum confidence (default from config)")
	outputFormat := fs.String("output", "text", "output format: text or json")
	_ = fs.Parse(os.Args[2:])

	if (*missing == "") == (*survivor == "") {
		fmt.Println("Usage: claimsat match [flags] -missing <person_id> | -survivor <survivor_id>")
		os.Exit(1)
	}
	format := parseFormat(*outputFormat)
	anchor, path := *missing, "missing-persons"
	if *survivor != "" {
		anchor, path = *survivor, "survivors"
	}

	var matches []*models.Match
	if *serverURL != "" {
		endpoint := fmt.Sprintf("%s/api/v1/reunify/%s/%s/matches", *serverURL, path, url.PathEscape(anchor))
		if *minConfidence >= 0 {
			endpoint += fmt.Sprintf("?min_confidence=%g", *minConfidence)
		}
		body, err := callAPI[struct {
			Matches []*models.Match `json:"matches"`
		}](http.MethodGet, endpoint)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Match failed: %v\n", err)
			os.Exit(1)
		}
		matches = body.Matches
	} else {
		cfg, logger, components := setup(*configPath, false)
		defer logger.Sync()
		defer components.Close()
		threshold := cfg.Matching.MinConfidence
		if *minConfidence >= 0 {
			threshold = *minConfidence
		}
		ctx := context.Background()
		var err error
		if *missing != "" {
			matches, err = components.Reunify.FindMatchesForMissingPerson(ctx, anchor, threshold)
		} else {
			matches, err = components.Reunify.FindMatchesForSurvivor(ctx, anchor, threshold)
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "Match failed: %v\n", err)
			os.Exit(1)
		}
	}
	if err := cli.WriteMatches(os.Stdout, anchor, matches, format); err != nil {
		fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
		os.Exit(1)
	}
}

func runSweep() {
	fs := flag.NewFlagSet("sweep", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	_ = fs.Parse(os.Args[2:])

	cfg, logger, components := setup(*configPath, false)
	defer logger.Sync()
	defer components.Close()

	sweeper := sweep.New(components.Reunify, cfg.Matching.MinConfidence, components.Metrics, logger)
	res, err := sweeper.RunOnce(context.Background())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Sweep failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Swept %d open reports: %d matches, %d failures\n", res.Persons, res.Matches, res.Failures)
}

func runStatus() {
	fs := flag.NewFlagSet("status", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	serverURL := fs.String("server", "", "server URL (empty = use direct storage)")
	outputFormat := fs.String("output", "text", "output format: text or json")
	_ = fs.Parse(os.Args[2:])

	format := parseFormat(*outputFormat)
	var stats *storage.Stats
	if *serverURL != "" {
		body, err := callAPI[struct {
			Stats *storage.Stats `json:"stats"`
		}](http.MethodGet, *serverURL+"/api/v1/status")
		if err != nil {
			fmt.Fprintf(os.Stderr, "Status failed: %v\n", err)
			os.Exit(1)
		}
		stats = body.Stats
	} else {
		_, logger, components := setup(*configPath, false)
		defer logger.Sync()
		defer components.Close()
		var err error
		stats, err = components.Storage.Stats(context.Background())
		if err != nil {
			fmt.Fprintf(os.Stderr, "Status failed: %v\n", err)
			os.Exit(1)
		}
	}
	if stats == nil {
		fmt.Fprintln(os.Stderr, "Status failed: empty response")
		os.Exit(1)
	}
	if err := cli.WriteStats(os.Stdout, stats, format); err != nil {
		fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
		os.Exit(1)
	}
}

func parseFormat(s string) cli.OutputFormat {
	format, err := cli.ParseOutputFormat(s)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	return format
}

var apiClient = &http.Client{Timeout: 60 * time.Second}

// callAPI performs a bodiless request and unwraps the response envelope into T.
func callAPI[T any](method, endpoint string) (T, error) {
	var zero T
	req, err := http.NewRequest(method, endpoint, nil)
	if err != nil {
		return zero, err
	}
	resp, err := apiClient.Do(req)
	if err != nil {
		return zero, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	return decodeEnvelope[T](resp)
}

func decodeEnvelope[T any](resp *http.Response) (T, error) {
	var zero T
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return zero, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode >= http.StatusBadRequest {
		var e struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(b, &e) == nil && e.Error != "" {
			return zero, fmt.Errorf("server returned %d: %s", resp.StatusCode, e.Error)
		}
		return zero, fmt.Errorf("server returned %d: %s", resp.StatusCode, string(b))
	}
	var env struct {
		Success bool `json:"success"`
		Data    T    `json:"data"`
	}
	if err := json.Unmarshal(b, &env); err != nil {
		return zero, fmt.Errorf("decode response: %w", err)
	}
	return env.Data, nil
}

func printUsage() {
	fmt.Println(`claimsat - Disaster claim scoring and family reunification

Usage:
  claimsat server [flags]                       Start the HTTP server
  claimsat seed [flags]                         Load the sample disaster, persons, and claim
  claimsat score [flags] <claim_id>             Score a claim
  claimsat match [flags] -missing <person_id>   Find survivors matching a missing person
  claimsat match [flags] -survivor <id>         Find missing persons matching a survivor
  claimsat sweep [flags]                        Re-match every open missing-person report once
  claimsat status [flags]                       Show record counts
  claimsat version                              Show version
  claimsat help                                 Show this help

Common flags:
  -config string    config file path (default /usr/local/etc/claimsat/config.yaml)
  -server string    query a running server instead of the local store (score, match, status)
  -output string    text or json (score, match, status)

Environment (.env is loaded when present):
  LOCATION_WEIGHT, TIME_WEIGHT, ... override scoring weights; see config.example.yaml.`)
}
