package main

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/jonathan/job-scanner/internal/cache"
	"github.com/jonathan/job-scanner/internal/career"
	"github.com/jonathan/job-scanner/internal/config"
	"github.com/jonathan/job-scanner/internal/feedback"
	"github.com/jonathan/job-scanner/internal/lexicon"
	"github.com/jonathan/job-scanner/internal/local"
	"github.com/jonathan/job-scanner/internal/normalize"
	"github.com/jonathan/job-scanner/internal/observability"
	"github.com/jonathan/job-scanner/internal/ratelimit"
	"github.com/jonathan/job-scanner/internal/remote"
	"github.com/jonathan/job-scanner/internal/scan"
	"github.com/jonathan/job-scanner/internal/server"
	"github.com/jonathan/job-scanner/internal/store"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long:  `Start an HTTP server that exposes scan, feedback, and parser support endpoints.`,
	RunE:  runServe,
}

var (
	servePort       int
	serveConfigPath string
)

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 8080, "Port to listen on")
	serveCmd.Flags().StringVar(&serveConfigPath, "config", "", "Path to a JSON config file")
	rootCmd.AddCommand(serveCmd)
}

func runServe(_ *cobra.Command, _ []string) error {
	cfg := config.FromEnv()
	if serveConfigPath != "" {
		fileCfg, err := config.LoadConfig(serveConfigPath)
		if err != nil {
			return err
		}
		cfg = fileCfg.MergeWithDefaults(cfg)
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if cfg.Port == 0 {
		cfg.Port = servePort
	}

	logger := zerolog.New(os.Stderr).With().Timestamp().Logger()
	events := observability.New(os.Stderr)
	ctx := context.Background()

	lex := lexicon.Default()
	if cfg.LexiconPath != "" {
		var err error
		lex, err = lexicon.LoadFile(cfg.LexiconPath)
		if err != nil {
			return fmt.Errorf("failed to load lexicon: %w", err)
		}
	}

	scanOpts := extractionOptions(cfg, lex, events)

	if cfg.APIKey != "" {
		clientOpts := []remote.Option{}
		if cfg.Model != "" {
			clientOpts = append(clientOpts, remote.WithModel(cfg.Model))
		}
		if cfg.RemoteRPS > 0 {
			clientOpts = append(clientOpts, remote.WithRateLimit(cfg.RemoteRPS))
		}
		client, err := remote.NewClient(ctx, cfg.APIKey, clientOpts...)
		if err != nil {
			return fmt.Errorf("failed to create remote extractor: %w", err)
		}
		defer client.Close()
		scanOpts = append(scanOpts, scan.WithRemote(client))
	} else {
		logger.Warn().Msg("no API key configured, scans use the local extractor only")
	}

	rlCfg := ratelimit.LoadConfig()
	if cfg.RateLimitMax > 0 {
		rlCfg.MaxPerWindow = cfg.RateLimitMax
	}
	if window := cfg.RateLimitWindowDuration(0); window > 0 {
		rlCfg.Window = window
	}

	serverCfg := server.Config{
		Port:         cfg.Port,
		Orchestrator: scan.NewOrchestrator(scanOpts...),
		CacheTTL:     cfg.CacheTTLDuration(cache.DefaultTTL),
		RateLimit:    rlCfg,
		Events:       events,
		Logger:       logger,
	}

	if cfg.SearchAPIKey != "" && cfg.SearchEngineID != "" {
		serverCfg.Finder = career.NewFinder(cfg.SearchAPIKey, cfg.SearchEngineID)
	}

	if cfg.FeedbackWebhookURL != "" {
		limiter := ratelimit.NewLimiter(rlCfg)
		serverCfg.Submitter = feedback.NewSubmitter(cfg.FeedbackWebhookURL, limiter,
			feedback.WithEvents(events))
	}

	if cfg.DatabaseURL != "" {
		history, err := store.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		serverCfg.History = history
	}

	srv, err := server.New(serverCfg)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	return srv.Start()
}

// extractionOptions builds the orchestrator options derived from config:
// lexicon-backed local extraction with list caps, the normalizer input
// cap, and the remote timeout.
func extractionOptions(cfg config.Config, lex *lexicon.Lexicon, events *observability.Events) []scan.Option {
	localOpts := []local.Option{}
	if cfg.MaxSkills > 0 {
		localOpts = append(localOpts, local.WithMaxSkills(cfg.MaxSkills))
	}
	if cfg.MaxKeywords > 0 {
		localOpts = append(localOpts, local.WithMaxKeywords(cfg.MaxKeywords))
	}

	normOpts := []normalize.Option{}
	if cfg.MaxLen > 0 {
		normOpts = append(normOpts, normalize.WithMaxLen(cfg.MaxLen))
	}

	return []scan.Option{
		scan.WithLocal(local.NewExtractor(lex, localOpts...)),
		scan.WithNormalizer(normalize.New(normOpts...)),
		scan.WithEvents(events),
		scan.WithRemoteTimeout(cfg.RemoteTimeoutDuration(scan.DefaultRemoteTimeout)),
	}
}
