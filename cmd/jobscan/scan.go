package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/jonathan/job-scanner/internal/fetch"
	"github.com/jonathan/job-scanner/internal/lexicon"
	"github.com/jonathan/job-scanner/internal/local"
	"github.com/jonathan/job-scanner/internal/observability"
	"github.com/jonathan/job-scanner/internal/remote"
	"github.com/jonathan/job-scanner/internal/scan"
	"github.com/jonathan/job-scanner/internal/sites"
	"github.com/jonathan/job-scanner/internal/types"
)

var scanCmd = &cobra.Command{
	Use:   "scan [file]",
	Short: "Extract facts from a job posting",
	Long:  "Extract structured facts from a job posting text file, from a URL with --url, or from stdin. With an API key the remote extractor is attempted first; otherwise the local extractor runs directly.",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runScan,
}

var (
	scanAPIKey      string
	scanModel       string
	scanLexiconPath string
	scanTimeout     time.Duration
	scanSourceURL   string
	scanLocalOnly   bool
	scanVerbose     bool
)

func init() {
	scanCmd.Flags().StringVar(&scanAPIKey, "api-key", "", "Gemini API key (overrides GEMINI_API_KEY env var)")
	scanCmd.Flags().StringVar(&scanModel, "model", "", "Gemini model name override")
	scanCmd.Flags().StringVar(&scanLexiconPath, "lexicon", "", "Path to an extra lexicon JSON file")
	scanCmd.Flags().DurationVar(&scanTimeout, "timeout", scan.DefaultRemoteTimeout, "Remote extraction timeout")
	scanCmd.Flags().StringVar(&scanSourceURL, "url", "", "Source URL of the posting")
	scanCmd.Flags().BoolVar(&scanLocalOnly, "local-only", false, "Skip the remote extractor")
	scanCmd.Flags().BoolVar(&scanVerbose, "verbose", false, "Emit pipeline events to stderr")

	rootCmd.AddCommand(scanCmd)
}

func runScan(_ *cobra.Command, args []string) error {
	ctx := context.Background()

	text, err := readInput(ctx, args)
	if err != nil {
		return err
	}

	lex := lexicon.Default()
	if scanLexiconPath != "" {
		lex, err = lexicon.LoadFile(scanLexiconPath)
		if err != nil {
			return fmt.Errorf("failed to load lexicon: %w", err)
		}
	}

	events := observability.Nop()
	if scanVerbose {
		events = observability.New(os.Stderr)
	}

	opts := []scan.Option{
		scan.WithLocal(local.NewExtractor(lex)),
		scan.WithEvents(events),
		scan.WithRemoteTimeout(scanTimeout),
	}

	if !scanLocalOnly {
		apiKey := scanAPIKey
		if apiKey == "" {
			apiKey = os.Getenv("GEMINI_API_KEY")
		}
		if apiKey != "" {
			clientOpts := []remote.Option{}
			if scanModel != "" {
				clientOpts = append(clientOpts, remote.WithModel(scanModel))
			}
			client, err := remote.NewClient(ctx, apiKey, clientOpts...)
			if err != nil {
				return fmt.Errorf("failed to create remote extractor: %w", err)
			}
			defer client.Close()
			opts = append(opts, scan.WithRemote(client))
		}
	}

	orchestrator := scan.NewOrchestrator(opts...)
	result := orchestrator.Scan(ctx, types.ExtractionInput{
		RawText:   text,
		SourceURL: scanSourceURL,
	})

	jsonBytes, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal result: %w", err)
	}
	fmt.Println(string(jsonBytes))
	return nil
}

func readInput(ctx context.Context, args []string) (string, error) {
	if len(args) == 1 {
		content, err := os.ReadFile(args[0])
		if err != nil {
			return "", fmt.Errorf("failed to read input file: %w", err)
		}
		return string(content), nil
	}

	if scanSourceURL != "" {
		return fetchPosting(ctx, scanSourceURL)
	}

	content, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", fmt.Errorf("failed to read stdin: %w", err)
	}
	return string(content), nil
}

// fetchPosting retrieves the page and reduces it to posting text,
// preferring a known-site parser over the generic reduction.
func fetchPosting(ctx context.Context, rawURL string) (string, error) {
	result, err := fetch.URL(ctx, rawURL, nil)
	if err != nil {
		return "", err
	}

	if parser := sites.NewFactory().ParserFor(rawURL); parser != nil {
		if posting, err := parser.Parse(result.HTML); err == nil && posting.Description != "" {
			return posting.Description, nil
		}
	}
	return fetch.ExtractPostingText(result.HTML)
}
