// Copyright 2025 the lawrag authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/urfave/cli/v2"

	lawrag "github.com/rotemx/RAG-sub001"
	"github.com/rotemx/RAG-sub001/config"
	"github.com/rotemx/RAG-sub001/core"
	"github.com/rotemx/RAG-sub001/ingest"
	"github.com/rotemx/RAG-sub001/rag"
	"github.com/rotemx/RAG-sub001/reindex"
)

func main() {
	app := &cli.App{
		Name:  "lawrag",
		Usage: "Retrieval-augmented question answering over legal document corpora",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to YAML configuration file (built-in defaults when unset)",
			},
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
			&cli.StringFlag{
				Name:  "log-format",
				Usage: "Set logging format (text, json)",
				Value: "text",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:      "query",
				Usage:     "Ask one question against the indexed corpus",
				ArgsUsage: "<question>",
				Action:    queryCommand,
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "stream",
						Usage: "Print the answer as it is generated",
					},
					&cli.IntFlag{
						Name:  "top-k",
						Usage: "Number of passages to retrieve (0 uses the configured default)",
					},
					&cli.Float64Flag{
						Name:  "threshold",
						Usage: "Minimum similarity score for retrieved passages (0 disables)",
					},
					&cli.StringSliceFlag{
						Name:  "filter",
						Usage: "Restrict retrieval to chunks with a matching attribute, as key=value (repeatable)",
					},
				},
			},
			{
				Name:   "chat",
				Usage:  "Hold an interactive conversation against the indexed corpus",
				Action: chatCommand,
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "top-k",
						Usage: "Number of passages to retrieve (0 uses the configured default)",
					},
					&cli.Float64Flag{
						Name:  "threshold",
						Usage: "Minimum similarity score for retrieved passages (0 disables)",
					},
					&cli.StringSliceFlag{
						Name:  "filter",
						Usage: "Restrict retrieval to chunks with a matching attribute, as key=value (repeatable)",
					},
					&cli.StringFlag{
						Name:  "metrics-listen",
						Usage: "Serve Prometheus metrics on this address (e.g. :9090)",
					},
				},
			},
			{
				Name:      "ingest",
				Usage:     "Index documents into the corpus",
				ArgsUsage: "<path>...",
				Action:    ingestCommand,
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "replace",
						Usage: "Drop each source's existing chunks before indexing it",
					},
					&cli.StringSliceFlag{
						Name:  "attr",
						Usage: "Stamp an attribute on every ingested chunk, as key=value (repeatable)",
					},
				},
			},
			{
				Name:   "reindex",
				Usage:  "Re-embed every stored chunk with the configured embedding model",
				Action: reindexCommand,
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "batch-size",
						Usage: "Number of chunks to process in each batch",
						Value: 100,
					},
					&cli.IntFlag{
						Name:  "report-interval",
						Usage: "Report progress every N chunks",
						Value: 100,
					},
					&cli.IntFlag{
						Name:  "max-retries",
						Usage: "Maximum retry attempts for failed operations",
						Value: 3,
					},
					&cli.DurationFlag{
						Name:  "retry-delay",
						Usage: "Base delay for exponential backoff",
						Value: 1 * time.Second,
					},
					&cli.StringFlag{
						Name:  "embedding-model",
						Usage: "Model name to record in the index metadata (defaults to the configured model)",
					},
				},
			},
			{
				Name:   "stats",
				Usage:  "Show index size and embedding metadata",
				Action: statsCommand,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func queryCommand(c *cli.Context) error {
	ctx := context.Background()

	question := strings.TrimSpace(strings.Join(c.Args().Slice(), " "))
	if question == "" {
		return fmt.Errorf("question is required")
	}

	filter, err := parseFilter(c.StringSlice("filter"))
	if err != nil {
		return err
	}

	app, _, err := openApp(c)
	if err != nil {
		return err
	}
	defer app.Close()

	if err := app.Initialize(ctx); err != nil {
		return fmt.Errorf("failed to initialize pipeline: %w", err)
	}

	input := &core.QueryInput{
		Query:          question,
		TopK:           c.Int("top-k"),
		ScoreThreshold: float32(c.Float64("threshold")),
		Filter:         filter,
	}

	if c.Bool("stream") {
		_, err := streamAnswer(ctx, app.Pipeline(), input)
		return err
	}

	response, err := app.Pipeline().Query(ctx, input)
	if err != nil {
		return fmt.Errorf("query failed: %w", err)
	}

	fmt.Println(response.Answer)
	printCitations(response.Citations)
	printStats(response)
	return nil
}

func chatCommand(c *cli.Context) error {
	ctx := context.Background()

	filter, err := parseFilter(c.StringSlice("filter"))
	if err != nil {
		return err
	}

	var opts []lawrag.Option
	metricsAddr := c.String("metrics-listen")
	if metricsAddr != "" {
		opts = append(opts, lawrag.WithTelemetry(prometheus.DefaultRegisterer))
	}

	app, _, err := openApp(c, opts...)
	if err != nil {
		return err
	}
	defer app.Close()

	if err := app.Initialize(ctx); err != nil {
		return fmt.Errorf("failed to initialize pipeline: %w", err)
	}

	if metricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		server := &http.Server{Addr: metricsAddr, Handler: mux}
		go func() {
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				slog.Error("metrics server failed", "err", err)
			}
		}()
		defer server.Close()
		slog.Info("serving metrics", "addr", metricsAddr)
	}

	fmt.Fprintln(os.Stderr, "Ask a question. /reset clears the conversation, /quit exits.")

	var history []core.Message
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			fmt.Println()
			return scanner.Err()
		}

		line := strings.TrimSpace(scanner.Text())
		switch {
		case line == "":
			continue
		case line == "/quit" || line == "/exit":
			return nil
		case line == "/reset":
			history = history[:0]
			fmt.Fprintln(os.Stderr, "Conversation cleared.")
			continue
		case strings.HasPrefix(line, "/"):
			fmt.Fprintf(os.Stderr, "Unknown command %s\n", line)
			continue
		}

		input := &core.QueryInput{
			Query:               line,
			TopK:                c.Int("top-k"),
			ScoreThreshold:      float32(c.Float64("threshold")),
			Filter:              filter,
			ConversationHistory: history,
		}

		response, err := streamAnswer(ctx, app.Pipeline(), input)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			continue
		}

		history = append(history,
			core.Message{Role: core.RoleUser, Content: line},
			core.Message{Role: core.RoleAssistant, Content: response.Answer},
		)
	}
}

func ingestCommand(c *cli.Context) error {
	ctx := context.Background()

	paths := c.Args().Slice()
	if len(paths) == 0 {
		return fmt.Errorf("at least one document path is required")
	}

	attrs, err := parseKeyValues(c.StringSlice("attr"))
	if err != nil {
		return err
	}

	sources := make([]ingest.Source, 0, len(paths))
	for _, path := range paths {
		sources = append(sources, ingest.Source{
			Id:   filepath.ToSlash(filepath.Clean(path)),
			Name: filepath.Base(path),
			Path: path,
		})
	}

	app, _, err := openApp(c)
	if err != nil {
		return err
	}
	defer app.Close()

	if err := app.Initialize(ctx); err != nil {
		return fmt.Errorf("failed to initialize pipeline: %w", err)
	}

	pipeline, err := app.NewIngestPipeline()
	if err != nil {
		return fmt.Errorf("failed to create ingest pipeline: %w", err)
	}
	defer pipeline.Release()

	result, err := pipeline.Ingest(ctx, sources, &ingest.IngestOptions{
		Replace:    c.Bool("replace"),
		Attributes: attrs,
	})
	if err != nil {
		return fmt.Errorf("ingestion failed: %w", err)
	}

	fmt.Fprintf(os.Stderr, "Ingested %d sources (%d chunks)\n", result.SourcesProcessed, result.ChunksUpserted)
	for _, failure := range result.Failures {
		fmt.Fprintf(os.Stderr, "failed: %v\n", failure)
	}
	if len(result.Failures) > 0 {
		return fmt.Errorf("%d of %d sources failed", len(result.Failures), len(sources))
	}
	return nil
}

func reindexCommand(c *cli.Context) error {
	ctx := context.Background()

	reindexConfig := &reindex.Config{
		BatchSize:      c.Int("batch-size"),
		ReportInterval: c.Int("report-interval"),
		MaxRetries:     c.Int("max-retries"),
		RetryDelay:     c.Duration("retry-delay"),
		EmbedModel:     c.String("embedding-model"),
	}

	// Validate config
	if reindexConfig.BatchSize <= 0 {
		return fmt.Errorf("batch-size must be greater than 0")
	}
	if reindexConfig.ReportInterval <= 0 {
		return fmt.Errorf("report-interval must be greater than 0")
	}
	if reindexConfig.MaxRetries <= 0 {
		return fmt.Errorf("max-retries must be greater than 0")
	}

	app, cfg, err := openApp(c)
	if err != nil {
		return err
	}
	defer app.Close()

	reindexer, err := app.NewReindexer(reindexConfig, os.Stderr)
	if err != nil {
		return fmt.Errorf("failed to create reindexer: %w", err)
	}

	fmt.Fprintf(os.Stderr, "Index: %s\n", cfg.Index.Path)
	fmt.Fprintf(os.Stderr, "Embedding host: %s\n", cfg.Embedding.Host)
	fmt.Fprintf(os.Stderr, "Embedding model: %s\n", cfg.Embedding.Model)
	fmt.Fprintln(os.Stderr)

	if err := reindexer.Run(ctx); err != nil {
		return fmt.Errorf("reindexing failed: %w", err)
	}

	return nil
}

func statsCommand(c *cli.Context) error {
	ctx := context.Background()

	app, cfg, err := openApp(c)
	if err != nil {
		return err
	}
	defer app.Close()

	count, err := app.Index().Count(ctx)
	if err != nil {
		return fmt.Errorf("failed to count chunks: %w", err)
	}

	fmt.Printf("Backend: %s\n", cfg.Index.Backend)
	fmt.Printf("Chunks: %d\n", count)

	store, ok := app.Store()
	if !ok {
		return nil
	}
	meta, err := store.Meta(ctx)
	if err != nil {
		return fmt.Errorf("failed to read index metadata: %w", err)
	}
	if meta == nil {
		fmt.Println("Embedding model: (not recorded)")
		return nil
	}

	fmt.Printf("Embedding model: %s\n", meta.EmbedModel)
	fmt.Printf("Dimensions: %d\n", meta.Dimensions)
	fmt.Printf("Updated: %s\n", meta.UpdatedAt.Format(time.RFC3339))
	return nil
}

// streamAnswer renders a streamed answer to stdout and returns the
// completed response.
func streamAnswer(ctx context.Context, pipeline *rag.Pipeline, input *core.QueryInput) (*core.PipelineResponse, error) {
	var response *core.PipelineResponse
	for event := range pipeline.QueryStream(ctx, input) {
		switch event.Type {
		case rag.StreamEventContent:
			fmt.Print(event.Content)
		case rag.StreamEventDone:
			response = event.Response
		case rag.StreamEventError:
			return nil, event.Err
		}
	}
	fmt.Println()

	if response == nil {
		return nil, fmt.Errorf("stream ended without a response")
	}
	printCitations(response.Citations)
	printStats(response)
	return response, nil
}

func printCitations(citations []core.Citation) {
	if len(citations) == 0 {
		return
	}
	fmt.Println("\nSources:")
	for _, citation := range citations {
		name := citation.SourceName
		if name == "" {
			name = citation.SourceId
		}
		if citation.SectionRef != "" {
			fmt.Printf("  - %s, %s (%.3f)\n", name, citation.SectionRef, citation.Score)
		} else {
			fmt.Printf("  - %s (%.3f)\n", name, citation.Score)
		}
	}
}

func printStats(response *core.PipelineResponse) {
	m := response.Metrics
	if m.GenerationMs == 0 && m.CacheLookupMs > 0 {
		fmt.Fprintf(os.Stderr, "[cached, %.0fms]\n", m.TotalMs)
		return
	}

	fmt.Fprintf(os.Stderr, "[%d passages, %.0fms total, %d in / %d out tokens",
		m.ChunksRetrieved, m.TotalMs, m.InputTokens, m.OutputTokens)
	if m.EstimatedCost > 0 {
		fmt.Fprintf(os.Stderr, ", $%.4f", m.EstimatedCost)
	}
	fmt.Fprintln(os.Stderr, "]")
}

// openApp loads the configuration named by the global flag and
// assembles the application around it.
func openApp(c *cli.Context, opts ...lawrag.Option) (*lawrag.App, *config.Config, error) {
	cfg, err := loadConfig(c)
	if err != nil {
		return nil, nil, err
	}

	app, err := lawrag.Open(context.Background(), cfg, opts...)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open application: %w", err)
	}
	return app, cfg, nil
}

func loadConfig(c *cli.Context) (*config.Config, error) {
	path := c.String("config")
	if path == "" {
		return config.DefaultConfig(), nil
	}
	return config.Load(path)
}

// parseKeyValues turns key=value pairs into a map.
func parseKeyValues(pairs []string) (map[string]string, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	out := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid attribute %q: expected key=value", pair)
		}
		out[key] = value
	}
	return out, nil
}

// parseFilter turns key=value pairs into an attribute filter. Repeating
// a key accumulates its values as alternatives.
func parseFilter(pairs []string) (core.AttributeFilter, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	filter := make(core.AttributeFilter, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid filter %q: expected key=value", pair)
		}
		filter[key] = append(filter[key], value)
	}
	return filter, nil
}

func setupLogger(c *cli.Context) error {
	// Get log level from flag and normalize to lowercase
	levelStr := strings.ToLower(c.String("log-level"))

	// Map string to slog.Level
	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	handlerOpts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	switch strings.ToLower(c.String("log-format")) {
	case "json":
		handler = slog.NewJSONHandler(os.Stderr, handlerOpts)
	case "text":
		handler = slog.NewTextHandler(os.Stderr, handlerOpts)
	default:
		return fmt.Errorf("invalid log format %q: must be text or json", c.String("log-format"))
	}
	slog.SetDefault(slog.New(handler))

	return nil
}
