// Copyright 2025 Poiesic Systems
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
	"encoding/json"
	"fmt"
	"io"
	"log"
	"log/slog"
	"maps"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"

	"github.com/poiesic/recall"
	"github.com/poiesic/recall/ai"
	"github.com/poiesic/recall/core"
	"github.com/poiesic/recall/ingestion"
	"github.com/poiesic/recall/reembed"
)

func main() {
	app := &cli.App{
		Name:  "recall",
		Usage: "Versioned vector memory for conversational data",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
			&cli.StringFlag{
				Name:    "db",
				Aliases: []string{"d"},
				Usage:   "Path to the database directory",
			},
			&cli.StringFlag{
				Name:  "backend",
				Usage: "Chunk index backend (badger, chromem)",
				Value: "badger",
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to a YAML config file; flags set explicitly win over it",
			},
			&cli.BoolFlag{
				Name:  "mock-ai",
				Usage: "Use deterministic in-process AI services (offline mode)",
			},
		},
		Before: setup,
		Commands: []*cli.Command{
			{
				Name:      "ingest",
				Usage:     "Ingest memory events from a JSONL file ('-' for stdin)",
				ArgsUsage: "FILE",
				Action:    ingestCommand,
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "wait",
						Usage: "Block until every accepted event is indexed",
						Value: true,
					},
				},
			},
			{
				Name:      "query",
				Usage:     "Retrieve the chunks most similar to a natural-language query",
				ArgsUsage: "QUERY",
				Action:    queryCommand,
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:    "top-k",
						Aliases: []string{"k"},
						Usage:   "Maximum number of hits to return",
						Value:   5,
					},
					&cli.StringFlag{
						Name:  "conversation",
						Usage: "Restrict to one conversation id",
					},
					&cli.StringSliceFlag{
						Name:  "participant",
						Usage: "Require at least one of these participants",
					},
					&cli.StringSliceFlag{
						Name:  "speaker",
						Usage: "Require every listed speaker (user, assistant)",
					},
					&cli.TimestampFlag{
						Name:   "since",
						Usage:  "Only spans overlapping [since, until]",
						Layout: time.RFC3339,
					},
					&cli.TimestampFlag{
						Name:   "until",
						Usage:  "Only spans overlapping [since, until]",
						Layout: time.RFC3339,
					},
					&cli.BoolFlag{
						Name:  "include-deleted",
						Usage: "Query tombstoned records instead of live ones",
					},
					&cli.BoolFlag{
						Name:    "verbose",
						Aliases: []string{"v"},
						Usage:   "Print per-stage retrieval detail",
					},
				},
			},
			{
				Name:   "delete",
				Usage:  "Tombstone the chunks of a conversation or turn range",
				Action: deleteCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "conversation",
						Usage:    "Conversation id to delete from",
						Required: true,
					},
					&cli.IntFlag{
						Name:  "from",
						Usage: "First turn of the range (omit for whole conversation)",
						Value: -1,
					},
					&cli.IntFlag{
						Name:  "to",
						Usage: "Last turn of the range (omit for whole conversation)",
						Value: -1,
					},
				},
			},
			{
				Name:      "correct",
				Usage:     "Re-index a corrected span of events from a JSONL file",
				ArgsUsage: "FILE",
				Action:    correctCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "behavior",
						Usage: "overwrite rewrites chunks in place, replace tombstones and bumps the version",
						Value: "replace",
					},
				},
			},
			{
				Name:   "reembed",
				Usage:  "Re-embed every live chunk with the current embedding model",
				Action: reembedCommand,
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
						Usage: "Maximum retry attempts for failed embedding calls",
						Value: 3,
					},
					&cli.DurationFlag{
						Name:  "retry-delay",
						Usage: "Base delay for exponential backoff",
						Value: 1 * time.Second,
					},
				},
			},
			{
				Name:   "stats",
				Usage:  "Summarize the chunk index",
				Action: statsCommand,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

// fileConfig mirrors the subset of flags a YAML config file may set.
type fileConfig struct {
	Db             string `yaml:"db"`
	Backend        string `yaml:"backend"`
	LogLevel       string `yaml:"log_level"`
	EmbeddingHost  string `yaml:"embedding_host"`
	EmbeddingModel string `yaml:"embedding_model"`
	LabelerHost    string `yaml:"labeler_host"`
	LabelerModel   string `yaml:"labeler_model"`
	PoolSize       int    `yaml:"pool_size"`
}

const configMetadataKey = "fileConfig"

func setup(c *cli.Context) error {
	config := &fileConfig{}
	if path := c.String("config"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, config); err != nil {
			return fmt.Errorf("failed to parse config file: %w", err)
		}
	}
	if c.App.Metadata == nil {
		c.App.Metadata = make(map[string]interface{})
	}
	c.App.Metadata[configMetadataKey] = config

	levelStr := strings.ToLower(c.String("log-level"))
	if !c.IsSet("log-level") && config.LogLevel != "" {
		levelStr = strings.ToLower(config.LogLevel)
	}

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

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}

// openDatabase resolves flags against the config file and opens the database.
func openDatabase(c *cli.Context) (*recall.Database, error) {
	config, _ := c.App.Metadata[configMetadataKey].(*fileConfig)
	if config == nil {
		config = &fileConfig{}
	}

	dbPath := c.String("db")
	if !c.IsSet("db") && config.Db != "" {
		dbPath = config.Db
	}

	backend := c.String("backend")
	if !c.IsSet("backend") && config.Backend != "" {
		backend = config.Backend
	}

	opts := []recall.DatabaseOption{}
	switch backend {
	case "badger":
		if dbPath == "" {
			return nil, fmt.Errorf("database path is required (--db or config file)")
		}
	case "chromem":
		opts = append(opts, recall.WithEphemeralIndex())
	default:
		return nil, fmt.Errorf("unknown backend %q: must be badger or chromem", backend)
	}

	if c.Bool("mock-ai") {
		opts = append(opts, recall.WithMockAI())
	} else {
		aiOpts := []ai.ConfigOption{}
		if config.EmbeddingHost != "" {
			aiOpts = append(aiOpts, ai.WithEmbeddingHost(config.EmbeddingHost))
		}
		if config.EmbeddingModel != "" {
			aiOpts = append(aiOpts, ai.WithEmbeddingModel(config.EmbeddingModel))
		}
		if config.LabelerHost != "" {
			aiOpts = append(aiOpts, ai.WithLabelerHost(config.LabelerHost))
		}
		if config.LabelerModel != "" {
			aiOpts = append(aiOpts, ai.WithLabelerModel(config.LabelerModel))
		}
		if len(aiOpts) > 0 {
			opts = append(opts, recall.WithAIConfig(ai.NewConfig(aiOpts...)))
		}
	}

	return recall.NewDatabase(dbPath, opts...)
}

func pipelineOptions(c *cli.Context) []ingestion.Option {
	config, _ := c.App.Metadata[configMetadataKey].(*fileConfig)
	if config != nil && config.PoolSize > 0 {
		return []ingestion.Option{ingestion.WithPoolSize(config.PoolSize)}
	}
	return nil
}

// wireEvent is the JSONL shape accepted on the ingest and correct boundaries.
type wireEvent struct {
	EventId        string   `json:"event_id"`
	ConversationId string   `json:"conversation_id"`
	TurnId         int      `json:"turn_id"`
	Speaker        string   `json:"speaker"`
	Text           string   `json:"text"`
	Timestamp      string   `json:"timestamp"`
	Participants   []string `json:"participants,omitempty"`
}

func (w *wireEvent) toEvent() (core.MemoryEvent, error) {
	speaker, err := core.ParseSpeakerType(w.Speaker)
	if err != nil {
		return core.MemoryEvent{}, err
	}
	ts, err := time.Parse(time.RFC3339, w.Timestamp)
	if err != nil {
		return core.MemoryEvent{}, fmt.Errorf("invalid timestamp %q: %w", w.Timestamp, err)
	}
	return core.MemoryEvent{
		EventId:        w.EventId,
		ConversationId: w.ConversationId,
		TurnId:         w.TurnId,
		Speaker:        speaker,
		Text:           w.Text,
		Timestamp:      ts,
		Participants:   w.Participants,
	}, nil
}

func readEvents(path string) ([]core.MemoryEvent, error) {
	var reader io.Reader
	if path == "-" {
		reader = os.Stdin
	} else {
		file, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open events file: %w", err)
		}
		defer file.Close()
		reader = file
	}

	var events []core.MemoryEvent
	scanner := bufio.NewScanner(reader)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var wire wireEvent
		if err := json.Unmarshal([]byte(line), &wire); err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
		event, err := wire.toEvent()
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
		events = append(events, event)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read events: %w", err)
	}
	return events, nil
}

func ingestCommand(c *cli.Context) error {
	if c.NArg() != 1 {
		return fmt.Errorf("expected exactly one events file argument ('-' for stdin)")
	}

	events, err := readEvents(c.Args().First())
	if err != nil {
		return err
	}
	if len(events) == 0 {
		fmt.Fprintln(os.Stderr, "No events to ingest")
		return nil
	}

	db, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	pipeline, err := db.NewIngestionPipeline(pipelineOptions(c)...)
	if err != nil {
		return err
	}
	defer pipeline.Release()

	ctx := context.Background()
	if err := pipeline.Ingest(ctx, events...); err != nil {
		return fmt.Errorf("ingest failed: %w", err)
	}

	if c.Bool("wait") {
		if err := pipeline.Flush(ctx); err != nil {
			return fmt.Errorf("failed waiting for indexing: %w", err)
		}
	}

	stats := pipeline.Stats()
	fmt.Fprintf(os.Stderr, "Accepted %d events; %d runs indexed, %d failed, %d chunks written\n",
		stats.EventsAccepted, stats.RunsIndexed, stats.RunsFailed, stats.ChunksUpserted)
	if stats.RunsFailed > 0 {
		return fmt.Errorf("%d runs failed to index", stats.RunsFailed)
	}
	return nil
}

func buildFilters(c *cli.Context) (core.QueryFilters, error) {
	filters := core.QueryFilters{
		ConversationId: c.String("conversation"),
		Participants:   c.StringSlice("participant"),
		Deleted:        c.Bool("include-deleted"),
	}

	for _, name := range c.StringSlice("speaker") {
		speaker, err := core.ParseSpeakerType(name)
		if err != nil {
			return core.QueryFilters{}, err
		}
		filters.Speakers = append(filters.Speakers, speaker)
	}

	since, until := c.Timestamp("since"), c.Timestamp("until")
	if since != nil || until != nil {
		window := &core.TimestampRange{}
		if since != nil {
			window.Start = *since
		}
		if until != nil {
			window.End = *until
		}
		filters.Timestamps = window
	}

	return filters, nil
}

func queryCommand(c *cli.Context) error {
	if c.NArg() != 1 {
		return fmt.Errorf("expected exactly one query argument")
	}
	queryText := c.Args().First()

	filters, err := buildFilters(c)
	if err != nil {
		return err
	}

	db, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	engine, err := db.NewEngine()
	if err != nil {
		return err
	}

	ctx := context.Background()
	var hits []*core.SearchHit
	if c.Bool("verbose") {
		hits, err = engine.QueryWithMonitor(ctx, queryText, c.Int("top-k"), filters,
			&printingMonitor{out: os.Stderr})
	} else {
		hits, err = engine.Query(ctx, queryText, c.Int("top-k"), filters)
	}
	if err != nil {
		return fmt.Errorf("query failed: %w", err)
	}

	if len(hits) == 0 {
		fmt.Println("No results")
		return nil
	}
	for i, hit := range hits {
		fmt.Printf("%d. [%.4f] %s %s turns %d-%d\n",
			i+1, hit.Score, hit.ChunkId,
			hit.Metadata.ConversationId, hit.Metadata.Turns.Start, hit.Metadata.Turns.End)
		fmt.Printf("   %s\n", strings.ReplaceAll(hit.Text, "\n", "\n   "))
	}
	return nil
}

// printingMonitor writes per-stage retrieval detail to a writer.
type printingMonitor struct {
	out     io.Writer
	started time.Time
}

func (m *printingMonitor) Start(query string, topK int, filters core.QueryFilters) {
	m.started = time.Now()
	fmt.Fprintf(m.out, "query=%q topK=%d conversation=%q deleted=%v\n",
		query, topK, filters.ConversationId, filters.Deleted)
}

func (m *printingMonitor) AfterQueryEmbedding(vector []float32, cached bool) {
	fmt.Fprintf(m.out, "embedded query: %d dims, cached=%v\n", len(vector), cached)
}

func (m *printingMonitor) AfterCandidates(candidates []*core.ScoredChunk) {
	fmt.Fprintf(m.out, "candidates: %d\n", len(candidates))
	for _, candidate := range candidates {
		fmt.Fprintf(m.out, "  %.4f %s v%d\n",
			candidate.Score, candidate.Record.Id, candidate.Record.Metadata.Version)
	}
}

func (m *printingMonitor) Finish(hits []*core.SearchHit) {
	fmt.Fprintf(m.out, "returned %d hits in %s\n", len(hits), time.Since(m.started).Round(time.Microsecond))
}

func deleteCommand(c *cli.Context) error {
	db, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	from, to := c.Int("from"), c.Int("to")
	var turns *core.TurnRange
	switch {
	case from < 0 && to < 0:
		// Whole conversation
	case from < 0 || to < 0:
		return fmt.Errorf("both --from and --to are required for a turn range")
	case from > to:
		return fmt.Errorf("--from must not exceed --to")
	default:
		turns = &core.TurnRange{Start: from, End: to}
	}

	result, err := db.ChunkRepository().DeleteBySource(context.Background(), c.String("conversation"), turns)
	if err != nil {
		return fmt.Errorf("delete failed: %w", err)
	}

	fmt.Fprintf(os.Stderr, "Tombstoned %d chunks\n", result.Deleted)
	for _, recordErr := range result.Errors {
		fmt.Fprintf(os.Stderr, "  %s: %v\n", recordErr.ChunkId, recordErr.Err)
	}
	return nil
}

func correctCommand(c *cli.Context) error {
	if c.NArg() != 1 {
		return fmt.Errorf("expected exactly one events file argument ('-' for stdin)")
	}

	var behavior ingestion.CorrectBehavior
	switch c.String("behavior") {
	case "overwrite":
		behavior = ingestion.CorrectOverwrite
	case "replace":
		behavior = ingestion.CorrectReplace
	default:
		return fmt.Errorf("invalid behavior %q: must be overwrite or replace", c.String("behavior"))
	}

	events, err := readEvents(c.Args().First())
	if err != nil {
		return err
	}
	if len(events) == 0 {
		return fmt.Errorf("no events in correction file")
	}

	db, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	pipeline, err := db.NewIngestionPipeline(pipelineOptions(c)...)
	if err != nil {
		return err
	}
	defer pipeline.Release()

	if err := pipeline.Correct(context.Background(), events, behavior); err != nil {
		return fmt.Errorf("correction failed: %w", err)
	}

	fmt.Fprintf(os.Stderr, "Corrected %d events (%s)\n", len(events), c.String("behavior"))
	return nil
}

func reembedCommand(c *cli.Context) error {
	db, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	config := &reembed.Config{
		BatchSize:      c.Int("batch-size"),
		ReportInterval: c.Int("report-interval"),
		MaxRetries:     c.Int("max-retries"),
		RetryDelay:     c.Duration("retry-delay"),
	}
	if config.BatchSize <= 0 {
		return fmt.Errorf("batch-size must be greater than 0")
	}
	if config.ReportInterval <= 0 {
		return fmt.Errorf("report-interval must be greater than 0")
	}
	if config.MaxRetries <= 0 {
		return fmt.Errorf("max-retries must be greater than 0")
	}

	reembedder, err := db.NewReembedder(config, os.Stderr)
	if err != nil {
		return err
	}

	if err := reembedder.Run(context.Background()); err != nil {
		return fmt.Errorf("reembedding failed: %w", err)
	}
	return nil
}

func statsCommand(c *cli.Context) error {
	db, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	ctx := context.Background()
	repo := db.ChunkRepository()

	var total, live, tombstoned int
	conversations := make(map[string]struct{})
	versions := make(map[int]int)

	afterId := ""
	for {
		page, err := repo.ListChunks(ctx, afterId, 500)
		if err != nil {
			return fmt.Errorf("failed listing chunks: %w", err)
		}
		if len(page) == 0 {
			break
		}
		for _, record := range page {
			total++
			if record.Metadata.Deleted {
				tombstoned++
			} else {
				live++
			}
			conversations[record.Metadata.ConversationId] = struct{}{}
			versions[record.Metadata.Version]++
		}
		afterId = page[len(page)-1].Id
	}

	fmt.Printf("Chunks: %d total, %d live, %d tombstoned\n", total, live, tombstoned)
	fmt.Printf("Conversations: %d\n", len(conversations))
	for _, version := range slices.Sorted(maps.Keys(versions)) {
		fmt.Printf("  version %d: %d chunks\n", version, versions[version])
	}
	return nil
}
