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
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/poiesic/quarry"
	"github.com/poiesic/quarry/ai"
	"github.com/poiesic/quarry/core"
	"github.com/poiesic/quarry/retrieve"
	"github.com/urfave/cli/v2"
)

func main() {
	// Ambient configuration; a missing .env file is fine.
	godotenv.Load()

	app := &cli.App{
		Name:  "quarry",
		Usage: "Retrieval-augmented question answering over local documents",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:      "ingest",
				Usage:     "Ingest documents into the index",
				ArgsUsage: "FILE [FILE...]",
				Action:    ingestCommand,
				Flags:     append(storeFlags(), ingestFlags()...),
			},
			{
				Name:      "query",
				Usage:     "Retrieve the fragments nearest to a query",
				ArgsUsage: "QUERY",
				Action:    queryCommand,
				Flags: append(storeFlags(),
					&cli.IntFlag{
						Name:    "top-k",
						Aliases: []string{"k"},
						Usage:   "Number of fragments to retrieve",
						Value:   retrieve.DefaultTopK,
					},
					&cli.StringSliceFlag{
						Name:  "filter",
						Usage: "Metadata filter as key=value (repeatable)",
					},
				),
			},
			{
				Name:      "ask",
				Usage:     "Generate a grounded answer to a question",
				ArgsUsage: "QUESTION",
				Action:    askCommand,
				Flags: append(storeFlags(),
					&cli.BoolFlag{
						Name:  "show-sources",
						Usage: "Print the fragments the answer was grounded on",
					},
				),
			},
			{
				Name:   "stats",
				Usage:  "Show index statistics",
				Action: statsCommand,
				Flags:  storeFlags(),
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func storeFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:     "db",
			Aliases:  []string{"d"},
			Usage:    "Path to the BadgerDB snapshot directory",
			EnvVars:  []string{"QUARRY_DB"},
			Required: true,
		},
		&cli.StringFlag{
			Name:    "host",
			Usage:   "OpenAI-compatible service host URL",
			EnvVars: []string{"QUARRY_HOST"},
			Value:   "http://localhost:11434/v1",
		},
		&cli.StringFlag{
			Name:    "embedding-model",
			Usage:   "Embedding model name",
			EnvVars: []string{"QUARRY_EMBEDDING_MODEL"},
			Value:   "embeddinggemma",
		},
		&cli.StringFlag{
			Name:    "generation-model",
			Usage:   "Generation model name",
			EnvVars: []string{"QUARRY_GENERATION_MODEL"},
			Value:   "qwen2.5:3b",
		},
		&cli.StringFlag{
			Name:    "api-token",
			Usage:   "API token for the service host",
			EnvVars: []string{"QUARRY_API_TOKEN"},
			Value:   "none",
		},
		&cli.IntFlag{
			Name:    "dimension",
			Usage:   "Embedding vector dimension",
			EnvVars: []string{"QUARRY_DIMENSION"},
			Value:   768,
		},
		&cli.StringFlag{
			Name:    "metric",
			Usage:   "Distance metric (l2, cosine, dot)",
			EnvVars: []string{"QUARRY_METRIC"},
			Value:   "cosine",
		},
	}
}

func ingestFlags() []cli.Flag {
	return []cli.Flag{
		&cli.IntFlag{
			Name:  "chunk-size",
			Usage: "Fragment window size in runes",
			Value: 512,
		},
		&cli.IntFlag{
			Name:  "chunk-overlap",
			Usage: "Fragment window overlap in runes",
			Value: 64,
		},
		&cli.IntFlag{
			Name:  "batch-size",
			Usage: "Number of fragments per embedding call",
			Value: 16,
		},
	}
}

func openStore(c *cli.Context) (*quarry.Store, error) {
	metric, err := core.ParseMetric(c.String("metric"))
	if err != nil {
		return nil, err
	}

	aiConfig := ai.NewConfig(
		ai.WithHost(c.String("host")),
		ai.WithEmbeddingModel(c.String("embedding-model")),
		ai.WithGenerationModel(c.String("generation-model")),
		ai.WithAPIToken(c.String("api-token")),
	)

	opts := []quarry.StoreOption{
		quarry.WithAIConfig(aiConfig),
		quarry.WithDimension(c.Int("dimension")),
		quarry.WithMetric(metric),
		quarry.WithStorePath(c.String("db")),
	}
	if c.IsSet("chunk-size") || c.IsSet("chunk-overlap") {
		opts = append(opts, quarry.WithChunking(c.Int("chunk-size"), c.Int("chunk-overlap")))
	}
	if c.IsSet("batch-size") {
		opts = append(opts, quarry.WithBatchSize(c.Int("batch-size")))
	}

	return quarry.Open(opts...)
}

func ingestCommand(c *cli.Context) error {
	if c.NArg() == 0 {
		return fmt.Errorf("at least one file is required")
	}

	store, err := openStore(c)
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	defer store.Close()

	ctx := context.Background()
	for _, path := range c.Args().Slice() {
		report, err := store.IngestFile(ctx, path)
		if err != nil {
			return fmt.Errorf("ingesting %s (%d of %d fragments committed): %w",
				path, report.Completed, report.Requested, err)
		}
		fmt.Fprintf(os.Stderr, "%s: %d fragments\n", path, report.Completed)
	}

	if err := store.Save(ctx); err != nil {
		return fmt.Errorf("failed to save snapshot: %w", err)
	}
	fmt.Fprintf(os.Stderr, "index: %d fragments total\n", store.Size())
	return nil
}

func queryCommand(c *cli.Context) error {
	if c.NArg() != 1 {
		return fmt.Errorf("exactly one query is required")
	}

	filter, err := parseFilter(c.StringSlice("filter"))
	if err != nil {
		return err
	}

	store, err := openStore(c)
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	defer store.Close()

	results, err := store.Query(context.Background(), c.Args().First(), c.Int("top-k"), filter)
	if err != nil {
		return err
	}

	for i, hit := range results {
		fmt.Printf("%d. [distance %.4f] %s\n", i+1, hit.Distance, hit.Fragment.Text)
		if source := hit.Fragment.Metadata["source"]; source != "" {
			fmt.Printf("   source: %s\n", source)
		}
	}
	return nil
}

func askCommand(c *cli.Context) error {
	if c.NArg() != 1 {
		return fmt.Errorf("exactly one question is required")
	}

	store, err := openStore(c)
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	defer store.Close()

	result, err := store.Answer(context.Background(), c.Args().First())
	if err != nil {
		return err
	}

	fmt.Println(result.Text)

	if c.Bool("show-sources") {
		fmt.Println()
		for i, hit := range result.Fragments {
			fmt.Printf("source %d [distance %.4f]: %s\n", i+1, hit.Distance, hit.Fragment.Text)
		}
	}
	return nil
}

func statsCommand(c *cli.Context) error {
	store, err := openStore(c)
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	defer store.Close()

	idx := store.Index()
	fmt.Printf("fragments: %d\n", idx.Size())
	fmt.Printf("dimension: %d\n", idx.Dimension())
	fmt.Printf("metric:    %s\n", idx.Metric())
	return nil
}

func parseFilter(pairs []string) (retrieve.Filter, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	filter := make(retrieve.Filter, len(pairs))
	for _, pair := range pairs {
		key, value, found := strings.Cut(pair, "=")
		if !found || key == "" {
			return nil, fmt.Errorf("invalid filter %q: expected key=value", pair)
		}
		filter[key] = value
	}
	return filter, nil
}

func setupLogger(c *cli.Context) error {
	levelStr := strings.ToLower(c.String("log-level"))

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
