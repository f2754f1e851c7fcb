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
	"strconv"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/poiesic/boardsearch"
	"github.com/poiesic/boardsearch/core"
	"github.com/poiesic/boardsearch/search"
	"github.com/poiesic/boardsearch/suggest"
	"github.com/poiesic/boardsearch/suggest/dictionary"
	"github.com/poiesic/boardsearch/suggest/llm"
)

func main() {
	app := &cli.App{
		Name:  "boardsearch",
		Usage: "Full-text search over discussion-board content",
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
				Name:      "search",
				Usage:     "Run a search query",
				ArgsUsage: "QUERY...",
				Action:    searchCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "db",
						Aliases:  []string{"d"},
						Usage:    "Path to BadgerDB database directory",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "session",
						Usage: "Session key scoping the result cache",
						Value: "cli",
					},
					&cli.StringSliceFlag{
						Name:  "board",
						Usage: "Restrict to board ID (repeatable); default all visible boards",
					},
					&cli.Uint64Flag{
						Name:  "topic",
						Usage: "Restrict to a single topic ID",
					},
					&cli.StringFlag{
						Name:  "author",
						Usage: "Restrict to messages by this author",
					},
					&cli.BoolFlag{
						Name:  "any",
						Usage: "Match any term instead of all terms",
					},
					&cli.BoolFlag{
						Name:  "subject-only",
						Usage: "Search subjects only",
					},
					&cli.BoolFlag{
						Name:  "recent",
						Usage: "Sort by recency instead of relevance",
					},
					&cli.IntFlag{
						Name:  "offset",
						Usage: "Result page offset",
					},
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Result page size",
						Value: 20,
					},
					&cli.BoolFlag{
						Name:  "suggest",
						Usage: "Offer corpus-vocabulary suggestions when nothing matches",
					},
					&cli.StringFlag{
						Name:  "llm-host",
						Usage: "OpenAI-compatible host for LLM suggestions (enables the provider)",
					},
					&cli.StringFlag{
						Name:  "llm-model",
						Usage: "Chat model for LLM suggestions",
						Value: "qwen2.5:3b",
					},
				},
			},
			{
				Name:   "index",
				Usage:  "Index messages added since the last run",
				Action: indexCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "db",
						Aliases:  []string{"d"},
						Usage:    "Path to BadgerDB database directory",
						Required: true,
					},
				},
			},
			{
				Name:   "rebuild",
				Usage:  "Drop the postings index and reindex everything",
				Action: rebuildCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "db",
						Aliases:  []string{"d"},
						Usage:    "Path to BadgerDB database directory",
						Required: true,
					},
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func searchCommand(c *cli.Context) error {
	ctx := context.Background()

	text := strings.Join(c.Args().Slice(), " ")
	if text == "" {
		return fmt.Errorf("query text is required")
	}

	svc, err := boardsearch.Open(c.String("db"))
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer svc.Close()

	var engineOpts []search.EngineOption
	if suggester, err := buildSuggester(ctx, c, svc); err != nil {
		return err
	} else if suggester != nil {
		engineOpts = append(engineOpts, search.WithSuggester(suggester))
	}

	engine, err := svc.NewEngine(engineOpts...)
	if err != nil {
		return fmt.Errorf("failed to create engine: %w", err)
	}
	defer engine.Close()

	boardIDs, err := parseBoardIDs(c.StringSlice("board"))
	if err != nil {
		return err
	}
	raw := core.RawQuery{
		Text: text,
		Scope: core.ScopeSpec{
			BoardIds: boardIDs,
			TopicId:  core.ID(c.Uint64("topic")),
			Author:   c.String("author"),
		},
		Sort:        core.DefaultSort(),
		Page:        core.Pagination{Offset: c.Int("offset"), Limit: c.Int("limit")},
		SearchType:  core.SearchTypeAll,
		SubjectOnly: c.Bool("subject-only"),
	}
	if c.Bool("any") {
		raw.SearchType = core.SearchTypeAny
	}
	if c.Bool("recent") {
		raw.Sort = core.SortSpec{Field: core.SortByMessageID, Descending: true}
	}

	vis := search.AllVisible{Boards: svc.BoardRepository()}
	resp, err := engine.Search(ctx, c.String("session"), raw, vis)
	if err != nil {
		return err
	}
	printResponse(resp)
	return nil
}

func indexCommand(c *cli.Context) error {
	svc, err := boardsearch.Open(c.String("db"))
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer svc.Close()

	pipeline, err := svc.NewIndexingPipeline()
	if err != nil {
		return err
	}
	defer pipeline.Release()

	n, err := pipeline.Run(context.Background())
	if err != nil {
		return err
	}
	fmt.Printf("indexed %d messages\n", n)
	return nil
}

func rebuildCommand(c *cli.Context) error {
	svc, err := boardsearch.Open(c.String("db"))
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer svc.Close()

	pipeline, err := svc.NewIndexingPipeline()
	if err != nil {
		return err
	}
	defer pipeline.Release()

	n, err := pipeline.Rebuild(context.Background())
	if err != nil {
		return err
	}
	fmt.Printf("reindexed %d messages\n", n)
	return nil
}

// buildSuggester assembles the advisor from the enabled providers, or nil
// when none are requested.
func buildSuggester(ctx context.Context, c *cli.Context, svc *boardsearch.Service) (search.Suggester, error) {
	var providers []suggest.Provider

	if c.Bool("suggest") {
		vocab, err := svc.Vocabulary(ctx, 20000)
		if err != nil {
			return nil, fmt.Errorf("failed to sample vocabulary: %w", err)
		}
		if len(vocab) > 0 {
			dict, err := dictionary.NewProvider(vocab, suggest.DefaultConfig())
			if err != nil {
				return nil, err
			}
			providers = append(providers, dict)
		}
	}

	if host := c.String("llm-host"); host != "" {
		provider, err := llm.NewProvider(suggest.NewConfig(
			suggest.WithHost(host),
			suggest.WithModel(c.String("llm-model")),
		))
		if err != nil {
			return nil, fmt.Errorf("failed to create LLM provider: %w", err)
		}
		providers = append(providers, provider)
	}

	if len(providers) == 0 {
		return nil, nil
	}
	return suggest.NewAdvisor(0, slog.Default(), providers...)
}

func parseBoardIDs(raw []string) ([]core.ID, error) {
	ids := make([]core.ID, 0, len(raw))
	for _, s := range raw {
		v, err := strconv.ParseUint(s, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid board ID %q: %w", s, err)
		}
		ids = append(ids, core.ID(v))
	}
	return ids, nil
}

func printResponse(resp *search.Response) {
	for _, p := range resp.Problems {
		if len(p.Terms) > 0 {
			fmt.Printf("problem: %s (%s)\n", p.Err, strings.Join(p.Terms, ", "))
		} else {
			fmt.Printf("problem: %s\n", p.Err)
		}
	}
	if len(resp.DidYouMean) > 0 {
		fmt.Printf("did you mean: %s\n", strings.Join(resp.DidYouMean, ", "))
	}
	if resp.Failed() {
		return
	}

	fmt.Printf("%d results\n", resp.TotalCount)
	for i, row := range resp.Page {
		board := "?"
		if row.Board != nil {
			board = row.Board.Name
		}
		fmt.Printf("%d: [%s] %s (topic %d, msg %d) score=%.1f matches=%d\n",
			i+1, board, row.SubjectHTML, row.Topic.Id, row.Message.Id, row.Relevance, row.MatchCount)
		if row.PreviewHTML != "" {
			fmt.Printf("   %s\n", row.PreviewHTML)
		}
	}
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
