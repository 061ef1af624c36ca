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
	"errors"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/poiesic/docent"
	"github.com/poiesic/docent/answer"
	"github.com/poiesic/docent/config"
	"github.com/poiesic/docent/core"
	"github.com/poiesic/docent/pipeline"
	"github.com/poiesic/docent/reembed"
	"github.com/poiesic/docent/summarize"
	"github.com/schollz/progressbar/v3"
	"github.com/urfave/cli/v2"
	"golang.org/x/term"
)

// env holds the streams and extra corpus options the commands run with.
type env struct {
	in         io.Reader
	out        io.Writer
	errOut     io.Writer
	corpusOpts []docent.CorpusOption
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	app := newApp(&env{in: os.Stdin, out: os.Stdout, errOut: os.Stderr})
	if err := app.RunContext(ctx, os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp(e *env) *cli.App {
	return &cli.App{
		Name:      "docent",
		Usage:     "Question answering over the text, tables and figures of a document",
		Writer:    e.out,
		ErrWriter: e.errOut,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to a YAML config file (default: docent.yaml or ~/.config/docent/config.yaml)",
			},
		},
		Before: func(c *cli.Context) error {
			return setupLogger(c, e.errOut)
		},
		Commands: []*cli.Command{
			{
				Name:      "process",
				Usage:     "Extract, summarize and index a document",
				ArgsUsage: "[document]",
				Action:    e.processCommand,
			},
			{
				Name:      "ask",
				Usage:     "Answer a question from the processed document",
				ArgsUsage: "<question>",
				Action:    e.askCommand,
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "demo",
						Usage: "Answer the built-in demo questions",
					},
				},
			},
			{
				Name:   "chat",
				Usage:  "Ask questions interactively",
				Action: e.chatCommand,
			},
			{
				Name:      "search",
				Usage:     "Show the content units retrieved for a query",
				ArgsUsage: "<query>",
				Action:    e.searchCommand,
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:    "k",
						Aliases: []string{"n"},
						Usage:   "Number of units to retrieve",
						Value:   answer.DefaultK,
					},
				},
			},
			{
				Name:   "stats",
				Usage:  "Show the pipeline stage and index statistics",
				Action: e.statsCommand,
			},
			{
				Name:   "clear",
				Usage:  "Erase the corpus so a different document can be processed",
				Action: e.clearCommand,
			},
			{
				Name:   "reembed",
				Usage:  "Re-embed every surrogate with the configured embedding model",
				Action: e.reembedCommand,
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "batch-size",
						Usage: "Number of entries to process in each batch",
						Value: reembed.DefaultBatchSize,
					},
					&cli.IntFlag{
						Name:  "report-interval",
						Usage: "Report progress every N entries",
						Value: 100,
					},
					&cli.IntFlag{
						Name:  "max-retries",
						Usage: "Maximum attempts per batch",
						Value: 3,
					},
					&cli.DurationFlag{
						Name:  "retry-delay",
						Usage: "Base delay for exponential backoff",
						Value: 1 * time.Second,
					},
				},
			},
		},
	}
}

func (e *env) openCorpus(c *cli.Context, opts ...docent.CorpusOption) (*docent.Corpus, error) {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	all := append([]docent.CorpusOption{docent.WithConfig(cfg)}, e.corpusOpts...)
	all = append(all, opts...)
	corpus, err := docent.Open(c.Context, all...)
	if err != nil {
		return nil, fmt.Errorf("failed to open corpus at %s: %w", cfg.Storage.Path, err)
	}
	return corpus, nil
}

func (e *env) processCommand(c *cli.Context) error {
	bar := progressbar.NewOptions(-1,
		progressbar.OptionSetWriter(e.errOut),
		progressbar.OptionSetDescription(color.BlueString("Summarizing")),
		progressbar.OptionSetItsString("units"),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetRenderBlankState(true),
		progressbar.OptionSetVisibility(isTerminal(e.errOut)),
	)
	corpus, err := e.openCorpus(c, docent.WithSummaryProgress(func(summarize.Result) {
		_ = bar.Add(1)
	}))
	if err != nil {
		return err
	}
	defer corpus.Close()

	path := c.Args().First()
	if path == "" {
		path = corpus.Config().DocumentPath()
	}

	report, err := corpus.Process(c.Context, path)
	_ = bar.Finish()
	fmt.Fprintln(e.errOut)
	if report != nil {
		e.printReport(report)
	}
	if err != nil {
		switch {
		case errors.Is(err, pipeline.ErrInterrupted):
			color.New(color.FgYellow).Fprintln(e.out, "Interrupted; completed units were kept. Run process again to finish.")
		case errors.Is(err, pipeline.ErrCapabilityUnavailable):
			color.New(color.FgRed).Fprintln(e.out, "No unit could be summarized or indexed. Check OPENAI_API_KEY and the model host, then run process again.")
		}
		return fmt.Errorf("processing failed: %w", err)
	}
	return nil
}

func (e *env) printReport(r *pipeline.Report) {
	fmt.Fprintf(e.out, "Processed %s\n", r.Source)
	fmt.Fprintf(e.out, "  run:        %s\n", r.RunID)
	fmt.Fprintf(e.out, "  corpus:     %s\n", r.Corpus)
	fmt.Fprintf(e.out, "  extracted:  %d text, %d tables, %d images\n",
		r.Extracted[core.KindText], r.Extracted[core.KindTable], r.Extracted[core.KindImage])
	fmt.Fprintf(e.out, "  skipped:    %d already indexed\n", len(r.Skipped))
	fmt.Fprintf(e.out, "  summarized: %d\n", r.Summarized)
	fmt.Fprintf(e.out, "  indexed:    %d\n", r.Indexed)
	fmt.Fprintf(e.out, "  duration:   %s\n", r.Duration.Round(time.Millisecond))
	if len(r.Failed) == 0 {
		color.New(color.FgGreen).Fprintln(e.out, "✓ All units indexed")
		return
	}
	red := color.New(color.FgRed)
	red.Fprintf(e.out, "  failed:     %d\n", len(r.Failed))
	for _, f := range r.Failed {
		red.Fprintf(e.out, "    %s (%s): %v\n", f.UnitID, f.Kind, f.Err)
	}
}

func (e *env) askCommand(c *cli.Context) error {
	questions := answer.DemoQuestions
	if !c.Bool("demo") {
		question := strings.TrimSpace(strings.Join(c.Args().Slice(), " "))
		if question == "" {
			return errors.New("a question is required (or use --demo)")
		}
		questions = []string{question}
	}

	corpus, err := e.openCorpus(c)
	if err != nil {
		return err
	}
	defer corpus.Close()

	answers, err := corpus.Coordinator().AnswerAll(c.Context, questions)
	if err != nil {
		return explainNotReady(err)
	}
	failed := 0
	for _, a := range answers {
		e.printAnswer(a.Question, a.Result, a.Err)
		if a.Err != nil {
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d questions failed", failed, len(answers))
	}
	return nil
}

func (e *env) printAnswer(question string, result *core.AnswerResult, err error) {
	color.New(color.FgGreen).Fprintf(e.out, "Q: %s\n", question)
	switch {
	case err != nil:
		color.New(color.FgRed).Fprintf(e.out, "Error: %v\n\n", err)
	case result.NoRelevantContent:
		color.New(color.FgYellow).Fprintf(e.out, "A: %s\n\n", result.Text)
	default:
		color.New(color.FgCyan).Fprintf(e.out, "A: %s\n", result.Text)
		ids := make([]string, len(result.CitedUnitIDs))
		for i, id := range result.CitedUnitIDs {
			ids[i] = id.String()
		}
		fmt.Fprintf(e.out, "   sources: %s\n", strings.Join(ids, ", "))
		if len(result.DroppedUnitIDs) > 0 {
			fmt.Fprintf(e.out, "   %d retrieved units left out of context\n", len(result.DroppedUnitIDs))
		}
		fmt.Fprintln(e.out)
	}
}

func (e *env) chatCommand(c *cli.Context) error {
	corpus, err := e.openCorpus(c)
	if err != nil {
		return err
	}
	defer corpus.Close()

	if state := corpus.Coordinator().State(); state.Stage != core.StageReady {
		return explainNotReady(&core.NotReadyError{Stage: state.Stage})
	}

	color.New(color.FgCyan).Fprintln(e.out, "Ask about the document (type 'exit' to quit)")
	prompt := color.New(color.FgGreen)
	scanner := bufio.NewScanner(e.in)
	for {
		prompt.Fprint(e.out, "\nYou: ")
		if !scanner.Scan() {
			break
		}
		question := strings.TrimSpace(scanner.Text())
		if question == "" {
			continue
		}
		if q := strings.ToLower(question); q == "exit" || q == "quit" {
			break
		}
		result, err := corpus.Answer(c.Context, question)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		e.printAnswer(question, result, err)
	}
	return scanner.Err()
}

func (e *env) searchCommand(c *cli.Context) error {
	query := strings.TrimSpace(strings.Join(c.Args().Slice(), " "))
	if query == "" {
		return errors.New("a query is required")
	}

	corpus, err := e.openCorpus(c)
	if err != nil {
		return err
	}
	defer corpus.Close()

	result, err := corpus.Coordinator().Search(c.Context, query, c.Int("k"))
	if err != nil {
		return explainNotReady(err)
	}
	if result.Len() == 0 {
		color.New(color.FgYellow).Fprintln(e.out, "No matching content.")
		return nil
	}
	for i, unit := range result.Units {
		fmt.Fprintf(e.out, "%d. [%.3f] %s %s (%s)\n", i+1, result.Scores[i], unit.Kind, unit.ID, unit.Location)
		if unit.Kind == core.KindImage {
			fmt.Fprintf(e.out, "   %s, %d bytes\n", unit.MediaType, len(unit.Payload))
			continue
		}
		fmt.Fprintf(e.out, "   %s\n", snippet(unit.Text(), 160))
	}
	return nil
}

func (e *env) statsCommand(c *cli.Context) error {
	corpus, err := e.openCorpus(c)
	if err != nil {
		return err
	}
	defer corpus.Close()

	stats, err := corpus.Coordinator().Stats(c.Context)
	if err != nil {
		return fmt.Errorf("failed to read stats: %w", err)
	}
	fmt.Fprintf(e.out, "Stage:      %s\n", stats.Stage)
	if stats.Corpus != "" {
		fmt.Fprintf(e.out, "Corpus:     %s\n", stats.Corpus)
		fmt.Fprintf(e.out, "Source:     %s\n", stats.Source)
	}
	fmt.Fprintf(e.out, "Units:      %d text, %d tables, %d images\n",
		stats.Units[core.KindText], stats.Units[core.KindTable], stats.Units[core.KindImage])
	fmt.Fprintf(e.out, "Collection: %s\n", stats.Index.Collection)
	fmt.Fprintf(e.out, "Vectors:    %d\n", stats.Index.VectorEntries)
	fmt.Fprintf(e.out, "Documents:  %d\n", stats.Index.StoredDocuments)
	fmt.Fprintf(e.out, "Dimension:  %d\n", stats.Index.Dimension)
	return nil
}

func (e *env) clearCommand(c *cli.Context) error {
	corpus, err := e.openCorpus(c)
	if err != nil {
		return err
	}
	defer corpus.Close()

	if err := corpus.Coordinator().Clear(c.Context); err != nil {
		return fmt.Errorf("failed to clear corpus: %w", err)
	}
	color.New(color.FgGreen).Fprintln(e.out, "✓ Corpus cleared")
	return nil
}

func (e *env) reembedCommand(c *cli.Context) error {
	reembedConfig := &reembed.Config{
		BatchSize:      c.Int("batch-size"),
		ReportInterval: c.Int("report-interval"),
		MaxRetries:     c.Int("max-retries"),
		RetryDelay:     c.Duration("retry-delay"),
	}
	if err := reembedConfig.Validate(); err != nil {
		return err
	}

	corpus, err := e.openCorpus(c)
	if err != nil {
		return err
	}
	defer corpus.Close()

	cfg := corpus.Config()
	fmt.Fprintf(e.errOut, "Store: %s\n", cfg.Storage.Path)
	fmt.Fprintf(e.errOut, "Embedding host: %s\n", cfg.OpenAI.BaseURL)
	fmt.Fprintf(e.errOut, "Embedding model: %s\n", cfg.OpenAI.EmbeddingModel)
	fmt.Fprintln(e.errOut)

	reembedder := corpus.NewReembedder(reembedConfig, reembed.WithProgress(e.errOut))
	summary, err := reembedder.Run(c.Context)
	if err != nil {
		return fmt.Errorf("reembedding failed: %w", err)
	}
	fmt.Fprintf(e.out, "Reembedded %d entries (dimension %d)\n", summary.Entries, summary.Dimension)
	return nil
}

// isTerminal reports whether w is an interactive terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func explainNotReady(err error) error {
	var notReady *core.NotReadyError
	if errors.As(err, &notReady) {
		return fmt.Errorf("%w; run 'docent process' first", err)
	}
	return err
}

func snippet(text string, limit int) string {
	text = strings.Join(strings.Fields(text), " ")
	if len(text) <= limit {
		return text
	}
	cut := strings.LastIndexByte(text[:limit], ' ')
	if cut <= 0 {
		cut = limit
	}
	return text[:cut] + "..."
}

func setupLogger(c *cli.Context, w io.Writer) error {
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

	logger := slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
