package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/MikeSquared-Agency/walkthrough/internal/api"
	"github.com/MikeSquared-Agency/walkthrough/internal/astgrep"
	"github.com/MikeSquared-Agency/walkthrough/internal/config"
	"github.com/MikeSquared-Agency/walkthrough/internal/explain"
	"github.com/MikeSquared-Agency/walkthrough/internal/hermes"
	"github.com/MikeSquared-Agency/walkthrough/internal/language"
	"github.com/MikeSquared-Agency/walkthrough/internal/ollama"
	"github.com/MikeSquared-Agency/walkthrough/internal/openaicompat"
	"github.com/MikeSquared-Agency/walkthrough/internal/pipeline"
	"github.com/MikeSquared-Agency/walkthrough/internal/report"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout))
}

func run(args []string, stdout io.Writer) int {
	cfg := config.Load()
	setupLogging(cfg.LogLevel, cfg.LogFormat)

	table := language.Default()
	if cfg.LanguagesFile != "" {
		overrides, err := language.LoadFile(cfg.LanguagesFile)
		if err != nil {
			slog.Error("failed to load language overrides", "path", cfg.LanguagesFile, "error", err)
			return 1
		}
		table = table.Merge(overrides)
	}

	path, langCfg, err := validateArgs(args, table)
	if err != nil {
		fmt.Fprintf(stdout, "Error: %v\n", err)
		printUsage(stdout, table)
		return 1
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	gen, err := newGenerator(cfg, timeout)
	if err != nil {
		slog.Error("invalid backend", "error", err)
		return 1
	}

	// NATS is optional; the report is the product.
	var publisher pipeline.Publisher
	if cfg.NatsURL != "" {
		hermesClient, err := hermes.NewClient(cfg.NatsURL, cfg.NatsToken, slog.Default())
		if err != nil {
			slog.Warn("nats unavailable, continuing without notifications", "url", cfg.NatsURL, "error", err)
		} else {
			defer hermesClient.Close()
			publisher = hermesClient
		}
	}

	ext := astgrep.New(astgrep.NewExecRunner(cfg.AstGrepBin), slog.Default())
	exp := explain.New(gen, cfg.Model, slog.Default())
	opts := report.Options{
		Scrollable:      cfg.Scrollable,
		AutoSlide:       cfg.AutoSlideMs,
		AutoAdvance:     cfg.AutoAdvance,
		TransitionSpeed: cfg.TransitionSpeed,
		Progress:        cfg.Progress,
	}
	p := pipeline.New(ext, exp, publisher, cfg.Model, opts, cfg.OutputPath, slog.Default())

	slog.Info("starting ast-grep analysis", "file", path, "language", langCfg.Language, "backend", cfg.Backend)

	res, err := p.Run(ctx, path, langCfg)
	if err != nil {
		slog.Error("walkthrough failed", "error", err)
		return 1
	}

	fmt.Fprintf(stdout, "\nGenerated Quarto Presentation file: %s\n", res.OutputPath)
	fmt.Fprintln(stdout, "\n>>> NEXT STEP: Run Quarto to see the result:")
	fmt.Fprintf(stdout, "    quarto render %s --to revealjs\n", res.OutputPath)

	if cfg.ServePort > 0 {
		serve(cfg.ServePort, res)
	}
	return 0
}

// validateArgs checks for exactly one existing file with a supported extension.
func validateArgs(args []string, table *language.Table) (string, language.Config, error) {
	if len(args) != 1 {
		return "", language.Config{}, errors.New("expected exactly one input file")
	}
	path := args[0]
	if _, err := os.Stat(path); err != nil {
		return "", language.Config{}, fmt.Errorf("input file '%s' not found", path)
	}
	cfg, ok := table.Resolve(path)
	if !ok {
		return "", language.Config{}, fmt.Errorf("unsupported file extension '%s'", language.Ext(path))
	}
	return path, cfg, nil
}

func printUsage(w io.Writer, table *language.Table) {
	fmt.Fprintln(w, "Usage: walkthrough <path_to_code_file>")
	fmt.Fprintln(w, "Supported extensions:", table.Extensions())
}

func newGenerator(cfg config.Config, timeout time.Duration) (explain.Generator, error) {
	switch cfg.Backend {
	case "ollama":
		return ollama.NewClient(cfg.OllamaURL, cfg.Model, timeout), nil
	case "openai":
		return openaicompat.NewClient(cfg.OpenAIBaseURL, cfg.OpenAIAPIKey, cfg.Model, timeout), nil
	default:
		return nil, fmt.Errorf("unknown backend %q (want ollama or openai)", cfg.Backend)
	}
}

// serve keeps the report available over HTTP until interrupted.
func serve(port int, res *pipeline.Result) {
	srv := api.NewServer(port, res.RunID.String(), res.Report)
	go func() {
		if err := srv.Start(); err != nil {
			slog.Error("HTTP server error", "error", err)
		}
	}()

	slog.Info("serving report, press Ctrl+C to stop", "port", port)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	slog.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		slog.Warn("shutdown", "error", err)
	}
}

func setupLogging(level, format string) {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: lvl}

	var handler slog.Handler
	if format == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}
	slog.SetDefault(slog.New(handler))
}
