// Command pagevisuals extracts the most prominent visuals from a PDF and
// either asks a model about the document or dumps the visuals to disk.
//
// Usage:
//
//	pagevisuals ask [-config file] [-cache db] [-q question]... [-o report.html] document.pdf
//	pagevisuals debug [-config file] [-cache db] [-out dir] document.pdf
//
// ask sends a text excerpt and the visuals to OpenAI (OPENAI_API_KEY) or
// Anthropic (ANTHROPIC_API_KEY, with PAGEVISUALS_PROVIDER=anthropic) and
// writes the answers to <document>.<model>.report.html.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/tsawler/pagevisuals"
	"github.com/tsawler/pagevisuals/cache"
	"github.com/tsawler/pagevisuals/config"
	"github.com/tsawler/pagevisuals/extract"
)

const usage = `usage:
  pagevisuals ask [flags] document.pdf
  pagevisuals debug [flags] document.pdf

Run "pagevisuals <command> -h" for the flags of a command.`

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

var errUsage = errors.New(usage)

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	if len(args) == 0 {
		return errUsage
	}
	switch args[0] {
	case "ask":
		return runAsk(ctx, args[1:], stdout, stderr)
	case "debug":
		return runDebug(ctx, args[1:], stdout, stderr)
	case "-h", "-help", "--help", "help":
		fmt.Fprintln(stdout, usage)
		return nil
	}
	return fmt.Errorf("unknown command %q\n%s", args[0], usage)
}

// common holds the flags shared by every command.
type common struct {
	configPath string
	cachePath  string
	verbose    bool
}

func (c *common) register(fs *flag.FlagSet) {
	fs.StringVar(&c.configPath, "config", "", "YAML config file")
	fs.StringVar(&c.cachePath, "cache", "", "SQLite file caching extraction results")
	fs.BoolVar(&c.verbose, "v", false, "log skipped items and progress")
}

func (c *common) logger(w io.Writer) *slog.Logger {
	level := slog.LevelWarn
	if c.verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// document is an opened PDF with its extraction result.
type document struct {
	path   string
	ext    *pagevisuals.Extractor
	result *extract.Result
}

// checkPDF requires an existing regular file with a .pdf extension.
func checkPDF(path string) error {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() || !strings.EqualFold(filepath.Ext(path), ".pdf") {
		return fmt.Errorf("please provide a valid path to a .pdf file")
	}
	return nil
}

// extractVisuals opens path and runs the extraction, using the cache when
// one is configured.
func extractVisuals(ctx context.Context, path string, cfg config.Config, cachePath string, logger *slog.Logger, stdout io.Writer) (*document, error) {
	ext := pagevisuals.Open(path).WithConfig(cfg.Extract).WithLogger(logger)

	n, err := ext.PageCount()
	if err != nil {
		return nil, err
	}
	fmt.Fprintf(stdout, "Loaded PDF with %d page(s). Extracting visuals...\n", n)

	if cachePath == "" {
		cachePath = cfg.CachePath
	}
	if cachePath != "" {
		c, err := cache.Open(cachePath)
		if err != nil {
			return nil, err
		}
		defer c.Close()
		ext = ext.WithCache(c)
	}

	res, warnings, err := ext.Extract(ctx)
	if err != nil {
		return nil, err
	}
	for _, w := range warnings {
		logger.Warn("extract: warning", "page", w.Page+1, "message", w.Message, "error", w.Err)
	}
	logger.Info("extract: visuals selected",
		"file", path,
		"images", len(res.Images),
		"clips", len(res.Clips))
	return &document{path: path, ext: ext, result: res}, nil
}
