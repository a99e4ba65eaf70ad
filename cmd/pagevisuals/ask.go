package main

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/tsawler/pagevisuals/assemble"
	"github.com/tsawler/pagevisuals/config"
	"github.com/tsawler/pagevisuals/llm"
	"github.com/tsawler/pagevisuals/llm/anthropic"
	"github.com/tsawler/pagevisuals/llm/openai"
	"github.com/tsawler/pagevisuals/report"
)

// questions implements flag.Value for the repeatable -q flag.
type questions []string

func (q *questions) String() string { return strings.Join(*q, ", ") }
func (q *questions) Set(val string) error {
	*q = append(*q, val)
	return nil
}

// newCompleter builds the provider client and returns the model it uses.
var newCompleter = func(cfg config.Config, apiKey string) (llm.Completer, string) {
	if cfg.Provider == config.ProviderAnthropic {
		c := anthropic.New(apiKey, cfg.Model)
		return c, c.Model()
	}
	c := openai.New(apiKey, cfg.Model)
	return c, c.Model()
}

func runAsk(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	var (
		flags  common
		asked  questions
		output string
	)
	fs := flag.NewFlagSet("ask", flag.ContinueOnError)
	fs.SetOutput(stderr)
	flags.register(fs)
	fs.Var(&asked, "q", "question to ask (repeatable; defaults to the built-in questions)")
	fs.StringVar(&output, "o", "", "report path (default <document>.<model>.report.html)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("usage: pagevisuals ask [flags] document.pdf")
	}
	path := fs.Arg(0)
	if err := checkPDF(path); err != nil {
		return err
	}

	cfg, err := config.Load(flags.configPath)
	if err != nil {
		return err
	}
	apiKey := os.Getenv(cfg.APIKeyEnv())
	if apiKey == "" {
		return fmt.Errorf("missing %s environment variable", cfg.APIKeyEnv())
	}
	completer, model := newCompleter(cfg, apiKey)
	logger := flags.logger(stderr)

	doc, err := extractVisuals(ctx, path, cfg, flags.cachePath, logger, stdout)
	if err != nil {
		return err
	}
	excerpt, err := doc.ext.TextExcerpt(cfg.MaxTextChars)
	if err != nil {
		logger.Warn("ask: no text excerpt", "error", err)
		excerpt = ""
	}

	pages := assemble.ByPage(doc.result.Images, doc.result.Clips)
	conv := llm.NewConversation(completer, llm.SystemPrompt, assemble.Seed(excerpt, pages))

	if len(asked) == 0 {
		asked = llm.DefaultQuestions
	}
	answers := make([]string, len(asked))
	failed := 0
	for i, q := range asked {
		fmt.Fprintf(stdout, "Requesting: %s\n", preview(q))
		answer, err := conv.Ask(ctx, q)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			logger.Error("ask: question failed", "question", i+1, "error", err)
			failed++
			continue
		}
		answers[i] = answer
		fmt.Fprintln(stdout, "Done.")
	}

	if output == "" {
		output = strings.TrimSuffix(path, filepath.Ext(path)) + "." + model + ".report.html"
	}
	var buf bytes.Buffer
	err = report.Write(&buf, report.Report{
		Source:    path,
		Model:     model,
		Generated: time.Now(),
		QA:        report.Pairs(asked, answers),
	})
	if err != nil {
		return err
	}
	if err := os.WriteFile(output, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	fmt.Fprintf(stdout, "Wrote report to: %s\n", output)

	if failed > 0 {
		return fmt.Errorf("%d of %d question(s) got no answer", failed, len(asked))
	}
	return nil
}

// preview shortens a question for progress output.
func preview(q string) string {
	const n = 60
	if utf8.RuneCountInString(q) <= n {
		return q
	}
	return string([]rune(q)[:n]) + "…"
}
