package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/tsawler/pagevisuals/config"
	"github.com/tsawler/pagevisuals/model"
)

func runDebug(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	var (
		flags  common
		outDir string
	)
	fs := flag.NewFlagSet("debug", flag.ContinueOnError)
	fs.SetOutput(stderr)
	flags.register(fs)
	fs.StringVar(&outDir, "out", "", "output directory (default ./<document>_debug)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("usage: pagevisuals debug [flags] document.pdf")
	}
	path := fs.Arg(0)
	if err := checkPDF(path); err != nil {
		return err
	}
	cfg, err := config.Load(flags.configPath)
	if err != nil {
		return err
	}

	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	if outDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return err
		}
		outDir = filepath.Join(wd, base+"_debug")
	}
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	doc, err := extractVisuals(ctx, path, cfg, flags.cachePath, flags.logger(stderr), stdout)
	if err != nil {
		return err
	}

	images := 0
	if len(doc.result.Images) == 0 {
		fmt.Fprintln(stdout, "No embedded images found.")
	}
	for i, img := range doc.result.Images {
		name := fmt.Sprintf("%s.page-%03d.img-%03d", base, img.Page+1, i+1)
		if err := writeBlob(outDir, name, img.Blob); err != nil {
			fmt.Fprintf(stdout, "Warning: failed to write embedded image %d (page %d): %v\n", i+1, img.Page+1, err)
			continue
		}
		images++
	}

	clips := 0
	if len(doc.result.Clips) == 0 {
		fmt.Fprintln(stdout, "No vector regions detected/rendered.")
	}
	for i, c := range doc.result.Clips {
		name := fmt.Sprintf("%s.page-%03d.vector-%03d", base, c.Page+1, i+1)
		if err := writeBlob(outDir, name, c.Blob); err != nil {
			fmt.Fprintf(stdout, "Warning: failed to write vector clip %d (page %d): %v\n", i+1, c.Page+1, err)
			continue
		}
		clips++
	}

	fmt.Fprintf(stdout, "Done. Wrote %d embedded image(s) and %d vector clip(s) to:\n  %s\n", images, clips, outDir)
	return nil
}

// writeBlob writes the payload of the blob's data URI, the form a model
// receives, to dir/name.<ext>.
func writeBlob(dir, name string, b model.Blob) error {
	decoded, err := model.ParseDataURI(b.DataURI())
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, name+"."+decoded.Ext()), decoded.Data, 0644)
}
