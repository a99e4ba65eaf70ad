//go:build cgo

package pagevisuals

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/tsawler/pagevisuals/cache"
)

func TestExtractWithCache(t *testing.T) {
	c, err := cache.Open(filepath.Join(t.TempDir(), "cache.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()

	ext := FromBytes(sampleDoc()).WithLogger(quiet).WithCache(c)
	first, warnings, err := ext.Extract(context.Background())
	if err != nil {
		t.Fatalf("first Extract: %v", err)
	}
	if len(warnings) == 0 {
		t.Error("first run should report the broken page")
	}

	second, warnings, err := ext.Extract(context.Background())
	if err != nil {
		t.Fatalf("second Extract: %v", err)
	}
	if len(warnings) != 0 {
		t.Errorf("cached run warnings = %v", warnings)
	}
	if len(second.Images) != len(first.Images) || len(second.Clips) != len(first.Clips) {
		t.Errorf("cached result differs: %d/%d images, %d/%d clips",
			len(second.Images), len(first.Images), len(second.Clips), len(first.Clips))
	}

	// different limits miss the cache
	third, _, err := ext.MaxTotalImages(0).Extract(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(third.Images) != 0 {
		t.Errorf("images = %d, want 0", len(third.Images))
	}
}
