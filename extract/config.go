package extract

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/tsawler/pagevisuals/merge"
)

// Config bounds what the engine selects. Counts of zero select nothing.
type Config struct {
	MaxImagesPerPage int `yaml:"max_images_per_page" json:"max_images_per_page"`
	MaxTotalImages   int `yaml:"max_total_images" json:"max_total_images"`
	MinImageArea     int `yaml:"min_image_area" json:"min_image_area"` // width x height in pixels
	MaxImageDim      int `yaml:"max_image_dim" json:"max_image_dim"`   // 0 disables resizing

	MaxVectorRegionsPerPage int     `yaml:"max_vector_regions_per_page" json:"max_vector_regions_per_page"`
	MaxVectorRegionsTotal   int     `yaml:"max_vector_regions_total" json:"max_vector_regions_total"`
	MinVectorAreaPt         float64 `yaml:"min_vector_area_pt" json:"min_vector_area_pt"`
	RegionPadPt             float64 `yaml:"region_pad_pt" json:"region_pad_pt"`
	VectorRenderScale       float64 `yaml:"vector_render_scale" json:"vector_render_scale"`

	// IoU at or above which two padded drawings are merged. Rectangles that
	// touch are merged regardless.
	MergeThreshold float64 `yaml:"merge_threshold" json:"merge_threshold"`

	// Regions rendered concurrently. Output order does not depend on it.
	RenderWorkers int `yaml:"render_workers" json:"render_workers"`
}

// DefaultConfig returns the stock limits.
func DefaultConfig() Config {
	return Config{
		MaxImagesPerPage:        2,
		MaxTotalImages:          20,
		MinImageArea:            20000,
		MaxImageDim:             1400,
		MaxVectorRegionsPerPage: 2,
		MaxVectorRegionsTotal:   12,
		MinVectorAreaPt:         5000,
		RegionPadPt:             6,
		VectorRenderScale:       2.0,
		MergeThreshold:          merge.DefaultThreshold,
		RenderWorkers:           1,
	}
}

// Validate reports the first option outside its domain.
func (c Config) Validate() error {
	ints := []struct {
		key string
		v   int
	}{
		{"max_images_per_page", c.MaxImagesPerPage},
		{"max_total_images", c.MaxTotalImages},
		{"min_image_area", c.MinImageArea},
		{"max_image_dim", c.MaxImageDim},
		{"max_vector_regions_per_page", c.MaxVectorRegionsPerPage},
		{"max_vector_regions_total", c.MaxVectorRegionsTotal},
		{"render_workers", c.RenderWorkers},
	}
	for _, o := range ints {
		if o.v < 0 {
			return fmt.Errorf("%s must not be negative, got %d", o.key, o.v)
		}
	}
	if c.MinVectorAreaPt < 0 {
		return fmt.Errorf("min_vector_area_pt must not be negative, got %g", c.MinVectorAreaPt)
	}
	if c.RegionPadPt < 0 {
		return fmt.Errorf("region_pad_pt must not be negative, got %g", c.RegionPadPt)
	}
	if c.VectorRenderScale <= 0 {
		return fmt.Errorf("vector_render_scale must be positive, got %g", c.VectorRenderScale)
	}
	if c.MergeThreshold < 0 {
		return fmt.Errorf("merge_threshold must not be negative, got %g", c.MergeThreshold)
	}
	return nil
}

// Fingerprint identifies the options that affect output. Configs with the
// same fingerprint produce the same Result for the same document.
func (c Config) Fingerprint() string {
	f := func(v float64) string { return strconv.FormatFloat(v, 'g', -1, 64) }
	return strings.Join([]string{
		"v1",
		strconv.Itoa(c.MaxImagesPerPage),
		strconv.Itoa(c.MaxTotalImages),
		strconv.Itoa(c.MinImageArea),
		strconv.Itoa(c.MaxImageDim),
		strconv.Itoa(c.MaxVectorRegionsPerPage),
		strconv.Itoa(c.MaxVectorRegionsTotal),
		f(c.MinVectorAreaPt),
		f(c.RegionPadPt),
		f(c.VectorRenderScale),
		f(c.MergeThreshold),
	}, ":")
}

func (c Config) workers() int {
	if c.RenderWorkers < 1 {
		return 1
	}
	return c.RenderWorkers
}
