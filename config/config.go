// Package config loads command settings from an optional YAML file and the
// environment. Environment variables win over the file.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/tsawler/pagevisuals/extract"
	"github.com/tsawler/pagevisuals/textexcerpt"
)

// Completion providers.
const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
)

// Config is everything the command needs besides the document.
type Config struct {
	Extract extract.Config `yaml:",inline"`

	MaxTextChars int    `yaml:"max_text_chars"`
	Provider     string `yaml:"provider"`
	Model        string `yaml:"model"` // empty selects the provider's default
	CachePath    string `yaml:"cache_path"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Extract:      extract.DefaultConfig(),
		MaxTextChars: textexcerpt.DefaultMaxChars,
		Provider:     ProviderOpenAI,
	}
}

// Load starts from Default, applies the YAML file at path when path is not
// empty, then the environment, and validates the result.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		if err := cfg.decode(data); err != nil {
			return Config{}, fmt.Errorf("parse %s: %w", path, err)
		}
	}
	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) decode(data []byte) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

type lookupFunc func(key string) (string, bool)

func (c *Config) applyEnv(lookup lookupFunc) error {
	ints := []struct {
		key string
		dst *int
	}{
		{"MAX_IMAGES_PER_PAGE", &c.Extract.MaxImagesPerPage},
		{"MAX_TOTAL_IMAGES", &c.Extract.MaxTotalImages},
		{"MIN_IMAGE_AREA", &c.Extract.MinImageArea},
		{"MAX_IMAGE_DIM", &c.Extract.MaxImageDim},
		{"MAX_VECTOR_REGIONS_PER_PAGE", &c.Extract.MaxVectorRegionsPerPage},
		{"MAX_VECTOR_REGIONS_TOTAL", &c.Extract.MaxVectorRegionsTotal},
		{"MAX_TEXT_CHARS", &c.MaxTextChars},
	}
	for _, o := range ints {
		v, ok := lookup(o.key)
		if !ok || v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: invalid integer %q", o.key, v)
		}
		*o.dst = n
	}

	floats := []struct {
		key string
		dst *float64
	}{
		{"MIN_VECTOR_AREA_PT", &c.Extract.MinVectorAreaPt},
		{"REGION_PAD_PT", &c.Extract.RegionPadPt},
		{"VECTOR_RENDER_SCALE", &c.Extract.VectorRenderScale},
	}
	for _, o := range floats {
		v, ok := lookup(o.key)
		if !ok || v == "" {
			continue
		}
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("%s: invalid number %q", o.key, v)
		}
		*o.dst = f
	}

	if v, ok := lookup("PAGEVISUALS_PROVIDER"); ok && v != "" {
		c.Provider = v
	}
	modelKey := "OPENAI_MODEL"
	if c.Provider == ProviderAnthropic {
		modelKey = "ANTHROPIC_MODEL"
	}
	if v, ok := lookup(modelKey); ok && v != "" {
		c.Model = v
	}
	return nil
}

// Validate checks the extraction limits and the provider.
func (c Config) Validate() error {
	if err := c.Extract.Validate(); err != nil {
		return err
	}
	if c.MaxTextChars < 0 {
		return fmt.Errorf("max_text_chars must not be negative, got %d", c.MaxTextChars)
	}
	switch c.Provider {
	case ProviderOpenAI, ProviderAnthropic:
	default:
		return fmt.Errorf("provider must be %q or %q, got %q", ProviderOpenAI, ProviderAnthropic, c.Provider)
	}
	return nil
}

// APIKeyEnv names the environment variable holding the provider's key.
func (c Config) APIKeyEnv() string {
	if c.Provider == ProviderAnthropic {
		return "ANTHROPIC_API_KEY"
	}
	return "OPENAI_API_KEY"
}
