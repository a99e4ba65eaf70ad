package pagevisuals

import (
	"log/slog"

	"github.com/tsawler/pagevisuals/cache"
	"github.com/tsawler/pagevisuals/extract"
)

// ExtractOptions holds configuration for an extraction.
type ExtractOptions struct {
	config extract.Config

	logger *slog.Logger
	cache  *cache.Cache // nil disables caching
}

// defaultOptions returns the default extraction options.
func defaultOptions() ExtractOptions {
	return ExtractOptions{
		config: extract.DefaultConfig(),
		logger: slog.Default(),
	}
}

// clone copies the options. Logger and cache are shared.
func (o ExtractOptions) clone() ExtractOptions {
	return o
}
