package config

import (
	"errors"
	"time"
)

// RetrievalConfig carries every tunable of the retrieval pipeline. It is built
// once per process from the defaults above and handed to the assembler and the
// enrichment engine explicitly - no package level lookups at call time.
type RetrievalConfig struct {
	ChunkSize          int
	ChunkOverlap       int
	ContextChunkCount  int
	WindowSize         int
	FullDocThreshold   float64
	MaxFullDocChars    int
	MaxContextTokens   int
	RecentHistoryCount int
	SnippetLength      int
	EnrichQueries      bool
	EnrichmentTimeout  time.Duration
}

func DefaultRetrievalConfig() RetrievalConfig {
	return RetrievalConfig{
		ChunkSize:          DefaultChunkSize,
		ChunkOverlap:       DefaultChunkOverlap,
		ContextChunkCount:  DefaultContextChunkCount,
		WindowSize:         DefaultWindowSize,
		FullDocThreshold:   DefaultFullDocThreshold,
		MaxFullDocChars:    DefaultMaxFullDocChars,
		MaxContextTokens:   DefaultMaxContextTokens,
		RecentHistoryCount: DefaultRecentHistoryCount,
		SnippetLength:      DefaultSnippetLength,
		EnrichQueries:      EnrichQueriesEnabled,
		EnrichmentTimeout:  EnrichmentTimeout,
	}
}

func (c RetrievalConfig) Validate() error {
	if c.ChunkSize <= 0 {
		return errors.New("chunk size must be positive")
	}
	if c.ChunkOverlap <= 0 {
		return errors.New("chunk overlap must be positive")
	}
	if c.ChunkOverlap >= c.ChunkSize {
		return errors.New("chunk overlap must be smaller than chunk size")
	}
	if c.WindowSize < 0 {
		return errors.New("window size must be non-negative")
	}
	if c.FullDocThreshold < 0 || c.FullDocThreshold > 1 {
		return errors.New("full document threshold must be within [0,1]")
	}
	if c.MaxFullDocChars < 0 {
		return errors.New("full document char budget must be non-negative")
	}
	if c.MaxContextTokens < 0 {
		return errors.New("context token budget must be non-negative")
	}
	if c.ContextChunkCount <= 0 {
		return errors.New("context chunk count must be positive")
	}
	if c.SnippetLength <= 0 {
		return errors.New("snippet length must be positive")
	}
	return nil
}
