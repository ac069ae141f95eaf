package config

import (
	"log/slog"
	"time"
)

const (
	IS_PROD        = false
	LOG_LEVEL_PROD = slog.LevelInfo
	TRACE_ID_KEY   = "traceId"

	RATE_LIMIT_PER_SECOND       = 2
	BURST_RATE_LIMIT_PER_SECOND = 5

	NoAuthBypass = true //local dev only, bearer check is skipped
	AuthToken    = ""

	//embedding provider triple - changing model or dimension invalidates every
	//stored vector, the collection check in qdrantDB refuses a mismatch
	EmbeddingProvider                   = "google" //"google" or "openai"
	EmbeddingOutputDimensionality int32 = 1536
	GoogleEmbeddingModel                = "gemini-embedding-001"
	OpenAIEmbeddingModel                = "text-embedding-3-small"
	GoogleEmbeddingAPIKey               = ""
	OpenAIAPIKey                        = ""

	//llm
	GeminiModelName          = "gemini-2.5-flash-lite-preview-09-2025"
	ModelTemperature float32 = 0.2

	//vector collection
	ChunkCollectionName = "rag-chunks"

	//retrieval pipeline defaults - every default lives here, the struct in
	//retrievalConfig.go is built from these and validated once
	DefaultChunkSize          = 1000
	DefaultChunkOverlap       = 200
	DefaultContextChunkCount  = 100
	DefaultWindowSize         = 2
	DefaultFullDocThreshold   = 0.85
	DefaultMaxFullDocChars    = 10000
	DefaultMaxContextTokens   = 16000
	DefaultRecentHistoryCount = 6
	DefaultSnippetLength      = 200
	EnrichQueriesEnabled      = true
	EnrichmentTimeout         = 10 * time.Second

	//ingestion
	EmbeddingBatchSize = 100

	RequestsPerNewWorkerCount int64 = 10
	MaxWorkerCount            int64 = 10
	MinWorkerCount            int64 = 1
	IdleWorkerTimeout               = 1 * time.Minute

	//serverTimeouts
	ReadTimeout            = 5 * time.Second
	WriteTimeout           = 30 * time.Second
	IdleTimeout            = 120 * time.Second
	ShutdownContextTimeout = 10 * time.Second
	BuildRequestTimeout    = 60 * time.Second

	//server listening port
	ServerListenAddr = ":3000"

	//job requests buffer limit
	BufferLimit = 100

	//vectorDB
	QdrantHost             = ""
	QdrantGrpcPort         = 6334
	QdrantUseTLS           = false
	QdrantPoolSize         = 1
	QdrantKeepAliveTimeout = 30 * time.Second

	//redis
	redisHost     = "127.0.0.1"
	redisPort     = "6379"
	RedisAddr     = redisHost + ":" + redisPort
	RedisPassword = ""

	//redis has 16 DB we can use
	RedisDocumentStore     = 0
	RedisJobStore          = 1
	RedisConversationStore = 2

	RedisJobStoreTTL     = 24 * time.Hour
	RedisConversationTTL = 7 * 24 * time.Hour
)
