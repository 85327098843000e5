package config

import (
	"log/slog"
	"os"
	"time"
)

const (
	IS_PROD        = false
	LOG_LEVEL_PROD = slog.LevelInfo
	//if redis init fails, document state falls back to an in-memory store
	FALLBACK_REDIS_TO_INTERNALSTORE = true
	TRACE_ID_KEY                    = "traceId"
	RATE_LIMIT_PER_SECOND           = 2
	BURST_RATE_LIMIT_PER_SECOND     = 5

	//auth
	NoAuthBypass = true //set false once a real token is provisioned
	AuthToken    = "local-dev-token"

	//embedding backend
	EmbeddingModel                       = "text-embedding-3-small"
	EmbeddingOutputDimensionality uint64 = 1536
	EmbeddingDBName                      = "docmind_chunks"

	//smart batching limits
	EmbeddingMaxTokensPerBatch = 8000
	EmbeddingMaxBatchSize      = 100
	EmbeddingMaxTextTokens     = 8000

	//inter-batch pacing (sequential mode)
	EmbeddingBatchBaseDelay = 100 * time.Millisecond
	EmbeddingBatchJitterMin = 0.8
	EmbeddingBatchJitterMax = 1.2

	//retry policy for transient embedding failures
	EmbeddingMaxAttempts    = 5
	EmbeddingBackoffBase    = 1 * time.Second
	EmbeddingBackoffCap     = 60 * time.Second
	MaxConcurrentBatches    = 3
	EmbeddingRequestTimeout = 30 * time.Second

	//text cleaning
	CleaningRemoveHTML           = true
	CleaningNormalizeWhitespace  = true
	CleaningNormalizePunctuation = true
	CleaningRemoveControlChars   = true
	CleaningUnicodeNormalization = true
	CleaningUnicodeForm          = "NFC"
	CleaningMinSentenceLength    = 10
	CleaningMinWords             = 3

	//chunking
	ChunkSize    = 1000
	ChunkOverlap = 200

	//retrieval
	SearchScoreThreshold float32 = 0.7
	RAGScoreThreshold    float32 = 0.75
	RAGTopK              uint64  = 5
	RAGRequestTimeout            = 60 * time.Second
	SourcePreviewLength          = 200
	//when the chat_id payload index is not materialized yet, retry the
	//search once without the filter instead of failing the request
	ScopeFilterFailOpen = true

	RequestsPerNewWorkerCount int64 = 10
	MaxWorkerCount            int64 = 10
	MinWorkerCount            int64 = 1
	IdleWorkerTimeout               = 1 * time.Minute

	//serverTimeouts
	ReadTimeout = 5 * time.Second
	//ask waits on the LLM, so the write timeout has to outlive RAGRequestTimeout
	WriteTimeout           = 90 * time.Second
	IdleTimeout            = 120 * time.Second
	ShutdownContextTimeout = 10 * time.Second

	//server listening port
	ServerListenAddr = ":3000"

	//ingest requests buffer limit
	BufferLimit = 100
	//chunks per upsert call during ingestion
	IngestUpsertBatchSize = 100

	//vectorDB
	QdrantConnectionTimeout = 30 * time.Second
	QdrantHost              = "localhost"
	QdrantPort              = 6333 //http
	QdrantGrpcPort          = 6334
	QdrantUseTLS            = false //set for https
	QdrantPoolSize          = 1     //2-5 is preferred for prod according to documentation
	QdrantKeepAliveTimeout  = 30 * time.Second

	//llm
	LLMProvider     = "openai" //or "gemini"
	OpenAIModel     = "gpt-4o"
	GeminiModelName = "gemini-2.5-flash-lite-preview-09-2025"

	ModelTemperature float64 = 0.7
	ModelMaxTokens   int64   = 4000
	ModelContext             = "You are an assistant that answers questions using the provided context. " +
		"Answer briefly and to the point. If the context does not contain the information needed, say so honestly."

	MaxIdleConns        = 50
	MaxIdleConnsPerHost = 25
	IdleConnTimeout     = 60 * time.Second

	//redis
	redisHost     = "127.0.0.1"
	redisPort     = "6379"
	RedisAddr     = redisHost + ":" + redisPort
	RedisPassword = ""

	//redis has 16 DB we can use
	RedisDocumentStore = 0

	//redis timeouts
	RedisDocumentStoreTTL = 24 * time.Hour
)

func OpenAIAPIKey() string {
	return os.Getenv("OPENAI_API_KEY")
}

func GeminiAPIKey() string {
	return os.Getenv("GEMINI_API_KEY")
}
