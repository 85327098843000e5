package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/akolanti/docmind/internal/config"
	"github.com/akolanti/docmind/internal/data/store"
	"github.com/akolanti/docmind/internal/domain/commonModels"
	jobmodel "github.com/akolanti/docmind/internal/domain/jobModel"
	"github.com/akolanti/docmind/internal/handlers"
	"github.com/akolanti/docmind/internal/job"
	"github.com/akolanti/docmind/internal/rag"
	"github.com/akolanti/docmind/internal/rag/chunker"
	"github.com/akolanti/docmind/internal/rag/embedding"
	"github.com/akolanti/docmind/internal/rag/embedding/openaiEmbedding"
	"github.com/akolanti/docmind/internal/rag/ingest"
	"github.com/akolanti/docmind/internal/rag/llm"
	"github.com/akolanti/docmind/internal/rag/llm/gemini"
	"github.com/akolanti/docmind/internal/rag/llm/openaiChat"
	"github.com/akolanti/docmind/internal/rag/vectorDB/qdrantDB"
	"github.com/akolanti/docmind/internal/server"
	"github.com/akolanti/docmind/internal/worker"
	"github.com/akolanti/docmind/pkg/logger_i"
)

var (
	listenAddr        string
	requestCount      int64
	stopWorkerChannel chan bool
	workerWaitGroup   sync.WaitGroup
)

func main() {

	logger_i.Init()
	var logger = logger_i.NewLogger("main")

	//local dev keys live in .env, absence is fine in containers
	if err := godotenv.Load(); err != nil {
		logger.Debug("No .env file loaded", "reason", err)
	}

	//config
	flag.StringVar(&listenAddr, "listen-addr", config.ServerListenAddr, "server listen address")
	flag.Parse()

	//init buffered job channel
	jobChannel := make(chan jobmodel.Job, config.BufferLimit)
	dispatcherChannel := make(chan bool, 1)
	stopWorkerChannel = make(chan bool, 1)

	serviceContext, closeExternalServices := context.WithCancel(context.Background())
	defer closeExternalServices()

	//document state store, redis first with an in-memory fallback
	var documentStore commonModels.DocumentStore
	if redisDocs := store.GetRedisDocumentStore(serviceContext); redisDocs != nil {
		documentStore = redisDocs
	} else if config.FALLBACK_REDIS_TO_INTERNALSTORE {
		logger.Error("Redis document store is offline, using in-memory store")
		documentStore = store.InitInMemoryDocumentStore()
	} else {
		logger.Error("Redis document store is offline and fallback is disabled. Shutting down.")
		return
	}

	logger.Info("Starting job service")
	service := job.InitJobService(job.ServiceConfig{
		JobChannel:        jobChannel,
		RequestCount:      requestCount,
		DispatcherChannel: dispatcherChannel,
		DocumentStore:     documentStore,
	})

	//vector store: qdrant with the openai embedding gateway in front
	qdrantClient, err := qdrantDB.NewQdrantClient()
	if err != nil {
		logger.Error("Could not connect to qdrant. Shutting down.", "error", err)
		return
	}

	embeddingBackend, err := openaiEmbedding.NewClient(config.OpenAIAPIKey(), config.EmbeddingModel)
	if err != nil {
		logger.Error("Could not initialize embedding backend. Shutting down.", "error", err)
		return
	}
	embedder := embedding.NewGateway(embeddingBackend)

	vectorStore := qdrantDB.New(qdrantClient, embedder)
	if err := vectorStore.EnsureSchema(serviceContext); err != nil {
		logger.Error("Could not ensure vector schema. Shutting down.", "error", err)
		return
	}

	var llmProvider llm.Provider
	switch config.LLMProvider {
	case "gemini":
		llmProvider, err = gemini.NewClient(serviceContext, config.GeminiAPIKey(), config.GeminiModelName)
	default:
		llmProvider, err = openaiChat.NewClient(config.OpenAIAPIKey(), config.OpenAIModel)
	}
	if err != nil {
		logger.Error("Could not initialize LLM provider. Shutting down.", "error", err, "provider", config.LLMProvider)
		return
	}
	logger.Info("LLM provider ready", "provider", llmProvider.Name())

	pipeline := ingest.NewPipeline(chunker.Default(), vectorStore, documentStore)
	ragService := rag.NewService(vectorStore, llmProvider, pipeline, documentStore)

	handlers.InitJobHandler(service, ragService)

	//init worker pool
	worker.InitServices(service, ragService)
	worker.InitWorkerPool(stopWorkerChannel, &workerWaitGroup)

	//server handling
	gracefulShutdown := make(chan os.Signal, 1)
	signal.Notify(gracefulShutdown, syscall.SIGINT, syscall.SIGTERM)
	stopExecution := make(chan bool, 1)

	shutdownParams := server.ShutdownParams{
		GracefulShutdown: gracefulShutdown,
		StopExecution:    stopExecution,
		WorkerStop:       stopWorkerChannel,
		Group:            &workerWaitGroup,
		CloseServices: func() {
			closeExternalServices()
			if err := vectorStore.Close(); err != nil {
				logger.Error("Error closing vector store", "error", err)
			}
		},
	}
	go server.ShutDownHandler(shutdownParams)
	go server.CreateServer(listenAddr)

	<-stopExecution
	logger.Info("Server stopped")
}
