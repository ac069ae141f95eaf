// @title           Context Retrieval API
// @version         1.0
// @description     This API assembles citation-backed retrieval context and handles asynchronous document ingestion
// @termsOfService  http://swagger.io/terms/

// @contact.name    me lol
// @contact.url
// @contact.email

// @license.name    Apache 2.0
// @license.url     http://www.apache.org/licenses/LICENSE-2.0.html

// @host      localhost:3000
// @BasePath  /
// @schemes   http https
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/rsarva/ContextAPI/internal/config"
	"github.com/rsarva/ContextAPI/internal/data/store"
	jobmodel "github.com/rsarva/ContextAPI/internal/domain/jobModel"
	"github.com/rsarva/ContextAPI/internal/domain/ragModel"
	"github.com/rsarva/ContextAPI/internal/handlers"
	"github.com/rsarva/ContextAPI/internal/job"
	"github.com/rsarva/ContextAPI/internal/mcpserver"
	"github.com/rsarva/ContextAPI/internal/rag"
	"github.com/rsarva/ContextAPI/internal/rag/assembler"
	"github.com/rsarva/ContextAPI/internal/rag/embedding"
	"github.com/rsarva/ContextAPI/internal/rag/embedding/googleEmbedding"
	"github.com/rsarva/ContextAPI/internal/rag/embedding/openaiEmbedding"
	"github.com/rsarva/ContextAPI/internal/rag/enrich"
	"github.com/rsarva/ContextAPI/internal/rag/llm/gemini"
	"github.com/rsarva/ContextAPI/internal/rag/vectorDB/qdrantDB"
	"github.com/rsarva/ContextAPI/internal/server"
	"github.com/rsarva/ContextAPI/internal/worker"
	"github.com/rsarva/ContextAPI/pkg/logger_i"
)

var (
	listenAddr        string
	mcpStdio          bool
	requestCount      int64
	stopWorkerChannel chan bool
	workerWaitGroup   sync.WaitGroup
)

func main() {

	logger_i.Init()
	var logger = logger_i.NewLogger("main")

	//config
	flag.StringVar(&listenAddr, "listen-addr", config.ServerListenAddr, "server listen address")
	flag.BoolVar(&mcpStdio, "mcp-stdio", false, "also expose the retrieval tools over MCP on stdio")
	flag.Parse()

	retrievalConfig := config.DefaultRetrievalConfig()
	if err := retrievalConfig.Validate(); err != nil {
		logger.Error("Invalid retrieval config", "err", err)
		return
	}

	//init buffered job channel
	jobChannel := make(chan jobmodel.Job, config.BufferLimit)
	dispatcherChannel := make(chan bool, 1)
	stopWorkerChannel = make(chan bool, 1)

	serviceContext, closeExternalServices := context.WithCancel(context.Background())
	defer closeExternalServices()

	//init job service and job store
	serviceConfig := job.ServiceConfig{
		JobChannel:        jobChannel,
		RequestCount:      requestCount,
		DispatcherChannel: dispatcherChannel,
	}

	var documentStore ragModel.DocumentStore
	var sourceStore ragModel.SourceStore
	var conversationStore ragModel.ConversationStore

	logger.Info("Starting job service")

	redisJobs := store.GetRedisJobStore(serviceContext)
	redisDocuments := store.GetRedisDocumentStore(serviceContext)
	redisSources := store.GetRedisSourceStore(serviceContext)
	redisConversations := store.GetRedisConversationStore(serviceContext)
	if redisJobs == nil || redisDocuments == nil || redisSources == nil || redisConversations == nil {
		logger.Error("Redis stores are offline")
		serviceConfig.JobStore = store.InitInMemoryJobStore()
		documentStore = store.InitInMemoryDocumentStore()
		sourceStore = store.InitInMemorySourceStore()
		conversationStore = store.InitInMemoryConversationStore()
	} else {
		serviceConfig.JobStore = redisJobs
		documentStore = redisDocuments
		sourceStore = redisSources
		conversationStore = redisConversations
	}
	service := job.InitJobService(serviceConfig)

	vectorDB := qdrantDB.GetQuadrantClient(serviceContext)
	var embeddingService embedding.Embedder
	if config.EmbeddingProvider == "openai" {
		embeddingService = openaiEmbedding.GetOpenAIEmbeddingClient(config.OpenAIEmbeddingModel, config.OpenAIAPIKey)
	} else {
		embeddingService = googleEmbedding.GetGoogleEmbeddingClient(serviceContext, config.GoogleEmbeddingModel, config.GoogleEmbeddingAPIKey)
	}
	llmProvider := gemini.GetGeminiClient(serviceContext, config.GeminiModelName, config.GoogleEmbeddingAPIKey)

	if vectorDB == nil || embeddingService == nil || llmProvider == nil {
		logger.Error("One or more external services failed to initialize. Shutting down.")
		logger.Debug("Available services : ", "VectorDB", vectorDB != nil, "EmbeddingService", embeddingService != nil, "LLMProvider", llmProvider != nil)
		return
	}

	enrichEngine := enrich.NewEngine(llmProvider, sourceStore, retrievalConfig)
	assemblerService := assembler.NewService(vectorDB, embeddingService, documentStore, sourceStore, enrichEngine, retrievalConfig)
	ragService := rag.NewService(vectorDB, embeddingService, documentStore, retrievalConfig)

	handlers.InitJobHandler(service)
	handlers.InitRequestHandlers(assemblerService, conversationStore, sourceStore)

	//init worker pool
	worker.InitServices(service, ragService)
	worker.InitWorkerPool(stopWorkerChannel, &workerWaitGroup)

	if mcpStdio {
		mcpServer := mcpserver.NewServer(assemblerService)
		go func() {
			if err := mcpServer.Run(serviceContext); err != nil {
				logger.Error("MCP server stopped", "err", err)
			}
		}()
	}

	//server handling
	gracefulShutdown := make(chan os.Signal, 1)
	signal.Notify(gracefulShutdown, syscall.SIGINT, syscall.SIGTERM)
	stopExecution := make(chan bool, 1)

	shutdownParams := server.ShutdownParams{
		GracefulShutdown: gracefulShutdown,
		StopExecution:    stopExecution,
		WorkerStop:       stopWorkerChannel,
		Group:            &workerWaitGroup,
		CloseServices:    closeExternalServices,
	}
	go server.ShutDownHandler(shutdownParams)
	go server.CreateServer(listenAddr)

	<-stopExecution
	logger.Info("Server stopped")
}
