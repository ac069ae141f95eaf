package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/rsarva/ContextAPI/internal/adapter"
	"github.com/rsarva/ContextAPI/internal/adapter/utils"
	"github.com/rsarva/ContextAPI/internal/api"
	"github.com/rsarva/ContextAPI/internal/config"
	"github.com/rsarva/ContextAPI/internal/domain/ragModel"
	"github.com/rsarva/ContextAPI/internal/rag/assembler"
	"github.com/rsarva/ContextAPI/pkg/logger_i"
)

var (
	logRH         *logger_i.Logger
	_assembler    assembler.Service
	_conversation ragModel.ConversationStore
	_sources      ragModel.SourceStore
)

// technically i dont need this
// but i want to eventually remove jobHandler from handlers and set it in another package
// so in anticipation for that this struct exists
type newJobData struct {
	id       string
	traceId  string
	document ragModel.Document
}

func InitRequestHandlers(asm assembler.Service, conversations ragModel.ConversationStore, sources ragModel.SourceStore) {
	logRH = logger_i.NewLogger("RequestHandler")
	_assembler = asm
	_conversation = conversations
	_sources = sources
}

func GetHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	return
}

// ContextHandler godoc
// @Summary      Assemble a retrieval context
// @Description  Runs the full pipeline for a query: enrichment, vector search, window expansion, token budgeting and citations. Scope comes from the conversation when conversation_id is set, otherwise from the request body.
// @Tags         Retrieval
// @Accept       json
// @Produce      json
// @Param        request  body      api.ContextRequest   true  "Query with optional conversation ID, source scope and chat history"
// @Success      200      {object}  api.ContextResponse  "Assembled context with citations"
// @Failure      400      {object}  api.JobResponse      "Invalid request data or conversation ID"
// @Failure      502      {object}  api.JobResponse      "A downstream dependency (embedding or vector store) failed"
// @Router       /context [post]
func ContextHandler(w http.ResponseWriter, request *http.Request) {

	if !validateContext(request.Context()) {
		logRH.Warn("Invalid Context by request ", request.RemoteAddr)
		return
	}

	var requestData api.ContextRequest
	defer closeBody(request.Body)
	if err := json.NewDecoder(request.Body).Decode(&requestData); err != nil || requestData.Query == "" {
		logRH.Warn("Bad Context Request: ", "error:", err)
		WriteErrorResponse(w, http.StatusBadRequest, requestData.ConversationId, "Bad Request")
		return
	}

	scope := assembler.BuildScope{
		SourceIds: requestData.SourceIds,
		History:   adapter.ToChatMessages(requestData.History),
	}

	//a conversation owns its scope and history, the request body only fills in for one-shot calls
	if requestData.ConversationId != "" {
		if !_conversation.ValidateConversation(request.Context(), requestData.ConversationId) {
			WriteErrorResponse(w, http.StatusBadRequest, requestData.ConversationId, "Unknown conversation")
			return
		}
		sourceIds, err := _conversation.GetScope(request.Context(), requestData.ConversationId)
		if err != nil {
			logRH.Error("Failed to load conversation scope", "err", err)
			WriteErrorResponse(w, http.StatusInternalServerError, requestData.ConversationId, "Conversation error")
			return
		}
		history, err := _conversation.GetRecentMessages(request.Context(), requestData.ConversationId, config.DefaultRecentHistoryCount)
		if err != nil {
			logRH.Error("Failed to load conversation history", "err", err)
			WriteErrorResponse(w, http.StatusInternalServerError, requestData.ConversationId, "Conversation error")
			return
		}
		scope.SourceIds = sourceIds
		scope.History = history
	}

	result, err := _assembler.Build(request.Context(), requestData.Query, scope)
	if err != nil {
		logRH.Error("Context build failed", "err", err)
		WriteErrorResponse(w, http.StatusBadGateway, requestData.ConversationId, "Context build failed")
		return
	}

	if requestData.ConversationId != "" {
		turn := ragModel.ChatMessage{Role: "user", Content: requestData.Query}
		if err := _conversation.SaveTurn(request.Context(), requestData.ConversationId, turn); err != nil {
			logRH.Error("Failed to save conversation turn", "err", err)
		}
	}

	writeJsonResponse(w, http.StatusOK, adapter.ToContextResponse(result))
}

// SearchHandler godoc
// @Summary      Raw vector search
// @Description  Embeds the query and returns the nearest chunks without window expansion or budgeting. Meant for debugging relevance.
// @Tags         Retrieval
// @Accept       json
// @Produce      json
// @Param        request  body      api.SearchRequest   true  "Query with optional source scope and result limit"
// @Success      200      {object}  api.SearchResponse  "Ranked chunk hits"
// @Failure      400      {object}  api.JobResponse     "Invalid request data"
// @Failure      502      {object}  api.JobResponse     "A downstream dependency failed"
// @Router       /search [post]
func SearchHandler(w http.ResponseWriter, request *http.Request) {
	if !validateContext(request.Context()) {
		logRH.Warn("Invalid Context by request ", request.RemoteAddr)
		return
	}

	var requestData api.SearchRequest
	defer closeBody(request.Body)
	if err := json.NewDecoder(request.Body).Decode(&requestData); err != nil || requestData.Query == "" || requestData.Limit < 0 {
		logRH.Warn("Bad Search Request: ", "error:", err)
		WriteErrorResponse(w, http.StatusBadRequest, "", "Bad Request")
		return
	}

	hits, err := _assembler.RawSearch(request.Context(), requestData.Query, requestData.SourceIds, uint64(requestData.Limit))
	if err != nil {
		logRH.Error("Search failed", "err", err)
		WriteErrorResponse(w, http.StatusBadGateway, "", "Search failed")
		return
	}
	writeJsonResponse(w, http.StatusOK, adapter.ToSearchResponse(hits))
}

// IngestHandler godoc
// @Summary      Queue a document rebuild
// @Description  Accepts document content, queues a background rebuild job and returns a job ID to track status. Unchanged content is detected by hash and skipped.
// @Tags         Ingestion
// @Accept       json
// @Produce      json
// @Param        request  body      api.IngestRequest    true  "Document content and identity"
// @Success      202      {object}  api.InitJobResponse  "Job successfully created"
// @Failure      400      {object}  api.JobResponse      "Missing fields or unknown source"
// @Router       /ingest [post]
func IngestHandler(w http.ResponseWriter, request *http.Request) {
	if !validateContext(request.Context()) {
		logRH.Warn("Invalid Context by request ", request.RemoteAddr)
		return
	}

	var requestData api.IngestRequest
	defer closeBody(request.Body)
	if err := json.NewDecoder(request.Body).Decode(&requestData); err != nil {
		logRH.Warn("Bad Ingest Request: ", "error:", err)
		WriteErrorResponse(w, http.StatusBadRequest, "", "Bad Request")
		return
	}

	publishedAt, errString := parsePublishedAt(requestData.PublishedAt)
	if errString != "" {
		WriteErrorResponse(w, http.StatusBadRequest, "", errString)
		return
	}

	doc := ragModel.Document{
		SourceId:     requestData.SourceId,
		Title:        requestData.Title,
		Url:          requestData.Url,
		ExternalGuid: requestData.ExternalGuid,
		Content:      requestData.Content,
		PublishedAt:  publishedAt,
	}
	if !ValidateIngestRequest(doc) {
		WriteErrorResponse(w, http.StatusBadRequest, "", "source_id, content and a url or external_guid are required")
		return
	}
	if !_sources.Exists(request.Context(), doc.SourceId) {
		WriteErrorResponse(w, http.StatusBadRequest, "", "Unknown source")
		return
	}

	newJob := newJobData{
		id:       utils.GetNewUUID(),
		traceId:  request.Context().Value(config.TRACE_ID_KEY).(string),
		document: doc,
	}
	CreateIngestJob(newJob)
	writeJsonResponse(w, http.StatusAccepted, adapter.ToInitJobResponse(newJob.id))
}

// GetStatusHandler godoc
// @Summary      Get job status
// @Description  Retrieves the current status of a specific job using its ID.
// @Tags         Job Status
// @Accept       json
// @Produce      json
// @Param        id   path      string  true  "Job ID "
// @Success      200  {object}  api.JobResponse   "The current status of the job"
// @Failure      404  {object}  api.JobResponse   "Job not found (returns Error object within JobResponse)"
// @Router       /status/{id} [get]
func GetStatusHandler(w http.ResponseWriter, r *http.Request) {
	if validateContext(r.Context()) {
		//use chi get the url id
		idString := utils.GetChiURLParam(r, "id")
		result, isFound := validateId(idString, r.Context().Value(config.TRACE_ID_KEY).(string))

		logRH.Debug("Get Status Request:", "URL path", r.URL.Path)
		if !isFound {
			WriteErrorResponse(w, http.StatusNotFound, idString, "Job not found")
			return
		}

		writeJsonResponse(w, http.StatusOK, adapter.ToAPIResponse(result))
	}
}

// ConversationHandler godoc
// @Summary      Start a conversation
// @Description  Creates a conversation with a pinned source scope. Later /context calls carrying the conversation ID reuse that scope and the stored history.
// @Tags         Conversations
// @Accept       json
// @Produce      json
// @Param        request  body      api.ConversationRequest   true  "Optional conversation ID and source scope"
// @Success      200      {object}  api.ConversationResponse  "The created conversation"
// @Failure      400      {object}  api.JobResponse           "Invalid request data"
// @Router       /conversation [post]
func ConversationHandler(w http.ResponseWriter, request *http.Request) {
	if !validateContext(request.Context()) {
		logRH.Warn("Invalid Context by request ", request.RemoteAddr)
		return
	}

	var requestData api.ConversationRequest
	defer closeBody(request.Body)
	if err := json.NewDecoder(request.Body).Decode(&requestData); err != nil {
		logRH.Warn("Bad Conversation Request: ", "error:", err)
		WriteErrorResponse(w, http.StatusBadRequest, "", "Bad Request")
		return
	}

	conversationId := requestData.ConversationId
	if conversationId == "" {
		conversationId = utils.GetNewUUID()
		logRH.Debug(" New conversation : ", "conversationId:", conversationId)
	}
	for _, id := range requestData.SourceIds {
		if !_sources.Exists(request.Context(), id) {
			WriteErrorResponse(w, http.StatusBadRequest, conversationId, "Unknown source in scope")
			return
		}
	}

	if err := _conversation.InitConversation(request.Context(), conversationId, requestData.SourceIds); err != nil {
		logRH.Error("Error initiating new conversation", conversationId, err)
		WriteErrorResponse(w, http.StatusInternalServerError, conversationId, "Conversation error")
		return
	}
	writeJsonResponse(w, http.StatusOK, api.ConversationResponse{
		ConversationId: conversationId,
		SourceIds:      requestData.SourceIds,
	})
}

// SourceHandler godoc
// @Summary      Register a source
// @Description  Registers or updates a content source. Documents can only be ingested under a registered source and the enrichment model only scopes to READY ones.
// @Tags         Sources
// @Accept       json
// @Produce      json
// @Param        request  body      api.SourceRequest  true  "Source ID, name and type"
// @Success      200      {object}  api.SourceRequest  "The saved source"
// @Failure      400      {object}  api.JobResponse    "Invalid request data"
// @Router       /sources [post]
func SourceHandler(w http.ResponseWriter, request *http.Request) {
	if !validateContext(request.Context()) {
		logRH.Warn("Invalid Context by request ", request.RemoteAddr)
		return
	}

	var requestData api.SourceRequest
	defer closeBody(request.Body)
	if err := json.NewDecoder(request.Body).Decode(&requestData); err != nil || requestData.Id <= 0 || requestData.Name == "" {
		logRH.Warn("Bad Source Request: ", "error:", err)
		WriteErrorResponse(w, http.StatusBadRequest, "", "Bad Request")
		return
	}

	source := ragModel.Source{
		Id:     requestData.Id,
		Name:   requestData.Name,
		Type:   requestData.Type,
		Status: ragModel.SourceStatusReady,
	}
	if err := _sources.SaveSource(request.Context(), source); err != nil {
		logRH.Error("Failed to save source", "err", err)
		WriteErrorResponse(w, http.StatusInternalServerError, "", "Storage error")
		return
	}
	writeJsonResponse(w, http.StatusOK, requestData)
}

func parsePublishedAt(raw string) (*time.Time, string) {
	if raw == "" {
		return nil, ""
	}
	if parsed, err := time.Parse(time.RFC3339, raw); err == nil {
		return &parsed, ""
	}
	if parsed, err := time.Parse("2006-01-02", raw); err == nil {
		return &parsed, ""
	}
	return nil, "published_at must be RFC3339 or YYYY-MM-DD"
}

func closeBody(body io.ReadCloser) {
	if err := body.Close(); err != nil {
		logRH.Error("Couldn't close the request body reader :", err)
	}
}
