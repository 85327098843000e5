package handlers

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/akolanti/docmind/internal/adapter"
	"github.com/akolanti/docmind/internal/adapter/utils"
	"github.com/akolanti/docmind/internal/api"
	"github.com/akolanti/docmind/internal/config"
	"github.com/akolanti/docmind/pkg/logger_i"
)

var logRH *logger_i.Logger

// carries everything the job handler needs to queue an ingestion;
// exists so the multipart parsing stays out of jobHandler
type newJobData struct {
	id           string
	documentId   string
	chatId       string
	traceId      string
	documentName string
	filePath     string
}

func GetHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	return
}

// UploadDocumentHandler receives a file via multipart/form-data, saves it
// to a temporary directory and queues an ingestion job. The response is
// 202 with a status URL; processing happens on the worker pool.
func UploadDocumentHandler(w http.ResponseWriter, r *http.Request) {
	if validateContext(r.Context()) {

		targetDir, errString := getTargetDirectory()

		if errString != "" {
			logRH.Error("Couldn't get target directory :", "err", errString)
			WriteErrorResponse(w, http.StatusInternalServerError, "", errString)
			return
		}

		const maxUploadSize = 32 << 20 //32mb
		err := r.ParseMultipartForm(maxUploadSize)
		if err != nil {
			WriteErrorResponse(w, http.StatusBadRequest, "", "File too large or bad request")
			return
		}

		//process request
		docName := r.FormValue("document_name")
		if docName == "" {
			WriteErrorResponse(w, http.StatusBadRequest, "", "document_name is required")
			return
		}
		chatId := r.FormValue("chat_id") //optional, scopes retrieval later

		//get the document the user uploads
		fileReader, fileMetadata, err := r.FormFile("document")
		if err != nil {
			WriteErrorResponse(w, http.StatusBadRequest, docName, "Could not retrieve file")
			return
		}
		defer fileReader.Close()

		filename := fmt.Sprintf("%d-%s", time.Now().UnixNano(), fileMetadata.Filename)
		tempFilePath := filepath.Join(targetDir, filename)
		destinationFileWriter, err := os.Create(tempFilePath)
		if err != nil {
			WriteErrorResponse(w, http.StatusInternalServerError, docName, "Storage error")
			return
		}
		defer destinationFileWriter.Close()

		if _, err := io.Copy(destinationFileWriter, fileReader); err != nil {
			WriteErrorResponse(w, http.StatusInternalServerError, docName, "Write error")
			return
		}

		newData := newJobData{
			id:           utils.GetNewUUID(),
			documentId:   utils.GetNewUUID(),
			chatId:       chatId,
			traceId:      r.Context().Value(config.TRACE_ID_KEY).(string),
			documentName: fileMetadata.Filename,
			filePath:     tempFilePath,
		}
		logRH.Debug(" Trace ID : ", "trace:", newData.traceId)
		doc := CreateIngestJob(newData)
		writeJsonResponse(w, http.StatusAccepted, adapter.ToUploadResponse(doc))
		return
	}
	logRH.Warn("Invalid Context by request ", r.RemoteAddr)
}

func GetDocumentStatusHandler(w http.ResponseWriter, r *http.Request) {
	if validateContext(r.Context()) {
		idString := utils.GetChiURLParam(r, "id")

		logRH.Debug("Get Status Request:", "URL path", r.URL.Path)
		if idString == "" {
			WriteErrorResponse(w, http.StatusBadRequest, "", "document id is required")
			return
		}

		doc, isFound := GetDocumentStatus(idString, r.Context().Value(config.TRACE_ID_KEY).(string))
		if !isFound {
			WriteErrorResponse(w, http.StatusNotFound, idString, "Document not found")
			return
		}

		writeJsonResponse(w, http.StatusOK, adapter.ToDocumentStatusResponse(doc))
	}
}

// AskHandler runs the full retrieve-then-generate path synchronously.
func AskHandler(w http.ResponseWriter, r *http.Request) {
	if validateContext(r.Context()) {

		var requestData api.AskRequest
		defer closeBody(r.Body)
		if err := json.NewDecoder(r.Body).Decode(&requestData); err != nil || strings.TrimSpace(requestData.Question) == "" {
			logRH.Warn("Bad Ask Request: ", "error:", err, "request data:", requestData)
			WriteErrorResponse(w, http.StatusBadRequest, requestData.ChatID, "question is required")
			return
		}

		answer, err := ragService().Ask(r.Context(), requestData.Question, requestData.ChatID, requestData.TopK)
		if err != nil {
			logRH.Error("Ask failed", "error", err)
			WriteErrorResponse(w, httpStatusFor(err), requestData.ChatID, err.Error())
			return
		}

		writeJsonResponse(w, http.StatusOK, adapter.ToAskResponse(requestData.Question, answer))
		return
	}
	logRH.Warn("Invalid Context by request ", r.RemoteAddr)
}

// SearchHandler exposes raw retrieval without the generation step.
func SearchHandler(w http.ResponseWriter, r *http.Request) {
	if validateContext(r.Context()) {

		var requestData api.SearchRequest
		defer closeBody(r.Body)
		if err := json.NewDecoder(r.Body).Decode(&requestData); err != nil || strings.TrimSpace(requestData.Query) == "" {
			logRH.Warn("Bad Search Request: ", "error:", err, "request data:", requestData)
			WriteErrorResponse(w, http.StatusBadRequest, requestData.ChatID, "query is required")
			return
		}

		threshold := requestData.ScoreThreshold
		if threshold == 0 {
			threshold = config.SearchScoreThreshold
		}

		results, err := ragService().Search(r.Context(), requestData.Query, requestData.ChatID, requestData.Limit, threshold)
		if err != nil {
			logRH.Error("Search failed", "error", err)
			WriteErrorResponse(w, httpStatusFor(err), requestData.ChatID, err.Error())
			return
		}

		writeJsonResponse(w, http.StatusOK, adapter.ToSearchResponse(requestData.Query, results))
		return
	}
	logRH.Warn("Invalid Context by request ", r.RemoteAddr)
}

// DeleteDocumentHandler removes the document's vectors and its stored
// state. Deleting an unknown id still reports success; the end state is
// the same either way.
func DeleteDocumentHandler(w http.ResponseWriter, r *http.Request) {
	if validateContext(r.Context()) {
		idString := utils.GetChiURLParam(r, "id")
		if idString == "" {
			WriteErrorResponse(w, http.StatusBadRequest, "", "document id is required")
			return
		}

		if err := ragService().DeleteDocument(r.Context(), idString); err != nil {
			logRH.Error("Delete document failed", "id", idString, "error", err)
			WriteErrorResponse(w, httpStatusFor(err), idString, err.Error())
			return
		}

		writeJsonResponse(w, http.StatusOK, api.DeleteResponse{Id: idString, Deleted: true})
	}
}

func DeleteChatHandler(w http.ResponseWriter, r *http.Request) {
	if validateContext(r.Context()) {
		idString := utils.GetChiURLParam(r, "id")
		if idString == "" {
			WriteErrorResponse(w, http.StatusBadRequest, "", "chat id is required")
			return
		}

		if err := ragService().DeleteChat(r.Context(), idString); err != nil {
			logRH.Error("Delete chat failed", "id", idString, "error", err)
			WriteErrorResponse(w, httpStatusFor(err), idString, err.Error())
			return
		}

		writeJsonResponse(w, http.StatusOK, api.DeleteResponse{Id: idString, Deleted: true})
	}
}

func HealthHandler(w http.ResponseWriter, r *http.Request) {
	status := ragService().HealthCheck(r.Context())

	httpCode := http.StatusOK
	if status.Status != "healthy" {
		httpCode = http.StatusServiceUnavailable
	}
	writeJsonResponse(w, httpCode, adapter.ToHealthResponse(status))
}
