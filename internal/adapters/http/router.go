package httpadapter

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"golang.org/x/time/rate"

	"github.com/hngprojects/docxtract/internal/core/domain"
	"github.com/hngprojects/docxtract/internal/core/ports"
	"github.com/hngprojects/docxtract/internal/export"
	"github.com/hngprojects/docxtract/internal/observability/metrics"
)

// Router exposes the document API: upload, analyze trigger, read, list and
// export. Path dispatch is manual; the only dynamic segment is the
// document id.
type Router struct {
	uploader ports.DocumentUploader
	trigger  ports.AnalysisTrigger
	reader   ports.DocumentReader
	repo     ports.DocumentRepository
	storage  ports.ObjectStorage
	exporter *export.Service
	metrics  *metrics.HTTPServerMetrics
	limiter  *rate.Limiter
	maxBytes int64
	logger   *slog.Logger
}

type RouterConfig struct {
	Uploader ports.DocumentUploader
	Trigger  ports.AnalysisTrigger
	Reader   ports.DocumentReader
	Repo     ports.DocumentRepository
	Storage  ports.ObjectStorage
	Exporter *export.Service
	Metrics  *metrics.HTTPServerMetrics
	Limiter  *rate.Limiter
	MaxBytes int64
	Logger   *slog.Logger
}

func NewRouter(cfg RouterConfig) *Router {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Router{
		uploader: cfg.Uploader,
		trigger:  cfg.Trigger,
		reader:   cfg.Reader,
		repo:     cfg.Repo,
		storage:  cfg.Storage,
		exporter: cfg.Exporter,
		metrics:  cfg.Metrics,
		limiter:  cfg.Limiter,
		maxBytes: cfg.MaxBytes,
		logger:   logger,
	}
}

func (rt *Router) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", rt.healthz)
	mux.HandleFunc("/metrics", rt.metricsEndpoint)
	mux.HandleFunc("/v1/documents", rt.documents)
	mux.HandleFunc("/v1/documents/", rt.documentSubpath)

	var handler http.Handler = mux
	if rt.metrics != nil {
		handler = rt.metrics.Middleware(handler)
	}
	handler = rateLimitMiddleware(rt.limiter, handler)
	handler = accessLogMiddleware(rt.logger, handler)
	handler = requestIDMiddleware(handler)
	return handler
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (rt *Router) metricsEndpoint(w http.ResponseWriter, r *http.Request) {
	if rt.metrics == nil {
		http.NotFound(w, r)
		return
	}
	rt.metrics.Handler().ServeHTTP(w, r)
}

func (rt *Router) documents(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		rt.uploadDocument(w, r)
	case http.MethodGet:
		rt.listDocuments(w, r)
	default:
		writeJSON(w, http.StatusMethodNotAllowed, errorBody("method not allowed"))
	}
}

func (rt *Router) documentSubpath(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/v1/documents/")
	switch {
	case rest == "export":
		rt.exportDocuments(w, r)
	case strings.HasSuffix(rest, "/analyze"):
		rt.analyzeDocument(w, r, strings.TrimSuffix(rest, "/analyze"))
	case strings.HasSuffix(rest, "/download"):
		rt.downloadDocument(w, r, strings.TrimSuffix(rest, "/download"))
	case rest != "" && !strings.Contains(rest, "/"):
		rt.getDocument(w, r, rest)
	default:
		writeJSON(w, http.StatusNotFound, errorBody("not found"))
	}
}

type uploadResponse struct {
	ID             string `json:"id"`
	FileName       string `json:"file_name"`
	ContentType    string `json:"content_type"`
	SizeBytes      int64  `json:"size_bytes"`
	ContainsImages bool   `json:"contains_images"`
	ImageCount     int    `json:"image_count"`
	Message        string `json:"message"`
}

func (rt *Router) uploadDocument(w http.ResponseWriter, r *http.Request) {
	if rt.maxBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, rt.maxBytes)
	}

	file, fileHeader, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("multipart field 'file' is required"))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("read upload: "+err.Error()))
		return
	}

	doc, err := rt.uploader.Upload(r.Context(), fileHeader.Filename, fileHeader.Header.Get("Content-Type"), data)
	if err != nil {
		writeJSON(w, mapErrorToHTTPStatus(err), errorBody(err.Error()))
		return
	}

	if rt.metrics != nil {
		rt.metrics.RecordUpload(doc.SizeBytes)
	}
	writeJSON(w, http.StatusCreated, uploadResponse{
		ID:             doc.ID,
		FileName:       doc.FileName,
		ContentType:    doc.ContentType,
		SizeBytes:      doc.SizeBytes,
		ContainsImages: doc.ContainsImages,
		ImageCount:     doc.ImageCount,
		Message:        "Uploaded and text extracted; call /v1/documents/{id}/analyze to run LLM",
	})
}

type triggerResponse struct {
	ID       string `json:"id"`
	FileName string `json:"file_name"`
	Status   string `json:"status"`
	Message  string `json:"message"`
}

func (rt *Router) analyzeDocument(w http.ResponseWriter, r *http.Request, id string) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, errorBody("method not allowed"))
		return
	}
	if id == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("document id is required"))
		return
	}

	outcome, doc, err := rt.trigger.Trigger(r.Context(), id)
	if err != nil {
		writeJSON(w, mapErrorToHTTPStatus(err), errorBody(err.Error()))
		return
	}
	if rt.metrics != nil {
		rt.metrics.RecordTriggerOutcome(string(outcome))
	}

	resp := triggerResponse{
		ID:       doc.ID,
		FileName: doc.FileName,
		Status:   string(outcome),
	}
	status := http.StatusOK
	switch outcome {
	case domain.TriggerStarted:
		status = http.StatusAccepted
		resp.Message = "Analysis started. Check again later."
	case domain.TriggerAlreadyProcessing:
		resp.Message = "Your document is still being analyzed. Please be patient."
	case domain.TriggerAlreadyCompleted:
		resp.Message = "Analysis already completed."
	case domain.TriggerPreviousFailed:
		resp.Message = "Previous analysis failed. Please retry."
	}
	writeJSON(w, status, resp)
}

type documentResponse struct {
	*domain.Document
	Message string `json:"message,omitempty"`
}

func (rt *Router) getDocument(w http.ResponseWriter, r *http.Request, id string) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, errorBody("method not allowed"))
		return
	}

	doc, firstView, err := rt.reader.Get(r.Context(), id)
	if err != nil {
		writeJSON(w, mapErrorToHTTPStatus(err), errorBody(err.Error()))
		return
	}

	resp := documentResponse{Document: doc}
	if doc.Status == domain.StatusCompleted {
		if firstView {
			resp.Message = "Analysis completed."
		} else {
			resp.Message = "Analysis already completed."
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (rt *Router) downloadDocument(w http.ResponseWriter, r *http.Request, id string) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, errorBody("method not allowed"))
		return
	}
	if id == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("document id is required"))
		return
	}
	if rt.storage == nil {
		writeJSON(w, http.StatusNotFound, errorBody("download is not enabled"))
		return
	}

	doc, err := rt.repo.GetByID(r.Context(), id)
	if err != nil {
		writeJSON(w, mapErrorToHTTPStatus(err), errorBody(err.Error()))
		return
	}

	obj, err := rt.storage.Open(r.Context(), doc.StoragePath)
	if err != nil {
		rt.logger.Error("download_open_failed", "document_id", id, "error", err)
		writeJSON(w, http.StatusNotFound, errorBody("stored object is missing"))
		return
	}
	defer obj.Close()

	contentType := doc.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+doc.FileName+`"`)
	if _, err := io.Copy(w, obj); err != nil {
		rt.logger.Error("download_stream_failed", "document_id", id, "error", err)
	}
}

func (rt *Router) listDocuments(w http.ResponseWriter, r *http.Request) {
	docs, err := rt.repo.List(r.Context())
	if err != nil {
		writeJSON(w, mapErrorToHTTPStatus(err), errorBody(err.Error()))
		return
	}
	if docs == nil {
		docs = []domain.Document{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"documents": docs})
}

func (rt *Router) exportDocuments(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, errorBody("method not allowed"))
		return
	}
	if rt.exporter == nil {
		writeJSON(w, http.StatusNotFound, errorBody("export is not enabled"))
		return
	}

	docs, err := rt.repo.List(r.Context())
	if err != nil {
		writeJSON(w, mapErrorToHTTPStatus(err), errorBody(err.Error()))
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="documents.xlsx"`)
	if err := rt.exporter.WriteWorkbook(w, docs); err != nil {
		rt.logger.Error("export_failed", "error", err)
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func errorBody(message string) map[string]string {
	return map[string]string{"error": message}
}
