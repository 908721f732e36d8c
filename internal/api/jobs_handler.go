package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/menupick/menupick/internal/domain"
	"github.com/menupick/menupick/internal/store"
)

// maxUploadBytes bounds the total size of one scan request's images.
const maxUploadBytes = 32 << 20

// ScanResponse is returned after a job has been enqueued.
type ScanResponse struct {
	JobID string `json:"job_id"`
}

// StatusResponse reports a job's externally visible status.
type StatusResponse struct {
	Status string `json:"status"`
}

// PreferencesRequest is the request body for submitting a patron's answers.
type PreferencesRequest struct {
	Preferences domain.Preferences `json:"preferences" validate:"required,min=1"`
}

// JobsHandler handles job intake and record reads.
type JobsHandler struct {
	queue     store.Queue
	records   *store.RecordStore
	uploadDir string
	validator *validator.Validate
	logger    *slog.Logger
}

// NewJobsHandler creates a JobsHandler. uploadDir must be shared with the
// worker, which deletes the images after digesting them.
func NewJobsHandler(queue store.Queue, records *store.RecordStore, uploadDir string, logger *slog.Logger) *JobsHandler {
	return &JobsHandler{
		queue:     queue,
		records:   records,
		uploadDir: uploadDir,
		validator: validator.New(),
		logger:    logger.With("component", "jobs_handler"),
	}
}

// Routes mounts the handler's endpoints on a fresh chi router.
func (h *JobsHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(TraceMiddleware)

	r.Post("/scan", h.Scan)
	r.Get("/status/{jobID}", h.Status)
	r.Get("/questions/{jobID}", h.Questions)
	r.Post("/preferences/{jobID}", h.Preferences)
	r.Get("/result/{jobID}", h.Result)

	return r
}

// Scan handles POST /scan requests: it stages every uploaded menu image
// under the upload directory and enqueues a job referencing them.
func (h *JobsHandler) Scan(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		RespondWithError(w, r, http.StatusBadRequest, "Invalid multipart request")
		return
	}

	uploads := r.MultipartForm.File["menus"]
	if len(uploads) == 0 {
		RespondWithError(w, r, http.StatusBadRequest, "At least one menu image is required")
		return
	}

	jobID := uuid.New().String()
	logger := h.logger.With("job_id", jobID, "trace_id", GetTraceID(r.Context()))

	files, err := h.stageUploads(uploads)
	if err != nil {
		logger.Error("failed to stage uploaded menu images", "error", err)
		RespondWithError(w, r, http.StatusInternalServerError, "Failed to process request")
		return
	}

	payload, err := json.Marshal(domain.Job{ID: jobID, Files: files})
	if err != nil {
		h.discardUploads(logger, files)
		logger.Error("failed to encode job payload", "error", err)
		RespondWithError(w, r, http.StatusInternalServerError, "Failed to process request")
		return
	}

	if err := h.queue.Push(r.Context(), store.JobQueueName, payload); err != nil {
		h.discardUploads(logger, files)
		logger.Error("failed to enqueue job", "error", err)
		RespondWithError(w, r, http.StatusInternalServerError, "Failed to process request")
		return
	}

	logger.Info("job enqueued", "file_count", len(files))
	RespondWithJSON(w, r, http.StatusAccepted, ScanResponse{JobID: jobID})
}

// Status handles GET /status/{jobID} requests. A job with no status key yet
// reports "processing": the record is simply not published.
func (h *JobsHandler) Status(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobID")

	status, err := h.records.GetStatus(r.Context(), jobID)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			h.logger.Error("failed to read job status", "job_id", jobID, "error", err)
			RespondWithError(w, r, http.StatusInternalServerError, "Failed to get job status")
			return
		}
		RespondWithJSON(w, r, http.StatusOK, StatusResponse{Status: "processing"})
		return
	}

	RespondWithJSON(w, r, http.StatusOK, StatusResponse{Status: string(status)})
}

// Questions handles GET /questions/{jobID} requests, serving the stored
// question set verbatim.
func (h *JobsHandler) Questions(w http.ResponseWriter, r *http.Request) {
	h.serveRaw(w, r, "questions", h.records.GetQuestionsRaw)
}

// Result handles GET /result/{jobID} requests, serving the stored
// recommendation set verbatim.
func (h *JobsHandler) Result(w http.ResponseWriter, r *http.Request) {
	h.serveRaw(w, r, "result", h.records.GetResultRaw)
}

// Preferences handles POST /preferences/{jobID} requests. Preferences are
// written exactly once per job; a second submission gets 409 and the first
// value is retained.
func (h *JobsHandler) Preferences(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobID")

	var req PreferencesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		RespondWithError(w, r, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	if err := h.records.SetPreferences(r.Context(), jobID, req.Preferences); err != nil {
		if errors.Is(err, store.ErrAlreadySet) {
			RespondWithError(w, r, http.StatusConflict, "Preferences already submitted")
			return
		}
		h.logger.Error("failed to save preferences", "job_id", jobID, "error", err)
		RespondWithError(w, r, http.StatusInternalServerError, "Failed to save preferences")
		return
	}

	h.logger.Info("preferences saved", "job_id", jobID)
	RespondWithJSON(w, r, http.StatusAccepted, map[string]string{"message": "Preferences received"})
}

// serveRaw serves a stored JSON record field verbatim, or 404 while the
// pipeline has not yet written it.
func (h *JobsHandler) serveRaw(
	w http.ResponseWriter,
	r *http.Request,
	field string,
	get func(ctx context.Context, jobID string) (string, error),
) {
	jobID := chi.URLParam(r, "jobID")

	raw, err := get(r.Context(), jobID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			RespondWithError(w, r, http.StatusNotFound, fmt.Sprintf("%s not found", field))
			return
		}
		h.logger.Error("failed to read job record field",
			"job_id", jobID,
			"field", field,
			"error", err)
		RespondWithError(w, r, http.StatusInternalServerError, fmt.Sprintf("Failed to get %s", field))
		return
	}

	RespondWithRawJSON(w, r, http.StatusOK, raw)
}

// stageUploads copies every uploaded image into the upload directory under
// a fresh name, returning the staged paths in upload order. On any failure
// the already-staged files are removed before returning.
func (h *JobsHandler) stageUploads(uploads []*multipart.FileHeader) ([]string, error) {
	if err := os.MkdirAll(h.uploadDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}

	files := make([]string, 0, len(uploads))
	for _, upload := range uploads {
		path, err := h.stageUpload(upload)
		if err != nil {
			h.discardUploads(h.logger, files)
			return nil, err
		}
		files = append(files, path)
	}
	return files, nil
}

func (h *JobsHandler) stageUpload(upload *multipart.FileHeader) (string, error) {
	src, err := upload.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open uploaded file %q: %w", upload.Filename, err)
	}
	defer func() { _ = src.Close() }()

	path := filepath.Join(h.uploadDir, uuid.New().String()+filepath.Ext(upload.Filename))
	dst, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create staged file: %w", err)
	}

	if _, err := io.Copy(dst, src); err != nil {
		_ = dst.Close()
		_ = os.Remove(path)
		return "", fmt.Errorf("failed to write staged file: %w", err)
	}

	if err := dst.Close(); err != nil {
		_ = os.Remove(path)
		return "", fmt.Errorf("failed to close staged file: %w", err)
	}
	return path, nil
}

// discardUploads removes staged files after a failed enqueue, so aborted
// scans do not leak images into the upload directory.
func (h *JobsHandler) discardUploads(logger *slog.Logger, files []string) {
	for _, f := range files {
		if err := os.Remove(f); err != nil {
			logger.Warn("failed to remove staged upload", "file", f, "error", err)
		}
	}
}
