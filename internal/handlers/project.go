package handlers

import (
	"encoding/json"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"medichat-backend/internal/agents"
	"medichat-backend/internal/middleware"
	"medichat-backend/internal/models"
	"medichat-backend/internal/repository"
	"medichat-backend/internal/services"
)

const maxKnowledgeFileSize = 25 * 1024 * 1024 // 25MB

type ProjectHandler struct {
	projectRepo   *repository.ProjectRepo
	knowledgeRepo *repository.KnowledgeRepo
	jobRepo       *repository.JobRepo
	extract       *services.FileExtractService
	ragAgent      *agents.RAGAgent
	webAgent      *agents.WebSearchAgent
	redis         *redis.Client
	storagePath   string
}

func NewProjectHandler(
	projectRepo *repository.ProjectRepo,
	knowledgeRepo *repository.KnowledgeRepo,
	jobRepo *repository.JobRepo,
	extract *services.FileExtractService,
	ragAgent *agents.RAGAgent,
	webAgent *agents.WebSearchAgent,
	redisClient *redis.Client,
	storagePath string,
) *ProjectHandler {
	return &ProjectHandler{
		projectRepo:   projectRepo,
		knowledgeRepo: knowledgeRepo,
		jobRepo:       jobRepo,
		extract:       extract,
		ragAgent:      ragAgent,
		webAgent:      webAgent,
		redis:         redisClient,
		storagePath:   storagePath,
	}
}

// GetConfig returns the stored configuration, or the defaults when the
// project has never been configured.
func (h *ProjectHandler) GetConfig(w http.ResponseWriter, r *http.Request) {
	projectID := chi.URLParam(r, "projectID")

	cfg, err := h.projectRepo.GetConfig(r.Context(), projectID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to load project configuration", r))
		return
	}

	writeJSON(w, http.StatusOK, cfg)
}

func (h *ProjectHandler) SaveConfig(w http.ResponseWriter, r *http.Request) {
	projectID := chi.URLParam(r, "projectID")

	var req struct {
		BotPersona   *string  `json:"bot_persona"`
		CuratedSites []string `json:"curated_sites"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	cfg, err := h.projectRepo.GetConfig(r.Context(), projectID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to load project configuration", r))
		return
	}

	if req.BotPersona != nil {
		persona := strings.TrimSpace(*req.BotPersona)
		if persona == "" {
			writeJSON(w, http.StatusBadRequest, errorRespWithFields("VALIDATION_ERROR", "Validation failed",
				map[string]string{"bot_persona": "Persona cannot be empty"}, r))
			return
		}
		cfg.BotPersona = persona
	}
	if req.CuratedSites != nil {
		cfg.CuratedSites = normalizeSites(req.CuratedSites)
	}

	if err := h.projectRepo.UpsertConfig(r.Context(), cfg); err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to save project configuration", r))
		return
	}

	writeJSON(w, http.StatusOK, cfg)
}

// UploadKnowledge stores the file, records it, and enqueues an ingestion job
// for the worker pool. Indexing happens asynchronously.
func (h *ProjectHandler) UploadKnowledge(w http.ResponseWriter, r *http.Request) {
	projectID := chi.URLParam(r, "projectID")

	if r.ContentLength > maxKnowledgeFileSize {
		writeJSON(w, http.StatusRequestEntityTooLarge, errorResp("FILE_TOO_LARGE", "File size exceeds 25MB limit", r))
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxKnowledgeFileSize)

	file, header, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "No file provided", r))
		return
	}
	defer file.Close()

	if !h.extract.Supported(header.Filename) {
		writeJSON(w, http.StatusUnsupportedMediaType, errorResp("UNSUPPORTED_FORMAT", "Only .pdf, .txt and .md files are supported", r))
		return
	}

	fileID := uuid.New()
	dir := filepath.Join(h.storagePath, "projects", projectID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to store file", r))
		return
	}
	dest := filepath.Join(dir, fileID.String()+strings.ToLower(filepath.Ext(header.Filename)))

	out, err := os.Create(dest)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to store file", r))
		return
	}
	size, err := io.Copy(out, file)
	out.Close()
	if err != nil {
		os.Remove(dest)
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to store file", r))
		return
	}

	kf := &models.KnowledgeFile{
		ID:        fileID,
		ProjectID: projectID,
		Filename:  header.Filename,
		SizeBytes: size,
		Status:    "pending",
	}
	if err := h.knowledgeRepo.Create(r.Context(), kf); err != nil {
		os.Remove(dest)
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to record file", r))
		return
	}

	if err := h.projectRepo.AddKnowledgeFile(r.Context(), projectID, header.Filename); err != nil {
		log.Printf("failed to link knowledge file to project config: %v", err)
	}

	jobConfig, _ := json.Marshal(map[string]string{
		"project_id": projectID,
		"path":       dest,
		"filename":   header.Filename,
	})
	job := &models.Job{
		ID:          uuid.New(),
		UserID:      middleware.GetUserID(r.Context()),
		Type:        "knowledge-ingestion",
		ReferenceID: fileID,
		ConfigJSON:  jobConfig,
		Status:      "pending",
		MaxRetries:  3,
		CreatedAt:   time.Now(),
	}
	if err := h.jobRepo.Create(r.Context(), job); err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to queue ingestion", r))
		return
	}

	jobBytes, _ := json.Marshal(job)
	if err := h.redis.LPush(r.Context(), models.IngestionQueue, string(jobBytes)).Err(); err != nil {
		log.Printf("failed to enqueue ingestion job %s: %v", job.ID, err)
	}

	writeJSON(w, http.StatusAccepted, map[string]interface{}{
		"file_id":  fileID,
		"job_id":   job.ID,
		"filename": header.Filename,
		"status":   "pending",
	})
}

func (h *ProjectHandler) ListKnowledge(w http.ResponseWriter, r *http.Request) {
	projectID := chi.URLParam(r, "projectID")

	files, err := h.knowledgeRepo.ListByProject(r.Context(), projectID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to list knowledge files", r))
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"project_id": projectID,
		"files":      files,
		"count":      len(files),
	})
}

// AgentsStatus reports which pipeline agents are fully configured.
func (h *ProjectHandler) AgentsStatus(w http.ResponseWriter, r *http.Request) {
	indexed, err := h.knowledgeRepo.Count(r.Context())
	if err != nil {
		indexed = 0
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"router_agent": map[string]interface{}{"ready": true},
		"rag_agent": map[string]interface{}{
			"ready":         h.ragAgent.Ready(),
			"indexed_files": indexed,
		},
		"websearch_agent": map[string]interface{}{
			"ready": h.webAgent.Ready(),
		},
	})
}

func normalizeSites(sites []string) []string {
	out := make([]string, 0, len(sites))
	seen := make(map[string]bool)
	for _, s := range sites {
		site := strings.ToLower(strings.TrimSpace(s))
		site = strings.TrimPrefix(site, "https://")
		site = strings.TrimPrefix(site, "http://")
		site = strings.TrimPrefix(site, "www.")
		site = strings.TrimSuffix(site, "/")
		if site == "" || seen[site] {
			continue
		}
		seen[site] = true
		out = append(out, site)
	}
	return out
}
