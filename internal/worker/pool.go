package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"medichat-backend/internal/agents"
	"medichat-backend/internal/models"
	"medichat-backend/internal/repository"
	"medichat-backend/internal/services"
)

// Chunking bounds for knowledge base documents. Overlap keeps sentences that
// straddle a boundary retrievable from both sides.
const (
	chunkSize    = 1000
	chunkOverlap = 200
)

// Pool consumes knowledge ingestion jobs off Redis and feeds extracted,
// chunked document text into the vector index.
type Pool struct {
	redis         *redis.Client
	ragAgent      *agents.RAGAgent
	fileExtract   *services.FileExtractService
	jobRepo       *repository.JobRepo
	knowledgeRepo *repository.KnowledgeRepo
	workerCount   int
	stopChan      chan struct{}
}

func NewPool(
	redisClient *redis.Client,
	ragAgent *agents.RAGAgent,
	fileExtract *services.FileExtractService,
	jobRepo *repository.JobRepo,
	knowledgeRepo *repository.KnowledgeRepo,
	workerCount int,
) *Pool {
	return &Pool{
		redis:         redisClient,
		ragAgent:      ragAgent,
		fileExtract:   fileExtract,
		jobRepo:       jobRepo,
		knowledgeRepo: knowledgeRepo,
		workerCount:   workerCount,
		stopChan:      make(chan struct{}),
	}
}

func (p *Pool) Start() {
	for i := 0; i < p.workerCount; i++ {
		go p.worker(i)
	}
	log.Printf("Started %d ingestion worker goroutines", p.workerCount)
}

func (p *Pool) Stop() {
	close(p.stopChan)
}

func (p *Pool) worker(id int) {
	for {
		select {
		case <-p.stopChan:
			log.Printf("Worker %d shutting down", id)
			return
		default:
		}

		ctx := context.Background()

		result, err := p.redis.BLPop(ctx, 30*time.Second, models.IngestionQueue).Result()
		if err != nil {
			continue // Timeout or error, retry
		}
		if len(result) < 2 {
			continue
		}

		var job models.Job
		if err := json.Unmarshal([]byte(result[1]), &job); err != nil {
			log.Printf("Worker %d: failed to parse job: %v", id, err)
			continue
		}

		lockKey := fmt.Sprintf("job_lock:%s", job.ID.String())
		locked, err := p.redis.SetNX(ctx, lockKey, "1", 10*time.Minute).Result()
		if err != nil || !locked {
			continue // Another worker has this job
		}

		log.Printf("Worker %d: processing job %s (type: %s)", id, job.ID, job.Type)

		p.jobRepo.SetStatus(ctx, job.ID, "processing")
		p.knowledgeRepo.SetStatus(ctx, job.ReferenceID, "processing")
		p.publishProgress(ctx, &job, "extracting", 0, false)

		var processErr error
		switch job.Type {
		case "knowledge-ingestion":
			processErr = p.processIngestion(ctx, &job)
		default:
			processErr = fmt.Errorf("unknown job type: %s", job.Type)
		}

		if processErr != nil {
			p.handleFailure(ctx, &job, processErr)
		} else {
			p.handleSuccess(ctx, &job)
		}

		p.redis.Del(ctx, lockKey)
	}
}

func (p *Pool) processIngestion(ctx context.Context, job *models.Job) error {
	var config struct {
		ProjectID string `json:"project_id"`
		Path      string `json:"path"`
		Filename  string `json:"filename"`
	}
	if err := json.Unmarshal(job.ConfigJSON, &config); err != nil {
		return fmt.Errorf("invalid job config: %w", err)
	}
	if config.Path == "" {
		return fmt.Errorf("job config has no file path")
	}

	text, err := p.fileExtract.ExtractTextFromPath(config.Path)
	if err != nil {
		return fmt.Errorf("failed to extract text from %s: %w", config.Filename, err)
	}
	if strings.TrimSpace(text) == "" {
		return fmt.Errorf("no extractable text in %s", config.Filename)
	}

	chunks := chunkText(text, chunkSize, chunkOverlap)
	p.publishProgress(ctx, job, "embedding", len(chunks), false)

	docs := make([]agents.Document, 0, len(chunks))
	for i, chunk := range chunks {
		docs = append(docs, agents.Document{
			Text: chunk,
			Metadata: map[string]interface{}{
				"source":     config.Filename,
				"project_id": config.ProjectID,
				"chunk":      i,
				"file_id":    job.ReferenceID.String(),
			},
		})
	}

	added, err := p.ragAgent.AddDocuments(ctx, docs)
	if err != nil {
		return fmt.Errorf("failed to index %s: %w", config.Filename, err)
	}

	log.Printf("Indexed %d chunks from %s", added, config.Filename)
	return nil
}

// chunkText splits on paragraph boundaries where possible, falling back to a
// hard split, with overlap carried between consecutive chunks.
func chunkText(text string, size, overlap int) []string {
	text = strings.TrimSpace(text)
	if len(text) <= size {
		return []string{text}
	}

	var chunks []string
	for start := 0; start < len(text); {
		end := start + size
		if end >= len(text) {
			chunks = append(chunks, text[start:])
			break
		}

		// Prefer a paragraph or sentence boundary inside the window.
		cut := end
		if idx := strings.LastIndex(text[start:end], "\n\n"); idx > size/2 {
			cut = start + idx
		} else if idx := strings.LastIndex(text[start:end], ". "); idx > size/2 {
			cut = start + idx + 1
		}

		chunks = append(chunks, strings.TrimSpace(text[start:cut]))
		start = cut - overlap
		if start < 0 {
			start = 0
		}
	}

	out := chunks[:0]
	for _, c := range chunks {
		if strings.TrimSpace(c) != "" {
			out = append(out, c)
		}
	}
	return out
}

func (p *Pool) handleSuccess(ctx context.Context, job *models.Job) {
	p.jobRepo.MarkCompleted(ctx, job.ID)
	p.knowledgeRepo.MarkIndexed(ctx, job.ReferenceID)
	p.publishProgress(ctx, job, "indexed", 0, true)
	log.Printf("Job %s completed successfully", job.ID)
}

func (p *Pool) handleFailure(ctx context.Context, job *models.Job, err error) {
	job.RetryCount++
	errMsg := err.Error()

	if job.RetryCount < job.MaxRetries {
		log.Printf("Job %s failed (attempt %d): %s - retrying", job.ID, job.RetryCount, errMsg)
		p.jobRepo.SetStatus(ctx, job.ID, "pending")
		p.jobRepo.IncrementRetry(ctx, job.ID)
		p.knowledgeRepo.SetStatus(ctx, job.ReferenceID, "pending")

		jobBytes, _ := json.Marshal(job)
		backoff := time.Duration(1<<uint(job.RetryCount)) * time.Second
		time.AfterFunc(backoff, func() {
			p.redis.LPush(context.Background(), models.IngestionQueue, string(jobBytes))
		})
		return
	}

	log.Printf("Job %s failed permanently: %s", job.ID, errMsg)
	p.jobRepo.MarkFailed(ctx, job.ID, errMsg)
	p.knowledgeRepo.MarkFailed(ctx, job.ReferenceID, errMsg)
	p.publishProgress(ctx, job, "failed", 0, true)
}

// publishProgress pushes an ingestion update onto the uploader's personal
// channel so the dashboard can show live status.
func (p *Pool) publishProgress(ctx context.Context, job *models.Job, step string, chunks int, completed bool) {
	if job.UserID == uuid.Nil {
		return
	}

	msg := models.WSMessage{
		Type: "ingestion_progress",
		Payload: models.IngestionProgress{
			JobID:     job.ID,
			FileID:    job.ReferenceID,
			Step:      step,
			Chunks:    chunks,
			Completed: completed,
		},
	}
	data, err := json.Marshal(msg)
	if err != nil {
		return
	}

	channel := "user_updates:" + job.UserID.String()
	if err := p.redis.Publish(ctx, channel, data).Err(); err != nil {
		log.Printf("failed to publish ingestion progress: %v", err)
	}
}
