package memory

import (
	"context"
	"time"

	"ai-assistant-be/internal/entity"
	"ai-assistant-be/internal/pkg/logger"
	"ai-assistant-be/internal/repository/unitofwork"
	"ai-assistant-be/pkg/embedding"

	"github.com/google/uuid"
)

// Updater performs the post-exchange memory maintenance pass. Every step is
// best-effort: a failure is logged and the remaining steps still run, since
// the user already has their reply by the time this executes.
type Updater struct {
	factory  unitofwork.RepositoryFactory
	embedder embedding.EmbeddingProvider // optional
	log      logger.ILogger
}

func NewUpdater(factory unitofwork.RepositoryFactory, embedder embedding.EmbeddingProvider, log logger.ILogger) *Updater {
	return &Updater{
		factory:  factory,
		embedder: embedder,
		log:      log,
	}
}

func (u *Updater) Update(ctx context.Context, userId uuid.UUID, sessionId string, userMsg, aiMsg *entity.ChatMessage) {
	uow := u.factory.NewUnitOfWork(ctx)
	memRepo := uow.UserMemoryRepository()
	msgRepo := uow.ChatMessageRepository()

	mem, err := memRepo.GetOrCreate(ctx, userId)
	if err != nil {
		u.log.Warn("memory", "failed to load user memory, skipping maintenance", map[string]interface{}{
			"user_id": userId.String(),
			"error":   err.Error(),
		})
		mem = nil
	}

	if mem != nil {
		now := time.Now()

		topics := ExtractTopics(userMsg.Content)
		MergeTopics(mem, topics, now)

		mem.Metrics.TotalMessages++
		mem.Metrics.LastActiveAt = now

		AppendToSummary(mem, "User: "+userMsg.Content+"\nAI: "+aiMsg.Content+"\n")

		if RegenerateSummaryIfDue(mem) {
			u.embedSummary(mem)
		}

		if err := memRepo.Update(ctx, mem); err != nil {
			u.log.Warn("memory", "failed to persist user memory", map[string]interface{}{
				"user_id": userId.String(),
				"error":   err.Error(),
			})
		}
	}

	for _, msg := range []*entity.ChatMessage{userMsg, aiMsg} {
		if err := msgRepo.Create(ctx, msg); err != nil {
			u.log.Warn("memory", "failed to append chat message", map[string]interface{}{
				"user_id":    userId.String(),
				"session_id": sessionId,
				"role":       msg.Role,
				"error":      err.Error(),
			})
		}
	}
}

// embedSummary computes a vector for the freshly rebuilt summary so it can
// be used for retrieval later. Purely optional; no provider means no vector.
func (u *Updater) embedSummary(mem *entity.UserMemory) {
	if u.embedder == nil || mem.Summary == "" {
		return
	}
	resp, err := u.embedder.Generate(mem.Summary, "RETRIEVAL_DOCUMENT")
	if err != nil {
		u.log.Warn("memory", "summary embedding failed", map[string]interface{}{
			"user_id": mem.UserId.String(),
			"error":   err.Error(),
		})
		return
	}
	mem.SummaryEmbedding = resp.Embedding.Values
}
