package chatcontext

import (
	"context"
	"sync"

	"ai-assistant-be/internal/entity"
	"ai-assistant-be/internal/pkg/logger"
	"ai-assistant-be/internal/pkg/serverutils"
	"ai-assistant-be/internal/repository/specification"
	"ai-assistant-be/internal/repository/unitofwork"

	"github.com/google/uuid"
)

const (
	sessionMessageLimit  = 10
	crossSessionFetch    = 20
	crossSessionRetained = 5
	summaryExcerptLimit  = 1000
)

// Assembler builds the per-request context snapshot. The profile fetch is
// load-bearing; memory and message fetches degrade to empty defaults so a
// partial store outage slows the conversation down instead of stopping it.
type Assembler struct {
	factory unitofwork.RepositoryFactory
	log     logger.ILogger
}

func NewAssembler(factory unitofwork.RepositoryFactory, log logger.ILogger) *Assembler {
	return &Assembler{
		factory: factory,
		log:     log,
	}
}

func (a *Assembler) Assemble(ctx context.Context, userId uuid.UUID, sessionId string) (*Snapshot, error) {
	uow := a.factory.NewUnitOfWork(ctx)
	userRepo := uow.UserRepository()
	memRepo := uow.UserMemoryRepository()
	msgRepo := uow.ChatMessageRepository()

	var (
		profile *entity.User
		mem     *entity.UserMemory
		session []*entity.ChatMessage
		recent  []*entity.ChatMessage

		profileErr error
		memErr     error
		sessionErr error
		recentErr  error
	)

	// The four fetches are independent of each other.
	var wg sync.WaitGroup
	wg.Add(4)

	go func() {
		defer wg.Done()
		profile, profileErr = userRepo.FindOne(ctx, specification.ByID{ID: userId})
	}()
	go func() {
		defer wg.Done()
		mem, memErr = memRepo.Find(ctx, userId)
	}()
	go func() {
		defer wg.Done()
		session, sessionErr = msgRepo.FindAll(ctx,
			specification.OwnedBy{UserID: userId},
			specification.BySessionID{SessionID: sessionId},
			specification.OrderBy{Field: "created_at", Desc: true},
			specification.Limit{N: sessionMessageLimit},
		)
	}()
	go func() {
		defer wg.Done()
		recent, recentErr = msgRepo.FindAll(ctx,
			specification.OwnedBy{UserID: userId},
			specification.OrderBy{Field: "created_at", Desc: true},
			specification.Limit{N: crossSessionFetch},
		)
	}()
	wg.Wait()

	if profileErr != nil {
		return nil, profileErr
	}
	if profile == nil {
		return nil, serverutils.NewNotFoundError("user not found")
	}

	snapshot := &Snapshot{
		Profile:     profile,
		Preferences: entity.DefaultMemoryPreferences(),
	}

	if memErr != nil {
		a.log.Warn("context", "memory fetch failed, assembling without it", map[string]interface{}{
			"user_id": userId.String(),
			"error":   memErr.Error(),
		})
		snapshot.Degraded = true
	} else if mem != nil {
		snapshot.MemorySummary = excerpt(mem.Summary, summaryExcerptLimit)
		snapshot.TopTopics = mem.TopTopics(5)
		snapshot.Preferences = mem.Preferences
	}

	if sessionErr != nil {
		a.log.Warn("context", "session message fetch failed", map[string]interface{}{
			"user_id":    userId.String(),
			"session_id": sessionId,
			"error":      sessionErr.Error(),
		})
		snapshot.Degraded = true
	} else {
		snapshot.SessionMessages = reverse(session)
	}

	if recentErr != nil {
		a.log.Warn("context", "cross-session fetch failed", map[string]interface{}{
			"user_id": userId.String(),
			"error":   recentErr.Error(),
		})
		snapshot.Degraded = true
	} else {
		if len(recent) > crossSessionRetained {
			recent = recent[:crossSessionRetained]
		}
		snapshot.CrossSession = reverse(recent)
	}

	return snapshot, nil
}

func excerpt(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	return s[len(s)-limit:]
}

// reverse flips newest-first query results into chronological order.
func reverse(msgs []*entity.ChatMessage) []*entity.ChatMessage {
	out := make([]*entity.ChatMessage, len(msgs))
	for i, m := range msgs {
		out[len(msgs)-1-i] = m
	}
	return out
}
