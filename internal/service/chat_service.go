package service

import (
	"context"
	"encoding/json"
	"time"

	"ai-assistant-be/internal/config"
	"ai-assistant-be/internal/dto"
	"ai-assistant-be/internal/entity"
	"ai-assistant-be/internal/pkg/logger"
	"ai-assistant-be/internal/pkg/serverutils"
	repomem "ai-assistant-be/internal/repository/memory"
	"ai-assistant-be/internal/repository/specification"
	"ai-assistant-be/internal/repository/unitofwork"
	"ai-assistant-be/pkg/chatcontext"
	"ai-assistant-be/pkg/chatcontext/prompt"
	"ai-assistant-be/pkg/llm"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"
)

const MemoryUpdateTopic = "memory.update"

const fallbackReply = "I apologize, but I encountered an error while processing your request. Please try again in a moment."

const (
	historyDefaultLimit = 50
	historyMaxLimit     = 200
	maxListedSessions   = 50
)

type IChatService interface {
	SendMessage(ctx context.Context, userId uuid.UUID, req *dto.SendMessageRequest) (*dto.SendMessageResponse, error)
	GetHistory(ctx context.Context, userId uuid.UUID, sessionId string, limit int) ([]*dto.MessageResponse, error)
	ListSessions(ctx context.Context, userId uuid.UUID) ([]*dto.SessionResponse, error)
	DeleteSession(ctx context.Context, userId uuid.UUID, sessionId string) (*dto.DeleteSessionResponse, error)
}

type chatService struct {
	uowFactory unitofwork.RepositoryFactory
	assembler  *chatcontext.Assembler
	provider   llm.LLMProvider
	publisher  message.Publisher
	usageCache *repomem.UsageCache
	cfg        *config.Config
	log        logger.ILogger
}

func NewChatService(
	uowFactory unitofwork.RepositoryFactory,
	assembler *chatcontext.Assembler,
	provider llm.LLMProvider,
	publisher message.Publisher,
	usageCache *repomem.UsageCache,
	cfg *config.Config,
	log logger.ILogger,
) IChatService {
	return &chatService{
		uowFactory: uowFactory,
		assembler:  assembler,
		provider:   provider,
		publisher:  publisher,
		usageCache: usageCache,
		cfg:        cfg,
		log:        log,
	}
}

func (s *chatService) SendMessage(ctx context.Context, userId uuid.UUID, req *dto.SendMessageRequest) (*dto.SendMessageResponse, error) {
	start := time.Now()

	sessionId := req.SessionId
	if sessionId == "" {
		sessionId = uuid.New().String()
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)

	// Ownership is claimed atomically and re-verified on every write.
	owner, err := uow.SessionOwnerRepository().Claim(ctx, &entity.SessionOwner{
		SessionId: sessionId,
		UserId:    userId,
		CreatedAt: time.Now(),
	})
	if err != nil {
		return nil, err
	}
	if owner.UserId != userId {
		return nil, serverutils.NewForbiddenError("session belongs to another user")
	}

	user, err := uow.UserRepository().FindOne(ctx, specification.ByID{ID: userId})
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, serverutils.NewNotFoundError("user not found")
	}

	s.rolloverUsageIfDue(ctx, uow, user)

	if err := s.checkPlanLimit(user); err != nil {
		return nil, err
	}

	snapshot, err := s.assembler.Assemble(ctx, userId, sessionId)
	if err != nil {
		return nil, err
	}

	messages := prompt.NewBuilder(snapshot, req.Message).Build()

	opts := []llm.Option{
		llm.WithTemperature(s.cfg.Ai.Temperature),
		llm.WithMaxTokens(s.cfg.Ai.MaxTokens),
	}
	if req.Temperature != nil {
		opts[0] = llm.WithTemperature(*req.Temperature)
	}
	if req.MaxTokens != nil {
		opts[1] = llm.WithMaxTokens(*req.MaxTokens)
	}

	degraded := snapshot.Degraded
	result, err := s.provider.Chat(ctx, messages, opts...)
	if err != nil {
		// Conversation continuity beats surfacing the provider error. The
		// fallback reply is still recorded so history stays coherent.
		s.log.Error("chat", "completion provider failed", map[string]interface{}{
			"user_id":    userId.String(),
			"session_id": sessionId,
			"error":      err.Error(),
		})
		result = &llm.Result{Content: fallbackReply}
		degraded = true
	}

	now := time.Now()
	contextUsed := snapshot.MemorySummary != "" || len(snapshot.SessionMessages) > 0

	userMsg := &entity.ChatMessage{
		Id:        uuid.New(),
		UserId:    userId,
		SessionId: sessionId,
		Role:      entity.ChatRoleUser,
		Content:   req.Message,
		CreatedAt: now,
	}
	aiMsg := &entity.ChatMessage{
		Id:        uuid.New(),
		UserId:    userId,
		SessionId: sessionId,
		Role:      entity.ChatRoleAssistant,
		Content:   result.Content,
		Metadata: entity.MessageMetadata{
			Model:            s.cfg.Ai.LLMModel,
			TokenCount:       result.Usage.TotalTokens,
			ProcessingTimeMs: time.Since(start).Milliseconds(),
			ContextUsed:      contextUsed,
		},
		CreatedAt: now.Add(time.Millisecond),
	}

	s.publishMaintenance(userId, sessionId, userMsg, aiMsg)
	s.recordUsage(ctx, uow, user)

	var usage *dto.TokenUsage
	if result.Usage.TotalTokens > 0 {
		usage = &dto.TokenUsage{
			PromptTokens:     result.Usage.PromptTokens,
			CompletionTokens: result.Usage.CompletionTokens,
			TotalTokens:      result.Usage.TotalTokens,
		}
	}

	return &dto.SendMessageResponse{
		SessionId: sessionId,
		Sent: &dto.MessageResponse{
			Id:        userMsg.Id,
			Role:      userMsg.Role,
			Content:   userMsg.Content,
			CreatedAt: userMsg.CreatedAt,
		},
		Reply: &dto.MessageResponse{
			Id:        aiMsg.Id,
			Role:      aiMsg.Role,
			Content:   aiMsg.Content,
			CreatedAt: aiMsg.CreatedAt,
		},
		ContextUsed: contextUsed,
		Usage:       usage,
		Degraded:    degraded,
	}, nil
}

// rolloverUsageIfDue zeroes the monthly counter on the first message of a
// new calendar month. Best-effort: a failed reset just means the stale
// counter stays until the next message.
func (s *chatService) rolloverUsageIfDue(ctx context.Context, uow unitofwork.UnitOfWork, user *entity.User) {
	now := time.Now()
	last := user.Usage.LastResetDate
	if last.Year() == now.Year() && last.Month() == now.Month() {
		return
	}
	if err := uow.UserRepository().ResetMonthlyUsage(ctx, user.Id); err != nil {
		s.log.Warn("chat", "failed to reset monthly usage", map[string]interface{}{
			"user_id": user.Id.String(),
			"error":   err.Error(),
		})
		return
	}
	user.Usage.MessagesThisMonth = 0
	user.Usage.LastResetDate = now
	s.usageCache.Invalidate(user.Id)
}

func (s *chatService) checkPlanLimit(user *entity.User) error {
	limit := user.MonthlyLimit(s.cfg.Auth.FreePlanLimit, s.cfg.Auth.PremiumLimit)
	if limit <= 0 {
		return nil
	}
	used, cached := s.usageCache.Get(user.Id)
	if !cached {
		used = user.Usage.MessagesThisMonth
		s.usageCache.Set(user.Id, used)
	}
	if used >= limit {
		return serverutils.NewLimitExceededError("monthly message limit reached", used, limit)
	}
	return nil
}

func (s *chatService) publishMaintenance(userId uuid.UUID, sessionId string, userMsg, aiMsg *entity.ChatMessage) {
	payload, err := json.Marshal(dto.MemoryUpdateMessage{
		UserId:    userId,
		SessionId: sessionId,
		UserMsg:   toMessagePayload(userMsg),
		AiMsg:     toMessagePayload(aiMsg),
	})
	if err != nil {
		s.log.Error("chat", "failed to marshal maintenance payload", map[string]interface{}{
			"user_id": userId.String(),
			"error":   err.Error(),
		})
		return
	}
	msg := message.NewMessage(uuid.New().String(), payload)
	if err := s.publisher.Publish(MemoryUpdateTopic, msg); err != nil {
		s.log.Error("chat", "failed to publish maintenance message", map[string]interface{}{
			"user_id":    userId.String(),
			"session_id": sessionId,
			"error":      err.Error(),
		})
	}
}

func toMessagePayload(m *entity.ChatMessage) *dto.MessagePayload {
	return &dto.MessagePayload{
		Role:             m.Role,
		Content:          m.Content,
		Model:            m.Metadata.Model,
		TokenCount:       m.Metadata.TokenCount,
		ProcessingTimeMs: m.Metadata.ProcessingTimeMs,
		ContextUsed:      m.Metadata.ContextUsed,
		CreatedAt:        m.CreatedAt,
	}
}

func (s *chatService) recordUsage(ctx context.Context, uow unitofwork.UnitOfWork, user *entity.User) {
	if err := uow.UserRepository().IncrementUsage(ctx, user.Id); err != nil {
		s.log.Warn("chat", "failed to increment usage counter", map[string]interface{}{
			"user_id": user.Id.String(),
			"error":   err.Error(),
		})
		return
	}
	s.usageCache.Increment(user.Id)
}

func (s *chatService) GetHistory(ctx context.Context, userId uuid.UUID, sessionId string, limit int) ([]*dto.MessageResponse, error) {
	if limit <= 0 {
		limit = historyDefaultLimit
	}
	if limit > historyMaxLimit {
		limit = historyMaxLimit
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	specs := []specification.Specification{
		specification.OwnedBy{UserID: userId},
		specification.OrderBy{Field: "created_at", Desc: true},
		specification.Limit{N: limit},
	}
	if sessionId != "" {
		specs = append(specs, specification.BySessionID{SessionID: sessionId})
	}

	messages, err := uow.ChatMessageRepository().FindAll(ctx, specs...)
	if err != nil {
		return nil, err
	}

	out := make([]*dto.MessageResponse, len(messages))
	for i, m := range messages {
		idx := i
		if sessionId != "" {
			// Session history reads chronologically; the query returned
			// newest-first so the limit keeps the latest messages.
			idx = len(messages) - 1 - i
		}
		out[idx] = &dto.MessageResponse{
			Id:        m.Id,
			Role:      m.Role,
			Content:   m.Content,
			CreatedAt: m.CreatedAt,
		}
	}
	return out, nil
}

func (s *chatService) ListSessions(ctx context.Context, userId uuid.UUID) ([]*dto.SessionResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	summaries, err := uow.ChatMessageRepository().ListSessions(ctx, userId)
	if err != nil {
		return nil, err
	}
	if len(summaries) > maxListedSessions {
		summaries = summaries[:maxListedSessions]
	}

	out := make([]*dto.SessionResponse, len(summaries))
	for i, s := range summaries {
		out[i] = &dto.SessionResponse{
			SessionId:     s.SessionId,
			Title:         s.Title,
			LastMessage:   s.LastMessage,
			LastTimestamp: s.LastTimestamp,
			MessageCount:  s.MessageCount,
		}
	}
	return out, nil
}

func (s *chatService) DeleteSession(ctx context.Context, userId uuid.UUID, sessionId string) (*dto.DeleteSessionResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	owner, err := uow.SessionOwnerRepository().Find(ctx, sessionId)
	if err != nil {
		return nil, err
	}
	if owner == nil {
		return nil, serverutils.NewNotFoundError("session not found")
	}
	if owner.UserId != userId {
		return nil, serverutils.NewForbiddenError("session belongs to another user")
	}

	deleted, err := uow.ChatMessageRepository().DeleteBySession(ctx, userId, sessionId)
	if err != nil {
		return nil, err
	}
	if err := uow.SessionOwnerRepository().Delete(ctx, sessionId); err != nil {
		s.log.Warn("chat", "failed to remove session owner row", map[string]interface{}{
			"session_id": sessionId,
			"error":      err.Error(),
		})
	}

	return &dto.DeleteSessionResponse{
		SessionId:       sessionId,
		DeletedMessages: deleted,
	}, nil
}
