package service

import (
	"context"
	"encoding/json"

	"ai-assistant-be/internal/dto"
	"ai-assistant-be/internal/entity"
	"ai-assistant-be/internal/pkg/logger"
	"ai-assistant-be/pkg/memory"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
)

type IMemoryConsumerService interface {
	Consume(ctx context.Context) error
}

// memoryConsumerService drains the maintenance topic and runs the memory
// updater for each completed exchange. Messages are processed on a background
// context: a client disconnect must not prevent topics, summary and history
// from being written.
type memoryConsumerService struct {
	pubSub    *gochannel.GoChannel
	topicName string
	updater   *memory.Updater
	log       logger.ILogger
}

func NewMemoryConsumerService(pubSub *gochannel.GoChannel, topicName string, updater *memory.Updater, log logger.ILogger) IMemoryConsumerService {
	return &memoryConsumerService{
		pubSub:    pubSub,
		topicName: topicName,
		updater:   updater,
		log:       log,
	}
}

func (cs *memoryConsumerService) Consume(ctx context.Context) error {
	messages, err := cs.pubSub.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(msg)
		}
	}()

	return nil
}

func (cs *memoryConsumerService) processMessage(msg *message.Message) {
	var payload dto.MemoryUpdateMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		cs.log.Error("memory", "failed to unmarshal maintenance message", map[string]interface{}{
			"error": err.Error(),
		})
		msg.Ack() // invalid payloads would retry forever
		return
	}
	if payload.UserMsg == nil || payload.AiMsg == nil {
		cs.log.Error("memory", "maintenance message missing exchange half", map[string]interface{}{
			"session_id": payload.SessionId,
		})
		msg.Ack()
		return
	}

	userMsg := fromMessagePayload(payload.UserId, payload.SessionId, payload.UserMsg)
	aiMsg := fromMessagePayload(payload.UserId, payload.SessionId, payload.AiMsg)

	cs.updater.Update(context.Background(), payload.UserId, payload.SessionId, userMsg, aiMsg)
	msg.Ack()
}

func fromMessagePayload(userId uuid.UUID, sessionId string, p *dto.MessagePayload) *entity.ChatMessage {
	return &entity.ChatMessage{
		UserId:    userId,
		SessionId: sessionId,
		Role:      p.Role,
		Content:   p.Content,
		Metadata: entity.MessageMetadata{
			Model:            p.Model,
			TokenCount:       p.TokenCount,
			ProcessingTimeMs: p.ProcessingTimeMs,
			ContextUsed:      p.ContextUsed,
		},
		CreatedAt: p.CreatedAt,
	}
}
