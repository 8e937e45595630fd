package mapper

import (
	"encoding/json"

	"ai-assistant-be/internal/entity"
	"ai-assistant-be/internal/model"

	"gorm.io/datatypes"
)

type ChatMapper struct{}

func NewChatMapper() *ChatMapper {
	return &ChatMapper{}
}

func (m *ChatMapper) MessageToEntity(msg *model.ChatMessage) *entity.ChatMessage {
	if msg == nil {
		return nil
	}

	var meta entity.MessageMetadata
	if len(msg.Metadata) > 0 {
		_ = json.Unmarshal(msg.Metadata, &meta)
	}

	return &entity.ChatMessage{
		Id:        msg.Id,
		UserId:    msg.UserId,
		SessionId: msg.SessionId,
		Role:      msg.Role,
		Content:   msg.Content,
		Metadata:  meta,
		CreatedAt: msg.CreatedAt,
	}
}

func (m *ChatMapper) MessageToModel(msg *entity.ChatMessage) *model.ChatMessage {
	if msg == nil {
		return nil
	}

	metaJSON, _ := json.Marshal(msg.Metadata)

	return &model.ChatMessage{
		Id:        msg.Id,
		UserId:    msg.UserId,
		SessionId: msg.SessionId,
		Role:      msg.Role,
		Content:   msg.Content,
		Metadata:  datatypes.JSON(metaJSON),
		CreatedAt: msg.CreatedAt,
	}
}

func (m *ChatMapper) OwnerToEntity(o *model.SessionOwner) *entity.SessionOwner {
	if o == nil {
		return nil
	}
	return &entity.SessionOwner{
		SessionId: o.SessionId,
		UserId:    o.UserId,
		CreatedAt: o.CreatedAt,
	}
}

func (m *ChatMapper) OwnerToModel(o *entity.SessionOwner) *model.SessionOwner {
	if o == nil {
		return nil
	}
	return &model.SessionOwner{
		SessionId: o.SessionId,
		UserId:    o.UserId,
		CreatedAt: o.CreatedAt,
	}
}
