package mapper

import (
	"encoding/json"

	"ai-assistant-be/internal/entity"
	"ai-assistant-be/internal/model"

	"github.com/pgvector/pgvector-go"
	"gorm.io/datatypes"
)

type MemoryMapper struct{}

func NewMemoryMapper() *MemoryMapper {
	return &MemoryMapper{}
}

func (m *MemoryMapper) ToEntity(mem *model.UserMemory) *entity.UserMemory {
	if mem == nil {
		return nil
	}

	var topics []entity.KeyTopic
	if len(mem.KeyTopics) > 0 {
		_ = json.Unmarshal(mem.KeyTopics, &topics)
	}

	prefs := entity.DefaultMemoryPreferences()
	if len(mem.Preferences) > 0 {
		_ = json.Unmarshal(mem.Preferences, &prefs)
	}

	var embedding []float32
	if mem.SummaryEmbedding != nil {
		embedding = mem.SummaryEmbedding.Slice()
	}

	return &entity.UserMemory{
		Id:          mem.Id,
		UserId:      mem.UserId,
		Summary:     mem.Summary,
		KeyTopics:   topics,
		Preferences: prefs,
		Metrics: entity.ConversationMetrics{
			TotalMessages: mem.TotalMessages,
			LastActiveAt:  mem.LastActiveAt,
		},
		MemoryVersion:    mem.MemoryVersion,
		SummaryEmbedding: embedding,
		CreatedAt:        mem.CreatedAt,
		UpdatedAt:        mem.UpdatedAt,
	}
}

func (m *MemoryMapper) ToModel(mem *entity.UserMemory) *model.UserMemory {
	if mem == nil {
		return nil
	}

	topicsJSON, _ := json.Marshal(mem.KeyTopics)
	prefsJSON, _ := json.Marshal(mem.Preferences)

	var embedding *pgvector.Vector
	if len(mem.SummaryEmbedding) > 0 {
		v := pgvector.NewVector(mem.SummaryEmbedding)
		embedding = &v
	}

	return &model.UserMemory{
		Id:               mem.Id,
		UserId:           mem.UserId,
		Summary:          mem.Summary,
		KeyTopics:        datatypes.JSON(topicsJSON),
		Preferences:      datatypes.JSON(prefsJSON),
		TotalMessages:    mem.Metrics.TotalMessages,
		LastActiveAt:     mem.Metrics.LastActiveAt,
		MemoryVersion:    mem.MemoryVersion,
		SummaryEmbedding: embedding,
		CreatedAt:        mem.CreatedAt,
		UpdatedAt:        mem.UpdatedAt,
	}
}
