package implementation

import (
	"context"
	"errors"

	"ai-assistant-be/internal/entity"
	"ai-assistant-be/internal/mapper"
	"ai-assistant-be/internal/model"
	"ai-assistant-be/internal/repository/contract"
	"ai-assistant-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ChatMessageRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.ChatMapper
}

func NewChatMessageRepository(db *gorm.DB) contract.ChatMessageRepository {
	return &ChatMessageRepositoryImpl{
		db:     db,
		mapper: mapper.NewChatMapper(),
	}
}

func (r *ChatMessageRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *ChatMessageRepositoryImpl) Create(ctx context.Context, message *entity.ChatMessage) error {
	m := r.mapper.MessageToModel(message)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*message = *r.mapper.MessageToEntity(m)
	return nil
}

func (r *ChatMessageRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.ChatMessage, error) {
	var m model.ChatMessage
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.MessageToEntity(&m), nil
}

func (r *ChatMessageRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ChatMessage, error) {
	var models []*model.ChatMessage
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	entities := make([]*entity.ChatMessage, len(models))
	for i, m := range models {
		entities[i] = r.mapper.MessageToEntity(m)
	}
	return entities, nil
}

func (r *ChatMessageRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx).Model(&model.ChatMessage{}), specs...)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *ChatMessageRepositoryImpl) DeleteBySession(ctx context.Context, userId uuid.UUID, sessionId string) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("user_id = ? AND session_id = ?", userId, sessionId).
		Delete(&model.ChatMessage{})
	return res.RowsAffected, res.Error
}

func (r *ChatMessageRepositoryImpl) ListSessions(ctx context.Context, userId uuid.UUID) ([]*entity.SessionSummary, error) {
	var summaries []*entity.SessionSummary
	err := r.db.WithContext(ctx).Model(&model.ChatMessage{}).
		Select("session_id, MAX(created_at) AS last_timestamp, COUNT(*) AS message_count").
		Where("user_id = ?", userId).
		Group("session_id").
		Order("last_timestamp DESC").
		Scan(&summaries).Error
	if err != nil {
		return nil, err
	}

	// Fill in the title (first message) and preview (latest message) per
	// session. Session lists are small enough that two queries per session
	// keep this readable.
	for _, s := range summaries {
		var first, last model.ChatMessage
		err := r.db.WithContext(ctx).
			Where("user_id = ? AND session_id = ?", userId, s.SessionId).
			Order("created_at ASC").First(&first).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				continue
			}
			return nil, err
		}
		err = r.db.WithContext(ctx).
			Where("user_id = ? AND session_id = ?", userId, s.SessionId).
			Order("created_at DESC").First(&last).Error
		if err != nil {
			return nil, err
		}
		s.Title = sessionTitle(first.Content)
		s.LastMessage = last.Content
	}
	return summaries, nil
}

const sessionTitleMax = 50

func sessionTitle(content string) string {
	runes := []rune(content)
	if len(runes) > sessionTitleMax {
		return string(runes[:sessionTitleMax]) + "..."
	}
	return content
}
