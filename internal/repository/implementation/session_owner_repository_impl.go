package implementation

import (
	"context"
	"errors"

	"ai-assistant-be/internal/entity"
	"ai-assistant-be/internal/mapper"
	"ai-assistant-be/internal/model"
	"ai-assistant-be/internal/repository/contract"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SessionOwnerRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.ChatMapper
}

func NewSessionOwnerRepository(db *gorm.DB) contract.SessionOwnerRepository {
	return &SessionOwnerRepositoryImpl{
		db:     db,
		mapper: mapper.NewChatMapper(),
	}
}

func (r *SessionOwnerRepositoryImpl) Claim(ctx context.Context, owner *entity.SessionOwner) (*entity.SessionOwner, error) {
	m := r.mapper.OwnerToModel(owner)

	// Insert-if-absent keeps the claim atomic under concurrent first
	// messages to the same session. The subsequent read returns the row
	// that actually won.
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(m).Error
	if err != nil {
		return nil, err
	}

	var winner model.SessionOwner
	if err := r.db.WithContext(ctx).Where("session_id = ?", owner.SessionId).First(&winner).Error; err != nil {
		return nil, err
	}
	return r.mapper.OwnerToEntity(&winner), nil
}

func (r *SessionOwnerRepositoryImpl) Find(ctx context.Context, sessionId string) (*entity.SessionOwner, error) {
	var m model.SessionOwner
	err := r.db.WithContext(ctx).Where("session_id = ?", sessionId).First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.OwnerToEntity(&m), nil
}

func (r *SessionOwnerRepositoryImpl) Delete(ctx context.Context, sessionId string) error {
	return r.db.WithContext(ctx).Where("session_id = ?", sessionId).Delete(&model.SessionOwner{}).Error
}
