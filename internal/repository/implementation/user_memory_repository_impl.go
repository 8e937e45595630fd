package implementation

import (
	"context"
	"errors"
	"time"

	"ai-assistant-be/internal/entity"
	"ai-assistant-be/internal/mapper"
	"ai-assistant-be/internal/model"
	"ai-assistant-be/internal/repository/contract"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type UserMemoryRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.MemoryMapper
}

func NewUserMemoryRepository(db *gorm.DB) contract.UserMemoryRepository {
	return &UserMemoryRepositoryImpl{
		db:     db,
		mapper: mapper.NewMemoryMapper(),
	}
}

func (r *UserMemoryRepositoryImpl) GetOrCreate(ctx context.Context, userId uuid.UUID) (*entity.UserMemory, error) {
	blank := &model.UserMemory{
		UserId:        userId,
		Summary:       "",
		KeyTopics:     []byte("[]"),
		MemoryVersion: 1,
		LastActiveAt:  time.Now(),
	}

	// user_id carries a unique index, so concurrent first calls converge
	// on a single row and the re-read returns it.
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoNothing: true,
		}).
		Create(blank).Error
	if err != nil {
		return nil, err
	}

	var m model.UserMemory
	if err := r.db.WithContext(ctx).Where("user_id = ?", userId).First(&m).Error; err != nil {
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *UserMemoryRepositoryImpl) Find(ctx context.Context, userId uuid.UUID) (*entity.UserMemory, error) {
	var m model.UserMemory
	err := r.db.WithContext(ctx).Where("user_id = ?", userId).First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *UserMemoryRepositoryImpl) Update(ctx context.Context, memory *entity.UserMemory) error {
	m := r.mapper.ToModel(memory)
	if err := r.db.WithContext(ctx).Save(m).Error; err != nil {
		return err
	}
	*memory = *r.mapper.ToEntity(m)
	return nil
}

func (r *UserMemoryRepositoryImpl) Delete(ctx context.Context, userId uuid.UUID) error {
	return r.db.WithContext(ctx).Where("user_id = ?", userId).Delete(&model.UserMemory{}).Error
}
