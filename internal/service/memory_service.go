package service

import (
	"context"

	"ai-assistant-be/internal/dto"
	"ai-assistant-be/internal/entity"
	"ai-assistant-be/internal/repository/unitofwork"

	"github.com/google/uuid"
)

type IMemoryService interface {
	GetMemory(ctx context.Context, userId uuid.UUID) (*dto.MemoryResponse, error)
	UpdatePreferences(ctx context.Context, userId uuid.UUID, req *dto.UpdateMemoryPreferencesRequest) (*dto.MemoryResponse, error)
	DeleteMemory(ctx context.Context, userId uuid.UUID) error
}

type memoryService struct {
	uowFactory unitofwork.RepositoryFactory
}

func NewMemoryService(uowFactory unitofwork.RepositoryFactory) IMemoryService {
	return &memoryService{
		uowFactory: uowFactory,
	}
}

func (s *memoryService) GetMemory(ctx context.Context, userId uuid.UUID) (*dto.MemoryResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	mem, err := uow.UserMemoryRepository().GetOrCreate(ctx, userId)
	if err != nil {
		return nil, err
	}
	return toMemoryResponse(mem), nil
}

func (s *memoryService) UpdatePreferences(ctx context.Context, userId uuid.UUID, req *dto.UpdateMemoryPreferencesRequest) (*dto.MemoryResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	memRepo := uow.UserMemoryRepository()

	mem, err := memRepo.GetOrCreate(ctx, userId)
	if err != nil {
		return nil, err
	}

	// Only enumerated values arrive here; unknown strings are rejected at
	// the DTO validation layer.
	if req.CommunicationStyle != "" {
		mem.Preferences.CommunicationStyle = entity.CommunicationStyle(req.CommunicationStyle)
	}
	if req.ResponseLength != "" {
		mem.Preferences.ResponseLength = entity.ResponseLength(req.ResponseLength)
	}
	if req.Interests != nil {
		mem.Preferences.Interests = req.Interests
	}

	if err := memRepo.Update(ctx, mem); err != nil {
		return nil, err
	}
	return toMemoryResponse(mem), nil
}

func (s *memoryService) DeleteMemory(ctx context.Context, userId uuid.UUID) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	return uow.UserMemoryRepository().Delete(ctx, userId)
}

func toMemoryResponse(mem *entity.UserMemory) *dto.MemoryResponse {
	topics := make([]dto.KeyTopicDTO, len(mem.KeyTopics))
	for i, t := range mem.KeyTopics {
		topics[i] = dto.KeyTopicDTO{
			Topic:         t.Topic,
			Frequency:     t.Frequency,
			LastMentioned: t.LastMentioned,
		}
	}
	return &dto.MemoryResponse{
		Summary:   mem.Summary,
		KeyTopics: topics,
		Preferences: dto.MemoryPreferencesDTO{
			CommunicationStyle: string(mem.Preferences.CommunicationStyle),
			ResponseLength:     string(mem.Preferences.ResponseLength),
			Interests:          mem.Preferences.Interests,
		},
		TotalMessages: mem.Metrics.TotalMessages,
		LastActiveAt:  mem.Metrics.LastActiveAt,
		MemoryVersion: mem.MemoryVersion,
		UpdatedAt:     mem.UpdatedAt,
	}
}
