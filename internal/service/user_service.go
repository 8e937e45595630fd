package service

import (
	"context"
	"time"

	"ai-assistant-be/internal/config"
	"ai-assistant-be/internal/dto"
	"ai-assistant-be/internal/entity"
	"ai-assistant-be/internal/pkg/logger"
	"ai-assistant-be/internal/pkg/serverutils"
	"ai-assistant-be/internal/repository/specification"
	"ai-assistant-be/internal/repository/unitofwork"
	"ai-assistant-be/pkg/events"
	pktNats "ai-assistant-be/pkg/nats"

	"github.com/google/uuid"
)

type IUserService interface {
	GetProfile(ctx context.Context, userId uuid.UUID) (*dto.UserResponse, error)
	UpdateProfile(ctx context.Context, userId uuid.UUID, req *dto.UpdateProfileRequest) (*dto.UserResponse, error)
	UpdatePreferences(ctx context.Context, userId uuid.UUID, req *dto.UpdatePreferencesRequest) error
	GetUsage(ctx context.Context, userId uuid.UUID) (*dto.UsageResponse, error)
	DeleteAccount(ctx context.Context, userId uuid.UUID) error
}

type userService struct {
	uowFactory     unitofwork.RepositoryFactory
	eventPublisher *pktNats.Publisher
	cfg            *config.Config
	log            logger.ILogger
}

func NewUserService(uowFactory unitofwork.RepositoryFactory, eventPublisher *pktNats.Publisher, cfg *config.Config, log logger.ILogger) IUserService {
	return &userService{
		uowFactory:     uowFactory,
		eventPublisher: eventPublisher,
		cfg:            cfg,
		log:            log,
	}
}

func (s *userService) findUser(ctx context.Context, uow unitofwork.UnitOfWork, userId uuid.UUID) (*entity.User, error) {
	user, err := uow.UserRepository().FindOne(ctx, specification.ByID{ID: userId})
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, serverutils.NewNotFoundError("user not found")
	}
	return user, nil
}

func (s *userService) GetProfile(ctx context.Context, userId uuid.UUID) (*dto.UserResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	user, err := s.findUser(ctx, uow, userId)
	if err != nil {
		return nil, err
	}
	resp := toUserResponse(user)
	return &resp, nil
}

func (s *userService) UpdateProfile(ctx context.Context, userId uuid.UUID, req *dto.UpdateProfileRequest) (*dto.UserResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	user, err := s.findUser(ctx, uow, userId)
	if err != nil {
		return nil, err
	}

	if req.DisplayName != "" {
		user.DisplayName = req.DisplayName
	}
	if req.AvatarURL != "" {
		avatar := req.AvatarURL
		user.AvatarURL = &avatar
	}
	user.UpdatedAt = time.Now()

	if err := uow.UserRepository().Update(ctx, user); err != nil {
		return nil, err
	}
	resp := toUserResponse(user)
	return &resp, nil
}

func (s *userService) UpdatePreferences(ctx context.Context, userId uuid.UUID, req *dto.UpdatePreferencesRequest) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	user, err := s.findUser(ctx, uow, userId)
	if err != nil {
		return err
	}

	prefs := user.Preferences
	if req.Theme != "" {
		prefs.Theme = entity.Theme(req.Theme)
	}
	if req.AiTone != "" {
		prefs.AiTone = entity.AiTone(req.AiTone)
	}
	if req.Language != "" {
		prefs.Language = req.Language
	}
	if req.Notifications != nil {
		prefs.Notifications = *req.Notifications
	}
	if req.Privacy != nil {
		if req.Privacy.SaveConversations != nil {
			prefs.Privacy.SaveConversations = *req.Privacy.SaveConversations
		}
		if req.Privacy.PersonalizeResponses != nil {
			prefs.Privacy.PersonalizeResponses = *req.Privacy.PersonalizeResponses
		}
		if req.Privacy.ShareAnalytics != nil {
			prefs.Privacy.ShareAnalytics = *req.Privacy.ShareAnalytics
		}
	}

	return uow.UserRepository().UpdatePreferences(ctx, userId, prefs)
}

func (s *userService) GetUsage(ctx context.Context, userId uuid.UUID) (*dto.UsageResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	user, err := s.findUser(ctx, uow, userId)
	if err != nil {
		return nil, err
	}

	return &dto.UsageResponse{
		MessagesThisMonth: user.Usage.MessagesThisMonth,
		MonthlyLimit:      user.MonthlyLimit(s.cfg.Auth.FreePlanLimit, s.cfg.Auth.PremiumLimit),
		TotalMessages:     user.Usage.TotalMessages,
		LastResetDate:     user.Usage.LastResetDate,
		Plan:              string(user.Plan),
	}, nil
}

// DeleteAccount purges the user together with their memory, messages and
// session ownership rows, then announces the deletion on the event bus.
func (s *userService) DeleteAccount(ctx context.Context, userId uuid.UUID) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	if _, err := s.findUser(ctx, uow, userId); err != nil {
		return err
	}

	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	sessions, err := uow.ChatMessageRepository().ListSessions(ctx, userId)
	if err != nil {
		return err
	}
	for _, session := range sessions {
		if _, err := uow.ChatMessageRepository().DeleteBySession(ctx, userId, session.SessionId); err != nil {
			return err
		}
		if err := uow.SessionOwnerRepository().Delete(ctx, session.SessionId); err != nil {
			return err
		}
	}
	if err := uow.UserMemoryRepository().Delete(ctx, userId); err != nil {
		return err
	}
	if err := uow.UserRepository().Delete(ctx, userId); err != nil {
		return err
	}

	if err := uow.Commit(); err != nil {
		return err
	}

	if s.eventPublisher != nil {
		if err := s.eventPublisher.Publish(ctx, events.AccountDeletedEvent{
			UserId: userId,
			At:     time.Now(),
		}); err != nil {
			s.log.Warn("user", "account deletion event publish failed", map[string]interface{}{
				"user_id": userId.String(),
				"error":   err.Error(),
			})
		}
	}

	return nil
}
