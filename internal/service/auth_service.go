package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"strings"
	"time"

	"ai-assistant-be/internal/config"
	"ai-assistant-be/internal/dto"
	"ai-assistant-be/internal/entity"
	"ai-assistant-be/internal/pkg/logger"
	"ai-assistant-be/internal/pkg/mailer"
	"ai-assistant-be/internal/pkg/serverutils"
	"ai-assistant-be/internal/repository/specification"
	"ai-assistant-be/internal/repository/unitofwork"
	"ai-assistant-be/pkg/events"
	pktNats "ai-assistant-be/pkg/nats"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type IAuthService interface {
	Register(ctx context.Context, req *dto.RegisterRequest) (*dto.AuthResponse, error)
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.AuthResponse, error)
	GoogleLogin(ctx context.Context, req *dto.GoogleLoginRequest) (*dto.AuthResponse, error)
	VerifyEmail(ctx context.Context, req *dto.VerifyEmailRequest) error
	Me(ctx context.Context, userId uuid.UUID) (*dto.UserResponse, error)
}

type authService struct {
	uowFactory     unitofwork.RepositoryFactory
	emailService   mailer.IEmailService
	eventPublisher *pktNats.Publisher
	cfg            *config.Config
	log            logger.ILogger
}

func NewAuthService(uowFactory unitofwork.RepositoryFactory, emailService mailer.IEmailService, eventPublisher *pktNats.Publisher, cfg *config.Config, log logger.ILogger) IAuthService {
	return &authService{
		uowFactory:     uowFactory,
		emailService:   emailService,
		eventPublisher: eventPublisher,
		cfg:            cfg,
		log:            log,
	}
}

func generateVerificationToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

func (s *authService) issueToken(user *entity.User) (string, error) {
	claims := jwt.MapClaims{
		"user_id": user.Id.String(),
		"email":   user.Email,
		"exp":     time.Now().Add(time.Duration(s.cfg.Auth.TokenTTLHours) * time.Hour).Unix(),
		"iat":     time.Now().Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.cfg.Auth.JwtSecret))
}

func toUserResponse(user *entity.User) dto.UserResponse {
	avatar := ""
	if user.AvatarURL != nil {
		avatar = *user.AvatarURL
	}
	return dto.UserResponse{
		Id:          user.Id,
		Username:    user.Username,
		Email:       user.Email,
		DisplayName: user.DisplayName,
		AvatarURL:   avatar,
		Plan:        string(user.Plan),
		Verified:    user.Verified,
		CreatedAt:   user.CreatedAt,
	}
}

func (s *authService) Register(ctx context.Context, req *dto.RegisterRequest) (*dto.AuthResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	email := strings.ToLower(strings.TrimSpace(req.Email))

	existing, _ := uow.UserRepository().FindOne(ctx, specification.ByEmail{Email: email})
	if existing != nil {
		return nil, serverutils.NewConflictError("email already registered")
	}
	existing, _ = uow.UserRepository().FindOne(ctx, specification.ByUsername{Username: req.Username})
	if existing != nil {
		return nil, serverutils.NewConflictError("username already taken")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	hashStr := string(hash)

	verifyToken, err := generateVerificationToken()
	if err != nil {
		return nil, err
	}

	user := &entity.User{
		Id:                uuid.New(),
		Username:          req.Username,
		Email:             email,
		PasswordHash:      &hashStr,
		DisplayName:       req.Username,
		Verified:          false,
		VerificationToken: &verifyToken,
		Preferences:       entity.DefaultUserPreferences(),
		Plan:              entity.UserPlanFree,
		Usage:             entity.UserUsage{LastResetDate: time.Now()},
		LastLogin:         time.Now(),
		IsActive:          true,
		CreatedAt:         time.Now(),
		UpdatedAt:         time.Now(),
	}

	if err := uow.UserRepository().Create(ctx, user); err != nil {
		return nil, err
	}

	// Side effects after the write: both are best-effort.
	if s.emailService != nil {
		if err := s.emailService.SendVerification(user.Email, verifyToken); err != nil {
			s.log.Warn("auth", "verification email failed", map[string]interface{}{
				"email": user.Email,
				"error": err.Error(),
			})
		}
	}
	if s.eventPublisher != nil {
		if err := s.eventPublisher.Publish(ctx, events.UserRegisteredEvent{
			UserId:   user.Id,
			Email:    user.Email,
			Username: user.Username,
			At:       time.Now(),
		}); err != nil {
			s.log.Warn("auth", "registration event publish failed", map[string]interface{}{
				"user_id": user.Id.String(),
				"error":   err.Error(),
			})
		}
	}

	tokenStr, err := s.issueToken(user)
	if err != nil {
		return nil, err
	}

	return &dto.AuthResponse{Token: tokenStr, User: toUserResponse(user)}, nil
}

func (s *authService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.AuthResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	email := strings.ToLower(strings.TrimSpace(req.Email))
	user, err := uow.UserRepository().FindOne(ctx, specification.ByEmail{Email: email})
	if err != nil {
		return nil, err
	}
	if user == nil || user.PasswordHash == nil {
		return nil, serverutils.ErrUnauthorized
	}
	if !user.IsActive {
		return nil, serverutils.NewForbiddenError("account is deactivated")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(*user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, serverutils.ErrUnauthorized
	}

	if err := uow.UserRepository().UpdateLastLogin(ctx, user.Id); err != nil {
		s.log.Warn("auth", "failed to record last login", map[string]interface{}{
			"user_id": user.Id.String(),
			"error":   err.Error(),
		})
	}

	tokenStr, err := s.issueToken(user)
	if err != nil {
		return nil, err
	}

	return &dto.AuthResponse{Token: tokenStr, User: toUserResponse(user)}, nil
}

// GoogleLogin accepts a client-posted google identity, finds the matching
// account by google id or email, links or creates it, and issues a token.
func (s *authService) GoogleLogin(ctx context.Context, req *dto.GoogleLoginRequest) (*dto.AuthResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	users := uow.UserRepository()

	email := strings.ToLower(strings.TrimSpace(req.Email))

	user, err := users.FindOne(ctx, specification.ByGoogleId{GoogleId: req.GoogleId})
	if err != nil {
		return nil, err
	}

	if user == nil {
		// Link by email when an account already exists.
		user, err = users.FindOne(ctx, specification.ByEmail{Email: email})
		if err != nil {
			return nil, err
		}
		if user != nil {
			googleId := req.GoogleId
			user.GoogleId = &googleId
			user.Verified = true
			if err := users.Update(ctx, user); err != nil {
				return nil, err
			}
		}
	}

	if user == nil {
		googleId := req.GoogleId
		var avatar *string
		if req.Picture != "" {
			picture := req.Picture
			avatar = &picture
		}
		user = &entity.User{
			Id:          uuid.New(),
			Username:    googleUsername(email),
			Email:       email,
			GoogleId:    &googleId,
			DisplayName: req.Name,
			AvatarURL:   avatar,
			Verified:    true,
			Preferences: entity.DefaultUserPreferences(),
			Plan:        entity.UserPlanFree,
			Usage:       entity.UserUsage{LastResetDate: time.Now()},
			LastLogin:   time.Now(),
			IsActive:    true,
			CreatedAt:   time.Now(),
			UpdatedAt:   time.Now(),
		}
		if err := users.Create(ctx, user); err != nil {
			return nil, err
		}
	}

	if !user.IsActive {
		return nil, serverutils.NewForbiddenError("account is deactivated")
	}

	if err := users.UpdateLastLogin(ctx, user.Id); err != nil {
		s.log.Warn("auth", "failed to record last login", map[string]interface{}{
			"user_id": user.Id.String(),
			"error":   err.Error(),
		})
	}

	tokenStr, err := s.issueToken(user)
	if err != nil {
		return nil, err
	}

	return &dto.AuthResponse{Token: tokenStr, User: toUserResponse(user)}, nil
}

func googleUsername(email string) string {
	local := email
	if at := strings.Index(email, "@"); at > 0 {
		local = email[:at]
	}
	// Keep usernames unique enough without an extra round trip.
	suffix := uuid.New().String()[:8]
	return local + "_" + suffix
}

func (s *authService) VerifyEmail(ctx context.Context, req *dto.VerifyEmailRequest) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	users := uow.UserRepository()

	user, err := users.FindOne(ctx, specification.ByVerificationToken{Token: req.Token})
	if err != nil {
		return err
	}
	if user == nil {
		return serverutils.NewNotFoundError("invalid verification token")
	}

	return users.MarkVerified(ctx, user.Id)
}

func (s *authService) Me(ctx context.Context, userId uuid.UUID) (*dto.UserResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	user, err := uow.UserRepository().FindOne(ctx, specification.ByID{ID: userId})
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, serverutils.NewNotFoundError("user not found")
	}
	resp := toUserResponse(user)
	return &resp, nil
}
