package mapper

import (
	"encoding/json"

	"ai-assistant-be/internal/entity"
	"ai-assistant-be/internal/model"

	"gorm.io/datatypes"
)

type UserMapper struct{}

func NewUserMapper() *UserMapper {
	return &UserMapper{}
}

func (m *UserMapper) ToEntity(u *model.User) *entity.User {
	if u == nil {
		return nil
	}

	prefs := entity.DefaultUserPreferences()
	if len(u.Preferences) > 0 {
		// Ignore malformed stored JSON and fall back to defaults
		_ = json.Unmarshal(u.Preferences, &prefs)
	}

	return &entity.User{
		Id:                u.Id,
		Username:          u.Username,
		Email:             u.Email,
		PasswordHash:      u.PasswordHash,
		GoogleId:          u.GoogleId,
		DisplayName:       u.DisplayName,
		AvatarURL:         u.AvatarURL,
		Verified:          u.Verified,
		VerificationToken: u.VerificationToken,
		Preferences:       prefs,
		Plan:              entity.UserPlan(u.Plan),
		Usage: entity.UserUsage{
			MessagesThisMonth: u.MessagesThisMonth,
			LastResetDate:     u.LastResetDate,
			TotalMessages:     u.TotalMessages,
		},
		LastLogin: u.LastLogin,
		IsActive:  u.IsActive,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

func (m *UserMapper) ToModel(u *entity.User) *model.User {
	if u == nil {
		return nil
	}

	prefsJSON, _ := json.Marshal(u.Preferences)

	return &model.User{
		Id:                u.Id,
		Username:          u.Username,
		Email:             u.Email,
		PasswordHash:      u.PasswordHash,
		GoogleId:          u.GoogleId,
		DisplayName:       u.DisplayName,
		AvatarURL:         u.AvatarURL,
		Verified:          u.Verified,
		VerificationToken: u.VerificationToken,
		Preferences:       datatypes.JSON(prefsJSON),
		Plan:              string(u.Plan),
		MessagesThisMonth: u.Usage.MessagesThisMonth,
		LastResetDate:     u.Usage.LastResetDate,
		TotalMessages:     u.Usage.TotalMessages,
		LastLogin:         u.LastLogin,
		IsActive:          u.IsActive,
		CreatedAt:         u.CreatedAt,
		UpdatedAt:         u.UpdatedAt,
	}
}
