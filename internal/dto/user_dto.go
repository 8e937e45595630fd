package dto

import "time"

type UpdateProfileRequest struct {
	DisplayName string `json:"display_name" validate:"omitempty,min=1,max=100"`
	AvatarURL   string `json:"avatar_url" validate:"omitempty,url"`
}

type PrivacyPreferencesDTO struct {
	SaveConversations    *bool `json:"save_conversations"`
	PersonalizeResponses *bool `json:"personalize_responses"`
	ShareAnalytics       *bool `json:"share_analytics"`
}

type UpdatePreferencesRequest struct {
	Theme         string                 `json:"theme" validate:"omitempty,oneof=light dark"`
	AiTone        string                 `json:"ai_tone" validate:"omitempty,oneof=professional casual friendly technical"`
	Language      string                 `json:"language" validate:"omitempty,bcp47_language_tag"`
	Notifications *bool                  `json:"notifications"`
	Privacy       *PrivacyPreferencesDTO `json:"privacy"`
}

type UsageResponse struct {
	MessagesThisMonth int       `json:"messages_this_month"`
	MonthlyLimit      int       `json:"monthly_limit"`
	TotalMessages     int       `json:"total_messages"`
	LastResetDate     time.Time `json:"last_reset_date"`
	Plan              string    `json:"plan"`
}
