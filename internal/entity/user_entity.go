package entity

import (
	"time"

	"github.com/google/uuid"
)

type UserPlan string

const (
	UserPlanFree       UserPlan = "free"
	UserPlanPremium    UserPlan = "premium"
	UserPlanEnterprise UserPlan = "enterprise"
)

type Theme string
type AiTone string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"

	AiToneProfessional AiTone = "professional"
	AiToneCasual       AiTone = "casual"
	AiToneFriendly     AiTone = "friendly"
	AiToneTechnical    AiTone = "technical"
)

// UserPreferences is a closed set of options. Unknown keys are rejected at
// the DTO layer instead of being accepted into a free-form map.
type UserPreferences struct {
	Theme         Theme              `json:"theme"`
	AiTone        AiTone             `json:"ai_tone"`
	Language      string             `json:"language"`
	Notifications bool               `json:"notifications"`
	Privacy       PrivacyPreferences `json:"privacy"`
}

type PrivacyPreferences struct {
	SaveConversations    bool `json:"save_conversations"`
	PersonalizeResponses bool `json:"personalize_responses"`
	ShareAnalytics       bool `json:"share_analytics"`
}

func DefaultUserPreferences() UserPreferences {
	return UserPreferences{
		Theme:         ThemeDark,
		AiTone:        AiToneFriendly,
		Language:      "en",
		Notifications: true,
		Privacy: PrivacyPreferences{
			SaveConversations:    true,
			PersonalizeResponses: true,
			ShareAnalytics:       false,
		},
	}
}

type UserUsage struct {
	MessagesThisMonth int       `json:"messages_this_month"`
	LastResetDate     time.Time `json:"last_reset_date"`
	TotalMessages     int       `json:"total_messages"`
}

type User struct {
	Id                uuid.UUID
	Username          string
	Email             string
	PasswordHash      *string // nil for google-credential accounts
	GoogleId          *string
	DisplayName       string
	AvatarURL         *string
	Verified          bool
	VerificationToken *string
	Preferences       UserPreferences
	Plan              UserPlan
	Usage             UserUsage
	LastLogin         time.Time
	IsActive          bool
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// MonthlyLimit returns the plan message allowance; 0 means unlimited.
func (u *User) MonthlyLimit(freeLimit, premiumLimit int) int {
	switch u.Plan {
	case UserPlanPremium:
		return premiumLimit
	case UserPlanEnterprise:
		return 0
	default:
		return freeLimit
	}
}
