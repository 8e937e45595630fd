package dto

import "time"

type KeyTopicDTO struct {
	Topic         string    `json:"topic"`
	Frequency     int       `json:"frequency"`
	LastMentioned time.Time `json:"last_mentioned"`
}

type MemoryPreferencesDTO struct {
	CommunicationStyle string   `json:"communication_style"`
	ResponseLength     string   `json:"response_length"`
	Interests          []string `json:"interests,omitempty"`
}

type MemoryResponse struct {
	Summary       string               `json:"summary"`
	KeyTopics     []KeyTopicDTO        `json:"key_topics"`
	Preferences   MemoryPreferencesDTO `json:"preferences"`
	TotalMessages int                  `json:"total_messages"`
	LastActiveAt  time.Time            `json:"last_active_at"`
	MemoryVersion int                  `json:"memory_version"`
	UpdatedAt     time.Time            `json:"updated_at"`
}

type UpdateMemoryPreferencesRequest struct {
	CommunicationStyle string   `json:"communication_style" validate:"omitempty,oneof=casual formal technical friendly"`
	ResponseLength     string   `json:"response_length" validate:"omitempty,oneof=brief moderate detailed"`
	Interests          []string `json:"interests" validate:"omitempty,max=20,dive,min=1,max=50"`
}

type ClearMemoryResponse struct {
	Cleared bool `json:"cleared"`
}
