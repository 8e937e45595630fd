package chatcontext

import "ai-assistant-be/internal/entity"

// Snapshot is the request-scoped bundle of everything the prompt builder
// needs. It is assembled fresh for every message and never cached.
type Snapshot struct {
	Profile         *entity.User
	MemorySummary   string
	TopTopics       []entity.KeyTopic
	Preferences     entity.MemoryPreferences
	SessionMessages []*entity.ChatMessage // chronological, current session
	CrossSession    []*entity.ChatMessage // most recent across other sessions
	Degraded        bool
}
