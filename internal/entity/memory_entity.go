package entity

import (
	"time"

	"github.com/google/uuid"
)

// Summary size policy. The column allows SummaryHardLimit; writes aim for
// SummaryHardCap and start discarding the oldest text beyond SummarySoftCap.
// Retention keeps the trailing window, so the oldest text goes first.
const (
	SummaryHardLimit = 5000
	SummaryHardCap   = 4900
	SummarySoftCap   = 4000
	SummaryMargin    = 100

	MaxKeyTopics = 50

	// A compact summary is rebuilt every SummaryRebuildEvery messages.
	SummaryRebuildEvery = 20
)

type CommunicationStyle string
type ResponseLength string

const (
	StyleCasual    CommunicationStyle = "casual"
	StyleFormal    CommunicationStyle = "formal"
	StyleTechnical CommunicationStyle = "technical"
	StyleFriendly  CommunicationStyle = "friendly"

	LengthBrief    ResponseLength = "brief"
	LengthModerate ResponseLength = "moderate"
	LengthDetailed ResponseLength = "detailed"
)

type KeyTopic struct {
	Topic         string    `json:"topic"`
	Frequency     int       `json:"frequency"`
	LastMentioned time.Time `json:"last_mentioned"`
}

type ExpertiseArea struct {
	Domain string `json:"domain"`
	Level  string `json:"level"` // beginner | intermediate | advanced
}

type MemoryPreferences struct {
	CommunicationStyle CommunicationStyle `json:"communication_style"`
	ResponseLength     ResponseLength     `json:"response_length"`
	Interests          []string           `json:"interests,omitempty"`
	Expertise          []ExpertiseArea    `json:"expertise,omitempty"`
}

func DefaultMemoryPreferences() MemoryPreferences {
	return MemoryPreferences{
		CommunicationStyle: StyleCasual,
		ResponseLength:     LengthModerate,
	}
}

type ConversationMetrics struct {
	TotalMessages int       `json:"total_messages"`
	LastActiveAt  time.Time `json:"last_active_at"`
}

// UserMemory is the persistent per-user rolling context record. Exactly one
// exists per user; it is created lazily by upsert on the first exchange.
type UserMemory struct {
	Id               uuid.UUID
	UserId           uuid.UUID
	Summary          string
	KeyTopics        []KeyTopic
	Preferences      MemoryPreferences
	Metrics          ConversationMetrics
	MemoryVersion    int
	SummaryEmbedding []float32 // optional, filled on regeneration when a provider is configured
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// TopTopics returns up to n topics. KeyTopics is kept sorted by descending
// frequency on every write, so this is a plain prefix.
func (m *UserMemory) TopTopics(n int) []KeyTopic {
	if len(m.KeyTopics) < n {
		n = len(m.KeyTopics)
	}
	return m.KeyTopics[:n]
}
