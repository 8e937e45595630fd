package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"gorm.io/datatypes"
)

type UserMemory struct {
	Id               uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserId           uuid.UUID `gorm:"type:uuid;not null;uniqueIndex"`
	Summary          string    `gorm:"type:varchar(5000)"`
	KeyTopics        datatypes.JSON
	Preferences      datatypes.JSON
	TotalMessages    int `gorm:"default:0"`
	LastActiveAt     time.Time
	MemoryVersion    int              `gorm:"default:1"`
	SummaryEmbedding *pgvector.Vector `gorm:"type:vector(768)"` // nomic-embed-text dimensions
	CreatedAt        time.Time        `gorm:"autoCreateTime"`
	UpdatedAt        time.Time        `gorm:"autoUpdateTime"`
}

func (UserMemory) TableName() string {
	return "user_memories"
}
