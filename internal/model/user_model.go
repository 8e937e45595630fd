package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type User struct {
	Id                uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Username          string    `gorm:"type:varchar(30);uniqueIndex;not null"`
	Email             string    `gorm:"type:varchar(255);uniqueIndex;not null"`
	PasswordHash      *string   `gorm:"type:varchar(255)"`
	GoogleId          *string   `gorm:"type:varchar(255);uniqueIndex"`
	DisplayName       string    `gorm:"type:varchar(255)"`
	AvatarURL         *string   `gorm:"type:text"`
	Verified          bool      `gorm:"default:false"`
	VerificationToken *string   `gorm:"type:varchar(64)"`
	Preferences       datatypes.JSON
	Plan              string `gorm:"type:varchar(20);not null;default:'free'"`
	MessagesThisMonth int    `gorm:"default:0"`
	LastResetDate     time.Time
	TotalMessages     int `gorm:"default:0"`
	LastLogin         time.Time
	IsActive          bool           `gorm:"default:true"`
	CreatedAt         time.Time      `gorm:"autoCreateTime"`
	UpdatedAt         time.Time      `gorm:"autoUpdateTime"`
	DeletedAt         gorm.DeletedAt `gorm:"index"`
}

func (User) TableName() string {
	return "users"
}
