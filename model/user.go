package model

import "time"

type User struct {
	ID           string `gorm:"primaryKey;type:text;not null"`
	Email        string `gorm:"uniqueIndex;not null;size:255"`
	PasswordHash string `gorm:"not null"`
	DisplayName  string `gorm:"size:100"`
	AvatarURL    string `gorm:"size:500"`
	Bio          string `gorm:"type:text"`
	Website      string `gorm:"size:255"`
	Role         string `gorm:"default:user;size:50;not null"`
	IsActive     bool   `gorm:"default:true;not null"`
	LastLoginAt  *time.Time
	CreatedAt    time.Time `gorm:"not null"`
	UpdatedAt    time.Time `gorm:"not null"`
}
