package model

import "time"

// KnowledgeEntry backs the optional-auth read surface.
type KnowledgeEntry struct {
	ID        string `gorm:"primaryKey;type:text;not null"`
	Title     string `gorm:"not null;size:255"`
	Content   string `gorm:"type:text"`
	Tags      string `gorm:"size:255"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
