package seeders

import (
	"log"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nimbus-sec/authgate/model"
)

// KnowledgeSeeder plants the starter knowledge base entries.
type KnowledgeSeeder struct {
	db *gorm.DB
}

// NewKnowledgeSeeder creates a new knowledge seeder
func NewKnowledgeSeeder(db *gorm.DB) *KnowledgeSeeder {
	return &KnowledgeSeeder{db: db}
}

var starterEntries = []struct {
	Title   string
	Content string
	Tags    string
}{
	{
		Title:   "Getting started",
		Content: "Register an account, then call POST /api/v1/auth/login to receive an access and refresh token pair.",
		Tags:    "intro",
	},
	{
		Title:   "Using your access token",
		Content: "Send the access token on every request in the Authorization header: Bearer <token>. Access tokens expire after an hour by default; exchange the refresh token at POST /api/v1/auth/refresh for a new pair.",
		Tags:    "intro,tokens",
	},
	{
		Title:   "Rate limits",
		Content: "Each endpoint carries a request budget per caller. The X-RateLimit-Remaining header shows what is left; a 429 response includes Retry-After.",
		Tags:    "limits",
	},
	{
		Title:   "Resetting a forgotten password",
		Content: "POST your email to /api/v1/auth/password/reset. If the account exists you will receive a reset link valid for 15 minutes.",
		Tags:    "faq,passwords",
	},
}

// SeedEntries inserts the starter entries if the table is empty.
func (s *KnowledgeSeeder) SeedEntries() error {
	var count int64
	if err := s.db.Model(&model.KnowledgeEntry{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		log.Println("Knowledge base already seeded, skipping")
		return nil
	}

	for _, e := range starterEntries {
		id, err := uuid.NewV7()
		if err != nil {
			return err
		}

		entry := model.KnowledgeEntry{
			ID:      id.String(),
			Title:   e.Title,
			Content: e.Content,
			Tags:    e.Tags,
		}
		if err := s.db.Create(&entry).Error; err != nil {
			log.Printf("Error creating knowledge entry %q: %v", e.Title, err)
			return err
		}
	}

	log.Printf("Created %d knowledge base entries", len(starterEntries))
	return nil
}
