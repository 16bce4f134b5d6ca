package seeders

import (
	"log"

	"gorm.io/gorm"

	"github.com/nimbus-sec/authgate/model"
)

// MainSeeder coordinates the individual seeders.
type MainSeeder struct {
	db *gorm.DB

	adminSeeder     *AdminSeeder
	knowledgeSeeder *KnowledgeSeeder
}

// NewMainSeeder creates a new main seeder
func NewMainSeeder(db *gorm.DB) *MainSeeder {
	return &MainSeeder{
		db:              db,
		adminSeeder:     NewAdminSeeder(db),
		knowledgeSeeder: NewKnowledgeSeeder(db),
	}
}

// SeedAll migrates the schema and runs every seeder.
func (s *MainSeeder) SeedAll() error {
	if err := s.migrate(); err != nil {
		return err
	}
	if err := s.adminSeeder.SeedAdmin(); err != nil {
		return err
	}
	return s.knowledgeSeeder.SeedEntries()
}

func (s *MainSeeder) SeedAdminOnly() error {
	if err := s.migrate(); err != nil {
		return err
	}
	return s.adminSeeder.SeedAdmin()
}

func (s *MainSeeder) SeedKnowledgeOnly() error {
	if err := s.migrate(); err != nil {
		return err
	}
	return s.knowledgeSeeder.SeedEntries()
}

func (s *MainSeeder) migrate() error {
	log.Println("Migrating database schema...")
	return s.db.AutoMigrate(&model.User{}, &model.KnowledgeEntry{})
}
