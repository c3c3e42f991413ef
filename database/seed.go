package database

import (
	"fmt"
	"log"
	"time"

	"github.com/trawers/trawers-api/config"
	"github.com/trawers/trawers-api/model"
	"github.com/trawers/trawers-api/utils/auth"
	"gorm.io/gorm"
)

// Seeder handles database seeding operations
type Seeder struct {
	db  *gorm.DB
	cfg *config.Config
}

// NewSeeder creates a new seeder instance
func NewSeeder(db *gorm.DB, cfg *config.Config) *Seeder {
	return &Seeder{db: db, cfg: cfg}
}

// SeedAll runs all seed functions
func (s *Seeder) SeedAll() error {
	log.Println("Starting database seeding...")

	if err := s.SeedAdminUser(); err != nil {
		return fmt.Errorf("failed to seed admin user: %w", err)
	}

	log.Println("Database seeding completed.")
	return nil
}

// SeedAdminUser creates the bootstrap admin account from ADMIN_EMAIL /
// ADMIN_PASSWORD. Skipped when an admin already exists or credentials
// are not configured.
func (s *Seeder) SeedAdminUser() error {
	var count int64
	if err := s.db.Model(&model.User{}).Where("role = ?", model.RoleAdmin).Count(&count).Error; err != nil {
		return err
	}

	if count > 0 {
		log.Println("Admin user already exists, skipping...")
		return nil
	}

	if s.cfg.ADMIN_EMAIL == "" || s.cfg.ADMIN_PASSWORD == "" {
		log.Println("ADMIN_EMAIL and ADMIN_PASSWORD not set, skipping admin user creation")
		return nil
	}

	passwordHash, err := auth.HashPassword(s.cfg.ADMIN_PASSWORD)
	if err != nil {
		return err
	}

	now := time.Now()
	admin := model.User{
		Email:                 s.cfg.ADMIN_EMAIL,
		PasswordHash:          passwordHash,
		Name:                  "Administrator",
		Role:                  model.RoleAdmin,
		DataProcessingConsent: true,
		ConsentDate:           &now,
	}

	if err := s.db.Create(&admin).Error; err != nil {
		return err
	}

	log.Printf("Admin user created: %s", admin.Email)
	return nil
}
