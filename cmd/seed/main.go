// Command seed provisions the initial admin account. Registration always
// creates regular users, so the first admin has to come from somewhere;
// this command is idempotent and safe to run on every deploy.
package main

import (
	"context"
	"log"
	"os"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"tasktracker/internal/config"
	"tasktracker/internal/db"
	"tasktracker/internal/model"
	"tasktracker/internal/repository"
)

func main() {
	log.Println("Starting seed script...")

	adminEmail := os.Getenv("ADMIN_EMAIL")
	adminPassword := os.Getenv("ADMIN_PASSWORD")
	if adminEmail == "" || adminPassword == "" {
		log.Fatal("ADMIN_EMAIL and ADMIN_PASSWORD must be set")
	}

	cfg := config.Load()

	gormDB, err := db.NewMySQL(cfg.MySQLDSN)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	log.Println("Connected to database")

	if err := gormDB.AutoMigrate(&model.User{}, &model.Task{}); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	log.Println("Database migrations completed")

	userRepo := repository.NewUserRepository(gormDB)
	ctx := context.Background()

	existing, err := userRepo.FindByEmail(ctx, adminEmail)
	if err != nil && err != gorm.ErrRecordNotFound {
		log.Fatalf("Failed to look up admin user: %v", err)
	}

	if existing != nil && err == nil {
		if existing.Role == model.RoleAdmin {
			log.Printf("Admin user %s already present, nothing to do", adminEmail)
			return
		}
		existing.Role = model.RoleAdmin
		if err := userRepo.Update(ctx, existing); err != nil {
			log.Fatalf("Failed to promote user to admin: %v", err)
		}
		log.Printf("Promoted existing user %s to admin", adminEmail)
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(adminPassword), 10)
	if err != nil {
		log.Fatalf("Failed to hash admin password: %v", err)
	}

	admin := &model.User{
		Email:        adminEmail,
		PasswordHash: string(hashed),
		Role:         model.RoleAdmin,
	}
	if err := userRepo.Create(ctx, admin); err != nil {
		log.Fatalf("Failed to create admin user: %v", err)
	}
	log.Printf("Created admin user %s (%s)", adminEmail, admin.ID)
}
