// Seeds the first admin account.
//
// Registration through the API always creates student accounts, so a fresh
// deployment has no way to mint an admin. Run this once after migrating.
//
// Usage: go run scripts/seed_admin.go <name> <email> <password>
package main

import (
	"log"
	"os"

	"quizhub_backend/internal/config"
	"quizhub_backend/internal/model"
	"quizhub_backend/pkg/database"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func main() {
	if len(os.Args) != 4 {
		log.Fatalf("usage: %s <name> <email> <password>", os.Args[0])
	}
	name, email, password := os.Args[1], os.Args[2], os.Args[3]

	cfg, err := config.LoadConfig("configs")
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	db, err := database.InitDB(&cfg.Database)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	var existing model.User
	err = db.Where("email = ?", email).First(&existing).Error
	if err == nil {
		log.Fatalf("account %s already exists (role %s)", email, existing.Role)
	}
	if err != gorm.ErrRecordNotFound {
		log.Fatalf("failed to check for existing account: %v", err)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("failed to hash password: %v", err)
	}

	admin := &model.User{
		Name:     name,
		Email:    email,
		Password: string(hashed),
		Role:     model.RoleAdmin,
	}
	if err := db.Create(admin).Error; err != nil {
		log.Fatalf("failed to create admin account: %v", err)
	}

	log.Printf("admin account %s created (id %s)", email, admin.ID)
}
