package main

import (
	"fmt"
	"log"
	"os"
	"strings"

	"osoulapi/models"

	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	if len(os.Args) < 3 {
		fmt.Println("usage: go run ./cmd/create_user <email> <password> [role]")
		os.Exit(2)
	}
	email := strings.ToLower(os.Args[1])
	password := os.Args[2]
	role := models.RoleViewer
	if len(os.Args) > 3 {
		role = os.Args[3]
	}
	if !models.ValidRole(role) {
		log.Fatalf("invalid role %q; use admin, manager, collector or viewer", role)
	}

	_ = godotenv.Load()
	dsn := os.Getenv("DB_DSN")
	if strings.TrimSpace(dsn) == "" {
		log.Fatal("DB_DSN not set in environment")
	}
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatalf("failed to open db: %v", err)
	}

	// check existing
	var existing models.User
	if err := db.Where("LOWER(email) = ?", email).First(&existing).Error; err == nil {
		fmt.Printf("user %s already exists (id=%d)\n", email, existing.ID)
		os.Exit(0)
	}

	hpw, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("bcrypt failed: %v", err)
	}
	user := models.User{
		Email:     email,
		Password:  string(hpw),
		FirstName: "New",
		LastName:  "User",
		Role:      role,
		IsActive:  true,
	}
	if err := db.Create(&user).Error; err != nil {
		log.Fatalf("failed to create user: %v", err)
	}
	fmt.Printf("created user %s id=%d role=%s\n", email, user.ID, user.Role)
}
