package database

import (
	"errors"
	"fmt"
	"strings"

	"github.com/yeremiapane/restaurant-booking/models"
	"github.com/yeremiapane/restaurant-booking/utils"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// DefaultTables is the floor plan seeded into an empty database.
var DefaultTables = []models.Table{
	{Number: 1, Capacity: 2, Location: "window"},
	{Number: 2, Capacity: 2, Location: "window"},
	{Number: 3, Capacity: 4, Location: "main hall"},
	{Number: 4, Capacity: 4, Location: "main hall"},
	{Number: 5, Capacity: 6, Location: "main hall"},
	{Number: 6, Capacity: 8, Location: "terrace"},
}

// SeedAdmin creates the first admin account when email and password are set
// and no user with that email exists yet.
func SeedAdmin(db *gorm.DB, email, password string) error {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil
	}

	var existing models.User
	err := db.Where("email = ?", email).First(&existing).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("look up admin: %w", err)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}
	admin := models.User{
		Name:     "Administrator",
		Email:    email,
		Password: string(hashed),
		Role:     models.RoleAdmin,
		IsActive: true,
	}
	if err := db.Create(&admin).Error; err != nil {
		return fmt.Errorf("create admin: %w", err)
	}
	utils.InfoLogger.Printf("Seeded admin user %s", email)
	return nil
}

// SeedTables inserts DefaultTables when the tables table is empty.
func SeedTables(db *gorm.DB) error {
	var count int64
	if err := db.Model(&models.Table{}).Count(&count).Error; err != nil {
		return fmt.Errorf("count tables: %w", err)
	}
	if count > 0 {
		return nil
	}

	tables := make([]models.Table, len(DefaultTables))
	for i, t := range DefaultTables {
		t.Status = models.TableStatusAvailable
		t.IsActive = true
		tables[i] = t
	}
	if err := db.Create(&tables).Error; err != nil {
		return fmt.Errorf("seed tables: %w", err)
	}
	utils.InfoLogger.Printf("Seeded %d tables", len(tables))
	return nil
}
