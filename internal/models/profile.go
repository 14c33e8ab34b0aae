package models

import "time"

const (
	DietNone        = "none"
	DietVegetarian  = "vegetarian"
	DietVegan       = "vegan"
	DietPescatarian = "pescatarian"
	DietKeto        = "keto"
)

var HealthGoals = []string{
	"energy",
	"sleep",
	"immunity",
	"stress",
	"focus",
	"heart",
	"digestion",
	"skin",
	"joints",
	"fitness",
}

var DietaryPreferences = []string{DietNone, DietVegetarian, DietVegan, DietPescatarian, DietKeto}

// Profile exists once a user has finished onboarding.
type Profile struct {
	UserID      uint     `gorm:"primaryKey"`
	DisplayName string   `gorm:"not null"`
	HealthGoals []string `gorm:"serializer:json"`
	Diet        string   `gorm:"not null;default:none"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
