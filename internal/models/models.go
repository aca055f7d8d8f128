package models

import "time"

// UserProfile is the backend-owned record describing an EasyEats user. It is keyed by
// the identity provider's user identifier.
type UserProfile struct {
	ID             string
	FirebaseUID    string
	Email          string
	FirstName      string
	LastName       string
	Bio            string
	Location       string
	ProfilePicture string
	RecipeCount    int
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Recipe is a user-authored recipe.
type Recipe struct {
	ID           string
	OwnerUID     string
	Title        string
	Description  string
	Ingredients  string
	Instructions string
	CookingTime  int
	Difficulty   Difficulty
	Image        string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Difficulty grades how demanding a recipe is to cook.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// Valid reports whether d is one of the known difficulty levels.
func (d Difficulty) Valid() bool {
	switch d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return true
	}
	return false
}

const (
	// MaxRecipeTitleLength bounds recipe titles.
	MaxRecipeTitleLength = 200
	// MaxNameLength bounds first and last names.
	MaxNameLength = 30
	// MaxLocationLength bounds the free-text location.
	MaxLocationLength = 100
)
